package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/models"
)

const reconcileLock = "fir_reconcile_job"

// Scheduler runs periodic background jobs for the FIR store
type Scheduler struct {
	cron       *cron.Cron
	Store      databases.FIRStore
	LockDB     databases.SchedulerLockDatabase
	schedule   string
	instanceID string
}

// NewScheduler creates a new scheduler instance. schedule is a cron spec or a
// descriptor such as "@every 5m".
func NewScheduler(store databases.FIRStore, lockDB databases.SchedulerLockDatabase, schedule string) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Store:      store,
		LockDB:     lockDB,
		schedule:   schedule,
		instanceID: instanceID,
	}
}

// Start registers the jobs and starts the cron runner
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.reconcileJob); err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}
	s.cron.Start()
	zap.S().Infow("fir scheduler started", "schedule", s.schedule, "instance", s.instanceID)
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("fir scheduler stopped")
}

func (s *Scheduler) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, reconcileLock, s.instanceID, 5*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for reconcile job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("reconcile job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, reconcileLock, s.instanceID)

	s.Reconcile(ctx)
}

// Reconcile finishes relocations that were interrupted after the resolved state
// was written to the active collection. Archive copes with both outcomes: FIRs
// already present in archives only lose their active copy.
func (s *Scheduler) Reconcile(ctx context.Context) (moved int, failed int) {
	stranded, err := s.Store.FindActive(ctx, bson.M{"status": models.StatusResolved})
	if err != nil {
		zap.S().Errorw("failed to find resolved firs in active collection", "error", err)
		return 0, 0
	}

	for _, fir := range stranded {
		err := s.Store.Archive(ctx, fir, models.StatusResolved)
		if errors.Is(err, databases.ErrFIRChanged) {
			// relocated by someone else since the scan
			continue
		}
		if err != nil {
			failed++
			zap.S().Errorw("failed to relocate resolved fir", "firId", fir.ID, "error", err)
			continue
		}
		moved++
	}

	if len(stranded) > 0 {
		zap.S().Infow("reconcile complete", "relocated", moved, "failed", failed)
	}
	return moved, failed
}
