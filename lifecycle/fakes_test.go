package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/models"
)

// memStore keeps the active and archive collections in maps. It understands the
// handful of filter keys the Manager builds.
type memStore struct {
	mu      sync.Mutex
	active  map[string]models.FIR
	archive map[string]models.FIR

	insertErr  error
	archiveErr error
	inserts    int

	// beforeWrite runs once ahead of the next conditional write, standing in
	// for another writer that got there first
	beforeWrite func(s *memStore)
}

func (s *memStore) interleave() {
	if hook := s.beforeWrite; hook != nil {
		s.beforeWrite = nil
		hook(s)
	}
}

func newMemStore() *memStore {
	return &memStore{active: map[string]models.FIR{}, archive: map[string]models.FIR{}}
}

func (s *memStore) Insert(_ context.Context, fir models.FIR) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, ok := s.active[fir.ID]; ok {
		return errors.New("duplicate key")
	}
	s.inserts++
	s.active[fir.ID] = fir
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*models.FIR, databases.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fir, ok := s.active[id]; ok {
		return &fir, databases.LocationActive, nil
	}
	if fir, ok := s.archive[id]; ok {
		return &fir, databases.LocationArchive, nil
	}
	return nil, 0, mongo.ErrNoDocuments
}

func (s *memStore) FindActive(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.FIR, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return matching(s.active, filter.(bson.M)), nil
}

func (s *memStore) FindArchived(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.FIR, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return matching(s.archive, filter.(bson.M)), nil
}

func (s *memStore) UpdateActive(_ context.Context, id string, from models.Status, set bson.M) (bool, error) {
	s.interleave()
	s.mu.Lock()
	defer s.mu.Unlock()
	fir, ok := s.active[id]
	if !ok || fir.Status != from {
		return false, nil
	}
	if v, ok := set["status"]; ok {
		fir.Status = v.(models.Status)
	}
	if v, ok := set["police_notes"]; ok {
		fir.PoliceNotes = v.(string)
	}
	if v, ok := set["applicable_sections"]; ok {
		fir.ApplicableSections = v.([]string)
	}
	if v, ok := set["last_updated"]; ok {
		fir.LastUpdated = v.(time.Time)
	}
	s.active[id] = fir
	return true, nil
}

func (s *memStore) Archive(_ context.Context, fir models.FIR, from models.Status) error {
	s.interleave()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.archiveErr != nil {
		return s.archiveErr
	}
	if current, ok := s.active[fir.ID]; !ok || current.Status != from {
		return databases.ErrFIRChanged
	}
	s.archive[fir.ID] = fir
	delete(s.active, fir.ID)
	return nil
}

func matching(coll map[string]models.FIR, filter bson.M) []models.FIR {
	var out []models.FIR
	for _, fir := range coll {
		if v, ok := filter["user_id"]; ok && fir.UserID != v {
			continue
		}
		if v, ok := filter["station_id"]; ok && fir.StationID != v {
			continue
		}
		if v, ok := filter["status"]; ok {
			in := v.(bson.M)["$in"].([]models.Status)
			found := false
			for _, st := range in {
				if fir.Status == st {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, fir)
	}
	return out
}

type fakeProfiles struct {
	profiles map[string]models.UserProfile
	err      error
}

func (p *fakeProfiles) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &profile, nil
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (t *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	t.calls++
	return t.out, t.err
}

type fakeClassifier struct {
	out      []models.Suggestion
	err      error
	lastText string
	lastK    int
}

func (c *fakeClassifier) Suggest(_ context.Context, text string, k int) ([]models.Suggestion, error) {
	c.lastText = text
	c.lastK = k
	return c.out, c.err
}

type fakeNotifier struct {
	notices []models.Notice
	err     error
}

func (n *fakeNotifier) Append(_ context.Context, notice models.Notice) (*models.Notification, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.notices = append(n.notices, notice)
	return &models.Notification{UserID: notice.RecipientID, Message: notice.Message}, nil
}
