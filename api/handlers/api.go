package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/api"
	"github.com/linesmerrill/fir-api/api/scheduler"
	"github.com/linesmerrill/fir-api/config"
	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/external"
	"github.com/linesmerrill/fir-api/lifecycle"
	"github.com/linesmerrill/fir-api/models"
	"github.com/linesmerrill/fir-api/notify"
)

const connectTimeout = 10 * time.Second

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	client    databases.ClientHelper
	dbHelper  databases.DatabaseHelper
	ledger    *notify.Ledger
}

// New wires the lifecycle manager, the notification ledger and every route
func (a *App) New() *mux.Router {
	m := api.NewMiddlewareAuth(a.Config.JWTSecret)

	hub := notify.NewHub()
	var mailer notify.Mailer
	if a.Config.SendgridAPIKey != "" {
		mailer = notify.NewSendgridMailer(a.Config.SendgridAPIKey, a.Config.MailFrom)
	}
	ledger := notify.NewLedger(databases.NewNotificationDatabase(a.dbHelper), hub, mailer)
	a.ledger = ledger

	var translator lifecycle.Translator
	if a.Config.TranslateURL != "" {
		translator = external.NewTranslator(a.Config.TranslateURL, a.Config.CollaboratorTimeout)
	}
	var classifier lifecycle.Classifier
	if a.Config.ClassifierURL != "" {
		classifier = external.NewClassifier(a.Config.ClassifierURL, a.Config.CollaboratorTimeout)
	}

	manager := lifecycle.NewManager(
		databases.NewFIRStore(a.dbHelper, a.Config.DatabaseTransactions),
		databases.NewProfileDatabase(a.dbHelper),
		translator,
		classifier,
		ledger,
	)

	return routes(m, FIR{Service: manager}, Notification{Ledger: ledger, Hub: hub})
}

func routes(m *api.MiddlewareAuth, f FIR, n Notification) *mux.Router {
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", api.MetricsHandler()).Methods("GET")
	r.Handle("/ws/notifications", m.Middleware(http.HandlerFunc(n.NotificationsWebSocketHandler))).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/fir", m.Middleware(http.HandlerFunc(f.CreateFIRHandler))).Methods("POST")
	apiCreate.Handle("/fir", m.Middleware(http.HandlerFunc(f.FIRsHandler))).Methods("GET")
	apiCreate.Handle("/fir/pending", m.Middleware(http.HandlerFunc(f.PendingFIRsHandler))).Methods("GET")
	apiCreate.Handle("/fir/archives", m.Middleware(http.HandlerFunc(f.ArchivedFIRsHandler))).Methods("GET")
	apiCreate.Handle("/fir/notifications", m.Middleware(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/fir/notifications/{notification_id}/read", m.Middleware(http.HandlerFunc(n.MarkNotificationAsReadHandler))).Methods("PUT")
	// All fixed /fir routes must go above this line
	apiCreate.Handle("/fir/{fir_id}", m.Middleware(http.HandlerFunc(f.FIRByIDHandler))).Methods("GET")
	apiCreate.Handle("/fir/{fir_id}/update", m.Middleware(http.HandlerFunc(f.UpdateFIRHandler))).Methods("PUT")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("fir-api has connected to the database")

	a.Scheduler = scheduler.NewScheduler(
		databases.NewFIRStore(a.dbHelper, a.Config.DatabaseTransactions),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		a.Config.ReconcileSchedule,
	)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close stops background jobs, lets pending notification deliveries finish and
// disconnects from the database
func (a *App) Close(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.ledger != nil {
		a.ledger.Wait()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Errorw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
