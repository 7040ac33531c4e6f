package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	JWTSecret string

	TranslateURL         string
	ClassifierURL        string
	CollaboratorTimeout  time.Duration
	SendgridAPIKey       string
	MailFrom             string
	DatabaseTransactions bool
	ReconcileSchedule    string
}

// New sets up all config related services
func New() *Config {
	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                  os.Getenv("DB_URI"),
		DatabaseName:         os.Getenv("DB_NAME"),
		BaseURL:              os.Getenv("BASE_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  env,
		JWTSecret:            os.Getenv("JWT_SECRET"),
		TranslateURL:         os.Getenv("TRANSLATE_URL"),
		ClassifierURL:        os.Getenv("CLASSIFIER_URL"),
		CollaboratorTimeout:  durationOrDefault("COLLABORATOR_TIMEOUT", 5*time.Second),
		SendgridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		MailFrom:             stringOrDefault("MAIL_FROM", "no-reply@fir-portal.in"),
		DatabaseTransactions: boolOrDefault("DB_TRANSACTIONS", true),
		ReconcileSchedule:    stringOrDefault("RECONCILE_SCHEDULE", "@every 5m"),
	}
}

// setLogger picks the zap preset for the given environment name
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		return zap.NewDevelopment()
	case "development":
		return zap.NewDevelopment(zap.IncreaseLevel(zap.InfoLevel))
	default:
		return zap.NewProduction()
	}
}

func stringOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func boolOrDefault(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "error", err)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}
