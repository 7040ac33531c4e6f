package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/fir-api/models"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("COLLABORATOR_TIMEOUT")
	os.Unsetenv("DB_TRANSACTIONS")
	os.Unsetenv("RECONCILE_SCHEDULE")
	conf := New()

	assert.Equal(t, 5*time.Second, conf.CollaboratorTimeout)
	assert.True(t, conf.DatabaseTransactions)
	assert.Equal(t, "@every 5m", conf.ReconcileSchedule)
}

func TestNewOverrides(t *testing.T) {
	os.Setenv("COLLABORATOR_TIMEOUT", "750ms")
	os.Setenv("DB_TRANSACTIONS", "false")
	defer os.Unsetenv("COLLABORATOR_TIMEOUT")
	defer os.Unsetenv("DB_TRANSACTIONS")
	conf := New()

	assert.Equal(t, 750*time.Millisecond, conf.CollaboratorTimeout)
	assert.False(t, conf.DatabaseTransactions)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	expected, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: "error it borked", Error: "bad request"}})
	assert.Equal(t, string(expected), rr.Body.String())
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
