package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoutePath(t *testing.T) {
	assert.Equal(t, "/api/v1/fir/{id}/update", normalizeRoutePath("/api/v1/fir/3f1c2a9e-8d4b-4c1a-9e2f-6b7a8c9d0e1f/update"))
	assert.Equal(t, "/api/v1/fir/{id}", normalizeRoutePath("/api/v1/fir/507f1f77bcf86cd799439011"))
	assert.Equal(t, "/api/v1/fir/pending", normalizeRoutePath("/api/v1/fir/pending/"))
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/api/v1/fir/{fir_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/fir/{fir_id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/fir/abc", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/fir/{fir_id}", "404"))

	assert.Equal(t, before+1, after)
}

func TestIdentityFromContext_Empty(t *testing.T) {
	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())

	assert.False(t, ok)
}
