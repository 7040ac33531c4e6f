package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "auto", req.Source)
		assert.Equal(t, "en", req.Target)
		assert.Equal(t, "मेरी साइकिल चोरी हो गई", req.Q)
		w.Write([]byte(`{"translatedText": "my bicycle was stolen"}`))
	}))
	defer srv.Close()

	out, err := NewTranslator(srv.URL, time.Second).Translate(context.Background(), "मेरी साइकिल चोरी हो गई", "auto", "en")

	assert.NoError(t, err)
	assert.Equal(t, "my bicycle was stolen", out)
}

func TestTranslator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewTranslator(srv.URL, time.Second).Translate(context.Background(), "x", "auto", "en")

	assert.Error(t, err)
}

func TestTranslator_EmptyTranslation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"translatedText": ""}`))
	}))
	defer srv.Close()

	_, err := NewTranslator(srv.URL, time.Second).Translate(context.Background(), "x", "auto", "en")

	assert.Error(t, err)
}

func TestTranslator_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"translatedText": "late"}`))
	}))
	defer srv.Close()

	_, err := NewTranslator(srv.URL, 20*time.Millisecond).Translate(context.Background(), "x", "auto", "en")

	assert.Error(t, err)
}

func TestClassifier_SuggestOrdersAndTrims(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req suggestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.K)
		w.Write([]byte(`{"suggestions": [
			{"code": "BNS 303", "confidence": 0.41},
			{"code": "BNS 305", "confidence": 0.87},
			{"code": "BNS 317", "confidence": 0.12}
		]}`))
	}))
	defer srv.Close()

	out, err := NewClassifier(srv.URL, time.Second).Suggest(context.Background(), "my bicycle was stolen", 2)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "BNS 305", out[0].Code)
	assert.Equal(t, "BNS 303", out[1].Code)
}

func TestClassifier_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	out, err := NewClassifier(srv.URL, time.Second).Suggest(context.Background(), "x", 5)

	assert.Nil(t, out)
	assert.Error(t, err)
}
