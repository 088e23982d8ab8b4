package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPBrieferReturnsText(t *testing.T) {
	var got briefRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(briefResponse{Text: "  Hold the river.  "})
	}))
	defer srv.Close()

	b := NewHTTPBriefer(srv.URL, "k", time.Second, zap.NewNop())
	text, err := b.Brief(context.Background(), "GUNNER", 42)
	require.NoError(t, err)
	assert.Equal(t, "Hold the river.", text)
	assert.Equal(t, "GUNNER", got.Class)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, tones["GUNNER"], got.Tone)
}

func TestHTTPBrieferFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewHTTPBriefer(srv.URL, "k", time.Second, zap.NewNop())
	text, err := b.Brief(context.Background(), "SAMURAI", 1)
	assert.Error(t, err)
	assert.Equal(t, Fallback("SAMURAI"), text)
}

func TestHTTPBrieferTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	b := NewHTTPBriefer(srv.URL, "k", 20*time.Millisecond, zap.NewNop())
	text := Fetch(context.Background(), b, "MAGE", 1, zap.NewNop())
	assert.Equal(t, Fallback("MAGE"), text)
}

func TestMissingKey(t *testing.T) {
	b := NewHTTPBriefer("http://127.0.0.1:1", "", time.Second, zap.NewNop())
	text, err := b.Brief(context.Background(), "MAGE", 1)
	assert.ErrorIs(t, err, ErrNoKey)
	assert.Equal(t, lineMissingKey, text)
}

func TestEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	text, err := NewHTTPBriefer(srv.URL, "k", time.Second, zap.NewNop()).Brief(context.Background(), "GUNNER", 1)
	require.NoError(t, err)
	assert.Equal(t, lineEmpty, text)
}

func TestStaticIsDeterministic(t *testing.T) {
	a, _ := Static{}.Brief(context.Background(), "SAMURAI", 1)
	b, _ := Static{}.Brief(context.Background(), "SAMURAI", 2)
	assert.Equal(t, a, b)
	assert.Equal(t, lineEmpty, Fallback("UNKNOWN"))
}
