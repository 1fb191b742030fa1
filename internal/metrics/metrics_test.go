package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveHTTP(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveHTTP(http.MethodGet, "/api/players/:id", http.StatusOK, 12*time.Millisecond)
	rec.ObserveHTTP(http.MethodGet, "/api/players/:id", http.StatusOK, 3*time.Millisecond)
	rec.ObserveHTTP(http.MethodGet, "/api/players/:id", http.StatusNotFound, time.Millisecond)
	rec.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "/api/players/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "/api/players/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.latency))
}

func TestRecorder_PlayerMutation(t *testing.T) {
	rec := NewRecorder()
	rec.PlayerMutation("create", 1)
	rec.PlayerMutation("create_bulk", 3)
	rec.PlayerMutation("create_bulk", 2)
	rec.PlayerMutation("delete", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutations.WithLabelValues("create")))
	assert.Equal(t, 5.0, testutil.ToFloat64(rec.mutations.WithLabelValues("create_bulk")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.mutations))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	rec.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Second)
	rec.PlayerMutation("create", 1)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecorder_Handler(t *testing.T) {
	rec := NewRecorder()
	rec.PlayerMutation("create", 1)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tennis_player_mutations_total{op="create"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
