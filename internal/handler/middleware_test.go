package handler_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/tennis-players-service/internal/handler"
	"github.com/maxviazov/tennis-players-service/internal/metrics"
)

func TestRequestLogger_AssignsAndEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	r := handler.NewEngine(zerolog.New(&logs), nil, 0)
	r.GET("/ping", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(handler.RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, 2, strings.Count(logs.String(), `"request_id":"`+id+`"`))
	assert.Contains(t, logs.String(), `"route":"/ping"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(handler.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(handler.RequestIDHeader))
}

func TestRecovery_AnswersInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := handler.NewEngine(zerolog.New(io.Discard), nil, 0)
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"Internal server error"}`, w.Body.String())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := handler.NewEngine(zerolog.New(io.Discard), nil, time.Minute)
	var deadline time.Time
	var ok bool
	r.GET("/slow", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestMetrics_ExposedAndObserved(t *testing.T) {
	rec := metrics.NewRecorder()
	r := newRouter(&stubPlayerService{}, stubAnalytics{}, rec)

	do(r, http.MethodGet, "/api/players/1", "")
	do(r, http.MethodGet, "/api/players/nope", "")

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `tennis_http_requests_total{method="GET",route="/api/players/:id",status="200"} 1`)
	assert.Contains(t, body, `tennis_http_requests_total{method="GET",route="/api/players/:id",status="400"} 1`)
}
