package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/metrics"
	"github.com/maxviazov/tennis-players-service/pkg/response"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

var errPanic = errors.New("panic recovered")

// NewEngine builds a gin engine with the middleware chain every route shares.
func NewEngine(log zerolog.Logger, rec *metrics.Recorder, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(
		RequestLogger(log),
		Recovery(),
		Timeout(requestTimeout),
		Metrics(rec),
	)
	return r
}

// RequestLogger assigns a request id, puts a request-scoped logger into the
// request context and writes one access line per request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	base = base.With().Str("module", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		l := base.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = l.Error()
		case status >= 400:
			event = l.Warn()
		default:
			event = l.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("took", time.Since(start)).
			Msg("request completed")
	}
}

// Recovery turns a handler panic into a logged 500 with the standard error payload.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("handler panicked")
		response.WriteError(c, errPanic)
	})
}

// Timeout bounds the request context; store calls see the deadline through it.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Metrics records count and latency per matched route.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
