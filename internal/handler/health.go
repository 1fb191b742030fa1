package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is the minimal contract I need from a repository to check readiness.
// I keep it local to the handler package to avoid coupling and simplify tests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServiceInfo is what GET /api reports about the running service.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Env     string `json:"env"`
	Storage string `json:"storage"`
}

var endpoints = []string{
	"GET " + APIPrefix + "/health",
	"GET " + APIPrefix + "/players",
	"GET " + APIPrefix + "/players/:id",
	"POST " + APIPrefix + "/players",
	"POST " + APIPrefix + "/players/bulk",
	"PUT " + APIPrefix + "/players/:id",
	"PATCH " + APIPrefix + "/players/:id",
	"PATCH " + APIPrefix + "/players/:id/rank",
	"PATCH " + APIPrefix + "/players/:id/stats",
	"DELETE " + APIPrefix + "/players/:id",
	"GET " + APIPrefix + "/players/analytics/countries",
	"GET " + APIPrefix + "/players/analytics/bmi",
	"GET " + APIPrefix + "/players/analytics/height",
}

// HealthHandler exposes liveness, readiness and service info endpoints.
type HealthHandler struct {
	repo Pinger
	info ServiceInfo
	now  func() time.Time
}

func NewHealthHandler(repo Pinger, info ServiceInfo) *HealthHandler {
	return &HealthHandler{repo: repo, info: info, now: time.Now}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness verifies the storage answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Health is the human-facing status probe.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   h.info,
		"endpoints": endpoints,
	})
}
