package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/tennis-players-service/internal/metrics"
	"github.com/maxviazov/tennis-players-service/internal/service"
)

// Register mounts all public routes on the given engine.
// A nil recorder leaves /metrics unmounted.
func Register(r *gin.Engine, info ServiceInfo, repo Pinger, playerSvc service.PlayerService, analyticsSvc service.AnalyticsService, rec *metrics.Recorder) {
	h := NewHealthHandler(repo, info)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)
	if rec != nil {
		r.GET("/metrics", gin.WrapH(rec.Handler()))
	}

	api := r.Group(APIPrefix)
	{
		api.GET("", h.Info)
		api.GET("/health", h.Health)
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewAnalyticsHandler(analyticsSvc).Register(api)
		NewPlayerHandler(playerSvc).Register(api)
	}
}
