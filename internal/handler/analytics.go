package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/tennis-players-service/internal/service"
	"github.com/maxviazov/tennis-players-service/pkg/response"
)

// AnalyticsHandler serves the aggregate endpoints under /players/analytics.
type AnalyticsHandler struct {
	svc service.AnalyticsService
}

func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players/analytics")
	{
		g.GET("/countries", h.countries)
		g.GET("/bmi", h.bmi)
		g.GET("/height", h.height)
	}
}

func (h *AnalyticsHandler) countries(c *gin.Context) {
	res, err := h.svc.BestAndWorstCountry(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *AnalyticsHandler) bmi(c *gin.Context) {
	res, err := h.svc.PlayersBMI(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *AnalyticsHandler) height(c *gin.Context) {
	res, err := h.svc.HeightStats(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
