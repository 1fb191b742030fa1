package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/service"
	"github.com/maxviazov/tennis-players-service/pkg/response"
)

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.GET("", h.list)
		g.POST("", h.create)
		g.POST("/bulk", h.createBulk)
		g.GET("/:id", h.getByID)
		g.PUT("/:id", h.replace)
		g.PATCH("/:id", h.updatePartial)
		g.PATCH("/:id/rank", h.updateRank)
		g.PATCH("/:id/stats", h.updateStats)
		g.DELETE("/:id", h.delete)
	}
}

func (h *PlayerHandler) list(c *gin.Context) {
	// Atoi errors are ignored intentionally: 0 falls back to the service defaults.
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.svc.ListPlayers(c.Request.Context(), service.ListParams{
		Page:    page,
		Limit:   limit,
		Sort:    strings.TrimSpace(c.Query("sort")),
		Country: strings.TrimSpace(c.Query("country")),
		Sex:     strings.TrimSpace(c.Query("sex")),
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) create(c *gin.Context) {
	var in model.PlayerInput
	if err := bindJSON(c, &in); err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) createBulk(c *gin.Context) {
	var in []model.PlayerInput
	if err := bindJSON(c, &in); err != nil {
		response.WriteError(c, err)
		return
	}
	players, err := h.svc.CreatePlayers(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, players)
}

func (h *PlayerHandler) replace(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var in model.PlayerInput
	if err := bindJSON(c, &in); err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.ReplacePlayer(c.Request.Context(), id, in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) updatePartial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var in model.PlayerInput
	if err := bindJSON(c, &in); err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.UpdatePartial(c.Request.Context(), id, in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

type rankRequest struct {
	Rank int `json:"rank"`
}

func (h *PlayerHandler) updateRank(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req rankRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.UpdateRank(c.Request.Context(), id, req.Rank)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) updateStats(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var stats model.StatsUpdate
	if err := bindJSON(c, &stats); err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.UpdateStats(c.Request.Context(), id, stats)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.DeletePlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
