// Package handlers exposes the acquisition pipeline over HTTP.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
	"github.com/magnetarr/magnetarr/internal/services"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

type Handler struct {
	container *services.Container
	logger    logger.Logger
}

func New(container *services.Container) *Handler {
	return &Handler{
		container: container,
		logger:    container.Logger,
	}
}

// RegisterRoutes attaches all endpoints to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.handleHealth)

	api := router.Group("/api/v1")
	api.GET("/search", h.handleSearch)
	api.POST("/acquisitions", h.handleStartAcquisition)
	api.GET("/acquisitions/current", h.handleAcquisitionStatus)
	api.DELETE("/acquisitions/current", h.handleCancelAcquisition)
	api.GET("/acquisitions/current/files", h.handleAcquisitionFiles)
	api.POST("/files/unlock", h.handleUnlockLink)
	api.POST("/cache/clear", h.handleClearCache)
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

// handleSearch runs the search pipeline and applies the requested filter and
// sort before responding.
func (h *Handler) handleSearch(c *gin.Context) {
	query := models.MovieQuery{
		Title:         c.Query("title"),
		OriginalTitle: c.Query("originalTitle"),
		Year:          c.Query("year"),
		ID:            c.Query("id"),
	}

	results, err := h.container.Search.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	criteria := models.FilterCriteria{
		Quality:    c.Query("quality"),
		Tracker:    c.Query("tracker"),
		VideoType:  c.Query("videoType"),
		Voice:      c.Query("voice"),
		AudioLang:  c.Query("audioLang"),
		VideoCodec: c.Query("videoCodec"),
		AudioCodec: c.Query("audioCodec"),
	}
	if cachedOnly, err := strconv.ParseBool(c.Query("cachedOnly")); err == nil {
		criteria.CachedOnly = cachedOnly
	}

	spec := models.DefaultSort()
	if field := c.Query("sort"); field != "" {
		spec.Field = models.SortField(field)
	}
	if direction := c.Query("direction"); direction != "" {
		spec.Direction = models.SortDirection(direction)
	}

	filtered := h.container.FilterSort.Apply(results, criteria, spec)

	c.JSON(http.StatusOK, gin.H{
		"results": filtered,
		"total":   len(filtered),
	})
}

type startAcquisitionRequest struct {
	Hash   string `json:"hash"`
	Title  string `json:"title"`
	Magnet string `json:"magnet,omitempty"`
}

func (h *Handler) handleStartAcquisition(c *gin.Context) {
	var req startAcquisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.container.Acquisition.Start(req.Hash, req.Title, req.Magnet)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, snapshot)
}

func (h *Handler) handleAcquisitionStatus(c *gin.Context) {
	snapshot, ok := h.container.Acquisition.Status()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no acquisition in progress"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) handleCancelAcquisition(c *gin.Context) {
	snapshot, ok := h.container.Acquisition.Cancel()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no acquisition in progress"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) handleAcquisitionFiles(c *gin.Context) {
	files, err := h.container.Acquisition.Files()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

type unlockRequest struct {
	Link string `json:"link"`
}

func (h *Handler) handleUnlockLink(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing link"})
		return
	}

	unlocked, err := h.container.Debrid.UnlockLink(c.Request.Context(), h.container.Config.APIKeyDebrid, req.Link)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlocked)
}

func (h *Handler) handleClearCache(c *gin.Context) {
	h.container.Search.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// respondError maps pipeline error kinds onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.KindOf(err) {
	case errors.KindValidation:
		status = http.StatusBadRequest
	case errors.KindAuth:
		status = http.StatusUnauthorized
	case errors.KindNetwork:
		status = http.StatusServiceUnavailable
	case errors.KindAPI:
		status = http.StatusBadGateway
	case errors.KindCancelled:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
