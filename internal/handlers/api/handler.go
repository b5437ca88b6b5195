// Package api exposes the preparation service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/errors"
	prepservice "github.com/dailyforge/dailies-api/internal/services/prep"
)

// Config holds the dependencies for the API handler
type Config struct {
	Service prepservice.Service
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Service == nil {
		vb.RequiredField("Service")
	}
	return vb.Build()
}

// Handler serves the daily preparation endpoints.
type Handler struct {
	service prepservice.Service
}

// New creates a new API handler
func New(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Handler{service: cfg.Service}, nil
}

// RegisterRoutes mounts the preparation endpoints.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1/actors/:actorID/preparations")
	v1.GET("", h.render)
	v1.POST("", h.accept)
	v1.POST("/drops", h.validateDrop)
	v1.GET("/rows/:dailyKey/:slug/query", h.browseQuery)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type renderResponse struct {
	Template *dailies.Template `json:"template"`
	Notices  []string          `json:"notices,omitempty"`
}

func (h *Handler) render(c *gin.Context) {
	out, err := h.service.Render(c.Request.Context(), &prepservice.RenderInput{
		ActorID:  c.Param("actorID"),
		Disabled: c.QueryArray("disabled"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderResponse{Template: out.Template, Notices: out.Notices})
}

type acceptRequest struct {
	Disabled []string                                 `json:"disabled,omitempty"`
	Values   map[string]map[string]dailies.SavedValue `json:"values"`
}

type acceptResponse struct {
	Summary      string   `json:"summary"`
	AddedItemIDs []string `json:"addedItemIds,omitempty"`
}

func (h *Handler) accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.InvalidArgumentf("invalid request body: %s", err.Error()))
		return
	}

	out, err := h.service.Accept(c.Request.Context(), &prepservice.AcceptInput{
		ActorID:  c.Param("actorID"),
		Disabled: req.Disabled,
		Values:   req.Values,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acceptResponse{Summary: out.Summary, AddedItemIDs: out.AddedItemIDs})
}

type validateDropRequest struct {
	DailyKey string `json:"dailyKey" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	ItemUUID string `json:"itemUuid" binding:"required"`
}

func (h *Handler) validateDrop(c *gin.Context) {
	var req validateDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.InvalidArgument("dailyKey, slug and itemUuid are required"))
		return
	}

	out, err := h.service.ValidateDrop(c.Request.Context(), &prepservice.ValidateDropInput{
		ActorID:  c.Param("actorID"),
		DailyKey: req.DailyKey,
		Slug:     req.Slug,
		ItemUUID: req.ItemUUID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": out.Item, "value": out.Value})
}

func (h *Handler) browseQuery(c *gin.Context) {
	out, err := h.service.BrowseQuery(c.Request.Context(), &prepservice.BrowseQueryInput{
		ActorID:  c.Param("actorID"),
		DailyKey: c.Param("dailyKey"),
		Slug:     c.Param("slug"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": out.Query})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(),
			"error", err.Error())
	}
	c.JSON(status, gin.H{
		"code":    string(code),
		"message": errors.GetMessage(err),
	})
}
