package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"investjournal/internal/service"
)

type SwitchHandler struct {
	Settings *service.SystemSettingsService
	// OnChange runs after a switch is written, e.g. to drop cached lists.
	OnChange func(key string, enabled bool)
}

func (h *SwitchHandler) Register(r *gin.Engine) {
	g := r.Group("/api/system/switches")
	g.GET("", h.list)
	g.PUT("/:name", h.put)
}

// @Summary List feature switches
// @Tags system
// @Success 200 {object} apiResponse
// @Router /api/system/switches [get]
func (h *SwitchHandler) list(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings service unavailable", nil)
		return
	}
	items, err := h.Settings.ListSwitches(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"name":        strings.TrimPrefix(it.Key, "feature."),
			"key":         it.Key,
			"enabled":     it.Enabled,
			"description": it.Description,
			"updated_at":  it.UpdatedAt,
		})
	}
	Ok(c, out, nil)
}

type putSwitchRequest struct {
	Enabled *bool `json:"enabled"`
}

// @Summary Toggle a feature switch
// @Tags system
// @Accept json
// @Param name path string true "switch name, e.g. ai_review"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/system/switches/{name} [put]
func (h *SwitchHandler) put(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings service unavailable", nil)
		return
	}
	name := strings.TrimSpace(c.Param("name"))
	key := "feature." + name
	if name == "" || !service.IsKnownFeature(key) {
		Error(c, http.StatusNotFound, "unknown switch", nil)
		return
	}
	var req putSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if err := h.Settings.SetEnabled(c.Request.Context(), key, *req.Enabled); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.OnChange != nil {
		h.OnChange(key, *req.Enabled)
	}
	Ok(c, map[string]any{
		"name":    name,
		"key":     key,
		"enabled": *req.Enabled,
	}, nil)
}
