package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListSettings handles GET /api/settings.
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.store.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]settingResponse, len(settings))
	for i, s := range settings {
		resp[i] = settingResponse{Key: s.Key, Value: s.Value, Description: s.Description}
	}
	c.JSON(http.StatusOK, resp)
}

type settingRequest struct {
	Value answer `json:"value" binding:"required"`
}

// UpdateSetting handles PUT /api/settings/:key.
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	key := c.Param("key")
	if err := h.svc.UpdateSetting(c.Request.Context(), key, string(req.Value)); err != nil {
		respondError(c, err)
		return
	}
	value, err := h.store.GetSetting(c.Request.Context(), key, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingResponse{Key: key, Value: value})
}
