package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/parse"
)

// DaySummary handles GET /api/profiles/:id/summary?date=DD/MM/YYYY.
// Without a date the summary covers today.
func (h *Handler) DaySummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		var err error
		if day, err = parse.Date(raw, h.svc.Location()); err != nil {
			badRequest(c, "date: "+err.Error())
			return
		}
	}

	summary, err := h.svc.DaySummary(c.Request.Context(), id, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// WhatIsNext handles GET /api/profiles/:id/next.
func (h *Handler) WhatIsNext(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	outlook, err := h.svc.WhatIsNext(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOutlookResponse(outlook, h.svc.Location()))
}
