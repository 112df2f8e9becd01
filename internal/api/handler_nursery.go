package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/parse"
)

// ListProfiles handles GET /api/profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.store.ListProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]profileResponse, len(profiles))
	for i := range profiles {
		resp[i] = newProfileResponse(&profiles[i], h.svc.Location())
	}
	c.JSON(http.StatusOK, resp)
}

type createProfileRequest struct {
	Name      string            `json:"name" binding:"required"`
	Type      model.ProfileType `json:"type"`
	BirthDate string            `json:"birth_date" binding:"required"`
}

// CreateProfile handles POST /api/profiles. The birth date is DD/MM/YYYY.
func (h *Handler) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	birth, err := parse.Date(req.BirthDate, h.svc.Location())
	if err != nil {
		badRequest(c, "birth_date: "+err.Error())
		return
	}

	p, err := h.svc.CreateProfile(c.Request.Context(), care.NewProfile{Name: req.Name, Type: req.Type, BirthDate: birth})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newProfileResponse(p, h.svc.Location()))
}

// ListDiaperSizes handles GET /api/diaper-sizes. Disabled sizes are included
// with all=true.
func (h *Handler) ListDiaperSizes(c *gin.Context) {
	sizes, err := h.store.ListDiaperSizes(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]diaperSizeResponse, len(sizes))
	for i := range sizes {
		resp[i] = newDiaperSizeResponse(&sizes[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createSizeRequest struct {
	Label string `json:"label" binding:"required"`
}

// CreateDiaperSize handles POST /api/diaper-sizes.
func (h *Handler) CreateDiaperSize(c *gin.Context) {
	var req createSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	size, err := h.svc.AddDiaperSize(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDiaperSizeResponse(size))
}

// ToggleDiaperSize handles POST /api/diaper-sizes/:id/toggle.
func (h *Handler) ToggleDiaperSize(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	size, err := h.store.ToggleDiaperSize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDiaperSizeResponse(size))
}

// ListInventory handles GET /api/inventory.
func (h *Handler) ListInventory(c *gin.Context) {
	inventory, err := h.store.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]inventoryResponse, len(inventory))
	for i := range inventory {
		resp[i] = newInventoryResponse(&inventory[i], h.svc.Location())
	}
	c.JSON(http.StatusOK, resp)
}

type restockRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Restock handles POST /api/inventory/restock.
func (h *Handler) Restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	inv, err := h.svc.Restock(c.Request.Context(), req.Size, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInventoryResponse(inv, h.svc.Location()))
}

type diaperRequest struct {
	ProfileID int64  `json:"profile_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	WasteType string `json:"waste_type"`
	Time      string `json:"time"`
	Notes     string `json:"notes"`
}

// RecordDiaper handles POST /api/diapers.
func (h *Handler) RecordDiaper(c *gin.Context) {
	var req diaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	at, ok := h.parseTime(c, "time", req.Time)
	if !ok {
		return
	}

	res, err := h.svc.RecordDiaperChange(c.Request.Context(), callerID(c), care.DiaperChange{
		ProfileID: req.ProfileID,
		SizeLabel: req.Size,
		WasteType: parse.WasteType(req.WasteType),
		Time:      at,
		Notes:     parse.OptionalText(req.Notes),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, diaperLogResponse{
		ID:        res.Log.ID,
		ProfileID: res.Log.ProfileID,
		Time:      res.Log.Time.In(h.svc.Location()),
		WasteType: res.Log.WasteType,
		Size:      res.Log.SizeLabel,
		Notes:     res.Log.Notes,
		Stock:     res.Stock,
		LowStock:  res.LowStock,
	})
}

// ImportDiapers handles POST /api/diapers/import with a CSV body.
func (h *Handler) ImportDiapers(c *gin.Context) {
	report, err := h.svc.ImportDiaperCSV(c.Request.Context(), callerID(c), c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type feedingRequest struct {
	ProfileID       int64  `json:"profile_id" binding:"required"`
	Start           string `json:"start" binding:"required"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

// RecordFeeding handles POST /api/feedings. Without end or duration the
// session is taken to end now.
func (h *Handler) RecordFeeding(c *gin.Context) {
	var req feedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, ok := h.parseTime(c, "start", req.Start)
	if !ok {
		return
	}
	end, ok := h.parseTime(c, "end", req.End)
	if !ok {
		return
	}

	manual := !end.IsZero() || req.DurationMinutes > 0
	switch {
	case req.DurationMinutes < 0:
		badRequest(c, "duration_minutes must not be negative")
		return
	case end.IsZero() && req.DurationMinutes > 0:
		end = start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	case end.IsZero():
		end = h.svc.Now()
	}

	res, err := h.svc.RecordFeeding(c.Request.Context(), callerID(c), care.Feeding{
		ProfileID: req.ProfileID,
		Start:     start,
		End:       end,
		Notes:     parse.OptionalText(req.Notes),
		Manual:    manual,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedingResponse{
		ID:              res.Log.ID,
		ProfileID:       res.Log.ProfileID,
		Start:           res.Log.StartTime.In(h.svc.Location()),
		End:             res.Log.EndTime.In(h.svc.Location()),
		DurationMinutes: res.Log.DurationMinutes(),
		Notes:           res.Log.Notes,
		Next:            res.Next,
	})
}
