package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/parse"
)

type treatmentRequest struct {
	ProfileID      int64  `json:"profile_id" binding:"required"`
	MedicineName   string `json:"medicine_name" binding:"required"`
	Dose           string `json:"dose"`
	FrequencyHours answer `json:"frequency_hours"`
	DurationDays   int    `json:"duration_days"`
	Start          string `json:"start"`
}

// CreateTreatment handles POST /api/treatments. Start defaults to now.
func (h *Handler) CreateTreatment(c *gin.Context) {
	var req treatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	hours, err := req.FrequencyHours.decimal()
	if err != nil {
		badRequest(c, "frequency_hours: "+err.Error())
		return
	}
	start, ok := h.parseTime(c, "start", req.Start)
	if !ok {
		return
	}
	if start.IsZero() {
		start = h.svc.Now()
	}

	plan, err := h.svc.CreateTreatment(c.Request.Context(), callerID(c), care.NewTreatment{
		ProfileID:      req.ProfileID,
		MedicineName:   req.MedicineName,
		Dose:           parse.OptionalText(req.Dose),
		FrequencyHours: hours,
		DurationDays:   req.DurationDays,
		Start:          start,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, treatmentPlanResponse{
		Treatment: newTreatmentResponse(plan.Treatment, h.svc.Location()),
		Next:      plan.Next,
		Today:     newDoseResponses(plan.Today),
	})
}

// ListTreatments handles GET /api/profiles/:id/treatments, the active ones.
func (h *Handler) ListTreatments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetProfile(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	treatments, err := h.store.ListActiveTreatments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]treatmentResponse, len(treatments))
	for i := range treatments {
		resp[i] = newTreatmentResponse(&treatments[i], h.svc.Location())
	}
	c.JSON(http.StatusOK, resp)
}

type doseRequest struct {
	Time string `json:"time"`
}

// AdministerDose handles POST /api/treatments/:id/doses.
func (h *Handler) AdministerDose(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req doseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	at, ok := h.parseTime(c, "time", req.Time)
	if !ok {
		return
	}

	res, err := h.svc.AdministerDose(c.Request.Context(), callerID(c), id, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDoseLogResponse(res, h.svc.Location()))
}

// SnoozeDose handles POST /api/treatments/:id/snooze.
func (h *Handler) SnoozeDose(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	at, err := h.svc.SnoozeDose(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remind_at": at.In(h.svc.Location())})
}

type appointmentRequest struct {
	ProfileID  int64  `json:"profile_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Specialist string `json:"specialist" binding:"required"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
}

// CreateAppointment handles POST /api/appointments. The date is
// DD/MM/YYYY HH:MM or RFC 3339.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, ok := h.parseTime(c, "date", req.Date)
	if !ok {
		return
	}

	a, err := h.svc.CreateAppointment(c.Request.Context(), callerID(c), care.NewAppointment{
		ProfileID:  req.ProfileID,
		Date:       date,
		Specialist: req.Specialist,
		Location:   parse.OptionalText(req.Location),
		Notes:      parse.OptionalText(req.Notes),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAppointmentResponse(a, h.svc.Location()))
}

type resultsRequest struct {
	Weight answer `json:"weight_kg"`
	Height answer `json:"height_cm"`
	Head   answer `json:"head_circumference_cm"`
	Notes  string `json:"notes"`
}

// RecordResults handles POST /api/appointments/:id/results. Each measurement
// may be skipped with "x".
func (h *Handler) RecordResults(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var in care.Results
	fields := []struct {
		name string
		raw  answer
		dst  **float64
	}{
		{"weight_kg", req.Weight, &in.WeightKg},
		{"height_cm", req.Height, &in.HeightCm},
		{"head_circumference_cm", req.Head, &in.HeadCircumferenceCm},
	}
	for _, f := range fields {
		v, err := f.raw.optionalDecimal()
		if err != nil {
			badRequest(c, f.name+": "+err.Error())
			return
		}
		*f.dst = v
	}
	in.Notes = parse.OptionalText(req.Notes)

	a, err := h.svc.RecordResults(c.Request.Context(), callerID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAppointmentResponse(a, h.svc.Location()))
}

type reminderRequest struct {
	At    string      `json:"at" binding:"required"`
	Topic model.Topic `json:"topic"`
	Title string      `json:"title" binding:"required"`
	Body  string      `json:"body"`
}

// ScheduleReminder handles POST /api/reminders.
func (h *Handler) ScheduleReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	at, ok := h.parseTime(c, "at", req.At)
	if !ok {
		return
	}

	event, err := h.svc.ScheduleReminder(c.Request.Context(), care.CustomReminder{
		At:    at,
		Topic: req.Topic,
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": event.ID, "at": event.ScheduledTime.In(h.svc.Location())})
}
