package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"babycare-backend/internal/care"
	"babycare-backend/internal/mw"
	"babycare-backend/internal/parse"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *care.Service
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *care.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:     svc,
		store:   s,
		webpush: webpushOptions,
	}
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	var invalidSchedule *schedule.InvalidScheduleError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalidSchedule):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, care.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, care.ErrForbidden), errors.Is(err, care.ErrInactiveCaregiver):
		status = http.StatusForbidden
	case errors.Is(err, care.ErrAlreadyCompleted), errors.Is(err, care.ErrTreatmentFinished),
		errors.Is(err, care.ErrReminderPending):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func callerID(c *gin.Context) int64 {
	return mw.CurrentCaregiver(c).ID
}

// parseTime resolves a request time field. Empty yields the zero time,
// which the service reads as now.
func (h *Handler) parseTime(c *gin.Context, field, raw string) (time.Time, bool) {
	t, err := parse.Time(raw, h.svc.Now(), h.svc.Location())
	if err != nil {
		badRequest(c, field+": "+err.Error())
		return time.Time{}, false
	}
	return t, true
}

// Health reports that the server is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": h.svc.Now()})
}
