package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/mw"
)

type registerRequest struct {
	care.Registration
	// Subscription lets a pending caregiver receive the approval notice.
	Subscription *putSubscriptionRequest `json:"subscription"`
}

// Register handles POST /api/caregivers/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	caregiver, err := h.svc.RegisterCaregiver(c.Request.Context(), req.Registration)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Subscription != nil {
		if err := h.store.UpsertSubscription(c.Request.Context(), req.Subscription.subscription(caregiver.ID)); err != nil {
			respondError(c, err)
			return
		}
	}

	status := http.StatusAccepted
	if caregiver.Active {
		status = http.StatusCreated
	}
	c.JSON(status, newCaregiverResponse(caregiver))
}

// Me returns the calling caregiver.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, newCaregiverResponse(mw.CurrentCaregiver(c)))
}

// ListCaregivers handles GET /api/caregivers. Pending requests are included
// unless active=true is passed.
func (h *Handler) ListCaregivers(c *gin.Context) {
	caregivers, err := h.store.ListCaregivers(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]caregiverResponse, len(caregivers))
	for i := range caregivers {
		resp[i] = newCaregiverResponse(&caregivers[i])
	}
	c.JSON(http.StatusOK, resp)
}

type approveRequest struct {
	Role     model.Role `json:"role"`
	Nickname string     `json:"nickname"`
}

// ApproveCaregiver handles POST /api/caregivers/:id/approve.
func (h *Handler) ApproveCaregiver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req approveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	caregiver, err := h.svc.ApproveCaregiver(c.Request.Context(), callerID(c), id, req.Role, req.Nickname)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCaregiverResponse(caregiver))
}

// RejectCaregiver handles DELETE /api/caregivers/:id.
func (h *Handler) RejectCaregiver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RejectCaregiver(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPreferences returns the caller's alert preferences.
func (h *Handler) GetPreferences(c *gin.Context) {
	pref, err := h.store.GetPreference(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPreferenceResponse(pref))
}

// TogglePreference handles POST /api/preferences/:topic/toggle.
func (h *Handler) TogglePreference(c *gin.Context) {
	topic := model.Topic(c.Param("topic"))
	if _, err := topic.Column(); err != nil {
		badRequest(c, err.Error())
		return
	}

	pref, err := h.store.TogglePreference(c.Request.Context(), callerID(c), topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPreferenceResponse(pref))
}
