package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

func (req *putSubscriptionRequest) subscription(caregiverID int64) *model.PushSubscription {
	return &model.PushSubscription{
		Endpoint:    req.Endpoint,
		P256DH:      req.P256DH,
		Auth:        req.Auth,
		CaregiverID: caregiverID,
	}
}

// PutSubscription handles the creation or replacement of the caller's
// subscription. An endpoint moves to the caller if another caregiver held it.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.store.UpsertSubscription(c.Request.Context(), req.subscription(callerID(c))); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sub, err := h.ownSubscription(c.Request.Context(), callerID(c), req.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), sub.Endpoint); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription reports whether an endpoint is registered for the caller.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		badRequest(c, "endpoint is required")
		return
	}

	sub, err := h.ownSubscription(c.Request.Context(), callerID(c), endpoint)
	if err != nil {
		respondError(c, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "created_at": sub.CreatedAt})
}

func (h *Handler) ownSubscription(ctx context.Context, caregiverID int64, endpoint string) (*model.PushSubscription, error) {
	subs, err := h.store.SubscriptionsForCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].Endpoint == endpoint {
			return &subs[i], nil
		}
	}
	return nil, nil
}

// GetVAPIDPublicKey returns the key browsers need to subscribe, together
// with how long pushes are kept by the push service.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey, "ttl_seconds": h.webpush.TTL})
}
