package mw

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/store"
)

// CaregiverHeader carries the caller's caregiver id.
const CaregiverHeader = "X-Caregiver-ID"

const caregiverKey = "caregiver"

// Authorizer resolves an active caregiver.
type Authorizer interface {
	Authorize(ctx context.Context, id int64) (*model.Caregiver, error)
}

// RequireCaregiver rejects requests without an active caregiver and stores
// the caregiver in the context.
func RequireCaregiver(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(CaregiverHeader), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + CaregiverHeader})
			return
		}

		caregiver, err := auth.Authorize(c.Request.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown caregiver"})
			return
		case errors.Is(err, care.ErrInactiveCaregiver):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "waiting for approval"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Set(caregiverKey, caregiver)
		c.Next()
	}
}

// RequireRole only lets caregivers with one of the roles through.
// It must run after RequireCaregiver.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caregiver := CurrentCaregiver(c)
		if caregiver == nil || !slices.Contains(roles, caregiver.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed for your role"})
			return
		}
		c.Next()
	}
}

// CurrentCaregiver returns the caregiver stored by RequireCaregiver.
func CurrentCaregiver(c *gin.Context) *model.Caregiver {
	v, ok := c.Get(caregiverKey)
	if !ok {
		return nil
	}
	caregiver, _ := v.(*model.Caregiver)
	return caregiver
}
