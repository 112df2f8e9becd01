package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"babycare-backend/config"
	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/mw"
	"babycare-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, svc *care.Service, s store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(svc, s, webpushOptions)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	ownerOnly := mw.RequireRole(model.RoleOwner)
	managers := mw.RequireRole(model.RoleOwner, model.RoleAdmin)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/health", handler.Health)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
		api.POST("/caregivers/register", handler.Register)
	}

	// Everything else needs an approved caregiver. Writes flush the cache.
	auth := api.Group("")
	auth.Use(mw.RequireCaregiver(svc), mw.Invalidate(cacheStore))
	{
		auth.GET("/me", handler.Me)
		auth.GET("/caregivers", ownerOnly, handler.ListCaregivers)
		auth.POST("/caregivers/:id/approve", ownerOnly, handler.ApproveCaregiver)
		auth.DELETE("/caregivers/:id", ownerOnly, handler.RejectCaregiver)

		auth.GET("/preferences", handler.GetPreferences)
		auth.POST("/preferences/:topic/toggle", handler.TogglePreference)

		auth.GET("/subscriptions", handler.GetSubscription)
		auth.PUT("/subscriptions", handler.PutSubscription)
		auth.DELETE("/subscriptions", handler.DeleteSubscription)

		auth.GET("/profiles", caching, handler.ListProfiles)
		auth.POST("/profiles", managers, handler.CreateProfile)
		auth.GET("/profiles/:id/summary", handler.DaySummary)
		auth.GET("/profiles/:id/next", handler.WhatIsNext)
		auth.GET("/profiles/:id/treatments", caching, handler.ListTreatments)

		auth.GET("/diaper-sizes", caching, handler.ListDiaperSizes)
		auth.POST("/diaper-sizes", managers, handler.CreateDiaperSize)
		auth.POST("/diaper-sizes/:id/toggle", managers, handler.ToggleDiaperSize)
		auth.GET("/inventory", caching, handler.ListInventory)
		auth.POST("/inventory/restock", handler.Restock)

		auth.POST("/diapers", handler.RecordDiaper)
		auth.POST("/diapers/import", ownerOnly, handler.ImportDiapers)
		auth.POST("/feedings", handler.RecordFeeding)

		auth.POST("/treatments", handler.CreateTreatment)
		auth.POST("/treatments/:id/doses", handler.AdministerDose)
		auth.POST("/treatments/:id/snooze", handler.SnoozeDose)

		auth.POST("/appointments", handler.CreateAppointment)
		auth.POST("/appointments/:id/results", handler.RecordResults)
		auth.POST("/reminders", handler.ScheduleReminder)

		auth.GET("/settings", caching, handler.ListSettings)
		auth.PUT("/settings/:key", managers, handler.UpdateSetting)
	}

	return r
}
