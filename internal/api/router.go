package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Occupancy
		api.GET("/zones", caching, handler.GetZones)
		api.POST("/vehicles", handler.AddVehicle)
		api.DELETE("/vehicles/:id", handler.RemoveVehicle)
		api.POST("/vehicles/:id/move", handler.MoveVehicle)
		api.GET("/vehicles/:id/fee", handler.GetFeePreview)

		// Search and ledger
		api.GET("/search", handler.Search)
		api.GET("/history", caching, handler.GetHistory)

		// Recognition
		api.POST("/scan", handler.Scan)

		// CSV exports
		api.GET("/export/current.csv", handler.ExportCurrent)
		api.GET("/export/checkins.csv", handler.ExportCheckins)
		api.GET("/export/checkouts.csv", handler.ExportCheckouts)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
