package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"quality-control-backend/config"
	"quality-control-backend/internal/mw"
	"quality-control-backend/internal/processor"
	"quality-control-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, p *processor.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, p, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Products and dimensions
		api.GET("/products", GetProducts(db))
		api.POST("/products", handler.PostProduct)
		api.DELETE("/products/:product_id", handler.DeleteProduct)
		api.GET("/products/:product_id/dimensions", GetDimensions(db))
		api.POST("/products/:product_id/dimensions", handler.PostDimension)
		api.PUT("/dimensions/:dimension_id", handler.PutDimension)
		api.DELETE("/dimensions/:dimension_id", handler.DeleteDimension)

		// Measurement submission and reporting
		api.POST("/measurements", handler.PostMeasurements)
		api.GET("/measurements/recent", handler.GetRecentMeasurements)

		// Molds and maintenance
		api.GET("/molds", handler.GetMolds)
		api.GET("/molds/:mold_id", handler.GetMoldDetail)
		api.PUT("/molds/:mold_id/threshold", handler.PutMoldThreshold)
		api.POST("/molds/:mold_id/problems", handler.PostMoldProblem)
		api.POST("/molds/:mold_id/maintenance", handler.PostMaintenance)
		api.POST("/molds/:mold_id/rework", handler.PostRework)
		api.POST("/maintenance/:maintenance_id/complete", handler.PostCompleteMaintenance)
		api.POST("/rework/:rework_id/complete", handler.PostCompleteRework)

		// Dashboard (read-only, cached)
		api.GET("/dashboard/molds", caching, GetMoldsDashboard(db))

		// Maintenance alert subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
