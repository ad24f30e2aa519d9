package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"eprescription-dashboard/config"
	"eprescription-dashboard/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl, handler.IncludesToday)

	r.GET("/healthz", Healthz)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/dashboard", caching, handler.GetDashboard)
		api.GET("/dashboard/export", caching, handler.GetExport)

		api.GET("/doctors", handler.GetDoctors)
		api.GET("/shipment-types", handler.GetShipmentTypes)
		api.GET("/range", handler.GetRange)
	}

	return r
}
