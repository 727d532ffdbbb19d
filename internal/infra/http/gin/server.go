package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"concierge/internal/infra/config"
	"concierge/internal/infra/obs"
)

type ConciergeHTTP interface {
	Plan(c *gin.Context)
	PlanFromBooking(c *gin.Context)
	Query(c *gin.Context)
	Chat(c *gin.Context)
	LatestPlan(c *gin.Context)
	ExportPlan(c *gin.Context)
}

type Handlers struct {
	Concierge ConciergeHTTP
	// RateLimit guards the /api/concierge group when set.
	RateLimit gin.HandlerFunc
	Metrics   http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/", serviceInfo)
	router.GET("/health", health.Health)
	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/concierge")
	if h.RateLimit != nil {
		api.Use(h.RateLimit)
	}
	if h.Concierge != nil {
		api.POST("/plan", h.Concierge.Plan)
		api.POST("/plan-from-booking", h.Concierge.PlanFromBooking)
		api.POST("/query", h.Concierge.Query)
		api.POST("/chat", h.Concierge.Chat)
		api.GET("/plans/:booking_id", h.Concierge.LatestPlan)
		api.POST("/plans/:booking_id/export", h.Concierge.ExportPlan)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// Credentials cannot be combined with a literal wildcard origin.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "AI Concierge Agent",
		"version": "1.0.0",
		"status":  "running",
	})
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
