package handlers

import (
	"campusbuddy/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router builds the gin engine with the global middleware chain and every
// route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(h.logger),
		h.monitor.Metrics().RequestMetricsMiddleware(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			h.logger.Error("panic recovered",
				zap.Any("panic", recovered),
				zap.String("request_id", middleware.RequestIDFromContext(c)),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}),
	)
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/api/status", h.Status)
	if h.cfg.Monitoring.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(h.monitor.Metrics().Handler()))
	}

	auth := router.Group("/api/auth")
	if h.cfg.RateLimit.Enabled {
		auth.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(h.cfg.RateLimit)))
	}
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	monitor := router.Group("/api/monitor")
	monitor.GET("/status", h.MonitorStatus)
	monitor.GET("/connections", h.MonitorConnections)
	monitor.GET("/runtime", h.MonitorRuntime)
	monitor.GET("/activity", h.MonitorActivity)
	monitor.GET("/all", h.MonitorAll)
	monitor.GET("/help", h.MonitorHelp)
	monitor.GET("/snapshot", h.MonitorSnapshot)

	api := router.Group("/api", middleware.AuthMiddleware(h.tokens))
	api.GET("/auth/verify", h.VerifyToken)
	api.PUT("/auth/profile", h.UpdateProfile)
	api.GET("/profile", h.GetProfile)
	api.GET("/match", h.GetMatches)

	api.GET("/events", h.GetEvents)
	api.POST("/events/join", h.JoinEvent)
	admin := api.Group("", middleware.RequireAdmin())
	admin.GET("/events/all", h.GetAllEvents)
	admin.POST("/events", h.CreateEvent)
	admin.DELETE("/events/:id", h.DeleteEvent)

	api.GET("/wellness", h.GetWellnessTip)
	api.GET("/wellness/moods", h.GetMoods)
	api.GET("/wellness/history", h.CheckinHistory)
	api.POST("/wellness/checkin", h.Checkin)
}
