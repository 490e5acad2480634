package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName    = "CampusBuddy API"
	serviceVersion = "0.1.0"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}

func (h *Handler) Status(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	status := "operational"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"service": serviceName,
		"version": serviceVersion,
		"status":  status,
	})
}
