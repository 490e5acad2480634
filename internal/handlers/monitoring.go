package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) checkMonitoringToken(c *gin.Context) bool {
	expected := strings.TrimSpace(h.cfg.Monitoring.APIKey)
	if expected == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitoring API is disabled"})
		return false
	}

	provided := strings.TrimSpace(c.GetHeader("X-Monitoring-Key"))
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid monitoring key"})
		return false
	}
	return true
}

func (h *Handler) MonitorStatus(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	ctx, cancel := h.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.StatusText(ctx)})
}

func (h *Handler) MonitorConnections(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.ConnectionsText()})
}

func (h *Handler) MonitorRuntime(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.RuntimeText()})
}

func (h *Handler) MonitorActivity(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	ctx, cancel := h.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.ActivityText(ctx)})
}

func (h *Handler) MonitorAll(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	ctx, cancel := h.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.AllText(ctx)})
}

func (h *Handler) MonitorHelp(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": h.monitor.HelpText()})
}

func (h *Handler) MonitorSnapshot(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	ctx, cancel := h.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, h.monitor.Snapshot(ctx))
}
