package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// HealthCheck 供部署平台探活：只检查数据库能否在超时内响应
func (a *API) HealthCheck(c *gin.Context) {
	if a.pinger == nil {
		respondHealth(c, http.StatusInternalServerError, "database handle unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if err := a.pinger.PingContext(ctx); err != nil {
		a.log.WithError(err).Warn("health check ping failed")
		respondHealth(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

func respondHealth(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}
