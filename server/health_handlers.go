package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) dbCheck(c *gin.Context) {
	now, err := s.Health.Now(c.Request.Context())
	if err != nil {
		s.logger(c).Error("database connection error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "Database Connection FAILED",
			"error":   "Could not connect to PostgreSQL. Check credentials and server status.",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Database Connection OK", "timestamp": now})
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Health.Ping(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "unhealthy")
		return
	}
	c.String(http.StatusOK, "ok")
}
