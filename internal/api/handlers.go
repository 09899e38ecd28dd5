package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/metrics"
)

// Landing renders the static home page.
func Landing(render *Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		render.HTML(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
	}
}

// HealthHandler reports whether the service and its database are up.
type HealthHandler struct {
	db  database.Pinger
	log *zap.Logger
}

func NewHealthHandler(db database.Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log.Named("health")}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.log.Warn("database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "ok",
	})
}

// Metrics serves the prometheus registry.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return gin.WrapH(m.Handler())
}
