package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentworks/equipment-rental-backend/internal/database"
)

// HealthHandler serves liveness/readiness probes
type HealthHandler struct {
	db database.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports service and database health
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
