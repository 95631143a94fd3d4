package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing dependency.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// CatalogStatus reports how the nutrition catalog was loaded.
type CatalogStatus interface {
	Len() int
	Degraded() bool
}

type HealthHandler struct {
	db      Pinger
	catalog CatalogStatus
}

func NewHealthHandler(db Pinger, catalog CatalogStatus) *HealthHandler {
	return &HealthHandler{db: db, catalog: catalog}
}

func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.Health)
}

// Health returns 200 when the database answers and 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{
		"status":          "healthy",
		"catalog_entries": h.catalog.Len(),
		"catalog_status":  "ok",
	}
	if h.catalog.Degraded() {
		body["catalog_status"] = "degraded"
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		body["status"] = "unhealthy"
		body["error"] = "database unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
