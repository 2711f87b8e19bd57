package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/store"
)

// StatsHandler exposes per-collection record counts.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(st *store.Store) *StatsHandler {
	return &StatsHandler{store: st}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}
