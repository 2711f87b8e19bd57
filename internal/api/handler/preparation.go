package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// PreparationHandler handles preparation job endpoints.
type PreparationHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewPreparationHandler creates a new preparation handler.
func NewPreparationHandler(st *store.Store, rn *runner.Runner) *PreparationHandler {
	return &PreparationHandler{store: st, runner: rn}
}

type createPreparationRequest struct {
	ProjectID      string `json:"project_id" binding:"required"`
	IngestionJobID string `json:"ingestion_job_id"`
	Name           string `json:"name" binding:"required"`
}

// CreateJob handles POST /api/v1/preparation-jobs.
func (h *PreparationHandler) CreateJob(c *gin.Context) {
	var req createPreparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	j := h.store.CreatePreparationJob(domain.PreparationJob{
		ProjectID:      req.ProjectID,
		IngestionJobID: req.IngestionJobID,
		Name:           req.Name,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/preparation-jobs.
func (h *PreparationHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListPreparationJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/preparation-jobs/:id.
func (h *PreparationHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetPreparationJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preparation job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/preparation-jobs/:id.
func (h *PreparationHandler) DeleteJob(c *gin.Context) {
	h.store.DeletePreparationJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/preparation-jobs/:id/run.
func (h *PreparationHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunPreparation(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetPreparationJob(id)
	c.JSON(http.StatusAccepted, j)
}
