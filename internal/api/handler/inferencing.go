package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// InferencingHandler handles inferencing job endpoints.
type InferencingHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewInferencingHandler creates a new inferencing handler.
func NewInferencingHandler(st *store.Store, rn *runner.Runner) *InferencingHandler {
	return &InferencingHandler{store: st, runner: rn}
}

type createInferencingRequest struct {
	ProjectID        string `json:"project_id" binding:"required"`
	ModelID          string `json:"model_id" binding:"required"`
	PreparationJobID string `json:"preparation_job_id"`
}

// CreateJob handles POST /api/v1/inferencing-jobs.
func (h *InferencingHandler) CreateJob(c *gin.Context) {
	var req createInferencingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	j := h.store.CreateInferencingJob(domain.InferencingJob{
		ProjectID:        req.ProjectID,
		ModelID:          req.ModelID,
		PreparationJobID: req.PreparationJobID,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/inferencing-jobs.
func (h *InferencingHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListInferencingJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/inferencing-jobs/:id.
func (h *InferencingHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetInferencingJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inferencing job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/inferencing-jobs/:id.
func (h *InferencingHandler) DeleteJob(c *gin.Context) {
	h.store.DeleteInferencingJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/inferencing-jobs/:id/run.
func (h *InferencingHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunInferencing(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetInferencingJob(id)
	c.JSON(http.StatusAccepted, j)
}
