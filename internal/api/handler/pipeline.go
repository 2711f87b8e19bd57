package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// defaultPipelineStages is the stage sequence used when a pipeline is
// created without an explicit stage list.
var defaultPipelineStages = []string{"ingest", "prepare", "train", "deploy"}

// PipelineHandler handles pipeline job endpoints.
type PipelineHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(st *store.Store, rn *runner.Runner) *PipelineHandler {
	return &PipelineHandler{store: st, runner: rn}
}

type createPipelineRequest struct {
	ProjectID string   `json:"project_id" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Stages    []string `json:"stages"`
}

// CreateJob handles POST /api/v1/pipeline-jobs.
func (h *PipelineHandler) CreateJob(c *gin.Context) {
	var req createPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	names := req.Stages
	if len(names) == 0 {
		names = defaultPipelineStages
	}
	stages := make([]domain.PipelineStage, len(names))
	for i, name := range names {
		stages[i] = domain.PipelineStage{Name: name, Status: domain.JobStatusCreated}
	}

	j := h.store.CreatePipelineJob(domain.PipelineJob{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Stages:    stages,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/pipeline-jobs.
func (h *PipelineHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListPipelineJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/pipeline-jobs/:id.
func (h *PipelineHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetPipelineJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pipeline job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/pipeline-jobs/:id.
func (h *PipelineHandler) DeleteJob(c *gin.Context) {
	h.store.DeletePipelineJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/pipeline-jobs/:id/run. Stages advance one
// at a time on chained timers.
func (h *PipelineHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunPipeline(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetPipelineJob(id)
	c.JSON(http.StatusAccepted, j)
}
