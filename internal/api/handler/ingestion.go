package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// IngestionHandler handles ingestion job endpoints.
type IngestionHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewIngestionHandler creates a new ingestion handler.
func NewIngestionHandler(st *store.Store, rn *runner.Runner) *IngestionHandler {
	return &IngestionHandler{store: st, runner: rn}
}

type createIngestionRequest struct {
	ProjectID      string                `json:"project_id" binding:"required"`
	ModelID        string                `json:"model_id"`
	Name           string                `json:"name" binding:"required"`
	SourceType     domain.DataSourceType `json:"source_type"`
	Classification string                `json:"classification"`
	File           *domain.FileMeta      `json:"file"`
}

// CreateJob handles POST /api/v1/ingestion-jobs.
func (h *IngestionHandler) CreateJob(c *gin.Context) {
	var req createIngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = domain.DataSourceFile
	}

	j := h.store.CreateIngestionJob(domain.IngestionJob{
		ProjectID:      req.ProjectID,
		ModelID:        req.ModelID,
		Name:           req.Name,
		SourceType:     sourceType,
		Classification: req.Classification,
		File:           req.File,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/ingestion-jobs. The optional model_id
// filter takes precedence over project_id.
func (h *IngestionHandler) ListJobs(c *gin.Context) {
	if modelID := c.Query("model_id"); modelID != "" {
		c.JSON(http.StatusOK, h.store.ListIngestionJobsForModel(modelID))
		return
	}
	c.JSON(http.StatusOK, h.store.ListIngestionJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/ingestion-jobs/:id.
func (h *IngestionHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetIngestionJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingestion job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/ingestion-jobs/:id. A pending
// completion timer is left alone; the runner drops its update when it
// fires against the removed job.
func (h *IngestionHandler) DeleteJob(c *gin.Context) {
	h.store.DeleteIngestionJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/ingestion-jobs/:id/run.
func (h *IngestionHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunIngestion(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetIngestionJob(id)
	c.JSON(http.StatusAccepted, j)
}
