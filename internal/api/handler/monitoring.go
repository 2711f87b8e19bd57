package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// MonitoringHandler handles monitoring job endpoints.
type MonitoringHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewMonitoringHandler creates a new monitoring handler.
func NewMonitoringHandler(st *store.Store, rn *runner.Runner) *MonitoringHandler {
	return &MonitoringHandler{store: st, runner: rn}
}

type createMonitoringRequest struct {
	ProjectID    string `json:"project_id" binding:"required"`
	ModelID      string `json:"model_id" binding:"required"`
	DatasetJobID string `json:"dataset_job_id"`
}

// CreateJob handles POST /api/v1/monitoring-jobs.
func (h *MonitoringHandler) CreateJob(c *gin.Context) {
	var req createMonitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	j := h.store.CreateMonitoringJob(domain.MonitoringJob{
		ProjectID:    req.ProjectID,
		ModelID:      req.ModelID,
		DatasetJobID: req.DatasetJobID,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/monitoring-jobs.
func (h *MonitoringHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListMonitoringJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/monitoring-jobs/:id.
func (h *MonitoringHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetMonitoringJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Monitoring job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/monitoring-jobs/:id.
func (h *MonitoringHandler) DeleteJob(c *gin.Context) {
	h.store.DeleteMonitoringJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/monitoring-jobs/:id/run. Completion records
// a drift metrics snapshot on the job.
func (h *MonitoringHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunMonitoring(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetMonitoringJob(id)
	c.JSON(http.StatusAccepted, j)
}
