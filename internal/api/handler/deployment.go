package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/store"
)

// DeploymentHandler handles deployment job endpoints.
type DeploymentHandler struct {
	store  *store.Store
	runner *runner.Runner
}

// NewDeploymentHandler creates a new deployment handler.
func NewDeploymentHandler(st *store.Store, rn *runner.Runner) *DeploymentHandler {
	return &DeploymentHandler{store: st, runner: rn}
}

type createDeploymentRequest struct {
	ProjectID     string                    `json:"project_id" binding:"required"`
	ModelID       string                    `json:"model_id" binding:"required"`
	Environment   domain.ProjectEnvironment `json:"environment"`
	ContainerName string                    `json:"container_name"`
}

// CreateJob handles POST /api/v1/deployment-jobs.
func (h *DeploymentHandler) CreateJob(c *gin.Context) {
	var req createDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	env := req.Environment
	if env == "" {
		env = domain.EnvironmentDev
	}

	j := h.store.CreateDeploymentJob(domain.DeploymentJob{
		ProjectID:     req.ProjectID,
		ModelID:       req.ModelID,
		Environment:   env,
		ContainerName: req.ContainerName,
	})
	c.JSON(http.StatusCreated, j)
}

// ListJobs handles GET /api/v1/deployment-jobs.
func (h *DeploymentHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListDeploymentJobs(c.Query("project_id")))
}

// GetJob handles GET /api/v1/deployment-jobs/:id.
func (h *DeploymentHandler) GetJob(c *gin.Context) {
	j, ok := h.store.GetDeploymentJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deployment job not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// DeleteJob handles DELETE /api/v1/deployment-jobs/:id.
func (h *DeploymentHandler) DeleteJob(c *gin.Context) {
	h.store.DeleteDeploymentJob(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RunJob handles POST /api/v1/deployment-jobs/:id/run. The rollout walks
// building -> deploying -> active, appending log lines along the way.
func (h *DeploymentHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.RunDeployment(id, 0); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	j, _ := h.store.GetDeploymentJob(id)
	c.JSON(http.StatusAccepted, j)
}
