package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/store"
)

// ProjectHandler handles project CRUD endpoints.
type ProjectHandler struct {
	store *store.Store
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(st *store.Store) *ProjectHandler {
	return &ProjectHandler{store: st}
}

type createProjectRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Environment domain.ProjectEnvironment `json:"environment"`
	Status      domain.ProjectStatus      `json:"status"`
	Artifacts   []domain.CodeArtifact     `json:"artifacts"`
}

type updateProjectRequest struct {
	Name        *string                    `json:"name"`
	Description *string                    `json:"description"`
	Environment *domain.ProjectEnvironment `json:"environment"`
	Status      *domain.ProjectStatus      `json:"status"`
	Artifacts   []domain.CodeArtifact      `json:"artifacts"`
}

// CreateProject handles POST /api/v1/projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	env := req.Environment
	if env == "" {
		env = domain.EnvironmentDev
	}
	status := req.Status
	if status == "" {
		status = domain.ProjectStatusActive
	}

	p := h.store.CreateProject(domain.Project{
		Name:        req.Name,
		Description: req.Description,
		Environment: env,
		Status:      status,
		Artifacts:   req.Artifacts,
	})
	c.JSON(http.StatusCreated, p)
}

// ListProjects handles GET /api/v1/projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListProjects())
}

// GetProject handles GET /api/v1/projects/:id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, ok := h.store.GetProject(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject handles PUT /api/v1/projects/:id. Updates to a missing
// project succeed with no effect, matching the store's lenient contract.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	h.store.UpdateProject(id, store.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Environment: req.Environment,
		Status:      req.Status,
		Artifacts:   req.Artifacts,
	})

	if p, ok := h.store.GetProject(id); ok {
		c.JSON(http.StatusOK, p)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// DeleteProject handles DELETE /api/v1/projects/:id. Jobs referencing the
// project are left in place.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	h.store.DeleteProject(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ProjectWorkflow handles GET /api/v1/projects/:id/workflow.
func (h *ProjectHandler) ProjectWorkflow(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListWorkflowLogs(c.Param("id")))
}
