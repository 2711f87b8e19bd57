package handler

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/store"
)

// ModelHandler handles registry model endpoints, including the mock
// inference surface served for registered models.
type ModelHandler struct {
	store *store.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewModelHandler creates a new model handler.
func NewModelHandler(st *store.Store) *ModelHandler {
	return &ModelHandler{
		store: st,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type createModelRequest struct {
	ProjectID string              `json:"project_id" binding:"required"`
	Name      string              `json:"name" binding:"required"`
	Version   string              `json:"version"`
	ModelType string              `json:"model_type"`
	Stage     domain.ModelStage   `json:"stage"`
	Metrics   domain.ModelMetrics `json:"metrics"`
}

type updateModelRequest struct {
	Name      *string              `json:"name"`
	Version   *string              `json:"version"`
	ModelType *string              `json:"model_type"`
	Stage     *domain.ModelStage   `json:"stage"`
	Status    *domain.ModelStatus  `json:"status"`
	Metrics   *domain.ModelMetrics `json:"metrics"`
}

// CreateModel handles POST /api/v1/models. New versions register in stage
// "staging" unless the request says otherwise.
func (h *ModelHandler) CreateModel(c *gin.Context) {
	var req createModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	version := req.Version
	if version == "" {
		version = "1"
	}

	m := h.store.CreateModel(domain.RegistryModel{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Version:   version,
		ModelType: req.ModelType,
		Stage:     req.Stage,
		Metrics:   req.Metrics,
	})
	c.JSON(http.StatusCreated, m)
}

// ListModels handles GET /api/v1/models with optional project_id, stage
// and name filters.
func (h *ModelHandler) ListModels(c *gin.Context) {
	filter := store.ModelFilter{
		ProjectID: c.Query("project_id"),
		Stage:     domain.ModelStage(c.Query("stage")),
		Name:      c.Query("name"),
	}
	c.JSON(http.StatusOK, h.store.ListModels(filter))
}

// GetModel handles GET /api/v1/models/:id.
func (h *ModelHandler) GetModel(c *gin.Context) {
	m, ok := h.store.GetModel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateModel handles PUT /api/v1/models/:id.
func (h *ModelHandler) UpdateModel(c *gin.Context) {
	var req updateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	h.store.UpdateModel(id, store.RegistryModelPatch{
		Name:      req.Name,
		Version:   req.Version,
		ModelType: req.ModelType,
		Stage:     req.Stage,
		Status:    req.Status,
		Metrics:   req.Metrics,
	})

	if m, ok := h.store.GetModel(id); ok {
		c.JSON(http.StatusOK, m)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// DeleteModel handles DELETE /api/v1/models/:id.
func (h *ModelHandler) DeleteModel(c *gin.Context) {
	h.store.DeleteModel(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ListVersions handles GET /api/v1/models/:id/versions: every registered
// version sharing the model's name.
func (h *ModelHandler) ListVersions(c *gin.Context) {
	m, ok := h.store.GetModel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}
	c.JSON(http.StatusOK, h.store.ListModelVersions(m.Name))
}

// PromoteModel handles POST /api/v1/models/:id/promote, moving the
// version from staging to production.
func (h *ModelHandler) PromoteModel(c *gin.Context) {
	id := c.Param("id")
	m, ok := h.store.GetModel(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}
	if m.Stage == domain.StageProduction {
		c.JSON(http.StatusConflict, gin.H{"error": "Model is already in production"})
		return
	}

	production := domain.StageProduction
	h.store.UpdateModel(id, store.RegistryModelPatch{Stage: &production})

	m, _ = h.store.GetModel(id)
	c.JSON(http.StatusOK, m)
}

type predictRequest struct {
	Features []float64 `json:"features" binding:"required"`
}

type batchPredictRequest struct {
	Instances [][]float64 `json:"instances" binding:"required"`
}

// Predict handles POST /api/v1/models/:id/predict. Predictions are
// simulated; only registered models serve.
func (h *ModelHandler) Predict(c *gin.Context) {
	start := time.Now()

	m, ok := h.store.GetModel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}
	if m.Status == domain.ModelStatusArchived {
		c.JSON(http.StatusConflict, gin.H{"error": "Model is archived"})
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	p := h.mockPrediction()
	c.JSON(http.StatusOK, gin.H{
		"prediction":    p.Value,
		"confidence":    p.Confidence,
		"model_name":    m.Name,
		"model_version": m.Version,
		"latency_ms":    time.Since(start).Milliseconds(),
	})
}

// BatchPredict handles POST /api/v1/models/:id/batch-predict.
func (h *ModelHandler) BatchPredict(c *gin.Context) {
	start := time.Now()

	m, ok := h.store.GetModel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}
	if m.Status == domain.ModelStatusArchived {
		c.JSON(http.StatusConflict, gin.H{"error": "Model is archived"})
		return
	}

	var req batchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	predictions := make([]domain.Prediction, len(req.Instances))
	for i := range req.Instances {
		predictions[i] = h.mockPrediction()
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions":   predictions,
		"count":         len(predictions),
		"model_name":    m.Name,
		"model_version": m.Version,
		"latency_ms":    time.Since(start).Milliseconds(),
	})
}

// Metrics handles GET /api/v1/models/:id/metrics, the mock serving
// counters the dashboard polls for a deployed model.
func (h *ModelHandler) Metrics(c *gin.Context) {
	m, ok := h.store.GetModel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	h.mu.Lock()
	inferences := 500 + h.rng.Intn(1500)
	latency := 20 + 40*h.rng.Float64()
	errors := h.rng.Intn(5)
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"inferences_total":     inferences,
		"inference_latency_ms": latency,
		"model_errors_total":   errors,
		"model_name":           m.Name,
		"model_version":        m.Version,
	})
}

func (h *ModelHandler) mockPrediction() domain.Prediction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return domain.Prediction{
		Value:      h.rng.Float64(),
		Confidence: 0.7 + 0.3*h.rng.Float64(),
	}
}
