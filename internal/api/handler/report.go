package handler

import (
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/dataset"
	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/drift"
	"github.com/mlstage/mlstage/internal/storage"
	"github.com/mlstage/mlstage/internal/store"
)

// ReportHandler handles drift report configuration endpoints and runs
// report evaluations against uploaded datasets.
type ReportHandler struct {
	store    *store.Store
	storage  storage.ObjectStorage
	detector *drift.Detector
}

// NewReportHandler creates a new report handler.
func NewReportHandler(st *store.Store, objStorage storage.ObjectStorage, detector *drift.Detector) *ReportHandler {
	return &ReportHandler{store: st, storage: objStorage, detector: detector}
}

type createReportRequest struct {
	ModelID        string   `json:"model_id" binding:"required"`
	BaselineJobID  string   `json:"baseline_job_id"`
	ReferenceJobID string   `json:"reference_job_id"`
	MetricIDs      []string `json:"metric_ids"`
	DriftMetricIDs []string `json:"drift_metric_ids"`
}

type updateReportRequest struct {
	ModelID        *string  `json:"model_id"`
	BaselineJobID  *string  `json:"baseline_job_id"`
	ReferenceJobID *string  `json:"reference_job_id"`
	MetricIDs      []string `json:"metric_ids"`
	DriftMetricIDs []string `json:"drift_metric_ids"`
}

// CreateReport handles POST /api/v1/reports.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	r := h.store.CreateReport(domain.ReportConfiguration{
		ModelID:        req.ModelID,
		BaselineJobID:  req.BaselineJobID,
		ReferenceJobID: req.ReferenceJobID,
		MetricIDs:      req.MetricIDs,
		DriftMetricIDs: req.DriftMetricIDs,
	})
	c.JSON(http.StatusCreated, r)
}

// ListReports handles GET /api/v1/reports with an optional model_id filter.
func (h *ReportHandler) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListReports(c.Query("model_id")))
}

// GetReport handles GET /api/v1/reports/:id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	r, ok := h.store.GetReport(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// UpdateReport handles PUT /api/v1/reports/:id.
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	h.store.UpdateReport(id, store.ReportPatch{
		ModelID:        req.ModelID,
		BaselineJobID:  req.BaselineJobID,
		ReferenceJobID: req.ReferenceJobID,
		MetricIDs:      req.MetricIDs,
		DriftMetricIDs: req.DriftMetricIDs,
	})

	if r, ok := h.store.GetReport(id); ok {
		c.JSON(http.StatusOK, r)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// DeleteReport handles DELETE /api/v1/reports/:id.
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	h.store.DeleteReport(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// EvaluateReport handles POST /api/v1/reports/:id/evaluate. Both
// configured dataset jobs must carry an uploaded file; the drift metrics
// run over the numeric columns the two datasets share.
func (h *ReportHandler) EvaluateReport(c *gin.Context) {
	r, ok := h.store.GetReport(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	baseline, err := h.loadDataset(c, r.BaselineJobID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Baseline dataset unavailable: " + err.Error()})
		return
	}
	reference, err := h.loadDataset(c, r.ReferenceJobID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Reference dataset unavailable: " + err.Error()})
		return
	}

	baseCols := baseline.NumericColumns()
	refCols := reference.NumericColumns()

	features := []string{}
	for name := range baseCols {
		if _, ok := refCols[name]; ok {
			features = append(features, name)
		}
	}
	sort.Strings(features)
	if len(features) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Datasets share no numeric columns"})
		return
	}

	dataDrift := h.detector.DataDrift(baseCols, refCols, features)

	psi := map[string]float64{}
	for _, f := range features {
		psi[f] = drift.PSI(baseCols[f], refCols[f], 10)
	}

	// Prediction drift runs over the first shared feature, which for an
	// inference output dataset is the prediction column itself.
	predDrift := h.detector.PredictionDrift(refCols[features[0]], baseCols[features[0]])

	c.JSON(http.StatusOK, gin.H{
		"report_id":        r.ID,
		"model_id":         r.ModelID,
		"features":         features,
		"data_drift":       dataDrift,
		"prediction_drift": predDrift,
		"psi":              psi,
		"checked_at":       domain.Now(),
	})
}

// loadDataset pulls the raw file an ingestion job stored and parses it.
func (h *ReportHandler) loadDataset(c *gin.Context, jobID string) (*dataset.Dataset, error) {
	job, ok := h.store.GetIngestionJob(jobID)
	if !ok {
		return nil, errJobNotFound
	}
	if job.StorageKey == "" {
		return nil, errNoUpload
	}

	rc, err := h.storage.Download(c.Request.Context(), job.StorageKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return dataset.Parse(string(content)), nil
}
