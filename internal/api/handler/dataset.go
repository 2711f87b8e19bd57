package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/dataset"
	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/storage"
	"github.com/mlstage/mlstage/internal/store"
)

var (
	errJobNotFound = errors.New("dataset job not found")
	errNoUpload    = errors.New("dataset job has no uploaded file")
)

// DatasetHandler handles CSV dataset uploads.
type DatasetHandler struct {
	store   *store.Store
	storage storage.ObjectStorage
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(st *store.Store, objStorage storage.ObjectStorage) *DatasetHandler {
	return &DatasetHandler{store: st, storage: objStorage}
}

// Upload handles POST /api/v1/datasets/upload. The multipart form carries
// the CSV file plus project_id and optional name/model_id/classification
// fields. The parsed shape and column list land on a completed ingestion
// job; the raw bytes go to object storage.
func (h *DatasetHandler) Upload(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required: " + err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload: " + err.Error()})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}

	ds := dataset.Parse(string(content))
	rows, cols := ds.Shape()

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	completed := domain.JobStatusCompleted
	job := h.store.CreateIngestionJob(domain.IngestionJob{
		ProjectID:      projectID,
		ModelID:        c.PostForm("model_id"),
		Name:           name,
		SourceType:     domain.DataSourceFile,
		Classification: c.PostForm("classification"),
		File: &domain.FileMeta{
			Name: fileHeader.Filename,
			Size: fileHeader.Size,
			Type: fileHeader.Header.Get("Content-Type"),
		},
		Status: completed,
		OutputShape: &domain.DataShape{
			Rows:    rows,
			Columns: cols,
		},
		OutputColumns: ds.Columns,
	})

	key := fmt.Sprintf("datasets/%s/%s", job.ID, filepath.Base(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}
	if err := h.storage.Upload(c.Request.Context(), key, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		h.store.DeleteIngestionJob(job.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store dataset: " + err.Error()})
		return
	}

	h.store.UpdateIngestionJob(job.ID, store.IngestionJobPatch{StorageKey: &key})
	job, _ = h.store.GetIngestionJob(job.ID)
	c.JSON(http.StatusCreated, job)
}
