// Package client is a small Go SDK for the mlstage HTTP API. It covers
// the operations the seeder and integration scripts need; the REST
// surface itself is the contract.
package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mlstage/mlstage/internal/domain"
)

// Client talks to a running mlstage server.
type Client struct {
	http *resty.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetHeader("Content-Type", "application/json")
	c.SetTimeout(30 * time.Second)
	return &Client{http: c}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	var apiErr apiError
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %s", path, apiErr.Error)
		}
		return fmt.Errorf("%s: status %d", path, resp.StatusCode())
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, result interface{}) error {
	var apiErr apiError
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %s", path, apiErr.Error)
		}
		return fmt.Errorf("%s: status %d", path, resp.StatusCode())
	}
	return nil
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil, nil)
}

// CreateProjectInput names the fields accepted when creating a project.
type CreateProjectInput struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Environment domain.ProjectEnvironment `json:"environment,omitempty"`
	Status      domain.ProjectStatus      `json:"status,omitempty"`
	Artifacts   []domain.CodeArtifact     `json:"artifacts,omitempty"`
}

// CreateProject creates a project and returns the stored record.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	var p domain.Project
	if err := c.post(ctx, "/api/v1/projects", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.get(ctx, "/api/v1/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIngestionJobInput names the fields accepted when creating an
// ingestion job.
type CreateIngestionJobInput struct {
	ProjectID      string                `json:"project_id"`
	ModelID        string                `json:"model_id,omitempty"`
	Name           string                `json:"name"`
	SourceType     domain.DataSourceType `json:"source_type,omitempty"`
	Classification string                `json:"classification,omitempty"`
}

// CreateIngestionJob creates an ingestion job.
func (c *Client) CreateIngestionJob(ctx context.Context, in CreateIngestionJobInput) (*domain.IngestionJob, error) {
	var j domain.IngestionJob
	if err := c.post(ctx, "/api/v1/ingestion-jobs", in, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// RunIngestionJob starts the simulated run for an ingestion job.
func (c *Client) RunIngestionJob(ctx context.Context, id string) (*domain.IngestionJob, error) {
	var j domain.IngestionJob
	if err := c.post(ctx, "/api/v1/ingestion-jobs/"+id+"/run", nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// GetIngestionJob fetches one ingestion job.
func (c *Client) GetIngestionJob(ctx context.Context, id string) (*domain.IngestionJob, error) {
	var j domain.IngestionJob
	if err := c.get(ctx, "/api/v1/ingestion-jobs/"+id, nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateModelInput names the fields accepted when registering a model.
type CreateModelInput struct {
	ProjectID string              `json:"project_id"`
	Name      string              `json:"name"`
	Version   string              `json:"version,omitempty"`
	ModelType string              `json:"model_type,omitempty"`
	Metrics   domain.ModelMetrics `json:"metrics,omitempty"`
}

// CreateModel registers a model version.
func (c *Client) CreateModel(ctx context.Context, in CreateModelInput) (*domain.RegistryModel, error) {
	var m domain.RegistryModel
	if err := c.post(ctx, "/api/v1/models", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PromoteModel moves a model version from staging to production.
func (c *Client) PromoteModel(ctx context.Context, id string) (*domain.RegistryModel, error) {
	var m domain.RegistryModel
	if err := c.post(ctx, "/api/v1/models/"+id+"/promote", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PredictResult is one mock inference response.
type PredictResult struct {
	Prediction   float64 `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	ModelName    string  `json:"model_name"`
	ModelVersion string  `json:"model_version"`
	LatencyMs    int64   `json:"latency_ms"`
}

// Predict runs a single mock prediction against a registered model.
func (c *Client) Predict(ctx context.Context, modelID string, features []float64) (*PredictResult, error) {
	var out PredictResult
	body := map[string]interface{}{"features": features}
	if err := c.post(ctx, "/api/v1/models/"+modelID+"/predict", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDeploymentJobInput names the fields accepted when creating a
// deployment job.
type CreateDeploymentJobInput struct {
	ProjectID     string                    `json:"project_id"`
	ModelID       string                    `json:"model_id"`
	Environment   domain.ProjectEnvironment `json:"environment,omitempty"`
	ContainerName string                    `json:"container_name,omitempty"`
}

// CreateDeploymentJob creates a deployment job.
func (c *Client) CreateDeploymentJob(ctx context.Context, in CreateDeploymentJobInput) (*domain.DeploymentJob, error) {
	var d domain.DeploymentJob
	if err := c.post(ctx, "/api/v1/deployment-jobs", in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RunDeploymentJob starts the simulated rollout for a deployment job.
func (c *Client) RunDeploymentJob(ctx context.Context, id string) (*domain.DeploymentJob, error) {
	var d domain.DeploymentJob
	if err := c.post(ctx, "/api/v1/deployment-jobs/"+id+"/run", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeploymentJob fetches one deployment job.
func (c *Client) GetDeploymentJob(ctx context.Context, id string) (*domain.DeploymentJob, error) {
	var d domain.DeploymentJob
	if err := c.get(ctx, "/api/v1/deployment-jobs/"+id, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreatePipelineJobInput names the fields accepted when creating a
// pipeline job.
type CreatePipelineJobInput struct {
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Stages    []string `json:"stages,omitempty"`
}

// CreatePipelineJob creates a pipeline job.
func (c *Client) CreatePipelineJob(ctx context.Context, in CreatePipelineJobInput) (*domain.PipelineJob, error) {
	var j domain.PipelineJob
	if err := c.post(ctx, "/api/v1/pipeline-jobs", in, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// RunPipelineJob starts the simulated stage sequence for a pipeline job.
func (c *Client) RunPipelineJob(ctx context.Context, id string) (*domain.PipelineJob, error) {
	var j domain.PipelineJob
	if err := c.post(ctx, "/api/v1/pipeline-jobs/"+id+"/run", nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Stats returns per-collection record counts.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	if err := c.get(ctx, "/api/v1/stats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadDataset uploads a CSV dataset for a project and returns the
// completed ingestion job recording its shape.
func (c *Client) UploadDataset(ctx context.Context, projectID, name, filename string, content []byte) (*domain.IngestionJob, error) {
	var j domain.IngestionJob
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(content)).
		SetFormData(map[string]string{
			"project_id": projectID,
			"name":       name,
		}).
		SetResult(&j).
		SetError(&apiErr).
		Post("/api/v1/datasets/upload")
	if err != nil {
		return nil, fmt.Errorf("failed to upload dataset: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("upload dataset: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("upload dataset: status %d", resp.StatusCode())
	}
	return &j, nil
}
