package domain

// PipelineStage is one step of a pipeline job with its own status.
type PipelineStage struct {
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// PipelineJob chains lifecycle stages (ingest, prepare, train, deploy)
// into one tracked run.
type PipelineJob struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Name      string          `json:"name"`
	Status    JobStatus       `json:"status"`
	Stages    []PipelineStage `json:"stages"`
	CreatedAt string          `json:"created_at"`
}
