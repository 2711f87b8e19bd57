package domain

// PreparationJob transforms the output of an ingestion job. It carries the
// same completed-output contract as IngestionJob.
type PreparationJob struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	IngestionJobID string     `json:"ingestion_job_id"`
	Name           string     `json:"name"`
	Status         JobStatus  `json:"status"`
	OutputShape    *DataShape `json:"output_shape,omitempty"`
	OutputColumns  []string   `json:"output_columns,omitempty"`
	CreatedAt      string     `json:"created_at"`
}
