package domain

// Prediction is one inference result row.
type Prediction struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// InferencingJob runs a model over a prepared dataset. Predictions are
// populated once the job completes.
type InferencingJob struct {
	ID               string       `json:"id"`
	ProjectID        string       `json:"project_id"`
	ModelID          string       `json:"model_id"`
	PreparationJobID string       `json:"preparation_job_id"`
	Status           JobStatus    `json:"status"`
	Predictions      []Prediction `json:"predictions,omitempty"`
	CreatedAt        string       `json:"created_at"`
}
