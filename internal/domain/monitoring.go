package domain

// DriftSnapshot is the metrics snapshot a completed monitoring job records.
// Scores are percentages (0-100), matching how the dashboard renders them.
type DriftSnapshot struct {
	DataDriftScore       float64  `json:"data_drift_score"`
	DataDriftDetected    bool     `json:"data_drift_detected"`
	AffectedFeatures     []string `json:"affected_features,omitempty"`
	ConceptDriftScore    float64  `json:"concept_drift_score"`
	ConceptDriftDetected bool     `json:"concept_drift_detected"`
	PredictionDriftScore float64  `json:"prediction_drift_score"`
	PredictionDrift      bool     `json:"prediction_drift_detected"`
	CheckedAt            string   `json:"checked_at"`
}

// MonitoringJob watches a deployed model against a dataset job.
type MonitoringJob struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id"`
	ModelID      string         `json:"model_id"`
	DatasetJobID string         `json:"dataset_job_id"`
	Status       JobStatus      `json:"status"`
	Metrics      *DriftSnapshot `json:"metrics,omitempty"`
	CreatedAt    string         `json:"created_at"`
}
