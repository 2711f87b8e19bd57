package domain

// ReportConfiguration selects a model plus a baseline/reference dataset
// pair and the metric ids a drift report should evaluate.
type ReportConfiguration struct {
	ID             string   `json:"id"`
	ModelID        string   `json:"model_id"`
	BaselineJobID  string   `json:"baseline_job_id"`
	ReferenceJobID string   `json:"reference_job_id"`
	MetricIDs      []string `json:"metric_ids"`
	DriftMetricIDs []string `json:"drift_metric_ids"`
	CreatedAt      string   `json:"created_at"`
}
