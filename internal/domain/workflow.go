package domain

// WorkflowStep is one audited step inside a workflow log entry.
type WorkflowStep struct {
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	Timestamp string    `json:"timestamp"`
}

// WorkflowLog is an append-only audit entry summarizing a user-visible
// workflow action and its steps.
type WorkflowLog struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Summary   string         `json:"summary"`
	Steps     []WorkflowStep `json:"steps"`
	CreatedAt string         `json:"created_at"`
}
