// Package persist serializes the whole entity store to a single JSON
// document and rehydrates it at startup. It is a full-replace writer with
// a single-writer assumption; there is no batching and no retry.
package persist

import "github.com/mlstage/mlstage/internal/domain"

// Snapshot is the serializable shape of the entire store: one array per
// entity collection. Field order is fixed so a load/save round trip of an
// existing file is byte-stable.
type Snapshot struct {
	Projects        []domain.Project             `json:"projects"`
	IngestionJobs   []domain.IngestionJob        `json:"ingestion_jobs"`
	PreparationJobs []domain.PreparationJob      `json:"preparation_jobs"`
	RegistryModels  []domain.RegistryModel       `json:"registry_models"`
	DeploymentJobs  []domain.DeploymentJob       `json:"deployment_jobs"`
	InferencingJobs []domain.InferencingJob      `json:"inferencing_jobs"`
	MonitoringJobs  []domain.MonitoringJob       `json:"monitoring_jobs"`
	PipelineJobs    []domain.PipelineJob         `json:"pipeline_jobs"`
	Reports         []domain.ReportConfiguration `json:"report_configurations"`
	WorkflowLogs    []domain.WorkflowLog         `json:"workflow_logs"`
}

// Empty returns a snapshot with every collection initialized to an empty
// slice, so serialization always yields arrays rather than nulls.
func Empty() *Snapshot {
	return &Snapshot{
		Projects:        []domain.Project{},
		IngestionJobs:   []domain.IngestionJob{},
		PreparationJobs: []domain.PreparationJob{},
		RegistryModels:  []domain.RegistryModel{},
		DeploymentJobs:  []domain.DeploymentJob{},
		InferencingJobs: []domain.InferencingJob{},
		MonitoringJobs:  []domain.MonitoringJob{},
		PipelineJobs:    []domain.PipelineJob{},
		Reports:         []domain.ReportConfiguration{},
		WorkflowLogs:    []domain.WorkflowLog{},
	}
}

// Adapter loads and saves store snapshots.
type Adapter interface {
	// Load returns the persisted snapshot. An absent or unparseable
	// source yields an empty snapshot, never an error that should abort
	// startup.
	Load() (*Snapshot, error)

	// Save replaces the persisted snapshot with the given one.
	Save(snap *Snapshot) error
}
