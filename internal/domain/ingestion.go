package domain

// DataSourceType identifies where an ingestion job pulls its data from.
type DataSourceType string

const (
	DataSourceFile     DataSourceType = "file"
	DataSourceDatabase DataSourceType = "database"
	DataSourceStream   DataSourceType = "stream"
)

// IngestionJob brings a dataset into a project. Once completed, the output
// shape and column list are populated and treated as immutable.
type IngestionJob struct {
	ID             string         `json:"id"`
	ProjectID      string         `json:"project_id"`
	ModelID        string         `json:"model_id,omitempty"`
	Name           string         `json:"name"`
	SourceType     DataSourceType `json:"source_type"`
	Classification string         `json:"classification"`
	File           *FileMeta      `json:"file,omitempty"`
	StorageKey     string         `json:"storage_key,omitempty"`
	Status         JobStatus      `json:"status"`
	OutputShape    *DataShape     `json:"output_shape,omitempty"`
	OutputColumns  []string       `json:"output_columns,omitempty"`
	CreatedAt      string         `json:"created_at"`
}
