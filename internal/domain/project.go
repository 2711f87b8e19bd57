package domain

// ProjectEnvironment is the deployment environment a project targets.
type ProjectEnvironment string

const (
	EnvironmentDev     ProjectEnvironment = "dev"
	EnvironmentStaging ProjectEnvironment = "staging"
	EnvironmentProd    ProjectEnvironment = "prod"
)

// ProjectStatus marks whether a project is in active use.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusInactive ProjectStatus = "inactive"
)

// CodeArtifact is a named piece of source attached to a project.
type CodeArtifact struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Project is the root of the entity graph. Every job kind references a
// project by id; deleting a project does not cascade to its jobs.
type Project struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Environment ProjectEnvironment `json:"environment"`
	Status      ProjectStatus      `json:"status"`
	Artifacts   []CodeArtifact     `json:"artifacts"`
	CreatedAt   string             `json:"created_at"`
}
