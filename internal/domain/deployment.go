package domain

// DeploymentStatus is the lifecycle of a deployment job:
// created -> building -> deploying -> active|failed.
type DeploymentStatus string

const (
	DeploymentStatusCreated   DeploymentStatus = "created"
	DeploymentStatusBuilding  DeploymentStatus = "building"
	DeploymentStatusDeploying DeploymentStatus = "deploying"
	DeploymentStatusActive    DeploymentStatus = "active"
	DeploymentStatusFailed    DeploymentStatus = "failed"
)

// DeploymentJob rolls a registry model out to an environment. Logs is an
// append-only line list written as the simulated rollout progresses.
type DeploymentJob struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"project_id"`
	ModelID       string             `json:"model_id"`
	Environment   ProjectEnvironment `json:"environment"`
	ContainerName string             `json:"container_name"`
	Status        DeploymentStatus   `json:"status"`
	Logs          []string           `json:"logs"`
	Endpoint      string             `json:"endpoint,omitempty"`
	CreatedAt     string             `json:"created_at"`
}
