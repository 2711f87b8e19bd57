package domain

// ModelStage is the registry lifecycle stage of a model version.
type ModelStage string

const (
	StageStaging    ModelStage = "staging"
	StageProduction ModelStage = "production"
)

// ModelStatus marks whether a registered model is usable.
type ModelStatus string

const (
	ModelStatusRegistered ModelStatus = "registered"
	ModelStatusArchived   ModelStatus = "archived"
)

// ModelMetrics is the fixed evaluation metric set recorded at registration.
// A closed struct rather than an open map so shape drift is caught at
// compile time.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	AUC       float64 `json:"auc"`
}

// RegistryModel is a registered model version belonging to a project.
type RegistryModel struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	ModelType string       `json:"model_type"`
	Stage     ModelStage   `json:"stage"`
	Status    ModelStatus  `json:"status"`
	Metrics   ModelMetrics `json:"metrics"`
	CreatedAt string       `json:"created_at"`
}
