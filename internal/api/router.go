package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mlstage/mlstage/internal/api/handler"
	"github.com/mlstage/mlstage/internal/api/middleware"
	"github.com/mlstage/mlstage/internal/drift"
	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/storage"
	"github.com/mlstage/mlstage/internal/store"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Store    *store.Store
	Runner   *runner.Runner
	Storage  storage.ObjectStorage
	Detector *drift.Detector
	Log      *logger.Logger
	CORS     middleware.CORSConfig
	Mode     string
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Deps) *gin.Engine {
	// Set Gin mode
	switch deps.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Log))
	r.Use(middleware.CORS(deps.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	projectHandler := handler.NewProjectHandler(deps.Store)
	ingestionHandler := handler.NewIngestionHandler(deps.Store, deps.Runner)
	preparationHandler := handler.NewPreparationHandler(deps.Store, deps.Runner)
	inferencingHandler := handler.NewInferencingHandler(deps.Store, deps.Runner)
	monitoringHandler := handler.NewMonitoringHandler(deps.Store, deps.Runner)
	pipelineHandler := handler.NewPipelineHandler(deps.Store, deps.Runner)
	deploymentHandler := handler.NewDeploymentHandler(deps.Store, deps.Runner)
	modelHandler := handler.NewModelHandler(deps.Store)
	reportHandler := handler.NewReportHandler(deps.Store, deps.Storage, deps.Detector)
	datasetHandler := handler.NewDatasetHandler(deps.Store, deps.Storage)
	statsHandler := handler.NewStatsHandler(deps.Store)
	eventsHandler := handler.NewEventsHandler(deps.Store, deps.CORS)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Projects
		v1.POST("/projects", projectHandler.CreateProject)
		v1.GET("/projects", projectHandler.ListProjects)
		v1.GET("/projects/:id", projectHandler.GetProject)
		v1.PUT("/projects/:id", projectHandler.UpdateProject)
		v1.DELETE("/projects/:id", projectHandler.DeleteProject)
		v1.GET("/projects/:id/workflow", projectHandler.ProjectWorkflow)

		// Ingestion jobs
		v1.POST("/ingestion-jobs", ingestionHandler.CreateJob)
		v1.GET("/ingestion-jobs", ingestionHandler.ListJobs)
		v1.GET("/ingestion-jobs/:id", ingestionHandler.GetJob)
		v1.DELETE("/ingestion-jobs/:id", ingestionHandler.DeleteJob)
		v1.POST("/ingestion-jobs/:id/run", ingestionHandler.RunJob)

		// Preparation jobs
		v1.POST("/preparation-jobs", preparationHandler.CreateJob)
		v1.GET("/preparation-jobs", preparationHandler.ListJobs)
		v1.GET("/preparation-jobs/:id", preparationHandler.GetJob)
		v1.DELETE("/preparation-jobs/:id", preparationHandler.DeleteJob)
		v1.POST("/preparation-jobs/:id/run", preparationHandler.RunJob)

		// Inferencing jobs
		v1.POST("/inferencing-jobs", inferencingHandler.CreateJob)
		v1.GET("/inferencing-jobs", inferencingHandler.ListJobs)
		v1.GET("/inferencing-jobs/:id", inferencingHandler.GetJob)
		v1.DELETE("/inferencing-jobs/:id", inferencingHandler.DeleteJob)
		v1.POST("/inferencing-jobs/:id/run", inferencingHandler.RunJob)

		// Monitoring jobs
		v1.POST("/monitoring-jobs", monitoringHandler.CreateJob)
		v1.GET("/monitoring-jobs", monitoringHandler.ListJobs)
		v1.GET("/monitoring-jobs/:id", monitoringHandler.GetJob)
		v1.DELETE("/monitoring-jobs/:id", monitoringHandler.DeleteJob)
		v1.POST("/monitoring-jobs/:id/run", monitoringHandler.RunJob)

		// Pipeline jobs
		v1.POST("/pipeline-jobs", pipelineHandler.CreateJob)
		v1.GET("/pipeline-jobs", pipelineHandler.ListJobs)
		v1.GET("/pipeline-jobs/:id", pipelineHandler.GetJob)
		v1.DELETE("/pipeline-jobs/:id", pipelineHandler.DeleteJob)
		v1.POST("/pipeline-jobs/:id/run", pipelineHandler.RunJob)

		// Deployment jobs
		v1.POST("/deployment-jobs", deploymentHandler.CreateJob)
		v1.GET("/deployment-jobs", deploymentHandler.ListJobs)
		v1.GET("/deployment-jobs/:id", deploymentHandler.GetJob)
		v1.DELETE("/deployment-jobs/:id", deploymentHandler.DeleteJob)
		v1.POST("/deployment-jobs/:id/run", deploymentHandler.RunJob)

		// Registry models
		v1.POST("/models", modelHandler.CreateModel)
		v1.GET("/models", modelHandler.ListModels)
		v1.GET("/models/:id", modelHandler.GetModel)
		v1.PUT("/models/:id", modelHandler.UpdateModel)
		v1.DELETE("/models/:id", modelHandler.DeleteModel)
		v1.GET("/models/:id/versions", modelHandler.ListVersions)
		v1.GET("/models/:id/metrics", modelHandler.Metrics)
		v1.POST("/models/:id/promote", modelHandler.PromoteModel)
		v1.POST("/models/:id/predict", modelHandler.Predict)
		v1.POST("/models/:id/batch-predict", modelHandler.BatchPredict)

		// Drift reports
		v1.POST("/reports", reportHandler.CreateReport)
		v1.GET("/reports", reportHandler.ListReports)
		v1.GET("/reports/:id", reportHandler.GetReport)
		v1.PUT("/reports/:id", reportHandler.UpdateReport)
		v1.DELETE("/reports/:id", reportHandler.DeleteReport)
		v1.POST("/reports/:id/evaluate", reportHandler.EvaluateReport)

		// Datasets
		v1.POST("/datasets/upload", datasetHandler.Upload)

		// Stats
		v1.GET("/stats", statsHandler.GetStats)

		// Store event stream
		v1.GET("/events", eventsHandler.Stream)
	}

	return r
}
