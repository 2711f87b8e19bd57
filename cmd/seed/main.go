package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/pkg/client"
)

// seed populates a running server with a demo project, a dataset, a
// registered model, and one of each job kind, then kicks the simulated
// runs so the dashboard has live data to show.
func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "mlstage-seed",
	})
	logger.SetDefaultLogger(appLogger)

	baseURL := flag.String("server", "http://localhost:8080", "Base URL of the mlstage server")
	projectName := flag.String("project", "churn-demo", "Name of the demo project to create")
	wait := flag.Duration("wait", 5*time.Second, "How long to wait for simulated jobs to finish")
	flag.Parse()

	ctx := context.Background()
	c := client.New(*baseURL)

	if err := c.Health(ctx); err != nil {
		appLogger.WithError(err).Fatal("Server is not reachable")
	}

	project, err := c.CreateProject(ctx, client.CreateProjectInput{
		Name:        *projectName,
		Description: "Customer churn demo seeded for local development",
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create project")
	}
	appLogger.WithField("project_id", project.ID).Info("Created project")

	model, err := c.CreateModel(ctx, client.CreateModelInput{
		ProjectID: project.ID,
		Name:      "churn-classifier",
		Version:   "1",
		ModelType: "classification",
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to register model")
	}
	appLogger.WithField("model_id", model.ID).Info("Registered model")

	csv := demoCSV(200)
	upload, err := c.UploadDataset(ctx, project.ID, "churn-training-data", "churn.csv", []byte(csv))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to upload dataset")
	}
	appLogger.WithFields(logger.Fields{
		"job_id": upload.ID,
		"rows":   upload.OutputShape.Rows,
	}).Info("Uploaded dataset")

	ingest, err := c.CreateIngestionJob(ctx, client.CreateIngestionJobInput{
		ProjectID: project.ID,
		ModelID:   model.ID,
		Name:      "nightly-import",
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create ingestion job")
	}
	if _, err := c.RunIngestionJob(ctx, ingest.ID); err != nil {
		appLogger.WithError(err).Fatal("Failed to run ingestion job")
	}

	pipeline, err := c.CreatePipelineJob(ctx, client.CreatePipelineJobInput{
		ProjectID: project.ID,
		Name:      "train-and-ship",
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create pipeline job")
	}
	if _, err := c.RunPipelineJob(ctx, pipeline.ID); err != nil {
		appLogger.WithError(err).Fatal("Failed to run pipeline job")
	}

	deployment, err := c.CreateDeploymentJob(ctx, client.CreateDeploymentJobInput{
		ProjectID:     project.ID,
		ModelID:       model.ID,
		ContainerName: "churn-classifier",
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create deployment job")
	}
	if _, err := c.RunDeploymentJob(ctx, deployment.ID); err != nil {
		appLogger.WithError(err).Fatal("Failed to run deployment job")
	}

	if _, err := c.PromoteModel(ctx, model.ID); err != nil {
		appLogger.WithError(err).Fatal("Failed to promote model")
	}

	appLogger.WithField("wait", wait.String()).Info("Waiting for simulated jobs")
	time.Sleep(*wait)

	pred, err := c.Predict(ctx, model.ID, []float64{0.2, 1.5, 3.0})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to run prediction")
	}
	appLogger.WithFields(logger.Fields{
		"prediction": pred.Prediction,
		"confidence": pred.Confidence,
	}).Info("Prediction served")

	stats, err := c.Stats(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to fetch stats")
	}
	appLogger.WithFields(logger.Fields{"stats": stats}).Info("Seed complete")
}

// demoCSV builds a small synthetic numeric dataset.
func demoCSV(rows int) string {
	out := "tenure,monthly_charges,total_charges,churn\n"
	for i := 0; i < rows; i++ {
		out += fmt.Sprintf("%d,%.2f,%.2f,%d\n",
			1+i%72,
			20.0+float64(i%60),
			20.0*float64(1+i%72),
			i%5/4,
		)
	}
	return out
}
