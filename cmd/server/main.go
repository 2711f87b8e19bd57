package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlstage/mlstage/internal/api"
	"github.com/mlstage/mlstage/internal/api/middleware"
	"github.com/mlstage/mlstage/internal/audit"
	"github.com/mlstage/mlstage/internal/config"
	"github.com/mlstage/mlstage/internal/drift"
	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/persist"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/storage"
	"github.com/mlstage/mlstage/internal/store"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "mlstage",
	})
	logger.SetDefaultLogger(appLogger)

	// Initialize the snapshot-backed entity store
	adapter := persist.NewFileAdapter(cfg.Snapshot.Path, appLogger)
	st, err := store.New(adapter, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize entity store")
	}

	// Initialize the audit database and mirror workflow logs into it
	db, err := audit.InitDB(&audit.DBConfig{
		Driver:          cfg.Audit.Driver,
		Path:            cfg.Audit.Path,
		DSN:             cfg.Audit.DSN,
		AutoMigrate:     cfg.Audit.AutoMigrate,
		MaxIdleConns:    cfg.Audit.MaxIdleConns,
		MaxOpenConns:    cfg.Audit.MaxOpenConns,
		ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize audit database")
	}
	trail := audit.NewTrail(db, appLogger)

	mirrorCtx, stopMirror := context.WithCancel(context.Background())
	defer stopMirror()
	go trail.Mirror(mirrorCtx, st)

	// Initialize object storage for uploaded datasets
	objectStorage, err := storage.New(&storage.Config{
		Type:      cfg.Storage.Type,
		LocalDir:  cfg.Storage.LocalDir,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if s3, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	// Initialize the drift detector and job runner
	detector := drift.NewDetector(cfg.Drift.Threshold)
	jobRunner := runner.New(st, detector, appLogger, runner.Config{
		MinDelay:         time.Duration(cfg.Runner.MinDelayMs) * time.Millisecond,
		MaxDelay:         time.Duration(cfg.Runner.MaxDelayMs) * time.Millisecond,
		Seed:             cfg.Runner.Seed,
		BaselineAccuracy: cfg.Drift.BaselineAccuracy,
	})

	// Setup router
	router := api.SetupRouter(api.Deps{
		Store:    st,
		Runner:   jobRunner,
		Storage:  objectStorage,
		Detector: detector,
		Log:      appLogger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Mode: cfg.Server.Mode,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop pending job timers before the store goes away
	jobRunner.Shutdown()
	stopMirror()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
