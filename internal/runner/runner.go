// Package runner simulates job execution. A started job flips to its
// in-progress status immediately; a deferred callback later applies the
// terminal transition and fills in pseudo-random results. Callbacks are
// fire-and-forget: deleting a job does not cancel its timer, and a timer
// firing after deletion re-checks the store and drops the update silently.
package runner

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/drift"
	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/store"
)

// Config controls simulated execution timing.
type Config struct {
	// MinDelay/MaxDelay bound the random completion delay used when a
	// caller does not pass one explicitly.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
	// BaselineAccuracy is the reference accuracy monitoring jobs
	// measure concept drift against; zero falls back to the package
	// default.
	BaselineAccuracy float64
}

// Runner schedules deferred job transitions against the store.
type Runner struct {
	store    *store.Store
	detector *drift.Detector
	log      *logger.Logger
	cfg      Config

	mu     sync.Mutex
	timers map[string]*time.Timer
	rng    *rand.Rand
}

// New returns a runner. Nil detector gets the default drift threshold.
func New(st *store.Store, detector *drift.Detector, log *logger.Logger, cfg Config) *Runner {
	if detector == nil {
		detector = drift.NewDetector(0)
	}
	if log == nil {
		log = logger.GetDefault()
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay + 2*time.Second
	}
	if cfg.BaselineAccuracy <= 0 {
		cfg.BaselineAccuracy = drift.BaselineAccuracy
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Runner{
		store:    st,
		detector: detector,
		log:      log,
		cfg:      cfg,
		timers:   make(map[string]*time.Timer),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Cancel stops the pending timer for a job id, if any. This exists for
// clean shutdown; record deletion deliberately does not call it.
func (r *Runner) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
		return true
	}
	return false
}

// Shutdown cancels every pending timer.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending returns the number of scheduled completions.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// schedule registers a deferred fn keyed by job id. A zero delay picks a
// random one within the configured bounds.
func (r *Runner) schedule(id string, delay time.Duration, fn func()) {
	if delay <= 0 {
		delay = r.randomDelay()
	}
	r.mu.Lock()
	if prev, ok := r.timers[id]; ok {
		prev.Stop()
	}
	r.timers[id] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()
		fn()
	})
	r.mu.Unlock()
}

func (r *Runner) randomDelay() time.Duration {
	span := r.cfg.MaxDelay - r.cfg.MinDelay
	if span <= 0 {
		return r.cfg.MinDelay
	}
	r.mu.Lock()
	d := time.Duration(r.rng.Int63n(int64(span)))
	r.mu.Unlock()
	return r.cfg.MinDelay + d
}

func (r *Runner) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *Runner) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *Runner) normFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.NormFloat64()
}

// randomShape makes a plausible dataset shape for a completed job.
func (r *Runner) randomShape() (*domain.DataShape, []string) {
	shape := &domain.DataShape{
		Rows:    500 + r.intn(9500),
		Columns: 4 + r.intn(28),
	}
	cols := make([]string, shape.Columns)
	for i := range cols {
		cols[i] = fmt.Sprintf("feature_%d", i+1)
	}
	return shape, cols
}

// startWorkflow opens the audit workflow log for a run and returns its id.
func (r *Runner) startWorkflow(projectID, summary string) string {
	wl := r.store.CreateWorkflowLog(domain.WorkflowLog{
		ProjectID: projectID,
		Summary:   summary,
		Steps: []domain.WorkflowStep{{
			Name:      "started",
			Status:    domain.JobStatusRunning,
			Timestamp: domain.Now(),
		}},
	})
	return wl.ID
}

// finishWorkflow appends the terminal step to a run's workflow log.
func (r *Runner) finishWorkflow(logID string) {
	r.store.AppendWorkflowStep(logID, domain.WorkflowStep{
		Name:      "completed",
		Status:    domain.JobStatusCompleted,
		Timestamp: domain.Now(),
	})
}

// RunIngestion starts the simulated ingestion for an existing job.
// Returns an error only when the job does not exist at start time.
func (r *Runner) RunIngestion(id string, delay time.Duration) error {
	job, ok := r.store.GetIngestionJob(id)
	if !ok {
		return fmt.Errorf("ingestion job %s not found", id)
	}
	running := domain.JobStatusRunning
	r.store.UpdateIngestionJob(id, store.IngestionJobPatch{Status: &running})
	logID := r.startWorkflow(job.ProjectID, fmt.Sprintf("Ingestion run: %s", job.Name))

	r.schedule(id, delay, func() {
		if _, ok := r.store.GetIngestionJob(id); !ok {
			r.log.WithField("job_id", id).Debug("Ingestion job deleted before completion, dropping update")
			return
		}
		shape, cols := r.randomShape()
		completed := domain.JobStatusCompleted
		r.store.UpdateIngestionJob(id, store.IngestionJobPatch{
			Status:        &completed,
			OutputShape:   shape,
			OutputColumns: cols,
		})
		r.finishWorkflow(logID)
		r.log.WithFields(logger.Fields{"job_id": id, "rows": shape.Rows, "columns": shape.Columns}).
			Info("Ingestion job completed")
	})
	return nil
}

// RunPreparation starts the simulated preparation for an existing job.
// The output shape derives from the source ingestion job when available.
func (r *Runner) RunPreparation(id string, delay time.Duration) error {
	job, ok := r.store.GetPreparationJob(id)
	if !ok {
		return fmt.Errorf("preparation job %s not found", id)
	}
	running := domain.JobStatusRunning
	r.store.UpdatePreparationJob(id, store.PreparationJobPatch{Status: &running})
	logID := r.startWorkflow(job.ProjectID, fmt.Sprintf("Preparation run: %s", job.Name))

	sourceID := job.IngestionJobID
	r.schedule(id, delay, func() {
		if _, ok := r.store.GetPreparationJob(id); !ok {
			r.log.WithField("job_id", id).Debug("Preparation job deleted before completion, dropping update")
			return
		}
		var shape *domain.DataShape
		var cols []string
		if src, ok := r.store.GetIngestionJob(sourceID); ok && src.OutputShape != nil {
			// Preparation drops some rows (cleaning) but keeps columns.
			kept := src.OutputShape.Rows - r.intn(src.OutputShape.Rows/10+1)
			shape = &domain.DataShape{Rows: kept, Columns: src.OutputShape.Columns}
			cols = src.OutputColumns
		} else {
			shape, cols = r.randomShape()
		}
		completed := domain.JobStatusCompleted
		r.store.UpdatePreparationJob(id, store.PreparationJobPatch{
			Status:        &completed,
			OutputShape:   shape,
			OutputColumns: cols,
		})
		r.finishWorkflow(logID)
	})
	return nil
}

// RunInferencing starts the simulated inference pass for an existing job.
func (r *Runner) RunInferencing(id string, delay time.Duration) error {
	job, ok := r.store.GetInferencingJob(id)
	if !ok {
		return fmt.Errorf("inferencing job %s not found", id)
	}
	running := domain.JobStatusRunning
	r.store.UpdateInferencingJob(id, store.InferencingJobPatch{Status: &running})
	logID := r.startWorkflow(job.ProjectID, "Inference run for model "+job.ModelID)

	r.schedule(id, delay, func() {
		if _, ok := r.store.GetInferencingJob(id); !ok {
			r.log.WithField("job_id", id).Debug("Inferencing job deleted before completion, dropping update")
			return
		}
		preds := make([]domain.Prediction, 20+r.intn(80))
		for i := range preds {
			preds[i] = domain.Prediction{
				Value:      r.float64(),
				Confidence: 0.5 + 0.5*r.float64(),
			}
		}
		completed := domain.JobStatusCompleted
		r.store.UpdateInferencingJob(id, store.InferencingJobPatch{
			Status:      &completed,
			Predictions: preds,
		})
		r.finishWorkflow(logID)
	})
	return nil
}

// RunMonitoring starts the simulated monitoring check. On completion the
// metrics snapshot carries real drift statistics computed over synthetic
// baseline/current samples.
func (r *Runner) RunMonitoring(id string, delay time.Duration) error {
	job, ok := r.store.GetMonitoringJob(id)
	if !ok {
		return fmt.Errorf("monitoring job %s not found", id)
	}
	running := domain.JobStatusRunning
	r.store.UpdateMonitoringJob(id, store.MonitoringJobPatch{Status: &running})
	logID := r.startWorkflow(job.ProjectID, "Monitoring check for model "+job.ModelID)

	r.schedule(id, delay, func() {
		if _, ok := r.store.GetMonitoringJob(id); !ok {
			r.log.WithField("job_id", id).Debug("Monitoring job deleted before completion, dropping update")
			return
		}
		snapshot := r.driftSnapshot()
		completed := domain.JobStatusCompleted
		r.store.UpdateMonitoringJob(id, store.MonitoringJobPatch{
			Status:  &completed,
			Metrics: snapshot,
		})
		r.finishWorkflow(logID)
	})
	return nil
}

// driftSnapshot computes drift metrics over synthetic 100x5 samples, the
// same demo shape the original monitor used.
func (r *Runner) driftSnapshot() *domain.DriftSnapshot {
	features := []string{"feature_1", "feature_2", "feature_3", "feature_4", "feature_5"}
	baseline := map[string][]float64{}
	current := map[string][]float64{}
	for _, f := range features {
		b := make([]float64, 100)
		c := make([]float64, 100)
		for i := range b {
			b[i] = r.normFloat64()
			c[i] = r.normFloat64()
		}
		baseline[f] = b
		current[f] = c
	}

	preds := make([]int, 100)
	actuals := make([]int, 100)
	predVals := make([]float64, 100)
	baseVals := make([]float64, 100)
	for i := 0; i < 100; i++ {
		preds[i] = r.intn(2)
		actuals[i] = r.intn(2)
		predVals[i] = r.float64()
		baseVals[i] = r.float64()
	}

	data := r.detector.DataDrift(baseline, current, features)
	concept := r.detector.ConceptDrift(preds, actuals, r.cfg.BaselineAccuracy)
	prediction := r.detector.PredictionDrift(predVals, baseVals)

	return &domain.DriftSnapshot{
		DataDriftScore:       data.Score,
		DataDriftDetected:    data.Detected,
		AffectedFeatures:     data.AffectedFeatures,
		ConceptDriftScore:    concept.Score,
		ConceptDriftDetected: concept.Detected,
		PredictionDriftScore: prediction.Score,
		PredictionDrift:      prediction.Detected,
		CheckedAt:            domain.Now(),
	}
}

// RunPipeline starts a staged pipeline run. Stages complete one by one,
// each on its own deferred step, then the job itself completes.
func (r *Runner) RunPipeline(id string, stepDelay time.Duration) error {
	job, ok := r.store.GetPipelineJob(id)
	if !ok {
		return fmt.Errorf("pipeline job %s not found", id)
	}
	running := domain.JobStatusRunning
	r.store.UpdatePipelineJob(id, store.PipelineJobPatch{Status: &running})
	logID := r.startWorkflow(job.ProjectID, fmt.Sprintf("Pipeline run: %s", job.Name))
	r.advancePipeline(id, logID, 0, len(job.Stages), stepDelay)
	return nil
}

func (r *Runner) advancePipeline(id, logID string, stage, total int, stepDelay time.Duration) {
	r.schedule(id, stepDelay, func() {
		job, ok := r.store.GetPipelineJob(id)
		if !ok {
			r.log.WithField("job_id", id).Debug("Pipeline job deleted mid-run, dropping update")
			return
		}
		stages := append([]domain.PipelineStage(nil), job.Stages...)
		if stage < len(stages) {
			stages[stage].Status = domain.JobStatusCompleted
			stages[stage].Timestamp = domain.Now()
			r.store.AppendWorkflowStep(logID, domain.WorkflowStep{
				Name:      stages[stage].Name,
				Status:    domain.JobStatusCompleted,
				Timestamp: stages[stage].Timestamp,
			})
		}
		patch := store.PipelineJobPatch{Stages: stages}
		if stage+1 >= total {
			completed := domain.JobStatusCompleted
			patch.Status = &completed
			r.store.UpdatePipelineJob(id, patch)
			r.finishWorkflow(logID)
			return
		}
		r.store.UpdatePipelineJob(id, patch)
		r.advancePipeline(id, logID, stage+1, total, stepDelay)
	})
}

// RunDeployment starts the simulated rollout:
// building -> deploying -> active, appending a log line per phase.
func (r *Runner) RunDeployment(id string, stepDelay time.Duration) error {
	job, ok := r.store.GetDeploymentJob(id)
	if !ok {
		return fmt.Errorf("deployment job %s not found", id)
	}
	building := domain.DeploymentStatusBuilding
	r.store.UpdateDeploymentJob(id, store.DeploymentJobPatch{Status: &building})
	r.store.AppendDeploymentLog(id, fmt.Sprintf("Building image %s", job.ContainerName))
	logID := r.startWorkflow(job.ProjectID, "Deployment rollout for model "+job.ModelID)

	r.schedule(id, stepDelay, func() {
		if _, ok := r.store.GetDeploymentJob(id); !ok {
			r.log.WithField("job_id", id).Debug("Deployment deleted mid-rollout, dropping update")
			return
		}
		deploying := domain.DeploymentStatusDeploying
		r.store.UpdateDeploymentJob(id, store.DeploymentJobPatch{Status: &deploying})
		r.store.AppendDeploymentLog(id, fmt.Sprintf("Deploying %s to %s", job.ContainerName, job.Environment))

		r.schedule(id, stepDelay, func() {
			if _, ok := r.store.GetDeploymentJob(id); !ok {
				r.log.WithField("job_id", id).Debug("Deployment deleted mid-rollout, dropping update")
				return
			}
			active := domain.DeploymentStatusActive
			endpoint := fmt.Sprintf("http://%s.%s.svc/predict", job.ContainerName, job.Environment)
			r.store.UpdateDeploymentJob(id, store.DeploymentJobPatch{Status: &active, Endpoint: &endpoint})
			r.store.AppendDeploymentLog(id, fmt.Sprintf("Deployment active at %s", endpoint))
			r.finishWorkflow(logID)
		})
	})
	return nil
}
