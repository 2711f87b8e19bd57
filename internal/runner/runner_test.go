package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/store"
)

func newTestRunner(t *testing.T) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.New(nil, nil)
	require.NoError(t, err)
	r := New(st, nil, nil, Config{
		MinDelay: time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
		Seed:     1,
	})
	t.Cleanup(r.Shutdown)
	return r, st
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunIngestionCompletes(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "import"})
	require.NoError(t, r.RunIngestion(j.ID, 2*time.Millisecond))

	got, _ := st.GetIngestionJob(j.ID)
	assert.Equal(t, domain.JobStatusRunning, got.Status)

	waitFor(t, func() bool {
		got, _ = st.GetIngestionJob(j.ID)
		return got.Status == domain.JobStatusCompleted
	})

	require.NotNil(t, got.OutputShape)
	assert.Greater(t, got.OutputShape.Rows, 0)
	assert.Greater(t, got.OutputShape.Columns, 0)
	assert.Len(t, got.OutputColumns, got.OutputShape.Columns)

	// The run leaves a workflow log with start and completion steps.
	logs := st.ListWorkflowLogs("p1")
	require.Len(t, logs, 1)
	assert.Len(t, logs[0].Steps, 2)
}

func TestRunIngestionMissingJob(t *testing.T) {
	r, _ := newTestRunner(t)
	assert.Error(t, r.RunIngestion("nope", time.Millisecond))
}

func TestDeletedJobAbsorbsLateTimer(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "doomed"})
	keeper := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "keeper"})

	require.NoError(t, r.RunIngestion(j.ID, 20*time.Millisecond))
	st.DeleteIngestionJob(j.ID)

	waitFor(t, func() bool { return r.Pending() == 0 })

	// The fired timer found nothing and dropped its update.
	_, ok := st.GetIngestionJob(j.ID)
	assert.False(t, ok)

	got, ok := st.GetIngestionJob(keeper.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusCreated, got.Status)
}

func TestRunPreparationInheritsSourceShape(t *testing.T) {
	r, st := newTestRunner(t)

	src := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "src"})
	completed := domain.JobStatusCompleted
	st.UpdateIngestionJob(src.ID, store.IngestionJobPatch{
		Status:        &completed,
		OutputShape:   &domain.DataShape{Rows: 1000, Columns: 8},
		OutputColumns: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	})

	j := st.CreatePreparationJob(domain.PreparationJob{
		ProjectID:      "p1",
		IngestionJobID: src.ID,
		Name:           "clean",
	})
	require.NoError(t, r.RunPreparation(j.ID, 2*time.Millisecond))

	var got domain.PreparationJob
	waitFor(t, func() bool {
		got, _ = st.GetPreparationJob(j.ID)
		return got.Status == domain.JobStatusCompleted
	})

	require.NotNil(t, got.OutputShape)
	assert.LessOrEqual(t, got.OutputShape.Rows, 1000)
	assert.Greater(t, got.OutputShape.Rows, 0)
}

func TestRunInferencingFillsPredictions(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreateInferencingJob(domain.InferencingJob{ProjectID: "p1", ModelID: "m1"})
	require.NoError(t, r.RunInferencing(j.ID, 2*time.Millisecond))

	var got domain.InferencingJob
	waitFor(t, func() bool {
		got, _ = st.GetInferencingJob(j.ID)
		return got.Status == domain.JobStatusCompleted
	})

	require.NotEmpty(t, got.Predictions)
	for _, p := range got.Predictions {
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
	}
}

func TestRunMonitoringRecordsDriftSnapshot(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreateMonitoringJob(domain.MonitoringJob{ProjectID: "p1", ModelID: "m1"})
	require.NoError(t, r.RunMonitoring(j.ID, 2*time.Millisecond))

	var got domain.MonitoringJob
	waitFor(t, func() bool {
		got, _ = st.GetMonitoringJob(j.ID)
		return got.Status == domain.JobStatusCompleted
	})

	require.NotNil(t, got.Metrics)
	assert.GreaterOrEqual(t, got.Metrics.DataDriftScore, 0.0)
	assert.LessOrEqual(t, got.Metrics.DataDriftScore, 100.0)
	assert.NotEmpty(t, got.Metrics.CheckedAt)
}

func TestRunPipelineAdvancesStagesInOrder(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreatePipelineJob(domain.PipelineJob{
		ProjectID: "p1",
		Name:      "full-run",
		Stages: []domain.PipelineStage{
			{Name: "ingest", Status: domain.JobStatusCreated},
			{Name: "train", Status: domain.JobStatusCreated},
			{Name: "deploy", Status: domain.JobStatusCreated},
		},
	})
	require.NoError(t, r.RunPipeline(j.ID, 2*time.Millisecond))

	var got domain.PipelineJob
	waitFor(t, func() bool {
		got, _ = st.GetPipelineJob(j.ID)
		return got.Status == domain.JobStatusCompleted
	})

	require.Len(t, got.Stages, 3)
	for _, stage := range got.Stages {
		assert.Equal(t, domain.JobStatusCompleted, stage.Status)
		assert.NotEmpty(t, stage.Timestamp)
	}
}

func TestRunDeploymentReachesActive(t *testing.T) {
	r, st := newTestRunner(t)

	d := st.CreateDeploymentJob(domain.DeploymentJob{
		ProjectID:     "p1",
		ModelID:       "m1",
		Environment:   domain.EnvironmentStaging,
		ContainerName: "churn-clf",
	})
	require.NoError(t, r.RunDeployment(d.ID, 2*time.Millisecond))

	var got domain.DeploymentJob
	waitFor(t, func() bool {
		got, _ = st.GetDeploymentJob(d.ID)
		return got.Status == domain.DeploymentStatusActive
	})

	assert.NotEmpty(t, got.Logs)
	assert.Contains(t, got.Endpoint, "churn-clf")
}

func TestBaselineAccuracyConfigured(t *testing.T) {
	st, err := store.New(nil, nil)
	require.NoError(t, err)

	defaulted := New(st, nil, nil, Config{Seed: 1})
	t.Cleanup(defaulted.Shutdown)
	assert.Equal(t, 0.95, defaulted.cfg.BaselineAccuracy)

	strict := New(st, nil, nil, Config{Seed: 1, BaselineAccuracy: 0.5})
	t.Cleanup(strict.Shutdown)
	assert.Equal(t, 0.5, strict.cfg.BaselineAccuracy)

	// Same seed means identical synthetic predictions, so the concept
	// drift score must reflect the configured baseline. Simulated
	// accuracy is a multiple of 0.01, so the two baselines can never
	// land equidistant from it.
	assert.NotEqual(t,
		defaulted.driftSnapshot().ConceptDriftScore,
		strict.driftSnapshot().ConceptDriftScore)
}

func TestShutdownCancelsPendingTimers(t *testing.T) {
	r, st := newTestRunner(t)

	j := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "slow"})
	require.NoError(t, r.RunIngestion(j.ID, time.Hour))
	require.Equal(t, 1, r.Pending())

	r.Shutdown()
	assert.Equal(t, 0, r.Pending())

	// The job stays in running, never completed.
	got, _ := st.GetIngestionJob(j.ID)
	assert.Equal(t, domain.JobStatusRunning, got.Status)
}
