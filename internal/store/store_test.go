package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlstage/mlstage/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(nil, nil)
	require.NoError(t, err)
	return st
}

func TestCreateProjectRoundTrip(t *testing.T) {
	st := newTestStore(t)

	created := st.CreateProject(domain.Project{
		Name:        "fraud-detection",
		Description: "scores card transactions",
		Environment: domain.EnvironmentStaging,
		Status:      domain.ProjectStatusActive,
	})

	require.NotEmpty(t, created.ID)
	_, err := time.Parse(domain.TimestampFormat, created.CreatedAt)
	require.NoError(t, err, "created_at must be a valid timestamp")

	got, ok := st.GetProject(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)
	assert.Equal(t, "fraud-detection", got.Name)
	assert.NotNil(t, got.Artifacts, "artifacts must serialize as [], not null")
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	st := newTestStore(t)

	// Two creates inside the same millisecond still get distinct ids.
	a := st.CreateProject(domain.Project{Name: "a"})
	b := st.CreateProject(domain.Project{Name: "b"})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdateProjectPatchesOnlyNamedFields(t *testing.T) {
	st := newTestStore(t)

	p := st.CreateProject(domain.Project{
		Name:        "orig",
		Description: "orig description",
		Environment: domain.EnvironmentDev,
	})

	name := "renamed"
	st.UpdateProject(p.ID, ProjectPatch{Name: &name})

	got, ok := st.GetProject(p.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "orig description", got.Description)
	assert.Equal(t, domain.EnvironmentDev, got.Environment)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
}

func TestUpdateMissingIDIsNoOp(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject(domain.Project{Name: "only"})

	name := "ghost"
	st.UpdateProject("does-not-exist", ProjectPatch{Name: &name})

	projects := st.ListProjects()
	require.Len(t, projects, 1)
	assert.Equal(t, "only", projects[0].Name)
}

func TestDeleteMissingIDIsNoOp(t *testing.T) {
	st := newTestStore(t)
	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "keep"})

	st.DeleteIngestionJob("does-not-exist")

	assert.Len(t, st.ListIngestionJobs(""), 1)
}

func TestDeleteProjectDoesNotCascade(t *testing.T) {
	st := newTestStore(t)

	p := st.CreateProject(domain.Project{Name: "doomed"})
	job := st.CreateIngestionJob(domain.IngestionJob{ProjectID: p.ID, Name: "orphan-to-be"})
	model := st.CreateModel(domain.RegistryModel{ProjectID: p.ID, Name: "m", Version: "1"})

	st.DeleteProject(p.ID)

	_, ok := st.GetProject(p.ID)
	assert.False(t, ok)

	// Referencing records survive with a dangling project id.
	gotJob, ok := st.GetIngestionJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, p.ID, gotJob.ProjectID)

	gotModel, ok := st.GetModel(model.ID)
	require.True(t, ok)
	assert.Equal(t, p.ID, gotModel.ProjectID)
}

func TestListFiltersByProject(t *testing.T) {
	st := newTestStore(t)

	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "one"})
	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p2", Name: "two"})
	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "three"})

	assert.Len(t, st.ListIngestionJobs("p1"), 2)
	assert.Len(t, st.ListIngestionJobs("p2"), 1)
	assert.Len(t, st.ListIngestionJobs(""), 3)
	assert.Empty(t, st.ListIngestionJobs("p3"))
}

func TestJobDefaultsToCreatedStatus(t *testing.T) {
	st := newTestStore(t)

	j := st.CreateIngestionJob(domain.IngestionJob{ProjectID: "p1", Name: "n"})
	assert.Equal(t, domain.JobStatusCreated, j.Status)

	d := st.CreateDeploymentJob(domain.DeploymentJob{ProjectID: "p1", ModelID: "m1"})
	assert.Equal(t, domain.DeploymentStatusCreated, d.Status)
	assert.NotNil(t, d.Logs)
}

func TestModelLifecycle(t *testing.T) {
	st := newTestStore(t)

	m := st.CreateModel(domain.RegistryModel{ProjectID: "p1", Name: "clf", Version: "1"})
	assert.Equal(t, domain.StageStaging, m.Stage)
	assert.Equal(t, domain.ModelStatusRegistered, m.Status)

	st.CreateModel(domain.RegistryModel{ProjectID: "p1", Name: "clf", Version: "2"})
	st.CreateModel(domain.RegistryModel{ProjectID: "p1", Name: "other", Version: "1"})

	versions := st.ListModelVersions("clf")
	assert.Len(t, versions, 2)

	production := domain.StageProduction
	st.UpdateModel(m.ID, RegistryModelPatch{Stage: &production})
	got, _ := st.GetModel(m.ID)
	assert.Equal(t, domain.StageProduction, got.Stage)

	staged := st.ListModels(ModelFilter{Stage: domain.StageStaging})
	assert.Len(t, staged, 2)
}

func TestAppendDeploymentLog(t *testing.T) {
	st := newTestStore(t)

	d := st.CreateDeploymentJob(domain.DeploymentJob{ProjectID: "p1", ModelID: "m1"})
	st.AppendDeploymentLog(d.ID, "building image")
	st.AppendDeploymentLog(d.ID, "pushing image")
	st.AppendDeploymentLog("missing", "dropped")

	got, _ := st.GetDeploymentJob(d.ID)
	assert.Equal(t, []string{"building image", "pushing image"}, got.Logs)
}

func TestWorkflowLogAppendOnly(t *testing.T) {
	st := newTestStore(t)

	w := st.CreateWorkflowLog(domain.WorkflowLog{ProjectID: "p1", Summary: "deployed model"})
	require.NotNil(t, w.Steps)

	st.AppendWorkflowStep(w.ID, domain.WorkflowStep{
		Name:      "build",
		Status:    domain.JobStatusCompleted,
		Timestamp: domain.Now(),
	})

	got, ok := st.GetWorkflowLog(w.ID)
	require.True(t, ok)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "build", got.Steps[0].Name)
}

func TestSubscribeReceivesMutations(t *testing.T) {
	st := newTestStore(t)

	events, cancel := st.Subscribe()
	defer cancel()

	p := st.CreateProject(domain.Project{Name: "watched"})

	select {
	case ev := <-events:
		assert.Equal(t, KindProject, ev.Kind)
		assert.Equal(t, OpCreated, ev.Op)
		assert.Equal(t, p.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	st.DeleteProject(p.ID)
	select {
	case ev := <-events:
		assert.Equal(t, OpDeleted, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("no delete event received")
	}
}

func TestStatsCounts(t *testing.T) {
	st := newTestStore(t)

	st.CreateProject(domain.Project{Name: "p"})
	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "x", Name: "i"})
	st.CreateIngestionJob(domain.IngestionJob{ProjectID: "x", Name: "j"})

	stats := st.Stats()
	assert.Equal(t, 1, stats["projects"])
	assert.Equal(t, 2, stats["ingestion_jobs"])
	assert.Equal(t, 0, stats["deployment_jobs"])
}
