package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/store"
)

func newTestTrail(t *testing.T) *Trail {
	t.Helper()
	db, err := InitDB(&DBConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	return NewTrail(db, nil)
}

func TestRecordAndList(t *testing.T) {
	trail := newTestTrail(t)
	ctx := context.Background()

	require.NoError(t, trail.Record(ctx, domain.WorkflowLog{
		ID:        "w1",
		ProjectID: "p1",
		Summary:   "deployed model",
		Steps: []domain.WorkflowStep{
			{Name: "build", Status: domain.JobStatusCompleted},
			{Name: "rollout", Status: domain.JobStatusCompleted},
		},
	}))
	require.NoError(t, trail.Record(ctx, domain.WorkflowLog{
		ID:        "w2",
		ProjectID: "p2",
		Summary:   "ingested dataset",
	}))

	all, err := trail.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, "w2", all[0].WorkflowLogID)
	assert.Equal(t, 2, all[1].Steps)

	scoped, err := trail.List(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "deployed model", scoped[0].Summary)
}

func TestListDefaultLimit(t *testing.T) {
	trail := newTestTrail(t)
	ctx := context.Background()

	require.NoError(t, trail.Record(ctx, domain.WorkflowLog{ID: "w1", ProjectID: "p1"}))

	got, err := trail.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMirrorRecordsWorkflowLogs(t *testing.T) {
	trail := newTestTrail(t)

	st, err := store.New(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trail.Mirror(ctx, st)

	// Let the mirror subscribe before mutating.
	time.Sleep(50 * time.Millisecond)

	st.CreateWorkflowLog(domain.WorkflowLog{ProjectID: "p1", Summary: "ran pipeline"})
	st.CreateProject(domain.Project{Name: "ignored by mirror"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := trail.List(ctx, "", 10)
		require.NoError(t, err)
		if len(entries) == 1 {
			assert.Equal(t, "ran pipeline", entries[0].Summary)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("mirror did not record the workflow log")
}
