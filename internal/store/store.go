// Package store holds the in-process entity graph backing the workflow
// API: one collection per entity kind, CRUD plus relationship lookups,
// and a full-snapshot persist on every mutation.
//
// The store is deliberately lenient: Update and Delete on a missing id
// are silent no-ops, because simulated job callbacks race record
// deletion and a stale completion must be absorbed, not raised.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/persist"
)

// Store is the entity store. Construct with New and share by reference;
// all methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	snap    *persist.Snapshot
	adapter persist.Adapter
	log     *logger.Logger

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New loads the persisted snapshot through adapter and returns a ready
// store. A nil adapter yields a memory-only store (used in tests).
func New(adapter persist.Adapter, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	snap := persist.Empty()
	if adapter != nil {
		loaded, err := adapter.Load()
		if err != nil {
			return nil, err
		}
		snap = loaded
	}
	return &Store{
		snap:    snap,
		adapter: adapter,
		log:     log,
		subs:    make(map[int]chan Event),
	}, nil
}

// newID returns a collision-safe identifier. UUIDs keep two creates in
// the same millisecond distinct without any counter state.
func newID() string {
	return uuid.NewString()
}

// persistLocked writes the current snapshot through the adapter. Callers
// must hold mu. A failed write is a warning, never a fatal error: the
// in-memory store stays authoritative for the session.
func (s *Store) persistLocked() {
	if s.adapter == nil {
		return
	}
	if err := s.adapter.Save(s.snap); err != nil {
		s.log.WithError(err).Warn("Failed to persist store snapshot")
	}
}

// Stats returns the record count of every collection.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"projects":              len(s.snap.Projects),
		"ingestion_jobs":        len(s.snap.IngestionJobs),
		"preparation_jobs":      len(s.snap.PreparationJobs),
		"registry_models":       len(s.snap.RegistryModels),
		"deployment_jobs":       len(s.snap.DeploymentJobs),
		"inferencing_jobs":      len(s.snap.InferencingJobs),
		"monitoring_jobs":       len(s.snap.MonitoringJobs),
		"pipeline_jobs":         len(s.snap.PipelineJobs),
		"report_configurations": len(s.snap.Reports),
		"workflow_logs":         len(s.snap.WorkflowLogs),
	}
}
