package store

import "github.com/mlstage/mlstage/internal/domain"

// IngestionJobPatch is a shallow-merge update for an ingestion job.
type IngestionJobPatch struct {
	ModelID        *string
	Name           *string
	Classification *string
	File           *domain.FileMeta
	StorageKey     *string
	Status         *domain.JobStatus
	OutputShape    *domain.DataShape
	OutputColumns  []string
}

// CreateIngestionJob stores a new ingestion job in status "created".
func (s *Store) CreateIngestionJob(fields domain.IngestionJob) domain.IngestionJob {
	j := fields
	j.ID = newID()
	j.CreatedAt = domain.Now()
	if j.Status == "" {
		j.Status = domain.JobStatusCreated
	}

	s.mu.Lock()
	s.snap.IngestionJobs = append(s.snap.IngestionJobs, j)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindIngestionJob, Op: OpCreated, ID: j.ID})
	return j
}

func (s *Store) GetIngestionJob(id string) (domain.IngestionJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.snap.IngestionJobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.IngestionJob{}, false
}

// ListIngestionJobs filters by project id; an empty projectID lists all.
func (s *Store) ListIngestionJobs(projectID string) []domain.IngestionJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.IngestionJob{}
	for _, j := range s.snap.IngestionJobs {
		if projectID == "" || j.ProjectID == projectID {
			out = append(out, j)
		}
	}
	return out
}

// ListIngestionJobsForModel returns the datasets ingested for a model.
func (s *Store) ListIngestionJobsForModel(modelID string) []domain.IngestionJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.IngestionJob{}
	for _, j := range s.snap.IngestionJobs {
		if j.ModelID == modelID {
			out = append(out, j)
		}
	}
	return out
}

// UpdateIngestionJob shallow-merges patch; missing ids are a silent no-op
// so a completion timer firing after deletion is absorbed.
func (s *Store) UpdateIngestionJob(id string, patch IngestionJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.IngestionJobs {
		if s.snap.IngestionJobs[i].ID != id {
			continue
		}
		j := &s.snap.IngestionJobs[i]
		if patch.ModelID != nil {
			j.ModelID = *patch.ModelID
		}
		if patch.Name != nil {
			j.Name = *patch.Name
		}
		if patch.Classification != nil {
			j.Classification = *patch.Classification
		}
		if patch.File != nil {
			j.File = patch.File
		}
		if patch.StorageKey != nil {
			j.StorageKey = *patch.StorageKey
		}
		if patch.Status != nil {
			j.Status = *patch.Status
		}
		if patch.OutputShape != nil {
			j.OutputShape = patch.OutputShape
		}
		if patch.OutputColumns != nil {
			j.OutputColumns = patch.OutputColumns
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindIngestionJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteIngestionJob(id string) {
	s.mu.Lock()
	found := false
	for i, j := range s.snap.IngestionJobs {
		if j.ID == id {
			s.snap.IngestionJobs = append(s.snap.IngestionJobs[:i], s.snap.IngestionJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindIngestionJob, Op: OpDeleted, ID: id})
	}
}
