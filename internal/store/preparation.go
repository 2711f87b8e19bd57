package store

import "github.com/mlstage/mlstage/internal/domain"

// PreparationJobPatch is a shallow-merge update for a preparation job.
type PreparationJobPatch struct {
	Name          *string
	Status        *domain.JobStatus
	OutputShape   *domain.DataShape
	OutputColumns []string
}

// CreatePreparationJob stores a new preparation job in status "created".
func (s *Store) CreatePreparationJob(fields domain.PreparationJob) domain.PreparationJob {
	j := fields
	j.ID = newID()
	j.CreatedAt = domain.Now()
	if j.Status == "" {
		j.Status = domain.JobStatusCreated
	}

	s.mu.Lock()
	s.snap.PreparationJobs = append(s.snap.PreparationJobs, j)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindPreparationJob, Op: OpCreated, ID: j.ID})
	return j
}

func (s *Store) GetPreparationJob(id string) (domain.PreparationJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.snap.PreparationJobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.PreparationJob{}, false
}

func (s *Store) ListPreparationJobs(projectID string) []domain.PreparationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.PreparationJob{}
	for _, j := range s.snap.PreparationJobs {
		if projectID == "" || j.ProjectID == projectID {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) UpdatePreparationJob(id string, patch PreparationJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.PreparationJobs {
		if s.snap.PreparationJobs[i].ID != id {
			continue
		}
		j := &s.snap.PreparationJobs[i]
		if patch.Name != nil {
			j.Name = *patch.Name
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
		s.notify(Event{Kind: KindPreparationJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeletePreparationJob(id string) {
	s.mu.Lock()
	found := false
	for i, j := range s.snap.PreparationJobs {
		if j.ID == id {
			s.snap.PreparationJobs = append(s.snap.PreparationJobs[:i], s.snap.PreparationJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindPreparationJob, Op: OpDeleted, ID: id})
	}
}
