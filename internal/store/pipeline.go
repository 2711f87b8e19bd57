package store

import "github.com/mlstage/mlstage/internal/domain"

// PipelineJobPatch is a shallow-merge update for a pipeline job.
type PipelineJobPatch struct {
	Name   *string
	Status *domain.JobStatus
	Stages []domain.PipelineStage
}

// CreatePipelineJob stores a new pipeline run in status "created".
func (s *Store) CreatePipelineJob(fields domain.PipelineJob) domain.PipelineJob {
	j := fields
	j.ID = newID()
	j.CreatedAt = domain.Now()
	if j.Status == "" {
		j.Status = domain.JobStatusCreated
	}
	if j.Stages == nil {
		j.Stages = []domain.PipelineStage{}
	}

	s.mu.Lock()
	s.snap.PipelineJobs = append(s.snap.PipelineJobs, j)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindPipelineJob, Op: OpCreated, ID: j.ID})
	return j
}

func (s *Store) GetPipelineJob(id string) (domain.PipelineJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.snap.PipelineJobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.PipelineJob{}, false
}

func (s *Store) ListPipelineJobs(projectID string) []domain.PipelineJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.PipelineJob{}
	for _, j := range s.snap.PipelineJobs {
		if projectID == "" || j.ProjectID == projectID {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) UpdatePipelineJob(id string, patch PipelineJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.PipelineJobs {
		if s.snap.PipelineJobs[i].ID != id {
			continue
		}
		j := &s.snap.PipelineJobs[i]
		if patch.Name != nil {
			j.Name = *patch.Name
		}
		if patch.Status != nil {
			j.Status = *patch.Status
		}
		if patch.Stages != nil {
			j.Stages = patch.Stages
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindPipelineJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeletePipelineJob(id string) {
	s.mu.Lock()
	found := false
	for i, j := range s.snap.PipelineJobs {
		if j.ID == id {
			s.snap.PipelineJobs = append(s.snap.PipelineJobs[:i], s.snap.PipelineJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindPipelineJob, Op: OpDeleted, ID: id})
	}
}
