package store

import "github.com/mlstage/mlstage/internal/domain"

// InferencingJobPatch is a shallow-merge update for an inferencing job.
type InferencingJobPatch struct {
	Status      *domain.JobStatus
	Predictions []domain.Prediction
}

// CreateInferencingJob stores a new inferencing job in status "created".
func (s *Store) CreateInferencingJob(fields domain.InferencingJob) domain.InferencingJob {
	j := fields
	j.ID = newID()
	j.CreatedAt = domain.Now()
	if j.Status == "" {
		j.Status = domain.JobStatusCreated
	}

	s.mu.Lock()
	s.snap.InferencingJobs = append(s.snap.InferencingJobs, j)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindInferencingJob, Op: OpCreated, ID: j.ID})
	return j
}

func (s *Store) GetInferencingJob(id string) (domain.InferencingJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.snap.InferencingJobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.InferencingJob{}, false
}

func (s *Store) ListInferencingJobs(projectID string) []domain.InferencingJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.InferencingJob{}
	for _, j := range s.snap.InferencingJobs {
		if projectID == "" || j.ProjectID == projectID {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) UpdateInferencingJob(id string, patch InferencingJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.InferencingJobs {
		if s.snap.InferencingJobs[i].ID != id {
			continue
		}
		j := &s.snap.InferencingJobs[i]
		if patch.Status != nil {
			j.Status = *patch.Status
		}
		if patch.Predictions != nil {
			j.Predictions = patch.Predictions
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindInferencingJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteInferencingJob(id string) {
	s.mu.Lock()
	found := false
	for i, j := range s.snap.InferencingJobs {
		if j.ID == id {
			s.snap.InferencingJobs = append(s.snap.InferencingJobs[:i], s.snap.InferencingJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindInferencingJob, Op: OpDeleted, ID: id})
	}
}
