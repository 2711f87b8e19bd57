package store

import "github.com/mlstage/mlstage/internal/domain"

// MonitoringJobPatch is a shallow-merge update for a monitoring job.
type MonitoringJobPatch struct {
	Status  *domain.JobStatus
	Metrics *domain.DriftSnapshot
}

// CreateMonitoringJob stores a new monitoring job in status "created".
func (s *Store) CreateMonitoringJob(fields domain.MonitoringJob) domain.MonitoringJob {
	j := fields
	j.ID = newID()
	j.CreatedAt = domain.Now()
	if j.Status == "" {
		j.Status = domain.JobStatusCreated
	}

	s.mu.Lock()
	s.snap.MonitoringJobs = append(s.snap.MonitoringJobs, j)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindMonitoringJob, Op: OpCreated, ID: j.ID})
	return j
}

func (s *Store) GetMonitoringJob(id string) (domain.MonitoringJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.snap.MonitoringJobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.MonitoringJob{}, false
}

func (s *Store) ListMonitoringJobs(projectID string) []domain.MonitoringJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.MonitoringJob{}
	for _, j := range s.snap.MonitoringJobs {
		if projectID == "" || j.ProjectID == projectID {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) UpdateMonitoringJob(id string, patch MonitoringJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.MonitoringJobs {
		if s.snap.MonitoringJobs[i].ID != id {
			continue
		}
		j := &s.snap.MonitoringJobs[i]
		if patch.Status != nil {
			j.Status = *patch.Status
		}
		if patch.Metrics != nil {
			j.Metrics = patch.Metrics
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindMonitoringJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteMonitoringJob(id string) {
	s.mu.Lock()
	found := false
	for i, j := range s.snap.MonitoringJobs {
		if j.ID == id {
			s.snap.MonitoringJobs = append(s.snap.MonitoringJobs[:i], s.snap.MonitoringJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindMonitoringJob, Op: OpDeleted, ID: id})
	}
}
