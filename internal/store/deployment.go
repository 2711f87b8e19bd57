package store

import "github.com/mlstage/mlstage/internal/domain"

// DeploymentJobPatch is a shallow-merge update for a deployment job.
// Logs are append-only; use AppendDeploymentLog instead of patching.
type DeploymentJobPatch struct {
	Status   *domain.DeploymentStatus
	Endpoint *string
}

// CreateDeploymentJob stores a new deployment in status "created".
func (s *Store) CreateDeploymentJob(fields domain.DeploymentJob) domain.DeploymentJob {
	d := fields
	d.ID = newID()
	d.CreatedAt = domain.Now()
	if d.Status == "" {
		d.Status = domain.DeploymentStatusCreated
	}
	if d.Logs == nil {
		d.Logs = []string{}
	}

	s.mu.Lock()
	s.snap.DeploymentJobs = append(s.snap.DeploymentJobs, d)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindDeploymentJob, Op: OpCreated, ID: d.ID})
	return d
}

func (s *Store) GetDeploymentJob(id string) (domain.DeploymentJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.snap.DeploymentJobs {
		if d.ID == id {
			return d, true
		}
	}
	return domain.DeploymentJob{}, false
}

func (s *Store) ListDeploymentJobs(projectID string) []domain.DeploymentJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.DeploymentJob{}
	for _, d := range s.snap.DeploymentJobs {
		if projectID == "" || d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out
}

func (s *Store) UpdateDeploymentJob(id string, patch DeploymentJobPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.DeploymentJobs {
		if s.snap.DeploymentJobs[i].ID != id {
			continue
		}
		d := &s.snap.DeploymentJobs[i]
		if patch.Status != nil {
			d.Status = *patch.Status
		}
		if patch.Endpoint != nil {
			d.Endpoint = *patch.Endpoint
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindDeploymentJob, Op: OpUpdated, ID: id})
	}
}

// AppendDeploymentLog adds one rollout log line. Missing ids are a silent
// no-op like any other update.
func (s *Store) AppendDeploymentLog(id, line string) {
	s.mu.Lock()
	found := false
	for i := range s.snap.DeploymentJobs {
		if s.snap.DeploymentJobs[i].ID == id {
			s.snap.DeploymentJobs[i].Logs = append(s.snap.DeploymentJobs[i].Logs, line)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindDeploymentJob, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteDeploymentJob(id string) {
	s.mu.Lock()
	found := false
	for i, d := range s.snap.DeploymentJobs {
		if d.ID == id {
			s.snap.DeploymentJobs = append(s.snap.DeploymentJobs[:i], s.snap.DeploymentJobs[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindDeploymentJob, Op: OpDeleted, ID: id})
	}
}
