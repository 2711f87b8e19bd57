package store

import "github.com/mlstage/mlstage/internal/domain"

// CreateWorkflowLog appends an audit entry. Workflow logs are append-only:
// there is no update or delete beyond AppendWorkflowStep.
func (s *Store) CreateWorkflowLog(fields domain.WorkflowLog) domain.WorkflowLog {
	w := fields
	w.ID = newID()
	w.CreatedAt = domain.Now()
	if w.Steps == nil {
		w.Steps = []domain.WorkflowStep{}
	}

	s.mu.Lock()
	s.snap.WorkflowLogs = append(s.snap.WorkflowLogs, w)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindWorkflowLog, Op: OpCreated, ID: w.ID})
	return w
}

func (s *Store) GetWorkflowLog(id string) (domain.WorkflowLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.snap.WorkflowLogs {
		if w.ID == id {
			return w, true
		}
	}
	return domain.WorkflowLog{}, false
}

func (s *Store) ListWorkflowLogs(projectID string) []domain.WorkflowLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.WorkflowLog{}
	for _, w := range s.snap.WorkflowLogs {
		if projectID == "" || w.ProjectID == projectID {
			out = append(out, w)
		}
	}
	return out
}

// AppendWorkflowStep adds one step to an existing log entry. Missing ids
// are a silent no-op.
func (s *Store) AppendWorkflowStep(id string, step domain.WorkflowStep) {
	if step.Timestamp == "" {
		step.Timestamp = domain.Now()
	}

	s.mu.Lock()
	found := false
	for i := range s.snap.WorkflowLogs {
		if s.snap.WorkflowLogs[i].ID == id {
			s.snap.WorkflowLogs[i].Steps = append(s.snap.WorkflowLogs[i].Steps, step)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindWorkflowLog, Op: OpUpdated, ID: id})
	}
}
