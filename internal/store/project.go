package store

import "github.com/mlstage/mlstage/internal/domain"

// ProjectPatch is a shallow-merge update for a project. Nil fields are
// left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Environment *domain.ProjectEnvironment
	Status      *domain.ProjectStatus
	Artifacts   []domain.CodeArtifact
}

// CreateProject assigns an id and creation timestamp, appends the record,
// persists, and returns the stored project.
func (s *Store) CreateProject(fields domain.Project) domain.Project {
	p := fields
	p.ID = newID()
	p.CreatedAt = domain.Now()
	if p.Artifacts == nil {
		p.Artifacts = []domain.CodeArtifact{}
	}

	s.mu.Lock()
	s.snap.Projects = append(s.snap.Projects, p)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindProject, Op: OpCreated, ID: p.ID})
	return p
}

// GetProject returns the project and whether it exists. Never errors.
func (s *Store) GetProject(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snap.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

// ListProjects returns all projects in insertion order.
func (s *Store) ListProjects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.snap.Projects))
	copy(out, s.snap.Projects)
	return out
}

// UpdateProject shallow-merges patch into the project. Missing ids are a
// silent no-op.
func (s *Store) UpdateProject(id string, patch ProjectPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.Projects {
		if s.snap.Projects[i].ID != id {
			continue
		}
		p := &s.snap.Projects[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Environment != nil {
			p.Environment = *patch.Environment
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Artifacts != nil {
			p.Artifacts = patch.Artifacts
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindProject, Op: OpUpdated, ID: id})
	}
}

// DeleteProject removes the project if present. Jobs referencing the
// project are kept: their project_id dangles, matching observed dashboard
// behavior (orphan, not cascade).
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	found := false
	for i, p := range s.snap.Projects {
		if p.ID == id {
			s.snap.Projects = append(s.snap.Projects[:i], s.snap.Projects[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindProject, Op: OpDeleted, ID: id})
	}
}
