package store

import "github.com/mlstage/mlstage/internal/domain"

// RegistryModelPatch is a shallow-merge update for a registry model.
type RegistryModelPatch struct {
	Name      *string
	Version   *string
	ModelType *string
	Stage     *domain.ModelStage
	Status    *domain.ModelStatus
	Metrics   *domain.ModelMetrics
}

// ModelFilter narrows ListModels. Zero-valued fields match everything.
type ModelFilter struct {
	ProjectID string
	Stage     domain.ModelStage
	Name      string
}

// CreateModel registers a model version in stage "staging" unless the
// caller sets one explicitly.
func (s *Store) CreateModel(fields domain.RegistryModel) domain.RegistryModel {
	m := fields
	m.ID = newID()
	m.CreatedAt = domain.Now()
	if m.Stage == "" {
		m.Stage = domain.StageStaging
	}
	if m.Status == "" {
		m.Status = domain.ModelStatusRegistered
	}

	s.mu.Lock()
	s.snap.RegistryModels = append(s.snap.RegistryModels, m)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindRegistryModel, Op: OpCreated, ID: m.ID})
	return m
}

func (s *Store) GetModel(id string) (domain.RegistryModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.snap.RegistryModels {
		if m.ID == id {
			return m, true
		}
	}
	return domain.RegistryModel{}, false
}

// ListModels returns models matching the filter in insertion order.
func (s *Store) ListModels(filter ModelFilter) []domain.RegistryModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.RegistryModel{}
	for _, m := range s.snap.RegistryModels {
		if filter.ProjectID != "" && m.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Stage != "" && m.Stage != filter.Stage {
			continue
		}
		if filter.Name != "" && m.Name != filter.Name {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ListModelVersions returns every registered version sharing the model's
// name, the registry's version history view.
func (s *Store) ListModelVersions(name string) []domain.RegistryModel {
	return s.ListModels(ModelFilter{Name: name})
}

func (s *Store) UpdateModel(id string, patch RegistryModelPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.RegistryModels {
		if s.snap.RegistryModels[i].ID != id {
			continue
		}
		m := &s.snap.RegistryModels[i]
		if patch.Name != nil {
			m.Name = *patch.Name
		}
		if patch.Version != nil {
			m.Version = *patch.Version
		}
		if patch.ModelType != nil {
			m.ModelType = *patch.ModelType
		}
		if patch.Stage != nil {
			m.Stage = *patch.Stage
		}
		if patch.Status != nil {
			m.Status = *patch.Status
		}
		if patch.Metrics != nil {
			m.Metrics = *patch.Metrics
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindRegistryModel, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteModel(id string) {
	s.mu.Lock()
	found := false
	for i, m := range s.snap.RegistryModels {
		if m.ID == id {
			s.snap.RegistryModels = append(s.snap.RegistryModels[:i], s.snap.RegistryModels[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindRegistryModel, Op: OpDeleted, ID: id})
	}
}
