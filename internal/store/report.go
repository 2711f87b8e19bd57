package store

import "github.com/mlstage/mlstage/internal/domain"

// ReportPatch is a shallow-merge update for a report configuration.
type ReportPatch struct {
	ModelID        *string
	BaselineJobID  *string
	ReferenceJobID *string
	MetricIDs      []string
	DriftMetricIDs []string
}

// CreateReport stores a new report configuration.
func (s *Store) CreateReport(fields domain.ReportConfiguration) domain.ReportConfiguration {
	r := fields
	r.ID = newID()
	r.CreatedAt = domain.Now()
	if r.MetricIDs == nil {
		r.MetricIDs = []string{}
	}
	if r.DriftMetricIDs == nil {
		r.DriftMetricIDs = []string{}
	}

	s.mu.Lock()
	s.snap.Reports = append(s.snap.Reports, r)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: KindReport, Op: OpCreated, ID: r.ID})
	return r
}

func (s *Store) GetReport(id string) (domain.ReportConfiguration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.snap.Reports {
		if r.ID == id {
			return r, true
		}
	}
	return domain.ReportConfiguration{}, false
}

// ListReports filters by model id; an empty modelID lists all.
func (s *Store) ListReports(modelID string) []domain.ReportConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.ReportConfiguration{}
	for _, r := range s.snap.Reports {
		if modelID == "" || r.ModelID == modelID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) UpdateReport(id string, patch ReportPatch) {
	s.mu.Lock()
	found := false
	for i := range s.snap.Reports {
		if s.snap.Reports[i].ID != id {
			continue
		}
		r := &s.snap.Reports[i]
		if patch.ModelID != nil {
			r.ModelID = *patch.ModelID
		}
		if patch.BaselineJobID != nil {
			r.BaselineJobID = *patch.BaselineJobID
		}
		if patch.ReferenceJobID != nil {
			r.ReferenceJobID = *patch.ReferenceJobID
		}
		if patch.MetricIDs != nil {
			r.MetricIDs = patch.MetricIDs
		}
		if patch.DriftMetricIDs != nil {
			r.DriftMetricIDs = patch.DriftMetricIDs
		}
		found = true
		break
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindReport, Op: OpUpdated, ID: id})
	}
}

func (s *Store) DeleteReport(id string) {
	s.mu.Lock()
	found := false
	for i, r := range s.snap.Reports {
		if r.ID == id {
			s.snap.Reports = append(s.snap.Reports[:i], s.snap.Reports[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Kind: KindReport, Op: OpDeleted, ID: id})
	}
}
