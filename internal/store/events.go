package store

// EntityKind names a store collection in change events.
type EntityKind string

const (
	KindProject        EntityKind = "project"
	KindIngestionJob   EntityKind = "ingestion_job"
	KindPreparationJob EntityKind = "preparation_job"
	KindRegistryModel  EntityKind = "registry_model"
	KindDeploymentJob  EntityKind = "deployment_job"
	KindInferencingJob EntityKind = "inferencing_job"
	KindMonitoringJob  EntityKind = "monitoring_job"
	KindPipelineJob    EntityKind = "pipeline_job"
	KindReport         EntityKind = "report_configuration"
	KindWorkflowLog    EntityKind = "workflow_log"
)

// Op is the mutation type carried by an event.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event describes one store mutation. Consumers re-read the store by id;
// events intentionally carry no record body.
type Event struct {
	Kind EntityKind `json:"kind"`
	Op   Op         `json:"op"`
	ID   string     `json:"id"`
}

// Subscribe registers a change listener. The returned cancel function
// removes the subscription and closes the channel. Slow subscribers drop
// events rather than blocking mutations.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 64)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// notify fans an event out to all subscribers. Called after the mutation
// lock is released.
func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
