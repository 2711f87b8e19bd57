// Package audit mirrors workflow-log writes into a relational table.
// The entity store itself stays snapshot-backed; this trail is the one
// place that gets real database persistence, so audit history survives
// snapshot resets and can be queried independently of the store.
package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/store"
)

// Entry is one persisted audit row.
type Entry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkflowLogID string    `gorm:"type:text;index" json:"workflow_log_id"`
	ProjectID     string    `gorm:"type:text;index" json:"project_id"`
	Summary       string    `gorm:"type:text" json:"summary"`
	Steps         int       `json:"steps"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for Entry.
func (Entry) TableName() string {
	return "audit_entries"
}

// Trail records and queries audit entries.
type Trail struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewTrail creates a trail bound to db.
func NewTrail(db *gorm.DB, log *logger.Logger) *Trail {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Trail{db: db, log: log}
}

// Record inserts one audit row.
func (t *Trail) Record(ctx context.Context, w domain.WorkflowLog) error {
	entry := Entry{
		WorkflowLogID: w.ID,
		ProjectID:     w.ProjectID,
		Summary:       w.Summary,
		Steps:         len(w.Steps),
	}
	return t.db.WithContext(ctx).Create(&entry).Error
}

// List returns audit rows, newest first, optionally filtered by project.
func (t *Trail) List(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := t.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var entries []Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Mirror consumes store events and records every new workflow log until
// ctx is done. Run it on its own goroutine from the composition root.
func (t *Trail) Mirror(ctx context.Context, st *store.Store) {
	events, cancel := st.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind != store.KindWorkflowLog || ev.Op != store.OpCreated {
				continue
			}
			w, ok := st.GetWorkflowLog(ev.ID)
			if !ok {
				continue
			}
			if err := t.Record(ctx, w); err != nil {
				t.log.WithError(err).WithField("workflow_log_id", ev.ID).
					Warn("Failed to record audit entry")
			}
		}
	}
}
