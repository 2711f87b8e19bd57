package domain

import "time"

// TimestampFormat is the wire format for entity creation timestamps.
// ISO 8601 with millisecond precision, matching what dashboard clients
// already render.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Now returns the current UTC time formatted as an entity timestamp.
func Now() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// JobStatus represents the lifecycle state shared by all simulated job kinds
// except deployments. Jobs progress created -> running -> completed|failed.
type JobStatus string

const (
	JobStatusCreated   JobStatus = "created"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether a job status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// DataShape describes the output of a completed dataset-producing job.
type DataShape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// FileMeta carries metadata for a dataset file uploaded by the client.
type FileMeta struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
