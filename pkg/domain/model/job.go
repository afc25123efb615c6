package model

import (
	"time"

	"github.com/google/uuid"
)

// JobID identifies one background advice run
type JobID string

// NewJobID generates a new unique JobID
func NewJobID() JobID {
	return JobID(uuid.New().String())
}

// String returns the string representation of JobID
func (id JobID) String() string {
	return string(id)
}

// JobStatus is the lifecycle state of an advice job
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one background advice run for the polling web UI. Progress is an
// append-only list of user-facing status messages; a message sent with the
// replace flag overwrites the last entry instead of appending.
type Job struct {
	ID        JobID
	Status    JobStatus
	Request   AdviceRequest
	Progress  []string
	Advice    string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
