package repository

import (
	"time"

	"scenario-ai-service/internal/domain/model"
)

// JobStore is the only shared mutable resource in the service. Every access
// is a fetch-mutate-store round trip against it; nothing else holds a
// long-lived reference to a record.
type JobStore interface {
	// Create inserts a new record. domain.ErrAlreadyExists on a duplicate id.
	Create(id string, job model.Job) error

	// Get returns a snapshot copy of the record, or false when absent.
	Get(id string) (model.Job, bool)

	// Update applies mutate atomically with respect to other updates on the
	// same id. Mutations merge fields in place; the record is never replaced
	// wholesale. Returns false (and does not recreate) when the id is absent.
	Update(id string, mutate func(*model.Job)) bool

	// Delete removes the record, reporting whether it existed.
	Delete(id string) bool

	// Count returns the number of live records.
	Count() int

	// PurgeOlderThan deletes every record created before cutoff, regardless
	// of status, and returns how many were removed.
	PurgeOlderThan(cutoff time.Time) int
}
