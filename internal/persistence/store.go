// Package persistence provides pluggable storage for wizard sessions:
// in-memory for tests and single-process use, SQLite for embedded
// durability, Redis for shared state across processes.
package persistence

import (
	"errors"
	"time"

	"github.com/petrijr/checkout/pkg/api"
)

// ErrSessionNotFound is returned when a session record is not found.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is the persisted form of one wizard session.
type SessionRecord struct {
	ID        string
	State     api.WizardState
	UpdatedAt time.Time
}

// SessionFilter selects session records from a store.
// Zero values mean "no filter" for that field.
type SessionFilter struct {
	// Step, if > 0, limits results to sessions currently on that step.
	Step int

	// Loading, if non-nil, limits results by the loading flag.
	Loading *bool
}

// SessionStore handles storage of wizard session records.
type SessionStore interface {
	SaveSession(rec *SessionRecord) error
	UpdateSession(rec *SessionRecord) error
	GetSession(id string) (*SessionRecord, error)
	ListSessions(filter SessionFilter) ([]*SessionRecord, error)
}

func matches(rec *SessionRecord, filter SessionFilter) bool {
	if filter.Step > 0 && rec.State.Step != filter.Step {
		return false
	}
	if filter.Loading != nil && rec.State.IsLoading != *filter.Loading {
		return false
	}
	return true
}
