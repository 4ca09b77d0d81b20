// Package wizard implements the checkout wizard session: a state holder
// that owns one WizardState and mutates it exclusively through the pure
// reducer, one dispatch at a time.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/checkout/internal/persistence"
	"github.com/petrijr/checkout/pkg/api"
)

// Session distributes {state, dispatch} to the code driving a checkout
// flow. It is the explicit handle consumers share instead of any global:
// pass it down the call tree, or carry it in a context via WithSession.
//
// Dispatches are serialized; each one produces a complete new state
// before the next is accepted, so observers never see partial updates.
type Session struct {
	id       string
	observer api.Observer
	store    persistence.SessionStore

	mu    sync.Mutex
	state api.WizardState
	subs  []func(api.WizardState)
}

// Option configures a Session.
type Option func(*Session)

// WithStore persists the session in store: the initial state on
// creation and every successful dispatch afterwards.
func WithStore(store persistence.SessionStore) Option {
	return func(s *Session) { s.store = store }
}

// WithObserver sets the observer notified of dispatches and state
// changes.
func WithObserver(obs api.Observer) Option {
	return func(s *Session) {
		if obs != nil {
			s.observer = obs
		}
	}
}

// WithID overrides the generated session ID. Mainly useful in tests.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates a session in the initial wizard state (step 1,
// empty details, not loading, no error).
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		observer: api.NoopObserver{},
		state:    api.InitialWizardState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	if s.store != nil {
		if err := s.store.SaveSession(s.record()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Restore loads a previously persisted session from store and resumes
// it where it left off.
func Restore(store persistence.SessionStore, id string, opts ...Option) (*Session, error) {
	rec, err := store.GetSession(id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       id,
		observer: api.NoopObserver{},
		store:    store,
		state:    rec.State,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current wizard state.
func (s *Session) State() api.WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch runs action through the reducer and, on success, replaces
// the session state with the result, persists it, and notifies
// subscribers. A reducer rejection (including UnknownActionError) is
// returned to the caller and leaves the state untouched.
func (s *Session) Dispatch(ctx context.Context, action api.WizardAction) error {
	s.mu.Lock()

	next, err := api.Reduce(s.state, action)
	s.observer.OnDispatch(ctx, s.id, action, err)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	old := s.state
	s.state = next

	if s.store != nil {
		if err := s.store.UpdateSession(s.record()); err != nil {
			// Keep the in-memory state; the caller decides whether a
			// persistence failure aborts the flow.
			s.mu.Unlock()
			return err
		}
	}

	subs := make([]func(api.WizardState), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.observer.OnStateChange(ctx, s.id, old, next)
	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// Subscribe registers fn to be called with the new state after every
// successful dispatch. Callbacks run on the dispatching goroutine.
func (s *Session) Subscribe(fn func(api.WizardState)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Session) record() *persistence.SessionRecord {
	return &persistence.SessionRecord{
		ID:        s.id,
		State:     s.state,
		UpdatedAt: time.Now(),
	}
}

type sessionCtxKey struct{}

// WithSession returns a context carrying the session, so it can travel
// down a call tree without threading an extra parameter everywhere.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext retrieves the session stored with WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok
}
