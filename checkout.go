package checkout

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/checkout/internal/persistence"
	"github.com/petrijr/checkout/internal/query"
	"github.com/petrijr/checkout/internal/registry"
	"github.com/petrijr/checkout/internal/wizard"
	"github.com/petrijr/checkout/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	EndpointDescriptor   = api.EndpointDescriptor
	Method               = api.Method
	Param                = api.Param
	FetchRequest         = api.FetchRequest
	Registry             = api.Registry
	Fetcher              = api.Fetcher
	QueryResult          = api.QueryResult
	MutationResult       = api.MutationResult
	QueryOptions         = api.QueryOptions
	RetryPolicy          = api.RetryPolicy
	Cache                = api.Cache
	ErrorKind            = api.ErrorKind
	UnknownEndpointError = api.UnknownEndpointError
	HTTPError            = api.HTTPError
	TransportError       = api.TransportError
	DecodeError          = api.DecodeError
	UnknownActionError   = api.UnknownActionError
	WizardState          = api.WizardState
	WizardAction         = api.WizardAction
	PaymentDetails       = api.PaymentDetails
	BillingDetails       = api.BillingDetails
	PaymentDetailsPatch  = api.PaymentDetailsPatch
	BillingDetailsPatch  = api.BillingDetailsPatch
	SetStep              = api.SetStep
	SetPaymentDetails    = api.SetPaymentDetails
	SetBillingDetails    = api.SetBillingDetails
	SetLoading           = api.SetLoading
	SetError             = api.SetError
	Observer             = api.Observer
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	Query                = query.Query
	Mutation             = query.Mutation
	Session              = wizard.Session
	SessionStore         = persistence.SessionStore
	SessionRecord        = persistence.SessionRecord
	SessionFilter        = persistence.SessionFilter
)

// Re-export method constants for convenience.

const (
	MethodGet    = api.MethodGet
	MethodPost   = api.MethodPost
	MethodPut    = api.MethodPut
	MethodDelete = api.MethodDelete
)

// Re-export error kinds.

const (
	KindUnknown         = api.KindUnknown
	KindUnknownEndpoint = api.KindUnknownEndpoint
	KindHTTP            = api.KindHTTP
	KindTransport       = api.KindTransport
	KindDecode          = api.KindDecode
	KindUnknownAction   = api.KindUnknownAction
)

// Re-export common helpers.

var (
	ParamsFromMap        = api.ParamsFromMap
	EncodeQuery          = api.EncodeQuery
	InitialWizardState   = api.InitialWizardState
	Reduce               = api.Reduce
	ActionType           = api.ActionType
	IsHTTPError          = api.IsHTTPError
	Kind                 = api.Kind
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	ErrSessionNotFound   = persistence.ErrSessionNotFound
)

// Ptr returns a pointer to v, for terse patch construction.
func Ptr[T any](v T) *T {
	return api.Ptr(v)
}

// Registry constructors
// These wrap the internal/registry package so external callers
// never need to import internal packages.

// NewStaticRegistry builds a validated read-only registry from a plain
// map. Most callers use the fluent NewRegistry builder instead.
func NewStaticRegistry(endpoints map[string]EndpointDescriptor) (Registry, error) {
	return registry.New(endpoints)
}

// Cache constructors

// NewMemoryCache returns an in-process query cache with per-entry TTL.
func NewMemoryCache() Cache {
	return query.NewMemoryCache()
}

// NewRedisCache returns a query cache backed by Redis, for sharing
// results across processes.
func NewRedisCache(client *redis.Client, prefix string) Cache {
	return query.NewRedisCache(client, prefix)
}

// Session store constructors

// NewMemorySessionStore returns a non-durable in-memory session store,
// best for tests and single-process use.
func NewMemorySessionStore() SessionStore {
	return persistence.NewInMemoryStore()
}

// NewSQLiteSessionStore returns a session store that persists wizard
// sessions in a SQLite database. The schema is created on first use.
func NewSQLiteSessionStore(db *sql.DB) (SessionStore, error) {
	return persistence.NewSQLiteSessionStore(db)
}

// NewRedisSessionStore returns a session store that persists wizard
// sessions in Redis.
func NewRedisSessionStore(client *redis.Client, prefix string) SessionStore {
	return persistence.NewRedisSessionStore(client, prefix)
}

// Session constructors

// SessionOption configures NewSession and RestoreSession.
type SessionOption = wizard.Option

// WithSessionStore persists the session in store.
func WithSessionStore(store SessionStore) SessionOption {
	return wizard.WithStore(store)
}

// WithSessionObserver attaches an observer to the session.
func WithSessionObserver(obs Observer) SessionOption {
	return wizard.WithObserver(obs)
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return wizard.WithID(id)
}

// NewSession creates a wizard session in the initial state.
func NewSession(opts ...SessionOption) (*Session, error) {
	return wizard.NewSession(opts...)
}

// RestoreSession loads a persisted session and resumes it.
func RestoreSession(store SessionStore, id string, opts ...SessionOption) (*Session, error) {
	return wizard.Restore(store, id, opts...)
}

// WithSession returns a context carrying the session.
var WithSession = wizard.WithSession

// SessionFromContext retrieves the session stored with WithSession.
var SessionFromContext = wizard.SessionFromContext
