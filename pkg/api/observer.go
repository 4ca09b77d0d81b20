package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the query client and wizard sessions
// for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay fetches or dispatches.
type Observer interface {
	// OnQueryStart is called before a query fetch goes out. key is the
	// query's cache key (resolved URL plus query string).
	OnQueryStart(ctx context.Context, key string)

	// OnQueryCompleted is called after a query fetch settles, for both
	// successes and failures (err != nil). cached reports whether the
	// result was served from the cache without an HTTP call.
	OnQueryCompleted(ctx context.Context, key string, err error, cached bool, duration time.Duration)

	// OnMutationStart is called when a mutation is triggered.
	OnMutationStart(ctx context.Context, key string)

	// OnMutationCompleted is called after a mutation settles.
	OnMutationCompleted(ctx context.Context, key string, err error, duration time.Duration)

	// OnDispatch is called for every wizard dispatch, after the reducer
	// ran. err is non-nil when the reducer rejected the action.
	OnDispatch(ctx context.Context, sessionID string, action WizardAction, err error)

	// OnStateChange is called after a successful dispatch replaced the
	// session state.
	OnStateChange(ctx context.Context, sessionID string, old, new WizardState)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnQueryStart(ctx context.Context, key string) {}
func (NoopObserver) OnQueryCompleted(ctx context.Context, key string, err error, cached bool, d time.Duration) {
}
func (NoopObserver) OnMutationStart(ctx context.Context, key string) {}
func (NoopObserver) OnMutationCompleted(ctx context.Context, key string, err error, d time.Duration) {
}
func (NoopObserver) OnDispatch(ctx context.Context, sessionID string, action WizardAction, err error) {
}
func (NoopObserver) OnStateChange(ctx context.Context, sessionID string, old, new WizardState) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnQueryStart(ctx context.Context, key string) {
	for _, o := range c.observers {
		o.OnQueryStart(ctx, key)
	}
}

func (c *CompositeObserver) OnQueryCompleted(ctx context.Context, key string, err error, cached bool, d time.Duration) {
	for _, o := range c.observers {
		o.OnQueryCompleted(ctx, key, err, cached, d)
	}
}

func (c *CompositeObserver) OnMutationStart(ctx context.Context, key string) {
	for _, o := range c.observers {
		o.OnMutationStart(ctx, key)
	}
}

func (c *CompositeObserver) OnMutationCompleted(ctx context.Context, key string, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnMutationCompleted(ctx, key, err, d)
	}
}

func (c *CompositeObserver) OnDispatch(ctx context.Context, sessionID string, action WizardAction, err error) {
	for _, o := range c.observers {
		o.OnDispatch(ctx, sessionID, action, err)
	}
}

func (c *CompositeObserver) OnStateChange(ctx context.Context, sessionID string, old, new WizardState) {
	for _, o := range c.observers {
		o.OnStateChange(ctx, sessionID, old, new)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs query, mutation and
// wizard lifecycle events using the provided slog.Logger. If logger is
// nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnQueryStart(ctx context.Context, key string) {
	o.Logger.DebugContext(ctx, "query_start",
		slog.String("key", key),
	)
}

func (o *LoggingObserver) OnQueryCompleted(ctx context.Context, key string, err error, cached bool, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "query_completed",
		slog.String("key", key),
		slog.Bool("cached", cached),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnMutationStart(ctx context.Context, key string) {
	o.Logger.DebugContext(ctx, "mutation_start",
		slog.String("key", key),
	)
}

func (o *LoggingObserver) OnMutationCompleted(ctx context.Context, key string, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "mutation_completed",
		slog.String("key", key),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnDispatch(ctx context.Context, sessionID string, action WizardAction, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "wizard_dispatch",
		slog.String("session_id", sessionID),
		slog.String("action", ActionType(action)),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStateChange(ctx context.Context, sessionID string, old, new WizardState) {
	o.Logger.InfoContext(ctx, "wizard_state_change",
		slog.String("session_id", sessionID),
		slog.Int("old_step", old.Step),
		slog.Int("new_step", new.Step),
		slog.Bool("loading", new.IsLoading),
	)
}

// BasicMetrics collects simple counters and aggregate fetch durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	queriesStarted     atomic.Int64
	queriesCompleted   atomic.Int64
	queriesFailed      atomic.Int64
	cacheHits          atomic.Int64
	mutationsTriggered atomic.Int64
	mutationsFailed    atomic.Int64
	dispatches         atomic.Int64
	dispatchesRejected atomic.Int64
	totalFetchDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	QueriesStarted     int64
	QueriesCompleted   int64
	QueriesFailed      int64
	CacheHits          int64
	MutationsTriggered int64
	MutationsFailed    int64
	Dispatches         int64
	DispatchesRejected int64
	AvgFetchDuration   time.Duration
}

func (m *BasicMetrics) OnQueryStart(ctx context.Context, key string) {
	m.queriesStarted.Add(1)
}

func (m *BasicMetrics) OnQueryCompleted(ctx context.Context, key string, err error, cached bool, d time.Duration) {
	if err != nil {
		m.queriesFailed.Add(1)
		return
	}
	m.queriesCompleted.Add(1)
	if cached {
		m.cacheHits.Add(1)
		return
	}
	// Only real fetches contribute to the average duration.
	m.totalFetchDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnMutationStart(ctx context.Context, key string) {
	m.mutationsTriggered.Add(1)
}

func (m *BasicMetrics) OnMutationCompleted(ctx context.Context, key string, err error, d time.Duration) {
	if err != nil {
		m.mutationsFailed.Add(1)
	}
}

func (m *BasicMetrics) OnDispatch(ctx context.Context, sessionID string, action WizardAction, err error) {
	m.dispatches.Add(1)
	if err != nil {
		m.dispatchesRejected.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	completed := m.queriesCompleted.Load()
	hits := m.cacheHits.Load()
	totalNs := m.totalFetchDuration.Load()

	var avg time.Duration
	if fetched := completed - hits; fetched > 0 {
		avg = time.Duration(totalNs / fetched)
	}

	return BasicMetricsSnapshot{
		QueriesStarted:     m.queriesStarted.Load(),
		QueriesCompleted:   completed,
		QueriesFailed:      m.queriesFailed.Load(),
		CacheHits:          hits,
		MutationsTriggered: m.mutationsTriggered.Load(),
		MutationsFailed:    m.mutationsFailed.Load(),
		Dispatches:         m.dispatches.Load(),
		DispatchesRejected: m.dispatchesRejected.Load(),
		AvgFetchDuration:   avg,
	}
}
