package api

import (
	"context"
	"time"
)

// QueryResult is the observable state of a query: what a rendering
// layer needs to decide between loading, error, and data views.
//
// Exactly one of the three phases holds at a time:
//   - IsLoading true while a fetch is in flight
//   - Err non-nil (and Data nil) after a failed fetch
//   - IsSuccess true with Data set after a successful fetch
type QueryResult struct {
	Data      any
	Err       error
	IsLoading bool
	IsSuccess bool
}

// MutationResult is the observable state of a mutation, reflecting the
// most recent Trigger invocation.
type MutationResult struct {
	Data      any
	Err       error
	IsLoading bool
}

// RetryPolicy controls how a query fetch is retried when it fails.
// MaxAttempts includes the first attempt:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
//
// InitialBackoff is the delay before the first retry; it grows by
// BackoffMultiplier (default 2.0) per attempt, capped at MaxBackoff
// when that is set.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// QueryOptions tunes one query handle. The zero value means: no
// caching, no retries.
type QueryOptions struct {
	// TTL is how long a successful result stays in the cache. Zero
	// disables caching for this query.
	TTL time.Duration

	// Retry, when non-nil, is applied around the fetch. HTTP 4xx
	// responses and unknown-endpoint errors are never retried.
	Retry *RetryPolicy
}

// Cache stores encoded query results keyed by the query's cache key
// (resolved URL plus query string). Implementations must be safe for
// concurrent use. A Get error is treated as a miss by callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
