// Package query implements the observed query and mutation primitives
// on top of a Fetcher. It owns the concerns the executor deliberately
// does not: caching of successful results, deduplication of identical
// in-flight requests, cache invalidation, and optional retries.
package query

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/petrijr/checkout/pkg/api"
)

// KeyResolver is implemented by fetchers that can resolve a request to
// its full URL. When available, the resolved URL (including the query
// string) becomes the cache and dedup key; otherwise the registry key
// plus the serialized parameters is used.
type KeyResolver interface {
	ResolveURL(req api.FetchRequest) (string, error)
}

// Client creates Query and Mutation handles. A single Client is safe
// for concurrent use; handles created from it share one cache and one
// in-flight request group.
type Client struct {
	fetcher  api.Fetcher
	cache    api.Cache
	observer api.Observer
	group    singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithCache sets the cache used for query results. Without a cache,
// queries always hit the network.
func WithCache(cache api.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithObserver sets the observer notified of query and mutation events.
func WithObserver(obs api.Observer) Option {
	return func(c *Client) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// New creates a Client around the given fetcher.
func New(fetcher api.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:  fetcher,
		observer: api.NoopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate drops any cached result for req so the next fetch goes to
// the network again.
func (c *Client) Invalidate(ctx context.Context, req api.FetchRequest) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.cacheKey(req))
}

func (c *Client) cacheKey(req api.FetchRequest) string {
	if r, ok := c.fetcher.(KeyResolver); ok {
		if u, err := r.ResolveURL(req); err == nil {
			return u
		}
	}
	key := req.Key
	if q := api.EncodeQuery(req.Params); q != "" {
		key += "?" + q
	}
	return key
}

// fetchWithRetry runs one logical fetch under the given policy. The
// executor itself never retries; this is collaborator-level policy and
// defaults to a single attempt.
func (c *Client) fetchWithRetry(ctx context.Context, req api.FetchRequest, policy *api.RetryPolicy) (any, error) {
	maxAttempts := 1
	var (
		backoff    time.Duration
		maxBackoff time.Duration
		multiplier float64
	)

	if policy != nil {
		if policy.MaxAttempts > 0 {
			maxAttempts = policy.MaxAttempts
		}
		backoff = policy.InitialBackoff
		maxBackoff = policy.MaxBackoff
		multiplier = policy.BackoffMultiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, &api.TransportError{Err: ctx.Err()}
		default:
		}

		value, err := c.fetcher.Fetch(ctx, req)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == maxAttempts || !retryable(err) {
			return nil, lastErr
		}

		if backoff > 0 {
			delay := backoff
			if maxBackoff > 0 && delay > maxBackoff {
				delay = maxBackoff
			}

			select {
			case <-ctx.Done():
				return nil, &api.TransportError{Err: ctx.Err()}
			case <-time.After(delay):
			}

			next := time.Duration(float64(backoff) * multiplier)
			if maxBackoff > 0 && next > maxBackoff {
				backoff = maxBackoff
			} else {
				backoff = next
			}
		}
	}

	return nil, lastErr
}

// retryable reports whether a failure is worth retrying: transport
// failures and server-side errors. Client errors (4xx), unknown
// endpoints, and undecodable bodies will not improve on retry.
func retryable(err error) bool {
	if status, ok := api.IsHTTPError(err); ok {
		return status >= 500
	}
	return api.Kind(err) == api.KindTransport
}
