package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/petrijr/checkout/pkg/api"
)

// Query is an observed read operation keyed by its resolved URL and
// parameters. Fetch drives it; State and Subscribe observe it. All
// failures are absorbed into the result's Err field; nothing escapes.
type Query struct {
	client *Client
	req    api.FetchRequest
	opts   api.QueryOptions
	key    string

	mu    sync.Mutex
	state api.QueryResult
	subs  []func(api.QueryResult)
}

// Query creates a handle for req. Handles with the same resolved URL
// and parameters share in-flight fetches and cache entries.
func (c *Client) Query(req api.FetchRequest, opts api.QueryOptions) *Query {
	return &Query{
		client: c,
		req:    req,
		opts:   opts,
		key:    c.cacheKey(req),
	}
}

// Key returns the cache/dedup key of this query.
func (q *Query) Key() string {
	return q.key
}

// State returns the current observable state.
func (q *Query) State() api.QueryResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn to be called after every state change with the
// new state. Callbacks run on the goroutine that drove the change.
func (q *Query) Subscribe(fn func(api.QueryResult)) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subs = append(q.subs, fn)
}

// Fetch runs the query: cache probe first, then at most one shared HTTP
// request per identical key. It returns the settled state, which is the
// same value State reports afterwards.
func (q *Query) Fetch(ctx context.Context) api.QueryResult {
	q.setState(api.QueryResult{IsLoading: true})

	start := time.Now()

	if q.client.cache != nil && q.opts.TTL > 0 {
		if data, ok, err := q.client.cache.Get(ctx, q.key); err == nil && ok {
			var value any
			if err := json.Unmarshal(data, &value); err == nil {
				q.client.observer.OnQueryCompleted(ctx, q.key, nil, true, time.Since(start))
				return q.setState(api.QueryResult{Data: value, IsSuccess: true})
			}
		}
	}

	q.client.observer.OnQueryStart(ctx, q.key)

	// Concurrent fetches for the same key share a single request.
	value, err, _ := q.client.group.Do(q.key, func() (any, error) {
		return q.client.fetchWithRetry(ctx, q.req, q.opts.Retry)
	})

	q.client.observer.OnQueryCompleted(ctx, q.key, err, false, time.Since(start))

	if err != nil {
		return q.setState(api.QueryResult{Err: err})
	}

	if q.client.cache != nil && q.opts.TTL > 0 {
		if data, err := json.Marshal(value); err == nil {
			_ = q.client.cache.Set(ctx, q.key, data, q.opts.TTL)
		}
	}

	return q.setState(api.QueryResult{Data: value, IsSuccess: true})
}

// Invalidate drops this query's cache entry.
func (q *Query) Invalidate(ctx context.Context) error {
	if q.client.cache == nil {
		return nil
	}
	return q.client.cache.Delete(ctx, q.key)
}

func (q *Query) setState(s api.QueryResult) api.QueryResult {
	q.mu.Lock()
	q.state = s
	subs := make([]func(api.QueryResult), len(q.subs))
	copy(subs, q.subs)
	q.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return s
}
