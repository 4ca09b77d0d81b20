package query

import (
	"context"
	"sync"
	"time"

	"github.com/petrijr/checkout/pkg/api"
)

// Mutation is an imperatively triggered write operation. Unlike Query
// it is never cached, never deduplicated, and never runs on its own:
// each Trigger performs exactly one Submit call, and the observable
// state reflects the most recent invocation.
type Mutation struct {
	client *Client
	req    api.FetchRequest
	key    string

	mu    sync.Mutex
	state api.MutationResult
	subs  []func(api.MutationResult)
}

// Mutation creates a handle for req. The body on req, if any, acts as a
// default; Trigger's body argument takes precedence when non-nil.
func (c *Client) Mutation(req api.FetchRequest) *Mutation {
	return &Mutation{
		client: c,
		req:    req,
		key:    c.cacheKey(req),
	}
}

// State returns the result of the most recent Trigger.
func (m *Mutation) State() api.MutationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called after every state change.
func (m *Mutation) Subscribe(fn func(api.MutationResult)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Trigger submits the mutation with the given body and returns the
// settled state. Failures are absorbed into the Err field. Concurrent
// triggers are independent; the last one to settle wins the state.
func (m *Mutation) Trigger(ctx context.Context, body any) api.MutationResult {
	m.setState(api.MutationResult{IsLoading: true})

	m.client.observer.OnMutationStart(ctx, m.key)
	start := time.Now()

	req := m.req
	if body != nil {
		req.Body = body
	}

	value, err := m.client.fetcher.Submit(ctx, req)
	m.client.observer.OnMutationCompleted(ctx, m.key, err, time.Since(start))

	if err != nil {
		return m.setState(api.MutationResult{Err: err})
	}
	return m.setState(api.MutationResult{Data: value})
}

func (m *Mutation) setState(s api.MutationResult) api.MutationResult {
	m.mu.Lock()
	m.state = s
	subs := make([]func(api.MutationResult), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return s
}
