package checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/petrijr/checkout/internal/httpexec"
	"github.com/petrijr/checkout/internal/query"
)

// Client bundles a registry, the HTTP executor, and the query layer
// into a single handle, the way most applications consume this package.
//
// Typical usage:
//
//	reg := checkout.NewRegistry().
//	    Get("getUser", "https://api.example.com/users").
//	    MustBuild()
//
//	client := checkout.NewClient(reg,
//	    checkout.WithCache(checkout.NewMemoryCache()),
//	)
//
//	q := client.Query(checkout.FetchRequest{Key: "getUser"}, checkout.QueryOptions{TTL: time.Minute})
//	res := q.Fetch(ctx)
type Client struct {
	registry Registry
	executor *httpexec.Executor
	queries  *query.Client
}

type clientConfig struct {
	httpClient *http.Client
	cache      Cache
	observer   Observer
}

// ClientOption configures NewClient.
type ClientOption func(*clientConfig)

// WithHTTPClient sets the underlying HTTP client. Timeout behavior is
// whatever this client is configured with; the executor adds none of
// its own.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(cfg *clientConfig) { cfg.httpClient = hc }
}

// WithCache enables result caching for queries created from this
// client.
func WithCache(cache Cache) ClientOption {
	return func(cfg *clientConfig) { cfg.cache = cache }
}

// WithObserver attaches an observer to the query layer.
func WithObserver(obs Observer) ClientOption {
	return func(cfg *clientConfig) { cfg.observer = obs }
}

// NewClient creates a Client around the given registry.
func NewClient(reg Registry, opts ...ClientOption) *Client {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	exec := httpexec.New(reg, cfg.httpClient)

	var qopts []query.Option
	if cfg.cache != nil {
		qopts = append(qopts, query.WithCache(cfg.cache))
	}
	if cfg.observer != nil {
		qopts = append(qopts, query.WithObserver(cfg.observer))
	}

	return &Client{
		registry: reg,
		executor: exec,
		queries:  query.New(exec, qopts...),
	}
}

// Registry returns the registry this client resolves keys against.
func (c *Client) Registry() Registry {
	return c.registry
}

// Fetch performs one read-style request (GET unless the descriptor says
// otherwise), bypassing the query layer entirely: no cache, no dedup.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (any, error) {
	return c.executor.Fetch(ctx, req)
}

// Submit performs one write-style request (POST unless the descriptor
// says otherwise), bypassing the query layer entirely.
func (c *Client) Submit(ctx context.Context, req FetchRequest) (any, error) {
	return c.executor.Submit(ctx, req)
}

// Query creates an observed query handle for req.
func (c *Client) Query(req FetchRequest, opts QueryOptions) *Query {
	return c.queries.Query(req, opts)
}

// Mutation creates an observed mutation handle for req.
func (c *Client) Mutation(req FetchRequest) *Mutation {
	return c.queries.Mutation(req)
}

// Invalidate drops any cached result for req.
func (c *Client) Invalidate(ctx context.Context, req FetchRequest) error {
	return c.queries.Invalidate(ctx, req)
}

// DataAs converts a JSON-decoded value (as found in QueryResult.Data or
// MutationResult.Data) into a strongly-typed Go value:
//
//	user, err := checkout.DataAs[User](res.Data)
func DataAs[T any](data any) (T, error) {
	var out T
	raw, err := json.Marshal(data)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
