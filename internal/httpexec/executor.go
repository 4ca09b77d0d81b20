// Package httpexec implements the fetch executor: it resolves registry
// keys to descriptors, builds and performs a single HTTP request, and
// maps every failure into the api error taxonomy.
package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/petrijr/checkout/pkg/api"
)

// Executor performs one outbound HTTP request per call. It never
// retries and never caches; those concerns belong to the query client.
type Executor struct {
	registry api.Registry
	client   *http.Client
}

var _ api.Fetcher = (*Executor)(nil)

// New creates an Executor using the given registry and HTTP client.
// A nil client falls back to http.DefaultClient; timeout behavior is
// whatever the injected client is configured with.
func New(reg api.Registry, client *http.Client) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{registry: reg, client: client}
}

// Fetch executes req with GET as the fallback method.
func (e *Executor) Fetch(ctx context.Context, req api.FetchRequest) (any, error) {
	return e.execute(ctx, req, api.MethodGet)
}

// Submit executes req with POST as the fallback method.
func (e *Executor) Submit(ctx context.Context, req api.FetchRequest) (any, error) {
	return e.execute(ctx, req, api.MethodPost)
}

// ResolveURL returns the full request URL for req: the descriptor URL
// plus "?" and the serialized parameters when any are present. The
// query client uses this as its cache and dedup key.
func (e *Executor) ResolveURL(req api.FetchRequest) (string, error) {
	desc, err := e.registry.Lookup(req.Key)
	if err != nil {
		return "", err
	}
	return joinURL(desc.URL, req.Params), nil
}

func joinURL(base string, params []api.Param) string {
	q := api.EncodeQuery(params)
	if q == "" {
		return base
	}
	return base + "?" + q
}

func (e *Executor) execute(ctx context.Context, req api.FetchRequest, fallback api.Method) (any, error) {
	desc, err := e.registry.Lookup(req.Key)
	if err != nil {
		return nil, err
	}

	method := desc.Method
	if method == "" {
		method = fallback
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("httpexec: encode request body for %q: %w", req.Key, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), joinURL(desc.URL, req.Params), body)
	if err != nil {
		return nil, fmt.Errorf("httpexec: build request for %q: %w", req.Key, err)
	}

	for name, value := range desc.Headers {
		httpReq.Header.Set(name, value)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &api.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &api.HTTPError{Status: resp.StatusCode, Body: data}
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, &api.DecodeError{Err: err}
	}
	return value, nil
}
