package api

import (
	"context"
	"net/url"
	"sort"
	"strings"
)

// Method is the HTTP method configured for an endpoint.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// EndpointDescriptor is the static configuration for one named HTTP
// endpoint. Descriptors are defined once at process start and never
// modified afterwards.
//
// An empty Method means "use the executor's default": GET for Fetch,
// POST for Submit.
type EndpointDescriptor struct {
	URL     string
	Method  Method
	Headers map[string]string
}

// Param is a single query-string parameter. Parameters are kept as an
// ordered slice rather than a map so the serialized query string
// preserves exactly the order the caller provided.
type Param struct {
	Name  string
	Value string
}

// ParamsFromMap converts a plain map into an ordered parameter slice.
// Keys are sorted so the resulting query string is deterministic.
func ParamsFromMap(m map[string]string) []Param {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, 0, len(names))
	for _, name := range names {
		params = append(params, Param{Name: name, Value: m[name]})
	}
	return params
}

// EncodeQuery serializes params into a query string without the leading
// "?". It returns "" for an empty parameter list, so callers can omit
// the "?" entirely in that case.
func EncodeQuery(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// FetchRequest describes one call through the executor: which registry
// entry to hit, optional query parameters, and an optional
// JSON-serializable body.
type FetchRequest struct {
	Key    string
	Params []Param
	Body   any
}

// Registry resolves symbolic endpoint keys to descriptors. Registries
// are read-only at runtime; their content is fixed configuration.
type Registry interface {
	// Lookup returns the descriptor for key, or an UnknownEndpointError
	// if the key is not registered.
	Lookup(key string) (EndpointDescriptor, error)

	// Keys returns all registered keys in sorted order.
	Keys() []string
}

// Fetcher performs HTTP calls described by FetchRequests.
//
// Fetch is the read-style entry point (method defaults to GET),
// Submit the write-style one (method defaults to POST); in both cases
// a non-empty descriptor method wins. Each call performs exactly one
// outbound request; there is no retry at this layer.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (any, error)
	Submit(ctx context.Context, req FetchRequest) (any, error)
}
