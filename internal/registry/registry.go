// Package registry implements the static endpoint registry: a read-only
// mapping from symbolic keys to endpoint descriptors, validated once at
// construction time.
package registry

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/petrijr/checkout/pkg/api"
)

// Static is an api.Registry backed by a fixed map. Content is validated
// in New and never changes afterwards, so lookups are lock-free.
type Static struct {
	endpoints map[string]api.EndpointDescriptor
	keys      []string
}

var _ api.Registry = (*Static)(nil)

// New builds a Static registry from the given configuration. The whole
// table is validated up front: empty keys, empty or unparseable URLs,
// and unsupported methods are rejected here rather than at call time.
func New(endpoints map[string]api.EndpointDescriptor) (*Static, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("registry: at least one endpoint is required")
	}

	out := make(map[string]api.EndpointDescriptor, len(endpoints))
	keys := make([]string, 0, len(endpoints))

	for key, desc := range endpoints {
		if key == "" {
			return nil, fmt.Errorf("registry: endpoint key must not be empty")
		}
		if desc.URL == "" {
			return nil, fmt.Errorf("registry: endpoint %q has no URL", key)
		}
		if _, err := url.Parse(desc.URL); err != nil {
			return nil, fmt.Errorf("registry: endpoint %q has invalid URL: %w", key, err)
		}
		switch desc.Method {
		case "", api.MethodGet, api.MethodPost, api.MethodPut, api.MethodDelete:
		default:
			return nil, fmt.Errorf("registry: endpoint %q has unsupported method %q", key, desc.Method)
		}

		// Copy headers so later mutation of the input map cannot leak in.
		if len(desc.Headers) > 0 {
			headers := make(map[string]string, len(desc.Headers))
			for name, value := range desc.Headers {
				headers[name] = value
			}
			desc.Headers = headers
		}

		out[key] = desc
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return &Static{endpoints: out, keys: keys}, nil
}

// Lookup returns the descriptor configured for key. A missing key fails
// with *api.UnknownEndpointError.
func (s *Static) Lookup(key string) (api.EndpointDescriptor, error) {
	desc, ok := s.endpoints[key]
	if !ok {
		return api.EndpointDescriptor{}, &api.UnknownEndpointError{Key: key}
	}
	return desc, nil
}

// Keys returns all registered keys in sorted order.
func (s *Static) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}
