package checkout

import (
	"fmt"

	"github.com/petrijr/checkout/internal/registry"
	"github.com/petrijr/checkout/pkg/api"
)

// RegistryBuilder provides a fluent API for defining the endpoint
// table:
//
//	reg := checkout.NewRegistry().
//	    Get("getUser", "https://api.example.com/users").
//	    Get("getOrders", "https://api.example.com/orders").
//	    Post("submitPayment", "https://api.example.com/payments").
//	    WithHeaders(map[string]string{"X-Api-Version": "2"}).
//	    MustBuild()
type RegistryBuilder struct {
	endpoints map[string]api.EndpointDescriptor
	lastKey   string
}

// NewRegistry creates a new registry builder.
func NewRegistry() *RegistryBuilder {
	return &RegistryBuilder{
		endpoints: make(map[string]api.EndpointDescriptor),
	}
}

// Endpoint adds an endpoint with an explicit descriptor.
func (b *RegistryBuilder) Endpoint(key string, desc EndpointDescriptor) *RegistryBuilder {
	if key == "" {
		panic("checkout: endpoint key must not be empty")
	}
	if _, exists := b.endpoints[key]; exists {
		panic(fmt.Sprintf("checkout: endpoint %q already defined", key))
	}
	b.endpoints[key] = desc
	b.lastKey = key
	return b
}

// Get adds a GET endpoint.
func (b *RegistryBuilder) Get(key, url string) *RegistryBuilder {
	return b.Endpoint(key, EndpointDescriptor{URL: url, Method: MethodGet})
}

// Post adds a POST endpoint.
func (b *RegistryBuilder) Post(key, url string) *RegistryBuilder {
	return b.Endpoint(key, EndpointDescriptor{URL: url, Method: MethodPost})
}

// Put adds a PUT endpoint.
func (b *RegistryBuilder) Put(key, url string) *RegistryBuilder {
	return b.Endpoint(key, EndpointDescriptor{URL: url, Method: MethodPut})
}

// Delete adds a DELETE endpoint.
func (b *RegistryBuilder) Delete(key, url string) *RegistryBuilder {
	return b.Endpoint(key, EndpointDescriptor{URL: url, Method: MethodDelete})
}

// WithHeaders attaches headers to the most recently added endpoint.
// It panics if no endpoint has been added yet.
func (b *RegistryBuilder) WithHeaders(headers map[string]string) *RegistryBuilder {
	if b.lastKey == "" {
		panic("checkout: WithHeaders called before any endpoint was added")
	}
	desc := b.endpoints[b.lastKey]
	if desc.Headers == nil {
		desc.Headers = make(map[string]string, len(headers))
	}
	for name, value := range headers {
		desc.Headers[name] = value
	}
	b.endpoints[b.lastKey] = desc
	return b
}

// Build validates the accumulated endpoints and returns the registry.
func (b *RegistryBuilder) Build() (Registry, error) {
	return registry.New(b.endpoints)
}

// MustBuild is like Build but panics on error.
// Useful for initialization in main().
func (b *RegistryBuilder) MustBuild() Registry {
	reg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return reg
}
