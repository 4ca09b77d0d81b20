// Package checkout provides client-side building blocks for talking to
// a payment REST API and driving a multi-step checkout wizard.
//
// It is designed for Go programs that play the role a browser front end
// usually does: resolve named endpoints, fetch and submit JSON, surface
// loading/error/data state to a rendering layer, and keep a wizard's
// form state consistent, without global state and without heavy
// infrastructure.
//
// # Core Concepts
//
// The checkout programming model is intentionally small:
//
//  1. Registry
//  2. Client
//  3. Query / Mutation
//  4. Session
//
// # Registry
//
// A Registry is the static table of named endpoints. It is built once
// at startup, validated eagerly, and read-only afterwards:
//
//	reg := checkout.NewRegistry().
//	    Get("getUser", "https://api.example.com/users").
//	    Post("submitPayment", "https://api.example.com/payments").
//	    MustBuild()
//
// # Client
//
// A Client bundles the registry, the HTTP executor, and the query
// layer. The executor performs exactly one request per call and maps
// every failure into a typed error (UnknownEndpointError, HTTPError,
// TransportError, DecodeError); caching, in-flight deduplication, and
// invalidation live in the query layer above it.
//
// # Query / Mutation
//
// A Query is an observed read keyed by its resolved URL and parameters:
// concurrent fetches for the same key share a single request, results
// can be cached with a TTL (in memory or in Redis), and the observable
// QueryResult carries data/loading/error state instead of raising.
// A Mutation is the imperative counterpart: triggered explicitly, never
// cached, never deduplicated.
//
// # Session
//
// A Session owns one wizard's state and mutates it exclusively through
// the pure Reduce function, one dispatch at a time. Actions form a
// closed set (SetStep, SetPaymentDetails, SetBillingDetails,
// SetLoading, SetError); detail updates merge shallowly and never drop
// fields. Sessions can be persisted in memory, SQLite, or Redis and
// restored later.
//
// Observers (logging via log/slog, basic metrics, or your own) can be
// attached to both the Client and the Session.
//
// For runnable programs, see the /examples directory.
package checkout
