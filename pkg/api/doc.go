// Package api defines the public types of the checkout toolkit: endpoint
// descriptors and registries, fetch requests, the executor error
// taxonomy, observable query/mutation results, the wizard state machine,
// and the Observer callbacks.
//
// The concrete implementations live under internal/ and are re-exported
// through the root checkout package, so most applications import only
// github.com/petrijr/checkout.
package api
