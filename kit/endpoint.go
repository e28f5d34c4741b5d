// Package kit provides the transport-agnostic endpoint layer shared by the
// duplicator HTTP service and its MCP tool surface. A business operation is
// written once as an Endpoint; each transport adapts requests into it.
package kit

import "context"

// Endpoint is the unit of business logic: one request in, one response out.
// Transports (HTTP handlers, MCP tools) decode into a typed request, call
// the Endpoint, and encode the response for the wire.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is the outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
