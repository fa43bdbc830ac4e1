// Package oaserrors provides the typed errors raised by the oashttp packages.
//
// Every type works with [errors.Is] through a sentinel and with [errors.As] through the
// struct type. Route registration failures carry a stable code, as do request-time
// failures; the code is what the HTTP server renders in error bodies.
//
// # Registration time
//
//   - [ConfigError]: a route could not be registered; [ConfigError.Kind] tells why
//
// The kinds and their codes:
//
//   - [InvalidPath]: E_OASHTTP_SET_ROUTE_INVALID_PATH
//   - [InvalidMethod]: E_OASHTTP_SET_ROUTE_INVALID_METHOD
//   - [InvalidDispatcher]: E_OASHTTP_SET_ROUTE_INVALID_DISPATCHER
//   - [InvalidMiddleware]: E_OASHTTP_SET_ROUTE_INVALID_MIDDLEWARE
//   - [InvalidOperation]: E_OASHTTP_SET_ROUTE_INVALID_OPERATION
//   - [UnsupportedContentType]: E_OASHTTP_SET_ROUTE_INVALID_CONTENT_TYPE
//
// An InvalidOperation error wraps whatever the processor returned, typically a
// [ValidationError] or a [ReferenceError].
//
// # Request time
//
//   - [RequestError]: a validator stage aborted the session (400 by default)
//   - [ResponseStatusError]: the dispatcher produced a status the operation does not declare
//   - [ConformanceError]: a parameter, body or header failed its schema
//   - [ResourceLimitError]: the request body exceeded the configured size (413)
//
// Errors with an HTTPStatus() int method choose the status of the rendered response.
//
// # Usage
//
//	err := b.SetRoute("/pets", "post", createPet)
//	var cfgErr *oaserrors.ConfigError
//	if errors.As(err, &cfgErr) && cfgErr.Kind == oaserrors.UnsupportedContentType {
//	    log.Printf("cannot bind %s: %s", cfgErr.ContentType, cfgErr.Code())
//	}
package oaserrors
