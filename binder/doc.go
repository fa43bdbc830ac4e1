// Package binder turns operations declared in an OpenAPI specification into validated
// request pipelines on a httpserver.Router.
//
// [Binder.SetRoute] compiles one (path, method) operation into a route whose chain is
//
//	[content-type dispatcher] -> parameters -> request body -> responses -> extras -> dispatcher
//
// The content-type dispatcher is present only when the operation declares a request
// body, and runs the body parser bound to the request's media type. application/json is
// the only supported request body type; see [ContentTypeMiddleware]. The responses
// validator wraps the stages after it: it lets them run, then checks the status, headers
// and body of the view they produced.
//
// Registration is atomic. Any failure returns a *oaserrors.ConfigError with a stable
// code and leaves the router untouched.
//
// # Basic Usage
//
//	spec, _ := oas.Load(oas.WithFilePath("openapi.yaml"))
//	proc, _ := oas.New(spec)
//	router := httpserver.NewRouter()
//	b, _ := binder.New(router, proc)
//
//	err := b.SetRoute("/pets/{petId}", "get", httpserver.MiddlewareFunc(showPet))
//
// # Bootstrap
//
// [Binder.Bootstrap] registers every operation that names its dispatcher through
// operationId or x-dispatcher, resolving those names and the x-middlewares list through
// a [Locator] such as a [Registry].
//
// # Request-time failures
//
// The validators abort the session with a 400 *oaserrors.RequestError whose code is
// E_OAS_INVALID_REQUEST_PARAMETERS, E_OAS_INVALID_REQUEST_BODY or
// E_OAS_INVALID_RESPONSE and whose cause is the processor's conformance error. A view
// status the operation does not declare is an E_OAS_INVALID_RESPONSE too, caused by an
// *oaserrors.ResponseStatusError listing the declared status keys.
package binder
