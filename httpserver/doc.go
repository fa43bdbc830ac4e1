// Package httpserver is the HTTP side of oashttp: a route table, compiled route
// descriptors, per-request sessions and an http.Handler that runs route chains.
//
// # Routes
//
// A [Route] is built once with [NewRoute] and never changes. Its pattern uses ":name"
// placeholders; its conditions ([MethodCondition], [ContentTypeCondition]) decide whether
// a request is routed to it. Routes live in a [Router] under caller-chosen keys.
//
// # Chains
//
// A route's chain is its middlewares followed by its dispatcher. The server creates a
// [Session] per request and calls [Session.Next], which runs the stages in order. A stage
// may call Next itself to wrap the rest of the chain, which is how response checks
// observe the dispatcher's view:
//
//	func (timing) Dispatch(req *httpserver.Request, sess *httpserver.Session) error {
//		start := time.Now()
//		sess.Next()
//		sess.View.Header.Set("Server-Timing", fmt.Sprintf("app;dur=%d", time.Since(start).Milliseconds()))
//		return nil
//	}
//
// A stage aborts the session through sess.Abortion. Errors returned by a stage go to its
// OnError method when it implements [ErrorHandler], and abort the session otherwise.
//
// # Rendering
//
// Completed sessions render their [View]. Aborted sessions render an [ErrorBody]:
//
//	{"status": 400, "code": "E_OAS_INVALID_REQUEST_PARAMETERS", "message": "...", "causes": ["..."]}
//
// Requests no route accepts get 404, 405 or 415 in the same shape.
package httpserver
