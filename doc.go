// Package oashttp binds an OpenAPI 3.x specification to an HTTP request pipeline.
//
// Each declared operation (a path and method pair) is compiled into a route whose
// middleware chain validates inbound parameters and request bodies against the
// specification, lets a caller-supplied dispatcher produce a response, and then checks
// that the response conforms to what the operation declares.
//
// # Packages
//
//   - binder: the route compiler, the validation middlewares and operation bootstrap
//   - oas: specification loading, operation resolution and conformance checks
//   - httpserver: router table, sessions, chain execution and the http.Handler
//   - oaserrors: typed, code-bearing errors for registration and request time
//   - oaslog: the structured logging interface used across packages
//
// The oashttp command (cmd/oashttp) prints the route table of a document and serves a
// validating mock of it.
//
// # Quick Start
//
//	spec, err := oas.Load(oas.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	proc, err := oas.New(spec)
//	if err != nil {
//		log.Fatal(err)
//	}
//	router := httpserver.NewRouter()
//	b, err := binder.New(router, proc)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hello := httpserver.MiddlewareFunc(func(req *httpserver.Request, sess *httpserver.Session) error {
//		sess.View.Status = http.StatusOK
//		sess.View.Body = map[string]any{"result": req.Param["name"]}
//		return nil
//	})
//	if err := b.SetRoute("/hello/{name}", "get", hello); err != nil {
//		log.Fatal(err)
//	}
//
//	srv, err := httpserver.NewServer(router)
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(http.ListenAndServe(":8080", srv))
//
// # Chain order
//
// A compiled route runs, in order: the content-type dispatcher (only when the operation
// declares a request body), the parameters validator, the request-body validator, the
// responses validator, any extra middlewares, and finally the dispatcher. The responses
// validator wraps everything after it, so its check observes the view the dispatcher
// produced.
//
// # Bootstrap
//
// Instead of registering routes one at a time, binder's Bootstrap walks every
// operation in the specification and registers those naming a dispatcher through
// operationId or the x-dispatcher extension. Extra middlewares are named by the
// x-middlewares extension. Names are resolved through a binder.Locator once, at
// bootstrap time.
package oashttp
