package binder

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oashttp/oaserrors"
)

// RouteKey returns the router key for an operation: "<method> <path>" with the method
// lowercased and the path as declared.
func RouteKey(path, method string) string {
	return strings.ToLower(method) + " " + path
}

var templateVar = regexp.MustCompile(`\{([^{}]*)\}`)

var patternName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// toPattern rewrites an OpenAPI path template into the router's ":name" syntax.
func toPattern(path string) (string, error) {
	var bad string
	pattern := templateVar.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		if !patternName.MatchString(name) && bad == "" {
			bad = name
		}
		return ":" + name
	})
	if bad != "" {
		return "", fmt.Errorf("path parameter name %q cannot be used in a route pattern", bad)
	}
	return pattern, nil
}

// SetRoute compiles the operation declared at path and method into a route and inserts
// it into the router at RouteKey(path, method), replacing any previous route there.
//
// The route runs, in order: the content-type dispatcher when the operation declares a
// request body, the parameters validator, the request body validator, the responses
// validator, the extra middlewares and finally dispatcher. The responses validator
// wraps everything after it, so its check runs once the dispatcher has produced a view.
//
// Every failure is a *oaserrors.ConfigError and leaves the router unchanged.
func (b *Binder) SetRoute(path, method string, dispatcher httpserver.Middleware, middlewares ...httpserver.Middleware) error {
	switch {
	case path == "" || !strings.HasPrefix(path, "/"):
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidPath, Path: path, Method: method,
			Message: "path must be a non-empty string starting with /"}
	case method == "":
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidMethod, Path: path,
			Message: "method must be a non-empty string"}
	case isNilMiddleware(dispatcher):
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidDispatcher, Path: path, Method: method,
			Message: "dispatcher must be a middleware"}
	}
	method = strings.ToLower(method)

	op, err := b.resolve(path, method)
	if err != nil {
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidOperation, Path: path, Method: method,
			Message: "operation could not be resolved", Cause: err}
	}

	cfg := httpserver.RouteConfig{
		Method:     method,
		Dispatcher: dispatcher,
		Conditions: []httpserver.Condition{httpserver.MethodCondition{Method: method}},
		Operation:  op,
	}

	if types := op.RequestContentTypes(); types != nil {
		cfg.ContentTypes = make(map[string]httpserver.Middleware, len(types))
		for _, ct := range types {
			bodyParser, err := ContentTypeMiddleware(ct)
			if err != nil {
				var cfgErr *oaserrors.ConfigError
				if errors.As(err, &cfgErr) {
					cfgErr.Path, cfgErr.Method = path, method
				}
				return err
			}
			cfg.ContentTypes[ct] = bodyParser
		}
		cfg.Conditions = append(cfg.Conditions, httpserver.ContentTypeCondition{Types: types})
		cfg.Middlewares = append(cfg.Middlewares, httpserver.ContentTypeDispatcher{})
	}

	if cfg.Pattern, err = toPattern(path); err != nil {
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidPath, Path: path, Method: method, Message: err.Error()}
	}

	cfg.Middlewares = append(cfg.Middlewares,
		NewParametersMiddleware(b.proc, op),
		NewRequestBodiesMiddleware(b.proc, op),
		NewResponsesMiddleware(b.proc, op),
	)
	cfg.Middlewares = append(cfg.Middlewares, middlewares...)

	route, err := httpserver.NewRoute(cfg)
	if err != nil {
		return &oaserrors.ConfigError{Kind: oaserrors.InvalidPath, Path: path, Method: method, Cause: err}
	}

	key := RouteKey(path, method)
	b.router.Set(key, route)
	b.logger.Debug("route registered",
		"key", key,
		"pattern", route.Pattern(),
		"content_types", route.ContentTypes(),
		"middlewares", len(route.Middlewares()))
	return nil
}

// resolve looks up, validates and denormalizes one operation.
func (b *Binder) resolve(path, method string) (*oas.Operation, error) {
	decl, err := b.proc.LookupOperation(path, method)
	if err != nil {
		return nil, err
	}
	if err := b.proc.ValidateOperation(decl); err != nil {
		return nil, err
	}
	return b.proc.DenormalizeOperation(decl)
}

func isNilMiddleware(m httpserver.Middleware) bool {
	if m == nil {
		return true
	}
	switch v := reflect.ValueOf(m); v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
