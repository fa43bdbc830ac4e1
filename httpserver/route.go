package httpserver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oashttp/internal/httputil"
)

// RouteConfig describes a route before it is frozen by [NewRoute].
type RouteConfig struct {
	// Method is the HTTP method; it is stored lowercased
	Method string
	// Pattern is the ":name" path pattern
	Pattern string
	// Dispatcher is the final stage, run after every middleware
	Dispatcher Middleware
	// Conditions must all hold for a request to be routed here
	Conditions []Condition
	// Middlewares run in order before the dispatcher; nested lists are flattened
	Middlewares []Middleware
	// ContentTypes binds request media types to body parsers; nil when the route
	// accepts no request body
	ContentTypes map[string]Middleware
	// Operation is attached read-only for later stages and tooling
	Operation any
}

// Route is a compiled, immutable route descriptor.
type Route struct {
	method       string
	pattern      *Pattern
	dispatcher   Middleware
	conditions   []Condition
	middlewares  []Middleware
	contentTypes map[string]Middleware
	typeOrder    []string
	operation    any
}

// NewRoute validates cfg and freezes it into a Route.
func NewRoute(cfg RouteConfig) (*Route, error) {
	if cfg.Method == "" {
		return nil, fmt.Errorf("httpserver: route method cannot be empty")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("httpserver: route dispatcher cannot be nil")
	}
	pattern, err := CompilePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	r := &Route{
		method:      strings.ToLower(cfg.Method),
		pattern:     pattern,
		dispatcher:  cfg.Dispatcher,
		conditions:  slices.Clone(cfg.Conditions),
		middlewares: Flatten(cfg.Middlewares...),
		operation:   cfg.Operation,
	}
	if cfg.ContentTypes != nil {
		r.contentTypes = make(map[string]Middleware, len(cfg.ContentTypes))
		for ct, m := range cfg.ContentTypes {
			r.contentTypes[strings.ToLower(ct)] = m
			r.typeOrder = append(r.typeOrder, strings.ToLower(ct))
		}
		slices.Sort(r.typeOrder)
	}
	return r, nil
}

// Method returns the lowercased method the route answers.
func (r *Route) Method() string { return r.method }

// Pattern returns the ":name" path pattern.
func (r *Route) Pattern() string { return r.pattern.String() }

// Dispatcher returns the final stage.
func (r *Route) Dispatcher() Middleware { return r.dispatcher }

// Conditions returns a copy of the route's conditions.
func (r *Route) Conditions() []Condition { return slices.Clone(r.conditions) }

// Middlewares returns a copy of the stages that run before the dispatcher.
func (r *Route) Middlewares() []Middleware { return slices.Clone(r.middlewares) }

// ContentTypes returns the sorted request media types the route accepts, or nil when
// the route accepts no request body.
func (r *Route) ContentTypes() []string {
	if r.contentTypes == nil {
		return nil
	}
	return slices.Clone(r.typeOrder)
}

// ContentTypeMiddleware returns the body parser bound to contentType. Parameters are
// ignored, and wildcard bindings such as "application/*" match when no exact binding
// exists.
func (r *Route) ContentTypeMiddleware(contentType string) (Middleware, bool) {
	if r.contentTypes == nil {
		return nil, false
	}
	base := httputil.BaseMediaType(contentType)
	if m, ok := r.contentTypes[base]; ok {
		return m, true
	}
	for _, ct := range r.typeOrder {
		if httputil.MatchMediaType(ct, base) {
			return r.contentTypes[ct], true
		}
	}
	return nil, false
}

// Operation returns the value attached at construction, or nil.
func (r *Route) Operation() any { return r.operation }

// Chain returns the full stage sequence: middlewares followed by the dispatcher.
func (r *Route) Chain() []Middleware {
	chain := make([]Middleware, 0, len(r.middlewares)+1)
	chain = append(chain, r.middlewares...)
	return append(chain, r.dispatcher)
}
