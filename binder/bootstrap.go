package binder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oaserrors"
)

// Locator resolves the dispatcher and middleware names an operation declares.
type Locator interface {
	Lookup(name string) (httpserver.Middleware, bool)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(name string) (httpserver.Middleware, bool)

// Lookup implements Locator.
func (f LocatorFunc) Lookup(name string) (httpserver.Middleware, bool) { return f(name) }

// Registry is a Locator backed by a map. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]httpserver.Middleware
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]httpserver.Middleware)}
}

// Register binds name to m, replacing any previous binding.
func (r *Registry) Register(name string, m httpserver.Middleware) error {
	if name == "" {
		return fmt.Errorf("binder: registry name cannot be empty")
	}
	if isNilMiddleware(m) {
		return fmt.Errorf("binder: middleware for %q cannot be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = m
	return nil
}

// Lookup implements Locator.
func (r *Registry) Lookup(name string) (httpserver.Middleware, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[name]
	return m, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bootstrap registers a route for every declared operation that names a dispatcher,
// through its operationId or, failing that, its x-dispatcher extension. Names listed in
// x-middlewares become extra middlewares. All names are resolved through locator before
// the operation's route is compiled; operations naming no dispatcher are skipped.
//
// Bootstrap stops at the first failure. Routes registered before it stay in place.
func (b *Binder) Bootstrap(locator Locator) error {
	if locator == nil {
		return fmt.Errorf("binder: locator cannot be nil")
	}

	registered, skipped := 0, 0
	for _, decl := range b.proc.Declarations() {
		name := decl.DispatcherName()
		if name == "" {
			b.logger.Debug("operation skipped: no dispatcher named", "key", RouteKey(decl.Path, decl.Method))
			skipped++
			continue
		}

		dispatcher, ok := locator.Lookup(name)
		if !ok || isNilMiddleware(dispatcher) {
			return &oaserrors.ConfigError{
				Kind:    oaserrors.InvalidDispatcher,
				Path:    decl.Path,
				Method:  decl.Method,
				Name:    name,
				Message: fmt.Sprintf("no dispatcher registered as %q", name),
			}
		}

		var middlewares []httpserver.Middleware
		for _, mwName := range decl.MiddlewareNames() {
			m, ok := locator.Lookup(mwName)
			if !ok || isNilMiddleware(m) {
				return &oaserrors.ConfigError{
					Kind:    oaserrors.InvalidMiddleware,
					Path:    decl.Path,
					Method:  decl.Method,
					Name:    mwName,
					Message: fmt.Sprintf("no middleware registered as %q", mwName),
				}
			}
			middlewares = append(middlewares, m)
		}

		if err := b.SetRoute(decl.Path, decl.Method, dispatcher, middlewares...); err != nil {
			return err
		}
		registered++
	}

	b.logger.Info("bootstrap complete", "registered", registered, "skipped", skipped)
	return nil
}
