package httpserver

import (
	"slices"
	"sort"
	"sync"
)

// Router is the route table. Keys are chosen by the caller; the binder uses
// "<method> <path>" with the path as declared in the specification. Setting an existing
// key replaces its route.
//
// Router is safe for concurrent use. Registration is expected at startup, before the
// server takes traffic.
type Router struct {
	mu     sync.RWMutex
	routes map[string]*Route
	// sorted caches routes ordered by pattern specificity; nil when stale
	sorted []*Route
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]*Route)}
}

// Set stores route under key, replacing any previous route.
func (r *Router) Set(key string, route *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[key] = route
	r.sorted = nil
}

// Get returns the route stored under key.
func (r *Router) Get(key string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[key]
	return route, ok
}

// Has reports whether key is present.
func (r *Router) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (r *Router) Delete(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[key]; !ok {
		return false
	}
	delete(r.routes, key)
	r.sorted = nil
	return true
}

// Keys returns the keys in sorted order.
func (r *Router) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of routes.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Routes returns a copy of the routes ordered for matching: literal segments before
// placeholders, longer patterns before shorter ones.
func (r *Router) Routes() []*Route {
	return slices.Clone(r.ordered())
}

// ordered returns the cached match order. Callers must not modify it.
func (r *Router) ordered() []*Route {
	r.mu.RLock()
	if r.sorted != nil {
		defer r.mu.RUnlock()
		return r.sorted
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sorted == nil {
		sorted := make([]*Route, 0, len(r.routes))
		for _, route := range r.routes {
			sorted = append(sorted, route)
		}
		slices.SortFunc(sorted, func(a, b *Route) int {
			switch {
			case a.pattern.moreSpecific(b.pattern):
				return -1
			case b.pattern.moreSpecific(a.pattern):
				return 1
			}
			if a.method < b.method {
				return -1
			}
			if a.method > b.method {
				return 1
			}
			return 0
		})
		r.sorted = sorted
	}
	return r.sorted
}
