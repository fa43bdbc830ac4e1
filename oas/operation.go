package oas

import (
	"sort"
	"strconv"

	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oastools/parser"
)

// Extension keys read by Bootstrap.
const (
	ExtDispatcher  = "x-dispatcher"
	ExtMiddlewares = "x-middlewares"
)

// Operation is the denormalized form of a declared operation: every local reference is
// inlined and path-level parameters are merged in. It is shared read-only by every
// request routed to it.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	// Parameters in declaration order: path-level first, operation-level overriding
	// entries with the same location and name in place.
	Parameters  []*Parameter
	RequestBody *parser.RequestBody
	// Responses is keyed by status key ("200", "4XX", "default").
	Responses  map[string]*parser.Response
	Extensions map[string]any
}

// Parameter is a resolved parameter together with the default and nullability facts
// that the typed model cannot express.
type Parameter struct {
	*parser.Parameter
	// HasDefault is true when a default was declared, including an explicit null.
	HasDefault   bool
	DefaultValue any
	// Nullable reports whether null is an acceptable value.
	Nullable bool
}

// ValueSchema returns the parameter schema, or the schema of its single content entry.
func (p *Parameter) ValueSchema() *parser.Schema {
	if p.Parameter.Schema != nil {
		return p.Parameter.Schema
	}
	for _, mt := range p.Content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

// StatusKeys returns the declared status keys: numeric codes ascending, then range keys,
// then default.
func (o *Operation) StatusKeys() []string {
	keys := make([]string, 0, len(o.Responses))
	for k := range o.Responses {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		if k == httputil.DefaultKey {
			return 2
		}
		if _, err := strconv.Atoi(k); err == nil {
			return 0
		}
		return 1
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Response returns the response declared for status, matching the exact code first and
// then its NXX range.
func (o *Operation) Response(status int) (*parser.Response, bool) {
	key, ok := httputil.MatchStatus(o.Responses, status)
	if !ok {
		return nil, false
	}
	return o.Responses[key], true
}

// RequestContentTypes returns the sorted media types of the request body, or nil when the
// operation declares no body content.
func (o *Operation) RequestContentTypes() []string {
	if o.RequestBody == nil || len(o.RequestBody.Content) == 0 {
		return nil
	}
	types := make([]string, 0, len(o.RequestBody.Content))
	for mt := range o.RequestBody.Content {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Dispatcher returns the x-dispatcher extension value.
func (o *Operation) Dispatcher() string {
	return extensionString(o.Extensions, ExtDispatcher)
}

// MiddlewareNames returns the names listed by the x-middlewares extension.
func (o *Operation) MiddlewareNames() []string {
	return extensionList(o.Extensions, ExtMiddlewares)
}

func extensionString(ext map[string]any, key string) string {
	s, _ := ext[key].(string)
	return s
}

// extensionList reads a list of strings; a single string is a one-element list.
func extensionList(ext map[string]any, key string) []string {
	switch v := ext[key].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
