package oas

import (
	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oastools/parser"
)

// Declaration is one (path, method) entry of a specification as written, before any
// reference resolution.
type Declaration struct {
	Path      string
	Method    string // lowercase
	PathItem  *parser.PathItem
	Operation *parser.Operation
}

// operationFor returns the operation declared on item for a lowercase method.
func operationFor(item *parser.PathItem, method string) *parser.Operation {
	if item == nil {
		return nil
	}
	switch method {
	case httputil.MethodGet:
		return item.Get
	case httputil.MethodPut:
		return item.Put
	case httputil.MethodPost:
		return item.Post
	case httputil.MethodDelete:
		return item.Delete
	case httputil.MethodOptions:
		return item.Options
	case httputil.MethodHead:
		return item.Head
	case httputil.MethodPatch:
		return item.Patch
	case httputil.MethodTrace:
		return item.Trace
	}
	return nil
}

// Declarations lists every declared operation, sorted by path and then by method in
// httputil.Methods order.
func (s *Specification) Declarations() []Declaration {
	var decls []Declaration
	for _, path := range s.Paths() {
		item := s.doc.Paths[path]
		for _, method := range httputil.Methods {
			if op := operationFor(item, method); op != nil {
				decls = append(decls, Declaration{Path: path, Method: method, PathItem: item, Operation: op})
			}
		}
	}
	return decls
}

// DispatcherName returns the name a bootstrap resolves the dispatcher by: the
// operationId, or the x-dispatcher extension when operationId is empty.
func (d Declaration) DispatcherName() string {
	if d.Operation == nil {
		return ""
	}
	if d.Operation.OperationID != "" {
		return d.Operation.OperationID
	}
	return extensionString(d.Operation.Extra, ExtDispatcher)
}

// MiddlewareNames returns the names listed by the x-middlewares extension.
func (d Declaration) MiddlewareNames() []string {
	if d.Operation == nil {
		return nil
	}
	return extensionList(d.Operation.Extra, ExtMiddlewares)
}
