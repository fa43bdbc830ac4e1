package httpserver

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Middleware is one stage of a route's chain.
//
// Stages run in order. A stage that returns without calling [Session.Next] lets the chain
// continue with the following stage; a stage that calls Next runs the rest of the chain
// before its own code after the call, and so observes the final view.
type Middleware interface {
	Dispatch(req *Request, sess *Session) error
}

// ErrorHandler is implemented by stages that translate their own failures.
// When Dispatch returns an error (or panics), OnError receives it and decides whether to
// abort the session. Stages without OnError abort with the raw error.
type ErrorHandler interface {
	OnError(reason error, req *Request, sess *Session)
}

// Named is implemented by stages that report a stable name in route listings.
type Named interface {
	Name() string
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(req *Request, sess *Session) error

// Dispatch calls f(req, sess).
func (f MiddlewareFunc) Dispatch(req *Request, sess *Session) error {
	return f(req, sess)
}

// Name returns the function's symbol name.
func (f MiddlewareFunc) Name() string {
	fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if fn == nil {
		return "func"
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// MiddlewareList groups stages so they can be passed around as one value.
// Route construction flattens lists, so each member becomes its own stage.
type MiddlewareList []Middleware

// Dispatch runs each member in order, stopping at the first error or abort.
func (l MiddlewareList) Dispatch(req *Request, sess *Session) error {
	for _, m := range l {
		if sess.Abortion.Aborted() {
			return nil
		}
		if err := m.Dispatch(req, sess); err != nil {
			return err
		}
	}
	return nil
}

// Flatten expands nested MiddlewareList values into a single ordered slice and drops
// nil entries.
func Flatten(middlewares ...Middleware) []Middleware {
	out := make([]Middleware, 0, len(middlewares))
	for _, m := range middlewares {
		switch v := m.(type) {
		case nil:
		case MiddlewareList:
			out = append(out, Flatten(v...)...)
		default:
			out = append(out, m)
		}
	}
	return out
}

// MiddlewareName returns a display name for m: its Name() when it implements Named,
// otherwise its Go type.
func MiddlewareName(m Middleware) string {
	if m == nil {
		return "<nil>"
	}
	if n, ok := m.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}
