package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erraggy/oashttp/oaslog"
	"github.com/google/uuid"
)

// ErrAborted is the abortion cause recorded when Abort is called with a nil error.
var ErrAborted = errors.New("httpserver: session aborted")

// View is the response being built by a chain.
// Status 0 renders as 200. A nil Body renders no body; []byte and string bodies are
// written as-is; anything else is encoded as JSON.
type View struct {
	Status int
	Header http.Header
	Body   any
}

// Abortion tracks whether a session was aborted and why. It derives from the request
// context, so a client disconnect also aborts the session.
type Abortion struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewAbortion creates an Abortion derived from parent.
func NewAbortion(parent context.Context) *Abortion {
	ctx, cancel := context.WithCancelCause(parent)
	return &Abortion{ctx: ctx, cancel: cancel}
}

// Abort stops the chain. The first call's reason wins.
func (a *Abortion) Abort(reason error) {
	if reason == nil {
		reason = ErrAborted
	}
	a.cancel(reason)
}

// Aborted reports whether the session was aborted.
func (a *Abortion) Aborted() bool {
	return a.ctx.Err() != nil
}

// Err returns the abortion reason, or nil.
func (a *Abortion) Err() error {
	if a.ctx.Err() == nil {
		return nil
	}
	return context.Cause(a.ctx)
}

// Done is closed once the session is aborted.
func (a *Abortion) Done() <-chan struct{} {
	return a.ctx.Done()
}

// Context returns the abortion context, for stages that call blocking code.
func (a *Abortion) Context() context.Context {
	return a.ctx
}

// Session is the per-request state threaded through a route's chain.
type Session struct {
	ID       uuid.UUID
	Route    *Route
	View     *View
	Abortion *Abortion

	req    *Request
	chain  []Middleware
	index  int
	logger oaslog.Logger
}

// NewSession prepares a session that will run route's chain for req.
func NewSession(route *Route, req *Request, logger oaslog.Logger) *Session {
	id := uuid.New()
	var chain []Middleware
	if route != nil {
		chain = route.Chain()
	}
	return &Session{
		ID:       id,
		Route:    route,
		View:     &View{Header: http.Header{}},
		Abortion: NewAbortion(req.Context()),
		req:      req,
		chain:    chain,
		logger:   oaslog.OrNop(logger).With("session", id.String()),
	}
}

// Next runs the remaining stages in order. Stages that return without calling Next
// themselves are followed by the next stage. Next returns once the chain is exhausted or
// the session is aborted.
func (s *Session) Next() {
	for s.index < len(s.chain) {
		if s.Abortion.Aborted() {
			return
		}
		m := s.chain[s.index]
		s.index++
		s.run(m)
	}
}

// Close releases the session's context.
func (s *Session) Close() {
	s.Abortion.cancel(context.Canceled)
}

func (s *Session) run(m Middleware) {
	err := s.dispatch(m)
	if err == nil {
		return
	}
	if h, ok := m.(ErrorHandler); ok {
		s.handle(h, err)
		return
	}
	s.Abortion.Abort(err)
}

func (s *Session) dispatch(m Middleware) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("middleware panicked", "middleware", MiddlewareName(m), "panic", r)
			err = fmt.Errorf("httpserver: panic in %s: %v", MiddlewareName(m), r)
		}
	}()
	return m.Dispatch(s.req, s)
}

func (s *Session) handle(h ErrorHandler, reason error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("error handler panicked", "panic", r)
			s.Abortion.Abort(fmt.Errorf("httpserver: panic while handling %w: %v", reason, r))
		}
	}()
	h.OnError(reason, s.req, s)
}
