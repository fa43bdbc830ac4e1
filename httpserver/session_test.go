package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wrapping struct {
	log *[]string
}

func (w wrapping) Dispatch(_ *Request, sess *Session) error {
	*w.log = append(*w.log, "wrap:before")
	sess.Next()
	*w.log = append(*w.log, "wrap:after")
	return nil
}

type handled struct {
	err    error
	reason *error
}

func (h handled) Dispatch(_ *Request, _ *Session) error { return h.err }

func (h handled) OnError(reason error, _ *Request, sess *Session) {
	*h.reason = reason
	sess.Abortion.Abort(errors.New("translated"))
}

func TestSessionNext(t *testing.T) {
	t.Run("runs stages in order then dispatcher", func(t *testing.T) {
		var log []string
		route := mustRoute(t, RouteConfig{
			Pattern:     "/",
			Dispatcher:  recorder{"dispatcher", &log},
			Middlewares: []Middleware{recorder{"a", &log}, recorder{"b", &log}},
		})
		_, sess := newSession(t, route, "")

		sess.Next()

		assert.Equal(t, []string{"a", "b", "dispatcher"}, log)
		assert.False(t, sess.Abortion.Aborted())
	})

	t.Run("wrapping stage observes the rest of the chain", func(t *testing.T) {
		var log []string
		route := mustRoute(t, RouteConfig{
			Pattern:    "/",
			Dispatcher: recorder{"dispatcher", &log},
			Middlewares: []Middleware{
				recorder{"a", &log},
				wrapping{&log},
				recorder{"b", &log},
			},
		})
		_, sess := newSession(t, route, "")

		sess.Next()

		assert.Equal(t, []string{"a", "wrap:before", "b", "dispatcher", "wrap:after"}, log)
	})

	t.Run("error without handler aborts with raw reason", func(t *testing.T) {
		var log []string
		boom := errors.New("boom")
		route := mustRoute(t, RouteConfig{
			Pattern:    "/",
			Dispatcher: recorder{"dispatcher", &log},
			Middlewares: []Middleware{
				MiddlewareFunc(func(*Request, *Session) error { return boom }),
			},
		})
		_, sess := newSession(t, route, "")

		sess.Next()

		assert.True(t, sess.Abortion.Aborted())
		assert.ErrorIs(t, sess.Abortion.Err(), boom)
		assert.Empty(t, log, "dispatcher must not run after abort")
	})

	t.Run("error goes to OnError", func(t *testing.T) {
		var reason error
		boom := errors.New("boom")
		route := mustRoute(t, RouteConfig{
			Pattern:     "/",
			Dispatcher:  statusDispatcher(http.StatusOK, nil),
			Middlewares: []Middleware{handled{err: boom, reason: &reason}},
		})
		_, sess := newSession(t, route, "")

		sess.Next()

		assert.ErrorIs(t, reason, boom)
		assert.EqualError(t, sess.Abortion.Err(), "translated")
	})

	t.Run("panic is recovered into an abort", func(t *testing.T) {
		route := mustRoute(t, RouteConfig{
			Pattern: "/",
			Dispatcher: MiddlewareFunc(func(*Request, *Session) error {
				panic("kaboom")
			}),
		})
		_, sess := newSession(t, route, "")

		assert.NotPanics(t, sess.Next)
		require.True(t, sess.Abortion.Aborted())
		assert.Contains(t, sess.Abortion.Err().Error(), "kaboom")
	})

	t.Run("nested list is flattened", func(t *testing.T) {
		var log []string
		route := mustRoute(t, RouteConfig{
			Pattern:    "/",
			Dispatcher: recorder{"dispatcher", &log},
			Middlewares: []Middleware{
				MiddlewareList{recorder{"a", &log}, MiddlewareList{recorder{"b", &log}}},
				nil,
				recorder{"c", &log},
			},
		})
		assert.Len(t, route.Middlewares(), 3)

		_, sess := newSession(t, route, "")
		sess.Next()
		assert.Equal(t, []string{"a", "b", "c", "dispatcher"}, log)
	})
}

func TestAbortion(t *testing.T) {
	t.Run("first reason wins", func(t *testing.T) {
		a := NewAbortion(context.Background())
		assert.False(t, a.Aborted())
		assert.NoError(t, a.Err())

		first := errors.New("first")
		a.Abort(first)
		a.Abort(errors.New("second"))

		assert.True(t, a.Aborted())
		assert.Equal(t, first, a.Err())
		select {
		case <-a.Done():
		default:
			t.Fatal("Done should be closed")
		}
	})

	t.Run("nil reason", func(t *testing.T) {
		a := NewAbortion(context.Background())
		a.Abort(nil)
		assert.ErrorIs(t, a.Err(), ErrAborted)
	})

	t.Run("parent cancellation aborts", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		a := NewAbortion(parent)
		cancel()
		assert.True(t, a.Aborted())
		assert.ErrorIs(t, a.Err(), context.Canceled)
	})
}

func TestMiddlewareName(t *testing.T) {
	assert.Equal(t, "json-body-parser", MiddlewareName(JSONBodyParser{}))
	assert.Equal(t, "<nil>", MiddlewareName(nil))
	assert.Equal(t, "httpserver.wrapping", MiddlewareName(wrapping{}))
	assert.Contains(t, MiddlewareName(MiddlewareFunc(func(*Request, *Session) error { return nil })), "httpserver.")
}
