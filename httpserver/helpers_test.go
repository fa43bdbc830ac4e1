package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder appends its name to a shared log when dispatched.
type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Dispatch(_ *Request, _ *Session) error {
	*r.log = append(*r.log, r.name)
	return nil
}

func (r recorder) Name() string { return r.name }

func statusDispatcher(status int, body any) Middleware {
	return MiddlewareFunc(func(_ *Request, sess *Session) error {
		sess.View.Status = status
		sess.View.Body = body
		return nil
	})
}

func mustRoute(t *testing.T, cfg RouteConfig) *Route {
	t.Helper()
	if cfg.Method == "" {
		cfg.Method = "get"
	}
	if len(cfg.Conditions) == 0 {
		cfg.Conditions = []Condition{MethodCondition{Method: cfg.Method}}
	}
	route, err := NewRoute(cfg)
	require.NoError(t, err)
	return route
}

func newSession(t *testing.T, route *Route, body string) (*Request, *Session) {
	t.Helper()
	var r *http.Request
	var raw []byte
	if body == "" {
		r = httptest.NewRequest(http.MethodGet, "/", nil)
	} else {
		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		raw = []byte(body)
	}
	req := NewRequest(r, nil, raw)
	sess := NewSession(route, req, nil)
	t.Cleanup(sess.Close)
	return req, sess
}
