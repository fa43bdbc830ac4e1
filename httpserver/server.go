package httpserver

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/erraggy/oashttp"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oashttp/oaslog"
)

// Server dispatches requests to the routes of a Router.
//
// For each request the server picks the most specific route whose pattern matches the
// path and whose conditions all hold, reads the body, runs the route's chain and renders
// either the view or, for aborted sessions, an [ErrorBody].
type Server struct {
	router  *Router
	logger  oaslog.Logger
	metrics *Metrics
	maxBody int64
}

// NewServer creates a Server over router.
func NewServer(router *Router, opts ...Option) (*Server, error) {
	if router == nil {
		return nil, errors.New("httpserver: router cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	s := &Server{
		router:  router,
		logger:  cfg.logger,
		maxBody: cfg.maxBodySize,
	}
	if cfg.registerer != nil {
		s.metrics = NewMetrics(cfg.registerer)
	}
	return s, nil
}

// Metrics returns the server's collectors, or nil when metrics are disabled.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Server", oashttp.UserAgent())

	route, params, reject := s.match(r)
	if route == nil {
		body := rejection(r, reject)
		if reject.status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", strings.Join(reject.allow, ", "))
		}
		_ = writeError(w, body)
		s.metrics.observe(unmatchedRoute, r.Method, body.Status, time.Since(start))
		return
	}
	label := route.Pattern()

	raw, err := s.readBody(w, r)
	if err != nil {
		body := NewErrorBody(err)
		_ = writeError(w, body)
		s.metrics.abort(label, body.Code)
		s.metrics.observe(label, r.Method, body.Status, time.Since(start))
		return
	}

	req := NewRequest(r, params, raw)
	sess := NewSession(route, req, s.logger)
	defer sess.Close()
	w.Header().Set("X-Request-Id", sess.ID.String())

	sess.Next()

	if sess.Abortion.Aborted() {
		reason := sess.Abortion.Err()
		if r.Context().Err() != nil {
			s.logger.Debug("client went away", "route", label, "session", sess.ID.String())
			s.metrics.abort(label, "client_closed")
			return
		}
		body := NewErrorBody(reason)
		s.logger.Warn("request aborted",
			"route", label,
			"method", r.Method,
			"url", r.URL.String(),
			"status", body.Status,
			"code", body.Code,
			"session", sess.ID.String(),
			"error", reason)
		if err := writeError(w, body); err != nil {
			s.logger.Debug("writing error response failed", "error", err)
		}
		s.metrics.abort(label, body.Code)
		s.metrics.observe(label, r.Method, body.Status, time.Since(start))
		return
	}

	status := sess.View.Status
	if status == 0 {
		status = http.StatusOK
	}
	if err := writeView(w, sess.View); err != nil {
		s.logger.Error("writing response failed", "route", label, "error", err)
	}
	s.metrics.observe(label, r.Method, status, time.Since(start))
}

type rejectInfo struct {
	status int
	depth  int
	allow  []string
}

// match selects the route for r. When no route accepts r, the rejection reports the
// status of the condition that failed furthest into a candidate's condition list:
// 404 when no pattern matched, 405 for a method mismatch, 415 for a media type mismatch.
func (s *Server) match(r *http.Request) (*Route, map[string]string, rejectInfo) {
	reject := rejectInfo{status: http.StatusNotFound, depth: -1}
	path := r.URL.EscapedPath()

	for _, route := range s.router.ordered() {
		params, ok := route.pattern.Match(path)
		if !ok {
			continue
		}
		failed := -1
		for i, cond := range route.conditions {
			if !cond.Check(r) {
				failed = i
				if i > reject.depth {
					reject.depth = i
					reject.status = cond.RejectStatus()
				}
				break
			}
		}
		if failed < 0 {
			return route, params, reject
		}
		if method := strings.ToUpper(route.method); !slices.Contains(reject.allow, method) {
			reject.allow = append(reject.allow, method)
		}
	}
	slices.Sort(reject.allow)
	return nil, nil, reject
}

func rejection(r *http.Request, reject rejectInfo) ErrorBody {
	body := ErrorBody{Status: reject.status, Message: http.StatusText(reject.status)}
	switch reject.status {
	case http.StatusNotFound:
		body.Code = "E_NOT_FOUND"
		body.Message = "No route for " + r.Method + " " + r.URL.Path
	case http.StatusMethodNotAllowed:
		body.Code = "E_METHOD_NOT_ALLOWED"
		body.Message = "Method " + r.Method + " is not allowed for " + r.URL.Path
	case http.StatusUnsupportedMediaType:
		body.Code = "E_UNSUPPORTED_MEDIA_TYPE"
		body.Message = "Unsupported Content-Type " + r.Header.Get("Content-Type")
	}
	return body
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &oaserrors.ResourceLimitError{
				ResourceType: "body_size",
				Limit:        tooLarge.Limit,
				Message:      "request body too large",
			}
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
