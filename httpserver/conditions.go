package httpserver

import (
	"net/http"
	"strings"

	"github.com/erraggy/oashttp/internal/httputil"
)

// Condition is a routing predicate evaluated before a route is selected.
// When a request matches a route's pattern but fails one of its conditions, the server
// answers with the condition's RejectStatus unless another route accepts the request.
type Condition interface {
	Check(r *http.Request) bool
	RejectStatus() int
}

// MethodCondition accepts requests whose method equals Method, case-insensitively.
type MethodCondition struct {
	Method string
}

// Check implements Condition.
func (c MethodCondition) Check(r *http.Request) bool {
	return strings.EqualFold(r.Method, c.Method)
}

// RejectStatus implements Condition.
func (MethodCondition) RejectStatus() int {
	return http.StatusMethodNotAllowed
}

// Name implements Named.
func (c MethodCondition) Name() string {
	return "method:" + strings.ToLower(c.Method)
}

// ContentTypeCondition accepts requests without a body and requests whose Content-Type
// matches one of Types. Types may contain wildcards such as "application/*".
type ContentTypeCondition struct {
	Types []string
}

// Check implements Condition.
func (c ContentTypeCondition) Check(r *http.Request) bool {
	if !hasBody(r) {
		return true
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	for _, t := range c.Types {
		if httputil.MatchMediaType(t, ct) {
			return true
		}
	}
	return false
}

// RejectStatus implements Condition.
func (ContentTypeCondition) RejectStatus() int {
	return http.StatusUnsupportedMediaType
}

// Name implements Named.
func (c ContentTypeCondition) Name() string {
	return "content-type:" + strings.Join(c.Types, ",")
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	return r.ContentLength != 0
}
