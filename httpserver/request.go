package httpserver

import (
	"context"
	"net/http"
	"net/url"
)

// Request is the server's view of an inbound request, shared by every stage of a chain.
//
// PathParams holds raw placeholder values from the route pattern. Param holds the typed
// value of every conformed parameter, whatever its location; HeaderParam additionally
// holds the header parameters alone.
type Request struct {
	Method      string
	URL         *url.URL
	Header      http.Header
	PathParams  map[string]string
	Param       map[string]any
	HeaderParam map[string]any

	// RawBody is the request body as read from the wire; nil when there was none
	RawBody []byte
	// Body is the decoded body, set by the route's body parser
	Body any

	raw *http.Request
}

// NewRequest wraps r. The body is not read from r; pass it as rawBody.
func NewRequest(r *http.Request, pathParams map[string]string, rawBody []byte) *Request {
	if pathParams == nil {
		pathParams = map[string]string{}
	}
	return &Request{
		Method:      r.Method,
		URL:         r.URL,
		Header:      r.Header,
		PathParams:  pathParams,
		Param:       map[string]any{},
		HeaderParam: map[string]any{},
		RawBody:     rawBody,
		raw:         r,
	}
}

// HasBody reports whether the request carried a non-empty body.
func (r *Request) HasBody() bool {
	return len(r.RawBody) > 0
}

// ContentType returns the Content-Type header.
func (r *Request) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Cookie returns the named cookie.
func (r *Request) Cookie(name string) (*http.Cookie, error) {
	return r.raw.Cookie(name)
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// HTTP returns the underlying *http.Request.
func (r *Request) HTTP() *http.Request {
	return r.raw
}
