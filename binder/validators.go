package binder

import (
	"net/http"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oashttp/oaserrors"
)

// abortRequest aborts sess with a 400 RequestError of the given kind.
func abortRequest(kind oaserrors.RequestKind, reason error, req *httpserver.Request, sess *httpserver.Session) {
	url := ""
	if req.URL != nil {
		url = req.URL.String()
	}
	sess.Abortion.Abort(&oaserrors.RequestError{
		Kind:   kind,
		Status: http.StatusBadRequest,
		Method: req.Method,
		URL:    url,
		Cause:  reason,
	})
}

// ParametersMiddleware checks every declared parameter in declaration order. Typed and
// defaulted values are written into the request by the processor.
type ParametersMiddleware struct {
	proc Processor
	op   *oas.Operation
}

// NewParametersMiddleware returns the parameters validator for op.
func NewParametersMiddleware(proc Processor, op *oas.Operation) *ParametersMiddleware {
	return &ParametersMiddleware{proc: proc, op: op}
}

// Dispatch implements httpserver.Middleware.
func (m *ParametersMiddleware) Dispatch(req *httpserver.Request, _ *httpserver.Session) error {
	for _, p := range m.op.Parameters {
		if err := m.proc.ConformParameter(p, req); err != nil {
			return err
		}
	}
	return nil
}

// OnError implements httpserver.ErrorHandler.
func (m *ParametersMiddleware) OnError(reason error, req *httpserver.Request, sess *httpserver.Session) {
	abortRequest(oaserrors.InvalidRequestParameters, reason, req, sess)
}

// Name implements httpserver.Named.
func (m *ParametersMiddleware) Name() string { return "oas-parameters" }

// RequestBodiesMiddleware checks the request body. It does nothing when the operation
// declares no request body.
type RequestBodiesMiddleware struct {
	proc Processor
	op   *oas.Operation
}

// NewRequestBodiesMiddleware returns the request body validator for op.
func NewRequestBodiesMiddleware(proc Processor, op *oas.Operation) *RequestBodiesMiddleware {
	return &RequestBodiesMiddleware{proc: proc, op: op}
}

// Dispatch implements httpserver.Middleware.
func (m *RequestBodiesMiddleware) Dispatch(req *httpserver.Request, _ *httpserver.Session) error {
	if m.op.RequestBody == nil {
		return nil
	}
	return m.proc.ConformRequestBody(m.op, req)
}

// OnError implements httpserver.ErrorHandler.
func (m *RequestBodiesMiddleware) OnError(reason error, req *httpserver.Request, sess *httpserver.Session) {
	abortRequest(oaserrors.InvalidRequestBody, reason, req, sess)
}

// Name implements httpserver.Named.
func (m *RequestBodiesMiddleware) Name() string { return "oas-request-body" }

// ResponsesMiddleware wraps the rest of the chain: it runs every later stage first and
// then checks the view they produced. A status the operation does not declare and a
// nonconforming view both abort with a 400 RequestError.
type ResponsesMiddleware struct {
	proc Processor
	op   *oas.Operation
}

// NewResponsesMiddleware returns the response validator for op.
func NewResponsesMiddleware(proc Processor, op *oas.Operation) *ResponsesMiddleware {
	return &ResponsesMiddleware{proc: proc, op: op}
}

// Dispatch implements httpserver.Middleware.
func (m *ResponsesMiddleware) Dispatch(_ *httpserver.Request, sess *httpserver.Session) error {
	if sess.Abortion.Aborted() {
		return nil
	}
	sess.Next()
	if sess.Abortion.Aborted() {
		return nil
	}

	status := sess.View.Status
	if status == 0 {
		status = http.StatusOK
	}
	resp, ok := m.op.Response(status)
	if !ok {
		return &oaserrors.ResponseStatusError{Status: status, Declared: m.op.StatusKeys()}
	}
	return m.proc.ConformResponse(resp, sess.View)
}

// OnError implements httpserver.ErrorHandler. The reason, including a
// ResponseStatusError, becomes the cause.
func (m *ResponsesMiddleware) OnError(reason error, req *httpserver.Request, sess *httpserver.Session) {
	abortRequest(oaserrors.InvalidResponse, reason, req, sess)
}

// Name implements httpserver.Named.
func (m *ResponsesMiddleware) Name() string { return "oas-responses" }
