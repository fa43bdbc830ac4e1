package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/erraggy/oashttp/oaserrors"
)

// JSONBodyParser decodes a JSON request body into Request.Body.
// Numbers decode as float64. An empty body leaves Body nil.
type JSONBodyParser struct{}

// Dispatch implements Middleware.
func (JSONBodyParser) Dispatch(req *Request, _ *Session) error {
	if !req.HasBody() {
		return nil
	}
	var body any
	dec := json.NewDecoder(bytes.NewReader(req.RawBody))
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: unexpected data after top-level value")
	}
	req.Body = body
	return nil
}

// OnError implements ErrorHandler.
func (JSONBodyParser) OnError(reason error, req *Request, sess *Session) {
	sess.Abortion.Abort(&oaserrors.RequestError{
		Kind:   oaserrors.InvalidRequestBody,
		Method: req.Method,
		URL:    req.URL.String(),
		Cause:  reason,
	})
}

// Name implements Named.
func (JSONBodyParser) Name() string { return "json-body-parser" }

// ContentTypeDispatcher runs the body parser the route binds to the request's
// Content-Type. Requests without a body pass through.
type ContentTypeDispatcher struct{}

// Dispatch implements Middleware.
func (ContentTypeDispatcher) Dispatch(req *Request, sess *Session) error {
	if !req.HasBody() {
		return nil
	}
	parser, ok := sess.Route.ContentTypeMiddleware(req.ContentType())
	if !ok {
		return &unsupportedMediaTypeError{contentType: req.ContentType()}
	}
	if err := parser.Dispatch(req, sess); err != nil {
		if h, ok := parser.(ErrorHandler); ok {
			h.OnError(err, req, sess)
			return nil
		}
		return err
	}
	return nil
}

// Name implements Named.
func (ContentTypeDispatcher) Name() string { return "content-type" }

type unsupportedMediaTypeError struct {
	contentType string
}

func (e *unsupportedMediaTypeError) Error() string {
	if e.contentType == "" {
		return "request body has no Content-Type"
	}
	return fmt.Sprintf("unsupported Content-Type %q", e.contentType)
}

func (e *unsupportedMediaTypeError) HTTPStatus() int { return 415 }

func (e *unsupportedMediaTypeError) Code() string { return "E_UNSUPPORTED_MEDIA_TYPE" }
