package binder

import (
	"fmt"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oashttp/oaserrors"
)

// ContentTypeMiddleware returns the body parser for a request media type.
// application/json, spelled exactly, is the only supported type; any other key
// (including one with parameters) is an UnsupportedContentType configuration error.
func ContentTypeMiddleware(contentType string) (httpserver.Middleware, error) {
	switch contentType {
	case httputil.MediaTypeJSON:
		return httpserver.JSONBodyParser{}, nil
	default:
		return nil, &oaserrors.ConfigError{
			Kind:        oaserrors.UnsupportedContentType,
			ContentType: contentType,
			Message: fmt.Sprintf("unsupported request body content type %q: %s is the only supported type",
				contentType, httputil.MediaTypeJSON),
		}
	}
}
