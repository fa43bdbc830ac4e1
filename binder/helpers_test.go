package binder

import (
	"testing"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/stretchr/testify/require"
)

const routesSpec = `
openapi: "3.0.3"
info:
  title: Routes
  version: "1.0.0"
paths:
  /foo:
    get:
      operationId: getFoo
      parameters: []
      responses:
        "200":
          description: ok
    post:
      x-dispatcher: postFoo
      x-middlewares: [audit, trace]
      requestBody:
        content:
          application/json:
            schema:
              type: object
      responses:
        "200":
          description: ok
  /bar:
    put:
      responses:
        "200":
          description: ok
  /text:
    post:
      requestBody:
        content:
          text/plain:
            schema:
              type: string
      responses:
        "200":
          description: ok
  /items/{itemId}/tags/{tag}:
    get:
      parameters:
        - name: itemId
          in: path
          required: true
          schema:
            type: integer
        - name: tag
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
  /broken/{id}:
    get:
      responses:
        "200":
          description: ok
`

// newBinder loads src and returns a binder over an empty router.
func newBinder(t *testing.T, src string, opts ...Option) *Binder {
	t.Helper()
	spec, err := oas.Load(oas.WithBytes([]byte(src)))
	require.NoError(t, err)
	proc, err := oas.New(spec)
	require.NoError(t, err)
	b, err := New(httpserver.NewRouter(), proc, opts...)
	require.NoError(t, err)
	return b
}

// named is a dispatcher or middleware that reports a fixed name.
type named string

func (n named) Dispatch(_ *httpserver.Request, _ *httpserver.Session) error { return nil }

func (n named) Name() string { return string(n) }

// middlewareNames lists the display names of a route's stages before the dispatcher.
func middlewareNames(route *httpserver.Route) []string {
	var names []string
	for _, m := range route.Middlewares() {
		names = append(names, httpserver.MiddlewareName(m))
	}
	return names
}
