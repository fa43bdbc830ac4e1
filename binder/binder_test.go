package binder

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oashttp/oaslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	spec, err := oas.Load(oas.WithBytes([]byte(routesSpec)))
	require.NoError(t, err)
	proc, err := oas.New(spec)
	require.NoError(t, err)

	_, err = New(nil, proc)
	assert.Error(t, err)

	_, err = New(httpserver.NewRouter(), nil)
	assert.Error(t, err)

	router := httpserver.NewRouter()
	b, err := New(router, proc, WithLogger(nil))
	require.NoError(t, err)
	assert.Same(t, router, b.Router())
}

func TestSetRoute(t *testing.T) {
	t.Run("registers one route per operation", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/foo", "get", named("placeholder")))
		require.NoError(t, b.SetRoute("/foo", "post", named("placeholder")))
		require.NoError(t, b.SetRoute("/bar", "PUT", named("placeholder")))

		assert.Equal(t, []string{"get /foo", "post /foo", "put /bar"}, b.Router().Keys())

		route, ok := b.Router().Get("put /bar")
		require.True(t, ok)
		assert.Equal(t, "put", route.Method())
		assert.Equal(t, "/bar", route.Pattern())
	})

	t.Run("chain order without request body", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/foo", "get", named("dispatch"), named("extra")))

		route, ok := b.Router().Get("get /foo")
		require.True(t, ok)
		assert.Equal(t, []string{"oas-parameters", "oas-request-body", "oas-responses", "extra"}, middlewareNames(route))
		assert.Equal(t, "dispatch", httpserver.MiddlewareName(route.Dispatcher()))
		assert.Nil(t, route.ContentTypes())

		var hasParams bool
		for _, m := range route.Middlewares() {
			if _, ok := m.(*ParametersMiddleware); ok {
				hasParams = true
			}
		}
		assert.True(t, hasParams, "declared parameters, even an empty list, add the parameters validator")

		conds := route.Conditions()
		require.Len(t, conds, 1)
		assert.Equal(t, httpserver.MethodCondition{Method: "get"}, conds[0])
	})

	t.Run("request body adds content-type dispatch", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/foo", "post", named("dispatch")))

		route, ok := b.Router().Get("post /foo")
		require.True(t, ok)
		assert.Equal(t,
			[]string{"content-type", "oas-parameters", "oas-request-body", "oas-responses"},
			middlewareNames(route))
		assert.Equal(t, []string{"application/json"}, route.ContentTypes())

		parser, ok := route.ContentTypeMiddleware("application/json; charset=utf-8")
		require.True(t, ok)
		assert.Equal(t, httpserver.JSONBodyParser{}, parser)

		conds := route.Conditions()
		require.Len(t, conds, 2)
		assert.Equal(t, httpserver.ContentTypeCondition{Types: []string{"application/json"}}, conds[1])
	})

	t.Run("path template becomes route pattern", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/items/{itemId}/tags/{tag}", "get", named("dispatch")))

		route, ok := b.Router().Get("get /items/{itemId}/tags/{tag}")
		require.True(t, ok)
		assert.Equal(t, "/items/:itemId/tags/:tag", route.Pattern())
	})

	t.Run("denormalized operation is attached", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/items/{itemId}/tags/{tag}", "get", named("dispatch")))

		route, _ := b.Router().Get("get /items/{itemId}/tags/{tag}")
		op, ok := route.Operation().(*oas.Operation)
		require.True(t, ok)
		assert.Equal(t, "get", op.Method)
		require.Len(t, op.Parameters, 2)
		assert.Equal(t, "itemId", op.Parameters[0].Name)
	})

	t.Run("extras are flattened", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		extras := httpserver.MiddlewareList{named("a"), httpserver.MiddlewareList{named("b"), named("c")}}
		require.NoError(t, b.SetRoute("/bar", "put", named("dispatch"), extras, named("d")))

		route, _ := b.Router().Get("put /bar")
		assert.Equal(t,
			[]string{"oas-parameters", "oas-request-body", "oas-responses", "a", "b", "c", "d"},
			middlewareNames(route))
	})

	t.Run("setting again replaces the route", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		require.NoError(t, b.SetRoute("/bar", "put", named("first")))
		require.NoError(t, b.SetRoute("/bar", "put", named("second")))

		assert.Equal(t, 1, b.Router().Len())
		route, _ := b.Router().Get("put /bar")
		assert.Equal(t, "second", httpserver.MiddlewareName(route.Dispatcher()))
	})

	t.Run("logs registrations", func(t *testing.T) {
		var buf bytes.Buffer
		logger := oaslog.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		b := newBinder(t, routesSpec, WithLogger(logger))
		require.NoError(t, b.SetRoute("/bar", "put", named("dispatch")))
		assert.Contains(t, buf.String(), "route registered")
		assert.Contains(t, buf.String(), `key="put /bar"`)
	})
}

func TestSetRouteErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		dispatcher httpserver.Middleware
		wantKind   oaserrors.ConfigKind
		wantCause  bool
	}{
		{name: "empty path", path: "", method: "get", dispatcher: named("d"), wantKind: oaserrors.InvalidPath},
		{name: "relative path", path: "foo", method: "get", dispatcher: named("d"), wantKind: oaserrors.InvalidPath},
		{name: "empty method", path: "/foo", method: "", dispatcher: named("d"), wantKind: oaserrors.InvalidMethod},
		{name: "nil dispatcher", path: "/foo", method: "get", dispatcher: nil, wantKind: oaserrors.InvalidDispatcher},
		{name: "nil func dispatcher", path: "/foo", method: "get", dispatcher: httpserver.MiddlewareFunc(nil), wantKind: oaserrors.InvalidDispatcher},
		{name: "typed nil dispatcher", path: "/foo", method: "get", dispatcher: (*ParametersMiddleware)(nil), wantKind: oaserrors.InvalidDispatcher},
		{name: "undeclared path", path: "/nope", method: "get", dispatcher: named("d"), wantKind: oaserrors.InvalidOperation, wantCause: true},
		{name: "undeclared method", path: "/foo", method: "delete", dispatcher: named("d"), wantKind: oaserrors.InvalidOperation, wantCause: true},
		{name: "invalid operation", path: "/broken/{id}", method: "get", dispatcher: named("d"), wantKind: oaserrors.InvalidOperation, wantCause: true},
		{name: "unsupported body type", path: "/text", method: "post", dispatcher: named("d"), wantKind: oaserrors.UnsupportedContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBinder(t, routesSpec)
			err := b.SetRoute(tt.path, tt.method, tt.dispatcher)
			require.Error(t, err)

			var cfgErr *oaserrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantKind, cfgErr.Kind)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig))
			if tt.wantCause {
				assert.Error(t, cfgErr.Cause)
			}
			assert.Zero(t, b.Router().Len(), "a failed registration must not insert a route")
		})
	}

	t.Run("unsupported body type names the type", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		err := b.SetRoute("/text", "post", named("d"))

		var cfgErr *oaserrors.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "text/plain", cfgErr.ContentType)
		assert.Equal(t, "/text", cfgErr.Path)
		assert.Equal(t, "post", cfgErr.Method)
		assert.Equal(t, "E_OASHTTP_SET_ROUTE_INVALID_CONTENT_TYPE", cfgErr.Code())
	})

	t.Run("undeclared operation keeps the lookup failure", func(t *testing.T) {
		b := newBinder(t, routesSpec)
		err := b.SetRoute("/nope", "get", named("d"))
		assert.True(t, errors.Is(err, oaserrors.ErrValidation))
	})
}

func TestToPattern(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/", want: "/"},
		{path: "/pets", want: "/pets"},
		{path: "/pets/{petId}", want: "/pets/:petId"},
		{path: "/a/{b}/c/{d_e}", want: "/a/:b/c/:d_e"},
		{path: "/files/{file.name}", wantErr: true},
		{path: "/files/{}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := toPattern(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteKey(t *testing.T) {
	assert.Equal(t, "get /foo", RouteKey("/foo", "GET"))
	assert.Equal(t, "post /pets/{id}", RouteKey("/pets/{id}", "post"))
}

func TestContentTypeMiddleware(t *testing.T) {
	m, err := ContentTypeMiddleware("application/json")
	require.NoError(t, err)
	assert.Equal(t, httpserver.JSONBodyParser{}, m)

	for _, ct := range []string{
		"text/plain", "application/xml", "multipart/form-data",
		"Application/JSON", "application/json; charset=utf-8",
	} {
		_, err := ContentTypeMiddleware(ct)
		var cfgErr *oaserrors.ConfigError
		require.True(t, errors.As(err, &cfgErr), ct)
		assert.Equal(t, oaserrors.UnsupportedContentType, cfgErr.Kind)
		assert.Equal(t, ct, cfgErr.ContentType)
	}
}
