package httpserver

import (
	"net/http"
	"testing"

	"github.com/erraggy/oashttp/oaserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBodyParser(t *testing.T) {
	route := mustRoute(t, RouteConfig{Method: "post", Pattern: "/", Dispatcher: statusDispatcher(http.StatusOK, nil)})

	t.Run("decodes object", func(t *testing.T) {
		req, sess := newSession(t, route, `{"name":"rex","age":3}`)
		require.NoError(t, JSONBodyParser{}.Dispatch(req, sess))
		assert.Equal(t, map[string]any{"name": "rex", "age": float64(3)}, req.Body)
	})

	t.Run("empty body", func(t *testing.T) {
		req, sess := newSession(t, route, "")
		require.NoError(t, JSONBodyParser{}.Dispatch(req, sess))
		assert.Nil(t, req.Body)
	})

	t.Run("malformed", func(t *testing.T) {
		req, sess := newSession(t, route, `{"name":`)
		assert.Error(t, JSONBodyParser{}.Dispatch(req, sess))
	})

	t.Run("trailing data", func(t *testing.T) {
		req, sess := newSession(t, route, `{} {}`)
		assert.ErrorContains(t, JSONBodyParser{}.Dispatch(req, sess), "unexpected data")
	})

	t.Run("OnError aborts with request-body error", func(t *testing.T) {
		req, sess := newSession(t, route, `nope`)
		err := JSONBodyParser{}.Dispatch(req, sess)
		require.Error(t, err)

		JSONBodyParser{}.OnError(err, req, sess)

		var reqErr *oaserrors.RequestError
		require.ErrorAs(t, sess.Abortion.Err(), &reqErr)
		assert.Equal(t, oaserrors.InvalidRequestBody, reqErr.Kind)
		assert.Equal(t, http.StatusBadRequest, reqErr.HTTPStatus())
	})
}

func TestContentTypeDispatcher(t *testing.T) {
	route := mustRoute(t, RouteConfig{
		Method:       "post",
		Pattern:      "/",
		Dispatcher:   statusDispatcher(http.StatusOK, nil),
		ContentTypes: map[string]Middleware{"application/json": JSONBodyParser{}},
	})

	t.Run("runs bound parser", func(t *testing.T) {
		req, sess := newSession(t, route, `[1,2]`)
		require.NoError(t, ContentTypeDispatcher{}.Dispatch(req, sess))
		assert.Equal(t, []any{float64(1), float64(2)}, req.Body)
	})

	t.Run("parser failure is handled by parser", func(t *testing.T) {
		req, sess := newSession(t, route, `[1,`)
		require.NoError(t, ContentTypeDispatcher{}.Dispatch(req, sess))
		assert.ErrorIs(t, sess.Abortion.Err(), oaserrors.ErrRequest)
	})

	t.Run("unbound type", func(t *testing.T) {
		req, sess := newSession(t, route, `hello`)
		req.Header.Set("Content-Type", "text/plain")

		err := ContentTypeDispatcher{}.Dispatch(req, sess)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, NewErrorBody(err).Status)
	})

	t.Run("no body", func(t *testing.T) {
		req, sess := newSession(t, route, "")
		require.NoError(t, ContentTypeDispatcher{}.Dispatch(req, sess))
		assert.Nil(t, req.Body)
	})
}
