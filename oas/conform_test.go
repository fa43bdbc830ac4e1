package oas

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oaserrors"
)

func newRequest(t *testing.T, method, target string, pathParams map[string]string, body string) *httpserver.Request {
	t.Helper()
	var raw []byte
	if body != "" {
		raw = []byte(body)
	}
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	return httpserver.NewRequest(r, pathParams, raw)
}

func TestConformParameter(t *testing.T) {
	proc := newProcessor(t, petstoreSpec)
	list := denormalize(t, proc, "/pets", "get")
	show := denormalize(t, proc, "/pets/{petId}", "get")
	limit, tags, trace := list.Parameters[0], list.Parameters[1], list.Parameters[2]
	petID, verbose := show.Parameters[0], show.Parameters[1]

	t.Run("query value is coerced", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets?limit=5&tags=a&tags=b", nil, "")
		require.NoError(t, proc.ConformParameter(limit, req))
		require.NoError(t, proc.ConformParameter(tags, req))
		assert.Equal(t, int64(5), req.Param["limit"])
		assert.Equal(t, []any{"a", "b"}, req.Param["tags"])
	})

	t.Run("missing value takes the default", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets", nil, "")
		require.NoError(t, proc.ConformParameter(limit, req))
		assert.EqualValues(t, 20, req.Param["limit"])
	})

	t.Run("explicit null default", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets/1", map[string]string{"petId": "1"}, "")
		require.NoError(t, proc.ConformParameter(verbose, req))
		v, ok := req.Param["verbose"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("optional without default is left unset", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets", nil, "")
		require.NoError(t, proc.ConformParameter(tags, req))
		assert.NotContains(t, req.Param, "tags")
	})

	t.Run("constraint violation", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets?limit=0", nil, "")
		err := proc.ConformParameter(limit, req)
		var cErr *oaserrors.ConformanceError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, "query", cErr.Location)
		assert.Equal(t, "limit", cErr.Name)
		require.NotEmpty(t, cErr.Issues)
		assert.Contains(t, cErr.Issues[0].Message, "less than minimum")
	})

	t.Run("type mismatch", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets/abc", map[string]string{"petId": "abc"}, "")
		err := proc.ConformParameter(petID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrConformance))
	})

	t.Run("required path parameter missing", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets/", nil, "")
		err := proc.ConformParameter(petID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required parameter is missing")
	})

	t.Run("path value", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets/42", map[string]string{"petId": "42"}, "")
		require.NoError(t, proc.ConformParameter(petID, req))
		assert.Equal(t, int64(42), req.Param["petId"])
		assert.NotContains(t, req.HeaderParam, "petId")
	})

	t.Run("header value is mirrored", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets", nil, "")
		req.Header.Set("X-Trace-Id", "123e4567-e89b-12d3-a456-426614174000")
		require.NoError(t, proc.ConformParameter(trace, req))
		assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", req.Param["X-Trace-Id"])
		assert.Equal(t, req.Param["X-Trace-Id"], req.HeaderParam["X-Trace-Id"])
	})

	t.Run("format violations do not fail", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/pets", nil, "")
		req.Header.Set("X-Trace-Id", "not-a-uuid")
		assert.NoError(t, proc.ConformParameter(trace, req))
	})
}

func TestConformParameter_CookieAndContent(t *testing.T) {
	const src = `
openapi: "3.0.3"
info: {title: t, version: "1"}
paths:
  /search:
    get:
      parameters:
        - name: session
          in: cookie
          required: true
          schema: {type: integer}
        - name: filter
          in: query
          content:
            application/json:
              schema:
                type: object
                required: [status]
                properties:
                  status: {type: string}
      responses:
        "200": {description: ok}
`
	proc := newProcessor(t, src)
	op := denormalize(t, proc, "/search", "get")
	session, filter := op.Parameters[0], op.Parameters[1]

	req := newRequest(t, http.MethodGet, `/search?filter=%7B%22status%22%3A%22open%22%7D`, nil, "")
	req.HTTP().AddCookie(&http.Cookie{Name: "session", Value: "9"})
	require.NoError(t, proc.ConformParameter(session, req))
	require.NoError(t, proc.ConformParameter(filter, req))
	assert.Equal(t, int64(9), req.Param["session"])
	assert.Equal(t, map[string]any{"status": "open"}, req.Param["filter"])

	bad := newRequest(t, http.MethodGet, `/search?filter=%7B%7D`, nil, "")
	err := proc.ConformParameter(filter, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required property "status" is missing`)

	noCookie := newRequest(t, http.MethodGet, "/search", nil, "")
	assert.Error(t, proc.ConformParameter(session, noCookie))
}

func TestConformRequestBody(t *testing.T) {
	proc := newProcessor(t, petstoreSpec)
	create := denormalize(t, proc, "/pets", "post")

	t.Run("decodes and applies defaults", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, `{"name":"rex"}`)
		require.NoError(t, proc.ConformRequestBody(create, req))
		assert.Equal(t, map[string]any{"name": "rex", "tag": "none"}, req.Body)
	})

	t.Run("uses an already parsed body", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, `{"name":"rex"}`)
		req.Body = map[string]any{"name": "max", "tag": "dog"}
		require.NoError(t, proc.ConformRequestBody(create, req))
		assert.Equal(t, "max", req.Body.(map[string]any)["name"])
	})

	t.Run("schema violation", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, `{"name":""}`)
		err := proc.ConformRequestBody(create, req)
		var cErr *oaserrors.ConformanceError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, LocationBody, cErr.Location)
		assert.Equal(t, "body.name", cErr.Issues[0].Path)
	})

	t.Run("missing required body", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, "")
		err := proc.ConformRequestBody(create, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request body is required")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, `{"name":`)
		assert.ErrorContains(t, proc.ConformRequestBody(create, req), "invalid JSON")
	})

	t.Run("undeclared content type", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/pets", nil, `name=rex`)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.ErrorContains(t, proc.ConformRequestBody(create, req), "is not declared")
	})

	t.Run("operation without body", func(t *testing.T) {
		list := denormalize(t, proc, "/pets", "get")
		req := newRequest(t, http.MethodGet, "/pets", nil, "")
		assert.NoError(t, proc.ConformRequestBody(list, req))
	})
}

func TestConformResponse(t *testing.T) {
	proc := newProcessor(t, petstoreSpec)
	list := denormalize(t, proc, "/pets", "get")
	ok := list.Responses["200"]

	t.Run("conforming", func(t *testing.T) {
		view := &httpserver.View{
			Status: http.StatusOK,
			Header: http.Header{"X-Total": {"1"}},
			Body:   []any{map[string]any{"id": 1, "name": "rex", "tag": nil}},
		}
		assert.NoError(t, proc.ConformResponse(ok, view))
	})

	t.Run("structs are checked as their JSON form", func(t *testing.T) {
		type pet struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		view := &httpserver.View{Header: http.Header{"X-Total": {"1"}}, Body: []pet{{ID: 1, Name: "rex"}}}
		assert.NoError(t, proc.ConformResponse(ok, view))
	})

	t.Run("raw JSON bytes", func(t *testing.T) {
		view := &httpserver.View{Header: http.Header{"X-Total": {"1"}}, Body: []byte(`[{"id":1}]`)}
		err := proc.ConformResponse(ok, view)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required property "name" is missing`)
	})

	t.Run("missing required header", func(t *testing.T) {
		view := &httpserver.View{Body: []any{}}
		err := proc.ConformResponse(ok, view)
		var cErr *oaserrors.ConformanceError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, LocationResponse, cErr.Location)
		require.Len(t, cErr.Issues, 1, "the Content-Type header declaration is ignored")
		assert.Equal(t, "header.X-Total", cErr.Issues[0].Path)
	})

	t.Run("header schema", func(t *testing.T) {
		view := &httpserver.View{Header: http.Header{"X-Total": {"many"}}, Body: []any{}}
		assert.ErrorContains(t, proc.ConformResponse(ok, view), "expected type integer")
	})

	t.Run("undeclared content type", func(t *testing.T) {
		view := &httpserver.View{
			Header: http.Header{"X-Total": {"0"}, "Content-Type": {"text/plain"}},
			Body:   "hello",
		}
		assert.ErrorContains(t, proc.ConformResponse(ok, view), `content type "text/plain" is not declared`)
	})

	t.Run("no content declared", func(t *testing.T) {
		del := denormalize(t, proc, "/pets/{petId}", "delete")
		assert.NoError(t, proc.ConformResponse(del.Responses["204"], &httpserver.View{Status: http.StatusNoContent}))
	})
}

func TestMatchContent(t *testing.T) {
	proc := newProcessor(t, `
openapi: "3.0.3"
info: {title: t, version: "1"}
paths:
  /upload:
    post:
      requestBody:
        content:
          application/json: {schema: {type: object}}
          image/*: {schema: {type: string}}
          "*/*": {schema: {type: string}}
      responses:
        "200": {description: ok}
`)
	op := denormalize(t, proc, "/upload", "post")
	content := op.RequestBody.Content

	key, _ := matchContent(content, "application/json; charset=utf-8")
	assert.Equal(t, "application/json", key)
	key, _ = matchContent(content, "image/png")
	assert.Equal(t, "image/*", key)
	key, _ = matchContent(content, "text/plain")
	assert.Equal(t, "*/*", key)
}
