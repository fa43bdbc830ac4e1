package commands

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oastools/parser"
)

// MockDispatcher answers every request with the first success response its operation
// declares: the response's JSON example when there is one, an empty object otherwise,
// and no body when the response declares no content. Required response headers are
// filled from their examples.
type MockDispatcher struct{}

// Dispatch implements httpserver.Middleware.
func (MockDispatcher) Dispatch(_ *httpserver.Request, sess *httpserver.Session) error {
	op, _ := sess.Route.Operation().(*oas.Operation)
	status, header, body := mockResponse(op)
	sess.View.Status = status
	for k, vs := range header {
		for _, v := range vs {
			sess.View.Header.Add(k, v)
		}
	}
	sess.View.Body = body
	return nil
}

// Name implements httpserver.Named.
func (MockDispatcher) Name() string { return "mock" }

// passThrough stands in for a middleware named by x-middlewares.
type passThrough string

func (passThrough) Dispatch(_ *httpserver.Request, _ *httpserver.Session) error { return nil }

func (p passThrough) Name() string { return string(p) }

func mockResponse(op *oas.Operation) (int, http.Header, any) {
	if op == nil {
		return http.StatusOK, nil, map[string]any{}
	}
	for _, key := range op.StatusKeys() {
		status, ok := successStatus(key)
		if !ok {
			continue
		}
		resp := op.Responses[key]
		if resp == nil {
			return status, nil, nil
		}
		return status, mockHeaders(resp), mockBody(resp)
	}
	return http.StatusOK, nil, map[string]any{}
}

// successStatus maps a 2XX status key to a concrete status.
func successStatus(key string) (int, bool) {
	if !strings.HasPrefix(key, "2") {
		return 0, false
	}
	if strings.EqualFold(key, httputil.RangeKey(http.StatusOK)) {
		return http.StatusOK, true
	}
	status, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return status, true
}

func mockHeaders(resp *parser.Response) http.Header {
	header := http.Header{}
	for name, h := range resp.Headers {
		if h == nil || !h.Required || strings.EqualFold(name, "Content-Type") {
			continue
		}
		if v, ok := firstExample(h.Example, h.Examples, h.Schema); ok {
			header.Set(name, fmt.Sprint(v))
		}
	}
	return header
}

func mockBody(resp *parser.Response) any {
	if len(resp.Content) == 0 {
		return nil
	}
	var mt *parser.MediaType
	keys := make([]string, 0, len(resp.Content))
	for k := range resp.Content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if httputil.IsJSONMediaType(k) || k == "*/*" {
			mt = resp.Content[k]
			break
		}
	}
	if mt == nil {
		return map[string]any{}
	}
	if v, ok := firstExample(mt.Example, mt.Examples, mt.Schema); ok {
		return v
	}
	return map[string]any{}
}

// firstExample picks the inline example, then the first named example in name order,
// then the schema's example or default.
func firstExample(example any, examples map[string]*parser.Example, schema *parser.Schema) (any, bool) {
	if example != nil {
		return example, true
	}
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ex := examples[name]; ex != nil && ex.Value != nil {
			return ex.Value, true
		}
	}
	if schema != nil {
		if schema.Example != nil {
			return schema.Example, true
		}
		if len(schema.Examples) > 0 {
			return schema.Examples[0], true
		}
		if schema.Default != nil {
			return schema.Default, true
		}
	}
	return nil, false
}
