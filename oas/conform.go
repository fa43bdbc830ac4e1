package oas

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oashttp/internal/issues"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oastools/parser"
)

// Conformance locations reported in ConformanceError.Location besides parameter
// locations.
const (
	LocationBody     = "body"
	LocationResponse = "response"
)

// ConformParameter checks one declared parameter against req. A missing parameter with
// a declared default (null included) receives the default; a missing required parameter
// is an error. Present values are deserialized by style, coerced to the schema type and
// validated. The resulting value is written to req.Param, and header parameters are
// also written to req.HeaderParam.
func (p *Processor) ConformParameter(param *Parameter, req *httpserver.Request) error {
	if param == nil || param.Parameter == nil {
		return nil
	}
	fail := func(list issues.List) error {
		return &oaserrors.ConformanceError{Location: param.In, Name: param.Name, Issues: list.Public()}
	}

	value, present, err := p.readParameter(param, req)
	if err != nil {
		return fail(issues.List{issues.Errorf(param.Name, err.Error())})
	}
	if !present {
		switch {
		case param.HasDefault:
			setParam(req, param, normalizeValue(param.DefaultValue))
		case param.Required:
			return fail(issues.List{issues.Errorf(param.Name, "required parameter is missing")})
		}
		return nil
	}

	if value != nil || !param.Nullable {
		list := p.schemas.validate(value, param.ValueSchema(), param.Name)
		if list.HasErrors() {
			return fail(list.Errors())
		}
		for _, w := range list.Warnings() {
			p.logger.Debug("parameter warning", "in", param.In, "name", param.Name, "message", w.Message)
		}
	}
	setParam(req, param, value)
	return nil
}

func setParam(req *httpserver.Request, param *Parameter, value any) {
	if req.Param == nil {
		req.Param = map[string]any{}
	}
	req.Param[param.Name] = value
	if param.In == parser.ParamInHeader {
		if req.HeaderParam == nil {
			req.HeaderParam = map[string]any{}
		}
		req.HeaderParam[param.Name] = value
	}
}

// readParameter locates the raw value of param in req and decodes it.
func (p *Processor) readParameter(param *Parameter, req *httpserver.Request) (any, bool, error) {
	schema := param.ValueSchema()
	contentType := ""
	for ct := range param.Content {
		contentType = ct
	}

	var raw string
	switch param.In {
	case parser.ParamInPath:
		v, ok := req.PathParams[param.Name]
		if !ok || v == "" {
			return nil, false, nil
		}
		if contentType == "" {
			return deserializePath(v, param, schema), true, nil
		}
		raw = v
	case parser.ParamInQuery:
		if req.URL == nil {
			return nil, false, nil
		}
		query := req.URL.Query()
		if contentType == "" {
			v, ok := deserializeQuery(query, param, schema)
			return v, ok, nil
		}
		if !query.Has(param.Name) {
			return nil, false, nil
		}
		raw = query.Get(param.Name)
	case parser.ParamInHeader:
		values := req.Header.Values(param.Name)
		if len(values) == 0 {
			return nil, false, nil
		}
		raw = strings.Join(values, ",")
		if contentType == "" {
			return deserializeHeader(raw, param, schema), true, nil
		}
	case parser.ParamInCookie:
		if req.HTTP() == nil {
			return nil, false, nil
		}
		c, err := req.Cookie(param.Name)
		if err != nil {
			return nil, false, nil
		}
		if contentType == "" {
			return deserializeCookie(c.Value, schema), true, nil
		}
		raw = c.Value
	default:
		return nil, false, fmt.Errorf("unsupported parameter location %q", param.In)
	}

	if !httputil.IsJSONMediaType(contentType) {
		return raw, true, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, fmt.Errorf("invalid %s value: %w", contentType, err)
	}
	return v, true, nil
}

// ConformRequestBody checks the request body of req against op. JSON bodies that were
// not decoded by a body parser are decoded here. Absent object properties with a schema
// default receive it before validation.
func (p *Processor) ConformRequestBody(op *Operation, req *httpserver.Request) error {
	if op == nil || op.RequestBody == nil {
		return nil
	}
	rb := op.RequestBody
	fail := func(list issues.List) error {
		return &oaserrors.ConformanceError{Location: LocationBody, Issues: list.Public()}
	}

	if !req.HasBody() && req.Body == nil {
		if rb.Required {
			return fail(issues.List{issues.Errorf("", "request body is required")})
		}
		return nil
	}

	contentType := req.ContentType()
	if contentType == "" && len(rb.Content) == 1 {
		for ct := range rb.Content {
			contentType = ct
		}
	}
	_, mt := matchContent(rb.Content, contentType)
	if mt == nil {
		return fail(issues.List{issues.Errorf("", fmt.Sprintf("content type %q is not declared for the request body", contentType))})
	}

	if req.Body == nil {
		if httputil.IsJSONMediaType(contentType) {
			var body any
			if err := json.Unmarshal(req.RawBody, &body); err != nil {
				return fail(issues.List{issues.Errorf("", "invalid JSON: "+err.Error())})
			}
			req.Body = body
		} else {
			req.Body = string(req.RawBody)
		}
	}

	if mt.Schema == nil {
		return nil
	}
	applyDefaults(req.Body, mt.Schema)
	list := p.schemas.validate(req.Body, mt.Schema, LocationBody)
	if list.HasErrors() {
		return fail(list.Errors())
	}
	return nil
}

// ConformResponse checks a rendered view against the response declared for its status:
// required headers, header schemas and the body against the media type matching the
// view's Content-Type (application/json when unset). A Content-Type header declaration
// is ignored.
func (p *Processor) ConformResponse(resp *parser.Response, view *httpserver.View) error {
	if resp == nil || view == nil {
		return nil
	}
	var list issues.List

	for _, name := range sortedKeys(resp.Headers) {
		h := resp.Headers[name]
		if h == nil || strings.EqualFold(name, "Content-Type") {
			continue
		}
		values := view.Header.Values(name)
		path := issues.FormatPath("header", name)
		if len(values) == 0 {
			if h.Required {
				list = append(list, issues.Errorf(path, "required header is missing"))
			}
			continue
		}
		schema := h.Schema
		if schema == nil {
			for _, mt := range h.Content {
				if mt != nil {
					schema = mt.Schema
				}
			}
		}
		explode := h.Explode != nil && *h.Explode
		value := deserializeSimple(strings.Join(values, ","), schema, explode)
		list = append(list, p.schemas.validate(value, schema, path)...)
	}

	if len(resp.Content) > 0 {
		contentType := view.Header.Get("Content-Type")
		if contentType == "" {
			contentType = httputil.MediaTypeJSON
		}
		_, mt := matchContent(resp.Content, contentType)
		switch {
		case mt == nil:
			list = append(list, issues.Errorf(LocationBody, fmt.Sprintf("content type %q is not declared for this response", contentType)))
		case mt.Schema != nil:
			body, err := responseValue(view.Body, contentType)
			if err != nil {
				list = append(list, issues.Errorf(LocationBody, err.Error()))
				break
			}
			list = append(list, p.schemas.validate(body, mt.Schema, LocationBody)...)
		}
	}

	if list.HasErrors() {
		return &oaserrors.ConformanceError{Location: LocationResponse, Issues: list.Errors().Public()}
	}
	return nil
}

// responseValue brings a view body into JSON shape for validation. Raw bytes and strings
// are decoded when the content type is JSON; any other value goes through a JSON
// round trip so structs validate like the bytes they render to.
func responseValue(body any, contentType string) (any, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeRaw(b, contentType)
	case string:
		return decodeRaw([]byte(b), contentType)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("body cannot be encoded as JSON: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("body cannot be encoded as JSON: %w", err)
	}
	return v, nil
}

func decodeRaw(data []byte, contentType string) (any, error) {
	if !httputil.IsJSONMediaType(contentType) {
		return string(data), nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// matchContent picks the media type entry for contentType: the exact base type first,
// then the most specific wildcard ("type/*" before "*/*").
func matchContent(content map[string]*parser.MediaType, contentType string) (string, *parser.MediaType) {
	base := httputil.BaseMediaType(contentType)
	for key, mt := range content {
		if httputil.BaseMediaType(key) == base && mt != nil {
			return key, mt
		}
	}
	var wildcards []string
	for key := range content {
		if strings.Contains(key, "*") {
			wildcards = append(wildcards, key)
		}
	}
	sort.Slice(wildcards, func(i, j int) bool {
		if (wildcards[i] == "*/*") != (wildcards[j] == "*/*") {
			return wildcards[j] == "*/*"
		}
		return wildcards[i] < wildcards[j]
	})
	for _, key := range wildcards {
		if httputil.MatchMediaType(key, contentType) && content[key] != nil {
			return key, content[key]
		}
	}
	return "", nil
}
