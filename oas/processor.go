package oas

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/oashttp/internal/httputil"
	"github.com/erraggy/oashttp/internal/issues"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oashttp/oaslog"
	"github.com/erraggy/oastools/parser"
)

// Processor answers operation lookups and checks live requests and responses against a
// Specification. It is safe for concurrent use.
type Processor struct {
	spec    *Specification
	logger  oaslog.Logger
	schemas *schemaValidator
}

// New creates a Processor for spec.
func New(spec *Specification, opts ...Option) (*Processor, error) {
	if spec == nil {
		return nil, fmt.Errorf("oas: specification cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Processor{spec: spec, logger: cfg.logger, schemas: &schemaValidator{}}, nil
}

// Specification returns the specification the processor serves.
func (p *Processor) Specification() *Specification { return p.spec }

// Declarations lists every declared operation in a stable order.
func (p *Processor) Declarations() []Declaration { return p.spec.Declarations() }

// LookupOperation finds the declaration for path and method. The method is matched
// case-insensitively; the path must match a declared template exactly.
func (p *Processor) LookupOperation(path, method string) (Declaration, error) {
	method = strings.ToLower(method)
	item, ok := p.spec.PathItem(path)
	if !ok {
		return Declaration{}, &oaserrors.ValidationError{
			Path:    issues.FormatPath("paths", path),
			Message: "path is not declared",
		}
	}
	op := operationFor(item, method)
	if op == nil {
		return Declaration{}, &oaserrors.ValidationError{
			Path:    issues.FormatPath("paths", path, method),
			Message: "operation is not declared",
		}
	}
	return Declaration{Path: path, Method: method, PathItem: item, Operation: op}, nil
}

var templateParam = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidateOperation checks an operation for structural problems the parser does not
// catch: response and parameter declarations, path template consistency and media
// types. Warnings are logged; any error fails with a ValidationError. An unresolvable
// reference fails with a ReferenceError.
func (p *Processor) ValidateOperation(decl Declaration) error {
	if decl.Operation == nil {
		return &oaserrors.ValidationError{Path: issues.FormatPath("paths", decl.Path, decl.Method), Message: "operation is nil"}
	}
	base := issues.FormatPath("paths", decl.Path, decl.Method)
	r := newResolver(p.spec)
	var list issues.List

	list = append(list, checkResponseKeys(decl.Operation.Responses, base)...)

	var levels [][]*Parameter
	for _, level := range []struct {
		params []*parser.Parameter
		raw    []string
	}{
		{pathLevelParams(decl.PathItem), []string{"paths", decl.Path}},
		{decl.Operation.Parameters, []string{"paths", decl.Path, decl.Method}},
	} {
		resolved, err := r.parameterLevel(level.params, level.raw)
		if err != nil {
			return err
		}
		list = append(list, checkDuplicateParams(resolved, issues.FormatPath(level.raw...))...)
		levels = append(levels, resolved)
	}
	params := mergeParameters(levels[0], levels[1])
	list = append(list, checkParameters(params, base)...)
	list = append(list, checkTemplate(decl.Path, params, base)...)

	body, err := r.requestBody(decl.Operation.RequestBody)
	if err != nil {
		return err
	}
	if body != nil {
		bodyPath := issues.FormatPath(base, "requestBody")
		if len(body.Content) == 0 {
			list = append(list, issues.Warnf(bodyPath, "request body declares no content"))
		}
		list = append(list, checkMediaTypes(body.Content, bodyPath)...)
	}

	responses, err := r.responses(decl.Operation.Responses)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(responses) {
		if resp := responses[key]; resp != nil {
			list = append(list, checkMediaTypes(resp.Content, issues.FormatPath(base, "responses", key))...)
		}
	}

	for _, w := range list.Warnings() {
		p.logger.Warn("operation warning", "path", w.Path, "message", w.Message)
	}
	if errs := list.Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Path + ": " + e.Message
		}
		return &oaserrors.ValidationError{Path: base, Message: strings.Join(msgs, "; ")}
	}
	return nil
}

// DenormalizeOperation returns the operation with every local reference inlined and
// path-level parameters merged in. Circular references fail with a ReferenceError.
func (p *Processor) DenormalizeOperation(decl Declaration) (*Operation, error) {
	if decl.Operation == nil {
		return nil, &oaserrors.ValidationError{Path: issues.FormatPath("paths", decl.Path, decl.Method), Message: "operation is nil"}
	}
	r := newResolver(p.spec)
	pathLevel, err := r.parameterLevel(pathLevelParams(decl.PathItem), []string{"paths", decl.Path})
	if err != nil {
		return nil, err
	}
	opLevel, err := r.parameterLevel(decl.Operation.Parameters, []string{"paths", decl.Path, decl.Method})
	if err != nil {
		return nil, err
	}
	body, err := r.requestBody(decl.Operation.RequestBody)
	if err != nil {
		return nil, err
	}
	responses, err := r.responses(decl.Operation.Responses)
	if err != nil {
		return nil, err
	}
	return &Operation{
		Path:        decl.Path,
		Method:      decl.Method,
		OperationID: decl.Operation.OperationID,
		Parameters:  mergeParameters(pathLevel, opLevel),
		RequestBody: body,
		Responses:   responses,
		Extensions:  maps.Clone(decl.Operation.Extra),
	}, nil
}

func pathLevelParams(item *parser.PathItem) []*parser.Parameter {
	if item == nil {
		return nil
	}
	return item.Parameters
}

func checkResponseKeys(rs *parser.Responses, base string) issues.List {
	path := issues.FormatPath(base, "responses")
	if rs == nil || (rs.Default == nil && len(rs.Codes) == 0) {
		return issues.List{issues.Errorf(path, "operation must declare at least one response")}
	}
	var list issues.List
	for _, code := range sortedKeys(rs.Codes) {
		switch {
		case !httputil.ValidateStatusCode(code):
			list = append(list, issues.Errorf(issues.FormatPath(path, code), "invalid status code"))
		case code != httputil.DefaultKey && !strings.HasSuffix(strings.ToUpper(code), "XX") && !httputil.IsStandardStatusCode(code):
			list = append(list, issues.Warnf(issues.FormatPath(path, code), "non-standard HTTP status code"))
		}
	}
	return list
}

func checkDuplicateParams(params []*Parameter, path string) issues.List {
	var list issues.List
	seen := make(map[string]bool, len(params))
	for _, prm := range params {
		key := paramKey(prm)
		if seen[key] {
			list = append(list, issues.Errorf(issues.FormatPath(path, "parameters"), fmt.Sprintf("duplicate %s parameter %q", prm.In, prm.Name)))
		}
		seen[key] = true
	}
	return list
}

var reservedHeaders = map[string]bool{"accept": true, "content-type": true, "authorization": true}

func checkParameters(params []*Parameter, base string) issues.List {
	var list issues.List
	for i, prm := range params {
		path := fmt.Sprintf("%s.parameters[%d]", base, i)
		if prm.Name == "" {
			list = append(list, issues.Errorf(path, "parameter name is required"))
		}
		styles, known := allowedStyles[prm.In]
		if !known {
			list = append(list, issues.Errorf(path, fmt.Sprintf("invalid parameter location %q", prm.In)))
			continue
		}
		if prm.In == parser.ParamInPath && !prm.Required {
			list = append(list, issues.Errorf(path, fmt.Sprintf("path parameter %q must be required", prm.Name)))
		}
		if prm.In == parser.ParamInHeader && reservedHeaders[strings.ToLower(prm.Name)] {
			list = append(list, issues.Warnf(path, fmt.Sprintf("header parameter %q is ignored", prm.Name)))
		}
		switch {
		case prm.Parameter.Schema == nil && len(prm.Content) == 0:
			list = append(list, issues.Errorf(path, "parameter must declare a schema or content"))
		case prm.Parameter.Schema != nil && len(prm.Content) > 0:
			list = append(list, issues.Errorf(path, "parameter cannot declare both schema and content"))
		case len(prm.Content) > 1:
			list = append(list, issues.Errorf(path, "parameter content must hold exactly one media type"))
		}
		if prm.Style != "" && !slices.Contains(styles, prm.Style) {
			list = append(list, issues.Errorf(path, fmt.Sprintf("style %q is not allowed for %s parameters", prm.Style, prm.In)))
		}
	}
	return list
}

func checkTemplate(template string, params []*Parameter, base string) issues.List {
	var list issues.List
	declared := make(map[string]bool)
	for _, prm := range params {
		if prm.In == parser.ParamInPath {
			declared[prm.Name] = true
		}
	}
	inTemplate := make(map[string]bool)
	for _, m := range templateParam.FindAllStringSubmatch(template, -1) {
		inTemplate[m[1]] = true
		if !declared[m[1]] {
			list = append(list, issues.Errorf(base, fmt.Sprintf("path template variable {%s} has no path parameter", m[1])))
		}
	}
	for _, name := range sortedKeys(declared) {
		if !inTemplate[name] {
			list = append(list, issues.Errorf(base, fmt.Sprintf("path parameter %q does not appear in the path template", name)))
		}
	}
	return list
}

func checkMediaTypes(content map[string]*parser.MediaType, path string) issues.List {
	var list issues.List
	for _, ct := range sortedKeys(content) {
		if !httputil.IsValidMediaType(ct) {
			list = append(list, issues.Errorf(issues.FormatPath(path, "content"), fmt.Sprintf("invalid media type %q", ct)))
		}
	}
	return list
}
