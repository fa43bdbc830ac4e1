package oas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oastools/parser"
)

// resolver inlines local component references into copies of the declared objects. The
// source document is never modified. A resolver is used for one operation and is not
// safe for concurrent use.
type resolver struct {
	spec    *Specification
	stack   []string
	schemas map[string]*parser.Schema
}

func newResolver(spec *Specification) *resolver {
	return &resolver{spec: spec, schemas: make(map[string]*parser.Schema)}
}

// enter pushes ref onto the resolution stack and returns the component name it targets.
func (r *resolver) enter(ref, kind string) (string, error) {
	for i, seen := range r.stack {
		if seen == ref {
			chain := append(append([]string(nil), r.stack[i:]...), ref)
			return "", &oaserrors.ReferenceError{
				Ref:        ref,
				IsCircular: true,
				Message:    strings.Join(chain, " -> "),
			}
		}
	}
	name, err := componentName(ref, kind)
	if err != nil {
		return "", err
	}
	r.stack = append(r.stack, ref)
	return name, nil
}

// unwind truncates the stack back to depth.
func (r *resolver) unwind(depth int) { r.stack = r.stack[:depth] }

// componentName validates a reference of the form "#/components/<kind>/<name>".
func componentName(ref, kind string) (string, error) {
	if !strings.HasPrefix(ref, "#") {
		return "", &oaserrors.ReferenceError{Ref: ref, Message: "external references are not supported"}
	}
	tokens, err := pointerTokens(ref)
	if err != nil {
		return "", &oaserrors.ReferenceError{Ref: ref, Message: "malformed reference", Cause: err}
	}
	if len(tokens) != 3 || tokens[0] != "components" || tokens[1] != kind {
		return "", &oaserrors.ReferenceError{Ref: ref, Message: fmt.Sprintf("expected a reference to components/%s", kind)}
	}
	return tokens[2], nil
}

func (r *resolver) components() *parser.Components {
	if c := r.spec.Components(); c != nil {
		return c
	}
	return &parser.Components{}
}

func notFound(ref string) error {
	return &oaserrors.ReferenceError{Ref: ref, Message: "target not found"}
}

func (r *resolver) schema(s *parser.Schema) (*parser.Schema, error) {
	if s == nil {
		return nil, nil
	}
	if s.Ref != "" {
		ref := s.Ref
		if cached, ok := r.schemas[ref]; ok {
			return cached, nil
		}
		depth := len(r.stack)
		defer r.unwind(depth)
		name, err := r.enter(ref, "schemas")
		if err != nil {
			return nil, err
		}
		target, ok := r.components().Schemas[name]
		if !ok || target == nil {
			return nil, notFound(ref)
		}
		resolved, err := r.schema(target)
		if err != nil {
			return nil, err
		}
		r.schemas[ref] = resolved
		return resolved, nil
	}

	c := *s
	var err error
	if s.Properties != nil {
		c.Properties = make(map[string]*parser.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			if c.Properties[name], err = r.schema(prop); err != nil {
				return nil, err
			}
		}
	}
	if s.PatternProperties != nil {
		c.PatternProperties = make(map[string]*parser.Schema, len(s.PatternProperties))
		for name, prop := range s.PatternProperties {
			if c.PatternProperties[name], err = r.schema(prop); err != nil {
				return nil, err
			}
		}
	}
	if items, ok := s.Items.(*parser.Schema); ok {
		if c.Items, err = r.schema(items); err != nil {
			return nil, err
		}
	}
	if extra, ok := s.AdditionalProperties.(*parser.Schema); ok {
		if c.AdditionalProperties, err = r.schema(extra); err != nil {
			return nil, err
		}
	}
	for _, list := range []*[]*parser.Schema{&c.AllOf, &c.AnyOf, &c.OneOf, &c.PrefixItems} {
		if *list, err = r.schemaList(*list); err != nil {
			return nil, err
		}
	}
	if c.Not, err = r.schema(s.Not); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *resolver) schemaList(list []*parser.Schema) ([]*parser.Schema, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]*parser.Schema, len(list))
	for i, s := range list {
		resolved, err := r.schema(s)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (r *resolver) content(content map[string]*parser.MediaType) (map[string]*parser.MediaType, error) {
	if content == nil {
		return nil, nil
	}
	out := make(map[string]*parser.MediaType, len(content))
	for ct, mt := range content {
		if mt == nil {
			out[ct] = nil
			continue
		}
		c := *mt
		schema, err := r.schema(mt.Schema)
		if err != nil {
			return nil, err
		}
		c.Schema = schema
		out[ct] = &c
	}
	return out, nil
}

// parameter resolves p, whose source location is given by raw pointer tokens. The
// tokens are used to recover default and nullable facts the typed model drops.
func (r *resolver) parameter(p *parser.Parameter, raw []string) (*Parameter, error) {
	depth := len(r.stack)
	defer r.unwind(depth)
	for p != nil && p.Ref != "" {
		ref := p.Ref
		name, err := r.enter(ref, "parameters")
		if err != nil {
			return nil, err
		}
		target, ok := r.components().Parameters[name]
		if !ok || target == nil {
			return nil, notFound(ref)
		}
		p, raw = target, []string{"components", "parameters", name}
	}
	if p == nil {
		return nil, &oaserrors.ValidationError{Path: strings.Join(raw, "."), Message: "parameter is null"}
	}

	c := *p
	var err error
	if c.Schema, err = r.schema(p.Schema); err != nil {
		return nil, err
	}
	if c.Content, err = r.content(p.Content); err != nil {
		return nil, err
	}
	out := &Parameter{Parameter: &c}
	r.parameterFacts(out, raw)
	return out, nil
}

// parameterFacts records declared defaults (including explicit nulls) and nullability,
// looking at both the parameter and its schema.
func (r *resolver) parameterFacts(p *Parameter, raw []string) {
	node, found := r.spec.Raw(raw...)
	if found {
		if v, ok := rawKey(node, "default"); ok {
			p.HasDefault, p.DefaultValue = true, normalizeValue(v)
		}
		if v, ok := rawKey(node, "nullable"); ok {
			p.Nullable, _ = v.(bool)
		}
		schemaTokens := append(append([]string(nil), raw...), "schema")
		if schemaNode, _, ok := r.spec.rawFollow(schemaTokens); ok && !p.HasDefault {
			if v, ok := rawKey(schemaNode, "default"); ok {
				p.HasDefault, p.DefaultValue = true, normalizeValue(v)
			}
		}
	}

	schema := p.ValueSchema()
	if !p.HasDefault {
		switch {
		case p.Default != nil:
			p.HasDefault, p.DefaultValue = true, normalizeValue(p.Default)
		case schema != nil && schema.Default != nil:
			p.HasDefault, p.DefaultValue = true, normalizeValue(schema.Default)
		}
	}
	if isNullable(schema) {
		p.Nullable = true
	}
}

// parameterLevel resolves one parameters list (path level or operation level).
func (r *resolver) parameterLevel(list []*parser.Parameter, raw []string) ([]*Parameter, error) {
	out := make([]*Parameter, 0, len(list))
	for i, p := range list {
		tokens := append(append([]string(nil), raw...), "parameters", strconv.Itoa(i))
		resolved, err := r.parameter(p, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// mergeParameters overlays operation-level parameters on path-level ones. A parameter
// with the same location and name replaces the inherited one in place.
func mergeParameters(pathLevel, opLevel []*Parameter) []*Parameter {
	merged := append([]*Parameter(nil), pathLevel...)
	index := make(map[string]int, len(merged))
	for i, p := range merged {
		index[paramKey(p)] = i
	}
	for _, p := range opLevel {
		if i, ok := index[paramKey(p)]; ok {
			merged[i] = p
			continue
		}
		index[paramKey(p)] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

func paramKey(p *Parameter) string {
	return strings.ToLower(p.In) + ":" + p.Name
}

func (r *resolver) requestBody(rb *parser.RequestBody) (*parser.RequestBody, error) {
	depth := len(r.stack)
	defer r.unwind(depth)
	for rb != nil && rb.Ref != "" {
		ref := rb.Ref
		name, err := r.enter(ref, "requestBodies")
		if err != nil {
			return nil, err
		}
		target, ok := r.components().RequestBodies[name]
		if !ok || target == nil {
			return nil, notFound(ref)
		}
		rb = target
	}
	if rb == nil {
		return nil, nil
	}
	c := *rb
	var err error
	if c.Content, err = r.content(rb.Content); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *resolver) header(h *parser.Header) (*parser.Header, error) {
	depth := len(r.stack)
	defer r.unwind(depth)
	for h != nil && h.Ref != "" {
		ref := h.Ref
		name, err := r.enter(ref, "headers")
		if err != nil {
			return nil, err
		}
		target, ok := r.components().Headers[name]
		if !ok || target == nil {
			return nil, notFound(ref)
		}
		h = target
	}
	if h == nil {
		return nil, nil
	}
	c := *h
	var err error
	if c.Schema, err = r.schema(h.Schema); err != nil {
		return nil, err
	}
	if c.Content, err = r.content(h.Content); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *resolver) response(resp *parser.Response) (*parser.Response, error) {
	depth := len(r.stack)
	defer r.unwind(depth)
	for resp != nil && resp.Ref != "" {
		ref := resp.Ref
		name, err := r.enter(ref, "responses")
		if err != nil {
			return nil, err
		}
		target, ok := r.components().Responses[name]
		if !ok || target == nil {
			return nil, notFound(ref)
		}
		resp = target
	}
	if resp == nil {
		return nil, nil
	}
	c := *resp
	if resp.Headers != nil {
		c.Headers = make(map[string]*parser.Header, len(resp.Headers))
		for name, h := range resp.Headers {
			resolved, err := r.header(h)
			if err != nil {
				return nil, err
			}
			c.Headers[name] = resolved
		}
	}
	var err error
	if c.Content, err = r.content(resp.Content); err != nil {
		return nil, err
	}
	return &c, nil
}

// responses flattens the responses object into a map keyed by status key.
func (r *resolver) responses(rs *parser.Responses) (map[string]*parser.Response, error) {
	out := make(map[string]*parser.Response)
	if rs == nil {
		return out, nil
	}
	if rs.Default != nil {
		resolved, err := r.response(rs.Default)
		if err != nil {
			return nil, err
		}
		out["default"] = resolved
	}
	for code, resp := range rs.Codes {
		resolved, err := r.response(resp)
		if err != nil {
			return nil, err
		}
		out[code] = resolved
	}
	return out, nil
}
