package oas

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oastools/parser"
)

const bytesSource = "<bytes>"

// Specification is a loaded OpenAPI 3.x document. It is never modified after loading
// and is safe for concurrent use.
type Specification struct {
	result *parser.ParseResult
	doc    *parser.OAS3Document
	source string
}

// Load parses a specification from a file or from bytes.
//
// References are kept as written; operations are denormalized on demand by a
// [Processor]. With structure validation enabled (the default), any structural error
// reported by the parser fails the load.
func Load(opts ...LoadOption) (*Specification, error) {
	cfg := defaultLoadConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	popts := []parser.Option{
		parser.WithValidateStructure(cfg.validateStructure),
		parser.WithResolveRefs(false),
		parser.WithLogger(cfg.logger),
	}
	var source string
	switch {
	case cfg.filePath != "" && cfg.bytes != nil:
		return nil, &oaserrors.LoadError{Message: "specify exactly one of WithFilePath or WithBytes"}
	case cfg.filePath != "":
		source = cfg.filePath
		popts = append(popts, parser.WithFilePath(cfg.filePath))
	case cfg.bytes != nil:
		source = bytesSource
		popts = append(popts, parser.WithBytes(cfg.bytes))
	default:
		return nil, &oaserrors.LoadError{Message: "no input source: use WithFilePath or WithBytes"}
	}

	result, err := parser.ParseWithOptions(popts...)
	if err != nil {
		return nil, &oaserrors.LoadError{Source: source, Message: "parsing failed", Cause: err}
	}
	if cfg.validateStructure && len(result.Errors) > 0 {
		return nil, &oaserrors.LoadError{
			Source:  source,
			Message: fmt.Sprintf("%d structural error(s)", len(result.Errors)),
			Cause:   errors.Join(result.Errors...),
		}
	}
	for _, w := range result.Warnings {
		cfg.logger.Warn("specification warning", "source", source, "warning", w)
	}

	spec, err := NewSpecification(result)
	if err != nil {
		return nil, err
	}
	spec.source = source
	cfg.logger.Debug("specification loaded", "source", source, "version", result.Version, "paths", len(spec.doc.Paths))
	return spec, nil
}

// NewSpecification wraps an already parsed document. Only OAS 3.x documents are
// accepted.
func NewSpecification(result *parser.ParseResult) (*Specification, error) {
	if result == nil {
		return nil, &oaserrors.LoadError{Message: "parse result cannot be nil"}
	}
	doc, ok := result.OAS3Document()
	if !ok || doc == nil {
		return nil, &oaserrors.LoadError{
			Source:  result.SourcePath,
			Message: fmt.Sprintf("only OAS 3.x documents are supported, got version %q", result.Version),
		}
	}
	return &Specification{result: result, doc: doc, source: result.SourcePath}, nil
}

// Source returns the file path the specification was loaded from, or "<bytes>".
func (s *Specification) Source() string { return s.source }

// Version returns the declared OpenAPI version.
func (s *Specification) Version() string { return s.result.Version }

// Document returns the parsed document. Callers must not modify it.
func (s *Specification) Document() *parser.OAS3Document { return s.doc }

// Components returns the components object, or nil.
func (s *Specification) Components() *parser.Components { return s.doc.Components }

// Paths returns the declared paths in sorted order.
func (s *Specification) Paths() []string {
	paths := make([]string, 0, len(s.doc.Paths))
	for p := range s.doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PathItem returns the path item declared for path.
func (s *Specification) PathItem(path string) (*parser.PathItem, bool) {
	item, ok := s.doc.Paths[path]
	return item, ok && item != nil
}

// Raw looks up a node of the source document by JSON pointer tokens, before any
// reference resolution. It distinguishes a key explicitly set to null (found, nil value)
// from an absent key.
func (s *Specification) Raw(tokens ...string) (any, bool) {
	var node any = s.result.Data
	for _, tok := range tokens {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[tok]
			if !ok {
				return nil, false
			}
			node = v
		case map[any]any:
			v, ok := n[tok]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
	}
	return node, true
}

// maxRawRefHops bounds $ref chains followed by rawFollow.
const maxRawRefHops = 32

// rawFollow looks up tokens and, while the node found is a local $ref, continues at the
// referenced location. It returns the tokens of the final node.
func (s *Specification) rawFollow(tokens []string) (any, []string, bool) {
	for hop := 0; hop < maxRawRefHops; hop++ {
		node, ok := s.Raw(tokens...)
		if !ok {
			return nil, nil, false
		}
		ref, isRef := rawString(node, "$ref")
		if !isRef {
			return node, tokens, true
		}
		next, err := pointerTokens(ref)
		if err != nil {
			return nil, nil, false
		}
		tokens = next
	}
	return nil, nil, false
}

// rawString returns node[key] when node is a mapping holding a string there.
func rawString(node any, key string) (string, bool) {
	v, ok := rawKey(node, key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// rawKey returns node[key] when node is a mapping containing key.
func rawKey(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case map[any]any:
		v, ok := n[key]
		return v, ok
	}
	return nil, false
}

// pointerTokens splits a local reference such as "#/components/schemas/Pet" into
// unescaped JSON pointer tokens.
func pointerTokens(ref string) ([]string, error) {
	pointer, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil, fmt.Errorf("only local references are supported")
	}
	if pointer == "" {
		return nil, nil
	}
	if pointer[0] != '/' {
		return nil, fmt.Errorf("malformed JSON pointer %q", pointer)
	}
	tokens := strings.Split(pointer[1:], "/")
	for i, tok := range tokens {
		tokens[i] = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
	}
	return tokens, nil
}
