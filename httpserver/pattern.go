package httpserver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Pattern matches request paths against a route pattern written with ":name"
// placeholders, e.g. "/pets/:petId/photos". A placeholder name runs until the next
// character that is not a letter, digit or underscore.
type Pattern struct {
	// source is the pattern as written
	source string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the placeholder names in order of appearance
	paramNames []string

	// specificity is used for sorting (higher = more specific)
	specificity int
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// CompilePattern compiles a ":name" route pattern.
//
// Returns an error if the pattern is empty, relative, has an empty placeholder name or
// repeats a name.
func CompilePattern(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("httpserver: pattern cannot be empty")
	}
	if pattern[0] != '/' {
		return nil, fmt.Errorf("httpserver: pattern %q must start with /", pattern)
	}

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	var paramNames []string
	specificity := 0

	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c != ':' {
			regexBuf.WriteString(regexp.QuoteMeta(string(c)))
			if c != '/' {
				specificity++
			}
			i++
			continue
		}

		end := i + 1
		for end < len(pattern) && isNameChar(pattern[end]) {
			end++
		}
		name := pattern[i+1 : end]
		if name == "" {
			return nil, fmt.Errorf("httpserver: empty placeholder at position %d in pattern %q", i, pattern)
		}
		for _, existing := range paramNames {
			if existing == name {
				return nil, fmt.Errorf("httpserver: duplicate placeholder %q in pattern %q", name, pattern)
			}
		}
		paramNames = append(paramNames, name)

		// A placeholder spans one path segment.
		regexBuf.WriteString("([^/]+)")
		specificity--
		i = end
	}

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, fmt.Errorf("httpserver: failed to compile pattern %q: %w", pattern, err)
	}

	return &Pattern{
		source:      pattern,
		regex:       regex,
		paramNames:  paramNames,
		specificity: specificity,
	}, nil
}

// Match checks the escaped request path against the pattern and returns the
// unescaped placeholder values.
func (p *Pattern) Match(escapedPath string) (map[string]string, bool) {
	matches := p.regex.FindStringSubmatch(escapedPath)
	if matches == nil || len(matches) != len(p.paramNames)+1 {
		return nil, false
	}

	params := make(map[string]string, len(p.paramNames))
	for i, name := range p.paramNames {
		value, err := url.PathUnescape(matches[i+1])
		if err != nil {
			return nil, false
		}
		params[name] = value
	}
	return params, true
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.source
}

// ParamNames returns the placeholder names in order of appearance.
func (p *Pattern) ParamNames() []string {
	return p.paramNames
}

// moreSpecific orders patterns so literal segments win over placeholders:
// specificity first, then length, then lexically for stability.
func (p *Pattern) moreSpecific(other *Pattern) bool {
	if p.specificity != other.specificity {
		return p.specificity > other.specificity
	}
	if len(p.source) != len(other.source) {
		return len(p.source) > len(other.source)
	}
	return p.source < other.source
}
