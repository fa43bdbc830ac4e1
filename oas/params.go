package oas

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/erraggy/oastools/parser"
)

// Serialization styles.
const (
	styleSimple         = "simple"
	styleLabel          = "label"
	styleMatrix         = "matrix"
	styleForm           = "form"
	styleSpaceDelimited = "spaceDelimited"
	stylePipeDelimited  = "pipeDelimited"
	styleDeepObject     = "deepObject"
)

// allowedStyles lists the serialization styles valid for each parameter location.
var allowedStyles = map[string][]string{
	parser.ParamInPath:   {styleSimple, styleLabel, styleMatrix},
	parser.ParamInQuery:  {styleForm, styleSpaceDelimited, stylePipeDelimited, styleDeepObject},
	parser.ParamInHeader: {styleSimple},
	parser.ParamInCookie: {styleForm},
}

// defaultStyle returns the style a location uses when none is declared:
//
// | Location | Style  | Explode |
// |----------|--------|---------|
// | path     | simple | false   |
// | query    | form   | true    |
// | header   | simple | false   |
// | cookie   | form   | true    |
func defaultStyle(in string) string {
	switch in {
	case parser.ParamInQuery, parser.ParamInCookie:
		return styleForm
	}
	return styleSimple
}

func paramStyle(p *Parameter) string {
	if p.Style != "" {
		return p.Style
	}
	return defaultStyle(p.In)
}

func paramExplode(p *Parameter) bool {
	if p.Explode != nil {
		return *p.Explode
	}
	return paramStyle(p) == styleForm
}

// deserializePath decodes a raw path segment value.
func deserializePath(value string, p *Parameter, schema *parser.Schema) any {
	explode := paramExplode(p)
	switch paramStyle(p) {
	case styleLabel:
		return deserializeLabel(value, schema, explode)
	case styleMatrix:
		return deserializeMatrix(value, p.Name, schema, explode)
	}
	return deserializeSimple(value, schema, explode)
}

// deserializeQuery decodes the values of a query parameter. deepObject and exploded
// form objects read the whole query.
func deserializeQuery(query url.Values, p *Parameter, schema *parser.Schema) (any, bool) {
	style := paramStyle(p)
	if style == styleDeepObject {
		obj := deserializeDeepObject(query, p.Name, schema)
		return obj, len(obj) > 0
	}
	if style == styleForm && paramExplode(p) && primaryType(schema) == "object" {
		obj := make(map[string]any)
		for name, prop := range schema.Properties {
			if vals, ok := query[name]; ok && len(vals) > 0 {
				obj[name] = coerceValue(vals[0], prop)
			}
		}
		return obj, len(obj) > 0
	}

	values, ok := query[p.Name]
	if !ok || len(values) == 0 {
		return nil, false
	}
	switch style {
	case styleSpaceDelimited:
		return deserializeDelimited(values, " ", schema), true
	case stylePipeDelimited:
		return deserializeDelimited(values, "|", schema), true
	}
	return deserializeForm(values, schema, paramExplode(p)), true
}

// deserializeHeader decodes a header value; headers always use the simple style.
func deserializeHeader(value string, p *Parameter, schema *parser.Schema) any {
	return deserializeSimple(value, schema, paramExplode(p))
}

// deserializeCookie decodes a cookie value (form style without explode).
func deserializeCookie(value string, schema *parser.Schema) any {
	switch primaryType(schema) {
	case "array", "object":
		return deserializeSimple(value, schema, false)
	}
	return coerceValue(value, schema)
}

func deserializeDeepObject(query url.Values, name string, schema *parser.Schema) map[string]any {
	prefix := name + "["
	obj := make(map[string]any)
	for key, values := range query {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		end := strings.IndexByte(rest, ']')
		if end <= 0 || len(values) == 0 {
			continue
		}
		prop := rest[:end]
		propSchema := propertySchema(schema, prop)
		if len(values) > 1 || primaryType(propSchema) == "array" {
			obj[prop] = coerceArray(values, itemsSchema(propSchema))
			continue
		}
		obj[prop] = coerceValue(values[0], propSchema)
	}
	return obj
}

func deserializeSimple(value string, schema *parser.Schema, explode bool) any {
	switch primaryType(schema) {
	case "array":
		return coerceArray(strings.Split(value, ","), itemsSchema(schema))
	case "object":
		return deserializeObject(value, ",", schema, explode)
	}
	return coerceValue(value, schema)
}

// deserializeObject splits key=value pairs (explode) or alternating key,value lists.
func deserializeObject(value, sep string, schema *parser.Schema, explode bool) map[string]any {
	obj := make(map[string]any)
	if explode {
		for _, part := range strings.Split(value, sep) {
			if k, v, ok := strings.Cut(part, "="); ok && k != "" {
				obj[k] = coerceValue(v, propertySchema(schema, k))
			}
		}
		return obj
	}
	parts := strings.Split(value, ",")
	for i := 0; i+1 < len(parts); i += 2 {
		obj[parts[i]] = coerceValue(parts[i+1], propertySchema(schema, parts[i]))
	}
	return obj
}

func deserializeLabel(value string, schema *parser.Schema, explode bool) any {
	value, ok := strings.CutPrefix(value, ".")
	if !ok {
		return coerceValue(value, schema)
	}
	switch primaryType(schema) {
	case "array":
		sep := ","
		if explode {
			sep = "."
		}
		return coerceArray(strings.Split(value, sep), itemsSchema(schema))
	case "object":
		if explode {
			return deserializeObject(value, ".", schema, true)
		}
		return deserializeObject(value, ",", schema, false)
	}
	return coerceValue(value, schema)
}

func deserializeMatrix(value, name string, schema *parser.Schema, explode bool) any {
	value, ok := strings.CutPrefix(value, ";")
	if !ok {
		return coerceValue(value, schema)
	}
	prefix := name + "="
	switch primaryType(schema) {
	case "array":
		if explode {
			var items []string
			for _, part := range strings.Split(value, ";") {
				if v, ok := strings.CutPrefix(part, prefix); ok {
					items = append(items, v)
				}
			}
			return coerceArray(items, itemsSchema(schema))
		}
		if v, ok := strings.CutPrefix(value, prefix); ok {
			return coerceArray(strings.Split(v, ","), itemsSchema(schema))
		}
		return []any{}
	case "object":
		if explode {
			return deserializeObject(value, ";", schema, true)
		}
		v, _ := strings.CutPrefix(value, prefix)
		return deserializeObject(v, ",", schema, false)
	}
	v, _ := strings.CutPrefix(value, prefix)
	return coerceValue(v, schema)
}

func deserializeForm(values []string, schema *parser.Schema, explode bool) any {
	switch primaryType(schema) {
	case "array":
		if !explode && len(values) == 1 {
			return coerceArray(strings.Split(values[0], ","), itemsSchema(schema))
		}
		return coerceArray(values, itemsSchema(schema))
	case "object":
		return deserializeObject(values[0], ",", schema, false)
	}
	if len(values) > 1 {
		return coerceArray(values, schema)
	}
	return coerceValue(values[0], schema)
}

func deserializeDelimited(values []string, sep string, schema *parser.Schema) any {
	parts := strings.Split(strings.Join(values, sep), sep)
	if primaryType(schema) == "array" {
		return coerceArray(parts, itemsSchema(schema))
	}
	if len(parts) == 1 {
		return coerceValue(parts[0], schema)
	}
	return coerceArray(parts, nil)
}

// coerceValue converts a raw string to the type its schema declares. Values that fail to
// convert stay strings so schema validation reports the mismatch.
func coerceValue(value string, schema *parser.Schema) any {
	switch primaryType(schema) {
	case "integer":
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	if value == "null" && isNullable(schema) && primaryType(schema) != "string" {
		return nil
	}
	return value
}

func coerceArray(values []string, items *parser.Schema) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = coerceValue(v, items)
	}
	return out
}

func propertySchema(schema *parser.Schema, name string) *parser.Schema {
	if schema == nil {
		return nil
	}
	return schema.Properties[name]
}
