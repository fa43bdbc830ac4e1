package oas

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oashttp/internal/issues"
	"github.com/erraggy/oastools/parser"
	"github.com/google/uuid"
)

// maxPatternCacheSize bounds the number of compiled patterns kept by a schemaValidator.
const maxPatternCacheSize = 1000

// schemaValidator checks decoded values (JSON-shaped: string, float64, int64, bool, []any,
// map[string]any, nil) against resolved schemas. Format violations are reported as
// warnings; everything else is an error.
type schemaValidator struct {
	patterns     sync.Map // string -> *regexp.Regexp
	patternCount atomic.Int32
}

func (v *schemaValidator) validate(data any, schema *parser.Schema, path string) issues.List {
	if schema == nil {
		return nil
	}
	if data == nil {
		if isNullable(schema) {
			return nil
		}
		return issues.List{issues.Errorf(path, "value cannot be null")}
	}

	if list := v.checkType(data, schema, path); len(list) > 0 {
		return list
	}

	var list issues.List
	switch d := data.(type) {
	case string:
		list = append(list, v.checkString(d, schema, path)...)
	case float64, int, int64:
		list = append(list, checkNumber(toFloat64(d), schema, path)...)
	case []any:
		list = append(list, v.checkArray(d, schema, path)...)
	case map[string]any:
		list = append(list, v.checkObject(d, schema, path)...)
	}
	if len(schema.Enum) > 0 && !inEnum(data, schema.Enum) {
		list = append(list, issues.Errorf(path, fmt.Sprintf("value %v is not one of the allowed values", data)))
	}
	return append(list, v.checkComposition(data, schema, path)...)
}

// isNullable accepts both the 3.0 nullable keyword and a 3.1 "null" type.
func isNullable(schema *parser.Schema) bool {
	if schema == nil {
		return false
	}
	if schema.Nullable {
		return true
	}
	for _, t := range schemaTypes(schema) {
		if t == "null" {
			return true
		}
	}
	return false
}

func (v *schemaValidator) checkType(data any, schema *parser.Schema, path string) issues.List {
	types := schemaTypes(schema)
	if len(types) == 0 {
		return nil
	}
	dataType := jsonType(data)
	for _, t := range types {
		if !typeMatches(dataType, t) {
			continue
		}
		if t == "integer" && dataType == "number" {
			if f := toFloat64(data); f != float64(int64(f)) {
				return issues.List{issues.Errorf(path, fmt.Sprintf("value must be an integer, got %v", f))}
			}
		}
		return nil
	}
	return issues.List{issues.Errorf(path, fmt.Sprintf("expected type %s but got %s", strings.Join(types, " or "), dataType))}
}

func (v *schemaValidator) checkString(s string, schema *parser.Schema, path string) issues.List {
	var list issues.List
	n := len([]rune(s))
	if schema.MinLength != nil && n < *schema.MinLength {
		list = append(list, issues.Errorf(path, fmt.Sprintf("string length %d is less than minimum %d", n, *schema.MinLength)))
	}
	if schema.MaxLength != nil && n > *schema.MaxLength {
		list = append(list, issues.Errorf(path, fmt.Sprintf("string length %d exceeds maximum %d", n, *schema.MaxLength)))
	}
	if schema.Pattern != "" {
		matched, err := v.matchPattern(schema.Pattern, s)
		switch {
		case err != nil:
			list = append(list, issues.Errorf(path, fmt.Sprintf("invalid pattern %q: %v", schema.Pattern, err)))
		case !matched:
			list = append(list, issues.Errorf(path, fmt.Sprintf("string does not match pattern %q", schema.Pattern)))
		}
	}
	if schema.Format != "" && !formatValid(schema.Format, s) {
		list = append(list, issues.Warnf(path, fmt.Sprintf("%q is not a valid %s", s, schema.Format)))
	}
	return list
}

func checkNumber(n float64, schema *parser.Schema, path string) issues.List {
	var list issues.List
	if lo, excl := lowerBound(schema); lo != nil {
		if excl && n <= *lo {
			list = append(list, issues.Errorf(path, fmt.Sprintf("value %v must be greater than %v", n, *lo)))
		} else if !excl && n < *lo {
			list = append(list, issues.Errorf(path, fmt.Sprintf("value %v is less than minimum %v", n, *lo)))
		}
	}
	if hi, excl := upperBound(schema); hi != nil {
		if excl && n >= *hi {
			list = append(list, issues.Errorf(path, fmt.Sprintf("value %v must be less than %v", n, *hi)))
		} else if !excl && n > *hi {
			list = append(list, issues.Errorf(path, fmt.Sprintf("value %v exceeds maximum %v", n, *hi)))
		}
	}
	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		q := n / *schema.MultipleOf
		if q != float64(int64(q)) {
			list = append(list, issues.Errorf(path, fmt.Sprintf("value %v is not a multiple of %v", n, *schema.MultipleOf)))
		}
	}
	return list
}

// lowerBound returns the effective minimum. A numeric exclusiveMinimum (3.1) is itself
// the bound; a boolean one (3.0) qualifies minimum.
func lowerBound(schema *parser.Schema) (*float64, bool) {
	switch e := schema.ExclusiveMinimum.(type) {
	case bool:
		return schema.Minimum, e
	case float64:
		return &e, true
	case int:
		f := float64(e)
		return &f, true
	}
	return schema.Minimum, false
}

func upperBound(schema *parser.Schema) (*float64, bool) {
	switch e := schema.ExclusiveMaximum.(type) {
	case bool:
		return schema.Maximum, e
	case float64:
		return &e, true
	case int:
		f := float64(e)
		return &f, true
	}
	return schema.Maximum, false
}

func (v *schemaValidator) checkArray(arr []any, schema *parser.Schema, path string) issues.List {
	var list issues.List
	if schema.MinItems != nil && len(arr) < *schema.MinItems {
		list = append(list, issues.Errorf(path, fmt.Sprintf("array has %d items, minimum is %d", len(arr), *schema.MinItems)))
	}
	if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
		list = append(list, issues.Errorf(path, fmt.Sprintf("array has %d items, maximum is %d", len(arr), *schema.MaxItems)))
	}
	if schema.UniqueItems && hasDuplicates(arr) {
		list = append(list, issues.Errorf(path, "array items must be unique"))
	}
	for i, item := range arr {
		var itemSchema *parser.Schema
		if i < len(schema.PrefixItems) {
			itemSchema = schema.PrefixItems[i]
		} else {
			itemSchema = itemsSchema(schema)
		}
		list = append(list, v.validate(item, itemSchema, fmt.Sprintf("%s[%d]", path, i))...)
	}
	return list
}

func (v *schemaValidator) checkObject(obj map[string]any, schema *parser.Schema, path string) issues.List {
	var list issues.List
	for _, name := range schema.Required {
		if _, ok := obj[name]; !ok {
			list = append(list, issues.Errorf(issues.FormatPath(path, name), fmt.Sprintf("required property %q is missing", name)))
		}
	}
	if schema.MinProperties != nil && len(obj) < *schema.MinProperties {
		list = append(list, issues.Errorf(path, fmt.Sprintf("object has %d properties, minimum is %d", len(obj), *schema.MinProperties)))
	}
	if schema.MaxProperties != nil && len(obj) > *schema.MaxProperties {
		list = append(list, issues.Errorf(path, fmt.Sprintf("object has %d properties, maximum is %d", len(obj), *schema.MaxProperties)))
	}
	for _, name := range sortedKeys(obj) {
		value := obj[name]
		propPath := issues.FormatPath(path, name)
		if prop, ok := schema.Properties[name]; ok {
			list = append(list, v.validate(value, prop, propPath)...)
			continue
		}
		switch extra := schema.AdditionalProperties.(type) {
		case bool:
			if !extra {
				list = append(list, issues.Errorf(propPath, fmt.Sprintf("additional property %q is not allowed", name)))
			}
		case *parser.Schema:
			list = append(list, v.validate(value, extra, propPath)...)
		}
	}
	return list
}

func (v *schemaValidator) checkComposition(data any, schema *parser.Schema, path string) issues.List {
	var list issues.List
	for i, sub := range schema.AllOf {
		if subList := v.validate(data, sub, path); subList.HasErrors() {
			list = append(list, issues.Errorf(path, fmt.Sprintf("allOf[%d] validation failed", i)))
			list = append(list, subList.Errors()...)
		}
	}
	if len(schema.AnyOf) > 0 && v.countMatches(data, schema.AnyOf, path) == 0 {
		list = append(list, issues.Errorf(path, "value does not match any of the anyOf schemas"))
	}
	if len(schema.OneOf) > 0 {
		switch n := v.countMatches(data, schema.OneOf, path); {
		case n == 0:
			list = append(list, issues.Errorf(path, "value does not match any of the oneOf schemas"))
		case n > 1:
			list = append(list, issues.Errorf(path, fmt.Sprintf("value matches %d oneOf schemas, expected exactly 1", n)))
		}
	}
	if schema.Not != nil && !v.validate(data, schema.Not, path).HasErrors() {
		list = append(list, issues.Errorf(path, "value must not match the not schema"))
	}
	return list
}

func (v *schemaValidator) countMatches(data any, schemas []*parser.Schema, path string) int {
	n := 0
	for _, sub := range schemas {
		if !v.validate(data, sub, path).HasErrors() {
			n++
		}
	}
	return n
}

func (v *schemaValidator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	// Clearing is not atomic with the count; a race only costs recompilation.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patterns.Range(func(key, _ any) bool {
			v.patterns.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patterns.Store(pattern, re)
	return re.MatchString(s), nil
}

// applyDefaults fills absent object properties that declare a default, recursing into
// nested objects and array items. Defaults are copied so requests never share state.
func applyDefaults(data any, schema *parser.Schema) {
	if schema == nil {
		return
	}
	switch d := data.(type) {
	case map[string]any:
		for name, prop := range schema.Properties {
			if prop == nil {
				continue
			}
			if _, ok := d[name]; !ok && prop.Default != nil {
				d[name] = normalizeValue(prop.Default)
			}
			applyDefaults(d[name], prop)
		}
		for _, sub := range schema.AllOf {
			applyDefaults(d, sub)
		}
	case []any:
		items := itemsSchema(schema)
		for _, item := range d {
			applyDefaults(item, items)
		}
	}
}

func schemaTypes(schema *parser.Schema) []string {
	switch t := schema.Type.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		types := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

// primaryType returns the first non-null declared type.
func primaryType(schema *parser.Schema) string {
	if schema == nil {
		return ""
	}
	types := schemaTypes(schema)
	for _, t := range types {
		if t != "null" {
			return t
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return ""
}

func itemsSchema(schema *parser.Schema) *parser.Schema {
	if schema == nil {
		return nil
	}
	items, _ := schema.Items.(*parser.Schema)
	return items
}

func jsonType(data any) string {
	switch data.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, float32:
		return "number"
	case int, int32, int64, uint, uint32, uint64:
		return "integer"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	switch reflect.ValueOf(data).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return "unknown"
}

func typeMatches(dataType, schemaType string) bool {
	switch {
	case dataType == schemaType:
		return true
	case schemaType == "number" && dataType == "integer":
		return true
	case schemaType == "integer" && dataType == "number":
		// fractional part checked by the caller
		return true
	}
	return false
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func inEnum(data any, enum []any) bool {
	for _, allowed := range enum {
		if reflect.DeepEqual(data, allowed) || reflect.DeepEqual(data, normalizeValue(allowed)) {
			return true
		}
		if jsonType(data) == "integer" || jsonType(data) == "number" {
			if (jsonType(allowed) == "integer" || jsonType(allowed) == "number") && toFloat64(data) == toFloat64(allowed) {
				return true
			}
		}
	}
	return false
}

func hasDuplicates(arr []any) bool {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if reflect.DeepEqual(arr[i], arr[j]) {
				return true
			}
		}
	}
	return false
}

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// formatValid checks the common string formats; unknown formats always pass.
func formatValid(format, s string) bool {
	switch format {
	case "email":
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	case "uri":
		u, err := url.Parse(s)
		return err == nil && u.Scheme != ""
	case "uri-reference":
		_, err := url.Parse(s)
		return err == nil
	case "date":
		if !dateRegex.MatchString(s) {
			return false
		}
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	case "uuid":
		return uuid.Validate(s) == nil && len(s) == 36
	}
	return true
}
