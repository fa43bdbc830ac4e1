// Package httputil provides HTTP method, status-code and media-type helpers shared by the
// operation processor and the route binder.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

// HTTP Status Code Constants
const (
	StatusCodeLength = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode    = 100 // Minimum valid HTTP status code
	MaxStatusCode    = 599 // Maximum valid HTTP status code
	WildcardChar     = 'X' // Wildcard character used in status code patterns (e.g., "2XX")
	DefaultKey       = "default"
)

// HTTP Method Constants, lowercased as they appear in a path item.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists the path item methods in declaration order.
var Methods = []string{
	MethodGet, MethodPut, MethodPost, MethodDelete,
	MethodOptions, MethodHead, MethodPatch, MethodTrace,
}

// IsMethod reports whether m (any case) is a path item method.
func IsMethod(m string) bool {
	m = strings.ToLower(m)
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// MIME types
const (
	MediaTypeJSON = "application/json"
)

// StandardHTTPStatusCodes contains RFC 9110 officially defined HTTP status codes.
var StandardHTTPStatusCodes = map[string]bool{
	"100": true, "101": true, "102": true, "103": true,
	"200": true, "201": true, "202": true, "203": true, "204": true, "205": true,
	"206": true, "207": true, "208": true, "226": true,
	"300": true, "301": true, "302": true, "303": true, "304": true, "305": true,
	"307": true, "308": true,
	"400": true, "401": true, "402": true, "403": true, "404": true, "405": true,
	"406": true, "407": true, "408": true, "409": true, "410": true, "411": true,
	"412": true, "413": true, "414": true, "415": true, "416": true, "417": true,
	"418": true, "421": true, "422": true, "423": true, "424": true, "425": true,
	"426": true, "428": true, "429": true, "431": true, "451": true,
	"500": true, "501": true, "502": true, "503": true, "504": true, "505": true,
	"506": true, "507": true, "508": true, "510": true, "511": true,
}

// ValidateStatusCode checks if a responses key is valid:
// "default", an x- extension, a 1XX-5XX range, or a numeric code 100-599.
func ValidateStatusCode(code string) bool {
	if code == DefaultKey || strings.HasPrefix(code, "x-") {
		return true
	}
	if len(code) != StatusCodeLength {
		return false
	}
	if code[1] == WildcardChar && code[2] == WildcardChar {
		return code[0] >= '1' && code[0] <= '5'
	}
	for i := 0; i < StatusCodeLength; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	n, _ := strconv.Atoi(code)
	return n >= MinStatusCode && n <= MaxStatusCode
}

// IsStandardStatusCode checks if a status code is a well-defined standard HTTP code.
func IsStandardStatusCode(code string) bool {
	return StandardHTTPStatusCodes[code]
}

// RangeKey returns the NXX key covering status, e.g. "4XX" for 404.
func RangeKey(status int) string {
	return strconv.Itoa(status/100) + "XX"
}

// MatchStatus finds the responses key for status: the exact code first, then its NXX
// range. The default key is never matched.
func MatchStatus[V any](responses map[string]V, status int) (string, bool) {
	exact := strconv.Itoa(status)
	if _, ok := responses[exact]; ok {
		return exact, true
	}
	rng := RangeKey(status)
	if _, ok := responses[rng]; ok {
		return rng, true
	}
	// Range keys are case-insensitive in practice ("2xx").
	lower := strings.ToLower(rng)
	if _, ok := responses[lower]; ok {
		return lower, true
	}
	return "", false
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and prevents invalid combinations (*/subtype).
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}
	if strings.HasSuffix(mediaType, "/*") {
		parts := strings.Split(mediaType, "/")
		return len(parts) == 2 && parts[0] != "" && parts[0] != "*"
	}
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(base, "*/")
}

// BaseMediaType returns the lowercased media type without parameters.
// "application/json; charset=utf-8" becomes "application/json". Unparseable input is
// returned trimmed and lowercased.
func BaseMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = contentType[:i]
		}
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// MatchMediaType reports whether contentType satisfies pattern, which may be
// "*/*" or "type/*".
func MatchMediaType(pattern, contentType string) bool {
	pattern = strings.ToLower(pattern)
	contentType = BaseMediaType(contentType)
	if pattern == "*/*" || pattern == contentType {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(contentType, prefix+"/")
	}
	return false
}

// IsJSONMediaType reports whether contentType is application/json or a +json suffix type.
func IsJSONMediaType(contentType string) bool {
	mt := BaseMediaType(contentType)
	return mt == MediaTypeJSON || strings.HasSuffix(mt, "+json")
}
