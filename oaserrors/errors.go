package oaserrors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates a route could not be registered.
	ErrConfig = errors.New("configuration error")

	// ErrRequest indicates a request or its response failed validation.
	ErrRequest = errors.New("request error")

	// ErrResponseStatus indicates a response status the operation does not declare.
	ErrResponseStatus = errors.New("undeclared response status")

	// ErrConformance indicates a value did not conform to its declaration.
	ErrConformance = errors.New("conformance error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrValidation indicates an operation declaration is structurally invalid.
	ErrValidation = errors.New("validation error")

	// ErrLoad indicates a specification could not be loaded.
	ErrLoad = errors.New("load error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")
)

// ConfigKind classifies a registration failure.
type ConfigKind int

const (
	// InvalidPath reports an empty or non-absolute path.
	InvalidPath ConfigKind = iota + 1
	// InvalidMethod reports an empty method.
	InvalidMethod
	// InvalidDispatcher reports a missing or unknown dispatcher.
	InvalidDispatcher
	// InvalidMiddleware reports an unknown extra middleware.
	InvalidMiddleware
	// InvalidOperation reports an operation that could not be resolved, validated or denormalized.
	InvalidOperation
	// UnsupportedContentType reports a request-body media type without a body parser.
	UnsupportedContentType
)

// Code returns the stable machine-readable code for the kind.
func (k ConfigKind) Code() string {
	switch k {
	case InvalidPath:
		return "E_OASHTTP_SET_ROUTE_INVALID_PATH"
	case InvalidMethod:
		return "E_OASHTTP_SET_ROUTE_INVALID_METHOD"
	case InvalidDispatcher:
		return "E_OASHTTP_SET_ROUTE_INVALID_DISPATCHER"
	case InvalidMiddleware:
		return "E_OASHTTP_SET_ROUTE_INVALID_MIDDLEWARE"
	case InvalidOperation:
		return "E_OASHTTP_SET_ROUTE_INVALID_OPERATION"
	case UnsupportedContentType:
		return "E_OASHTTP_SET_ROUTE_INVALID_CONTENT_TYPE"
	default:
		return "E_OASHTTP_SET_ROUTE"
	}
}

// String returns the code.
func (k ConfigKind) String() string {
	return k.Code()
}

// ConfigError represents a route that could not be registered.
// No route is inserted when a ConfigError is returned.
type ConfigError struct {
	// Kind classifies the failure
	Kind ConfigKind
	// Path is the operation path as declared (e.g. "/pets/{id}")
	Path string
	// Method is the operation method
	Method string
	// ContentType is the offending media type for UnsupportedContentType
	ContentType string
	// Name is the dispatcher or middleware name that could not be located
	Name string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Code returns the stable machine-readable code.
func (e *ConfigError) Code() string {
	return e.Kind.Code()
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := e.Code() + ": configuration error"
	if e.Method != "" || e.Path != "" {
		msg += " for " + strings.TrimSpace(strings.ToUpper(e.Method)+" "+e.Path)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// RequestKind classifies a request-time validation failure.
type RequestKind int

const (
	// InvalidRequestParameters reports a parameter that failed conformance.
	InvalidRequestParameters RequestKind = iota + 1
	// InvalidRequestBody reports a request body that failed conformance.
	InvalidRequestBody
	// InvalidResponse reports a response that failed conformance.
	InvalidResponse
)

// Code returns the stable machine-readable code for the kind.
func (k RequestKind) Code() string {
	switch k {
	case InvalidRequestParameters:
		return "E_OAS_INVALID_REQUEST_PARAMETERS"
	case InvalidRequestBody:
		return "E_OAS_INVALID_REQUEST_BODY"
	case InvalidResponse:
		return "E_OAS_INVALID_RESPONSE"
	default:
		return "E_OAS_INVALID_REQUEST"
	}
}

func (k RequestKind) subject() string {
	switch k {
	case InvalidRequestParameters:
		return "request-parameters"
	case InvalidRequestBody:
		return "request-body"
	case InvalidResponse:
		return "response"
	default:
		return "request"
	}
}

// String returns the code.
func (k RequestKind) String() string {
	return k.Code()
}

// RequestError is the error a validator stage aborts a session with.
type RequestError struct {
	// Kind classifies the failure
	Kind RequestKind
	// Status is the HTTP status the error renders with; 0 means 400
	Status int
	// Method is the request method
	Method string
	// URL is the request URL
	URL string
	// Cause is the conformance failure that triggered the abort
	Cause error
}

// Code returns the stable machine-readable code.
func (e *RequestError) Code() string {
	return e.Kind.Code()
}

// Message returns the human-readable summary without the cause,
// e.g. "Invalid request-body for operation POST /pets".
func (e *RequestError) Message() string {
	return "Invalid " + e.Kind.subject() + " for operation " + strings.ToUpper(e.Method) + " " + e.URL
}

// HTTPStatus returns the status the error renders with.
func (e *RequestError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// Error returns a human-readable error message.
func (e *RequestError) Error() string {
	msg := e.Code() + ": " + e.Message()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

// ResponseStatusError reports a view status the operation does not declare.
type ResponseStatusError struct {
	// Status is the status the dispatcher produced
	Status int
	// Declared lists the status keys the operation declares, in order
	Declared []string
}

// Code returns the stable machine-readable code.
func (e *ResponseStatusError) Code() string {
	return "E_OAS_INVALID_RESPONSE_STATUS"
}

// Error returns a human-readable error message.
func (e *ResponseStatusError) Error() string {
	return e.Code() + ": response status " + strconv.Itoa(e.Status) +
		" is not declared: The operation supports status codes: " + strings.Join(e.Declared, ", ")
}

// Is reports whether target matches this error type.
func (e *ResponseStatusError) Is(target error) bool {
	return target == ErrResponseStatus
}

// Issue is a single conformance problem.
type Issue struct {
	// Path locates the problem inside the value (e.g. "body.tags[0]"), or is empty
	Path string
	// Message describes the problem
	Message string
}

// String returns "path: message", or the message alone when Path is empty.
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ConformanceError reports a parameter, body or header that did not conform to its
// declaration.
type ConformanceError struct {
	// Location is where the value was read from: "path", "query", "header", "cookie",
	// "body" or "response"
	Location string
	// Name is the parameter or header name; empty for bodies
	Name string
	// Issues lists the individual problems
	Issues []Issue
}

// Error returns a human-readable error message.
func (e *ConformanceError) Error() string {
	msg := "conformance error"
	switch {
	case e.Location != "" && e.Name != "":
		msg += fmt.Sprintf(" for %s %q", e.Location, e.Name)
	case e.Location != "":
		msg += " for " + e.Location
	}
	if len(e.Issues) > 0 {
		parts := make([]string, len(e.Issues))
		for i, issue := range e.Issues {
			parts[i] = issue.String()
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ConformanceError) Is(target error) bool {
	return target == ErrConformance
}

// ReferenceError represents a failure to resolve a $ref while denormalizing an operation.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// ValidationError represents a structurally invalid operation declaration.
type ValidationError struct {
	// Path is the location of the problematic field (e.g. "paths./pets.get.parameters[0]")
	Path string
	// Message describes the validation failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LoadError represents a specification that could not be loaded.
type LoadError struct {
	// Source is the file path, or "<bytes>" for in-memory input
	Source string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *LoadError) Error() string {
	msg := "load error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ResourceLimitError represents a request that exceeded a configured limit.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded (e.g. "body_size")
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d)", e.Limit)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// HTTPStatus returns 413 Request Entity Too Large.
func (e *ResourceLimitError) HTTPStatus() int {
	return http.StatusRequestEntityTooLarge
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}
