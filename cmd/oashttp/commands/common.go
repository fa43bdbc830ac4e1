// Package commands provides CLI command handlers for oashttp.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/erraggy/oashttp/binder"
	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/erraggy/oashttp/oaslog"
	"go.yaml.in/yaml/v4"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes)
	return nil
}

// FormatSpecPath returns a display-friendly path for the specification.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// NewLogger returns a text logger on w; verbose enables debug output.
func NewLogger(w io.Writer, verbose bool) oaslog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return oaslog.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// RouteFailure records an operation that could not be compiled.
type RouteFailure struct {
	Key   string `json:"key" yaml:"key"`
	Code  string `json:"code" yaml:"code"`
	Error string `json:"error" yaml:"error"`
}

// compiled is a specification with every compilable operation bound to the mock
// dispatcher.
type compiled struct {
	spec     *oas.Specification
	binder   *binder.Binder
	failures []RouteFailure
}

// loadSpecification reads specPath, or stdin for "-".
func loadSpecification(specPath string, logger oaslog.Logger) (*oas.Specification, error) {
	opts := []oas.LoadOption{oas.WithLogger(logger)}
	if specPath == StdinFilePath {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		opts = append(opts, oas.WithBytes(data))
	} else {
		opts = append(opts, oas.WithFilePath(specPath))
	}
	return oas.Load(opts...)
}

// compileSpec loads specPath and registers a route for every declared operation. An
// operation that cannot be compiled is recorded and skipped.
func compileSpec(specPath string, logger oaslog.Logger) (*compiled, error) {
	spec, err := loadSpecification(specPath, logger)
	if err != nil {
		return nil, err
	}
	proc, err := oas.New(spec, oas.WithProcessorLogger(logger))
	if err != nil {
		return nil, err
	}
	b, err := binder.New(httpserver.NewRouter(), proc, binder.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	c := &compiled{spec: spec, binder: b}
	for _, decl := range proc.Declarations() {
		var extras []httpserver.Middleware
		for _, name := range decl.MiddlewareNames() {
			extras = append(extras, passThrough(name))
		}
		if err := b.SetRoute(decl.Path, decl.Method, MockDispatcher{}, extras...); err != nil {
			failure := RouteFailure{Key: binder.RouteKey(decl.Path, decl.Method), Error: err.Error()}
			var cfgErr *oaserrors.ConfigError
			if errors.As(err, &cfgErr) {
				failure.Code = cfgErr.Code()
			}
			c.failures = append(c.failures, failure)
		}
	}
	return c, nil
}
