package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erraggy/oashttp/httpserver"
)

// RoutesFlags contains flags for the routes command
type RoutesFlags struct {
	Format  string
	Verbose bool
}

// SetupRoutesFlags creates and configures a FlagSet for the routes command.
// Returns the FlagSet and a RoutesFlags struct with bound flag variables.
func SetupRoutesFlags() (*flag.FlagSet, *RoutesFlags) {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	flags := &RoutesFlags{}

	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oashttp routes [flags] <file|->\n\n")
		Writef(fs.Output(), "Compile every operation of an OpenAPI 3.x document and print the route table.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oashttp routes openapi.yaml\n")
		Writef(fs.Output(), "  oashttp routes --format json openapi.yaml | jq '.routes[].key'\n")
		Writef(fs.Output(), "  cat openapi.yaml | oashttp routes -\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Every operation compiled\n")
		Writef(fs.Output(), "  1    The document could not be loaded or an operation failed to compile\n")
	}

	return fs, flags
}

// RouteInfo describes one compiled route.
type RouteInfo struct {
	Key          string   `json:"key" yaml:"key"`
	Method       string   `json:"method" yaml:"method"`
	Pattern      string   `json:"pattern" yaml:"pattern"`
	Conditions   []string `json:"conditions" yaml:"conditions"`
	ContentTypes []string `json:"contentTypes,omitempty" yaml:"contentTypes,omitempty"`
	Middlewares  []string `json:"middlewares" yaml:"middlewares"`
	Dispatcher   string   `json:"dispatcher" yaml:"dispatcher"`
}

// RoutesReport is the structured output of the routes command.
type RoutesReport struct {
	Specification string         `json:"specification" yaml:"specification"`
	Version       string         `json:"version" yaml:"version"`
	Routes        []RouteInfo    `json:"routes" yaml:"routes"`
	Failures      []RouteFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// HandleRoutes executes the routes command
func HandleRoutes(args []string) error {
	fs, flags := SetupRoutesFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("routes command requires exactly one file path or '-' for stdin")
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	specPath := fs.Arg(0)
	c, err := compileSpec(specPath, NewLogger(os.Stderr, flags.Verbose))
	if err != nil {
		return fmt.Errorf("loading %s: %w", FormatSpecPath(specPath), err)
	}

	report := buildRoutesReport(FormatSpecPath(specPath), c)
	if err := writeRoutesReport(os.Stdout, report, flags.Format); err != nil {
		return err
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d operation(s) failed to compile", len(report.Failures))
	}
	return nil
}

func buildRoutesReport(specPath string, c *compiled) RoutesReport {
	report := RoutesReport{
		Specification: specPath,
		Version:       c.spec.Version(),
		Routes:        []RouteInfo{},
		Failures:      c.failures,
	}
	router := c.binder.Router()
	for _, key := range router.Keys() {
		route, _ := router.Get(key)
		report.Routes = append(report.Routes, describeRoute(key, route))
	}
	return report
}

func describeRoute(key string, route *httpserver.Route) RouteInfo {
	info := RouteInfo{
		Key:          key,
		Method:       route.Method(),
		Pattern:      route.Pattern(),
		ContentTypes: route.ContentTypes(),
		Dispatcher:   httpserver.MiddlewareName(route.Dispatcher()),
	}
	for _, cond := range route.Conditions() {
		if n, ok := cond.(httpserver.Named); ok {
			info.Conditions = append(info.Conditions, n.Name())
		} else {
			info.Conditions = append(info.Conditions, fmt.Sprintf("%T", cond))
		}
	}
	for _, m := range route.Middlewares() {
		info.Middlewares = append(info.Middlewares, httpserver.MiddlewareName(m))
	}
	return info
}

func writeRoutesReport(w io.Writer, report RoutesReport, format string) error {
	if format != FormatText {
		return OutputStructured(w, report, format)
	}

	Writef(w, "Specification: %s\n", report.Specification)
	Writef(w, "OAS Version: %s\n", report.Version)
	Writef(w, "Routes: %d\n\n", len(report.Routes))
	for _, r := range report.Routes {
		Writef(w, "%s\n", r.Key)
		Writef(w, "  pattern:     %s\n", r.Pattern)
		Writef(w, "  conditions:  %s\n", strings.Join(r.Conditions, ", "))
		if len(r.ContentTypes) > 0 {
			Writef(w, "  body:        %s\n", strings.Join(r.ContentTypes, ", "))
		}
		Writef(w, "  chain:       %s -> %s\n", strings.Join(r.Middlewares, " -> "), r.Dispatcher)
	}
	if len(report.Failures) > 0 {
		Writef(w, "\nFailures:\n")
		for _, f := range report.Failures {
			Writef(w, "  - %s: %s\n", f.Key, f.Error)
		}
	}
	return nil
}
