package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oaslog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAddr       = ":8080"
	metricsPath       = "/metrics"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ServeFlags contains flags for the serve command
type ServeFlags struct {
	Addr        string
	Metrics     bool
	MaxBodySize int64
	Verbose     bool
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
// Returns the FlagSet and a ServeFlags struct with bound flag variables.
func SetupServeFlags() (*flag.FlagSet, *ServeFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags := &ServeFlags{}

	fs.StringVar(&flags.Addr, "addr", defaultAddr, "listen address")
	fs.BoolVar(&flags.Metrics, "metrics", false, "expose Prometheus metrics on "+metricsPath)
	fs.Int64Var(&flags.MaxBodySize, "max-body-size", httpserver.DefaultMaxBodySize, "request body limit in bytes")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oashttp serve [flags] <file|->\n\n")
		Writef(fs.Output(), "Serve a mock of an OpenAPI 3.x document. Requests and responses are validated\n")
		Writef(fs.Output(), "against the document; each operation answers with its first 2XX example.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oashttp serve openapi.yaml\n")
		Writef(fs.Output(), "  oashttp serve --addr 127.0.0.1:9000 --metrics -v openapi.yaml\n")
	}

	return fs, flags
}

// HandleServe executes the serve command
func HandleServe(args []string) error {
	fs, flags := SetupServeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("serve command requires exactly one file path or '-' for stdin")
	}

	logger := NewLogger(os.Stderr, flags.Verbose)
	specPath := fs.Arg(0)
	c, err := compileSpec(specPath, logger)
	if err != nil {
		return fmt.Errorf("loading %s: %w", FormatSpecPath(specPath), err)
	}
	for _, f := range c.failures {
		logger.Warn("operation not served", "key", f.Key, "code", f.Code, "error", f.Error)
	}

	handler, err := newServeHandler(c.binder.Router(), flags, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              flags.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	logger.Info("serving", "addr", flags.Addr, "routes", c.binder.Router().Len(), "spec", FormatSpecPath(specPath))
	return run(ctx, srv, logger)
}

// newServeHandler builds the request handler: the route server, plus the metrics endpoint
// when enabled.
func newServeHandler(router *httpserver.Router, flags *ServeFlags, logger oaslog.Logger) (http.Handler, error) {
	opts := []httpserver.Option{
		httpserver.WithLogger(logger),
		httpserver.WithMaxBodySize(flags.MaxBodySize),
	}

	var reg *prometheus.Registry
	if flags.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, httpserver.WithMetrics(reg))
	}

	server, err := httpserver.NewServer(router, opts...)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return server, nil
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", server)
	return mux, nil
}

// run serves until ctx is done or the listener fails, then shuts srv down.
func run(ctx context.Context, srv *http.Server, logger oaslog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
