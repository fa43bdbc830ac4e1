package httpserver

import (
	"fmt"

	"github.com/erraggy/oashttp/oaslog"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxBodySize is the request body limit used when none is configured (10 MiB).
const DefaultMaxBodySize int64 = 10 << 20

// Option is a functional option for configuring a Server.
type Option func(*config) error

type config struct {
	logger      oaslog.Logger
	registerer  prometheus.Registerer
	maxBodySize int64
}

func defaultConfig() *config {
	return &config{
		logger:      oaslog.NopLogger{},
		maxBodySize: DefaultMaxBodySize,
	}
}

// WithLogger sets the logger for aborted requests and recovered panics.
func WithLogger(l oaslog.Logger) Option {
	return func(c *config) error {
		c.logger = oaslog.OrNop(l)
		return nil
	}
}

// WithMetrics registers the server's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) error {
		if reg == nil {
			return fmt.Errorf("httpserver: metrics registerer cannot be nil")
		}
		c.registerer = reg
		return nil
	}
}

// WithMaxBodySize limits how many request body bytes are read.
// Larger bodies are rejected with 413.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("httpserver: max body size must be positive, got %d", n)
		}
		c.maxBodySize = n
		return nil
	}
}
