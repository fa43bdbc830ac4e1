package oas

import (
	"fmt"

	"github.com/erraggy/oashttp/oaslog"
)

// LoadOption is a functional option for configuring Load.
type LoadOption func(*loadConfig) error

type loadConfig struct {
	// Spec source (exactly one must be set)
	filePath string
	bytes    []byte

	validateStructure bool
	logger            oaslog.Logger
}

func defaultLoadConfig() *loadConfig {
	return &loadConfig{
		validateStructure: true,
		logger:            oaslog.NopLogger{},
	}
}

// WithFilePath loads the specification from a local file.
func WithFilePath(path string) LoadOption {
	return func(c *loadConfig) error {
		if path == "" {
			return fmt.Errorf("oas: file path cannot be empty")
		}
		c.filePath = path
		return nil
	}
}

// WithBytes loads the specification from YAML or JSON bytes.
func WithBytes(data []byte) LoadOption {
	return func(c *loadConfig) error {
		if len(data) == 0 {
			return fmt.Errorf("oas: specification bytes cannot be empty")
		}
		c.bytes = data
		return nil
	}
}

// WithValidateStructure controls whether structural problems reported by the parser
// fail the load (default: true).
func WithValidateStructure(enabled bool) LoadOption {
	return func(c *loadConfig) error {
		c.validateStructure = enabled
		return nil
	}
}

// WithLogger sets the logger used while parsing.
func WithLogger(l oaslog.Logger) LoadOption {
	return func(c *loadConfig) error {
		c.logger = oaslog.OrNop(l)
		return nil
	}
}

// Option is a functional option for configuring a Processor.
type Option func(*config) error

type config struct {
	logger oaslog.Logger
}

func defaultConfig() *config {
	return &config{logger: oaslog.NopLogger{}}
}

// WithProcessorLogger sets the logger for validation warnings and conformance details.
func WithProcessorLogger(l oaslog.Logger) Option {
	return func(c *config) error {
		c.logger = oaslog.OrNop(l)
		return nil
	}
}
