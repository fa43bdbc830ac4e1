// Package oaslog provides the structured logger shared by the oashttp packages.
//
// Logger is the same interface the OpenAPI parser logs through, so a single logger
// configured once receives both document loading and request handling output.
// Attributes are alternating key-value pairs, following the log/slog convention:
//
//	logger.Debug("route registered", "key", "get /pets/{id}", "middlewares", 4)
package oaslog

import (
	"log/slog"

	"github.com/erraggy/oastools/parser"
)

// Logger is the interface oashttp uses for structured logging.
type Logger = parser.Logger

// NopLogger discards all output. It is the default when no logger is configured.
type NopLogger = parser.NopLogger

// NewSlogAdapter returns a Logger backed by logger, or by slog.Default() when nil.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return parser.NewSlogAdapter(logger)
}

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
