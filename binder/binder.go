package binder

import (
	"fmt"

	"github.com/erraggy/oashttp/httpserver"
	"github.com/erraggy/oashttp/oas"
	"github.com/erraggy/oashttp/oaslog"
	"github.com/erraggy/oastools/parser"
)

// Processor is the part of an OAS processor the binder relies on. *oas.Processor
// implements it.
type Processor interface {
	Declarations() []oas.Declaration
	LookupOperation(path, method string) (oas.Declaration, error)
	ValidateOperation(decl oas.Declaration) error
	DenormalizeOperation(decl oas.Declaration) (*oas.Operation, error)
	ConformParameter(param *oas.Parameter, req *httpserver.Request) error
	ConformRequestBody(op *oas.Operation, req *httpserver.Request) error
	ConformResponse(resp *parser.Response, view *httpserver.View) error
}

var _ Processor = (*oas.Processor)(nil)

// Binder compiles declared operations into routes of a httpserver.Router.
type Binder struct {
	router *httpserver.Router
	proc   Processor
	logger oaslog.Logger
}

// Option is a functional option for configuring a Binder.
type Option func(*config) error

type config struct {
	logger oaslog.Logger
}

// WithLogger sets the logger for registrations and bootstrap decisions.
func WithLogger(l oaslog.Logger) Option {
	return func(c *config) error {
		c.logger = oaslog.OrNop(l)
		return nil
	}
}

// New creates a Binder that inserts routes into router and resolves operations with proc.
func New(router *httpserver.Router, proc Processor, opts ...Option) (*Binder, error) {
	if router == nil {
		return nil, fmt.Errorf("binder: router cannot be nil")
	}
	if proc == nil {
		return nil, fmt.Errorf("binder: processor cannot be nil")
	}
	cfg := &config{logger: oaslog.NopLogger{}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Binder{router: router, proc: proc, logger: cfg.logger}, nil
}

// Router returns the router routes are inserted into.
func (b *Binder) Router() *httpserver.Router { return b.router }
