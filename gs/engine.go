// Package gs is the public face of Grammar School. One Engine value
// wires a grammar definition and a method registry into the whole
// pipeline: tokenize → parse → extract → resolve → execute.
//
// The intended caller is a host embedding an LLM-generated DSL: build a
// registry of domain verbs, pick or write a grammar, construct an Engine
// once, then Execute every script the model produces. All failure modes
// come back as structured errors with positions, ready to be fed back to
// the model verbatim.
package gs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/interpreter"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// Engine executes DSL source against a fixed grammar and verb registry.
// It is immutable after construction and safe for concurrent Execute
// calls; whether the registered domain methods tolerate concurrency is
// the host's concern.
type Engine struct {
	def       *grammar.Definition
	terminals *grammar.TerminalSet
	reg       *registry.Registry
	maxCalls  int
	trace     *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithTrace logs one debug record per pipeline stage and per method
// invocation. The CLI wires this to --verbose.
func WithTrace(logger *slog.Logger) Option {
	return func(e *Engine) { e.trace = logger }
}

// WithMaxCalls caps the number of method invocations per Execute,
// nested calls included. Zero means no limit.
func WithMaxCalls(n int) Option {
	return func(e *Engine) { e.maxCalls = n }
}

// New builds an Engine from an already-constructed grammar definition.
// A nil def selects the default call-chain grammar; a nil reg means an
// empty registry, which still parses but resolves nothing. The registry
// is snapshotted: registrations made after New are not visible.
func New(def *grammar.Definition, reg *registry.Registry, opts ...Option) (*Engine, error) {
	if def == nil {
		def = grammar.Default()
	}
	if reg == nil {
		reg = registry.New()
	}
	terminals, err := def.TerminalSet()
	if err != nil {
		return nil, err
	}
	e := &Engine{def: def, terminals: terminals, reg: reg.Clone()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFromSource builds an Engine from grammar text in the meta syntax,
// validating it first.
func NewFromSource(grammarText string, reg *registry.Registry, opts ...Option) (*Engine, error) {
	def, err := grammar.Parse(grammarText)
	if err != nil {
		return nil, err
	}
	return New(def, reg, opts...)
}

// Result is what a successful Execute returns.
type Result struct {
	// Value is the last executed call's return value, nil when that call
	// returns nothing.
	Value any
	// Calls is the number of top-level calls that ran.
	Calls int
}

// Execute runs one DSL script end to end. Each stage's error is returned
// with its structured type intact: tokenize and parse problems match
// ErrParse, resolution problems ErrUnknownMethod / ErrTypeMismatch /
// ErrBadArguments / ErrReceiver, runtime failures ErrExecution. Nothing
// executes unless the whole script resolves.
func (e *Engine) Execute(ctx context.Context, source string) (*Result, error) {
	tokens, err := tokenizer.New(source, e.terminals).All()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if e.trace != nil {
		e.trace.Debug("tokenized", "tokens", len(tokens))
	}

	tree, err := parser.Parse(tokens, e.def)
	if err != nil {
		return nil, err
	}
	chains, err := parser.Extract(tree)
	if err != nil {
		return nil, err
	}
	if e.trace != nil {
		e.trace.Debug("extracted", "statements", len(chains))
	}

	resolved, err := resolver.Resolve(chains, e.reg)
	if err != nil {
		return nil, err
	}
	if e.trace != nil {
		e.trace.Debug("resolved", "calls", len(resolved))
	}

	ip := interpreter.New(e.reg)
	ip.MaxCalls = e.maxCalls
	ip.Trace = e.trace
	value, calls, err := ip.Run(ctx, resolved)
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, Calls: calls}, nil
}

// GrammarSource returns the engine's grammar in the meta syntax,
// directives included. Suitable for LLM system prompts.
func (e *Engine) GrammarSource() string { return e.def.Source() }

// ConstraintGrammar returns the grammar without directives, for
// constrained-decoding tooling that only understands plain CFGs.
func (e *Engine) ConstraintGrammar() string { return e.def.ConstraintSource() }

// Signatures renders the registered verbs, one per line, for prompts and
// docs.
func (e *Engine) Signatures() []string { return e.reg.Signatures() }
