package scriptmd

import (
	"errors"
	"strings"

	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/interpreter"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
)

// errorKinds maps the kind names usable in an error fence to probes over
// the engine's error taxonomy. Kinds that share a sentinel are told apart
// by their concrete type.
var errorKinds = map[string]func(error) bool{
	"GrammarError":         is(grammar.ErrInvalidGrammar),
	"ParseError":           is(parser.ErrParse),
	"ExtractError":         is(parser.ErrExtract),
	"UnknownMethodError":   is(resolver.ErrUnknownMethod),
	"TypeMismatchError":    is(resolver.ErrTypeMismatch),
	"ArityError":           as[*resolver.ArityError](),
	"ArgumentError":        as[*resolver.ArgumentError](),
	"ReceiverError":        is(resolver.ErrReceiver),
	"ExecutionError":       is(interpreter.ErrExecution),
	"DuplicateMethodError": is(registry.ErrDuplicateMethod),
}

func is(sentinel error) func(error) bool {
	return func(err error) bool { return errors.Is(err, sentinel) }
}

func as[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// MatchError reports whether err satisfies a WantErr expectation. The
// expectation's first word names the error kind; anything after it must
// appear in the error message. An unknown kind name never matches.
func MatchError(want string, err error) bool {
	if err == nil {
		return false
	}
	kind, substr, _ := strings.Cut(strings.TrimSpace(want), " ")
	probe, ok := errorKinds[kind]
	if !ok || !probe(err) {
		return false
	}
	return strings.Contains(err.Error(), strings.TrimSpace(substr))
}
