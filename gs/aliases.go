package gs

import (
	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/interpreter"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
)

// Aliases for the root types, so everyday hosts import only gs.
type (
	Value     = grammarschool.Value
	ValueKind = grammarschool.ValueKind
	Position  = grammarschool.Position
	Args      = grammarschool.Args
	Func      = grammarschool.Func
	Arg       = grammarschool.Arg
	Call      = grammarschool.Call
	CallChain = grammarschool.CallChain
)

const (
	ValueString = grammarschool.ValueString
	ValueNumber = grammarschool.ValueNumber
	ValueBool   = grammarschool.ValueBool
	ValueIdent  = grammarschool.ValueIdent
	ValueFunc   = grammarschool.ValueFunc
	ValueCall   = grammarschool.ValueCall
)

// Sentinels from every stage, re-exported so hosts can errors.Is against
// a single package.
var (
	ErrGrammar         = grammar.ErrInvalidGrammar
	ErrParse           = parser.ErrParse
	ErrUnknownMethod   = resolver.ErrUnknownMethod
	ErrTypeMismatch    = resolver.ErrTypeMismatch
	ErrBadArguments    = resolver.ErrBadArguments
	ErrReceiver        = resolver.ErrReceiver
	ErrExecution       = interpreter.ErrExecution
	ErrCallBudget      = interpreter.ErrCallBudget
	ErrDuplicateMethod = registry.ErrDuplicateMethod
)

// Structured errors with positions and payloads, re-exported for
// errors.As without reaching into the stage packages.
type (
	ParseError         = parser.ParseError
	ExtractError       = parser.ExtractError
	UnknownMethodError = resolver.UnknownMethodError
	TypeMismatchError  = resolver.TypeMismatchError
	ArityError         = resolver.ArityError
	ArgumentError      = resolver.ArgumentError
	ReceiverError      = resolver.ReceiverError
	ExecutionError     = interpreter.ExecutionError
)
