package resolver

import (
	"errors"
	"fmt"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Sentinel errors for the resolution stage.
var (
	// ErrUnknownMethod is wrapped when a call names no registered method.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrTypeMismatch is wrapped when a literal cannot bind to its
	// parameter's kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrBadArguments is wrapped for argument-shape problems: wrong
	// counts, unknown or duplicated keywords.
	ErrBadArguments = errors.New("invalid arguments")
	// ErrReceiver is wrapped when a receiver-consuming method appears
	// where no receiver value can exist.
	ErrReceiver = errors.New("misplaced receiver")
)

// UnknownMethodError reports a verb the registry cannot resolve. Similar
// carries a best-effort suggestion and may be empty.
type UnknownMethodError struct {
	Name    string
	Pos     grammarschool.Position
	Similar string
}

func (e *UnknownMethodError) Error() string {
	msg := fmt.Sprintf("unknown method %s at line %d, column %d", e.Name, e.Pos.Line, e.Pos.Column)
	if e.Similar != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Similar)
	}
	return msg
}

func (e *UnknownMethodError) Unwrap() error { return ErrUnknownMethod }

// TypeMismatchError reports a literal whose kind the parameter rejects.
type TypeMismatchError struct {
	Method   string
	Param    string
	Expected string
	Got      string
	Pos      grammarschool.Position
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s wants %s for %s, got %s at line %d, column %d",
		e.Method, e.Expected, e.Param, e.Got, e.Pos.Line, e.Pos.Column)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// ArityError reports an argument count the method cannot absorb. Want is
// a human description of the accepted shape, e.g. "2 arguments" or
// "keyword arguments only".
type ArityError struct {
	Method string
	Want   string
	Got    int
	Pos    grammarschool.Position
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s takes %s, got %d at line %d, column %d",
		e.Method, e.Want, e.Got, e.Pos.Line, e.Pos.Column)
}

func (e *ArityError) Unwrap() error { return ErrBadArguments }

// ArgumentError reports a keyword argument the method cannot bind: an
// unknown name or a duplicate assignment.
type ArgumentError struct {
	Method string
	Name   string
	Reason string
	Pos    grammarschool.Position
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s at line %d, column %d", e.Method, e.Reason, e.Pos.Line, e.Pos.Column)
}

func (e *ArgumentError) Unwrap() error { return ErrBadArguments }

// ReceiverError reports a receiver-consuming method used at a chain start
// or as a nested argument, where there is no prior value to consume.
type ReceiverError struct {
	Method string
	Pos    grammarschool.Position
}

func (e *ReceiverError) Error() string {
	return fmt.Sprintf("%s needs a receiver from a preceding chained call at line %d, column %d",
		e.Method, e.Pos.Line, e.Pos.Column)
}

func (e *ReceiverError) Unwrap() error { return ErrReceiver }
