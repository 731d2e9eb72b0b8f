package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry construction.
var (
	// ErrDuplicateMethod is wrapped when two registrations share a verb
	// name.
	ErrDuplicateMethod = errors.New("duplicate method")
	// ErrInvalidMethod is wrapped when an implementation's signature or
	// parameter description cannot be compiled.
	ErrInvalidMethod = errors.New("invalid method")
)

// DuplicateMethodError reports a verb name registered twice.
type DuplicateMethodError struct {
	Name   string
	GoName string
}

func (e *DuplicateMethodError) Error() string {
	if e.GoName != "" && e.GoName != e.Name {
		return fmt.Sprintf("duplicate method %s (Go method %s)", e.Name, e.GoName)
	}
	return fmt.Sprintf("duplicate method %s", e.Name)
}

func (e *DuplicateMethodError) Unwrap() error { return ErrDuplicateMethod }

// InvalidMethodError reports a registration the compiler rejected.
type InvalidMethodError struct {
	Name   string
	Reason string
}

func (e *InvalidMethodError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid method: %s", e.Reason)
	}
	return fmt.Sprintf("invalid method %s: %s", e.Name, e.Reason)
}

func (e *InvalidMethodError) Unwrap() error { return ErrInvalidMethod }
