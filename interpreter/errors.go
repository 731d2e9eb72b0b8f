package interpreter

import (
	"errors"
	"fmt"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Sentinel errors for the execution stage.
var (
	// ErrExecution is wrapped by every failure raised while running a
	// plan, domain method errors included.
	ErrExecution = errors.New("execution error")
	// ErrCallBudget is wrapped when a run exceeds its MaxCalls cap.
	ErrCallBudget = errors.New("call budget exceeded")
)

// ExecutionError pins a runtime failure to the call that raised it.
// CallIndex counts top-level calls in execution order starting at zero;
// failures inside nested calls and @reference dispatches carry the index
// of the top-level call they ran under.
type ExecutionError struct {
	CallIndex int
	Method    string
	Pos       grammarschool.Position
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("call %d (%s) failed at line %d, column %d: %v",
		e.CallIndex+1, e.Method, e.Pos.Line, e.Pos.Column, e.Err)
}

// Unwrap exposes both the package sentinel and the underlying cause, so
// errors.Is finds domain sentinels through the wrapper.
func (e *ExecutionError) Unwrap() []error { return []error{ErrExecution, e.Err} }
