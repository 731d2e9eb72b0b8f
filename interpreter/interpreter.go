// Package interpreter executes resolved call plans against a method
// registry.
//
// Execution is a single in-order pass: each top-level call runs once, a
// receiver-declaring method consumes the value returned by the call just
// before it, and the first failure stops the run. Everything the
// resolver could not prove statically is checked here and reported as an
// ExecutionError: exact integer narrowing, uuid syntax, receiver types,
// and the result kinds of nested calls.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
)

// Interpreter runs resolved calls against the registry they were
// resolved with. Construct it with New; the zero value has no registry
// to dispatch @references through.
type Interpreter struct {
	reg *registry.Registry

	// MaxCalls caps the number of method invocations in one Run, nested
	// calls and @reference dispatches included. Zero means no limit.
	MaxCalls int

	// Trace, when set, logs one debug record per invocation.
	Trace *slog.Logger
}

// New returns an Interpreter bound to reg.
func New(reg *registry.Registry) *Interpreter {
	return &Interpreter{reg: reg}
}

// Run executes the plan in order. It returns the value of the last call
// and the number of top-level calls that completed; on error the count
// names how many calls finished before the failure. Context cancellation
// is checked between top-level calls and surfaces as an ExecutionError
// wrapping ctx.Err().
func (ip *Interpreter) Run(ctx context.Context, calls []resolver.ResolvedCall) (any, int, error) {
	r := &runner{ip: ip}
	var prev any
	for i := range calls {
		rc := &calls[i]
		if err := ctx.Err(); err != nil {
			return nil, i, &ExecutionError{CallIndex: i, Method: rc.Name, Pos: rc.Pos, Err: err}
		}
		var receiver any
		if rc.Receiver {
			receiver = prev
		}
		val, err := r.invoke(ctx, rc, i, receiver)
		if err != nil {
			return nil, i, err
		}
		prev = val
	}
	return prev, len(calls), nil
}

// runner is the per-Run state: the invocation counter shared by nested
// calls and @reference handles.
type runner struct {
	ip    *Interpreter
	count int
}

func (r *runner) invoke(ctx context.Context, rc *resolver.ResolvedCall, index int, receiver any) (any, error) {
	r.count++
	if max := r.ip.MaxCalls; max > 0 && r.count > max {
		return nil, r.fail(rc, index, fmt.Errorf("%w (limit %d)", ErrCallBudget, max))
	}
	if r.ip.Trace != nil {
		r.ip.Trace.Debug("invoke", "method", rc.Name, "args", len(rc.Args), "receiver", rc.Receiver)
	}

	var result any
	var err error
	if rc.Method.ArgsMap() {
		var args grammarschool.Args
		args, err = r.argsMap(ctx, rc, index)
		if err != nil {
			return nil, err
		}
		result, err = rc.Method.Call(ctx, receiver, []any{args})
	} else {
		var in []any
		in, err = r.arguments(ctx, rc, index)
		if err != nil {
			return nil, err
		}
		result, err = rc.Method.Call(ctx, receiver, in)
	}
	if err != nil {
		return nil, r.fail(rc, index, err)
	}
	return result, nil
}

// fail wraps err for the given call unless it already is an
// ExecutionError, so a failure inside a nested call keeps naming the
// call that actually raised it.
func (r *runner) fail(rc *resolver.ResolvedCall, index int, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecutionError{CallIndex: index, Method: rc.Name, Pos: rc.Pos, Err: err}
}

// arguments materializes the bound arguments of a declared-parameter
// method into Go values, in declared order.
func (r *runner) arguments(ctx context.Context, rc *resolver.ResolvedCall, index int) ([]any, error) {
	in := make([]any, len(rc.Args))
	for i := range rc.Args {
		arg := &rc.Args[i]
		v, err := r.argValue(ctx, rc, arg, rc.Method.ParamType(i), index)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	return in, nil
}

// argsMap materializes keyword arguments for an Args-map method. Nested
// call results are wrapped back into values; @references stay in the map
// as function-reference values for the host to inspect.
func (r *runner) argsMap(ctx context.Context, rc *resolver.ResolvedCall, index int) (grammarschool.Args, error) {
	args := make(grammarschool.Args, len(rc.Args))
	for i := range rc.Args {
		arg := &rc.Args[i]
		v := arg.Value
		if arg.Nested != nil {
			res, err := r.invoke(ctx, arg.Nested, index, nil)
			if err != nil {
				return nil, err
			}
			wrapped, ok := grammarschool.ValueOf(res)
			if !ok {
				return nil, r.fail(rc, index,
					fmt.Errorf("parameter %s: cannot carry a %T in an argument map", arg.Param.Name, res))
			}
			wrapped.Pos = v.Pos
			v = wrapped
		}
		args[arg.Param.Name] = v
	}
	return args, nil
}

func (r *runner) argValue(ctx context.Context, rc *resolver.ResolvedCall, arg *resolver.Argument, t reflect.Type, index int) (any, error) {
	if arg.Nested != nil {
		res, err := r.invoke(ctx, arg.Nested, index, nil)
		if err != nil {
			return nil, err
		}
		out, err := adaptResult(res, t)
		if err != nil {
			return nil, r.fail(rc, index, fmt.Errorf("parameter %s: %w", arg.Param.Name, err))
		}
		return out, nil
	}
	v := arg.Value
	if v.Kind == grammarschool.ValueFunc && (t == funcType || t == anyType) {
		return r.handle(v.Str, v.Pos, index), nil
	}
	out, err := convertValue(v, t)
	if err != nil {
		return nil, r.fail(rc, index, fmt.Errorf("parameter %s: %w", arg.Param.Name, err))
	}
	return out, nil
}

// handle builds the callable passed to hosts for an @name argument.
// Invoking it resolves and runs the referenced method with the given
// values as positional arguments, under this run's call budget.
func (r *runner) handle(name string, pos grammarschool.Position, index int) grammarschool.Func {
	return func(ctx context.Context, args ...grammarschool.Value) (any, error) {
		call := &grammarschool.Call{Name: name, Pos: pos}
		for _, v := range args {
			call.Args = append(call.Args, grammarschool.Arg{Value: v})
		}
		rc, err := resolver.ResolveCall(call, r.ip.reg)
		if err != nil {
			return nil, err
		}
		return r.invoke(ctx, rc, index, nil)
	}
}
