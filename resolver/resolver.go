// Package resolver binds extracted call chains against a method registry,
// producing a typed execution plan.
//
// Resolution is where everything static fails fast: unknown verbs,
// keyword and positional binding, missing required parameters, literal
// kind mismatches and dangling @ references are all reported before any
// method body runs, so a caller — typically an LLM correction loop — gets
// the whole class of errors without side effects.
package resolver

import (
	"fmt"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
)

// ResolvedCall pairs a method descriptor with its bound arguments.
type ResolvedCall struct {
	// Name is the verb as written in source, which may differ from the
	// descriptor's registered name through snake_case resolution.
	Name     string
	Method   *registry.MethodDescriptor
	Args     []Argument
	Receiver bool // consumes the previous call's return value
	Pos      grammarschool.Position
}

// Argument is one bound argument, in declared parameter order for plain
// methods and keyword order for Args-map methods. Defaults are already
// filled in.
type Argument struct {
	Param  registry.Param
	Value  grammarschool.Value
	Nested *ResolvedCall // set when Value is a nested call to evaluate
}

// Resolve binds every statement's chain, left to right, against the
// registry. The first problem aborts resolution: nothing executes when
// any part of the program is unresolvable.
func Resolve(chains []*grammarschool.CallChain, reg *registry.Registry) ([]ResolvedCall, error) {
	var out []ResolvedCall
	for _, chain := range chains {
		for i, call := range chain.Calls {
			rc, err := resolveCall(call, reg, i > 0)
			if err != nil {
				return nil, err
			}
			out = append(out, *rc)
		}
	}
	return out, nil
}

// ResolveCall binds a single call with no preceding receiver. Function
// handles use it to dispatch @references back through the registry.
func ResolveCall(call *grammarschool.Call, reg *registry.Registry) (*ResolvedCall, error) {
	return resolveCall(call, reg, false)
}

func resolveCall(call *grammarschool.Call, reg *registry.Registry, chained bool) (*ResolvedCall, error) {
	desc, ok := reg.Resolve(call.Name)
	if !ok {
		return nil, &UnknownMethodError{Name: call.Name, Pos: call.Pos, Similar: findSimilar(call.Name, reg.Names())}
	}
	if desc.Receiver && !chained {
		return nil, &ReceiverError{Method: call.Name, Pos: call.Pos}
	}
	rc := &ResolvedCall{
		Name:     call.Name,
		Method:   desc,
		Receiver: desc.Receiver,
		Pos:      call.Pos,
	}
	var err error
	if desc.ArgsMap() {
		rc.Args, err = bindKeywords(call, reg)
	} else {
		rc.Args, err = bindParams(call, desc, reg)
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// bindKeywords handles Args-map methods, which take keyword arguments
// only and impose no kind constraints of their own.
func bindKeywords(call *grammarschool.Call, reg *registry.Registry) ([]Argument, error) {
	positionals := 0
	for _, a := range call.Args {
		if a.Name == "" {
			positionals++
		}
	}
	if positionals > 0 {
		return nil, &ArityError{Method: call.Name, Want: "keyword arguments only", Got: positionals, Pos: call.Pos}
	}
	seen := make(map[string]bool, len(call.Args))
	args := make([]Argument, 0, len(call.Args))
	for _, a := range call.Args {
		if seen[a.Name] {
			return nil, &ArgumentError{Method: call.Name, Name: a.Name,
				Reason: fmt.Sprintf("parameter %s assigned twice", a.Name), Pos: a.Value.Pos}
		}
		seen[a.Name] = true
		arg := Argument{Param: registry.Param{Name: a.Name}, Value: a.Value}
		if err := checkValue(&arg, call.Name, reg); err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// bindParams matches a call's arguments against a declared parameter
// list: keywords claim their slots by name, positionals fill the rest
// left to right, defaults cover what remains.
func bindParams(call *grammarschool.Call, desc *registry.MethodDescriptor, reg *registry.Registry) ([]Argument, error) {
	params := desc.Params
	fixed := len(params)
	if desc.Variadic() {
		fixed--
	}

	slots := make([]*grammarschool.Value, fixed)
	for _, a := range call.Args {
		if a.Name == "" {
			continue
		}
		idx := -1
		for i := 0; i < fixed; i++ {
			if params[i].Name == a.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			reason := fmt.Sprintf("unknown parameter %s", a.Name)
			if desc.Variadic() && params[len(params)-1].Name == a.Name {
				reason = fmt.Sprintf("variadic parameter %s cannot be passed by name", a.Name)
			}
			return nil, &ArgumentError{Method: call.Name, Name: a.Name, Reason: reason, Pos: a.Value.Pos}
		}
		if slots[idx] != nil {
			return nil, &ArgumentError{Method: call.Name, Name: a.Name,
				Reason: fmt.Sprintf("parameter %s assigned twice", a.Name), Pos: a.Value.Pos}
		}
		v := a.Value
		slots[idx] = &v
	}

	var tail []grammarschool.Value
	next := 0
	for _, a := range call.Args {
		if a.Name != "" {
			continue
		}
		for next < fixed && slots[next] != nil {
			next++
		}
		if next < fixed {
			v := a.Value
			slots[next] = &v
			next++
			continue
		}
		if desc.Variadic() {
			tail = append(tail, a.Value)
			continue
		}
		return nil, &ArityError{Method: call.Name, Want: describeArity(desc), Got: len(call.Args), Pos: call.Pos}
	}

	args := make([]Argument, 0, len(params)+len(tail))
	for i := 0; i < fixed; i++ {
		p := params[i]
		v := slots[i]
		if v == nil {
			if !p.Optional {
				return nil, &ArityError{Method: call.Name, Want: describeArity(desc), Got: len(call.Args), Pos: call.Pos}
			}
			v = p.Default
		}
		arg := Argument{Param: p, Value: *v}
		if err := checkValue(&arg, call.Name, reg); err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if desc.Variadic() {
		p := params[len(params)-1]
		for _, v := range tail {
			arg := Argument{Param: p, Value: v}
			if err := checkValue(&arg, call.Name, reg); err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	return args, nil
}

// checkValue verifies one bound value against its parameter kind,
// validates @references against the registry, and resolves nested calls
// recursively.
func checkValue(arg *Argument, method string, reg *registry.Registry) error {
	v := arg.Value
	switch v.Kind {
	case grammarschool.ValueCall:
		switch arg.Param.Kind {
		case registry.KindFunc:
			return &TypeMismatchError{Method: method, Param: arg.Param.Name,
				Expected: arg.Param.Kind.String(), Got: v.Kind.String(), Pos: v.Pos}
		case registry.KindCall:
			// The unevaluated call AST is the argument.
			return nil
		}
		nested, err := resolveCall(v.Call, reg, false)
		if err != nil {
			return err
		}
		arg.Nested = nested
		return nil
	case grammarschool.ValueFunc:
		if _, ok := reg.Resolve(v.Str); !ok {
			return &UnknownMethodError{Name: v.Str, Pos: v.Pos, Similar: findSimilar(v.Str, reg.Names())}
		}
	}
	if !arg.Param.Kind.Accepts(v.Kind) {
		return &TypeMismatchError{Method: method, Param: arg.Param.Name,
			Expected: arg.Param.Kind.String(), Got: v.Kind.String(), Pos: v.Pos}
	}
	return nil
}

func describeArity(desc *registry.MethodDescriptor) string {
	required := 0
	for _, p := range desc.Params {
		if !p.Optional {
			required++
		}
	}
	if desc.Variadic() {
		required--
		if required == 0 {
			return "any number of arguments"
		}
		return fmt.Sprintf("at least %s", countArgs(required))
	}
	if required == len(desc.Params) {
		return countArgs(required)
	}
	return fmt.Sprintf("%d to %d arguments", required, len(desc.Params))
}

func countArgs(n int) string {
	switch n {
	case 0:
		return "no arguments"
	case 1:
		return "1 argument"
	default:
		return fmt.Sprintf("%d arguments", n)
	}
}
