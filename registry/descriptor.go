package registry

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Kind classifies the literal value a parameter accepts.
type Kind int

const (
	// KindAny accepts every literal. Inferred for parameters declared as
	// grammarschool.Value or any.
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindIdent
	KindFunc
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindIdent:
		return "identifier"
	case KindFunc:
		return "function reference"
	case KindCall:
		return "call"
	default:
		return "any"
	}
}

// Accepts reports whether a literal of the given value kind can bind to a
// parameter of kind k. Identifiers double as strings. Nested-call values
// are not decided here: they bind to every kind except KindFunc and are
// checked against their runtime result instead.
func (k Kind) Accepts(v grammarschool.ValueKind) bool {
	switch k {
	case KindAny:
		return true
	case KindString:
		return v == grammarschool.ValueString || v == grammarschool.ValueIdent
	case KindNumber:
		return v == grammarschool.ValueNumber
	case KindBool:
		return v == grammarschool.ValueBool
	case KindIdent:
		return v == grammarschool.ValueIdent
	case KindFunc:
		return v == grammarschool.ValueFunc
	case KindCall:
		return v == grammarschool.ValueCall
	default:
		return false
	}
}

// Param describes one declared parameter of a registered method. A zero
// Kind means "infer from the Go type". A non-nil Default makes the
// parameter optional.
type Param struct {
	Name        string
	Kind        Kind
	Optional    bool
	Default     *grammarschool.Value
	Description string

	receiver bool
}

// Receiver marks the receiver slot: a leading parameter filled with the
// previous call's return value when the method is chained. Pass it first
// in the parameter list of Register; method expressions pair naturally
// with it, e.g. Register("add_clip", (*Track).AddClip, Receiver()).
func Receiver() Param { return Param{receiver: true} }

// DefaultOf builds a default value for an optional parameter from a Go
// literal. It panics on types grammarschool.ValueOf cannot represent;
// defaults are construction-time data, so that is a programming error.
func DefaultOf(v any) *grammarschool.Value {
	value, ok := grammarschool.ValueOf(v)
	if !ok {
		panic(fmt.Sprintf("registry: cannot use %T as a parameter default", v))
	}
	return &value
}

// Method is a fully explicit registration request, for hosts that build
// their verb tables programmatically.
type Method struct {
	Name        string
	Impl        any
	Params      []Param
	Description string
}

// MethodDescriptor is a compiled, immutable registry entry: the DSL verb,
// its parameter contract, and the bound Go function.
type MethodDescriptor struct {
	Name        string
	GoName      string
	Description string
	Receiver    bool
	Params      []Param

	fn           reflect.Value
	wantsCtx     bool
	argsMap      bool
	variadic     bool
	receiverType reflect.Type
	paramTypes   []reflect.Type
	returnsValue bool
	returnsError bool
	resultType   reflect.Type
}

// ArgsMap reports whether the method takes a single grammarschool.Args
// map instead of declared parameters. Such methods bind keyword arguments
// only.
func (d *MethodDescriptor) ArgsMap() bool { return d.argsMap }

// Variadic reports whether the last declared parameter absorbs any number
// of trailing arguments.
func (d *MethodDescriptor) Variadic() bool { return d.variadic }

// ParamType returns the declared Go type of value parameter i. Past the
// end of a variadic list it keeps returning the element type.
func (d *MethodDescriptor) ParamType(i int) reflect.Type {
	if d.argsMap {
		return argsType
	}
	if i >= len(d.paramTypes) {
		i = len(d.paramTypes) - 1
	}
	return d.paramTypes[i]
}

// Signature renders the method for documentation and LLM prompts, e.g.
// ".add_clip(start number, loop bool = false) -> *music.Clip". A leading
// dot marks a receiver-consuming method.
func (d *MethodDescriptor) Signature() string {
	var sb strings.Builder
	if d.Receiver {
		sb.WriteByte('.')
	}
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	if d.argsMap {
		sb.WriteString("...")
	}
	for i, p := range d.Params {
		if i > 0 || d.argsMap {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteByte(' ')
		if d.variadic && i == len(d.Params)-1 {
			sb.WriteString("...")
		}
		sb.WriteString(p.Kind.String())
		if p.Default != nil {
			sb.WriteString(" = ")
			sb.WriteString(p.Default.String())
		}
	}
	sb.WriteByte(')')
	if d.resultType != nil {
		sb.WriteString(" -> ")
		sb.WriteString(d.resultType.String())
	}
	return sb.String()
}

// Call invokes the bound Go function. receiver is the prior chain value
// for receiver-declaring methods, nil otherwise; in holds the materialized
// Go arguments in declared order, or a single grammarschool.Args map for
// Args-map methods.
func (d *MethodDescriptor) Call(ctx context.Context, receiver any, in []any) (any, error) {
	argv := make([]reflect.Value, 0, len(in)+2)
	if d.wantsCtx {
		argv = append(argv, reflect.ValueOf(ctx))
	}
	if d.Receiver {
		rv := reflect.ValueOf(receiver)
		if !rv.IsValid() {
			return nil, fmt.Errorf("%s needs a %s receiver, got nothing", d.Name, d.receiverType)
		}
		if !rv.Type().AssignableTo(d.receiverType) {
			return nil, fmt.Errorf("%s needs a %s receiver, got %s", d.Name, d.receiverType, rv.Type())
		}
		argv = append(argv, rv)
	}
	for i, arg := range in {
		t := d.ParamType(i)
		rv := reflect.ValueOf(arg)
		if !rv.IsValid() {
			rv = reflect.Zero(t)
		} else if !rv.Type().AssignableTo(t) {
			return nil, fmt.Errorf("%s parameter %d: cannot use %s as %s", d.Name, i+1, rv.Type(), t)
		}
		argv = append(argv, rv)
	}
	out := d.fn.Call(argv)

	var result any
	next := 0
	if d.returnsValue {
		result = out[0].Interface()
		next = 1
	}
	if d.returnsError && !out[next].IsNil() {
		return nil, out[next].Interface().(error)
	}
	return result, nil
}

var (
	ctxType     = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	anyType     = reflect.TypeOf((*any)(nil)).Elem()
	argsType    = reflect.TypeOf(grammarschool.Args(nil))
	valueType   = reflect.TypeOf(grammarschool.Value{})
	callType    = reflect.TypeOf((*grammarschool.Call)(nil))
	funcType    = reflect.TypeOf(grammarschool.Func(nil))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

// kindOf maps a Go parameter type to the literal kind it accepts.
// uuid.UUID is string-shaped: it binds string literals and is parsed at
// execution.
func kindOf(t reflect.Type) (Kind, bool) {
	switch t {
	case valueType, anyType:
		return KindAny, true
	case funcType:
		return KindFunc, true
	case callType:
		return KindCall, true
	case decimalType:
		return KindNumber, true
	case uuidType:
		return KindString, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, true
	}
	return 0, false
}

func compile(m Method) (*MethodDescriptor, error) {
	if m.Name == "" {
		return nil, &InvalidMethodError{Name: m.Name, Reason: "method name is empty"}
	}
	fn := reflect.ValueOf(m.Impl)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, &InvalidMethodError{Name: m.Name, Reason: "implementation must be a non-nil function"}
	}
	ft := fn.Type()
	desc := &MethodDescriptor{Name: m.Name, Description: m.Description, fn: fn}

	in := 0
	if in < ft.NumIn() && ft.In(in) == ctxType {
		desc.wantsCtx = true
		in++
	}
	params := m.Params
	if len(params) > 0 && params[0].receiver {
		if in >= ft.NumIn() {
			return nil, &InvalidMethodError{Name: m.Name, Reason: "declares a receiver but the function has no parameter for it"}
		}
		desc.Receiver = true
		desc.receiverType = ft.In(in)
		in++
		params = params[1:]
	}

	if rest := ft.NumIn() - in; rest == 1 && ft.In(in) == argsType && !ft.IsVariadic() {
		desc.argsMap = true
		desc.Params = params
	} else if err := compileParams(desc, ft, in, params); err != nil {
		return nil, err
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			desc.returnsError = true
		} else {
			desc.returnsValue = true
			desc.resultType = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, &InvalidMethodError{Name: m.Name, Reason: "the second return value must be error"}
		}
		desc.returnsValue = true
		desc.resultType = ft.Out(0)
		desc.returnsError = true
	default:
		return nil, &InvalidMethodError{Name: m.Name, Reason: "too many return values"}
	}
	return desc, nil
}

func compileParams(desc *MethodDescriptor, ft reflect.Type, in int, params []Param) error {
	rest := ft.NumIn() - in
	if len(params) > rest {
		return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("%d parameters described, function takes %d", len(params), rest)}
	}
	desc.variadic = ft.IsVariadic()
	for i := 0; i < rest; i++ {
		t := ft.In(in + i)
		last := desc.variadic && i == rest-1
		if last {
			t = t.Elem()
		}
		inferred, ok := kindOf(t)
		if !ok {
			return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("parameter %d has unsupported type %s", i+1, t)}
		}
		var p Param
		if i < len(params) {
			p = params[i]
		}
		if p.receiver {
			return &InvalidMethodError{Name: desc.Name, Reason: "the receiver slot must come first"}
		}
		if p.Name == "" {
			p.Name = "arg" + strconv.Itoa(i+1)
		}
		switch {
		case p.Kind == KindAny:
			p.Kind = inferred
		case inferred == KindAny:
			// Value and any parameters take whatever kind was declared.
		case p.Kind == KindIdent && inferred == KindString:
			// Identifiers arrive as strings.
		case p.Kind != inferred:
			return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("parameter %s declared %s but the function takes %s", p.Name, p.Kind, t)}
		}
		switch {
		case p.Default != nil:
			if last {
				return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("variadic parameter %s cannot have a default", p.Name)}
			}
			if !p.Kind.Accepts(p.Default.Kind) {
				return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("default for %s parameter %s is %s", p.Kind, p.Name, p.Default)}
			}
			p.Optional = true
		case p.Optional:
			return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("optional parameter %s needs a default", p.Name)}
		}
		desc.paramTypes = append(desc.paramTypes, t)
		desc.Params = append(desc.Params, p)
	}
	optional := false
	for i, p := range desc.Params {
		if desc.variadic && i == len(desc.Params)-1 {
			break
		}
		if p.Optional {
			optional = true
		} else if optional {
			return &InvalidMethodError{Name: desc.Name, Reason: fmt.Sprintf("required parameter %s follows an optional one", p.Name)}
		}
	}
	return nil
}
