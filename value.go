package grammarschool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// ValueString is a quoted string literal.
	ValueString ValueKind = iota
	// ValueNumber is a numeric literal, kept as an exact decimal.
	ValueNumber
	// ValueBool is a boolean literal.
	ValueBool
	// ValueIdent is a bare identifier used as a value.
	ValueIdent
	// ValueFunc is a reference to a registered method (written as @name).
	ValueFunc
	// ValueCall is a nested call whose result becomes the argument.
	ValueCall
)

var valueKindNames = map[ValueKind]string{
	ValueString: "string",
	ValueNumber: "number",
	ValueBool:   "bool",
	ValueIdent:  "identifier",
	ValueFunc:   "function reference",
	ValueCall:   "call",
}

// String returns the kind name used in error messages.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a literal argument value extracted from DSL source. Exactly one
// of the payload fields is meaningful, selected by Kind: Str for ValueString,
// ValueIdent and ValueFunc (the referenced method name), Num for ValueNumber,
// Bool for ValueBool, and Call for ValueCall.
type Value struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
	Bool bool
	Call *Call
	Pos  Position
}

// StringValue returns a string Value.
func StringValue(s string, pos Position) Value {
	return Value{Kind: ValueString, Str: s, Pos: pos}
}

// NumberValue returns a number Value.
func NumberValue(num decimal.Decimal, pos Position) Value {
	return Value{Kind: ValueNumber, Num: num, Pos: pos}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool, pos Position) Value {
	return Value{Kind: ValueBool, Bool: b, Pos: pos}
}

// IdentValue returns an identifier Value.
func IdentValue(name string, pos Position) Value {
	return Value{Kind: ValueIdent, Str: name, Pos: pos}
}

// FuncValue returns a function-reference Value for @name.
func FuncValue(name string, pos Position) Value {
	return Value{Kind: ValueFunc, Str: name, Pos: pos}
}

// CallValue returns a nested-call Value.
func CallValue(call *Call, pos Position) Value {
	return Value{Kind: ValueCall, Call: call, Pos: pos}
}

// ValueOf converts a native Go value into a Value. It accepts strings,
// booleans, Go integer and float types, and decimal.Decimal. The second
// return is false for anything else (including nil).
func ValueOf(v any) (Value, bool) {
	switch x := v.(type) {
	case Value:
		return x, true
	case string:
		return Value{Kind: ValueString, Str: x}, true
	case bool:
		return Value{Kind: ValueBool, Bool: x}, true
	case int:
		return Value{Kind: ValueNumber, Num: decimal.NewFromInt(int64(x))}, true
	case int32:
		return Value{Kind: ValueNumber, Num: decimal.NewFromInt(int64(x))}, true
	case int64:
		return Value{Kind: ValueNumber, Num: decimal.NewFromInt(x)}, true
	case float32:
		return Value{Kind: ValueNumber, Num: decimal.NewFromFloat(float64(x))}, true
	case float64:
		return Value{Kind: ValueNumber, Num: decimal.NewFromFloat(x)}, true
	case decimal.Decimal:
		return Value{Kind: ValueNumber, Num: x}, true
	}
	return Value{}, false
}

// Int64 returns the value as an int64 when it is a number with no
// fractional part that fits in 64 bits.
func (v Value) Int64() (int64, bool) {
	if v.Kind != ValueNumber || !v.Num.IsInteger() {
		return 0, false
	}
	bi := v.Num.BigInt()
	if !bi.IsInt64() {
		return 0, false
	}
	return bi.Int64(), true
}

// Float64 returns the numeric value as a float64. The result is 0 for
// non-number values.
func (v Value) Float64() float64 {
	if v.Kind != ValueNumber {
		return 0
	}
	f, _ := v.Num.Float64()
	return f
}

// Native returns the value as a plain Go value: string for strings and
// identifiers, decimal.Decimal for numbers, bool for booleans, the method
// name for function references, and *Call for nested calls.
func (v Value) Native() any {
	switch v.Kind {
	case ValueString, ValueIdent, ValueFunc:
		return v.Str
	case ValueNumber:
		return v.Num
	case ValueBool:
		return v.Bool
	case ValueCall:
		return v.Call
	}
	return nil
}

// String renders the value the way it would appear in DSL source.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return strconv.Quote(v.Str)
	case ValueNumber:
		return v.Num.String()
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueIdent:
		return v.Str
	case ValueFunc:
		return "@" + v.Str
	case ValueCall:
		if v.Call != nil {
			return v.Call.String()
		}
	}
	return ""
}

// Func is a callable handle passed to host methods for @name arguments.
// Invoking it dispatches the referenced method through the engine that
// produced it.
type Func func(ctx context.Context, args ...Value) (any, error)
