package interpreter

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

var (
	anyType     = reflect.TypeOf((*any)(nil)).Elem()
	valueType   = reflect.TypeOf(grammarschool.Value{})
	callType    = reflect.TypeOf((*grammarschool.Call)(nil))
	funcType    = reflect.TypeOf(grammarschool.Func(nil))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

// convertValue materializes a literal into the declared Go parameter
// type. Number narrowing is exact: an integer parameter rejects values
// with a fractional part or out of range instead of truncating them.
func convertValue(v grammarschool.Value, t reflect.Type) (any, error) {
	switch t {
	case valueType:
		return v, nil
	case anyType:
		return v.Native(), nil
	case callType:
		if v.Kind != grammarschool.ValueCall {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		return v.Call, nil
	case decimalType:
		if v.Kind != grammarschool.ValueNumber {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		return v.Num, nil
	case uuidType:
		if v.Kind != grammarschool.ValueString && v.Kind != grammarschool.ValueIdent {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		id, err := uuid.Parse(v.Str)
		if err != nil {
			return nil, err
		}
		return id, nil
	}

	switch t.Kind() {
	case reflect.String:
		if v.Kind != grammarschool.ValueString && v.Kind != grammarschool.ValueIdent {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		return reflect.ValueOf(v.Str).Convert(t).Interface(), nil
	case reflect.Bool:
		if v.Kind != grammarschool.ValueBool {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		return reflect.ValueOf(v.Bool).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		if v.Kind != grammarschool.ValueNumber {
			return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
		}
		f, _ := v.Num.Float64()
		return reflect.ValueOf(f).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := wholeNumber(v)
		if err != nil {
			return nil, err
		}
		if reflect.Zero(t).OverflowInt(n) {
			return nil, fmt.Errorf("%s does not fit in %s", v.Num, t)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := wholeNumber(v)
		if err != nil {
			return nil, err
		}
		if n < 0 || reflect.Zero(t).OverflowUint(uint64(n)) {
			return nil, fmt.Errorf("%s does not fit in %s", v.Num, t)
		}
		return reflect.ValueOf(uint64(n)).Convert(t).Interface(), nil
	}
	return nil, fmt.Errorf("cannot use %s as %s", v.Kind, t)
}

func wholeNumber(v grammarschool.Value) (int64, error) {
	if v.Kind != grammarschool.ValueNumber {
		return 0, fmt.Errorf("cannot use %s as an integer", v.Kind)
	}
	n, ok := v.Int64()
	if !ok {
		return 0, fmt.Errorf("%s is not a whole number", v.Num)
	}
	return n, nil
}

// adaptResult fits a nested call's return value to the parameter that
// consumes it: directly when assignable, otherwise by wrapping it back
// into a value and converting, so a nested method returning float64 can
// still feed an int parameter when the number is exact.
func adaptResult(res any, t reflect.Type) (any, error) {
	if t == anyType {
		return res, nil
	}
	if res != nil && reflect.TypeOf(res).AssignableTo(t) {
		return res, nil
	}
	v, ok := grammarschool.ValueOf(res)
	if !ok {
		if res == nil {
			return nil, fmt.Errorf("the nested call returned nothing")
		}
		return nil, fmt.Errorf("cannot use %T as %s", res, t)
	}
	return convertValue(v, t)
}
