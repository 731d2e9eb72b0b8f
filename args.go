package grammarschool

import "github.com/shopspring/decimal"

// Args is the loose argument form for host methods that take a single
// name→Value map instead of declared parameters. Positional arguments are
// rejected for such methods at resolution time, so every key is a keyword
// argument name as written in the DSL source.
type Args map[string]Value

// Has reports whether the named argument was given.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the named argument as a string. Identifiers are returned
// as their text. The fallback is returned when the argument is missing or
// not string-like.
func (a Args) String(name, fallback string) string {
	v, ok := a[name]
	if !ok {
		return fallback
	}
	switch v.Kind {
	case ValueString, ValueIdent:
		return v.Str
	}
	return fallback
}

// Number returns the named argument as a decimal.
func (a Args) Number(name string, fallback decimal.Decimal) decimal.Decimal {
	v, ok := a[name]
	if !ok || v.Kind != ValueNumber {
		return fallback
	}
	return v.Num
}

// Float64 returns the named argument as a float64.
func (a Args) Float64(name string, fallback float64) float64 {
	v, ok := a[name]
	if !ok || v.Kind != ValueNumber {
		return fallback
	}
	return v.Float64()
}

// Int64 returns the named argument as an int64 when it is an exact integer.
func (a Args) Int64(name string, fallback int64) int64 {
	v, ok := a[name]
	if !ok {
		return fallback
	}
	if n, exact := v.Int64(); exact {
		return n
	}
	return fallback
}

// Bool returns the named argument as a bool.
func (a Args) Bool(name string, fallback bool) bool {
	v, ok := a[name]
	if !ok || v.Kind != ValueBool {
		return fallback
	}
	return v.Bool
}
