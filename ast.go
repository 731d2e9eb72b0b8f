package grammarschool

import "strings"

// Arg is a single argument of a call. Name is empty for positional
// arguments.
type Arg struct {
	Name  string
	Value Value
}

// String renders the argument as DSL source.
func (a Arg) String() string {
	if a.Name == "" {
		return a.Value.String()
	}
	return a.Name + "=" + a.Value.String()
}

// Call is one method invocation extracted from DSL source.
type Call struct {
	Name string
	Args []Arg
	Pos  Position
}

// Kwarg returns the value bound to the named keyword argument.
func (c *Call) Kwarg(name string) (Value, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// Positional returns the positional (unnamed) arguments in order.
func (c *Call) Positional() []Value {
	var vals []Value
	for _, a := range c.Args {
		if a.Name == "" {
			vals = append(vals, a.Value)
		}
	}
	return vals
}

// String renders the call as DSL source.
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// CallChain is a dot-connected sequence of calls from one statement, such
// as track(name="Drums").add_clip(start=0).
type CallChain struct {
	Calls []*Call
}

// String renders the chain as DSL source.
func (cc *CallChain) String() string {
	parts := make([]string, len(cc.Calls))
	for i, c := range cc.Calls {
		parts[i] = c.String()
	}
	return strings.Join(parts, ".")
}
