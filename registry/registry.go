// Package registry maps DSL verb names to Go callables with typed,
// reflection-checked parameter lists.
//
// Hosts either register functions explicitly, describing each parameter,
// or Scan a domain object for methods following the Args-map convention.
// Parameter kinds are inferred from Go types unless set explicitly; the
// resolver checks literals against them before anything executes. A
// Registry is read-only after construction and safe for concurrent use.
package registry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

type Registry struct {
	methods map[string]*MethodDescriptor
}

func New() *Registry {
	return &Registry{methods: map[string]*MethodDescriptor{}}
}

// Register binds a DSL verb to impl, a function or bound method value.
// A leading context.Context parameter is passed through from Execute. The
// params list describes the remaining Go parameters in order and may be
// shorter; missing names are synthesized as argN and kinds are inferred
// from the Go types. Receiver() as the first entry marks the previous
// chain value's slot.
func (r *Registry) Register(name string, impl any, params ...Param) error {
	return r.RegisterMethod(Method{Name: name, Impl: impl, Params: params})
}

// MustRegister is Register, panicking on error. For setup code where a
// failed registration is a programming error.
func (r *Registry) MustRegister(name string, impl any, params ...Param) {
	if err := r.Register(name, impl, params...); err != nil {
		panic(err)
	}
}

// RegisterMethod registers a fully explicit descriptor request.
func (r *Registry) RegisterMethod(m Method) error {
	desc, err := compile(m)
	if err != nil {
		return err
	}
	return r.add(desc)
}

// Scan registers every exported method of domain whose signature follows
// the Args-map convention: func(grammarschool.Args) error, optionally
// with a leading context.Context and optionally returning a value before
// the error. Other methods are skipped, so domain objects can mix DSL
// verbs with ordinary methods. Verbs keep their Go names; Resolve maps
// snake_case DSL names onto them.
func (r *Registry) Scan(domain any) error {
	v := reflect.ValueOf(domain)
	if !v.IsValid() {
		return &InvalidMethodError{Reason: "cannot scan a nil domain object"}
	}
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		fn := v.Method(i)
		if !argsShaped(fn.Type()) {
			continue
		}
		desc, err := compile(Method{Name: m.Name, Impl: fn.Interface()})
		if err != nil {
			return fmt.Errorf("scanning %s: %w", t, err)
		}
		desc.GoName = m.Name
		if err := r.add(desc); err != nil {
			return err
		}
	}
	return nil
}

func argsShaped(ft reflect.Type) bool {
	in := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		in = 1
	}
	if ft.NumIn()-in != 1 || ft.In(in) != argsType || ft.IsVariadic() {
		return false
	}
	switch ft.NumOut() {
	case 0, 1:
		return true
	case 2:
		return ft.Out(1) == errorType
	default:
		return false
	}
}

func (r *Registry) add(desc *MethodDescriptor) error {
	if _, exists := r.methods[desc.Name]; exists {
		return &DuplicateMethodError{Name: desc.Name, GoName: desc.GoName}
	}
	r.methods[desc.Name] = desc
	return nil
}

// Clone returns a shallow copy. Descriptors are immutable, so the copy
// only detaches the name table: registrations after Clone do not show up
// in the clone.
func (r *Registry) Clone() *Registry {
	return &Registry{methods: maps.Clone(r.methods)}
}

// Resolve finds a method by its registered name, or by the CamelCase
// equivalent of a snake_case name, so that create_task finds CreateTask.
func (r *Registry) Resolve(name string) (*MethodDescriptor, bool) {
	if d, ok := r.methods[name]; ok {
		return d, true
	}
	if camel := CamelName(name); camel != name {
		if d, ok := r.methods[camel]; ok {
			return d, true
		}
	}
	return nil, false
}

// Methods returns every descriptor, sorted by verb name.
func (r *Registry) Methods() []*MethodDescriptor {
	out := make([]*MethodDescriptor, 0, len(r.methods))
	for _, d := range r.methods {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *MethodDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the registered verb names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.methods))
	for name := range r.methods {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Signatures renders one line per method for documentation and LLM
// prompts.
func (r *Registry) Signatures() []string {
	methods := r.Methods()
	out := make([]string, len(methods))
	for i, d := range methods {
		out[i] = d.Signature()
	}
	return out
}
