package model

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/collision"
)

// Func evaluates a model at x with the parameters in declaration order.
type Func func(x float64, params []float64) float64

// Signature exposes the argument introspection a fitter needs.
type Signature interface {
	// Name returns a human-readable model name.
	Name() string
	// ArgNames returns all declared argument names; the first is the independent variable.
	ArgNames() []string
	// Arity returns the number of parameters, excluding the independent variable.
	Arity() int
}

// Model is a named model function together with its declared argument names.
type Model struct {
	name string
	args []string
	fn   Func
}

var _ Signature = (*Model)(nil)

// New creates a model from fn and its argument names.
//
// argNames[0] names the independent variable; the remaining names are the parameters
// in the order fn expects them. A model without parameters is valid here, but cannot
// be fitted.
//
// Returns ErrInvalidModel if fn is nil, no independent variable is named, or a name is
// empty or repeated.
func New(name string, fn Func, argNames ...string) (*Model, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: model %q has no function", errs.ErrInvalidModel, name)
	}
	if len(argNames) == 0 {
		return nil, fmt.Errorf("%w: model %q declares no independent variable", errs.ErrInvalidModel, name)
	}

	tracker := collision.NewTracker()
	for _, arg := range argNames {
		if err := tracker.Track(arg); err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
	}

	return &Model{
		name: name,
		args: append([]string(nil), tracker.Names()...),
		fn:   fn,
	}, nil
}

// MustNew is like New but panics on error. It is meant for package-level model
// declarations with literal argument names.
func MustNew(name string, fn Func, argNames ...string) *Model {
	m, err := New(name, fn, argNames...)
	if err != nil {
		panic(err)
	}

	return m
}

var float64Type = reflect.TypeOf(float64(0))

// FromFunc wraps a plain Go function of the form func(x, p1, ..., pN float64) float64.
//
// The arity is read through reflection. When argNames is empty the arguments are
// named x, p1, ..., pN; otherwise exactly one name per function argument is required.
//
// Returns ErrInvalidModel if fn does not have that shape or the names do not match.
func FromFunc(name string, fn any, argNames ...string) (*Model, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: model %q has no function", errs.ErrInvalidModel, name)
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func || t.IsVariadic() || t.NumIn() == 0 {
		return nil, fmt.Errorf("%w: model %q must be func(x, params... float64) float64, got %s", errs.ErrInvalidModel, name, t)
	}
	if t.NumOut() != 1 || t.Out(0) != float64Type {
		return nil, fmt.Errorf("%w: model %q must return a single float64, got %s", errs.ErrInvalidModel, name, t)
	}
	for i := range t.NumIn() {
		if t.In(i) != float64Type {
			return nil, fmt.Errorf("%w: model %q argument %d is %s, want float64", errs.ErrInvalidModel, name, i, t.In(i))
		}
	}

	if len(argNames) == 0 {
		argNames = defaultArgNames(t.NumIn())
	}
	if len(argNames) != t.NumIn() {
		return nil, fmt.Errorf("%w: model %q takes %d arguments but %d names were given",
			errs.ErrInvalidModel, name, t.NumIn(), len(argNames))
	}

	return New(name, adapt(fn, v), argNames...)
}

func defaultArgNames(n int) []string {
	names := make([]string, n)
	names[0] = "x"
	for i := 1; i < n; i++ {
		names[i] = "p" + strconv.Itoa(i)
	}

	return names
}

// adapt converts a validated plain function into a Func. Common arities avoid the
// reflective call.
func adapt(fn any, v reflect.Value) Func {
	switch f := fn.(type) {
	case func(float64) float64:
		return func(x float64, _ []float64) float64 { return f(x) }
	case func(float64, float64) float64:
		return func(x float64, p []float64) float64 { return f(x, p[0]) }
	case func(float64, float64, float64) float64:
		return func(x float64, p []float64) float64 { return f(x, p[0], p[1]) }
	case func(float64, float64, float64, float64) float64:
		return func(x float64, p []float64) float64 { return f(x, p[0], p[1], p[2]) }
	case func(float64, float64, float64, float64, float64) float64:
		return func(x float64, p []float64) float64 { return f(x, p[0], p[1], p[2], p[3]) }
	}

	return func(x float64, p []float64) float64 {
		in := make([]reflect.Value, len(p)+1)
		in[0] = reflect.ValueOf(x)
		for i, pv := range p {
			in[i+1] = reflect.ValueOf(pv)
		}

		return v.Call(in)[0].Float()
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// ArgNames returns a copy of the declared argument names, independent variable first.
func (m *Model) ArgNames() []string {
	return append([]string(nil), m.args...)
}

// Independent returns the name of the independent variable.
func (m *Model) Independent() string {
	return m.args[0]
}

// ParamNames returns the parameter names in declaration order.
func (m *Model) ParamNames() []string {
	return append([]string(nil), m.args[1:]...)
}

// Arity returns the number of parameters.
func (m *Model) Arity() int {
	return len(m.args) - 1
}

// Eval evaluates the model at a single point.
func (m *Model) Eval(x float64, params []float64) float64 {
	return m.fn(x, params)
}

// EvalAll evaluates the model at every x. This is the fitting-function form: the
// independent variable first and a flat parameter vector second.
func (m *Model) EvalAll(xs []float64, params []float64) []float64 {
	out := make([]float64, len(xs))
	m.EvalInto(out, xs, params)

	return out
}

// EvalInto evaluates the model at every x into dst, which must be at least len(xs) long.
func (m *Model) EvalInto(dst, xs []float64, params []float64) {
	for i, x := range xs {
		dst[i] = m.fn(x, params)
	}
}

// String returns the model signature, e.g. "line(x; a, b)".
func (m *Model) String() string {
	s := m.name + "(" + m.args[0]
	for i, arg := range m.args[1:] {
		if i == 0 {
			s += "; "
		} else {
			s += ", "
		}
		s += arg
	}

	return s + ")"
}
