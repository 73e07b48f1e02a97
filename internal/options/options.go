// Package options implements the generic functional option used by the fitter,
// the solver, the settings record and the plot frame encoder.
package options

// Option configures a target of type T. Options are applied in order and the first
// failing option aborts the application.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to the Option interface.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	if f == nil || f.applyFunc == nil {
		return nil
	}

	return f.applyFunc(target)
}

// New creates an option from a function that may fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Compose bundles several options into one, preserving their order.
func Compose[T any](opts ...Option[T]) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			return Apply(target, opts...)
		},
	}
}

// Apply applies opts to target in order. Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
