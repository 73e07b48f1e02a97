package param

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/model"
)

// Set maps parameter names to parameters and keeps them ordered by position.
//
// A Set is not safe for concurrent use.
type Set struct {
	byName  map[string]*Parameter
	ordered []*Parameter // index i holds position i+1
	logger  *slog.Logger
}

// Option configures a Set.
type Option = options.Option[*Set]

// WithLogger sets the logger used for guess warnings.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// New creates a parameter set from a model signature. Every parameter starts Free
// with guess DefaultGuess.
//
// Returns ErrCannotFit if the model declares no parameters besides the independent
// variable.
func New(sig model.Signature, opts ...Option) (*Set, error) {
	args := sig.ArgNames()
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: model %q takes no parameters besides the independent variable", errs.ErrCannotFit, sig.Name())
	}

	s := &Set{
		byName:  make(map[string]*Parameter, len(args)-1),
		ordered: make([]*Parameter, 0, len(args)-1),
		logger:  slog.Default(),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	for i, name := range args[1:] {
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", errs.ErrInvalidModel, name)
		}
		p := &Parameter{Name: name, Position: i + 1, Kind: Free, Value: DefaultGuess}
		s.byName[name] = p
		s.ordered = append(s.ordered, p)
	}

	return s, nil
}

// Len returns the total number of parameters.
func (s *Set) Len() int {
	return len(s.ordered)
}

// FreeCount returns the number of Free parameters.
func (s *Set) FreeCount() int {
	n := 0
	for _, p := range s.ordered {
		if p.Kind == Free {
			n++
		}
	}

	return n
}

// Has reports whether name is a declared parameter.
func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Get returns a copy of the named parameter.
func (s *Set) Get(name string) (Parameter, bool) {
	p, ok := s.byName[name]
	if !ok {
		return Parameter{}, false
	}

	return *p, true
}

// All returns copies of every parameter ordered by position.
func (s *Set) All() []Parameter {
	out := make([]Parameter, len(s.ordered))
	for i, p := range s.ordered {
		out[i] = *p
	}

	return out
}

// Names returns all parameter names ordered by position.
func (s *Set) Names() []string {
	names := make([]string, len(s.ordered))
	for i, p := range s.ordered {
		names[i] = p.Name
	}

	return names
}

// FreeNames returns the names of the Free parameters ordered by position.
func (s *Set) FreeNames() []string {
	names := make([]string, 0, len(s.ordered))
	for _, p := range s.ordered {
		if p.Kind == Free {
			names = append(names, p.Name)
		}
	}

	return names
}

// FreePositions returns the 1-based positions of the Free parameters in order.
func (s *Set) FreePositions() []int {
	positions := make([]int, 0, len(s.ordered))
	for _, p := range s.ordered {
		if p.Kind == Free {
			positions = append(positions, p.Position)
		}
	}

	return positions
}

// Guesses returns the full parameter vector the model expects: the constant of each
// Fixed parameter and the guess of each Free parameter, ordered by position.
func (s *Set) Guesses() []float64 {
	out := make([]float64, len(s.ordered))
	for i, p := range s.ordered {
		out[i] = p.Value
	}

	return out
}

// FreeGuesses returns the guesses of the Free parameters ordered by position.
func (s *Set) FreeGuesses() []float64 {
	out := make([]float64, 0, len(s.ordered))
	for _, p := range s.ordered {
		if p.Kind == Free {
			out = append(out, p.Value)
		}
	}

	return out
}

// Assemble builds a full parameter vector from trial values of the Free parameters,
// substituting each Fixed constant at its position.
func (s *Set) Assemble(free []float64) []float64 {
	out := make([]float64, len(s.ordered))
	s.AssembleInto(out, free)

	return out
}

// AssembleInto is like Assemble but writes into dst, which must hold Len() values.
// free must hold FreeCount() values.
func (s *Set) AssembleInto(dst, free []float64) {
	j := 0
	for i, p := range s.ordered {
		switch p.Kind {
		case Fixed:
			dst[i] = p.Value
		case Free:
			dst[i] = free[j]
			j++
		}
	}
}

// Fitted returns the full parameter vector of the last converged fit: best-fit values
// for Free parameters and constants for Fixed ones.
//
// Returns ErrNoResults if there is no converged fit.
func (s *Set) Fitted() ([]float64, error) {
	out := make([]float64, len(s.ordered))
	for i, p := range s.ordered {
		switch p.Kind {
		case Fixed:
			out[i] = p.Value
		case Free:
			if p.fit == nil {
				return nil, fmt.Errorf("%w: parameter %q has not been fitted", errs.ErrNoResults, p.Name)
			}
			out[i] = p.fit.value
		}
	}

	return out, nil
}

// Free makes each named parameter Free, keeping its current value as the guess.
// Results are invalidated.
//
// Returns ErrUnknownParameter, leaving the set untouched, if any name is unknown.
func (s *Set) Free(names ...string) error {
	if err := s.checkNames(names...); err != nil {
		return err
	}

	for _, name := range names {
		s.byName[name].Kind = Free
	}
	s.Invalidate()

	return nil
}

// Fix makes each named parameter Fixed at the given value. Results are invalidated.
//
// Returns ErrUnknownParameter, leaving the set untouched, if any name is unknown.
func (s *Set) Fix(values map[string]float64) error {
	if err := s.checkNames(slices.Collect(maps.Keys(values))...); err != nil {
		return err
	}

	for name, v := range values {
		p := s.byName[name]
		p.Kind = Fixed
		p.Value = v
	}
	s.Invalidate()

	return nil
}

// FixOne makes a single parameter Fixed at value.
func (s *Set) FixOne(name string, value float64) error {
	return s.Fix(map[string]float64{name: value})
}

// SetGuesses updates the guesses of named Free parameters.
//
// If any target is Fixed a warning is logged and nothing changes; applied reports
// whether the update took place. Unknown names are an error.
func (s *Set) SetGuesses(values map[string]float64) (applied bool, err error) {
	names := slices.Sorted(maps.Keys(values))
	if err := s.checkNames(names...); err != nil {
		return false, err
	}

	for _, name := range names {
		if s.byName[name].Kind == Fixed {
			s.logger.Warn("cannot set guess of fixed parameter; free it first",
				slog.String("parameter", name))

			return false, nil
		}
	}

	for name, v := range values {
		s.byName[name].Value = v
	}
	s.Invalidate()

	return true, nil
}

// SetGuessVector updates the guesses of all Free parameters, in position order.
//
// If len(values) differs from FreeCount a warning is logged and nothing changes;
// the result reports whether the update took place.
func (s *Set) SetGuessVector(values []float64) bool {
	if n := s.FreeCount(); len(values) != n {
		s.logger.Warn("guess vector length does not match the number of free parameters",
			slog.Int("got", len(values)), slog.Int("free", n))

		return false
	}

	j := 0
	for _, p := range s.ordered {
		if p.Kind == Free {
			p.Value = values[j]
			j++
		}
	}
	s.Invalidate()

	return true
}

// Read returns the constant of a Fixed parameter or the best-fit value of a Free one.
//
// Returns ErrUnknownParameter for unknown names and ErrNoResults for a Free parameter
// without a converged fit.
func (s *Set) Read(name string) (float64, error) {
	p, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownParameter, name)
	}

	switch p.Kind {
	case Fixed:
		return p.Value, nil
	case Free:
		if p.fit == nil {
			return 0, fmt.Errorf("%w: parameter %q has not been fitted", errs.ErrNoResults, name)
		}

		return p.fit.value, nil
	default:
		return 0, fmt.Errorf("parameter %q has unknown kind %d", name, p.Kind)
	}
}

// Uncertainty returns the best-fit uncertainty of a Free parameter, or zero for a
// Fixed one.
func (s *Set) Uncertainty(name string) (float64, error) {
	p, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownParameter, name)
	}

	switch p.Kind {
	case Fixed:
		return 0, nil
	case Free:
		if p.fit == nil {
			return 0, fmt.Errorf("%w: parameter %q has not been fitted", errs.ErrNoResults, name)
		}

		return p.fit.uncertainty, nil
	default:
		return 0, fmt.Errorf("parameter %q has unknown kind %d", name, p.Kind)
	}
}

// Write sets the guess of a Free parameter or the constant of a Fixed one.
// Results are invalidated.
func (s *Set) Write(name string, value float64) error {
	p, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownParameter, name)
	}

	p.Value = value
	s.Invalidate()

	return nil
}

// SetResults stores best-fit values and uncertainties for the Free parameters, both
// ordered by position.
func (s *Set) SetResults(values, uncertainties []float64) error {
	n := s.FreeCount()
	if len(values) != n || len(uncertainties) != n {
		return fmt.Errorf("%w: %d values and %d uncertainties for %d free parameters",
			errs.ErrBadParameters, len(values), len(uncertainties), n)
	}

	j := 0
	for _, p := range s.ordered {
		if p.Kind == Free {
			p.fit = &estimate{value: values[j], uncertainty: uncertainties[j]}
			j++
		}
	}

	return nil
}

// HasResults reports whether fit results are currently stored.
func (s *Set) HasResults() bool {
	for _, p := range s.ordered {
		if p.Kind == Free {
			return p.fit != nil
		}
	}

	return false
}

// Invalidate clears the fit results of every parameter.
func (s *Set) Invalidate() {
	for _, p := range s.ordered {
		p.fit = nil
	}
}

func (s *Set) checkNames(names ...string) error {
	for _, name := range names {
		if _, ok := s.byName[name]; !ok {
			return fmt.Errorf("%w: %q (known: %v)", errs.ErrUnknownParameter, name, s.Names())
		}
	}

	return nil
}
