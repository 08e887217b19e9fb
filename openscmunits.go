// Package openscmunits provides the unit registry used for emissions
// accounting: gas species as dimensions of their own, mass prefixes from
// t to Tt, and the conversion contexts (NOx_conversions, CH4_conversions,
// mixture contexts and the SAR, AR4 and AR5 GWP100 metrics) that bridge
// species.
//
//	reg := openscmunits.Default()
//	q := reg.MustQ("Mt CH4 / yr")
//	err := reg.WithContext("AR4GWP100", func(s *openscmunits.Scope) error {
//		eq, err := s.Convert(q, "Mt CO2 / yr")
//		...
//	})
package openscmunits

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/mikapfl/openscm-units/internal/compiler"
	"github.com/mikapfl/openscm-units/internal/definitions"
	"github.com/mikapfl/openscm-units/internal/units"
)

// Option configures a registry built by New or NewFromValue.
type Option = units.Option

// WithRecorder sets the recorder notified of conversions and context
// activations.
func WithRecorder(r Recorder) Option { return units.WithRecorder(r) }

// WithTokenGenerator overrides the generator of scope tokens.
func WithTokenGenerator(g TokenGenerator) Option { return units.WithTokenGenerator(g) }

// DefinitionsError carries every validation problem found in a definitions
// document.
type DefinitionsError struct {
	Errors []compiler.ValidationError
}

func (e *DefinitionsError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid definitions (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// New builds a registry from the embedded definitions document.
func New(opts ...Option) (*Registry, error) {
	v, err := definitions.Value(cuecontext.New())
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	return NewFromValue(v, opts...)
}

// NewFromValue builds a registry from a CUE definitions document. The
// document is compiled and validated before any unit is resolved; a
// validation failure returns a *DefinitionsError.
func NewFromValue(v cue.Value, opts ...Option) (*Registry, error) {
	defs, err := compiler.CompileDefinitions(v)
	if err != nil {
		return nil, fmt.Errorf("compile definitions: %w", err)
	}
	if errs := compiler.Validate(defs); len(errs) > 0 {
		return nil, &DefinitionsError{Errors: errs}
	}
	reg, err := units.NewRegistry(defs, opts...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry built from the embedded
// document. It panics if the embedded document does not build.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := New()
		if err != nil {
			panic(fmt.Sprintf("openscmunits: embedded definitions: %v", err))
		}
		defaultReg = reg
	})
	return defaultReg
}

// Q parses expr with the default registry.
func Q(expr string) (Quantity, error) {
	return Default().Q(expr)
}

// WithContext runs fn with the named context active on the default registry.
func WithContext(name string, fn func(*Scope) error) error {
	return Default().WithContext(name, fn)
}

// AsDefinitionsError unwraps err into a *DefinitionsError.
func AsDefinitionsError(err error) (*DefinitionsError, bool) {
	var de *DefinitionsError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
