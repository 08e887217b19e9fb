package units

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/mikapfl/openscm-units/internal/ir"
)

// Registry resolves unit expressions and owns the compiled contexts.
//
// A Registry is built once from ir.Definitions and is read-only afterwards;
// it is safe for concurrent use. Context activation never mutates the
// registry: it produces Scope values (see Scope).
type Registry struct {
	defs        *ir.Definitions
	units       map[string]term
	species     map[string]bool
	aliases     map[string]string
	contexts    map[string]*Context
	fingerprint string

	recorder Recorder
	tokens   TokenGenerator
	root     *Scope
}

// Option configures a Registry.
type Option func(*Registry)

// WithRecorder sets the recorder notified of conversions and activations.
func WithRecorder(r Recorder) Option {
	return func(reg *Registry) {
		if r != nil {
			reg.recorder = r
		}
	}
}

// WithTokenGenerator overrides the scope token generator (for testing).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(reg *Registry) {
		if g != nil {
			reg.tokens = g
		}
	}
}

// NewRegistry builds a registry from compiled definitions. Every unit and
// every context rule is resolved eagerly, so a registry that builds without
// error can resolve every name in its tables.
func NewRegistry(defs *ir.Definitions, opts ...Option) (*Registry, error) {
	reg := &Registry{
		defs:     defs,
		units:    make(map[string]term, len(defs.Units)),
		species:  make(map[string]bool),
		aliases:  make(map[string]string, len(defs.Aliases)),
		contexts: make(map[string]*Context, len(defs.Contexts)),
		recorder: nopRecorder{},
		tokens:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(reg)
	}

	for _, a := range defs.Aliases {
		reg.aliases[a.Alias] = a.Canonical
	}

	b := &builder{
		reg:      reg,
		specs:    make(map[string]ir.UnitSpec, len(defs.Units)),
		visiting: make(map[string]bool),
	}
	for _, u := range defs.Units {
		if _, dup := b.specs[u.Name]; dup {
			return nil, fmt.Errorf("unit %q defined twice", u.Name)
		}
		b.specs[u.Name] = u
		if u.Species {
			reg.species[u.Name] = true
		}
	}
	for _, a := range defs.Aliases {
		if _, ok := b.specs[a.Canonical]; !ok {
			return nil, fmt.Errorf("alias %s: %w", a.Alias, unknownUnit(a.Canonical))
		}
		if _, shadow := b.specs[a.Alias]; shadow {
			return nil, fmt.Errorf("alias %s shadows a canonical unit", a.Alias)
		}
	}
	for _, u := range defs.Units {
		if _, err := b.resolve(u.Name); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
	}

	for _, spec := range defs.Contexts {
		ctx, err := compileContext(spec, func(expr string) (term, error) {
			return evaluate(expr, reg.lookup)
		})
		if err != nil {
			return nil, err
		}
		reg.contexts[spec.Name] = ctx
	}

	fp, err := ir.Fingerprint(defs)
	if err != nil {
		return nil, err
	}
	reg.fingerprint = fp

	reg.root = &Scope{reg: reg, graph: edgeSet{}, token: "root"}
	return reg, nil
}

// builder resolves unit definitions in dependency order.
type builder struct {
	reg      *Registry
	specs    map[string]ir.UnitSpec
	visiting map[string]bool
}

func (b *builder) resolve(name string) (term, error) {
	if t, ok := b.reg.units[name]; ok {
		return t, nil
	}
	spec, ok := b.specs[name]
	if !ok {
		return term{}, unknownUnit(name)
	}
	if b.visiting[name] {
		return term{}, invalidExpression(spec.Definition, fmt.Sprintf("definition of %q refers to itself", name))
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	var t term
	if spec.IsBase() {
		t = term{factor: big.NewRat(1, 1), dims: Base(spec.Dimension)}
	} else {
		var err error
		t, err = evaluate(spec.Definition, func(ref string) (term, error) {
			return b.reg.lookupWith(ref, b.resolveExact)
		})
		if err != nil {
			return term{}, err
		}
	}
	b.reg.units[name] = t
	return t, nil
}

func (b *builder) resolveExact(name string) (term, bool, error) {
	if canonical, ok := b.reg.aliases[name]; ok {
		name = canonical
	}
	if _, ok := b.specs[name]; !ok {
		return term{}, false, nil
	}
	t, err := b.resolve(name)
	return t, err == nil, err
}

// resolveExact looks a name up as a canonical name or alias.
func (r *Registry) resolveExact(name string) (term, bool, error) {
	if t, ok := r.units[name]; ok {
		return t, true, nil
	}
	if canonical, ok := r.aliases[name]; ok {
		t, ok := r.units[canonical]
		return t, ok, nil
	}
	return term{}, false, nil
}

func (r *Registry) lookup(name string) (term, error) {
	return r.lookupWith(name, r.resolveExact)
}

// lookupWith resolves one name: canonical name or alias, then SI prefix plus
// canonical name or alias (longest prefix first), then a plural "s" on any of
// those. Matching is case-sensitive.
func (r *Registry) lookupWith(name string, exact func(string) (term, bool, error)) (term, error) {
	if t, ok, err := lookupSingular(name, exact); err != nil || ok {
		return t, err
	}
	if stem, ok := strings.CutSuffix(name, "s"); ok && stem != "" {
		if t, ok, err := lookupSingular(stem, exact); err != nil || ok {
			return t, err
		}
	}
	return term{}, unknownUnit(name)
}

func lookupSingular(name string, exact func(string) (term, bool, error)) (term, bool, error) {
	if t, ok, err := exact(name); err != nil || ok {
		return t, ok, err
	}
	for _, p := range prefixForms {
		rest, ok := strings.CutPrefix(name, p.text)
		if !ok || rest == "" {
			continue
		}
		t, ok, err := exact(rest)
		if err != nil {
			return term{}, false, err
		}
		if ok {
			return term{factor: new(big.Rat).Mul(p.factor, t.factor), dims: t.dims}, true, nil
		}
	}
	return term{}, false, nil
}

// Unit parses a unit expression such as "kg CO2 / yr".
func (r *Registry) Unit(expr string) (Unit, error) {
	t, err := evaluate(expr, r.lookup)
	if err != nil {
		return Unit{}, err
	}
	return newUnit(expr, t), nil
}

// Q parses expr into a quantity of magnitude 1, the equivalent of calling
// the registry with a unit string.
func (r *Registry) Q(expr string) (Quantity, error) {
	return r.Quantity(1, expr)
}

// MustQ is like Q but panics on error.
// Use only in tests or with expressions known to be valid.
func (r *Registry) MustQ(expr string) Quantity {
	q, err := r.Q(expr)
	if err != nil {
		panic(err)
	}
	return q
}

// Quantity returns magnitude units of expr.
func (r *Registry) Quantity(magnitude float64, expr string) (Quantity, error) {
	u, err := r.Unit(expr)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: magnitude, Unit: u, reg: r}, nil
}

// Root returns the scope with no active context.
func (r *Registry) Root() *Scope {
	return r.root
}

// Enter activates the named contexts in order and returns the resulting
// scope. Either every context is entered or an error is returned.
func (r *Registry) Enter(names ...string) (*Scope, error) {
	s := r.root
	for _, name := range names {
		next, err := s.Enter(name)
		if err != nil {
			return nil, err
		}
		s = next
	}
	return s, nil
}

// WithContext runs fn with the named context active. See Scope.WithContext.
func (r *Registry) WithContext(name string, fn func(*Scope) error) error {
	return r.root.WithContext(name, fn)
}

// From returns the scope carried by ctx when it belongs to this registry,
// and the root scope otherwise.
func (r *Registry) From(ctx context.Context) *Scope {
	if s := ScopeFromContext(ctx); s != nil && s.reg == r {
		return s
	}
	return r.root
}

// Canonical resolves an alias to its canonical unit name. Canonical names
// resolve to themselves.
func (r *Registry) Canonical(name string) (string, bool) {
	if _, ok := r.units[name]; ok {
		return name, true
	}
	c, ok := r.aliases[name]
	return c, ok
}

// Context returns the compiled context with the given name.
func (r *Registry) Context(name string) (*Context, bool) {
	c, ok := r.contexts[name]
	return c, ok
}

// ContextNames returns every context name in sorted order.
func (r *Registry) ContextNames() []string {
	names := make([]string, 0, len(r.contexts))
	for name := range r.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnitNames returns every canonical unit name in sorted order. With
// speciesOnly set, only gas species are returned.
func (r *Registry) UnitNames(speciesOnly bool) []string {
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		if speciesOnly && !r.species[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSpecies reports whether name (or the unit it aliases) is a gas species.
func (r *Registry) IsSpecies(name string) bool {
	c, ok := r.Canonical(name)
	return ok && r.species[c]
}

// Definitions returns the definitions the registry was built from.
// Callers must not modify the result.
func (r *Registry) Definitions() *ir.Definitions {
	return r.defs
}

// Fingerprint returns the content hash of the registry's definitions.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// Metric returns the value of a metric for one species: how many reference
// units (e.g. CO2) one unit of species is worth under the metric context.
// The species must be listed in the metric's table, by canonical name or
// alias; any other species is an UNKNOWN_UNIT error naming the metric.
//
// Metric reads the compiled context directly. It does not enter a scope, so
// nothing is recorded and no scope token is used.
func (r *Registry) Metric(metric, species string) (float64, error) {
	spec, ok := r.defs.Metric(metric)
	ctx, compiled := r.contexts[metric]
	if !ok || !compiled {
		return 0, unknownContext(metric)
	}

	name, ok := r.Canonical(species)
	if !ok || !r.metricLists(spec, name) {
		return 0, notInMetric(species, metric)
	}
	from, err := r.Unit(name)
	if err != nil {
		return 0, err
	}
	to, err := r.Unit(spec.Reference)
	if err != nil {
		return 0, err
	}

	if from.dims.Equal(to.dims) {
		return ratio(from.factor, to.factor), nil
	}
	if x, y, ok := speciesShift(from.dims.Div(to.dims)); ok {
		if w, found := ctx.edges.path(x, y); found {
			return ratio(new(big.Rat).Mul(from.factor, w), to.factor), nil
		}
	}
	return 0, dimensionality(from, to, []string{metric})
}

// metricLists reports whether the canonical unit name is a key of spec's
// table, directly or through an alias.
func (r *Registry) metricLists(spec ir.MetricSpec, name string) bool {
	for key := range spec.Values {
		if c, ok := r.Canonical(key); ok && c == name {
			return true
		}
	}
	return false
}
