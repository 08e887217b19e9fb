package units

import (
	"context"
	"log/slog"
	"math/big"
)

// Scope is one node of a context stack. The root scope of a registry has no
// active context; Enter pushes a context and returns a new scope, Exit
// returns the parent.
//
// Scopes are immutable, so a scope can be shared between goroutines and a
// conversion in one scope never observes contexts entered in another.
// Exiting is just dropping the child: the parent still behaves exactly as it
// did before the child was created.
type Scope struct {
	reg    *Registry
	parent *Scope
	ctx    *Context
	graph  edgeSet
	depth  int
	token  string
}

// Enter pushes the named context on top of s. It fails with an
// UNKNOWN_CONTEXT error, and s is left untouched, when the name is not
// defined.
func (s *Scope) Enter(name string) (*Scope, error) {
	ctx, ok := s.reg.contexts[name]
	if !ok {
		return nil, unknownContext(name)
	}

	child := &Scope{
		reg:    s.reg,
		parent: s,
		ctx:    ctx,
		graph:  s.graph.overlay(ctx.edges),
		depth:  s.depth + 1,
		token:  s.reg.tokens.Generate(),
	}
	s.reg.recorder.ObserveContextEntered(name)
	slog.Debug("context entered",
		"context", name,
		"scope", child.token,
		"depth", child.depth)
	return child, nil
}

// Exit returns the scope below s. The root scope exits to itself.
func (s *Scope) Exit() *Scope {
	if s.parent == nil {
		return s
	}
	slog.Debug("context exited",
		"context", s.ctx.Name,
		"scope", s.token,
		"depth", s.depth)
	return s.parent
}

// WithContext runs fn in a child scope with the named context active. The
// child is always exited after fn returns, including when fn fails.
func (s *Scope) WithContext(name string, fn func(*Scope) error) error {
	child, err := s.Enter(name)
	if err != nil {
		return err
	}
	defer child.Exit()
	return fn(child)
}

// Registry returns the registry the scope belongs to.
func (s *Scope) Registry() *Registry {
	return s.reg
}

// Active reports whether at least one context is active.
func (s *Scope) Active() bool {
	return s.depth > 0
}

// Depth returns the number of active contexts.
func (s *Scope) Depth() int {
	return s.depth
}

// Token identifies this activation in logs. The root scope's token is "root".
func (s *Scope) Token() string {
	return s.token
}

// Contexts returns the active context names, outermost first.
func (s *Scope) Contexts() []string {
	names := make([]string, s.depth)
	for cur := s; cur.parent != nil; cur = cur.parent {
		names[cur.depth-1] = cur.ctx.Name
	}
	return names
}

// Q parses expr into a quantity of magnitude 1.
func (s *Scope) Q(expr string) (Quantity, error) {
	return s.reg.Q(expr)
}

// Convert converts q to the unit expression using the contexts active in s.
func (s *Scope) Convert(q Quantity, expr string) (Quantity, error) {
	target, err := s.reg.Unit(expr)
	if err != nil {
		return Quantity{}, err
	}
	return s.ConvertUnit(q, target)
}

// ConvertUnit converts q to target using the contexts active in s.
func (s *Scope) ConvertUnit(q Quantity, target Unit) (Quantity, error) {
	f, err := s.factor(q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude * f, Unit: target, reg: s.reg}, nil
}

// Factor returns how many `to` one `from` is worth under s.
func (s *Scope) Factor(from, to string) (float64, error) {
	src, err := s.reg.Unit(from)
	if err != nil {
		return 0, err
	}
	dst, err := s.reg.Unit(to)
	if err != nil {
		return 0, err
	}
	return s.factor(src, dst)
}

// factor resolves a conversion. Equal dimensions convert by scale alone;
// otherwise the dimensions must differ by exactly one base dimension and the
// active contexts must connect the two.
func (s *Scope) factor(from, to Unit) (float64, error) {
	if from.dims.Equal(to.dims) {
		s.reg.recorder.ObserveConversion(RouteDimensional, OutcomeOK)
		return ratio(from.factor, to.factor), nil
	}

	if x, y, ok := speciesShift(from.dims.Div(to.dims)); ok && s.depth > 0 {
		if w, found := s.graph.path(x, y); found {
			s.reg.recorder.ObserveConversion(RouteContext, OutcomeOK)
			slog.Debug("conversion via context",
				"from", from.String(),
				"to", to.String(),
				"scope", s.token,
				"contexts", s.Contexts())
			return ratio(new(big.Rat).Mul(from.factor, w), to.factor), nil
		}
	}

	s.reg.recorder.ObserveConversion(RouteNone, OutcomeError)
	return 0, dimensionality(from, to, s.Contexts())
}

type scopeKey struct{}

// ContextWithScope returns a copy of ctx carrying s. Use it to thread the
// active contexts through call chains instead of passing *Scope explicitly.
func ContextWithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFromContext returns the scope stored in ctx, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}
