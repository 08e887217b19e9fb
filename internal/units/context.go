package units

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/mikapfl/openscm-units/internal/ir"
)

// Context is a compiled, named set of conversion rules. Each rule becomes a
// pair of reciprocal edges between two base dimensions.
type Context struct {
	Name        string
	Description string
	Source      string
	Rules       []ir.RuleSpec

	edges edgeSet
}

// Edges returns the number of directed edges the context contributes.
func (c *Context) Edges() int {
	n := 0
	for _, out := range c.edges {
		n += len(out)
	}
	return n
}

// edgeSet maps from-dimension -> to-dimension -> weight, where one unit of
// the from base dimension equals weight units of the to base dimension.
type edgeSet map[string]map[string]*big.Rat

func (e edgeSet) set(x, y string, w *big.Rat) {
	if e[x] == nil {
		e[x] = make(map[string]*big.Rat)
	}
	e[x][y] = w
}

// overlay returns a copy of e with every edge of o applied on top. Edges of o
// replace edges of e for the same dimension pair.
func (e edgeSet) overlay(o edgeSet) edgeSet {
	out := make(edgeSet, len(e)+len(o))
	for x, targets := range e {
		for y, w := range targets {
			out.set(x, y, w)
		}
	}
	for x, targets := range o {
		for y, w := range targets {
			out.set(x, y, w)
		}
	}
	return out
}

// path finds the shortest chain of edges from x to y and returns the product
// of their weights. Neighbours are visited in sorted order so the result is
// deterministic when several shortest chains exist.
func (e edgeSet) path(x, y string) (*big.Rat, bool) {
	if _, ok := e[x]; !ok {
		return nil, false
	}

	weight := map[string]*big.Rat{x: big.NewRat(1, 1)}
	queue := []string{x}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == y {
			return weight[cur], true
		}

		next := make([]string, 0, len(e[cur]))
		for n := range e[cur] {
			next = append(next, n)
		}
		sort.Strings(next)

		for _, n := range next {
			if _, seen := weight[n]; seen {
				continue
			}
			weight[n] = new(big.Rat).Mul(weight[cur], e[cur][n])
			queue = append(queue, n)
		}
	}
	return nil, false
}

// compileContext turns a context spec into edges. unit reduces a unit name
// or expression to its term.
func compileContext(spec ir.ContextSpec, unit func(string) (term, error)) (*Context, error) {
	ctx := &Context{
		Name:        spec.Name,
		Description: spec.Description,
		Source:      spec.Source,
		Rules:       spec.Rules,
		edges:       make(edgeSet),
	}

	for i, rule := range spec.Rules {
		from, err := unit(rule.From)
		if err != nil {
			return nil, fmt.Errorf("context %s rule %d: from: %w", spec.Name, i, err)
		}
		to, err := unit(rule.To)
		if err != nil {
			return nil, fmt.Errorf("context %s rule %d: to: %w", spec.Name, i, err)
		}
		factor, err := evaluateNumber(rule.Factor)
		if err != nil {
			return nil, fmt.Errorf("context %s rule %d: factor: %w", spec.Name, i, err)
		}
		if factor.Sign() <= 0 {
			return nil, fmt.Errorf("context %s rule %d: factor %q must be positive", spec.Name, i, rule.Factor)
		}

		x, y, ok := speciesShift(from.dims.Div(to.dims))
		if !ok {
			return nil, fmt.Errorf("context %s rule %d: %s -> %s must change exactly one base dimension (%s -> %s)",
				spec.Name, i, rule.From, rule.To, from.dims, to.dims)
		}

		// 1 From = factor To  =>  1 [x] = factor * f_to / f_from [y]
		w := new(big.Rat).Mul(factor, to.factor)
		w.Quo(w, from.factor)
		if prev, dup := ctx.edges[x][y]; dup && !closeEnough(prev, w) {
			return nil, fmt.Errorf("context %s rule %d: conflicting rules for [%s] -> [%s] (%s vs %s)",
				spec.Name, i, x, y, prev.FloatString(6), w.FloatString(6))
		}
		ctx.edges.set(x, y, w)
		ctx.edges.set(y, x, new(big.Rat).Inv(w))
	}

	return ctx, nil
}

// closeEnough compares rule weights to a relative tolerance of 1e-9.
func closeEnough(a, b *big.Rat) bool {
	x, _ := a.Float64()
	y, _ := b.Float64()
	return math.Abs(x-y) <= 1e-9*math.Max(math.Abs(x), math.Abs(y))
}
