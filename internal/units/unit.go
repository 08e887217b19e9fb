package units

import (
	"math/big"
	"strings"
)

// Unit is a parsed unit expression reduced to a scale factor over base units
// and a Dimension.
type Unit struct {
	expr string
	term
}

// String returns the expression the unit was parsed from.
func (u Unit) String() string {
	return u.expr
}

// Factor returns the size of the unit in base units.
func (u Unit) Factor() float64 {
	if u.factor == nil {
		return 0
	}
	f, _ := u.factor.Float64()
	return f
}

// Dimensionality returns a copy of the unit's dimension.
func (u Unit) Dimensionality() Dimension {
	return u.dims.Pow(1)
}

// Compatible reports whether u converts to o without any context.
func (u Unit) Compatible(o Unit) bool {
	return u.dims.Equal(o.dims)
}

// Equal reports whether u and o are the same size and dimension, e.g. "C"
// and "carbon".
func (u Unit) Equal(o Unit) bool {
	return u.Compatible(o) && sameFactor(u.factor, o.factor)
}

func sameFactor(a, b *big.Rat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func newUnit(expr string, t term) Unit {
	return Unit{expr: strings.Join(strings.Fields(expr), " "), term: t}
}
