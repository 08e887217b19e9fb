package units

import (
	"sort"
	"strconv"
	"strings"
)

// Dimension maps base dimension names to integer exponents.
// Zero exponents are never stored, so two equal dimensions have equal maps.
//
// Species are first-class dimensions: "[carbon]" and "[nitrogen]" are as
// distinct from each other as "[mass]" is from "[time]".
type Dimension map[string]int

// Dimensionless is the empty dimension.
var Dimensionless = Dimension{}

// Base returns the dimension consisting of a single base dimension.
func Base(name string) Dimension {
	return Dimension{name: 1}
}

// Mul returns d*o.
func (d Dimension) Mul(o Dimension) Dimension {
	return d.combine(o, 1)
}

// Div returns d/o.
func (d Dimension) Div(o Dimension) Dimension {
	return d.combine(o, -1)
}

// Pow returns d**n.
func (d Dimension) Pow(n int) Dimension {
	out := make(Dimension, len(d))
	if n == 0 {
		return out
	}
	for k, e := range d {
		out[k] = e * n
	}
	return out
}

func (d Dimension) combine(o Dimension, sign int) Dimension {
	out := make(Dimension, len(d)+len(o))
	for k, e := range d {
		out[k] = e
	}
	for k, e := range o {
		out[k] += sign * e
		if out[k] == 0 {
			delete(out, k)
		}
	}
	return out
}

// Equal reports whether d and o have identical exponents.
func (d Dimension) Equal(o Dimension) bool {
	if len(d) != len(o) {
		return false
	}
	for k, e := range d {
		if o[k] != e {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether every exponent is zero.
func (d Dimension) IsDimensionless() bool {
	return len(d) == 0
}

// Names returns the base dimension names in sorted order.
func (d Dimension) Names() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String formats the dimension the way pint does: "[carbon] * [mass] / [time]".
func (d Dimension) String() string {
	if d.IsDimensionless() {
		return "dimensionless"
	}

	var num, den []string
	for _, k := range d.Names() {
		e := d[k]
		term := "[" + k + "]"
		abs := e
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 {
			term += " ** " + strconv.Itoa(abs)
		}
		if e > 0 {
			num = append(num, term)
		} else {
			den = append(den, term)
		}
	}

	out := strings.Join(num, " * ")
	if out == "" {
		out = "1"
	}
	if len(den) > 0 {
		out += " / " + strings.Join(den, " / ")
	}
	return out
}

// speciesShift inspects r = src/dst. When r is exactly {x: +1, y: -1} it
// returns x and y: the source carries one more x than the destination and the
// destination one more y. Any other shape cannot be bridged by one chain of
// context rules.
func speciesShift(r Dimension) (x, y string, ok bool) {
	if len(r) != 2 {
		return "", "", false
	}
	for k, e := range r {
		switch e {
		case 1:
			x = k
		case -1:
			y = k
		default:
			return "", "", false
		}
	}
	return x, y, x != "" && y != ""
}
