package units

import (
	"fmt"
	"strconv"
)

// Quantity is a magnitude paired with a unit. Quantities are values: every
// operation returns a new Quantity.
type Quantity struct {
	Magnitude float64
	Unit      Unit

	reg *Registry
}

// Registry returns the registry the quantity was created by.
func (q Quantity) Registry() *Registry {
	return q.reg
}

// To converts q to the unit expression without any active context.
func (q Quantity) To(expr string) (Quantity, error) {
	if q.reg == nil {
		return Quantity{}, invalidExpression(expr, "quantity has no registry")
	}
	return q.reg.root.Convert(q, expr)
}

// ToUnit converts q to u without any active context.
func (q Quantity) ToUnit(u Unit) (Quantity, error) {
	if q.reg == nil {
		return Quantity{}, invalidExpression(u.String(), "quantity has no registry")
	}
	return q.reg.root.ConvertUnit(q, u)
}

// Scale returns q with its magnitude multiplied by f.
func (q Quantity) Scale(f float64) Quantity {
	q.Magnitude *= f
	return q
}

// Add returns q+o expressed in q's unit. o is converted without a context,
// so adding N2O to CO2 fails even inside a GWP scope; convert first.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	converted, err := o.ToUnit(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	q.Magnitude += converted.Magnitude
	return q, nil
}

// Sub returns q-o expressed in q's unit.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	neg := o.Scale(-1)
	return q.Add(neg)
}

// Equal reports whether o, converted to q's unit, has the same magnitude.
func (q Quantity) Equal(o Quantity) bool {
	if !q.Unit.Compatible(o.Unit) {
		return false
	}
	if q.Unit.factor == nil || o.Unit.factor == nil {
		return q.Magnitude == o.Magnitude && sameFactor(q.Unit.factor, o.Unit.factor)
	}
	return q.Magnitude == o.Magnitude*ratio(o.Unit.factor, q.Unit.factor)
}

// String formats the quantity as "<magnitude> <unit>".
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(q.Magnitude, 'g', -1, 64), q.Unit)
}
