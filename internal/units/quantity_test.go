package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityTo(t *testing.T) {
	reg := newTestRegistry(t)

	q, err := reg.Quantity(2, "t CO2")
	require.NoError(t, err)

	c, err := q.To("kg C")
	require.NoError(t, err)
	assert.InEpsilon(t, 2000*12.0/44.0, c.Magnitude, 1e-12)
	assert.Equal(t, "kg C", c.Unit.String())
	assert.Equal(t, 2.0, q.Magnitude, "the source quantity is not modified")
}

func TestQuantityToUnit(t *testing.T) {
	reg := newTestRegistry(t)

	day, err := reg.Unit("day")
	require.NoError(t, err)
	got, err := reg.MustQ("year").ToUnit(day)
	require.NoError(t, err)
	assert.InEpsilon(t, 365.25, got.Magnitude, 1e-4)
}

func TestQuantityWithoutRegistry(t *testing.T) {
	var q Quantity
	_, err := q.To("g")
	assert.Error(t, err)
	_, err = q.ToUnit(Unit{})
	assert.Error(t, err)
}

func TestQuantityArithmetic(t *testing.T) {
	reg := newTestRegistry(t)

	a, err := reg.Quantity(1, "t C")
	require.NoError(t, err)
	b, err := reg.Quantity(500, "kg C")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.InEpsilon(t, 1.5, sum.Magnitude, 1e-12)
	assert.Equal(t, "t C", sum.Unit.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.5, diff.Magnitude, 1e-12)

	assert.Equal(t, 3.0, a.Scale(3).Magnitude)
	assert.Equal(t, 1.0, a.Magnitude)
}

func TestQuantityAddIncompatible(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.MustQ("CO2").Add(reg.MustQ("N2O"))
	require.Error(t, err)
	assert.True(t, IsDimensionality(err))
}

func TestQuantityEqual(t *testing.T) {
	reg := newTestRegistry(t)

	kg, err := reg.Quantity(1000, "g")
	require.NoError(t, err)
	assert.True(t, kg.Equal(reg.MustQ("kg")))
	assert.False(t, kg.Equal(reg.MustQ("kg C")))
	assert.False(t, reg.MustQ("C").Equal(reg.MustQ("N")))
}

func TestQuantityString(t *testing.T) {
	reg := newTestRegistry(t)

	q, err := reg.Quantity(0.25, "kg   CO2 /yr")
	require.NoError(t, err)
	assert.Equal(t, "0.25 kg CO2 /yr", q.String())
}

func TestUnitDimensionality(t *testing.T) {
	reg := newTestRegistry(t)

	u, err := reg.Unit("Mt CO2 / yr")
	require.NoError(t, err)

	d := u.Dimensionality()
	assert.Equal(t, Dimension{"carbon": 1, "mass": 1, "time": -1}, d)

	// the returned map is a copy
	d["carbon"] = 7
	assert.Equal(t, 1, u.Dimensionality()["carbon"])
}
