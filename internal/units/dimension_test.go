package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimensionArithmetic(t *testing.T) {
	mass := Base("mass")
	time := Base("time")

	flux := mass.Div(time)
	assert.Equal(t, Dimension{"mass": 1, "time": -1}, flux)

	assert.True(t, flux.Mul(time).Equal(mass))
	assert.True(t, mass.Div(mass).IsDimensionless())
	assert.Equal(t, Dimension{"mass": 2, "time": -2}, flux.Pow(2))
	assert.True(t, flux.Pow(0).IsDimensionless())
}

func TestDimensionDropsZeroExponents(t *testing.T) {
	d := Base("carbon").Mul(Base("mass")).Div(Base("carbon"))
	assert.Equal(t, Dimension{"mass": 1}, d)
	assert.Len(t, d, 1)
}

func TestDimensionOperandsUnchanged(t *testing.T) {
	a := Dimension{"mass": 1}
	b := Dimension{"time": 1}
	_ = a.Mul(b)
	_ = a.Pow(3)
	assert.Equal(t, Dimension{"mass": 1}, a)
	assert.Equal(t, Dimension{"time": 1}, b)
}

func TestDimensionString(t *testing.T) {
	tests := []struct {
		name string
		dim  Dimension
		want string
	}{
		{"dimensionless", Dimensionless, "dimensionless"},
		{"base", Base("carbon"), "[carbon]"},
		{"flux", Dimension{"carbon": 1, "mass": 1, "time": -1}, "[carbon] * [mass] / [time]"},
		{"inverse", Dimension{"time": -1}, "1 / [time]"},
		{"power", Dimension{"length": 2, "time": -2}, "[length] ** 2 / [time] ** 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dim.String())
		})
	}
}

func TestDimensionNamesSorted(t *testing.T) {
	d := Dimension{"time": -1, "carbon": 1, "mass": 1}
	assert.Equal(t, []string{"carbon", "mass", "time"}, d.Names())
}

func TestSpeciesShift(t *testing.T) {
	tests := []struct {
		name  string
		r     Dimension
		x, y  string
		found bool
	}{
		{"single shift", Dimension{"carbon": 1, "nitrogen": -1}, "carbon", "nitrogen", true},
		{"equal dimensions", Dimensionless, "", "", false},
		{"one dimension only", Dimension{"time": 1}, "", "", false},
		{"double exponent", Dimension{"carbon": 2, "nitrogen": -2}, "", "", false},
		{"same sign", Dimension{"carbon": 1, "nitrogen": 1}, "", "", false},
		{"three dimensions", Dimension{"carbon": 1, "nitrogen": -1, "time": 1}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := speciesShift(tt.r)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.x, x)
				assert.Equal(t, tt.y, y)
			}
		})
	}
}
