package units

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikapfl/openscm-units/internal/ir"
)

// testDefinitions is a trimmed copy of the shipped tables: enough physical
// units, species and contexts to exercise every resolution path.
func testDefinitions() *ir.Definitions {
	defs := &ir.Definitions{
		Version: ir.DefinitionsVersion,
		Units: []ir.UnitSpec{
			{Name: "dimensionless", Definition: "1"},
			{Name: "ppm", Definition: "1e-6 * dimensionless"},
			{Name: "ppb", Definition: "1e-9 * dimensionless"},
			{Name: "ppt", Definition: "1e-12 * dimensionless"},
			{Name: "g", Dimension: "mass"},
			{Name: "t", Definition: "1e6 * g"},
			{Name: "s", Dimension: "time"},
			{Name: "min", Definition: "60 * s"},
			{Name: "h", Definition: "60 * min"},
			{Name: "day", Definition: "24 * h"},
			{Name: "year", Definition: "365.25 * day"},

			{Name: "C", Dimension: "carbon", Species: true},
			{Name: "CO2", Definition: "12/44 * C", Species: true},
			{Name: "CH4", Dimension: "methane", Species: true},
			{Name: "N", Dimension: "nitrogen", Species: true},
			{Name: "N2O", Definition: "14/44 * N", Species: true},
			{Name: "N2ON", Definition: "14/28 * N", Species: true},
			{Name: "NO2", Definition: "14/46 * N", Species: true},
			{Name: "NOx", Dimension: "NOx", Species: true},
			{Name: "OC", Dimension: "OC", Species: true},
			{Name: "HFC32", Dimension: "HFC32", Species: true},
			{Name: "HFC125", Dimension: "HFC125", Species: true},
			{Name: "HFC410a", Dimension: "HFC410a", Species: true},
			{Name: "HFC4310mee", Dimension: "HFC4310mee", Species: true},

			{Name: "gC", Definition: "g * C", Species: true},
			{Name: "tC", Definition: "t * C", Species: true},
			{Name: "tCO2", Definition: "t * CO2", Species: true},
			{Name: "tOC", Definition: "t * OC", Species: true},
		},
		Aliases: []ir.AliasSpec{
			{Alias: "a", Canonical: "year"},
			{Alias: "yr", Canonical: "year"},
			{Alias: "hr", Canonical: "h"},
			{Alias: "gram", Canonical: "g"},
			{Alias: "carbon", Canonical: "C", Generated: true},
			{Alias: "carbon_dioxide", Canonical: "CO2"},
			{Alias: "methane", Canonical: "CH4", Generated: true},
			{Alias: "nitrogen", Canonical: "N", Generated: true},
			{Alias: "HFC410A", Canonical: "HFC410a", Generated: true},
			{Alias: "HFC4310MEE", Canonical: "HFC4310mee", Generated: true},
		},
		Contexts: []ir.ContextSpec{
			{Name: "NOx_conversions", Source: ir.SourceContext, Rules: []ir.RuleSpec{
				{From: "NOx", To: "N", Factor: "14/46"},
			}},
			{Name: "CH4_conversions", Source: ir.SourceContext, Rules: []ir.RuleSpec{
				{From: "CH4", To: "C", Factor: "12/16"},
			}},
			{Name: "AR4GWP100", Source: ir.SourceMetric, Rules: []ir.RuleSpec{
				{From: "CH4", To: "CO2", Factor: "25"},
				{From: "N2O", To: "CO2", Factor: "298"},
				{From: "HFC32", To: "CO2", Factor: "675"},
				{From: "HFC125", To: "CO2", Factor: "3500"},
				{From: "HFC410a", To: "CO2", Factor: "2088"},
			}},
			{Name: "SARGWP100", Source: ir.SourceMetric, Rules: []ir.RuleSpec{
				{From: "CH4", To: "CO2", Factor: "21"},
				{From: "N2O", To: "CO2", Factor: "310"},
			}},
			{Name: "HFC410A_conversions", Source: ir.SourceMixture, Rules: []ir.RuleSpec{
				{From: "HFC32", To: "HFC410a", Factor: "0.5"},
				{From: "HFC125", To: "HFC410a", Factor: "0.5"},
			}},
		},
		Metrics: []ir.MetricSpec{
			{Name: "AR4GWP100", Reference: "CO2", Values: map[string]string{
				"CH4": "25", "N2O": "298", "HFC32": "675", "HFC125": "3500", "HFC410a": "2088",
			}},
			{Name: "SARGWP100", Reference: "CO2", Values: map[string]string{
				"CH4": "21", "N2O": "310",
			}},
		},
	}
	defs.Sort()
	return defs
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	reg, err := NewRegistry(testDefinitions(), opts...)
	require.NoError(t, err)
	return reg
}

// convert is the test shorthand for Convert on a quantity of magnitude 1.
func convert(t *testing.T, s *Scope, from, to string) (float64, error) {
	t.Helper()
	q, err := s.Registry().Q(from)
	require.NoError(t, err)
	out, err := s.Convert(q, to)
	if err != nil {
		return 0, err
	}
	return out.Magnitude, nil
}
