package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikapfl/openscm-units/internal/ir"
)

func compileString(t *testing.T, src string) (*ir.Definitions, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileDefinitions(v)
}

func TestCompileDefinitionsBasic(t *testing.T) {
	defs, err := compileString(t, `
		units: {
			g: {dimension: "mass", aliases: ["gram"]}
			t: {definition: "1e6 * g", aliases: ["tonne"]}
		}
		species: {
			C: {dimension: "carbon"}
			CO2: {definition: "12/44 * C", aliases: ["carbon_dioxide"]}
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, ir.DefinitionsVersion, defs.Version)

	g, ok := defs.Unit("g")
	require.True(t, ok)
	assert.Equal(t, "mass", g.Dimension)
	assert.False(t, g.Species)

	co2, ok := defs.Unit("CO2")
	require.True(t, ok)
	assert.Equal(t, "12/44 * C", co2.Definition)
	assert.True(t, co2.Species)

	assert.Equal(t, []string{"carbon_dioxide"}, defs.AliasesOf("CO2"))
	assert.Equal(t, []string{"gram"}, defs.AliasesOf("g"))
}

func TestCompileDefinitionsJointUnits(t *testing.T) {
	defs, err := compileString(t, `
		units: {
			g: dimension: "mass"
			t: definition: "1e6 * g"
		}
		species: OC: dimension: "OC"
	`)
	require.NoError(t, err)

	tOC, ok := defs.Unit("tOC")
	require.True(t, ok)
	assert.Equal(t, "t * OC", tOC.Definition)
	assert.True(t, tOC.Species)

	gOC, ok := defs.Unit("gOC")
	require.True(t, ok)
	assert.Equal(t, "g * OC", gOC.Definition)
}

func TestCompileDefinitionsGeneratedAliases(t *testing.T) {
	defs, err := compileString(t, `
		units: {
			g: dimension: "mass"
			t: definition: "1e6 * g"
		}
		species: {
			C: dimension: "carbon"
			HFC4310mee: dimension: "HFC4310mee"
		}
	`)
	require.NoError(t, err)

	byAlias := make(map[string]ir.AliasSpec)
	for _, a := range defs.Aliases {
		byAlias[a.Alias] = a
	}

	// dimension name
	require.Contains(t, byAlias, "carbon")
	assert.Equal(t, "C", byAlias["carbon"].Canonical)
	assert.True(t, byAlias["carbon"].Generated)

	// upper case, and upper case of the joint units
	require.Contains(t, byAlias, "HFC4310MEE")
	assert.Equal(t, "HFC4310mee", byAlias["HFC4310MEE"].Canonical)
	assert.Equal(t, "tHFC4310mee", byAlias["tHFC4310MEE"].Canonical)
	assert.Equal(t, "gHFC4310mee", byAlias["gHFC4310MEE"].Canonical)

	// dimension equal to the symbol produces no alias
	assert.NotContains(t, byAlias, "HFC4310mee")
}

func TestCompileDefinitionsGeneratedAliasNeverShadows(t *testing.T) {
	defs, err := compileString(t, `
		species: {
			Xy: dimension: "xy"
			XY: dimension: "XY"
		}
	`)
	require.NoError(t, err)

	for _, a := range defs.Aliases {
		assert.NotEqual(t, "XY", a.Alias, "XY is canonical and must not become an alias")
	}
}

func TestCompileDefinitionsMixture(t *testing.T) {
	defs, err := compileString(t, `
		species: {
			HFC32: dimension: "HFC32"
			HFC125: dimension: "HFC125"
		}
		mixtures: HFC410a: constituents: {HFC32: 0.5, HFC125: 0.5}
	`)
	require.NoError(t, err)

	mix, ok := defs.Unit("HFC410a")
	require.True(t, ok)
	assert.Equal(t, "HFC410a", mix.Dimension)
	assert.True(t, mix.Species)

	require.Len(t, defs.Mixtures, 1)
	assert.Equal(t, "HFC410A_conversions", defs.Mixtures[0].Context)
	assert.Equal(t, map[string]string{"HFC32": "0.5", "HFC125": "0.5"}, defs.Mixtures[0].Constituents)

	ctx, ok := defs.Context("HFC410A_conversions")
	require.True(t, ok)
	assert.Equal(t, ir.SourceMixture, ctx.Source)
	assert.Equal(t, []ir.RuleSpec{
		{From: "HFC32", To: "HFC410a", Factor: "0.5"},
		{From: "HFC125", To: "HFC410a", Factor: "0.5"},
	}, ctx.Rules)

	assert.Contains(t, defs.AliasesOf("HFC410a"), "HFC410A")
}

func TestCompileDefinitionsMetric(t *testing.T) {
	defs, err := compileString(t, `
		species: {
			C: dimension: "carbon"
			CO2: definition: "12/44 * C"
			CH4: dimension: "methane"
			CH2Cl2: dimension: "CH2Cl2"
		}
		metrics: AR4GWP100: {
			description: "AR4"
			reference: "CO2"
			values: {CH4: 25, CH2Cl2: 8.7}
		}
	`)
	require.NoError(t, err)

	metric, ok := defs.Metric("AR4GWP100")
	require.True(t, ok)
	assert.Equal(t, "CO2", metric.Reference)
	assert.Equal(t, map[string]string{"CH4": "25", "CH2Cl2": "8.7"}, metric.Values)

	ctx, ok := defs.Context("AR4GWP100")
	require.True(t, ok)
	assert.Equal(t, ir.SourceMetric, ctx.Source)
	assert.Equal(t, "AR4", ctx.Description)
	assert.Equal(t, []ir.RuleSpec{
		{From: "CH4", To: "CO2", Factor: "25"},
		{From: "CH2Cl2", To: "CO2", Factor: "8.7"},
	}, ctx.Rules)
}

func TestCompileDefinitionsContext(t *testing.T) {
	defs, err := compileString(t, `
		species: {
			N: dimension: "nitrogen"
			NOx: dimension: "NOx"
		}
		contexts: NOx_conversions: {
			description: "NOx as NO2"
			rules: [{from: "NOx", to: "N", factor: "14/46"}]
		}
	`)
	require.NoError(t, err)

	ctx, ok := defs.Context("NOx_conversions")
	require.True(t, ok)
	assert.Equal(t, ir.SourceContext, ctx.Source)
	assert.Equal(t, []ir.RuleSpec{{From: "NOx", To: "N", Factor: "14/46"}}, ctx.Rules)
}

func TestCompileDefinitionsUnitForm(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"neither", `units: x: aliases: ["y"]`},
		{"both", `units: x: {dimension: "a", definition: "2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "units.x", ce.Field)
			assert.Contains(t, ce.Message, "exactly one of")
		})
	}
}

func TestCompileDefinitionsDuplicateAcrossSections(t *testing.T) {
	_, err := compileString(t, `
		units: C: dimension: "c"
		species: C: dimension: "carbon"
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"C" is already defined`)
}

func TestCompileDefinitionsAliasCollision(t *testing.T) {
	_, err := compileString(t, `
		units: {
			g: {dimension: "mass", aliases: ["x"]}
			s: {dimension: "time", aliases: ["x"]}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x" is already defined`)
}

func TestCompileDefinitionsMissingRuleField(t *testing.T) {
	_, err := compileString(t, `
		contexts: bad: rules: [{from: "a", to: "b"}]
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factor")
}

func TestCompileDefinitionsMissingReference(t *testing.T) {
	_, err := compileString(t, `
		metrics: bad: values: {a: 1}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference is required")
}

func TestCompileDefinitionsEmptyMixture(t *testing.T) {
	_, err := compileString(t, `
		mixtures: M: constituents: {}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one constituent")
}

func TestCompileDefinitionsEmptyDocument(t *testing.T) {
	defs, err := compileString(t, `{}`)
	require.NoError(t, err)
	assert.Empty(t, defs.Units)
	assert.Empty(t, defs.Contexts)
}

func TestCompileDefinitionsSorted(t *testing.T) {
	defs, err := compileString(t, `
		units: {
			s: dimension: "time"
			g: dimension: "mass"
			m: dimension: "length"
		}
	`)
	require.NoError(t, err)

	names := make([]string, len(defs.Units))
	for i, u := range defs.Units {
		names[i] = u.Name
	}
	assert.Equal(t, []string{"g", "m", "s"}, names)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "units.x", Message: "bad"}
	assert.Equal(t, "units.x: bad", err.Error())
}
