package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRun_Passes(t *testing.T) {
	scenario := &Scenario{
		Name: "ch4",
		Steps: []Step{
			{Convert: &Conversion{From: "CH4", To: "C"}, Expect: &Expect{Error: "DIMENSIONALITY"}},
			{Enter: "CH4_conversions"},
			{Convert: &Conversion{Value: ptr(16.0), From: "CH4", To: "C"}, Expect: &Expect{Magnitude: ptr(12.0)}},
			{Exit: true},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)

	enter := result.Trace[1]
	assert.Equal(t, EventEnter, enter.Type)
	assert.Equal(t, "scope-1", enter.Scope)
	assert.Equal(t, 1, enter.Depth)

	conv := result.Trace[2]
	assert.Equal(t, "16", conv.Value)
	assert.Equal(t, "12", conv.Magnitude)
	assert.Empty(t, conv.Error)

	assert.Equal(t, EventExit, result.Trace[3].Type)
	assert.Equal(t, 0, result.Trace[3].Depth)
}

func TestRun_SequenceNumbers(t *testing.T) {
	scenario := &Scenario{
		Name: "seq",
		Steps: []Step{
			{Enter: "AR4GWP100"},
			{Enter: "SARGWP100"},
			{Exit: true},
			{Exit: true},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	for i, e := range result.Trace {
		assert.Equal(t, int64(i+1), e.Seq)
	}
	assert.Equal(t, "scope-2", result.Trace[1].Scope)
}

func TestRun_WrongMagnitudeFails(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong",
		Steps: []Step{
			{Convert: &Conversion{From: "h", To: "min"}, Expect: &Expect{Magnitude: ptr(61.0)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected magnitude 61")
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name: "unexpected",
		Steps: []Step{
			{Convert: &Conversion{From: "CO2", To: "N"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "DIMENSIONALITY", result.Trace[0].Error)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_WrongErrorCodeFails(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong_code",
		Steps: []Step{
			{Convert: &Conversion{From: "furlong", To: "m"}, Expect: &Expect{Error: "DIMENSIONALITY"}},
			{Enter: "CH4_conversions", Expect: &Expect{Error: "UNKNOWN_CONTEXT"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected error DIMENSIONALITY, got UNKNOWN_UNIT")
	assert.Contains(t, result.Errors[1], "expected error UNKNOWN_CONTEXT, got success")
}

func TestRun_FailedEnterKeepsScope(t *testing.T) {
	scenario := &Scenario{
		Name: "atomic",
		Steps: []Step{
			{Enter: "AR4GWP100"},
			{Enter: "nope", Expect: &Expect{Error: "UNKNOWN_CONTEXT"}},
			{Convert: &Conversion{From: "CH4", To: "CO2"}, Expect: &Expect{Magnitude: ptr(25.0)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Trace[1].Depth)
	assert.Empty(t, result.Trace[1].Scope)
}

func TestRun_BadDefinitionsDirectory(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Definitions: t.TempDir(),
		Steps:       []Step{{Exit: true}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load definitions")
}
