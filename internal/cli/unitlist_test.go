package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUnits(t *testing.T, out string) map[string]UnitInfo {
	t.Helper()
	var resp struct {
		Data []UnitInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	byName := make(map[string]UnitInfo, len(resp.Data))
	for _, u := range resp.Data {
		byName[u.Name] = u
	}
	return byName
}

func TestUnitsCommandListsAliases(t *testing.T) {
	cmd := NewUnitsCommand(&RootOptions{Format: "json", Defs: testDefs})
	out, _, err := execute(t, cmd)
	require.NoError(t, err)

	units := decodeUnits(t, out)
	require.Contains(t, units, "CH4")
	assert.True(t, units["CH4"].Species)
	assert.Equal(t, "methane", units["CH4"].Dimension)
	assert.Contains(t, units["CH4"].Aliases, "methane")

	require.Contains(t, units, "g")
	assert.False(t, units["g"].Species)
	assert.Equal(t, "12/44 * C", units["CO2"].Definition)
}

func TestUnitsCommandSpeciesOnly(t *testing.T) {
	cmd := NewUnitsCommand(&RootOptions{Format: "json", Defs: testDefs})
	out, _, err := execute(t, cmd, "--species")
	require.NoError(t, err)

	units := decodeUnits(t, out)
	assert.Contains(t, units, "CO2")
	assert.Contains(t, units, "tCH4")
	assert.NotContains(t, units, "g")
	assert.NotContains(t, units, "t")
}

func TestUnitsCommandText(t *testing.T) {
	cmd := NewUnitsCommand(&RootOptions{Format: "text", Defs: testDefs})
	out, _, err := execute(t, cmd)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "[carbon]")
	assert.Contains(t, out, "12/44 * C")
}
