package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikapfl/openscm-units/internal/compiler"
)

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(content), 0644))
	return dir
}

const invalidDefs = `package openscm

units: {
	m: dimension: "length"
	furlong: definition: "220 * yard"
}

species: {
	C: dimension: "carbon"
	HFC999: dimension: "HFC999"
}

metrics: BADGWP: {
	reference: "CO2"
	values: C: 3
}
`

func TestValidateCommandValid(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, testDefs)
	require.NoError(t, err)
	assert.Equal(t, "✓ Definitions valid\n", out)
}

func TestValidateCommandCollectsAllErrors(t *testing.T) {
	dir := writeDefs(t, invalidDefs)

	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make(map[string]bool)
	for _, e := range resp.Data.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes[compiler.ErrUnknownReference], "errors: %v", resp.Data.Errors)
	assert.True(t, codes[compiler.ErrMetricReference], "errors: %v", resp.Data.Errors)
}

func TestValidateCommandTextListsErrors(t *testing.T) {
	dir := writeDefs(t, invalidDefs)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrUnknownReference)
	assert.Contains(t, out, "yard")
}

func TestValidateCommandSchemaViolation(t *testing.T) {
	dir := writeDefs(t, `package openscm

mixtures: HFC999: constituents: {HFC32: 1.5}
`)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Contains(t, out, "Error [E004]")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommandMissingDir(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, "/nonexistent/defs")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateCommandEmptyDir(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "Error [E003]")
}
