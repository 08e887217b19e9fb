package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikapfl/openscm-units/internal/ir"
)

func TestCompileCommandEmbedded(t *testing.T) {
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "✓ Compiled "), out)
	assert.Contains(t, out, "Fingerprint: ")
}

func TestCompileCommandStatsMatchDefinitions(t *testing.T) {
	loaded, err := LoadDefinitions(testDefs)
	require.NoError(t, err)

	cmd := NewCompileCommand(&RootOptions{Format: "json"})
	out, _, err := execute(t, cmd, testDefs)
	require.NoError(t, err)

	var resp struct {
		Data CompilationStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, len(loaded.Definitions.Units), resp.Data.Units)
	assert.Equal(t, len(loaded.Definitions.Aliases), resp.Data.Aliases)
	assert.Equal(t, 2, resp.Data.Contexts)
	assert.Equal(t, 1, resp.Data.Metrics)
	assert.Equal(t, 0, resp.Data.Mixtures)
	assert.Equal(t, ir.MustFingerprint(loaded.Definitions), resp.Data.Fingerprint)
}

func TestCompileCommandUsesDefsFlag(t *testing.T) {
	cmd := NewCompileCommand(&RootOptions{Format: "json", Defs: testDefs})
	out, _, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, out, `"metrics":1`)
}

func TestCompileCommandWritesCanonicalIR(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "defs.json")

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, testDefs, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote canonical IR to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"aliases":[`), string(data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "contexts")
	assert.Contains(t, decoded, "units")
}

func TestCompileCommandInvalidDefinitions(t *testing.T) {
	dir := writeDefs(t, invalidDefs)

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
}

func TestCompileCommandMissingDir(t *testing.T) {
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	_, _, err := execute(t, cmd, "/nonexistent/defs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
