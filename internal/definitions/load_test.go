package definitions

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "units.cue", `package openscm

units: g: dimension: "mass"
species: C: dimension: "carbon"
species: CO2: definition: "12/44 * C"
`)

	v, n, err := LoadDir(cuecontext.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	def, err := v.LookupPath(cue.ParsePath("species.CO2.definition")).String()
	require.NoError(t, err)
	assert.Equal(t, "12/44 * C", def)
}

func TestLoadDirAppliesSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `package openscm

mixtures: R999: constituents: {HFC32: 1.5}
`)

	_, _, err := LoadDir(cuecontext.New(), dir)
	require.Error(t, err)
}

func TestLoadDirErrors(t *testing.T) {
	_, _, err := LoadDir(cuecontext.New(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, _, err = LoadDir(cuecontext.New(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}

func TestSchema(t *testing.T) {
	v, err := Schema(cuecontext.New())
	require.NoError(t, err)
	assert.True(t, v.LookupPath(cue.ParsePath("#Rule")).Exists())
}
