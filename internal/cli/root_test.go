package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"convert", "contexts", "units", "metric", "validate", "compile", "batch", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandRejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "--format", "yaml", "contexts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestRootCommandVerboseLogsContextActivations(t *testing.T) {
	out, errOut, err := execute(t, NewRootCommand(),
		"--verbose", "--defs", testDefs,
		"convert", "1", "CH4", "C", "--context", "CH4_conversions")
	require.NoError(t, err)

	assert.Equal(t, "1 CH4 = 0.75 C\n", out)
	assert.Contains(t, errOut, "context entered")
	assert.Contains(t, errOut, "CH4_conversions")
}

func TestRootCommandQuietByDefault(t *testing.T) {
	_, errOut, err := execute(t, NewRootCommand(),
		"--defs", testDefs,
		"convert", "1", "CH4", "C", "--context", "CH4_conversions")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
