package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

const failingScenario = `
name: failing
description: "expects a counter that was never funded"
actors: [alice]
steps:
  - op: initialize_counter
    owner: alice
`

func TestTestCommand_HarnessScenarios(t *testing.T) {
	newWorkspace(t)

	out, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ deletion_gap")
	assert.Contains(t, out, "✓ authorization")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Golden(t *testing.T) {
	newWorkspace(t)

	out, err := execute(t, "test", harnessScenarios, "--golden", harnessGolden, "--filter", "deletion_gap")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	newWorkspace(t)
	golden := filepath.Join(t.TempDir(), "golden")

	_, err := execute(t, "test", harnessScenarios, "--golden", golden, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(golden, "authorization.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "authorization.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	_, err = execute(t, "test", harnessScenarios, "--golden", golden)
	require.NoError(t, err)

	writeFile(t, filepath.Join(golden, "authorization.golden"), "{}")
	out, err := execute(t, "test", harnessScenarios, "--golden", golden, "--filter", "auth*")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_Failure(t *testing.T) {
	newWorkspace(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "failing.yaml"), failingScenario)
	writeFile(t, filepath.Join(dir, "broken.yml"), "name: [")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	out, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "E_TEST_FAILED", env.Error.Code)

	var result TestResult
	require.NoError(t, json.Unmarshal(mustJSON(t, env.Error.Details), &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Failed)
}

func TestTestCommand_Errors(t *testing.T) {
	newWorkspace(t)

	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "test", harnessScenarios, "--update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--update requires --golden")

	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
