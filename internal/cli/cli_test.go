package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/testutil"
)

// workspace is a temp dir holding a database and named keypairs.
type workspace struct {
	dir string
	db  string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "JOURNAL_BACKEND", "JOURNAL_DB", "JOURNAL_PROGRAM_ID",
		"JOURNAL_KEYPAIR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	return &workspace{dir: dir, db: filepath.Join(dir, "journal.db")}
}

// keypair writes the deterministic test key for name and returns its path.
func (w *workspace) keypair(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(w.dir, name+".json")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	require.NoError(t, SaveKeypair(path, testutil.Keypair(name)))
	return path
}

// run executes the root command as actor against the workspace database.
func (w *workspace) run(t *testing.T, actor string, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--db", w.db, "--keypair", w.keypair(t, actor)}, args...)
	return execute(t, full...)
}

// runJSON is run with --format json, decoding the envelope.
func (w *workspace) runJSON(t *testing.T, actor string, args ...string) (envelope, error) {
	t.Helper()
	out, err := w.run(t, actor, append([]string{"--format", "json"}, args...)...)
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), "output: %s", out)
	return env, err
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func (e envelope) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}
