package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/journal"
)

// clearEnv pins every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "JOURNAL_BACKEND", "JOURNAL_DB", "JOURNAL_PROGRAM_ID",
		"JOURNAL_KEYPAIR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
database:
  backend: memory
  path: ignored.db
program:
  id: J8mEW9bBCMRQ9aGr3WHFv4fdRyj4pEHUHJzPyAaWGXrC
keypair:
  path: /tmp/alice.json
log:
  level: debug
  format: json
`

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, "journal.db", cfg.Database.Path)
	assert.Equal(t, "journal-keypair.json", cfg.Keypair.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	id, err := cfg.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, journal.DefaultProgramID, id)
}

func TestLoad_ValidYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeYAML(t, validYAML))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Database.Backend)
	assert.Equal(t, "/tmp/alice.json", cfg.Keypair.Path)
	assert.Equal(t, "json", cfg.Log.Format)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeYAML(t, validYAML))
	t.Setenv("JOURNAL_DB", "/var/lib/journal.db")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/journal.db", cfg.Database.Path)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/journal.yaml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeYAML(t, "database: [unclosed"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Backend: BackendSQLite, Path: "journal.db"},
			Log:      LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory backend needs no path", func(c *Config) { c.Database = DatabaseConfig{Backend: BackendMemory} }, ""},
		{"unknown backend", func(c *Config) { c.Database.Backend = "postgres" }, "database.backend"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad program id", func(c *Config) { c.Program.ID = "not-base58-0OIl" }, "program.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
