package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
)

// Backends accepted by database.backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Validate checks enum fields and the program id. Load calls it.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("database.backend must be %q or %q (got %q)", BackendSQLite, BackendMemory, c.Database.Backend)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	if _, err := c.ProgramID(); err != nil {
		return err
	}
	return nil
}

// ProgramID returns the configured program id, or the default one.
func (c *Config) ProgramID() (ir.Pubkey, error) {
	if c.Program.ID == "" {
		return journal.DefaultProgramID, nil
	}
	id, err := ir.ParsePubkey(c.Program.ID)
	if err != nil {
		return ir.Pubkey{}, fmt.Errorf("program.id: %w", err)
	}
	return id, nil
}

// SlogLevel maps log.level onto a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
}
