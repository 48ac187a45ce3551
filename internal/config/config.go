// Package config loads journal settings from a YAML file and the environment.
package config

// Config is the root configuration for the journal CLI.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Program  ProgramConfig  `yaml:"program"`
	Keypair  KeypairConfig  `yaml:"keypair"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the ledger backend.
type DatabaseConfig struct {
	Backend string `yaml:"backend" env:"JOURNAL_BACKEND" env-default:"sqlite"`
	Path    string `yaml:"path"    env:"JOURNAL_DB"      env-default:"journal.db"`
}

// ProgramConfig holds the program id instructions are addressed to.
// An empty ID means journal.DefaultProgramID.
type ProgramConfig struct {
	ID string `yaml:"id" env:"JOURNAL_PROGRAM_ID"`
}

// KeypairConfig points at the signer keypair file.
type KeypairConfig struct {
	Path string `yaml:"path" env:"JOURNAL_KEYPAIR" env-default:"journal-keypair.json"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
