package cli

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/config"
	"github.com/roach88/journal/internal/engine"
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
	"github.com/roach88/journal/internal/store"
)

// session is an open ledger with an engine running the configured
// program on it.
type session struct {
	ledger  ledger.Ledger
	engine  *engine.Engine
	program *journal.Program
	close   func() error
}

// openSession opens the configured backend. The memory backend starts
// empty on every run and is only useful for trying commands out.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg := opts.Config
	pid, err := cfg.ProgramID()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid program id", err)
	}
	p := journal.New(pid)

	s := &session{program: p, close: func() error { return nil }}
	switch cfg.Database.Backend {
	case config.BackendMemory:
		s.ledger = ledger.NewMemory()
	default:
		opts.Logger.Debug("opening database", "path", cfg.Database.Path)
		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.ledger = st
		s.close = st.Close
	}

	s.engine, err = engine.New(ctx, s.ledger, p, engine.WithLogger(opts.Logger))
	if err != nil {
		_ = s.close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return s, nil
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil {
			opts.Logger.Error("error closing database", "error", closeErr)
		}
	}()
	return fn(ctx, s)
}

// signer loads the configured keypair.
func signer(opts *RootOptions) (ed25519.PrivateKey, ir.Pubkey, error) {
	key, err := LoadKeypair(opts.Config.Keypair.Path)
	if err != nil {
		return nil, ir.Pubkey{}, WrapExitError(ExitCommandError, "failed to load keypair", err)
	}
	pk, err := ir.PubkeyFromEd25519(key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, ir.Pubkey{}, WrapExitError(ExitCommandError, "invalid keypair", err)
	}
	return key, pk, nil
}

// resolveOwner parses an --owner flag, defaulting to fallback.
func resolveOwner(flag string, fallback ir.Pubkey) (ir.Pubkey, error) {
	if flag == "" {
		return fallback, nil
	}
	pk, err := ir.ParsePubkey(flag)
	if err != nil {
		return ir.Pubkey{}, WrapExitError(ExitCommandError, "invalid --owner", err)
	}
	return pk, nil
}

// ownerOrSigner resolves --owner without requiring a keypair when the
// flag is given.
func ownerOrSigner(flag string, opts *RootOptions) (ir.Pubkey, error) {
	if flag != "" {
		return resolveOwner(flag, ir.Pubkey{})
	}
	_, pk, err := signer(opts)
	if err != nil {
		return ir.Pubkey{}, fmt.Errorf("%w (or pass --owner)", err)
	}
	return pk, nil
}
