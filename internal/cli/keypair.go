package cli

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/ir"
)

// LoadKeypair reads an ed25519 keypair file. Two encodings are accepted:
// a JSON array of the 64 private key bytes, or the same bytes in base58.
func LoadKeypair(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var raw []byte
	if len(data) > 0 && data[0] == '[' {
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return nil, fmt.Errorf("keypair %s: %w", path, err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("keypair %s: byte %d out of range: %d", path, i, v)
			}
			raw[i] = byte(v)
		}
	} else {
		raw, err = base58.Decode(string(data))
		if err != nil {
			return nil, fmt.Errorf("keypair %s: %w", path, err)
		}
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair %s: got %d bytes, want %d", path, len(raw), ed25519.PrivateKeySize)
	}
	key := ed25519.PrivateKey(raw)
	// The public half is stored, so check it matches the seed.
	if !bytes.Equal(ed25519.NewKeyFromSeed(key.Seed()), key) {
		return nil, fmt.Errorf("keypair %s: public key does not match seed", path)
	}
	return key, nil
}

// SaveKeypair writes key as a JSON byte array, readable only by the owner.
func SaveKeypair(path string, key ed25519.PrivateKey) error {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Force bool
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signer keypair",
		Long: `Generate a new ed25519 keypair and write it to the keypair path
(--keypair, $JOURNAL_KEYPAIR or keypair.path). An existing file is only
replaced with --force.

Examples:
  journal keygen
  journal keygen --keypair ./alice.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing keypair file")
	return cmd
}

// KeygenResult is the keygen command's output.
type KeygenResult struct {
	Path   string    `json:"path"`
	Pubkey ir.Pubkey `json:"pubkey"`
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	path := opts.Config.Keypair.Path
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return NewExitError(ExitCommandError, fmt.Sprintf("keypair %s already exists (use --force to replace it)", path))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return WrapExitError(ExitCommandError, "failed to check keypair path", err)
	}

	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate key", err)
	}
	if err := SaveKeypair(path, key); err != nil {
		return WrapExitError(ExitCommandError, "failed to write keypair", err)
	}

	pk, err := ir.PubkeyFromEd25519(pub)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid public key", err)
	}

	res := KeygenResult{Path: path, Pubkey: pk}
	return newFormatter(opts.RootOptions, cmd).Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote keypair to %s\n", path)
		fmt.Fprintf(w, "pubkey: %s\n", pk)
	})
}
