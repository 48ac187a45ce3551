package cli

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/testutil"
)

func TestKeypair_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alice.json")
	key := testutil.Keypair("alice")

	require.NoError(t, SaveKeypair(path, key))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var ints []int
	require.NoError(t, json.Unmarshal(data, &ints))
	assert.Len(t, ints, ed25519.PrivateKeySize)

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))
}

func TestKeypair_LoadBase58(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bob.txt")
	key := testutil.Keypair("bob")
	writeFile(t, path, base58.Encode(key)+"\n")

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))
}

func TestKeypair_LoadInvalid(t *testing.T) {
	mismatched := append([]byte{}, testutil.Keypair("alice")...)
	copy(mismatched[32:], testutil.Keypair("bob")[32:])

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"short array", "[1,2,3]", "got 3 bytes"},
		{"out of range", "[256]", "out of range"},
		{"bad json", "[1,2", "keypair"},
		{"bad base58", "0OIl", "keypair"},
		{"public half mismatch", base58.Encode(mismatched), "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "key")
			writeFile(t, path, tt.content)
			_, err := LoadKeypair(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKeygen(t *testing.T) {
	w := newWorkspace(t)
	path := filepath.Join(w.dir, "new.json")

	out, err := execute(t, "--keypair", path, "--format", "json", "keygen")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	var res KeygenResult
	env.decode(t, &res)
	assert.Equal(t, path, res.Path)

	key, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(key.Public().(ed25519.PublicKey), res.Pubkey[:]))

	_, err = execute(t, "--keypair", path, "keygen")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "--keypair", path, "keygen", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote keypair to "+path)

	replaced, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.False(t, key.Equal(replaced))
}
