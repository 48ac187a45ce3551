package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/roach88/journal/internal/ir"
)

// Keypair derives a stable ed25519 key from name, so scenarios can refer
// to actors ("alice", "bob") instead of raw keys.
func Keypair(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte("journal/testutil/keypair/" + name))
	return ed25519.NewKeyFromSeed(seed[:])
}

// Identity returns the public identity of Keypair(name).
func Identity(name string) ir.Pubkey {
	var pk ir.Pubkey
	copy(pk[:], Keypair(name).Public().(ed25519.PublicKey))
	return pk
}
