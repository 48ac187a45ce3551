package ir

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeySize is the width of an identity or derived address in bytes.
const PubkeySize = 32

// Pubkey is a fixed-width identity: an ed25519 public key for owners,
// or a derived off-curve address for stored records.
type Pubkey [PubkeySize]byte

// ZeroPubkey is the all-zero key. It owns plain balance accounts.
var ZeroPubkey Pubkey

// ParsePubkey decodes a base58 string into a Pubkey.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("parse pubkey %q: %w", s, err)
	}
	if len(raw) != PubkeySize {
		return pk, fmt.Errorf("parse pubkey %q: got %d bytes, want %d", s, len(raw), PubkeySize)
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePubkey is like ParsePubkey but panics on error.
// Use only for constants and in tests.
func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromEd25519 converts an ed25519 public key.
func PubkeyFromEd25519(pub ed25519.PublicKey) (Pubkey, error) {
	var pk Pubkey
	if len(pub) != ed25519.PublicKeySize {
		return pk, fmt.Errorf("ed25519 public key: got %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	copy(pk[:], pub)
	return pk, nil
}

// String returns the base58 form.
func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the key bytes.
func (pk Pubkey) Bytes() []byte {
	b := make([]byte, PubkeySize)
	copy(b, pk[:])
	return b
}

// IsZero reports whether pk is the all-zero key.
func (pk Pubkey) IsZero() bool {
	return pk == ZeroPubkey
}

// Ed25519 returns the key as an ed25519 public key for signature checks.
func (pk Pubkey) Ed25519() ed25519.PublicKey {
	return ed25519.PublicKey(pk.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (pk Pubkey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
