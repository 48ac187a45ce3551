package address

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/roach88/journal/internal/ir"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included.
	MaxSeeds = 16

	// MaxSeedLen is the maximum length of a single seed in bytes.
	MaxSeedLen = 32

	// marker is appended after the program id in every preimage.
	marker = "ProgramDerivedAddress"
)

var (
	// ErrOnCurve means the digest is a valid curve point and cannot be
	// used as a derived address. Try another bump.
	ErrOnCurve = errors.New("address: derived digest lies on the ed25519 curve")

	// ErrMaxSeedLength means one seed is longer than MaxSeedLen.
	ErrMaxSeedLength = errors.New("address: seed exceeds maximum length")

	// ErrTooManySeeds means more than MaxSeeds seeds were given.
	ErrTooManySeeds = errors.New("address: too many seeds")

	// ErrNoValidBump means no bump in [0, 255] produced an off-curve address.
	ErrNoValidBump = errors.New("address: unable to find a valid bump")

	// ErrWrongAddress means a bump does not reproduce the expected address.
	ErrWrongAddress = errors.New("address: bump does not reproduce address")
)

// CreateAddress hashes seeds (bump included, as the last seed) with the
// program id. Returns ErrOnCurve if the result is not a usable address.
func CreateAddress(program ir.Pubkey, seeds ...[]byte) (ir.Pubkey, error) {
	var addr ir.Pubkey
	if len(seeds) > MaxSeeds {
		return addr, fmt.Errorf("%w: %d > %d", ErrTooManySeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return addr, fmt.Errorf("%w: seed %d has %d bytes", ErrMaxSeedLength, i, len(seed))
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(marker))
	copy(addr[:], h.Sum(nil))

	if isOnCurve(addr) {
		return ir.Pubkey{}, ErrOnCurve
	}
	return addr, nil
}

// FindAddress returns the address for the first bump, counting down from
// 255, that lands off the curve.
func FindAddress(program ir.Pubkey, seeds ...[]byte) (ir.Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return ir.Pubkey{}, 0, fmt.Errorf("%w: %d seeds leave no room for a bump", ErrTooManySeeds, len(seeds))
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateAddress(program, withBump...)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return ir.Pubkey{}, 0, err
		}
		return addr, uint8(bump), nil
	}
	return ir.Pubkey{}, 0, ErrNoValidBump
}

// VerifyAddress checks that seeds plus bump reproduce want exactly.
// Any failure, including an on-curve result, is reported as ErrWrongAddress.
func VerifyAddress(program ir.Pubkey, want ir.Pubkey, bump uint8, seeds ...[]byte) error {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	got, err := CreateAddress(program, withBump...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongAddress, err)
	}
	if got != want {
		return fmt.Errorf("%w: bump %d yields %s, want %s", ErrWrongAddress, bump, got, want)
	}
	return nil
}

// isOnCurve reports whether b decodes as a point on edwards25519.
func isOnCurve(b ir.Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}

// Uint64Seed encodes n as the little-endian seed used for sequence numbers.
func Uint64Seed(n uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), n)
}
