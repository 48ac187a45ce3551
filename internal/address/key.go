package address

import (
	"fmt"

	"github.com/roach88/journal/internal/ir"
)

// Namespace tags. Distinct tags keep counter and record addresses apart.
const (
	TagCounter = "counter"
	TagRecord  = "journal"
)

// Key is the logical identity of a stored item: a namespace tag, the
// owning identity and optional extra key bytes.
type Key struct {
	Tag   string
	Owner ir.Pubkey
	Extra []byte
}

// CounterKey is the key of an owner's counter.
func CounterKey(owner ir.Pubkey) Key {
	return Key{Tag: TagCounter, Owner: owner}
}

// RecordKey is the key of the record with the given sequence number.
func RecordKey(owner ir.Pubkey, sequence uint64) Key {
	return Key{Tag: TagRecord, Owner: owner, Extra: Uint64Seed(sequence)}
}

// Seeds returns the seed list for k, without bump.
func (k Key) Seeds() [][]byte {
	seeds := [][]byte{[]byte(k.Tag), k.Owner[:]}
	if len(k.Extra) > 0 {
		seeds = append(seeds, k.Extra)
	}
	return seeds
}

// Derive maps k to its canonical address and bump.
func Derive(program ir.Pubkey, k Key) (ir.Pubkey, uint8, error) {
	addr, bump, err := FindAddress(program, k.Seeds()...)
	if err != nil {
		return ir.Pubkey{}, 0, fmt.Errorf("derive %s address for %s: %w", k.Tag, k.Owner, err)
	}
	return addr, bump, nil
}

// Verify re-checks a persisted bump against the address it was stored at.
func Verify(program ir.Pubkey, k Key, addr ir.Pubkey, bump uint8) error {
	return VerifyAddress(program, addr, bump, k.Seeds()...)
}
