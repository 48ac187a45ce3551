package store

import (
	"fmt"

	"github.com/roach88/journal/internal/ir"
)

// SQLite integers are signed 64-bit. Lamports are u64, so they are stored
// bit-for-bit and reinterpreted on the way out. Nothing orders by lamports.
func lamportsToSQL(v uint64) int64   { return int64(v) }
func lamportsFromSQL(v int64) uint64 { return uint64(v) }

// pubkeyFromColumn converts a BLOB column into a Pubkey.
func pubkeyFromColumn(col string, b []byte) (ir.Pubkey, error) {
	var pk ir.Pubkey
	if len(b) != ir.PubkeySize {
		return pk, fmt.Errorf("column %s: got %d bytes, want %d", col, len(b), ir.PubkeySize)
	}
	copy(pk[:], b)
	return pk, nil
}

// marshalInstruction converts an instruction to canonical JSON TEXT for storage.
// These are the same bytes covered by the signature.
func marshalInstruction(in ir.Instruction) (string, error) {
	data, err := in.CanonicalArgs()
	if err != nil {
		return "", fmt.Errorf("marshal instruction: %w", err)
	}
	return string(data), nil
}

// unmarshalInstruction parses canonical JSON TEXT back into an instruction.
func unmarshalInstruction(data string) (ir.Instruction, error) {
	in, err := ir.ParseInstruction([]byte(data))
	if err != nil {
		return ir.Instruction{}, fmt.Errorf("unmarshal instruction: %w", err)
	}
	return in, nil
}
