// Package ir provides the shared representation types for the journal.
//
// This package contains type definitions and the canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Identities are fixed-width 32-byte keys, rendered as base58
//   - Sequence numbers are uint64 end to end, never floats
//   - Signing payloads and logged arguments use RFC 8785 canonical JSON
//   - All JSON tags use snake_case
package ir
