// Package address derives deterministic storage addresses.
//
// An address is SHA-256 over the seeds, the program id and a fixed marker,
// and is only valid when the digest is NOT a point on the ed25519 curve, so
// that no private key can ever sign for it. FindAddress searches the
// disambiguator ("bump") space from 255 down to 0 and returns the first
// valid result, the canonical bump. The bump is persisted with the record
// and re-verified with CreateAddress on every later access.
//
// Seed layout used by the journal:
//
//	counter: ["counter", owner]
//	record:  ["journal", owner, u64le(sequence)]
//
// The namespace tag comes first so counter and record keys can never share
// a preimage.
package address
