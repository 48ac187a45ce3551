// Package store provides the SQLite-backed durable ledger.
//
// The store keeps two tables:
//   - accounts: address -> (owner, lamports, data)
//   - operations: the append-only operation log, keyed by logical seq
//
// Store implements ledger.Ledger. Update maps onto one SQL transaction, so
// an operation's account writes and its log entry commit together or not
// at all.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single connection: one writer, no SQLITE_BUSY between our own txs
//
// Instruction arguments are stored as RFC 8785 canonical JSON, the same
// bytes the signer signed.
package store
