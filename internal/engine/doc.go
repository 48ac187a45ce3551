// Package engine is the execution environment the journal program runs in.
//
// The program itself only checks preconditions and writes accounts. The
// engine supplies everything around it:
//
//   - signature verification of the caller before the body runs
//   - one atomic ledger.Update per operation
//   - the timestamp handed to the operation (TimeSource)
//   - the operation id (IDGenerator, UUIDv7 in production)
//   - the logical seq stamping the operation log (Clock)
//
// # Operation Log
//
// Every decided operation is logged with its outcome: "OK" inside the same
// unit as its effects, or the rejection code in a separate write after the
// rollback. Errors that decide nothing (I/O, cancellation) are returned
// without a log entry.
//
// # Replay
//
// Replay feeds the log through the same apply path into a fresh in-memory
// ledger, using the recorded timestamps, and compares outcomes and the
// final account set. Execution depends only on logged inputs, so a healthy
// log always replays identically.
package engine
