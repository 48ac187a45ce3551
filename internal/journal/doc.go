// Package journal is the journal program: per-owner records stored at
// derived addresses.
//
// Each owner has one OwnerCounter, created by InitializeCounter, whose
// next_sequence is the sequence number the next CreateRecord assigns. A
// JournalRecord lives at the address derived from (owner, sequence). Records
// are updated in place and deleted outright; a deleted sequence number is
// never handed out again.
//
// Every operation runs against a ledger.Tx supplied by the caller inside
// one atomic unit. Operations check every precondition before their first
// write, and the surrounding ledger.Update discards writes when any
// operation returns an error.
package journal
