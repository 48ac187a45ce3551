// Package harness runs journal scenarios: YAML files that name a few
// actors, submit a sequence of operations through the engine, and assert
// on outcomes and final ledger state.
//
// # Scenario Format
//
//	name: deletion_gap
//	description: "Deleted sequence numbers are never reused"
//	actors: [alice]
//	steps:
//	  - op: airdrop
//	    owner: alice
//	    lamports: 100000000
//	  - op: initialize_counter
//	    owner: alice
//	  - op: create_record
//	    owner: alice
//	    title: First
//	    body: hello
//	    expect: { outcome: OK, sequence: 0 }
//	  - op: update_record
//	    owner: alice
//	    sequence: 0
//	    signer: bob
//	    expect: { outcome: UNAUTHORIZED }
//	assertions:
//	  - type: counter
//	    owner: alice
//	    next_sequence: 1
//	  - type: records
//	    owner: alice
//	    sequences: [0]
//
// The signer defaults to the owner. Actor keys come from
// testutil.Keypair, so the same name always signs with the same key.
//
// # Assertion Types
//
//   - counter: the owner's counter exists with next_sequence
//   - record: a record exists, optionally with title and body
//   - record_absent: no record at (owner, sequence)
//   - records: ListRecords returns exactly these sequences
//   - balance: an actor's plain balance in lamports
//   - outcome_count: how many steps ended with an outcome
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory ledger, sequential operation ids and a
// stepping time source, and replays its own operation log at the end.
// Traces name actors instead of keys, so golden files stay readable.
package harness
