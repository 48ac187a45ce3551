package ir

// OutcomeOK is the outcome recorded for a committed operation.
// Rejected operations record the error code instead.
const OutcomeOK = "OK"

// Operation is one entry of the operation log.
type Operation struct {
	ID          string      `json:"id"`  // UUIDv7
	Seq         int64       `json:"seq"` // Logical clock, strictly increasing
	Instruction Instruction `json:"instruction"`
	Signature   []byte      `json:"signature"`
	ExecutedAt  int64       `json:"executed_at"` // Unix seconds handed to the program
	Outcome     string      `json:"outcome"`
}

// Committed reports whether the operation's effects were persisted.
func (op Operation) Committed() bool {
	return op.Outcome == OutcomeOK
}
