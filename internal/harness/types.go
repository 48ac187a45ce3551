package harness

// TraceEvent is one executed step as it appears in a trace.
// Keys are replaced by actor names.
type TraceEvent struct {
	Seq      int64          `json:"seq"`
	ID       string         `json:"id"`
	Op       string         `json:"op"`
	Signer   string         `json:"signer"`
	Owner    string         `json:"owner"`
	Args     map[string]any `json:"args,omitempty"`
	Outcome  string         `json:"outcome"`
	Sequence *uint64        `json:"sequence,omitempty"` // Record sequence a committed record op touched
	Logs     []string       `json:"logs,omitempty"`     // Program logs of committed ops
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion matched and the
	// operation log replayed identically.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcomes counts trace events per outcome.
func (r *Result) Outcomes() map[string]int {
	counts := make(map[string]int)
	for _, ev := range r.Trace {
		counts[ev.Outcome]++
	}
	return counts
}
