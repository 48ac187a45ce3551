package engine

import "sync/atomic"

// Clock is the logical clock stamping every logged operation.
//
// Operations are ordered by seq, never by their timestamp: two operations
// may share a wall-clock second but never a seq.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// The Engine still holds its own lock around Next and the ledger write so
// that log order matches seq order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume after the last logged operation.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
