// Package testutil provides deterministic stand-ins for the environment's
// time, id and key sources.
package testutil

import "sync"

// DefaultEpoch is the first timestamp a SteppingTime returns by default.
const DefaultEpoch = int64(1700000000)

// SteppingTime is a deterministic timestamp source for tests.
//
// Each call to Now returns the previous value plus Step, starting at Start.
// The same scenario therefore sees identical timestamps on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingTime struct {
	mu    sync.Mutex
	start int64
	step  int64
	calls int64
}

// NewSteppingTime creates a time source whose first Now returns start and
// which advances by step on every call. A zero start uses DefaultEpoch.
func NewSteppingTime(start, step int64) *SteppingTime {
	if start == 0 {
		start = DefaultEpoch
	}
	return &SteppingTime{start: start, step: step}
}

// Now returns the next timestamp in Unix seconds.
func (s *SteppingTime) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.start + s.calls*s.step
	s.calls++
	return v
}

// Reset rewinds the source so the next Now returns start again.
func (s *SteppingTime) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = 0
}
