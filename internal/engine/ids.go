package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces operation ids.
// Implemented by UUIDv7Generator (production), FixedGenerator and
// testutil.SequentialIDs (tests).
type IDGenerator interface {
	Generate() string
}

// TimeSource supplies the timestamp handed to each operation.
type TimeSource interface {
	// Now returns the current time in Unix seconds.
	Now() int64
}

// UUIDv7Generator generates time-sortable UUIDv7 operation ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids in order.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, to catch a test that submits more
// operations than it planned for.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SystemTime reads the wall clock.
type SystemTime struct{}

// Now implements TimeSource.
func (SystemTime) Now() int64 {
	return time.Now().Unix()
}

// FixedTime always returns the same timestamp.
type FixedTime int64

// Now implements TimeSource.
func (t FixedTime) Now() int64 {
	return int64(t)
}
