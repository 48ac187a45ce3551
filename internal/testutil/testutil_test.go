package testutil

import (
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteppingTime_Advances(t *testing.T) {
	ts := NewSteppingTime(0, 10)

	assert.Equal(t, DefaultEpoch, ts.Now())
	assert.Equal(t, DefaultEpoch+10, ts.Now())
	assert.Equal(t, DefaultEpoch+20, ts.Now())
}

func TestSteppingTime_ZeroStepIsFixed(t *testing.T) {
	ts := NewSteppingTime(42, 0)
	assert.Equal(t, int64(42), ts.Now())
	assert.Equal(t, int64(42), ts.Now())
}

func TestSteppingTime_Reset(t *testing.T) {
	ts := NewSteppingTime(100, 1)
	ts.Now()
	ts.Now()

	ts.Reset()
	assert.Equal(t, int64(100), ts.Now())
}

func TestSteppingTime_ThreadSafe(t *testing.T) {
	ts := NewSteppingTime(1, 1)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				v := ts.Now()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "op-0001", ids.Generate())
	assert.Equal(t, "op-0002", ids.Generate())

	custom := NewSequentialIDs("scenario")
	assert.Equal(t, "scenario-0001", custom.Generate())
}

func TestKeypair_Stable(t *testing.T) {
	a1 := Keypair("alice")
	a2 := Keypair("alice")
	require.Equal(t, a1, a2)
	assert.NotEqual(t, Identity("alice"), Identity("bob"))

	sig := ed25519.Sign(a1, []byte("msg"))
	assert.True(t, ed25519.Verify(Identity("alice").Ed25519(), []byte("msg"), sig))
}
