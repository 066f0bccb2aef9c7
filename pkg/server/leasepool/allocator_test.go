package leasepool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlease/idleased/pkg/clock"
)

func TestAllocatorExhaustion(t *testing.T) {
	clk := clock.NewFake(0)
	alloc, err := NewAllocator(1, 3, 2000, clk)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		lease, err := alloc.AcquireNext()
		require.NoError(t, err)
		require.False(t, seen[lease.ID], "id %d issued twice", lease.ID)
		seen[lease.ID] = true
	}

	_, err = alloc.AcquireNext()
	require.ErrorIs(t, err, ErrNoIDAvailable)
}

// The end-to-end timeline: three ids, 2s leases, renewal at 1s, expiry
// observed at 2.5s first by a heartbeat and then by an acquire sweep.
func TestAllocatorTimeline(t *testing.T) {
	clk := clock.NewFake(0)
	alloc, err := NewAllocator(1, 3, 2000, clk)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		lease, err := alloc.AcquireNext()
		require.NoError(t, err)
		assert.Equal(t, want, lease.ID)
		assert.Equal(t, int64(2000), lease.Exp)
	}
	_, err = alloc.AcquireNext()
	require.ErrorIs(t, err, ErrNoIDAvailable)

	clk.Set(1000)
	lease, err := alloc.Heartbeat(1)
	require.NoError(t, err)
	assert.Equal(t, Lease{ID: 1, Exp: 3000}, lease)

	clk.Set(2500)
	_, err = alloc.Heartbeat(2)
	require.ErrorIs(t, err, ErrIDExpired)

	// Id 2 was reclaimed first, then the acquire sweep reclaims id 3 behind
	// it, so 2 is reissued (1 is still live until 3000).
	lease, err = alloc.AcquireNext()
	require.NoError(t, err)
	assert.Equal(t, Lease{ID: 2, Exp: 4500}, lease)

	stats := alloc.Stats()
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2, stats.Leased)
	assert.Equal(t, uint64(2), stats.Reclaimed)
}

func TestAllocatorHeartbeatUnknown(t *testing.T) {
	clk := clock.NewFake(0)
	alloc, err := NewAllocator(1, 3, 2000, clk)
	require.NoError(t, err)

	_, err = alloc.Heartbeat(1)
	require.ErrorIs(t, err, ErrIDNonexistent)

	stats := alloc.Stats()
	assert.Equal(t, 3, stats.Available)
	assert.Equal(t, 0, stats.Leased)
}

func TestAllocatorStats(t *testing.T) {
	clk := clock.NewFake(0)
	alloc, err := NewAllocator(10, 19, 5000, clk)
	require.NoError(t, err)

	stats := alloc.Stats()
	assert.Equal(t, 10, stats.Min)
	assert.Equal(t, 19, stats.Max)
	assert.Equal(t, int64(5000), stats.TimeoutMs)
	assert.Equal(t, 10, stats.Available)

	_, err = alloc.AcquireNext()
	require.NoError(t, err)
	stats = alloc.Stats()
	assert.Equal(t, 9, stats.Available)
	assert.Equal(t, 1, stats.Leased)
}

// No id may be issued to two callers at once, no matter how the acquires
// interleave.
func TestAllocatorConcurrentAcquire(t *testing.T) {
	const workers = 8
	const perWorker = 32

	clk := clock.NewFake(0)
	alloc, err := NewAllocator(1, workers*perWorker, 60000, clk)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := make(map[int]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				lease, err := alloc.AcquireNext()
				if err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				mu.Lock()
				if seen[lease.ID] {
					t.Errorf("id %d issued twice", lease.ID)
				}
				seen[lease.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	_, err = alloc.AcquireNext()
	require.ErrorIs(t, err, ErrNoIDAvailable)
}
