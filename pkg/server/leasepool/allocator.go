package leasepool

import (
	"sync"

	"github.com/idlease/idleased/pkg/clock"
)

// Lease is a successfully issued or renewed claim on an id, valid until Exp
// (ms since the Unix epoch).
type Lease struct {
	ID  int
	Exp int64
}

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	Min       int
	Max       int
	TimeoutMs int64
	Available int
	Leased    int
	Reclaimed uint64
}

// Allocator is the synchronized façade over a Pool and a Clock. One mutex
// covers the available queue and the lease table together; splitting it
// would let a reader observe an id missing from both structures
// mid-transition. Each operation samples the clock once, then holds the lock
// for the whole read-sweep-mutate-return and never calls out while holding
// it.
type Allocator struct {
	mu   sync.Mutex
	pool *Pool
	clk  clock.Clock
}

// NewAllocator creates an allocator over a fresh pool covering [min, max]
// with the given lease timeout.
func NewAllocator(min, max int, timeoutMs int64, clk clock.Clock) (*Allocator, error) {
	pool, err := NewPool(min, max, timeoutMs)
	if err != nil {
		return nil, err
	}
	return &Allocator{pool: pool, clk: clk}, nil
}

// AcquireNext reclaims any lapsed leases and leases the oldest available id.
func (a *Allocator) AcquireNext() (Lease, error) {
	now := a.clk.UnixMilli()

	a.mu.Lock()
	defer a.mu.Unlock()

	id, exp, err := a.pool.Acquire(now)
	if err != nil {
		return Lease{}, err
	}
	return Lease{ID: id, Exp: exp}, nil
}

// Heartbeat extends the lease on id if it is still live. A lapsed lease is
// reclaimed and ErrIDExpired returned; an unknown id returns
// ErrIDNonexistent.
func (a *Allocator) Heartbeat(id int) (Lease, error) {
	now := a.clk.UnixMilli()

	a.mu.Lock()
	defer a.mu.Unlock()

	exp, err := a.pool.Renew(id, now)
	if err != nil {
		return Lease{}, err
	}
	return Lease{ID: id, Exp: exp}, nil
}

// Stats reports pool bounds and current occupancy.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	available, leased := a.pool.Counts()
	return Stats{
		Min:       a.pool.min,
		Max:       a.pool.max,
		TimeoutMs: a.pool.timeoutMs,
		Available: available,
		Leased:    leased,
		Reclaimed: a.pool.reclaimed,
	}
}
