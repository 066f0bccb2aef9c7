package leasepool

import (
	"fmt"
	"sort"
)

// Pool owns every id in [min, max], partitioned at all times between the
// available FIFO queue and the lease table (id -> expiry in ms). Each id is
// in exactly one of the two. Pool does no locking of its own; Allocator
// serializes all access behind a single mutex.
type Pool struct {
	min       int
	max       int
	timeoutMs int64
	available []int
	leased    map[int]int64
	reclaimed uint64
}

// NewPool creates a pool with every id in [min, max] available, in ascending
// order. timeoutMs is applied to every new or renewed lease.
func NewPool(min, max int, timeoutMs int64) (*Pool, error) {
	if min < 0 || min > max {
		return nil, fmt.Errorf("invalid id range: %d-%d", min, max)
	}
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("invalid lease timeout: %dms", timeoutMs)
	}

	pool := &Pool{
		min:       min,
		max:       max,
		timeoutMs: timeoutMs,
		available: make([]int, 0, max-min+1),
		leased:    make(map[int]int64),
	}
	for id := min; id <= max; id++ {
		pool.available = append(pool.available, id)
	}
	return pool, nil
}

// SweepExpired reclaims every lease with expiry <= now, appending the ids to
// the back of the available queue in ascending order, and returns the count.
func (p *Pool) SweepExpired(now int64) int {
	var expired []int
	for id, expiry := range p.leased {
		if expiry <= now {
			expired = append(expired, id)
		}
	}
	sort.Ints(expired)
	for _, id := range expired {
		delete(p.leased, id)
		p.available = append(p.available, id)
	}
	p.reclaimed += uint64(len(expired))
	return len(expired)
}

// Acquire sweeps expired leases, then leases the id at the front of the
// available queue until now+timeout. Fails with ErrNoIDAvailable when the
// queue is empty. now is sampled once by the caller and used for both the
// sweep and the expiry so one acquire sees one consistent time.
func (p *Pool) Acquire(now int64) (int, int64, error) {
	p.SweepExpired(now)

	if len(p.available) == 0 {
		return 0, 0, ErrNoIDAvailable
	}
	id := p.available[0]
	p.available = p.available[1:]

	expiry := now + p.timeoutMs
	p.leased[id] = expiry
	return id, expiry, nil
}

// Renew extends a live lease to now+timeout and returns the new expiry. A
// lease found lapsed is reclaimed to the back of the available queue and
// ErrIDExpired is returned. An id not in the lease table (never issued,
// already reclaimed, or out of range) returns ErrIDNonexistent with no state
// change.
//
// Known limitation: if a lease expires and the id is re-acquired by another
// client before the original holder renews, the late renew lands on the new
// holder's lease. The lookup itself is consistent, but the ownership change
// is not detected; the original holder used the id while it was shared.
func (p *Pool) Renew(id int, now int64) (int64, error) {
	expiry, ok := p.leased[id]
	if !ok {
		return 0, ErrIDNonexistent
	}
	if expiry <= now {
		delete(p.leased, id)
		p.available = append(p.available, id)
		p.reclaimed++
		return 0, ErrIDExpired
	}

	expiry = now + p.timeoutMs
	p.leased[id] = expiry
	return expiry, nil
}

// Counts returns the current sizes of the available queue and lease table.
func (p *Pool) Counts() (available, leased int) {
	return len(p.available), len(p.leased)
}
