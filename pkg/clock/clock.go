package clock

import (
	"sync"
	"time"
)

// Clock supplies the current wall-clock time in milliseconds since the Unix
// epoch. It is injected at construction so tests can control time.
type Clock interface {
	UnixMilli() int64
}

// System reads the live system clock.
type System struct{}

func (System) UnixMilli() int64 {
	return time.Now().UnixMilli()
}

// Fake is a controllable clock for tests. The zero value starts at t=0.
type Fake struct {
	mu  sync.Mutex
	now int64
}

func NewFake(startMs int64) *Fake {
	return &Fake{now: startMs}
}

func (f *Fake) UnixMilli() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to an absolute timestamp.
func (f *Fake) Set(ms int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = ms
}

// Advance moves the clock forward by the given number of milliseconds.
func (f *Fake) Advance(ms int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += ms
}
