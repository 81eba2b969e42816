package clock

import (
	"time"

	"go.uber.org/atomic"
)

// Fake is a settable clock for tests. The zero value starts at unix 0.
type Fake struct {
	now  atomic.Int64
	mono atomic.Int64 // nanoseconds since an arbitrary epoch
}

// NewFake creates a Fake clock set to the given unix seconds.
func NewFake(now int64) *Fake {
	f := &Fake{}
	f.now.Store(now)
	return f
}

func (f *Fake) Now() int64 { return f.now.Load() }

// Mono returns a synthetic monotonic instant derived from the fake clock's
// nanosecond counter, so that Advance moves both wall and monotonic time
// together.
func (f *Fake) Mono() time.Time {
	return time.Unix(0, f.mono.Load())
}

// Set moves the wall clock to an absolute unix-second value. Mono advances
// by the same delta so relative scheduling stays consistent.
func (f *Fake) Set(now int64) {
	delta := now - f.now.Swap(now)
	f.mono.Add(delta * int64(time.Second))
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.now.Add(int64(d / time.Second))
	f.mono.Add(int64(d))
}

var _ Clock = (*Fake)(nil)
