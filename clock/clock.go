// Package clock provides the time source the store consumes from its
// environment: a wall clock for comparing against event timestamps and a
// monotonic clock for scheduling the expiration timer. Keeping this as an
// injected collaborator, rather than calling time.Now directly throughout
// store, lets tests drive expiration and ordering scenarios deterministically.
package clock

import "time"

// Clock is the time source consumed by the store. Now returns unix seconds
// (wall clock, 1-second resolution is sufficient here); Mono returns a
// monotonic instant suitable for scheduling delays.
type Clock interface {
	Now() int64
	Mono() time.Time
}

// System is the real clock, backed by time.Now.
type System struct{}

func (System) Now() int64      { return time.Now().Unix() }
func (System) Mono() time.Time { return time.Now() }

var _ Clock = System{}
