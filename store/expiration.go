package store

import (
	"sync"
	"time"

	"eventcore.dev/clock"
	"github.com/puzpuzpuz/xsync/v3"
)

// expirationSlack is added to every scheduled delay so the timer does not
// wake up a few ticks before its deadline (§4.4).
const expirationSlack = 10 * time.Millisecond

// ExpirationManager is component F: a single coalesced timer tracking the
// soonest upcoming expiration across all tracked events.
type ExpirationManager struct {
	clk clock.Clock

	mu           sync.Mutex
	tracked      *xsync.MapOf[string, int64] // id -> expiration (wall seconds)
	timer        *time.Timer
	scheduledFor int64 // wall-seconds deadline currently armed; 0 if none

	Expired Stream[string]
}

// NewExpirationManager constructs a manager driven by clk.
func NewExpirationManager(clk clock.Clock) *ExpirationManager {
	return &ExpirationManager{clk: clk, tracked: xsync.NewMapOf[string, int64]()}
}

// Track records ev's expiration if it carries one strictly in the future.
// An expiration already past is dropped silently (§4.4): the ingest path is
// responsible for rejecting such events upstream unless keep_expired is set.
func (m *ExpirationManager) Track(id string, expiration int64) {
	if expiration <= m.clk.Now() {
		return
	}
	m.tracked.Store(id, expiration)
	m.reschedule(expiration)
}

// Forget removes id's tracking entry, if any.
func (m *ExpirationManager) Forget(id string) {
	m.tracked.Delete(id)
}

// Check reports whether now has reached or passed expiration.
func (m *ExpirationManager) Check(expiration int64) bool {
	return m.clk.Now() >= expiration
}

// reschedule arms the single pending timer for deadline if no timer is
// armed, or if deadline is earlier than the one currently scheduled
// (coalescing: a later addition never pushes the timer out).
func (m *ExpirationManager) reschedule(deadline int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduledFor != 0 && deadline >= m.scheduledFor {
		return
	}
	m.arm(deadline)
}

// arm computes the countdown against the monotonic clock (§4.4 "use
// monotonic time for the countdown"): the wall-clock deadline is converted
// once into a span (deadline minus the current wall-clock second) anchored
// on the current monotonic instant, and the timer then counts that span
// down on its own, so a wall clock adjustment while the timer is pending
// cannot perturb it.
func (m *ExpirationManager) arm(deadline int64) {
	if m.timer != nil {
		m.timer.Stop()
	}
	secondsUntil := time.Duration(deadline-m.clk.Now()) * time.Second
	target := m.clk.Mono().Add(secondsUntil)
	delay := target.Sub(m.clk.Mono()) + expirationSlack
	if delay < 0 {
		delay = 0
	}
	m.scheduledFor = deadline
	m.timer = time.AfterFunc(delay, m.fire)
}

// fire is the timer callback: it sweeps the tracked set, emits and removes
// every entry whose expiration has passed, and rearms for the next minimum.
func (m *ExpirationManager) fire() {
	m.Sweep()
}

// Sweep scans the tracked set, emits Expired for every entry whose
// expiration is <= now, deletes them, and rearms the timer to the next
// minimum. It is the logic the real timer invokes on fire; tests that use a
// fake clock call it directly to make expiration deterministic, since a
// synthetic monotonic clock cannot drive a real time.Timer.
func (m *ExpirationManager) Sweep() {
	now := m.clk.Now()
	var expired []string
	var nextMin int64

	m.tracked.Range(func(id string, exp int64) bool {
		if exp <= now {
			expired = append(expired, id)
		} else if nextMin == 0 || exp < nextMin {
			nextMin = exp
		}
		return true
	})

	for _, id := range expired {
		m.tracked.Delete(id)
	}

	m.mu.Lock()
	m.scheduledFor = 0
	m.mu.Unlock()
	if nextMin != 0 {
		m.mu.Lock()
		m.arm(nextMin)
		m.mu.Unlock()
	}

	for _, id := range expired {
		m.Expired.Emit(id)
	}
}

// Reset cancels the pending timer and clears all tracked state.
func (m *ExpirationManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.scheduledFor = 0
	m.tracked = xsync.NewMapOf[string, int64]()
}
