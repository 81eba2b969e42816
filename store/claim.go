package store

import (
	"container/list"

	"go.uber.org/atomic"
)

// claimEntry is the per-event bookkeeping for component D: a refcount plus
// a position in the LRU list used to order unclaimed events for pruning.
type claimEntry struct {
	count *atomic.Int64
	elem  *list.Element // position in ClaimTracker.recency, holding the id
}

// ClaimTracker implements the refcount + LRU lifecycle of §4.6. It is not a
// general-purpose cache: touch and claim state live only here, inside the
// memory component, never in an alternate backend.
//
// elastic/go-freelru appears in one example's go.mod but no file in the
// retrieval pack exercises its API; container/list gives the same O(1)
// move-to-front/back behavior this component needs without fabricating
// usage of a library nothing here demonstrates.
type ClaimTracker struct {
	entries map[string]*claimEntry
	// recency is ordered oldest-to-newest at the front; touch moves an
	// entry to the back.
	recency *list.List
}

func newClaimTracker() *ClaimTracker {
	return &ClaimTracker{
		entries: make(map[string]*claimEntry),
		recency: list.New(),
	}
}

// track registers id with claim = 0, at the most-recently-used position.
// It is a no-op if id is already tracked.
func (c *ClaimTracker) track(id string) {
	if _, ok := c.entries[id]; ok {
		return
	}
	elem := c.recency.PushBack(id)
	c.entries[id] = &claimEntry{count: atomic.NewInt64(0), elem: elem}
}

// forget removes id from the tracker entirely, regardless of claim state.
func (c *ClaimTracker) forget(id string) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	c.recency.Remove(e.elem)
	delete(c.entries, id)
}

func (c *ClaimTracker) claim(id string) {
	if e, ok := c.entries[id]; ok {
		e.count.Inc()
	}
}

func (c *ClaimTracker) removeClaim(id string) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	if cur := e.count.Load(); cur > 0 {
		e.count.Store(cur - 1)
	}
}

func (c *ClaimTracker) clearClaim(id string) {
	if e, ok := c.entries[id]; ok {
		e.count.Store(0)
	}
}

func (c *ClaimTracker) isClaimed(id string) bool {
	e, ok := c.entries[id]
	return ok && e.count.Load() > 0
}

// touch moves id to the most-recently-used position.
func (c *ClaimTracker) touch(id string) {
	if e, ok := c.entries[id]; ok {
		c.recency.MoveToBack(e.elem)
	}
}

// unclaimed returns ids with count = 0 in least-recently-used order.
func (c *ClaimTracker) unclaimed() []string {
	var out []string
	for el := c.recency.Front(); el != nil; el = el.Next() {
		id := el.Value.(string)
		if e := c.entries[id]; e != nil && e.count.Load() == 0 {
			out = append(out, id)
		}
	}
	return out
}

// prune returns up to limit unclaimed ids, in LRU order, for the caller to
// remove (prune itself does not mutate the timeline/indexes; Memory.Prune
// does, then calls forget on each). A nil limit means unbounded.
func (c *ClaimTracker) prune(limit *int) []string {
	ids := c.unclaimed()
	if limit != nil && *limit < len(ids) {
		ids = ids[:*limit]
	}
	return ids
}
