package store

import (
	"eventcore.dev/event"
	"github.com/puzpuzpuz/xsync/v3"
)

// ReplaceableRegistry is component E: per-coordinate version history, newest
// first by (created_at desc, id asc) -- note this tie-break is the mirror
// image of the timeline's (§3: "ties broken lexicographically by id
// ascending" for the latest version, vs. the timeline's id-descending tie
// break). A coordinate with no identifier (plain replaceable, kind 0/3/1xxxx)
// uses an empty identifier in its Coordinate key.
type ReplaceableRegistry struct {
	histories *xsync.MapOf[string, []*event.E]
}

func NewReplaceableRegistry() *ReplaceableRegistry {
	return &ReplaceableRegistry{histories: xsync.NewMapOf[string, []*event.E]()}
}

// Has reports whether any version is recorded for the coordinate.
func (r *ReplaceableRegistry) Has(c event.Coordinate) bool {
	h, ok := r.histories.Load(c.String())
	return ok && len(h) > 0
}

// Latest returns the head of the coordinate's history (the winning
// version), or nil if none is recorded.
func (r *ReplaceableRegistry) Latest(c event.Coordinate) *event.E {
	h, ok := r.histories.Load(c.String())
	if !ok || len(h) == 0 {
		return nil
	}
	return h[0]
}

// History returns the full version list, newest first.
func (r *ReplaceableRegistry) History(c event.Coordinate) []*event.E {
	h, _ := r.histories.Load(c.String())
	return h
}

// Add inserts ev into its coordinate's history at the position implied by
// the (created_at desc, id asc) ordering.
func (r *ReplaceableRegistry) Add(ev *event.E) {
	key := event.CoordinateOf(ev).String()
	h, _ := r.histories.Load(key)
	h = insertSorted(h, ev)
	r.histories.Store(key, h)
}

// Remove removes one specific version from its coordinate's history.
func (r *ReplaceableRegistry) Remove(ev *event.E) {
	key := event.CoordinateOf(ev).String()
	h, ok := r.histories.Load(key)
	if !ok {
		return
	}
	out := h[:0:0]
	for _, v := range h {
		if v.Id != ev.Id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		r.histories.Delete(key)
		return
	}
	r.histories.Store(key, out)
}

// insertSorted inserts ev into h maintaining (created_at desc, id asc).
func insertSorted(h []*event.E, ev *event.E) []*event.E {
	i := 0
	for i < len(h) && less(h[i], ev) {
		i++
	}
	h = append(h, nil)
	copy(h[i+1:], h[i:])
	h[i] = ev
	return h
}

// less reports whether a sorts strictly before b in (created_at desc, id
// asc) order.
func less(a, b *event.E) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.Id < b.Id
}
