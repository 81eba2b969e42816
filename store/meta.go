package store

// Meta is the side metadata attached to a stored event without mutating its
// identity (§3, §9): the set of relays it was seen on and whether it arrived
// from a cache rather than a live relay. Metadata is per-store, keyed by
// event id, and never written into the shared event value.
type Meta struct {
	SeenOn    map[string]struct{}
	FromCache bool
}

func newMeta() *Meta {
	return &Meta{SeenOn: make(map[string]struct{})}
}

// attach records that the event was seen on relay (a no-op if relay is
// empty, the common case of a purely local ingest).
func (m *Meta) attach(relay string) {
	if relay == "" {
		return
	}
	m.SeenOn[relay] = struct{}{}
}

// mergeFrom implements the merge_duplicate side-metadata rule of §4.7: union
// seen-relays, and propagate from-cache only when it becomes true.
func (m *Meta) mergeFrom(src *Meta) {
	if src == nil {
		return
	}
	for r := range src.SeenOn {
		m.SeenOn[r] = struct{}{}
	}
	if src.FromCache {
		m.FromCache = true
	}
}
