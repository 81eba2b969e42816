package store

import (
	"sort"

	"eventcore.dev/event"
	"eventcore.dev/filter"
	"eventcore.dev/tagset"
)

// compositeFanoutLimit is the |kinds|*|authors| threshold under which the
// selection algorithm (§4.5) prefers the composite (kind,author) index over
// the smaller of the two single-field indexes.
const compositeFanoutLimit = 10

// Memory is component I: the raw indexed event set (A-D plus the H
// candidate-selection half of filter matching). It knows nothing about
// replaceable history, tombstones, or expiration; those are the facade's
// concern (J).
type Memory struct {
	byId     map[string]*event.E
	timeline *Timeline
	indexes  *Indexes
	claims   *ClaimTracker
}

// NewMemory constructs an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		byId:     make(map[string]*event.E),
		timeline: newTimeline(),
		indexes:  newIndexes(),
		claims:   newClaimTracker(),
	}
}

// Add inserts ev into every index and the timeline, and starts its claim
// count at 0. If an event with the same id is already present, Add is a
// no-op and returns the existing instance so the caller can merge side
// metadata (§4.1 "add").
func (m *Memory) Add(ev *event.E) *event.E {
	if existing, ok := m.byId[ev.Id]; ok {
		return existing
	}
	m.byId[ev.Id] = ev
	m.timeline.insert(ev)
	m.indexes.insert(ev)
	m.claims.track(ev.Id)
	return ev
}

// Remove deletes the event identified by id from every index and the
// timeline. It reports whether an event was actually removed.
func (m *Memory) Remove(id string) bool {
	ev, ok := m.byId[id]
	if !ok {
		return false
	}
	delete(m.byId, id)
	m.timeline.remove(ev)
	m.indexes.remove(ev)
	m.claims.forget(id)
	return true
}

func (m *Memory) Has(id string) bool {
	_, ok := m.byId[id]
	return ok
}

func (m *Memory) Get(id string) (*event.E, bool) {
	ev, ok := m.byId[id]
	return ev, ok
}

func (m *Memory) Len() int { return len(m.byId) }

// Reset clears all state.
func (m *Memory) Reset() {
	m.byId = make(map[string]*event.E)
	m.timeline = newTimeline()
	m.indexes = newIndexes()
	m.claims = newClaimTracker()
}

// GetTimeline returns every stored event matching q, in timeline order
// (§4.1 "get_timeline"). An empty query matches everything.
func (m *Memory) GetTimeline(q filter.Query) []*event.E {
	if len(q) == 0 {
		out := make([]*event.E, 0, m.timeline.len())
		for _, id := range m.timeline.ids() {
			if ev, ok := m.byId[id]; ok {
				out = append(out, ev)
			}
		}
		return out
	}
	seen := make(map[string]struct{})
	var out []*event.E
	for _, id := range m.timeline.ids() {
		ev, ok := m.byId[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if q.Matches(ev) {
			seen[id] = struct{}{}
			out = append(out, ev)
		}
	}
	return out
}

// GetByFilters evaluates every filter in q using the §4.5 selection
// algorithm and unions the per-filter results, de-duplicated by id.
func (m *Memory) GetByFilters(q filter.Query) []*event.E {
	seen := make(map[string]struct{})
	var out []*event.E
	for _, f := range q {
		for _, ev := range m.getByFilter(f) {
			if _, dup := seen[ev.Id]; dup {
				continue
			}
			seen[ev.Id] = struct{}{}
			out = append(out, ev)
		}
	}
	return out
}

// RemoveByFilters removes every event matching q and returns the count
// removed.
func (m *Memory) RemoveByFilters(q filter.Query) int {
	matched := m.GetByFilters(q)
	n := 0
	for _, ev := range matched {
		if m.Remove(ev.Id) {
			n++
		}
	}
	return n
}

// getByFilter implements §4.5's single-filter selection algorithm:
// candidate set from the smallest available index, intersect with the time
// window, apply remaining predicates, apply limit in timeline order.
func (m *Memory) getByFilter(f *filter.F) []*event.E {
	candidates := m.candidateIds(f)

	out := make([]*event.E, 0, len(candidates))
	for _, id := range candidates {
		ev, ok := m.byId[id]
		if !ok {
			continue
		}
		if f.Since != nil && ev.CreatedAt < *f.Since {
			continue
		}
		if f.Until != nil && ev.CreatedAt > *f.Until {
			continue
		}
		if !f.Matches(ev) {
			continue
		}
		out = append(out, ev)
	}

	// Candidate sets other than "ids" and the timeline fallback are
	// unordered (they come from hash-map buckets); restore timeline order
	// before applying limit, since limit is defined in timeline order.
	sortByTimeline(out)

	if f.Limit != nil && len(out) > *f.Limit {
		out = out[:*f.Limit]
	}
	return out
}

func sortByTimeline(evs []*event.E) {
	sort.Sort(event.S(evs))
}

// candidateIds picks the smallest available index per step 1 of §4.5.
func (m *Memory) candidateIds(f *filter.F) []string {
	switch {
	case len(f.Ids) > 0:
		return f.Ids

	case len(f.Kinds) > 0 && len(f.Authors) > 0 && len(f.Kinds)*len(f.Authors) <= compositeFanoutLimit:
		var out []string
		for _, k := range f.Kinds {
			for _, a := range f.Authors {
				out = append(out, m.indexes.kindAuthorIds(k, a)...)
			}
		}
		return out

	default:
		if ids, ok := m.smallestFieldIndex(f); ok {
			return ids
		}
		if f.Since != nil || f.Until != nil {
			// No id/kind/author/tag index applies; a time-bounded-only filter
			// still avoids a full store scan by walking the timeline and
			// stopping once createdAt drops below Since (§4.5 step 1 "fall
			// back to the full timeline" still means the timeline's own
			// ordering, not an unordered linear scan).
			return m.timeline.idsInWindow(f.Since, f.Until)
		}
		return m.timeline.ids()
	}
}

// smallestFieldIndex compares the kinds index, the authors index, and any
// tag index present on f, and returns the union of buckets for whichever
// field yields the smallest total candidate set, per §4.5 step 1's
// "whichever of kinds/authors/tag-index yields the smallest superset".
func (m *Memory) smallestFieldIndex(f *filter.F) ([]string, bool) {
	type option struct {
		size int
		ids  func() []string
	}
	var options []option

	if len(f.Kinds) > 0 {
		options = append(options, option{
			size: sumKindBuckets(m, f.Kinds),
			ids:  func() []string { return unionKindIds(m, f.Kinds) },
		})
	}
	if len(f.Authors) > 0 {
		options = append(options, option{
			size: sumAuthorBuckets(m, f.Authors),
			ids:  func() []string { return unionAuthorIds(m, f.Authors) },
		})
	}
	for name, values := range f.Tags {
		if len(values) == 0 || !tagset.IsIndexable(name) {
			continue
		}
		name, values := name, values
		options = append(options, option{
			size: sumTagBuckets(m, name, values),
			ids:  func() []string { return unionTagIds(m, name, values) },
		})
	}
	for name, values := range f.AndTags {
		if len(values) == 0 || !tagset.IsIndexable(name) {
			continue
		}
		name, values := name, values
		options = append(options, option{
			size: sumTagBuckets(m, name, values),
			ids:  func() []string { return unionTagIds(m, name, values) },
		})
	}

	if len(options) == 0 {
		return nil, false
	}
	best := options[0]
	for _, o := range options[1:] {
		if o.size < best.size {
			best = o
		}
	}
	return best.ids(), true
}

func sumKindBuckets(m *Memory, kinds []uint16) int {
	n := 0
	for _, k := range kinds {
		n += m.indexes.kindBucketLen(k)
	}
	return n
}

func unionKindIds(m *Memory, kinds []uint16) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range kinds {
		for _, id := range m.indexes.kindIds(k) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

func sumAuthorBuckets(m *Memory, authors []string) int {
	n := 0
	for _, a := range authors {
		n += m.indexes.authorBucketLen(a)
	}
	return n
}

func unionAuthorIds(m *Memory, authors []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range authors {
		for _, id := range m.indexes.authorIds(a) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

func sumTagBuckets(m *Memory, name string, values []string) int {
	if !tagset.IsIndexable(name) {
		return 1 << 30 // not indexed; never the cheapest option
	}
	n := 0
	for _, v := range values {
		n += m.indexes.tagBucketLen(name, v)
	}
	return n
}

func unionTagIds(m *Memory, name string, values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		for _, id := range m.indexes.tagIds(name, v) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// Claims exposes the claim tracker for direct claim/touch manipulation.
func (m *Memory) Claims() *ClaimTracker { return m.claims }

// Prune removes unclaimed events in LRU order, up to limit (nil for all),
// and returns the count removed (§4.6 "prune").
func (m *Memory) Prune(limit *int) int {
	ids := m.claims.prune(limit)
	n := 0
	for _, id := range ids {
		if m.Remove(id) {
			n++
		}
	}
	return n
}
