// Package filter implements the nostr-style query shape consumed by the
// store: a single filter, and helpers to compose a query of several filters
// that are OR-combined (spec §4.5).
package filter

// F is a single filter: a conjunction of the present fields. A Query is a
// sequence of F, OR-combined (§4.5 "Multiple filters").
type F struct {
	Ids     []string
	Authors []string
	Kinds   []uint16
	// Since and Until are inclusive bounds on CreatedAt. Nil means
	// unbounded on that side.
	Since, Until *int64
	// Limit caps the result count, applied in timeline order (§4.5). Nil
	// means unbounded.
	Limit *int
	// Tags holds the "#<letter>" OR-sets: a tag value matches if it is a
	// member of the set for its tag name.
	Tags map[string][]string
	// AndTags holds the "&<letter>" AND-sets: an event matches only if its
	// tag-values for that letter are a superset of the set.
	AndTags map[string][]string
	// Search is an opaque, case-insensitive substring predicate on Content.
	Search string
}

// New returns an empty filter (matches everything, subject to Limit).
func New() *F { return &F{} }

// Query is an ordered sequence of filters, OR-combined.
type Query []*F

// Single returns a one-filter Query, a common case for callers that do not
// need OR-composition.
func Single(f *F) Query { return Query{f} }

// IsEmpty reports whether the filter carries no constraints at all
// (matches every event, so its candidate set is the full timeline).
func (f *F) IsEmpty() bool {
	return len(f.Ids) == 0 && len(f.Authors) == 0 && len(f.Kinds) == 0 &&
		f.Since == nil && f.Until == nil &&
		len(f.Tags) == 0 && len(f.AndTags) == 0 && f.Search == ""
}
