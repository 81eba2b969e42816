package filter

import "eventcore.dev/event"

// Matches reports whether ev satisfies at least one filter in the query
// (§4.5 "Multiple filters": OR-combined, deduplicated by id by the caller).
func (q Query) Matches(ev *event.E) bool {
	for _, f := range q {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}
