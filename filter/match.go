package filter

import (
	"strings"

	"eventcore.dev/event"
	"eventcore.dev/tagset"
)

// Matches reports whether ev satisfies every constraint present on f. Absent
// fields (nil slices/maps, nil bounds, empty Search) impose no constraint.
func (f *F) Matches(ev *event.E) bool {
	if len(f.Ids) > 0 && !containsString(f.Ids, ev.Id) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, ev.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(ev.Content), strings.ToLower(f.Search)) {
		return false
	}
	if !f.matchesTags(ev) {
		return false
	}
	return true
}

// matchesTags implements the §4.5 AND/OR interaction rule: for every letter
// that has an AND-set (&x), the event's values for that letter must be a
// superset of the set. Then, for every letter with an OR-set (#x), the
// AND-set's values (if any) are removed from the OR-set before evaluation;
// if the resulting OR-set is empty, that letter's OR constraint is ignored
// entirely (it contributed nothing beyond the AND check already performed).
// An AND-set with no corresponding OR-set is still enforced.
func (f *F) matchesTags(ev *event.E) bool {
	for name, want := range f.AndTags {
		if len(want) == 0 {
			continue
		}
		have := tagset.Values(ev, name)
		for _, w := range want {
			if !containsString(have, w) {
				return false
			}
		}
	}
	for name, or := range f.Tags {
		remaining := subtractStrings(or, f.AndTags[name])
		if len(remaining) == 0 {
			continue
		}
		have := tagset.Values(ev, name)
		if !anyIntersect(have, remaining) {
			return false
		}
	}
	return true
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func containsKind(ks []uint16, v uint16) bool {
	for _, k := range ks {
		if k == v {
			return true
		}
	}
	return false
}

func subtractStrings(from, remove []string) []string {
	if len(remove) == 0 {
		return from
	}
	out := make([]string, 0, len(from))
	for _, v := range from {
		if !containsString(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

func anyIntersect(have, want []string) bool {
	for _, h := range have {
		if containsString(want, h) {
			return true
		}
	}
	return false
}
