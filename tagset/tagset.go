// Package tagset implements the indexable-tag contract shared by the index
// set (§4.1) and the filter matcher (§4.5): which tag names are single-letter
// and therefore indexable, and how to enumerate an event's (name, value)
// pairs for indexing or for AND/OR filter evaluation.
package tagset

import "eventcore.dev/event"

// IsIndexable reports whether a tag name is a single ASCII letter, the only
// names the index set and the "#"/"&" filter keys recognize.
func IsIndexable(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Pair is one (name, value) registration derived from a single tag.
type Pair struct {
	Name, Value string
}

// IndexablePairs returns every (name, value) pair an event registers under
// the indexable-tag contract: tag[0] is a single letter and tag[1] is
// non-empty. Multiple tags with the same name each contribute a pair.
func IndexablePairs(ev *event.E) []Pair {
	var pairs []Pair
	for _, t := range ev.Tags {
		if len(t) < 2 || !IsIndexable(t[0]) || t[1] == "" {
			continue
		}
		pairs = append(pairs, Pair{Name: t[0], Value: t[1]})
	}
	return pairs
}

// Values returns every value registered under the given tag name, in tag
// order, including duplicates. Non-indexable names (including
// multi-character names) are still scanned here, per spec §4.1: "Non-letter
// tag names are not indexed but are scanned when a filter references them."
func Values(ev *event.E, name string) []string {
	var vals []string
	for _, t := range ev.Tags {
		if len(t) >= 2 && t[0] == name {
			vals = append(vals, t[1])
		}
	}
	return vals
}
