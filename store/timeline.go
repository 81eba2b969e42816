package store

import (
	"eventcore.dev/event"
	"github.com/google/btree"
)

// timelineDegree is the btree branching factor; the pack's only user of
// google/btree (a blockchain indexer) uses a small constant degree for
// similar in-memory ordered sets.
const timelineDegree = 32

// timelineItem orders events by (created_at desc, id desc), the tie-break
// §3 requires so getTimeline and insertIntoDescendingList agree.
type timelineItem struct {
	id        string
	createdAt int64
}

func (a timelineItem) Less(than btree.Item) bool {
	b := than.(timelineItem)
	if a.createdAt != b.createdAt {
		return a.createdAt > b.createdAt
	}
	return a.id > b.id
}

// Timeline is the descending-by-timestamp ordered sequence (component B).
// It stores only the ordering key; the event itself lives in the id index
// and is looked up by the caller.
type Timeline struct {
	tree *btree.BTree
}

func newTimeline() *Timeline {
	return &Timeline{tree: btree.New(timelineDegree)}
}

func (t *Timeline) insert(ev *event.E) {
	t.tree.ReplaceOrInsert(timelineItem{id: ev.Id, createdAt: ev.CreatedAt})
}

func (t *Timeline) remove(ev *event.E) {
	t.tree.Delete(timelineItem{id: ev.Id, createdAt: ev.CreatedAt})
}

func (t *Timeline) len() int { return t.tree.Len() }

// ids returns every tracked id in timeline order (newest first).
func (t *Timeline) ids() []string {
	out := make([]string, 0, t.tree.Len())
	t.tree.Ascend(func(i btree.Item) bool {
		out = append(out, i.(timelineItem).id)
		return true
	})
	return out
}

// idsInWindow returns ids whose created_at falls in [since, until]
// (inclusive both ends, per §8), in timeline order. Nil bounds are
// unconstrained on that side.
func (t *Timeline) idsInWindow(since, until *int64) []string {
	var out []string
	t.tree.Ascend(func(i btree.Item) bool {
		it := i.(timelineItem)
		if until != nil && it.createdAt > *until {
			return true
		}
		if since != nil && it.createdAt < *since {
			return false
		}
		out = append(out, it.id)
		return true
	})
	return out
}
