package store

import (
	"fmt"

	"eventcore.dev/event"
	"eventcore.dev/tagset"
	"github.com/puzpuzpuz/xsync/v3"
)

// idSet is a concurrency-safe set of event ids, used as the bucket value for
// every secondary index (component C).
type idSet struct {
	m *xsync.MapOf[string, struct{}]
}

func newIdSet() *idSet { return &idSet{m: xsync.NewMapOf[string, struct{}]()} }

func (s *idSet) add(id string)    { s.m.Store(id, struct{}{}) }
func (s *idSet) remove(id string) { s.m.Delete(id) }
func (s *idSet) len() int         { return s.m.Size() }

func (s *idSet) ids() []string {
	out := make([]string, 0, s.m.Size())
	s.m.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Indexes holds the secondary indexes of §4.1: by kind, by pubkey, by
// (kind,pubkey), and by (tagName,tagValue). The primary id -> event map
// lives on Memory itself; these buckets store only ids, looked back up
// through that map.
type Indexes struct {
	byKind     *xsync.MapOf[uint16, *idSet]
	byAuthor   *xsync.MapOf[string, *idSet]
	byKindAuth *xsync.MapOf[string, *idSet]
	byTag      *xsync.MapOf[string, *idSet] // key: "<name>\x00<value>"
}

func newIndexes() *Indexes {
	return &Indexes{
		byKind:     xsync.NewMapOf[uint16, *idSet](),
		byAuthor:   xsync.NewMapOf[string, *idSet](),
		byKindAuth: xsync.NewMapOf[string, *idSet](),
		byTag:      xsync.NewMapOf[string, *idSet](),
	}
}

func kindAuthorKey(k uint16, pubkey string) string {
	return fmt.Sprintf("%d\x00%s", k, pubkey)
}

func tagKey(name, value string) string { return name + "\x00" + value }

func bucketAdd[K comparable](m *xsync.MapOf[K, *idSet], key K, id string) {
	set, _ := m.LoadOrStore(key, newIdSet())
	set.add(id)
}

func bucketRemove[K comparable](m *xsync.MapOf[K, *idSet], key K, id string) {
	set, ok := m.Load(key)
	if !ok {
		return
	}
	set.remove(id)
	if set.len() == 0 {
		m.Delete(key)
	}
}

// insert registers ev in every secondary index it qualifies for.
func (ix *Indexes) insert(ev *event.E) {
	bucketAdd(ix.byKind, ev.Kind, ev.Id)
	bucketAdd(ix.byAuthor, ev.Pubkey, ev.Id)
	bucketAdd(ix.byKindAuth, kindAuthorKey(ev.Kind, ev.Pubkey), ev.Id)
	for _, p := range tagset.IndexablePairs(ev) {
		bucketAdd(ix.byTag, tagKey(p.Name, p.Value), ev.Id)
	}
}

// remove purges ev from every secondary index.
func (ix *Indexes) remove(ev *event.E) {
	bucketRemove(ix.byKind, ev.Kind, ev.Id)
	bucketRemove(ix.byAuthor, ev.Pubkey, ev.Id)
	bucketRemove(ix.byKindAuth, kindAuthorKey(ev.Kind, ev.Pubkey), ev.Id)
	for _, p := range tagset.IndexablePairs(ev) {
		bucketRemove(ix.byTag, tagKey(p.Name, p.Value), ev.Id)
	}
}

func (ix *Indexes) kindBucketLen(k uint16) int {
	set, ok := ix.byKind.Load(k)
	if !ok {
		return 0
	}
	return set.len()
}

func (ix *Indexes) authorBucketLen(pubkey string) int {
	set, ok := ix.byAuthor.Load(pubkey)
	if !ok {
		return 0
	}
	return set.len()
}

func (ix *Indexes) tagBucketLen(name, value string) int {
	set, ok := ix.byTag.Load(tagKey(name, value))
	if !ok {
		return 0
	}
	return set.len()
}

func (ix *Indexes) kindIds(k uint16) []string {
	set, ok := ix.byKind.Load(k)
	if !ok {
		return nil
	}
	return set.ids()
}

func (ix *Indexes) authorIds(pubkey string) []string {
	set, ok := ix.byAuthor.Load(pubkey)
	if !ok {
		return nil
	}
	return set.ids()
}

func (ix *Indexes) kindAuthorIds(k uint16, pubkey string) []string {
	set, ok := ix.byKindAuth.Load(kindAuthorKey(k, pubkey))
	if !ok {
		return nil
	}
	return set.ids()
}

func (ix *Indexes) tagIds(name, value string) []string {
	set, ok := ix.byTag.Load(tagKey(name, value))
	if !ok {
		return nil
	}
	return set.ids()
}
