package store

import (
	"eventcore.dev/event"
	"github.com/puzpuzpuz/xsync/v3"
)

// DeletionNotice is the element shape of the deleted$ stream (§6): either an
// id-pointer or an addressable-pointer tombstone, with the timestamp past
// which versions are shadowed.
type DeletionNotice struct {
	Id    string            // set for an id-tombstone notice
	Coord *event.Coordinate // set for a coordinate-tombstone notice
	Until int64
}

// DeletionManager is component G: tombstones for ids and for addressable
// coordinates, with monotonically-advancing per-coordinate timestamps.
type DeletionManager struct {
	ids    *xsync.MapOf[string, struct{}]
	coords *xsync.MapOf[string, int64]
}

func NewDeletionManager() *DeletionManager {
	return &DeletionManager{
		ids:    xsync.NewMapOf[string, struct{}](),
		coords: xsync.NewMapOf[string, int64](),
	}
}

// Check reports whether ev is considered deleted (§4.3): its id is
// tombstoned outright, or it is addressable, its coordinate carries a
// tombstone t, and ev.CreatedAt < t.
func (d *DeletionManager) Check(ev *event.E) bool {
	if _, ok := d.ids.Load(ev.Id); ok {
		return true
	}
	if !event.IsAddressable(ev.Kind) {
		return false
	}
	coord := event.CoordinateOf(ev).String()
	until, ok := d.coords.Load(coord)
	return ok && ev.CreatedAt < until
}

// Filter returns the subset of evs that are not deleted.
func (d *DeletionManager) Filter(evs []*event.E) []*event.E {
	out := make([]*event.E, 0, len(evs))
	for _, ev := range evs {
		if !d.Check(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Add records the tombstones carried by a kind-5 delete event's "e" and "a"
// tags and returns one notification per tombstone actually recorded
// (coordinate tombstones that do not advance the existing maximum produce no
// notification, per the monotonic rule).
func (d *DeletionManager) Add(del *event.E) []DeletionNotice {
	var notices []DeletionNotice
	until := del.CreatedAt

	for _, id := range tagValues(del, "e") {
		d.ids.Store(id, struct{}{})
		notices = append(notices, DeletionNotice{Id: id, Until: until})
	}

	for _, raw := range tagValues(del, "a") {
		coord, err := event.ParseCoordinate(raw)
		if err != nil {
			continue
		}
		key := coord.String()
		cur, _ := d.coords.Load(key)
		if until > cur {
			d.coords.Store(key, until)
			c := coord
			notices = append(notices, DeletionNotice{Coord: &c, Until: until})
		}
	}
	return notices
}

func tagValues(ev *event.E, name string) []string {
	var out []string
	for _, t := range ev.Tags {
		if len(t) >= 2 && t[0] == name {
			out = append(out, t[1])
		}
	}
	return out
}
