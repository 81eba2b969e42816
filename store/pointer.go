package store

import "eventcore.dev/event"

// Pointer names an event for the loader collaborator (§6): either a direct
// id or a replaceable coordinate, whichever the caller has on hand.
type Pointer struct {
	Id    string
	Coord *event.Coordinate
}
