package event

import (
	"strconv"
	"strings"

	"lol.mleku.dev/errorf"
)

// Coordinate identifies a replaceable/addressable slot: the triple
// (kind, pubkey, identifier). Identifier is empty for plain replaceables.
type Coordinate struct {
	Kind       uint16
	Pubkey     string
	Identifier string
}

// CoordinateOf derives the coordinate a replaceable event occupies. The
// identifier is the first value of the event's first "d" tag, or empty if
// absent, per spec §3.
func CoordinateOf(ev *E) Coordinate {
	ident, _ := ev.FirstTagValue("d")
	return Coordinate{Kind: ev.Kind, Pubkey: ev.Pubkey, Identifier: ident}
}

// String renders the coordinate in the wire form the deletion manager
// consumes: "<kind>:<pubkey>:<identifier>".
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(c.Kind), 10))
	b.WriteByte(':')
	b.WriteString(c.Pubkey)
	b.WriteByte(':')
	b.WriteString(c.Identifier)
	return b.String()
}

// ParseCoordinate parses the "<kind>:<pubkey>:<identifier>" wire form back
// into a Coordinate. The identifier field may itself contain colons (an
// addressable "d" tag value is unconstrained), so only the first two
// colons are treated as separators.
func ParseCoordinate(s string) (Coordinate, error) {
	first := strings.IndexByte(s, ':')
	if first < 0 {
		return Coordinate{}, errorf.E("event: malformed coordinate %q: missing kind separator", s)
	}
	rest := s[first+1:]
	second := strings.IndexByte(rest, ':')
	if second < 0 {
		return Coordinate{}, errorf.E("event: malformed coordinate %q: missing pubkey separator", s)
	}
	kindStr := s[:first]
	k, err := strconv.ParseUint(kindStr, 10, 16)
	if err != nil {
		return Coordinate{}, errorf.E("event: malformed coordinate %q: bad kind %q", s, kindStr)
	}
	return Coordinate{
		Kind:       uint16(k),
		Pubkey:     rest[:second],
		Identifier: rest[second+1:],
	}, nil
}
