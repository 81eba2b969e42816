// Package event defines the canonical in-memory event record the store
// indexes, plus the kind-class predicates and addressable-coordinate
// derivation that the rest of the store depends on.
//
// Identity fields (Id, Pubkey, Sig) are carried as opaque hex strings, never
// decoded to bytes here: signature verification and wire parsing happen
// outside this module (they are injected collaborators), so there is
// nothing for this package to gain by treating them as anything other than
// comparable keys.
package event

import "strconv"

// E is the primary datatype of the store: an immutable, signed record as
// received from an external, already-parsed source.
type E struct {
	// Id is the content-addressed identifier of the event, 32 bytes hex.
	Id string
	// Pubkey is the author's identifier, 32 bytes hex.
	Pubkey string
	// CreatedAt is the UNIX timestamp the event claims for itself. Never
	// trust it as wall-clock truth; it is author-supplied.
	CreatedAt int64
	// Kind is the protocol discriminator for the event's type.
	Kind uint16
	// Tags is an ordered sequence of tag tuples, each a non-empty sequence
	// of strings. Tag name is Tags[i][0].
	Tags [][]string
	// Content is opaque to the core; it is never parsed here.
	Content string
	// Sig is the signature bytes, opaque, handed to the external verifier.
	Sig string
}

// S is a slice of *E that sorts newest-first (largest CreatedAt first),
// matching the timeline's ordering.
type S []*E

func (s S) Len() int      { return len(s) }
func (s S) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s S) Less(i, j int) bool {
	if s[i].CreatedAt != s[j].CreatedAt {
		return s[i].CreatedAt > s[j].CreatedAt
	}
	return s[i].Id > s[j].Id
}

// Tag returns the tag at index i, or nil if i is out of range.
func (ev *E) Tag(i int) []string {
	if i < 0 || i >= len(ev.Tags) {
		return nil
	}
	return ev.Tags[i]
}

// FirstTagValue returns the first value (index 1) of the first tag whose
// name (index 0) equals name, and whether one was found.
func (ev *E) FirstTagValue(name string) (string, bool) {
	for _, t := range ev.Tags {
		if len(t) >= 2 && t[0] == name {
			return t[1], true
		}
	}
	return "", false
}

// Expiration returns the event's declared expiration time and whether it
// carries one. An "expiration" tag with a non-integer value is treated as
// absent, per the rejection-vs-silent-drop distinction in the expiration
// manager: a malformed tag is not the same as a past-dated one.
func (ev *E) Expiration() (int64, bool) {
	v, ok := ev.FirstTagValue("expiration")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
