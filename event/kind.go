package event

// Kind class boundaries, per the protocol ranges this store enforces.
const (
	replaceableRangeStart = 10000
	replaceableRangeEnd   = 20000 // exclusive
	ephemeralRangeStart   = 20000
	ephemeralRangeEnd     = 30000 // exclusive
	addressableRangeStart = 30000
	addressableRangeEnd   = 40000 // exclusive

	KindProfileMetadata = 0
	KindFollowList      = 3
	KindDeletion        = 5
)

// IsReplaceable returns true if the kind class has a single logical "latest"
// version per (kind, pubkey). Addressable kinds are also replaceable (they
// are replaceable keyed additionally on an identifier).
func IsReplaceable(k uint16) bool {
	return k == KindProfileMetadata || k == KindFollowList ||
		(k >= replaceableRangeStart && k < replaceableRangeEnd) ||
		IsAddressable(k)
}

// IsAddressable returns true if the kind is replaceable and additionally
// keyed by a "d" tag identifier.
func IsAddressable(k uint16) bool {
	return k >= addressableRangeStart && k < addressableRangeEnd
}

// IsEphemeral returns true if the kind is ephemeral (not retained by a
// relay; this store does not treat ephemeral events specially beyond this
// classification, per spec §3).
func IsEphemeral(k uint16) bool {
	return k >= ephemeralRangeStart && k < ephemeralRangeEnd
}

// IsDeletion returns true if the kind is the deletion-event kind (5), the
// trigger for the deletion manager's tombstone cascade.
func IsDeletion(k uint16) bool { return k == KindDeletion }
