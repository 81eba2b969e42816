package store

import "lol.mleku.dev/errorf"

// Invalid-input errors (§7 case 3): malformed event structure or a malformed
// address string. These are the only errors the facade returns from Add;
// the "rejected" and "superseded" outcomes are reported via a nil/identity
// return, never an error (§7 cases 1-2).
var (
	ErrMissingId     = errorf.E("store: event has no id")
	ErrMissingPubkey = errorf.E("store: event has no pubkey")
)
