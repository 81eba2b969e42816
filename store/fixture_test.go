package store

import (
	"encoding/hex"
	"testing"

	"eventcore.dev/event"
	"lukechampine.com/frand"
)

func randomHex(t *testing.T, n int) string {
	t.Helper()
	return hex.EncodeToString(frand.Bytes(n))
}

type evOpt func(*event.E)

func withTags(tags ...[]string) evOpt {
	return func(e *event.E) { e.Tags = tags }
}

func withId(id string) evOpt {
	return func(e *event.E) { e.Id = id }
}

func withPubkey(pk string) evOpt {
	return func(e *event.E) { e.Pubkey = pk }
}

func withContent(c string) evOpt {
	return func(e *event.E) { e.Content = c }
}

func newEvent(t *testing.T, kind uint16, createdAt int64, opts ...evOpt) *event.E {
	t.Helper()
	e := &event.E{
		Id:        randomHex(t, 32),
		Pubkey:    randomHex(t, 32),
		Kind:      kind,
		CreatedAt: createdAt,
		Sig:       randomHex(t, 64),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}
