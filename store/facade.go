package store

import (
	"context"

	"eventcore.dev/clock"
	"eventcore.dev/event"
	"eventcore.dev/filter"
	"github.com/puzpuzpuz/xsync/v3"
	"lol.mleku.dev/log"
)

// Verifier checks an event's signature. It is injected at construction; the
// core never holds process-wide verification state (§9).
type Verifier func(ev *event.E) bool

// Loader fetches an event the store does not currently have. It is never
// called by the core ingest path; callers that want load-on-miss wire it
// into their own subscription layer and re-enter the store via Add, per §6.
type Loader func(ctx context.Context, ptr Pointer) (<-chan *event.E, error)

// Config holds the facade's policy knobs (§4.7).
type Config struct {
	// KeepOldVersions disables replaceable-version eviction on insert.
	KeepOldVersions bool
	// KeepExpired disables expired-event rejection on ingest.
	KeepExpired bool
	// Verify checks event signatures. A nil Verify disables signature
	// checking and logs a warning, per §4.7.
	Verify Verifier
	// Load is an optional loader extension point (§6); the core never
	// calls it.
	Load Loader
}

// Store is component J: the facade composing Memory (I), the replaceable
// registry (E), the expiration manager (F) and the deletion manager (G),
// enforcing the ingest protocol and exposing change streams.
type Store struct {
	cfg Config
	clk clock.Clock

	memory      *Memory
	replaceable *ReplaceableRegistry
	expiration  *ExpirationManager
	deletion    *DeletionManager

	meta *xsync.MapOf[string, *Meta]

	Insert  Stream[*event.E]
	Update  Stream[*event.E]
	Remove  Stream[*event.E]
	Deleted Stream[DeletionNotice]
	Expired Stream[string]
}

// New constructs a Store. clk defaults to clock.System{} when nil.
func New(cfg Config, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Verify == nil {
		log.W.F("store: no verifier configured, signature checks disabled")
	}
	s := &Store{
		cfg:         cfg,
		clk:         clk,
		memory:      NewMemory(),
		replaceable: NewReplaceableRegistry(),
		expiration:  NewExpirationManager(clk),
		deletion:    NewDeletionManager(),
		meta:        xsync.NewMapOf[string, *Meta](),
	}
	// Wire F into J (§2 data flow "Expiration fires F -> J -> remove"): a
	// fired expiration removes the event from memory (emitting Remove) and
	// is re-emitted on the facade's own Expired stream for callers.
	s.expiration.Expired.Subscribe(func(id string) {
		s.removeInternal(id)
		s.Expired.Emit(id)
	})
	return s
}

func (s *Store) metaFor(id string) *Meta {
	m, _ := s.meta.LoadOrStore(id, newMeta())
	return m
}

// Add implements the nine-step ingest algorithm of §4.7.
func (s *Store) Add(ev *event.E, fromRelay string) (*event.E, error) {
	if ev.Id == "" {
		return nil, ErrMissingId
	}
	if ev.Pubkey == "" {
		return nil, ErrMissingPubkey
	}

	// Step 1: delete events are processed first, then fall through so the
	// delete event itself is also indexed (§4.7 step 1, §9 open question:
	// the delete is stored and emitted like any other event after cascade).
	if event.IsDeletion(ev.Kind) {
		s.processDelete(ev)
	}

	// Step 2: an event already considered deleted is reported as the
	// passed-in instance, not null (§9 open question), and does not emit.
	if s.deletion.Check(ev) {
		return ev, nil
	}

	// Step 3: reject (not an error) an expired event unless KeepExpired.
	if exp, ok := ev.Expiration(); ok && !s.cfg.KeepExpired && exp <= s.clk.Now() {
		return nil, nil
	}

	// Step 4: a strictly-newer (or equal) version of the same coordinate
	// already exists and old versions are not kept: merge and return it.
	if event.IsReplaceable(ev.Kind) && !s.cfg.KeepOldVersions {
		coord := event.CoordinateOf(ev)
		if latest := s.replaceable.Latest(coord); latest != nil && latest.CreatedAt >= ev.CreatedAt {
			s.mergeSideMetadata(ev, latest, fromRelay)
			return latest, nil
		}
	}

	// Step 5: signature verification.
	if s.cfg.Verify != nil && !s.cfg.Verify(ev) {
		return nil, nil
	}

	// Step 6: insert into memory; a pre-existing instance means duplicate.
	duplicate := s.memory.Has(ev.Id)
	stored := s.memory.Add(ev)
	if duplicate || stored != ev {
		s.mergeSideMetadata(ev, stored, fromRelay)
		return stored, nil
	}

	// Step 7: true insert.
	s.metaFor(stored.Id).attach(fromRelay)
	if exp, ok := stored.Expiration(); ok {
		s.expiration.Track(stored.Id, exp)
	}
	if event.IsReplaceable(stored.Kind) {
		s.replaceable.Add(stored)
	}
	s.Insert.Emit(stored)

	// Step 8: evict strictly-older versions of the same coordinate.
	if event.IsReplaceable(stored.Kind) && !s.cfg.KeepOldVersions {
		s.evictOlderVersions(stored)
	}

	return stored, nil
}

// evictOlderVersions removes every version of stored's coordinate with an
// older (created_at, id) than stored, after stored has itself been inserted
// and emitted (§5 "insert-then-evict-older" ordering).
func (s *Store) evictOlderVersions(stored *event.E) {
	coord := event.CoordinateOf(stored)
	for _, old := range s.replaceable.History(coord) {
		if old.Id == stored.Id {
			continue
		}
		s.removeInternal(old.Id)
	}
}

// processDelete applies a kind-5 delete event's tombstones and cascades the
// removal of everything they shadow, then emits Deleted once per tombstone
// after every cascaded Remove has fired (§5).
func (s *Store) processDelete(del *event.E) {
	notices := s.deletion.Add(del)
	for _, n := range notices {
		if n.Id != "" {
			s.removeInternal(n.Id)
			continue
		}
		for _, ev := range s.replaceable.History(*n.Coord) {
			if ev.CreatedAt < n.Until {
				s.removeInternal(ev.Id)
			}
		}
	}
	for _, n := range notices {
		s.Deleted.Emit(n)
	}
}

// mergeSideMetadata applies the §4.7 merge_duplicate rule: union seen-relay
// URLs, propagate from-cache only when it becomes true, never touch
// identity fields on the stored instance.
func (s *Store) mergeSideMetadata(src, dst *event.E, fromRelay string) {
	srcMeta := s.metaFor(src.Id)
	srcMeta.attach(fromRelay)
	s.metaFor(dst.Id).mergeFrom(srcMeta)
	if src.Id != dst.Id {
		s.meta.Delete(src.Id)
	}
}

// Remove resolves id to the stored instance, removes it from memory and any
// secondary backing, and emits Remove exactly once if something was
// actually removed.
func (s *Store) Remove(id string) bool {
	if !s.memory.Has(id) {
		return false
	}
	s.removeInternal(id)
	return true
}

// removeInternal performs the actual removal and emission without the
// public existence check, so cascade call sites do not double-report.
func (s *Store) removeInternal(id string) {
	ev, ok := s.memory.Get(id)
	if !ok {
		return
	}
	s.memory.Remove(id)
	if event.IsReplaceable(ev.Kind) {
		s.replaceable.Remove(ev)
	}
	s.expiration.Forget(id)
	s.meta.Delete(id)
	s.Remove.Emit(ev)
}

// UpdateMeta re-emits Update for an already-stored event whose side metadata
// has changed. The event's identity is unchanged; this is not a re-insert.
func (s *Store) UpdateMeta(id string) bool {
	ev, ok := s.memory.Get(id)
	if !ok {
		return false
	}
	s.Update.Emit(ev)
	return true
}

// Has reports whether id is currently stored.
func (s *Store) Has(id string) bool { return s.memory.Has(id) }

// Get returns the stored instance for id, if any.
func (s *Store) Get(id string) (*event.E, bool) { return s.memory.Get(id) }

// Len returns the number of currently-stored events.
func (s *Store) Len() int { return s.memory.Len() }

// GetByFilters evaluates q against the store (§4.5).
func (s *Store) GetByFilters(q filter.Query) []*event.E { return s.memory.GetByFilters(q) }

// GetTimeline returns matching events in timeline order.
func (s *Store) GetTimeline(q filter.Query) []*event.E { return s.memory.GetTimeline(q) }

// Claim, RemoveClaim, ClearClaim, IsClaimed and Touch expose component D.
func (s *Store) Claim(id string)          { s.memory.Claims().claim(id) }
func (s *Store) RemoveClaim(id string)    { s.memory.Claims().removeClaim(id) }
func (s *Store) ClearClaim(id string)     { s.memory.Claims().clearClaim(id) }
func (s *Store) IsClaimed(id string) bool { return s.memory.Claims().isClaimed(id) }
func (s *Store) Touch(id string)          { s.memory.Claims().touch(id) }

// Prune removes unclaimed events in LRU order, up to limit (nil for all),
// emitting Remove for each, and returns the count removed.
func (s *Store) Prune(limit *int) int {
	ids := s.memory.Claims().prune(limit)
	n := 0
	for _, id := range ids {
		if _, ok := s.memory.Get(id); ok {
			s.removeInternal(id)
			n++
		}
	}
	log.I.F("store: pruned %d unclaimed events", n)
	return n
}

// Meta returns the side metadata for id, if the event is stored.
func (s *Store) Meta(id string) (*Meta, bool) {
	return s.meta.Load(id)
}

// Reset clears the entire store: memory, replaceable history, tombstones,
// expiration tracking and side metadata.
func (s *Store) Reset() {
	s.memory.Reset()
	s.replaceable = NewReplaceableRegistry()
	s.deletion = NewDeletionManager()
	s.expiration.Reset()
	s.meta = xsync.NewMapOf[string, *Meta]()
}
