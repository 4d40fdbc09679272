package store

import (
	"sort"

	"github.com/goliatone/go-remote-store/pkg/signal"
)

// CollectionStore owns an ordered set of records of type E, its TransferState
// and its Messages. Ordering is defined by the comparator supplied at
// construction: every insertion finds its sorted position, items never get
// appended and re-sorted wholesale. Reloads go through the merge protocol in
// LoadMerge, which guarantees that a failed or collection-less response never
// drops locally held items.
//
// Like EntityStore, a CollectionStore expects a single logical owner and
// performs no locking.
type CollectionStore[E any] struct {
	cfg      storeConfig
	cmp      func(a, b E) int
	items    *signal.Value[[]E]
	transfer *signal.Value[TransferState]
	messages *Messages

	// keys the last failure's detail wrote, cleared on the next success
	failureKeys map[string]struct{}

	emptySig   *signal.Value[bool]
	pendingSig *signal.Value[bool]
	stateSig   *signal.Value[CollectionState]
}

// NewCollectionStore constructs an empty store ordered by cmp. A nil
// comparator is a caller-contract violation.
func NewCollectionStore[E any](cmp func(a, b E) int, opts ...Option) *CollectionStore[E] {
	if cmp == nil {
		panic("store: collection comparator must not be nil")
	}
	s := &CollectionStore[E]{
		cfg:      applyOptions(opts),
		cmp:      cmp,
		items:    signal.New([]E{}),
		transfer: signal.NewEq(TransferState{}),
		messages: NewMessages(),
	}
	s.emptySig = signal.MapEq(s.items, func(items []E) bool { return len(items) == 0 })
	s.pendingSig = signal.MapEq(s.transfer, TransferState.Pending)
	s.stateSig = signal.Map2(s.pendingSig, s.emptySig, collectionState)
	return s
}

// NewCollectionStoreItems constructs a store pre-seeded from an already
// available sequence, bypassing the merge protocol. The input is copied and
// stably sorted to establish the ordering invariant.
func NewCollectionStoreItems[E any](cmp func(a, b E) int, items []E, opts ...Option) *CollectionStore[E] {
	s := NewCollectionStore(cmp, opts...)
	s.items.Set(s.sorted(items))
	return s
}

// Items returns a copy of the current records in comparator order.
func (s *CollectionStore[E]) Items() []E {
	return append([]E(nil), s.items.Get()...)
}

// ItemsSignal observes the ordered records. Subscribers must not mutate the
// delivered slice.
func (s *CollectionStore[E]) ItemsSignal() *signal.Value[[]E] {
	return s.items
}

// Len returns the number of records held.
func (s *CollectionStore[E]) Len() int {
	return len(s.items.Get())
}

// IsEmpty reports whether no records are held.
func (s *CollectionStore[E]) IsEmpty() bool {
	return len(s.items.Get()) == 0
}

// EmptySignal fires when emptiness changes.
func (s *CollectionStore[E]) EmptySignal() *signal.Value[bool] {
	return s.emptySig
}

// CollectionStateSignal condenses pending and emptiness into one render state.
func (s *CollectionStore[E]) CollectionStateSignal() *signal.Value[CollectionState] {
	return s.stateSig
}

// TransferState returns the current transfer lifecycle state.
func (s *CollectionStore[E]) TransferState() TransferState {
	return s.transfer.Get()
}

// TransferStateSignal observes transfer lifecycle changes.
func (s *CollectionStore[E]) TransferStateSignal() *signal.Value[TransferState] {
	return s.transfer
}

// Pending reports whether an attempt is in flight.
func (s *CollectionStore[E]) Pending() bool {
	return s.transfer.Get().Pending()
}

// PendingSignal fires when the in-flight flag changes.
func (s *CollectionStore[E]) PendingSignal() *signal.Value[bool] {
	return s.pendingSig
}

// Messages returns the diagnostics bag owned by this store.
func (s *CollectionStore[E]) Messages() *Messages {
	return s.messages
}

// Start marks a new attempt as in flight.
func (s *CollectionStore[E]) Start() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Start()
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "start"})
}

// SetTransferState forces the state directly; StatusUndefined yields Idle.
func (s *CollectionStore[E]) SetTransferState(code StatusCode) {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.SetStatus(code)
		return ts
	})
}

// ResetTransferError downgrades a terminal failure to Done(OK).
func (s *CollectionStore[E]) ResetTransferError() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.ResetError()
		return ts
	})
}

// Invalidate drops the transfer state to Idle while keeping items.
func (s *CollectionStore[E]) Invalidate() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Reset()
		return ts
	})
}

// Insert places item at its comparator position. Items comparing equal keep
// their encounter order: a new equal item lands after the existing ones.
func (s *CollectionStore[E]) Insert(item E) {
	items := s.items.Get()
	idx := sort.Search(len(items), func(i int) bool {
		return s.cmp(item, items[i]) < 0
	})
	next := make([]E, 0, len(items)+1)
	next = append(next, items[:idx]...)
	next = append(next, item)
	next = append(next, items[idx:]...)
	s.items.Set(next)
}

// Upsert replaces the first record matched by match, or inserts item at its
// comparator position when nothing matches. Replacement re-positions the item
// so the ordering invariant holds even when the sort fields changed.
func (s *CollectionStore[E]) Upsert(match func(E) bool, item E) {
	s.Remove(match)
	s.Insert(item)
}

// Remove deletes the first record matched by match, reporting whether one was
// found.
func (s *CollectionStore[E]) Remove(match func(E) bool) bool {
	items := s.items.Get()
	for i, existing := range items {
		if match(existing) {
			next := make([]E, 0, len(items)-1)
			next = append(next, items[:i]...)
			next = append(next, items[i+1:]...)
			s.items.Set(next)
			return true
		}
	}
	return false
}

// Find returns the first record matched by match.
func (s *CollectionStore[E]) Find(match func(E) bool) (E, bool) {
	for _, item := range s.items.Get() {
		if match(item) {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// Any reports whether match holds for at least one record.
func (s *CollectionStore[E]) Any(match func(E) bool) bool {
	_, ok := s.Find(match)
	return ok
}

// All reports whether match holds for every record.
func (s *CollectionStore[E]) All(match func(E) bool) bool {
	for _, item := range s.items.Get() {
		if !match(item) {
			return false
		}
	}
	return true
}

// LoadMerge applies a reload outcome under the merge protocol:
//
//  1. A failed outer status leaves items completely untouched; only transfer
//     state and messages reflect the failure.
//  2. A successful response with payload == nil did not speak to the
//     collection at all: items stay untouched and mergeFn is not invoked. An
//     explicitly returned empty collection must be a non-nil empty slice.
//  3. Only on success with a present payload is mergeFn invoked, exactly
//     once, with the status, the current items and the new sequence; its
//     result becomes the new items, re-sorted if it violates comparator
//     order.
//
// The transfer state always transitions to Done(status).
func (s *CollectionStore[E]) LoadMerge(status StatusCode, payload []E, mergeFn MergeFunc[E]) {
	if status.Failure() {
		s.recordFailure(failureMessages(nil, status))
		s.finish("merge", status)
		return
	}
	if payload == nil {
		s.clearTransferKeys()
		s.finish("merge", status)
		return
	}
	merged := payload
	if mergeFn != nil {
		merged = mergeFn(status, s.Items(), payload)
	}
	s.items.Set(s.sorted(merged))
	s.clearTransferKeys()
	s.finish("merge", status)
}

// Fail applies a failed reload that never produced an outer status, feeding
// the failure detail into messages. Items stay untouched.
func (s *CollectionStore[E]) Fail(err error) {
	code := StatusOf(err)
	s.recordFailure(failureMessages(err, code))
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Finish(code)
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "merge", Status: code, Err: err})
}

// Reset returns items, transfer state and messages to their initial
// lifecycle point.
func (s *CollectionStore[E]) Reset() {
	s.items.Set([]E{})
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Reset()
		return ts
	})
	s.failureKeys = nil
	s.messages.ClearAll()
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "reset"})
}

// ResetItems is Reset followed by re-seeding from an available sequence.
func (s *CollectionStore[E]) ResetItems(items []E) {
	s.Reset()
	s.items.Set(s.sorted(items))
}

func (s *CollectionStore[E]) finish(op string, status StatusCode) {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Finish(status)
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: op, Status: status})
}

func (s *CollectionStore[E]) recordFailure(detail *Messages) {
	if s.failureKeys == nil {
		s.failureKeys = map[string]struct{}{}
	}
	for _, key := range detail.Keys() {
		s.failureKeys[key] = struct{}{}
	}
	s.messages.Extend(detail)
}

// clearTransferKeys clears every transfer-owned diagnostic: the well-known
// keys plus any field keys a prior failure's detail wrote.
func (s *CollectionStore[E]) clearTransferKeys() {
	keys := []string{KeyCollection, KeyService}
	for key := range s.failureKeys {
		keys = append(keys, key)
	}
	s.failureKeys = nil
	s.messages.ClearKeys(keys...)
}

// sorted copies items and restores comparator order when violated. The sort
// is stable so equal items keep their encounter order.
func (s *CollectionStore[E]) sorted(items []E) []E {
	out := append([]E(nil), items...)
	if !sort.SliceIsSorted(out, func(i, j int) bool { return s.cmp(out[i], out[j]) < 0 }) {
		sort.SliceStable(out, func(i, j int) bool { return s.cmp(out[i], out[j]) < 0 })
	}
	return out
}
