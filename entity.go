package store

import (
	"github.com/goliatone/go-remote-store/pkg/signal"
)

// Dirty is implemented by entity types that track unsaved local edits.
type Dirty interface {
	IsDirty() bool
}

// EntityStore owns one logical record of type E, its TransferState and its
// Messages. The store never performs I/O: callers run the transfer and feed
// the resolved result back in. A failed transfer never clears previously
// present data; only a successful delete does.
//
// An EntityStore expects a single logical owner. It performs no locking.
type EntityStore[E any] struct {
	cfg      storeConfig
	data     *signal.Value[Optional[E]]
	transfer *signal.Value[TransferState]
	messages *Messages

	// keys the last failure's detail wrote, cleared on the next success
	failureKeys map[string]struct{}

	emptySig     *signal.Value[bool]
	pendingSig   *signal.Value[bool]
	dirtySig     *signal.Value[bool]
	canCommitSig *signal.Value[bool]
}

// NewEntityStore constructs an empty store.
func NewEntityStore[E any](opts ...Option) *EntityStore[E] {
	s := &EntityStore[E]{
		cfg:      applyOptions(opts),
		data:     signal.New(None[E]()),
		transfer: signal.NewEq(TransferState{}),
		messages: NewMessages(),
	}
	s.emptySig = signal.MapEq(s.data, func(data Optional[E]) bool { return !data.Present() })
	s.pendingSig = signal.MapEq(s.transfer, TransferState.Pending)
	return s
}

// NewEntityStoreValue constructs a store pre-seeded with value.
func NewEntityStoreValue[E any](value E, opts ...Option) *EntityStore[E] {
	s := NewEntityStore[E](opts...)
	s.data.Set(Some(value))
	return s
}

// NewEntityStoreDefault constructs a store pre-seeded with E's zero value.
func NewEntityStoreDefault[E any](opts ...Option) *EntityStore[E] {
	var zero E
	return NewEntityStoreValue(zero, opts...)
}

// Data returns the current record and whether one is present.
func (s *EntityStore[E]) Data() (E, bool) {
	return s.data.Get().Get()
}

// DataSignal observes the record, including its presence.
func (s *EntityStore[E]) DataSignal() *signal.Value[Optional[E]] {
	return s.data
}

// Empty reports whether no record is held.
func (s *EntityStore[E]) Empty() bool {
	return !s.data.Get().Present()
}

// EmptySignal fires when presence changes.
func (s *EntityStore[E]) EmptySignal() *signal.Value[bool] {
	return s.emptySig
}

// TransferState returns the current transfer lifecycle state.
func (s *EntityStore[E]) TransferState() TransferState {
	return s.transfer.Get()
}

// TransferStateSignal observes transfer lifecycle changes.
func (s *EntityStore[E]) TransferStateSignal() *signal.Value[TransferState] {
	return s.transfer
}

// Pending reports whether an attempt is in flight.
func (s *EntityStore[E]) Pending() bool {
	return s.transfer.Get().Pending()
}

// PendingSignal fires when the in-flight flag changes.
func (s *EntityStore[E]) PendingSignal() *signal.Value[bool] {
	return s.pendingSig
}

// Messages returns the diagnostics bag owned by this store.
func (s *EntityStore[E]) Messages() *Messages {
	return s.messages
}

// Start marks a new attempt as in flight. Starting while already pending is a
// superseding request; correlating stale results is the transport layer's
// responsibility.
func (s *EntityStore[E]) Start() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Start()
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "start"})
}

// SetTransferState forces the state directly; StatusUndefined yields Idle.
func (s *EntityStore[E]) SetTransferState(code StatusCode) {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.SetStatus(code)
		return ts
	})
}

// ResetTransferError downgrades a terminal failure to Done(OK).
func (s *EntityStore[E]) ResetTransferError() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.ResetError()
		return ts
	})
}

// Invalidate drops the transfer state to Idle while keeping data and
// messages, so the next cached load runs again.
func (s *EntityStore[E]) Invalidate() {
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Reset()
		return ts
	})
}

// LoadResult applies the outcome of a load attempt. On success the record is
// replaced and load diagnostics are cleared. On failure the record is left
// untouched and the failure detail lands in Messages.
func (s *EntityStore[E]) LoadResult(value E, err error) {
	if err != nil {
		s.fail("load", err)
		return
	}
	s.data.Set(Some(value))
	s.succeed("load")
}

// SaveResult applies the outcome of a save attempt whose response echoes the
// stored entity; the echoed value replaces the record on success.
func (s *EntityStore[E]) SaveResult(value E, err error) {
	if err != nil {
		s.fail("save", err)
		return
	}
	s.data.Set(Some(value))
	s.succeed("save")
}

// SaveResultKeep applies a save outcome without a response body; the local
// record stays as-is on success.
func (s *EntityStore[E]) SaveResultKeep(err error) {
	if err != nil {
		s.fail("save", err)
		return
	}
	s.succeed("save")
}

// DeleteResult applies a delete outcome. A successful delete is the one path
// allowed to empty previously present data.
func (s *EntityStore[E]) DeleteResult(err error) {
	if err != nil {
		s.fail("delete", err)
		return
	}
	s.data.Set(None[E]())
	s.failureKeys = nil
	s.messages.ClearAll()
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Finish(StatusOK)
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "delete", Status: StatusOK})
}

// SetLoaded installs externally supplied data as if a load had succeeded.
func (s *EntityStore[E]) SetLoaded(value E) {
	s.data.Set(Some(value))
	s.SetTransferState(StatusOK)
}

// Set replaces the record locally without touching transfer state, for edits
// staged ahead of a save.
func (s *EntityStore[E]) Set(value E) {
	s.data.Set(Some(value))
}

// Update applies fn to the record when present.
func (s *EntityStore[E]) Update(fn func(E) E) {
	if value, ok := s.Data(); ok {
		s.data.Set(Some(fn(value)))
	}
}

// Inspect calls fn with the record when present.
func (s *EntityStore[E]) Inspect(fn func(E)) {
	if value, ok := s.Data(); ok {
		fn(value)
	}
}

// Reset returns data, transfer state and messages to their initial lifecycle
// point, as when leaving the view that owns this store.
func (s *EntityStore[E]) Reset() {
	s.data.Set(None[E]())
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Reset()
		return ts
	})
	s.failureKeys = nil
	s.messages.ClearAll()
	s.cfg.log().LogTransfer(TransferLogEvent{Op: "reset"})
}

// ResetTo is Reset followed by re-seeding the record.
func (s *EntityStore[E]) ResetTo(value E) {
	s.Reset()
	s.data.Set(Some(value))
}

// DirtySignal reports unsaved local edits for entity types implementing
// Dirty; for other types it stays false.
func (s *EntityStore[E]) DirtySignal() *signal.Value[bool] {
	if s.dirtySig == nil {
		s.dirtySig = signal.MapEq(s.data, func(data Optional[E]) bool {
			value, ok := data.Get()
			if !ok {
				return false
			}
			if d, ok := any(value).(Dirty); ok {
				return d.IsDirty()
			}
			return false
		})
	}
	return s.dirtySig
}

// CanCommitSignal is true when the record is dirty and no stored message
// carries error severity.
func (s *EntityStore[E]) CanCommitSignal() *signal.Value[bool] {
	if s.canCommitSig == nil {
		s.canCommitSig = signal.Map2(s.DirtySignal(), s.messages.ErrorSignal(), func(dirty, hasError bool) bool {
			return dirty && !hasError
		})
	}
	return s.canCommitSig
}

func (s *EntityStore[E]) fail(op string, err error) {
	code := StatusOf(err)
	detail := failureMessages(err, code)
	if s.failureKeys == nil {
		s.failureKeys = map[string]struct{}{}
	}
	for _, key := range detail.Keys() {
		s.failureKeys[key] = struct{}{}
	}
	s.messages.Extend(detail)
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Finish(code)
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: op, Status: code, Err: err})
}

// succeed clears every transfer-owned diagnostic: the well-known keys plus any
// field keys a prior failure's detail wrote, so a clean reload never leaves a
// stale error indicator behind.
func (s *EntityStore[E]) succeed(op string) {
	keys := []string{KeyEntity, KeyService}
	for key := range s.failureKeys {
		keys = append(keys, key)
	}
	s.failureKeys = nil
	s.messages.ClearKeys(keys...)
	s.transfer.Update(func(ts TransferState) TransferState {
		ts.Finish(StatusOK)
		return ts
	})
	s.cfg.log().LogTransfer(TransferLogEvent{Op: op, Status: StatusOK})
}
