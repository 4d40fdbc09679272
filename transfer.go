package store

// TransferState tracks the lifecycle of one load/save/delete attempt against
// an entity or collection. Exactly one of three shapes holds at any time:
//
//	Idle    — no attempt has ever completed
//	Pending — an attempt is in flight; the previous terminal status, if any,
//	          is retained underneath so stale data can stay on screen
//	Done    — the most recent attempt completed with a StatusCode
//
// The automaton has no terminal state; any state may start a new attempt.
type TransferState struct {
	pending bool
	status  StatusCode
}

// Start marks an attempt as in flight. The last terminal status remains
// readable through LastStatus until a new one supersedes it.
func (t *TransferState) Start() {
	t.pending = true
}

// Finish records the terminal outcome of the current attempt.
func (t *TransferState) Finish(code StatusCode) {
	t.pending = false
	t.status = code
}

// SetStatus forces the state directly without a full request cycle:
// StatusUndefined yields Idle, anything else yields Done(code). It exists for
// callers that inject a state after an external invalidation.
func (t *TransferState) SetStatus(code StatusCode) {
	t.pending = false
	t.status = code
}

// Reset returns the state to Idle unconditionally.
func (t *TransferState) Reset() {
	*t = TransferState{}
}

// ResetError downgrades a terminal failure to Done(OK), leaving Idle and
// Pending untouched. Used to dismiss a sticky error indicator.
func (t *TransferState) ResetError() {
	if !t.pending && t.status.Failure() {
		t.status = StatusOK
	}
}

// Idle reports that no attempt has ever completed.
func (t TransferState) Idle() bool {
	return !t.pending && t.status == StatusUndefined
}

// Pending reports whether an attempt is in flight.
func (t TransferState) Pending() bool {
	return t.pending
}

// Done reports whether the state holds a completed attempt and no attempt is
// in flight.
func (t TransferState) Done() bool {
	return !t.pending && t.status != StatusUndefined
}

// Status returns the most recent terminal status. ok is false while Idle or
// while Pending with no prior completion.
func (t TransferState) Status() (StatusCode, bool) {
	if t.status == StatusUndefined {
		return StatusUndefined, false
	}
	return t.status, true
}

// LastStatus returns the most recent terminal status, StatusUndefined when
// none exists. Unlike Status it stays readable while a refresh is pending.
func (t TransferState) LastStatus() StatusCode {
	return t.status
}

// OK reports a completed, successful attempt.
func (t TransferState) OK() bool {
	return t.Done() && t.status.Success()
}

// Failed reports a completed attempt with any terminal non-OK status.
func (t TransferState) Failed() bool {
	return t.Done() && t.status.Failure()
}
