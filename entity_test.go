package store

import (
	"errors"
	"testing"
)

type profile struct {
	ID    string
	Name  string
	dirty bool
}

func (p profile) IsDirty() bool { return p.dirty }

func TestEntityStoreInitialState(t *testing.T) {
	s := NewEntityStore[profile]()

	if !s.Empty() {
		t.Fatal("new store must be empty")
	}
	if !s.TransferState().Idle() {
		t.Fatal("new store must be idle")
	}
	if !s.Messages().IsEmpty() {
		t.Fatal("new store must have no messages")
	}
}

func TestEntityStoreSeededConstructors(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1", Name: "Ada"})
		if value, ok := s.Data(); !ok || value.Name != "Ada" {
			t.Fatalf("unexpected data %+v present=%v", value, ok)
		}
		if !s.TransferState().Idle() {
			t.Fatal("seeding must not touch transfer state")
		}
	})

	t.Run("default", func(t *testing.T) {
		s := NewEntityStoreDefault[profile]()
		if s.Empty() {
			t.Fatal("default-seeded store must hold the zero value")
		}
	})
}

func TestEntityStoreLoadSuccess(t *testing.T) {
	s := NewEntityStore[profile]()
	s.Messages().AddServiceError("transfer.status.server-error")

	s.Start()
	if !s.Pending() {
		t.Fatal("Start must set pending")
	}

	s.LoadResult(profile{ID: "p1", Name: "Ada"}, nil)

	if value, ok := s.Data(); !ok || value.ID != "p1" {
		t.Fatalf("unexpected data %+v present=%v", value, ok)
	}
	if !s.TransferState().OK() {
		t.Fatalf("expected Done(OK), got %+v", s.TransferState())
	}
	if s.Messages().HasError() {
		t.Fatal("a successful load must clear prior transfer diagnostics")
	}
}

func TestEntityStoreLoadFailureKeepsData(t *testing.T) {
	s := NewEntityStoreValue(profile{ID: "p1", Name: "Ada"})

	s.Start()
	s.LoadResult(profile{}, Fail(StatusServerError).WithCause(errors.New("boom")))

	if value, ok := s.Data(); !ok || value.Name != "Ada" {
		t.Fatalf("failure must keep the last-known-good record, got %+v present=%v", value, ok)
	}
	ts := s.TransferState()
	if !ts.Failed() || ts.LastStatus() != StatusServerError {
		t.Fatalf("expected Done(server-error), got %+v", ts)
	}
	if !s.Messages().HasError() {
		t.Fatal("failure must surface diagnostics")
	}
}

func TestEntityStoreFailureDetailMessages(t *testing.T) {
	s := NewEntityStore[profile]()

	detail := NewMessages()
	detail.Set("email", ErrorMessage("validation.email.invalid"))

	s.Start()
	s.LoadResult(profile{}, Fail(StatusValidationFailed).WithDetail(detail))

	if got := s.Messages().ForKey("email"); len(got) != 1 || got[0].Text != "validation.email.invalid" {
		t.Fatalf("detail messages must land keyed, got %+v", got)
	}
}

func TestEntityStoreSuccessClearsPriorFailureDetail(t *testing.T) {
	s := NewEntityStore[profile]()

	detail := NewMessages()
	detail.Set("email", ErrorMessage("validation.email.invalid"))

	s.Start()
	s.LoadResult(profile{}, Fail(StatusValidationFailed).WithDetail(detail))

	if !s.Messages().HasError() {
		t.Fatal("failure detail must surface as an error")
	}

	s.Start()
	s.LoadResult(profile{ID: "p1", Name: "Ada"}, nil)

	if got := s.Messages().ForKey("email"); len(got) != 0 {
		t.Fatalf("a successful load must clear field-keyed failure detail, got %+v", got)
	}
	if s.Messages().HasError() {
		t.Fatalf("stale error flag after a successful load: %s", s.Messages())
	}

	// The cleared detail must also unblock commit gating.
	s.Update(func(p profile) profile {
		p.dirty = true
		return p
	})
	if !s.CanCommitSignal().Get() {
		t.Fatal("cleared failure detail must not keep blocking commit")
	}
}

func TestEntityStoreFailureWithoutDetailAddsServiceError(t *testing.T) {
	s := NewEntityStore[profile]()

	s.Start()
	s.LoadResult(profile{}, errors.New("plain failure"))

	got := s.Messages().ForKey(KeyService)
	if len(got) != 1 || got[0].Text != "transfer.status.server-error" {
		t.Fatalf("expected the status template under the service key, got %+v", got)
	}
}

func TestEntityStoreSaveResult(t *testing.T) {
	t.Run("echoed entity replaces the record", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1", Name: "draft"})
		s.Start()
		s.SaveResult(profile{ID: "p1", Name: "persisted"}, nil)

		if value, _ := s.Data(); value.Name != "persisted" {
			t.Fatalf("unexpected data %+v", value)
		}
		if !s.TransferState().OK() {
			t.Fatal("expected Done(OK)")
		}
	})

	t.Run("keep variant leaves the record", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1", Name: "local"})
		s.Start()
		s.SaveResultKeep(nil)

		if value, _ := s.Data(); value.Name != "local" {
			t.Fatalf("unexpected data %+v", value)
		}
	})

	t.Run("failed save keeps the record", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1", Name: "local"})
		s.Start()
		s.SaveResultKeep(Fail(StatusValidationFailed))

		if s.Empty() {
			t.Fatal("failed save must not clear data")
		}
		if !s.TransferState().Failed() {
			t.Fatal("expected Done(validation-failed)")
		}
	})
}

func TestEntityStoreDeleteResult(t *testing.T) {
	t.Run("success clears data and messages", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1"})
		s.Messages().AddEntityError("stale")

		s.Start()
		s.DeleteResult(nil)

		if !s.Empty() {
			t.Fatal("successful delete must clear data")
		}
		if !s.Messages().IsEmpty() {
			t.Fatal("successful delete must clear messages")
		}
		if !s.TransferState().OK() {
			t.Fatal("expected Done(OK)")
		}
	})

	t.Run("failure keeps data", func(t *testing.T) {
		s := NewEntityStoreValue(profile{ID: "p1"})
		s.Start()
		s.DeleteResult(Fail(StatusServerError))

		if s.Empty() {
			t.Fatal("failed delete must keep data")
		}
	})
}

func TestEntityStoreLocalMutation(t *testing.T) {
	s := NewEntityStore[profile]()

	s.SetLoaded(profile{ID: "p1"})
	if !s.TransferState().OK() {
		t.Fatal("SetLoaded counts as a successful load")
	}

	s.Set(profile{ID: "p2"})
	if !s.TransferState().OK() {
		t.Fatal("Set must not touch transfer state")
	}

	s.Update(func(p profile) profile {
		p.Name = "updated"
		return p
	})
	if value, _ := s.Data(); value.Name != "updated" {
		t.Fatalf("unexpected data %+v", value)
	}

	inspected := false
	s.Inspect(func(p profile) { inspected = p.ID == "p2" })
	if !inspected {
		t.Fatal("Inspect must observe the current record")
	}
}

func TestEntityStoreUpdateOnEmptyIsNoop(t *testing.T) {
	s := NewEntityStore[profile]()
	s.Update(func(p profile) profile {
		t.Fatal("Update must not run on an empty store")
		return p
	})
}

func TestEntityStoreInvalidate(t *testing.T) {
	s := NewEntityStoreValue(profile{ID: "p1"})
	s.Start()
	s.LoadResult(profile{ID: "p1"}, nil)

	s.Invalidate()

	if !s.TransferState().Idle() {
		t.Fatal("Invalidate must drop the state to Idle")
	}
	if s.Empty() {
		t.Fatal("Invalidate must keep the record")
	}
}

func TestEntityStoreReset(t *testing.T) {
	s := NewEntityStoreValue(profile{ID: "p1"})
	s.Start()
	s.LoadResult(profile{ID: "p1"}, Fail(StatusServerError))

	s.Reset()

	if !s.Empty() || !s.TransferState().Idle() || !s.Messages().IsEmpty() {
		t.Fatal("Reset must restore the initial lifecycle point")
	}

	s.ResetTo(profile{ID: "p2"})
	if value, ok := s.Data(); !ok || value.ID != "p2" {
		t.Fatalf("ResetTo must re-seed, got %+v present=%v", value, ok)
	}
}

func TestEntityStoreResetTransferError(t *testing.T) {
	s := NewEntityStore[profile]()
	s.Start()
	s.LoadResult(profile{}, Fail(StatusServerError))

	s.ResetTransferError()

	if !s.TransferState().OK() {
		t.Fatalf("expected Done(OK), got %+v", s.TransferState())
	}
}

func TestEntityStoreSignals(t *testing.T) {
	s := NewEntityStore[profile]()

	var pendingLog []bool
	s.PendingSignal().Listen(func(pending bool) { pendingLog = append(pendingLog, pending) })

	var emptyLog []bool
	s.EmptySignal().Listen(func(empty bool) { emptyLog = append(emptyLog, empty) })

	s.Start()
	s.LoadResult(profile{ID: "p1"}, nil)

	if len(pendingLog) != 2 || !pendingLog[0] || pendingLog[1] {
		t.Fatalf("expected pending true then false, got %v", pendingLog)
	}
	if len(emptyLog) != 1 || emptyLog[0] {
		t.Fatalf("expected a single empty→false flip, got %v", emptyLog)
	}

	// A second start/finish with unchanged emptiness stays silent on empty.
	s.Start()
	s.LoadResult(profile{ID: "p1", Name: "again"}, nil)
	if len(emptyLog) != 1 {
		t.Fatalf("empty signal fired without an emptiness change: %v", emptyLog)
	}
}

func TestEntityStoreDirtyAndCanCommit(t *testing.T) {
	s := NewEntityStoreValue(profile{ID: "p1"})

	dirty := s.DirtySignal()
	canCommit := s.CanCommitSignal()

	if dirty.Get() || canCommit.Get() {
		t.Fatal("clean record must be neither dirty nor committable")
	}

	s.Update(func(p profile) profile {
		p.dirty = true
		return p
	})
	if !dirty.Get() || !canCommit.Get() {
		t.Fatal("dirty record without errors must be committable")
	}

	s.Messages().Set("email", ErrorMessage("invalid"))
	if canCommit.Get() {
		t.Fatal("an error message must block commit")
	}

	s.Messages().Clear("email")
	if !canCommit.Get() {
		t.Fatal("clearing the error must re-enable commit")
	}
}

func TestEntityStoreDirtySignalNonDirtyType(t *testing.T) {
	type plain struct{ Value int }
	s := NewEntityStoreValue(plain{Value: 1})

	if s.DirtySignal().Get() {
		t.Fatal("types without Dirty must read as clean")
	}
}

func TestEntityStoreLogsTransfers(t *testing.T) {
	var events []TransferLogEvent
	s := NewEntityStore[profile](WithLogger(LoggerFunc(func(event TransferLogEvent) {
		events = append(events, event)
	})))

	s.Start()
	s.LoadResult(profile{ID: "p1"}, nil)

	if len(events) != 2 {
		t.Fatalf("expected start and load events, got %+v", events)
	}
	if events[0].Op != "start" || events[1].Op != "load" || events[1].Status != StatusOK {
		t.Fatalf("unexpected events %+v", events)
	}
}
