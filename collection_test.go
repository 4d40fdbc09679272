package store

import (
	"reflect"
	"strings"
	"testing"
)

type task struct {
	ID    string
	Title string
	Rank  int
	Tags  []string
}

func byRank(a, b task) int { return a.Rank - b.Rank }

func taskIDs(items []task) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestCollectionStoreNilComparatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("nil comparator must panic")
		}
	}()
	NewCollectionStore[task](nil)
}

func TestCollectionStoreInsertKeepsOrder(t *testing.T) {
	s := NewCollectionStore(byRank)

	s.Insert(task{ID: "b", Rank: 2})
	s.Insert(task{ID: "a", Rank: 1})
	s.Insert(task{ID: "c", Rank: 3})

	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestCollectionStoreInsertStableAmongEquals(t *testing.T) {
	s := NewCollectionStore(byRank)

	s.Insert(task{ID: "first", Rank: 1})
	s.Insert(task{ID: "second", Rank: 1})
	s.Insert(task{ID: "third", Rank: 1})

	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("equal items must keep encounter order, got %v", got)
	}
}

func TestCollectionStoreSeededConstructorSorts(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{
		{ID: "c", Rank: 3},
		{ID: "a", Rank: 1},
		{ID: "b", Rank: 2},
	})

	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("seed must be sorted, got %v", got)
	}
	if !s.TransferState().Idle() {
		t.Fatal("seeding must not touch transfer state")
	}
}

func TestCollectionStoreUpsert(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{
		{ID: "a", Rank: 1},
		{ID: "b", Rank: 2},
	})

	// Replacement with a changed sort field re-positions the record.
	s.Upsert(func(item task) bool { return item.ID == "a" }, task{ID: "a", Rank: 9})
	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("expected re-positioning, got %v", got)
	}

	// No match inserts at the comparator position.
	s.Upsert(func(item task) bool { return item.ID == "z" }, task{ID: "z", Rank: 0})
	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"z", "b", "a"}) {
		t.Fatalf("expected sorted insert, got %v", got)
	}
}

func TestCollectionStoreRemoveFindAnyAll(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{
		{ID: "a", Rank: 1},
		{ID: "b", Rank: 2},
	})

	if !s.Remove(func(item task) bool { return item.ID == "a" }) {
		t.Fatal("expected removal")
	}
	if s.Remove(func(item task) bool { return item.ID == "a" }) {
		t.Fatal("second removal must report false")
	}

	if item, ok := s.Find(func(item task) bool { return item.ID == "b" }); !ok || item.Rank != 2 {
		t.Fatalf("Find = %+v, %v", item, ok)
	}
	if s.Any(func(item task) bool { return item.ID == "a" }) {
		t.Fatal("Any must be false after removal")
	}
	if !s.All(func(item task) bool { return item.Rank > 0 }) {
		t.Fatal("All must hold for the remaining items")
	}
}

func TestCollectionStoreItemsReturnsCopy(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{{ID: "a", Rank: 1}})

	items := s.Items()
	items[0].ID = "mutated"

	if s.Items()[0].ID != "a" {
		t.Fatal("Items must return a copy")
	}
}

func TestCollectionStoreLoadMergeProtocol(t *testing.T) {
	seed := []task{
		{ID: "a", Rank: 1},
		{ID: "b", Rank: 2},
	}

	t.Run("failure leaves items untouched and never calls merge", func(t *testing.T) {
		s := NewCollectionStoreItems(byRank, seed)
		s.Start()
		s.LoadMerge(StatusNotFound, []task{{ID: "x", Rank: 9}}, func(StatusCode, []task, []task) []task {
			t.Fatal("merge must not run on failure")
			return nil
		})

		if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Fatalf("items changed on failure: %v", got)
		}
		if s.TransferState().LastStatus() != StatusNotFound {
			t.Fatalf("expected Done(not-found), got %+v", s.TransferState())
		}
		if !s.Messages().HasError() {
			t.Fatal("failure must surface a service message")
		}
	})

	t.Run("absent payload leaves items untouched and never calls merge", func(t *testing.T) {
		s := NewCollectionStoreItems(byRank, seed)
		s.Start()
		s.LoadMerge(StatusOK, nil, func(StatusCode, []task, []task) []task {
			t.Fatal("merge must not run for an absent payload")
			return nil
		})

		if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Fatalf("items changed on absent payload: %v", got)
		}
		if !s.TransferState().OK() {
			t.Fatalf("expected Done(OK), got %+v", s.TransferState())
		}
	})

	t.Run("present empty payload reaches merge", func(t *testing.T) {
		s := NewCollectionStoreItems(byRank, seed)
		calls := 0
		s.Start()
		s.LoadMerge(StatusOK, []task{}, func(_ StatusCode, current, incoming []task) []task {
			calls++
			if len(current) != 2 || len(incoming) != 0 {
				t.Fatalf("unexpected merge input current=%d incoming=%d", len(current), len(incoming))
			}
			return incoming
		})

		if calls != 1 {
			t.Fatalf("merge must run exactly once, got %d", calls)
		}
		if s.Len() != 0 {
			t.Fatalf("expected the merge result to win, got %v", taskIDs(s.Items()))
		}
	})

	t.Run("merge result is re-sorted when out of order", func(t *testing.T) {
		s := NewCollectionStore(byRank)
		s.Start()
		s.LoadMerge(StatusOK, []task{{ID: "b", Rank: 2}, {ID: "a", Rank: 1}}, ReplaceMerge[task]())

		if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Fatalf("merge result must respect comparator order, got %v", got)
		}
	})

	t.Run("success clears transfer diagnostics", func(t *testing.T) {
		s := NewCollectionStore(byRank)
		s.Start()
		s.LoadMerge(StatusServerError, nil, nil)
		if !s.Messages().HasError() {
			t.Fatal("failure must record a message")
		}

		s.Start()
		s.LoadMerge(StatusOK, []task{{ID: "a", Rank: 1}}, ReplaceMerge[task]())
		if s.Messages().HasError() {
			t.Fatal("success must clear transfer diagnostics")
		}
	})

	t.Run("success clears field-keyed detail from a prior failure", func(t *testing.T) {
		s := NewCollectionStoreItems(byRank, seed)

		detail := NewMessages()
		detail.Set("range", ErrorMessage("validation.range"))

		s.Start()
		s.Fail(Fail(StatusValidationFailed).WithDetail(detail))
		if !s.Messages().HasError() {
			t.Fatal("failure detail must surface as an error")
		}

		s.Start()
		s.LoadMerge(StatusOK, []task{{ID: "a", Rank: 1}}, ReplaceMerge[task]())

		if got := s.Messages().ForKey("range"); len(got) != 0 {
			t.Fatalf("success must clear field-keyed failure detail, got %+v", got)
		}
		if s.Messages().HasError() {
			t.Fatalf("stale error flag after a successful reload: %s", s.Messages())
		}
	})

	t.Run("nil merge func keeps the payload", func(t *testing.T) {
		s := NewCollectionStore(byRank)
		s.Start()
		s.LoadMerge(StatusOK, []task{{ID: "a", Rank: 1}}, nil)
		if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"a"}) {
			t.Fatalf("unexpected items %v", got)
		}
	})
}

func TestCollectionStoreFail(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{{ID: "a", Rank: 1}})

	detail := NewMessages()
	detail.Set("range", ErrorMessage("validation.range"))

	s.Start()
	s.Fail(Fail(StatusValidationFailed).WithDetail(detail))

	if s.Len() != 1 {
		t.Fatal("Fail must keep items")
	}
	if s.TransferState().LastStatus() != StatusValidationFailed {
		t.Fatalf("expected Done(validation-failed), got %+v", s.TransferState())
	}
	if got := s.Messages().ForKey("range"); len(got) != 1 {
		t.Fatalf("detail must land keyed, got %+v", got)
	}
}

func TestCollectionStoreResetAndInvalidate(t *testing.T) {
	s := NewCollectionStoreItems(byRank, []task{{ID: "a", Rank: 1}})
	s.Start()
	s.LoadMerge(StatusOK, []task{{ID: "b", Rank: 2}}, ReplaceMerge[task]())

	s.Invalidate()
	if !s.TransferState().Idle() || s.Len() != 1 {
		t.Fatal("Invalidate must keep items while dropping the state to Idle")
	}

	s.Reset()
	if s.Len() != 0 || !s.TransferState().Idle() || !s.Messages().IsEmpty() {
		t.Fatal("Reset must restore the initial lifecycle point")
	}

	s.ResetItems([]task{{ID: "z", Rank: 9}, {ID: "y", Rank: 1}})
	if got := taskIDs(s.Items()); !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Fatalf("ResetItems must re-seed sorted, got %v", got)
	}
}

func TestCollectionStoreStateSignal(t *testing.T) {
	s := NewCollectionStore(byRank)

	var states []CollectionState
	s.CollectionStateSignal().Listen(func(state CollectionState) { states = append(states, state) })

	if got := s.CollectionStateSignal().Get(); !got.Empty() {
		t.Fatalf("initial state = %s", got)
	}

	s.Start()
	s.LoadMerge(StatusOK, []task{{ID: "a", Rank: 1}}, ReplaceMerge[task]())

	want := []CollectionState{CollectionPending, CollectionNotEmpty}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("state transitions = %v, want %v", states, want)
	}
}

func TestMergePolicies(t *testing.T) {
	current := []task{
		{ID: "a", Rank: 1, Title: "local a", Tags: []string{"urgent"}},
		{ID: "local", Rank: 5, Title: "local only"},
	}
	incoming := []task{
		{ID: "a", Rank: 1, Title: "server a"},
		{ID: "b", Rank: 2, Title: "server b"},
	}
	sameID := func(current, incoming task) bool { return current.ID == incoming.ID }

	t.Run("replace discards local items", func(t *testing.T) {
		got := ReplaceMerge[task]()(StatusOK, current, incoming)
		if !reflect.DeepEqual(taskIDs(got), []string{"a", "b"}) {
			t.Fatalf("unexpected result %v", taskIDs(got))
		}
	})

	t.Run("upsert preserves local-only items", func(t *testing.T) {
		got := UpsertMerge(sameID)(StatusOK, current, incoming)
		if !reflect.DeepEqual(taskIDs(got), []string{"a", "local", "b"}) {
			t.Fatalf("unexpected result %v", taskIDs(got))
		}
		for _, item := range got {
			if item.ID == "a" && item.Title != "server a" {
				t.Fatalf("matched item must take the server copy, got %+v", item)
			}
		}
	})

	t.Run("upsert fill keeps local fields the server omitted", func(t *testing.T) {
		partial := []task{{ID: "a", Rank: 1, Title: "server a"}}
		got := UpsertFillMerge(sameID)(StatusOK, current, partial)
		for _, item := range got {
			if item.ID != "a" {
				continue
			}
			if item.Title != "server a" {
				t.Fatalf("explicit server fields must win, got %+v", item)
			}
			if !reflect.DeepEqual(item.Tags, []string{"urgent"}) {
				t.Fatalf("nil server fields must fill from local, got %+v", item)
			}
		}
	})
}

func TestCombineCollectionStates(t *testing.T) {
	a := NewCollectionStore(byRank)
	b := NewCollectionStore(byRank)

	combined := CombineCollectionStates(a.CollectionStateSignal(), b.CollectionStateSignal())
	if got := combined.Get(); !got.Empty() {
		t.Fatalf("two empty collections combine to %s", got)
	}

	b.Insert(task{ID: "x", Rank: 1})
	if got := combined.Get(); !got.NotEmpty() {
		t.Fatalf("non-empty must win over empty, got %s", got)
	}

	a.Start()
	if got := combined.Get(); !got.Pending() {
		t.Fatalf("pending must win over everything, got %s", got)
	}

	if got := CombineCollectionStates().Get(); !got.Empty() {
		t.Fatalf("no inputs combine to %s", got)
	}
}

func TestCollectionStateString(t *testing.T) {
	if strings.Join([]string{
		CollectionEmpty.String(),
		CollectionNotEmpty.String(),
		CollectionPending.String(),
	}, ",") != "empty,not-empty,pending" {
		t.Fatal("unexpected CollectionState strings")
	}
}
