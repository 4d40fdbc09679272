package store

import "github.com/goliatone/go-remote-store/pkg/signal"

// CollectionState condenses a collection's pending flag and emptiness into
// the three situations a list view renders differently.
type CollectionState int

const (
	CollectionEmpty CollectionState = iota
	CollectionNotEmpty
	CollectionPending
)

// Empty reports a settled, empty collection.
func (c CollectionState) Empty() bool {
	return c == CollectionEmpty
}

// NotEmpty reports a settled collection with records.
func (c CollectionState) NotEmpty() bool {
	return c == CollectionNotEmpty
}

// Pending reports an in-flight refresh.
func (c CollectionState) Pending() bool {
	return c == CollectionPending
}

// EmptyOrPending groups the states that render a placeholder.
func (c CollectionState) EmptyOrPending() bool {
	return c == CollectionEmpty || c == CollectionPending
}

func (c CollectionState) String() string {
	switch c {
	case CollectionNotEmpty:
		return "not-empty"
	case CollectionPending:
		return "pending"
	}
	return "empty"
}

func collectionState(pending, empty bool) CollectionState {
	switch {
	case pending:
		return CollectionPending
	case empty:
		return CollectionEmpty
	}
	return CollectionNotEmpty
}

func combineCollectionState(a, b CollectionState) CollectionState {
	switch {
	case a == CollectionPending || b == CollectionPending:
		return CollectionPending
	case a == CollectionNotEmpty || b == CollectionNotEmpty:
		return CollectionNotEmpty
	}
	return CollectionEmpty
}

// CombineCollectionStates folds several collection state signals into one:
// any pending wins, then any non-empty, then empty. Used by views rendering
// multiple collections as a single surface.
func CombineCollectionStates(states ...*signal.Value[CollectionState]) *signal.Value[CollectionState] {
	if len(states) == 0 {
		return signal.NewEq(CollectionEmpty)
	}
	combined := states[0]
	for _, state := range states[1:] {
		combined = signal.Map2(combined, state, combineCollectionState)
	}
	return combined
}
