package signal

// Listener receives the new value after each accepted mutation.
type Listener[T any] func(T)

type subscriber[T any] struct {
	id int
	fn Listener[T]
}

// Value holds a current value and notifies subscribers when it changes.
type Value[T any] struct {
	value  T
	eq     func(a, b T) bool
	subs   []subscriber[T]
	nextID int
}

// New constructs a Value without deduplication: every Set notifies.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// NewEq constructs a Value that skips notification when the stored value
// compares equal to the incoming one.
func NewEq[T comparable](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		eq:    func(a, b T) bool { return a == b },
	}
}

// NewFunc constructs a Value deduplicating through eq. A nil eq behaves like New.
func NewFunc[T any](initial T, eq func(a, b T) bool) *Value[T] {
	return &Value[T]{value: initial, eq: eq}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.value
}

// Set stores value and notifies subscribers unless the configured equality
// reports no change.
func (v *Value[T]) Set(value T) {
	if v.eq != nil && v.eq(v.value, value) {
		v.value = value
		return
	}
	v.value = value
	v.notify()
}

// Update applies fn to the current value and stores the result through Set.
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.value))
}

// Subscribe registers fn, delivers the current value immediately, and returns
// a cancel function. Cancel is idempotent.
func (v *Value[T]) Subscribe(fn Listener[T]) func() {
	cancel := v.Listen(fn)
	fn(v.value)
	return cancel
}

// Listen registers fn for future changes only, returning a cancel function.
func (v *Value[T]) Listen(fn Listener[T]) func() {
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i := range v.subs {
			if v.subs[i].id == id {
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

func (v *Value[T]) notify() {
	// Copy so a subscriber cancelling during delivery cannot skip a peer.
	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)
	for _, sub := range subs {
		sub.fn(v.value)
	}
}
