package signal

// Map derives a read-only Value tracking src through fn. The derived value
// lives as long as src; it is intended for signals owned alongside their
// source, not for ad-hoc subscriptions.
func Map[T, U any](src *Value[T], fn func(T) U) *Value[U] {
	out := New(fn(src.Get()))
	src.Listen(func(value T) {
		out.Set(fn(value))
	})
	return out
}

// MapEq is Map with ==-deduplication on the derived value, so downstream
// subscribers fire only when the mapped value actually changes.
func MapEq[T any, U comparable](src *Value[T], fn func(T) U) *Value[U] {
	out := NewEq(fn(src.Get()))
	src.Listen(func(value T) {
		out.Set(fn(value))
	})
	return out
}

// Map2 derives a deduplicated Value from two sources.
func Map2[A, B any, U comparable](a *Value[A], b *Value[B], fn func(A, B) U) *Value[U] {
	out := NewEq(fn(a.Get(), b.Get()))
	a.Listen(func(value A) {
		out.Set(fn(value, b.Get()))
	})
	b.Listen(func(value B) {
		out.Set(fn(a.Get(), value))
	})
	return out
}
