package store

// Optional wraps a possibly-absent entity value so data signals can carry
// "no record" explicitly.
type Optional[E any] struct {
	value   E
	present bool
}

// Some wraps a present value.
func Some[E any](value E) Optional[E] {
	return Optional[E]{value: value, present: true}
}

// None represents an absent value.
func None[E any]() Optional[E] {
	return Optional[E]{}
}

// Get returns the value and whether it is present.
func (o Optional[E]) Get() (E, bool) {
	return o.value, o.present
}

// Present reports whether a value is held.
func (o Optional[E]) Present() bool {
	return o.present
}

// OrZero returns the value, or the zero value when absent.
func (o Optional[E]) OrZero() E {
	return o.value
}
