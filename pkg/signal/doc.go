// Package signal implements small synchronous observables used by the store
// types to surface state changes to a presentation layer.
//
// Responsibilities:
//   - Value[T] holds a current value and fans out changes to subscribers in
//     subscription order, synchronously, after the value is fully applied.
//   - Map/Map2 build derived read-only values that track their sources.
//
// Concurrency: a Value is owned by a single logical component, matching the
// cooperative scheduling model of the stores. It performs no locking; callers
// that mutate from multiple goroutines must serialize access themselves.
// Subscribers must not mutate the Value they observe during delivery.
package signal
