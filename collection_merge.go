package store

import "github.com/goliatone/go-remote-store/merge"

// MergeFunc combines a successfully reloaded sequence with the currently held
// items and returns the resulting items. It runs only when the outer status
// is success and the payload was explicitly present.
type MergeFunc[E any] func(status StatusCode, current, incoming []E) []E

// ReplaceMerge discards the current items in favor of the reloaded sequence.
func ReplaceMerge[E any]() MergeFunc[E] {
	return func(_ StatusCode, _, incoming []E) []E {
		return incoming
	}
}

// UpsertMerge updates or inserts each reloaded record while preserving
// local-only additions. match pairs a current record with its reloaded
// counterpart.
func UpsertMerge[E any](match func(current, incoming E) bool) MergeFunc[E] {
	return func(_ StatusCode, current, incoming []E) []E {
		out := append([]E(nil), current...)
		for _, item := range incoming {
			replaced := false
			for i, existing := range out {
				if match(existing, item) {
					out[i] = item
					replaced = true
					break
				}
			}
			if !replaced {
				out = append(out, item)
			}
		}
		return out
	}
}

// UpsertFillMerge behaves like UpsertMerge but fills fields the server left
// absent on a matched record from the locally held copy, so partial reloads
// do not erase local knowledge.
func UpsertFillMerge[E any](match func(current, incoming E) bool) MergeFunc[E] {
	return func(_ StatusCode, current, incoming []E) []E {
		out := append([]E(nil), current...)
		for _, item := range incoming {
			replaced := false
			for i, existing := range out {
				if match(existing, item) {
					out[i] = merge.Fill(item, existing)
					replaced = true
					break
				}
			}
			if !replaced {
				out = append(out, item)
			}
		}
		return out
	}
}
