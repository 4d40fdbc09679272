// Package snapshot flattens entity values into map form for rule
// environments. The JSON round trip keeps field naming aligned with the wire
// representation, so rule expressions address fields by their json tags.
package snapshot

import (
	"encoding/json"
	"fmt"
)

// Hook lets callers adjust the snapshot before it reaches an evaluator.
type Hook func(map[string]any) (map[string]any, error)

// Take converts entity into a map keyed by json field names. Nil entities
// yield an empty map so rule environments always have a binding target.
func Take(entity any, hooks ...Hook) (map[string]any, error) {
	out := map[string]any{}
	if entity != nil {
		buffer, err := json.Marshal(entity)
		if err != nil {
			return nil, fmt.Errorf("snapshot: marshal entity: %w", err)
		}
		if err := json.Unmarshal(buffer, &out); err != nil {
			// Non-object entities (scalars, arrays) bind under "value".
			var value any
			if err := json.Unmarshal(buffer, &value); err != nil {
				return nil, fmt.Errorf("snapshot: decode entity: %w", err)
			}
			out = map[string]any{"value": value}
		}
	}

	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		next, err := hook(out)
		if err != nil {
			return nil, fmt.Errorf("snapshot: hook failed: %w", err)
		}
		if next != nil {
			out = next
		}
	}
	return out, nil
}
