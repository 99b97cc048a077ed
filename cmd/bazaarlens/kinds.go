package main

import (
	"fmt"
	"strings"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// ValidKindNames returns a sorted list of valid event kind names.
// Delegates to event.KindNames() as the single source of truth.
func ValidKindNames() []string {
	return event.KindNames()
}

// NormalizeKinds converts CLI string values to event kinds.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeKinds(values []string) ([]event.Kind, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]event.Kind, 0, len(values))
	seen := make(map[event.Kind]struct{})

	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty event kind provided (input: %q); valid kinds: %s", raw, strings.Join(ValidKindNames(), ", "))
		}

		k, ok := event.ParseKind(raw)
		if !ok {
			return nil, fmt.Errorf("unknown event kind %q (valid: %s)", raw, strings.Join(ValidKindNames(), ", "))
		}

		if _, dup := seen[k]; dup {
			continue // ignore duplicates silently
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result, nil
}
