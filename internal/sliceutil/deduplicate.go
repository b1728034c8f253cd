// Package sliceutil provides generic slice helpers.
package sliceutil

// Deduplicate returns items with duplicates removed, keeping the first
// occurrence of each key and the original order. keyFunc maps an item to
// its identity, which lets callers deduplicate structs by a single field.
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		key := keyFunc(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
