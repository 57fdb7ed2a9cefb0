// Package strings provides string-set helpers used by identity metadata.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  WR ", "TE", "WR", "", "  "})
//	// Returns: []string{"WR", "TE"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// UnionFold merges sets case-insensitively. The first spelling seen wins and
// input order is preserved, so merging metadata keeps the primary's values first.
//
// Example:
//
//	UnionFold([]string{"Pat Mahomes"}, []string{"pat mahomes", "Patrick Mahomes"})
//	// Returns: []string{"Pat Mahomes", "Patrick Mahomes"}
func UnionFold(sets ...[]string) []string {
	var result []string
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, v := range set {
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}

// ContainsFold reports whether values holds v, ignoring case and surrounding space.
func ContainsFold(values []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, existing := range values {
		if strings.EqualFold(strings.TrimSpace(existing), v) {
			return true
		}
	}
	return false
}
