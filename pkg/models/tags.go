package models

import (
	"sort"
	"strings"
)

// TagSeparator joins multi-valued fields in flat record sets.
const TagSeparator = "|"

// JoinTags serializes a multi-valued field: empty tokens are dropped,
// duplicates removed and the remainder sorted before joining.
func JoinTags(values []string) string {
	return strings.Join(NormalizeTags(values), TagSeparator)
}

// NormalizeTags returns the sorted, de-duplicated, non-empty tokens of values.
func NormalizeTags(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// SplitTags is the inverse of JoinTags.
func SplitTags(value string) []string {
	if value == "" {
		return nil
	}
	return NormalizeTags(strings.Split(value, TagSeparator))
}
