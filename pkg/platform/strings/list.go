// Package strings parses delimited configuration values.
package strings

import (
	"strings"
)

// SplitList splits s on sep, trims each element and drops empty elements and
// repeats. Order of first occurrence is preserved.
//
//	SplitList("a:9092, b:9092,,a:9092", ",")
//	// []string{"a:9092", "b:9092"}
func SplitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
