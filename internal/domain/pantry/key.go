package pantry

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey canonicalizes a free-text ingredient name into an alias lookup
// key. An empty result means the name is unusable and must be skipped.
//
// Decorations are stripped until none are left, so "(tomato)," and
// "\"(tomato)\"" both become "tomato" and NormalizeKey(NormalizeKey(x)) equals
// NormalizeKey(x) for every x.
func NormalizeKey(raw string) string {
	s := norm.NFC.String(strings.ToLower(raw))
	for {
		next := stripDecorations(s)
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}

func stripDecorations(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "[(")
	s = strings.TrimRight(s, "])")
	s = strings.TrimLeft(s, `'"`)
	s = strings.TrimRight(s, `'"`)
	return strings.TrimRight(s, ",")
}

// NormalizeKeys applies NormalizeKey to every name and drops unusable results.
// Order is preserved and duplicates are removed.
func NormalizeKeys(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := NormalizeKey(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
