package intel

import "strings"

// Dedupe trims values, drops empties, removes case-insensitive duplicates and
// drops any value contained (case-insensitively) in a longer survivor. The
// longer, more specific value always wins; survivors keep first-seen order.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, v)
	}

	out := make([]string, 0, len(unique))
	for i, v := range unique {
		lower := strings.ToLower(v)
		shadowed := false
		for j, other := range unique {
			if i == j || len(other) <= len(v) {
				continue
			}
			if strings.Contains(strings.ToLower(other), lower) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, v)
		}
	}
	return out
}
