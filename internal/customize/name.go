package customize

import "strings"

const nameJoiner = " et "

// FormatPackName appends the bundled variant names that are not yet one of the
// " et "-separated parts of the pack name. Formatting an already formatted name returns it unchanged.
func FormatPackName(name string, variantNames []string) string {
	out := strings.TrimSpace(name)
	parts := map[string]struct{}{}
	for _, p := range strings.Split(out, nameJoiner) {
		parts[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}

	for _, v := range variantNames {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if _, present := parts[key]; v == "" || present {
			continue
		}
		parts[key] = struct{}{}
		if out == "" {
			out = v
			continue
		}
		out += nameJoiner + v
	}
	return out
}
