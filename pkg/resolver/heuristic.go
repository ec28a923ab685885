package resolver

import "strings"

// BestMatch is the deterministic fallback used when the semantic matcher is
// unavailable. Rules, in order: case-insensitive exact match, then
// case-insensitive substring match in either direction with the shortest
// candidate winning (ties broken by original ordering), otherwise "".
// Pure function: identical input always yields identical output.
func BestMatch(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	lowered := strings.ToLower(target)

	for _, candidate := range candidates {
		if strings.ToLower(candidate) == lowered {
			return candidate
		}
	}

	best := ""
	for _, candidate := range candidates {
		c := strings.ToLower(candidate)
		if !strings.Contains(c, lowered) && !strings.Contains(lowered, c) {
			continue
		}
		if best == "" || len(candidate) < len(best) {
			best = candidate
		}
	}

	return best
}
