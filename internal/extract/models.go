package extract

import (
	"strings"

	"github.com/modelwatch-hq/release-scout/pkg/profiles"
)

// Models returns the deduplicated candidate model names found in text
// according to the provider profile. The keyword gate short-circuits before
// any pattern scan: text that never mentions the provider cannot name one of
// its models. Patterns are applied in authored order and all matches are
// collected; false positives are expected and filtered downstream by the
// dedup step and human review.
func Models(text string, profile profiles.Profile) []string {
	if !mentionsProvider(text, profile.Keywords) {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, re := range profile.Patterns() {
		for _, m := range re.FindAllString(text, -1) {
			name := cleanMatch(m)
			if len(name) <= 2 {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func mentionsProvider(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cleanMatch trims, collapses internal whitespace, and strips one trailing
// punctuation character left over from sentence boundaries.
func cleanMatch(m string) string {
	m = strings.Join(strings.Fields(m), " ")
	m = strings.TrimSpace(m)
	if len(m) > 0 && strings.ContainsRune(".,;:!?", rune(m[len(m)-1])) {
		m = m[:len(m)-1]
	}
	return strings.TrimSpace(m)
}
