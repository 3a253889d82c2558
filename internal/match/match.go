package match

import (
	"regexp"
	"strings"

	"github.com/modelwatch-hq/release-scout/internal/domain"
)

// Package match decides whether a candidate model name is already known.
// The rules favor recall: a genuinely new model may occasionally be swallowed
// as "known", which is preferred over spamming duplicate store entries.

// DefaultFuzzyRatio is the length-ratio floor for the containment rule.
const DefaultFuzzyRatio = 0.7

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// hyphenVariants unifies the Unicode hyphen (U+2010) and non-breaking
	// hyphen (U+2011) seen in provider copy to the ASCII hyphen.
	hyphenVariants = strings.NewReplacer("‐", "-", "‑", "-")
)

// Normalize lowercases, unifies hyphen variants, and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = hyphenVariants.Replace(s)
	return whitespaceRun.ReplaceAllString(s, " ")
}

// Index is the known-name lookup built from the release store at the start
// of a run. It is read-mostly; Add folds in names accepted during the run so
// the same discovery from two sources persists once.
type Index struct {
	byNorm map[string]domain.KnownRelease
	names  []string
	ratio  float64
}

// NewIndex builds an Index over the known releases. ratio <= 0 selects
// DefaultFuzzyRatio.
func NewIndex(known []domain.KnownRelease, ratio float64) *Index {
	if ratio <= 0 {
		ratio = DefaultFuzzyRatio
	}
	idx := &Index{
		byNorm: make(map[string]domain.KnownRelease, len(known)),
		names:  make([]string, 0, len(known)),
		ratio:  ratio,
	}
	for _, rel := range known {
		idx.Add(rel)
	}
	return idx
}

// Add registers one release in the index.
func (i *Index) Add(rel domain.KnownRelease) {
	norm := Normalize(rel.Name)
	if norm == "" {
		return
	}
	if _, seen := i.byNorm[norm]; seen {
		return
	}
	i.byNorm[norm] = rel
	i.names = append(i.names, norm)
}

// Len returns the number of distinct normalized names indexed.
func (i *Index) Len() int {
	return len(i.names)
}

// Exists reports whether candidate matches a known name: exact after
// normalization, equal with spaces removed, or fuzzy containment where one
// string contains the other and min(len)/max(len) exceeds the ratio. The
// ratio guard keeps a short token (e.g. "O1") from matching inside an
// unrelated longer name.
func (i *Index) Exists(candidate string) bool {
	cand := Normalize(candidate)
	if cand == "" {
		return false
	}

	if _, ok := i.byNorm[cand]; ok {
		return true
	}

	candFlat := strings.ReplaceAll(cand, " ", "")
	for _, name := range i.names {
		if strings.ReplaceAll(name, " ", "") == candFlat {
			return true
		}
		if !strings.Contains(cand, name) && !strings.Contains(name, cand) {
			continue
		}
		shorter, longer := len(cand), len(name)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if float64(shorter)/float64(longer) > i.ratio {
			return true
		}
	}
	return false
}
