package domain

import "time"

// Domain contains core models shared across the discovery pipeline.

// DisplayDateFormat is the human-facing date form used in the release store
// and reports, e.g. "Aug 5 2025".
const DisplayDateFormat = "Jan 2 2006"

// Source identifies where a finding came from.
type Source string

const (
	SourceFeed Source = "feed"
	SourcePage Source = "page"
)

// FeedEntry is a single syndication feed item. PublishedAt is nil when the
// item carries no parseable date.
type FeedEntry struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	Description string
}

// ExtractedPage is the text content pulled out of one HTML document.
type ExtractedPage struct {
	Title    string
	Headings []string
	Content  string
}

// Finding is one feed item or page check that produced candidate model names.
type Finding struct {
	Source     Source
	Title      string
	Link       string
	ObservedAt time.Time
	Models     []string
}

// KnownRelease is one record from the release store. Name is the dedup key
// after normalization.
type KnownRelease struct {
	Provider string `json:"provider"`
	Date     string `json:"date"`
	Name     string `json:"name"`
}

// NewRelease is a genuinely new discovery made during a run. Provider is the
// store section key; ProviderName is the display form used in summaries and
// reports.
type NewRelease struct {
	Provider     string `json:"provider"`
	ProviderName string `json:"provider_name,omitempty"`
	Model        string `json:"model"`
	Date         string `json:"date"`
	Source       Source `json:"source"`
	Link         string `json:"link,omitempty"`
}

// ProviderLabel returns the display name, falling back to the id.
func (r NewRelease) ProviderLabel() string {
	if r.ProviderName != "" {
		return r.ProviderName
	}
	return r.Provider
}

// RunSummary aggregates the outcome of a single discovery run. It is handed
// to the emitters and then discarded; the release store is the only durable
// state.
type RunSummary struct {
	Found       bool         `json:"new_releases"`
	Count       int          `json:"count"`
	NewReleases []NewRelease `json:"releases,omitempty"`
	// PersistFailures lists releases that were discovered but could not be
	// appended to the store, as "provider: model" pairs.
	PersistFailures []string  `json:"persist_failures,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Line renders the short automation summary, one "Provider: model" pair per
// release.
func (s RunSummary) Line() string {
	if len(s.NewReleases) == 0 {
		return ""
	}
	out := ""
	for i, r := range s.NewReleases {
		if i > 0 {
			out += "; "
		}
		out += r.ProviderLabel() + ": " + r.Model
	}
	return out
}
