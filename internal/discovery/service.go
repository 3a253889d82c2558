package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/modelwatch-hq/release-scout/internal/domain"
	"github.com/modelwatch-hq/release-scout/internal/extract"
	"github.com/modelwatch-hq/release-scout/internal/feed"
	"github.com/modelwatch-hq/release-scout/internal/logger"
	"github.com/modelwatch-hq/release-scout/internal/match"
	"github.com/modelwatch-hq/release-scout/internal/store"
	"github.com/modelwatch-hq/release-scout/pkg/emitters"
	"github.com/modelwatch-hq/release-scout/pkg/profiles"
)

// Options holds the discovery heuristics. Zero values fall back to the
// long-standing defaults; the values are deliberately configurable rather
// than re-derived.
type Options struct {
	RecencyWindow time.Duration
	MaxFeedItems  int
	FuzzyRatio    float64
}

const (
	defaultRecencyWindow = 7 * 24 * time.Hour
	defaultMaxFeedItems  = 10
)

// Service drives one discovery run: per provider, check the feed (when
// configured) and the blog page, extract candidate model names, dedup
// against the known-release store, persist what is new, and emit the
// summary. Providers are processed strictly sequentially; any per-provider
// or per-source failure is logged and treated as zero findings. Fetches are
// never retried within a run; the next scheduled run is the retry.
type Service struct {
	fetcher  BodyFetcher
	store    store.Store
	emitter  SummaryEmitter
	profiles []profiles.Profile
	opts     Options
	appName  string
	now      func() time.Time
}

// NewService wires a discovery service.
func NewService(fetcher BodyFetcher, st store.Store, emitter SummaryEmitter, profs []profiles.Profile, appName string, opts Options) *Service {
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = defaultRecencyWindow
	}
	if opts.MaxFeedItems <= 0 {
		opts.MaxFeedItems = defaultMaxFeedItems
	}
	return &Service{
		fetcher:  fetcher,
		store:    st,
		emitter:  emitter,
		profiles: profs,
		opts:     opts,
		appName:  appName,
		now:      time.Now,
	}
}

type providerFinding struct {
	provider profiles.Profile
	finding  domain.Finding
}

// Run executes one full discovery pass. Only a store load failure is fatal;
// everything else degrades to partial results surfaced in the summary.
func (s *Service) Run(ctx context.Context) (domain.RunSummary, error) {
	if s == nil || s.store == nil {
		return domain.RunSummary{}, fmt.Errorf("discovery service is not initialized")
	}
	if len(s.profiles) == 0 {
		return domain.RunSummary{}, fmt.Errorf("no providers configured for discovery")
	}

	summary := domain.RunSummary{StartedAt: s.now().UTC()}

	known, err := s.store.LoadKnown()
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("load known releases: %w", err)
	}
	idx := match.NewIndex(known, s.opts.FuzzyRatio)
	logger.InfoObj("known releases loaded", "known_meta", map[string]any{
		"records": len(known),
		"names":   idx.Len(),
	})

	var findings []providerFinding
	for _, p := range s.profiles {
		select {
		case <-ctx.Done():
			return domain.RunSummary{}, ctx.Err()
		default:
		}
		for _, f := range s.checkProvider(ctx, p) {
			findings = append(findings, providerFinding{provider: p, finding: f})
		}
	}

	s.dedupAndPersist(findings, idx, &summary)

	summary.Count = len(summary.NewReleases)
	summary.Found = summary.Count > 0
	summary.FinishedAt = s.now().UTC()

	if s.emitter != nil {
		if _, err := s.emitter.Emit(ctx, emitters.NewEvent(s.appName, summary)); err != nil {
			logger.ErrorObj("summary emission partially failed", "emit_error", err.Error())
		}
	}

	return summary, nil
}

// checkProvider runs the feed check then the page check for one provider.
// Failures in either step are contained here.
func (s *Service) checkProvider(ctx context.Context, p profiles.Profile) []domain.Finding {
	var findings []domain.Finding

	if p.FeedURL != "" {
		feedFindings, err := s.checkFeed(ctx, p)
		if err != nil {
			logger.WarnObj("feed check failed", "provider_error", map[string]any{
				"provider_id": p.ID,
				"source":      string(domain.SourceFeed),
				"error":       err.Error(),
			})
		}
		findings = append(findings, feedFindings...)
	}

	pageFindings, err := s.checkPage(ctx, p)
	if err != nil {
		logger.WarnObj("page check failed", "provider_error", map[string]any{
			"provider_id": p.ID,
			"source":      string(domain.SourcePage),
			"error":       err.Error(),
		})
	}
	findings = append(findings, pageFindings...)

	logger.InfoObj("provider check completed", "provider_result", map[string]any{
		"provider_id": p.ID,
		"findings":    len(findings),
	})
	return findings
}

// checkFeed fetches and parses the provider feed, keeps entries published
// within the recency window (entries without a parseable date are included
// conservatively), caps extraction work to the most recent entries, and
// extracts candidates from title + description.
func (s *Service) checkFeed(ctx context.Context, p profiles.Profile) ([]domain.Finding, error) {
	body, err := s.fetcher.Fetch(ctx, p.FeedURL)
	if err != nil {
		return nil, err
	}

	entries := feed.Parse(body)
	entries = s.recentEntries(entries)

	var findings []domain.Finding
	for _, entry := range entries {
		text := entry.Title + " " + entry.Description
		models := extract.Models(text, p)
		if len(models) == 0 {
			continue
		}
		observed := s.now()
		if entry.PublishedAt != nil {
			observed = *entry.PublishedAt
		}
		findings = append(findings, domain.Finding{
			Source:     domain.SourceFeed,
			Title:      entry.Title,
			Link:       entry.Link,
			ObservedAt: observed,
			Models:     models,
		})
	}
	return findings, nil
}

// recentEntries filters to the recency window and caps to the most recent
// MaxFeedItems entries. Entries without a date sort as newest so they are
// never silently dropped by the cap ordering.
func (s *Service) recentEntries(entries []domain.FeedEntry) []domain.FeedEntry {
	now := s.now()
	cutoff := now.Add(-s.opts.RecencyWindow)

	recent := make([]domain.FeedEntry, 0, len(entries))
	for _, e := range entries {
		if e.PublishedAt == nil || e.PublishedAt.After(cutoff) {
			recent = append(recent, e)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		ti, tj := now, now
		if recent[i].PublishedAt != nil {
			ti = *recent[i].PublishedAt
		}
		if recent[j].PublishedAt != nil {
			tj = *recent[j].PublishedAt
		}
		return ti.After(tj)
	})

	if len(recent) > s.opts.MaxFeedItems {
		recent = recent[:s.opts.MaxFeedItems]
	}
	return recent
}

// checkPage fetches the provider blog page and extracts candidates from the
// page title, h1 headings and main content.
func (s *Service) checkPage(ctx context.Context, p profiles.Profile) ([]domain.Finding, error) {
	body, err := s.fetcher.Fetch(ctx, p.PageURL)
	if err != nil {
		return nil, err
	}

	page := extract.Page(body)
	text := page.Title
	for _, h := range page.Headings {
		text += " " + h
	}
	text += " " + page.Content

	models := extract.Models(text, p)
	if len(models) == 0 {
		return nil, nil
	}

	return []domain.Finding{{
		Source:     domain.SourcePage,
		Title:      page.Title,
		Link:       p.PageURL,
		ObservedAt: s.now(),
		Models:     models,
	}}, nil
}

// dedupAndPersist checks every candidate against the known index and appends
// the genuinely new ones to the store, one durable write per release.
// Accepted names join the index immediately so the same discovery from a
// second source within the run is not appended twice. Append failures are
// flagged in the summary and do not stop the run.
func (s *Service) dedupAndPersist(findings []providerFinding, idx *match.Index, summary *domain.RunSummary) {
	for _, pf := range findings {
		for _, model := range pf.finding.Models {
			if idx.Exists(model) {
				continue
			}

			date := pf.finding.ObservedAt.Format(domain.DisplayDateFormat)
			rel := domain.NewRelease{
				Provider:     pf.provider.ID,
				ProviderName: pf.provider.Name,
				Model:        model,
				Date:         date,
				Source:       pf.finding.Source,
				Link:         pf.finding.Link,
			}

			// Either way the candidate is resolved for the rest of the run.
			idx.Add(domain.KnownRelease{Provider: rel.Provider, Date: date, Name: model})

			if err := s.store.Append(rel.Provider, rel.Model, rel.Date); err != nil {
				level := logger.ErrorObj
				if errors.Is(err, store.ErrSectionNotFound) {
					level = logger.WarnObj
				}
				level("release append failed", "append_error", map[string]any{
					"provider_id": rel.Provider,
					"model":       rel.Model,
					"error":       err.Error(),
				})
				summary.PersistFailures = append(summary.PersistFailures, rel.ProviderLabel()+": "+rel.Model)
				continue
			}

			logger.InfoObj("new release persisted", "new_release", rel)
			summary.NewReleases = append(summary.NewReleases, rel)
		}
	}
}
