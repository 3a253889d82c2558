package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelwatch-hq/release-scout/internal/domain"
	"github.com/modelwatch-hq/release-scout/internal/store"
	"github.com/modelwatch-hq/release-scout/pkg/emitters"
	"github.com/modelwatch-hq/release-scout/pkg/profiles"
)

type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	if body, ok := s.bodies[url]; ok {
		return body, nil
	}
	return "", fmt.Errorf("no stub body for %s", url)
}

type stubSink struct {
	events []emitters.Event
	err    error
}

func (s *stubSink) Emit(_ context.Context, evt emitters.Event) (int, error) {
	s.events = append(s.events, evt)
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

type failingStore struct {
	loadErr   error
	appendErr error
	appended  []string
}

func (f *failingStore) LoadKnown() ([]domain.KnownRelease, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return nil, nil
}

func (f *failingStore) Append(provider, name, date string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, provider+"/"+name)
	return nil
}

func (f *failingStore) Close() error { return nil }

func anthropicProfile() profiles.Profile {
	return profiles.Profile{
		ID:       "anthropic",
		Name:     "Anthropic",
		PageURL:  "https://anthropic.test/news",
		FeedURL:  "https://anthropic.test/feed.xml",
		Keywords: []string{"claude", "anthropic"},
		ModelPatterns: []string{
			`(?i)claude\s+(?:opus|sonnet|haiku)\s+\d+(?:\.\d+)?`,
		},
	}
}

func feedXML(title string, published time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Anthropic News</title>
    <item>
      <title>%s</title>
      <link>https://anthropic.test/news/item</link>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`, title, published.Format(time.RFC1123Z))
}

const quietPage = `<html><head><title>News</title></head><body><main><p>Company updates.</p></main></body></html>`

func seedStore(t *testing.T) (store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "releases.md")
	seed := strings.Join([]string{
		"# Known model releases",
		"",
		"## anthropic",
		"",
		"| Date | Model |",
		"| --- | --- |",
		"| Jun 20 2024 | Claude 3.5 Sonnet |",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed store: %v", err)
	}
	st, err := store.NewStore("markdown", path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, path
}

func TestRunDiscoversNewReleaseFromFeed(t *testing.T) {
	st, path := seedStore(t)
	defer st.Close()

	prof := anthropicProfile()
	fetcher := &stubFetcher{bodies: map[string]string{
		prof.FeedURL: feedXML("Introducing Claude Opus 4.5", time.Now().Add(-48*time.Hour)),
		prof.PageURL: quietPage,
	}}
	sink := &stubSink{}

	svc := NewService(fetcher, st, sink, []profiles.Profile{prof}, "release-scout", Options{})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !summary.Found || summary.Count != 1 {
		t.Fatalf("expected exactly one new release, got %+v", summary)
	}
	rel := summary.NewReleases[0]
	if rel.Provider != "anthropic" || rel.Source != domain.SourceFeed {
		t.Errorf("unexpected release origin: %+v", rel)
	}
	if !strings.Contains(rel.Model, "Opus") || !strings.Contains(rel.Model, "4.5") {
		t.Errorf("unexpected model name %q", rel.Model)
	}
	if !strings.HasPrefix(summary.Line(), "Anthropic: ") {
		t.Errorf("summary line should use the provider display name, got %q", summary.Line())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	if !strings.Contains(string(raw), rel.Model) {
		t.Errorf("store file missing appended release %q:\n%s", rel.Model, raw)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected one emitted event, got %d", len(sink.events))
	}
	if sink.events[0].Summary.Count != 1 {
		t.Errorf("emitted summary disagrees with returned one: %+v", sink.events[0].Summary)
	}
}

func TestRunIsIdempotentAgainstUnchangedCorpus(t *testing.T) {
	st, path := seedStore(t)

	prof := anthropicProfile()
	fetcher := &stubFetcher{bodies: map[string]string{
		prof.FeedURL: feedXML("Introducing Claude Opus 4.5", time.Now().Add(-48*time.Hour)),
		prof.PageURL: quietPage,
	}}

	svc := NewService(fetcher, st, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Count != 1 {
		t.Fatalf("first run should find one release, got %d", first.Count)
	}
	st.Close()

	// Fresh process over the same corpus: the store now knows the release.
	st2, err := store.NewStore("markdown", path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st2.Close()

	svc2 := NewService(fetcher, st2, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	second, err := svc2.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Found || second.Count != 0 {
		t.Errorf("second run should find nothing, got %+v", second)
	}
}

func TestRunSameModelFromTwoSourcesPersistsOnce(t *testing.T) {
	st, _ := seedStore(t)
	defer st.Close()

	prof := anthropicProfile()
	fetcher := &stubFetcher{bodies: map[string]string{
		prof.FeedURL: feedXML("Introducing Claude Opus 4.5", time.Now().Add(-24*time.Hour)),
		prof.PageURL: `<html><head><title>Claude Opus 4.5 is here</title></head><body><main><h1>Claude Opus 4.5</h1><p>Announcing Claude Opus 4.5 from Anthropic.</p></main></body></html>`,
	}}

	svc := NewService(fetcher, st, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count != 1 {
		t.Errorf("feed and page naming the same model should persist once, got %+v", summary.NewReleases)
	}
}

func TestRunFetchFailureIsNonFatal(t *testing.T) {
	st, _ := seedStore(t)
	defer st.Close()

	prof := anthropicProfile()
	fetcher := &stubFetcher{
		errs: map[string]error{
			prof.FeedURL: errors.New("connection refused"),
			prof.PageURL: errors.New("connection refused"),
		},
	}

	svc := NewService(fetcher, st, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should survive fetch failures: %v", err)
	}
	if summary.Found || summary.Count != 0 {
		t.Errorf("failed provider should yield zero findings, got %+v", summary)
	}
}

func TestRunStoreLoadFailureIsFatal(t *testing.T) {
	prof := anthropicProfile()
	svc := NewService(&stubFetcher{}, &failingStore{loadErr: errors.New("corrupt")}, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatalf("expected fatal error when known releases cannot be loaded")
	}
}

func TestRunAppendFailureSurfacesInSummary(t *testing.T) {
	prof := anthropicProfile()
	fetcher := &stubFetcher{bodies: map[string]string{
		prof.FeedURL: feedXML("Introducing Claude Opus 4.5", time.Now().Add(-24*time.Hour)),
		prof.PageURL: quietPage,
	}}
	fs := &failingStore{appendErr: store.ErrSectionNotFound}

	svc := NewService(fetcher, fs, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Found || summary.Count != 0 {
		t.Errorf("failed append must not count as a new release: %+v", summary)
	}
	if len(summary.PersistFailures) != 1 || !strings.HasPrefix(summary.PersistFailures[0], "Anthropic: ") {
		t.Errorf("expected one persist failure labeled with the display name, got %+v", summary.PersistFailures)
	}
}

func TestRecencyWindowFiltersOldEntries(t *testing.T) {
	st, _ := seedStore(t)
	defer st.Close()

	prof := anthropicProfile()
	fetcher := &stubFetcher{bodies: map[string]string{
		prof.FeedURL: feedXML("Introducing Claude Opus 4.5", time.Now().Add(-30*24*time.Hour)),
		prof.PageURL: quietPage,
	}}

	svc := NewService(fetcher, st, &stubSink{}, []profiles.Profile{prof}, "release-scout", Options{})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Found {
		t.Errorf("month-old entry should fall outside the recency window: %+v", summary.NewReleases)
	}
}

func TestRecentEntriesCapAndUndatedHandling(t *testing.T) {
	svc := NewService(&stubFetcher{}, &failingStore{}, nil, []profiles.Profile{anthropicProfile()}, "release-scout", Options{MaxFeedItems: 3})

	now := time.Now()
	mk := func(age time.Duration) domain.FeedEntry {
		ts := now.Add(-age)
		return domain.FeedEntry{Title: fmt.Sprintf("entry %s", age), PublishedAt: &ts}
	}

	entries := []domain.FeedEntry{
		mk(72 * time.Hour),
		mk(2 * time.Hour),
		{Title: "undated"},
		mk(10 * 24 * time.Hour), // outside the window
		mk(24 * time.Hour),
	}

	got := svc.recentEntries(entries)
	if len(got) != 3 {
		t.Fatalf("expected cap at 3 entries, got %d", len(got))
	}
	if got[0].Title != "undated" {
		t.Errorf("undated entry should sort as newest, got %q first", got[0].Title)
	}
	for _, e := range got {
		if e.Title == "entry 240h0m0s" {
			t.Errorf("entry outside the window survived the filter")
		}
		if e.Title == "entry 72h0m0s" {
			t.Errorf("oldest in-window entry should be dropped by the cap")
		}
	}
}

func TestRecentEntriesUndatedOrderIsStable(t *testing.T) {
	svc := NewService(&stubFetcher{}, &failingStore{}, nil, []profiles.Profile{anthropicProfile()}, "release-scout", Options{})

	entries := []domain.FeedEntry{
		{Title: "first undated"},
		{Title: "second undated"},
		{Title: "third undated"},
	}

	got := svc.recentEntries(entries)
	if len(got) != 3 {
		t.Fatalf("expected all undated entries kept, got %d", len(got))
	}
	for i, want := range []string{"first undated", "second undated", "third undated"} {
		if got[i].Title != want {
			t.Fatalf("undated entries must keep input order, got %q at %d", got[i].Title, i)
		}
	}
}
