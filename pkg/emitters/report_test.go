package emitters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportEmitterListsReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.md")
	em, err := newReportEmitter(context.Background(), EmitterConfig{
		ID:     "run-report",
		Type:   TypeReport,
		Report: &ReportEmitterConfig{Path: path},
	}, nil)
	if err != nil {
		t.Fatalf("newReportEmitter: %v", err)
	}

	if err := em.Emit(context.Background(), sampleEvent(true)); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	got := string(raw)
	for _, want := range []string{
		"# Release discovery report",
		"2 new release(s) found.",
		"- **OpenAI**: GPT-5 (source: feed, Aug 5 2025) <https://openai.com/gpt-5>",
		"- **Anthropic**: Claude Opus 4.5 (source: page, Aug 5 2025)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q in:\n%s", want, got)
		}
	}
}

func TestReportEmitterEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.md")
	em, err := newReportEmitter(context.Background(), EmitterConfig{
		ID:     "run-report",
		Type:   TypeReport,
		Report: &ReportEmitterConfig{Path: path},
	}, nil)
	if err != nil {
		t.Fatalf("newReportEmitter: %v", err)
	}

	if err := em.Emit(context.Background(), sampleEvent(false)); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(raw), "No new releases found.") {
		t.Errorf("empty run report should state nothing was found:\n%s", raw)
	}
}

func TestReportEmitterPersistFailuresSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.md")
	em, err := newReportEmitter(context.Background(), EmitterConfig{
		ID:     "run-report",
		Type:   TypeReport,
		Report: &ReportEmitterConfig{Path: path},
	}, nil)
	if err != nil {
		t.Fatalf("newReportEmitter: %v", err)
	}

	evt := sampleEvent(true)
	evt.Summary.PersistFailures = []string{"mistral: Mistral Large 3"}
	if err := em.Emit(context.Background(), evt); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	got := string(raw)
	if !strings.Contains(got, "## Not persisted") || !strings.Contains(got, "- mistral: Mistral Large 3") {
		t.Errorf("report missing persist failure section:\n%s", got)
	}
}

func TestReportEmitterRequiresPath(t *testing.T) {
	_, err := newReportEmitter(context.Background(), EmitterConfig{
		ID:   "run-report",
		Type: TypeReport,
	}, nil)
	if err == nil {
		t.Fatalf("expected error for missing report path")
	}
}
