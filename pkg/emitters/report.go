package emitters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// reportEmitter writes the human-readable run report: one section per newly
// discovered release with provider, model, source, date and link. A run with
// nothing new still produces a report saying so, which is distinct from the
// run failing.
type reportEmitter struct {
	id   string
	path string
	typ  string
}

func newReportEmitter(_ context.Context, cfg EmitterConfig, _ Logger) (Emitter, error) {
	if cfg.Report == nil || cfg.Report.Path == "" {
		return nil, fmt.Errorf("emitter %q missing report configuration", cfg.ID)
	}
	return &reportEmitter{id: cfg.ID, typ: TypeReport, path: cfg.Report.Path}, nil
}

func (r *reportEmitter) ID() string   { return r.id }
func (r *reportEmitter) Type() string { return r.typ }

func (r *reportEmitter) Emit(_ context.Context, evt Event) error {
	var b strings.Builder
	b.WriteString("# Release discovery report\n\n")
	fmt.Fprintf(&b, "Run finished %s.\n\n", evt.Summary.FinishedAt.Format("Jan 2 2006 15:04 MST"))

	if !evt.Summary.Found {
		b.WriteString("No new releases found.\n")
	} else {
		fmt.Fprintf(&b, "%d new release(s) found.\n\n", evt.Summary.Count)
		for _, rel := range evt.Summary.NewReleases {
			fmt.Fprintf(&b, "- **%s**: %s (source: %s, %s)", rel.ProviderLabel(), rel.Model, rel.Source, rel.Date)
			if rel.Link != "" {
				fmt.Fprintf(&b, " <%s>", rel.Link)
			}
			b.WriteString("\n")
		}
	}

	if len(evt.Summary.PersistFailures) > 0 {
		b.WriteString("\n## Not persisted\n\n")
		for _, f := range evt.Summary.PersistFailures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
