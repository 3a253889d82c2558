package emitters

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ciEmitter writes the machine-readable run result as key/value lines for
// an external CI step: a new_releases flag, a count, and when releases were
// found a one-line summary of "Provider: model" pairs. With no path
// configured the lines go to stdout.
type ciEmitter struct {
	id   string
	path string
	typ  string
}

func newCIEmitter(_ context.Context, cfg EmitterConfig, _ Logger) (Emitter, error) {
	path := ""
	if cfg.CI != nil {
		path = cfg.CI.Path
	}
	return &ciEmitter{id: cfg.ID, typ: TypeCI, path: path}, nil
}

func (c *ciEmitter) ID() string   { return c.id }
func (c *ciEmitter) Type() string { return c.typ }

func (c *ciEmitter) Emit(_ context.Context, evt Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "new_releases=%t\n", evt.Summary.Found)
	fmt.Fprintf(&b, "count=%d\n", evt.Summary.Count)
	if evt.Summary.Found {
		fmt.Fprintf(&b, "summary=%s\n", evt.Summary.Line())
	}

	if c.path == "" {
		_, err := os.Stdout.WriteString(b.String())
		return err
	}

	// Append so the output file composes with other steps writing to it.
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ci output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write ci output: %w", err)
	}
	return nil
}
