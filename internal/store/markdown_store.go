package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/modelwatch-hq/release-scout/internal/domain"
)

// markdownStore keeps release records in a flat markdown file with one
// `## <provider>` section per provider and a Date/Model table inside it:
//
//	## anthropic
//
//	| Date | Model |
//	| --- | --- |
//	| Aug 5 2025 | Claude Opus 4.1 |
//
// All edits are line-based single-row inserts, so sections that are not
// appended to survive byte-identical. The file content is held in memory for
// the duration of a run; each Append mutates the in-memory lines and writes
// the whole file through before returning.
type markdownStore struct {
	path  string
	lines []string
}

// openMarkdown loads the store file. A missing or unreadable file is a load
// failure; the run treats that as fatal.
func openMarkdown(path string) (Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read release store: %w", err)
	}
	return &markdownStore{
		path:  path,
		lines: strings.Split(string(raw), "\n"),
	}, nil
}

func (m *markdownStore) Close() error { return nil }

// LoadKnown walks the document collecting table rows under each provider
// heading. Rows that do not parse as a two-column table line are skipped.
func (m *markdownStore) LoadKnown() ([]domain.KnownRelease, error) {
	var out []domain.KnownRelease
	provider := ""

	for _, line := range m.lines {
		if h, ok := parseHeading(line); ok {
			provider = h
			continue
		}
		if provider == "" {
			continue
		}
		date, name, ok := parseRow(line)
		if !ok {
			continue
		}
		out = append(out, domain.KnownRelease{
			Provider: provider,
			Date:     date,
			Name:     name,
		})
	}
	return out, nil
}

// Append inserts a new table row at the end of the provider's section and
// writes the file. A provider with no section yields ErrSectionNotFound; a
// section with no table yet gets the table header created.
func (m *markdownStore) Append(provider, name, date string) error {
	start := -1
	for i, line := range m.lines {
		if h, ok := parseHeading(line); ok && strings.EqualFold(h, strings.TrimSpace(provider)) {
			start = i
			break
		}
	}
	if start < 0 {
		return fmt.Errorf("%w: %q", ErrSectionNotFound, provider)
	}

	end := len(m.lines)
	for i := start + 1; i < len(m.lines); i++ {
		if _, ok := parseHeading(m.lines[i]); ok {
			end = i
			break
		}
	}

	row := fmt.Sprintf("| %s | %s |", date, name)

	lastRow := -1
	for i := start + 1; i < end; i++ {
		if isTableLine(m.lines[i]) {
			lastRow = i
		}
	}

	insert := make([]string, 0, 4)
	at := 0
	if lastRow >= 0 {
		insert = append(insert, row)
		at = lastRow + 1
	} else {
		// First record for this section: create the table right after the
		// heading, keeping one blank separator line.
		insert = append(insert, "", "| Date | Model |", "| --- | --- |", row)
		at = start + 1
	}

	updated := make([]string, 0, len(m.lines)+len(insert))
	updated = append(updated, m.lines[:at]...)
	updated = append(updated, insert...)
	updated = append(updated, m.lines[at:]...)

	if err := os.WriteFile(m.path, []byte(strings.Join(updated, "\n")), 0o644); err != nil {
		return fmt.Errorf("write release store: %w", err)
	}
	m.lines = updated
	return nil
}

// parseHeading recognizes a level-2 provider heading.
func parseHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "## ") {
		return "", false
	}
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
	if name == "" {
		return "", false
	}
	return name, true
}

func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// parseRow extracts (date, name) from a data row, rejecting the header and
// separator lines and anything without exactly two non-empty cells.
func parseRow(line string) (string, string, bool) {
	if !isTableLine(line) {
		return "", "", false
	}
	trimmed := strings.TrimSpace(line)
	parts := strings.Split(trimmed, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) != 2 {
		return "", "", false
	}

	date := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if date == "" || name == "" {
		return "", "", false
	}
	if strings.EqualFold(date, "date") && strings.EqualFold(name, "model") {
		return "", "", false
	}
	if strings.Trim(date, "-: ") == "" {
		return "", "", false
	}
	return date, name, true
}
