package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modelwatch-hq/release-scout/internal/domain"
)

// Package store provides the release record persistence abstraction. Any
// backend satisfying the round-trip contract works: loading after an append
// must return the appended record, and appends must leave untouched
// providers' records intact.

// ErrSectionNotFound is returned by Append when the target provider has no
// section in the store. The caller logs it and continues with other appends.
var ErrSectionNotFound = errors.New("provider section not found in store")

// Store reads and appends release records.
type Store interface {
	// LoadKnown reads the full current release table. Malformed records are
	// skipped, not fatal.
	LoadKnown() ([]domain.KnownRelease, error)
	// Append inserts a record at the end of the provider's release list and
	// writes it through before returning.
	Append(provider, name, date string) error
	Close() error
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "markdown":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("markdown store requires a path")
		}
		return openMarkdown(path)
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt store requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported store type %q", typ)
	}
}
