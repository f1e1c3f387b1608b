// Package slugindex loads per-language slugs from the index documents that
// describe each linkable page. Lookups are memoized for the lifetime of the
// store, including lookups that found nothing.
package slugindex

import (
	"log/slog"

	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/storage"
)

// Entry holds what the index knows about one canonical path.
type Entry struct {
	CanonicalPath string
	Slugs         map[string]string // language code -> slug
}

// Store reads index documents on demand and caches the results.
type Store struct {
	store  storage.Provider
	logger *slog.Logger
	cache  map[string]*Entry // nil value means a cached miss
}

// New creates a Store over the given index root.
func New(store storage.Provider, logger *slog.Logger) *Store {
	return &Store{
		store:  store,
		logger: logger,
		cache:  make(map[string]*Entry),
	}
}

// Get returns the index entry for a canonical path. The second return is
// false when no index document backs the path. Both hits and misses are
// cached, so a document added mid-run is not picked up until a new Store
// is created.
func (s *Store) Get(canonicalPath string) (*Entry, bool) {
	if e, ok := s.cache[canonicalPath]; ok {
		return e, e != nil
	}
	e := s.load(canonicalPath)
	s.cache[canonicalPath] = e
	return e, e != nil
}

func (s *Store) load(canonicalPath string) *Entry {
	rel := canonicalPath + ".md"
	data, err := s.store.Read(rel)
	if err != nil {
		s.logger.Debug("slugindex: no index document",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return nil
	}
	meta, _, err := document.Probe(data)
	if err != nil {
		s.logger.Debug("slugindex: unreadable metadata",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return nil
	}
	return &Entry{
		CanonicalPath: canonicalPath,
		Slugs:         meta.Slugs(),
	}
}
