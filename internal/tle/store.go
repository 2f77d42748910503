package tle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/star/spacedash/internal/metrics"
)

// Store holds the catalog for the current session.
// Reads are lock-free; reloads are serialized.
type Store struct {
	catalog atomic.Pointer[Catalog]
	mu      sync.Mutex
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current catalog, or nil if none has been loaded.
func (s *Store) Get() *Catalog {
	return s.catalog.Load()
}

// Set atomically replaces the current catalog.
func (s *Store) Set(c *Catalog) {
	s.catalog.Store(c)
	if c != nil {
		metrics.SetCatalogSize(c.Len())
	}
}

// AgeSeconds returns the age of the current catalog in seconds.
// Returns -1 if no catalog is loaded.
func (s *Store) AgeSeconds() float64 {
	c := s.catalog.Load()
	if c == nil {
		return -1
	}
	return time.Since(c.FetchedAt).Seconds()
}

// Reload loads source with l and installs the result. On failure the
// previous catalog stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context, l *Loader, source string) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := l.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	s.Set(c)
	return c, nil
}
