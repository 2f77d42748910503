package tle

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/star/spacedash/internal/metrics"
)

// Loader turns an element-set feed into a Catalog.
type Loader struct {
	fetcher *Fetcher
	cache   *Cache // optional
	logger  *slog.Logger
}

// NewLoader creates a Loader. cache may be nil to disable snapshots on disk.
func NewLoader(fetcher *Fetcher, cache *Cache, logger *slog.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// Load fetches and parses source. Every failure wraps ErrCatalogUnavailable.
// An empty feed yields an empty catalog and a nil error.
func (l *Loader) Load(ctx context.Context, source string) (*Catalog, error) {
	data, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		metrics.RecordCatalogLoad("fetch_error")
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	fetchedAt := time.Now().UTC()
	cat, err := l.build(source, fetchedAt, data)
	if err != nil {
		metrics.RecordCatalogLoad("parse_error")
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Write(data, fetchedAt); err != nil {
			l.logger.Warn("failed to write catalog snapshot", "error", err)
		}
	}

	metrics.RecordCatalogLoad("success")
	return cat, nil
}

// LoadCached builds a catalog from the newest snapshot on disk.
func (l *Loader) LoadCached() (*Catalog, error) {
	if l.cache == nil {
		return nil, fmt.Errorf("%w: snapshot cache disabled", ErrCatalogUnavailable)
	}

	data, ts, err := l.cache.LoadLatest()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	cat, err := l.build("cache", ts, data)
	if err != nil {
		return nil, err
	}
	metrics.RecordCatalogLoad("cache")
	return cat, nil
}

func (l *Loader) build(source string, fetchedAt time.Time, data []byte) (*Catalog, error) {
	records, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	cat := NewCatalog(source, fetchedAt, records)
	if cat.Duplicates > 0 {
		l.logger.Warn("duplicate names in element-set feed, later entries kept",
			"source", source,
			"duplicates", cat.Duplicates,
		)
		metrics.AddCatalogDuplicates(cat.Duplicates)
	}

	l.logger.Info("catalog loaded",
		"source", source,
		"count", cat.Len(),
		"epoch_min", cat.EpochRange.Min.Format(time.RFC3339),
		"epoch_max", cat.EpochRange.Max.Format(time.RFC3339),
	)

	return cat, nil
}
