package tle

import (
	"errors"
	"sort"
	"time"
)

// ErrCatalogUnavailable is returned when an element-set feed cannot be
// fetched, read or parsed. A catalog is never returned alongside it.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Record represents a single body's two-line element set.
// Records are immutable once loaded.
type Record struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// EpochRange represents the minimum and maximum epoch times in a catalog.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Catalog maps display names to element sets for one feed snapshot.
type Catalog struct {
	Source     string
	FetchedAt  time.Time
	EpochRange EpochRange
	// Duplicates counts blocks that reused a name already seen in the feed.
	// The later block replaced the earlier one.
	Duplicates int

	records map[string]Record
}

// NewCatalog builds a catalog from records in feed order. When two records
// share a name the later one wins.
func NewCatalog(source string, fetchedAt time.Time, records []Record) *Catalog {
	c := &Catalog{
		Source:    source,
		FetchedAt: fetchedAt,
		records:   make(map[string]Record, len(records)),
	}

	for i, r := range records {
		if _, ok := c.records[r.Name]; ok {
			c.Duplicates++
		}
		c.records[r.Name] = r

		if i == 0 || r.Epoch.Before(c.EpochRange.Min) {
			c.EpochRange.Min = r.Epoch
		}
		if i == 0 || r.Epoch.After(c.EpochRange.Max) {
			c.EpochRange.Max = r.Epoch
		}
	}

	return c
}

// Lookup returns the record for name.
func (c *Catalog) Lookup(name string) (Record, bool) {
	r, ok := c.records[name]
	return r, ok
}

// Len returns the number of distinct names.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Names returns all display names in ascending order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.records))
	for name := range c.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
