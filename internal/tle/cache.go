package tle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	snapshotPrefix = "catalog_"
	snapshotSuffix = ".tle"
)

// Cache keeps the most recent raw feed snapshots on disk so a restarted
// process can serve a catalog before its first successful fetch.
type Cache struct {
	dir      string
	maxFiles int
}

// NewCache creates a Cache that stores snapshots in dir and keeps at most maxFiles.
func NewCache(dir string, maxFiles int) *Cache {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Cache{
		dir:      dir,
		maxFiles: maxFiles,
	}
}

// Write saves data as a snapshot stamped with ts and prunes the oldest ones.
func (c *Cache) Write(data []byte, ts time.Time) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	name := snapshotPrefix + strconv.FormatInt(ts.Unix(), 10) + snapshotSuffix
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return c.prune()
}

// LoadLatest returns the newest snapshot and the time it was taken.
func (c *Cache) LoadLatest() ([]byte, time.Time, error) {
	snaps, err := c.list()
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(snaps) == 0 {
		return nil, time.Time{}, errors.New("no snapshots found")
	}

	latest := snaps[len(snaps)-1]
	data, err := os.ReadFile(filepath.Join(c.dir, latest.name))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading snapshot: %w", err)
	}

	return data, latest.ts, nil
}

type snapshot struct {
	name string
	ts   time.Time
}

// list returns snapshots oldest first.
func (c *Cache) list() ([]snapshot, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing cache dir: %w", err)
	}

	var snaps []snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		unix, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, snapshot{name: name, ts: time.Unix(unix, 0).UTC()})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ts.Before(snaps[j].ts)
	})

	return snaps, nil
}

func (c *Cache) prune() error {
	snaps, err := c.list()
	if err != nil {
		return err
	}

	for len(snaps) > c.maxFiles {
		if err := os.Remove(filepath.Join(c.dir, snaps[0].name)); err != nil {
			return fmt.Errorf("pruning snapshot %s: %w", snaps[0].name, err)
		}
		snaps = snaps[1:]
	}

	return nil
}
