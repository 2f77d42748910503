package tle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoaderLoad(t *testing.T) {
	server := feedServer(t, http.StatusOK, issTLE+starlinkTLE)
	loader := NewLoader(NewFetcher(testLogger), nil, testLogger)

	cat, err := loader.Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 names, got %d", cat.Len())
	}
	if cat.Source != server.URL {
		t.Errorf("Source = %q", cat.Source)
	}
	if cat.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

// TestLoaderEmptyVersusFailure verifies that an empty feed is a valid empty
// catalog while an unreachable or garbled feed is an error.
func TestLoaderEmptyVersusFailure(t *testing.T) {
	loader := NewLoader(NewFetcher(testLogger), nil, testLogger)

	empty := feedServer(t, http.StatusOK, "")
	cat, err := loader.Load(context.Background(), empty.URL)
	if err != nil {
		t.Fatalf("empty feed should load: %v", err)
	}
	if cat == nil || cat.Len() != 0 {
		t.Fatalf("expected empty catalog, got %+v", cat)
	}

	failures := map[string]string{
		"server error": feedServer(t, http.StatusServiceUnavailable, "").URL,
		"garbled":      feedServer(t, http.StatusOK, issTLE+"not an element set\n").URL,
		"missing file": filepath.Join(t.TempDir(), "missing.tle"),
	}
	for name, source := range failures {
		t.Run(name, func(t *testing.T) {
			cat, err := loader.Load(context.Background(), source)
			if !errors.Is(err, ErrCatalogUnavailable) {
				t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
			}
			if cat != nil {
				t.Errorf("expected no catalog alongside error")
			}
		})
	}
}

func TestLoaderCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 3)
	server := feedServer(t, http.StatusOK, issTLE)
	loader := NewLoader(NewFetcher(testLogger), cache, testLogger)

	if _, err := loader.Load(context.Background(), server.URL); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cat, err := loader.LoadCached()
	if err != nil {
		t.Fatalf("LoadCached failed: %v", err)
	}
	if _, ok := cat.Lookup("ISS (ZARYA)"); !ok {
		t.Error("cached catalog missing ISS")
	}
	if cat.Source != "cache" {
		t.Errorf("Source = %q, want cache", cat.Source)
	}
}

func TestLoaderCacheDisabled(t *testing.T) {
	loader := NewLoader(NewFetcher(testLogger), nil, testLogger)
	if _, err := loader.LoadCached(); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestCachePrune(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 2)
	base := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		data := []byte{byte('a' + i)}
		if err := cache.Write(data, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 snapshots after prune, got %d", len(entries))
	}

	data, ts, err := cache.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if string(data) != "d" {
		t.Errorf("expected newest snapshot, got %q", data)
	}
	if !ts.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("ts = %v", ts)
	}
}

func TestCacheEmptyDir(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "not-created"), 0)
	if _, _, err := cache.LoadLatest(); err == nil {
		t.Fatal("expected error for missing snapshots")
	}
}

func TestStoreReloadKeepsPreviousOnFailure(t *testing.T) {
	store := NewStore()
	if store.Get() != nil || store.AgeSeconds() != -1 {
		t.Fatal("new store should be empty")
	}

	loader := NewLoader(NewFetcher(testLogger), nil, testLogger)
	good := feedServer(t, http.StatusOK, issTLE)
	bad := feedServer(t, http.StatusBadGateway, "")

	first, err := store.Reload(context.Background(), loader, good.URL)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if store.Get() != first {
		t.Fatal("store did not install the loaded catalog")
	}

	if _, err := store.Reload(context.Background(), loader, bad.URL); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if store.Get() != first {
		t.Error("failed reload replaced the previous catalog")
	}
	if store.AgeSeconds() < 0 {
		t.Error("age should be non-negative with a catalog loaded")
	}
}
