package tle

import (
	"strings"
	"testing"
	"time"
)

func TestCatalogLastWins(t *testing.T) {
	older := Record{NORADID: 25544, Name: "ISS (ZARYA)", Epoch: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Line1: "old"}
	newer := Record{NORADID: 25544, Name: "ISS (ZARYA)", Epoch: time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), Line1: "new"}
	other := Record{NORADID: 44713, Name: "STARLINK-1007", Epoch: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)}

	cat := NewCatalog("test", time.Now(), []Record{older, other, newer})

	if cat.Len() != 2 {
		t.Fatalf("expected 2 names, got %d", cat.Len())
	}
	if cat.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", cat.Duplicates)
	}
	got, ok := cat.Lookup("ISS (ZARYA)")
	if !ok {
		t.Fatal("ISS not found")
	}
	if got.Line1 != "new" {
		t.Errorf("expected the later record to win, got Line1=%q", got.Line1)
	}

	if !cat.EpochRange.Min.Equal(older.Epoch) || !cat.EpochRange.Max.Equal(newer.Epoch) {
		t.Errorf("unexpected epoch range %v..%v", cat.EpochRange.Min, cat.EpochRange.Max)
	}
}

func TestCatalogLookupExact(t *testing.T) {
	records, err := Parse(strings.NewReader(issTLE + starlinkTLE))
	if err != nil {
		t.Fatal(err)
	}
	cat := NewCatalog("test", time.Now(), records)

	for _, name := range []string{"iss (zarya)", "ISS", " ISS (ZARYA)", "25544"} {
		if _, ok := cat.Lookup(name); ok {
			t.Errorf("Lookup(%q) should not match", name)
		}
	}

	names := cat.Names()
	if len(names) != 2 || names[0] != "ISS (ZARYA)" || names[1] != "STARLINK-1007" {
		t.Errorf("Names() = %v", names)
	}
}

func TestCatalogEmpty(t *testing.T) {
	cat := NewCatalog("test", time.Now(), nil)
	if cat.Len() != 0 || len(cat.Names()) != 0 {
		t.Fatalf("expected empty catalog, got %d names", cat.Len())
	}
	if _, ok := cat.Lookup("ISS (ZARYA)"); ok {
		t.Error("lookup in empty catalog should fail")
	}
}
