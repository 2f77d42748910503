package propagation

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/star/spacedash/internal/tle"
	"github.com/star/spacedash/internal/transform"
)

// ISS elements with epoch 2024-04-09T12:00:00Z.
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9009"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    01"
)

// Starlink elements (typical LEO constellation satellite).
const (
	starlinkLine1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9998"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    07"
)

var issRecord = tle.Record{NORADID: 25544, Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// TestPropagateSingle verifies that a single satellite can be propagated
// and that the ECEF output is reasonable.
func TestPropagateSingle(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("NewSGP4Propagator failed: %v", err)
	}

	target := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	teme, err := prop.Propagate(target)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	// ISS at ~420 km altitude: ~6371 + 420 ≈ 6791 km.
	mag := teme.Radius()
	if mag < 6500 || mag > 7000 {
		t.Errorf("TEME position magnitude = %.1f km, expected ~6791 km (ISS orbit)", mag)
	}

	ecef := transform.TEMEToECEF(teme, target)
	if !transform.ValidateECEF(ecef) {
		t.Errorf("ECEF position failed validation: [%.1f, %.1f, %.1f] m", ecef.X, ecef.Y, ecef.Z)
	}

	// Rotation preserves magnitude (modulo km→m).
	ecefMag := math.Sqrt(ecef.X*ecef.X+ecef.Y*ecef.Y+ecef.Z*ecef.Z) / 1000.0
	if math.Abs(ecefMag-mag) > 0.01 {
		t.Errorf("ECEF magnitude = %.3f km, TEME magnitude = %.3f km (should match)", ecefMag, mag)
	}
}

func TestPropagateInvalidTLE(t *testing.T) {
	tests := []struct {
		name         string
		line1, line2 string
	}{
		{"garbage", "invalid line 1", "invalid line 2"},
		{"swapped lines", issLine2, issLine1},
		{"short line2", issLine1, issLine2[:60]},
		{"non-numeric inclination", issLine1, "2 25544  51.ABCD 100.0000 0001000   0.0000   0.0000 15.50000000    01"},
		{"bad checksum", issLine1[:68] + "0", issLine2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSGP4Propagator(tt.line1, tt.line2, 99999); err == nil {
				t.Fatal("expected error for invalid TLE, got nil")
			}
		})
	}
}

// TestPropagateSubSecond verifies that instants within the same second
// propagate to the same position.
func TestPropagateSubSecond(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("NewSGP4Propagator failed: %v", err)
	}

	base := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	a, err := prop.Propagate(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := prop.Propagate(base.Add(900 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("positions differ within one second: %+v vs %+v", a, b)
	}
}

func TestEngineIdempotent(t *testing.T) {
	engine := NewEngine(testLogger())
	at := time.Date(2024, 4, 10, 6, 30, 0, 0, time.UTC)

	p1, err := engine.Propagate(issRecord, at)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	p2, err := engine.Propagate(issRecord, at)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	if p1 != p2 {
		t.Errorf("repeated propagation differs: %+v vs %+v", p1, p2)
	}

	g1 := engine.Subpoint(p1, at)
	g2 := engine.Subpoint(p2, at)
	if g1 != g2 {
		t.Errorf("repeated subpoint differs: %+v vs %+v", g1, g2)
	}

	// ISS inclination (plus the geodetic/geocentric difference) bounds latitude.
	if math.Abs(g1.LatDeg) > 52.0 {
		t.Errorf("ISS latitude %.2f exceeds inclination", g1.LatDeg)
	}
	if g1.LonDeg < -180 || g1.LonDeg > 180 {
		t.Errorf("longitude %.2f out of range", g1.LonDeg)
	}
}

func TestEngineInvalidRecord(t *testing.T) {
	engine := NewEngine(testLogger())
	rec := tle.Record{NORADID: 1, Name: "BROKEN", Line1: "1 00001U", Line2: "2 00001"}

	if _, err := engine.Propagate(rec, time.Now()); err == nil {
		t.Fatal("expected error for malformed element set")
	}
}

func TestEngineConcurrent(t *testing.T) {
	engine := NewEngine(testLogger())
	starlink := tle.Record{NORADID: 44713, Name: "STARLINK-1007", Line1: starlinkLine1, Line2: starlinkLine2}
	start := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := issRecord
			if i%2 == 1 {
				rec = starlink
			}
			if _, err := engine.Propagate(rec, start.Add(time.Duration(i)*time.Minute)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent propagation failed: %v", err)
	}
}

func BenchmarkEnginePropagate(b *testing.B) {
	engine := NewEngine(testLogger())
	target := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, err := engine.Propagate(issRecord, target)
		if err != nil {
			b.Fatal(err)
		}
		engine.Subpoint(pos, target)
	}
}
