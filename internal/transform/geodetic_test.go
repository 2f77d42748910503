package transform

import (
	"math"
	"testing"
	"time"
)

func TestECEFToGeodetic(t *testing.T) {
	tests := []struct {
		name           string
		x, y, z        float64
		lat, lon, altM float64
	}{
		{"equator prime meridian", wgs84A + 400000, 0, 0, 0, 0, 400000},
		{"equator 90E", 0, wgs84A, 0, 0, 90, 0},
		{"antimeridian", -wgs84A, 0, 0, 0, 180, 0},
		{"just west of antimeridian", -wgs84A, -1e-3, 0, 0, -180, 0},
		{"north pole", 0, 0, 6356752.314245 + 1000, 90, 0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ECEFToGeodetic(tt.x, tt.y, tt.z)
			if math.Abs(g.LatDeg-tt.lat) > 1e-6 {
				t.Errorf("lat = %.9f, want %.9f", g.LatDeg, tt.lat)
			}
			if math.Abs(g.LonDeg-tt.lon) > 1e-6 {
				t.Errorf("lon = %.9f, want %.9f", g.LonDeg, tt.lon)
			}
			if math.Abs(g.AltM-tt.altM) > 1.0 {
				t.Errorf("alt = %.3f m, want %.3f m", g.AltM, tt.altM)
			}
		})
	}
}

// TestSubpointEarthRotation verifies that a fixed inertial position drifts
// west by Earth's rotation over one hour.
func TestSubpointEarthRotation(t *testing.T) {
	teme := PositionTEME{X: 6778.0, Y: 0, Z: 0}
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p0 := Subpoint(teme, t0)
	p1 := Subpoint(teme, t0.Add(time.Hour))

	drift := p0.LonDeg - p1.LonDeg
	if drift < 0 {
		drift += 360
	}
	// 360.9856°/day → ~15.041° per hour.
	if math.Abs(drift-15.041) > 0.01 {
		t.Errorf("westward drift = %.4f deg/h, want ~15.041", drift)
	}
	if math.Abs(p0.LatDeg) > 1e-9 {
		t.Errorf("equatorial position lat = %f, want 0", p0.LatDeg)
	}
}

func TestSubpointIgnoresZone(t *testing.T) {
	teme := PositionTEME{X: 4000, Y: 3000, Z: 4500}
	utc := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("UTC-5", -5*3600))

	if a, b := Subpoint(teme, utc), Subpoint(teme, local); a != b {
		t.Errorf("subpoint differs by zone: %+v vs %+v", a, b)
	}
}
