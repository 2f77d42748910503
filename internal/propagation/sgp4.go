package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/star/spacedash/internal/tle"
	"github.com/star/spacedash/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Propagate() takes Satellite by value so SGP4 error codes are not visible
// to the caller. Propagation failures are detected by checking the output for
// NaN/Inf and implausible position magnitudes.

// SGP4Propagator wraps the go-satellite library for a single element set.
type SGP4Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Propagator creates an SGP4 propagator from TLE lines.
// Returns an error if the TLE cannot be parsed or the SGP4 model fails to initialize.
//
// Lines are validated field by field before reaching go-satellite, which
// exits the process on a field it cannot parse.
func NewSGP4Propagator(line1, line2 string, noradID int) (*SGP4Propagator, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(strings.TrimSpace(line1), strings.TrimSpace(line2), satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, noradID: noradID}, nil
}

func validateTLELines(line1, line2 string) error {
	return tle.ValidateElements(strings.TrimSpace(line1), strings.TrimSpace(line2))
}

// Propagate computes the TEME position (km) at t. go-satellite accepts whole
// seconds, so t is truncated to the second after conversion to UTC.
func (p *SGP4Propagator) Propagate(t time.Time) (transform.PositionTEME, error) {
	t = wholeSecondUTC(t)
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
	}

	teme := transform.PositionTEME{X: pos.X, Y: pos.Y, Z: pos.Z}

	// Between ~6200 km (below the surface) and ~50000 km (beyond GEO).
	if mag := teme.Radius(); mag < 6200.0 || mag > 50000.0 {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, mag)
	}

	return teme, nil
}

func wholeSecondUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
