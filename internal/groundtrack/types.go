// Package groundtrack samples the sub-satellite point of a catalog record at
// one instant or over an evenly spaced time grid.
package groundtrack

import (
	"errors"
	"time"

	"github.com/star/spacedash/internal/tle"
	"github.com/star/spacedash/internal/transform"
)

var (
	// ErrPropagationFailed is returned when any propagation call in a request
	// yields no valid position. No partial result accompanies it.
	ErrPropagationFailed = errors.New("propagation failed")

	// ErrInvalidRequest is returned for non-positive durations or steps.
	ErrInvalidRequest = errors.New("invalid track request")

	// ErrTooManySamples is returned when a track would exceed the sampler's budget.
	ErrTooManySamples = errors.New("track exceeds sample budget")
)

// GeoSample is the sub-satellite point at one instant.
type GeoSample struct {
	Latitude  float64   `json:"latitude"`  // degrees, [-90, 90]
	Longitude float64   `json:"longitude"` // degrees, [-180, 180]
	Timestamp time.Time `json:"timestamp"` // UTC
}

// TrackRequest describes one ground-track sampling job.
type TrackRequest struct {
	Record   tle.Record
	Start    time.Time // zero means now
	Duration time.Duration
	Step     time.Duration
}

// Ephemeris is the propagation capability the sampler drives. Propagate must
// be a pure function of its inputs; Subpoint converts a position returned by
// Propagate for the same instant into planet-fixed coordinates.
type Ephemeris interface {
	Propagate(rec tle.Record, at time.Time) (transform.PositionTEME, error)
	Subpoint(pos transform.PositionTEME, at time.Time) transform.GeodeticPoint
}

// Config holds sampler limits.
type Config struct {
	Workers    int // parallel propagation calls per track; 1 means sequential
	MaxSamples int // upper bound on samples per track; 0 means unbounded
}
