package groundtrack

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/star/spacedash/internal/metrics"
	"github.com/star/spacedash/internal/tle"
)

// Sampler turns element sets into sub-satellite points. It keeps no state
// between calls.
type Sampler struct {
	eph        Ephemeris
	pool       *WorkerPool
	maxSamples int
	logger     *slog.Logger
	now        func() time.Time
}

// NewSampler creates a Sampler over eph.
func NewSampler(eph Ephemeris, cfg Config, logger *slog.Logger) *Sampler {
	return &Sampler{
		eph:        eph,
		pool:       NewWorkerPool(cfg.Workers),
		maxSamples: cfg.MaxSamples,
		logger:     logger,
		now:        time.Now,
	}
}

// MaxSamples returns the per-track sample budget, 0 when unbounded.
func (s *Sampler) MaxSamples() int {
	return s.maxSamples
}

// SampleCount returns the number of samples a track of the given duration and
// step holds: ceil(duration/step). Offsets run from 0 while offset < duration,
// so the last sample is at or before start+duration, never past it.
func SampleCount(duration, step time.Duration) int {
	if duration <= 0 || step <= 0 {
		return 0
	}
	n := duration / step
	if duration%step != 0 {
		n++
	}
	return int(n)
}

// CurrentPosition returns rec's sub-satellite point at at.
func (s *Sampler) CurrentPosition(rec tle.Record, at time.Time) (GeoSample, error) {
	start := time.Now()
	sample, err := s.sample(rec, at)
	metrics.ObservePropagation("position", time.Since(start))
	if err != nil {
		return GeoSample{}, err
	}
	return sample, nil
}

// SampleTrack returns the sub-satellite points of req.Record at
// Start, Start+Step, ... for every offset below Duration, in ascending time
// order. Any failed sample fails the whole track.
func (s *Sampler) SampleTrack(req TrackRequest) ([]GeoSample, error) {
	if req.Duration <= 0 || req.Step <= 0 {
		return nil, fmt.Errorf("%w: duration %s, step %s must be positive", ErrInvalidRequest, req.Duration, req.Step)
	}

	n := SampleCount(req.Duration, req.Step)
	if s.maxSamples > 0 && n > s.maxSamples {
		return nil, fmt.Errorf("%w: %d samples requested, limit %d", ErrTooManySamples, n, s.maxSamples)
	}

	start := req.Start
	if start.IsZero() {
		start = s.now()
	}
	start = start.UTC()

	began := time.Now()
	samples, err := s.pool.Run(n, func(i int) (GeoSample, error) {
		return s.sample(req.Record, start.Add(time.Duration(i)*req.Step))
	})
	elapsed := time.Since(began)
	metrics.ObservePropagation("track", elapsed)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("ground track sampled",
		"name", req.Record.Name,
		"norad_id", req.Record.NORADID,
		"samples", n,
		"duration_ms", elapsed.Milliseconds(),
	)

	return samples, nil
}

func (s *Sampler) sample(rec tle.Record, at time.Time) (GeoSample, error) {
	at = at.UTC()

	pos, err := s.eph.Propagate(rec, at)
	if err != nil {
		metrics.IncPropagationFailures()
		return GeoSample{}, fmt.Errorf("%w: %s at %s: %w", ErrPropagationFailed, rec.Name, at.Format(time.RFC3339), err)
	}

	geo := s.eph.Subpoint(pos, at)
	if math.IsNaN(geo.LatDeg) || math.IsNaN(geo.LonDeg) || math.IsInf(geo.LonDeg, 0) || math.Abs(geo.LatDeg) > 90 {
		metrics.IncPropagationFailures()
		return GeoSample{}, fmt.Errorf("%w: %s at %s: degenerate subpoint (%f, %f)",
			ErrPropagationFailed, rec.Name, at.Format(time.RFC3339), geo.LatDeg, geo.LonDeg)
	}

	return GeoSample{
		Latitude:  geo.LatDeg,
		Longitude: normalizeLongitude(geo.LonDeg),
		Timestamp: at,
	}, nil
}

// normalizeLongitude wraps lon into [-180, 180].
func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	return math.Remainder(lon, 360)
}
