// Package propagation drives the SGP4 model for catalog records.
package propagation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/star/spacedash/internal/tle"
	"github.com/star/spacedash/internal/transform"
)

// maxModels bounds the number of initialized SGP4 models kept in memory.
// Reloaded catalogs bring new element sets; the cache is dropped when full.
const maxModels = 4096

// Engine propagates catalog records with SGP4 and converts the result to a
// geodetic subpoint. Initialized models are cached by element-set text.
// Safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	models map[string]*SGP4Propagator
	logger *slog.Logger
}

// NewEngine creates an Engine with an empty model cache.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		models: make(map[string]*SGP4Propagator),
		logger: logger,
	}
}

// Propagate returns rec's TEME position at the whole second containing at.
func (e *Engine) Propagate(rec tle.Record, at time.Time) (transform.PositionTEME, error) {
	model, err := e.model(rec)
	if err != nil {
		return transform.PositionTEME{}, err
	}
	return model.Propagate(at)
}

// Subpoint converts a position produced by Propagate for the same instant.
func (e *Engine) Subpoint(pos transform.PositionTEME, at time.Time) transform.GeodeticPoint {
	return transform.Subpoint(pos, wholeSecondUTC(at))
}

func (e *Engine) model(rec tle.Record) (*SGP4Propagator, error) {
	key := rec.Line1 + "\n" + rec.Line2

	e.mu.RLock()
	m, ok := e.models[key]
	e.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := NewSGP4Propagator(rec.Line1, rec.Line2, rec.NORADID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if len(e.models) >= maxModels {
		e.logger.Debug("sgp4 model cache full, clearing", "models", len(e.models))
		e.models = make(map[string]*SGP4Propagator)
	}
	e.models[key] = m
	e.mu.Unlock()

	return m, nil
}
