package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/star/spacedash/internal/groundtrack"
	"github.com/star/spacedash/internal/tle"
)

type satelliteHandlers struct {
	opts   Options
	logger *slog.Logger
}

type catalogResponse struct {
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	EpochMin   time.Time `json:"epoch_min"`
	EpochMax   time.Time `json:"epoch_max"`
	Count      int       `json:"count"`
	Duplicates int       `json:"duplicates"`
	Names      []string  `json:"names"`
}

func newCatalogResponse(c *tle.Catalog) catalogResponse {
	return catalogResponse{
		Source:     c.Source,
		FetchedAt:  c.FetchedAt,
		EpochMin:   c.EpochRange.Min,
		EpochMax:   c.EpochRange.Max,
		Count:      c.Len(),
		Duplicates: c.Duplicates,
		Names:      c.Names(),
	}
}

type positionResponse struct {
	Name    string `json:"name"`
	NORADID int    `json:"norad_id"`
	groundtrack.GeoSample
}

type trackResponse struct {
	Name     string                  `json:"name"`
	NORADID  int                     `json:"norad_id"`
	Duration string                  `json:"duration"`
	Step     string                  `json:"step"`
	Count    int                     `json:"count"`
	Samples  []groundtrack.GeoSample `json:"samples"`
}

func (h *satelliteHandlers) list(w http.ResponseWriter, r *http.Request) {
	c := h.opts.Store.Get()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, newCatalogResponse(c))
}

func (h *satelliteHandlers) reload(w http.ResponseWriter, r *http.Request) {
	c, err := h.opts.Store.Reload(r.Context(), h.opts.Loader, h.opts.Source)
	if err != nil {
		h.logger.Warn("catalog reload failed, keeping previous catalog",
			"source", h.opts.Source,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, newCatalogResponse(c))
}

// lookup resolves the {name} path value against the current catalog and
// writes the error response when it cannot.
func (h *satelliteHandlers) lookup(w http.ResponseWriter, r *http.Request) (tle.Record, bool) {
	c := h.opts.Store.Get()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded", nil)
		return tle.Record{}, false
	}
	name := r.PathValue("name")
	rec, ok := c.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown satellite", map[string]any{"name": name})
		return tle.Record{}, false
	}
	return rec, true
}

func (h *satelliteHandlers) position(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	at := time.Now()
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at: expected RFC 3339 timestamp", nil)
			return
		}
		at = t
	}

	sample, err := h.opts.Sampler.CurrentPosition(rec, at)
	if err != nil {
		h.propagationError(w, rec, err)
		return
	}

	writeJSON(w, http.StatusOK, positionResponse{
		Name:      rec.Name,
		NORADID:   rec.NORADID,
		GeoSample: sample,
	})
}

func (h *satelliteHandlers) track(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := groundtrack.TrackRequest{
		Record:   rec,
		Duration: h.opts.TrackDuration,
		Step:     h.opts.TrackStep,
	}

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start: expected RFC 3339 timestamp", nil)
			return
		}
		req.Start = t
	}
	if v := q.Get("duration"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid duration: expected Go duration such as 90m", nil)
			return
		}
		req.Duration = d
	}
	if v := q.Get("step"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid step: expected Go duration such as 30s", nil)
			return
		}
		req.Step = d
	}

	samples, err := h.opts.Sampler.SampleTrack(req)
	switch {
	case errors.Is(err, groundtrack.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	case errors.Is(err, groundtrack.ErrTooManySamples):
		writeError(w, http.StatusBadRequest, err.Error(), map[string]any{
			"max_samples": h.opts.Sampler.MaxSamples(),
			"requested":   groundtrack.SampleCount(req.Duration, req.Step),
		})
		return
	case err != nil:
		h.propagationError(w, rec, err)
		return
	}

	writeJSON(w, http.StatusOK, trackResponse{
		Name:     rec.Name,
		NORADID:  rec.NORADID,
		Duration: req.Duration.String(),
		Step:     req.Step.String(),
		Count:    len(samples),
		Samples:  samples,
	})
}

func (h *satelliteHandlers) propagationError(w http.ResponseWriter, rec tle.Record, err error) {
	h.logger.Warn("propagation failed",
		"name", rec.Name,
		"norad_id", rec.NORADID,
		"error", err,
	)
	if errors.Is(err, groundtrack.ErrPropagationFailed) {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error", nil)
}
