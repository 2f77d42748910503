package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/spacedash/internal/nasa"
)

const (
	defaultEventLimit = 20
	defaultEventDays  = 30
	maxEventLimit     = 500
	maxEventDays      = 365
)

type feedHandlers struct {
	client *nasa.Client
	logger *slog.Logger
	now    func() time.Time
}

// date reads the optional YYYY-MM-DD query parameter. ok is false once an
// error response has been written.
func (h *feedHandlers) date(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return t, true
}

func (h *feedHandlers) today() time.Time {
	return h.now().UTC()
}

func (h *feedHandlers) feedError(w http.ResponseWriter, feed string, err error) {
	switch {
	case errors.Is(err, nasa.ErrInvalidRover), errors.Is(err, nasa.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, nasa.ErrFeedUnavailable):
		h.logger.Warn("feed request failed", "feed", feed, "error", err)
		writeError(w, http.StatusBadGateway, err.Error(), nil)
	default:
		h.logger.Error("feed request failed", "feed", feed, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func (h *feedHandlers) apod(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}
	entry, err := h.client.APOD(r.Context(), date)
	if err != nil {
		h.feedError(w, "apod", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"is_image": entry.IsImage(),
		"entry":    entry,
	})
}

func (h *feedHandlers) marsPhotos(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		date = h.today().AddDate(0, 0, -1)
	}
	rover := r.PathValue("rover")

	photos, err := h.client.MarsPhotos(r.Context(), rover, date)
	if err != nil {
		h.feedError(w, "mars_photos", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rover":      rover,
		"earth_date": date.Format("2006-01-02"),
		"count":      len(photos),
		"photos":     photos,
	})
}

func (h *feedHandlers) neo(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		date = h.today()
	}
	start, end := nasa.TrailingWeek(date)

	rows, err := h.client.NEOFeed(r.Context(), start, end)
	if err != nil {
		h.feedError(w, "neo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"count":      len(rows),
		"approaches": rows,
	})
}

func (h *feedHandlers) epic(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}
	images, err := h.client.EPIC(r.Context(), date)
	if err != nil {
		h.feedError(w, "epic", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(images),
		"images": images,
	})
}

func (h *feedHandlers) events(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", defaultEventLimit, maxEventLimit)
	if !ok {
		return
	}
	days, ok := intParam(w, r, "days", defaultEventDays, maxEventDays)
	if !ok {
		return
	}

	events, err := h.client.Events(r.Context(), limit, days)
	if err != nil {
		h.feedError(w, "eonet", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(events),
		"events": events,
	})
}

// intParam reads a positive integer query parameter no larger than limit.
func intParam(w http.ResponseWriter, r *http.Request, name string, def, limit int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > limit {
		writeError(w, http.StatusBadRequest, "invalid "+name, map[string]any{"max": limit})
		return 0, false
	}
	return n, true
}
