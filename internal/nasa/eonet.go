package nasa

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Event is one open natural event from EONET.
type Event struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Pin        *Pin     `json:"pin,omitempty"`
}

// Pin is the most recent point location reported for an event.
type Pin struct {
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Date time.Time `json:"date"`
}

type eonetResponse struct {
	Events []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Categories []struct {
			Title string `json:"title"`
		} `json:"categories"`
		Geometry []struct {
			Date        time.Time       `json:"date"`
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"events"`
}

// Events returns up to limit open events active within the last days days.
// Non-positive arguments leave the feed's own defaults in place.
func (c *Client) Events(ctx context.Context, limit, days int) ([]Event, error) {
	q := url.Values{"status": {"open"}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	var resp eonetResponse
	if err := c.getJSON(ctx, "eonet", c.eonetURL+"/events", q, &resp); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev := Event{
			ID:         e.ID,
			Title:      e.Title,
			Categories: make([]string, 0, len(e.Categories)),
		}
		for _, cat := range e.Categories {
			ev.Categories = append(ev.Categories, cat.Title)
		}
		for _, g := range e.Geometry {
			if g.Type != "Point" {
				continue
			}
			// GeoJSON order is longitude, latitude.
			var coords []float64
			if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
				continue
			}
			if ev.Pin == nil || g.Date.After(ev.Pin.Date) {
				ev.Pin = &Pin{Lat: coords[1], Lon: coords[0], Date: g.Date}
			}
		}
		events = append(events, ev)
	}
	return events, nil
}
