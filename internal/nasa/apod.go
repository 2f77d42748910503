package nasa

import (
	"context"
	"net/url"
	"time"
)

// APOD is one astronomy picture of the day entry.
type APOD struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
	MediaType    string `json:"media_type"`
	URL          string `json:"url"`
	HDURL        string `json:"hdurl,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Copyright    string `json:"copyright,omitempty"`
}

// IsImage reports whether the entry can be shown as a still image.
// Videos carry a thumbnail instead.
func (a APOD) IsImage() bool {
	return a.MediaType == "image"
}

// APOD returns the entry for date, or today's when date is zero.
func (c *Client) APOD(ctx context.Context, date time.Time) (*APOD, error) {
	q := url.Values{"thumbs": {"true"}}
	if !date.IsZero() {
		q.Set("date", date.Format(dateLayout))
	}

	var a APOD
	if err := c.getJSON(ctx, "apod", c.baseURL+"/planetary/apod", c.keyed(q), &a); err != nil {
		return nil, err
	}
	return &a, nil
}
