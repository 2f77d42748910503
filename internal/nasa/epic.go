package nasa

import (
	"context"
	"net/url"
	"time"
)

// EPICArchiveURL is the public image archive for EPIC natural-color frames.
const EPICArchiveURL = "https://epic.gsfc.nasa.gov/archive/natural"

// epicDateLayout is the timestamp format EPIC metadata uses.
const epicDateLayout = "2006-01-02 15:04:05"

// LatLon is a point in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EPICImage is one whole-disc Earth frame.
type EPICImage struct {
	Identifier string `json:"identifier"`
	Image      string `json:"image"`
	Caption    string `json:"caption"`
	Date       string `json:"date"`
	Centroid   LatLon `json:"centroid"`
	ArchiveURL string `json:"archive_url"`
}

type epicEntry struct {
	Identifier string `json:"identifier"`
	Image      string `json:"image"`
	Caption    string `json:"caption"`
	Date       string `json:"date"`
	Centroid   LatLon `json:"centroid_coordinates"`
}

// EPIC returns the natural-color frames for date, or the most recent set
// when date is zero.
func (c *Client) EPIC(ctx context.Context, date time.Time) ([]EPICImage, error) {
	endpoint := c.baseURL + "/EPIC/api/natural"
	if !date.IsZero() {
		endpoint += "/date/" + date.Format(dateLayout)
	}

	var entries []epicEntry
	if err := c.getJSON(ctx, "epic", endpoint, c.keyed(nil), &entries); err != nil {
		return nil, err
	}

	images := make([]EPICImage, 0, len(entries))
	for _, e := range entries {
		images = append(images, EPICImage{
			Identifier: e.Identifier,
			Image:      e.Image,
			Caption:    e.Caption,
			Date:       e.Date,
			Centroid:   e.Centroid,
			ArchiveURL: epicArchiveURL(e.Image, e.Date),
		})
	}
	return images, nil
}

// epicArchiveURL builds the PNG location for an image taken at date.
// Returns "" when the date cannot be parsed.
func epicArchiveURL(image, date string) string {
	t, err := time.Parse(epicDateLayout, date)
	if err != nil || image == "" {
		return ""
	}
	return EPICArchiveURL + "/" + t.Format("2006/01/02") + "/png/" + url.PathEscape(image) + ".png"
}
