package nasa

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Rovers lists the rover archives the photo feed serves.
var Rovers = []string{"curiosity", "opportunity", "spirit", "perseverance"}

// MarsPhoto is one rover camera frame.
type MarsPhoto struct {
	ID        int    `json:"id"`
	Sol       int    `json:"sol"`
	Camera    string `json:"camera"`
	ImgSrc    string `json:"img_src"`
	EarthDate string `json:"earth_date"`
	Rover     string `json:"rover"`
}

type marsPhotosResponse struct {
	Photos []struct {
		ID     int `json:"id"`
		Sol    int `json:"sol"`
		Camera struct {
			Name     string `json:"name"`
			FullName string `json:"full_name"`
		} `json:"camera"`
		ImgSrc    string `json:"img_src"`
		EarthDate string `json:"earth_date"`
		Rover     struct {
			Name string `json:"name"`
		} `json:"rover"`
	} `json:"photos"`
}

// MarsPhotos returns every photo rover took on the Earth date date.
func (c *Client) MarsPhotos(ctx context.Context, rover string, date time.Time) ([]MarsPhoto, error) {
	rover = strings.ToLower(strings.TrimSpace(rover))
	if !knownRover(rover) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRover, rover)
	}

	q := url.Values{"earth_date": {date.Format(dateLayout)}}
	endpoint := c.baseURL + "/mars-photos/api/v1/rovers/" + url.PathEscape(rover) + "/photos"

	var resp marsPhotosResponse
	if err := c.getJSON(ctx, "mars_photos", endpoint, c.keyed(q), &resp); err != nil {
		return nil, err
	}

	photos := make([]MarsPhoto, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		camera := p.Camera.FullName
		if camera == "" {
			camera = p.Camera.Name
		}
		photos = append(photos, MarsPhoto{
			ID:        p.ID,
			Sol:       p.Sol,
			Camera:    camera,
			ImgSrc:    p.ImgSrc,
			EarthDate: p.EarthDate,
			Rover:     p.Rover.Name,
		})
	}
	return photos, nil
}

func knownRover(name string) bool {
	for _, r := range Rovers {
		if r == name {
			return true
		}
	}
	return false
}
