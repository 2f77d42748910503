package nasa

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// maxNEORange is the widest window the NEO feed accepts, inclusive of both ends.
const maxNEORange = 7 * 24 * time.Hour

// CloseApproach is one flattened near-Earth-object close approach.
type CloseApproach struct {
	Name              string  `json:"name"`
	DiameterMaxM      float64 `json:"diameter_max_m"`
	CloseApproachDate string  `json:"close_approach_date"`
	MissDistanceKm    float64 `json:"miss_distance_km"`
	VelocityKmh       float64 `json:"velocity_kmh"`
	Hazardous         bool    `json:"hazardous"`
}

type neoFeedResponse struct {
	NearEarthObjects map[string][]struct {
		Name              string `json:"name"`
		EstimatedDiameter struct {
			Meters struct {
				Max float64 `json:"estimated_diameter_max"`
			} `json:"meters"`
		} `json:"estimated_diameter"`
		Hazardous         bool `json:"is_potentially_hazardous_asteroid"`
		CloseApproachData []struct {
			Date             string `json:"close_approach_date"`
			RelativeVelocity struct {
				KmPerHour string `json:"kilometers_per_hour"`
			} `json:"relative_velocity"`
			MissDistance struct {
				Kilometers string `json:"kilometers"`
			} `json:"miss_distance"`
		} `json:"close_approach_data"`
	} `json:"near_earth_objects"`
}

// TrailingWeek returns the feed window ending on end: the six days before
// it plus end itself.
func TrailingWeek(end time.Time) (time.Time, time.Time) {
	return end.AddDate(0, 0, -6), end
}

// NEOFeed returns one row per (object, close approach) for the objects the
// feed lists between start and end, both dates inclusive, ordered by date
// then name. Objects without approach data contribute no rows.
func (c *Client) NEOFeed(ctx context.Context, start, end time.Time) ([]CloseApproach, error) {
	startDay := truncateDay(start)
	endDay := truncateDay(end)
	if endDay.Before(startDay) || endDay.Sub(startDay) >= maxNEORange {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidRange,
			startDay.Format(dateLayout), endDay.Format(dateLayout))
	}

	q := url.Values{
		"start_date": {startDay.Format(dateLayout)},
		"end_date":   {endDay.Format(dateLayout)},
	}

	var resp neoFeedResponse
	if err := c.getJSON(ctx, "neo", c.baseURL+"/neo/rest/v1/feed", c.keyed(q), &resp); err != nil {
		return nil, err
	}

	rows := make([]CloseApproach, 0)
	for _, objects := range resp.NearEarthObjects {
		for _, obj := range objects {
			for _, ca := range obj.CloseApproachData {
				miss, err := parseDecimal("miss_distance", ca.MissDistance.Kilometers)
				if err != nil {
					return nil, err
				}
				vel, err := parseDecimal("relative_velocity", ca.RelativeVelocity.KmPerHour)
				if err != nil {
					return nil, err
				}
				rows = append(rows, CloseApproach{
					Name:              obj.Name,
					DiameterMaxM:      obj.EstimatedDiameter.Meters.Max,
					CloseApproachDate: ca.Date,
					MissDistanceKm:    miss,
					VelocityKmh:       vel,
					Hazardous:         obj.Hazardous,
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CloseApproachDate != rows[j].CloseApproachDate {
			return rows[i].CloseApproachDate < rows[j].CloseApproachDate
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].MissDistanceKm < rows[j].MissDistanceKm
	})
	return rows, nil
}

// parseDecimal parses the feed's string-encoded numbers.
func parseDecimal(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: neo: malformed %s %q", ErrFeedUnavailable, field, s)
	}
	return v, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
