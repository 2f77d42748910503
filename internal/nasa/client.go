// Package nasa wraps the public space-agency feeds the dashboard offers next
// to satellite tracking: astronomy picture of the day, Mars rover photos,
// near-Earth-object close approaches, EPIC whole-Earth imagery and EONET
// natural events.
//
// Every transport, status or decoding failure wraps ErrFeedUnavailable.
// A feed that answers with no items yields an empty slice and a nil error.
package nasa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/star/spacedash/internal/metrics"
)

const (
	DefaultBaseURL  = "https://api.nasa.gov"
	DefaultEONETURL = "https://eonet.gsfc.nasa.gov/api/v3"
	DefaultAPIKey   = "DEMO_KEY"

	dateLayout   = "2006-01-02"
	maxBodyBytes = 10 << 20
)

var (
	// ErrFeedUnavailable is returned when an upstream feed cannot be reached
	// or answers with something other than the expected document.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrInvalidRover is returned for rover names the archive does not know.
	ErrInvalidRover = errors.New("unknown rover")

	// ErrInvalidRange is returned for NEO date ranges the feed rejects.
	ErrInvalidRange = errors.New("invalid date range")
)

// Config holds client endpoints and credentials.
type Config struct {
	BaseURL  string
	EONETURL string
	APIKey   string
}

// Client fetches the public feeds.
type Client struct {
	baseURL    string
	eonetURL   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. Empty config fields fall back to the public
// endpoints and the shared demo key.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EONETURL == "" {
		cfg.EONETURL = DefaultEONETURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		eonetURL: strings.TrimRight(cfg.EONETURL, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// getJSON performs a GET against endpoint and decodes the body into out.
// feed labels metrics and logs.
func (c *Client) getJSON(ctx context.Context, feed, endpoint string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		metrics.RecordFeedRequest(feed, "error")
		return fmt.Errorf("%w: %s: creating request: %w", ErrFeedUnavailable, feed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFeedRequest(feed, "error")
		return fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFeedRequest(feed, "status_"+strconv.Itoa(resp.StatusCode))
		return fmt.Errorf("%w: %s: unexpected status code %d", ErrFeedUnavailable, feed, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		metrics.RecordFeedRequest(feed, "decode_error")
		return fmt.Errorf("%w: %s: decoding response: %w", ErrFeedUnavailable, feed, err)
	}

	metrics.RecordFeedRequest(feed, "success")
	c.logger.Debug("feed fetched",
		"feed", feed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// keyed returns query with the API key set.
func (c *Client) keyed(query url.Values) url.Values {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	return query
}
