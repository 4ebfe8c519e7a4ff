// Package geocode resolves free-text addresses to coordinates with the
// Google Maps Geocoding API. Lookups are cached in-process for the
// lifetime of the client since addresses do not move.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quickcompare/backend/internal/domain"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type coordinates struct {
	lat float64
	lng float64
}

// Client is a caching Google Maps geocoder. A missing API key is not an
// error at construction time; lookups then report domain.ErrNoLocation.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	region     string

	mu    sync.Mutex
	cache map[string]coordinates
}

// NewClient creates a geocoding client. An empty baseURL selects the
// Google Maps endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		region:     "in",
		cache:      make(map[string]coordinates),
	}
}

// Geocode resolves an address to lat/lng. Unresolvable addresses (empty
// input, missing key, zero results) report domain.ErrNoLocation.
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	cacheKey := strings.ToLower(strings.TrimSpace(address))
	if cacheKey == "" || c.apiKey == "" {
		return 0, 0, domain.ErrNoLocation
	}

	c.mu.Lock()
	if coords, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return coords.lat, coords.lng, nil
	}
	c.mu.Unlock()

	params := url.Values{}
	params.Add("address", address)
	params.Add("key", c.apiKey)
	params.Add("region", c.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding request failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, err
	}

	var parsed struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		return 0, 0, domain.ErrNoLocation
	}

	loc := parsed.Results[0].Geometry.Location

	c.mu.Lock()
	c.cache[cacheKey] = coordinates{lat: loc.Lat, lng: loc.Lng}
	c.mu.Unlock()

	return loc.Lat, loc.Lng, nil
}
