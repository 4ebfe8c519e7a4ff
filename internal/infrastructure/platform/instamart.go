package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/quickcompare/backend/internal/domain"
)

const instamartDefaultBaseURL = "https://www.swiggy.com"

// Fallback coordinates (Kothrud, Pune) used when an address cannot be
// geocoded; Instamart's API is coordinate-scoped rather than
// pincode-scoped.
const (
	instamartDefaultLat = 18.5026501
	instamartDefaultLng = 73.8073136
)

// InstamartClient talks to Swiggy Instamart's storefront JSON API.
// Instamart resolves serviceability by coordinates, so a Geocoder turns
// the request address into lat/lng; a nil geocoder (or a geocoding miss)
// falls back to the default service area.
type InstamartClient struct {
	baseURL  string
	api      *apiClient
	geocoder domain.Geocoder
}

// NewInstamartClient creates an Instamart client. An empty baseURL selects
// the production endpoint.
func NewInstamartClient(baseURL string, geocoder domain.Geocoder) *InstamartClient {
	if baseURL == "" {
		baseURL = instamartDefaultBaseURL
	}
	return &InstamartClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		api: newAPIClient(map[string]string{
			"Origin":  "https://www.swiggy.com",
			"Referer": "https://www.swiggy.com/instamart",
		}),
		geocoder: geocoder,
	}
}

// Platform returns the platform identifier.
func (c *InstamartClient) Platform() string { return domain.PlatformInstamart }

type instamartSearchResponse struct {
	Data struct {
		Products []struct {
			DisplayName string `json:"display_name"`
			Price       int    `json:"price"` // rupees
			Quantity    string `json:"quantity"`
			ImageURL    string `json:"image_url"`
			ProductURL  string `json:"product_url"`
			InStock     bool   `json:"in_stock"`
		} `json:"products"`
	} `json:"data"`
}

// Search fetches listings for a query near the default coordinates.
func (c *InstamartClient) Search(ctx context.Context, query, pincode string) ([]domain.RawProduct, error) {
	reqURL := fmt.Sprintf("%s/api/instamart/search?query=%s&lat=%f&lng=%f",
		c.baseURL, url.QueryEscape(query), instamartDefaultLat, instamartDefaultLng)

	var resp instamartSearchResponse
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.RawProduct, 0, len(resp.Data.Products))
	for _, p := range resp.Data.Products {
		price := "N/A"
		if p.Price > 0 {
			price = fmt.Sprintf("₹%d", p.Price)
		}
		products = append(products, domain.RawProduct{
			Platform:   domain.PlatformInstamart,
			Name:       strings.TrimSpace(p.DisplayName),
			Price:      price,
			Quantity:   p.Quantity,
			ImageURL:   p.ImageURL,
			ProductURL: p.ProductURL,
			InStock:    p.InStock,
		})
	}
	return products, nil
}

// ETA fetches the delivery estimate for the coordinates of an address.
func (c *InstamartClient) ETA(ctx context.Context, address, pincode string) (string, error) {
	lat, lng := instamartDefaultLat, instamartDefaultLng
	if c.geocoder != nil && address != "" {
		gLat, gLng, err := c.geocoder.Geocode(ctx, address)
		if err == nil {
			lat, lng = gLat, gLng
		} else if !errors.Is(err, domain.ErrNoLocation) {
			return "", err
		}
	}

	reqURL := fmt.Sprintf("%s/api/instamart/serviceability?lat=%f&lng=%f", c.baseURL, lat, lng)

	var resp struct {
		Data struct {
			SLAString string `json:"sla_string"`
		} `json:"data"`
	}
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Data.SLAString), nil
}
