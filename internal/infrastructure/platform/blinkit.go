package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/quickcompare/backend/internal/domain"
)

const blinkitDefaultBaseURL = "https://blinkit.com"

// BlinkitClient talks to Blinkit's storefront JSON API.
type BlinkitClient struct {
	baseURL string
	api     *apiClient
}

// NewBlinkitClient creates a Blinkit client. An empty baseURL selects the
// production endpoint.
func NewBlinkitClient(baseURL string) *BlinkitClient {
	if baseURL == "" {
		baseURL = blinkitDefaultBaseURL
	}
	return &BlinkitClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		api: newAPIClient(map[string]string{
			"Origin":  "https://blinkit.com",
			"Referer": "https://blinkit.com/",
		}),
	}
}

// Platform returns the platform identifier.
func (c *BlinkitClient) Platform() string { return domain.PlatformBlinkit }

// blinkitSearchResponse mirrors the fields we read from the search payload.
type blinkitSearchResponse struct {
	Products []struct {
		Name     string `json:"name"`
		Price    int    `json:"price"` // rupees
		Unit     string `json:"unit"`  // pack size, e.g. "500 ml"
		ImageURL string `json:"image_url"`
		Deeplink string `json:"deeplink"`
		InStock  bool   `json:"in_stock"`
		ETA      string `json:"eta,omitempty"`
	} `json:"products"`
}

// Search fetches listings for a query. The pincode scopes the serving
// dark store.
func (c *BlinkitClient) Search(ctx context.Context, query, pincode string) ([]domain.RawProduct, error) {
	reqURL := fmt.Sprintf("%s/v1/layout/search?q=%s&pincode=%s",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(pincode))

	var resp blinkitSearchResponse
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.RawProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		price := "N/A"
		if p.Price > 0 {
			price = fmt.Sprintf("₹%d", p.Price)
		}
		productURL := ""
		if p.Deeplink != "" {
			productURL = c.baseURL + p.Deeplink
		}
		products = append(products, domain.RawProduct{
			Platform:     domain.PlatformBlinkit,
			Name:         strings.TrimSpace(p.Name),
			Price:        price,
			Quantity:     p.Unit,
			ImageURL:     p.ImageURL,
			ProductURL:   productURL,
			DeliveryTime: p.ETA,
			InStock:      p.InStock,
		})
	}
	return products, nil
}

// ETA fetches the current delivery estimate for an address.
func (c *BlinkitClient) ETA(ctx context.Context, address, pincode string) (string, error) {
	reqURL := fmt.Sprintf("%s/v1/layout/serviceability?address=%s&pincode=%s",
		c.baseURL, url.QueryEscape(address), url.QueryEscape(pincode))

	var resp struct {
		ETA string `json:"eta"`
	}
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.ETA), nil
}
