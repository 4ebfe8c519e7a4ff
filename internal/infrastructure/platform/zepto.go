package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/quickcompare/backend/internal/domain"
)

const zeptoDefaultBaseURL = "https://api.zeptonow.com"

// ZeptoClient talks to Zepto's storefront JSON API.
type ZeptoClient struct {
	baseURL string
	api     *apiClient
}

// NewZeptoClient creates a Zepto client. An empty baseURL selects the
// production endpoint.
func NewZeptoClient(baseURL string) *ZeptoClient {
	if baseURL == "" {
		baseURL = zeptoDefaultBaseURL
	}
	return &ZeptoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		api: newAPIClient(map[string]string{
			"Origin":  "https://www.zeptonow.com",
			"Referer": "https://www.zeptonow.com/",
		}),
	}
}

// Platform returns the platform identifier.
func (c *ZeptoClient) Platform() string { return domain.PlatformZepto }

type zeptoSearchResponse struct {
	Items []struct {
		Name         string `json:"name"`
		SellingPrice int    `json:"selling_price"` // paise
		PackSize     string `json:"pack_size"`
		Image        string `json:"image"`
		Link         string `json:"link"`
		Available    bool   `json:"available"`
	} `json:"items"`
}

// Search fetches listings for a query within the pincode's serving area.
func (c *ZeptoClient) Search(ctx context.Context, query, pincode string) ([]domain.RawProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v3/search?query=%s&pincode=%s",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(pincode))

	var resp zeptoSearchResponse
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.RawProduct, 0, len(resp.Items))
	for _, item := range resp.Items {
		price := "N/A"
		if item.SellingPrice > 0 {
			price = fmt.Sprintf("₹%d", item.SellingPrice/100)
		}
		products = append(products, domain.RawProduct{
			Platform:   domain.PlatformZepto,
			Name:       strings.TrimSpace(item.Name),
			Price:      price,
			Quantity:   item.PackSize,
			ImageURL:   item.Image,
			ProductURL: item.Link,
			InStock:    item.Available,
		})
	}
	return products, nil
}

// ETA fetches the current delivery estimate for an address.
func (c *ZeptoClient) ETA(ctx context.Context, address, pincode string) (string, error) {
	reqURL := fmt.Sprintf("%s/api/v1/serviceability?address=%s&pincode=%s",
		c.baseURL, url.QueryEscape(address), url.QueryEscape(pincode))

	var resp struct {
		DeliveryTime string `json:"delivery_time"`
	}
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.DeliveryTime), nil
}
