package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/quickcompare/backend/internal/domain"
)

const (
	dmartDefaultBaseURL = "https://digital.dmart.in"
	dmartImageCDN       = "https://cdn.dmart.in/images/products"
	dmartStorefront     = "https://www.dmart.in"
)

// DmartClient talks to DMart's public storefront API. Unlike the other
// platforms, DMart scopes every search to a store, so queries first
// resolve pincode -> uniqueId -> storeId; resolved store ids are cached
// per pincode for the process lifetime.
type DmartClient struct {
	baseURL string
	api     *apiClient

	mu       sync.Mutex
	storeIDs map[string]string // pincode -> storeId
}

// NewDmartClient creates a DMart client. An empty baseURL selects the
// production endpoint.
func NewDmartClient(baseURL string) *DmartClient {
	if baseURL == "" {
		baseURL = dmartDefaultBaseURL
	}
	return &DmartClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		api: newAPIClient(map[string]string{
			"Origin":  "https://www.dmart.in",
			"Referer": "https://www.dmart.in/",
		}),
		storeIDs: make(map[string]string),
	}
}

// Platform returns the platform identifier.
func (c *DmartClient) Platform() string { return domain.PlatformDmart }

type dmartSearchResponse struct {
	Products []struct {
		SeoTokenNtk string `json:"seo_token_ntk"`
		SKUs        []struct {
			Name            string `json:"name"`
			PriceSale       string `json:"priceSALE"`
			VariantText     string `json:"variantTextValue"`
			ProductImageKey string `json:"productImageKey"`
			SKUUniqueID     string `json:"skuUniqueID"`
			Buyable         string `json:"buyable"`
		} `json:"sKUs"`
	} `json:"products"`
}

// Search fetches listings for a query from the store serving the pincode.
func (c *DmartClient) Search(ctx context.Context, query, pincode string) ([]domain.RawProduct, error) {
	storeID, err := c.resolveStoreID(ctx, pincode)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/v3/search/%s?page=1&size=100&channel=web&storeId=%s",
		c.baseURL, url.PathEscape(query), url.QueryEscape(storeID))

	var resp dmartSearchResponse
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	var products []domain.RawProduct
	for _, product := range resp.Products {
		for _, sku := range product.SKUs {
			price := "N/A"
			if sku.PriceSale != "" {
				price = "₹" + sku.PriceSale
			}
			imageURL := ""
			if sku.ProductImageKey != "" {
				imageURL = fmt.Sprintf("%s/%s_5_P.jpg", dmartImageCDN, sku.ProductImageKey)
			}
			productURL := ""
			if product.SeoTokenNtk != "" && sku.SKUUniqueID != "" {
				productURL = fmt.Sprintf("%s/product/%s?selectedProd=%s", dmartStorefront, product.SeoTokenNtk, sku.SKUUniqueID)
			}
			products = append(products, domain.RawProduct{
				Platform:   domain.PlatformDmart,
				Name:       strings.TrimSpace(sku.Name),
				Price:      price,
				Quantity:   sku.VariantText,
				ImageURL:   imageURL,
				ProductURL: productURL,
				InStock:    sku.Buyable == "true",
			})
		}
	}
	return products, nil
}

// ETA returns the earliest delivery slot for the pincode's store.
func (c *DmartClient) ETA(ctx context.Context, address, pincode string) (string, error) {
	storeID, err := c.resolveStoreID(ctx, pincode)
	if err != nil {
		return "", err
	}

	reqURL := fmt.Sprintf("%s/api/v2/pincodes/earliestslot/%s?storeId=%s",
		c.baseURL, url.PathEscape(pincode), url.QueryEscape(storeID))

	var resp struct {
		Slots []struct {
			TimeSlot string `json:"timeSlot"`
			Type     string `json:"type"`
			PUPData  []struct {
				TimeSlot string `json:"timeSlot"`
			} `json:"PUPData"`
		} `json:"slots"`
	}
	if err := c.api.getJSON(ctx, reqURL, &resp); err != nil {
		return "", err
	}

	if len(resp.Slots) == 0 {
		return "", nil
	}
	slot := resp.Slots[0]
	if slot.TimeSlot != "" {
		return slot.TimeSlot, nil
	}
	if slot.Type == "PUP" && len(slot.PUPData) > 0 {
		return slot.PUPData[0].TimeSlot, nil
	}
	return "", nil
}

// resolveStoreID runs the pincode -> uniqueId -> storeId chain, consulting
// the per-pincode cache first.
func (c *DmartClient) resolveStoreID(ctx context.Context, pincode string) (string, error) {
	c.mu.Lock()
	if storeID, ok := c.storeIDs[pincode]; ok {
		c.mu.Unlock()
		return storeID, nil
	}
	c.mu.Unlock()

	uniqueID, err := c.fetchUniqueID(ctx, pincode)
	if err != nil {
		return "", err
	}
	if uniqueID == "" {
		return "", domain.ErrStoreNotFound
	}

	storeID, err := c.fetchStoreID(ctx, pincode, uniqueID)
	if err != nil {
		return "", err
	}
	if storeID == "" {
		return "", domain.ErrStoreNotFound
	}

	c.mu.Lock()
	c.storeIDs[pincode] = storeID
	c.mu.Unlock()

	return storeID, nil
}

func (c *DmartClient) fetchUniqueID(ctx context.Context, pincode string) (string, error) {
	var resp struct {
		SearchResult []struct {
			UniqueID string `json:"uniqueId"`
		} `json:"searchResult"`
	}
	err := c.api.postJSON(ctx, c.baseURL+"/api/v2/pincodes/suggestions",
		map[string]string{"searchText": pincode}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.SearchResult) == 0 {
		return "", nil
	}
	return resp.SearchResult[0].UniqueID, nil
}

func (c *DmartClient) fetchStoreID(ctx context.Context, pincode, uniqueID string) (string, error) {
	var resp struct {
		StorePincodeDetails struct {
			StoreID string `json:"storeId"`
		} `json:"storePincodeDetails"`
	}
	err := c.api.postJSON(ctx, c.baseURL+"/api/v2/pincodes/details", map[string]string{
		"uniqueId":   uniqueID,
		"apiMode":    "GA",
		"pincode":    pincode,
		"currentLat": "",
		"currentLng": "",
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.StorePincodeDetails.StoreID, nil
}
