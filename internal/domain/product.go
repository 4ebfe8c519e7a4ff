package domain

// Platform identifiers for the supported quick-commerce services.
const (
	PlatformBlinkit   = "blinkit"
	PlatformZepto     = "zepto"
	PlatformDmart     = "dmart"
	PlatformInstamart = "instamart"
)

// Platforms lists every supported platform in scrape order.
var Platforms = []string{PlatformBlinkit, PlatformZepto, PlatformDmart, PlatformInstamart}

// RawProduct is one scraped listing from one platform for one search query.
// It is created by a scraper, consumed once by the merge engine and never
// mutated.
type RawProduct struct {
	Platform     string `json:"platform"`
	Name         string `json:"name"`
	Price        string `json:"price"`    // display string, normally "₹<integer>", may be "N/A"
	Quantity     string `json:"quantity"` // free-text pack size, e.g. "500 ml", "2 x 500g"
	ImageURL     string `json:"image_url"`
	ProductURL   string `json:"product_url"`
	DeliveryTime string `json:"delivery_time,omitempty"`
	InStock      bool   `json:"in_stock"`
}

// PlatformOffer is one platform's contribution to a ProductGroup, copied
// verbatim from the originating RawProduct.
type PlatformOffer struct {
	Platform     string `json:"platform"`
	Price        string `json:"price"`
	DeliveryTime string `json:"delivery_time,omitempty"`
	ProductURL   string `json:"product_url"`
	ImageURL     string `json:"image_url"`
	InStock      bool   `json:"in_stock"`
}

// ProductGroup is a cluster of raw listings judged to be the same
// real-world product. Display fields come from the record that seeded the
// group; Platforms holds at most one offer per platform, in discovery
// order.
type ProductGroup struct {
	Name          string          `json:"name"`
	Quantity      string          `json:"quantity"`
	ImageURL      string          `json:"image_url"`
	Platforms     []PlatformOffer `json:"platforms"`
	PriceAnalysis *PriceAnalysis  `json:"price_analysis,omitempty"`
}

// HasPlatform reports whether the group already holds an offer from the
// given platform.
func (g *ProductGroup) HasPlatform(platform string) bool {
	for _, offer := range g.Platforms {
		if offer.Platform == platform {
			return true
		}
	}
	return false
}

// PriceAnalysis annotates a group that has at least two parseable numeric
// prices with its cheapest and most expensive offers and the potential
// savings.
type PriceAnalysis struct {
	CheapestPlatform      string  `json:"cheapest_platform"`
	CheapestPrice         float64 `json:"cheapest_price"`
	MostExpensivePlatform string  `json:"most_expensive_platform"`
	MostExpensivePrice    float64 `json:"most_expensive_price"`
	SavingsAbsolute       float64 `json:"savings_absolute"`
	SavingsPercent        float64 `json:"savings_percent"` // rounded to one decimal
}

// SearchRequest is the body of a product search call.
type SearchRequest struct {
	Query   string `json:"query" binding:"required"`
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// ETARequest is the body of a delivery-ETA call.
type ETARequest struct {
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// ETAResult maps each platform to its delivery-time display string, or
// "N/A" when the platform could not report one.
type ETAResult map[string]string
