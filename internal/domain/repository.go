package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PlatformScraper fetches raw product listings from one platform.
// Implementations report failure with an error; they never return partial
// garbage. Callers treat a failed platform as an empty result set.
type PlatformScraper interface {
	Platform() string
	Search(ctx context.Context, query string, pincode string) ([]RawProduct, error)
}

// ETAFetcher fetches a delivery-time display string for one platform at a
// location. The string is opaque pass-through data.
type ETAFetcher interface {
	Platform() string
	ETA(ctx context.Context, address string, pincode string) (string, error)
}

// ProductArchive persists raw scraped rows as an append-only log.
// The merge engine never reads from it.
type ProductArchive interface {
	SaveBatch(ctx context.Context, products []RawProduct) error
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}
