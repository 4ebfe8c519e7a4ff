package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingQuery is returned when a search request has no query
	ErrMissingQuery = errors.New("missing search query")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend is unreachable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrPlatformUnavailable is returned when a platform API request fails
	ErrPlatformUnavailable = errors.New("platform request failed")

	// ErrStoreNotFound is returned when no DMart store serves a pincode
	ErrStoreNotFound = errors.New("no store found for pincode")

	// ErrNoLocation is returned when an address cannot be geocoded
	ErrNoLocation = errors.New("address could not be geocoded")
)
