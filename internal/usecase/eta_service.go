package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickcompare/backend/internal/domain"
)

// etaUnavailable is the sentinel reported when a platform cannot give a
// delivery estimate.
const etaUnavailable = "N/A"

// ETAServiceConfig holds configuration for the ETA service
type ETAServiceConfig struct {
	CacheTTL       time.Duration // default 5 minutes
	FetchTimeout   time.Duration // per-platform budget, default 25s
	DefaultAddress string
	DefaultPincode string
}

// ETAService fetches per-platform delivery estimates for a location, with
// the same fan-out/failure-isolation model as product search.
type ETAService struct {
	cache    domain.CacheRepository
	fetchers []domain.ETAFetcher

	cacheTTL       time.Duration
	fetchTimeout   time.Duration
	defaultAddress string
	defaultPincode string
}

// NewETAService creates an ETA service with dependencies.
func NewETAService(cache domain.CacheRepository, fetchers []domain.ETAFetcher, config ETAServiceConfig) *ETAService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	fetchTimeout := config.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 25 * time.Second
	}

	address := config.DefaultAddress
	if address == "" {
		address = DefaultAddress
	}

	pincode := config.DefaultPincode
	if pincode == "" {
		pincode = DefaultPincode
	}

	return &ETAService{
		cache:          cache,
		fetchers:       fetchers,
		cacheTTL:       cacheTTL,
		fetchTimeout:   fetchTimeout,
		defaultAddress: address,
		defaultPincode: pincode,
	}
}

// ETA returns each platform's delivery-time string for the location.
// Platforms that fail or time out report "N/A"; the call itself never
// fails on a platform error.
func (s *ETAService) ETA(ctx context.Context, request *domain.ETARequest) (domain.ETAResult, error) {
	address := s.defaultAddress
	pincode := s.defaultPincode
	if request != nil {
		if request.Address != "" {
			address = request.Address
		}
		if request.Pincode != "" {
			pincode = request.Pincode
		}
	}

	cacheKey := s.etaCacheKey(address, pincode)

	if cached, ok := s.getCachedETA(ctx, cacheKey); ok {
		return cached, nil
	}

	result := s.fetchAllETAs(ctx, address, pincode)

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(encoded), s.cacheTTL); err != nil {
			log.Error().Err(err).Msg("failed to cache eta result")
		}
	}

	return result, nil
}

func (s *ETAService) fetchAllETAs(ctx context.Context, address, pincode string) domain.ETAResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = domain.ETAResult{}
	)

	for _, fetcher := range s.fetchers {
		wg.Add(1)
		go func(fetcher domain.ETAFetcher) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			eta, err := fetcher.ETA(fetchCtx, address, pincode)
			if err != nil || eta == "" {
				if err != nil {
					log.Warn().Err(err).Str("platform", fetcher.Platform()).Msg("eta fetch error")
				}
				eta = etaUnavailable
			}

			mu.Lock()
			result[fetcher.Platform()] = eta
			mu.Unlock()
		}(fetcher)
	}

	wg.Wait()
	return result
}

// etaCacheKey builds a normalized cache key.
// Format: "eta:{address}:{pincode}"
func (s *ETAService) etaCacheKey(address, pincode string) string {
	return fmt.Sprintf("eta:%s:%s", normalizeForCacheKey(address), strings.TrimSpace(pincode))
}

func (s *ETAService) getCachedETA(ctx context.Context, key string) (domain.ETAResult, bool) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	encoded, ok := value.(string)
	if !ok {
		return nil, false
	}

	var result domain.ETAResult
	if err := json.Unmarshal([]byte(encoded), &result); err != nil {
		return nil, false
	}
	return result, true
}
