package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickcompare/backend/internal/domain"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// Fallback delivery location used when the request carries none, matching
// the frontend's default service area.
const (
	DefaultAddress = "Kothrud, Pune"
	DefaultPincode = "411038"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL       time.Duration // per-query result cache, default 5 minutes
	ScrapeTimeout  time.Duration // per-platform scrape budget, default 40s
	DefaultAddress string
	DefaultPincode string
}

// SearchService handles a product search end to end: cache lookup,
// concurrent scraping across platforms, archiving of raw rows, merging,
// and response caching.
type SearchService struct {
	cache    domain.CacheRepository
	scrapers []domain.PlatformScraper
	archive  domain.ProductArchive
	merger   *MergeService

	cacheTTL       time.Duration
	scrapeTimeout  time.Duration
	defaultAddress string
	defaultPincode string
}

// NewSearchService creates a search service with dependencies. The archive
// may be nil, in which case raw rows are not persisted.
func NewSearchService(
	cache domain.CacheRepository,
	scrapers []domain.PlatformScraper,
	archive domain.ProductArchive,
	merger *MergeService,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	scrapeTimeout := config.ScrapeTimeout
	if scrapeTimeout == 0 {
		scrapeTimeout = 40 * time.Second
	}

	address := config.DefaultAddress
	if address == "" {
		address = DefaultAddress
	}

	pincode := config.DefaultPincode
	if pincode == "" {
		pincode = DefaultPincode
	}

	return &SearchService{
		cache:          cache,
		scrapers:       scrapers,
		archive:        archive,
		merger:         merger,
		cacheTTL:       cacheTTL,
		scrapeTimeout:  scrapeTimeout,
		defaultAddress: address,
		defaultPincode: pincode,
	}
}

// Search returns merged comparison rows for a query.
// Flow: check cache -> scrape all platforms concurrently -> archive raw
// rows -> merge -> cache -> return. A platform failure or timeout never
// fails the request; its listings are simply absent. Zero valid records
// yields an empty list, not an error.
func (s *SearchService) Search(ctx context.Context, request *domain.SearchRequest) ([]domain.ProductGroup, error) {
	if request == nil || strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrMissingQuery
	}

	address := request.Address
	if address == "" {
		address = s.defaultAddress
	}
	pincode := request.Pincode
	if pincode == "" {
		pincode = s.defaultPincode
	}

	cacheKey := s.searchCacheKey(request.Query, address, pincode)

	if cached, ok := s.getCachedGroups(ctx, cacheKey); ok {
		log.Debug().Str("query", request.Query).Msg("serving cached search result")
		return cached, nil
	}

	log.Info().
		Str("query", request.Query).
		Str("address", address).
		Str("pincode", pincode).
		Msg("scraping fresh data")

	records := s.scrapeAllPlatforms(ctx, request.Query, pincode)
	if len(records) == 0 {
		log.Warn().Str("query", request.Query).Msg("no results scraped from any platform")
	}

	if s.archive != nil && len(records) > 0 {
		if err := s.archive.SaveBatch(ctx, records); err != nil {
			log.Error().Err(err).Msg("failed to archive raw products")
		}
	}

	merged := s.merger.Merge(records)

	s.setCachedGroups(ctx, cacheKey, merged)

	return merged, nil
}

// scrapeAllPlatforms fans out one goroutine per platform with an
// independent timeout. Failures are logged and isolated so one slow or
// broken platform never drops the others' listings.
func (s *SearchService) scrapeAllPlatforms(ctx context.Context, query, pincode string) []domain.RawProduct {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []domain.RawProduct
	)

	for _, scraper := range s.scrapers {
		wg.Add(1)
		go func(scraper domain.PlatformScraper) {
			defer wg.Done()

			scrapeCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
			defer cancel()

			results, err := scraper.Search(scrapeCtx, query, pincode)
			if err != nil {
				log.Warn().Err(err).Str("platform", scraper.Platform()).Msg("scraper error")
				return
			}

			log.Info().
				Str("platform", scraper.Platform()).
				Int("count", len(results)).
				Msg("scraper returned items")

			mu.Lock()
			records = append(records, results...)
			mu.Unlock()
		}(scraper)
	}

	wg.Wait()
	return records
}

// searchCacheKey builds a normalized cache key from the search parameters.
// Format: "search:{query}:{address}:{pincode}"
func (s *SearchService) searchCacheKey(query, address, pincode string) string {
	return fmt.Sprintf("search:%s:%s:%s",
		normalizeForCacheKey(query),
		normalizeForCacheKey(address),
		strings.TrimSpace(pincode),
	)
}

// getCachedGroups loads and decodes a cached response. Values are stored
// as JSON strings so memory and Redis backends behave identically.
func (s *SearchService) getCachedGroups(ctx context.Context, key string) ([]domain.ProductGroup, bool) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	encoded, ok := value.(string)
	if !ok {
		return nil, false
	}

	var groups []domain.ProductGroup
	if err := json.Unmarshal([]byte(encoded), &groups); err != nil {
		log.Error().Err(err).Str("key", key).Msg("corrupt cache entry")
		return nil, false
	}
	return groups, true
}

func (s *SearchService) setCachedGroups(ctx context.Context, key string, groups []domain.ProductGroup) {
	encoded, err := json.Marshal(groups)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to cache search result")
	}
}

// normalizeForCacheKey normalizes a string for use as a cache key
// component: lowercase, special characters removed, whitespace collapsed.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
