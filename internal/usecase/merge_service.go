package usecase

import (
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quickcompare/backend/internal/domain"
)

// nonPriceCharsRegex strips currency symbols and separators so "₹1,299"
// parses as 1299.
var nonPriceCharsRegex = regexp.MustCompile(`[^0-9.]`)

// Default matching thresholds. Tuned against real scraped listings; the
// high-score disjunct merges near-identical names on brand alone even when
// the quantity strings disagree or fail to parse.
const (
	defaultScoreThreshold     = 75
	defaultHighScoreThreshold = 90
	defaultQuantityTolerance  = 0.15
)

// MergeConfig holds configuration for the merge service
type MergeConfig struct {
	ScoreThreshold     int     // minimum token-sort score for the qty+brand gated match
	HighScoreThreshold int     // score at which brand agreement alone merges
	QuantityTolerance  float64 // relative tolerance for QuantitiesClose
	ShuffleSingles     bool    // randomize single-platform ordering in responses
	EnableDebugLogging bool
}

// MergeService groups raw per-platform listings into cross-platform
// comparison rows. It holds no per-request state and is safe to share
// across concurrent requests.
type MergeService struct {
	scoreThreshold     int
	highScoreThreshold int
	quantityTolerance  float64
	shuffleSingles     bool
	enableDebugLogging bool
}

// NewMergeService creates a merge service with the given configuration,
// falling back to defaults for unset thresholds.
func NewMergeService(config MergeConfig) *MergeService {
	threshold := config.ScoreThreshold
	if threshold <= 0 {
		threshold = defaultScoreThreshold
	}

	high := config.HighScoreThreshold
	if high <= 0 {
		high = defaultHighScoreThreshold
	}

	tolerance := config.QuantityTolerance
	if tolerance <= 0 {
		tolerance = defaultQuantityTolerance
	}

	return &MergeService{
		scoreThreshold:     threshold,
		highScoreThreshold: high,
		quantityTolerance:  tolerance,
		shuffleSingles:     config.ShuffleSingles,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Merge partitions the raw record list into product groups.
//
// Records are walked in scraper-return order. Each record joins the first
// existing group whose seed record matches it and that has no offer from
// the record's platform yet; otherwise it seeds a new group. A group never
// holds two offers from the same platform, and every valid record lands in
// exactly one group. An empty input yields an empty (non-nil) result.
func (s *MergeService) Merge(records []domain.RawProduct) []domain.ProductGroup {
	groups := []domain.ProductGroup{}

	for _, record := range records {
		if record.Platform == "" {
			// Contract violation by a scraper; drop the record and keep going.
			log.Warn().Str("name", record.Name).Msg("record missing platform tag, skipping")
			continue
		}
		if !hasValidName(record.Name) {
			continue
		}

		cleaned := CleanName(record.Name)
		brand := ExtractBrand(record.Name)
		quantity := NormalizeQuantity(record.Quantity)

		matched := -1
		for i := range groups {
			if groups[i].HasPlatform(record.Platform) {
				continue
			}
			if s.matches(cleaned, brand, quantity, &groups[i]) {
				matched = i
				break // first fit wins
			}
		}

		offer := domain.PlatformOffer{
			Platform:     record.Platform,
			Price:        record.Price,
			DeliveryTime: record.DeliveryTime,
			ProductURL:   record.ProductURL,
			ImageURL:     record.ImageURL,
			InStock:      record.InStock,
		}

		if matched >= 0 {
			groups[matched].Platforms = append(groups[matched].Platforms, offer)
		} else {
			groups = append(groups, domain.ProductGroup{
				Name:      strings.TrimSpace(record.Name),
				Quantity:  record.Quantity,
				ImageURL:  record.ImageURL,
				Platforms: []domain.PlatformOffer{offer},
			})
		}
	}

	return s.organize(groups)
}

// matches evaluates the match predicate between a record's normalized
// fields and a candidate group. The group's own normalized fields are
// recomputed from its seed record each time rather than cached.
func (s *MergeService) matches(cleaned, brand, quantity string, group *domain.ProductGroup) bool {
	groupCleaned := CleanName(group.Name)
	groupBrand := ExtractBrand(group.Name)
	groupQty := NormalizeQuantity(group.Quantity)

	score := TokenSortRatio(cleaned, groupCleaned)
	qtyMatch := quantity == groupQty || QuantitiesClose(quantity, groupQty, s.quantityTolerance)
	brandMatch := brand == groupBrand

	if s.enableDebugLogging {
		log.Debug().
			Str("candidate", cleaned).
			Str("group", groupCleaned).
			Int("score", score).
			Bool("qty_match", qtyMatch).
			Bool("brand_match", brandMatch).
			Msg("compare")
	}

	return (score >= s.scoreThreshold && qtyMatch && brandMatch) ||
		(score >= s.highScoreThreshold && brandMatch)
}

// organize finalizes the output: price analysis per group, multi-platform
// groups sorted by descending offer count (stable) ahead of single-platform
// groups, which are shuffled for variety unless configured deterministic.
func (s *MergeService) organize(groups []domain.ProductGroup) []domain.ProductGroup {
	multi := []domain.ProductGroup{}
	single := []domain.ProductGroup{}

	for i := range groups {
		groups[i].PriceAnalysis = analyzePrices(groups[i].Platforms)
		if len(groups[i].Platforms) > 1 {
			multi = append(multi, groups[i])
		} else {
			single = append(single, groups[i])
		}
	}

	sort.SliceStable(multi, func(i, j int) bool {
		return len(multi[i].Platforms) > len(multi[j].Platforms)
	})

	if s.shuffleSingles {
		rand.Shuffle(len(single), func(i, j int) {
			single[i], single[j] = single[j], single[i]
		})
	}

	return append(multi, single...)
}

// hasValidName reports whether the scraped name identifies a product.
// Placeholder names ("", "n/a") are excluded from grouping entirely.
func hasValidName(name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	return trimmed != "" && trimmed != "n/a"
}

// analyzePrices computes the cheapest/most-expensive annotation for a set
// of offers. Offers whose price does not parse to a positive number are
// excluded; fewer than two parseable prices yields nil.
func analyzePrices(offers []domain.PlatformOffer) *domain.PriceAnalysis {
	type pricedOffer struct {
		platform string
		price    float64
	}

	var priced []pricedOffer
	for _, offer := range offers {
		value, ok := parsePrice(offer.Price)
		if !ok {
			continue
		}
		priced = append(priced, pricedOffer{platform: offer.Platform, price: value})
	}

	if len(priced) < 2 {
		return nil
	}

	cheapest := priced[0]
	costliest := priced[0]
	for _, p := range priced[1:] {
		if p.price < cheapest.price {
			cheapest = p
		}
		if p.price > costliest.price {
			costliest = p
		}
	}

	savings := costliest.price - cheapest.price
	percent := math.Round(savings/costliest.price*1000) / 10

	return &domain.PriceAnalysis{
		CheapestPlatform:      cheapest.platform,
		CheapestPrice:         cheapest.price,
		MostExpensivePlatform: costliest.platform,
		MostExpensivePrice:    costliest.price,
		SavingsAbsolute:       savings,
		SavingsPercent:        percent,
	}
}

// parsePrice extracts the numeric portion of a display price. Unparsable
// or zero prices report ok=false and are left out of the analysis.
func parsePrice(display string) (float64, bool) {
	digits := nonPriceCharsRegex.ReplaceAllString(display, "")
	if digits == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return value, true
}
