package usecase

import (
	"testing"

	"github.com/quickcompare/backend/internal/domain"
)

// newTestMergeService returns a merge service with shuffling disabled so
// output order is fully deterministic under test.
func newTestMergeService() *MergeService {
	return NewMergeService(MergeConfig{ShuffleSingles: false})
}

func TestNewMergeService(t *testing.T) {
	t.Run("applies defaults for unset thresholds", func(t *testing.T) {
		svc := NewMergeService(MergeConfig{})
		if svc.scoreThreshold != 75 {
			t.Errorf("scoreThreshold = %d, want 75", svc.scoreThreshold)
		}
		if svc.highScoreThreshold != 90 {
			t.Errorf("highScoreThreshold = %d, want 90", svc.highScoreThreshold)
		}
		if svc.quantityTolerance != 0.15 {
			t.Errorf("quantityTolerance = %v, want 0.15", svc.quantityTolerance)
		}
	})

	t.Run("keeps provided thresholds", func(t *testing.T) {
		svc := NewMergeService(MergeConfig{ScoreThreshold: 80, HighScoreThreshold: 95, QuantityTolerance: 0.1})
		if svc.scoreThreshold != 80 || svc.highScoreThreshold != 95 || svc.quantityTolerance != 0.1 {
			t.Errorf("config not applied: %+v", svc)
		}
	})
}

func TestMergeEmptyInput(t *testing.T) {
	svc := newTestMergeService()

	groups := svc.Merge(nil)
	if groups == nil {
		t.Fatal("Merge(nil) returned nil, want empty slice")
	}
	if len(groups) != 0 {
		t.Errorf("Merge(nil) returned %d groups, want 0", len(groups))
	}
}

func TestMergeCrossPlatformMatch(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30", InStock: true},
		{Platform: "zepto", Name: "500ml Amul Taaza Milk Pouch", Quantity: "500 ml", Price: "₹29", InStock: true},
	}

	groups := svc.Merge(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	group := groups[0]
	if len(group.Platforms) != 2 {
		t.Fatalf("got %d offers, want 2", len(group.Platforms))
	}
	if group.Name != "Amul Taaza Milk" {
		t.Errorf("group name = %q, want seed record's name", group.Name)
	}
	if group.Platforms[0].Platform != "blinkit" || group.Platforms[1].Platform != "zepto" {
		t.Errorf("offers in wrong discovery order: %+v", group.Platforms)
	}

	pa := group.PriceAnalysis
	if pa == nil {
		t.Fatal("expected price analysis for two parseable prices")
	}
	if pa.CheapestPlatform != "zepto" || pa.CheapestPrice != 29 {
		t.Errorf("cheapest = %s/%v, want zepto/29", pa.CheapestPlatform, pa.CheapestPrice)
	}
	if pa.MostExpensivePlatform != "blinkit" || pa.MostExpensivePrice != 30 {
		t.Errorf("most expensive = %s/%v, want blinkit/30", pa.MostExpensivePlatform, pa.MostExpensivePrice)
	}
	if pa.SavingsAbsolute != 1 {
		t.Errorf("savings = %v, want 1", pa.SavingsAbsolute)
	}
	if pa.SavingsPercent != 3.3 {
		t.Errorf("savings percent = %v, want 3.3", pa.SavingsPercent)
	}
}

func TestMergeSamePlatformNeverDuplicates(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹31"},
	}

	groups := svc.Merge(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (same platform must not merge)", len(groups))
	}
	for _, group := range groups {
		if len(group.Platforms) != 1 {
			t.Errorf("group has %d offers, want 1", len(group.Platforms))
		}
	}
}

func TestMergeSkipsInvalidNames(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "N/A", Price: "₹10"},
		{Platform: "zepto", Name: "", Price: "₹12"},
		{Platform: "dmart", Name: "   ", Price: "₹14"},
		{Platform: "instamart", Name: "Tata Salt", Quantity: "1kg", Price: "₹28"},
	}

	groups := svc.Merge(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Name != "Tata Salt" {
		t.Errorf("surviving group = %q, want Tata Salt", groups[0].Name)
	}
}

func TestMergeSkipsMissingPlatform(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "zepto", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹29"},
	}

	groups := svc.Merge(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (untagged record dropped)", len(groups))
	}
	if groups[0].Platforms[0].Platform != "zepto" {
		t.Errorf("offer platform = %q, want zepto", groups[0].Platforms[0].Platform)
	}
}

func TestMergeHighSimilarityIgnoresQuantity(t *testing.T) {
	svc := newTestMergeService()

	// Unparsable, differing quantities: the high-similarity disjunct
	// still merges on brand agreement alone.
	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Butter Salted", Quantity: "family pack", Price: "₹120"},
		{Platform: "zepto", Name: "Amul Butter Salted", Quantity: "jumbo", Price: "₹115"},
	}

	groups := svc.Merge(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].Platforms) != 2 {
		t.Errorf("got %d offers, want 2", len(groups[0].Platforms))
	}
}

func TestMergeBrandMismatchBlocksMerge(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "XYZ Milk 500ml", Quantity: "500 ml", Price: "₹30"},
		{Platform: "zepto", Name: "ABC Milk 500ml", Quantity: "500 ml", Price: "₹29"},
	}

	groups := svc.Merge(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (brand mismatch must block merge)", len(groups))
	}
}

func TestMergeQuantityToleranceGate(t *testing.T) {
	svc := newTestMergeService()

	// "Slim" keeps the name score between the two thresholds so the
	// quantity gate actually decides the outcome.
	t.Run("close quantities merge", func(t *testing.T) {
		records := []domain.RawProduct{
			{Platform: "blinkit", Name: "Amul Gold Milk", Quantity: "500 ml", Price: "₹33"},
			{Platform: "zepto", Name: "Amul Gold Milk Slim", Quantity: "450 ml", Price: "₹32"},
		}
		groups := svc.Merge(records)
		if len(groups) != 1 {
			t.Fatalf("got %d groups, want 1", len(groups))
		}
	})

	t.Run("distant quantities stay apart", func(t *testing.T) {
		records := []domain.RawProduct{
			{Platform: "blinkit", Name: "Amul Gold Milk", Quantity: "500 ml", Price: "₹33"},
			{Platform: "zepto", Name: "Amul Gold Milk Slim", Quantity: "200 ml", Price: "₹18"},
		}
		groups := svc.Merge(records)
		if len(groups) != 2 {
			t.Fatalf("got %d groups, want 2", len(groups))
		}
	})
}

func TestMergeFirstFitWins(t *testing.T) {
	svc := newTestMergeService()

	// Two identical blinkit listings seed two groups; the zepto record
	// matches both and must join the earliest-created one.
	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹31"},
		{Platform: "zepto", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹29"},
	}

	groups := svc.Merge(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// Multi-platform group sorts first; it must be the one seeded by the
	// first blinkit record.
	if len(groups[0].Platforms) != 2 {
		t.Fatalf("first group has %d offers, want 2", len(groups[0].Platforms))
	}
	if groups[0].Platforms[0].Price != "₹30" {
		t.Errorf("zepto joined the wrong group: seed price %q, want ₹30", groups[0].Platforms[0].Price)
	}
	if len(groups[1].Platforms) != 1 || groups[1].Platforms[0].Price != "₹31" {
		t.Errorf("second group = %+v, want lone ₹31 blinkit offer", groups[1].Platforms)
	}
}

func TestMergeOrderingByPlatformCount(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		// Lone listing, discovered first.
		{Platform: "blinkit", Name: "Epigamia Greek Yogurt", Quantity: "90 g", Price: "₹60"},
		// Three-platform product.
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "zepto", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹29"},
		{Platform: "dmart", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹28"},
		// Two-platform product.
		{Platform: "zepto", Name: "Tata Salt", Quantity: "1kg", Price: "₹27"},
		{Platform: "dmart", Name: "Tata Salt", Quantity: "1 kg", Price: "₹25"},
	}

	groups := svc.Merge(records)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if len(groups[0].Platforms) != 3 {
		t.Errorf("first group has %d offers, want 3", len(groups[0].Platforms))
	}
	if len(groups[1].Platforms) != 2 {
		t.Errorf("second group has %d offers, want 2", len(groups[1].Platforms))
	}
	if len(groups[2].Platforms) != 1 {
		t.Errorf("last group has %d offers, want 1 (singles sort last)", len(groups[2].Platforms))
	}
}

func TestMergeEveryValidRecordAppearsExactlyOnce(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "zepto", Name: "Amul Taaza Milk Pouch", Quantity: "500 ml", Price: "₹29"},
		{Platform: "dmart", Name: "Nandini Curd", Quantity: "400g", Price: "₹25"},
		{Platform: "instamart", Name: "Heritage Curd Cup", Quantity: "400 g", Price: "₹26"},
		{Platform: "zepto", Name: "n/a", Price: "₹1"},
		{Platform: "blinkit", Name: "Saffola Gold Oil", Quantity: "1 l", Price: "₹180"},
	}

	groups := svc.Merge(records)

	total := 0
	for _, group := range groups {
		seen := make(map[string]bool)
		for _, offer := range group.Platforms {
			if seen[offer.Platform] {
				t.Errorf("group %q holds duplicate platform %q", group.Name, offer.Platform)
			}
			seen[offer.Platform] = true
			total++
		}
	}

	// Five valid records in, five offers out.
	if total != 5 {
		t.Errorf("total offers = %d, want 5", total)
	}
}

func TestMergeDeterministicWithoutShuffle(t *testing.T) {
	svc := newTestMergeService()

	records := []domain.RawProduct{
		{Platform: "blinkit", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹30"},
		{Platform: "zepto", Name: "Amul Taaza Milk", Quantity: "500 ml", Price: "₹29"},
		{Platform: "dmart", Name: "Nandini Curd", Quantity: "400g", Price: "₹25"},
		{Platform: "instamart", Name: "Fortune Sunflower Oil", Quantity: "1 l", Price: "₹150"},
	}

	first := svc.Merge(records)
	for i := 0; i < 5; i++ {
		again := svc.Merge(records)
		if len(again) != len(first) {
			t.Fatalf("group count changed between runs: %d vs %d", len(first), len(again))
		}
		for j := range again {
			if again[j].Name != first[j].Name || len(again[j].Platforms) != len(first[j].Platforms) {
				t.Fatalf("grouping changed between runs at index %d", j)
			}
		}
	}
}

func TestAnalyzePrices(t *testing.T) {
	t.Run("excludes unparsable and zero prices", func(t *testing.T) {
		offers := []domain.PlatformOffer{
			{Platform: "blinkit", Price: "₹30"},
			{Platform: "zepto", Price: "N/A"},
			{Platform: "dmart", Price: "₹0"},
		}
		if pa := analyzePrices(offers); pa != nil {
			t.Errorf("expected nil analysis with one valid price, got %+v", pa)
		}
	})

	t.Run("handles thousands separators", func(t *testing.T) {
		offers := []domain.PlatformOffer{
			{Platform: "blinkit", Price: "₹1,299"},
			{Platform: "dmart", Price: "₹999"},
		}
		pa := analyzePrices(offers)
		if pa == nil {
			t.Fatal("expected analysis")
		}
		if pa.CheapestPrice != 999 || pa.MostExpensivePrice != 1299 {
			t.Errorf("prices = %v/%v, want 999/1299", pa.CheapestPrice, pa.MostExpensivePrice)
		}
		if pa.SavingsAbsolute != 300 {
			t.Errorf("savings = %v, want 300", pa.SavingsAbsolute)
		}
		if pa.SavingsPercent != 23.1 {
			t.Errorf("savings percent = %v, want 23.1", pa.SavingsPercent)
		}
	})
}
