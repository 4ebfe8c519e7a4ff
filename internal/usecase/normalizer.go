package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	// Matches multi-pack expressions like "2 x 500 ml" or "3X90g".
	// Anchored: the count must open the string.
	multiPackRegex = regexp.MustCompile(`^(\d+)\s*[xX]\s*(\d+(?:\.\d+)?)\s*(kilogram|kg|ml|litre|liter|l|gram|gm|g)`)

	// Matches a single quantity anywhere in the string, with or without
	// surrounding parentheses: "(1 L)", "500 ml", "400g".
	singleQtyRegex = regexp.MustCompile(`\(?(\d+(?:\.\d+)?)\s*(kilogram|kg|ml|litre|liter|l|gram|gm|g)\)?`)

	// Matches an already-canonical quantity: integer magnitude + ml/g.
	canonicalQtyRegex = regexp.MustCompile(`^(\d+)(ml|g)`)

	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// noiseWords are packaging/marketing substrings stripped from product names
// before fuzzy comparison. Removal is substring-based, not word-boundary
// based, so "tub" also strips inside "tube"; kept for compatibility with
// the scraped-data behavior the thresholds were tuned against.
var noiseWords = []string{
	"fresh", "pouch", "pack", "pc", "combo", "robusta", "regular",
	"tetra", "homogenised", "homogenized", "standardised", "standardized",
	"long life", "farm", "tub", "cup", "stick", "cone", "bottle", "can",
	"jar", "box", "unit", "sachet", "carton", "organic", "premium",
}

// knownBrands is a curated list of grocery brands seen across the four
// platforms. Multi-word entries come before any single-word entry they
// overlap with, since the first substring hit wins.
var knownBrands = []string{
	"mother dairy", "kwality walls", "india gate", "amul", "nandini",
	"gowardhan", "britannia", "parle", "haldiram", "aashirvaad", "saffola",
	"daawat", "fortune", "epigamia", "heritage", "cadbury", "nestle",
	"maggi", "sunfeast", "vadilal", "patanjali", "dabur", "kissan",
	"catch", "everest", "mdh", "tata",
}

// CleanName lowercases a product name and strips packaging/marketing noise
// so that fuzzy comparison sees only the product identity. Empty input
// yields empty output.
func CleanName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ToLower(name)
	for _, w := range noiseWords {
		name = strings.ReplaceAll(name, w, "")
	}
	name = multipleSpacesRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ExtractBrand returns the product's brand token: the first known brand
// found as a substring of the lowercased name, or the first
// whitespace-delimited token as a fallback heuristic.
func ExtractBrand(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			return brand
		}
	}
	return strings.ToLower(strings.Fields(trimmed)[0])
}

// NormalizeQuantity converts quantity expressions into a canonical
// "<integer><unit>" form with unit ml or g ("1 kg" -> "1000g",
// "2 x 500 ml" -> "1000ml"). Strings with no recognizable quantity are
// returned with internal whitespace removed and treated as opaque keys.
func NormalizeQuantity(qty string) string {
	if qty == "" {
		return ""
	}
	qty = strings.ToLower(strings.TrimSpace(qty))

	if m := multiPackRegex.FindStringSubmatch(qty); m != nil {
		count, _ := strconv.ParseFloat(m[1], 64)
		value, _ := strconv.ParseFloat(m[2], 64)
		return formatQuantity(count*value, m[3])
	}

	if m := singleQtyRegex.FindStringSubmatch(qty); m != nil {
		value, _ := strconv.ParseFloat(m[1], 64)
		return formatQuantity(value, m[2])
	}

	return strings.ReplaceAll(qty, " ", "")
}

// formatQuantity collapses volume units to milliliters and mass units to
// grams, truncating to an integer magnitude.
func formatQuantity(value float64, unit string) string {
	switch unit {
	case "l", "litre", "liter":
		value *= 1000
		unit = "ml"
	case "kg", "kilogram":
		value *= 1000
		unit = "g"
	case "gm", "gram":
		unit = "g"
	}
	return strconv.Itoa(int(value)) + unit
}

// QuantitiesClose reports whether two canonical quantities are within
// tolerance of each other. Both inputs must parse as "<integer><ml|g>" and
// share the same unit; anything else is not close.
func QuantitiesClose(q1, q2 string, tolerance float64) bool {
	m1 := canonicalQtyRegex.FindStringSubmatch(q1)
	m2 := canonicalQtyRegex.FindStringSubmatch(q2)
	if m1 == nil || m2 == nil {
		return false
	}
	if m1[2] != m2[2] {
		return false
	}
	v1, _ := strconv.ParseFloat(m1[1], 64)
	v2, _ := strconv.ParseFloat(m2[1], 64)
	diff := v1 - v2
	if diff < 0 {
		diff = -diff
	}
	max := v1
	if v2 > max {
		max = v2
	}
	return diff <= tolerance*max
}
