package usecase

import (
	"log"
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// listingStopWords are tokens that carry no matching signal in retail
// listing titles (units, packaging, marketing noise).
var listingStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	// Size/quantity units
	"ml": true, "l": true, "litre": true, "litres": true, "liter": true,
	"g": true, "kg": true, "gram": true, "grams": true, "cm": true,
	"inch": true, "mm": true,
	// Packaging terms
	"pack": true, "packs": true, "bundle": true, "set": true, "combo": true,
	"box": true, "each": true, "per": true,
	// Marketing/retail noise
	"new": true, "sale": true, "special": true, "deal": true, "offer": true,
	"free": true, "delivery": true, "official": true, "original": true,
	"genuine": true, "sponsored": true,
}

// MatchConfig holds configuration for the listing matcher
type MatchConfig struct {
	MinConfidenceThreshold float64
	EnableDebugLogging     bool
}

// ListingMatcher decides whether a scraped listing title plausibly matches a
// requested (product, brand) pair. The rule is a tunable policy, not a fixed
// algorithm: a title matches when the brand appears as a case-insensitive
// substring AND enough of the product-name tokens are present in the title.
type ListingMatcher struct {
	minConfidenceThreshold float64
	enableDebugLogging     bool
}

// NewListingMatcher creates a new listing matcher with the given configuration
func NewListingMatcher(config MatchConfig) *ListingMatcher {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 {
		threshold = 50.0 // Default: half the product tokens must appear
	}

	return &ListingMatcher{
		minConfidenceThreshold: threshold,
		enableDebugLogging:     config.EnableDebugLogging,
	}
}

// Match scores a listing title against the requested product and brand.
// Returns the coverage score (0-100) and whether it clears the threshold.
func (m *ListingMatcher) Match(title, productName, brand string) (float64, bool) {
	titleLower := strings.ToLower(title)

	if brand != "" && !strings.Contains(titleLower, strings.ToLower(brand)) {
		if m.enableDebugLogging {
			log.Printf("[MATCH] Brand %q absent from title %q", brand, title)
		}
		return 0, false
	}

	score := m.coverageScore(title, productName)
	if m.enableDebugLogging {
		log.Printf("[MATCH] Title: %q | Product: %q | Score: %.1f", title, productName, score)
	}

	return score, score >= m.minConfidenceThreshold
}

// BestCandidate returns the index of the best-matching title for the given
// (product, brand) pair, or -1 when nothing clears the threshold. Ties are
// broken by listing order on the page.
func (m *ListingMatcher) BestCandidate(titles []string, productName, brand string) int {
	best := -1
	highestScore := -1.0

	for i, title := range titles {
		score, ok := m.Match(title, productName, brand)
		if !ok {
			continue
		}
		if score > highestScore {
			highestScore = score
			best = i
		}
	}

	return best
}

// coverageScore computes what fraction of the product-name tokens appear in
// the listing title, scaled to 0-100. Token containment is loose: a product
// token also counts when it appears as a substring of a title token, so
// "headphone" matches "headphones".
func (m *ListingMatcher) coverageScore(title, productName string) float64 {
	productTokens := tokenize(productName)
	if len(productTokens) == 0 {
		return 0
	}

	titleLower := strings.ToLower(title)
	titleTokens := tokenize(title)
	titleSet := make(map[string]bool, len(titleTokens))
	for _, t := range titleTokens {
		titleSet[t] = true
	}

	matched := 0
	for _, token := range productTokens {
		if titleSet[token] || strings.Contains(titleLower, token) {
			matched++
		}
	}

	return float64(matched) / float64(len(productTokens)) * 100
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, and single-character tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if listingStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}
