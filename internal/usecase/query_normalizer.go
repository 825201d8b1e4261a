package usecase

import (
	"regexp"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	schemePrefixRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	multiSpaceRegex   = regexp.MustCompile(`\s+`)
)

// QueryNormalizer validates and canonicalizes an incoming search request.
// It has no side effects; the input request is never mutated.
type QueryNormalizer struct{}

// NewQueryNormalizer creates a new query normalizer
func NewQueryNormalizer() *QueryNormalizer {
	return &QueryNormalizer{}
}

// Normalize trims and de-duplicates the request fields.
// Website entries are reduced to their bare host (scheme, path, port and a
// leading "www." are stripped); brands and hosts keep their first-seen casing
// for display while de-duplication compares case-insensitively. First-seen
// order is preserved because brand order carries tie-break priority and
// website order carries scan priority.
func (n *QueryNormalizer) Normalize(raw *domain.SearchRequest) (*domain.SearchRequest, error) {
	if raw == nil {
		return nil, domain.ErrEmptyProductName
	}

	productName := multiSpaceRegex.ReplaceAllString(strings.TrimSpace(raw.ProductName), " ")
	if productName == "" {
		return nil, domain.ErrEmptyProductName
	}

	brands := dedupePreservingOrder(raw.Brands, func(s string) string {
		return strings.TrimSpace(s)
	})
	if len(brands) == 0 {
		return nil, domain.ErrEmptyBrandSet
	}

	websites := dedupePreservingOrder(raw.Websites, canonicalizeHost)
	if len(websites) == 0 {
		return nil, domain.ErrEmptyWebsiteSet
	}

	return &domain.SearchRequest{
		ProductName: productName,
		Brands:      brands,
		Websites:    websites,
	}, nil
}

// canonicalizeHost reduces a user-supplied website entry to its bare domain,
// keeping the caller's casing so the comparison table displays the host as it
// was entered. "https://www.Takealot.com/deals?x=1" becomes "Takealot.com".
// Consumers that need a canonical form (search URLs, cache keys, dedupe)
// lower-case it themselves.
func canonicalizeHost(raw string) string {
	s := strings.TrimSpace(raw)
	s = schemePrefixRegex.ReplaceAllString(s, "")

	// Drop path, query and fragment
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
		}
	}

	// Drop port and credentials
	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	if len(s) >= 4 && strings.EqualFold(s[:4], "www.") {
		s = s[4:]
	}
	return strings.Trim(s, ".")
}

// dedupePreservingOrder cleans each entry with clean, drops empties, and
// removes case-insensitive duplicates keeping the first occurrence.
func dedupePreservingOrder(entries []string, clean func(string) string) []string {
	seen := make(map[string]bool, len(entries))
	var result []string

	for _, entry := range entries {
		cleaned := clean(entry)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, cleaned)
	}

	return result
}
