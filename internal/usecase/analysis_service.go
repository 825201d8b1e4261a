package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	MaxSessions        int
	ProbeTimeout       time.Duration
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// AnalysisService runs the full price-reconciliation pipeline:
// normalize -> fan out one probe per website -> join -> normalize prices ->
// synthesize recommendation -> assemble the final result.
type AnalysisService struct {
	normalizer   *QueryNormalizer
	prices       *PriceNormalizer
	prober       domain.SiteProber
	recommender  domain.Recommender
	cache        domain.CacheRepository
	maxSessions  int
	probeTimeout time.Duration
	cacheTTL     time.Duration
	debug        bool
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	prober domain.SiteProber,
	recommender domain.Recommender,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
) *AnalysisService {
	maxSessions := config.MaxSessions
	if maxSessions < 1 {
		maxSessions = 4
	}

	probeTimeout := config.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 45 * time.Second
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	return &AnalysisService{
		normalizer:   NewQueryNormalizer(),
		prices:       NewPriceNormalizer(),
		prober:       prober,
		recommender:  recommender,
		cache:        cache,
		maxSessions:  maxSessions,
		probeTimeout: probeTimeout,
		cacheTTL:     cacheTTL,
		debug:        config.EnableDebugLogging,
	}
}

// Analyze runs one complete analysis. apiKey is the caller-supplied credential
// forwarded to the reasoning provider. Only validation errors and a rejected
// credential are fatal; per-site failures and synthesis failures degrade to
// "Not Found" rows and the deterministic fallback respectively.
func (s *AnalysisService) Analyze(
	ctx context.Context,
	apiKey string,
	raw *domain.SearchRequest,
) (*domain.AnalysisResult, error) {
	request, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("[ANALYZE] product=%q brands=%d websites=%d", request.ProductName,
		len(request.Brands), len(request.Websites))

	probeResults := s.probeAll(ctx, request)
	rows := s.buildRows(request, probeResults)

	recommendation, err := s.recommender.Recommend(ctx, apiKey, request, rows)
	if err != nil || strings.TrimSpace(recommendation) == "" {
		if errors.Is(err, domain.ErrCredentialRejected) {
			return nil, err
		}
		log.Printf("[ANALYZE] Synthesis unavailable (%v), using deterministic fallback", err)
		recommendation = FallbackRecommendation(request, rows)
	}

	return &domain.AnalysisResult{
		ComparisonTable:   rows,
		TopRecommendation: recommendation,
	}, nil
}

// probeAll fans out one probe per website, bounded by the session semaphore,
// and joins before returning. Each goroutine writes only its own slot of the
// results slice, so no cross-probe state is shared before the join point.
func (s *AnalysisService) probeAll(ctx context.Context, request *domain.SearchRequest) []*domain.SiteProbeResult {
	results := make([]*domain.SiteProbeResult, len(request.Websites))

	sem := make(chan struct{}, s.maxSessions)
	var wg sync.WaitGroup

	for i, website := range request.Websites {
		wg.Add(1)
		go func(slot int, host string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[slot] = s.probeSite(ctx, host, request)
		}(i, website)
	}

	wg.Wait()
	return results
}

// probeSite runs a single probe under its own timeout, consulting the
// evidence cache first. Failed probes are never cached.
func (s *AnalysisService) probeSite(ctx context.Context, website string, request *domain.SearchRequest) *domain.SiteProbeResult {
	cacheKey := s.evidenceCacheKey(website, request.ProductName, request.Brands)

	if cached := s.getCachedEvidence(ctx, cacheKey); cached != nil {
		if s.debug {
			log.Printf("[ANALYZE] Cache hit for %s", website)
		}
		return cached
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	result := s.prober.Probe(probeCtx, website, request.ProductName, request.Brands)
	if result == nil {
		result = &domain.SiteProbeResult{
			Website:    website,
			Outcome:    domain.OutcomeFailed,
			Diagnostic: "prober returned no result",
		}
	}

	if result.Outcome != domain.OutcomeFailed && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			log.Printf("[ANALYZE] Failed to cache evidence for %s: %v", website, err)
		}
	}

	return result
}

// evidenceCacheKey creates a normalized cache key for one probe. The brand set
// is part of the key because probe results carry only candidates for the
// brands that were requested; evidence gathered for one brand set must never
// answer for another. Format: "evidence:{host}:{normalized product}:{brands}"
func (s *AnalysisService) evidenceCacheKey(website, productName string, brands []string) string {
	normalized := strings.ToLower(productName)
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, " ")

	brandSet := make([]string, len(brands))
	for i, brand := range brands {
		brandSet[i] = strings.ToLower(strings.TrimSpace(brand))
	}
	sort.Strings(brandSet)

	return fmt.Sprintf("evidence:%s:%s:%s",
		strings.ToLower(website), strings.TrimSpace(normalized), strings.Join(brandSet, ","))
}

// getCachedEvidence retrieves a probe result from the cache. The cache stores
// values through a JSON round trip, so a hit may come back as a generic map.
func (s *AnalysisService) getCachedEvidence(ctx context.Context, key string) *domain.SiteProbeResult {
	if s.cache == nil {
		return nil
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	if result, ok := value.(*domain.SiteProbeResult); ok {
		return result
	}
	if dataMap, ok := value.(map[string]interface{}); ok {
		return probeResultFromMap(dataMap)
	}
	return nil
}

// probeResultFromMap converts a map (from the JSON cache round trip) back to
// a SiteProbeResult.
func probeResultFromMap(data map[string]interface{}) *domain.SiteProbeResult {
	result := &domain.SiteProbeResult{}

	if v, ok := data["website"].(string); ok {
		result.Website = v
	}
	if v, ok := data["outcome"].(string); ok {
		result.Outcome = domain.ProbeOutcome(v)
	}
	if v, ok := data["diagnostic"].(string); ok {
		result.Diagnostic = v
	}

	candidates, ok := data["candidates"].([]interface{})
	if !ok {
		return result
	}
	for _, entry := range candidates {
		cm, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		c := domain.Candidate{}
		if v, ok := cm["brand"].(string); ok {
			c.Brand = v
		}
		if v, ok := cm["productTitle"].(string); ok {
			c.ProductTitle = v
		}
		if v, ok := cm["rawOriginalPrice"].(string); ok {
			c.RawOriginalPrice = v
		}
		if v, ok := cm["rawSalePrice"].(string); ok {
			c.RawSalePrice = v
		}
		if v, ok := cm["rawExtraDiscount"].(string); ok {
			c.RawExtraDiscount = v
		}
		if v, ok := cm["listingUrl"].(string); ok {
			c.ListingURL = v
		}
		result.Candidates = append(result.Candidates, c)
	}

	return result
}

// buildRows assembles the comparison table: exactly one row per
// (website, brand) pair in scan order then brand-preference order, with
// explicit "Not Found" rows for every pair the probes produced nothing for.
func (s *AnalysisService) buildRows(request *domain.SearchRequest, probeResults []*domain.SiteProbeResult) []domain.ComparisonRow {
	rows := make([]domain.ComparisonRow, 0, len(request.Websites)*len(request.Brands))

	for i, website := range request.Websites {
		var result *domain.SiteProbeResult
		if i < len(probeResults) {
			result = probeResults[i]
		}

		for _, brand := range request.Brands {
			rows = append(rows, s.buildRow(request, website, brand, result))
		}
	}

	return rows
}

// buildRow produces the normalized row for one (website, brand) pair.
func (s *AnalysisService) buildRow(request *domain.SearchRequest, website, brand string, result *domain.SiteProbeResult) domain.ComparisonRow {
	row := domain.ComparisonRow{
		Website:        website,
		Brand:          brand,
		Product:        request.ProductName,
		OriginalPrice:  domain.NoOriginalPrice,
		SalePrice:      domain.SalePriceNotFound,
		ExtraDiscounts: domain.NoExtraDiscount,
	}

	if result == nil || result.Outcome == domain.OutcomeFailed {
		row.Comment = "Site could not be reached"
		if result != nil && result.Diagnostic != "" {
			row.Comment = "Site could not be reached: " + result.Diagnostic
		}
		return row
	}

	candidate, found := candidateForBrand(result.Candidates, brand)
	if !found {
		row.Comment = "No matching listing found"
		return row
	}

	if candidate.ProductTitle != "" {
		row.Product = candidate.ProductTitle
	}
	row.ProductURL = candidate.ListingURL

	original, sale, extra, saleValue := s.prices.NormalizeCandidate(candidate)
	row.OriginalPrice = original
	row.SalePrice = sale
	row.ExtraDiscounts = extra
	row.SalePriceValue = saleValue

	if sale != domain.SalePriceNotFound && saleValue == nil {
		row.Comment = "Listed price format not recognized"
	}

	return row
}

// candidateForBrand finds the candidate the prober kept for a brand.
func candidateForBrand(candidates []domain.Candidate, brand string) (domain.Candidate, bool) {
	for _, c := range candidates {
		if strings.EqualFold(c.Brand, brand) {
			return c, true
		}
	}
	return domain.Candidate{}, false
}

// FallbackRecommendation is the deterministic verdict used when the reasoning
// backend is unavailable or returns nothing usable: the lowest numeric sale
// price wins, ties broken by earliest brand-preference order then earliest
// website-scan order.
func FallbackRecommendation(request *domain.SearchRequest, rows []domain.ComparisonRow) string {
	brandRank := make(map[string]int, len(request.Brands))
	for i, brand := range request.Brands {
		brandRank[strings.ToLower(brand)] = i
	}

	best := -1
	for i := range rows {
		if !rows[i].Ranked() {
			continue
		}
		if best < 0 {
			best = i
			continue
		}

		current, challenger := *rows[best].SalePriceValue, *rows[i].SalePriceValue
		if challenger < current {
			best = i
			continue
		}
		if challenger == current &&
			brandRank[strings.ToLower(rows[i].Brand)] < brandRank[strings.ToLower(rows[best].Brand)] {
			// Rows are already in website-scan order, so keeping the earlier
			// index on equal brand rank preserves the website tie-break.
			best = i
		}
	}

	if best < 0 {
		return fmt.Sprintf("No comparable price was found for %q across the requested websites; "+
			"none of the probed listings carried a usable price.", request.ProductName)
	}

	winner := rows[best]
	verdict := fmt.Sprintf("Best offer: %s at %s from %s (%s).",
		winner.Product, winner.SalePrice, winner.Website, winner.Brand)
	if winner.ExtraDiscounts != "" && winner.ExtraDiscounts != domain.NoExtraDiscount {
		verdict += fmt.Sprintf(" Note the extra deal on offer: %s.", winner.ExtraDiscounts)
	}
	return verdict
}
