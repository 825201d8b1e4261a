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

// SiteProber drives one browsing session against a target website and returns
// the raw evidence found there. Implementations must never return an error for
// per-site failures; those are reported as an OutcomeFailed result so a single
// hostile site cannot abort the overall request. ctx bounds the probe's
// lifetime; expiry must tear down the browsing session.
type SiteProber interface {
	Probe(ctx context.Context, website, productName string, brands []string) *SiteProbeResult
}

// Recommender produces the natural-language verdict for a normalized
// comparison table. apiKey is the caller-supplied credential forwarded to the
// reasoning provider. Implementations return ErrCredentialRejected when the
// provider refuses the key, and ErrEmptyRecommendation when the call succeeds
// but yields no usable text.
type Recommender interface {
	Recommend(ctx context.Context, apiKey string, request *SearchRequest, rows []ComparisonRow) (string, error)
}
