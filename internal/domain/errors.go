package domain

import "errors"

var (
	// ErrEmptyProductName is returned when the product name is blank after trimming
	ErrEmptyProductName = errors.New("product name must not be empty")

	// ErrEmptyBrandSet is returned when no brand survives validation
	ErrEmptyBrandSet = errors.New("at least one brand is required")

	// ErrEmptyWebsiteSet is returned when no website survives validation
	ErrEmptyWebsiteSet = errors.New("at least one website is required")

	// ErrMissingAPIKey is returned when the X-API-KEY header is absent or blank
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrCredentialRejected is returned when the reasoning provider rejects the forwarded key
	ErrCredentialRejected = errors.New("API credential rejected by provider")

	// ErrProbeFailed is returned when a site probe cannot complete
	ErrProbeFailed = errors.New("site probe failed")

	// ErrSynthesisFailed is returned when the reasoning backend is unreachable
	ErrSynthesisFailed = errors.New("recommendation synthesis failed")

	// ErrEmptyRecommendation is returned when the reasoning backend returns no usable text
	ErrEmptyRecommendation = errors.New("reasoning backend returned empty recommendation")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// IsValidation reports whether err belongs to the request-validation family,
// i.e. the request must be rejected before any probing is attempted.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyProductName) ||
		errors.Is(err, ErrEmptyBrandSet) ||
		errors.Is(err, ErrEmptyWebsiteSet)
}
