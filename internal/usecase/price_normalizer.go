package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// priceTokenRegex captures the first numeric token in free-form price text,
// tolerating thousands separators and either decimal mark ("1,299.00",
// "1.299,00", "1 299,00").
var priceTokenRegex = regexp.MustCompile(`\d[\d\s.,]*`)

// PriceNormalizer converts raw, locale-dependent price text into a canonical
// numeric-comparable form while preserving the original string for display.
type PriceNormalizer struct{}

// NewPriceNormalizer creates a new price normalizer
func NewPriceNormalizer() *PriceNormalizer {
	return &PriceNormalizer{}
}

// NormalizeCandidate derives the display strings and the ranking value for
// one raw listing. Display strings are the trimmed originals, so running the
// normalizer over an already-normalized string is a no-op. saleValue is nil
// when no numeric token could be extracted; the row is still retained with
// its display text intact so ambiguous evidence is never discarded.
func (p *PriceNormalizer) NormalizeCandidate(c domain.Candidate) (displayOriginal, displaySale, displayExtra string, saleValue *float64) {
	displayOriginal = strings.TrimSpace(c.RawOriginalPrice)
	if displayOriginal == "" {
		displayOriginal = domain.NoOriginalPrice
	}

	// The current selling price is the sale price when present, otherwise the
	// only price the page showed.
	rawSale := strings.TrimSpace(c.RawSalePrice)
	if rawSale == "" {
		rawSale = strings.TrimSpace(c.RawOriginalPrice)
		if rawSale != "" {
			displayOriginal = domain.NoOriginalPrice
		}
	}

	if rawSale == "" {
		displaySale = domain.SalePriceNotFound
	} else {
		displaySale = rawSale
		if v, ok := ParsePriceValue(rawSale); ok {
			saleValue = &v
		}
	}

	displayExtra = strings.TrimSpace(c.RawExtraDiscount)
	if displayExtra == "" {
		displayExtra = domain.NoExtraDiscount
	}

	return displayOriginal, displaySale, displayExtra, saleValue
}

// ParsePriceValue extracts a currency-agnostic numeric value from price text.
// Currency symbols and thousands separators are stripped; both decimal-comma
// and decimal-point conventions are accepted. Returns false when the text
// carries no numeric token.
func ParsePriceValue(raw string) (float64, bool) {
	token := priceTokenRegex.FindString(raw)
	if token == "" {
		return 0, false
	}

	token = strings.ReplaceAll(token, " ", "")
	token = strings.TrimRight(token, ".,")
	if token == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(token, ".")
	lastComma := strings.LastIndex(token, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later one is the decimal mark
		if lastDot > lastComma {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		}
	case lastComma >= 0:
		token = resolveSingleSeparator(token, ",", lastComma)
	case lastDot >= 0:
		token = resolveSingleSeparator(token, ".", lastDot)
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// resolveSingleSeparator decides whether a lone "," or "." is a decimal mark
// or a thousands separator. "1,299" is read as 1299; "12,99" as 12.99; a
// repeated separator ("1.299.000") is always grouping.
func resolveSingleSeparator(token, sep string, lastIdx int) string {
	if strings.Count(token, sep) > 1 {
		return strings.ReplaceAll(token, sep, "")
	}

	digitsAfter := len(token) - lastIdx - 1
	if digitsAfter == 3 {
		// Exactly three trailing digits: grouping ("1,299" -> 1299)
		return strings.ReplaceAll(token, sep, "")
	}
	return strings.Replace(token, sep, ".", 1)
}
