package usecase

import (
	"testing"

	"github.com/pricescout/backend/internal/domain"
)

func TestParsePriceValue(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"R1,999.00", 1999.00, true},
		{"R 1 299,00", 1299.00, true},
		{"$1,234.56", 1234.56, true},
		{"ZAR 500", 500, true},
		{"1.299,00", 1299.00, true},
		{"1,299", 1299, true},
		{"12,99", 12.99, true},
		{"1.299.000", 1299000, true},
		{"499", 499, true},
		{"R499.90", 499.90, true},
		{"From R89", 89, true},
		{"Price on request", 0, false},
		{"", 0, false},
		{"Not Found", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePriceValue(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePriceValue(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePriceValue(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCandidate(t *testing.T) {
	p := NewPriceNormalizer()

	t.Run("preserves display strings verbatim", func(t *testing.T) {
		original, sale, extra, value := p.NormalizeCandidate(domain.Candidate{
			RawOriginalPrice: " R2,499.00 ",
			RawSalePrice:     "R1,999.00",
			RawExtraDiscount: " Save 10% with coupon ",
		})

		if original != "R2,499.00" {
			t.Errorf("original = %q, want R2,499.00", original)
		}
		if sale != "R1,999.00" {
			t.Errorf("sale = %q, want R1,999.00", sale)
		}
		if extra != "Save 10% with coupon" {
			t.Errorf("extra = %q, want trimmed discount text", extra)
		}
		if value == nil || *value != 1999.00 {
			t.Errorf("value = %v, want 1999", value)
		}
	})

	t.Run("is idempotent on already-normalized display strings", func(t *testing.T) {
		first := domain.Candidate{
			RawOriginalPrice: "R2,499.00",
			RawSalePrice:     "R1,999.00",
			RawExtraDiscount: "None",
		}
		o1, s1, e1, _ := p.NormalizeCandidate(first)

		second := domain.Candidate{
			RawOriginalPrice: o1,
			RawSalePrice:     s1,
			RawExtraDiscount: e1,
		}
		o2, s2, e2, _ := p.NormalizeCandidate(second)

		if o1 != o2 || s1 != s2 || e1 != e2 {
			t.Errorf("second pass changed output: (%q,%q,%q) -> (%q,%q,%q)", o1, s1, e1, o2, s2, e2)
		}
	})

	t.Run("falls back to the only price shown", func(t *testing.T) {
		original, sale, _, value := p.NormalizeCandidate(domain.Candidate{
			RawOriginalPrice: "R500.00",
		})

		if original != domain.NoOriginalPrice {
			t.Errorf("original = %q, want %q", original, domain.NoOriginalPrice)
		}
		if sale != "R500.00" {
			t.Errorf("sale = %q, want R500.00", sale)
		}
		if value == nil || *value != 500 {
			t.Errorf("value = %v, want 500", value)
		}
	})

	t.Run("retains unparseable price text with nil value", func(t *testing.T) {
		_, sale, _, value := p.NormalizeCandidate(domain.Candidate{
			RawSalePrice: "Price on request",
		})

		if sale != "Price on request" {
			t.Errorf("sale = %q, want original text retained", sale)
		}
		if value != nil {
			t.Errorf("value = %v, want nil for unparseable text", *value)
		}
	})

	t.Run("marks empty candidate as not found", func(t *testing.T) {
		original, sale, extra, value := p.NormalizeCandidate(domain.Candidate{})

		if original != domain.NoOriginalPrice {
			t.Errorf("original = %q, want %q", original, domain.NoOriginalPrice)
		}
		if sale != domain.SalePriceNotFound {
			t.Errorf("sale = %q, want %q", sale, domain.SalePriceNotFound)
		}
		if extra != domain.NoExtraDiscount {
			t.Errorf("extra = %q, want %q", extra, domain.NoExtraDiscount)
		}
		if value != nil {
			t.Error("value should be nil for empty candidate")
		}
	})
}
