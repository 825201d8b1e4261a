package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/domain"
)

func TestLooksBlocked(t *testing.T) {
	tests := []struct {
		name      string
		pageTitle string
		bodyText  string
		cards     []listingCard
		want      bool
	}{
		{
			name:      "captcha title with no cards",
			pageTitle: "Captcha Check",
			cards:     nil,
			want:      true,
		},
		{
			name:      "access denied title",
			pageTitle: "Access Denied",
			cards:     nil,
			want:      true,
		},
		{
			name:      "robot challenge is case-insensitive",
			pageTitle: "Sorry, Are You A Robot?",
			cards:     nil,
			want:      true,
		},
		{
			name:      "challenge text in the body only",
			pageTitle: "takealot.com",
			bodyText:  "Please complete the CAPTCHA below to continue.",
			cards:     nil,
			want:      true,
		},
		{
			name:      "denial text in the body only",
			pageTitle: "Error",
			bodyText:  "Your request blocked due to unusual activity from your network.",
			cards:     nil,
			want:      true,
		},
		{
			name:      "challenge text with cards is trusted",
			pageTitle: "Pardon Our Interruption",
			bodyText:  "are you human?",
			cards:     []listingCard{{Title: "Sony Headphones"}},
			want:      false,
		},
		{
			name:      "ordinary results page",
			pageTitle: "Search results for headphones",
			bodyText:  "Showing 24 results",
			cards:     nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksBlocked(tt.pageTitle, tt.bodyText, tt.cards); got != tt.want {
				t.Errorf("looksBlocked(%q, %q, %d cards) = %v, want %v",
					tt.pageTitle, tt.bodyText, len(tt.cards), got, tt.want)
			}
		})
	}
}

func TestClassifyProbeError(t *testing.T) {
	t.Run("deadline exceeded on the error", func(t *testing.T) {
		got := classifyProbeError(context.Background(), context.DeadlineExceeded)
		if got != "probe timed out" {
			t.Errorf("classifyProbeError() = %q, want probe timed out", got)
		}
	})

	t.Run("deadline exceeded on the context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		got := classifyProbeError(ctx, errors.New("page load interrupted"))
		if got != "probe timed out" {
			t.Errorf("classifyProbeError() = %q, want probe timed out", got)
		}
	})

	t.Run("cancellation", func(t *testing.T) {
		got := classifyProbeError(context.Background(), context.Canceled)
		if got != "probe cancelled" {
			t.Errorf("classifyProbeError() = %q, want probe cancelled", got)
		}
	})

	t.Run("cancellation on the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := classifyProbeError(ctx, errors.New("rate: Wait(n=1) would exceed context deadline"))
		if got != "probe cancelled" {
			t.Errorf("classifyProbeError() = %q, want probe cancelled", got)
		}
	})

	t.Run("other errors become navigation diagnostics", func(t *testing.T) {
		got := classifyProbeError(context.Background(), errors.New("net::ERR_NAME_NOT_RESOLVED"))
		if !strings.HasPrefix(got, "navigation error: ") || !strings.Contains(got, "ERR_NAME_NOT_RESOLVED") {
			t.Errorf("classifyProbeError() = %q, want a navigation diagnostic", got)
		}
	})
}

type stubMatcher struct{}

func (stubMatcher) BestCandidate(titles []string, productName, brand string) int { return -1 }

// A probe whose deadline has already passed must report a timeout, not a
// generic cancellation, even though it never reached navigation. No browser
// is launched: the rate-limiter wait fails before any page work.
func TestProbe_ExpiredContextReportsTimeout(t *testing.T) {
	p := NewProber(config.BrowserConfig{}, stubMatcher{})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	result := p.Probe(ctx, "site-a.com", "Headphones", []string{"Sony"})

	if result.Outcome != domain.OutcomeFailed {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, domain.OutcomeFailed)
	}
	if result.Diagnostic != "probe timed out" {
		t.Errorf("Diagnostic = %q, want probe timed out", result.Diagnostic)
	}
}

func TestExtractScript(t *testing.T) {
	script := extractScript(25)

	if !strings.Contains(script, "var limit = 25") {
		t.Errorf("extractScript(25) does not embed the card limit")
	}
	for _, selector := range []string{"s-search-result", "product-card", "a[href*=\"/p/\"]"} {
		if !strings.Contains(script, selector) {
			t.Errorf("extractScript() missing selector %q", selector)
		}
	}
}
