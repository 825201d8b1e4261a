package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/domain"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// blockSignals are page-title/body markers of anti-automation interstitials
var blockSignals = []string{
	"captcha",
	"access denied",
	"are you a robot",
	"are you human",
	"unusual traffic",
	"request blocked",
	"pardon our interruption",
}

// TitleMatcher decides which scraped listing title, if any, matches a
// requested (product, brand) pair.
type TitleMatcher interface {
	BestCandidate(titles []string, productName, brand string) int
}

// listingCard mirrors the object shape returned by the extraction script
type listingCard struct {
	Title         string `json:"title"`
	SalePrice     string `json:"salePrice"`
	OriginalPrice string `json:"originalPrice"`
	Discount      string `json:"discount"`
	URL           string `json:"url"`
}

// Prober drives headless-browser sessions against retailer search pages.
// All probes share one browser process (the exec allocator); each probe runs
// in its own isolated tab context, so concurrent probes share no page state.
type Prober struct {
	allocCtx    context.Context
	cancelFns   []context.CancelFunc
	matcher     TitleMatcher
	navLimiter  *rate.Limiter
	settleDelay time.Duration
	cardLimit   int
}

// NewProber launches the shared browser allocator and returns a ready Prober.
// Close must be called to tear the browser down.
func NewProber(cfg config.BrowserConfig, matcher TitleMatcher) *Prober {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if chromeBin != "" {
		log.Printf("[BROWSER] Using browser binary: %s", chromeBin)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	navPerSecond := cfg.NavPerSecond
	if navPerSecond <= 0 {
		navPerSecond = 1.0
	}

	settleDelay := cfg.SettleDelay
	if settleDelay <= 0 {
		settleDelay = 5 * time.Second
	}

	cardLimit := cfg.ListingsPerPage
	if cardLimit <= 0 {
		cardLimit = 25
	}

	return &Prober{
		allocCtx:    silentCtx,
		cancelFns:   []context.CancelFunc{cancelSilent, cancelAlloc},
		matcher:     matcher,
		navLimiter:  rate.NewLimiter(rate.Limit(navPerSecond), 1),
		settleDelay: settleDelay,
		cardLimit:   cardLimit,
	}
}

// Close tears down the shared browser process.
func (p *Prober) Close() {
	for _, cancel := range p.cancelFns {
		cancel()
	}
}

// Probe searches one website for the product and collects up to one best
// candidate listing per requested brand. Failures never escape as errors:
// navigation problems, anti-bot blocks and timeouts all come back as an
// OutcomeFailed result with a diagnostic, and ctx expiry tears down the
// probe's tab so no browser resources leak.
func (p *Prober) Probe(ctx context.Context, website, productName string, brands []string) *domain.SiteProbeResult {
	result := &domain.SiteProbeResult{Website: website}

	if err := p.navLimiter.Wait(ctx); err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Diagnostic = classifyProbeError(ctx, err)
		return result
	}

	searchURL := SearchURL(website, productName)
	log.Printf("[BROWSER] Probing %s: %s", website, searchURL)

	cards, pageTitle, bodyText, err := p.extractCards(ctx, searchURL)
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Diagnostic = classifyProbeError(ctx, err)
		log.Printf("[BROWSER] Probe failed for %s: %s", website, result.Diagnostic)
		return result
	}

	if looksBlocked(pageTitle, bodyText, cards) {
		result.Outcome = domain.OutcomeFailed
		result.Diagnostic = "blocked by anti-automation check"
		log.Printf("[BROWSER] Probe blocked on %s (page title: %q)", website, pageTitle)
		return result
	}

	titles := make([]string, len(cards))
	for i, card := range cards {
		titles[i] = card.Title
	}

	for _, brand := range brands {
		idx := p.matcher.BestCandidate(titles, productName, brand)
		if idx < 0 {
			continue
		}
		card := cards[idx]
		result.Candidates = append(result.Candidates, domain.Candidate{
			Brand:            brand,
			ProductTitle:     card.Title,
			RawOriginalPrice: card.OriginalPrice,
			RawSalePrice:     card.SalePrice,
			RawExtraDiscount: card.Discount,
			ListingURL:       card.URL,
		})
	}

	if len(result.Candidates) == 0 {
		result.Outcome = domain.OutcomeNotFound
		log.Printf("[BROWSER] No matching listing on %s (%d cards seen)", website, len(cards))
		return result
	}

	result.Outcome = domain.OutcomeFound
	log.Printf("[BROWSER] Found %d candidate(s) on %s", len(result.Candidates), website)
	return result
}

// extractCards opens an isolated tab, navigates to the search page, waits for
// content to settle and runs the extraction script. The tab lives only for
// the duration of the call and is cancelled with ctx.
func (p *Prober) extractCards(ctx context.Context, searchURL string) ([]listingCard, string, string, error) {
	tabCtx, cancelTab := chromedp.NewContext(p.allocCtx)
	defer cancelTab()

	// Tie the tab's lifetime to the probe context so a per-site timeout
	// tears the session down.
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var cards []listingCard
	var pageTitle string
	var bodyText string

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(p.settleDelay),
		chromedp.Title(&pageTitle),
		chromedp.Evaluate(`document.body ? document.body.innerText.slice(0, 2000) : ''`, &bodyText),
		chromedp.Evaluate(extractScript(p.cardLimit), &cards),
	)
	if err != nil {
		return nil, "", "", err
	}

	return cards, pageTitle, bodyText, nil
}

// extractScript builds the in-page extraction routine. Retail search pages
// vary wildly, so it tries common product-card selectors first and falls
// back to walking product links, mirroring how sale vs crossed-out pricing
// is usually marked up.
func extractScript(limit int) string {
	return fmt.Sprintf(`
		(function() {
			var limit = %d;
			var results = [];
			var priceRe = /(?:[A-Z]{0,3}[$€£R₹¥]|ZAR|USD|EUR)\s*[\d\s.,]*\d/;

			var cardSelectors = [
				'[data-component-type="s-search-result"]',
				'[data-ref="product-card"]',
				'[class*="product-card"]',
				'[class*="productCard"]',
				'[class*="product-item"]',
				'li[class*="product"]',
				'article[class*="product"]'
			];

			var cards = [];
			for (var si = 0; si < cardSelectors.length; si++) {
				cards = document.querySelectorAll(cardSelectors[si]);
				if (cards.length > 2) break;
			}

			function textOf(el) { return el ? (el.innerText || '').trim() : ''; }

			function firstPrice(text) {
				var m = text.match(priceRe);
				return m ? m[0].trim() : '';
			}

			function fromCard(card) {
				var titleEl = card.querySelector('h2, h3, [class*="title"], [class*="name"]') ||
				              card.querySelector('a');
				var title = textOf(titleEl).split('\n')[0];

				var linkEl = card.querySelector('a[href]');
				var url = linkEl ? linkEl.href : '';

				var struck = card.querySelector('del, s, strike, [class*="strike"], [class*="old-price"], [class*="was-price"], [class*="list-price"]');
				var original = firstPrice(textOf(struck));

				var saleEl = card.querySelector('[class*="price"]:not(del):not(s)');
				var sale = firstPrice(textOf(saleEl));
				if (!sale) sale = firstPrice(textOf(card));
				if (sale && sale === original) sale = '';

				var discount = '';
				var promoEl = card.querySelector('[class*="promo"], [class*="badge"], [class*="deal"], [class*="save"], [class*="coupon"], [class*="voucher"]');
				var promoText = textOf(promoEl);
				if (/save|off|discount|coupon|voucher|bundle|extra/i.test(promoText)) {
					discount = promoText.split('\n')[0];
				}

				return { title: title, salePrice: sale, originalPrice: original, discount: discount, url: url };
			}

			if (cards.length > 0) {
				var seen = {};
				for (var i = 0; i < cards.length && results.length < limit; i++) {
					var item = fromCard(cards[i]);
					if (!item.title || !item.url || seen[item.url]) continue;
					seen[item.url] = true;
					results.push(item);
				}
				return results;
			}

			// Fallback: walk anchors that look like product detail links
			var links = document.querySelectorAll('a[href*="/p/"], a[href*="/product"], a[href*="/dp/"], a[href*="PLID"]');
			var seenHref = {};
			for (var j = 0; j < links.length && results.length < limit; j++) {
				var link = links[j];
				if (!link.href || seenHref[link.href]) continue;
				seenHref[link.href] = true;

				var container = link.closest('li, article, div') || link;
				var text = textOf(container);
				var lines = text.split('\n').map(function(l) { return l.trim(); }).filter(Boolean);

				results.push({
					title: lines[0] || textOf(link).split('\n')[0],
					salePrice: firstPrice(text),
					originalPrice: '',
					discount: '',
					url: link.href
				});
			}
			return results;
		})()
	`, limit)
}

// classifyProbeError turns a chromedp/context failure into a short diagnostic.
// The context is consulted as well as the error because rate-limiter and
// chromedp failures caused by an expired deadline do not always wrap it.
func classifyProbeError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "probe timed out"
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return "probe cancelled"
	default:
		return "navigation error: " + err.Error()
	}
}

// looksBlocked checks for anti-automation interstitials. A page that resolves
// to zero cards with challenge text in its title or body is treated as a
// block rather than a genuine empty result.
func looksBlocked(pageTitle, bodyText string, cards []listingCard) bool {
	if len(cards) > 0 {
		return false
	}
	page := strings.ToLower(pageTitle) + "\n" + strings.ToLower(bodyText)
	for _, signal := range blockSignals {
		if strings.Contains(page, signal) {
			return true
		}
	}
	return false
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
