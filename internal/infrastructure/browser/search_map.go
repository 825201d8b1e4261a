package browser

import (
	"fmt"
	"net/url"
	"strings"
)

// searchPatterns maps known retailer domains to their search-results URL
// pattern. %s receives the URL-escaped product query.
var searchPatterns = map[string]string{
	"amazon.co.za":  "https://www.amazon.co.za/s?k=%s",
	"amazon.com":    "https://www.amazon.com/s?k=%s",
	"takealot.com":  "https://www.takealot.com/all?q=%s",
	"makro.co.za":   "https://www.makro.co.za/search/?text=%s",
	"clicks.co.za":  "https://www.clicks.co.za/search?text=%s",
	"dischem.co.za": "https://www.dischem.co.za/catalogsearch/result/?q=%s",
	"pnp.co.za":     "https://www.pnp.co.za/pnpstorefront/pnp/en/search/?text=%s",
	"game.co.za":    "https://www.game.co.za/search/?text=%s",
	"checkers.co.za": "https://www.checkers.co.za/search?q=%s",
}

// SearchURL constructs the search-results URL for a website and product.
// Unknown retailers fall back to the common "/search?q=" convention.
func SearchURL(website, productName string) string {
	query := url.QueryEscape(productName)
	host := strings.ToLower(strings.TrimPrefix(website, "www."))

	if pattern, ok := searchPatterns[host]; ok {
		return fmt.Sprintf(pattern, query)
	}

	return fmt.Sprintf("https://%s/search?q=%s", host, query)
}
