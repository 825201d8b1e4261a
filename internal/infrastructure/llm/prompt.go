package llm

import (
	"fmt"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// systemPrompt frames the reasoning backend as a price-comparison analyst.
// It receives the already-normalized comparison table, never raw page data,
// so the verdict is reproducible given the same table.
const systemPrompt = `You are a retail price-comparison analyst.
You receive a normalized comparison table: one row per (website, brand) pair,
with display prices, any extra discounts, and listing URLs. Rows whose sale
price reads "Not Found" carry no offer.

Your task: recommend the single best purchase in 2-4 sentences.
- Rank primarily by effective price (sale price minus any stated extra discount value).
- Brand preference order breaks ties: earlier-listed brands are preferred.
- Mention the winning website, brand and price explicitly.
- Call out caveats such as extra coupons, bundles or subscribe-and-save deals.
- Never invent listings, prices or URLs that are not in the table.
- If no row carries a usable price, say that no comparable price was found.

Respond with the recommendation text only, no preamble and no JSON.`

// buildUserPrompt renders the request and the comparison table as the user
// message for the reasoning call.
func buildUserPrompt(request *domain.SearchRequest, rows []domain.ComparisonRow) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Product: %s\n", request.ProductName)
	fmt.Fprintf(&sb, "Brand preference order: %s\n", strings.Join(request.Brands, ", "))
	fmt.Fprintf(&sb, "Website scan order: %s\n\n", strings.Join(request.Websites, ", "))

	sb.WriteString("Comparison table (website | brand | product | original | sale | extra discounts | comment):\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s | %s | %s | %s | %s | %s | %s\n",
			row.Website, row.Brand, row.Product,
			row.OriginalPrice, row.SalePrice, row.ExtraDiscounts, row.Comment)
	}

	return sb.String()
}
