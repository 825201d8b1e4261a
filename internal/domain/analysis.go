package domain

// ProbeOutcome classifies the result of a single site probe
type ProbeOutcome string

const (
	// OutcomeFound means at least one listing matched the request
	OutcomeFound ProbeOutcome = "Found"
	// OutcomeNotFound means the site was reachable but had no matching listing
	OutcomeNotFound ProbeOutcome = "NotFound"
	// OutcomeFailed means the probe itself failed (timeout, block, navigation error)
	OutcomeFailed ProbeOutcome = "Failed"
)

// Display placeholders used in ComparisonRow price fields
const (
	// SalePriceNotFound marks a (website, brand) pair with no extracted price
	SalePriceNotFound = "Not Found"
	// NoOriginalPrice marks a listing without a crossed-out/standard price
	NoOriginalPrice = "-"
	// NoExtraDiscount is the literal a site shows when no extra deal applies
	NoExtraDiscount = "None"
)

// SearchRequest is the canonicalized input for one analysis run.
// Brands and Websites are de-duplicated and non-empty; order is preserved
// because it carries meaning (brand preference and website scan priority).
type SearchRequest struct {
	ProductName string   `json:"productName" binding:"required"`
	Brands      []string `json:"brands"`
	Websites    []string `json:"websites"`
}

// Candidate holds the raw signals extracted from one product listing,
// prior to any normalization. All fields are opaque page text.
type Candidate struct {
	Brand            string `json:"brand"`
	ProductTitle     string `json:"productTitle"`
	RawOriginalPrice string `json:"rawOriginalPrice"`
	RawSalePrice     string `json:"rawSalePrice"`
	RawExtraDiscount string `json:"rawExtraDiscount"`
	ListingURL       string `json:"listingUrl"`
}

// SiteProbeResult is the immutable evidence one probe hands back across the
// fan-in point. Candidates holds at most one listing per requested brand.
type SiteProbeResult struct {
	Website    string       `json:"website"`
	Outcome    ProbeOutcome `json:"outcome"`
	Candidates []Candidate  `json:"candidates,omitempty"`
	Diagnostic string       `json:"diagnostic,omitempty"`
}

// ComparisonRow is one user-facing cell of the comparison matrix.
// Price fields are always display strings ("R1,299.00", "Not Found", "-");
// SalePriceValue is the best-effort numeric used only for ranking and is
// nil when no numeric token could be extracted.
type ComparisonRow struct {
	Website        string   `json:"website"`
	Brand          string   `json:"brand"`
	Product        string   `json:"product"`
	OriginalPrice  string   `json:"originalPrice"`
	SalePrice      string   `json:"salePrice"`
	ExtraDiscounts string   `json:"extraDiscounts"`
	ProductURL     string   `json:"productUrl"`
	Comment        string   `json:"comment"`
	SalePriceValue *float64 `json:"-"`
}

// Ranked reports whether the row carries a usable numeric sale price.
func (r *ComparisonRow) Ranked() bool {
	return r.SalePriceValue != nil
}

// AnalysisResult is the final response: one row per (website, brand) pair in
// the request's cross-product, plus a single natural-language recommendation.
type AnalysisResult struct {
	ComparisonTable   []ComparisonRow `json:"comparisonTable"`
	TopRecommendation string          `json:"topRecommendation"`
}
