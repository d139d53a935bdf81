package scrapers

import "github.com/PuerkitoBio/goquery"

// RiskBannerPath leads from a destination page to the element holding the
// advisory phrase.
var RiskBannerPath = Path{"#riskLevelBanner", "div", "div", "a", "div"}

// ExtractRiskText returns the advisory phrase of a destination page, or
// ok=false when any element along RiskBannerPath is missing.
func ExtractRiskText(doc *goquery.Document) (text string, ok bool) {
	return RiskBannerPath.Text(doc.Selection)
}
