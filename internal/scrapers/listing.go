package scrapers

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListingSelector identifies the country drop-down on the home page.
const ListingSelector = "#CountryDropDown1_ddlCountries"

// ErrListingNotFound is returned when the page has no country drop-down.
// Nothing downstream can run without it.
var ErrListingNotFound = errors.New("can't find list of countries")

// Country is a destination offered by the listing.
type Country struct {
	Name string // option text before the first comma
	Slug string // option value, the destination directory
}

// ExtractCountries reads the options of the country drop-down. Placeholder
// options with an empty value and countries named in skip are left out.
func ExtractCountries(doc *goquery.Document, skip map[string]bool) ([]Country, error) {
	list := doc.Find(ListingSelector).First()
	if list.Length() == 0 {
		return nil, ErrListingNotFound
	}

	var countries []Country
	list.ChildrenFiltered("option").Each(func(_ int, opt *goquery.Selection) {
		// An option without a value attribute takes its text as the value.
		value, ok := opt.Attr("value")
		if !ok {
			value = opt.Text()
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}

		name := displayName(opt.Text())
		if skip[name] {
			return
		}

		countries = append(countries, Country{
			Name: name,
			Slug: value,
		})
	})

	return countries, nil
}

// displayName keeps the text before the first comma, so "Bahamas, The"
// becomes "Bahamas".
func displayName(text string) string {
	name, _, _ := strings.Cut(text, ",")
	return strings.TrimSpace(name)
}
