package scrapers

import "github.com/PuerkitoBio/goquery"

// Path is a chain of CSS selectors evaluated left to right. Each step selects
// the first match beneath the previous step, the same way querySelector does.
type Path []string

// Find walks the path from root. It stops at the first step that matches
// nothing and reports ok=false.
func (p Path) Find(root *goquery.Selection) (sel *goquery.Selection, ok bool) {
	sel = root
	for _, step := range p {
		sel = sel.Find(step).First()
		if sel.Length() == 0 {
			return nil, false
		}
	}
	return sel, true
}

// Text returns the text content of the element at the end of the path.
func (p Path) Text(root *goquery.Selection) (string, bool) {
	sel, ok := p.Find(root)
	if !ok {
		return "", false
	}
	return sel.Text(), true
}
