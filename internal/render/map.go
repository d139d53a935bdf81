// Package render draws the advisory result set as a color-coded world map.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strconv"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
)

//go:embed map.html.tmpl
var mapTemplate string

var tmpl = template.Must(template.New("map").Parse(mapTemplate))

var isoCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// row is one data row of the chart. Value is the level's integer, passed as
// template.JS so it is emitted verbatim and not as the level name.
type row struct {
	Code  string
	Value template.JS
}

// Map renders a self-contained geochart document with one row per entry, in
// ascending code order.
func Map(rs *advisory.ResultSet) (string, error) {
	entries := rs.Entries()

	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		if !isoCodePattern.MatchString(e.IsoCode) {
			return "", fmt.Errorf("invalid iso code %q for %s", e.IsoCode, e.DisplayName)
		}
		rows = append(rows, row{
			Code:  e.IsoCode,
			Value: template.JS(strconv.Itoa(int(e.Level))),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Rows []row }{rows}); err != nil {
		return "", fmt.Errorf("failed to render map: %w", err)
	}

	return buf.String(), nil
}
