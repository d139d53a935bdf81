// Package countries maps destination display names to ISO 3166-1 alpha-2 codes.
package countries

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

//go:embed iso-codes.csv
var defaultCSV string

const (
	nameIndex = 0
	codeIndex = 1
)

// Lookup resolves display names to ISO codes. It is immutable once loaded.
type Lookup struct {
	nameToCode map[string]string
}

// Load builds a Lookup from "name,code" rows. Fields are trimmed, blank lines
// and lines starting with # are ignored, and later rows overwrite earlier rows
// with the same name. Rows that do not have exactly two non-empty fields are
// skipped and logged.
func Load(r io.Reader) (*Lookup, error) {
	l := &Lookup{
		nameToCode: make(map[string]string),
	}

	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1 // variable fields, checked per row
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("skipping unparseable iso code row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read iso codes: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) != 2 {
			slog.Warn("skipping malformed iso code row", "line", line, "fields", len(record))
			continue
		}

		name := normalizeName(record[nameIndex])
		code := strings.ToUpper(strings.TrimSpace(record[codeIndex]))
		if name == "" || code == "" {
			slog.Warn("skipping incomplete iso code row", "line", line)
			continue
		}

		l.nameToCode[name] = code
	}

	return l, nil
}

// LoadFile builds a Lookup from a CSV file on disk.
func LoadFile(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open iso codes: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default builds a Lookup from the dataset compiled into the binary.
func Default() (*Lookup, error) {
	return Load(strings.NewReader(defaultCSV))
}

// Resolve returns the ISO code for an exact display name. A missing name is
// reported through ok and is not an error.
func (l *Lookup) Resolve(name string) (code string, ok bool) {
	code, ok = l.nameToCode[normalizeName(name)]
	return code, ok
}

// Len returns the number of names known to the lookup.
func (l *Lookup) Len() int {
	return len(l.nameToCode)
}

// normalizeName trims a name and composes its accents so that "Côte" typed
// with a combining circumflex matches the precomposed form.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
