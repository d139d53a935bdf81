package advisory

import (
	"strings"
	"unicode"
)

type phrase struct {
	prefix string
	level  Level
}

// phrases are checked in order; the first prefix match wins, so the most
// severe phrase must come first.
var phrases = []phrase{
	{"Avoid all travel", AvoidAllTravel},
	{"Avoid non-essential travel", AvoidNonEssentialTravel},
	{"Exercise a high degree of caution", Caution},
	{"Take normal security precautions", Normal},
}

// Classify maps the text of a risk banner to an advisory level. Empty or
// unrecognised text yields Invalid.
func Classify(riskText string) Level {
	text := strings.TrimLeftFunc(riskText, unicode.IsSpace)
	if text == "" {
		return Invalid
	}

	for _, p := range phrases {
		if strings.HasPrefix(text, p.prefix) {
			return p.level
		}
	}

	return Invalid
}
