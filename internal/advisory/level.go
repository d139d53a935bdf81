// Package advisory holds the travel advisory data model: the ordinal advisory
// levels, the entries produced for each country, and the classifier that maps
// the text of a destination's risk banner onto a level.
package advisory

import (
	"fmt"
	"strings"
)

// Level is an ordinal advisory level. Higher values are more severe and the
// integer value is what gets embedded in the rendered map.
type Level int

const (
	Invalid Level = iota
	Normal
	Caution
	AvoidNonEssentialTravel
	AvoidAllTravel
)

var levelNames = map[Level]string{
	Invalid:                 "Invalid",
	Normal:                  "Normal",
	Caution:                 "Caution",
	AvoidNonEssentialTravel: "AvoidNonEssentialTravel",
	AvoidAllTravel:          "AvoidAllTravel",
}

// String returns the level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the four real advisory levels.
func (l Level) Valid() bool {
	return l >= Normal && l <= AvoidAllTravel
}

// ParseLevel accepts either a level name (case-insensitive) or its integer value.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for level, name := range levelNames {
		if strings.EqualFold(name, s) || fmt.Sprint(int(level)) == s {
			return level, nil
		}
	}
	return Invalid, fmt.Errorf("unknown advisory level %q", s)
}

// UnmarshalYAML lets config files name levels ("Caution") or give their value (2).
func (l *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseLevel(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
