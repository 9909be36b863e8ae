package domain

import (
	"fmt"
	"strings"
)

// Classification categorizes a catalog entry. Values are single bits so a
// set of classifications composes into a filter mask with bitwise OR.
// An entry holds exactly one bit; masks may hold any combination.
type Classification uint32

const (
	// ClassUnknown is the explicit "not yet classified" bit, not a zero
	// value. A freshly created entry carries it, and filters can match it
	// like any other classification.
	ClassUnknown Classification = 1 << iota
	ClassGame
	ClassDLC
	ClassDemo
	ClassApplication
	ClassTool
	ClassMedia
	ClassMusic
)

// ClassAll matches every classification.
const ClassAll = ClassUnknown | ClassGame | ClassDLC | ClassDemo |
	ClassApplication | ClassTool | ClassMedia | ClassMusic

//nolint:gochecknoglobals // Static name tables
var (
	classNames = map[Classification]string{
		ClassUnknown:     "unknown",
		ClassGame:        "game",
		ClassDLC:         "dlc",
		ClassDemo:        "demo",
		ClassApplication: "application",
		ClassTool:        "tool",
		ClassMedia:       "media",
		ClassMusic:       "music",
	}
	classValues = map[string]Classification{
		"unknown":     ClassUnknown,
		"game":        ClassGame,
		"dlc":         ClassDLC,
		"demo":        ClassDemo,
		"application": ClassApplication,
		"tool":        ClassTool,
		"media":       ClassMedia,
		"music":       ClassMusic,
	}
)

// ParseClassification maps a feed-supplied string onto a classification.
// Matching is case-insensitive. Returns (ClassUnknown, false) for strings
// outside the vocabulary so callers can log the occurrence and continue.
func ParseClassification(s string) (Classification, bool) {
	c, ok := classValues[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ClassUnknown, false
	}
	return c, true
}

// ParseClassMask builds a filter mask from a comma-separated list of
// classification names ("game,dlc"). An empty list means ClassAll.
// Unrecognized names are an error here, unlike single-value feed parsing:
// a filter with a typo should fail loudly rather than silently match nothing.
func ParseClassMask(s string) (Classification, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClassAll, nil
	}
	var mask Classification
	for _, part := range strings.Split(s, ",") {
		c, ok := ParseClassification(part)
		if !ok {
			return 0, fmt.Errorf("unknown classification %q", strings.TrimSpace(part))
		}
		mask |= c
	}
	return mask, nil
}

// Intersects reports whether any bit of c is present in mask.
func (c Classification) Intersects(mask Classification) bool {
	return c&mask != 0
}

// String returns the canonical name of a single classification, or a
// comma-separated list when multiple bits are set.
func (c Classification) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	var parts []string
	for bit := ClassUnknown; bit <= ClassMusic; bit <<= 1 {
		if c&bit != 0 {
			parts = append(parts, classNames[bit])
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the classification as its canonical name.
func (c Classification) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a classification name. Unrecognized names fall
// back to unknown rather than failing the document.
func (c *Classification) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = ClassUnknown
		return nil
	}
	var mask Classification
	for _, part := range strings.Split(s, ",") {
		if v, ok := ParseClassification(part); ok {
			mask |= v
		}
	}
	if mask == 0 {
		mask = ClassUnknown
	}
	*c = mask
	return nil
}
