package domain

import (
	"encoding/json/v2"
	"strings"
)

// Platforms is the set of platforms an entry runs on, as a bitset.
type Platforms uint8

const (
	PlatformWindows Platforms = 1 << iota
	PlatformMac
	PlatformLinux
)

// PlatformNone is the empty set, the state of an entry no feed has
// reported platforms for yet.
const PlatformNone Platforms = 0

// PlatformAll is every known platform.
const PlatformAll = PlatformWindows | PlatformMac | PlatformLinux

//nolint:gochecknoglobals // Static name tables
var (
	platformNames = []struct {
		bit  Platforms
		name string
	}{
		{PlatformWindows, "windows"},
		{PlatformMac, "mac"},
		{PlatformLinux, "linux"},
	}
	platformValues = map[string]Platforms{
		"windows": PlatformWindows,
		"win":     PlatformWindows,
		"mac":     PlatformMac,
		"macos":   PlatformMac,
		"osx":     PlatformMac,
		"linux":   PlatformLinux,
	}
)

// ParsePlatforms builds a bitset from feed-supplied platform names.
// Matching is case-insensitive; unrecognized names are skipped.
func ParsePlatforms(names []string) Platforms {
	var p Platforms
	for _, n := range names {
		if bit, ok := platformValues[strings.ToLower(strings.TrimSpace(n))]; ok {
			p |= bit
		}
	}
	return p
}

// Has reports whether every bit in q is present.
func (p Platforms) Has(q Platforms) bool {
	return p&q == q
}

// IsNone reports whether the set is empty.
func (p Platforms) IsNone() bool {
	return p == PlatformNone
}

// Names returns the canonical platform names in fixed order.
func (p Platforms) Names() []string {
	var out []string
	for _, pn := range platformNames {
		if p&pn.bit != 0 {
			out = append(out, pn.name)
		}
	}
	return out
}

// String returns the comma-joined canonical names, or "none".
func (p Platforms) String() string {
	names := p.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// MarshalJSON encodes the bitset as an array of platform names.
func (p Platforms) MarshalJSON() ([]byte, error) {
	names := p.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes an array of platform names, skipping any it does
// not recognize.
func (p *Platforms) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*p = ParsePlatforms(names)
	return nil
}
