package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatforms(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  Platforms
	}{
		{"single", []string{"windows"}, PlatformWindows},
		{"all three", []string{"windows", "mac", "linux"}, PlatformAll},
		{"case insensitive", []string{"Windows", "MAC"}, PlatformWindows | PlatformMac},
		{"aliases", []string{"win", "macos", "osx"}, PlatformWindows | PlatformMac},
		{"unknown skipped", []string{"windows", "amiga"}, PlatformWindows},
		{"empty", nil, PlatformNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlatforms(tt.input))
		})
	}
}

func TestPlatforms_Has(t *testing.T) {
	p := PlatformWindows | PlatformLinux

	assert.True(t, p.Has(PlatformWindows))
	assert.True(t, p.Has(PlatformLinux))
	assert.True(t, p.Has(PlatformWindows|PlatformLinux))
	assert.False(t, p.Has(PlatformMac))
	assert.False(t, p.Has(PlatformAll))
}

func TestPlatforms_Names(t *testing.T) {
	assert.Equal(t, []string{"windows", "mac", "linux"}, PlatformAll.Names())
	assert.Equal(t, []string{"mac"}, PlatformMac.Names())
	assert.Nil(t, PlatformNone.Names())
}

func TestPlatforms_String(t *testing.T) {
	assert.Equal(t, "none", PlatformNone.String())
	assert.Equal(t, "windows,linux", (PlatformWindows | PlatformLinux).String())
}

func TestPlatforms_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    Platforms
		json string
	}{
		{"none", PlatformNone, `[]`},
		{"windows", PlatformWindows, `["windows"]`},
		{"all", PlatformAll, `["windows","mac","linux"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(data))

			var decoded Platforms
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.p, decoded)
		})
	}
}
