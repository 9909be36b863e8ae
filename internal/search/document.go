// Package search provides full-text catalog search using Bleve. Games are
// indexed by name (raw and a diacritic-free folded form so accented and
// unaccented spellings match), developers, publishers, genres, and tags.
package search

import (
	"strconv"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
)

// SearchDocument is the document structure for the Bleve index, one per
// catalog entry. List fields carry the entry's own values; hierarchical
// fallback is a read-time concern and deliberately not baked into the
// index, so a parent edit never forces reindexing its children.
type SearchDocument struct {
	// Identity
	ID   string `json:"id"` // Decimal game id
	Name string `json:"name"`

	// NameFolded is the lowercase diacritic-free form of Name, queried
	// alongside the raw name so "Pokemon" matches "Pokémon".
	NameFolded string `json:"name_folded"`

	// Class is the classification name, filterable and facetable.
	Class string `json:"class"`

	Developers []string `json:"developers,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
}

// DocumentID returns the index key for a game id.
func DocumentID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GameToSearchDocument converts a catalog entry to its index document.
func GameToSearchDocument(g *domain.Game) *SearchDocument {
	return &SearchDocument{
		ID:         DocumentID(g.ID),
		Name:       g.Name,
		NameFolded: normalize.SearchTerm(g.Name),
		Class:      g.Class.String(),
		Developers: g.Developers,
		Publishers: g.Publishers,
		Genres:     g.Genres,
		Tags:       g.Tags,
		Platforms:  g.Platforms.Names(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but the
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"name_folded": d.NameFolded,
		"class":       d.Class,
	}

	// Optional fields - only add if non-empty
	if len(d.Developers) > 0 {
		m["developers"] = d.Developers
	}
	if len(d.Publishers) > 0 {
		m["publishers"] = d.Publishers
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.Platforms) > 0 {
		m["platforms"] = d.Platforms
	}

	return m
}
