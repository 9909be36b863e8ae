package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on game names with English stemming
//  2. A folded name field so accented and unaccented spellings match
//  3. Exact keyword matching for classification, genre, and tag filters
//  4. Stored list fields so results render without a store lookup
func buildIndexMapping() mapping.IndexMapping {
	// Create the index mapping
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Create document mapping
	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Folded name - already lowercased and diacritic-free, so the simple
	// analyzer is enough; stemming it again would distort the terms
	foldedFieldMapping := bleve.NewTextFieldMapping()
	foldedFieldMapping.Analyzer = simple.Name
	foldedFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("name_folded", foldedFieldMapping)

	// Developers - proper nouns, simple analyzer (no stemming)
	developersFieldMapping := bleve.NewTextFieldMapping()
	developersFieldMapping.Analyzer = simple.Name
	developersFieldMapping.Store = true
	developersFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("developers", developersFieldMapping)

	// Publishers - proper nouns, simple analyzer (no stemming)
	publishersFieldMapping := bleve.NewTextFieldMapping()
	publishersFieldMapping.Analyzer = simple.Name
	publishersFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("publishers", publishersFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Classification - for filtering by entry type
	classFieldMapping := bleve.NewTextFieldMapping()
	classFieldMapping.Analyzer = keyword.Name
	classFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("class", classFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Genres - keyword analyzer keeps multi-word genres intact
	// (e.g., "Free To Play")
	genresFieldMapping := bleve.NewTextFieldMapping()
	genresFieldMapping.Analyzer = keyword.Name
	genresFieldMapping.Store = true
	genresFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("genres", genresFieldMapping)

	// Tags - community-applied content descriptors
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Platforms - small fixed vocabulary, exact match
	platformsFieldMapping := bleve.NewTextFieldMapping()
	platformsFieldMapping.Analyzer = keyword.Name
	platformsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("platforms", platformsFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
