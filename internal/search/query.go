package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Classes   []string // Filter by classification names (game, dlc, ...)
	Genres    []string // Filter by exact genre values
	Tags      []string // Filter by exact tag values
	Platforms []string // Filter by platform names

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"class", "genres", "tags"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         int64             `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Class      string            `json:"class,omitempty"`
	Developers []string          `json:"developers,omitempty"`
	Publishers []string          `json:"publishers,omitempty"`
	Genres     []string          `json:"genres,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Platforms  []string          `json:"platforms,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Classes   []FacetCount `json:"classes,omitempty"`
	Genres    []FacetCount `json:"genres,omitempty"`
	Tags      []FacetCount `json:"tags,omitempty"`
	Platforms []FacetCount `json:"platforms,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build the query
	searchQuery := buildSearchQuery(params)

	// Create search request
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Add sorting
	addSorting(searchRequest, params)

	// Add facets
	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	// Add highlighting
	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("developers")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"name", "class", "developers", "publishers", "genres", "tags", "platforms",
	}

	// Execute search
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	// Convert results
	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue // document ids are always decimal game ids
		}

		searchHit := SearchHit{
			ID:    id,
			Score: hit.Score,
		}

		// Extract stored fields
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if c, ok := hit.Fields["class"].(string); ok {
			searchHit.Class = c
		}
		searchHit.Developers = fieldStrings(hit.Fields, "developers")
		searchHit.Publishers = fieldStrings(hit.Fields, "publishers")
		searchHit.Genres = fieldStrings(hit.Fields, "genres")
		searchHit.Tags = fieldStrings(hit.Fields, "tags")
		searchHit.Platforms = fieldStrings(hit.Fields, "platforms")

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	// Extract facets
	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// fieldStrings reads a stored field that Bleve returns as either a bare
// string (single value) or a []interface{} (multiple values).
func fieldStrings(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query
	// Search strategy: the raw name field catches stemmed English matches,
	// the folded field catches accent-insensitive ones ("Pokemon" finds
	// "Pokémon"). Developer/publisher fields are deliberately not searched
	// here: a query for "Valve" should surface Valve's games via filters,
	// not drown out games actually named Valve-something.
	if params.Query != "" {
		folded := normalize.SearchTerm(params.Query)
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Diacritic-free match so accented and plain spellings meet
		foldedMatch := bleve.NewMatchQuery(folded)
		foldedMatch.SetField("name_folded")
		foldedMatch.SetBoost(2.0)
		textQueries = append(textQueries, foldedMatch)

		// Add fuzzy matching for typo tolerance
		fuzzyQuery := bleve.NewFuzzyQuery(folded)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name_folded")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(folded) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(folded)
			prefixQuery.SetField("name_folded")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Classification filter. Class terms are indexed in canonical
	// lowercase, so filter values are lowered to match.
	if len(params.Classes) > 0 {
		classQueries := make([]query.Query, len(params.Classes))
		for i, c := range params.Classes {
			cq := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(c)))
			cq.SetField("class")
			classQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(classQueries...))
	}

	// Genre filter (exact match, OR across values)
	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, g := range params.Genres {
			gq := bleve.NewTermQuery(g)
			gq.SetField("genres")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	// Tag filter (exact match, OR across values)
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tg := range params.Tags {
			tq := bleve.NewTermQuery(tg)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Platform filter. Platform names are canonical lowercase.
	if len(params.Platforms) > 0 {
		platformQueries := make([]query.Query, len(params.Platforms))
		for i, p := range params.Platforms {
			pq := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(p)))
			pq.SetField("platforms")
			platformQueries[i] = pq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(platformQueries...))
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params SearchParams) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if classFacet, ok := result.Facets["class"]; ok {
		for _, term := range classFacet.Terms.Terms() {
			facets.Classes = append(facets.Classes, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if genreFacet, ok := result.Facets["genres"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if tagFacet, ok := result.Facets["tags"]; ok {
		for _, term := range tagFacet.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if platformFacet, ok := result.Facets["platforms"]; ok {
		for _, term := range platformFacet.Terms.Terms() {
			facets.Platforms = append(facets.Platforms, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
