package search

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

// catalogDocs is a small fixture set covering both classes and a name
// with a diacritic.
func catalogDocs() []*SearchDocument {
	return []*SearchDocument{
		{
			ID: "70", Name: "Half-Life", NameFolded: "half-life",
			Class: "game", Developers: []string{"Valve"}, Publishers: []string{"Valve"},
			Genres: []string{"Action"}, Tags: []string{"FPS", "Classic"},
			Platforms: []string{"windows", "linux"},
		},
		{
			ID: "220", Name: "Half-Life 2", NameFolded: "half-life 2",
			Class: "game", Developers: []string{"Valve"}, Publishers: []string{"Valve"},
			Genres: []string{"Action"}, Tags: []string{"FPS"},
			Platforms: []string{"windows", "macos", "linux"},
		},
		{
			ID: "413150", Name: "Stardew Valley", NameFolded: "stardew valley",
			Class: "game", Developers: []string{"ConcernedApe"}, Publishers: []string{"ConcernedApe"},
			Genres: []string{"Simulation", "RPG"}, Tags: []string{"Farming Sim"},
			Platforms: []string{"windows", "macos", "linux"},
		},
		{
			ID: "378648", Name: "The Witcher 3: Wild Hunt - Blood and Wine", NameFolded: "the witcher 3: wild hunt - blood and wine",
			Class: "dlc", Developers: []string{"CD PROJEKT RED"}, Publishers: []string{"CD PROJEKT RED"},
			Genres: []string{"RPG"},
			Platforms: []string{"windows"},
		},
		{
			ID: "587620", Name: "Ōkami HD", NameFolded: "okami hd",
			Class: "game", Developers: []string{"Capcom"}, Publishers: []string{"Capcom"},
			Genres: []string{"Adventure"}, Tags: []string{"Great Soundtrack"},
			Platforms: []string{"windows"},
		},
	}
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:         "70",
		Name:       "Half-Life",
		NameFolded: "half-life",
		Class:      "game",
		Developers: []string{"Valve"},
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{ID: "70", Name: "Half-Life", NameFolded: "half-life", Class: "game"}
	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("70")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query: "Half-Life",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
	for _, hit := range result.Hits {
		assert.Contains(t, []int64{70, 220}, hit.ID)
		assert.Equal(t, "game", hit.Class)
		assert.Equal(t, []string{"Valve"}, hit.Developers)
	}
}

func TestSearchIndex_Search_FoldedName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	// No macron in the query, macron in the stored name.
	result, err := index.Search(ctx, SearchParams{
		Query: "Okami",
		Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, int64(587620), result.Hits[0].ID)
	assert.Equal(t, "Ōkami HD", result.Hits[0].Name)
}

func TestSearchIndex_Search_Prefix(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	// Prefix of "Stardew"
	result, err := index.Search(ctx, SearchParams{
		Query: "Star",
		Limit: 10,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.Equal(t, int64(413150), result.Hits[0].ID)
}

func TestSearchIndex_Search_ClassFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	// Filter values are case-insensitive even though terms are stored
	// lowercase.
	result, err := index.Search(ctx, SearchParams{
		Query:   "",
		Classes: []string{"DLC"},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, int64(378648), result.Hits[0].ID)
	assert.Equal(t, "dlc", result.Hits[0].Class)
}

func TestSearchIndex_Search_GenreFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query:  "",
		Genres: []string{"Action"},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	// Filters AND across dimensions: RPG + dlc leaves only the expansion.
	result, err = index.Search(ctx, SearchParams{
		Query:   "",
		Genres:  []string{"RPG"},
		Classes: []string{"dlc"},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, int64(378648), result.Hits[0].ID)
}

func TestSearchIndex_Search_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query:         "",
		Limit:         10,
		IncludeFacets: true,
		FacetFields:   []string{"class", "genres"},
	})
	require.NoError(t, err)

	classCounts := map[string]int{}
	for _, fc := range result.Facets.Classes {
		classCounts[fc.Value] = fc.Count
	}
	assert.Equal(t, 4, classCounts["game"])
	assert.Equal(t, 1, classCounts["dlc"])

	genreCounts := map[string]int{}
	for _, fc := range result.Facets.Genres {
		genreCounts[fc.Value] = fc.Count
	}
	assert.Equal(t, 2, genreCounts["Action"])
	assert.Equal(t, 2, genreCounts["RPG"])
	assert.Equal(t, 1, genreCounts["Adventure"])
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	// Rebuild - should clear the index
	err = index.Rebuild()
	require.NoError(t, err)

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// Create index and add document
	index1, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	doc := &SearchDocument{ID: "70", Name: "Half-Life", NameFolded: "half-life", Class: "game"}
	err = index1.IndexDocument(doc)
	require.NoError(t, err)

	err = index1.Close()
	require.NoError(t, err)

	// Reopen index and verify document is still there
	index2, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ctx := context.Background()
	result, err := index2.Search(ctx, SearchParams{Query: "Half-Life", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearchIndex_MappingVersionTriggersRebuild(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-version-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	index1, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	doc := &SearchDocument{ID: "70", Name: "Half-Life", NameFolded: "half-life", Class: "game"}
	require.NoError(t, index1.IndexDocument(doc))
	require.NoError(t, index1.Close())

	// Simulate an index built with an older mapping.
	versionPath := filepath.Join(tmpDir, "search.version")
	require.NoError(t, os.WriteFile(versionPath, []byte("0"), 0644))

	index2, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count, "stale index must be dropped, not reused")

	version, err := os.ReadFile(versionPath)
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestGameToSearchDocument(t *testing.T) {
	game := &domain.Game{
		ID:         587620,
		Name:       "Ōkami HD",
		Class:      domain.ClassGame,
		Developers: []string{"Capcom"},
		Publishers: []string{"Capcom"},
		Genres:     []string{"Adventure"},
		Tags:       []string{"Great Soundtrack", "Zen"},
		Platforms:  domain.ParsePlatforms([]string{"windows"}),
	}

	doc := GameToSearchDocument(game)

	assert.Equal(t, "587620", doc.ID)
	assert.Equal(t, "Ōkami HD", doc.Name)
	assert.Equal(t, "okami hd", doc.NameFolded)
	assert.Equal(t, "game", doc.Class)
	assert.Equal(t, []string{"Capcom"}, doc.Developers)
	assert.Equal(t, []string{"Adventure"}, doc.Genres)
	assert.Equal(t, []string{"Great Soundtrack", "Zen"}, doc.Tags)
	assert.Equal(t, []string{"windows"}, doc.Platforms)
}

func TestSearchIndex_LargeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large batch test in short mode")
	}

	index, cleanup := setupTestIndex(t)
	defer cleanup()

	// 1000 documents to exercise chunking (batch size is 500)
	docs := make([]*SearchDocument, 1000)
	for i := 0; i < 1000; i++ {
		id := strconv.Itoa(i + 1)
		docs[i] = &SearchDocument{
			ID:         id,
			Name:       "Game " + id,
			NameFolded: "game " + id,
			Class:      "game",
		}
	}

	start := time.Now()
	err := index.IndexDocuments(docs)
	require.NoError(t, err)
	t.Logf("Indexed 1000 documents in %v", time.Since(start))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), count)
}
