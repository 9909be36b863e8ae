package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

func TestComputeTagScores(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "Slay the Spire")
	g1.Tags = []string{"Roguelike", "Deckbuilder"}
	g2 := domain.NewGame(2, "Hades")
	g2.Tags = []string{"Roguelike"}
	ts.seedGames(t, g1, g2)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[TagScoresResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	// Uniform weights, ascending by tag name.
	require.Len(t, envelope.Data.Scores, 2)
	assert.Equal(t, "Deckbuilder", envelope.Data.Scores[0].Tag)
	assert.Equal(t, 1.0, envelope.Data.Scores[0].Score)
	assert.Equal(t, "Roguelike", envelope.Data.Scores[1].Tag)
	assert.Equal(t, 2.0, envelope.Data.Scores[1].Score)
}

func TestComputeTagScores_WeightedAndSorted(t *testing.T) {
	ts := setupTestServer(t)

	g := domain.NewGame(1, "Factorio")
	g.Tags = []string{"Automation", "Base Building", "Sandbox"}
	ts.seedGames(t, g)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{
		"weight_factor": 3,
		"sort_by_score": true,
	})

	var envelope testEnvelope[TagScoresResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	// Contributions fall linearly from the factor at the first tag to 1
	// at the last.
	require.Len(t, envelope.Data.Scores, 3)
	assert.Equal(t, "Automation", envelope.Data.Scores[0].Tag)
	assert.Equal(t, 3.0, envelope.Data.Scores[0].Score)
	assert.Equal(t, "Base Building", envelope.Data.Scores[1].Tag)
	assert.Equal(t, 2.0, envelope.Data.Scores[1].Score)
	assert.Equal(t, "Sandbox", envelope.Data.Scores[2].Tag)
	assert.Equal(t, 1.0, envelope.Data.Scores[2].Score)
}

func TestComputeTagScores_FilterExcludesHidden(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "It Takes Two")
	g1.Tags = []string{"Co-op"}
	g2 := domain.NewGame(2, "Rocket League")
	g2.Tags = []string{"Competitive"}
	ts.seedGames(t, g1, g2)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{
		"filter": []map[string]any{
			{"id": 1},
			{"id": 2, "hidden": true},
		},
	})

	var envelope testEnvelope[TagScoresResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Scores, 1)
	assert.Equal(t, "Co-op", envelope.Data.Scores[0].Tag)
}

func TestComputeTagScores_ExcludeGenres(t *testing.T) {
	ts := setupTestServer(t)

	g := domain.NewGame(1, "Into the Breach")
	g.Genres = []string{"Strategy"}
	g.Tags = []string{"Strategy", "Deckbuilder"}
	ts.seedGames(t, g)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{
		"exclude_genres": true,
	})

	var envelope testEnvelope[TagScoresResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	// "Strategy" names a known genre and is dropped from the tag list.
	require.Len(t, envelope.Data.Scores, 1)
	assert.Equal(t, "Deckbuilder", envelope.Data.Scores[0].Tag)
}

func TestComputeTagScores_TagsPerGame(t *testing.T) {
	ts := setupTestServer(t)

	g := domain.NewGame(1, "Factorio")
	g.Tags = []string{"Automation", "Base Building", "Sandbox"}
	ts.seedGames(t, g)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{
		"tags_per_game": 2,
	})

	var envelope testEnvelope[TagScoresResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Scores, 2)
	assert.Equal(t, "Automation", envelope.Data.Scores[0].Tag)
	assert.Equal(t, "Base Building", envelope.Data.Scores[1].Tag)
}

func TestComputeTagScores_RejectsNegativeWeight(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/tags/scores", map[string]any{
		"weight_factor": -1,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestComputeDeveloperCounts(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "Half-Life")
	g1.Developers = []string{"Valve"}
	g2 := domain.NewGame(2, "Portal")
	g2.Developers = []string{"Valve"}
	g3 := domain.NewGame(3, "Psychonauts")
	g3.Developers = []string{"Double Fine"}
	ts.seedGames(t, g1, g2, g3)

	resp := ts.api.Post("/api/v1/developers/counts", map[string]any{})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[NameCountsResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Counts, 2)
	assert.Equal(t, "Valve", envelope.Data.Counts[0].Name)
	assert.Equal(t, 2, envelope.Data.Counts[0].Count)
	assert.Equal(t, "Double Fine", envelope.Data.Counts[1].Name)
	assert.Equal(t, 1, envelope.Data.Counts[1].Count)

	resp = ts.api.Post("/api/v1/developers/counts", map[string]any{
		"min_count": 2,
	})
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.Len(t, envelope.Data.Counts, 1)
	assert.Equal(t, "Valve", envelope.Data.Counts[0].Name)
}

func TestComputePublisherCounts(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "Outer Wilds")
	g1.Publishers = []string{"Annapurna Interactive"}
	g2 := domain.NewGame(2, "Stray")
	g2.Publishers = []string{"Annapurna Interactive"}
	g3 := domain.NewGame(3, "Untitled Goose Game")
	g3.Publishers = []string{"Panic"}
	ts.seedGames(t, g1, g2, g3)

	resp := ts.api.Post("/api/v1/publishers/counts", map[string]any{
		"filter": []map[string]any{{"id": 1}, {"id": 3}},
	})

	var envelope testEnvelope[NameCountsResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	// The filter narrows the tally to the listed working set.
	require.Len(t, envelope.Data.Counts, 2)
	assert.Equal(t, "Annapurna Interactive", envelope.Data.Counts[0].Name)
	assert.Equal(t, 1, envelope.Data.Counts[0].Count)
	assert.Equal(t, "Panic", envelope.Data.Counts[1].Name)
	assert.Equal(t, 1, envelope.Data.Counts[1].Count)
}
