package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

func TestGetAggregate_ScalarSlot(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "Counter-Strike")
	g1.Developers = []string{"Valve"}
	g2 := domain.NewGame(2, "Counter-Strike: Global Offensive")
	g2.Developers = []string{"Hidden Path Entertainment", "Valve"}
	ts.seedGames(t, g1, g2)

	resp := ts.api.Get("/api/v1/aggregates/developers")

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AggregateResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, "developers", envelope.Data.Slot)
	// Deduplicated case-insensitively and sorted.
	assert.Equal(t, []string{"Hidden Path Entertainment", "Valve"}, envelope.Data.Values)
	assert.Empty(t, envelope.Data.Sets)
}

func TestGetAggregate_TripleSlot(t *testing.T) {
	ts := setupTestServer(t)

	g1 := domain.NewGame(1, "Half-Life: Alyx")
	g1.Languages = domain.LanguageSupport{
		Interface: []string{"English", "German"},
		Subtitles: []string{"English"},
		FullAudio: []string{"English"},
	}
	g2 := domain.NewGame(2, "Budget Cuts")
	g2.Languages = domain.LanguageSupport{
		Interface: []string{"French"},
	}
	ts.seedGames(t, g1, g2)

	resp := ts.api.Get("/api/v1/aggregates/languages")

	var envelope testEnvelope[AggregateResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, "languages", envelope.Data.Slot)
	assert.Empty(t, envelope.Data.Values)
	assert.Equal(t, []string{"English", "French", "German"}, envelope.Data.Sets["interface"])
	assert.Equal(t, []string{"English"}, envelope.Data.Sets["subtitles"])
	assert.Equal(t, []string{"English"}, envelope.Data.Sets["full_audio"])
}

func TestGetAggregate_UnknownSlot(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/aggregates/bogus")

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "VALIDATION", envelope["code"])
}

func TestRefreshAggregate_RecomputesStaleSlot(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/feeds/scrape", map[string]any{
		"records": []map[string]any{
			{"id": 1, "name": "First", "developers": []string{"Valve"}},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/aggregates/developers")

	var envelope testEnvelope[AggregateResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Valve"}, envelope.Data.Values)

	resp = ts.api.Post("/api/v1/feeds/scrape", map[string]any{
		"records": []map[string]any{
			{"id": 2, "name": "Second", "developers": []string{"id Software"}},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// Feed merges do not invalidate computed slots, so the cached value
	// keeps serving until someone forces a recompute.
	resp = ts.api.Get("/api/v1/aggregates/developers")
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Valve"}, envelope.Data.Values)

	resp = ts.api.Post("/api/v1/aggregates/developers/refresh")
	assert.Equal(t, http.StatusOK, resp.Code)
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, []string{"id Software", "Valve"}, envelope.Data.Values)

	// The recomputed slot sticks.
	resp = ts.api.Get("/api/v1/aggregates/developers")
	err = json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, []string{"id Software", "Valve"}, envelope.Data.Values)
}
