package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

func TestParseSlot(t *testing.T) {
	for _, slot := range store.Slots {
		got, err := store.ParseSlot(string(slot))
		require.NoError(t, err)
		assert.Equal(t, slot, got)
	}

	_, err := store.ParseSlot("achievements")
	var appErr *errors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code.HTTPStatus())
}

func TestStore_Aggregates_UnionAndFold(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Genres = []string{"indie", "Action", "ACTION"}
	a.Developers = []string{"Valve"}

	b := domain.NewGame(570, "Dota 2")
	b.Genres = []string{"Strategy"}
	b.Developers = []string{"Valve"}

	seedStore(t, s, a, b)

	// Case-folded dedup with the first-seen casing, sorted per fold key.
	assert.Equal(t, []string{"Action", "indie", "Strategy"}, s.Genres())
	assert.Equal(t, []string{"Valve"}, s.Developers())
}

func TestStore_Aggregates_SkipEmptyNames(t *testing.T) {
	s, _ := newTestStore(t)

	g := domain.NewGame(220, "Half-Life 2")
	g.Flags = []string{"", "Single-player"}
	seedStore(t, s, g)

	assert.Equal(t, []string{"Single-player"}, s.Flags())
}

func TestStore_Aggregates_TripleSlots(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Languages = domain.LanguageSupport{
		Interface: []string{"English", "german"},
		FullAudio: []string{"English"},
	}
	a.VR = domain.VRSupport{Headsets: []string{"Valve Index"}}

	b := domain.NewGame(570, "Dota 2")
	b.Languages = domain.LanguageSupport{
		Interface: []string{"German", "Polish"},
		Subtitles: []string{"Polish"},
	}
	b.VR = domain.VRSupport{Input: []string{"Tracked Controllers"}}

	seedStore(t, s, a, b)

	langs := s.LanguageAggregate()
	assert.Len(t, langs.Interface, 3)
	assert.Contains(t, langs.Interface, "English")
	assert.Contains(t, langs.Interface, "Polish")
	assert.Equal(t, []string{"Polish"}, langs.Subtitles)
	assert.Equal(t, []string{"English"}, langs.FullAudio)

	vr := s.VRAggregate()
	assert.Equal(t, []string{"Valve Index"}, vr.Headsets)
	assert.Equal(t, []string{"Tracked Controllers"}, vr.Input)
	assert.Empty(t, vr.PlayArea)
}

func TestStore_Aggregates_StaleUntilRefreshed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	g := domain.NewGame(220, "Half-Life 2")
	g.Genres = []string{"Action"}
	seedStore(t, s, g)

	assert.Equal(t, []string{"Action"}, s.Genres())

	// Feed merges leave computed aggregates untouched.
	s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{{
		ID:     620,
		Name:   "Portal 2",
		Genres: []string{"Puzzle"},
	}}, 1710000000)

	assert.Equal(t, []string{"Action"}, s.Genres(), "merge must not recompute the aggregate")

	res, err := s.RefreshAggregate(store.SlotGenres)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Puzzle"}, res.Values)
	assert.Equal(t, []string{"Action", "Puzzle"}, s.Genres())
}

func TestStore_InvalidateAggregate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	g := domain.NewGame(220, "Half-Life 2")
	g.Genres = []string{"Action"}
	g.Flags = []string{"Single-player"}
	seedStore(t, s, g)

	assert.Equal(t, []string{"Action"}, s.Genres())
	assert.Equal(t, []string{"Single-player"}, s.Flags())

	s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{{
		ID:     220,
		Name:   "Half-Life 2",
		Genres: []string{"Action", "Shooter"},
		Flags:  []string{"Single-player", "Steam Cloud"},
	}}, 1710000000)

	// Invalidation is per slot; the flags slot stays stale.
	require.NoError(t, s.InvalidateAggregate(store.SlotGenres))
	assert.Equal(t, []string{"Action", "Shooter"}, s.Genres())
	assert.Equal(t, []string{"Single-player"}, s.Flags())

	s.InvalidateAggregates()
	assert.Equal(t, []string{"Single-player", "Steam Cloud"}, s.Flags())
}

func TestStore_Aggregate_ResultShapes(t *testing.T) {
	s, _ := newTestStore(t)

	g := domain.NewGame(220, "Half-Life 2")
	g.Developers = []string{"Valve"}
	g.Languages = domain.LanguageSupport{Interface: []string{"English"}}
	g.VR = domain.VRSupport{Headsets: []string{"Valve Index"}}
	seedStore(t, s, g)

	scalar, err := s.Aggregate(store.SlotDevelopers)
	require.NoError(t, err)
	assert.Equal(t, store.SlotDevelopers, scalar.Slot)
	assert.Equal(t, []string{"Valve"}, scalar.Values)
	assert.Nil(t, scalar.Sets)

	langs, err := s.Aggregate(store.SlotLanguages)
	require.NoError(t, err)
	assert.Nil(t, langs.Values)
	assert.Equal(t, []string{"English"}, langs.Sets["interface"])
	assert.Contains(t, langs.Sets, "subtitles")
	assert.Contains(t, langs.Sets, "full_audio")

	vr, err := s.Aggregate(store.SlotVR)
	require.NoError(t, err)
	assert.Equal(t, []string{"Valve Index"}, vr.Sets["headsets"])
	assert.Contains(t, vr.Sets, "input")
	assert.Contains(t, vr.Sets, "play_area")
}
