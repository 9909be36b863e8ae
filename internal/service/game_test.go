package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// setupGameTest creates a game service backed by a temp badger store.
func setupGameTest(t *testing.T) (*GameService, *store.Store) {
	t.Helper()

	backend, err := store.OpenBadger(filepath.Join(t.TempDir(), "catalog"), nil)
	require.NoError(t, err)

	st, err := store.New(context.Background(), backend, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close() //nolint:errcheck // Test cleanup
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewGameService(st, logger), st
}

// seedGameCatalog loads fixtures through the import path so they can carry
// fields no feed delivers directly.
func seedGameCatalog(t *testing.T, st *store.Store, games ...*domain.Game) {
	t.Helper()

	snap := st.ExportSnapshot()
	for _, g := range games {
		snap.Games[g.ID] = g
	}
	_, err := st.ImportSnapshot(context.Background(), snap)
	require.NoError(t, err)
}

func listFixture() []*domain.Game {
	return []*domain.Game{
		{ID: 70, Name: "Half-Life", Class: domain.ClassGame},
		{ID: 220, Name: "Half-Life 2", Class: domain.ClassGame},
		{ID: 400, Name: "Portal", Class: domain.ClassGame},
		{ID: 378648, Name: "Blood and Wine", Class: domain.ClassDLC, ParentID: 292030},
		{ID: 587620, Name: "Ōkami HD", Class: domain.ClassGame},
	}
}

func TestGameService_ListGames(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st, listFixture()...)

	list := svc.ListGames(context.Background(), ListGamesParams{Mask: domain.ClassAll})

	assert.Equal(t, 5, list.Total)
	assert.Equal(t, DefaultListLimit, list.Limit)
	require.Len(t, list.Games, 5)

	// Ascending id order.
	assert.Equal(t, int64(70), list.Games[0].ID)
	assert.Equal(t, int64(587620), list.Games[4].ID)
}

func TestGameService_ListGames_Paging(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st, listFixture()...)
	ctx := context.Background()

	page := svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Limit: 2})
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Games, 2)
	assert.Equal(t, int64(70), page.Games[0].ID)
	assert.Equal(t, int64(220), page.Games[1].ID)

	page = svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Limit: 2, Offset: 2})
	require.Len(t, page.Games, 2)
	assert.Equal(t, int64(400), page.Games[0].ID)
	assert.Equal(t, int64(378648), page.Games[1].ID)

	// Offset past the end returns an empty page, not an error.
	page = svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Limit: 2, Offset: 10})
	assert.Equal(t, 5, page.Total)
	assert.Empty(t, page.Games)
}

func TestGameService_ListGames_ClassMask(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st, listFixture()...)

	list := svc.ListGames(context.Background(), ListGamesParams{Mask: domain.ClassDLC})

	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Games, 1)
	assert.Equal(t, int64(378648), list.Games[0].ID)
	assert.Equal(t, domain.ClassDLC, list.Games[0].Class)
}

func TestGameService_ListGames_NameFilter(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st, listFixture()...)
	ctx := context.Background()

	list := svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Name: "half-life"})
	assert.Equal(t, 2, list.Total)

	// Diacritics fold away on both sides of the comparison.
	list = svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Name: "okami"})
	require.Len(t, list.Games, 1)
	assert.Equal(t, "Ōkami HD", list.Games[0].Name)

	list = svc.ListGames(ctx, ListGamesParams{Mask: domain.ClassAll, Name: "no such game"})
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, list.Games)
}

func TestGameService_GetGame(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st, listFixture()...)
	ctx := context.Background()

	g, err := svc.GetGame(ctx, 400)
	require.NoError(t, err)
	assert.Equal(t, "Portal", g.Name)

	_, err = svc.GetGame(ctx, 99999)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGameService_GetResolvedGame(t *testing.T) {
	svc, st := setupGameTest(t)
	seedGameCatalog(t, st,
		&domain.Game{
			ID:         292030,
			Name:       "The Witcher 3: Wild Hunt",
			Class:      domain.ClassGame,
			Developers: []string{"CD PROJEKT RED"},
			Genres:     []string{"RPG"},
		},
		&domain.Game{
			ID:       378648,
			Name:     "Blood and Wine",
			Class:    domain.ClassDLC,
			ParentID: 292030,
		},
	)
	ctx := context.Background()

	// Depth 0 falls back to the store default, so the parent chain is
	// still walked.
	g, err := svc.GetResolvedGame(ctx, 378648, 0, false)
	require.NoError(t, err)

	assert.Equal(t, "Blood and Wine", g.Name)
	assert.Equal(t, domain.ClassDLC, g.Class)
	assert.Equal(t, []string{"CD PROJEKT RED"}, g.Developers)
	assert.Equal(t, []string{"RPG"}, g.Genres)
}
