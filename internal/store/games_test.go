package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

func TestStore_UpsertFromCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("creates absent game", func(t *testing.T) {
		s, _ := newTestStore(t)

		created, err := s.UpsertFromCatalog(ctx, 570, "Dota 2")
		require.NoError(t, err)
		assert.True(t, created)

		g, err := s.GetGame(570)
		require.NoError(t, err)
		assert.Equal(t, "Dota 2", g.Name)
		assert.Equal(t, domain.ClassUnknown, g.Class)
		assert.Equal(t, domain.ScrapeNever, g.LastStoreScrape)
	})

	t.Run("same name is untouched", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(570, "Dota 2")
		fixture.Class = domain.ClassGame
		seedStore(t, s, fixture)

		created, err := s.UpsertFromCatalog(ctx, 570, "Dota 2")
		require.NoError(t, err)
		assert.False(t, created)

		g, err := s.GetGame(570)
		require.NoError(t, err)
		assert.Equal(t, domain.ClassGame, g.Class, "matching name must not reset classification")
	})

	t.Run("renamed game resets classification", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(570, "Dota 2 Beta")
		fixture.Class = domain.ClassGame
		seedStore(t, s, fixture)

		created, err := s.UpsertFromCatalog(ctx, 570, "Dota 2")
		require.NoError(t, err)
		assert.False(t, created)

		g, err := s.GetGame(570)
		require.NoError(t, err)
		assert.Equal(t, "Dota 2", g.Name)
		assert.Equal(t, domain.ClassUnknown, g.Class, "renamed listing is no longer the classified one")
	})

	t.Run("empty stored name is overwritten", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(570, "")
		fixture.Class = domain.ClassGame
		seedStore(t, s, fixture)

		_, err := s.UpsertFromCatalog(ctx, 570, "Dota 2")
		require.NoError(t, err)

		g, err := s.GetGame(570)
		require.NoError(t, err)
		assert.Equal(t, "Dota 2", g.Name)
		assert.Equal(t, domain.ClassUnknown, g.Class)
	})

	t.Run("rejects non-positive id", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.UpsertFromCatalog(ctx, 0, "Nothing")
		var appErr *errors.Error
		require.ErrorAs(t, err, &appErr)
	})
}

func TestStore_ApplyCatalog(t *testing.T) {
	backend := &memoryBackend{}
	emitter := &captureEmitter{}
	s, err := store.New(context.Background(), backend, nil, emitter)
	require.NoError(t, err)

	_, err = s.UpsertFromCatalog(context.Background(), 220, "Half-Life 2")
	require.NoError(t, err)

	entries := []domain.CatalogEntry{
		{ID: 220, Name: "Half-Life 2"},
		{ID: 440, Name: "Team Fortress 2"},
		{ID: 0, Name: "Broken Row"},
		{ID: 620, Name: "Portal 2"},
	}

	processed, created := s.ApplyCatalog(context.Background(), entries)
	assert.Equal(t, 3, processed, "invalid rows are skipped, not counted")
	assert.Equal(t, 2, created)
	assert.Equal(t, 3, s.Count())
	assert.Contains(t, emitter.types(), sse.EventCatalogApplied)
}

func TestStore_MergeCacheRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("creates absent game with record fields", func(t *testing.T) {
		s, _ := newTestStore(t)

		processed := s.MergeCacheRecords(ctx, []domain.CacheRecord{{
			ID:             230410,
			Name:           "Warframe",
			Classification: "game",
			Platforms:      []string{"windows"},
			ParentID:       0,
		}}, 1700000000)
		assert.Equal(t, 1, processed)

		g, err := s.GetGame(230410)
		require.NoError(t, err)
		assert.Equal(t, "Warframe", g.Name)
		assert.Equal(t, domain.ClassGame, g.Class)
		assert.Equal(t, domain.PlatformWindows, g.Platforms)
		assert.Equal(t, int64(1700000000), g.LastCacheUpdate)
	})

	t.Run("cache timestamp is stamped unconditionally", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(220, "Half-Life 2")
		fixture.LastCacheUpdate = 1600000000
		seedStore(t, s, fixture)

		s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 220}}, 1700000000)

		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), g.LastCacheUpdate)
	})

	t.Run("classification rules", func(t *testing.T) {
		tests := []struct {
			name     string
			existing domain.Classification
			incoming string
			want     domain.Classification
		}{
			{"known value overwrites", domain.ClassGame, "dlc", domain.ClassDLC},
			{"unknown value keeps existing", domain.ClassGame, "unknown", domain.ClassGame},
			{"unparseable value keeps existing", domain.ClassDLC, "floob", domain.ClassDLC},
			{"empty value keeps existing", domain.ClassTool, "", domain.ClassTool},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, _ := newTestStore(t)

				fixture := domain.NewGame(42, "Fixture")
				fixture.Class = tt.existing
				seedStore(t, s, fixture)

				s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 42, Classification: tt.incoming}}, 1)

				g, err := s.GetGame(42)
				require.NoError(t, err)
				assert.Equal(t, tt.want, g.Class)
			})
		}
	})

	t.Run("empty name keeps existing", func(t *testing.T) {
		s, _ := newTestStore(t)
		seedStore(t, s, domain.NewGame(220, "Half-Life 2"))

		s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 220}}, 1)

		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, "Half-Life 2", g.Name)
	})

	t.Run("platform rules", func(t *testing.T) {
		tests := []struct {
			name            string
			existing        domain.Platforms
			lastStoreScrape int64
			incoming        []string
			want            domain.Platforms
		}{
			{
				name:     "fills empty platforms",
				existing: domain.PlatformNone,
				incoming: []string{"windows", "linux"},
				want:     domain.PlatformWindows | domain.PlatformLinux,
			},
			{
				name:            "overwrites when never store-scraped",
				existing:        domain.PlatformWindows,
				lastStoreScrape: domain.ScrapeNever,
				incoming:        []string{"mac"},
				want:            domain.PlatformMac,
			},
			{
				name:            "never overrides store-scraped platforms",
				existing:        domain.PlatformWindows,
				lastStoreScrape: 1650000000,
				incoming:        []string{"mac"},
				want:            domain.PlatformWindows,
			},
			{
				name:            "empty incoming keeps store-scraped platforms",
				existing:        domain.PlatformLinux,
				lastStoreScrape: 1650000000,
				incoming:        nil,
				want:            domain.PlatformLinux,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, _ := newTestStore(t)

				fixture := domain.NewGame(42, "Fixture")
				fixture.Platforms = tt.existing
				fixture.LastStoreScrape = tt.lastStoreScrape
				seedStore(t, s, fixture)

				s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 42, Platforms: tt.incoming}}, 1)

				g, err := s.GetGame(42)
				require.NoError(t, err)
				assert.Equal(t, tt.want, g.Platforms)
			})
		}
	})

	t.Run("parent id only overwritten when positive", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(323140, "Lost Coast Commentary")
		fixture.ParentID = 340
		seedStore(t, s, fixture)

		s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 323140, ParentID: 0}}, 1)
		g, err := s.GetGame(323140)
		require.NoError(t, err)
		assert.Equal(t, int64(340), g.ParentID)

		s.MergeCacheRecords(ctx, []domain.CacheRecord{{ID: 323140, ParentID: 220}}, 2)
		g, err = s.GetGame(323140)
		require.NoError(t, err)
		assert.Equal(t, int64(220), g.ParentID)
	})

	t.Run("malformed records are skipped", func(t *testing.T) {
		s, _ := newTestStore(t)

		processed := s.MergeCacheRecords(ctx, []domain.CacheRecord{
			{ID: -5, Name: "Junk"},
			{ID: 620, Name: "Portal 2"},
		}, 1)
		assert.Equal(t, 1, processed)
		assert.Equal(t, 1, s.Count())
	})
}

func TestStore_MergeScrapeRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces scraped fields wholesale", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(220, "Half-Life 2")
		fixture.Genres = []string{"Shooter"}
		fixture.Tags = []string{"Classic"}
		fixture.Flags = []string{"Single-player"}
		fixture.Completion = domain.CompletionTimes{Main: 780}
		fixture.LastCacheUpdate = 1600000000
		seedStore(t, s, fixture)

		processed := s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{{
			ID:             220,
			Name:           "Half-Life 2",
			Classification: "game",
			Platforms:      []string{"windows", "mac", "linux"},
			Developers:     []string{"Valve"},
			Publishers:     []string{"Valve"},
			Genres:         []string{"Action"},
			Tags:           []string{"FPS", "Story Rich"},
			Languages:      domain.LanguageSupport{Interface: []string{"English", "German"}},
			ReleaseDate:    "16 Nov, 2004",
		}}, 1710000000)
		assert.Equal(t, 1, processed)

		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, domain.ClassGame, g.Class)
		assert.Equal(t, []string{"Valve"}, g.Developers)
		assert.Equal(t, []string{"Action"}, g.Genres)
		assert.Equal(t, []string{"FPS", "Story Rich"}, g.Tags)
		assert.Empty(t, g.Flags, "fields absent from the page are cleared")
		assert.Equal(t, []string{"English", "German"}, g.Languages.Interface)
		assert.Equal(t, "16 Nov, 2004", g.ReleaseDate)
		assert.Equal(t, int64(1710000000), g.LastStoreScrape)

		// A scrape does not touch completion times or the cache stamp.
		assert.Equal(t, int64(780), g.Completion.Main)
		assert.Equal(t, int64(1600000000), g.LastCacheUpdate)
	})

	t.Run("creates absent game", func(t *testing.T) {
		s, _ := newTestStore(t)

		s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{{
			ID:     413150,
			Name:   "Stardew Valley",
			Genres: []string{"Simulation", "RPG"},
		}}, 1710000000)

		g, err := s.GetGame(413150)
		require.NoError(t, err)
		assert.Equal(t, "Stardew Valley", g.Name)
		assert.Equal(t, []string{"Simulation", "RPG"}, g.Genres)
	})

	t.Run("empty name and unknown classification keep existing", func(t *testing.T) {
		s, _ := newTestStore(t)

		fixture := domain.NewGame(220, "Half-Life 2")
		fixture.Class = domain.ClassGame
		seedStore(t, s, fixture)

		s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{{ID: 220, Classification: "floob"}}, 1)

		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, "Half-Life 2", g.Name)
		assert.Equal(t, domain.ClassGame, g.Class)
	})

	t.Run("malformed records are skipped", func(t *testing.T) {
		s, _ := newTestStore(t)

		processed := s.MergeScrapeRecords(ctx, []domain.ScrapeRecord{
			{ID: 0},
			{ID: 620, Name: "Portal 2"},
		}, 1)
		assert.Equal(t, 1, processed)
	})
}

func TestStore_MergeCompletionTimes(t *testing.T) {
	ctx := context.Background()

	t.Run("only known ids are integrated", func(t *testing.T) {
		s, _ := newTestStore(t)
		seedStore(t, s, domain.NewGame(220, "Half-Life 2"), domain.NewGame(620, "Portal 2"))

		before := time.Now().Unix()
		integrated := s.MergeCompletionTimes(ctx, []domain.CompletionRecord{
			{ID: 220, Main: 780, Extras: 900, Completionist: 1260},
			{ID: 620, Main: 510},
			{ID: 99999, Main: 60},
		}, true)
		assert.Equal(t, 2, integrated)

		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionTimes{Main: 780, Extras: 900, Completionist: 1260}, g.Completion)

		_, err = s.GetGame(99999)
		require.Error(t, err, "completion feed never creates games")

		assert.GreaterOrEqual(t, s.LastCompletionUpdate(), before)
	})

	t.Run("imputed fields zeroed unless included", func(t *testing.T) {
		s, _ := newTestStore(t)
		seedStore(t, s, domain.NewGame(220, "Half-Life 2"))

		rec := domain.CompletionRecord{
			ID:            220,
			Main:          780,
			Extras:        900,
			Completionist: 1260,
			ExtrasImputed: true,
		}

		s.MergeCompletionTimes(ctx, []domain.CompletionRecord{rec}, false)
		g, err := s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionTimes{Main: 780, Extras: 0, Completionist: 1260}, g.Completion)

		s.MergeCompletionTimes(ctx, []domain.CompletionRecord{rec}, true)
		g, err = s.GetGame(220)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionTimes{Main: 780, Extras: 900, Completionist: 1260}, g.Completion)
	})

	t.Run("marker stamped even when nothing matched", func(t *testing.T) {
		s, _ := newTestStore(t)

		integrated := s.MergeCompletionTimes(ctx, []domain.CompletionRecord{{ID: 1, Main: 60}}, true)
		assert.Equal(t, 0, integrated)
		assert.NotZero(t, s.LastCompletionUpdate())
	})
}
