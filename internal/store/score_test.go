package store_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

func TestStore_DeveloperCounts(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Developers = []string{"Valve"}

	b := domain.NewGame(570, "Dota 2")
	b.Developers = []string{"valve"}

	c := domain.NewGame(413150, "Stardew Valley")
	c.Developers = []string{"ConcernedApe"}

	seedStore(t, s, a, b, c)

	counts := s.DeveloperCounts(store.CountOptions{})
	require.Len(t, counts, 2)

	assert.True(t, strings.EqualFold("valve", counts[0].Name))
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, store.NameCount{Name: "ConcernedApe", Count: 1}, counts[1])
}

func TestStore_DeveloperCounts_NoParentFallback(t *testing.T) {
	s, _ := newTestStore(t)

	parent := domain.NewGame(220, "Half-Life 2")
	parent.Developers = []string{"Valve"}

	child := domain.NewGame(380, "Half-Life 2: Episode One")
	child.ParentID = 220

	seedStore(t, s, parent, child)

	counts := s.DeveloperCounts(store.CountOptions{})
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count, "the child has no developers of its own to tally")
}

func TestStore_DeveloperCounts_FilterAndMinCount(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Developers = []string{"Valve"}

	b := domain.NewGame(570, "Dota 2")
	b.Developers = []string{"Valve"}

	c := domain.NewGame(413150, "Stardew Valley")
	c.Developers = []string{"ConcernedApe"}

	seedStore(t, s, a, b, c)

	counts := s.DeveloperCounts(store.CountOptions{
		Filter: []domain.FilterEntry{
			{ID: 220},
			{ID: 570, Hidden: true},
			{ID: 413150},
			{ID: 99999},
		},
	})
	assert.Equal(t, []store.NameCount{
		{Name: "ConcernedApe", Count: 1},
		{Name: "Valve", Count: 1},
	}, counts, "hidden and unknown filter entries contribute nothing")

	counts = s.DeveloperCounts(store.CountOptions{MinCount: 2})
	assert.Equal(t, []store.NameCount{{Name: "Valve", Count: 2}}, counts)
}

func TestStore_PublisherCounts(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(268910, "Cuphead")
	a.Publishers = []string{"Studio MDHR"}

	b := domain.NewGame(413150, "Stardew Valley")
	b.Publishers = []string{"ConcernedApe", "Chucklefish"}

	seedStore(t, s, a, b)

	counts := s.PublisherCounts(store.CountOptions{})
	assert.Equal(t, []store.NameCount{
		{Name: "Chucklefish", Count: 1},
		{Name: "ConcernedApe", Count: 1},
		{Name: "Studio MDHR", Count: 1},
	}, counts)
}

func TestStore_TagScores_Interpolation(t *testing.T) {
	newTagStore := func(t *testing.T, tags ...string) *store.Store {
		t.Helper()
		s, _ := newTestStore(t)
		g := domain.NewGame(220, "Half-Life 2")
		g.Tags = tags
		seedStore(t, s, g)
		return s
	}

	t.Run("weight factor spreads linearly", func(t *testing.T) {
		s := newTagStore(t, "Action", "Adventure", "Puzzle")

		scores := s.TagScores(store.ScoreOptions{WeightFactor: 3})
		require.Len(t, scores, 3)
		assert.Equal(t, "Action", scores[0].Tag)
		assert.InDelta(t, 3.0, scores[0].Score, 1e-9)
		assert.InDelta(t, 2.0, scores[1].Score, 1e-9)
		assert.InDelta(t, 1.0, scores[2].Score, 1e-9)
	})

	t.Run("weight factor one scores flat", func(t *testing.T) {
		s := newTagStore(t, "Action", "Adventure", "Puzzle")

		for _, sc := range s.TagScores(store.ScoreOptions{WeightFactor: 1}) {
			assert.InDelta(t, 1.0, sc.Score, 1e-9)
		}
	})

	t.Run("weight factor zero scores flat", func(t *testing.T) {
		s := newTagStore(t, "Action", "Adventure")

		for _, sc := range s.TagScores(store.ScoreOptions{}) {
			assert.InDelta(t, 1.0, sc.Score, 1e-9)
		}
	})

	t.Run("single tag takes the full factor", func(t *testing.T) {
		s := newTagStore(t, "Roguelike")

		scores := s.TagScores(store.ScoreOptions{WeightFactor: 3})
		require.Len(t, scores, 1)
		assert.InDelta(t, 3.0, scores[0].Score, 1e-9)
	})
}

func TestStore_TagScores_Accumulation(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Tags = []string{"FPS", "Roguelike"}

	b := domain.NewGame(570, "Dota 2")
	b.Tags = []string{"roguelike"}

	seedStore(t, s, a, b)

	scores := s.TagScores(store.ScoreOptions{})
	require.Len(t, scores, 2)

	assert.Equal(t, "FPS", scores[0].Tag)
	assert.True(t, strings.EqualFold("roguelike", scores[1].Tag))
	assert.InDelta(t, 2.0, scores[1].Score, 1e-9)
}

func TestStore_TagScores_TagsPerGame(t *testing.T) {
	s, _ := newTestStore(t)

	g := domain.NewGame(220, "Half-Life 2")
	g.Tags = []string{"Action", "Adventure", "Puzzle", "Racing"}
	seedStore(t, s, g)

	scores := s.TagScores(store.ScoreOptions{TagsPerGame: 2, WeightFactor: 3})
	require.Len(t, scores, 2)

	// Interpolation runs over the truncated list, not the stored one.
	assert.Equal(t, "Action", scores[0].Tag)
	assert.InDelta(t, 3.0, scores[0].Score, 1e-9)
	assert.Equal(t, "Adventure", scores[1].Tag)
	assert.InDelta(t, 1.0, scores[1].Score, 1e-9)

	assert.Len(t, s.TagScores(store.ScoreOptions{TagsPerGame: 0}), 4)
}

func TestStore_TagScores_FilterMinScoreAndGenres(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Genres = []string{"Action"}
	a.Tags = []string{"Action", "Silent Protagonist"}

	b := domain.NewGame(570, "Dota 2")
	b.Tags = []string{"MOBA", "Silent Protagonist"}

	seedStore(t, s, a, b)

	t.Run("filter subset", func(t *testing.T) {
		scores := s.TagScores(store.ScoreOptions{
			Filter: []domain.FilterEntry{{ID: 570}, {ID: 220, Hidden: true}},
		})
		assert.Equal(t, []store.TagScore{
			{Tag: "MOBA", Score: 1},
			{Tag: "Silent Protagonist", Score: 1},
		}, scores)
	})

	t.Run("min score", func(t *testing.T) {
		scores := s.TagScores(store.ScoreOptions{MinScore: 1.5})
		require.Len(t, scores, 1)
		assert.Equal(t, "Silent Protagonist", scores[0].Tag)
	})

	t.Run("exclude genres", func(t *testing.T) {
		scores := s.TagScores(store.ScoreOptions{ExcludeGenres: true})
		require.Len(t, scores, 2)
		assert.Equal(t, "MOBA", scores[0].Tag)
		assert.Equal(t, "Silent Protagonist", scores[1].Tag)
	})
}

func TestStore_TagScores_Ordering(t *testing.T) {
	s, _ := newTestStore(t)

	a := domain.NewGame(220, "Half-Life 2")
	a.Tags = []string{"Shooter", "Classic"}

	b := domain.NewGame(570, "Dota 2")
	b.Tags = []string{"Classic"}

	seedStore(t, s, a, b)

	byName := s.TagScores(store.ScoreOptions{})
	require.Len(t, byName, 2)
	assert.Equal(t, "Classic", byName[0].Tag)
	assert.Equal(t, "Shooter", byName[1].Tag)

	byScore := s.TagScores(store.ScoreOptions{SortByScore: true})
	require.Len(t, byScore, 2)
	assert.Equal(t, "Classic", byScore[0].Tag)
	assert.InDelta(t, 2.0, byScore[0].Score, 1e-9)
	assert.Equal(t, "Shooter", byScore[1].Tag)
}
