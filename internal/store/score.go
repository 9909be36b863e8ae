package store

import (
	"cmp"
	"slices"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
)

// CountOptions narrows a name tally to a caller-supplied working set.
type CountOptions struct {
	Filter   []domain.FilterEntry // nil visits the whole catalog; hidden entries are excluded
	MinCount int                  // drop names tallied fewer times
}

// NameCount is one tallied name. Casing follows the first occurrence
// seen.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ScoreOptions controls weighted tag scoring.
type ScoreOptions struct {
	Filter        []domain.FilterEntry // nil visits the whole catalog; hidden entries are excluded
	WeightFactor  float64              // >1 weights a game's leading tags higher
	MinScore      float64              // drop tags with a lower total
	TagsPerGame   int                  // tags taken per game in stored order, 0 takes all
	ExcludeGenres bool                 // drop tags that name a known genre
	SortByScore   bool                 // descending by score instead of ascending by name
}

// TagScore is one scored tag. Casing follows the first occurrence seen.
type TagScore struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

// DeveloperCounts tallies developer names across the catalog or the
// filtered subset. Names come from each game's own developer field; no
// parent fallback is applied.
func (s *Store) DeveloperCounts(opts CountOptions) []NameCount {
	return s.countNames(opts, func(g *domain.Game) []string { return g.Developers })
}

// PublisherCounts tallies publisher names the same way DeveloperCounts
// tallies developers.
func (s *Store) PublisherCounts(opts CountOptions) []NameCount {
	return s.countNames(opts, func(g *domain.Game) []string { return g.Publishers })
}

func (s *Store) countNames(opts CountOptions, field func(*domain.Game) []string) []NameCount {
	type entry struct {
		name  string
		count int
	}

	s.mu.RLock()
	tally := make(map[string]*entry)
	for _, g := range s.qualifyingLocked(opts.Filter) {
		for _, name := range field(g) {
			key := normalize.Fold(name)
			if key == "" {
				continue
			}
			e, ok := tally[key]
			if !ok {
				e = &entry{name: name}
				tally[key] = e
			}
			e.count++
		}
	}
	s.mu.RUnlock()

	out := make([]NameCount, 0, len(tally))
	for _, e := range tally {
		if e.count < opts.MinCount {
			continue
		}
		out = append(out, NameCount{Name: e.name, Count: e.count})
	}

	// The contract leaves ordering open; sort for stable responses.
	slices.SortFunc(out, func(a, b NameCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(normalize.Fold(a.Name), normalize.Fold(b.Name))
	})
	return out
}

// TagScores scores tags across the catalog or the filtered subset. Each
// qualifying game contributes its first TagsPerGame tags in stored order;
// with WeightFactor above 1 the contribution falls linearly from
// WeightFactor at the first tag to 1 at the last, otherwise every tag
// contributes 1. Scores accumulate per tag name case-insensitively.
func (s *Store) TagScores(opts ScoreOptions) []TagScore {
	var genreKeys map[string]struct{}
	if opts.ExcludeGenres {
		genreKeys = s.genreFoldSet()
	}

	type entry struct {
		name  string
		score float64
	}

	s.mu.RLock()
	tally := make(map[string]*entry)
	for _, g := range s.qualifyingLocked(opts.Filter) {
		tags := g.Tags
		if opts.TagsPerGame > 0 && len(tags) > opts.TagsPerGame {
			tags = tags[:opts.TagsPerGame]
		}
		n := len(tags)
		for i, tag := range tags {
			key := normalize.Fold(tag)
			if key == "" {
				continue
			}

			score := 1.0
			if opts.WeightFactor > 1 {
				if n <= 1 {
					score = opts.WeightFactor
				} else {
					frac := float64(i) / float64(n-1)
					score = (1-frac)*opts.WeightFactor + frac
				}
			}

			e, ok := tally[key]
			if !ok {
				e = &entry{name: tag}
				tally[key] = e
			}
			e.score += score
		}
	}
	s.mu.RUnlock()

	out := make([]TagScore, 0, len(tally))
	for key, e := range tally {
		if _, isGenre := genreKeys[key]; isGenre {
			continue
		}
		if e.score < opts.MinScore {
			continue
		}
		out = append(out, TagScore{Tag: e.name, Score: e.score})
	}

	if opts.SortByScore {
		slices.SortFunc(out, func(a, b TagScore) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			return cmp.Compare(normalize.Fold(a.Tag), normalize.Fold(b.Tag))
		})
	} else {
		slices.SortFunc(out, func(a, b TagScore) int {
			return cmp.Compare(normalize.Fold(a.Tag), normalize.Fold(b.Tag))
		})
	}
	return out
}

// qualifyingLocked returns the games a tally should visit: the whole
// catalog when filter is nil, otherwise the filter's non-hidden entries
// that exist in the store. Callers must hold at least the read lock.
func (s *Store) qualifyingLocked(filter []domain.FilterEntry) []*domain.Game {
	if filter == nil {
		games := make([]*domain.Game, 0, len(s.games))
		for _, g := range s.games {
			games = append(games, g)
		}
		return games
	}

	games := make([]*domain.Game, 0, len(filter))
	for _, e := range filter {
		if e.Hidden {
			continue
		}
		if g, ok := s.games[e.ID]; ok {
			games = append(games, g)
		}
	}
	return games
}
