package store

import (
	"slices"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
)

// DefaultResolveDepth bounds parent-chain walks. Parent ids are stored
// without cycle validation, so the depth counter is the only thing that
// terminates a cyclic chain.
const DefaultResolveDepth = 3

// resolveChain walks the parent chain starting at id and returns the
// first present field value. An entry falls back to its parent only while
// depth remains and it names a positive parent id; unknown ids resolve
// absent.
func resolveChain[T any](games map[int64]*domain.Game, id int64, depth int, value func(*domain.Game) T, present func(T) bool) (T, bool) {
	var zero T
	g, ok := games[id]
	if !ok {
		return zero, false
	}
	v := value(g)
	if present(v) {
		return v, true
	}
	if depth > 0 && g.ParentID > 0 {
		return resolveChain(games, g.ParentID, depth-1, value, present)
	}
	return zero, false
}

// ResolveDevelopers returns the game's developers, falling back through
// the parent chain while they are empty.
func (s *Store) ResolveDevelopers(id int64, depth int) []string {
	return s.resolveStrings(id, depth, func(g *domain.Game) []string { return g.Developers })
}

// ResolvePublishers returns the game's publishers with parent fallback.
func (s *Store) ResolvePublishers(id int64, depth int) []string {
	return s.resolveStrings(id, depth, func(g *domain.Game) []string { return g.Publishers })
}

// ResolveFlags returns the game's flags with parent fallback.
func (s *Store) ResolveFlags(id int64, depth int) []string {
	return s.resolveStrings(id, depth, func(g *domain.Game) []string { return g.Flags })
}

// ResolveTags returns the game's tags with parent fallback.
func (s *Store) ResolveTags(id int64, depth int) []string {
	return s.resolveStrings(id, depth, func(g *domain.Game) []string { return g.Tags })
}

func (s *Store) resolveStrings(id int64, depth int, field func(*domain.Game) []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveStringsLocked(s.games, id, depth, field)
}

// ResolveCompletion returns the game's completion times with parent
// fallback. The triple counts as absent only when all three times are
// unknown.
func (s *Store) ResolveCompletion(id int64, depth int) domain.CompletionTimes {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, _ := resolveChain(s.games, id, depth,
		func(g *domain.Game) domain.CompletionTimes { return g.Completion },
		func(t domain.CompletionTimes) bool { return !t.IsZero() },
	)
	return v
}

// ResolveVR returns the game's VR support with parent fallback. Fallback
// happens exactly when the game's own VR struct is entirely empty; a
// single populated set pins the whole struct as the game's own.
func (s *Store) ResolveVR(id int64, depth int) domain.VRSupport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveVRLocked(s.games, id, depth)
}

func resolveVRLocked(games map[int64]*domain.Game, id int64, depth int) domain.VRSupport {
	v, ok := resolveChain(games, id, depth,
		func(g *domain.Game) domain.VRSupport { return g.VR },
		func(v domain.VRSupport) bool { return !v.IsEmpty() },
	)
	if !ok {
		return domain.VRSupport{}
	}
	return domain.VRSupport{
		Headsets: slices.Clone(v.Headsets),
		Input:    slices.Clone(v.Input),
		PlayArea: slices.Clone(v.PlayArea),
	}
}

// ResolveGenres returns the game's genres with parent fallback. With
// tagFallback set, a game with no genres of its own first tries the tags
// that match the store-wide genre vocabulary; the tag fallback is
// re-attempted at every ancestor before walking further up.
func (s *Store) ResolveGenres(id int64, depth int, tagFallback bool) []string {
	var genreKeys map[string]struct{}
	if tagFallback {
		genreKeys = s.genreFoldSet()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveGenresLocked(s.games, id, depth, genreKeys)
}

func resolveGenresLocked(games map[int64]*domain.Game, id int64, depth int, genreKeys map[string]struct{}) []string {
	g, ok := games[id]
	if !ok {
		return nil
	}
	if len(g.Genres) > 0 {
		return slices.Clone(g.Genres)
	}
	if genreKeys != nil {
		if hits := genreTags(g.Tags, genreKeys); len(hits) > 0 {
			return hits
		}
	}
	if depth > 0 && g.ParentID > 0 {
		return resolveGenresLocked(games, g.ParentID, depth-1, genreKeys)
	}
	return nil
}

// genreTags returns the tags that name a known genre, in tag order with
// the game's own casing.
func genreTags(tags []string, genreKeys map[string]struct{}) []string {
	var hits []string
	for _, tag := range tags {
		if _, ok := genreKeys[normalize.Fold(tag)]; ok {
			hits = append(hits, tag)
		}
	}
	return hits
}

// MatchesFilter reports whether the game's own classification intersects
// mask. Unlike the field resolvers this never consults the parent chain;
// an unknown id counts as classification unknown.
func (s *Store) MatchesFilter(id int64, mask domain.Classification) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cls := domain.ClassUnknown
	if g, ok := s.games[id]; ok {
		cls = g.Class
	}
	return cls.Intersects(mask)
}

// ResolvedGame returns a copy of the game with parent fallback applied to
// its inheritable fields. Name, classification, platforms and language
// support are always the game's own.
func (s *Store) ResolvedGame(id int64, depth int, tagFallback bool) (*domain.Game, error) {
	var genreKeys map[string]struct{}
	if tagFallback {
		genreKeys = s.genreFoldSet()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, errors.NotFoundf("game %d not found", id)
	}

	out := g.Clone()
	out.Developers = resolveStringsLocked(s.games, id, depth, func(g *domain.Game) []string { return g.Developers })
	out.Publishers = resolveStringsLocked(s.games, id, depth, func(g *domain.Game) []string { return g.Publishers })
	out.Flags = resolveStringsLocked(s.games, id, depth, func(g *domain.Game) []string { return g.Flags })
	out.Tags = resolveStringsLocked(s.games, id, depth, func(g *domain.Game) []string { return g.Tags })
	out.Genres = resolveGenresLocked(s.games, id, depth, genreKeys)
	out.VR = resolveVRLocked(s.games, id, depth)
	out.Completion, _ = resolveChain(s.games, id, depth,
		func(g *domain.Game) domain.CompletionTimes { return g.Completion },
		func(t domain.CompletionTimes) bool { return !t.IsZero() },
	)
	return out, nil
}

func resolveStringsLocked(games map[int64]*domain.Game, id int64, depth int, field func(*domain.Game) []string) []string {
	v, ok := resolveChain(games, id, depth, field, func(v []string) bool { return len(v) > 0 })
	if !ok {
		return nil
	}
	return slices.Clone(v)
}
