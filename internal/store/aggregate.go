package store

import (
	"slices"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
)

// Slot identifies one aggregate cache slot.
type Slot string

// Aggregate slots. The scalar slots each hold one union set; the triple
// slots hold three sets that are always computed and invalidated together.
const (
	SlotDevelopers Slot = "developers"
	SlotPublishers Slot = "publishers"
	SlotGenres     Slot = "genres"
	SlotFlags      Slot = "flags"
	SlotLanguages  Slot = "languages"
	SlotVR         Slot = "vr"
)

// Slots lists every aggregate slot in display order.
//
//nolint:gochecknoglobals // Static lookup table
var Slots = []Slot{SlotDevelopers, SlotPublishers, SlotGenres, SlotFlags, SlotLanguages, SlotVR}

// ParseSlot maps a slot name from an API path to its Slot.
func ParseSlot(name string) (Slot, error) {
	slot := Slot(name)
	if !slices.Contains(Slots, slot) {
		return "", errors.Validationf("unknown aggregate slot %q", name)
	}
	return slot, nil
}

// aggregateSet is one case-insensitive union set. Keys are folded names,
// values keep the casing of the first occurrence seen.
type aggregateSet map[string]string

func (a aggregateSet) add(name string) {
	key := normalize.Fold(name)
	if key == "" {
		return
	}
	if _, ok := a[key]; !ok {
		a[key] = name
	}
}

// sorted returns the member names ordered by their folded key.
func (a aggregateSet) sorted() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = a[k]
	}
	return names
}

// scalarSlot is a single union set with an explicit computed marker. The
// zero value is an absent slot.
type scalarSlot struct {
	computed bool
	set      aggregateSet
}

// tripleSlot is three union sets sharing one computed marker, so the slot
// is only ever wholly present or wholly absent.
type tripleSlot struct {
	computed bool
	sets     [3]aggregateSet
}

// aggregateCache holds the six derived slots. A computed slot is served
// as-is until it is explicitly invalidated or force-recomputed; feed
// merges do not implicitly invalidate, so callers see point-in-time
// values until something clears the slot.
type aggregateCache struct {
	developers scalarSlot
	publishers scalarSlot
	genres     scalarSlot
	flags      scalarSlot
	languages  tripleSlot
	vr         tripleSlot
}

// AggregateResult is one computed slot in API shape. Scalar slots fill
// Values; triple slots fill Sets keyed by sub-set name.
type AggregateResult struct {
	Slot   Slot                `json:"slot"`
	Values []string            `json:"values,omitempty"`
	Sets   map[string][]string `json:"sets,omitempty"`
}

// Developers returns the union of every developer name in the store,
// deduplicated case-insensitively and sorted, computing the slot if it is
// absent.
func (s *Store) Developers() []string {
	return s.scalarAggregate(SlotDevelopers)
}

// Publishers returns the union of every publisher name in the store.
func (s *Store) Publishers() []string {
	return s.scalarAggregate(SlotPublishers)
}

// Genres returns the union of every genre name in the store. This set
// doubles as the genre vocabulary for tag-based genre fallback.
func (s *Store) Genres() []string {
	return s.scalarAggregate(SlotGenres)
}

// Flags returns the union of every flag name in the store.
func (s *Store) Flags() []string {
	return s.scalarAggregate(SlotFlags)
}

// LanguageAggregate returns the union of language support across the
// store: every interface, subtitle and full-audio language seen.
func (s *Store) LanguageAggregate() domain.LanguageSupport {
	var out domain.LanguageSupport
	s.withComputed(SlotLanguages, func() {
		t := s.aggregates.languages
		out.Interface = t.sets[0].sorted()
		out.Subtitles = t.sets[1].sorted()
		out.FullAudio = t.sets[2].sorted()
	})
	return out
}

// VRAggregate returns the union of VR support across the store: every
// headset, input method and play area seen.
func (s *Store) VRAggregate() domain.VRSupport {
	var out domain.VRSupport
	s.withComputed(SlotVR, func() {
		t := s.aggregates.vr
		out.Headsets = t.sets[0].sorted()
		out.Input = t.sets[1].sorted()
		out.PlayArea = t.sets[2].sorted()
	})
	return out
}

// Aggregate returns the named slot in API shape, computing it if absent.
func (s *Store) Aggregate(slot Slot) (*AggregateResult, error) {
	switch slot {
	case SlotDevelopers, SlotPublishers, SlotGenres, SlotFlags:
		return &AggregateResult{Slot: slot, Values: s.scalarAggregate(slot)}, nil
	case SlotLanguages:
		agg := s.LanguageAggregate()
		return &AggregateResult{Slot: slot, Sets: map[string][]string{
			"interface":  agg.Interface,
			"subtitles":  agg.Subtitles,
			"full_audio": agg.FullAudio,
		}}, nil
	case SlotVR:
		agg := s.VRAggregate()
		return &AggregateResult{Slot: slot, Sets: map[string][]string{
			"headsets":  agg.Headsets,
			"input":     agg.Input,
			"play_area": agg.PlayArea,
		}}, nil
	default:
		return nil, errors.Validationf("unknown aggregate slot %q", slot)
	}
}

// RefreshAggregate rebuilds the named slot from the current catalog even
// if a cached value exists.
func (s *Store) RefreshAggregate(slot Slot) (*AggregateResult, error) {
	if !slices.Contains(Slots, slot) {
		return nil, errors.Validationf("unknown aggregate slot %q", slot)
	}

	s.mu.Lock()
	s.recomputeLocked(slot)
	s.mu.Unlock()

	return s.Aggregate(slot)
}

// InvalidateAggregate marks one slot absent. The next read recomputes it
// from the catalog.
func (s *Store) InvalidateAggregate(slot Slot) error {
	if !slices.Contains(Slots, slot) {
		return errors.Validationf("unknown aggregate slot %q", slot)
	}

	s.mu.Lock()
	switch slot {
	case SlotLanguages:
		s.aggregates.languages = tripleSlot{}
	case SlotVR:
		s.aggregates.vr = tripleSlot{}
	default:
		*s.scalarSlotLocked(slot) = scalarSlot{}
	}
	s.mu.Unlock()
	return nil
}

// InvalidateAggregates clears every slot. The next read of each slot
// recomputes it from the catalog.
func (s *Store) InvalidateAggregates() {
	s.mu.Lock()
	s.invalidateAllLocked()
	s.mu.Unlock()
	s.logger.Debug("Aggregate cache invalidated")
}

func (s *Store) invalidateAllLocked() {
	s.aggregates = aggregateCache{}
}

// scalarAggregate returns the sorted members of a scalar slot under the
// get-or-compute contract.
func (s *Store) scalarAggregate(slot Slot) []string {
	var names []string
	s.withComputed(slot, func() {
		names = s.scalarSlotLocked(slot).set.sorted()
	})
	return names
}

// genreFoldSet returns the folded keys of the genre aggregate, computing
// the slot if absent. Used for genre membership checks by the resolver
// and the tag scorer.
func (s *Store) genreFoldSet() map[string]struct{} {
	var keys map[string]struct{}
	s.withComputed(SlotGenres, func() {
		set := s.aggregates.genres.set
		keys = make(map[string]struct{}, len(set))
		for k := range set {
			keys[k] = struct{}{}
		}
	})
	return keys
}

// withComputed runs read with the lock held and the slot computed. The
// fast path stays on the read lock; a cold slot upgrades to the write
// lock, recomputes, and reads under it.
func (s *Store) withComputed(slot Slot, read func()) {
	s.mu.RLock()
	if s.computedLocked(slot) {
		read()
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	if !s.computedLocked(slot) {
		s.recomputeLocked(slot)
	}
	read()
	s.mu.Unlock()
}

func (s *Store) computedLocked(slot Slot) bool {
	switch slot {
	case SlotLanguages:
		return s.aggregates.languages.computed
	case SlotVR:
		return s.aggregates.vr.computed
	default:
		return s.scalarSlotLocked(slot).computed
	}
}

func (s *Store) scalarSlotLocked(slot Slot) *scalarSlot {
	switch slot {
	case SlotDevelopers:
		return &s.aggregates.developers
	case SlotPublishers:
		return &s.aggregates.publishers
	case SlotGenres:
		return &s.aggregates.genres
	case SlotFlags:
		return &s.aggregates.flags
	default:
		return nil
	}
}

// recomputeLocked rebuilds one slot by unioning the backing field across
// every game. Callers must hold the write lock.
func (s *Store) recomputeLocked(slot Slot) {
	switch slot {
	case SlotDevelopers:
		s.aggregates.developers = s.unionLocked(func(g *domain.Game) []string { return g.Developers })
	case SlotPublishers:
		s.aggregates.publishers = s.unionLocked(func(g *domain.Game) []string { return g.Publishers })
	case SlotGenres:
		s.aggregates.genres = s.unionLocked(func(g *domain.Game) []string { return g.Genres })
	case SlotFlags:
		s.aggregates.flags = s.unionLocked(func(g *domain.Game) []string { return g.Flags })
	case SlotLanguages:
		s.aggregates.languages = s.unionTripleLocked(func(g *domain.Game) [3][]string {
			return [3][]string{g.Languages.Interface, g.Languages.Subtitles, g.Languages.FullAudio}
		})
	case SlotVR:
		s.aggregates.vr = s.unionTripleLocked(func(g *domain.Game) [3][]string {
			return [3][]string{g.VR.Headsets, g.VR.Input, g.VR.PlayArea}
		})
	}
}

func (s *Store) unionLocked(field func(*domain.Game) []string) scalarSlot {
	set := make(aggregateSet)
	for _, g := range s.games {
		for _, name := range field(g) {
			set.add(name)
		}
	}
	return scalarSlot{computed: true, set: set}
}

func (s *Store) unionTripleLocked(fields func(*domain.Game) [3][]string) tripleSlot {
	t := tripleSlot{computed: true}
	for i := range t.sets {
		t.sets[i] = make(aggregateSet)
	}
	for _, g := range s.games {
		parts := fields(g)
		for i, names := range parts {
			for _, name := range names {
				t.sets[i].add(name)
			}
		}
	}
	return t
}
