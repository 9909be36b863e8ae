// Package domain contains the core entities and domain logic for the GameShelf catalog store.
package domain

// Scrape timestamp sentinels. Timestamps are unix seconds; the two lowest
// values are reserved markers and never valid scrape times.
const (
	// ScrapeNever marks an entry no feed has ever scraped.
	ScrapeNever int64 = 0
	// ScrapeStale marks an entry whose scraped data was invalidated and is
	// due for re-acquisition. Distinct from ScrapeNever so a brand-new entry
	// and an invalidated one can be told apart.
	ScrapeStale int64 = 1
)

// Game represents one catalog entry, keyed by its catalog id.
// Ids are immutable once created; entries are never deleted, only updated.
// Ids ≤ 0 are sentinel records (mods, configs, test entries) that external
// feeds never touch.
type Game struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name,omitempty"`
	Class    Classification `json:"classification"`
	ParentID int64          `json:"parent_id,omitempty"`

	Platforms Platforms `json:"platforms,omitempty"`

	// Ordered sequences contributed by feeds. Nil and empty are equivalent
	// for fallback purposes.
	Developers []string `json:"developers,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Flags      []string `json:"flags,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	Languages   LanguageSupport `json:"languages"`
	VR          VRSupport       `json:"vr"`
	ReleaseDate string          `json:"release_date,omitempty"`
	Completion  CompletionTimes `json:"completion"`

	// Unix seconds, or a Scrape* sentinel.
	LastStoreScrape int64 `json:"last_store_scrape"`
	LastCacheUpdate int64 `json:"last_cache_update"`
}

// NewGame creates a fresh entry for an id. Classification starts at
// Unknown and both scrape timestamps at ScrapeNever.
func NewGame(id int64, name string) *Game {
	return &Game{
		ID:              id,
		Name:            name,
		Class:           ClassUnknown,
		LastStoreScrape: ScrapeNever,
		LastCacheUpdate: ScrapeNever,
	}
}

// IsSentinel reports whether this is a non-game sentinel record.
// Sentinels are exempt from language invalidation.
func (g *Game) IsSentinel() bool {
	return g.ID <= 0
}

// ClearLanguageData wipes every language-dependent field and marks the
// entry due for re-scrape. Developers, publishers, platforms, and
// completion times are language-neutral and survive.
func (g *Game) ClearLanguageData() {
	g.Tags = nil
	g.Flags = nil
	g.Genres = nil
	g.ReleaseDate = ""
	g.VR = VRSupport{}
	g.Languages = LanguageSupport{}
	g.LastStoreScrape = ScrapeStale
}

// Clone returns a deep copy. Snapshot writes work on clones so the live
// store can keep mutating while a save is in flight.
func (g *Game) Clone() *Game {
	c := *g
	c.Developers = cloneStrings(g.Developers)
	c.Publishers = cloneStrings(g.Publishers)
	c.Genres = cloneStrings(g.Genres)
	c.Flags = cloneStrings(g.Flags)
	c.Tags = cloneStrings(g.Tags)
	c.Languages = g.Languages.Clone()
	c.VR = g.VR.Clone()
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
