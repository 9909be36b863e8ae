package domain

// CatalogEntry is one row of the catalog-listing feed: the id/name pairs
// the remote catalog reports. The listing carries no other metadata.
type CatalogEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CacheRecord is one row of the local-cache feed: per-id attributes parsed
// out of the platform client's binary app cache. Every field except ID is
// optional; absent fields never overwrite store data.
//
// Classification arrives as the raw vocabulary string ("game", "dlc", ...)
// and is parsed tolerantly at merge time so one unknown type name cannot
// fail a batch.
type CacheRecord struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Platforms      []string `json:"platforms,omitempty"`
	ParentID       int64    `json:"parent_id,omitempty"`
}

// ScrapeRecord is one row of the scrape feed: the complete store-page
// result for a game, as produced by a scraper collaborator answering a
// re-acquisition request. The list fields and the support structs describe
// the whole page; empty means the page showed none, and the merge replaces
// the stored values wholesale.
type ScrapeRecord struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name,omitempty"`
	Classification string          `json:"classification,omitempty"`
	ParentID       int64           `json:"parent_id,omitempty"`
	Platforms      []string        `json:"platforms,omitempty"`
	Developers     []string        `json:"developers,omitempty"`
	Publishers     []string        `json:"publishers,omitempty"`
	Genres         []string        `json:"genres,omitempty"`
	Flags          []string        `json:"flags,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Languages      LanguageSupport `json:"languages,omitzero"`
	VR             VRSupport       `json:"vr,omitzero"`
	ReleaseDate    string          `json:"release_date,omitempty"`
}
