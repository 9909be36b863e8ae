package domain

// FilterEntry names one game of a caller-supplied subset for the counting
// and scoring queries. Hidden entries stay in the subset but contribute
// nothing, mirroring how a curated library keeps hidden games out of
// statistics without forgetting them.
type FilterEntry struct {
	ID     int64 `json:"id"`
	Hidden bool  `json:"hidden,omitempty"`
}
