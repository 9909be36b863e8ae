package domain

import "github.com/gameshelfapp/gameshelf-server/internal/lang"

// Snapshot is the full persisted state of the store: every entry plus the
// store-wide settings. Aggregate slots are derived data and deliberately
// not part of it; they are recomputed on first access after a load.
type Snapshot struct {
	Games                map[int64]*Game `json:"games"`
	ActiveLanguage       lang.Code       `json:"active_language"`
	LastCompletionUpdate int64           `json:"last_completion_update"`
}

// NewSnapshot creates an empty snapshot with defaults suitable for a
// store that has never been saved.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Games:          make(map[int64]*Game),
		ActiveLanguage: lang.Default,
	}
}

// Normalize repairs a freshly deserialized snapshot: nil maps become
// empty, entry ids are forced to match their map key, zero-valued
// classifications become the explicit Unknown bit, and an empty active
// language falls back to the default. Backends call this after decoding
// so the rest of the code never sees a half-formed snapshot.
func (s *Snapshot) Normalize() {
	if s.Games == nil {
		s.Games = make(map[int64]*Game)
	}
	for id, g := range s.Games {
		if g == nil {
			delete(s.Games, id)
			continue
		}
		g.ID = id
		if g.Class == 0 {
			g.Class = ClassUnknown
		}
	}
	if s.ActiveLanguage == "" {
		s.ActiveLanguage = lang.Default
	}
}
