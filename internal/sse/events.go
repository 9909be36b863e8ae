// Package sse implements Server-Sent Events for real-time catalog updates and event broadcasting.
package sse

import (
	"time"

	"github.com/gameshelfapp/gameshelf-server/internal/lang"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCatalogApplied represents a catalog feed being merged into the store.
	EventCatalogApplied EventType = "catalog.applied"
	// EventCacheMerged represents a local app-cache feed being merged into the store.
	EventCacheMerged EventType = "cache.merged"
	// EventCompletionMerged represents a completion-time feed being merged into the store.
	EventCompletionMerged EventType = "completion.merged"
	// EventScrapeMerged represents store-page scrape results being merged into the store.
	EventScrapeMerged EventType = "scrape.merged"

	// EventLanguageChanged represents the active store language being switched.
	EventLanguageChanged EventType = "language.changed"
	// EventLibraryRefreshNeeded tells clients their cached game data is stale
	// and should be re-fetched. Sent after bulk mutations like a language
	// change or a snapshot import.
	EventLibraryRefreshNeeded EventType = "library.refresh_needed"

	// EventSnapshotSaved represents the store snapshot being written to disk.
	EventSnapshotSaved EventType = "snapshot.saved"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`
}

// CatalogAppliedEventData is the data payload for catalog.applied events.
type CatalogAppliedEventData struct {
	AppliedAt time.Time `json:"applied_at"`
	Processed int       `json:"processed"`
	Created   int       `json:"created"`
}

// CacheMergedEventData is the data payload for cache.merged events.
type CacheMergedEventData struct {
	AppliedAt time.Time `json:"applied_at"`
	CacheTime int64     `json:"cache_time"`
	Processed int       `json:"processed"`
}

// CompletionMergedEventData is the data payload for completion.merged events.
type CompletionMergedEventData struct {
	AppliedAt      time.Time `json:"applied_at"`
	Integrated     int       `json:"integrated"`
	IncludeImputed bool      `json:"include_imputed"`
}

// ScrapeMergedEventData is the data payload for scrape.merged events.
type ScrapeMergedEventData struct {
	AppliedAt  time.Time `json:"applied_at"`
	ScrapeTime int64     `json:"scrape_time"`
	Processed  int       `json:"processed"`
}

// LanguageChangedEventData is the data payload for language.changed events.
type LanguageChangedEventData struct {
	Language lang.Code `json:"language"`
	Cleared  int       `json:"cleared"`
}

// LibraryRefreshNeededEventData is the data payload for library.refresh_needed events.
// GameIDs lists the entries whose store-page data is due for re-acquisition,
// in ascending id order.
type LibraryRefreshNeededEventData struct {
	Reason  string  `json:"reason"`
	GameIDs []int64 `json:"game_ids,omitempty"`
}

// SnapshotSavedEventData is the data payload for snapshot.saved events.
type SnapshotSavedEventData struct {
	SavedAt time.Time `json:"saved_at"`
	Games   int       `json:"games"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewCatalogAppliedEvent creates a catalog.applied event.
func NewCatalogAppliedEvent(processed, created int) Event {
	return Event{
		Type: EventCatalogApplied,
		Data: CatalogAppliedEventData{
			AppliedAt: time.Now(),
			Processed: processed,
			Created:   created,
		},
		Timestamp: time.Now(),
	}
}

// NewCacheMergedEvent creates a cache.merged event.
func NewCacheMergedEvent(processed int, cacheTime int64) Event {
	return Event{
		Type: EventCacheMerged,
		Data: CacheMergedEventData{
			AppliedAt: time.Now(),
			CacheTime: cacheTime,
			Processed: processed,
		},
		Timestamp: time.Now(),
	}
}

// NewCompletionMergedEvent creates a completion.merged event.
func NewCompletionMergedEvent(integrated int, includeImputed bool) Event {
	return Event{
		Type: EventCompletionMerged,
		Data: CompletionMergedEventData{
			AppliedAt:      time.Now(),
			Integrated:     integrated,
			IncludeImputed: includeImputed,
		},
		Timestamp: time.Now(),
	}
}

// NewScrapeMergedEvent creates a scrape.merged event.
func NewScrapeMergedEvent(processed int, scrapeTime int64) Event {
	return Event{
		Type: EventScrapeMerged,
		Data: ScrapeMergedEventData{
			AppliedAt:  time.Now(),
			ScrapeTime: scrapeTime,
			Processed:  processed,
		},
		Timestamp: time.Now(),
	}
}

// NewLanguageChangedEvent creates a language.changed event.
func NewLanguageChangedEvent(language lang.Code, cleared int) Event {
	return Event{
		Type: EventLanguageChanged,
		Data: LanguageChangedEventData{
			Language: language,
			Cleared:  cleared,
		},
		Timestamp: time.Now(),
	}
}

// NewLibraryRefreshNeededEvent creates a library.refresh_needed event.
func NewLibraryRefreshNeededEvent(reason string, gameIDs []int64) Event {
	return Event{
		Type: EventLibraryRefreshNeeded,
		Data: LibraryRefreshNeededEventData{
			Reason:  reason,
			GameIDs: gameIDs,
		},
		Timestamp: time.Now(),
	}
}

// NewSnapshotSavedEvent creates a snapshot.saved event.
func NewSnapshotSavedEvent(games int) Event {
	return Event{
		Type: EventSnapshotSaved,
		Data: SnapshotSavedEventData{
			SavedAt: time.Now(),
			Games:   games,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
