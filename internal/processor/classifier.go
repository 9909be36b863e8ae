// Package processor turns settled drop-folder files into catalog merges.
package processor

import (
	"path/filepath"
	"strings"
)

// FeedKind identifies which merge operation a drop file feeds.
type FeedKind int

const (
	// FeedCatalog carries catalog-listing entries (id, name).
	FeedCatalog FeedKind = iota
	// FeedAppCache carries local-cache records.
	FeedAppCache
	// FeedCompletion carries completion-time records.
	FeedCompletion
	// FeedScrape carries store-page scrape records.
	FeedScrape
	// FeedUnknown is any kind string no merge operation accepts.
	FeedUnknown
)

// String returns the string representation of a FeedKind.
func (k FeedKind) String() string {
	switch k {
	case FeedCatalog:
		return "catalog"
	case FeedAppCache:
		return "appcache"
	case FeedCompletion:
		return "completion"
	case FeedScrape:
		return "scrape"
	default:
		return "unknown"
	}
}

// ParseFeedKind maps an envelope kind string to its merge operation.
// Matching is case-insensitive and tolerates surrounding whitespace.
func ParseFeedKind(s string) (FeedKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "catalog":
		return FeedCatalog, true
	case "appcache":
		return FeedAppCache, true
	case "completion":
		return FeedCompletion, true
	case "scrape":
		return FeedScrape, true
	default:
		return FeedUnknown, false
	}
}

// isFeedFile reports whether path looks like a feed file. The check is
// extension-based so the watcher loop stays cheap; editors' swap files,
// partial downloads, and stray notes never reach the decoder.
func isFeedFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
