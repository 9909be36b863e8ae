// Package main provides a tool to seed the snapshot database with sample games.
//
// This runs a small catalog through the whole ingest pipeline (catalog,
// cache, scrape, completion) so list, resolve, aggregate and search
// features have something to chew on during development.
//
// Usage:
//
//	DATA_PATH=~/gameshelf go run ./cmd/seed
//	DATA_PATH=~/gameshelf DATA_ENGINE=sqlite go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
	"github.com/gameshelfapp/gameshelf-server/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/gameshelf")
	}
	engine := os.Getenv("DATA_ENGINE")
	if engine == "" {
		engine = "badger"
	}

	fmt.Printf("Opening %s snapshot under: %s\n", engine, dataPath)

	var backend store.Backend
	var err error
	switch engine {
	case "sqlite":
		backend, err = sqlite.Open(filepath.Join(dataPath, "gameshelf.db"), nil)
	case "badger":
		backend, err = store.OpenBadger(filepath.Join(dataPath, "snapshot"), nil)
	default:
		log.Fatalf("Unknown engine %q (must be badger or sqlite)", engine)
	}
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}

	ctx := context.Background()

	s, err := store.New(ctx, backend, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	now := time.Now().Unix()

	processed, created := s.ApplyCatalog(ctx, catalog())
	fmt.Printf("Catalog applied: %d processed, %d created\n", processed, created)

	merged := s.MergeCacheRecords(ctx, cacheRecords(), now)
	fmt.Printf("Cache records merged: %d\n", merged)

	scraped := s.MergeScrapeRecords(ctx, scrapeRecords(), now)
	fmt.Printf("Scrape records merged: %d\n", scraped)

	integrated := s.MergeCompletionTimes(ctx, completionRecords(), false)
	fmt.Printf("Completion times integrated: %d\n", integrated)

	if err := s.Save(ctx); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	games := s.ListGames(domain.ClassAll)
	fmt.Printf("\nSnapshot saved with %d games:\n", len(games))
	for _, g := range games {
		fmt.Printf("  %8d  %-24s %s\n", g.ID, g.Name, g.Class)
	}
}

// catalog returns the sample ownership feed. IDs are the real store ids so
// the seeded snapshot looks familiar in the UI.
func catalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: 70, Name: "Half-Life"},
		{ID: 400, Name: "Portal"},
		{ID: 620, Name: "Portal 2"},
		{ID: 440, Name: "Team Fortress 2"},
		{ID: 546560, Name: "Half-Life: Alyx"},
		{ID: 323170, Name: "Portal Stories: Mel"},
		{ID: 105600, Name: "Terraria"},
		{ID: 413150, Name: "Stardew Valley"},
	}
}

func cacheRecords() []domain.CacheRecord {
	return []domain.CacheRecord{
		{ID: 70, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
		{ID: 400, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
		{ID: 620, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
		{ID: 440, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
		{ID: 546560, Classification: "game", Platforms: []string{"windows"}},
		{ID: 323170, Classification: "dlc", ParentID: 620, Platforms: []string{"windows"}},
		{ID: 105600, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
		{ID: 413150, Classification: "game", Platforms: []string{"windows", "mac", "linux"}},
	}
}

func scrapeRecords() []domain.ScrapeRecord {
	return []domain.ScrapeRecord{
		{
			ID:          70,
			Developers:  []string{"Valve"},
			Publishers:  []string{"Valve"},
			Genres:      []string{"Action"},
			Tags:        []string{"FPS", "Classic", "Sci-fi"},
			Languages:   domain.LanguageSupport{Interface: []string{"English", "French", "German"}},
			ReleaseDate: "1998-11-08",
		},
		{
			ID:          400,
			Developers:  []string{"Valve"},
			Publishers:  []string{"Valve"},
			Genres:      []string{"Puzzle"},
			Tags:        []string{"Puzzle", "First-Person", "Physics"},
			Languages:   domain.LanguageSupport{Interface: []string{"English", "French", "German"}, Subtitles: []string{"English"}},
			ReleaseDate: "2007-10-10",
		},
		{
			ID:          620,
			Developers:  []string{"Valve"},
			Publishers:  []string{"Valve"},
			Genres:      []string{"Puzzle"},
			Tags:        []string{"Puzzle", "Co-op", "First-Person"},
			Languages:   domain.LanguageSupport{Interface: []string{"English", "French", "German"}, FullAudio: []string{"English"}},
			ReleaseDate: "2011-04-18",
		},
		{
			ID:         546560,
			Developers: []string{"Valve"},
			Publishers: []string{"Valve"},
			Genres:     []string{"Action"},
			Tags:       []string{"VR", "FPS", "Story Rich"},
			VR: domain.VRSupport{
				Headsets: []string{"Valve Index", "HTC Vive", "Oculus Rift"},
				Input:    []string{"Tracked Controllers"},
				PlayArea: []string{"Seated", "Standing", "Room-Scale"},
			},
			ReleaseDate: "2020-03-23",
		},
		{
			ID:          105600,
			Developers:  []string{"Re-Logic"},
			Publishers:  []string{"Re-Logic"},
			Genres:      []string{"Action", "Adventure"},
			Tags:        []string{"Sandbox", "Survival", "2D"},
			ReleaseDate: "2011-05-16",
		},
		{
			ID:          413150,
			Developers:  []string{"ConcernedApe"},
			Publishers:  []string{"ConcernedApe"},
			Genres:      []string{"Simulation", "RPG"},
			Tags:        []string{"Farming Sim", "Pixel Graphics", "Relaxing"},
			ReleaseDate: "2016-02-26",
		},
	}
}

func completionRecords() []domain.CompletionRecord {
	return []domain.CompletionRecord{
		{ID: 70, Main: 720, Extras: 780, Completionist: 900},
		{ID: 400, Main: 180, Extras: 330, Completionist: 570},
		{ID: 620, Main: 510, Extras: 660, Completionist: 1290},
		{ID: 546560, Main: 720, Extras: 840, Completionist: 1020},
		{ID: 105600, Main: 3120, Extras: 6300, CompletionistImputed: true, Completionist: 12180},
		{ID: 413150, Main: 3180, Extras: 5760, Completionist: 9480},
	}
}
