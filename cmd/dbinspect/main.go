// Package main provides a read-only inspection tool for the badger snapshot.
//
// Usage:
//
//	DATA_PATH=~/gameshelf go run ./cmd/dbinspect          # summary
//	DATA_PATH=~/gameshelf go run ./cmd/dbinspect 620      # dump one game
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"encoding/json/v2"
	"encoding/json/jsontext"

	"github.com/dgraph-io/badger/v4"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/gameshelf")
	}
	dbPath := filepath.Join(dataPath, "snapshot")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if len(os.Args) > 1 {
		dumpGame(db, os.Args[1])
		return
	}

	fmt.Println("=== Snapshot Inspection ===")
	fmt.Println()

	gameCount := 0
	scraped := 0
	withCompletion := 0
	withParent := 0
	byClass := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = []byte("game:")
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Seek([]byte("game:")); it.ValidForPrefix([]byte("game:")); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var game domain.Game
				if err := json.Unmarshal(val, &game); err != nil {
					return err
				}

				gameCount++
				byClass[game.Class.String()]++
				if game.LastStoreScrape > 0 {
					scraped++
				}
				if !game.Completion.IsZero() {
					withCompletion++
				}
				if game.ParentID > 0 {
					withParent++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Store-wide state lives under its own key.
		item, err := txn.Get([]byte("store:meta"))
		if err == badger.ErrKeyNotFound {
			fmt.Println("No store metadata key (empty snapshot)")
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var meta struct {
				ActiveLanguage       string `json:"active_language"`
				LastCompletionUpdate int64  `json:"last_completion_update"`
			}
			if err := json.Unmarshal(val, &meta); err != nil {
				return err
			}
			fmt.Printf("Active language:        %s\n", meta.ActiveLanguage)
			fmt.Printf("Last completion update: %d\n", meta.LastCompletionUpdate)
			return nil
		})
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("Games:           %d\n", gameCount)
	fmt.Printf("Scraped:         %d\n", scraped)
	fmt.Printf("With completion: %d\n", withCompletion)
	fmt.Printf("With parent:     %d\n", withParent)
	fmt.Println()
	fmt.Println("By classification:")
	for class, count := range byClass {
		fmt.Printf("  %-12s %d\n", class, count)
	}
}

// dumpGame prints one game record as indented JSON.
func dumpGame(db *badger.DB, id string) {
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("game:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var game domain.Game
			if err := json.Unmarshal(val, &game); err != nil {
				return err
			}
			data, err := json.Marshal(&game, jsontext.WithIndent("  "))
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		log.Fatalf("No game with id %s", id)
	}
	if err != nil {
		log.Fatalf("Failed to read game %s: %v", id, err)
	}
}
