package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive subdirectories inside the drop folder. Handled files never
// leave the drop tree, so the move is a same-filesystem rename.
const (
	processedDir = "processed"
	failedDir    = "failed"
)

// archiveFile moves a handled drop file into subdir next to it, prefixing
// the name with a UTC timestamp so repeated drops of the same filename
// keep distinct archive entries. Returns the destination path.
func archiveFile(path, subdir string) (string, error) {
	dir := filepath.Join(filepath.Dir(path), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	name := time.Now().UTC().Format("20060102T150405.000000000") + "-" + filepath.Base(path)
	dest := filepath.Join(dir, name)
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archive %s: %w", filepath.Base(path), err)
	}
	return dest, nil
}
