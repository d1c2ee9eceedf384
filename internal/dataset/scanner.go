// File path: internal/dataset/scanner.go
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".webp": {},
}

// IsImage reports whether the filename carries a recognized image extension,
// case-insensitively.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ScanImages lists the image files directly inside dir, sorted alphabetically.
// A missing directory yields an empty listing.
func ScanImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ScanInbox lists the files pending review. The inbox is the staging area:
// its contents are exactly what awaits a decision, so the index is not
// consulted here. Files leave the inbox only through the curator's move.
func (l *Layout) ScanInbox() ([]string, error) {
	return ScanImages(l.Inbox)
}
