package fomap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension is the extension of map files.
const DefaultExtension = ".fomap"

// FindMaps returns the regular files directly inside dir whose extension
// is ext, sorted by name. Subdirectories are not searched. Symbolic links
// are followed when deciding whether an entry is a regular file.
func FindMaps(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	var maps []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ext {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		maps = append(maps, path)
	}
	return maps, nil
}
