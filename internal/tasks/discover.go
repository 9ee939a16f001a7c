package tasks

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// ListSources returns the Markdown filenames directly inside dir, sorted
// lexicographically by byte value ("10-y.md" sorts before "2-x.md").
// Symlinks are followed; subdirectories, dangling links and other
// non-regular files are skipped.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), SourceExt) {
			continue
		}
		if !entry.Type().IsRegular() {
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				slog.Debug("Skipping non-regular task document", logfields.File(entry.Name()))
				continue
			}
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the sorted Markdown documents of dir.
func Load(dir string) ([]Document, error) {
	names, err := ListSources(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		slog.Debug("Loaded task document", logfields.File(name), slog.Int("bytes", len(content)))
		docs = append(docs, Document{Filename: name, Content: content})
	}
	return docs, nil
}
