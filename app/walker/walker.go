package walker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrInvalidRoot = errors.New("root path is not a directory")

// Common non-data files that exports tend to carry along.
var skipFiles = map[string]bool{
	".DS_Store":  true,
	"Thumbs.db":  true,
	".gitignore": true,
	".gitkeep":   true,
}

// Directories that never contain export data.
var skipDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	".venv":        true,
}

// Extensions that are still worth visiting on dot-files.
var dataExtensions = map[string]bool{
	".json": true,
	".csv":  true,
}

// Walker yields every data file under a root directory in a deterministic
// order (lexicographic per directory level), so record IDs derived from
// traversal are reproducible across runs.
type Walker struct {
	rootPath string
}

func NewWalker(rootPath string) *Walker {
	return &Walker{rootPath: rootPath}
}

// Run walks the tree and calls fn for each file. A non-nil error from fn
// stops the walk; directory read failures below the root are logged and
// skipped.
func (w *Walker) Run(fn func(path string) error) error {
	info, err := os.Stat(w.rootPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRoot, w.rootPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidRoot, w.rootPath)
	}

	slog.Info("Walking directory tree", "root", w.rootPath)

	count := 0
	err = w.walkDir(w.rootPath, fn, &count)
	if err != nil {
		return err
	}

	slog.Info("Traversal complete", "files", count)
	return nil
}

func (w *Walker) walkDir(dir string, fn func(path string) error, count *int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Failed to read directory, skipping", "dir", dir, "error", err)
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()

		if skipFiles[name] {
			continue
		}

		if entry.IsDir() {
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				continue
			}
			if err := w.walkDir(filepath.Join(dir, name), fn, count); err != nil {
				return err
			}
			continue
		}

		// Ignore symlinks and other special files.
		if !entry.Type().IsRegular() {
			continue
		}

		// Dot-files are noise unless they carry a recognized data extension.
		if strings.HasPrefix(name, ".") && !dataExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		*count++
		if err := fn(filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	return nil
}
