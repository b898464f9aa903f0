// Package dirscan lists files for the filterable file browser.
package dirscan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// Options controls a directory scan
type Options struct {
	Recursive  bool
	Extensions []string // ".sql", "csv"; empty matches every file
	Hidden     bool     // include dot files and dot directories
}

// Scan lists the regular files under root
func Scan(root string, opts Options) ([]models.FileEntry, error) {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	var entries []models.FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != root
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || (hidden && !opts.Hidden) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden && !opts.Hidden || !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if len(exts) > 0 && !exts[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, models.FileEntry{
			Name:      d.Name(),
			Directory: filepath.Dir(path),
			Extension: ext,
			Size:      info.Size(),
			Modified:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return entries, nil
}
