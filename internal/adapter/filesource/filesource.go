// Package filesource reads documents from a local data directory.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-snapshot-service/internal/source"
)

// Source serves documents from a directory tree.
type Source struct {
	root fs.FS
	dir  string
}

// New returns a Source rooted at dir.
func New(dir string) *Source {
	return &Source{root: os.DirFS(dir), dir: dir}
}

// NewFS returns a Source over an arbitrary file system.
func NewFS(fsys fs.FS) *Source {
	return &Source{root: fsys, dir: "."}
}

// Fetch reads the named document. Missing files map to source.ErrNotFound.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.root, filepath.ToSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, source.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s from %s: %w", name, s.dir, err)
	}
	return data, nil
}
