// Package storage persists downloaded payloads as artifact files.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/fsutil"
)

// DirPersister writes each artifact as a flat file in one directory.
type DirPersister struct {
	dir string
}

// NewDirPersister creates a persister rooted at dir. An empty dir means the working directory.
func NewDirPersister(dir string) *DirPersister {
	if dir == "" {
		dir = "."
	}
	return &DirPersister{dir: dir}
}

// Dir returns the output directory.
func (p *DirPersister) Dir() string {
	return p.dir
}

// Path returns the path an artifact called name is written to.
func (p *DirPersister) Path(name string) string {
	return filepath.Join(p.dir, name)
}

// Persist atomically writes data under name, replacing any artifact of the same name.
// Every failure wraps errors.ErrPersist.
func (p *DirPersister) Persist(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Mark(errors.ErrPersist, err)
	}
	if !fsutil.IsBaseName(name) {
		return fmt.Errorf("%w: %w: artifact name %q", errors.ErrPersist, errors.ErrInvalidPath, name)
	}
	if err := fsutil.WriteFileAtomic(p.Path(name), data, fsutil.FileModeDefault); err != nil {
		return errors.Mark(errors.ErrPersist, err)
	}
	return nil
}
