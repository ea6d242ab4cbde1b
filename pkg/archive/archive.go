// Package archive bundles exported artifacts into a compressed tarball.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mholt/archives"

	"github.com/glorpus-work/apodex/pkg/fsutil"
)

// Bundler writes .tar.gz bundles of files from one directory.
type Bundler struct {
	format archives.CompressedArchive
}

// NewBundler creates a gzip-compressed tar bundler.
func NewBundler() *Bundler {
	return &Bundler{
		format: archives.CompressedArchive{
			Compression: archives.Gz{},
			Archival:    archives.Tar{},
		},
	}
}

// Bundle archives the named files of dir into dest. Entries are stored under their
// base names. dest is replaced only once the archive is complete.
func (b *Bundler) Bundle(ctx context.Context, dir string, names []string, dest string) error {
	if len(names) == 0 {
		return fmt.Errorf("no files to bundle")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	sources := make(map[string]string, len(names))
	for _, name := range names {
		if !fsutil.IsBaseName(name) {
			return fmt.Errorf("invalid file name %q", name)
		}
		sources[filepath.Join(absDir, name)] = name
	}

	files, err := archives.FilesFromDisk(ctx, nil, sources)
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].NameInArchive < files[j].NameInArchive })

	if err := fsutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", dest, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := b.format.Archive(ctx, tmp, files); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions for %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return fmt.Errorf("failed to move archive to %s: %w", dest, err)
	}
	return nil
}

// List returns the regular files stored in the archive at path, sorted.
func (b *Bundler) List(ctx context.Context, path string) ([]string, error) {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	var names []string
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	sort.Strings(names)
	return names, nil
}
