// Package packager provides a local driven.PackageExporter that writes
// zip archives.
package packager

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
	"github.com/custodia-labs/treeutils/internal/logger"
)

// Ensure ZipExporter implements the interface.
var _ driven.PackageExporter = (*ZipExporter)(nil)

// ZipExporter zips directories into <dir>/<id>.zip.
type ZipExporter struct {
	dir string
}

// NewZipExporter creates an exporter writing archives under dir.
// If dir is empty, defaults to ~/.treeutils/packages.
func NewZipExporter(dir string) (*ZipExporter, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".treeutils", "packages")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating packages directory: %w", err)
	}
	return &ZipExporter{dir: dir}, nil
}

// Path returns the archive path for a package id.
func (e *ZipExporter) Path(id string) string {
	return filepath.Join(e.dir, id+".zip")
}

// PackageForDownload archives every regular file under src and returns
// the archive id. refs are not recorded; local archives carry no
// provenance.
func (e *ZipExporter) PackageForDownload(ctx context.Context, src string, refs []string) (string, error) {
	id := uuid.NewString()
	path := e.Path(id)

	if err := e.write(ctx, src, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("packaging %s: %w", src, err)
	}
	logger.Debug("packaged %s (%d refs) into %s", src, len(refs), path)
	return id, nil
}

func (e *ZipExporter) write(ctx context.Context, src, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		zw.Close()
		return walkErr
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
