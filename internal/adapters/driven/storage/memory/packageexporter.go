package memory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
)

// Ensure PackageExporter implements the interface.
var _ driven.PackageExporter = (*PackageExporter)(nil)

// Package is a snapshot of a packaged directory.
type Package struct {
	ID   string
	Dir  string
	Refs []string

	// Files maps paths relative to Dir to their contents.
	Files map[string][]byte
}

// PackageExporter is an in-memory implementation of driven.PackageExporter.
// It reads the directory at packaging time and keeps the contents.
type PackageExporter struct {
	mu       sync.RWMutex
	packages map[string]Package
}

// NewPackageExporter creates a new in-memory package exporter.
func NewPackageExporter() *PackageExporter {
	return &PackageExporter{
		packages: make(map[string]Package),
	}
}

// PackageForDownload snapshots every regular file under dir.
func (e *PackageExporter) PackageForDownload(_ context.Context, dir string, refs []string) (string, error) {
	files := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[rel] = data
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("packaging %s: %w", dir, err)
	}

	pkg := Package{
		ID:    uuid.NewString(),
		Dir:   dir,
		Refs:  append([]string(nil), refs...),
		Files: files,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.packages[pkg.ID] = pkg
	return pkg.ID, nil
}

// Get returns a previously created package.
func (e *PackageExporter) Get(id string) (*Package, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pkg, ok := e.packages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &pkg, nil
}

// Count returns the number of packages created.
func (e *PackageExporter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.packages)
}
