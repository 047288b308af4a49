package services

import (
	"context"

	"github.com/custodia-labs/treeutils/internal/core/domain"
)

// mockObjectStore records calls and returns canned results.
type mockObjectStore struct {
	objects  []domain.ObjectData
	infos    []domain.ObjectInfo
	err      error
	gets     [][]string
	included [][]string
	saved    [][]domain.ObjectSaveData
}

func (m *mockObjectStore) GetObjects(_ context.Context, refs, included []string) ([]domain.ObjectData, error) {
	m.gets = append(m.gets, refs)
	m.included = append(m.included, included)
	return m.objects, m.err
}

func (m *mockObjectStore) SaveObjects(
	_ context.Context,
	_ int64,
	objects []domain.ObjectSaveData,
) ([]domain.ObjectInfo, error) {
	m.saved = append(m.saved, objects)
	return m.infos, m.err
}

// mockPackageExporter returns a fixed id or error.
type mockPackageExporter struct {
	id   string
	err  error
	dirs []string
	refs [][]string
}

func (m *mockPackageExporter) PackageForDownload(_ context.Context, dir string, refs []string) (string, error) {
	m.dirs = append(m.dirs, dir)
	m.refs = append(m.refs, refs)
	return m.id, m.err
}
