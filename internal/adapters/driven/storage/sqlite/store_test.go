package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treeutils/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "treeutils-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// setupObjectStore returns an object store with a fixed clock.
func setupObjectStore(t *testing.T, store *Store) *objectStore {
	t.Helper()
	objects, ok := store.ObjectStore("alice").(*objectStore)
	require.True(t, ok)
	objects.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return objects
}

func treeObject(name, newick string) domain.ObjectSaveData {
	return domain.ObjectSaveData{
		Type: domain.TreeType,
		Name: name,
		Data: domain.TreeData{"tree": newick, "type": "species"},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "objects.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, table := range []string{"workspaces", "objects", "object_versions"} {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	_, err = store.ObjectStore("alice").SaveObjects(context.Background(), 1,
		[]domain.ObjectSaveData{treeObject("t1", "(A,B);")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	objs, err := store.ObjectStore("alice").GetObjects(context.Background(), []string{"1/t1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(A,B);", objs[0].Data["tree"])
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.Close()
	assert.NoError(t, err)

	err = store.db.Ping()
	assert.Error(t, err)
}

// ==================== ObjectStore Tests ====================

func TestObjectStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	infos, err := objects.SaveObjects(ctx, 7, []domain.ObjectSaveData{
		treeObject("t1", "(A,B);"),
		treeObject("", "(C,D);"),
	})
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, int64(1), infos[0].ObjID)
	assert.Equal(t, "t1", infos[0].Name)
	assert.Equal(t, int64(1), infos[0].Version)
	assert.Equal(t, "alice", infos[0].SavedBy)
	assert.Equal(t, int64(7), infos[0].WSID)
	assert.Equal(t, "local_7", infos[0].Workspace)
	assert.Equal(t, "2026-01-02T03:04:05+0000", infos[0].SaveDate)
	assert.Equal(t, domain.TreeType, infos[0].Type)
	assert.Equal(t, "auto2", infos[1].Name)

	sum, size, err := domain.Checksum(domain.TreeData{"tree": "(A,B);", "type": "species"})
	require.NoError(t, err)
	assert.Equal(t, sum, infos[0].Checksum)
	assert.Equal(t, size, infos[0].Size)

	objs, err := objects.GetObjects(ctx, []string{"7/1", "local_7/auto2", "7/t1/1"}, nil)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, "(A,B);", objs[0].Data["tree"])
	assert.Equal(t, "(C,D);", objs[1].Data["tree"])
	assert.Equal(t, infos[0], objs[2].Info)
}

func TestObjectStore_Meta(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	withMeta := treeObject("t1", "(A,B);")
	withMeta.Meta = map[string]string{"source": "test"}
	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{withMeta, treeObject("t2", "C;")})
	require.NoError(t, err)

	objs, err := objects.GetObjects(ctx, []string{"1/t1", "1/t2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"source": "test"}, objs[0].Info.Meta)
	assert.Nil(t, objs[1].Info.Meta)
}

func TestObjectStore_Versions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("t1", "(A,B);")})
	require.NoError(t, err)
	infos, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("t1", "(A,C);")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), infos[0].Version)
	assert.Equal(t, int64(1), infos[0].ObjID)

	latest, err := objects.GetObjects(ctx, []string{"1/t1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(A,C);", latest[0].Data["tree"])
	assert.Equal(t, int64(2), latest[0].Info.Version)

	first, err := objects.GetObjects(ctx, []string{"1/t1/1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(A,B);", first[0].Data["tree"])

	byID := treeObject("", "(X,Y);")
	byID.ObjID = 1
	infos, err = objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{byID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), infos[0].Version)
	assert.Equal(t, "t1", infos[0].Name)
}

func TestObjectStore_IncludedFields(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("t1", "(A,B);")})
	require.NoError(t, err)

	objs, err := objects.GetObjects(ctx, []string{"1/t1"}, []string{"type"})
	require.NoError(t, err)
	assert.Equal(t, domain.TreeData{"type": "species"}, objs[0].Data)
}

func TestObjectStore_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("t1", "(A,B);")})
	require.NoError(t, err)

	for _, ref := range []string{"2/1", "1/2", "1/t2", "1/t1/5", "nows/t1"} {
		_, err := objects.GetObjects(ctx, []string{ref}, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound, ref)
	}

	_, err = objects.GetObjects(ctx, []string{"bad"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestObjectStore_SaveIsAtomic(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{
		treeObject("good", "(A,B);"),
		treeObject("bad name", "(A,B);"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "object 1")

	_, err = objects.GetObjects(ctx, []string{"1/good"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{{Type: domain.TreeType}})
	assert.ErrorIs(t, err, domain.ErrMissingParameter)

	missingID := treeObject("", "(A,B);")
	missingID.ObjID = 9
	_, err = objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{missingID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = objects.SaveObjects(ctx, 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestObjectStore_GeneratedNameAvoidsCollision(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	objects := setupObjectStore(t, store)
	ctx := context.Background()

	_, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("auto2", "A;")})
	require.NoError(t, err)

	infos, err := objects.SaveObjects(ctx, 1, []domain.ObjectSaveData{treeObject("", "B;")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), infos[0].ObjID)
	assert.Equal(t, "auto2-1", infos[0].Name)

	named, err := objects.GetObjects(ctx, []string{"1/auto2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), named[0].Info.ObjID)
	assert.Equal(t, "A;", named[0].Data["tree"])

	generated, err := objects.GetObjects(ctx, []string{"1/auto2-1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "B;", generated[0].Data["tree"])
}
