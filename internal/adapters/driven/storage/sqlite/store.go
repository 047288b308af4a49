package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a SQLite database holding local workspaces and their
// versioned objects.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.treeutils/data/objects.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".treeutils", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "objects.db")

	// WAL mode lets readers proceed while a save is in progress
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ObjectStore returns an ObjectStore backed by this store.
// user is recorded as saved_by on every saved version.
func (s *Store) ObjectStore(user string) driven.ObjectStore {
	return &objectStore{store: s, user: user, now: time.Now}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Object Store ====================

// objectStore implements driven.ObjectStore.
type objectStore struct {
	store *Store
	user  string
	now   func() time.Time
}

var _ driven.ObjectStore = (*objectStore)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetObjects retrieves objects by reference, latest version unless the
// reference names one.
func (s *objectStore) GetObjects(ctx context.Context, refs, included []string) ([]domain.ObjectData, error) {
	out := make([]domain.ObjectData, 0, len(refs))
	for _, ref := range refs {
		r, err := domain.ParseRef(ref)
		if err != nil {
			return nil, err
		}

		wsID, err := resolveWorkspace(ctx, s.store.db, r)
		if err != nil {
			return nil, fmt.Errorf("workspace in %s: %w", ref, err)
		}
		objID, _, err := resolveObject(ctx, s.store.db, wsID, r)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", ref, err)
		}

		obj, err := s.getVersion(ctx, wsID, objID, r.Version)
		if err != nil {
			return nil, fmt.Errorf("version in %s: %w", ref, err)
		}
		obj.Data = domain.Project(obj.Data, included)
		out = append(out, *obj)
	}
	return out, nil
}

// SaveObjects saves the batch in a single transaction.
func (s *objectStore) SaveObjects(
	ctx context.Context,
	wsID int64,
	objects []domain.ObjectSaveData,
) ([]domain.ObjectInfo, error) {
	if wsID <= 0 {
		return nil, fmt.Errorf("workspace id %d: %w", wsID, domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	wsName := fmt.Sprintf("local_%d", wsID)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, wsID, wsName, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	saveDate := domain.FormatSaveDate(s.now())
	infos := make([]domain.ObjectInfo, 0, len(objects))
	for i, o := range objects {
		info, err := s.saveOne(ctx, tx, wsID, o, saveDate)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		info.Workspace = wsName
		infos = append(infos, *info)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return infos, nil
}

// saveOne writes a new version of one object inside tx.
func (s *objectStore) saveOne(
	ctx context.Context,
	tx *sql.Tx,
	wsID int64,
	o domain.ObjectSaveData,
	saveDate string,
) (*domain.ObjectInfo, error) {
	if o.Data == nil {
		return nil, domain.ErrMissingParameter
	}
	if o.Type == "" {
		return nil, fmt.Errorf("no type: %w", domain.ErrInvalidInput)
	}
	if o.Name != "" && !domain.ValidObjectName(o.Name) {
		return nil, fmt.Errorf("illegal name %q: %w", o.Name, domain.ErrInvalidInput)
	}
	if o.ObjID < 0 {
		return nil, fmt.Errorf("illegal object id %d: %w", o.ObjID, domain.ErrInvalidInput)
	}

	objID, name, err := resolveObject(ctx, tx, wsID, domain.ObjectRef{ObjID: o.ObjID, Name: o.Name})
	switch {
	case errors.Is(err, domain.ErrNotFound) && o.ObjID == 0:
		objID, name, err = s.createObject(ctx, tx, wsID, o.Name)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("no object with id %d: %w", o.ObjID, err)
	}

	dataJSON, err := json.Marshal(o.Data)
	if err != nil {
		return nil, fmt.Errorf("marshalling data: %w", err)
	}
	sum, size, err := domain.Checksum(o.Data)
	if err != nil {
		return nil, err
	}
	metaJSON, err := json.Marshal(o.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshalling meta: %w", err)
	}

	var version int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM object_versions WHERE ws_id = ? AND obj_id = ?
	`, wsID, objID).Scan(&version); err != nil {
		return nil, fmt.Errorf("getting next version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO object_versions (ws_id, obj_id, version, type, data, save_date, saved_by, checksum, size, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, wsID, objID, version, o.Type, string(dataJSON), saveDate, s.user, sum, size, string(metaJSON)); err != nil {
		return nil, fmt.Errorf("saving object version: %w", err)
	}

	return &domain.ObjectInfo{
		ObjID:    objID,
		Name:     name,
		Type:     o.Type,
		SaveDate: saveDate,
		Version:  version,
		SavedBy:  s.user,
		WSID:     wsID,
		Checksum: sum,
		Size:     size,
		Meta:     o.Meta,
	}, nil
}

// createObject allocates the next object id in the workspace.
func (s *objectStore) createObject(ctx context.Context, tx *sql.Tx, wsID int64, name string) (int64, string, error) {
	var objID int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(obj_id), 0) + 1 FROM objects WHERE ws_id = ?
	`, wsID).Scan(&objID); err != nil {
		return 0, "", fmt.Errorf("getting next object id: %w", err)
	}
	if name == "" {
		generated, err := domain.AutoName(objID, func(candidate string) (bool, error) {
			var n int
			err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM objects WHERE ws_id = ? AND name = ?
			`, wsID, candidate).Scan(&n)
			return n > 0, err
		})
		if err != nil {
			return 0, "", fmt.Errorf("choosing object name: %w", err)
		}
		name = generated
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO objects (ws_id, obj_id, name) VALUES (?, ?, ?)
	`, wsID, objID, name); err != nil {
		return 0, "", fmt.Errorf("creating object: %w", err)
	}
	return objID, name, nil
}

// getVersion loads one version; version 0 means latest.
func (s *objectStore) getVersion(ctx context.Context, wsID, objID, version int64) (*domain.ObjectData, error) {
	query := `
		SELECT v.version, v.type, v.data, v.save_date, v.saved_by, v.checksum, v.size, v.meta, o.name, w.name
		FROM object_versions v
		JOIN objects o ON o.ws_id = v.ws_id AND o.obj_id = v.obj_id
		JOIN workspaces w ON w.id = v.ws_id
		WHERE v.ws_id = ? AND v.obj_id = ?`
	args := []any{wsID, objID}
	if version > 0 {
		query += " AND v.version = ?"
		args = append(args, version)
	} else {
		query += " ORDER BY v.version DESC LIMIT 1"
	}

	info := domain.ObjectInfo{ObjID: objID, WSID: wsID}
	var dataJSON string
	var metaJSON sql.NullString
	err := s.store.db.QueryRowContext(ctx, query, args...).Scan(
		&info.Version, &info.Type, &dataJSON, &info.SaveDate, &info.SavedBy,
		&info.Checksum, &info.Size, &metaJSON, &info.Name, &info.Workspace)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning object: %w", err)
	}

	var data domain.TreeData
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling data: %w", err)
	}
	if metaJSON.Valid && metaJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metaJSON.String), &info.Meta); err != nil {
			return nil, fmt.Errorf("unmarshaling meta: %w", err)
		}
	}

	return &domain.ObjectData{Data: data, Info: info}, nil
}

// resolveWorkspace maps a reference's workspace part to an id.
func resolveWorkspace(ctx context.Context, q querier, r domain.ObjectRef) (int64, error) {
	var id int64
	var err error
	if r.WSID > 0 {
		err = q.QueryRowContext(ctx, "SELECT id FROM workspaces WHERE id = ?", r.WSID).Scan(&id)
	} else {
		err = q.QueryRowContext(ctx, "SELECT id FROM workspaces WHERE name = ?", r.Workspace).Scan(&id)
	}
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("looking up workspace: %w", err)
	}
	return id, nil
}

// resolveObject maps a reference's object part to an id and name.
func resolveObject(ctx context.Context, q querier, wsID int64, r domain.ObjectRef) (int64, string, error) {
	var id int64
	var name string
	var err error
	switch {
	case r.ObjID > 0:
		err = q.QueryRowContext(ctx,
			"SELECT obj_id, name FROM objects WHERE ws_id = ? AND obj_id = ?", wsID, r.ObjID).Scan(&id, &name)
	case r.Name != "":
		err = q.QueryRowContext(ctx,
			"SELECT obj_id, name FROM objects WHERE ws_id = ? AND name = ?", wsID, r.Name).Scan(&id, &name)
	default:
		return 0, "", domain.ErrNotFound
	}
	if err == sql.ErrNoRows {
		return 0, "", domain.ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("looking up object: %w", err)
	}
	return id, name, nil
}
