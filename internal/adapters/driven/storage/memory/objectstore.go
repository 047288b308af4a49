package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory, versioned implementation of driven.ObjectStore.
// Workspaces are created on first save and named "local_<id>".
type ObjectStore struct {
	mu         sync.RWMutex
	user       string
	workspaces map[int64]*workspace
	now        func() time.Time
}

type workspace struct {
	name    string
	objects []*object // index is objid-1
	byName  map[string]*object
}

type checksum struct {
	sum  string
	size int64
}

type object struct {
	id       int64
	name     string
	versions []domain.ObjectData
}

// NewObjectStore creates a new in-memory object store.
// user is recorded as saved_by on every saved version.
func NewObjectStore(user string) *ObjectStore {
	return &ObjectStore{
		user:       user,
		workspaces: make(map[int64]*workspace),
		now:        time.Now,
	}
}

// GetObjects retrieves objects by reference.
func (s *ObjectStore) GetObjects(_ context.Context, refs, included []string) ([]domain.ObjectData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ObjectData, 0, len(refs))
	for _, ref := range refs {
		version, err := s.resolve(ref)
		if err != nil {
			return nil, err
		}
		info := version.Info
		info.Meta = domain.CloneMeta(info.Meta)
		out = append(out, domain.ObjectData{
			Data: domain.Project(version.Data.Clone(), included),
			Info: info,
		})
	}
	return out, nil
}

// SaveObjects saves all objects or none.
func (s *ObjectStore) SaveObjects(
	_ context.Context,
	wsID int64,
	objects []domain.ObjectSaveData,
) ([]domain.ObjectInfo, error) {
	if wsID <= 0 {
		return nil, fmt.Errorf("workspace id %d: %w", wsID, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.workspaces[wsID]
	if err := validateBatch(ws, objects); err != nil {
		return nil, err
	}
	sums := make([]checksum, len(objects))
	for i, o := range objects {
		sum, size, err := domain.Checksum(o.Data)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		sums[i] = checksum{sum: sum, size: size}
	}
	if ws == nil {
		ws = &workspace{name: fmt.Sprintf("local_%d", wsID), byName: make(map[string]*object)}
		s.workspaces[wsID] = ws
	}

	saveDate := domain.FormatSaveDate(s.now())
	infos := make([]domain.ObjectInfo, 0, len(objects))
	for i, o := range objects {
		obj := ws.target(o)
		if obj == nil {
			obj = &object{id: int64(len(ws.objects) + 1), name: o.Name}
			if obj.name == "" {
				obj.name, _ = domain.AutoName(obj.id, func(name string) (bool, error) {
					return ws.byName[name] != nil, nil
				})
			}
			ws.objects = append(ws.objects, obj)
			ws.byName[obj.name] = obj
		}

		info := domain.ObjectInfo{
			ObjID:     obj.id,
			Name:      obj.name,
			Type:      o.Type,
			SaveDate:  saveDate,
			Version:   int64(len(obj.versions) + 1),
			SavedBy:   s.user,
			WSID:      wsID,
			Workspace: ws.name,
			Checksum:  sums[i].sum,
			Size:      sums[i].size,
			Meta:      domain.CloneMeta(o.Meta),
		}
		obj.versions = append(obj.versions, domain.ObjectData{Data: o.Data.Clone(), Info: info})
		info.Meta = domain.CloneMeta(info.Meta)
		infos = append(infos, info)
	}
	return infos, nil
}

// validateBatch checks every object before anything is written.
func validateBatch(ws *workspace, objects []domain.ObjectSaveData) error {
	for i, o := range objects {
		if o.Data == nil {
			return &domain.MissingParameterError{Keys: []string{"data"}, Index: i}
		}
		if o.Type == "" {
			return fmt.Errorf("object %d has no type: %w", i, domain.ErrInvalidInput)
		}
		if o.Name != "" && !domain.ValidObjectName(o.Name) {
			return fmt.Errorf("object %d has illegal name %q: %w", i, o.Name, domain.ErrInvalidInput)
		}
		if o.ObjID != 0 && (ws == nil || o.ObjID < 0 || o.ObjID > int64(len(ws.objects))) {
			return fmt.Errorf("object %d: no object with id %d: %w", i, o.ObjID, domain.ErrNotFound)
		}
	}
	return nil
}

// target returns the existing object a save overwrites, if any.
func (w *workspace) target(o domain.ObjectSaveData) *object {
	if o.ObjID > 0 {
		return w.objects[o.ObjID-1]
	}
	if o.Name != "" {
		return w.byName[o.Name]
	}
	return nil
}

// resolve finds the object version a reference points to (caller must hold lock).
func (s *ObjectStore) resolve(ref string) (*domain.ObjectData, error) {
	r, err := domain.ParseRef(ref)
	if err != nil {
		return nil, err
	}

	var ws *workspace
	if r.WSID > 0 {
		ws = s.workspaces[r.WSID]
	} else {
		for _, w := range s.workspaces {
			if w.name == r.Workspace {
				ws = w
				break
			}
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("workspace in %s: %w", ref, domain.ErrNotFound)
	}

	var obj *object
	if r.ObjID > 0 {
		if r.ObjID <= int64(len(ws.objects)) {
			obj = ws.objects[r.ObjID-1]
		}
	} else {
		obj = ws.byName[r.Name]
	}
	if obj == nil {
		return nil, fmt.Errorf("object %s: %w", ref, domain.ErrNotFound)
	}

	if r.Version == 0 {
		return &obj.versions[len(obj.versions)-1], nil
	}
	if r.Version > int64(len(obj.versions)) {
		return nil, fmt.Errorf("version in %s: %w", ref, domain.ErrNotFound)
	}
	return &obj.versions[r.Version-1], nil
}
