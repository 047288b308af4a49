package kbase

import (
	"context"
	"fmt"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore reads objects from the Workspace service and saves them
// through DataFileUtil.
type ObjectStore struct {
	workspace *Client
	dfu       *Client
}

type objectSpec struct {
	Ref      string   `json:"ref"`
	Included []string `json:"included,omitempty"`
}

type getObjectsParams struct {
	Objects []objectSpec `json:"objects"`
}

type getObjectsResult struct {
	Data []domain.ObjectData `json:"data"`
}

type saveObjectsParams struct {
	ID      int64                   `json:"id"`
	Objects []domain.ObjectSaveData `json:"objects"`
}

// NewObjectStore creates an object store over the given service clients.
func NewObjectStore(workspace, dfu *Client) *ObjectStore {
	return &ObjectStore{workspace: workspace, dfu: dfu}
}

// GetObjects fetches all refs in one get_objects2 call.
func (s *ObjectStore) GetObjects(ctx context.Context, refs, included []string) ([]domain.ObjectData, error) {
	params := getObjectsParams{Objects: make([]objectSpec, len(refs))}
	for i, ref := range refs {
		params.Objects[i] = objectSpec{Ref: ref, Included: included}
	}

	var result getObjectsResult
	if err := s.workspace.Call(ctx, "get_objects2", []any{params}, &result); err != nil {
		return nil, err
	}
	if len(result.Data) != len(refs) {
		return nil, fmt.Errorf("get_objects2 returned %d objects for %d refs", len(result.Data), len(refs))
	}
	return result.Data, nil
}

// SaveObjects saves the batch in one save_objects call.
func (s *ObjectStore) SaveObjects(
	ctx context.Context,
	wsID int64,
	objects []domain.ObjectSaveData,
) ([]domain.ObjectInfo, error) {
	var infos []domain.ObjectInfo
	params := saveObjectsParams{ID: wsID, Objects: objects}
	if err := s.dfu.Call(ctx, "save_objects", []any{params}, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}
