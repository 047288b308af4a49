package driven

import (
	"context"

	"github.com/custodia-labs/treeutils/internal/core/domain"
)

// ObjectStore reads and writes versioned objects in a workspace.
// Backed by the KBase Workspace service or a local SQLite database.
type ObjectStore interface {
	// GetObjects retrieves the objects named by refs, in order.
	// If included is non-empty, each object's data is projected to
	// exactly those fields.
	GetObjects(ctx context.Context, refs []string, included []string) ([]domain.ObjectData, error)

	// SaveObjects saves objects into the workspace with the given id and
	// returns one info record per object, in input order.
	SaveObjects(ctx context.Context, wsID int64, objects []domain.ObjectSaveData) ([]domain.ObjectInfo, error)
}
