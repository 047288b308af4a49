package driving

import (
	"context"

	"github.com/custodia-labs/treeutils/internal/core/domain"
)

// TreeService fetches, saves and exports phylogenetic tree objects.
type TreeService interface {
	// GetTrees returns the tree objects named by params.TreeRefs, in order.
	GetTrees(ctx context.Context, params GetTreesParams) ([]domain.ObjectData, error)

	// SaveTrees validates every candidate and saves the batch.
	// Nothing is saved if any candidate fails validation.
	SaveTrees(ctx context.Context, params SaveTreesParams) ([]domain.ObjectInfo, error)

	// TreeToNewickFile writes a stored tree's newick string to a file.
	TreeToNewickFile(ctx context.Context, params TreeToNewickFileParams) (*TreeToNewickFileOutput, error)

	// ExportTreeNewick packages a stored tree's newick file for download.
	ExportTreeNewick(ctx context.Context, params ExportTreeParams) (*ExportTreeOutput, error)

	// Status reports the service health record.
	Status(ctx context.Context) domain.Status
}

// GetTreesParams holds the parameters of get_trees.
type GetTreesParams struct {
	// TreeRefs lists workspace references. Required.
	TreeRefs []string `json:"tree_refs"`

	// IncludedFields restricts the returned data to these fields.
	IncludedFields []string `json:"included_fields,omitempty"`
}

// SaveTreesParams holds the parameters of save_trees.
type SaveTreesParams struct {
	// WSID is the target workspace id. Required.
	WSID int64 `json:"ws_id"`

	// Trees are the objects to save. Required.
	Trees []domain.ObjectSaveData `json:"trees"`
}

// TreeToNewickFileParams holds the parameters of tree_to_newick_file.
type TreeToNewickFileParams struct {
	DestinationDir string `json:"destination_dir"`
	InputRef       string `json:"input_ref"`
}

// TreeToNewickFileOutput is the result of tree_to_newick_file.
type TreeToNewickFileOutput struct {
	FilePath string `json:"file_path"`
}

// ExportTreeParams holds the parameters of export_tree_newick.
type ExportTreeParams struct {
	InputRef string `json:"input_ref"`
}

// ExportTreeOutput is the result of export_tree_newick.
type ExportTreeOutput struct {
	// ShockID is the opaque package identifier.
	ShockID string `json:"shock_id"`
}
