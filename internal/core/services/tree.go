package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/logger"
	"github.com/custodia-labs/treeutils/internal/newick"
)

// Ensure TreeService implements the interface.
var _ driving.TreeService = (*TreeService)(nil)

// newickExt is the file extension of exported tree files.
const newickExt = ".newick"

// BuildInfo identifies the running build in status reports.
type BuildInfo struct {
	Version       string
	GitURL        string
	GitCommitHash string
}

// TreeService fetches, saves and exports tree objects.
// It holds no mutable state beyond what is captured at construction.
type TreeService struct {
	objects  driven.ObjectStore
	exporter driven.PackageExporter
	scratch  string
	build    BuildInfo
}

// NewTreeService creates a new tree service.
// scratch is the directory under which export packages are staged.
func NewTreeService(
	objects driven.ObjectStore,
	exporter driven.PackageExporter,
	scratch string,
	build BuildInfo,
) *TreeService {
	return &TreeService{
		objects:  objects,
		exporter: exporter,
		scratch:  scratch,
		build:    build,
	}
}

// GetTrees returns the tree objects named by params.TreeRefs.
func (s *TreeService) GetTrees(ctx context.Context, params driving.GetTreesParams) ([]domain.ObjectData, error) {
	logger.Info("Starting 'get_trees' with params: %+v", params)

	if params.TreeRefs == nil {
		return nil, missing("tree_refs")
	}
	if s.objects == nil {
		return nil, domain.ErrNotImplemented
	}

	return s.objects.GetObjects(ctx, params.TreeRefs, params.IncludedFields)
}

// SaveTrees validates every candidate and saves the batch in one call.
func (s *TreeService) SaveTrees(ctx context.Context, params driving.SaveTreesParams) ([]domain.ObjectInfo, error) {
	logger.Info("Starting 'save_trees' into workspace %d with %d objects", params.WSID, len(params.Trees))

	var absent []string
	if params.WSID == 0 {
		absent = append(absent, "ws_id")
	}
	if params.Trees == nil {
		absent = append(absent, "trees")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	if s.objects == nil {
		return nil, domain.ErrNotImplemented
	}

	trees := make([]domain.ObjectSaveData, 0, len(params.Trees))
	for i, t := range params.Trees {
		checked, err := checkTree(i, t)
		if err != nil {
			return nil, err
		}
		trees = append(trees, checked)
	}

	return s.objects.SaveObjects(ctx, params.WSID, trees)
}

// checkTree validates one save candidate and returns a copy stamped with
// the tree type. The caller's data is not modified.
func checkTree(index int, t domain.ObjectSaveData) (domain.ObjectSaveData, error) {
	if t.Data == nil {
		return t, &domain.MissingParameterError{Keys: []string{"data"}, Index: index}
	}
	if t.Type != "" && !domain.IsTreeType(t.Type) {
		return t, fmt.Errorf("object %d has type %q: %w", index, t.Type, domain.ErrInvalidObjectType)
	}

	tree, ok := t.Data.Newick()
	if !ok {
		return t, &domain.MissingTreeFieldError{Index: index}
	}
	if err := newick.Validate(tree); err != nil {
		if _, isString := t.Data[domain.TreeField].(string); !isString {
			tree = fmt.Sprintf("%v", t.Data[domain.TreeField])
		}
		return t, &domain.InvalidNewickError{Index: index, Tree: tree, Cause: err}
	}

	if t.Type == "" {
		t.Type = domain.TreeType
	}
	t.Data = t.Data.Clone()
	return t, nil
}

// TreeToNewickFile writes the referenced tree's newick string to
// <destination_dir>/<object name>.newick.
func (s *TreeService) TreeToNewickFile(
	ctx context.Context,
	params driving.TreeToNewickFileParams,
) (*driving.TreeToNewickFileOutput, error) {
	logger.Info("Starting 'tree_to_newick_file' with params: %+v", params)

	var absent []string
	if params.DestinationDir == "" {
		absent = append(absent, "destination_dir")
	}
	if params.InputRef == "" {
		absent = append(absent, "input_ref")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}

	obj, err := s.fetchTree(ctx, params.InputRef)
	if err != nil {
		return nil, err
	}
	path, err := writeTreeFile(obj, params.DestinationDir)
	if err != nil {
		return nil, err
	}
	return &driving.TreeToNewickFileOutput{FilePath: path}, nil
}

// ExportTreeNewick stages the referenced tree's newick file in a fresh
// scratch directory and packages that directory for download.
func (s *TreeService) ExportTreeNewick(
	ctx context.Context,
	params driving.ExportTreeParams,
) (*driving.ExportTreeOutput, error) {
	logger.Info("Starting 'export_tree_newick' with params: %+v", params)

	if params.InputRef == "" {
		return nil, missing("input_ref")
	}
	if s.exporter == nil {
		return nil, domain.ErrNotImplemented
	}

	obj, err := s.fetchTree(ctx, params.InputRef)
	if err != nil {
		return nil, err
	}

	packageDir := filepath.Join(s.scratch, obj.Info.Name+"_"+uuid.NewString())
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	path, err := writeTreeFile(obj, packageDir)
	if err != nil {
		os.RemoveAll(packageDir) //nolint:errcheck
		return nil, err
	}
	logger.Debug("staged %s for export", path)

	shockID, err := s.exporter.PackageForDownload(ctx, packageDir, []string{params.InputRef})
	if err != nil {
		os.RemoveAll(packageDir) //nolint:errcheck
		return nil, err
	}
	return &driving.ExportTreeOutput{ShockID: shockID}, nil
}

// Status reports the static health record.
func (s *TreeService) Status(_ context.Context) domain.Status {
	return domain.Status{
		State:         "OK",
		Message:       "",
		Version:       s.build.Version,
		GitURL:        s.build.GitURL,
		GitCommitHash: s.build.GitCommitHash,
	}
}

// fetchTree retrieves a single object and checks that it is a tree.
func (s *TreeService) fetchTree(ctx context.Context, ref string) (*domain.ObjectData, error) {
	if s.objects == nil {
		return nil, domain.ErrNotImplemented
	}

	objs, err := s.objects.GetObjects(ctx, []string{ref}, nil)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("object %s: %w", ref, domain.ErrNotFound)
	}

	obj := objs[0]
	if !domain.IsTreeType(obj.Info.Type) {
		return nil, fmt.Errorf("%s (%s): %w", ref, obj.Info.Type, domain.ErrNotATree)
	}
	if obj.Info.Name == "" || obj.Info.Name != filepath.Base(obj.Info.Name) || obj.Info.Name == ".." {
		return nil, fmt.Errorf("object name %q cannot be used as a file name: %w", obj.Info.Name, domain.ErrInvalidInput)
	}
	return &obj, nil
}

// writeTreeFile writes the tree string verbatim, with no added newline.
func writeTreeFile(obj *domain.ObjectData, dir string) (string, error) {
	tree, ok := obj.Data.Newick()
	if !ok {
		return "", fmt.Errorf("stored object %s: %w", obj.Info.Name, domain.ErrMissingTreeField)
	}

	path := filepath.Join(dir, obj.Info.Name+newickExt)
	if err := os.WriteFile(path, []byte(tree), 0o644); err != nil {
		return "", fmt.Errorf("writing newick file: %w", err)
	}
	return path, nil
}

func missing(keys ...string) error {
	sort.Strings(keys)
	return &domain.MissingParameterError{Keys: keys, Index: -1}
}
