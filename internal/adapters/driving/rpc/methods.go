package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/core/services"
)

// methodFunc runs one method with its single params object.
type methodFunc func(ctx context.Context, params json.RawMessage) (any, []services.ParamWarning, error)

// methods returns the dispatch table, keyed by unqualified method name.
func (s *Server) methods() map[string]methodFunc {
	return map[string]methodFunc{
		"get_trees":           s.getTrees,
		"save_trees":          s.saveTrees,
		"tree_to_newick_file": s.treeToNewickFile,
		"export_tree_newick":  s.exportTreeNewick,
		"status":              s.status,
	}
}

func (s *Server) getTrees(ctx context.Context, raw json.RawMessage) (any, []services.ParamWarning, error) {
	var params driving.GetTreesParams
	warnings, err := decodeParams(raw, services.Schemas["get_trees"], &params)
	if err != nil {
		return nil, nil, err
	}
	objs, err := s.tree.GetTrees(ctx, params)
	return objs, warnings, err
}

func (s *Server) saveTrees(ctx context.Context, raw json.RawMessage) (any, []services.ParamWarning, error) {
	var params driving.SaveTreesParams
	warnings, err := decodeParams(raw, services.Schemas["save_trees"], &params)
	if err != nil {
		return nil, nil, err
	}

	treeWarnings, err := checkTrees(raw)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, treeWarnings...)

	infos, err := s.tree.SaveTrees(ctx, params)
	return infos, warnings, err
}

func (s *Server) treeToNewickFile(ctx context.Context, raw json.RawMessage) (any, []services.ParamWarning, error) {
	var params driving.TreeToNewickFileParams
	warnings, err := decodeParams(raw, services.Schemas["tree_to_newick_file"], &params)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.tree.TreeToNewickFile(ctx, params)
	return out, warnings, err
}

func (s *Server) exportTreeNewick(ctx context.Context, raw json.RawMessage) (any, []services.ParamWarning, error) {
	var params driving.ExportTreeParams
	warnings, err := decodeParams(raw, services.Schemas["export_tree_newick"], &params)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.tree.ExportTreeNewick(ctx, params)
	return out, warnings, err
}

func (s *Server) status(ctx context.Context, _ json.RawMessage) (any, []services.ParamWarning, error) {
	return s.tree.Status(ctx), nil, nil
}

// decodeParams checks the keys of a params object against schema and
// decodes it into dst.
func decodeParams(raw json.RawMessage, schema services.ParamSchema, dst any) ([]services.ParamWarning, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, newError(CodeInvalidParams, "params must be a single object")
	}

	warnings, err := schema.Check(keysOf(fields))
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, newError(CodeInvalidParams, fmt.Sprintf("decoding params: %v", err))
	}
	return warnings, nil
}

// checkTrees runs the per-object schema over each element of trees.
// Warning keys are qualified with the element index.
func checkTrees(raw json.RawMessage) ([]services.ParamWarning, error) {
	var params struct {
		Trees []map[string]json.RawMessage `json:"trees"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, newError(CodeInvalidParams, fmt.Sprintf("decoding trees: %v", err))
	}

	var warnings []services.ParamWarning
	for i, tree := range params.Trees {
		w, err := services.TreeSchema.CheckAt(keysOf(tree), i)
		if err != nil {
			return nil, err
		}
		for _, pw := range w {
			pw.Key = fmt.Sprintf("trees[%d].%s", i, pw.Key)
			warnings = append(warnings, pw)
		}
	}
	return warnings, nil
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
