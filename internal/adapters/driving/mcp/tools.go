package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/newick"
)

// GetTreesInput is the input schema for the get_trees tool.
type GetTreesInput struct {
	TreeRefs       []string `json:"tree_refs" jsonschema:"workspace references such as 123/4 or 123/4/1"`
	IncludedFields []string `json:"included_fields,omitempty" jsonschema:"restrict returned data to these fields"`
}

// GetTreesOutput is the output schema for the get_trees tool.
type GetTreesOutput struct {
	Trees []TreeOutput `json:"trees"`
	Count int          `json:"count"`
}

// TreeOutput represents a single fetched tree.
type TreeOutput struct {
	Ref  string         `json:"ref"`
	Name string         `json:"name"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// TreeInput is one object to save.
type TreeInput struct {
	Data   map[string]any    `json:"data" jsonschema:"tree object data; the tree field holds the newick string"`
	Name   string            `json:"name,omitempty" jsonschema:"object name; generated if omitted"`
	Type   string            `json:"type,omitempty" jsonschema:"must be KBaseTrees.Tree if given"`
	Meta   map[string]string `json:"meta,omitempty" jsonschema:"user metadata"`
	Hidden int               `json:"hidden,omitempty" jsonschema:"1 to hide the object"`
	ObjID  int64             `json:"objid,omitempty" jsonschema:"id of an existing object to save a new version of"`

	Provenance []any `json:"provenance,omitempty" jsonschema:"provenance actions passed to the workspace unchanged"`
}

// SaveTreesInput is the input schema for the save_trees tool.
type SaveTreesInput struct {
	WSID  int64       `json:"ws_id" jsonschema:"target workspace id"`
	Trees []TreeInput `json:"trees" jsonschema:"trees to save"`
}

// SaveTreesOutput is the output schema for the save_trees tool.
type SaveTreesOutput struct {
	Saved []SavedOutput `json:"saved"`
}

// SavedOutput describes one saved object version.
type SavedOutput struct {
	Ref      string `json:"ref"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Checksum string `json:"checksum"`
}

// TreeToNewickFileInput is the input schema for the tree_to_newick_file tool.
type TreeToNewickFileInput struct {
	InputRef       string `json:"input_ref" jsonschema:"reference of the tree to write"`
	DestinationDir string `json:"destination_dir" jsonschema:"directory to write <name>.newick into"`
}

// ExportTreeNewickInput is the input schema for the export_tree_newick tool.
type ExportTreeNewickInput struct {
	InputRef string `json:"input_ref" jsonschema:"reference of the tree to export"`
}

// ValidateNewickInput is the input schema for the validate_newick tool.
type ValidateNewickInput struct {
	Tree string `json:"tree" jsonschema:"newick tree string"`
}

// ValidateNewickOutput is the output schema for the validate_newick tool.
type ValidateNewickOutput struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_trees",
		Description: "Fetch tree objects by workspace reference",
	}, s.handleGetTrees)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_trees",
		Description: "Validate and save tree objects to a workspace; nothing is saved if any tree is invalid",
	}, s.handleSaveTrees)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tree_to_newick_file",
		Description: "Write a stored tree's newick string to a local file",
	}, s.handleTreeToNewickFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_tree_newick",
		Description: "Package a stored tree as a newick file for download",
	}, s.handleExportTreeNewick)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_newick",
		Description: "Check whether a string is a syntactically valid newick tree",
	}, s.handleValidateNewick)
}

// handleGetTrees handles the get_trees tool invocation.
func (s *Server) handleGetTrees(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetTreesInput,
) (*mcp.CallToolResult, GetTreesOutput, error) {
	objs, err := s.ports.Tree.GetTrees(ctx, driving.GetTreesParams{
		TreeRefs:       input.TreeRefs,
		IncludedFields: input.IncludedFields,
	})
	if err != nil {
		return nil, GetTreesOutput{}, err
	}

	output := GetTreesOutput{
		Trees: make([]TreeOutput, len(objs)),
		Count: len(objs),
	}
	for i := range objs {
		output.Trees[i] = TreeOutput{
			Ref:  objs[i].Info.Ref(),
			Name: objs[i].Info.Name,
			Type: objs[i].Info.Type,
			Data: objs[i].Data,
		}
	}
	return nil, output, nil
}

// handleSaveTrees handles the save_trees tool invocation.
func (s *Server) handleSaveTrees(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveTreesInput,
) (*mcp.CallToolResult, SaveTreesOutput, error) {
	params := driving.SaveTreesParams{
		WSID:  input.WSID,
		Trees: make([]domain.ObjectSaveData, len(input.Trees)),
	}
	for i, t := range input.Trees {
		params.Trees[i] = domain.ObjectSaveData{
			Type:   t.Type,
			Data:   t.Data,
			Name:   t.Name,
			Meta:   t.Meta,
			Hidden: t.Hidden,
			ObjID:  t.ObjID,

			Provenance: t.Provenance,
		}
	}

	infos, err := s.ports.Tree.SaveTrees(ctx, params)
	if err != nil {
		return nil, SaveTreesOutput{}, err
	}

	output := SaveTreesOutput{Saved: make([]SavedOutput, len(infos))}
	for i, info := range infos {
		output.Saved[i] = SavedOutput{
			Ref:      info.Ref(),
			Name:     info.Name,
			Type:     info.Type,
			Checksum: info.Checksum,
		}
	}
	return nil, output, nil
}

// handleTreeToNewickFile handles the tree_to_newick_file tool invocation.
func (s *Server) handleTreeToNewickFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TreeToNewickFileInput,
) (*mcp.CallToolResult, driving.TreeToNewickFileOutput, error) {
	out, err := s.ports.Tree.TreeToNewickFile(ctx, driving.TreeToNewickFileParams{
		DestinationDir: input.DestinationDir,
		InputRef:       input.InputRef,
	})
	if err != nil {
		return nil, driving.TreeToNewickFileOutput{}, err
	}
	return nil, *out, nil
}

// handleExportTreeNewick handles the export_tree_newick tool invocation.
func (s *Server) handleExportTreeNewick(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportTreeNewickInput,
) (*mcp.CallToolResult, driving.ExportTreeOutput, error) {
	out, err := s.ports.Tree.ExportTreeNewick(ctx, driving.ExportTreeParams{InputRef: input.InputRef})
	if err != nil {
		return nil, driving.ExportTreeOutput{}, err
	}
	return nil, *out, nil
}

// handleValidateNewick handles the validate_newick tool invocation.
// An invalid tree is a successful call with Valid false.
func (s *Server) handleValidateNewick(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateNewickInput,
) (*mcp.CallToolResult, ValidateNewickOutput, error) {
	err := newick.Validate(input.Tree)
	if err == nil {
		return nil, ValidateNewickOutput{Valid: true}, nil
	}

	output := ValidateNewickOutput{Reason: err.Error()}
	var syntaxErr *newick.SyntaxError
	if errors.As(err, &syntaxErr) {
		output.Reason = syntaxErr.Reason
		output.Offset = syntaxErr.Offset
	}
	return nil, output, nil
}
