package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for treeutils resources.
	uriScheme = "treeutils://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Service health, version and git metadata",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// Template for the newick text of a stored tree.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "trees/{+ref}",
		Name:        "tree-newick",
		Description: "Newick string of a stored tree, by workspace reference",
		MIMEType:    "text/plain",
	}, s.handleTreeResource)
}

// handleStatusResource returns the service status record.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Tree.Status(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTreeResource returns the newick string of a tree.
func (s *Server) handleTreeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ref := extractTreeRef(req.Params.URI)
	if ref == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	objs, err := s.ports.Tree.GetTrees(ctx, driving.GetTreesParams{
		TreeRefs:       []string{ref},
		IncludedFields: []string{"tree"},
	})
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}
	if len(objs) == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	tree, ok := objs[0].Data.Newick()
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     tree,
		}},
	}, nil
}

// extractTreeRef extracts the reference from a URI like treeutils://trees/{ws}/{obj}[/{ver}].
func extractTreeRef(uri string) string {
	const prefix = uriScheme + "trees/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
