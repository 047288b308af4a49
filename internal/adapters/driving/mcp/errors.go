// Package mcp provides an MCP (Model Context Protocol) server adapter for treeutils.
// It lets AI assistants fetch, save, validate and export phylogenetic trees.
package mcp

import "errors"

// ErrMissingTreeService is returned when the tree service is not provided.
var ErrMissingTreeService = errors.New("mcp: tree service is required")
