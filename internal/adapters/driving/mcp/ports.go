package mcp

import (
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tree fetches, saves and exports trees.
	Tree driving.TreeService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Tree == nil {
		return ErrMissingTreeService
	}
	return nil
}
