package kbase

import (
	"context"

	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
)

// Ensure PackageExporter implements the interface.
var _ driven.PackageExporter = (*PackageExporter)(nil)

// PackageExporter uploads directories through DataFileUtil.
type PackageExporter struct {
	dfu *Client
}

type packageParams struct {
	FilePath string   `json:"file_path"`
	WSRefs   []string `json:"ws_refs"`
}

type packageResult struct {
	ShockID string `json:"shock_id"`
}

// NewPackageExporter creates an exporter over a DataFileUtil client.
func NewPackageExporter(dfu *Client) *PackageExporter {
	return &PackageExporter{dfu: dfu}
}

// PackageForDownload packages dir with provenance refs and returns the
// shock node id of the upload.
func (e *PackageExporter) PackageForDownload(ctx context.Context, dir string, refs []string) (string, error) {
	var result packageResult
	params := packageParams{FilePath: dir, WSRefs: refs}
	if err := e.dfu.Call(ctx, "package_for_download", []any{params}, &result); err != nil {
		return "", err
	}
	return result.ShockID, nil
}
