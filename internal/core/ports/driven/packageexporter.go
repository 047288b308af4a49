package driven

import "context"

// PackageExporter bundles a directory for external download.
type PackageExporter interface {
	// PackageForDownload packages every file under dir, recording refs as
	// the objects the package was derived from. It returns an opaque
	// package identifier.
	PackageForDownload(ctx context.Context, dir string, refs []string) (string, error)
}
