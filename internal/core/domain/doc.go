// Package domain defines the core business entities for TreeUtils.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TreeData: The payload of a phylogenetic tree object
//   - ObjectData: A stored object and its info record
//   - ObjectSaveData: An object about to be saved
//   - ObjectInfo: Identity and version metadata of a stored object
//   - Status: The service health record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
