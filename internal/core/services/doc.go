// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. They validate requests, check
// newick syntax and delegate all persistence and packaging to the
// ObjectStore and PackageExporter ports.
package services
