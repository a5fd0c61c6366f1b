// Package lineage holds build-wide constants of the lineage tools.
package lineage

// Version is the release version reported by the CLI and the HTTP host.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/lineage"
