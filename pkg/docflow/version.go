// Package docflow holds module-wide identifiers.
package docflow

// Version is the docflow release version.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/docflow"
