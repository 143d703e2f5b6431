// Package config holds process-wide constants and test-mode flags shared
// across the type graph, resolver and lowerer.
package config

// Version is the current whileyc version.
// Set at build time via -ldflags, or by writing to this file.
var Version = "0.1.0"

const SourceFileExt = ".whiley"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".whiley", ".wy"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running under `go test`.
// Tests that need deterministic label/slot output set this explicitly.
var IsTestMode = false

// THISSlot is the fixed slot index reserved for the value under test in a
// constraint block (spec.md §4.4 step 6).
const THISSlot = 0

// Built-in leaf type names, used at the parser/resolver boundary to spell
// the primitive Types out in diagnostics.
const (
	VoidTypeName   = "void"
	AnyTypeName    = "any"
	NullTypeName   = "null"
	BoolTypeName   = "bool"
	ByteTypeName   = "byte"
	CharTypeName   = "char"
	IntTypeName    = "int"
	RealTypeName   = "real"
	StringTypeName = "string"
)
