// Package source carries the positional information the parser attaches to
// every AST node. The core never constructs an Attribute itself; it only
// copies the one already on the offending AST node onto diagnostics and IL
// entries (spec.md §6 "AST interface (consumed)").
package source

import "fmt"

// Attribute records where in the original source text a node came from.
type Attribute struct {
	File   string
	Line   int
	Column int
}

// String renders "file:line:column", the shape every diagnostic and IL
// comment uses.
func (a Attribute) String() string {
	if a.File == "" && a.Line == 0 && a.Column == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", a.File, a.Line, a.Column)
}

// IsZero reports whether this Attribute carries no location at all, the
// case for synthetic nodes introduced by the Lowerer itself (e.g. the
// trailing Fail of a constraint block has no source counterpart).
func (a Attribute) IsZero() bool {
	return a == Attribute{}
}
