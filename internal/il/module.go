package il

import (
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

// Param is one (name, type) parameter of a Function or Method declaration.
type Param struct {
	Name string
	Type types.Type
}

// Function is a fully lowered function or method declaration: its
// signature plus the Blocks its body, precondition and postcondition
// compiled to (spec.md §6 "Each FunctionDecl carries its signature..., an
// optional precondition Block, optional postcondition Block..., and a
// body Block").
type Function struct {
	Name     string
	IsMethod bool
	Receiver *Param // nil for a plain function
	Params   []Param
	Return   types.Type
	Body     *Block

	// Precondition checks the `requires` clause, if any, over the
	// function's own parameter slots before Body runs.
	Precondition *Block

	// Postcondition checks the `ensures` clause, if any, over the
	// post-state: slot 0 is bound to the return value and every slot
	// from 1 is a read-only shadow copy of the original parameter at
	// function entry (spec.md §6, glossary "Shadow").
	Postcondition *Block
}

// NamedType is a fully resolved user type declaration: its expanded Type
// plus, if it carried a `where` clause, the constraint Block that checks
// it (spec.md §4.4 step 6/7).
type NamedType struct {
	Name       string
	Type       types.Type
	Constraint *Block // nil when the declaration had no where clause
}

// Module is the output of compiling one Whiley source file's declarations:
// every named type, constant and function it defines, fully resolved and
// lowered. This is the unit the Module Loader caches and the Module IO
// layer dumps to and reloads from YAML.
type Module struct {
	Name      string
	Types     map[string]*NamedType
	Constants map[string]value.Value
	Functions map[string]*Function
}

// NewModule creates an empty Module for the given file/module name.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Types:     make(map[string]*NamedType),
		Constants: make(map[string]value.Value),
		Functions: make(map[string]*Function),
	}
}
