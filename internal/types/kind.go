// Package types implements the structural type graph and subtype algebra
// (spec.md §3.1, §4.1, §4.2): Types are canonical, interned node arrays with
// integer edges rather than a heap of pointer-linked nodes, per spec.md §9's
// explicit recommendation ("Avoid heap cycles of pointers"). This is the one
// deliberate place this module diverges from the teacher's representation:
// funvibe/funxy's internal/typesystem models Type as a Go interface with one
// struct per constructor (TVar/TCon/TApp/TFunc/...) because it is solving
// unification for an ML-family type system. A possibly-cyclic structural
// type needs array-of-nodes-with-integer-edges instead, so equality,
// hashing and traversal stay simple — see DESIGN.md.
package types

// LeafKind enumerates the primitive, non-compound Types (spec.md §3.1).
type LeafKind int

const (
	noLeaf LeafKind = iota // zero value: "this Type is compound", never user-visible
	Void
	Any
	Null
	Bool
	Byte
	Char
	Int
	Real
	String
)

func (k LeafKind) String() string {
	switch k {
	case Void:
		return "void"
	case Any:
		return "any"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	}
	return "<compound>"
}

// NodeKind tags the payload carried by a compound Node (spec.md §3.1 table).
type NodeKind int

const (
	// NLeaf is not part of spec.md's Kind table — it is the implementation
	// detail that lets a primitive leaf occupy a child slot inside a
	// compound Type's node array, since every edge is an index into that
	// array and leaves need a slot to be pointed at like anything else.
	NLeaf NodeKind = iota
	NSet
	NList
	NReference
	NNegation
	NProcess
	NDictionary
	NUnion
	NIntersection
	NTuple
	NFunction
	NMethod
	NRecord
	NNominal
	NLabel
)

func (k NodeKind) String() string {
	switch k {
	case NLeaf:
		return "leaf"
	case NSet:
		return "set"
	case NList:
		return "list"
	case NReference:
		return "reference"
	case NNegation:
		return "negation"
	case NProcess:
		return "process"
	case NDictionary:
		return "dictionary"
	case NUnion:
		return "union"
	case NIntersection:
		return "intersection"
	case NTuple:
		return "tuple"
	case NFunction:
		return "function"
	case NMethod:
		return "method"
	case NRecord:
		return "record"
	case NNominal:
		return "nominal"
	case NLabel:
		return "label"
	}
	return "?"
}

// NominalName is a fully-qualified type name (spec.md §3.1 NOMINAL payload).
type NominalName struct {
	Module string
	Name   string
}

// Field is one (name, child-index) pair of a RECORD node, sorted by Name in
// the canonical form (spec.md §3.1 invariant 3d).
type Field struct {
	Name  string
	Child int
}

// Node is the tagged (kind, payload) pair of spec.md §3.1. Every field below
// that isn't meaningful for a given Kind is simply left zero; this mirrors
// the spec's own table, which likewise gives each Kind only the payload it
// needs and nothing more.
type Node struct {
	Kind NodeKind

	Leaf LeafKind // NLeaf

	Child int // NSet, NList, NReference, NNegation, NProcess

	Key int // NDictionary
	Val int // NDictionary

	Children []int // NUnion, NIntersection, NTuple

	Ret      int   // NFunction, NMethod: return type index
	Params   []int // NFunction, NMethod: parameter type indices
	Receiver int   // NMethod only; -1 when absent

	Fields []Field // NRecord, sorted by Name
	Open   bool    // NRecord

	Nominal NominalName // NNominal

	Label string // NLabel
}

// mapIndices rewrites every edge (index field) a Node carries through f,
// returning a new Node. Every operation that needs to shift, remap, swap or
// substitute indices (splicing a subtype into a bigger array, recursive
// closing, subgraph extraction, minimisation) is built on this one
// traversal so the per-Kind payload shape is described in exactly one
// place.
func mapIndices(n Node, f func(int) int) Node {
	switch n.Kind {
	case NSet, NList, NReference, NNegation, NProcess:
		n.Child = f(n.Child)
	case NDictionary:
		n.Key = f(n.Key)
		n.Val = f(n.Val)
	case NUnion, NIntersection, NTuple:
		children := make([]int, len(n.Children))
		for i, c := range n.Children {
			children[i] = f(c)
		}
		n.Children = children
	case NFunction, NMethod:
		n.Ret = f(n.Ret)
		params := make([]int, len(n.Params))
		for i, p := range n.Params {
			params[i] = f(p)
		}
		n.Params = params
		if n.Receiver >= 0 {
			n.Receiver = f(n.Receiver)
		}
	case NRecord:
		fields := make([]Field, len(n.Fields))
		for i, fld := range n.Fields {
			fields[i] = Field{Name: fld.Name, Child: f(fld.Child)}
		}
		n.Fields = fields
	case NLeaf, NNominal, NLabel:
		// no index fields
	}
	return n
}
