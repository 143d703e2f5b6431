package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Type is either a leaf primitive or a compound value carrying a non-empty
// flat array of Nodes rooted at index 0 (spec.md §3.1).
type Type struct {
	leaf  LeafKind
	Nodes []Node
}

// IsLeaf reports whether t is one of the nine primitive types.
func (t Type) IsLeaf() bool { return t.Nodes == nil }

// LeafKind returns the primitive kind of a leaf Type. Calling it on a
// compound Type returns noLeaf (zero value).
func (t Type) LeafKind() LeafKind { return t.leaf }

func leafType(k LeafKind) Type { return Type{leaf: k} }

var (
	TVoid   = leafType(Void)
	TAny    = leafType(Any)
	TNull   = leafType(Null)
	TBool   = leafType(Bool)
	TByte   = leafType(Byte)
	TChar   = leafType(Char)
	TInt    = leafType(Int)
	TReal   = leafType(Real)
	TString = leafType(String)
)

// asNodes returns the node array that represents t when t is embedded as a
// child, or compared against, another type: a compound Type's own array, or
// a synthetic one-element array for a leaf.
func asNodes(t Type) []Node {
	if !t.IsLeaf() {
		return t.Nodes
	}
	return []Node{{Kind: NLeaf, Leaf: t.leaf}}
}

// root returns the node array and the root index of t as a self-contained
// graph, for the uniform case used throughout the algebra.
func root(t Type) (nodes []Node, rootIdx int) {
	return asNodes(t), 0
}

// Equal implements spec.md §3.1 invariant 4: structural equality is defined
// node-wise in array order, which for canonical Types coincides with graph
// isomorphism.
func (t Type) Equal(o Type) bool {
	if t.IsLeaf() != o.IsLeaf() {
		return false
	}
	if t.IsLeaf() {
		return t.leaf == o.leaf
	}
	return reflect.DeepEqual(t.Nodes, o.Nodes)
}

// HasLabel reports whether t still carries any LABEL placeholder node,
// i.e. t is not yet closed (spec.md §3.1 invariant 2).
func (t Type) HasLabel() bool {
	for _, n := range t.Nodes {
		if n.Kind == NLabel {
			return true
		}
	}
	return false
}

// String renders a Whiley-ish surface syntax for diagnostics and tests. It
// is not the canonical wire form — it exists purely for readability, the
// way funxy's Type.String() in internal/typesystem is used only for error
// messages and test assertions.
func (t Type) String() string {
	if t.IsLeaf() {
		return t.leaf.String()
	}
	return stringifyNode(t.Nodes, 0, make(map[int]bool))
}

func stringifyNode(nodes []Node, idx int, onPath map[int]bool) string {
	if onPath[idx] {
		return fmt.Sprintf("$%d", idx)
	}
	n := nodes[idx]
	switch n.Kind {
	case NLeaf:
		return n.Leaf.String()
	case NSet:
		onPath[idx] = true
		s := "{" + stringifyNode(nodes, n.Child, onPath) + "}"
		delete(onPath, idx)
		return s
	case NList:
		onPath[idx] = true
		s := "[" + stringifyNode(nodes, n.Child, onPath) + "]"
		delete(onPath, idx)
		return s
	case NReference:
		onPath[idx] = true
		s := "&" + stringifyNode(nodes, n.Child, onPath)
		delete(onPath, idx)
		return s
	case NProcess:
		onPath[idx] = true
		s := "process " + stringifyNode(nodes, n.Child, onPath)
		delete(onPath, idx)
		return s
	case NNegation:
		onPath[idx] = true
		s := "!" + stringifyNode(nodes, n.Child, onPath)
		delete(onPath, idx)
		return s
	case NDictionary:
		onPath[idx] = true
		s := "[" + stringifyNode(nodes, n.Key, onPath) + "->" + stringifyNode(nodes, n.Val, onPath) + "]"
		delete(onPath, idx)
		return s
	case NUnion:
		onPath[idx] = true
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = stringifyNode(nodes, c, onPath)
		}
		delete(onPath, idx)
		return strings.Join(parts, "|")
	case NIntersection:
		onPath[idx] = true
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = stringifyNode(nodes, c, onPath)
		}
		delete(onPath, idx)
		return strings.Join(parts, "&")
	case NTuple:
		onPath[idx] = true
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = stringifyNode(nodes, c, onPath)
		}
		delete(onPath, idx)
		return "(" + strings.Join(parts, ", ") + ")"
	case NFunction, NMethod:
		onPath[idx] = true
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = stringifyNode(nodes, p, onPath)
		}
		ret := stringifyNode(nodes, n.Ret, onPath)
		prefix := "function"
		if n.Kind == NMethod {
			prefix = "method"
			if n.Receiver >= 0 {
				prefix = stringifyNode(nodes, n.Receiver, onPath) + "::method"
			}
		}
		delete(onPath, idx)
		return fmt.Sprintf("%s(%s)->%s", prefix, strings.Join(parts, ", "), ret)
	case NRecord:
		onPath[idx] = true
		names := make([]string, len(n.Fields))
		for i, fld := range n.Fields {
			names[i] = fld.Name
		}
		sort.Strings(names)
		byName := make(map[string]int, len(n.Fields))
		for _, fld := range n.Fields {
			byName[fld.Name] = fld.Child
		}
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = stringifyNode(nodes, byName[name], onPath) + " " + name
		}
		delete(onPath, idx)
		suffix := ""
		if n.Open {
			suffix = ", ..."
		}
		return "{" + strings.Join(parts, ", ") + suffix + "}"
	case NNominal:
		if n.Nominal.Module != "" {
			return n.Nominal.Module + "::" + n.Nominal.Name
		}
		return n.Nominal.Name
	case NLabel:
		return "X<" + n.Label + ">"
	}
	return "?"
}
