package types

// Extract pulls the subgraph reachable from idx out of nodes into its own
// self-contained, root-at-0 Type. This is the inverse of appendType: it is
// how the Resolver and Lowerer pull a child out of a compound Type (a
// record field, a function parameter, a list's element type) to work with
// on its own, without dragging the rest of the parent's node array along.
func Extract(nodes []Node, idx int) Type {
	assigned := make(map[int]int)
	var out []Node

	var dfs func(orig int) int
	dfs = func(orig int) int {
		if v, ok := assigned[orig]; ok {
			return v
		}
		newIdx := len(out)
		out = append(out, Node{})
		assigned[orig] = newIdx
		out[newIdx] = mapIndices(nodes[orig], dfs)
		return newIdx
	}

	root := dfs(idx)
	out = placeRootFirst(out, root)
	if len(out) == 1 && out[0].Kind == NLeaf {
		return leafType(out[0].Leaf)
	}
	return Type{Nodes: out}
}

// child returns the Type rooted at the single-child slot of a Node, for
// the accessor methods below. It assumes the caller already checked Kind.
func (t Type) child(idx int) Type {
	return Extract(t.Nodes, idx)
}

// Elem returns the element type of a Set, List, Reference, Process or
// Negation Type, and false if t is not one of those kinds.
func (t Type) Elem() (Type, bool) {
	if t.IsLeaf() {
		return Type{}, false
	}
	n := t.Nodes[0]
	switch n.Kind {
	case NSet, NList, NReference, NProcess, NNegation:
		return t.child(n.Child), true
	}
	return Type{}, false
}

// DictKeyVal returns the key and value types of a Dictionary Type.
func (t Type) DictKeyVal() (key, val Type, ok bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NDictionary {
		return Type{}, Type{}, false
	}
	n := t.Nodes[0]
	return t.child(n.Key), t.child(n.Val), true
}

// TupleElems returns the element types of a Tuple Type in order.
func (t Type) TupleElems() ([]Type, bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NTuple {
		return nil, false
	}
	n := t.Nodes[0]
	out := make([]Type, len(n.Children))
	for i, c := range n.Children {
		out[i] = t.child(c)
	}
	return out, true
}

// UnionBranches returns the branch types of a Union Type.
func (t Type) UnionBranches() ([]Type, bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NUnion {
		return nil, false
	}
	n := t.Nodes[0]
	out := make([]Type, len(n.Children))
	for i, c := range n.Children {
		out[i] = t.child(c)
	}
	return out, true
}

// IntersectionBranches returns the branch types of an Intersection Type.
func (t Type) IntersectionBranches() ([]Type, bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NIntersection {
		return nil, false
	}
	n := t.Nodes[0]
	out := make([]Type, len(n.Children))
	for i, c := range n.Children {
		out[i] = t.child(c)
	}
	return out, true
}

// RecordFields returns the field list of a Record Type, sorted by name,
// plus whether it is open.
func (t Type) RecordFields() (fields []RecordField, open bool, ok bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NRecord {
		return nil, false, false
	}
	n := t.Nodes[0]
	out := make([]RecordField, len(n.Fields))
	for i, f := range n.Fields {
		out[i] = RecordField{Name: f.Name, Type: t.child(f.Child)}
	}
	return out, n.Open, true
}

// Signature returns the parameter types, return type, and (for a Method)
// the receiver type of a Function or Method Type.
func (t Type) Signature() (params []Type, ret Type, receiver Type, hasReceiver bool, ok bool) {
	if t.IsLeaf() {
		return nil, Type{}, Type{}, false, false
	}
	n := t.Nodes[0]
	if n.Kind != NFunction && n.Kind != NMethod {
		return nil, Type{}, Type{}, false, false
	}
	params = make([]Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = t.child(p)
	}
	ret = t.child(n.Ret)
	if n.Kind == NMethod && n.Receiver >= 0 {
		return params, ret, t.child(n.Receiver), true, true
	}
	return params, ret, Type{}, false, true
}

// Nominal returns the (module, name) pair of a Nominal Type.
func (t Type) Nominal() (NominalName, bool) {
	if t.IsLeaf() || t.Nodes[0].Kind != NNominal {
		return NominalName{}, false
	}
	return t.Nodes[0].Nominal, true
}
