package types

// appendType splices src's node array onto the end of dst, shifting every
// edge inside the copied nodes by len(dst) so they still point at the right
// places, and returns the new array plus the index the spliced root now
// lives at. This is the one primitive every NewXxx constructor below uses
// to assemble a compound Node's children before appending the node itself.
func appendType(dst []Node, src Type) (out []Node, rootIdx int) {
	offset := len(dst)
	nodes := asNodes(src)
	shifted := make([]Node, len(nodes))
	for i, n := range nodes {
		shifted[i] = mapIndices(n, func(idx int) int { return idx + offset })
	}
	return append(dst, shifted...), offset
}

// buildWithRoot appends the terminal compound node to nodes and returns the
// finished Type, with the root placed at index 0 via placeRootFirst so the
// invariant "root is always index 0" holds for freshly built Types too, not
// only for minimised ones.
func buildWithRoot(nodes []Node, n Node) Type {
	nodes = append(nodes, n)
	rootIdx := len(nodes) - 1
	nodes = placeRootFirst(nodes, rootIdx)
	return Type{Nodes: nodes}
}

// NewSet builds {elem}.
func NewSet(elem Type) Type {
	nodes, c := appendType(nil, elem)
	return buildWithRoot(nodes, Node{Kind: NSet, Child: c})
}

// NewList builds [elem].
func NewList(elem Type) Type {
	nodes, c := appendType(nil, elem)
	return buildWithRoot(nodes, Node{Kind: NList, Child: c})
}

// NewReference builds &elem.
func NewReference(elem Type) Type {
	nodes, c := appendType(nil, elem)
	return buildWithRoot(nodes, Node{Kind: NReference, Child: c})
}

// NewProcess builds a process type wrapping elem.
func NewProcess(elem Type) Type {
	nodes, c := appendType(nil, elem)
	return buildWithRoot(nodes, Node{Kind: NProcess, Child: c})
}

// NewNegationRaw builds !elem without simplifying double negation; callers
// that want simplification should go through Negate in algebra.go instead.
func NewNegationRaw(elem Type) Type {
	nodes, c := appendType(nil, elem)
	return buildWithRoot(nodes, Node{Kind: NNegation, Child: c})
}

// NewDictionary builds [key->val].
func NewDictionary(key, val Type) Type {
	nodes, k := appendType(nil, key)
	nodes, v := appendType(nodes, val)
	return buildWithRoot(nodes, Node{Kind: NDictionary, Key: k, Val: v})
}

// NewTupleRaw builds (elems...) with no flattening or simplification.
func NewTupleRaw(elems ...Type) Type {
	var nodes []Node
	children := make([]int, len(elems))
	for i, e := range elems {
		var c int
		nodes, c = appendType(nodes, e)
		children[i] = c
	}
	return buildWithRoot(nodes, Node{Kind: NTuple, Children: children})
}

// NewUnionRaw builds branches[0]|branches[1]|... with no flattening,
// de-duplication or subsumption pruning; callers that want a canonical
// union should go through Union in algebra.go instead.
func NewUnionRaw(branches ...Type) Type {
	var nodes []Node
	children := make([]int, len(branches))
	for i, b := range branches {
		var c int
		nodes, c = appendType(nodes, b)
		children[i] = c
	}
	return buildWithRoot(nodes, Node{Kind: NUnion, Children: children})
}

// NewIntersectionRaw builds branches[0]&branches[1]&... with no
// simplification; callers that want the De Morgan canonical form should go
// through Intersection in algebra.go instead.
func NewIntersectionRaw(branches ...Type) Type {
	var nodes []Node
	children := make([]int, len(branches))
	for i, b := range branches {
		var c int
		nodes, c = appendType(nodes, b)
		children[i] = c
	}
	return buildWithRoot(nodes, Node{Kind: NIntersection, Children: children})
}

// RecordField is one (name, type) pair passed to NewRecord.
type RecordField struct {
	Name string
	Type Type
}

// NewRecord builds a record type. Fields are sorted by name (spec.md §3.1
// invariant 3d) regardless of the order passed in; duplicate names are a
// caller bug and the later one wins silently, matching how a map literal
// would behave.
func NewRecord(fields []RecordField, open bool) Type {
	var nodes []Node
	byName := make(map[string]int, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		var c int
		nodes, c = appendType(nodes, f.Type)
		if _, dup := byName[f.Name]; !dup {
			order = append(order, f.Name)
		}
		byName[f.Name] = c
	}
	sortStrings(order)
	out := make([]Field, len(order))
	for i, name := range order {
		out[i] = Field{Name: name, Child: byName[name]}
	}
	return buildWithRoot(nodes, Node{Kind: NRecord, Fields: out, Open: open})
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// NewFunction builds function(params...)->ret.
func NewFunction(params []Type, ret Type) Type {
	var nodes []Node
	pidx := make([]int, len(params))
	for i, p := range params {
		var c int
		nodes, c = appendType(nodes, p)
		pidx[i] = c
	}
	var r int
	nodes, r = appendType(nodes, ret)
	return buildWithRoot(nodes, Node{Kind: NFunction, Params: pidx, Ret: r, Receiver: -1})
}

// NewMethod builds method(params...)->ret, optionally bound to a receiver
// type (pass the zero Type{} and ok=false for an unbound method).
func NewMethod(receiver Type, hasReceiver bool, params []Type, ret Type) Type {
	var nodes []Node
	recvIdx := -1
	if hasReceiver {
		nodes, recvIdx = appendType(nodes, receiver)
	}
	pidx := make([]int, len(params))
	for i, p := range params {
		var c int
		nodes, c = appendType(nodes, p)
		pidx[i] = c
	}
	var r int
	nodes, r = appendType(nodes, ret)
	return buildWithRoot(nodes, Node{Kind: NMethod, Params: pidx, Ret: r, Receiver: recvIdx})
}

// NewNominal builds a reference to a user-declared named type. It carries
// no child index: resolving what it actually expands to is the Resolver's
// job (spec.md §4.4), not something the type graph does on its own.
func NewNominal(module, name string) Type {
	return buildWithRoot(nil, Node{Kind: NNominal, Nominal: NominalName{Module: module, Name: name}})
}

// NewLabel builds a LABEL placeholder node for the named recursive binder.
// A Type containing a LABEL is not yet closed: see CloseLabel.
func NewLabel(label string) Type {
	return buildWithRoot(nil, Node{Kind: NLabel, Label: label})
}
