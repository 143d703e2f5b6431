package types

// IsSubtype answers the spec.md §4.2 subtype question "is sub a subtype of
// sup?" by building one combined node array out of both Types' graphs and
// running the all-pairs fixed-point algorithm over it once, the way the
// algorithm is naturally stated: subtyping between two separate graphs is
// just subtyping between two nodes of one bigger graph.
func IsSubtype(sub, sup Type) (bool, error) {
	if label := firstLabel(sub); label != "" {
		return false, &UnresolvedLabelError{Label: label}
	}
	if label := firstLabel(sup); label != "" {
		return false, &UnresolvedLabelError{Label: label}
	}
	subNodes := asNodes(sub)
	supNodes := asNodes(sup)
	offset := len(subNodes)
	combined := make([]Node, 0, offset+len(supNodes))
	combined = append(combined, subNodes...)
	for _, n := range supNodes {
		combined = append(combined, mapIndices(n, func(i int) int { return i + offset }))
	}
	S := computeMatrix(combined)
	return S[0][offset], nil
}

func firstLabel(t Type) string {
	for _, n := range t.Nodes {
		if n.Kind == NLabel {
			return n.Label
		}
	}
	return ""
}

// computeMatrix runs the all-pairs greatest-fixed-point subtype algorithm
// (spec.md §4.2): S starts fully optimistic (every pair assumed related,
// which is what makes cyclic/recursive nodes resolve correctly) and is
// monotonically narrowed by localCheck until no entry changes.
func computeMatrix(nodes []Node) [][]bool {
	n := len(nodes)
	S := make([][]bool, n)
	for i := range S {
		S[i] = make([]bool, n)
		for j := range S[i] {
			S[i][j] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if S[i][j] && !localCheck(nodes, i, j, S) {
					S[i][j] = false
					changed = true
				}
			}
		}
	}
	return S
}

// localCheck decides whether node i is (still, optimistically) a subtype
// of node j given the current state of S. It never recurses directly; it
// only reads S at other coordinates, which is what lets cycles through
// LABEL-closed recursive types settle at a fixed point instead of looping
// forever.
func localCheck(nodes []Node, i, j int, S [][]bool) bool {
	ni, nj := nodes[i], nodes[j]

	if ni.Kind == NLeaf && ni.Leaf == Void {
		return true
	}
	if nj.Kind == NLeaf && nj.Leaf == Any {
		return true
	}
	if ni.Kind == NLeaf && ni.Leaf == Int && nj.Kind == NLeaf && nj.Leaf == Real {
		return true
	}

	// Union on the subtype side distributes unconditionally: a union is a
	// subtype of j iff every one of its branches is.
	if ni.Kind == NUnion {
		for _, c := range ni.Children {
			if !S[c][j] {
				return false
			}
		}
		return true
	}
	// Union on the supertype side is existential: i is a subtype of the
	// union iff some branch of the union dominates it.
	if nj.Kind == NUnion {
		for _, c := range nj.Children {
			if S[i][c] {
				return true
			}
		}
		return false
	}
	// Intersection on the subtype side is existential by duality with
	// union: A&B is narrower than both A and B, so it is a subtype of j as
	// soon as either branch already is.
	if ni.Kind == NIntersection {
		for _, c := range ni.Children {
			if S[c][j] {
				return true
			}
		}
		return false
	}
	// Intersection on the supertype side distributes: i is a subtype of
	// A&B iff i is a subtype of both A and B.
	if nj.Kind == NIntersection {
		for _, c := range nj.Children {
			if !S[i][c] {
				return false
			}
		}
		return true
	}

	if ni.Kind != nj.Kind {
		return false
	}

	switch ni.Kind {
	case NLeaf:
		return ni.Leaf == nj.Leaf
	case NSet:
		return S[ni.Child][nj.Child]
	case NList:
		return S[ni.Child][nj.Child]
	case NReference:
		return S[ni.Child][nj.Child] && S[nj.Child][ni.Child]
	case NProcess:
		return S[ni.Child][nj.Child] && S[nj.Child][ni.Child]
	case NNegation:
		// Contravariant: !A <: !B iff B <: A.
		return S[nj.Child][ni.Child]
	case NDictionary:
		return S[ni.Key][nj.Key] && S[nj.Key][ni.Key] && S[ni.Val][nj.Val]
	case NTuple:
		if len(ni.Children) != len(nj.Children) {
			return false
		}
		for k := range ni.Children {
			if !S[ni.Children[k]][nj.Children[k]] {
				return false
			}
		}
		return true
	case NFunction:
		return checkCallable(ni, nj, S)
	case NMethod:
		if (ni.Receiver >= 0) != (nj.Receiver >= 0) {
			return false
		}
		if ni.Receiver >= 0 && !(S[ni.Receiver][nj.Receiver] && S[nj.Receiver][ni.Receiver]) {
			return false
		}
		return checkCallable(ni, nj, S)
	case NRecord:
		return checkRecord(ni, nj, S)
	case NNominal:
		return ni.Nominal == nj.Nominal
	default:
		return false
	}
}

// checkCallable implements the usual contravariant-parameters,
// covariant-return rule shared by NFunction and NMethod.
func checkCallable(ni, nj Node, S [][]bool) bool {
	if len(ni.Params) != len(nj.Params) {
		return false
	}
	for k := range ni.Params {
		if !S[nj.Params[k]][ni.Params[k]] {
			return false
		}
	}
	return S[ni.Ret][nj.Ret]
}

// checkRecord implements record subtyping: fields are invariant, and width
// subtyping (the subtype carrying extra fields the supertype doesn't name)
// is only legal when the supertype is open (spec.md §3.1 Open Question 1).
func checkRecord(ni, nj Node, S [][]bool) bool {
	iByName := make(map[string]int, len(ni.Fields))
	for _, f := range ni.Fields {
		iByName[f.Name] = f.Child
	}
	for _, jf := range nj.Fields {
		ic, ok := iByName[jf.Name]
		if !ok {
			return false
		}
		if !(S[ic][jf.Child] && S[jf.Child][ic]) {
			return false
		}
	}
	if !nj.Open && len(ni.Fields) != len(nj.Fields) {
		return false
	}
	return true
}
