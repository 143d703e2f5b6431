package types

// placeRootFirst permutes nodes so the type rooted at rootIdx is rooted at
// index 0 instead, by swapping the two positions and fixing every edge that
// pointed at either of them. Construction and compaction both naturally
// finish with the root somewhere other than 0 (appended last, or reached
// last in a post-order walk), so both funnel through this one swap.
func placeRootFirst(nodes []Node, rootIdx int) []Node {
	if rootIdx == 0 {
		return nodes
	}
	swap := func(i int) int {
		switch i {
		case 0:
			return rootIdx
		case rootIdx:
			return 0
		default:
			return i
		}
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = mapIndices(n, swap)
	}
	out[0], out[rootIdx] = out[rootIdx], out[0]
	return out
}

// Minimise reduces t to the canonical form required by spec.md §3.1
// invariant 3: mutually-subtyping nodes collapse to one representative,
// union branches subsumed by a sibling are dropped (eliding the union node
// entirely when only one branch survives), record fields are sorted by
// NewRecord already, and any node no longer reachable from the root is
// dropped by construction since the compaction walk only ever visits
// reachable nodes.
func Minimise(t Type) (Type, error) {
	if t.IsLeaf() {
		return t, nil
	}
	if label := firstLabel(t); label != "" {
		return Type{}, &UnresolvedLabelError{Label: label}
	}
	nodes := t.Nodes
	S := computeMatrix(nodes)
	repr := equivalenceClasses(nodes, S)

	assigned := make(map[int]int)
	var out []Node

	var dfs func(orig int) int
	dfs = func(orig int) int {
		r := repr[orig]
		if v, ok := assigned[r]; ok {
			return v
		}
		n := nodes[r]
		if n.Kind == NUnion {
			survivors := pruneUnionBranches(n.Children, repr, S)
			if len(survivors) == 1 && repr[survivors[0]] != r {
				v := dfs(survivors[0])
				assigned[r] = v
				return v
			}
			if len(survivors) == 1 {
				// The sole survivor shares the union's own equivalence
				// class, so its node is emitted in the union's place.
				n = nodes[survivors[0]]
			} else {
				n.Children = survivors
			}
		}
		newIdx := len(out)
		out = append(out, Node{})
		assigned[r] = newIdx
		out[newIdx] = mapIndices(n, dfs)
		return newIdx
	}

	rootNew := dfs(0)
	out = placeRootFirst(out, rootNew)
	if len(out) == 1 && out[0].Kind == NLeaf {
		return leafType(out[0].Leaf), nil
	}
	return Type{Nodes: out}, nil
}

// equivalenceClasses maps every node index to the lowest index it is
// mutually subtype-equivalent with, i.e. its canonical representative.
func equivalenceClasses(nodes []Node, S [][]bool) []int {
	n := len(nodes)
	repr := make([]int, n)
	for i := range repr {
		repr[i] = i
		for j := 0; j < i; j++ {
			if S[i][j] && S[j][i] {
				repr[i] = j
				break
			}
		}
	}
	return repr
}

// pruneUnionBranches drops branches subsumed by a sibling (b is dropped
// when some other sibling c dominates it, S[b][c] && !S[c][b]) and
// deduplicates branches that fall into the same equivalence class, keeping
// the lowest original index of each class.
func pruneUnionBranches(children []int, repr []int, S [][]bool) []int {
	var kept []int
	for _, c := range children {
		subsumed := false
		for _, o := range children {
			if o == c {
				continue
			}
			if repr[o] == repr[c] {
				if o < c {
					subsumed = true
					break
				}
				continue
			}
			if S[c][o] && !S[o][c] {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return []int{children[0]}
	}
	return kept
}
