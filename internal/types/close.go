package types

// CloseLabel ties off every LABEL node named label inside t, rewriting every
// edge that pointed at one of them to point at index 0 instead (spec.md
// §3.1 invariant 2: "recursive types close by looping back to the root").
// t must already be rooted so index 0 is the binder's own recursive type;
// NewLabel/union/record constructors all place their root at index 0, so
// this holds for any Type built through this package.
//
// The matching LABEL nodes are removed from the array and every other node
// shifts down by the number of labels removed before it, so the result
// carries no LABEL named label. A t whose root is itself that label (nothing
// between the binder and its own reference) is returned unchanged.
func CloseLabel(t Type, label string) (Type, error) {
	nodes := asNodes(t)
	labelIdx := make(map[int]bool)
	remap := make([]int, len(nodes))
	for i, n := range nodes {
		if n.Kind == NLabel && n.Label == label {
			labelIdx[i] = true
		} else {
			remap[i] = i - len(labelIdx)
		}
	}
	if len(labelIdx) == 0 {
		return Type{}, &NoSuchLabelError{Label: label}
	}
	if labelIdx[0] {
		return t, nil
	}
	out := make([]Node, 0, len(nodes)-len(labelIdx))
	for i, n := range nodes {
		if labelIdx[i] {
			continue
		}
		out = append(out, mapIndices(n, func(idx int) int { return remap[idx] }))
	}
	return Type{Nodes: out}, nil
}
