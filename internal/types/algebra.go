package types

// Union builds the canonical least upper bound of branches: nested unions
// are flattened, singleton input collapses to its one branch, and the
// result is minimised so subsumed branches are dropped (spec.md §4.1 "LUB
// is union, then canonicalise").
func Union(branches ...Type) (Type, error) {
	flat := flattenUnion(branches)
	switch len(flat) {
	case 0:
		return TVoid, nil
	case 1:
		return flat[0], nil
	}
	return Minimise(NewUnionRaw(flat...))
}

func flattenUnion(branches []Type) []Type {
	var out []Type
	for _, b := range branches {
		if bs, ok := b.UnionBranches(); ok {
			out = append(out, flattenUnion(bs)...)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// LUB is an alias for Union: the least upper bound of a set of types under
// the subtype order is exactly their union, canonicalised.
func LUB(branches ...Type) (Type, error) {
	return Union(branches...)
}

// Intersection builds the canonical greatest lower bound of branches via De
// Morgan (spec.md §4.1 "A∩B = ¬(¬A∪¬B)"): negating, unioning, negating back
// reuses Union's flattening and subsumption pruning instead of
// re-implementing them for intersection directly.
func Intersection(branches ...Type) (Type, error) {
	switch len(branches) {
	case 0:
		return TAny, nil
	case 1:
		return branches[0], nil
	}
	negs := make([]Type, len(branches))
	for i, b := range branches {
		negs[i] = Negate(b)
	}
	u, err := Union(negs...)
	if err != nil {
		return Type{}, err
	}
	return Negate(u), nil
}

// GLB is an alias for Intersection: the greatest lower bound of a set of
// types under the subtype order is exactly their intersection.
func GLB(branches ...Type) (Type, error) {
	return Intersection(branches...)
}

// Negate builds !t, simplifying the two cases that would otherwise leave
// garbage double-negation or leaf nodes lying around: !void collapses to
// any and !any to void (they are each other's complement in the full
// lattice), and !!A collapses to A directly rather than wrapping it in two
// negation nodes.
func Negate(t Type) Type {
	if t.IsLeaf() {
		switch t.LeafKind() {
		case Void:
			return TAny
		case Any:
			return TVoid
		}
		return NewNegationRaw(t)
	}
	if t.Nodes[0].Kind == NNegation {
		return t.child(t.Nodes[0].Child)
	}
	return NewNegationRaw(t)
}

// LeastDifference builds the smallest type containing every value of a
// that is not also a value of b, i.e. a & !b, canonicalised the same way
// Intersection is.
func LeastDifference(a, b Type) (Type, error) {
	return Intersection(a, Negate(b))
}
