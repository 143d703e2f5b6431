package types

import "testing"

func mustSubtype(t *testing.T, sub, sup Type) bool {
	t.Helper()
	ok, err := IsSubtype(sub, sup)
	if err != nil {
		t.Fatalf("IsSubtype(%s, %s): %v", sub, sup, err)
	}
	return ok
}

func TestLeafReflexivity(t *testing.T) {
	for _, l := range []Type{TVoid, TAny, TNull, TBool, TByte, TChar, TInt, TReal, TString} {
		if !mustSubtype(t, l, l) {
			t.Errorf("%s is not a subtype of itself", l)
		}
	}
}

func TestVoidAndAnyExtremes(t *testing.T) {
	for _, l := range []Type{TNull, TBool, TInt, NewList(TInt)} {
		if !mustSubtype(t, TVoid, l) {
			t.Errorf("void should be a subtype of %s", l)
		}
		if !mustSubtype(t, l, TAny) {
			t.Errorf("%s should be a subtype of any", l)
		}
	}
}

func TestIntIsSubtypeOfReal(t *testing.T) {
	if !mustSubtype(t, TInt, TReal) {
		t.Errorf("int should be a subtype of real")
	}
	if mustSubtype(t, TReal, TInt) {
		t.Errorf("real must not be a subtype of int")
	}
}

func TestListCovariance(t *testing.T) {
	ints := NewList(TInt)
	reals := NewList(TReal)
	if !mustSubtype(t, ints, reals) {
		t.Errorf("[int] should be a subtype of [real]")
	}
	strs := NewList(TString)
	if mustSubtype(t, strs, ints) {
		t.Errorf("[string] must not be a subtype of [int]")
	}
}

func TestReferenceInvariance(t *testing.T) {
	refInt := NewReference(TInt)
	refAny := NewReference(TAny)
	if mustSubtype(t, refInt, refAny) {
		t.Errorf("&int must not be a subtype of &any: references are invariant")
	}
}

func TestUnionSubtyping(t *testing.T) {
	u, err := Union(TInt, TBool)
	if err != nil {
		t.Fatal(err)
	}
	if !mustSubtype(t, TInt, u) {
		t.Errorf("int should be a subtype of int|bool")
	}
	if !mustSubtype(t, u, u) {
		t.Errorf("union should be a subtype of itself")
	}
	if mustSubtype(t, u, TInt) {
		t.Errorf("int|bool must not be a subtype of int")
	}
}

func TestUnionSubsumptionCollapsesToSingleBranch(t *testing.T) {
	// any already dominates every other branch, so the union minimises
	// down to plain any with no union node surviving.
	u, err := Union(TInt, TAny)
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsLeaf() || u.LeafKind() != Any {
		t.Errorf("Union(int, any) = %s, want any", u)
	}
}

func TestUnionDeduplicatesEquivalentBranches(t *testing.T) {
	u, err := Union(TInt, TInt, TInt)
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsLeaf() || u.LeafKind() != Int {
		t.Errorf("Union(int, int, int) = %s, want int", u)
	}
}

func TestIntersectionViaDeMorgan(t *testing.T) {
	i, err := Intersection(TInt, TAny)
	if err != nil {
		t.Fatal(err)
	}
	if !i.IsLeaf() || i.LeafKind() != Int {
		t.Errorf("Intersection(int, any) = %s, want int", i)
	}
	// Whatever shape the De Morgan round trip leaves behind, int & any
	// must still be a subtype of int.
	if !mustSubtype(t, i, TInt) {
		t.Errorf("int&any should remain a subtype of int")
	}
}

func TestNegateDoubleNegationCancels(t *testing.T) {
	n := Negate(Negate(NewList(TInt)))
	want := NewList(TInt)
	if !n.Equal(want) {
		t.Errorf("Negate(Negate([int])) = %s, want %s", n, want)
	}
}

func TestNegateVoidAny(t *testing.T) {
	if !Negate(TVoid).Equal(TAny) {
		t.Errorf("!void should be any")
	}
	if !Negate(TAny).Equal(TVoid) {
		t.Errorf("!any should be void")
	}
}

func TestRecordWidthSubtypingRequiresOpenSupertype(t *testing.T) {
	point2D := NewRecord([]RecordField{{Name: "x", Type: TInt}, {Name: "y", Type: TInt}}, false)
	point3D := NewRecord([]RecordField{{Name: "x", Type: TInt}, {Name: "y", Type: TInt}, {Name: "z", Type: TInt}}, false)
	if mustSubtype(t, point3D, point2D) {
		t.Errorf("{int x, int y, int z} must not be a subtype of a closed {int x, int y}")
	}

	openPoint2D := NewRecord([]RecordField{{Name: "x", Type: TInt}, {Name: "y", Type: TInt}}, true)
	if !mustSubtype(t, point3D, openPoint2D) {
		t.Errorf("{int x, int y, int z} should be a subtype of an open {int x, int y, ...}")
	}
}

func TestRecordFieldsAreInvariant(t *testing.T) {
	a := NewRecord([]RecordField{{Name: "v", Type: TInt}}, true)
	b := NewRecord([]RecordField{{Name: "v", Type: TAny}}, true)
	if mustSubtype(t, a, b) {
		t.Errorf("{int v, ...} must not be a subtype of {any v, ...}: fields are invariant")
	}
}

func TestFunctionContravariantParamsCovariantReturn(t *testing.T) {
	narrow := NewFunction([]Type{TAny}, TInt)
	wide := NewFunction([]Type{TInt}, TAny)
	if !mustSubtype(t, narrow, wide) {
		t.Errorf("function(any)->int should be a subtype of function(int)->any")
	}
	if mustSubtype(t, wide, narrow) {
		t.Errorf("function(int)->any must not be a subtype of function(any)->int")
	}
}

func TestTupleElementwiseCovariance(t *testing.T) {
	a := NewTupleRaw(TInt, TBool)
	b := NewTupleRaw(TAny, TAny)
	if !mustSubtype(t, a, b) {
		t.Errorf("(int, bool) should be a subtype of (any, any)")
	}
}

// recursiveList builds a type equivalent to `LList = null | {int data, LList next}`
// using a LABEL placeholder for the recursive occurrence, then closes it.
// The union is built raw: Union minimises, and Minimise rejects an open
// label.
func recursiveList(t *testing.T) Type {
	t.Helper()
	cell := NewRecord([]RecordField{
		{Name: "data", Type: TInt},
		{Name: "next", Type: NewLabel("LList")},
	}, false)
	raw := NewUnionRaw(TNull, cell)
	closed, err := CloseLabel(raw, "LList")
	if err != nil {
		t.Fatal(err)
	}
	return closed
}

func TestRecursiveTypeClosesAndIsReflexive(t *testing.T) {
	list := recursiveList(t)
	if list.HasLabel() {
		t.Fatalf("closed recursive type still carries a LABEL node: %s", list)
	}
	if !mustSubtype(t, list, list) {
		t.Errorf("recursive type should be a subtype of itself")
	}
}

func TestMinimiseIsIdempotent(t *testing.T) {
	u, err := Union(TInt, TBool, TInt)
	if err != nil {
		t.Fatal(err)
	}
	once, err := Minimise(u)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Minimise(once)
	if err != nil {
		t.Fatal(err)
	}
	if !once.Equal(twice) {
		t.Errorf("Minimise not idempotent: %s != %s", once, twice)
	}
}

func TestSubtypeTransitivity(t *testing.T) {
	small := NewList(TInt)
	mid, err := Union(small, TNull)
	if err != nil {
		t.Fatal(err)
	}
	big := TAny
	if !mustSubtype(t, small, mid) || !mustSubtype(t, mid, big) {
		t.Fatal("setup invariant broken")
	}
	if !mustSubtype(t, small, big) {
		t.Errorf("subtype relation should be transitive")
	}
}

func TestUnresolvedLabelRejected(t *testing.T) {
	open := NewLabel("X")
	if _, err := IsSubtype(open, TAny); err == nil {
		t.Errorf("expected UnresolvedLabelError comparing an open LABEL type")
	}
}
