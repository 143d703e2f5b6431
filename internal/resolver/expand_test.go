package resolver

import (
	"testing"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/types"
)

func leafField(name, leaf string) ast.UnresolvedField {
	return ast.UnresolvedField{Name: name, Type: &ast.UnresolvedType{Kind: ast.UTLeaf, LeafName: leaf}}
}

// TestUnguardedSelfReferenceIsCyclic exercises spec.md §4.4's unguarded
// self-reference rule: `define A as A` has nothing between the nominal
// reference and the declaration it names, so closing its LABEL placeholder
// can never terminate.
func TestUnguardedSelfReferenceIsCyclic(t *testing.T) {
	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "A", TypeExpr: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "A"}},
		},
	}
	s := NewState(file, NewMapLoader())
	_, _, err := s.ExpandType("A")
	if err == nil {
		t.Fatal("expected a CyclicType error, got none")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.CyclicType {
		t.Fatalf("expected diag.CyclicType, got %v", err)
	}
}

// TestGuardedRecursiveListExpands exercises the recursive-type closing
// recipe spec.md §4.4 describes: `define List as null | {int head, List
// tail}` guards its self-reference behind a record field, so the LABEL
// placeholder closes over the whole union rather than looping forever.
func TestGuardedRecursiveListExpands(t *testing.T) {
	listDecl := &ast.Decl{
		Kind: ast.DType,
		Name: "List",
		TypeExpr: &ast.UnresolvedType{
			Kind: ast.UTUnion,
			Branches: []*ast.UnresolvedType{
				{Kind: ast.UTLeaf, LeafName: "null"},
				{Kind: ast.UTRecord, Fields: []ast.UnresolvedField{
					leafField("head", "int"),
					{Name: "tail", Type: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "List"}},
				}},
			},
		},
	}
	file := &ast.File{Module: "m", Decls: []*ast.Decl{listDecl}}
	s := NewState(file, NewMapLoader())
	listType, _, err := s.ExpandType("List")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listType.HasLabel() {
		t.Fatal("List's recursive reference should have been closed, not left as an open label")
	}
	branches, ok := listType.UnionBranches()
	if !ok || len(branches) != 2 {
		t.Fatalf("List should expand to a 2-branch union, got %s", listType)
	}
}

// TestMutuallyRecursiveRecordsExpand exercises guarded recursion split
// across two declarations (`type A = {B b}` / `type B = {A a}`), the same
// idiom as TestGuardedRecursiveListExpands but with the self-reference one
// hop away through a different name's declaration rather than the
// declaration's own. Synthesising A's constraint block walks into B's,
// which walks back into A's — ExpandType must short-circuit on A the same
// way it already does for a literal self-reference, not recurse forever.
func TestMutuallyRecursiveRecordsExpand(t *testing.T) {
	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "A", TypeExpr: &ast.UnresolvedType{
				Kind: ast.UTRecord, Fields: []ast.UnresolvedField{
					{Name: "b", Type: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "B"}},
				},
			}},
			{Kind: ast.DType, Name: "B", TypeExpr: &ast.UnresolvedType{
				Kind: ast.UTRecord, Fields: []ast.UnresolvedField{
					{Name: "a", Type: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "A"}},
				},
			}},
		},
	}
	s := NewState(file, NewMapLoader())
	aType, _, err := s.ExpandType("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aType.HasLabel() {
		t.Fatal("A should expand to a closed record type, not carry an open label")
	}
	bType, _, err := s.ExpandType("B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bType.HasLabel() {
		t.Fatal("B should expand to a closed record type, not carry an open label")
	}
}

// TestForeignNominalReferenceLoadsFromModuleLoader exercises the "declared
// in a foreign module" branch of spec.md §4.4 step 3: a nominal reference
// qualified with another module's name is validated against the
// ModuleLoader and kept as an opaque NNominal node, never inlined.
func TestForeignNominalReferenceLoadsFromModuleLoader(t *testing.T) {
	loader := NewMapLoader()
	loader.PublishType("other", "Thing", types.TInt, nil)

	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "Alias", TypeExpr: &ast.UnresolvedType{
				Kind: ast.UTNominal, Module: "other", Name: "Thing",
			}},
		},
	}
	s := NewState(file, loader)
	aliasType, _, err := s.ExpandType("Alias")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nom, ok := aliasType.Nominal()
	if !ok || nom.Module != "other" || nom.Name != "Thing" {
		t.Fatalf("Alias should carry an opaque nominal reference to other::Thing, got %s", aliasType)
	}
}

// TestForeignNominalReferenceUnknownModuleFails exercises the failure path
// of the same rule: a foreign reference the ModuleLoader can't resolve is
// reported rather than silently treated as opaque-and-valid.
func TestForeignNominalReferenceUnknownModuleFails(t *testing.T) {
	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "Alias", TypeExpr: &ast.UnresolvedType{
				Kind: ast.UTNominal, Module: "other", Name: "Missing",
			}},
		},
	}
	s := NewState(file, NewMapLoader())
	if _, _, err := s.ExpandType("Alias"); err == nil {
		t.Fatal("expected an error resolving a type from an unpublished foreign module")
	}
}

// TestWhereClauseProducesConstraintBlock exercises the `where`-clause
// lowering of spec.md §4.4 step 6: `define nat as int where $ >= 0` must
// produce a constraint Block with an Assert/Fail/label shape, not just a
// bare expanded Type.
func TestWhereClauseProducesConstraintBlock(t *testing.T) {
	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "nat", TypeExpr: &ast.UnresolvedType{
				Kind:     ast.UTLeaf,
				LeafName: "int",
				Binder:   "$",
				Where: &ast.Expr{
					Kind: ast.EBinary, Op: ast.BGe,
					Left:  &ast.Expr{Kind: ast.EVariable, Name: "$"},
					Right: &ast.Expr{Kind: ast.ELiteral, LiteralKind: "int", LiteralText: "0"},
				},
			}},
		},
	}
	s := NewState(file, NewMapLoader())
	natType, block, err := s.ExpandType("nat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !natType.Equal(types.TInt) {
		t.Errorf("nat should expand to int, got %s", natType)
	}
	if block == nil {
		t.Fatal("a `where` clause should produce a non-nil constraint block")
	}
	sawFail := false
	for _, e := range block.Entries {
		if e.Op.Kind == il.OpFail {
			sawFail = true
		}
	}
	if !sawFail {
		t.Error("nat's constraint block has no Fail entry")
	}
}
