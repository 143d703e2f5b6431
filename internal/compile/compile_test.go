package compile

import (
	"testing"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/resolver"
)

func intLit(text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ELiteral, LiteralKind: "int", LiteralText: text}
}

// natFile builds spec.md §8's end-to-end scenario:
//
//	define nat as int where $ >= 0
//	function f(nat x) returns nat: return x
func natFile() *ast.File {
	natDecl := &ast.Decl{
		Kind: ast.DType,
		Name: "nat",
		TypeExpr: &ast.UnresolvedType{
			Kind:     ast.UTLeaf,
			LeafName: "int",
			Binder:   "$",
			Where: &ast.Expr{
				Kind:  ast.EBinary,
				Op:    ast.BGe,
				Left:  &ast.Expr{Kind: ast.EVariable, Name: "$"},
				Right: intLit("0"),
			},
		},
	}
	fDecl := &ast.Decl{
		Kind: ast.DFunction,
		Name: "f",
		Params: []ast.ParamDecl{
			{Name: "x", Type: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "nat"}},
		},
		ReturnType: &ast.UnresolvedType{Kind: ast.UTNominal, Name: "nat"},
		Body: []*ast.Stmt{
			{Kind: ast.SReturn, Value: &ast.Expr{Kind: ast.EVariable, Name: "x"}},
		},
	}
	return &ast.File{Module: "m", Decls: []*ast.Decl{natDecl, fDecl}}
}

func TestFileCompilesNatScenario(t *testing.T) {
	res := File(natFile(), resolver.NewMapLoader())
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	nt, ok := res.Module.Types["nat"]
	if !ok {
		t.Fatal("nat type missing from compiled module")
	}
	if nt.Constraint == nil {
		t.Fatal("nat's `where $ >= 0` clause did not produce a constraint block")
	}
	sawFail := false
	for _, e := range nt.Constraint.Entries {
		if e.Op.Kind == il.OpFail {
			sawFail = true
		}
	}
	if !sawFail {
		t.Error("nat's constraint block has no Fail entry")
	}

	fn, ok := res.Module.Functions["f"]
	if !ok {
		t.Fatal("function f missing from compiled module")
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
	nom, ok := fn.Params[0].Type.Nominal()
	if !ok || nom.Name != "nat" {
		t.Errorf("param x should carry the opaque nominal type nat, got %s", fn.Params[0].Type)
	}
	sawReturn := false
	for _, e := range fn.Body.Entries {
		if e.Op.Kind == il.OpReturn {
			sawReturn = true
		}
	}
	if !sawReturn {
		t.Error("f's body has no Return entry")
	}
}

// pointFile builds spec.md §8's union-of-records scenario:
//
//	define Point2D as {int x, int y}
//	define Point3D as {int x, int y, int z}
//	define Point as Point2D | Point3D
func pointFile() *ast.File {
	rec := func(fields ...ast.UnresolvedField) *ast.UnresolvedType {
		return &ast.UnresolvedType{Kind: ast.UTRecord, Fields: fields}
	}
	field := func(name string) ast.UnresolvedField {
		return ast.UnresolvedField{Name: name, Type: &ast.UnresolvedType{Kind: ast.UTLeaf, LeafName: "int"}}
	}
	return &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{Kind: ast.DType, Name: "Point2D", TypeExpr: rec(field("x"), field("y"))},
			{Kind: ast.DType, Name: "Point3D", TypeExpr: rec(field("x"), field("y"), field("z"))},
			{Kind: ast.DType, Name: "Point", TypeExpr: &ast.UnresolvedType{
				Kind: ast.UTUnion,
				Branches: []*ast.UnresolvedType{
					{Kind: ast.UTNominal, Name: "Point2D"},
					{Kind: ast.UTNominal, Name: "Point3D"},
				},
			}},
		},
	}
}

func TestFileCompilesPointUnionScenario(t *testing.T) {
	res := File(pointFile(), resolver.NewMapLoader())
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if _, ok := res.Module.Types["Point"]; !ok {
		t.Fatal("Point type missing from compiled module")
	}
	branches, ok := res.Module.Types["Point"].Type.UnionBranches()
	if !ok || len(branches) != 2 {
		t.Fatalf("Point should expand to a 2-branch union, got %+v", res.Module.Types["Point"].Type)
	}
}

func TestFilePreconditionAndPostcondition(t *testing.T) {
	file := &ast.File{
		Module: "m",
		Decls: []*ast.Decl{
			{
				Kind: ast.DFunction,
				Name: "abs",
				Params: []ast.ParamDecl{
					{Name: "x", Type: &ast.UnresolvedType{Kind: ast.UTLeaf, LeafName: "int"}},
				},
				ReturnType:    &ast.UnresolvedType{Kind: ast.UTLeaf, LeafName: "int"},
				Precondition:  &ast.Expr{Kind: ast.EBinary, Op: ast.BGe, Left: &ast.Expr{Kind: ast.EVariable, Name: "x"}, Right: intLit("0")},
				Postcondition: &ast.Expr{Kind: ast.EBinary, Op: ast.BGe, Left: &ast.Expr{Kind: ast.EVariable, Name: "$"}, Right: intLit("0")},
				Body: []*ast.Stmt{
					{Kind: ast.SReturn, Value: &ast.Expr{Kind: ast.EVariable, Name: "x"}},
				},
			},
		},
	}
	res := File(file, resolver.NewMapLoader())
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	fn := res.Module.Functions["abs"]
	if fn.Precondition == nil {
		t.Fatal("abs should have a lowered precondition block")
	}
	if fn.Postcondition == nil {
		t.Fatal("abs should have a lowered postcondition block")
	}
}
