package main

import "github.com/zimothy/Whiley/internal/ast"

// scenario names one built-in compilation unit the driver exercises. These
// mirror internal/compile's own test fixtures (natFile/pointFile) rather
// than parsing real source, since spec.md leaves lexical syntax and any
// CLI driver surface as a Non-goal.
type scenario struct {
	name string
	file *ast.File
}

var scenarios = []scenario{
	{name: "nat", file: natScenario()},
	{name: "point", file: pointScenario()},
}

func intLit(text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ELiteral, LiteralKind: "int", LiteralText: text}
}

// natScenario builds spec.md §8's guarded-int scenario:
//
//	define nat as int where $ >= 0
//	function f(nat x) returns nat: return x
func natScenario() *ast.File {
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
	return &ast.File{Module: "nat", Decls: []*ast.Decl{natDecl, fDecl}}
}

// pointScenario builds spec.md §8's union-of-records scenario:
//
//	define Point2D as {int x, int y}
//	define Point3D as {int x, int y, int z}
//	define Point as Point2D | Point3D
func pointScenario() *ast.File {
	rec := func(fields ...ast.UnresolvedField) *ast.UnresolvedType {
		return &ast.UnresolvedType{Kind: ast.UTRecord, Fields: fields}
	}
	field := func(name string) ast.UnresolvedField {
		return ast.UnresolvedField{Name: name, Type: &ast.UnresolvedType{Kind: ast.UTLeaf, LeafName: "int"}}
	}
	return &ast.File{
		Module: "point",
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
