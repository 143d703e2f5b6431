package constant

import (
	"testing"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
)

func intLit(text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ELiteral, LiteralKind: "int", LiteralText: text}
}

func TestEvaluateArithmetic(t *testing.T) {
	exprs := map[string]*ast.Expr{
		"K": {Kind: ast.EBinary, Op: ast.BAdd, Left: intLit("2"), Right: intLit("3")},
	}
	ev := NewEvaluator(exprs, nil)
	v, err := ev.Evaluate("K")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "5" {
		t.Errorf("K = %s, want 5", v)
	}
}

func TestEvaluateMemoises(t *testing.T) {
	exprs := map[string]*ast.Expr{"K": intLit("7")}
	ev := NewEvaluator(exprs, nil)
	v1, _ := ev.Evaluate("K")
	v2, _ := ev.Evaluate("K")
	if !v1.Equal(v2) {
		t.Errorf("Evaluate did not return a stable result across calls")
	}
}

func TestCyclicConstantDetected(t *testing.T) {
	// A = B + 1; B = A + 1
	exprs := map[string]*ast.Expr{
		"A": {Kind: ast.EBinary, Op: ast.BAdd, Left: &ast.Expr{Kind: ast.EVariable, Name: "B"}, Right: intLit("1")},
		"B": {Kind: ast.EBinary, Op: ast.BAdd, Left: &ast.Expr{Kind: ast.EVariable, Name: "A"}, Right: intLit("1")},
	}
	ev := NewEvaluator(exprs, nil)
	_, err := ev.Evaluate("A")
	if err == nil {
		t.Fatal("expected a CyclicConstant error")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.CyclicConstant {
		t.Errorf("got error %v, want diag.CyclicConstant", err)
	}
}

func TestNonConstantExpressionRejected(t *testing.T) {
	exprs := map[string]*ast.Expr{
		"K": {Kind: ast.EInvoke, Name: "foo"},
	}
	ev := NewEvaluator(exprs, nil)
	_, err := ev.Evaluate("K")
	if err == nil {
		t.Fatal("expected a NonConstantExpression error")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.NonConstantExpression {
		t.Errorf("got error %v, want diag.NonConstantExpression", err)
	}
}
