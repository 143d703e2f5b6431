package lower

import (
	"testing"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
)

func intLit(text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ELiteral, LiteralKind: "int", LiteralText: text}
}

func TestBreakOutsideLoopReported(t *testing.T) {
	lw := NewLowerer("m", nil, nil)
	env := NewEnv()
	b := il.NewBlock(0)
	lw.LowerStmt(&ast.Stmt{Kind: ast.SBreak}, env, b)

	errs := lw.Errors.Errors()
	if len(errs) != 1 || errs[0].Kind != diag.BreakOutsideLoop {
		t.Fatalf("expected one BreakOutsideLoop error, got %v", errs)
	}
}

func TestContinueOutsideLoopReported(t *testing.T) {
	lw := NewLowerer("m", nil, nil)
	env := NewEnv()
	b := il.NewBlock(0)
	lw.LowerStmt(&ast.Stmt{Kind: ast.SContinue}, env, b)

	errs := lw.Errors.Errors()
	if len(errs) != 1 || errs[0].Kind != diag.BreakOutsideLoop {
		t.Fatalf("expected one BreakOutsideLoop error, got %v", errs)
	}
}

func TestBreakInsideWhileResolvesToLoopEnd(t *testing.T) {
	lw := NewLowerer("m", nil, nil)
	env := NewEnv()
	b := il.NewBlock(0)
	whileStmt := &ast.Stmt{
		Kind: ast.SWhile,
		Cond: &ast.Expr{Kind: ast.ELiteral, LiteralKind: "bool", LiteralText: "true"},
		Body: []*ast.Stmt{{Kind: ast.SBreak}},
	}
	lw.LowerStmt(whileStmt, env, b)

	if len(lw.Errors.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", lw.Errors.Errors())
	}

	var endLabel string
	for _, e := range b.Entries {
		if e.Op.Kind == il.OpLabel {
			endLabel = e.Op.Label
		}
	}
	if endLabel == "" {
		t.Fatal("while loop did not emit a trailing end label")
	}

	// lowerWhile emits exactly two non-end labels before the body's
	// statements (loop-start, then loop-body); the first Goto after the
	// later of those two is the one the break statement itself emits.
	bodyLabelIndex := -1
	for i, e := range b.Entries {
		if e.Op.Kind == il.OpLabel && e.Op.Label != endLabel {
			bodyLabelIndex = i
		}
	}
	if bodyLabelIndex < 0 {
		t.Fatal("while loop did not emit a body label")
	}
	var breakGoto *il.Op
	for i := bodyLabelIndex + 1; i < len(b.Entries); i++ {
		if b.Entries[i].Op.Kind == il.OpGoto {
			breakGoto = &b.Entries[i].Op
			break
		}
	}
	if breakGoto == nil {
		t.Fatal("break did not emit a Goto inside the loop body")
	}
	if breakGoto.Target != endLabel {
		t.Errorf("break Goto target %q does not match the loop's trailing label %q", breakGoto.Target, endLabel)
	}
}

func TestSwitchDuplicateCaseLabelReported(t *testing.T) {
	lw := NewLowerer("m", nil, nil)
	env := NewEnv()
	b := il.NewBlock(0)
	sw := &ast.Stmt{
		Kind:        ast.SSwitch,
		SwitchValue: intLit("1"),
		Cases: []ast.SwitchCaseStmt{
			{Values: []*ast.Expr{intLit("1")}, Body: nil},
			{Values: []*ast.Expr{intLit("1")}, Body: nil},
		},
	}
	lw.LowerStmt(sw, env, b)

	errs := lw.Errors.Errors()
	found := false
	for _, e := range errs {
		if e.Kind == diag.DuplicateCaseLabel {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateCaseLabel error, got %v", errs)
	}
}

func TestSwitchDuplicateDefaultReported(t *testing.T) {
	lw := NewLowerer("m", nil, nil)
	env := NewEnv()
	b := il.NewBlock(0)
	sw := &ast.Stmt{
		Kind:        ast.SSwitch,
		SwitchValue: intLit("1"),
		Cases: []ast.SwitchCaseStmt{
			{IsDefault: true},
			{IsDefault: true},
		},
	}
	lw.LowerStmt(sw, env, b)

	errs := lw.Errors.Errors()
	found := false
	for _, e := range errs {
		if e.Kind == diag.DuplicateDefaultLabel {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateDefaultLabel error, got %v", errs)
	}
}

func TestEnvScopeRewindsOnShadowing(t *testing.T) {
	env := NewEnv()
	outer := env.Define("x")

	mark := env.BeginScope()
	inner := env.Define("x")
	if inner == outer {
		t.Fatal("shadowing x in a nested scope should allocate a fresh slot")
	}
	if got, _ := env.Lookup("x"); got != inner {
		t.Fatalf("x should resolve to the inner slot %d while the scope is open, got %d", inner, got)
	}

	env.EndScope(mark)
	if got, ok := env.Lookup("x"); !ok || got != outer {
		t.Fatalf("x should resolve back to the outer slot %d after EndScope, got %d (ok=%v)", outer, got, ok)
	}

	// Slots are never reused even after a scope closes.
	next := env.Define("y")
	if next <= inner {
		t.Errorf("slot allocation should stay monotonic: y got %d, inner x was %d", next, inner)
	}
}

func TestEnvUninitialisedTracking(t *testing.T) {
	env := NewEnv()
	slot := env.DefineUninit("x")
	if !env.IsUninitialised(slot) {
		t.Fatal("DefineUninit should mark the slot uninitialised")
	}
	env.MarkInitialised(slot)
	if env.IsUninitialised(slot) {
		t.Fatal("MarkInitialised should clear the uninitialised flag")
	}
}
