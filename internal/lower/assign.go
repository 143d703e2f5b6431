package lower

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
)

// lowerAssign implements spec.md §4.5 "Assignment": for a destination that
// is a nested access, the Lowerer walks the l-value to its root local
// variable, accumulating evaluated indices onto the stack and collecting
// the field path, then emits a single Update(slot, depth, fields) that
// consumes the evaluated right-hand side and all indices.
func (lw *Lowerer) lowerAssign(s *ast.Stmt, env *Env, b *il.Block) {
	lw.LowerExpr(s.Value, env, b)
	lw.lowerLValue(s.LValue, env, b)
}

// lowerLValue walks e down to its root variable, pushing every index
// expression it passes through along the way, then emits the Update entry
// that finally stores the already-pushed right-hand side.
func (lw *Lowerer) lowerLValue(e *ast.Expr, env *Env, b *il.Block) {
	slot, depth, fields, ok := lw.walkLValue(e, env, b)
	if !ok {
		return
	}
	if depth == 0 {
		// Plain `x = value`: no nested access, so Store replaces Update.
		b.Emit(il.Op{Kind: il.OpStore, Slot: slot}, e.Attr)
		env.MarkInitialised(slot)
		return
	}
	b.Emit(il.Op{Kind: il.OpUpdate, Slot: slot, Depth: depth, FieldPath: fields}, e.Attr)
	env.MarkInitialised(slot)
}

// walkLValue recurses toward e's root EVariable, pushing the evaluated
// index expression of every EIndex step it passes on the way back out of
// the recursion (root-to-leaf order, per spec.md §4.5) and collecting the
// dotted name of every EField step.
func (lw *Lowerer) walkLValue(e *ast.Expr, env *Env, b *il.Block) (slot, depth int, fields []string, ok bool) {
	switch e.Kind {
	case ast.EVariable:
		s, found := env.Lookup(e.Name)
		if !found {
			lw.report(diag.UnknownVariable, e.Attr, "unknown variable %q", e.Name)
			return 0, 0, nil, false
		}
		return s, 0, nil, true

	case ast.EField:
		s, d, f, ok := lw.walkLValue(e.Sub, env, b)
		if !ok {
			return 0, 0, nil, false
		}
		return s, d + 1, append(f, e.Name), true

	case ast.EIndex:
		s, d, f, ok := lw.walkLValue(e.Sub, env, b)
		if !ok {
			return 0, 0, nil, false
		}
		lw.LowerExpr(e.Index, env, b)
		return s, d + 1, f, true

	default:
		lw.report(diag.InvalidLValExpression, e.Attr, "invalid assignment target")
		return 0, 0, nil, false
	}
}

// lowerDestructureAssign implements `x, y = (1, 2)` (spec.md §8 scenario):
// the right-hand tuple is evaluated once, Destructure pops it and pushes
// its elements, and each is stored into its target left to right.
func (lw *Lowerer) lowerDestructureAssign(s *ast.Stmt, env *Env, b *il.Block) {
	lw.LowerExpr(s.Value, env, b)
	b.Emit(il.Op{Kind: il.OpDestructure}, s.Attr)
	for _, lv := range s.LValues {
		if lv.Kind != ast.EVariable {
			lw.report(diag.InvalidTupleLVal, lv.Attr, "destructuring target must be a plain variable")
			continue
		}
		slot, found := env.Lookup(lv.Name)
		if !found {
			lw.report(diag.UnknownVariable, lv.Attr, "unknown variable %q", lv.Name)
			continue
		}
		b.Emit(il.Op{Kind: il.OpStore, Slot: slot}, lv.Attr)
		env.MarkInitialised(slot)
	}
}
