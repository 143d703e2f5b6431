package lower

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/value"
)

// lowerComprehension desugars a list/set comprehension to a slot-allocated
// accumulator initialised to NewList(0)/NewSet(0), then iterated with a
// ForAll frame filtered by the optional condition, each iteration unioning
// the element expression into the accumulator (spec.md §4.5).
func (lw *Lowerer) lowerComprehension(e *ast.Expr, env *Env, b *il.Block) {
	mark := env.BeginScope()
	defer env.EndScope(mark)

	accSlot := env.Define("$acc")
	kind := il.OpNewList
	if e.CompIsSet {
		kind = il.OpNewSet
	}
	b.Emit(il.Op{Kind: kind, N: 0}, e.Attr)
	b.Emit(il.Op{Kind: il.OpStore, Slot: accSlot}, e.Attr)

	lw.LowerExpr(e.CompSource, env, b)
	elemSlot := env.Define(e.CompVar)
	endLabel := il.NewLabel("compr_end")
	b.Emit(il.Op{Kind: il.OpForAll, Slot: elemSlot, Slot2: elemSlot, End: endLabel, Modified: []int{accSlot}}, e.Attr)

	if e.CompCond != nil {
		skip := il.NewLabel("compr_skip")
		lw.lowerConditionInverted(skip, e.CompCond, env, b)
		lw.emitAccumulate(e, env, b, accSlot)
		b.EmitLabel(skip, e.Attr)
	} else {
		lw.emitAccumulate(e, env, b, accSlot)
	}

	b.Emit(il.Op{Kind: il.OpEnd, Target: endLabel}, e.Attr)
	b.EmitLabel(endLabel, e.Attr)
	b.Emit(il.Op{Kind: il.OpLoad, Slot: accSlot}, e.Attr)
}

// emitAccumulate pushes the element expression and unions it into the
// accumulator. List and set comprehensions share the same op: SetUnion is
// defined over any aggregate pair, so there is no need for a separate
// list-accumulation opcode (see lowerBinary's BConcat note).
func (lw *Lowerer) emitAccumulate(e *ast.Expr, env *Env, b *il.Block, accSlot int) {
	b.Emit(il.Op{Kind: il.OpLoad, Slot: accSlot}, e.Attr)
	lw.LowerExpr(e.CompElem, env, b)
	b.Emit(il.Op{Kind: il.OpSetUnion, Forward: true}, e.Attr)
	b.Emit(il.Op{Kind: il.OpStore, Slot: accSlot}, e.Attr)
}

// lowerQuantified compiles `some`/`none`/`all` over a source collection
// into a boolean accumulator threaded through a ForAll frame (spec.md
// §4.5): `all` starts true and ANDs in each element's predicate; `some`
// starts false and ORs it in; `none` starts true and ANDs in the
// predicate's negation.
func (lw *Lowerer) lowerQuantified(e *ast.Expr, env *Env, b *il.Block) {
	mark := env.BeginScope()
	defer env.EndScope(mark)

	accSlot := env.Define("$quant")
	init := e.QuantKind != ast.QuantSome
	b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: init}}, e.Attr)
	b.Emit(il.Op{Kind: il.OpStore, Slot: accSlot}, e.Attr)

	lw.LowerExpr(e.CompSource, env, b)
	elemSlot := env.Define(e.CompVar)
	endLabel := il.NewLabel("quant_end")
	b.Emit(il.Op{Kind: il.OpForAll, Slot: elemSlot, Slot2: elemSlot, End: endLabel, Modified: []int{accSlot}}, e.Attr)

	b.Emit(il.Op{Kind: il.OpLoad, Slot: accSlot}, e.Attr)
	lw.LowerExpr(e.CompCond, env, b)
	if e.QuantKind == ast.QuantNone {
		b.Emit(il.Op{Kind: il.OpConvert, TypeName: unaryOpName(ast.UNot)}, e.Attr)
	}
	op := il.And
	if e.QuantKind == ast.QuantSome {
		op = il.Or
	}
	b.Emit(il.Op{Kind: il.OpBinOp, Op2: op}, e.Attr)
	b.Emit(il.Op{Kind: il.OpStore, Slot: accSlot}, e.Attr)

	b.Emit(il.Op{Kind: il.OpEnd, Target: endLabel}, e.Attr)
	b.EmitLabel(endLabel, e.Attr)
	b.Emit(il.Op{Kind: il.OpLoad, Slot: accSlot}, e.Attr)
}
