package lower

import (
	"sort"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/constant"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/value"
)

// LowerExpr pushes the value of e onto the block's virtual stack (spec.md
// §4.5 "Expression lowering. Pushes values onto the virtual stack.").
func (lw *Lowerer) LowerExpr(e *ast.Expr, env *Env, b *il.Block) {
	switch e.Kind {
	case ast.ELiteral:
		v, err := literalValue(e)
		if err != nil {
			if de, ok := err.(*diag.Error); ok {
				lw.Errors.Report(de)
			}
			return
		}
		b.Emit(il.Op{Kind: il.OpConst, Value: v}, e.Attr)

	case ast.EVariable:
		slot, ok := env.Lookup(e.Name)
		if !ok {
			lw.report(diag.UnknownVariable, e.Attr, "unknown variable %q", e.Name)
			return
		}
		if env.IsUninitialised(slot) {
			lw.report(diag.VariablePossiblyUninitialised, e.Attr, "variable %q may not have been initialised", e.Name)
		}
		b.Emit(il.Op{Kind: il.OpLoad, Slot: slot}, e.Attr)

	case ast.EBinary:
		lw.lowerBinary(e, env, b)

	case ast.EUnary:
		lw.LowerExpr(e.Sub, env, b)
		b.Emit(il.Op{Kind: il.OpConvert, TypeName: unaryOpName(e.UOp)}, e.Attr)

	case ast.EIsTest:
		trueLabel := il.NewLabel("is_true")
		endLabel := il.NewLabel("is_end")
		lw.LowerCondition(trueLabel, e, env, b)
		b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: false}}, e.Attr)
		b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, e.Attr)
		b.EmitLabel(trueLabel, e.Attr)
		b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: true}}, e.Attr)
		b.EmitLabel(endLabel, e.Attr)

	case ast.EInvoke:
		lw.lowerInvoke(e, env, b)

	case ast.EIndex:
		lw.LowerExpr(e.Sub, env, b)
		lw.LowerExpr(e.Index, env, b)
		b.Emit(il.Op{Kind: il.OpListLoad}, e.Attr)

	case ast.EField:
		lw.LowerExpr(e.Sub, env, b)
		b.Emit(il.Op{Kind: il.OpFieldLoad, FieldName: e.Name}, e.Attr)

	case ast.ETuple:
		for _, el := range e.Elems {
			lw.LowerExpr(el, env, b)
		}
		b.Emit(il.Op{Kind: il.OpNewTuple, N: len(e.Elems)}, e.Attr)

	case ast.ERecord:
		fields := append([]ast.RecordFieldExpr(nil), e.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		for _, f := range fields {
			lw.LowerExpr(f.Value, env, b)
		}
		b.Emit(il.Op{Kind: il.OpNewRecord}, e.Attr)

	case ast.EList:
		for _, el := range e.Elems {
			lw.LowerExpr(el, env, b)
		}
		b.Emit(il.Op{Kind: il.OpNewList, N: len(e.Elems)}, e.Attr)

	case ast.ESet:
		for _, el := range e.Elems {
			lw.LowerExpr(el, env, b)
		}
		b.Emit(il.Op{Kind: il.OpNewSet, N: len(e.Elems)}, e.Attr)

	case ast.EDict:
		for _, ent := range e.Entries {
			lw.LowerExpr(ent.Key, env, b)
			lw.LowerExpr(ent.Value, env, b)
		}
		b.Emit(il.Op{Kind: il.OpNewDict, N: len(e.Entries)}, e.Attr)

	case ast.EComprehension:
		lw.lowerComprehension(e, env, b)

	case ast.EQuantified:
		lw.lowerQuantified(e, env, b)

	default:
		lw.report(diag.NonConstantExpression, e.Attr, "unsupported expression form")
	}
}

func literalValue(e *ast.Expr) (value.Value, error) {
	switch e.LiteralKind {
	case "null":
		return value.NullValue{}, nil
	case "bool":
		return value.BoolValue{Value: e.LiteralText == "true"}, nil
	case "string":
		return value.StringValue{Value: e.LiteralText}, nil
	}
	// int/real/byte/char literal text is parsed by the Constant Evaluator
	// (internal/constant.parseLiteral), the same parser constant
	// declarations and switch-case labels go through.
	return constant.NewEvaluator(nil, nil).Eval(e)
}

func unaryOpName(op ast.UnaryOp) string {
	switch op {
	case ast.UNeg:
		return "neg"
	case ast.UNot:
		return "not"
	case ast.ULen:
		return "len"
	case ast.UBitNot:
		return "bitnot"
	}
	return "?"
}

// lowerBinary emits the value-producing binary operators. Comparison and
// logical && / || operators never reach here directly as value-producing
// ops in isolation — they are compiled through LowerCondition wherever they
// appear in a boolean-consuming position (if/while/assert conditions); this
// handles the case where a comparison is itself used as a plain value
// (e.g. `x := a < b`), materialising the boolean explicitly.
func (lw *Lowerer) lowerBinary(e *ast.Expr, env *Env, b *il.Block) {
	if isComparisonOrLogical(e.Op) {
		trueLabel := il.NewLabel("cmp_true")
		endLabel := il.NewLabel("cmp_end")
		lw.LowerCondition(trueLabel, e, env, b)
		b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: false}}, e.Attr)
		b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, e.Attr)
		b.EmitLabel(trueLabel, e.Attr)
		b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: true}}, e.Attr)
		b.EmitLabel(endLabel, e.Attr)
		return
	}
	lw.LowerExpr(e.Left, env, b)
	lw.LowerExpr(e.Right, env, b)
	switch e.Op {
	case ast.BConcat:
		// No dedicated list-concatenation opcode exists in the IL op set
		// (spec.md §3.2); SetUnion is defined over any ordered-or-not
		// aggregate pair, so list `++` reuses it rather than growing the
		// op set for one operator.
		b.Emit(il.Op{Kind: il.OpSetUnion, Forward: true}, e.Attr)
	case ast.BSetUnion:
		b.Emit(il.Op{Kind: il.OpSetUnion, Forward: true}, e.Attr)
	case ast.BSetIntersect:
		b.Emit(il.Op{Kind: il.OpSetIntersect, Forward: true}, e.Attr)
	case ast.BSetDiff:
		b.Emit(il.Op{Kind: il.OpSetIntersect, Forward: false}, e.Attr)
	default:
		b.Emit(il.Op{Kind: il.OpBinOp, Op2: binOpOf(e.Op)}, e.Attr)
	}
}

func isComparisonOrLogical(op ast.BinaryOp) bool {
	switch op {
	case ast.BEq, ast.BNe, ast.BLt, ast.BLe, ast.BGt, ast.BGe, ast.BLogicalAnd, ast.BLogicalOr:
		return true
	}
	return false
}

func binOpOf(op ast.BinaryOp) il.BinOp {
	switch op {
	case ast.BAdd:
		return il.Add
	case ast.BSub:
		return il.Sub
	case ast.BMul:
		return il.Mul
	case ast.BDiv:
		return il.Div
	case ast.BRem:
		return il.Rem
	case ast.BRange:
		return il.Range
	case ast.BBitAnd:
		return il.And
	case ast.BBitOr:
		return il.Or
	case ast.BBitXor:
		return il.Xor
	case ast.BShl:
		return il.Shl
	case ast.BShr:
		return il.Shr
	}
	return il.Add
}

func cmpOpOf(op ast.BinaryOp) il.CmpOp {
	switch op {
	case ast.BEq:
		return il.CmpEq
	case ast.BNe:
		return il.CmpNe
	case ast.BLt:
		return il.CmpLt
	case ast.BLe:
		return il.CmpLe
	case ast.BGt:
		return il.CmpGt
	case ast.BGe:
		return il.CmpGe
	}
	return il.CmpEq
}

// LowerCondition emits a block that falls through on false and branches to
// target on true (spec.md §4.5). AND/OR get short-circuit shapes; `v is T`
// and equality-with-null specialise to IfType; everything else evaluates
// both sides and emits a single IfGoto.
func (lw *Lowerer) LowerCondition(target string, e *ast.Expr, env *Env, b *il.Block) {
	switch e.Kind {
	case ast.EBinary:
		switch e.Op {
		case ast.BLogicalAnd:
			lw.lowerAnd(target, e, env, b)
			return
		case ast.BLogicalOr:
			lw.lowerOr(target, e, env, b)
			return
		case ast.BEq, ast.BNe:
			if isNullLiteral(e.Right) {
				lw.lowerIsNull(target, e.Left, e.Op == ast.BNe, env, b, e.Attr)
				return
			}
			if isNullLiteral(e.Left) {
				lw.lowerIsNull(target, e.Right, e.Op == ast.BNe, env, b, e.Attr)
				return
			}
			lw.lowerCmp(target, e, env, b)
			return
		case ast.BLt, ast.BLe, ast.BGt, ast.BGe:
			lw.lowerCmp(target, e, env, b)
			return
		}
	case ast.EUnary:
		if e.UOp == ast.UNot {
			falseFallthrough := il.NewLabel("not_skip")
			lw.LowerCondition(falseFallthrough, e.Sub, env, b)
			b.Emit(il.Op{Kind: il.OpGoto, Target: target}, e.Attr)
			b.EmitLabel(falseFallthrough, e.Attr)
			return
		}
	case ast.EIsTest:
		slot, ok := env.Lookup(e.Sub.Name)
		if ok && e.Sub.Kind == ast.EVariable {
			b.Emit(il.Op{Kind: il.OpIfType, Slot: slot, TypeName: typeNameOf(e.TestType), Target: target}, e.Attr)
			return
		}
	}
	// General fallback: evaluate as a boolean-valued expression and branch
	// on equality with `true`.
	lw.LowerExpr(e, env, b)
	b.Emit(il.Op{Kind: il.OpConst, Value: value.BoolValue{Value: true}}, e.Attr)
	b.Emit(il.Op{Kind: il.OpIfGoto, Cmp: il.CmpEq, Target: target}, e.Attr)
}

func (lw *Lowerer) lowerAnd(target string, e *ast.Expr, env *Env, b *il.Block) {
	skip := il.NewLabel("and_skip")
	lw.lowerConditionInverted(skip, e.Left, env, b)
	lw.LowerCondition(target, e.Right, env, b)
	b.EmitLabel(skip, e.Attr)
}

func (lw *Lowerer) lowerOr(target string, e *ast.Expr, env *Env, b *il.Block) {
	lw.LowerCondition(target, e.Left, env, b)
	lw.LowerCondition(target, e.Right, env, b)
}

// lowerConditionInverted emits a branch to target when e is false (falls
// through when e is true) — the complement of LowerCondition, used to
// implement AND's short-circuit skip-on-false shape without duplicating
// every specialisation above.
func (lw *Lowerer) lowerConditionInverted(target string, e *ast.Expr, env *Env, b *il.Block) {
	trueLabel := il.NewLabel("inv_true")
	lw.LowerCondition(trueLabel, e, env, b)
	b.Emit(il.Op{Kind: il.OpGoto, Target: target}, e.Attr)
	b.EmitLabel(trueLabel, e.Attr)
}

func (lw *Lowerer) lowerCmp(target string, e *ast.Expr, env *Env, b *il.Block) {
	lw.LowerExpr(e.Left, env, b)
	lw.LowerExpr(e.Right, env, b)
	b.Emit(il.Op{Kind: il.OpIfGoto, Cmp: cmpOpOf(e.Op), Target: target}, e.Attr)
}

func (lw *Lowerer) lowerIsNull(target string, operand *ast.Expr, negate bool, env *Env, b *il.Block, attr source.Attribute) {
	if operand.Kind != ast.EVariable {
		// Non-local null test: fall back to evaluating and comparing.
		lw.LowerExpr(operand, env, b)
		b.Emit(il.Op{Kind: il.OpConst, Value: value.NullValue{}}, attr)
		cmp := il.CmpEq
		if negate {
			cmp = il.CmpNe
		}
		b.Emit(il.Op{Kind: il.OpIfGoto, Cmp: cmp, Target: target}, attr)
		return
	}
	slot, _ := env.Lookup(operand.Name)
	if negate {
		skip := il.NewLabel("notnull_skip")
		b.Emit(il.Op{Kind: il.OpIfType, Slot: slot, TypeName: "null", Target: skip}, attr)
		b.Emit(il.Op{Kind: il.OpGoto, Target: target}, attr)
		b.EmitLabel(skip, attr)
		return
	}
	b.Emit(il.Op{Kind: il.OpIfType, Slot: slot, TypeName: "null", Target: target}, attr)
}

func isNullLiteral(e *ast.Expr) bool {
	return e.Kind == ast.ELiteral && e.LiteralKind == "null"
}

func typeNameOf(ut *ast.UnresolvedType) string {
	if ut.Kind == ast.UTLeaf {
		return ut.LeafName
	}
	if ut.Kind == ast.UTNominal {
		return ut.Name
	}
	return "?"
}
