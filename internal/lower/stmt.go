package lower

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/constant"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/value"
)

// LowerStmt lowers one statement into b, sharing env with its siblings.
func (lw *Lowerer) LowerStmt(s *ast.Stmt, env *Env, b *il.Block) {
	lw.Errors.StartUnit()
	switch s.Kind {
	case ast.SAssign:
		lw.lowerAssign(s, env, b)
	case ast.SDestructureAssign:
		lw.lowerDestructureAssign(s, env, b)
	case ast.SVarDecl:
		lw.lowerVarDecl(s, env, b)
	case ast.SIf:
		lw.lowerIf(s, env, b)
	case ast.SWhile:
		lw.lowerWhile(s, env, b)
	case ast.SDoWhile:
		lw.lowerDoWhile(s, env, b)
	case ast.SFor:
		lw.lowerFor(s, env, b)
	case ast.SSwitch:
		lw.lowerSwitch(s, env, b)
	case ast.SBreak:
		lw.lowerBreak(s, env, b)
	case ast.SContinue:
		lw.lowerContinue(s, env, b)
	case ast.SReturn:
		lw.lowerReturn(s, env, b)
	case ast.SAssert:
		lw.lowerAssertStmt(s.Value, env, b, s.Attr, "assertion failed")
	case ast.SAssume:
		lw.lowerAssertStmt(s.Value, env, b, s.Attr, "assumption violated")
	case ast.STry:
		lw.lowerTry(s, env, b)
	case ast.SThrow:
		lw.LowerExpr(s.Value, env, b)
		b.Emit(il.Op{Kind: il.OpThrow}, s.Attr)
	case ast.SExprStmt:
		lw.lowerExprStmt(s, env, b)
	default:
		lw.report(diag.InternalFailure, s.Attr, "unhandled statement kind %v", s.Kind)
	}
}

func (lw *Lowerer) lowerVarDecl(s *ast.Stmt, env *Env, b *il.Block) {
	if s.Init == nil {
		env.DefineUninit(s.VarName)
		return
	}
	lw.LowerExpr(s.Init, env, b)
	slot := env.Define(s.VarName)
	b.Emit(il.Op{Kind: il.OpStore, Slot: slot}, s.Attr)
}

func (lw *Lowerer) lowerIf(s *ast.Stmt, env *Env, b *il.Block) {
	elseLabel := il.NewLabel("if_else")
	lw.lowerConditionInverted(elseLabel, s.Cond, env, b)

	mark := env.BeginScope()
	lw.LowerStmts(s.Then, env, b)
	env.EndScope(mark)

	if s.Else == nil {
		b.EmitLabel(elseLabel, s.Attr)
		return
	}
	endLabel := il.NewLabel("if_end")
	b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, s.Attr)
	b.EmitLabel(elseLabel, s.Attr)
	mark = env.BeginScope()
	lw.LowerStmts(s.Else, env, b)
	env.EndScope(mark)
	b.EmitLabel(endLabel, s.Attr)
}

// lowerWhile implements spec.md §4.5 "Loops": the body is wrapped in a
// Loop(end, modified)/End(end) pair, and any `where` invariants are
// lowered as Assert/Fail pairs both before entry and after every
// back-edge — here, at the loop-start label every back-edge (including
// `continue`) jumps to, right before testing the condition again.
func (lw *Lowerer) lowerWhile(s *ast.Stmt, env *Env, b *il.Block) {
	mark := env.BeginScope()
	defer env.EndScope(mark)

	startLabel := il.NewLabel("while_start")
	bodyLabel := il.NewLabel("while_body")
	endLabel := il.NewLabel("while_end")
	modified := lw.collectModifiedSlots(s.Body, env)

	b.Emit(il.Op{Kind: il.OpLoop, End: endLabel, Modified: modified}, s.Attr)
	b.EmitLabel(startLabel, s.Attr)
	for _, inv := range s.Invariants {
		lw.lowerAssertStmt(inv, env, b, s.Attr, "loop invariant violated")
	}
	lw.LowerCondition(bodyLabel, s.Cond, env, b)
	b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, s.Attr)
	b.EmitLabel(bodyLabel, s.Attr)

	lw.pushLoop(endLabel, startLabel)
	lw.LowerStmts(s.Body, env, b)
	lw.popLoop()

	b.Emit(il.Op{Kind: il.OpGoto, Target: startLabel}, s.Attr)
	b.Emit(il.Op{Kind: il.OpEnd, Target: endLabel}, s.Attr)
	b.EmitLabel(endLabel, s.Attr)
}

func (lw *Lowerer) lowerDoWhile(s *ast.Stmt, env *Env, b *il.Block) {
	mark := env.BeginScope()
	defer env.EndScope(mark)

	bodyLabel := il.NewLabel("dowhile_body")
	continueLabel := il.NewLabel("dowhile_cond")
	endLabel := il.NewLabel("dowhile_end")
	modified := lw.collectModifiedSlots(s.Body, env)

	for _, inv := range s.Invariants {
		lw.lowerAssertStmt(inv, env, b, s.Attr, "loop invariant violated")
	}
	b.Emit(il.Op{Kind: il.OpLoop, End: endLabel, Modified: modified}, s.Attr)
	b.EmitLabel(bodyLabel, s.Attr)

	lw.pushLoop(endLabel, continueLabel)
	lw.LowerStmts(s.Body, env, b)
	lw.popLoop()

	b.EmitLabel(continueLabel, s.Attr)
	for _, inv := range s.Invariants {
		lw.lowerAssertStmt(inv, env, b, s.Attr, "loop invariant violated")
	}
	lw.LowerCondition(bodyLabel, s.Cond, env, b)
	b.Emit(il.Op{Kind: il.OpEnd, Target: endLabel}, s.Attr)
	b.EmitLabel(endLabel, s.Attr)
}

// lowerFor reuses the ForAll control shape already used for comprehensions
// (internal/lower/comprehension.go), since a statement-level `for x in xs`
// binds one element variable per iteration the same way a comprehension's
// source iteration does; While/DoWhile, which have no bound element
// variable, use the more general Loop/End pair instead.
func (lw *Lowerer) lowerFor(s *ast.Stmt, env *Env, b *il.Block) {
	mark := env.BeginScope()
	defer env.EndScope(mark)

	lw.LowerExpr(s.ForSource, env, b)
	elemSlot := env.Define(s.ForVar)
	endLabel := il.NewLabel("for_end")
	continueLabel := il.NewLabel("for_continue")
	modified := lw.collectModifiedSlots(s.Body, env)

	for _, inv := range s.Invariants {
		lw.lowerAssertStmt(inv, env, b, s.Attr, "loop invariant violated")
	}
	b.Emit(il.Op{Kind: il.OpForAll, Slot: elemSlot, Slot2: elemSlot, End: endLabel, Modified: modified}, s.Attr)

	lw.pushLoop(endLabel, continueLabel)
	lw.LowerStmts(s.Body, env, b)
	lw.popLoop()

	b.EmitLabel(continueLabel, s.Attr)
	for _, inv := range s.Invariants {
		lw.lowerAssertStmt(inv, env, b, s.Attr, "loop invariant violated")
	}
	b.Emit(il.Op{Kind: il.OpEnd, Target: endLabel}, s.Attr)
	b.EmitLabel(endLabel, s.Attr)
}

func (lw *Lowerer) lowerBreak(s *ast.Stmt, env *Env, b *il.Block) {
	if len(lw.loops) == 0 {
		lw.report(diag.BreakOutsideLoop, s.Attr, "break outside of a loop")
		return
	}
	b.Emit(il.Op{Kind: il.OpGoto, Target: lw.loops[len(lw.loops)-1].breakLabel}, s.Attr)
}

func (lw *Lowerer) lowerContinue(s *ast.Stmt, env *Env, b *il.Block) {
	if len(lw.loops) == 0 {
		lw.report(diag.BreakOutsideLoop, s.Attr, "continue outside of a loop")
		return
	}
	b.Emit(il.Op{Kind: il.OpGoto, Target: lw.loops[len(lw.loops)-1].continueLabel}, s.Attr)
}

func (lw *Lowerer) lowerReturn(s *ast.Stmt, env *Env, b *il.Block) {
	if s.Value != nil {
		lw.LowerExpr(s.Value, env, b)
	}
	typeName := ""
	if lw.currentFunc != nil && lw.currentFunc.ReturnType != nil {
		typeName = typeNameOf(lw.currentFunc.ReturnType)
	}
	b.Emit(il.Op{Kind: il.OpReturn, TypeName: typeName}, s.Attr)
}

func (lw *Lowerer) lowerExprStmt(s *ast.Stmt, env *Env, b *il.Block) {
	e := s.Value
	if e.Kind == ast.EInvoke {
		for _, a := range e.Args {
			lw.LowerExpr(a, env, b)
		}
		lw.lowerInvokeNoResult(e, env, b)
		return
	}
	lw.LowerExpr(e, env, b)
}

// lowerInvokeNoResult mirrors lowerInvoke but threads KeepResult: false
// through every dispatch shape, since an expression statement discards
// its value (spec.md §3.2 "Invoke(name, type, keep-result?)").
func (lw *Lowerer) lowerInvokeNoResult(e *ast.Expr, env *Env, b *il.Block) {
	if e.Callee != nil {
		if e.Callee.Kind == ast.EField {
			lw.LowerExpr(e.Callee.Sub, env, b)
			b.Emit(il.Op{Kind: il.OpFieldLoad, FieldName: e.Callee.Name}, e.Attr)
		} else {
			lw.LowerExpr(e.Callee, env, b)
		}
		if e.Receiver != nil {
			lw.LowerExpr(e.Receiver, env, b)
			b.Emit(il.Op{Kind: il.OpIndirectSend, Sync: true, KeepResult: false}, e.Attr)
			return
		}
		b.Emit(il.Op{Kind: il.OpIndirectInvoke, KeepResult: false}, e.Attr)
		return
	}
	if e.Receiver != nil {
		lw.LowerExpr(e.Receiver, env, b)
		sig, known := lw.funcSig[e.Name]
		if !known {
			lw.report(diag.UnknownFunctionOrMethod, e.Attr, "unknown method %q", e.Name)
			return
		}
		b.Emit(il.Op{Kind: il.OpSend, Name: e.Name, TypeName: sig.Type.String(), Sync: true, KeepResult: false}, e.Attr)
		return
	}
	if slot, ok := env.Lookup(e.Name); ok && e.Module == "" {
		b.Emit(il.Op{Kind: il.OpLoad, Slot: slot}, e.Attr)
		b.Emit(il.Op{Kind: il.OpIndirectInvoke, KeepResult: false}, e.Attr)
		return
	}
	sig, known := lw.funcSig[e.Name]
	if !known {
		lw.report(diag.UnknownFunctionOrMethod, e.Attr, "unknown function or method %q", e.Name)
		return
	}
	b.Emit(il.Op{Kind: il.OpInvoke, Name: e.Name, TypeName: sig.Type.String(), KeepResult: false}, e.Attr)
}

// lowerAssertStmt implements the recipe spec.md §4.4 step 6 gives for
// constraint blocks, reused here for `assert`/`assume` statements and loop
// invariants: lower the predicate to jump to a pass label on success,
// append Fail(msg), then the label. An explicit Assert marker entry opens
// the region so a later verifier pass can recognise its extent without
// re-deriving it from the Fail/label shape.
// LowerAssert is the exported form of lowerAssertStmt, reused by package
// compile to lower a function's `requires`/`ensures` clause into the same
// Assert/Fail/label shape as an in-body assert statement (spec.md §6
// "optional precondition Block, optional postcondition Block").
func (lw *Lowerer) LowerAssert(cond *ast.Expr, env *Env, b *il.Block, attr source.Attribute, msg string) {
	lw.lowerAssertStmt(cond, env, b, attr, msg)
}

func (lw *Lowerer) lowerAssertStmt(cond *ast.Expr, env *Env, b *il.Block, attr source.Attribute, msg string) {
	passLabel := il.NewLabel("assert_ok")
	b.Emit(il.Op{Kind: il.OpAssert, Target: passLabel}, attr)
	lw.LowerCondition(passLabel, cond, env, b)
	b.Emit(il.Op{Kind: il.OpFail, Msg: msg}, attr)
	b.EmitLabel(passLabel, attr)
}

func (lw *Lowerer) lowerTry(s *ast.Stmt, env *Env, b *il.Block) {
	endLabel := il.NewLabel("try_end")
	handlers := make([]il.CatchHandler, len(s.CatchClauses))
	labels := make([]string, len(s.CatchClauses))
	for i, c := range s.CatchClauses {
		labels[i] = il.NewLabel("catch")
		handlers[i] = il.CatchHandler{TypeName: typeNameOf(c.Type), Label: labels[i]}
	}
	b.Emit(il.Op{Kind: il.OpTryCatch, End: endLabel, Handlers: handlers}, s.Attr)

	mark := env.BeginScope()
	lw.LowerStmts(s.Body, env, b)
	env.EndScope(mark)
	b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, s.Attr)

	for i, c := range s.CatchClauses {
		b.EmitLabel(labels[i], s.Attr)
		mark := env.BeginScope()
		slot := env.Define(c.VarName)
		b.Emit(il.Op{Kind: il.OpStore, Slot: slot}, s.Attr)
		lw.LowerStmts(c.Body, env, b)
		env.EndScope(mark)
		b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, s.Attr)
	}
	b.EmitLabel(endLabel, s.Attr)
}

// lowerSwitch implements spec.md §4.5 "Switch": case labels are
// constant-folded via the Constant Evaluator, with duplicate literals or
// duplicate default clauses reported and that arm dropped rather than
// aborting the whole statement (spec.md §7 "at most one error per
// statement").
func (lw *Lowerer) lowerSwitch(s *ast.Stmt, env *Env, b *il.Block) {
	scrutSlot := env.Define("$switch")
	lw.LowerExpr(s.SwitchValue, env, b)
	b.Emit(il.Op{Kind: il.OpStore, Slot: scrutSlot}, s.Attr)

	ev := constant.NewEvaluatorWithConstants(nil, nil, lw.Constants)
	endLabel := il.NewLabel("switch_end")

	var ilCases []il.SwitchCase
	var seen []value.Value
	defaultLabel := ""
	armLabels := make([]string, len(s.Cases))

	for i, c := range s.Cases {
		armLabels[i] = il.NewLabel("case")
		if c.IsDefault {
			if defaultLabel != "" {
				lw.report(diag.DuplicateDefaultLabel, s.Attr, "switch has more than one default clause")
				continue
			}
			defaultLabel = armLabels[i]
			continue
		}
		for _, valExpr := range c.Values {
			v, err := ev.Eval(valExpr)
			if err != nil {
				if de, ok := err.(*diag.Error); ok {
					lw.Errors.Report(de)
				}
				continue
			}
			dup := false
			for _, sv := range seen {
				if sv.Equal(v) {
					dup = true
					break
				}
			}
			if dup {
				lw.report(diag.DuplicateCaseLabel, valExpr.Attr, "duplicate case label %s", v)
				continue
			}
			seen = append(seen, v)
			ilCases = append(ilCases, il.SwitchCase{Value: v, Label: armLabels[i]})
		}
	}
	if defaultLabel == "" {
		defaultLabel = endLabel
	}

	b.Emit(il.Op{Kind: il.OpLoad, Slot: scrutSlot}, s.Attr)
	b.Emit(il.Op{Kind: il.OpSwitch, Default: defaultLabel, Cases: ilCases}, s.Attr)

	for i, c := range s.Cases {
		if c.IsDefault && armLabels[i] != defaultLabel {
			// A duplicate default clause was dropped above; skip its body
			// too, since nothing branches to its label.
			continue
		}
		b.EmitLabel(armLabels[i], s.Attr)
		mark := env.BeginScope()
		lw.LowerStmts(c.Body, env, b)
		env.EndScope(mark)
		b.Emit(il.Op{Kind: il.OpGoto, Target: endLabel}, s.Attr)
	}
	b.EmitLabel(endLabel, s.Attr)
}

// collectModifiedSlots walks a loop body collecting the slots of every
// local variable it assigns, for the Loop/ForAll "modified-set" the
// backend uses to know which outer slots a loop iteration may change
// (spec.md §3.2 "Loop(end, modified-set)").
func (lw *Lowerer) collectModifiedSlots(stmts []*ast.Stmt, env *Env) []int {
	var out []int
	seen := make(map[int]bool)
	add := func(name string) {
		if slot, ok := env.Lookup(name); ok && !seen[slot] {
			seen[slot] = true
			out = append(out, slot)
		}
	}
	var walk func([]*ast.Stmt)
	walk = func(stmts []*ast.Stmt) {
		for _, s := range stmts {
			switch s.Kind {
			case ast.SAssign:
				walkLValueRoot(s.LValue, add)
			case ast.SDestructureAssign:
				for _, lv := range s.LValues {
					walkLValueRoot(lv, add)
				}
			case ast.SIf:
				walk(s.Then)
				walk(s.Else)
			case ast.SWhile, ast.SDoWhile, ast.SFor:
				walk(s.Body)
			case ast.SSwitch:
				for _, c := range s.Cases {
					walk(c.Body)
				}
			case ast.STry:
				walk(s.Body)
				for _, c := range s.CatchClauses {
					walk(c.Body)
				}
			}
		}
	}
	walk(stmts)
	return out
}

// walkLValueRoot finds the root variable name of an l-value expression
// without emitting anything, for collectModifiedSlots's static pass.
func walkLValueRoot(e *ast.Expr, add func(name string)) {
	for {
		switch e.Kind {
		case ast.EVariable:
			add(e.Name)
			return
		case ast.EField, ast.EIndex:
			e = e.Sub
		default:
			return
		}
	}
}
