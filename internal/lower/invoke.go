package lower

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
)

// lowerInvoke implements spec.md §4.5 "Invocation dispatch": the Lowerer
// selects exactly one of IndirectInvoke, IndirectSend, FieldLoad+
// IndirectInvoke, Invoke (plain or this-receiver method), or Send, driven
// by the EInvoke's Callee/Receiver shape (see ast.Expr's doc comment on
// those two fields for how the six cases map onto them).
func (lw *Lowerer) lowerInvoke(e *ast.Expr, env *Env, b *il.Block) {
	for _, a := range e.Args {
		lw.LowerExpr(a, env, b)
	}

	if e.Callee != nil {
		if e.Callee.Kind == ast.EField {
			lw.LowerExpr(e.Callee.Sub, env, b)
			b.Emit(il.Op{Kind: il.OpFieldLoad, FieldName: e.Callee.Name}, e.Attr)
		} else {
			lw.LowerExpr(e.Callee, env, b)
		}
		if e.Receiver != nil {
			lw.LowerExpr(e.Receiver, env, b)
			b.Emit(il.Op{Kind: il.OpIndirectSend, Sync: true, KeepResult: true}, e.Attr)
			return
		}
		b.Emit(il.Op{Kind: il.OpIndirectInvoke, KeepResult: true}, e.Attr)
		return
	}

	if e.Receiver != nil {
		lw.LowerExpr(e.Receiver, env, b)
		sig, known := lw.funcSig[e.Name]
		if !known {
			lw.report(diag.UnknownFunctionOrMethod, e.Attr, "unknown method %q", e.Name)
			return
		}
		b.Emit(il.Op{Kind: il.OpSend, Name: e.Name, TypeName: sig.Type.String(), Sync: true, KeepResult: true}, e.Attr)
		return
	}

	// No callee expression and no explicit receiver: either a bare local
	// variable holding a callable value, or a direct same-module
	// call/this-receiver method call.
	if slot, ok := env.Lookup(e.Name); ok && e.Module == "" {
		b.Emit(il.Op{Kind: il.OpLoad, Slot: slot}, e.Attr)
		b.Emit(il.Op{Kind: il.OpIndirectInvoke, KeepResult: true}, e.Attr)
		return
	}

	sig, known := lw.funcSig[e.Name]
	if !known {
		lw.report(diag.UnknownFunctionOrMethod, e.Attr, "unknown function or method %q", e.Name)
		return
	}
	b.Emit(il.Op{Kind: il.OpInvoke, Name: e.Name, TypeName: sig.Type.String(), KeepResult: true}, e.Attr)
}
