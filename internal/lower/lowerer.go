package lower

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

// loopScope records the target label a break/continue inside the current
// loop resolves to, mirroring vm/compiler_loops.go's LoopContext stack.
type loopScope struct {
	breakLabel    string
	continueLabel string
}

// Signature describes a callable's declared shape as the Lowerer needs it
// for invocation dispatch — just enough of types.Type's Signature() to
// decide Invoke vs Send vs IndirectInvoke without re-deriving it per call.
type Signature struct {
	IsMethod    bool
	HasReceiver bool
	Type        types.Type
}

// Lowerer compiles ast.Stmt/ast.Expr into il.Block. It depends only on
// already-resolved type information handed to it by the caller (typeOf,
// funcSig) — never on internal/resolver directly, so the Resolver can in
// turn depend on this package (for constraint-block synthesis, see
// predicate.go) without an import cycle.
type Lowerer struct {
	Module  string
	Errors  *diag.Collector
	typeOf  map[string]types.Type // nominal type name -> resolved Type
	funcSig map[string]Signature  // function/method name -> declared signature

	// Constants holds already-folded named constants, consulted when
	// folding switch-case labels (spec.md §4.5) via internal/constant.
	Constants map[string]value.Value

	loops []loopScope

	// currentFunc is the declaration currently being lowered, consulted by
	// Return for its declared return type name.
	currentFunc *ast.Decl
}

// NewLowerer creates a Lowerer for one module. typeOf and funcSig may be
// nil when only expression/condition lowering (not full invocation
// dispatch) is needed, as from constraint-block synthesis.
func NewLowerer(module string, typeOf map[string]types.Type, funcSig map[string]Signature) *Lowerer {
	return &Lowerer{Module: module, Errors: diag.NewCollector(), typeOf: typeOf, funcSig: funcSig}
}

// LowerFunction lowers a DFunction/DMethod declaration's body into a fresh
// Block, binding parameters (and the receiver, if any) to slots 0..n-1 in
// declaration order before the body runs.
func (lw *Lowerer) LowerFunction(decl *ast.Decl) *il.Block {
	lw.currentFunc = decl
	env := NewEnv()
	if decl.Receiver != nil {
		env.Define(decl.Receiver.Name)
	}
	for _, p := range decl.Params {
		env.Define(p.Name)
	}
	b := il.NewBlock(env.NumSlots())
	lw.LowerStmts(decl.Body, env, b)
	b.NumSlots = env.NumSlots()
	lw.currentFunc = nil
	return b
}

// pushLoop/popLoop maintain the break/continue target stack around a loop
// body, the scoped-acquisition shape spec.md §9 calls for ("make the
// push/pop pair a scoped acquisition that is released on every exit path").
func (lw *Lowerer) pushLoop(breakLabel, continueLabel string) {
	lw.loops = append(lw.loops, loopScope{breakLabel: breakLabel, continueLabel: continueLabel})
}

func (lw *Lowerer) popLoop() {
	lw.loops = lw.loops[:len(lw.loops)-1]
}

// LowerStmts lowers a statement list in sequence, sharing env and Block.
func (lw *Lowerer) LowerStmts(stmts []*ast.Stmt, env *Env, b *il.Block) {
	for _, s := range stmts {
		lw.LowerStmt(s, env, b)
	}
}

func (lw *Lowerer) report(kind diag.Kind, attr source.Attribute, format string, args ...interface{}) {
	lw.Errors.Report(diag.New(kind, attr, format, args...))
}
