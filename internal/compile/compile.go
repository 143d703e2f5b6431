// Package compile wires the four stages of spec.md §2's data-flow diagram
// together for one parsed compilation unit: Constant Evaluator → Type
// Resolver → Lowerer → IL Module. None of the stage packages import this
// one (resolver and lower stand alone, each usable and testable without a
// driver), so this package is the one place the whole pipeline is actually
// assembled — the role cmd/funxy/main.go's evaluateModule/runModule play
// for the teacher's own analyzer→evaluator sequence.
package compile

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/lower"
	"github.com/zimothy/Whiley/internal/resolver"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/types"
)

// Result is one compiled file's outcome: the IL Module built from every
// declaration that resolved and lowered cleanly, plus every diagnostic
// collected along the way. A non-empty Errors slice does not mean Module
// is empty — spec.md §7's recovery policy skips only the failing
// declaration, not the whole file.
type Result struct {
	Module *il.Module
	Errors []*diag.Error
}

// File runs one module's declarations through the full pipeline,
// publishing nothing itself — the caller decides whether and how the
// resulting Module is cached (internal/modcache) or dumped
// (internal/moduleio).
func File(file *ast.File, loader resolver.ModuleLoader) *Result {
	state := resolver.NewState(file, loader)
	mod := il.NewModule(file.Module)

	for name, nt := range state.ResolveTypes() {
		mod.Types[name] = nt
	}

	for _, decl := range file.Decls {
		if decl.Kind != ast.DConstant {
			continue
		}
		state.Errors.StartUnit()
		v, err := state.ResolveConstant(decl.Name)
		if err != nil {
			reportErr(state.Errors, err)
			continue
		}
		mod.Constants[decl.Name] = v
	}

	funcSigs := state.FunctionSignatures()
	typeOf := state.TypeOf()

	for _, decl := range file.Decls {
		if decl.Kind != ast.DFunction && decl.Kind != ast.DMethod {
			continue
		}
		state.Errors.StartUnit()
		fn, errs := lowerFunction(file.Module, decl, typeOf, funcSigs)
		if len(errs) > 0 {
			for _, e := range errs {
				state.Errors.Report(e)
			}
			continue
		}
		mod.Functions[decl.Name] = fn
	}

	return &Result{Module: mod, Errors: state.Errors.Errors()}
}

func reportErr(c *diag.Collector, err error) {
	if de, ok := err.(*diag.Error); ok {
		c.Report(de)
		return
	}
	c.Report(diag.New(diag.InternalFailure, source.Attribute{}, "%v", err))
}

// lowerFunction lowers one DFunction/DMethod's body, and — when present —
// its `requires`/`ensures` clauses, into a fully assembled il.Function.
func lowerFunction(module string, decl *ast.Decl, typeOf map[string]types.Type, funcSigs map[string]lower.Signature) (*il.Function, []*diag.Error) {
	lw := lower.NewLowerer(module, typeOf, funcSigs)
	body := lw.LowerFunction(decl)
	if len(lw.Errors.Errors()) > 0 {
		return nil, lw.Errors.Errors()
	}

	sig := funcSigs[decl.Name]
	params, ret, receiver, hasReceiver, _ := sig.Type.Signature()

	fn := &il.Function{
		Name:     decl.Name,
		IsMethod: sig.IsMethod,
		Params:   make([]il.Param, len(params)),
		Return:   ret,
		Body:     body,
	}
	for i, p := range params {
		name := ""
		if i < len(decl.Params) {
			name = decl.Params[i].Name
		}
		fn.Params[i] = il.Param{Name: name, Type: p}
	}
	if hasReceiver && decl.Receiver != nil {
		fn.Receiver = &il.Param{Name: decl.Receiver.Name, Type: receiver}
	}

	if decl.Precondition != nil {
		pre, errs := lowerPrecondition(module, decl, typeOf, funcSigs)
		if len(errs) > 0 {
			return nil, errs
		}
		fn.Precondition = pre
	}
	if decl.Postcondition != nil {
		post, errs := lowerPostcondition(module, decl, typeOf, funcSigs)
		if len(errs) > 0 {
			return nil, errs
		}
		fn.Postcondition = post
	}

	return fn, nil
}

// lowerPrecondition lowers a `requires` clause over the function's own
// parameter slots, bound exactly as LowerFunction binds them for the body
// (receiver, then params, in declaration order), so a precondition that
// names a parameter resolves to the same slot the body itself uses.
func lowerPrecondition(module string, decl *ast.Decl, typeOf map[string]types.Type, funcSigs map[string]lower.Signature) (*il.Block, []*diag.Error) {
	lw := lower.NewLowerer(module, typeOf, funcSigs)
	env := lower.NewEnv()
	if decl.Receiver != nil {
		env.Define(decl.Receiver.Name)
	}
	for _, p := range decl.Params {
		env.Define(p.Name)
	}
	b := il.NewBlock(env.NumSlots())
	lw.LowerAssert(decl.Precondition, env, b, decl.Attr, "precondition not satisfied")
	b.NumSlots = env.NumSlots()
	if len(lw.Errors.Errors()) > 0 {
		return nil, lw.Errors.Errors()
	}
	return b, nil
}

// lowerPostcondition lowers an `ensures` clause over the post-state: slot 0
// is bound to "$", the return value, and every slot from 1 is a shadow
// copy of an original parameter, bound under its own declared name so the
// clause can still refer to parameters directly (glossary "Shadow": "a
// read-only copy of a parameter taken at function entry").
func lowerPostcondition(module string, decl *ast.Decl, typeOf map[string]types.Type, funcSigs map[string]lower.Signature) (*il.Block, []*diag.Error) {
	lw := lower.NewLowerer(module, typeOf, funcSigs)
	env := lower.NewEnv()
	env.Define("$")
	if decl.Receiver != nil {
		env.Define(decl.Receiver.Name)
	}
	for _, p := range decl.Params {
		env.Define(p.Name)
	}
	b := il.NewBlock(env.NumSlots())
	lw.LowerAssert(decl.Postcondition, env, b, decl.Attr, "postcondition not satisfied")
	b.NumSlots = env.NumSlots()
	if len(lw.Errors.Errors()) > 0 {
		return nil, lw.Errors.Errors()
	}
	return b, nil
}
