// Package resolver implements the Type Resolver of spec.md §4.4: it turns
// a module's declarations (UnresolvedType trees, constant expressions,
// function/method signatures) into canonical types.Type values plus, for
// refinement types, a constraint il.Block. Grounded on
// symbol_table_resolution.go's ResolveType (check local cache, else walk
// outer, else ask an external loader) and on the scoped-table shape of
// symbols.SymbolTable itself, minus the trait/generic-instance machinery
// Whiley has no use for (spec.md §3.3).
package resolver

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/constant"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/lower"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

// typeEntry is one fully-resolved (Type, ConstraintBlock?) pair, cached by
// declared name once expandType finishes it (spec.md §4.4 step 7).
type typeEntry struct {
	Type  types.Type
	Block *il.Block
}

// State is the per-compilation-unit resolution context of spec.md §3.3:
// modules, filemap, types, constants and unresolved declarations. The
// per-function bookkeeping spec.md §3.3 also names (local env, break/
// continue stacks, current function) lives in package lower's Env and
// Lowerer instead, since that bookkeeping belongs to the Lowerer's own
// pass, not the Resolver's.
type State struct {
	Module string
	Loader ModuleLoader
	Errors *diag.Collector

	// Outer is consulted by every lookup that misses locally, mirroring
	// symbols.SymbolTable.outer's walk — normally nil for a single-module
	// compile, populated when compiling a batch of units that share a
	// common enclosing scope of already-resolved declarations.
	Outer *State

	unresolved map[string]*ast.Decl // DType declarations, by name
	constExprs map[string]*ast.Expr // DConstant right-hand expressions, by name
	funcDecls  map[string]*ast.Decl // DFunction/DMethod declarations, by name
	filemap    map[string]string    // declared name -> source file path

	cache map[string]types.Type // expandType's "currently being expanded" placeholders
	types map[string]typeEntry  // fully resolved types

	constants map[string]value.Value // fully resolved constants
	funcSigs  map[string]lower.Signature

	// predLower is the shared Lowerer used by predicate.go to compile
	// `where` clauses into constraint blocks, built lazily on first use.
	predLower *lower.Lowerer
}

// NewState creates an empty State for one module, over the declarations in
// file. The ModuleLoader is consulted for any name not declared locally.
func NewState(file *ast.File, loader ModuleLoader) *State {
	s := &State{
		Module:     file.Module,
		Loader:     loader,
		Errors:     diag.NewCollector(),
		unresolved: make(map[string]*ast.Decl),
		constExprs: make(map[string]*ast.Expr),
		funcDecls:  make(map[string]*ast.Decl),
		filemap:    make(map[string]string),
		cache:      make(map[string]types.Type),
		types:      make(map[string]typeEntry),
		constants:  make(map[string]value.Value),
		funcSigs:   make(map[string]lower.Signature),
	}
	for _, d := range file.Decls {
		s.filemap[d.Name] = d.Attr.File
		switch d.Kind {
		case ast.DType:
			s.unresolved[d.Name] = d
		case ast.DConstant:
			s.constExprs[d.Name] = d.ConstExpr
		case ast.DFunction, ast.DMethod:
			s.funcDecls[d.Name] = d
		}
	}
	return s
}

func (s *State) report(kind diag.Kind, attr source.Attribute, format string, args ...interface{}) {
	s.Errors.Report(diag.New(kind, attr, format, args...))
}

// isFunctionName reports whether name is a known function/method, walking
// Outer the same way ResolveType does.
func (s *State) isFunctionName(name string) bool {
	if _, ok := s.funcDecls[name]; ok {
		return true
	}
	if s.Outer != nil {
		return s.Outer.isFunctionName(name)
	}
	return false
}

// FunctionNames returns the set of declared function/method names, used to
// seed the Constant Evaluator (spec.md §4.3 "Function references become
// deferred values").
func (s *State) FunctionNames() map[string]bool {
	out := make(map[string]bool, len(s.funcDecls))
	for name := range s.funcDecls {
		out[name] = true
	}
	return out
}

// ResolveConstant evaluates and caches the named constant, resolving a
// deferred FuncRefValue's FunctionType as soon as it is produced (spec.md
// §4.3's "resolved lazily by the Resolver").
func (s *State) ResolveConstant(name string) (value.Value, error) {
	if v, ok := s.constants[name]; ok {
		return v, nil
	}
	expr, ok := s.constExprs[name]
	if !ok {
		if s.Outer != nil {
			return s.Outer.ResolveConstant(name)
		}
		return nil, diag.New(diag.ResolveError, source.Attribute{}, "unknown constant %q", name)
	}
	ev := constant.NewEvaluator(s.constExprs, s.FunctionNames())
	v, err := ev.Evaluate(name)
	if err != nil {
		return nil, err
	}
	if fr, ok := v.(value.FuncRefValue); ok && fr.FunctionType == nil {
		sig, _, err := s.ResolveFunctionSignature(fr.Name)
		if err != nil {
			return nil, err
		}
		v = value.FuncRefValue{Module: s.Module, Name: fr.Name, FunctionType: &sig}
	}
	s.constants[name] = v
	_ = expr
	return v, nil
}

// ResolveFunctionSignature expands a function/method declaration's params,
// return type and (for a method) receiver type into one types.Type, caching
// the lower.Signature the Lowerer needs for invocation dispatch.
func (s *State) ResolveFunctionSignature(name string) (types.Type, bool, error) {
	if sig, ok := s.funcSigs[name]; ok {
		return sig.Type, sig.IsMethod, nil
	}
	decl, ok := s.funcDecls[name]
	if !ok {
		if s.Outer != nil {
			return s.Outer.ResolveFunctionSignature(name)
		}
		return types.Type{}, false, diag.New(diag.ResolveError, source.Attribute{}, "unknown function or method %q", name)
	}
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		t, err := s.expandUnresolvedType(p.Type, "")
		if err != nil {
			return types.Type{}, false, err
		}
		params[i] = t
	}
	ret := types.TVoid
	if decl.ReturnType != nil {
		t, err := s.expandUnresolvedType(decl.ReturnType, "")
		if err != nil {
			return types.Type{}, false, err
		}
		ret = t
	}
	isMethod := decl.Kind == ast.DMethod
	var sigType types.Type
	if isMethod {
		hasReceiver := decl.Receiver != nil
		var recv types.Type
		if hasReceiver {
			t, err := s.expandUnresolvedType(decl.Receiver.Type, "")
			if err != nil {
				return types.Type{}, false, err
			}
			recv = t
		}
		sigType = types.NewMethod(recv, hasReceiver, params, ret)
	} else {
		sigType = types.NewFunction(params, ret)
	}
	s.funcSigs[name] = lower.Signature{IsMethod: isMethod, HasReceiver: isMethod && decl.Receiver != nil, Type: sigType}
	return sigType, isMethod, nil
}

// FunctionSignatures resolves every declared function/method signature in
// one pass, for building the Lowerer's funcSig table (spec.md §4.5
// invocation dispatch needs every callee's signature up front).
func (s *State) FunctionSignatures() map[string]lower.Signature {
	out := make(map[string]lower.Signature, len(s.funcDecls))
	for name := range s.funcDecls {
		s.Errors.StartUnit()
		if _, _, err := s.ResolveFunctionSignature(name); err != nil {
			s.Errors.Report(err.(*diag.Error))
			continue
		}
		out[name] = s.funcSigs[name]
	}
	return out
}

// ResolveTypes resolves every declared type name to its full NamedType —
// expanded Type plus constraint Block, when the declaration (or one of its
// structurally-nested components) carries a `where` clause — for assembling
// the Types table of an il.Module (spec.md §6 "IL output (produced)").
func (s *State) ResolveTypes() map[string]*il.NamedType {
	out := make(map[string]*il.NamedType, len(s.unresolved))
	for name := range s.unresolved {
		s.Errors.StartUnit()
		t, block, err := s.ExpandType(name)
		if err != nil {
			s.Errors.Report(err.(*diag.Error))
			continue
		}
		out[name] = &il.NamedType{Name: name, Type: t, Constraint: block}
	}
	return out
}

// TypeOf resolves every declared type's name to its types.Type, for the
// Lowerer's typeOf table (e.g. STry catch-clause types, SReturn's declared
// return type name).
func (s *State) TypeOf() map[string]types.Type {
	out := make(map[string]types.Type, len(s.unresolved))
	for name := range s.unresolved {
		s.Errors.StartUnit()
		t, _, err := s.ExpandType(name)
		if err != nil {
			s.Errors.Report(err.(*diag.Error))
			continue
		}
		out[name] = t
	}
	return out
}
