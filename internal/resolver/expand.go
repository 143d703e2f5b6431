package resolver

import (
	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/config"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/types"
)

// ExpandType implements spec.md §4.4's cycle-tolerant walk over one
// same-module declared type name, returning its canonical Type and,
// if the declaration (or any of its structurally-nested components)
// carries a `where` predicate, the composed constraint Block that checks
// it (spec.md §4.4 step 6).
func (s *State) ExpandType(name string) (types.Type, *il.Block, error) {
	// name is "in progress": either its own type body is still being built,
	// or (see the cache lifetime note below) its constraint block is. A
	// re-entrant call — direct self-reference or a mutually-recursive named
	// type reached through structuralConstraint — gets the placeholder type
	// and a nil block rather than recursing again.
	if t, ok := s.cache[name]; ok {
		return t, nil, nil
	}
	if entry, ok := s.types[name]; ok {
		return entry.Type, entry.Block, nil
	}

	decl, ok := s.unresolved[name]
	if !ok {
		if s.Outer != nil {
			if t, b, err := s.Outer.ExpandType(name); err == nil {
				return t, b, nil
			}
		}
		if _, isConst := s.constExprs[name]; isConst {
			return types.Type{}, nil, diag.New(diag.InvalidConstantAsType, source.Attribute{}, "%q refers to a constant, not a type", name)
		}
		if _, isFunc := s.funcDecls[name]; isFunc {
			return types.Type{}, nil, diag.New(diag.InvalidFunctionAsType, source.Attribute{}, "%q refers to a function, not a type", name)
		}
		return types.Type{}, nil, diag.New(diag.ResolveError, source.Attribute{}, "unknown type %q", name)
	}

	// name stays in s.cache for the whole call, not just the type-body
	// expansion below: structuralConstraint's UTNominal case (predicate.go)
	// re-enters ExpandType for every named type a `where` clause's
	// structural constraint touches, and a pair of mutually-referencing
	// declarations (`type A = {B b}` / `type B = {A a}`) re-enters the very
	// name currently under construction while its constraint block is
	// still being built. Deleting the guard early — right after the
	// type-body half — left that re-entrant call with nothing to short-
	// circuit on, an unconditional stack overflow for guarded mutual
	// recursion split across two declarations.
	s.cache[name] = types.NewLabel(name)
	expanded, err := s.expandUnresolvedType(decl.TypeExpr, name)
	if err != nil {
		delete(s.cache, name)
		return types.Type{}, nil, err
	}

	if expanded.HasLabel() {
		closed, cerr := types.CloseLabel(expanded, name)
		if cerr != nil || closed.HasLabel() {
			delete(s.cache, name)
			return types.Type{}, nil, diag.New(diag.CyclicType, decl.Attr, "type %q has an unguarded self-reference", name)
		}
		expanded = closed
	}

	// Minimise once the recursive label (if any) is closed: union/
	// intersection branches built raw above get their subsumption pruning
	// and mutual-subtype collapsing here, in one pass over the finished
	// graph (spec.md §4.2 "Minimisation").
	if !expanded.IsLeaf() {
		minimised, merr := types.Minimise(expanded)
		if merr != nil {
			delete(s.cache, name)
			return types.Type{}, nil, diag.New(diag.InternalFailure, decl.Attr, "minimise %q: %v", name, merr)
		}
		expanded = minimised
	}

	// Constraint synthesis still runs with name in s.cache: a re-entrant
	// ExpandType(name) from structuralConstraint (via a mutually-recursive
	// named type) now hits the cache branch above and gets back this
	// declaration's placeholder type with a nil block, the same short-
	// circuit the literal self-reference case already gets explicitly.
	block, err := s.typeExprConstraint(decl.TypeExpr, name)
	delete(s.cache, name)
	if err != nil {
		return types.Type{}, nil, err
	}

	s.types[name] = typeEntry{Type: expanded, Block: block}
	return expanded, block, nil
}

// expandUnresolvedType converts one UnresolvedType to a types.Type.
// selfName is the name of the declaration currently being expanded by
// ExpandType (empty when expanding a function/method signature, which has
// no enclosing declared name to self-reference); a same-module nominal
// reference matching selfName becomes a LABEL placeholder (closed by
// ExpandType once the whole declaration is built), any other same- or
// foreign-module nominal reference becomes an opaque NNominal node — never
// inlined, matching the subtype algebra's nominal-identity comparison
// (types/subtype.go's `NNominal: ni.Nominal == nj.Nominal`) and sidestepping
// the infinite inlining mutual recursion would otherwise cause.
func (s *State) expandUnresolvedType(ut *ast.UnresolvedType, selfName string) (types.Type, error) {
	switch ut.Kind {
	case ast.UTLeaf:
		return leafByName(ut.LeafName), nil

	case ast.UTNominal:
		module := ut.Module
		if module == "" {
			if ut.Name == selfName && selfName != "" {
				return types.NewLabel(selfName), nil
			}
			if err := s.validateTypeName(ut.Name, ut.Attr); err != nil {
				return types.Type{}, err
			}
			module = s.Module
			return types.NewNominal(module, ut.Name), nil
		}
		if _, _, err := s.Loader.LoadType(module, ut.Name); err != nil {
			return types.Type{}, diag.New(diag.ResolveError, ut.Attr, "cannot load type %s::%s: %v", module, ut.Name, err)
		}
		return types.NewNominal(module, ut.Name), nil

	case ast.UTSet:
		elem, err := s.expandUnresolvedType(ut.Elem, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewSet(elem), nil

	case ast.UTList:
		elem, err := s.expandUnresolvedType(ut.Elem, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewList(elem), nil

	case ast.UTReference:
		elem, err := s.expandUnresolvedType(ut.Elem, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewReference(elem), nil

	case ast.UTProcess:
		elem, err := s.expandUnresolvedType(ut.Elem, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewProcess(elem), nil

	case ast.UTNegation:
		elem, err := s.expandUnresolvedType(ut.Elem, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.Negate(elem), nil

	case ast.UTDictionary:
		key, err := s.expandUnresolvedType(ut.Key, selfName)
		if err != nil {
			return types.Type{}, err
		}
		val, err := s.expandUnresolvedType(ut.Val, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewDictionary(key, val), nil

	case ast.UTUnion:
		// Built raw (no Minimise) rather than through the canonicalising
		// Union helper: a branch may still carry an open LABEL for the
		// declaration currently being expanded (recursion is legal behind a
		// UNION constructor, spec.md §4.4's guard list), and Minimise's
		// subtype-matrix pass rejects any open label. Minimisation happens
		// once, after ExpandType closes the label (see ExpandType below).
		branches, err := s.expandAll(ut.Branches, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewUnionRaw(branches...), nil

	case ast.UTIntersection:
		branches, err := s.expandAll(ut.Branches, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewIntersectionRaw(branches...), nil

	case ast.UTTuple:
		elems, err := s.expandAll(ut.Elems, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewTupleRaw(elems...), nil

	case ast.UTRecord:
		fields := make([]types.RecordField, len(ut.Fields))
		for i, f := range ut.Fields {
			t, err := s.expandUnresolvedType(f.Type, selfName)
			if err != nil {
				return types.Type{}, err
			}
			fields[i] = types.RecordField{Name: f.Name, Type: t}
		}
		return types.NewRecord(fields, ut.Open), nil

	case ast.UTFunction:
		params, err := s.expandAll(ut.Params, selfName)
		if err != nil {
			return types.Type{}, err
		}
		ret, err := s.expandUnresolvedType(ut.Ret, selfName)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewFunction(params, ret), nil

	case ast.UTMethod:
		params, err := s.expandAll(ut.Params, selfName)
		if err != nil {
			return types.Type{}, err
		}
		ret, err := s.expandUnresolvedType(ut.Ret, selfName)
		if err != nil {
			return types.Type{}, err
		}
		var recv types.Type
		if ut.HasReceiver {
			recv, err = s.expandUnresolvedType(ut.Receiver, selfName)
			if err != nil {
				return types.Type{}, err
			}
		}
		return types.NewMethod(recv, ut.HasReceiver, params, ret), nil
	}
	return types.Type{}, diag.New(diag.InternalFailure, ut.Attr, "unhandled unresolved type kind %v", ut.Kind)
}

func (s *State) expandAll(uts []*ast.UnresolvedType, selfName string) ([]types.Type, error) {
	out := make([]types.Type, len(uts))
	for i, ut := range uts {
		t, err := s.expandUnresolvedType(ut, selfName)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// validateTypeName reports the cross-cutting failure modes spec.md §4.4
// names for a same-module nominal reference that is not being inlined: the
// name must actually be a declared type, not a constant or function.
func (s *State) validateTypeName(name string, attr source.Attribute) error {
	if _, ok := s.unresolved[name]; ok {
		return nil
	}
	if s.Outer != nil && s.Outer.validateTypeName(name, attr) == nil {
		return nil
	}
	if _, ok := s.constExprs[name]; ok {
		return diag.New(diag.InvalidConstantAsType, attr, "%q refers to a constant, not a type", name)
	}
	if _, ok := s.funcDecls[name]; ok {
		return diag.New(diag.InvalidFunctionAsType, attr, "%q refers to a function, not a type", name)
	}
	return diag.New(diag.ResolveError, attr, "unknown type %q", name)
}

func leafByName(name string) types.Type {
	switch name {
	case config.VoidTypeName:
		return types.TVoid
	case config.AnyTypeName:
		return types.TAny
	case config.NullTypeName:
		return types.TNull
	case config.BoolTypeName:
		return types.TBool
	case config.ByteTypeName:
		return types.TByte
	case config.CharTypeName:
		return types.TChar
	case config.IntTypeName:
		return types.TInt
	case config.RealTypeName:
		return types.TReal
	case config.StringTypeName:
		return types.TString
	}
	return types.TAny
}
