package resolver

import (
	"fmt"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/config"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/lower"
	"github.com/zimothy/Whiley/internal/source"
)

// predicateLowerer returns the Lowerer used to compile `where` predicates
// into constraint blocks, built once per State and shared across every
// declaration's constraint synthesis. It carries function signatures (a
// predicate may call a same-module predicate function) but no typeOf
// table, since nothing in condition lowering consults it (spec.md §4.4
// step 6).
func (s *State) predicateLowerer() *lower.Lowerer {
	if s.predLower == nil {
		s.predLower = lower.NewLowerer(s.Module, nil, s.FunctionSignatures())
	}
	return s.predLower
}

// typeExprConstraint builds the constraint block for one UnresolvedType
// node, over config.THISSlot (spec.md §4.4 step 6 and §4.6's "constraint
// blocks are always built over THIS_SLOT"): its own `where` clause, if
// any, followed by the structural constraint contributed by its nested
// component types. Returns a nil block when there is nothing to check,
// so callers never have to special-case an empty constraint.
func (s *State) typeExprConstraint(ut *ast.UnresolvedType, name string) (*il.Block, error) {
	b := il.NewBlock(config.THISSlot + 1)

	if ut.Where != nil {
		binder := ut.Binder
		if binder == "" {
			binder = "$"
		}
		env := lower.NewEnvAt(config.THISSlot + 1)
		env.Bind(binder, config.THISSlot)

		lw := s.predicateLowerer()
		lw.Errors.StartUnit()
		before := lw.Errors.Errors()
		trueLabel := il.NewLabel("constraint_ok")
		lw.LowerCondition(trueLabel, ut.Where, env, b)
		if len(lw.Errors.Errors()) > len(before) {
			errs := lw.Errors.Errors()
			return nil, errs[len(errs)-1]
		}
		b.Emit(il.Op{Kind: il.OpFail, Msg: fmt.Sprintf("type constraint not satisfied (%s)", name)}, ut.Attr)
		b.EmitLabel(trueLabel, ut.Attr)
	}

	sub, err := s.structuralConstraint(ut, name)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		b = il.Append(b, sub)
	}
	if len(b.Entries) == 0 {
		return nil, nil
	}
	return b, nil
}

// structuralConstraint composes the constraint contributed by ut's nested
// component types, over the value already sitting at config.THISSlot.
// Each case embeds the component's own constraint block (from a recursive
// typeExprConstraint call, or from an already-resolved nominal
// declaration) via Shift+Relabel, per spec.md §4.6's composition recipe.
func (s *State) structuralConstraint(ut *ast.UnresolvedType, name string) (*il.Block, error) {
	switch ut.Kind {
	case ast.UTSet, ast.UTList:
		return s.iterationConstraint(ut.Elem, name)

	case ast.UTTuple:
		var out *il.Block
		for i, elem := range ut.Elems {
			inner, err := s.typeExprConstraint(elem, name)
			if err != nil {
				return nil, err
			}
			if inner == nil {
				continue
			}
			part := il.NewBlock(config.THISSlot + 2)
			part.Emit(il.Op{Kind: il.OpLoad, Slot: config.THISSlot}, ut.Attr)
			part.Emit(il.Op{Kind: il.OpTupleLoad, Index: i}, elem.Attr)
			part.Emit(il.Op{Kind: il.OpStore, Slot: config.THISSlot + 1}, elem.Attr)
			part = il.Append(part, il.Relabel(il.Shift(inner, config.THISSlot+1), "tuple_elem"))
			out = appendBlock(out, part)
		}
		return out, nil

	case ast.UTRecord:
		var out *il.Block
		for _, f := range ut.Fields {
			inner, err := s.typeExprConstraint(f.Type, name)
			if err != nil {
				return nil, err
			}
			if inner == nil {
				continue
			}
			part := il.NewBlock(config.THISSlot + 2)
			part.Emit(il.Op{Kind: il.OpLoad, Slot: config.THISSlot}, f.Type.Attr)
			part.Emit(il.Op{Kind: il.OpFieldLoad, FieldName: f.Name}, f.Type.Attr)
			part.Emit(il.Op{Kind: il.OpStore, Slot: config.THISSlot + 1}, f.Type.Attr)
			part = il.Append(part, il.Relabel(il.Shift(inner, config.THISSlot+1), "field_"+f.Name))
			out = appendBlock(out, part)
		}
		return out, nil

	case ast.UTNominal:
		if ut.Module == "" && ut.Name == name {
			// Guarded self-reference: its own constraint IS the block
			// currently under construction, so there is nothing further
			// to embed here (embedding it would recurse forever).
			return nil, nil
		}
		var block *il.Block
		if ut.Module == "" {
			_, b, err := s.ExpandType(ut.Name)
			if err != nil {
				return nil, err
			}
			block = b
		} else {
			_, b, err := s.Loader.LoadType(ut.Module, ut.Name)
			if err != nil {
				return nil, diag.New(diag.ResolveError, ut.Attr, "cannot load type %s::%s: %v", ut.Module, ut.Name, err)
			}
			block = b
		}
		if block == nil {
			return nil, nil
		}
		return il.Relabel(il.Shift(block, config.THISSlot), "nominal"), nil

	case ast.UTUnion:
		return s.unionConstraint(ut, name)

	case ast.UTIntersection:
		var out *il.Block
		for _, br := range ut.Branches {
			inner, err := s.typeExprConstraint(br, name)
			if err != nil {
				return nil, err
			}
			if inner == nil {
				continue
			}
			out = appendBlock(out, inner)
		}
		return out, nil

	case ast.UTNegation:
		return s.negationConstraint(ut.Elem, name, ut.Attr)

	case ast.UTReference, ast.UTProcess:
		// A reference/process cell's pointee constraint is checked when the
		// cell is dereferenced, not at the point the reference value itself
		// is type-tested (spec.md's Type Graph treats REF/PROC as opaque
		// handles for subtyping purposes).
		return nil, nil

	case ast.UTDictionary:
		// No IL op iterates a dictionary's entries the way ForAll iterates a
		// list/set, so key/value refinement constraints on a dictionary
		// type are not propagated recursively; a directly-attached `where`
		// clause on the dictionary type itself still applies via the caller.
		return nil, nil

	default:
		return nil, nil
	}
}

// iterationConstraint builds the ForAll-wrapped element constraint shared
// by UTSet and UTList (spec.md §4.6: "List/Set element constraints embed
// under a ForAll over the collection").
func (s *State) iterationConstraint(elem *ast.UnresolvedType, name string) (*il.Block, error) {
	inner, err := s.typeExprConstraint(elem, name)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	elemSlot := config.THISSlot + 1
	end := il.NewLabel("constraint_forall_end")
	b := il.NewBlock(elemSlot + 1)
	b.Emit(il.Op{Kind: il.OpLoad, Slot: config.THISSlot}, elem.Attr)
	b.Emit(il.Op{Kind: il.OpForAll, Slot: elemSlot, Slot2: elemSlot, End: end}, elem.Attr)
	b = il.Append(b, il.Relabel(il.Shift(inner, elemSlot), "elem"))
	b.Emit(il.Op{Kind: il.OpEnd, Target: end}, elem.Attr)
	b.EmitLabel(end, elem.Attr)
	return b, nil
}

// unionConstraint implements spec.md §4.6's "try each branch, chaining a
// branch's own Fail into a goto-next-branch" recipe: a value belongs to a
// refined union type if it satisfies the constraint of at least one
// branch that accepts it structurally. Only the last branch's failure is
// allowed to actually Fail the whole check.
func (s *State) unionConstraint(ut *ast.UnresolvedType, name string) (*il.Block, error) {
	var inners []*il.Block
	any := false
	for _, br := range ut.Branches {
		inner, err := s.typeExprConstraint(br, name)
		if err != nil {
			return nil, err
		}
		inners = append(inners, inner)
		if inner != nil {
			any = true
		}
	}
	if !any {
		return nil, nil
	}

	end := il.NewLabel("union_ok")
	b := il.NewBlock(config.THISSlot + 1)
	for i, inner := range inners {
		if inner == nil {
			// This branch has no refinement of its own: any value whose
			// runtime type matches it trivially satisfies the union.
			b.Emit(il.Op{Kind: il.OpGoto, Target: end}, ut.Attr)
			continue
		}
		relabelled := il.Relabel(inner, fmt.Sprintf("union_branch%d", i))
		if i == len(inners)-1 {
			// Last branch: let its own Fail stand, since no further
			// branch remains to try.
			b = il.Append(b, relabelled)
		} else {
			next := il.NewLabel("union_next")
			b = il.Append(b, il.Chain(relabelled, next))
			b.Emit(il.Op{Kind: il.OpGoto, Target: end}, ut.Attr)
			b.EmitLabel(next, ut.Attr)
		}
	}
	b.EmitLabel(end, ut.Attr)
	return b, nil
}

// negationConstraint builds the constraint for a NEGATION(elem) type: the
// value must structurally avoid elem's refinement, i.e. elem's own check
// must fail. It runs elem's constraint with its Fail chained into the
// negation's own success label, and Fails immediately if elem's check
// instead reaches its normal end (meaning elem's refinement held).
func (s *State) negationConstraint(elem *ast.UnresolvedType, name string, attr source.Attribute) (*il.Block, error) {
	inner, err := s.typeExprConstraint(elem, name)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	ok := il.NewLabel("negation_ok")
	chained := il.Chain(inner, ok)
	b := il.NewBlock(config.THISSlot + 1)
	b = il.Append(b, il.Relabel(chained, "negation"))
	b.Emit(il.Op{Kind: il.OpFail, Msg: fmt.Sprintf("type constraint not satisfied (%s)", name)}, attr)
	b.EmitLabel(ok, attr)
	return b, nil
}

// appendBlock appends extra onto acc, treating a nil acc as the identity.
func appendBlock(acc, extra *il.Block) *il.Block {
	if acc == nil {
		return extra
	}
	return il.Append(acc, extra)
}
