// Package constant implements the Constant Evaluator of spec.md §4.3:
// folding a constant declaration's right-hand expression down to a
// value.Value, with cycle detection across the declarations it
// transitively references. Grounded on the occurs-check idiom the teacher
// uses for cycle-tolerant recursive structures (a `visiting` set threaded
// through the recursive call, the same shape as an occurs-check in a
// unifier) and on the literal-folding shape of an expression evaluator.
package constant

import (
	"math/big"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/value"
)

// Evaluator evaluates named constant declarations, memoising results and
// detecting cyclic definitions.
type Evaluator struct {
	exprs         map[string]*ast.Expr
	functionNames map[string]bool

	results  map[string]value.Value
	visiting map[string]bool
}

// NewEvaluator builds an Evaluator over the given constant declarations
// (name -> right-hand expression) and the set of known function names,
// used to recognise a bare function reference (spec.md §4.3 "Function
// references become deferred values").
func NewEvaluator(exprs map[string]*ast.Expr, functionNames map[string]bool) *Evaluator {
	return &Evaluator{
		exprs:         exprs,
		functionNames: functionNames,
		results:       make(map[string]value.Value),
		visiting:      make(map[string]bool),
	}
}

// NewEvaluatorWithConstants is NewEvaluator plus a table of already-folded
// constants, pre-seeded into the memoisation cache. The Lowerer uses this
// to fold switch-case labels (spec.md §4.5 "Case expressions are
// constant-folded via the Constant Evaluator") against the Resolver's
// already-evaluated constants table, without re-walking every declaration.
func NewEvaluatorWithConstants(exprs map[string]*ast.Expr, functionNames map[string]bool, known map[string]value.Value) *Evaluator {
	e := NewEvaluator(exprs, functionNames)
	for k, v := range known {
		e.results[k] = v
	}
	return e
}

// Eval folds a single expression directly, without requiring it to be
// registered under a constant declaration name. Used for switch-case
// labels, which are constant expressions but not named declarations.
func (e *Evaluator) Eval(expr *ast.Expr) (value.Value, error) {
	return e.eval(expr)
}

// Evaluate returns the memoised value of constant name, computing and
// caching it on first use.
func (e *Evaluator) Evaluate(name string) (value.Value, error) {
	if v, ok := e.results[name]; ok {
		return v, nil
	}
	expr, ok := e.exprs[name]
	if !ok {
		if e.functionNames[name] {
			return value.FuncRefValue{Name: name}, nil
		}
		return nil, diag.New(diag.ResolveError, source.Attribute{}, "unknown constant %q", name)
	}
	if e.visiting[name] {
		return nil, diag.New(diag.CyclicConstant, expr.Attr, "constant %q is defined in terms of itself", name)
	}
	e.visiting[name] = true
	v, err := e.eval(expr)
	delete(e.visiting, name)
	if err != nil {
		return nil, err
	}
	e.results[name] = v
	return v, nil
}

func (e *Evaluator) eval(expr *ast.Expr) (value.Value, error) {
	switch expr.Kind {
	case ast.ELiteral:
		return parseLiteral(expr)
	case ast.EVariable:
		return e.Evaluate(expr.Name)
	case ast.EBinary:
		return e.evalBinary(expr)
	case ast.EUnary:
		return e.evalUnary(expr)
	case ast.ETuple:
		elems, err := e.evalAll(expr.Elems)
		if err != nil {
			return nil, err
		}
		return value.TupleValue{Elements: elems}, nil
	case ast.EList:
		elems, err := e.evalAll(expr.Elems)
		if err != nil {
			return nil, err
		}
		return value.ListValue{Elements: elems}, nil
	case ast.ESet:
		elems, err := e.evalAll(expr.Elems)
		if err != nil {
			return nil, err
		}
		return value.NewSet(elems), nil
	case ast.EDict:
		entries := make([]value.DictEntry, len(expr.Entries))
		for i, ent := range expr.Entries {
			k, err := e.eval(ent.Key)
			if err != nil {
				return nil, err
			}
			v, err := e.eval(ent.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = value.DictEntry{Key: k, Value: v}
		}
		return value.DictValue{Entries: entries}, nil
	case ast.ERecord:
		fields := make(map[string]value.Value, len(expr.Fields))
		for _, f := range expr.Fields {
			v, err := e.eval(f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
		}
		return value.RecordValue{Fields: fields}, nil
	}
	return nil, diag.New(diag.NonConstantExpression, expr.Attr, "expression is not a compile-time constant")
}

func (e *Evaluator) evalAll(exprs []*ast.Expr) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for i, x := range exprs {
		v, err := e.eval(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) evalUnary(expr *ast.Expr) (value.Value, error) {
	v, err := e.eval(expr.Sub)
	if err != nil {
		return nil, err
	}
	switch expr.UOp {
	case ast.UNeg:
		switch n := v.(type) {
		case value.IntValue:
			return value.IntValue{Value: new(big.Int).Neg(n.Value)}, nil
		case value.RatValue:
			return value.RatValue{Value: new(big.Rat).Neg(n.Value)}, nil
		}
	case ast.UNot:
		if b, ok := v.(value.BoolValue); ok {
			return value.BoolValue{Value: !b.Value}, nil
		}
	case ast.ULen:
		switch n := v.(type) {
		case value.ListValue:
			return value.NewInt(int64(len(n.Elements))), nil
		case value.SetValue:
			return value.NewInt(int64(len(n.Elements))), nil
		case value.StringValue:
			return value.NewInt(int64(len([]rune(n.Value)))), nil
		}
	case ast.UBitNot:
		if b, ok := v.(value.ByteValue); ok {
			return value.ByteValue{Value: ^b.Value}, nil
		}
	}
	return nil, diag.New(diag.InvalidNumericExpression, expr.Attr, "operator not applicable to this constant's type")
}

func (e *Evaluator) evalBinary(expr *ast.Expr) (value.Value, error) {
	l, err := e.eval(expr.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.eval(expr.Right)
	if err != nil {
		return nil, err
	}
	switch expr.Op {
	case ast.BLogicalAnd, ast.BLogicalOr, ast.BBitXor:
		lb, lok := l.(value.BoolValue)
		rb, rok := r.(value.BoolValue)
		if !lok || !rok {
			return nil, diag.New(diag.InvalidBooleanExpression, expr.Attr, "operands must be boolean")
		}
		switch expr.Op {
		case ast.BLogicalAnd:
			return value.BoolValue{Value: lb.Value && rb.Value}, nil
		case ast.BLogicalOr:
			return value.BoolValue{Value: lb.Value || rb.Value}, nil
		default:
			return value.BoolValue{Value: lb.Value != rb.Value}, nil
		}
	case ast.BConcat:
		ll, lok := l.(value.ListValue)
		rl, rok := r.(value.ListValue)
		if !lok || !rok {
			return nil, diag.New(diag.InvalidListExpression, expr.Attr, "++ requires two lists")
		}
		out := make([]value.Value, 0, len(ll.Elements)+len(rl.Elements))
		out = append(out, ll.Elements...)
		out = append(out, rl.Elements...)
		return value.ListValue{Elements: out}, nil
	case ast.BSetUnion:
		ls, lok := l.(value.SetValue)
		rs, rok := r.(value.SetValue)
		if !lok || !rok {
			return nil, diag.New(diag.InvalidSetExpression, expr.Attr, "∪ requires two sets")
		}
		return value.NewSet(append(append([]value.Value{}, ls.Elements...), rs.Elements...)), nil
	case ast.BSetIntersect:
		ls, lok := l.(value.SetValue)
		rs, rok := r.(value.SetValue)
		if !lok || !rok {
			return nil, diag.New(diag.InvalidSetExpression, expr.Attr, "∩ requires two sets")
		}
		return value.NewSet(setFilter(ls.Elements, rs.Elements, true)), nil
	case ast.BSetDiff:
		ls, lok := l.(value.SetValue)
		rs, rok := r.(value.SetValue)
		if !lok || !rok {
			return nil, diag.New(diag.InvalidSetExpression, expr.Attr, "\\ requires two sets")
		}
		return value.NewSet(setFilter(ls.Elements, rs.Elements, false)), nil
	}
	return e.evalArithmetic(expr, l, r)
}

// setFilter keeps elements of a that are (want=true) or are not
// (want=false) also present in b, by structural equality.
func setFilter(a, b []value.Value, want bool) []value.Value {
	var out []value.Value
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if found == want {
			out = append(out, x)
		}
	}
	return out
}

func (e *Evaluator) evalArithmetic(expr *ast.Expr, l, r value.Value) (value.Value, error) {
	li, lIsInt := l.(value.IntValue)
	ri, rIsInt := r.(value.IntValue)
	if lIsInt && rIsInt {
		switch expr.Op {
		case ast.BAdd:
			return value.IntValue{Value: new(big.Int).Add(li.Value, ri.Value)}, nil
		case ast.BSub:
			return value.IntValue{Value: new(big.Int).Sub(li.Value, ri.Value)}, nil
		case ast.BMul:
			return value.IntValue{Value: new(big.Int).Mul(li.Value, ri.Value)}, nil
		case ast.BDiv:
			if ri.Value.Sign() == 0 {
				return nil, diag.New(diag.InvalidNumericExpression, expr.Attr, "division by zero")
			}
			return value.IntValue{Value: new(big.Int).Quo(li.Value, ri.Value)}, nil
		case ast.BRem:
			if ri.Value.Sign() == 0 {
				return nil, diag.New(diag.InvalidNumericExpression, expr.Attr, "division by zero")
			}
			return value.IntValue{Value: new(big.Int).Rem(li.Value, ri.Value)}, nil
		case ast.BEq:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) == 0}, nil
		case ast.BNe:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) != 0}, nil
		case ast.BLt:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) < 0}, nil
		case ast.BLe:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) <= 0}, nil
		case ast.BGt:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) > 0}, nil
		case ast.BGe:
			return value.BoolValue{Value: li.Value.Cmp(ri.Value) >= 0}, nil
		case ast.BRange:
			return rangeList(li.Value, ri.Value), nil
		}
	}
	lr, lok := asRat(l)
	rr, rok := asRat(r)
	if lok && rok {
		switch expr.Op {
		case ast.BAdd:
			return value.RatValue{Value: new(big.Rat).Add(lr, rr)}, nil
		case ast.BSub:
			return value.RatValue{Value: new(big.Rat).Sub(lr, rr)}, nil
		case ast.BMul:
			return value.RatValue{Value: new(big.Rat).Mul(lr, rr)}, nil
		case ast.BDiv:
			if rr.Sign() == 0 {
				return nil, diag.New(diag.InvalidNumericExpression, expr.Attr, "division by zero")
			}
			return value.RatValue{Value: new(big.Rat).Quo(lr, rr)}, nil
		case ast.BEq:
			return value.BoolValue{Value: lr.Cmp(rr) == 0}, nil
		case ast.BNe:
			return value.BoolValue{Value: lr.Cmp(rr) != 0}, nil
		case ast.BLt:
			return value.BoolValue{Value: lr.Cmp(rr) < 0}, nil
		case ast.BLe:
			return value.BoolValue{Value: lr.Cmp(rr) <= 0}, nil
		case ast.BGt:
			return value.BoolValue{Value: lr.Cmp(rr) > 0}, nil
		case ast.BGe:
			return value.BoolValue{Value: lr.Cmp(rr) >= 0}, nil
		}
	}
	return nil, diag.New(diag.InvalidBinaryExpression, expr.Attr, "operands are not compatible numeric constants")
}

func asRat(v value.Value) (*big.Rat, bool) {
	switch n := v.(type) {
	case value.RatValue:
		return n.Value, true
	case value.IntValue:
		return new(big.Rat).SetInt(n.Value), true
	}
	return nil, false
}

func rangeList(lo, hi *big.Int) value.ListValue {
	var out []value.Value
	one := big.NewInt(1)
	for i := new(big.Int).Set(lo); i.Cmp(hi) < 0; i.Add(i, one) {
		out = append(out, value.IntValue{Value: new(big.Int).Set(i)})
	}
	return value.ListValue{Elements: out}
}
