// Package ast defines the trimmed node set the Resolver and Lowerer
// consume: just enough syntax to describe Whiley's structural type
// declarations, constants, functions/methods and statements/expressions,
// with no parser attached (spec.md §6 "AST interface (consumed)").
//
// Every node kind is a single tagged struct rather than one Go type per
// AST class, so a switch over Kind is exhaustive and the compiler flags a
// missing case — the "recommended re-architecture" spec.md §9 calls for
// in place of the source's runtime class tests.
package ast

import "github.com/zimothy/Whiley/internal/source"

// Node is implemented by every node kind, exposing just the one field
// the core actually uses from the original AST (spec.md §6).
type Node interface {
	Attribute() source.Attribute
}

// UTKind tags the shape of an UnresolvedType.
type UTKind int

const (
	UTLeaf UTKind = iota
	UTNominal
	UTSet
	UTList
	UTReference
	UTProcess
	UTNegation
	UTDictionary
	UTUnion
	UTIntersection
	UTTuple
	UTRecord
	UTFunction
	UTMethod
)

// UnresolvedField is one (name, type) pair of an UTRecord.
type UnresolvedField struct {
	Name string
	Type *UnresolvedType
}

// UnresolvedType is the syntax-level description of a type as the parser
// produced it, before the Resolver expands nominal references and
// evaluates `where` predicates into a types.Type (spec.md §3.3/§4.4).
type UnresolvedType struct {
	Attr source.Attribute
	Kind UTKind

	LeafName string // UTLeaf: "void"|"any"|"null"|"bool"|"byte"|"char"|"int"|"real"|"string"
	Module   string // UTNominal: qualifying module, empty for same-module
	Name     string // UTNominal: the declared type name being referenced

	Elem *UnresolvedType // UTSet, UTList, UTReference, UTProcess, UTNegation

	Key *UnresolvedType // UTDictionary
	Val *UnresolvedType // UTDictionary

	Branches []*UnresolvedType // UTUnion, UTIntersection

	Elems []*UnresolvedType // UTTuple

	Fields []UnresolvedField // UTRecord
	Open   bool              // UTRecord

	Params      []*UnresolvedType // UTFunction, UTMethod
	Ret         *UnresolvedType   // UTFunction, UTMethod
	Receiver    *UnresolvedType   // UTMethod
	HasReceiver bool              // UTMethod

	// Where is the refinement predicate attached to a `where` clause on
	// the enclosing type declaration, written in terms of the bound
	// variable Binder (spec.md §4.4 step 6's "$"). Nil when absent.
	Where  *Expr
	Binder string
}

func (t *UnresolvedType) Attribute() source.Attribute { return t.Attr }

// BinaryOp enumerates every infix operator the parser can produce,
// spanning arithmetic, bitwise, comparison and short-circuit logic —
// a superset of il.BinOp since comparisons and `&&`/`||` never reach the
// IL as a BinOp (spec.md §4.5 lowers them via IfGoto/IfType instead).
type BinaryOp int

const (
	BAdd BinaryOp = iota
	BSub
	BMul
	BDiv
	BRem
	BRange
	BBitAnd
	BBitOr
	BBitXor
	BShl
	BShr
	BEq
	BNe
	BLt
	BLe
	BGt
	BGe
	BLogicalAnd
	BLogicalOr
	BConcat     // list ++
	BSetUnion   // set ∪
	BSetIntersect // set ∩
	BSetDiff    // set \
)

// UnaryOp enumerates the prefix operators.
type UnaryOp int

const (
	UNeg UnaryOp = iota
	UNot
	ULen
	UBitNot
)

// QuantKind tags a quantified boolean comprehension.
type QuantKind int

const (
	QuantSome QuantKind = iota
	QuantNone
	QuantAll
)

// ExprKind tags the shape of an Expr.
type ExprKind int

const (
	ELiteral ExprKind = iota
	EVariable
	EBinary
	EUnary
	EIsTest
	EInvoke
	EIndex
	EField
	ETuple
	ERecord
	EList
	ESet
	EDict
	EComprehension
	EQuantified
)

// RecordFieldExpr is one (name, value) pair of a record construction.
type RecordFieldExpr struct {
	Name  string
	Value *Expr
}

// DictEntryExpr is one (key, value) pair of a dictionary construction.
type DictEntryExpr struct {
	Key   *Expr
	Value *Expr
}

// Expr is every expression the Lowerer and Constant Evaluator consume.
type Expr struct {
	Attr source.Attribute
	Kind ExprKind

	LiteralKind  string // ELiteral: "bool"|"byte"|"char"|"int"|"real"|"string"|"null", parsed by the evaluator
	LiteralText  string // ELiteral: raw lexeme, parsed lazily so the AST carries no value.Value dependency

	Name   string // EVariable, EField (field name), EInvoke (callee name)
	Module string // EInvoke: qualifying module, empty for same-module

	// Callee and Receiver together spell out which of the Lowerer's six
	// invocation-dispatch shapes (spec.md §4.5 "Invocation dispatch") an
	// EInvoke is: both nil is a direct call (Name/Module), or Load +
	// IndirectInvoke when Name is a local variable holding a function value;
	// Callee set and shaped like an EField is "FieldLoad + IndirectInvoke";
	// Callee set otherwise is IndirectInvoke/IndirectSend depending on
	// Receiver; Receiver alone (no Callee) is a Send to a named method on
	// an actor reference.
	Callee   *Expr // EInvoke: expression-valued callee for indirect dispatch
	Receiver *Expr // EInvoke: explicit receiver for a Send

	Op    BinaryOp // EBinary
	UOp   UnaryOp  // EUnary
	Left  *Expr    // EBinary
	Right *Expr    // EBinary
	Sub   *Expr    // EUnary operand, EIsTest operand, EField/EIndex base

	TestType *UnresolvedType // EIsTest

	Args []*Expr // EInvoke

	Index *Expr // EIndex

	Elems   []*Expr           // ETuple, EList, ESet
	Fields  []RecordFieldExpr // ERecord
	Entries []DictEntryExpr   // EDict

	CompIsSet  bool   // EComprehension: builds a set rather than a list
	CompVar    string // EComprehension, EQuantified: bound variable
	CompSource *Expr  // EComprehension, EQuantified: source collection
	CompElem   *Expr  // EComprehension: element expression
	CompCond   *Expr  // EComprehension, EQuantified: optional filter/predicate

	QuantKind QuantKind // EQuantified
}

func (e *Expr) Attribute() source.Attribute { return e.Attr }

// StmtKind tags the shape of a Stmt.
type StmtKind int

const (
	SAssign StmtKind = iota
	SDestructureAssign
	SVarDecl
	SIf
	SWhile
	SDoWhile
	SFor
	SSwitch
	SBreak
	SContinue
	SReturn
	SAssert
	SAssume
	STry
	SThrow
	SExprStmt
)

// SwitchCaseStmt is one case arm of a switch statement.
type SwitchCaseStmt struct {
	Values    []*Expr // constant-foldable case labels; empty + IsDefault for default
	IsDefault bool
	Body      []*Stmt
}

// CatchClauseStmt is one catch arm of a try statement.
type CatchClauseStmt struct {
	Type    *UnresolvedType
	VarName string
	Body    []*Stmt
}

// Stmt is every statement the Lowerer consumes.
type Stmt struct {
	Attr source.Attribute
	Kind StmtKind

	LValue  *Expr   // SAssign
	LValues []*Expr // SDestructureAssign, left to right

	Value *Expr // SAssign/SDestructureAssign RHS, SReturn/SThrow/SExprStmt/SAssert/SAssume value

	VarName string          // SVarDecl
	VarType *UnresolvedType // SVarDecl: nil means infer from Init
	Init    *Expr           // SVarDecl

	Cond *Expr // SIf, SWhile, SDoWhile

	Then []*Stmt // SIf
	Else []*Stmt // SIf, nil means no else branch
	Body []*Stmt // SWhile, SDoWhile, SFor body; STry protected region

	ForVar     string // SFor
	ForSource  *Expr  // SFor: the collection being iterated
	Invariants []*Expr // SWhile, SDoWhile, SFor

	SwitchValue *Expr
	Cases       []SwitchCaseStmt // SSwitch

	CatchClauses []CatchClauseStmt // STry
}

func (s *Stmt) Attribute() source.Attribute { return s.Attr }

// DeclKind tags the shape of a Decl.
type DeclKind int

const (
	DType DeclKind = iota
	DConstant
	DFunction
	DMethod
)

// ParamDecl is one (name, type) formal parameter.
type ParamDecl struct {
	Name string
	Type *UnresolvedType
}

// Decl is a single top-level declaration.
type Decl struct {
	Attr source.Attribute
	Kind DeclKind
	Name string

	TypeExpr *UnresolvedType // DType

	ConstExpr *Expr // DConstant

	Receiver   *ParamDecl // DMethod, nil for an unbound method
	Params     []ParamDecl
	ReturnType *UnresolvedType

	Precondition  *Expr // DFunction/DMethod `requires` clause
	Postcondition *Expr // DFunction/DMethod `ensures` clause

	Body []*Stmt // DFunction, DMethod
}

func (d *Decl) Attribute() source.Attribute { return d.Attr }

// File is one parsed compilation unit: a module name and its ordered
// top-level declarations.
type File struct {
	Module string
	Decls  []*Decl
}
