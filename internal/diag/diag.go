// Package diag implements the SyntaxError family of spec.md §7: every
// core failure is one Error carrying a Kind, a message, and the source
// Attribute of the offending node.
package diag

import (
	"fmt"

	"github.com/zimothy/Whiley/internal/source"
)

// Kind is a closed enumeration matching spec.md §7's kind list verbatim,
// plus InternalFailure for unexpected internal states.
type Kind string

const (
	ResolveError                 Kind = "ResolveError"
	CyclicConstant                Kind = "CyclicConstant"
	CyclicType                    Kind = "CyclicType"
	InvalidConstantAsType         Kind = "InvalidConstantAsType"
	InvalidFunctionAsType         Kind = "InvalidFunctionAsType"
	NonConstantExpression         Kind = "NonConstantExpression"
	InvalidBooleanExpression      Kind = "InvalidBooleanExpression"
	InvalidBinaryExpression       Kind = "InvalidBinaryExpression"
	InvalidNumericExpression      Kind = "InvalidNumericExpression"
	InvalidListExpression         Kind = "InvalidListExpression"
	InvalidSetExpression          Kind = "InvalidSetExpression"
	InvalidLValExpression         Kind = "InvalidLValExpression"
	InvalidTupleLVal              Kind = "InvalidTupleLVal"
	UnknownVariable               Kind = "UnknownVariable"
	UnknownFunctionOrMethod       Kind = "UnknownFunctionOrMethod"
	VariablePossiblyUninitialised Kind = "VariablePossiblyUninitialised"
	BreakOutsideLoop              Kind = "BreakOutsideLoop"
	DuplicateCaseLabel            Kind = "DuplicateCaseLabel"
	DuplicateDefaultLabel         Kind = "DuplicateDefaultLabel"
	UnreachableCode               Kind = "UnreachableCode"
	SubtypeError                  Kind = "SubtypeError"

	// InternalFailure is never a declaration-level recovery point: per
	// spec.md §7, "callers must never swallow it".
	InternalFailure Kind = "InternalFailure"
)

// Error is the core's one error type. It implements the standard error
// interface so it composes with everything else in the module, while
// still exposing Kind/Attr for callers (the CLI driver, tests) that want
// to report or assert on them structurally.
type Error struct {
	Kind    Kind
	Message string
	File    string
	Attr    source.Attribute
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Attr, e.Kind, e.Message)
}

// New builds an Error at the given node attribute.
func New(kind Kind, attr source.Attribute, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), File: attr.File, Attr: attr}
}
