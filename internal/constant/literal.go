package constant

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/zimothy/Whiley/internal/ast"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/value"
)

// parseLiteral turns an ELiteral's raw lexeme into a value.Value. The AST
// intentionally carries only text (LiteralKind, LiteralText) rather than
// an already-parsed value.Value, so internal/ast has no dependency on
// internal/value; parsing happens once, here, on first evaluation.
func parseLiteral(expr *ast.Expr) (value.Value, error) {
	switch expr.LiteralKind {
	case "null":
		return value.NullValue{}, nil
	case "bool":
		return value.BoolValue{Value: expr.LiteralText == "true"}, nil
	case "byte":
		n, err := strconv.ParseUint(strings.TrimPrefix(expr.LiteralText, "0b"), 2, 8)
		if err != nil {
			return nil, diag.New(diag.NonConstantExpression, expr.Attr, "malformed byte literal %q", expr.LiteralText)
		}
		return value.ByteValue{Value: byte(n)}, nil
	case "char":
		r := []rune(expr.LiteralText)
		if len(r) != 1 {
			return nil, diag.New(diag.NonConstantExpression, expr.Attr, "malformed char literal %q", expr.LiteralText)
		}
		return value.CharValue{Value: r[0]}, nil
	case "int":
		n, ok := new(big.Int).SetString(expr.LiteralText, 10)
		if !ok {
			return nil, diag.New(diag.NonConstantExpression, expr.Attr, "malformed integer literal %q", expr.LiteralText)
		}
		return value.IntValue{Value: n}, nil
	case "real":
		r, ok := new(big.Rat).SetString(expr.LiteralText)
		if !ok {
			return nil, diag.New(diag.NonConstantExpression, expr.Attr, "malformed real literal %q", expr.LiteralText)
		}
		return value.RatValue{Value: r}, nil
	case "string":
		return value.StringValue{Value: expr.LiteralText}, nil
	}
	return nil, diag.New(diag.NonConstantExpression, expr.Attr, "unknown literal kind %q", expr.LiteralKind)
}
