package sema

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
)

// foldError reports a constant expression that would raise at run time
// (division/modulo by a literal zero); rather than folding it away or
// leaving it for the VM, the semantic pass turns it into a compile error.
type foldError struct {
	Pos source.Pos
	Msg string
}

// foldBinary attempts to evaluate a BinaryExpr whose operands are both
// literals at compile time (spec.md §4.D "constant folding: arithmetic/
// comparison/bitwise/logical/concat on literals").  It returns the
// folded literal on success, (nil, nil) to leave the node as-is, or a
// non-nil *foldError when folding the operation would require signaling
// a runtime exception.
func foldBinary(e *ast.BinaryExpr) (ast.Expr, *foldError) {
	switch l := e.Left.(type) {
	case *ast.IntLiteral:
		if r, ok := e.Right.(*ast.IntLiteral); ok {
			return foldIntInt(e.Op, l, r)
		}
		if r, ok := e.Right.(*ast.FloatLiteral); ok {
			return foldFloatFloat(e.Op, l.StartPos, float64(l.Value), r.Value)
		}
	case *ast.FloatLiteral:
		if r, ok := e.Right.(*ast.FloatLiteral); ok {
			return foldFloatFloat(e.Op, l.StartPos, l.Value, r.Value)
		}
		if r, ok := e.Right.(*ast.IntLiteral); ok {
			return foldFloatFloat(e.Op, l.StartPos, l.Value, float64(r.Value))
		}
	case *ast.StringLiteral:
		if r, ok := e.Right.(*ast.StringLiteral); ok && e.Op == ast.OpCat {
			return &ast.StringLiteral{StartPos: l.StartPos, Value: l.Value + r.Value}, nil
		}
	case *ast.BoolLiteral:
		if r, ok := e.Right.(*ast.BoolLiteral); ok {
			return foldBoolBool(e.Op, l, r)
		}
	}
	return nil, nil
}

func foldIntInt(op ast.BinaryOp, l, r *ast.IntLiteral) (ast.Expr, *foldError) {
	a, b := l.Value, r.Value
	switch op {
	case ast.OpAdd:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a + b}, nil
	case ast.OpSub:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a - b}, nil
	case ast.OpMul:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a * b}, nil
	case ast.OpDiv:
		if b == 0 {
			return nil, &foldError{Pos: l.StartPos, Msg: "division by zero in constant expression"}
		}
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a / b}, nil
	case ast.OpMod:
		if b == 0 {
			return nil, &foldError{Pos: l.StartPos, Msg: "modulo by zero in constant expression"}
		}
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a % b}, nil
	case ast.OpAnd:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a & b}, nil
	case ast.OpOr:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a | b}, nil
	case ast.OpXor:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a ^ b}, nil
	case ast.OpShl:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a << uint(b)}, nil
	case ast.OpShr:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: a >> uint(b)}, nil
	case ast.OpEq:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a == b}, nil
	case ast.OpNe:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a != b}, nil
	case ast.OpLt:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a < b}, nil
	case ast.OpLe:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a <= b}, nil
	case ast.OpGt:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a > b}, nil
	case ast.OpGe:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: a >= b}, nil
	case ast.OpCmp3:
		return &ast.IntLiteral{StartPos: l.StartPos, Value: int64(cmp3Int(a, b))}, nil
	}
	return nil, nil
}

func cmp3Int(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func foldFloatFloat(op ast.BinaryOp, pos source.Pos, a, b float64) (ast.Expr, *foldError) {
	switch op {
	case ast.OpAdd:
		return &ast.FloatLiteral{StartPos: pos, Value: a + b}, nil
	case ast.OpSub:
		return &ast.FloatLiteral{StartPos: pos, Value: a - b}, nil
	case ast.OpMul:
		return &ast.FloatLiteral{StartPos: pos, Value: a * b}, nil
	case ast.OpDiv:
		return &ast.FloatLiteral{StartPos: pos, Value: a / b}, nil
	case ast.OpEq:
		return &ast.BoolLiteral{StartPos: pos, Value: a == b}, nil
	case ast.OpNe:
		return &ast.BoolLiteral{StartPos: pos, Value: a != b}, nil
	case ast.OpLt:
		return &ast.BoolLiteral{StartPos: pos, Value: a < b}, nil
	case ast.OpLe:
		return &ast.BoolLiteral{StartPos: pos, Value: a <= b}, nil
	case ast.OpGt:
		return &ast.BoolLiteral{StartPos: pos, Value: a > b}, nil
	case ast.OpGe:
		return &ast.BoolLiteral{StartPos: pos, Value: a >= b}, nil
	default:
		return nil, nil
	}
}

func foldBoolBool(op ast.BinaryOp, l, r *ast.BoolLiteral) (ast.Expr, *foldError) {
	switch op {
	case ast.OpAndAnd:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: l.Value && r.Value}, nil
	case ast.OpOrOr:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: l.Value || r.Value}, nil
	case ast.OpEq:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: l.Value == r.Value}, nil
	case ast.OpNe:
		return &ast.BoolLiteral{StartPos: l.StartPos, Value: l.Value != r.Value}, nil
	}
	return nil, nil
}

// foldUnary folds a UnaryExpr applied to a literal operand.
func foldUnary(e *ast.UnaryExpr) ast.Expr {
	switch v := e.Operand.(type) {
	case *ast.IntLiteral:
		switch e.Op {
		case ast.UnaryNeg:
			return &ast.IntLiteral{StartPos: e.StartPos, Value: -v.Value}
		case ast.UnaryCom:
			return &ast.IntLiteral{StartPos: e.StartPos, Value: ^v.Value}
		}
	case *ast.FloatLiteral:
		if e.Op == ast.UnaryNeg {
			return &ast.FloatLiteral{StartPos: e.StartPos, Value: -v.Value}
		}
	case *ast.BoolLiteral:
		if e.Op == ast.UnaryNot {
			return &ast.BoolLiteral{StartPos: e.StartPos, Value: !v.Value}
		}
	case *ast.StringLiteral:
		if e.Op == ast.UnaryLen {
			return &ast.IntLiteral{StartPos: e.StartPos, Value: int64(len([]rune(v.Value)))}
		}
	}
	return nil
}
