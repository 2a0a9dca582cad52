package sema

import "github.com/jarrettbillingsley/croc/ast"

// MetamethodNames maps each operator token to the instance-method name
// the VM dispatches to when an operand is a Class instance lacking a
// native overload (spec.md §3 "Metamethod dispatch"), adapted from the
// teacher's frontend/types.go + table.go operator-to-Method lookup
// (there keyed by static Type for overload resolution; here keyed by
// ast.BinaryOp/UnaryOp directly since Croc has no static types).
var MetamethodNames = map[ast.BinaryOp]string{
	ast.OpAdd:   "opAdd",
	ast.OpSub:   "opSub",
	ast.OpMul:   "opMul",
	ast.OpDiv:   "opDiv",
	ast.OpMod:   "opMod",
	ast.OpAnd:   "opAnd",
	ast.OpOr:    "opOr",
	ast.OpXor:   "opXor",
	ast.OpShl:   "opShl",
	ast.OpShr:   "opShr",
	ast.OpUShr:  "opUShr",
	ast.OpCat:   "opCat",
	ast.OpCmp3:  "opCmp",
	ast.OpIn:    "opIn",
}

var UnaryMetamethodNames = map[ast.UnaryOp]string{
	ast.UnaryNeg: "opNeg",
	ast.UnaryCom: "opCom",
	ast.UnaryLen: "opLength",
}

// AlwaysSafeFold reports whether op can be constant-folded on numeric
// literals without the possibility of the runtime operation raising
// (spec.md §9 "classify each folded operation as always-safe or
// raising"): arithmetic overflow wraps silently on ints and never raises,
// but division and modulo raise on a zero divisor (foldBinary reports a
// literal-zero divisor as a compile error).
func AlwaysSafeFold(op ast.BinaryOp) bool {
	switch op {
	case ast.OpDiv, ast.OpMod:
		return false
	default:
		return true
	}
}
