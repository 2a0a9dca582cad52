package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

var arithOpcodes = map[ast.BinaryOp]vm.Opcode{
	ast.OpAdd: vm.OpAdd, ast.OpSub: vm.OpSub, ast.OpMul: vm.OpMul,
	ast.OpDiv: vm.OpDiv, ast.OpMod: vm.OpMod,
	ast.OpAnd: vm.OpAnd, ast.OpOr: vm.OpOr, ast.OpXor: vm.OpXor,
	ast.OpShl: vm.OpShl, ast.OpShr: vm.OpShr, ast.OpUShr: vm.OpUShr,
}

var cmpCodes = map[ast.BinaryOp]vm.CmpCode{
	ast.OpLt: vm.CmpLT, ast.OpLe: vm.CmpLE, ast.OpGt: vm.CmpGT, ast.OpGe: vm.CmpGE,
}

// compileBinary dispatches on operator family. Every family that isn't a
// plain two-RK-operand arithmetic opcode gets its own compiler, since the
// register/operand shape of comparisons, concatenation, short-circuit
// booleans and the null-coalescing operator all differ from the uniform
// "two operands, one dest" shape arithmetic uses.
func (b *builder) compileBinary(e *ast.BinaryExpr) int {
	if op, ok := arithOpcodes[e.Op]; ok {
		r := b.newTemp()
		l := b.compileRK(e.Left)
		rr := b.compileRK(e.Right)
		b.emit(op, r)
		b.emitWord(l)
		b.emitWord(rr)
		return r
	}

	switch e.Op {
	case ast.OpCat:
		return b.compileConcatChain(flattenCat(e))

	case ast.OpCmp3:
		r := b.newTemp()
		l := b.compileRK(e.Left)
		rr := b.compileRK(e.Right)
		b.emit(vm.OpCmp3, r)
		b.emitWord(l)
		b.emitWord(rr)
		return r

	case ast.OpAndAnd:
		r := b.newTemp()
		b.compileInto(r, e.Left)
		falseJump := b.emitIsTrueFalseJumpReg(r)
		b.compileInto(r, e.Right)
		b.patchJump(falseJump)
		return r

	case ast.OpOrOr:
		r := b.newTemp()
		b.compileInto(r, e.Left)
		falseJump := b.emitIsTrueFalseJumpReg(r)
		doneJump := b.emitJumpInstr(vm.OpJmp, 0)
		b.patchJump(falseJump)
		b.compileInto(r, e.Right)
		b.patchJump(doneJump)
		return r

	case ast.OpDefault:
		r := b.newTemp()
		b.compileInto(r, e.Left)
		nullK := b.literalRK(&ast.NullLiteral{})
		b.emit(vm.OpEquals, 0)
		b.emitWord(b.regRK(r))
		b.emitWord(nullK)
		nonNullJump := b.emitWord(0) // Equals jumps when NOT equal, i.e. Left is non-null
		b.compileInto(r, e.Right)
		b.patchJump(nonNullJump)
		return r

	case ast.OpEq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpIs, ast.OpIn:
		return b.reifyCond(e)

	case ast.OpNe, ast.OpNotIs, ast.OpNotIn:
		return b.reifyCondInverted(e)

	default:
		b.d.fail(b.errf(spanOf(e), "unsupported binary operator %q", e.Op))
		return b.newTemp()
	}
}

func flattenCat(e *ast.BinaryExpr) []ast.Expr {
	var exprs []ast.Expr
	var walk func(ast.Expr)
	walk = func(x ast.Expr) {
		if be, ok := x.(*ast.BinaryExpr); ok && be.Op == ast.OpCat {
			walk(be.Left)
			walk(be.Right)
			return
		}
		exprs = append(exprs, x)
	}
	walk(e)
	return exprs
}

// compileConcatChain materializes each operand into contiguous registers
// and emits a single variadic Cat, matching OpCat's firstReg/count operand
// shape (vm/data.go).
func (b *builder) compileConcatChain(exprs []ast.Expr) int {
	first := b.newTemps(len(exprs))
	for i, e := range exprs {
		b.compileInto(first+i, e)
	}
	b.emit(vm.OpCat, first)
	b.emitWord(uint16(first))
	b.emitWord(uint16(len(exprs)))
	return first
}

// compileInto compiles e and moves its value into register dst, used
// wherever a result must land in a caller-chosen register rather than a
// freshly allocated one (short-circuit booleans, loop counters, call
// argument slots).
func (b *builder) compileInto(dst int, e ast.Expr) {
	r := b.compileExpr(e)
	if r != dst {
		b.emit(vm.OpMove, dst)
		b.emitWord(b.regRK(r))
	}
}

// reifyCond compiles a relational/identity/membership comparison into a
// register holding true/false: every condition-producing opcode is a
// conditional jump with no register result, so reification always follows
// the same emit-false-branch, emit-true, jump-over, emit-false shape.
func (b *builder) reifyCond(e *ast.BinaryExpr) int {
	r := b.newTemp()
	falseJump := b.emitCondFalseJump(e)
	b.emit(vm.OpMove, r)
	b.emitWord(b.boolRK(true))
	doneJump := b.emitJumpInstr(vm.OpJmp, 0)
	b.patchJump(falseJump)
	b.emit(vm.OpMove, r)
	b.emitWord(b.boolRK(false))
	b.patchJump(doneJump)
	return r
}

// reifyCondInverted handles !=, !is, !in, whose underlying opcode (Equals
// for !=, Is for !is, In for !in) already tests the non-negated form;
// swapping the true/false Move targets relative to reifyCond negates it.
func (b *builder) reifyCondInverted(e *ast.BinaryExpr) int {
	r := b.newTemp()
	otherJump := b.emitCondFalseJump(e)
	b.emit(vm.OpMove, r)
	b.emitWord(b.boolRK(false))
	doneJump := b.emitJumpInstr(vm.OpJmp, 0)
	b.patchJump(otherJump)
	b.emit(vm.OpMove, r)
	b.emitWord(b.boolRK(true))
	b.patchJump(doneJump)
	return r
}

func (b *builder) boolRK(v bool) uint16 {
	idx, err := b.constant(value.Bool(v))
	b.checkConst(err)
	return vm.RKWord(idx, true)
}

// equivBinaryOp maps a negated operator to the opcode-level test it shares
// with its positive form (!= shares Equals with ==, !is shares Is with is,
// !in shares In with in).
func equivBinaryOp(op ast.BinaryOp) ast.BinaryOp {
	switch op {
	case ast.OpNe:
		return ast.OpEq
	case ast.OpNotIs:
		return ast.OpIs
	case ast.OpNotIn:
		return ast.OpIn
	}
	return op
}

// emitCondFalseJump emits one of Cmp/Equals/Is/In (all "jump when the
// condition is false" opcodes) for a relational/identity/membership
// BinaryExpr and returns the index of its jump-offset operand word.
func (b *builder) emitCondFalseJump(e *ast.BinaryExpr) int {
	op := equivBinaryOp(e.Op)
	switch op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		code := cmpCodes[op]
		l := b.compileRK(e.Left)
		r := b.compileRK(e.Right)
		b.emit(vm.OpCmp, int(code))
		b.emitWord(l)
		b.emitWord(r)
		return b.emitWord(0)

	case ast.OpEq:
		l := b.compileRK(e.Left)
		r := b.compileRK(e.Right)
		b.emit(vm.OpEquals, 0)
		b.emitWord(l)
		b.emitWord(r)
		return b.emitWord(0)

	case ast.OpIs:
		l := b.compileRK(e.Left)
		r := b.compileRK(e.Right)
		b.emit(vm.OpIs, 0)
		b.emitWord(l)
		b.emitWord(r)
		return b.emitWord(0)

	case ast.OpIn:
		needle := b.compileRK(e.Left)
		haystack := b.compileRK(e.Right)
		b.emit(vm.OpIn, 0)
		b.emitWord(needle)
		b.emitWord(haystack)
		return b.emitWord(0)
	}
	b.d.fail(b.errf(spanOf(e), "unsupported condition operator %q", e.Op))
	return b.emitJumpInstr(vm.OpJmp, 0)
}

// emitIsTrueFalseJumpReg emits IsTrue against an already-materialized
// register and returns the index of its jump-offset operand, patched to
// the "value was falsy" landing point.
func (b *builder) emitIsTrueFalseJumpReg(reg int) int {
	b.emit(vm.OpIsTrue, 0)
	b.emitWord(b.regRK(reg))
	return b.emitWord(0)
}

// emitIsTrueFalseJump compiles cond into a register and emits IsTrue,
// returning the index of its jump-offset operand (patched to the
// "condition was falsy" landing point).
func (b *builder) emitIsTrueFalseJump(cond ast.Expr) int {
	c := b.compileRK(cond)
	b.emit(vm.OpIsTrue, 0)
	b.emitWord(c)
	return b.emitWord(0)
}

func (b *builder) compileUnary(e *ast.UnaryExpr) int {
	switch e.Op {
	case ast.UnaryNeg:
		r := b.newTemp()
		s := b.compileRK(e.Operand)
		b.emit(vm.OpNeg, r)
		b.emitWord(s)
		return r
	case ast.UnaryCom:
		r := b.newTemp()
		s := b.compileRK(e.Operand)
		b.emit(vm.OpCom, r)
		b.emitWord(s)
		return r
	case ast.UnaryLen:
		r := b.newTemp()
		s := b.compileRK(e.Operand)
		b.emit(vm.OpLength, r)
		b.emitWord(s)
		return r
	case ast.UnaryNot:
		r := b.newTemp()
		falseJump := b.emitIsTrueFalseJump(e.Operand)
		b.emit(vm.OpMove, r)
		b.emitWord(b.boolRK(false))
		doneJump := b.emitJumpInstr(vm.OpJmp, 0)
		b.patchJump(falseJump)
		b.emit(vm.OpMove, r)
		b.emitWord(b.boolRK(true))
		b.patchJump(doneJump)
		return r
	}
	b.d.fail(b.errf(spanOf(e), "unsupported unary operator %q", e.Op))
	return b.newTemp()
}

func (b *builder) compileTernary(e *ast.TernaryExpr) int {
	r := b.newTemp()
	falseJump := b.emitIsTrueFalseJump(e.Cond)
	b.compileInto(r, e.Then)
	doneJump := b.emitJumpInstr(vm.OpJmp, 0)
	b.patchJump(falseJump)
	b.compileInto(r, e.Else)
	b.patchJump(doneJump)
	return r
}

func (b *builder) compileIncDec(e *ast.IncDecExpr) int {
	p := b.resolvePlace(e.Target)
	reg := b.placeGet(p)
	op := vm.OpInc
	if e.Op == ast.OpDec {
		op = vm.OpDec
	}
	b.emit(op, reg)
	if p.kind != placeLocal {
		b.placeSet(p, b.regRK(reg))
	}
	return reg
}
