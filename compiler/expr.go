package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

// compileExpr evaluates e and returns the register holding its value,
// materializing literals and computed results into a fresh temporary the
// way the teacher's assembly.compile(node, dest) always "returns the
// register actually holding the result" (backend/compiler.go).
func (b *builder) compileExpr(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NullLiteral:
		r := b.newTemp()
		b.emit(vm.OpMove, r)
		b.emitWord(b.literalRK(e))
		return r

	case *ast.IdentExpr:
		if r, ok := b.lookupCompVar(n.Name); ok {
			return r
		}
		switch n.Ref {
		case ast.RefLocal:
			return n.Index
		case ast.RefUpvalue:
			r := b.newTemp()
			b.emit(vm.OpGetUpval, r)
			b.emitWord(uint16(n.Index))
			return r
		default:
			r := b.newTemp()
			b.emit(vm.OpGetGlobal, r)
			b.emitWord(b.kStringIdx(n.Name))
			return r
		}

	case *ast.ThisExpr:
		return 0 // `this` is always parameter 0 of a method, per spec.md §4.A

	case *ast.SuperExpr:
		r := b.newTemp()
		b.emit(vm.OpSuperOf, r)
		b.emitWord(b.regRK(0))
		return r

	case *ast.VarargExpr:
		r := b.newTemp()
		b.emit(vm.OpVararg, r)
		b.emitWord(uint16(int16(1)))
		return r

	case *ast.ArrayLiteral:
		return b.compileArrayLiteral(n)

	case *ast.TableLiteral:
		return b.compileTableLiteral(n)

	case *ast.Comprehension:
		return b.compileComprehension(n)

	case *ast.FuncLiteral:
		return b.compileClosure(n, nil)

	case *ast.ClassLiteral:
		return b.compileClassBody("", n.Bases, n.Fields, n.Methods)

	case *ast.NamespaceLiteral:
		return b.compileNamespaceBody("", n.Parent, n.Fields)

	case *ast.UnaryExpr:
		return b.compileUnary(n)

	case *ast.BinaryExpr:
		return b.compileBinary(n)

	case *ast.RangeExpr:
		// Only meaningful inside a switch-case value list; compileSwitch
		// consumes RangeExpr nodes directly and never calls compileExpr
		// on one.
		b.d.fail(b.errf(spanOf(n), "range expression used outside of a switch case"))
		return b.newTemp()

	case *ast.TernaryExpr:
		return b.compileTernary(n)

	case *ast.IncDecExpr:
		return b.compileIncDec(n)

	case *ast.AssignExpr:
		return b.compileAssign(n)

	case *ast.IndexExpr:
		r := b.newTemp()
		obj := b.compileExpr(n.Object)
		idx := b.compileRK(n.Index)
		b.emit(vm.OpIndex, r)
		b.emitWord(b.regRK(obj))
		b.emitWord(idx)
		return r

	case *ast.FieldExpr:
		r := b.newTemp()
		obj := b.compileRK(n.Object)
		b.emit(vm.OpField, r)
		b.emitWord(obj)
		b.emitWord(b.kStringIdx(n.Name))
		return r

	case *ast.SliceExpr:
		r := b.newTemp()
		obj := b.compileRK(n.Object)
		lo := b.compileSliceBound(n.Lo)
		hi := b.compileSliceBound(n.Hi)
		b.emit(vm.OpSlice, r)
		b.emitWord(obj)
		b.emitWord(lo)
		b.emitWord(hi)
		return r

	case *ast.CallExpr:
		return b.compileCall(n, -1)

	case *ast.YieldExpr:
		return b.compileYieldExpr(n)

	default:
		b.d.fail(b.errf(spanOf(n), "unsupported expression node %T", e))
		return b.newTemp()
	}
}

func spanOf(n ast.Node) source.Span { return source.Span{Start: n.Pos(), End: n.End()} }

// literalRK returns the RK word for a Literal expr's constant-pool entry.
func (b *builder) literalRK(e ast.Expr) uint16 {
	switch n := e.(type) {
	case *ast.IntLiteral:
		idx, err := b.constant(value.Int(n.Value))
		b.checkConst(err)
		return vm.RKWord(idx, true)
	case *ast.FloatLiteral:
		idx, err := b.constant(value.Float(n.Value))
		b.checkConst(err)
		return vm.RKWord(idx, true)
	case *ast.StringLiteral:
		return b.kString(n.Value)
	case *ast.BoolLiteral:
		idx, err := b.constant(value.Bool(n.Value))
		b.checkConst(err)
		return vm.RKWord(idx, true)
	case *ast.NullLiteral:
		idx, err := b.constant(value.Null())
		b.checkConst(err)
		return vm.RKWord(idx, true)
	}
	return 0
}

func (b *builder) checkConst(err error) {
	if err != nil {
		b.d.fail(err)
	}
}

// compileRK evaluates e for use as an instruction operand, returning a
// constant-pool reference for literals and a bare-register reference for
// an already-resolved local without copying it, falling back to a fresh
// temporary for everything else - the register/constant split every
// binary-op/index/field/call opcode in package vm accepts directly.
func (b *builder) compileRK(e ast.Expr) uint16 {
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NullLiteral:
		return b.literalRK(e)
	case *ast.IdentExpr:
		if r, ok := b.lookupCompVar(n.Name); ok {
			return b.regRK(r)
		}
		if n.Ref == ast.RefLocal {
			return b.regRK(n.Index)
		}
	}
	return b.regRK(b.compileExpr(e))
}

// toReg materializes an RK operand into an actual register, needed by the
// handful of opcodes (SetUpval, NewGlobal/SetGlobal, Inc/Dec) whose
// operand is a bare register index rather than an RK word.
func (b *builder) toReg(rk uint16) int {
	idx, isConst := vm.DecodeRK(rk)
	if !isConst {
		return idx
	}
	r := b.newTemp()
	b.emit(vm.OpMove, r)
	b.emitWord(rk)
	return r
}

// compileSliceBound compiles an optional slice endpoint, encoding a nil
// bound as NoneReg so execSlice/execSliceAssign treat it as "open end".
func (b *builder) compileSliceBound(e ast.Expr) uint16 {
	if e == nil {
		return vm.RKWord(vm.NoneReg, false)
	}
	return b.compileRK(e)
}
