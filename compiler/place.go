package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/vm"
)

type placeKind uint8

const (
	placeLocal placeKind = iota
	placeUpvalue
	placeGlobal
	placeIndex
	placeField
	placeSlice
)

// place is a resolved assignment target: the object/index/bound
// sub-expressions of an Index/Field/Slice target are evaluated once, up
// front, so get and set both reuse the same registers instead of
// re-evaluating (and re-running) any side effects they might carry.
type place struct {
	kind placeKind

	reg      int    // placeLocal: the local's own register
	upvalIdx int    // placeUpvalue
	nameIdx  uint16 // placeGlobal/placeField: bare constant index

	objReg int    // placeIndex/placeField/placeSlice: materialized container
	idxRK  uint16 // placeIndex
	loRK   uint16 // placeSlice
	hiRK   uint16 // placeSlice
}

// resolvePlace evaluates an assignment target's sub-expressions (but not
// the target itself) into a place descriptor. Container expressions
// (Index/Field/Slice's Object) are always materialized into an actual
// register rather than left as an RK operand, since IndexAssign/
// FieldAssign/SliceAssign take their object via the instruction's
// register-typed rd field, not an RK word (vm/data.go).
func (b *builder) resolvePlace(target ast.Expr) place {
	switch n := target.(type) {
	case *ast.IdentExpr:
		switch n.Ref {
		case ast.RefLocal:
			return place{kind: placeLocal, reg: n.Index}
		case ast.RefUpvalue:
			return place{kind: placeUpvalue, upvalIdx: n.Index}
		default:
			return place{kind: placeGlobal, nameIdx: b.kStringIdx(n.Name)}
		}

	case *ast.IndexExpr:
		obj := b.compileExpr(n.Object)
		idx := b.compileRK(n.Index)
		return place{kind: placeIndex, objReg: obj, idxRK: idx}

	case *ast.FieldExpr:
		obj := b.compileExpr(n.Object)
		return place{kind: placeField, objReg: obj, nameIdx: b.kStringIdx(n.Name)}

	case *ast.SliceExpr:
		obj := b.compileExpr(n.Object)
		lo := b.compileSliceBound(n.Lo)
		hi := b.compileSliceBound(n.Hi)
		return place{kind: placeSlice, objReg: obj, loRK: lo, hiRK: hi}
	}
	b.d.fail(b.errf(spanOf(target), "invalid assignment target %T", target))
	return place{kind: placeLocal, reg: b.newTemp()}
}

// placeGet reads the place's current value. For a local, that is simply
// its own register (no copy) so in-place mutation (Inc/Dec) affects the
// variable itself; every other kind materializes into a fresh temp.
func (b *builder) placeGet(p place) int {
	switch p.kind {
	case placeLocal:
		return p.reg
	case placeUpvalue:
		r := b.newTemp()
		b.emit(vm.OpGetUpval, r)
		b.emitWord(uint16(p.upvalIdx))
		return r
	case placeGlobal:
		r := b.newTemp()
		b.emit(vm.OpGetGlobal, r)
		b.emitWord(p.nameIdx)
		return r
	case placeIndex:
		r := b.newTemp()
		b.emit(vm.OpIndex, r)
		b.emitWord(b.regRK(p.objReg))
		b.emitWord(p.idxRK)
		return r
	case placeField:
		r := b.newTemp()
		b.emit(vm.OpField, r)
		b.emitWord(b.regRK(p.objReg))
		b.emitWord(p.nameIdx)
		return r
	case placeSlice:
		r := b.newTemp()
		b.emit(vm.OpSlice, r)
		b.emitWord(b.regRK(p.objReg))
		b.emitWord(p.loRK)
		b.emitWord(p.hiRK)
		return r
	}
	return b.newTemp()
}

// placeSet writes valRK into the place. SetUpval/SetGlobal/NewGlobal all
// take their value via a bare register operand (not RK), per
// vm/step.go's `ip.getReg(t, act, rd)` decoding, so those branches
// materialize valRK into a register first.
func (b *builder) placeSet(p place, valRK uint16) {
	switch p.kind {
	case placeLocal:
		b.emit(vm.OpMove, p.reg)
		b.emitWord(valRK)
	case placeUpvalue:
		vr := b.toReg(valRK)
		b.emit(vm.OpSetUpval, vr)
		b.emitWord(uint16(p.upvalIdx))
	case placeGlobal:
		vr := b.toReg(valRK)
		b.emit(vm.OpSetGlobal, vr)
		b.emitWord(p.nameIdx)
	case placeIndex:
		b.emit(vm.OpIndexAssign, p.objReg)
		b.emitWord(p.idxRK)
		b.emitWord(valRK)
	case placeField:
		b.emit(vm.OpFieldAssign, p.objReg)
		b.emitWord(p.nameIdx)
		b.emitWord(valRK)
	case placeSlice:
		b.emit(vm.OpSliceAssign, p.objReg)
		b.emitWord(p.loRK)
		b.emitWord(p.hiRK)
		b.emitWord(valRK)
	}
}

// placeDeclare is placeSet's counterpart for a `local`/`global` VarDecl's
// very first binding: a fresh global must use NewGlobal (declare) rather
// than SetGlobal (assign to an existing one), matching the asymmetry
// step.go's OpNewGlobal/OpSetGlobal handlers enforce at run time.
func (b *builder) placeDeclare(p place, valRK uint16) {
	if p.kind == placeGlobal {
		vr := b.toReg(valRK)
		b.emit(vm.OpNewGlobal, vr)
		b.emitWord(p.nameIdx)
		return
	}
	b.placeSet(p, valRK)
}

// compileAssign resolves every target's place first, then for each target
// in order evaluates its value (null once the values run out), applies
// the reflexive operator if there is one, and writes it, so a later value
// is evaluated after the earlier targets have been written. It does not
// run the general left-to-right conflict-detecting algorithm.
func (b *builder) compileAssign(e *ast.AssignExpr) int {
	places := make([]place, len(e.Targets))
	for i, t := range e.Targets {
		places[i] = b.resolvePlace(t)
	}

	result := -1
	for i, p := range places {
		var valReg int
		if i < len(e.Values) {
			valReg = b.compileExpr(e.Values[i])
		} else {
			valReg = b.newTemp()
			b.emit(vm.OpLoadNull, valReg)
		}

		if e.Op != "" {
			cur := b.placeGet(p)
			valReg = b.compileBinOpRegs(e.Op, cur, valReg)
		}

		b.placeSet(p, b.regRK(valReg))
		if i == 0 {
			result = valReg
		}
	}
	return result
}

// compileBinOpRegs emits a binary op (or concatenation) between two
// already-materialized registers, used by reflexive assignment (`+=`
// etc.) where both operands are already in registers rather than
// arbitrary sub-expressions.
func (b *builder) compileBinOpRegs(op ast.BinaryOp, lReg, rReg int) int {
	if op == ast.OpCat {
		first := b.newTemps(2)
		b.compileIntoReg(first, lReg)
		b.compileIntoReg(first+1, rReg)
		b.emit(vm.OpCat, first)
		b.emitWord(uint16(first))
		b.emitWord(2)
		return first
	}
	if opcode, ok := arithOpcodes[op]; ok {
		r := b.newTemp()
		b.emit(opcode, r)
		b.emitWord(b.regRK(lReg))
		b.emitWord(b.regRK(rReg))
		return r
	}
	b.d.fail(b.errf(source.Span{}, "unsupported reflexive operator %q", op))
	return b.newTemp()
}

func (b *builder) compileIntoReg(dst, src int) {
	if dst == src {
		return
	}
	b.emit(vm.OpMove, dst)
	b.emitWord(b.regRK(src))
}
