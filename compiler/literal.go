package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

// compileArrayLiteral allocates an Array of the right capacity then fills
// it via SetArray runs of contiguous registers, matching OpSetArray's
// firstReg/count operand shape (vm/data.go), batching consecutive
// non-spread items into as few SetArray instructions as the register
// budget allows rather than one Append per element.
func (b *builder) compileArrayLiteral(e *ast.ArrayLiteral) int {
	r := b.newTemp()
	b.emit(vm.OpNewArray, r)
	b.emitWord(uint16(len(e.Items)))

	const batch = 32
	for i := 0; i < len(e.Items); i += batch {
		end := i + batch
		if end > len(e.Items) {
			end = len(e.Items)
		}
		mark := b.mark()
		first := b.newTemps(end - i)
		for j := i; j < end; j++ {
			b.compileInto(first+(j-i), e.Items[j])
		}
		b.emit(vm.OpSetArray, r)
		b.emitWord(uint16(first))
		b.emitWord(uint16(end - i))
		b.release(mark)
	}
	return r
}

func (b *builder) compileTableLiteral(e *ast.TableLiteral) int {
	r := b.newTemp()
	b.emit(vm.OpNewTable, r)
	for _, entry := range e.Entries {
		mark := b.mark()
		k := b.compileRK(entry.Key)
		v := b.compileRK(entry.Value)
		b.emit(vm.OpIndexAssign, r)
		b.emitWord(k)
		b.emitWord(v)
		b.release(mark)
	}
	return r
}

// compileComprehension desugars into an implicit loop over Sources
// building an Array (or Table, when IsTable), grounded on spec.md §4.C's
// description of comprehensions as sugar for foreach + append/index-assign.
// A chained Nested comprehension compiles as a loop nested inside the
// outer one, and Cond (if present) guards the body with a plain IsTrue
// skip rather than a second nested scope.
func (b *builder) compileComprehension(e *ast.Comprehension) int {
	result := b.newTemp()
	if e.IsTable {
		b.emit(vm.OpNewTable, result)
	} else {
		b.emit(vm.OpNewArray, result)
		b.emitWord(0)
	}
	b.compileComprehensionLevel(e, result)
	return result
}

func (b *builder) compileComprehensionLevel(e *ast.Comprehension, result int) {
	mark := b.mark()
	b.compileForeachLoop(e.Names, e.Sources[0], func(vars []int) {
		scope := make(map[string]int, len(e.Names))
		for i, name := range e.Names {
			scope[name] = vars[i]
		}
		b.pushCompScope(scope)
		if e.Cond != nil {
			skip := b.emitIsTrueFalseJump(e.Cond)
			b.compileComprehensionBody(e, result)
			b.patchJump(skip)
		} else {
			b.compileComprehensionBody(e, result)
		}
		b.popCompScope()
	})
	b.release(mark)
}

// compileForeachLoop emits the Foreach/ForeachLoop instruction pair over a
// single container expression (this VM's Foreach opcode iterates Array
// and String containers directly, see vm/control.go's execForeach; there
// is no generic multi-value iterator protocol to desugar against), laying
// out container/cursor/vars as one contiguous register run per the
// opcode's rd=container, vars-follow-cursor encoding.
func (b *builder) compileForeachLoop(names []string, source ast.Expr, body func(vars []int)) {
	base := b.newTemps(2 + len(names))
	containerReg := base
	cursorReg := base + 1
	_ = cursorReg
	vars := make([]int, len(names))
	for i := range names {
		vars[i] = base + 2 + i
	}
	b.compileInto(containerReg, source)

	b.emit(vm.OpForeach, containerReg)
	b.emitWord(uint16(len(names)))
	entryJump := b.emitWord(0)

	bodyStart := b.pc()
	body(vars)

	b.emit(vm.OpForeachLoop, containerReg)
	b.emitWord(uint16(len(names)))
	loopJump := b.emitWord(0)
	b.patchJumpTo(loopJump, bodyStart)
	b.patchJump(entryJump)
}

func (b *builder) compileComprehensionBody(e *ast.Comprehension, result int) {
	if e.Nested != nil {
		b.compileComprehensionLevel(e.Nested, result)
		return
	}
	if e.IsTable {
		mark := b.mark()
		k := b.compileRK(e.KeyExpr)
		v := b.compileRK(e.ValueExpr)
		b.emit(vm.OpIndexAssign, result)
		b.emitWord(k)
		b.emitWord(v)
		b.release(mark)
		return
	}
	mark := b.mark()
	v := b.compileRK(e.ValueExpr)
	b.emit(vm.OpAppend, result)
	b.emitWord(v)
	b.release(mark)
}

// compileClosure compiles fn as a nested Funcdef and emits Closure/
// ClosureWithEnv to instantiate it in a fresh register, mirroring the
// teacher's backend nested-FuncPrototype emission generalized to Croc's
// upvalue descriptor table (ast.UpvalueRecord, populated by sema).
func (b *builder) compileClosure(fn *ast.FuncLiteral, env *envOperand) int {
	idx := b.compileFuncLiteral(fn)
	r := b.newTemp()
	if env != nil {
		b.emit(vm.OpClosureWithEnv, r)
		b.emitWord(uint16(idx))
		b.emitWord(env.rk)
	} else {
		b.emit(vm.OpClosure, r)
		b.emitWord(uint16(idx))
	}
	return r
}

// envOperand carries an explicit Namespace RK operand for a
// ClosureWithEnv emission (namespace-member function literals).
type envOperand struct{ rk uint16 }

// compileFuncLiteral compiles fn's body into a new nested builder and
// appends the resulting Funcdef to the current function's Inner table,
// returning its index.
func (b *builder) compileFuncLiteral(fn *ast.FuncLiteral) int {
	nb := newBuilder(b.d, b, fn, fn.Locals)
	nb.localCursor = len(fn.Params) // params already occupy locals[0:NumParams]
	nb.fd.Name = nil
	if fn.Name != "" {
		nb.fd.Name = value.NewString(b.d.vm, fn.Name)
	}
	nb.fd.File = b.fd.File
	nb.fd.Location = fn.StartPos
	nb.fd.NumParams = len(fn.Params)
	nb.fd.IsVararg = fn.IsVararg
	nb.fd.ParamMasks = make([]value.ParamTypeMask, len(fn.Params))

	nb.emit(vm.OpCheckParams, 0)
	nb.compileBlockStmts(fn.Body.Statements)
	nb.finalizeReturn()
	nb.finalize(fn.Locals, fn.Upvalues)

	idx := len(b.fd.Inner)
	b.fd.Inner = append(b.fd.Inner, nb.fd)
	return idx
}

// compileClassBody emits a Class instruction, then one AddMember per
// field/hidden-field/method, then FreezeClass, per spec.md §4.A's
// "declare, populate, freeze" class construction sequence.
func (b *builder) compileClassBody(name string, bases []ast.Expr, fields []*ast.FieldMember, methods []*ast.FuncDecl) int {
	r := b.newTemp()
	nameIdx := b.kStringIdx(name)
	parentRK := uint16(vm.RKWord(vm.NoneReg, false))
	if len(bases) > 0 {
		parentRK = b.compileRK(bases[0])
	}
	b.emit(vm.OpClass, r)
	b.emitWord(nameIdx)
	b.emitWord(parentRK)

	for _, f := range fields {
		mark := b.mark()
		kind := vm.MemberField
		if f.Hidden {
			kind = vm.MemberHidden
		}
		var valRK uint16
		if f.Value != nil {
			valRK = b.compileRK(f.Value)
		} else {
			valRK = b.literalRK(&ast.NullLiteral{})
		}
		b.emit(vm.OpAddMember, r)
		b.emitWord(uint16(kind))
		b.emitWord(b.kStringIdx(f.Name))
		b.emitWord(valRK)
		b.emitWord(0)
		b.release(mark)
	}

	for _, m := range methods {
		mark := b.mark()
		fnReg := b.compileClosure(m.Func, nil)
		b.emit(vm.OpAddMember, r)
		b.emitWord(uint16(vm.MemberMethod))
		b.emitWord(b.kStringIdx(m.Name))
		b.emitWord(b.regRK(fnReg))
		b.emitWord(0)
		b.release(mark)
	}

	b.emit(vm.OpFreezeClass, r)
	return r
}

func (b *builder) compileNamespaceBody(name string, parent ast.Expr, fields []*ast.FieldMember) int {
	r := b.newTemp()
	nameIdx := b.kStringIdx(name)
	if parent != nil {
		parentRK := b.compileRK(parent)
		b.emit(vm.OpNamespace, r)
		b.emitWord(nameIdx)
		b.emitWord(parentRK)
	} else {
		b.emit(vm.OpNamespaceNP, r)
		b.emitWord(nameIdx)
	}

	for _, f := range fields {
		mark := b.mark()
		var valReg int
		if fl, ok := f.Value.(*ast.FuncLiteral); ok {
			valReg = b.compileClosure(fl, &envOperand{rk: b.regRK(r)})
		} else if f.Value != nil {
			valReg = b.compileExpr(f.Value)
		} else {
			valReg = b.newTemp()
			b.emit(vm.OpLoadNull, valReg)
		}
		b.emit(vm.OpFieldAssign, r)
		b.emitWord(b.kStringIdx(f.Name))
		b.emitWord(b.regRK(valReg))
		b.release(mark)
	}
	return r
}

// compileCall compiles a CallExpr (plain or method-dispatch form) and
// returns the register its (first) result lands in, requesting nres
// results (-1 keeps every result, mirroring `return f()` tail expansion).
func (b *builder) compileCall(e *ast.CallExpr, nres int) int {
	rd := b.newTemp()
	b.compileInto(rd, e.Callee)

	argsMark := b.mark()
	args := b.newTemps(len(e.Args))
	for i, a := range e.Args {
		b.compileInto(args+i, a)
	}

	op := vm.OpCall
	if e.Method != "" {
		op = vm.OpMethod
	}
	b.emit(op, rd)
	if e.Method != "" {
		b.emitWord(b.kStringIdx(e.Method))
	}
	b.emitWord(uint16(len(e.Args)))
	b.emitWord(uint16(int16(nres)))
	// The args run is dead once Call/Method executes - its registers land
	// in the VM's call frame, not this one - so free them for reuse. rd
	// stays allocated since it now holds the (first) result.
	b.release(argsMark)
	return rd
}

// compileYieldExpr compiles a `yield` used as an expression, requesting a
// single resumed value back (nres=1 of Yield's own result-count operand),
// landing in the same contiguous run the pre-yield values were written to.
func (b *builder) compileYieldExpr(e *ast.YieldExpr) int {
	rd := b.newTemps(len(e.Values))
	for i, v := range e.Values {
		b.compileInto(rd+i, v)
	}
	b.emit(vm.OpYield, rd)
	b.emitWord(uint16(len(e.Values)))
	b.emitWord(uint16(int16(1)))
	return rd
}
