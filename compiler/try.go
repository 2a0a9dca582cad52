package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

// compileTry lowers a TryStmt into PushCatch/PushFinally-protected regions
// per vm/exceptions.go's unwind semantics. sema leaves multiple catch
// clauses un-collapsed (sema/pass.go's walkTryStmt), so this is where the
// if/else dispatch over the caught value's class actually gets emitted.
//
// Three shapes, depending on what's present:
//   - catch only:    PushCatch; body; PopEH; Jmp CONTINUE; dispatch; CONTINUE:
//   - finally only:  PushFinally; body; PopEH; <falls into finally body>; EndFinal
//   - catch+finally: PushFinally pushed first, PushCatch second (so unwind
//     finds the catch frame first); on normal completion only the catch
//     frame is popped before jumping into the dispatch's shared
//     finally-entry point, since the finally frame is still needed to
//     catch a rethrow from an unmatched clause.
func (b *builder) compileTry(n *ast.TryStmt) {
	hasCatch := len(n.Catches) > 0
	hasFinally := n.Finally != nil

	switch {
	case hasCatch && hasFinally:
		b.compileTryCatchFinally(n)
	case hasCatch:
		b.compileTryCatch(n)
	case hasFinally:
		b.compileTryFinally(n)
	}
}

func (b *builder) compileTryCatch(n *ast.TryStmt) {
	mark := b.mark()
	slotReg := b.newTemp()
	pushCatch := b.emitJumpInstr(vm.OpPushCatch, slotReg)
	b.ehDepth++

	b.compileBlock(n.Body)
	b.emit(vm.OpPopEH, 0)
	b.ehDepth--
	contJump := b.emitJumpInstr(vm.OpJmp, 0)

	b.patchJump(pushCatch)
	ends := b.compileCatchDispatch(n.Catches, slotReg)
	b.patchAll(ends)
	b.patchJump(contJump)
	b.release(mark)
}

func (b *builder) compileTryFinally(n *ast.TryStmt) {
	mark := b.mark()
	pushFinally := b.emitJumpInstr(vm.OpPushFinally, 0)
	b.ehDepth++

	b.compileBlock(n.Body)
	b.emit(vm.OpPopEH, 0)
	b.ehDepth--

	finallyPC := b.pc()
	b.patchJumpTo(pushFinally, finallyPC)
	b.compileBlockStmts(n.Finally.Statements)
	b.emit(vm.OpEndFinal, 0)
	b.release(mark)
}

func (b *builder) compileTryCatchFinally(n *ast.TryStmt) {
	mark := b.mark()
	pushFinally := b.emitJumpInstr(vm.OpPushFinally, 0)
	b.ehDepth++

	slotReg := b.newTemp()
	pushCatch := b.emitJumpInstr(vm.OpPushCatch, slotReg)
	b.ehDepth++

	b.compileBlock(n.Body)
	b.emit(vm.OpPopEH, 0) // pops the catch frame only; finally's frame is
	b.ehDepth--           // still live for a rethrow from an unmatched clause
	finRunJump := b.emitJumpInstr(vm.OpJmp, 0)

	b.patchJump(pushCatch)
	ends := b.compileCatchDispatch(n.Catches, slotReg)

	finallyRunEntry := b.pc()
	b.patchJump(finRunJump)
	b.patchAll(ends)

	b.emit(vm.OpPopEH, 0) // un-registers finally; the direct exceptional
	b.ehDepth--           // unwind path skips this, unwind() already did it
	_ = finallyRunEntry

	finallyPC := b.pc()
	b.patchJumpTo(pushFinally, finallyPC)
	b.compileBlockStmts(n.Finally.Statements)
	b.emit(vm.OpEndFinal, 0)
	b.release(mark)
}

// compileCatchDispatch emits the if/else chain testing the caught value
// (held in slotReg) against each clause's declared types in turn, binding
// it to the clause's name via the same compVars shadow-scope mechanism
// comprehension loop variables use (sema's walkTryStmt declares a local
// for c.Binding purely for scope bookkeeping, never exposing a register
// for it on the AST node). Returns the list of jump-operand word indices
// from each matched clause's end, for the caller to patch to wherever
// execution should continue after a clause runs. A clause whose type list
// is empty is a catch-all and always matches, without emitting any test.
// If no clause matches, the value is rethrown.
func (b *builder) compileCatchDispatch(catches []*ast.CatchClause, slotReg int) []int {
	var ends []int
	var nextClauseJumps []int

	for _, c := range catches {
		b.patchAll(nextClauseJumps)
		nextClauseJumps = nil

		if len(c.Types) > 0 {
			var matchedJumps []int
			for _, t := range c.Types {
				falseJump := b.emitInstanceOfTest(slotReg, t)
				matchedJumps = append(matchedJumps, b.emitJumpInstr(vm.OpJmp, 0))
				b.patchJump(falseJump)
			}
			nextClauseJumps = append(nextClauseJumps, b.emitJumpInstr(vm.OpJmp, 0))
			b.patchAll(matchedJumps)
		}

		b.pushCompScope(map[string]int{c.Binding: slotReg})
		b.compileBlockStmts(c.Body.Statements)
		b.popCompScope()
		ends = append(ends, b.emitJumpInstr(vm.OpJmp, 0))
	}

	b.patchAll(nextClauseJumps)
	b.emit(vm.OpThrow, 0)
	b.emitWord(b.regRK(slotReg))
	return ends
}

// emitInstanceOfTest calls the shared isInstanceOf native (driver.go) on
// (slotReg, t), reifies the result with IsTrue, and returns the index of
// the jump-operand word to patch to "this type didn't match."
func (b *builder) emitInstanceOfTest(slotReg int, t ast.Expr) int {
	mark := b.mark()
	fnReg := b.newTemp()
	b.emit(vm.OpMove, fnReg)
	b.emitWord(b.constFn(b.d.getIsInstanceOf()))

	args := b.newTemps(2)
	b.compileIntoReg(args, slotReg)
	typeReg := b.toReg(b.compileRK(t))
	b.compileIntoReg(args+1, typeReg)

	b.emit(vm.OpCall, fnReg)
	b.emitWord(uint16(2))
	b.emitWord(uint16(int16(1)))

	falseJump := b.emitIsTrueFalseJumpReg(fnReg)
	b.release(mark)
	return falseJump
}

func (b *builder) constFn(fn *value.Function) uint16 {
	idx, err := b.constant(value.FunctionVal(fn))
	b.checkConst(err)
	return vm.RKWord(idx, true)
}
