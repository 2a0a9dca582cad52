package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

// compileBlockStmts compiles a sequence of statements, following the same
// structural dispatch sema/pass.go's walkStmt/walkStmts uses, except it
// emits code instead of annotating/rewriting the AST.
func (b *builder) compileBlockStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.compileStmt(s)
	}
}

func (b *builder) compileBlock(blk *ast.Block) {
	mark := b.mark()
	b.compileBlockStmts(blk.Statements)
	b.release(mark)
}

func (b *builder) compileStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		b.compileVarDecl(n)
	case *ast.FuncDecl:
		b.compileFuncDecl(n)
	case *ast.ClassDecl:
		b.compileClassDecl(n)
	case *ast.NamespaceDecl:
		b.compileNamespaceDecl(n)
	case *ast.Block:
		b.compileBlock(n)
	case *ast.IfStmt:
		b.compileIf(n)
	case *ast.WhileStmt:
		b.compileWhile(n)
	case *ast.DoWhileStmt:
		b.compileDoWhile(n)
	case *ast.ForStmt:
		b.compileFor(n)
	case *ast.ForeachStmt:
		b.compileForeachStmt(n)
	case *ast.SwitchStmt:
		b.compileSwitch(n)
	case *ast.BreakStmt:
		b.compileBreak(n)
	case *ast.ContinueStmt:
		b.compileContinue(n)
	case *ast.ReturnStmt:
		b.compileReturnStmt(n)
	case *ast.YieldStmt:
		b.compileYieldStmt(n)
	case *ast.ThrowStmt:
		b.compileThrow(n)
	case *ast.TryStmt:
		b.compileTry(n)
	case *ast.ExprStmt:
		mark := b.mark()
		b.compileExpr(n.Value)
		b.release(mark)
	default:
		b.d.fail(b.errf(spanOf(s), "unsupported statement node %T", s))
	}
}

func (b *builder) compileIf(n *ast.IfStmt) {
	var endJumps []int
	falseJump := b.emitIsTrueFalseJump(n.IfClause.Cond)
	b.compileBlock(n.IfClause.Body)
	endJumps = append(endJumps, b.emitJumpInstr(vm.OpJmp, 0))

	for _, clause := range n.ElifClauses {
		b.patchJump(falseJump)
		falseJump = b.emitIsTrueFalseJump(clause.Cond)
		b.compileBlock(clause.Body)
		endJumps = append(endJumps, b.emitJumpInstr(vm.OpJmp, 0))
	}

	b.patchJump(falseJump)
	if n.ElseClause != nil {
		b.compileBlock(n.ElseClause.Body)
	}
	b.patchAll(endJumps)
}

func (b *builder) compileWhile(n *ast.WhileStmt) {
	lc := b.pushLoop()
	top := b.pc()
	falseJump := b.emitIsTrueFalseJump(n.Cond)
	b.compileBlock(n.Body)
	b.patchAll(lc.continueJumps)
	backJump := b.emitJumpInstr(vm.OpJmp, 0)
	b.patchJumpTo(backJump, top)
	b.patchJump(falseJump)
	b.patchAll(lc.breakJumps)
	b.popLoop()
}

func (b *builder) compileDoWhile(n *ast.DoWhileStmt) {
	lc := b.pushLoop()
	top := b.pc()
	b.compileBlock(n.Body)
	b.patchAll(lc.continueJumps)
	condFalse := b.emitIsTrueFalseJump(n.Cond)
	backJump := b.emitJumpInstr(vm.OpJmp, 0)
	b.patchJumpTo(backJump, top)
	b.patchJump(condFalse)
	b.patchAll(lc.breakJumps)
	b.popLoop()
}

// compileFor lowers the numeric for: Init is a bare assignment expression
// (not an implicit declaration, per sema/pass.go's walkForStmt leaving
// loop-variable resolution to ordinary scope lookup), so the hidden
// idx/limit/step register triple the For/ForLoop opcodes maintain must be
// copied back into whatever place Init's target resolved to at the top of
// every iteration, since ForLoop's back-jump lands exactly there.
func (b *builder) compileFor(n *ast.ForStmt) {
	mark := b.mark()
	assign, ok := n.Init.(*ast.AssignExpr)
	if !ok || len(assign.Targets) != 1 {
		b.d.fail(b.errf(spanOf(n), "for-loop initializer must be a single assignment"))
		return
	}

	base := b.newTemps(3)
	idxReg, hiReg, stepReg := base, base+1, base+2

	initPlace := b.resolvePlace(assign.Targets[0])
	b.compileInto(idxReg, assign.Values[0])
	b.compileInto(hiReg, n.Hi)
	if n.Step != nil {
		b.compileInto(stepReg, n.Step)
	} else {
		b.emit(vm.OpMove, stepReg)
		b.emitWord(b.kInt(1))
	}

	lc := b.pushLoop()
	entryJump := b.emitJumpInstr(vm.OpFor, base)

	bodyStart := b.pc()
	b.placeSet(initPlace, b.regRK(idxReg))
	b.compileBlock(n.Body)
	b.patchAll(lc.continueJumps)

	loopJump := b.emitJumpInstr(vm.OpForLoop, base)
	b.patchJumpTo(loopJump, bodyStart)
	b.patchJump(entryJump)
	b.patchAll(lc.breakJumps)
	b.popLoop()
	b.release(mark)
}

func (b *builder) compileForeachStmt(n *ast.ForeachStmt) {
	mark := b.mark()
	lc := b.pushLoop()
	b.compileForeachLoop(n.Names, n.Sources[0], func(vars []int) {
		scope := make(map[string]int, len(n.Names))
		for i, name := range n.Names {
			scope[name] = vars[i]
		}
		b.pushCompScope(scope)
		b.compileBlock(n.Body)
		b.patchAll(lc.continueJumps)
		b.popCompScope()
	})
	b.patchAll(lc.breakJumps)
	b.popLoop()
	b.release(mark)
}

func (b *builder) compileBreak(n *ast.BreakStmt) {
	bt := b.currentBreakTarget()
	if bt == nil {
		b.d.fail(b.errf(spanOf(n), "break outside of a loop or switch"))
		return
	}
	b.unwindTo(bt.ehDepthAtEntry)
	*bt.jumps = append(*bt.jumps, b.emitJumpInstr(vm.OpJmp, 0))
}

func (b *builder) compileContinue(n *ast.ContinueStmt) {
	lc := b.currentLoop()
	if lc == nil {
		b.d.fail(b.errf(spanOf(n), "continue outside of a loop"))
		return
	}
	b.unwindTo(lc.ehDepthAtEntry)
	lc.continueJumps = append(lc.continueJumps, b.emitJumpInstr(vm.OpJmp, 0))
}

func (b *builder) compileReturnStmt(n *ast.ReturnStmt) {
	b.unwindTo(0)
	if len(n.Values) == 1 {
		if call, ok := n.Values[0].(*ast.CallExpr); ok {
			rd := b.compileCall(call, -1)
			if b.ehDepth == 0 {
				// Outside any try, turn the call just emitted into its tail
				// form so the callee replaces this activation record.
				lead, op := b.pc()-3, vm.OpTailCall
				if call.Method != "" {
					lead, op = b.pc()-4, vm.OpTailMethod
				}
				b.fd.Code[lead] = vm.LeadWord(op, rd)
			}
			b.emit(vm.OpRet, rd)
			b.emitWord(uint16(int16(-1)))
			return
		}
	}
	mark := b.mark()
	rd := b.newTemps(len(n.Values))
	for i, v := range n.Values {
		b.compileInto(rd+i, v)
	}
	b.emit(vm.OpRet, rd)
	b.emitWord(uint16(int16(len(n.Values))))
	b.release(mark)
}

func (b *builder) compileYieldStmt(n *ast.YieldStmt) {
	mark := b.mark()
	rd := b.newTemps(len(n.Values))
	for i, v := range n.Values {
		b.compileInto(rd+i, v)
	}
	b.emit(vm.OpYield, rd)
	b.emitWord(uint16(len(n.Values)))
	b.emitWord(uint16(int16(0)))
	b.release(mark)
}

func (b *builder) compileThrow(n *ast.ThrowStmt) {
	mark := b.mark()
	v := b.compileRK(n.Value)
	b.emit(vm.OpThrow, 0)
	b.emitWord(v)
	b.release(mark)
}

// compileSwitch builds a SwitchTable mapping each case's literal value(s)
// to a PC, using SwitchCmp-equivalent dispatch (the Switch opcode itself
// performs the table lookup; vm/control.go's execSwitch falls through to
// Default/end-of-statement on no match). Range cases register every
// integer in the range as an individual table entry, the simplest correct
// encoding given SwitchTable has no native range-matching.
func (b *builder) compileSwitch(n *ast.SwitchStmt) {
	mark := b.mark()
	scrutRd := b.newTemp()
	b.compileInto(scrutRd, n.Cond)

	st := value.NewSwitchTable()
	tableIdx := len(b.fd.SwitchTables)
	b.fd.SwitchTables = append(b.fd.SwitchTables, st)

	b.emit(vm.OpSwitch, scrutRd)
	b.emitWord(uint16(tableIdx))

	bt := b.pushBreakTarget()
	var endJumps []int

	for _, c := range n.Cases {
		casePC := b.pc()
		for _, v := range c.Values {
			b.addSwitchCase(st, v, casePC)
		}
		b.compileBlockStmts(c.Body)
		endJumps = append(endJumps, b.emitJumpInstr(vm.OpJmp, 0))
	}

	if n.Default != nil {
		st.DefaultPC = b.pc()
		b.compileBlockStmts(n.Default)
	} else {
		st.DefaultPC = b.pc()
	}

	b.patchAll(endJumps)
	b.patchAll(*bt.jumps)
	b.popBreakTarget()
	b.release(mark)
}

// addSwitchCase registers one literal (or every integer in a RangeExpr)
// as a SwitchTable entry landing at pc.
func (b *builder) addSwitchCase(st *value.SwitchTable, v ast.Expr, pc int) {
	if rng, ok := v.(*ast.RangeExpr); ok {
		lo, lok := rng.Lo.(*ast.IntLiteral)
		hi, hok := rng.Hi.(*ast.IntLiteral)
		if !lok || !hok {
			b.d.fail(b.errf(spanOf(rng), "switch case range bounds must be integer literals"))
			return
		}
		for n := lo.Value; n <= hi.Value; n++ {
			st.AddCase(value.Int(n), pc)
		}
		return
	}
	cv, ok := b.literalValue(v)
	if !ok {
		b.d.fail(b.errf(spanOf(v), "switch case value must be a literal"))
		return
	}
	st.AddCase(cv, pc)
}

func (b *builder) literalValue(e ast.Expr) (value.Value, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return value.Int(n.Value), true
	case *ast.FloatLiteral:
		return value.Float(n.Value), true
	case *ast.StringLiteral:
		return value.StringVal(value.NewString(b.d.vm, n.Value)), true
	case *ast.BoolLiteral:
		return value.Bool(n.Value), true
	case *ast.NullLiteral:
		return value.Null(), true
	}
	return value.Value{}, false
}

// finalizeReturn emits the implicit `return` every function body falls
// into if control reaches its end without an explicit return, per
// spec.md §4.F.
func (b *builder) finalizeReturn() {
	b.emit(vm.OpRet, 0)
	b.emitWord(uint16(int16(0)))
}

// finalize populates the builder's Funcdef with its final stack size and
// local/upvalue debug tables, then validates the register budget.
func (b *builder) finalize(locals []*ast.LocalRecord, upvalues []*ast.UpvalueRecord) {
	b.fd.StackSize = b.tempBase + b.maxTop
	b.fd.Locals = make([]value.LocalDesc, len(locals))
	for i, l := range locals {
		b.fd.Locals[i] = value.LocalDesc{Name: l.Name, Register: l.Register, PCStart: 0, PCEnd: len(b.fd.Code)}
	}
	b.fd.Upvals = make([]value.UpvalDesc, len(upvalues))
	for i, u := range upvalues {
		b.fd.Upvals[i] = value.UpvalDesc{Name: u.Name, IsParentLocal: u.IsParentLocal, Index: u.Index}
	}
	b.checkRegisterCap(source.Span{})
}
