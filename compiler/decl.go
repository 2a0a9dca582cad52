package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/vm"
)

// applyDecorators rewrites `@a @b decl` into `a(b(decl))`, per the
// parser's parseDecoratedDecl doc comment: decorators are parsed
// top-to-bottom, so the one written closest to the declaration (last in
// the slice) wraps the raw value first, and every decorator above it
// wraps that result in turn. Neither sema nor the parser actually
// performs this rewrite, leaving it here alongside the other
// un-desugared constructs (multi-catch dispatch) the compiler alone
// knows how to expand.
func (b *builder) applyDecorators(decorators []*ast.Decorator, valueReg int) int {
	for i := len(decorators) - 1; i >= 0; i-- {
		mark := b.mark()
		rd := b.newTemp()
		b.compileInto(rd, decorators[i].Target)
		arg := b.newTemp()
		b.compileIntoReg(arg, valueReg)
		b.emit(vm.OpCall, rd)
		b.emitWord(uint16(1))
		b.emitWord(uint16(int16(1)))
		b.release(mark)
		valueReg = rd
	}
	return valueReg
}

// compileVarDecl binds a local or global name to its (possibly absent,
// possibly decorated) initializer. A local's register was already
// reserved by sema's declareLocal walk (see builder.locals); a global
// uses NewGlobal for this, its declaring, occurrence and plain SetGlobal
// everywhere else (placeDeclare's distinction).
func (b *builder) compileVarDecl(n *ast.VarDecl) {
	var valReg int
	if n.Value != nil {
		valReg = b.compileExpr(n.Value)
	} else {
		valReg = b.newTemp()
		b.emit(vm.OpLoadNull, valReg)
	}
	valReg = b.applyDecorators(n.Decorators, valReg)

	if n.Protection == ast.ProtLocal {
		reg := b.nextLocalNamed(n.Name)
		b.emit(vm.OpMove, reg)
		b.emitWord(b.regRK(valReg))
		return
	}
	p := place{kind: placeGlobal, nameIdx: b.kStringIdx(n.Name)}
	b.placeDeclare(p, b.regRK(valReg))
}

func (b *builder) compileFuncDecl(n *ast.FuncDecl) {
	valReg := b.compileClosure(n.Func, nil)
	valReg = b.applyDecorators(n.Decorators, valReg)

	if n.Protection == ast.ProtLocal {
		reg := b.nextLocalNamed(n.Name)
		b.emit(vm.OpMove, reg)
		b.emitWord(b.regRK(valReg))
		return
	}
	p := place{kind: placeGlobal, nameIdx: b.kStringIdx(n.Name)}
	b.placeDeclare(p, b.regRK(valReg))
}

func (b *builder) compileClassDecl(n *ast.ClassDecl) {
	valReg := b.compileClassBody(n.Name, n.Bases, n.Fields, n.Methods)
	valReg = b.applyDecorators(n.Decorators, valReg)

	if n.Protection == ast.ProtLocal {
		reg := b.nextLocalNamed(n.Name)
		b.emit(vm.OpMove, reg)
		b.emitWord(b.regRK(valReg))
		return
	}
	p := place{kind: placeGlobal, nameIdx: b.kStringIdx(n.Name)}
	b.placeDeclare(p, b.regRK(valReg))
}

func (b *builder) compileNamespaceDecl(n *ast.NamespaceDecl) {
	valReg := b.compileNamespaceBody(n.Name, n.Parent, n.Fields)
	valReg = b.applyDecorators(n.Decorators, valReg)

	if n.Protection == ast.ProtLocal {
		reg := b.nextLocalNamed(n.Name)
		b.emit(vm.OpMove, reg)
		b.emitWord(b.regRK(valReg))
		return
	}
	p := place{kind: placeGlobal, nameIdx: b.kStringIdx(n.Name)}
	b.placeDeclare(p, b.regRK(valReg))
}
