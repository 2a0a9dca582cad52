// Package sema walks a parsed *ast.Program and rewrites it into the form
// the compiler expects: default-protection inference, constant folding,
// import/scope-action lowering, and local/upvalue
// resolution recorded onto each ast.FuncLiteral, grounded on the
// teacher's frontend/scope.go (Scope/UpvalueRecord, registerUpvalue's
// walk-up-parent-chain resolution) and frontend/check.go's visitor shape,
// repurposed from Plaid's static type unification into Croc's dynamic
// desugaring pass per spec.md §4.D.
package sema

import "github.com/jarrettbillingsley/croc/ast"

// frame holds the register counter and annotation slices shared by every
// block scope within one function body (or the top-level program, which
// compiles as an implicit vararg function). A nested block does not get
// its own register range: Croc's register allocator (spec.md §4.E) hands
// out one slot per local for the lifetime of the whole frame, not the
// enclosing block, matching the teacher's `assembly.localRegs` being a
// single per-function table rather than per-block.
type frame struct {
	fn         *ast.FuncLiteral // nil for the top-level program frame
	nextReg    int
	locals     *[]*ast.LocalRecord
	upvalues   *[]*ast.UpvalueRecord
	upvalIndex map[string]int
}

func (f *frame) declareLocal(name string, isParam bool) *ast.LocalRecord {
	rec := &ast.LocalRecord{Name: name, IsParameter: isParam, Register: f.nextReg}
	f.nextReg++
	*f.locals = append(*f.locals, rec)
	return rec
}

// scope is one lexical block within a frame; blocks nest arbitrarily but
// share their enclosing frame's register counter.
type scope struct {
	parent *scope
	frame  *frame
	locals map[string]*ast.LocalRecord
}

func newFrameScope(parent *scope, fn *ast.FuncLiteral, locals *[]*ast.LocalRecord, upvalues *[]*ast.UpvalueRecord) *scope {
	return &scope{
		parent: parent,
		frame:  &frame{fn: fn, locals: locals, upvalues: upvalues, upvalIndex: make(map[string]int)},
		locals: make(map[string]*ast.LocalRecord),
	}
}

func (s *scope) subBlock() *scope {
	return &scope{parent: s, frame: s.frame, locals: make(map[string]*ast.LocalRecord)}
}

func (s *scope) declareLocal(name string, isParam bool) *ast.LocalRecord {
	rec := s.frame.declareLocal(name, isParam)
	s.locals[name] = rec
	return rec
}

// resolve classifies name as local (found within the current frame's
// block chain), upvalue (found in an enclosing frame, registering the
// capture chain along the way) or global (found nowhere), exactly the
// teacher's registerUpvalue walk generalized across block boundaries.
func (s *scope) resolve(name string) (ast.RefKind, int) {
	cur := s
	for cur != nil && cur.frame == s.frame {
		if rec, ok := cur.locals[name]; ok {
			return ast.RefLocal, rec.Register
		}
		cur = cur.parent
	}
	if cur == nil {
		return ast.RefGlobal, 0
	}
	return s.resolveUpvalue(cur, name)
}

// resolveUpvalue registers name as an upvalue of s.frame.fn, sourced
// either directly from a local in enclosingBlockScope's frame or
// transitively from a further-out upvalue.
func (s *scope) resolveUpvalue(enclosing *scope, name string) (ast.RefKind, int) {
	if idx, ok := s.frame.upvalIndex[name]; ok {
		return ast.RefUpvalue, idx
	}

	kind, index := enclosing.resolve(name)
	if kind == ast.RefGlobal {
		return ast.RefGlobal, 0
	}

	idx := len(*s.frame.upvalues)
	up := &ast.UpvalueRecord{Name: name, IsParentLocal: kind == ast.RefLocal, Index: index}
	*s.frame.upvalues = append(*s.frame.upvalues, up)
	s.frame.upvalIndex[name] = idx
	return ast.RefUpvalue, idx
}
