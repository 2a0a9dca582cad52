// Package compiler walks a semantically-resolved *ast.Program (locals,
// upvalues and globals already classified by package sema) and emits the
// register-machine bytecode package vm executes: one *value.Funcdef per
// function body, nested depth-first the way the teacher's backend package
// emits one *FuncPrototype per Plaid function literal.
//
// The heavy lifting sema already did - name resolution, constant folding,
// scope/import desugaring - means this package's job is narrower than
// the teacher's: temporary-register allocation above the fixed local range,
// instruction emission, jump patching, switch-table and exception-handler
// construction, and the multi-catch-clause dispatch sema's own doc comment
// (sema/pass.go's walkTryStmt) explicitly leaves to us.
package compiler

import (
	"fmt"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/feedback"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
)

// Caps mirror the widths the word encoding in package vm can express: a
// register index is packed into a byte (vm.LeadWord), so a function's
// live register count - locals plus every temporary ever pushed above
// them - cannot exceed 256. The remaining caps are generous but finite so
// a runaway program is reported as a compile error rather than silently
// truncated at emission time.
const (
	maxRegisters  = 256
	maxConstants  = 1 << 15 // one bit of the constant-pool index is ConstFlag
	maxInnerFuncs = 1 << 16
	maxSwitchTables = 1 << 16
)

// codegenErr mirrors parser.parseErr/sema's semaErr: a feedback.Message
// that also satisfies error, so every pipeline stage reports failures the
// same way.
type codegenErr struct{ msg feedback.Message }

func (e codegenErr) Error() string             { return e.msg.Make(false) }
func (e codegenErr) Message() feedback.Message { return e.msg }

func errAt(file *source.File, span source.Span, format string, args ...interface{}) error {
	return codegenErr{feedback.Error{
		Classification: feedback.CodegenError,
		File:           file,
		What: feedback.Selection{
			Description: fmt.Sprintf(format, args...),
			Span:        span,
		},
	}}
}

// loopCtx tracks the jump patch lists and exception-handler depth a
// break/continue inside a loop body needs, grounded on the teacher's
// Emitter.pushLoopScope/popLoopScope (backend/compiler.go) generalized
// with an ehDepth so a break/continue/return reaching out through an
// enclosing try emits exactly the right number of Unwind frames first
// (spec.md §4.E "bracketed, and on exit emits code to unwind any
// protections entered since").
type loopCtx struct {
	breakJumps    []int
	continueJumps []int
	ehDepthAtEntry int
}

// builder accumulates one function body's emitted code. It chains to a
// parent builder while compiling a nested function literal, mirroring the
// teacher's assembly.parent chain for closures.
type builder struct {
	d      *driver
	parent *builder
	fd     *value.Funcdef
	fn     *ast.FuncLiteral // nil for the top-level program

	tempBase int // first register above every local this function declares
	top      int // current temp-stack height, relative to tempBase
	maxTop   int

	// locals is sema's flat, walk-ordered record of every local this
	// function declares (params first, then one entry per declareLocal
	// call - VarDecl/FuncDecl/ClassDecl/NamespaceDecl locals, foreach loop
	// variables, catch bindings - in the exact order sema's pass walked
	// them). VarDecl/FuncDecl/ClassDecl/NamespaceDecl don't carry their
	// own Index the way IdentExpr does, so nextLocalNamed recovers the
	// register sema assigned by scanning forward from localCursor; other
	// declareLocal call sites (foreach, catch) are compiled against their
	// own compiler-allocated compVars registers instead and are simply
	// skipped over here, matching their walk-order position.
	locals      []*ast.LocalRecord
	localCursor int

	constIdx map[value.Value]int
	ehDepth  int // number of currently-installed (PushCatch/PushFinally) frames

	loops  []*loopCtx
	breaks []*breakTarget

	// compVars shadows comprehension loop-variable names onto the
	// registers the compiler allocates for them (sema declares these names
	// too but records no register on the Comprehension node); consulted by compileExpr's
	// IdentExpr case before falling back to sema's Ref/Index resolution.
	compVars []map[string]int
}

func (b *builder) pushCompScope(m map[string]int) { b.compVars = append(b.compVars, m) }
func (b *builder) popCompScope()                  { b.compVars = b.compVars[:len(b.compVars)-1] }

func (b *builder) lookupCompVar(name string) (int, bool) {
	for i := len(b.compVars) - 1; i >= 0; i-- {
		if r, ok := b.compVars[i][name]; ok {
			return r, true
		}
	}
	return 0, false
}

func newBuilder(d *driver, parent *builder, fn *ast.FuncLiteral, locals []*ast.LocalRecord) *builder {
	return &builder{
		d:        d,
		parent:   parent,
		fd:       &value.Funcdef{},
		fn:       fn,
		tempBase: len(locals),
		locals:   locals,
		constIdx: make(map[value.Value]int),
	}
}

// nextLocalNamed recovers the register sema assigned to the local this
// VarDecl/FuncDecl/ClassDecl/NamespaceDecl declares, scanning forward from
// the last consumed position (see the locals field comment).
func (b *builder) nextLocalNamed(name string) int {
	for ; b.localCursor < len(b.locals); b.localCursor++ {
		if b.locals[b.localCursor].Name == name {
			reg := b.locals[b.localCursor].Register
			b.localCursor++
			return reg
		}
	}
	b.d.fail(b.errf(source.Span{}, "internal: no local record found for %q", name))
	return b.newTemp()
}

func (b *builder) pc() int { return len(b.fd.Code) }

func (b *builder) emitWord(w uint16) int {
	b.fd.Code = append(b.fd.Code, w)
	return len(b.fd.Code) - 1
}

func (b *builder) emit(op vm.Opcode, rd int) int {
	return b.emitWord(vm.LeadWord(op, rd))
}

// emitJumpInstr emits op/rd followed by a zero jump-offset word,
// returning the index of that operand word for later patching via
// patchJump.
func (b *builder) emitJumpInstr(op vm.Opcode, rd int) int {
	b.emit(op, rd)
	return b.emitWord(0)
}

func (b *builder) patchJump(wordIdx int) { b.patchJumpTo(wordIdx, b.pc()) }

func (b *builder) patchJumpTo(wordIdx int, target int) {
	offset := target - (wordIdx + 1)
	b.fd.Code[wordIdx] = vm.JumpWord(offset)
}

func (b *builder) patchAll(list []int) {
	for _, idx := range list {
		b.patchJump(idx)
	}
}

// newTemp reserves one register above the local range, bumping the
// high-water mark used for the Funcdef's final StackSize.
func (b *builder) newTemp() int {
	r := b.tempBase + b.top
	b.top++
	if b.top > b.maxTop {
		b.maxTop = b.top
	}
	return r
}

// newTemps reserves n contiguous registers, as every multi-register
// opcode (Call's argument run, For's index/limit/step triple,
// Foreach's cursor/variables) requires.
func (b *builder) newTemps(n int) int {
	first := b.tempBase + b.top
	for i := 0; i < n; i++ {
		b.newTemp()
	}
	return first
}

// mark/release bracket a lexical block's temporaries so sibling blocks
// (two arms of an if, successive loop iterations' bodies) reuse the same
// register range instead of growing StackSize unboundedly, the same
// purpose the teacher's assembly.stackPtr save/restore serves around
// compileIfStmt/compileWhileStmt.
func (b *builder) mark() int { return b.top }
func (b *builder) release(mark int) { b.top = mark }

// constant deduplicates by value equality (float bit-equality and string
// interning both fall out of Value's own comparability), appending a new
// pool entry only the first time a given value is needed.
func (b *builder) constant(v value.Value) (int, error) {
	if idx, ok := b.constIdx[v]; ok {
		return idx, nil
	}
	if len(b.fd.Constants) >= maxConstants {
		return 0, b.errf(source.Span{}, "function has too many distinct constants")
	}
	idx := len(b.fd.Constants)
	b.fd.Constants = append(b.fd.Constants, v)
	b.constIdx[v] = idx
	return idx, nil
}

func (b *builder) kInt(n int64) uint16 {
	idx, err := b.constant(value.Int(n))
	if err != nil {
		b.d.fail(err)
	}
	return vm.RKWord(idx, true)
}

func (b *builder) kString(s string) uint16 {
	idx, err := b.constant(value.StringVal(value.NewString(b.d.vm, s)))
	if err != nil {
		b.d.fail(err)
	}
	return vm.RKWord(idx, true)
}

// kStringIdx is used where an operand word is a bare constant index (not
// an RK word) - the Method/Field/GetGlobal/... name operands, per
// step.go/calls.go/data.go's `int(ip.nextWord(...))` decoding.
func (b *builder) kStringIdx(s string) uint16 {
	idx, err := b.constant(value.StringVal(value.NewString(b.d.vm, s)))
	if err != nil {
		b.d.fail(err)
	}
	return uint16(idx)
}

func (b *builder) regRK(r int) uint16 { return vm.RKWord(r, false) }

func (b *builder) errf(span source.Span, format string, args ...interface{}) error {
	return errAt(b.d.file, span, format, args...)
}

func (b *builder) checkRegisterCap(span source.Span) {
	if b.tempBase+b.maxTop > maxRegisters {
		b.d.fail(b.errf(span, "function uses more than %d registers", maxRegisters))
	}
}

func (b *builder) pushLoop() *loopCtx {
	lc := &loopCtx{ehDepthAtEntry: b.ehDepth}
	b.loops = append(b.loops, lc)
	b.breaks = append(b.breaks, &breakTarget{jumps: &lc.breakJumps, ehDepthAtEntry: b.ehDepth})
	return lc
}

func (b *builder) popLoop() {
	b.loops = b.loops[:len(b.loops)-1]
	b.breaks = b.breaks[:len(b.breaks)-1]
}

func (b *builder) currentLoop() *loopCtx {
	if len(b.loops) == 0 {
		return nil
	}
	return b.loops[len(b.loops)-1]
}

// breakTarget is the nearest statement a `break` can target: a loop or a
// switch. continue, unlike break, always targets the nearest LOOP (it
// consults b.loops directly, skipping over any switch frames), matching
// the common "break exits switch, continue reaches past it" semantics.
type breakTarget struct {
	jumps          *[]int
	ehDepthAtEntry int
}

func (b *builder) pushBreakTarget() *breakTarget {
	bt := &breakTarget{ehDepthAtEntry: b.ehDepth, jumps: &[]int{}}
	b.breaks = append(b.breaks, bt)
	return bt
}

func (b *builder) popBreakTarget() {
	b.breaks = b.breaks[:len(b.breaks)-1]
}

func (b *builder) currentBreakTarget() *breakTarget {
	if len(b.breaks) == 0 {
		return nil
	}
	return b.breaks[len(b.breaks)-1]
}

// unwindTo emits however many Unwind instructions are needed to drop the
// exception-handler frames installed since a loop (or function) was
// entered, so a break/continue/return leaving a protected region never
// leaves a stale catch/finally frame pointing at code that is no longer
// lexically "inside" it.
func (b *builder) unwindTo(depth int) {
	if b.ehDepth > depth {
		b.emit(vm.OpUnwind, 0)
		b.emitWord(uint16(b.ehDepth - depth))
	}
}
