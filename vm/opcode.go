// Package vm implements Croc's register-based bytecode interpreter: opcode
// dispatch, the activation-record/exception-handler stack, the metamethod
// protocol, coroutine scheduling and the debug-hook contract (spec.md
// §4.G/§4.H), grounded on the teacher's backend/{opcodes,instructions,
// interpreter,stackFrame,functions,binary,disassembly}.go.
package vm

// Opcode identifies the operation encoded in the high byte of an
// instruction's leading word; the low byte of that word is the
// destination register RD (spec.md §6 "Bytecode format"). This is a
// superset of the teacher's backend/opcodes.go numbering scheme,
// extended to the full inventory spec.md §6 names plus a handful of
// implementation-detail opcodes (FreezeClass, LoadNull) that
// the spec's prose permits since it "does not prescribe a specific
// bytecode on-disk format."
type Opcode uint8

const (
	OpNop Opcode = iota

	// Data movement and constant loading. Move's source operand is a
	// register-or-constant word (spec.md §6 "the
	// high bit flags a constant-pool index"), so a single opcode serves
	// both "move register to register" and "load constant into
	// register."
	OpMove
	OpLoadNull

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	// Bitwise.
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUShr
	OpCom

	// Comparisons. Cmp/SwitchCmp/Equals/Is/In/IsTrue write their result
	// as a conditional branch rather than a register value: the word
	// immediately following is a signed PC-relative jump offset taken
	// when the comparison is false (spec.md §4.E "Condition codes").
	OpCmp // RD holds the relational code (LT/LE/GT/GE), see CmpCode
	OpSwitchCmp
	OpEquals
	OpCmp3
	OpIs
	OpIn
	OpIsTrue

	// Control flow.
	OpJmp
	OpSwitch
	OpFor
	OpForLoop
	OpForeach
	OpForeachLoop

	// Exception handling.
	OpPushCatch
	OpPushFinally
	OpPopEH
	OpEndFinal
	OpThrow
	OpUnwind

	// Calls.
	OpCall
	OpTailCall
	OpMethod
	OpTailMethod
	OpSaveRets
	OpRet
	OpYield
	OpCheckParams
	OpCheckObjParam
	OpObjParamFail
	OpCustomParamFail
	OpAssertFail

	// Data: variables, containers, strings.
	OpGetUpval
	OpSetUpval
	OpGetGlobal
	OpSetGlobal
	OpNewGlobal
	OpNewTable
	OpNewArray
	OpSetArray
	OpAppend
	OpCat
	OpCatEq
	OpIndex
	OpIndexAssign
	OpField
	OpFieldAssign
	OpSlice
	OpSliceAssign
	OpLength
	OpLengthAssign
	OpInc
	OpDec
	OpClose
	OpVararg
	OpVargLen
	OpVargIndex
	OpVargIndexAssign
	OpVargSlice

	// Object creation.
	OpClosure
	OpClosureWithEnv
	OpClass
	OpNamespace
	OpNamespaceNP
	OpAddMember
	OpFreezeClass
	OpSuperOf

	OpHalt
)

// CmpCode is RD's meaning when the leading word's opcode is OpCmp: which
// relational test the following branch performs.
type CmpCode uint8

const (
	CmpLT CmpCode = iota
	CmpLE
	CmpGT
	CmpGE
)

// Invert returns the relational code for `!(a CODE b)`, used by
// compiler.Builder.InvertJump when negating a pending condition
// (spec.md §4.E "invertJump ... flips the comparison code").
func (c CmpCode) Invert() CmpCode {
	switch c {
	case CmpLT:
		return CmpGE
	case CmpLE:
		return CmpGT
	case CmpGT:
		return CmpLE
	default:
		return CmpLT
	}
}

// MemberKind distinguishes the three separately-keyed Class member
// collections an AddMember instruction targets (spec.md §3 "three
// separately-keyed member collections").
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberHidden
)
