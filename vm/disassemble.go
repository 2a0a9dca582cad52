package vm

import (
	"fmt"
	"strings"

	"github.com/jarrettbillingsley/croc/value"
)

// opcodeNames lets the disassembler print a mnemonic instead of a raw
// opcode number; kept in its own table (rather than a Stringer on Opcode)
// so the ordering in opcode.go's iota block can change freely.
var opcodeNames = map[Opcode]string{
	OpNop: "Nop", OpMove: "Move", OpLoadNull: "LoadNull",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpNeg: "Neg", OpAnd: "And", OpOr: "Or", OpXor: "Xor",
	OpShl: "Shl", OpShr: "Shr", OpUShr: "UShr", OpCom: "Com",
	OpCmp: "Cmp", OpSwitchCmp: "SwitchCmp", OpEquals: "Equals", OpCmp3: "Cmp3",
	OpIs: "Is", OpIn: "In", OpIsTrue: "IsTrue",
	OpJmp: "Jmp", OpSwitch: "Switch",
	OpFor: "For", OpForLoop: "ForLoop", OpForeach: "Foreach", OpForeachLoop: "ForeachLoop",
	OpPushCatch: "PushCatch", OpPushFinally: "PushFinally", OpPopEH: "PopEH",
	OpEndFinal: "EndFinal", OpThrow: "Throw", OpUnwind: "Unwind",
	OpCall: "Call", OpTailCall: "TailCall", OpMethod: "Method", OpTailMethod: "TailMethod",
	OpSaveRets: "SaveRets", OpRet: "Ret", OpYield: "Yield",
	OpCheckParams: "CheckParams", OpCheckObjParam: "CheckObjParam",
	OpObjParamFail: "ObjParamFail", OpCustomParamFail: "CustomParamFail", OpAssertFail: "AssertFail",
	OpGetUpval: "GetUpval", OpSetUpval: "SetUpval",
	OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal", OpNewGlobal: "NewGlobal",
	OpNewTable: "NewTable", OpNewArray: "NewArray", OpSetArray: "SetArray", OpAppend: "Append",
	OpCat: "Cat", OpCatEq: "CatEq",
	OpIndex: "Index", OpIndexAssign: "IndexAssign", OpField: "Field", OpFieldAssign: "FieldAssign",
	OpSlice: "Slice", OpSliceAssign: "SliceAssign",
	OpLength: "Length", OpLengthAssign: "LengthAssign",
	OpInc: "Inc", OpDec: "Dec", OpClose: "Close",
	OpVararg: "Vararg", OpVargLen: "VargLen", OpVargIndex: "VargIndex",
	OpVargIndexAssign: "VargIndexAssign", OpVargSlice: "VargSlice",
	OpClosure: "Closure", OpClosureWithEnv: "ClosureWithEnv",
	OpClass: "Class", OpNamespace: "Namespace", OpNamespaceNP: "NamespaceNP",
	OpAddMember: "AddMember", OpFreezeClass: "FreezeClass", OpSuperOf: "SuperOf",
	OpHalt: "Halt",
}

// operandWords is how many operand words (after the leading word) each
// opcode consumes, mirroring exactly what step.go/data.go's handlers read
// via nextWord; kept as a lookup table here purely for disassembly since
// the interpreter itself always knows this by virtue of executing the
// handler.
var operandWords = map[Opcode]int{
	OpNop: 0, OpHalt: 0, OpMove: 1, OpLoadNull: 0,
	OpAdd: 2, OpSub: 2, OpMul: 2, OpDiv: 2, OpMod: 2,
	OpAnd: 2, OpOr: 2, OpXor: 2, OpShl: 2, OpShr: 2, OpUShr: 2,
	OpNeg: 1, OpCom: 1,
	OpCmp: 3, OpSwitchCmp: 3, OpEquals: 3, OpCmp3: 2,
	OpIs: 3, OpIn: 3, OpIsTrue: 2,
	OpJmp: 1, OpSwitch: 1,
	OpFor: 1, OpForLoop: 1, OpForeach: 2, OpForeachLoop: 2,
	OpPushCatch: 1, OpPushFinally: 1, OpPopEH: 0, OpEndFinal: 0,
	OpThrow: 1, OpUnwind: 1,
	OpCall: 2, OpTailCall: 2, OpMethod: 3, OpTailMethod: 3,
	OpSaveRets: 1, OpRet: 1, OpYield: 2,
	OpCheckParams: 0, OpCheckObjParam: 0,
	OpObjParamFail: 1, OpCustomParamFail: 1, OpAssertFail: 1,
	OpGetUpval: 1, OpSetUpval: 1,
	OpGetGlobal: 1, OpSetGlobal: 1, OpNewGlobal: 1,
	OpNewTable: 0, OpNewArray: 1, OpSetArray: 2, OpAppend: 1,
	OpCat: 2, OpCatEq: 1,
	OpIndex: 2, OpIndexAssign: 2, OpField: 2, OpFieldAssign: 2,
	OpSlice: 3, OpSliceAssign: 3,
	OpLength: 1, OpLengthAssign: 1,
	OpInc: 0, OpDec: 0, OpClose: 0,
	OpVararg: 1, OpVargLen: 0, OpVargIndex: 1, OpVargIndexAssign: 2, OpVargSlice: 2,
	OpClosure: 1, OpClosureWithEnv: 2,
	OpClass: 2, OpNamespace: 2, OpNamespaceNP: 1,
	OpAddMember: 4, OpFreezeClass: 0, OpSuperOf: 1,
}

// Disassemble renders a compiled Funcdef (and, recursively, its nested
// function prototypes) as a flat listing of PC, mnemonic, destination
// register and raw operand words, plus its constant pool and debug
// tables, grounded on the teacher's backend/disassembly.go.
func Disassemble(fd *value.Funcdef) string {
	var b strings.Builder
	disassembleOne(&b, fd, "")
	return b.String()
}

func disassembleOne(b *strings.Builder, fd *value.Funcdef, indent string) {
	name := "<anonymous>"
	if fd.Name != nil {
		name = fd.Name.Bytes
	}
	fmt.Fprintf(b, "%sfunction %s (%d params%s)\n", indent, name, fd.NumParams, varargSuffix(fd.IsVararg))

	pc := 0
	for pc < len(fd.Code) {
		start := pc
		w := fd.Code[pc]
		op, rd := DecodeLead(w)
		pc++

		mnem, known := opcodeNames[op]
		if !known {
			mnem = fmt.Sprintf("op(%d)", op)
		}
		n := operandWords[op]
		operands := make([]string, 0, n)
		for i := 0; i < n && pc < len(fd.Code); i++ {
			operands = append(operands, formatOperand(fd.Code[pc]))
			pc++
		}
		fmt.Fprintf(b, "%s  %4d %-14s r%d  %s\n", indent, start, mnem, rd, strings.Join(operands, ", "))
	}

	fmt.Fprintf(b, "%s  constants (%d):\n", indent, len(fd.Constants))
	for i, c := range fd.Constants {
		fmt.Fprintf(b, "%s   #%d %s\n", indent, i, c.String())
	}

	fmt.Fprintf(b, "%s  upvalues (%d):\n", indent, len(fd.Upvals))
	for i, u := range fd.Upvals {
		fmt.Fprintf(b, "%s   #%d %q parentLocal=%t index=%d\n", indent, i, u.Name, u.IsParentLocal, u.Index)
	}

	fmt.Fprintf(b, "%s  locals (%d):\n", indent, len(fd.Locals))
	for _, l := range fd.Locals {
		fmt.Fprintf(b, "%s   r%d %q [%d, %d)\n", indent, l.Register, l.Name, l.PCStart, l.PCEnd)
	}

	for _, inner := range fd.Inner {
		disassembleOne(b, inner, indent+"  ")
	}
}

func varargSuffix(isVararg bool) string {
	if isVararg {
		return ", vararg"
	}
	return ""
}

func formatOperand(w uint16) string {
	idx, isConst := DecodeRK(w)
	if isConst {
		return fmt.Sprintf("k%d", idx)
	}
	if idx == NoneReg {
		return "-"
	}
	return fmt.Sprintf("r%d", idx)
}
