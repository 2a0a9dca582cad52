package vm

// Each instruction begins with a leading word packing an Opcode into the
// high byte and a destination register into the low byte; operand words
// follow, one per instruction field, per spec.md §6 "Bytecode format."
// ConstFlag marks an operand word as a constant-pool index rather than a
// register index ("register-or-constant references use the high bit").
//
// These encode/decode helpers are exported because they are the wire
// contract shared between this package's dispatch loop and package
// compiler's emitter: both must agree byte-for-byte on how a Funcdef's
// Code words are packed.
const ConstFlag = uint16(0x8000)

func LeadWord(op Opcode, rd int) uint16 {
	return uint16(op)<<8 | uint16(uint8(rd))
}

func DecodeLead(w uint16) (Opcode, int) {
	return Opcode(w >> 8), int(uint8(w))
}

// RKWord encodes a register-or-constant operand: reg holds a register
// index, or, if isConst, a constant-pool index.
func RKWord(index int, isConst bool) uint16 {
	if isConst {
		return ConstFlag | uint16(index)
	}
	return uint16(index)
}

func DecodeRK(w uint16) (index int, isConst bool) {
	if w&ConstFlag != 0 {
		return int(w &^ ConstFlag), true
	}
	return int(w), false
}

// JumpWord encodes a signed PC-relative offset, measured from the word
// immediately after the jump's operand words (spec.md §6). noJump is the
// reserved sentinel for "no pending jump" used by the builder's jump
// patch lists.
const noJump int32 = 1<<31 - 1

func JumpWord(offset int) uint16 { return uint16(int16(offset)) }

func DecodeJump(w uint16) int { return int(int16(w)) }
