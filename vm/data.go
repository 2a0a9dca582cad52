package vm

import "github.com/jarrettbillingsley/croc/value"

// stepData handles the "data" group of opcodes (containers, strings,
// field/index/slice access, varargs, object creation) not already
// dispatched by step, keeping that switch from growing unmanageably
// large, per the teacher's own split across several backend/*.go files.
func (ip *Interpreter) stepData(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, op Opcode, rd int) (ret bool, results []value.Value, exc *value.Exception) {
	switch op {
	case OpNewTable:
		ip.setReg(t, act, rd, value.TableVal(value.NewTable()))
		return false, nil, nil

	case OpNewArray:
		nw := ip.nextWord(act, fd)
		ip.setReg(t, act, rd, value.ArrayVal(value.NewArray(int(nw))))
		return false, nil, nil

	case OpSetArray:
		firstReg := int(ip.nextWord(act, fd))
		count := int(ip.nextWord(act, fd))
		arr := ip.getReg(t, act, rd).AsArray()
		for i := 0; i < count; i++ {
			arr.Set(i, ip.getReg(t, act, firstReg+i))
		}
		return false, nil, nil

	case OpAppend:
		sw := ip.nextWord(act, fd)
		v := ip.rk(t, act, fd, sw)
		ip.getReg(t, act, rd).AsArray().Append(v)
		return false, nil, nil

	case OpCat:
		firstReg := int(ip.nextWord(act, fd))
		count := int(ip.nextWord(act, fd))
		operands := make([]value.Value, count)
		for i := 0; i < count; i++ {
			operands[i] = ip.getReg(t, act, firstReg+i)
		}
		v, e := ip.concat(t, operands)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpCatEq:
		sw := ip.nextWord(act, fd)
		rhs := ip.rk(t, act, fd, sw)
		lhs := ip.getReg(t, act, rd)
		v, e := ip.concat(t, []value.Value{lhs, rhs})
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpIndex:
		objW, idxW := ip.nextWord(act, fd), ip.nextWord(act, fd)
		obj, idx := ip.rk(t, act, fd, objW), ip.rk(t, act, fd, idxW)
		v, e := ip.index(t, obj, idx, act)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpIndexAssign:
		idxW, valW := ip.nextWord(act, fd), ip.nextWord(act, fd)
		idx, v := ip.rk(t, act, fd, idxW), ip.rk(t, act, fd, valW)
		obj := ip.getReg(t, act, rd)
		return false, nil, ip.indexAssign(t, obj, idx, v, act)

	case OpField:
		objW := ip.nextWord(act, fd)
		nameIdx := int(ip.nextWord(act, fd))
		obj := ip.rk(t, act, fd, objW)
		name := fd.Constants[nameIdx].AsString().Bytes
		v, e := ip.field(t, obj, name, act)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpFieldAssign:
		nameIdx := int(ip.nextWord(act, fd))
		valW := ip.nextWord(act, fd)
		name := fd.Constants[nameIdx].AsString().Bytes
		v := ip.rk(t, act, fd, valW)
		obj := ip.getReg(t, act, rd)
		return false, nil, ip.fieldAssign(t, obj, name, v, act)

	case OpSlice:
		objW, loW, hiW := ip.nextWord(act, fd), ip.nextWord(act, fd), ip.nextWord(act, fd)
		obj := ip.rk(t, act, fd, objW)
		lo, hi := ip.sliceBound(t, act, fd, loW), ip.sliceBound(t, act, fd, hiW)
		v, e := ip.slice(t, obj, lo, hi, act)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpSliceAssign:
		loW, hiW, valW := ip.nextWord(act, fd), ip.nextWord(act, fd), ip.nextWord(act, fd)
		lo, hi := ip.sliceBound(t, act, fd, loW), ip.sliceBound(t, act, fd, hiW)
		v := ip.rk(t, act, fd, valW)
		obj := ip.getReg(t, act, rd)
		return false, nil, ip.sliceAssign(t, obj, lo, hi, v, act)

	case OpLength:
		sw := ip.nextWord(act, fd)
		v, e := ip.length(t, ip.rk(t, act, fd, sw), act)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpLengthAssign:
		sw := ip.nextWord(act, fd)
		n := ip.rk(t, act, fd, sw)
		obj := ip.getReg(t, act, rd)
		switch obj.Kind() {
		case value.KindArray:
			obj.AsArray().Resize(int(n.AsInt()))
		case value.KindMemblock:
			mb := obj.AsMemblock()
			if !mb.Owning {
				return false, nil, &value.Exception{Kind: value.ExcStateError, Msg: "cannot resize a view memblock", Location: posOf(fd, act)}
			}
			mb.Resize(int(n.AsInt()))
		default:
			return false, nil, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot set length of a " + obj.TypeName(), Location: posOf(fd, act)}
		}
		return false, nil, nil

	case OpInc, OpDec:
		delta := int64(1)
		if op == OpDec {
			delta = -1
		}
		cur := ip.getReg(t, act, rd)
		if !cur.IsNumeric() {
			return false, nil, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot increment/decrement a " + cur.TypeName(), Location: posOf(fd, act)}
		}
		if cur.Kind() == value.KindInt {
			ip.setReg(t, act, rd, value.Int(cur.AsInt()+delta))
		} else {
			ip.setReg(t, act, rd, value.Float(cur.AsFloat()+float64(delta)))
		}
		return false, nil, nil

	case OpClose:
		t.CloseUpvalsFrom(act.Base + rd)
		return false, nil, nil

	case OpVararg:
		startReg := rd
		wantW := ip.nextWord(act, fd)
		want := int(int16(wantW))
		vargs := varargsOf(t, act)
		if want < 0 {
			for i, v := range vargs {
				ip.setReg(t, act, startReg+i, v)
			}
			t.Results = vargs
		} else {
			for i := 0; i < want; i++ {
				if i < len(vargs) {
					ip.setReg(t, act, startReg+i, vargs[i])
				} else {
					ip.setReg(t, act, startReg+i, value.Null())
				}
			}
		}
		return false, nil, nil

	case OpVargLen:
		ip.setReg(t, act, rd, value.Int(int64(len(varargsOf(t, act)))))
		return false, nil, nil

	case OpVargIndex:
		sw := ip.nextWord(act, fd)
		idx := int(ip.rk(t, act, fd, sw).AsInt())
		vargs := varargsOf(t, act)
		if idx < 0 || idx >= len(vargs) {
			return false, nil, &value.Exception{Kind: value.ExcBoundsError, Msg: "vararg index out of bounds", Location: posOf(fd, act)}
		}
		ip.setReg(t, act, rd, vargs[idx])
		return false, nil, nil

	case OpVargIndexAssign:
		idxW, valW := ip.nextWord(act, fd), ip.nextWord(act, fd)
		idx := int(ip.rk(t, act, fd, idxW).AsInt())
		v := ip.rk(t, act, fd, valW)
		if idx < 0 || act.VargBase+idx >= len(t.Stack) {
			return false, nil, &value.Exception{Kind: value.ExcBoundsError, Msg: "vararg index out of bounds", Location: posOf(fd, act)}
		}
		t.Stack[act.VargBase+idx] = v
		return false, nil, nil

	case OpVargSlice:
		loW, hiW := ip.nextWord(act, fd), ip.nextWord(act, fd)
		lo, hi := ip.sliceBound(t, act, fd, loW), ip.sliceBound(t, act, fd, hiW)
		vargs := varargsOf(t, act)
		lo, hi = normalizeSlice(lo, hi, len(vargs))
		out := make([]value.Value, hi-lo)
		copy(out, vargs[lo:hi])
		ip.setReg(t, act, rd, value.ArrayVal(value.NewArrayFrom(out)))
		return false, nil, nil

	case OpClosure, OpClosureWithEnv:
		return false, nil, ip.execClosure(t, act, fd, rd, op == OpClosureWithEnv)

	case OpClass:
		return false, nil, ip.execClass(t, act, fd, rd)
	case OpNamespace, OpNamespaceNP:
		return false, nil, ip.execNamespace(t, act, fd, rd, op == OpNamespaceNP)
	case OpAddMember:
		return false, nil, ip.execAddMember(t, act, fd, rd)
	case OpFreezeClass:
		ip.getReg(t, act, rd).AsClass().Freeze()
		return false, nil, nil
	case OpSuperOf:
		sw := ip.nextWord(act, fd)
		v := ip.rk(t, act, fd, sw)
		parent, e := ip.superOf(v, fd, act)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, parent)
		return false, nil, nil

	default:
		return false, nil, &value.Exception{Kind: value.ExcRuntimeError, Msg: "unimplemented opcode", Location: posOf(fd, act)}
	}
}

// sliceBound decodes a slice-bound operand: the NoneReg register word (an
// absent bound) or an operand holding null means "endpoint" (spec.md §4.H
// "null meaning endpoint"), reported as a nil bound.
func (ip *Interpreter) sliceBound(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, w uint16) *int64 {
	idx, isConst := DecodeRK(w)
	if !isConst && idx == NoneReg {
		return nil
	}
	var v value.Value
	if isConst {
		v = fd.Constants[idx]
	} else {
		v = ip.getReg(t, act, idx)
	}
	if v.IsNull() {
		return nil
	}
	n := v.AsInt()
	return &n
}

// NoneReg is the reserved register index meaning "no operand given"
// (encoded by the builder for an absent slice endpoint or class base). It
// stays below ConstFlag so DecodeRK reports it as a register.
const NoneReg = 0x7FFF

func normalizeSlice(lo, hi *int64, length int) (int, int) {
	l, h := 0, length
	if lo != nil {
		l = int(*lo)
		if l < 0 {
			l += length
		}
	}
	if hi != nil {
		h = int(*hi)
		if h < 0 {
			h += length
		}
	}
	if l < 0 {
		l = 0
	}
	if h > length {
		h = length
	}
	if l > h {
		l = h
	}
	return l, h
}

// varargs returns the slice of extra arguments stored above the fixed
// parameters for a vararg function's current activation.
func varargsOf(t *value.Thread, act *value.ActRecord) []value.Value {
	if act.VargBase == 0 {
		return nil
	}
	return t.Stack[act.VargBase:t.Top]
}
