package vm

import "github.com/jarrettbillingsley/croc/value"

// nextWord reads and consumes the operand word following the
// instruction's leading word.
func (ip *Interpreter) nextWord(act *value.ActRecord, fd *value.Funcdef) uint16 {
	w := fd.Code[act.PC]
	act.PC++
	return w
}

// step executes one instruction, returning ret=true with results when
// the instruction popped the current activation record (Ret or Halt), or
// exc set when the instruction raised.
func (ip *Interpreter) step(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, op Opcode, rd int) (ret bool, results []value.Value, exc *value.Exception) {
	switch op {
	case OpNop:
		return false, nil, nil

	case OpHalt:
		t.PopAct()
		return true, nil, nil

	case OpMove:
		src := ip.nextWord(act, fd)
		ip.setReg(t, act, rd, ip.rk(t, act, fd, src))
		return false, nil, nil

	case OpLoadNull:
		ip.setReg(t, act, rd, value.Null())
		return false, nil, nil

	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpAnd, OpOr, OpXor, OpShl, OpShr, OpUShr:
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		v, e := ip.binaryArith(t, op, l, r)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpNeg, OpCom:
		sw := ip.nextWord(act, fd)
		src := ip.rk(t, act, fd, sw)
		v, e := ip.unaryArith(t, op, src)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil

	case OpCmp:
		code := CmpCode(rd)
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		offW := ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		ok, e := ip.compare(t, code, l, r)
		if e != nil {
			return false, nil, e
		}
		if !ok {
			act.PC += DecodeJump(offW)
		}
		return false, nil, nil

	case OpEquals, OpSwitchCmp:
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		offW := ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		var eq bool
		var e *value.Exception
		if op == OpSwitchCmp {
			eq = value.RawEquals(l, r)
		} else {
			eq, e = ip.equals(t, l, r)
		}
		if e != nil {
			return false, nil, e
		}
		if !eq {
			act.PC += DecodeJump(offW)
		}
		return false, nil, nil

	case OpCmp3:
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		n, e := ip.cmp3(t, l, r)
		if e != nil {
			return false, nil, e
		}
		ip.setReg(t, act, rd, value.Int(int64(n)))
		return false, nil, nil

	case OpIs:
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		offW := ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		if !identical(l, r) {
			act.PC += DecodeJump(offW)
		}
		return false, nil, nil

	case OpIn:
		lw, rw := ip.nextWord(act, fd), ip.nextWord(act, fd)
		offW := ip.nextWord(act, fd)
		l, r := ip.rk(t, act, fd, lw), ip.rk(t, act, fd, rw)
		ok, e := ip.contains(t, l, r)
		if e != nil {
			return false, nil, e
		}
		if !ok {
			act.PC += DecodeJump(offW)
		}
		return false, nil, nil

	case OpIsTrue:
		sw := ip.nextWord(act, fd)
		offW := ip.nextWord(act, fd)
		v := ip.rk(t, act, fd, sw)
		if !v.Truthy() {
			act.PC += DecodeJump(offW)
		}
		return false, nil, nil

	case OpJmp:
		offW := ip.nextWord(act, fd)
		act.PC += DecodeJump(offW)
		return false, nil, nil

	case OpSwitch:
		return false, nil, ip.execSwitch(t, act, fd, rd)

	case OpFor:
		return false, nil, ip.execFor(t, act, fd, rd, true)
	case OpForLoop:
		return false, nil, ip.execFor(t, act, fd, rd, false)
	case OpForeach:
		return false, nil, ip.execForeach(t, act, fd, rd, true)
	case OpForeachLoop:
		return false, nil, ip.execForeach(t, act, fd, rd, false)

	case OpPushCatch:
		return false, nil, ip.execPushCatch(t, act, fd, rd)
	case OpPushFinally:
		return false, nil, ip.execPushFinally(t, act, fd, rd)
	case OpPopEH:
		t.PopEH()
		return false, nil, nil
	case OpEndFinal:
		return ip.execEndFinal(t)
	case OpThrow:
		sw := ip.nextWord(act, fd)
		v := ip.rk(t, act, fd, sw)
		return false, nil, ip.newThrow(t, v)
	case OpUnwind:
		nw := ip.nextWord(act, fd)
		ip.execUnwind(t, int(nw))
		return false, nil, nil

	case OpCall, OpTailCall:
		return ip.execCall(t, act, fd, rd, op == OpTailCall, false)
	case OpMethod, OpTailMethod:
		return ip.execCall(t, act, fd, rd, op == OpTailMethod, true)
	case OpSaveRets:
		nw := ip.nextWord(act, fd)
		n := int(int16(nw))
		if n < 0 {
			return false, nil, nil
		}
		saved := make([]value.Value, n)
		for i := 0; i < n; i++ {
			saved[i] = ip.getReg(t, act, rd+i)
		}
		t.Results = saved
		return false, nil, nil
	case OpRet:
		return ip.execRet(t, act, fd, rd)
	case OpYield:
		return false, nil, ip.execYield(t, act, fd, rd)
	case OpCheckParams, OpCheckObjParam:
		// Param masks are validated in the call prologue (Interpreter.checkParams);
		// these opcodes are retained as explicit prelude markers for
		// disassembly fidelity and do no further work at run time.
		return false, nil, nil
	case OpObjParamFail, OpCustomParamFail, OpAssertFail:
		msgw := ip.nextWord(act, fd)
		msg := ip.rk(t, act, fd, msgw)
		return false, nil, &value.Exception{Kind: value.ExcAssertError, Msg: msg.String(), Location: posOf(fd, act)}

	case OpGetUpval:
		idx := int(ip.nextWord(act, fd))
		ip.setReg(t, act, rd, act.Func.ScriptUpvals[idx].Get())
		return false, nil, nil
	case OpSetUpval:
		idx := int(ip.nextWord(act, fd))
		act.Func.ScriptUpvals[idx].Set(ip.getReg(t, act, rd))
		return false, nil, nil

	case OpGetGlobal:
		nameIdx := int(ip.nextWord(act, fd))
		name := fd.Constants[nameIdx].AsString().Bytes
		v, ok := act.Func.Env.GetGlobal(name)
		if !ok {
			return false, nil, &value.Exception{Kind: value.ExcNameError, Msg: "undeclared global: " + name, Location: posOf(fd, act)}
		}
		ip.setReg(t, act, rd, v)
		return false, nil, nil
	case OpSetGlobal:
		nameIdx := int(ip.nextWord(act, fd))
		name := fd.Constants[nameIdx].AsString().Bytes
		if !act.Func.Env.SetIfExists(name, ip.getReg(t, act, rd)) {
			return false, nil, &value.Exception{Kind: value.ExcNameError, Msg: "undeclared global: " + name, Location: posOf(fd, act)}
		}
		return false, nil, nil
	case OpNewGlobal:
		nameIdx := int(ip.nextWord(act, fd))
		name := fd.Constants[nameIdx].AsString().Bytes
		act.Func.Env.Set(name, ip.getReg(t, act, rd))
		return false, nil, nil

	default:
		return ip.stepData(t, act, fd, op, rd)
	}
}
