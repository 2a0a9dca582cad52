package vm

import "github.com/jarrettbillingsley/croc/value"

// execSwitch looks the scrutinee in register rd up in the referenced
// switch table, jumping to its case's PC or to the table's default (if
// any), falling through otherwise, per spec.md §4.E "Switch tables."
func (ip *Interpreter) execSwitch(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	tblIdx := int(ip.nextWord(act, fd))
	st := fd.SwitchTables[tblIdx]
	val := ip.getReg(t, act, rd)
	if pc, ok := st.Cases[val]; ok {
		act.PC = pc
		return nil
	}
	if st.DefaultPC >= 0 {
		act.PC = st.DefaultPC
	}
	return nil
}

// execFor implements the numeric For/ForLoop pair: registers rd, rd+1,
// rd+2 hold [index, limit, step]. The entry instruction (isEntry=true)
// checks whether the initial index is already out of range and jumps past
// the loop if so; the bottom-of-loop instruction increments the index by
// step and jumps back to the body while still in range, per spec.md §4.E
// "For loops."
func (ip *Interpreter) execFor(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int, isEntry bool) *value.Exception {
	offW := ip.nextWord(act, fd)

	if !isEntry {
		idx := addNumeric(ip.getReg(t, act, rd), ip.getReg(t, act, rd+2))
		ip.setReg(t, act, rd, idx)
	}

	idxV := ip.getReg(t, act, rd)
	limitV := ip.getReg(t, act, rd+1)
	stepV := ip.getReg(t, act, rd+2)

	inRange := forInRange(idxV, limitV, stepV)
	if isEntry {
		if !inRange {
			act.PC += DecodeJump(offW)
		}
	} else if inRange {
		act.PC += DecodeJump(offW)
	}
	return nil
}

func addNumeric(a, b value.Value) value.Value {
	if a.Kind() == value.KindInt && b.Kind() == value.KindInt {
		return value.Int(a.AsInt() + b.AsInt())
	}
	return value.Float(a.NumericFloat() + b.NumericFloat())
}

func forInRange(idx, limit, step value.Value) bool {
	if step.Kind() == value.KindInt && idx.Kind() == value.KindInt && limit.Kind() == value.KindInt {
		if step.AsInt() >= 0 {
			return idx.AsInt() <= limit.AsInt()
		}
		return idx.AsInt() >= limit.AsInt()
	}
	if step.NumericFloat() >= 0 {
		return idx.NumericFloat() <= limit.NumericFloat()
	}
	return idx.NumericFloat() >= limit.NumericFloat()
}

// execForeach implements the Foreach/ForeachLoop pair over Array and
// String containers (the two sequence kinds with a natural 0-based
// integer cursor); register rd holds the container, rd+1 the cursor, and
// rd+2.. the loop variables refreshed each iteration: a single variable
// receives the element, while with two the first receives the index and
// the second the element. Table iteration is
// left to the stdlib's explicit `.keys()`/`.values()` iterator functions
// rather than direct `foreach`, since a Table's Go map has no stable
// cursor to resume from (see DESIGN.md).
func (ip *Interpreter) execForeach(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int, isEntry bool) *value.Exception {
	nvars := int(ip.nextWord(act, fd))
	offW := ip.nextWord(act, fd)

	if isEntry {
		ip.setReg(t, act, rd+1, value.Int(-1))
		return nil
	}

	container := ip.getReg(t, act, rd)
	idx := int(ip.getReg(t, act, rd+1).AsInt()) + 1

	switch container.Kind() {
	case value.KindArray:
		arr := container.AsArray()
		if idx >= arr.Len() {
			return nil
		}
		ip.setReg(t, act, rd+1, value.Int(int64(idx)))
		if nvars == 1 {
			ip.setReg(t, act, rd+2, arr.Get(idx))
		} else if nvars >= 2 {
			ip.setReg(t, act, rd+2, value.Int(int64(idx)))
			ip.setReg(t, act, rd+3, arr.Get(idx))
		}
		act.PC += DecodeJump(offW)
		return nil
	case value.KindString:
		s := container.AsString()
		if idx >= s.Length {
			return nil
		}
		ip.setReg(t, act, rd+1, value.Int(int64(idx)))
		if nvars == 1 {
			ip.setReg(t, act, rd+2, value.Int(int64(s.CharAt(idx))))
		} else if nvars >= 2 {
			ip.setReg(t, act, rd+2, value.Int(int64(idx)))
			ip.setReg(t, act, rd+3, value.Int(int64(s.CharAt(idx))))
		}
		act.PC += DecodeJump(offW)
		return nil
	default:
		return &value.Exception{Kind: value.ExcTypeError, Msg: "cannot foreach over a " + container.TypeName(), Location: posOf(fd, act)}
	}
}
