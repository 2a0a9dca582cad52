package vm

import "github.com/jarrettbillingsley/croc/value"

// unwind propagates exc up the activation/exception-handler stack until
// either a catch frame absorbs it (returning nil, with t's current
// activation record repositioned at the handler) or the stack has been
// unwound down to stackDepth with no handler found (returning exc itself
// for the caller to report), per spec.md §4.G/§4.H "Exceptions."
//
// finally frames run unconditionally on the way past. A catch frame
// absorbs any exception regardless of its class: the clause types are
// tested afterwards by the single-hidden-variable if/else dispatch the
// compiler emits for catch clauses (spec.md §4.D point 7), which rethrows
// when no clause matches.
func (ip *Interpreter) unwind(t *value.Thread, stackDepth int, exc *value.Exception) *value.Exception {
	for len(t.Acts) >= stackDepth {
		act := t.CurrentAct()

		if len(t.EHs) > 0 && t.EHs[len(t.EHs)-1].Act == act {
			eh := t.PopEH()
			act.PC = eh.PC
			if eh.IsCatch {
				ip.setReg(t, act, eh.Slot, ip.excValue(t, exc))
				t.CurrentException = nil
			} else {
				// Finally frame: its body runs with the exception stashed
				// so EndFinal knows to resume unwinding afterwards.
				t.CurrentException = exc
			}
			return nil
		}

		exc.AppendTraceback(posOf(act.Func.Def, act))
		t.PopAct()
	}
	return exc
}

// excValue materializes the exception being thrown as the Value bound to
// a catch clause's binding: a user Instance if one was attached (thrown via
// `throw someInstance`), otherwise a freshly built Instance of the
// registered standard-exception class for exc.Kind.
func (ip *Interpreter) excValue(t *value.Thread, exc *value.Exception) value.Value {
	if exc.Instance != nil {
		return value.InstanceVal(exc.Instance)
	}
	inst := t.VM.NewExceptionInstance(exc.Kind, exc.Msg)
	exc.Instance = inst
	return value.InstanceVal(inst)
}

// newThrow implements the Throw instruction: a script-level `throw expr`
// where expr is expected to be an Instance of some Exception-derived class
// (spec.md §4.H "Exceptions").
func (ip *Interpreter) newThrow(t *value.Thread, v value.Value) *value.Exception {
	if v.Kind() != value.KindInstance {
		return &value.Exception{Kind: value.ExcTypeError, Msg: "can only throw an instance of an Exception-derived class"}
	}
	inst := v.AsInstance()
	msg := ""
	if m, ok := inst.GetField("msg"); ok {
		msg = m.String()
	}
	return &value.Exception{Kind: excKindOf(t, inst.Class), Msg: msg, Instance: inst}
}

// excKindOf maps a user's exception class back to the ExcKind its nearest
// registered ancestor corresponds to, so tracebacks and unhandled-exception
// reporting can still classify user-derived exceptions sensibly.
func excKindOf(t *value.Thread, class *value.Class) value.ExcKind {
	for c := class; c != nil; c = c.Parent {
		for kind, registered := range t.VM.StdExceptions {
			if registered == c {
				return kind
			}
		}
	}
	return value.ExcRuntimeError
}

// execPushCatch installs a catch-handler frame covering the current
// activation record, to be consulted by unwind if an exception propagates
// through it. rd carries the register the caught value should be bound to;
// the handler's entry PC is read as the following jump-style operand word.
func (ip *Interpreter) execPushCatch(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	offW := ip.nextWord(act, fd)
	handlerPC := act.PC + DecodeJump(offW)
	t.PushEH(&value.EHFrame{IsCatch: true, Slot: rd, PC: handlerPC, Act: act})
	return nil
}

// execPushFinally installs a finally frame the same way; rd is unused but
// kept for encoding symmetry with PushCatch.
func (ip *Interpreter) execPushFinally(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	offW := ip.nextWord(act, fd)
	handlerPC := act.PC + DecodeJump(offW)
	t.PushEH(&value.EHFrame{IsCatch: false, PC: handlerPC, Act: act})
	return nil
}

// execEndFinal closes a finally block: if an exception was in flight when
// the block was entered (t.CurrentException != nil), hand it back as this
// instruction's exc result so the dispatch loop's own unwind call (which
// alone knows the enclosing stackDepth) resumes propagating it; otherwise
// falls through to the next instruction normally, per spec.md §4.D point 7
// / §4.G.
func (ip *Interpreter) execEndFinal(t *value.Thread) (bool, []value.Value, *value.Exception) {
	if t.CurrentException != nil {
		exc := t.CurrentException
		t.CurrentException = nil
		return false, nil, exc
	}
	return false, nil, nil
}

// execUnwind pops n exception-handler frames without running their bodies,
// used when control leaves a protected region via break/continue/return
// rather than an exception, per spec.md §4.E "bracketed, and on exit emits
// code to unwind any protections entered since."
func (ip *Interpreter) execUnwind(t *value.Thread, n int) {
	for i := 0; i < n && len(t.EHs) > 0; i++ {
		t.PopEH()
	}
}
