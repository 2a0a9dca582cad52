package vm

import "github.com/jarrettbillingsley/croc/value"

// prepScriptAct builds (but does not push) the activation record for
// calling a script Function with args, copying fixed parameters into their
// registers and collecting any surplus arguments into the vararg area,
// then validates them against the Funcdef's parameter type masks, per
// spec.md §4.G/§4.H. Shared by the initial call path (Interpreter.Call)
// and execCall's in-loop call/tailcall path so both install activation
// records identically.
func (ip *Interpreter) prepScriptAct(t *value.Thread, fn *value.Function, args []value.Value) (*value.ActRecord, *value.Exception) {
	fd := fn.Def
	base := len(t.Stack)
	t.EnsureStack(base + fd.StackSize)

	a := &value.ActRecord{Base: base, SavedTop: t.Top, ReturnSlot: -1, Func: fn, PC: 0}

	numFixed := fd.NumParams
	for i := 0; i < numFixed; i++ {
		if i < len(args) {
			ip.setReg(t, a, i, args[i])
		} else {
			ip.setReg(t, a, i, value.Null())
		}
	}
	if fd.IsVararg && len(args) > numFixed {
		a.VargBase = len(t.Stack)
		t.Stack = append(t.Stack, args[numFixed:]...)
		t.Top = len(t.Stack)
	}

	if exc := ip.checkParams(fd, args); exc != nil {
		return nil, exc
	}
	return a, nil
}

// resolveMethod looks up a method by name on a Method/TailMethod
// instruction's object operand, per the field-then-method resolution order
// spec.md §4.H specifies for Instances, and the plain member lookup for
// Namespace/Class receivers (namespaces holding free functions, classes
// being called as static dispatch targets).
func (ip *Interpreter) resolveMethod(obj value.Value, name string) (value.Value, *value.Exception) {
	switch obj.Kind() {
	case value.KindInstance:
		if m, ok := obj.AsInstance().LookupMethod(name); ok {
			return m, nil
		}
	case value.KindNamespace:
		if m, ok := obj.AsNamespace().Get(name); ok {
			return m, nil
		}
	case value.KindClass:
		if m, ok := obj.AsClass().LookupMember(name); ok {
			return m, nil
		}
	}
	return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "no such method: " + name}
}

// writeResults stores a native call's or a SaveRets-style result vector
// into the caller's registers starting at rd; nres<0 keeps every result
// (also stashing it as t.Results, for `return f()`-style tail propagation)
// while nres>=0 truncates/pads to exactly that many.
func (ip *Interpreter) writeResults(t *value.Thread, act *value.ActRecord, rd int, res []value.Value, nres int) {
	want := nres
	if want < 0 {
		want = len(res)
		t.Results = res
	}
	for i := 0; i < want; i++ {
		if i < len(res) {
			ip.setReg(t, act, rd+i, res[i])
		} else {
			ip.setReg(t, act, rd+i, value.Null())
		}
	}
}

// execCall implements Call/TailCall/Method/TailMethod. Script callees are
// never invoked via a recursive Interpreter.Call: instead a new activation
// record is pushed (plain call) or swapped in for the current one (tail
// call) and execution continues in the SAME dispatch loop iteration in
// Interpreter.run, so neither an ordinary deep call chain nor a tail-
// recursive loop grows the underlying Go call stack, per spec.md §9's tail-
// call-elision note.
func (ip *Interpreter) execCall(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int, isTail bool, isMethod bool) (ret bool, results []value.Value, exc *value.Exception) {
	var callee value.Value
	var self value.Value
	haveSelf := false
	firstArgReg := rd + 1

	if isMethod {
		nameIdx := int(ip.nextWord(act, fd))
		name := fd.Constants[nameIdx].AsString().Bytes
		obj := ip.getReg(t, act, rd)
		m, e := ip.resolveMethod(obj, name)
		if e != nil {
			return false, nil, e
		}
		callee = m
		self = obj
		haveSelf = true
	} else {
		callee = ip.getReg(t, act, rd)
	}

	nargsW := ip.nextWord(act, fd)
	nresW := ip.nextWord(act, fd)
	nargs := int(nargsW)
	nres := int(int16(nresW))

	var args []value.Value
	if haveSelf {
		args = append(args, self)
	}
	for i := 0; i < nargs; i++ {
		args = append(args, ip.getReg(t, act, firstArgReg+i))
	}

	if callee.Kind() == value.KindClass && !isMethod {
		inst, e := ip.instantiate(t, callee.AsClass(), args, fd, act)
		if e != nil {
			return false, nil, e
		}
		ip.writeResults(t, act, rd, []value.Value{value.InstanceVal(inst)}, nres)
		return false, nil, nil
	}

	if callee.Kind() != value.KindFunction {
		return false, nil, &value.Exception{Kind: value.ExcTypeError, Msg: "attempt to call a " + callee.TypeName() + " value", Location: posOf(fd, act)}
	}
	fn := callee.AsFunction()

	if fn.IsNative() {
		res, err := fn.Native(t, args)
		if err != nil {
			if e, ok := err.(*value.Exception); ok {
				return false, nil, e
			}
			return false, nil, &value.Exception{Kind: value.ExcRuntimeError, Msg: err.Error(), Location: posOf(fd, act)}
		}
		ip.writeResults(t, act, rd, res, nres)
		return false, nil, nil
	}

	newAct, e := ip.prepScriptAct(t, fn, args)
	if e != nil {
		return false, nil, e
	}
	newAct.ReturnSlot = rd
	newAct.ExpectedResults = nres

	if isTail {
		caller := t.PopAct()
		t.CloseUpvalsFrom(caller.Base)
		newAct.ReturnSlot = caller.ReturnSlot
		newAct.ExpectedResults = caller.ExpectedResults
	}

	t.PushAct(newAct)
	return false, nil, nil
}

// instantiate implements calling a Class value as a constructor: allocate
// a fresh Instance with every field at its class-declared default, then,
// if the class (or an ancestor) defines a "constructor" method, run it
// with the new instance as `this` and args forwarded, discarding whatever
// it returns. There is no dedicated opcode for this — a plain Call whose
// callee register holds a Class is enough, the same way calling a bare
// function needs no special-casing, so user code writes `Point(1, 2)` and
// never `new Point(1, 2)`.
func (ip *Interpreter) instantiate(t *value.Thread, cls *value.Class, args []value.Value, fd *value.Funcdef, act *value.ActRecord) (*value.Instance, *value.Exception) {
	inst := value.NewInstance(cls)
	ctor, ok := inst.LookupMethod("constructor")
	if !ok {
		return inst, nil
	}
	ctorArgs := append([]value.Value{value.InstanceVal(inst)}, args...)
	if _, err := ip.Call(t, ctor, ctorArgs, 0); err != nil {
		if e, ok := err.(*value.Exception); ok {
			return nil, e
		}
		return nil, &value.Exception{Kind: value.ExcRuntimeError, Msg: err.Error(), Location: posOf(fd, act)}
	}
	return inst, nil
}

// execRet implements Ret: gather n return values (n<0 means "whatever
// SaveRets/a prior tail expansion already stashed in t.Results"), close any
// upvalues pointing into the returning frame, pop it, and — when a caller
// frame remains and requested a destination — write the (possibly
// truncated/padded) results into that caller's registers at the popped
// frame's ReturnSlot, per spec.md §4.G.
func (ip *Interpreter) execRet(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) (ret bool, results []value.Value, exc *value.Exception) {
	nw := ip.nextWord(act, fd)
	n := int(int16(nw))

	var vals []value.Value
	if n < 0 {
		vals = t.Results
	} else {
		vals = make([]value.Value, n)
		for i := 0; i < n; i++ {
			vals[i] = ip.getReg(t, act, rd+i)
		}
	}

	t.CloseUpvalsFrom(act.Base)
	t.PopAct()

	if len(t.Acts) > 0 && act.ReturnSlot >= 0 {
		caller := t.CurrentAct()
		want := act.ExpectedResults
		if want < 0 {
			want = len(vals)
			t.Results = vals
		}
		for i := 0; i < want; i++ {
			if i < len(vals) {
				ip.setReg(t, caller, act.ReturnSlot+i, vals[i])
			} else {
				ip.setReg(t, caller, act.ReturnSlot+i, value.Null())
			}
		}
	} else {
		t.Results = vals
	}

	return true, vals, nil
}

// execYield implements Yield: it suspends the current goroutine by sending
// a ThreadSignal on the thread's YieldCh and blocking on ResumeCh, exactly
// mirroring what Interpreter.Resume does on the opposite end of the
// handoff, per spec.md §5's single-running-coroutine guarantee.
func (ip *Interpreter) execYield(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	nargsW := ip.nextWord(act, fd)
	nresW := ip.nextWord(act, fd)
	nargs := int(nargsW)
	nres := int(int16(nresW))

	vals := make([]value.Value, nargs)
	for i := 0; i < nargs; i++ {
		vals[i] = ip.getReg(t, act, rd+i)
	}

	t.State = value.StateSuspended
	t.YieldCh <- value.ThreadSignal{Values: vals, Done: false}
	resumeArgs := <-t.ResumeCh
	t.State = value.StateRunning

	want := nres
	if want < 0 {
		want = len(resumeArgs)
	}
	for i := 0; i < want; i++ {
		if i < len(resumeArgs) {
			ip.setReg(t, act, rd+i, resumeArgs[i])
		} else {
			ip.setReg(t, act, rd+i, value.Null())
		}
	}
	return nil
}
