package vm

import (
	"fmt"

	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
)

// Interpreter owns the dispatch loop; it is stateless across calls except
// for the shared *value.VM, so one Interpreter can drive every thread a
// VM creates, grounded on the teacher's backend/interpreter.go "run the
// current FuncPrototype's Bytecode against a stack-frame" loop,
// generalized to activation records, exception handlers and coroutines.
type Interpreter struct {
	VM *value.VM
}

func New(vm *value.VM) *Interpreter { return &Interpreter{VM: vm} }

// getReg/setReg address a register relative to the current activation
// record's Base, per spec.md §4.G.
func (ip *Interpreter) getReg(t *value.Thread, act *value.ActRecord, reg int) value.Value {
	return t.Stack[act.Base+reg]
}

func (ip *Interpreter) setReg(t *value.Thread, act *value.ActRecord, reg int, v value.Value) {
	t.Stack[act.Base+reg] = v
}

// rk resolves a register-or-constant operand word against the current
// frame: a constant-pool index reads fd.Constants, a register index
// reads the stack.
func (ip *Interpreter) rk(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, w uint16) value.Value {
	idx, isConst := DecodeRK(w)
	if isConst {
		return fd.Constants[idx]
	}
	return ip.getReg(t, act, idx)
}

// Call is the single entry point for invoking a Value as a callable: it
// dispatches to a native Go callback or to the script-function prologue,
// runs the interpreter loop for however many activation records that
// entails, and returns results trimmed/padded to nres (nres < 0 requests
// every result produced).
func (ip *Interpreter) Call(t *value.Thread, callee value.Value, args []value.Value, nres int) ([]value.Value, error) {
	if callee.Kind() != value.KindFunction {
		return nil, &value.Exception{Kind: value.ExcTypeError, Msg: "attempt to call a " + callee.TypeName() + " value"}
	}
	fn := callee.AsFunction()
	if fn.IsNative() {
		return ip.callNative(t, fn, args, nres)
	}
	return ip.callScript(t, fn, args, nres)
}

func (ip *Interpreter) callNative(t *value.Thread, fn *value.Function, args []value.Value, nres int) ([]value.Value, error) {
	results, err := fn.Native(t, args)
	if err != nil {
		return nil, err
	}
	return adjustResults(results, nres), nil
}

// callScript pushes a fresh activation record, copies arguments into the
// callee's parameter registers, runs the dispatch loop until that record
// is popped, and returns its results. This is the entry point used when a
// script function is called from Go (the top level, a native callback, or
// a debug hook) rather than from an in-progress Call/TailCall instruction;
// the latter path (execCall in calls.go) pushes the activation record
// directly into an already-running Interpreter.run loop instead of
// recursing here, so that deep or tail-recursive script-to-script calls
// never grow the Go call stack.
func (ip *Interpreter) callScript(t *value.Thread, fn *value.Function, args []value.Value, nres int) ([]value.Value, error) {
	act, exc := ip.prepScriptAct(t, fn, args)
	if exc != nil {
		return nil, exc
	}

	t.PushAct(act)
	depth := len(t.Acts)

	results, exc := ip.run(t, depth)
	if exc != nil {
		return nil, exc
	}
	return adjustResults(results, nres), nil
}

func adjustResults(results []value.Value, nres int) []value.Value {
	if nres < 0 {
		return results
	}
	out := make([]value.Value, nres)
	for i := range out {
		if i < len(results) {
			out[i] = results[i]
		} else {
			out[i] = value.Null()
		}
	}
	return out
}

// checkParams implements the CheckParams prologue instruction's contract:
// a non-MaskAny parameter mask rejects any argument whose Kind isn't
// flagged, spec.md §4.H "runs CheckParams ... as part of the emitted
// function prelude."
func (ip *Interpreter) checkParams(fd *value.Funcdef, args []value.Value) *value.Exception {
	for i, mask := range fd.ParamMasks {
		if mask == value.MaskAny || i >= len(args) {
			continue
		}
		if mask&value.MaskForKind(args[i].Kind()) == 0 {
			return &value.Exception{
				Kind:     value.ExcTypeError,
				Msg:      fmt.Sprintf("parameter %d (%s) expects a different type, got %s", i+1, fd.Name, args[i].TypeName()),
				Location: fd.Location,
			}
		}
	}
	return nil
}

// run executes instructions until the activation record at stackDepth
// (and everything above it, via calls/throws) has been popped, returning
// that frame's results. Call/TailCall instructions to script functions
// push their records onto this same loop (see execCall); run is re-entered
// recursively only when Go code calls Interpreter.Call mid-dispatch, as a
// metamethod, a constructor or a debug hook does.
func (ip *Interpreter) run(t *value.Thread, stackDepth int) ([]value.Value, *value.Exception) {
	for {
		if len(t.Acts) < stackDepth {
			return t.Results, nil
		}
		act := t.CurrentAct()
		fn := act.Func
		fd := fn.Def

		if t.PendingHalt {
			exc := &value.Exception{Kind: value.ExcHaltException, Msg: "halted"}
			return nil, ip.unwind(t, stackDepth, exc)
		}
		ip.fireLineHook(t, fd, act)
		if ip.VM.StepInstr() {
			exc := &value.Exception{Kind: value.ExcHaltException, Msg: "instruction budget exceeded"}
			return nil, ip.unwind(t, stackDepth, exc)
		}

		w := fd.Code[act.PC]
		op, rd := DecodeLead(w)
		act.PC++

		ret, results, exc := ip.step(t, act, fd, op, rd)
		if exc != nil {
			unwound := ip.unwind(t, stackDepth, exc)
			if unwound != nil {
				return nil, unwound
			}
			// A catch frame absorbed the exception and control resumed
			// inside it; loop back to the (possibly different) current
			// activation record.
			continue
		}
		if ret {
			if len(t.Acts) < stackDepth {
				return results, nil
			}
		}
	}
}

// fireLineHook invokes the thread's line hook when PC crosses into a new
// source line, per spec.md §4.H "fires when crossing a source-line
// boundary."
func (ip *Interpreter) fireLineHook(t *value.Thread, fd *value.Funcdef, act *value.ActRecord) {
	if t.HookFn == nil || t.HookMask&value.HookLine == 0 || t.inHook {
		return
	}
	line := fd.LineAt(act.PC)
	if line == act.LastHookLine {
		return
	}
	act.LastHookLine = line
	t.inHook = true
	ip.Call(t, value.FunctionVal(t.HookFn), []value.Value{value.Int(int64(line))}, 0)
	t.inHook = false
}

func posOf(fd *value.Funcdef, act *value.ActRecord) source.Pos {
	return source.Pos{Line: fd.LineAt(act.PC), Col: 1}
}
