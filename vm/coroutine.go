package vm

import "github.com/jarrettbillingsley/croc/value"

// Resume hands control to a thread, blocking the calling goroutine until
// the resumed thread either yields or finishes (by returning or raising),
// then returns whatever it produced. The first Resume of a fresh thread
// starts its goroutine; later calls simply forward the new arguments over
// the existing ResumeCh, per spec.md §5's cooperative-scheduling model.
func (ip *Interpreter) Resume(t *value.Thread, args []value.Value) ([]value.Value, *value.Exception) {
	if t.State == value.StateDead {
		return nil, &value.Exception{Kind: value.ExcStateError, Msg: "cannot resume a dead thread"}
	}
	if t.State == value.StateRunning {
		return nil, &value.Exception{Kind: value.ExcStateError, Msg: "thread is already running"}
	}

	if !t.Started {
		t.Started = true
		t.ResumeCh = make(chan []value.Value)
		t.YieldCh = make(chan value.ThreadSignal)
		go ip.runThread(t)
	}

	t.State = value.StateRunning
	t.ResumeCh <- args
	sig := <-t.YieldCh

	if sig.Done {
		t.State = value.StateDead
	} else {
		t.State = value.StateSuspended
	}
	if sig.Err != nil {
		return nil, sig.Err
	}
	return sig.Values, nil
}

// runThread is a coroutine's goroutine body: it blocks for its first
// resume arguments, pushes the body function's activation record, and
// drives the dispatch loop to completion (or an uncaught exception),
// reporting the outcome back over YieldCh. Every subsequent suspension
// happens inside the dispatch loop itself, in execYield.
func (ip *Interpreter) runThread(t *value.Thread) {
	args := <-t.ResumeCh

	act, exc := ip.prepScriptAct(t, t.Body, args)
	if exc != nil {
		t.YieldCh <- value.ThreadSignal{Err: exc, Done: true}
		return
	}

	t.PushAct(act)
	results, exc := ip.run(t, 1)
	t.YieldCh <- value.ThreadSignal{Values: results, Err: exc, Done: true}
}
