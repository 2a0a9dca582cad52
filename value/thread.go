package value

import "github.com/google/uuid"

// ThreadState is one of the coroutine lifecycle states from spec.md §3.
type ThreadState uint8

const (
	StateInitial ThreadState = iota
	StateWaiting
	StateRunning
	StateSuspended
	StateDead
)

func (s ThreadState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ActRecord is one activation (function-call) record on a thread's call
// stack, per spec.md §4.G.
type ActRecord struct {
	Base            int
	SavedTop        int
	VargBase        int
	ReturnSlot      int
	Func            *Function
	PC              int
	ExpectedResults int
	NumTailcalls    int
	FirstResult     int
	NumResults      int
	UnwindCounter   int
	UnwindReturn    int

	// LastHookLine tracks the source line the line-debug-hook most
	// recently fired for, so the hook only fires on a line change.
	LastHookLine int
}

// EHFrame is one exception-handler or finally frame, per spec.md §4.G.
type EHFrame struct {
	IsCatch bool
	Slot    int
	PC      int // handler entry point for script-level handlers
	Act     *ActRecord
}

// DebugHookMask selects which of the four hook events (call/ret/line/delay)
// a Thread's debug hook should fire for, per spec.md §4.H.
type DebugHookMask uint8

const (
	HookCall DebugHookMask = 1 << iota
	HookRet
	HookLine
	HookDelay
)

// Thread is a Croc coroutine: its own value stack, activation-record
// stack, exception-handler stack, open-upvalue list, state, and optional
// debug-hook configuration, per spec.md §3.
type Thread struct {
	ID uuid.UUID
	VM *VM

	Stack []Value
	Top   int

	Acts []*ActRecord
	EHs  []*EHFrame

	// OpenUpvals is kept sorted by descending Slot, per spec.md §4.G.
	OpenUpvals []*Upval

	Results []Value

	State     ThreadState
	Body      *Function
	ResumedBy *Thread

	HookFn    *Function
	HookMask  DebugHookMask
	HookDelay int
	hookCount int

	PendingHalt bool
	inHook      bool

	// CurrentException is the in-flight exception during unwind, consulted
	// by EndFinal to know whether to resume unwinding or fall through.
	CurrentException *Exception

	// ResumeCh/YieldCh implement coroutine suspension as a goroutine
	// handoff: resuming sends arguments on ResumeCh and blocks reading
	// YieldCh; the thread's own goroutine blocks reading ResumeCh and
	// sends a ThreadSignal back on every yield or on return/throw. The
	// unbuffered channels enforce spec.md §5's single-running-coroutine
	// guarantee without needing an explicit scheduler lock: at most one
	// goroutine is ever unblocked at a time.
	ResumeCh chan []Value
	YieldCh  chan ThreadSignal
	Started  bool
}

// ThreadSignal is what a coroutine's goroutine sends back to its resumer:
// either a yielded tuple (Done=false) or a final return/throw (Done=true).
type ThreadSignal struct {
	Values []Value
	Err    *Exception
	Done   bool
}

// NewThread allocates a suspended thread bound to a script function body,
// in state Initial, per spec.md §4.H "thread_new(fn)".
func NewThread(vm *VM, body *Function) *Thread {
	return &Thread{
		ID:     uuid.New(),
		VM:     vm,
		Stack:  make([]Value, 0, 64),
		State:  StateInitial,
		Body:   body,
	}
}

func (t *Thread) EnsureStack(n int) {
	for len(t.Stack) < n {
		t.Stack = append(t.Stack, Null())
	}
	if n > t.Top {
		t.Top = n
	}
}

func (t *Thread) Push(v Value) {
	t.Stack = append(t.Stack, v)
	t.Top = len(t.Stack)
}

// OpenUpvalFor returns the existing open Upval for slot if one exists,
// otherwise creates, inserts (descending-slot order) and returns a new
// one.
func (t *Thread) OpenUpvalFor(slot int) *Upval {
	for _, u := range t.OpenUpvals {
		if !u.Closed && u.Slot == slot {
			return u
		}
	}
	u := NewOpenUpval(t, slot)
	// Insertion sort keeping OpenUpvals sorted by descending Slot.
	idx := len(t.OpenUpvals)
	for idx > 0 && t.OpenUpvals[idx-1].Slot < slot {
		idx--
	}
	t.OpenUpvals = append(t.OpenUpvals, nil)
	copy(t.OpenUpvals[idx+1:], t.OpenUpvals[idx:])
	t.OpenUpvals[idx] = u
	return u
}

// CloseUpvalsFrom closes every open upvalue at or above threshold, then
// trims them from the (descending-sorted) list in one prefix-trim, per
// spec.md §4.G/§9.
func (t *Thread) CloseUpvalsFrom(threshold int) {
	i := 0
	for i < len(t.OpenUpvals) && t.OpenUpvals[i].Slot >= threshold {
		t.OpenUpvals[i].Close()
		i++
	}
	t.OpenUpvals = t.OpenUpvals[i:]
}

func (t *Thread) PushAct(a *ActRecord) { t.Acts = append(t.Acts, a) }

func (t *Thread) PopAct() *ActRecord {
	n := len(t.Acts)
	a := t.Acts[n-1]
	t.Acts = t.Acts[:n-1]
	return a
}

func (t *Thread) CurrentAct() *ActRecord {
	if len(t.Acts) == 0 {
		return nil
	}
	return t.Acts[len(t.Acts)-1]
}

func (t *Thread) PushEH(f *EHFrame) { t.EHs = append(t.EHs, f) }

func (t *Thread) PopEH() *EHFrame {
	n := len(t.EHs)
	f := t.EHs[n-1]
	t.EHs = t.EHs[:n-1]
	return f
}
