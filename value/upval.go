package value

// Upval is a box around a Value. While open, it aliases a live slot on the
// owning Thread's value stack; once closed, it owns an embedded Value
// directly. Threads maintain their open upvalues sorted by descending
// stack slot (see Thread.OpenUpvals) so closing every upvalue at or above
// a threshold is a prefix-trim, per spec.md §4.G.
type Upval struct {
	Closed bool
	Thread *Thread // only meaningful while open
	Slot   int     // only meaningful while open
	Val    Value   // only meaningful once closed
}

// NewOpenUpval returns an Upval aliasing the given thread/slot.
func NewOpenUpval(t *Thread, slot int) *Upval {
	return &Upval{Thread: t, Slot: slot}
}

func (u *Upval) Get() Value {
	if u.Closed {
		return u.Val
	}
	return u.Thread.Stack[u.Slot]
}

func (u *Upval) Set(v Value) {
	if u.Closed {
		u.Val = v
		return
	}
	u.Thread.Stack[u.Slot] = v
}

// Close copies the current stack slot value into the embedded Value and
// redirects future reads/writes there, detaching the Upval from the
// thread's stack.
func (u *Upval) Close() {
	if u.Closed {
		return
	}
	u.Val = u.Thread.Stack[u.Slot]
	u.Closed = true
	u.Thread = nil
}
