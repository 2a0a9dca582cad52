package value

// Weakref holds a non-owning reference to a heap object. Reads as Null()
// once the target is reclaimed. Since this module lets the Go garbage
// collector own reference-object lifetime (see DESIGN.md's Open Question
// decision), a Weakref instead tracks liveness via an explicit Clear
// called by VM.ReleaseWeakTarget. Nothing in the VM calls
// ReleaseWeakTarget itself; a Weakref is cleared only when the host
// releases its target.
type Weakref struct {
	target  interface{}
	cleared bool
}

// NewWeakref returns the VM-deduplicated Weakref for target: repeated
// calls with the same target pointer return the same Weakref object,
// mirroring spec.md's "VM maintains a weakref table keyed by target
// pointer."
func NewWeakref(vm *VM, target interface{}) *Weakref {
	if w, ok := vm.weakrefs[target]; ok {
		return w
	}
	w := &Weakref{target: target}
	vm.weakrefs[target] = w
	return w
}

// Get returns the Value wrapping target, or Null() if cleared.
func (w *Weakref) Get(wrap func(interface{}) Value) Value {
	if w.cleared {
		return Null()
	}
	return wrap(w.target)
}

func (w *Weakref) Clear() { w.cleared = true; w.target = nil }

// ReleaseWeakTarget clears and forgets every Weakref pointing at target,
// the "reclamation sweeps the table" contract from spec.md §4.A.
func (vm *VM) ReleaseWeakTarget(target interface{}) {
	if w, ok := vm.weakrefs[target]; ok {
		w.Clear()
		delete(vm.weakrefs, target)
	}
}
