package value

// ModuleLoader is the single stdlib contract point the semantic pass's
// import-lowering relies on existing (spec.md §13/SPEC_FULL.md §13): an
// import statement lowers to a call to `modules.load(name)`, where
// `modules` is looked up as an ordinary global. The core itself ships no
// module system, and nothing in it reads VM.ModuleLoader.
type ModuleLoader func(vm *VM, thread *Thread, name string) (Value, error)

// VM is the per-interpreter-instance owner of every piece of shared,
// VM-wide state: the string intern table, the weakref table, the
// registry of standard exception classes, the root globals namespace,
// the main thread, and (optionally) a module loader.
type VM struct {
	strings  map[string]*String
	weakrefs map[interface{}]*Weakref

	StdExceptions map[ExcKind]*Class
	Globals       *Namespace
	MainThread    *Thread
	ModuleLoader  ModuleLoader

	// MaxInstructions, when non-zero, bounds the number of instructions
	// the interpreter will execute across all threads before raising a
	// HaltException, per SPEC_FULL.md §10's optional instruction budget
	// (grounded on ProbeChain-go-probe's gas-metering idea).
	MaxInstructions int64
	instrExecuted   int64
}

func NewVM() *VM {
	vm := &VM{
		strings:       make(map[string]*String),
		weakrefs:      make(map[interface{}]*Weakref),
		StdExceptions: make(map[ExcKind]*Class),
	}
	vm.Globals = NewNamespace(NewString(vm, "_G"), nil)
	vm.registerStdExceptions()
	vm.MainThread = NewThread(vm, nil)
	vm.MainThread.State = StateRunning
	return vm
}

// registerStdExceptions builds a frozen Class for each standard exception
// kind named in spec.md §6's "well-known standard-exception registry",
// each deriving from a common Exception root class the way the original
// Croc's stdlib.exceptions module does.
func (vm *VM) registerStdExceptions() {
	root := NewClass(NewString(vm, "Exception"), nil)
	root.AddField("msg", StringVal(NewString(vm, "")), false)
	root.AddField("traceback", ArrayVal(NewArray(0)), false)
	root.AddField("cause", Null(), false)
	root.Freeze()
	vm.StdExceptions[ExcRuntimeError] = root

	kinds := []ExcKind{
		ExcApiError, ExcTypeError, ExcValueError, ExcRangeError, ExcBoundsError,
		ExcNameError, ExcFieldError, ExcStateError, ExcAssertError,
		ExcHaltException, ExcUnicodeError, ExcSwitchError, ExcImportException,
		ExcLexicalException, ExcSyntaxException, ExcSemanticException,
	}
	for _, k := range kinds {
		c := NewClass(NewString(vm, k.String()), root)
		c.Freeze()
		vm.StdExceptions[k] = c
	}
}

// StepInstr counts one executed instruction against MaxInstructions (if
// set) and reports whether the budget has just been exhausted, per
// SPEC_FULL.md §10's optional gas-metering extension.
func (vm *VM) StepInstr() (exceeded bool) {
	if vm.MaxInstructions == 0 {
		return false
	}
	vm.instrExecuted++
	return vm.instrExecuted > vm.MaxInstructions
}

// NewExceptionInstance builds an Instance of the registered class for kind,
// with its "msg" field set, ready to be thrown.
func (vm *VM) NewExceptionInstance(kind ExcKind, msg string) *Instance {
	class := vm.StdExceptions[kind]
	if class == nil {
		class = vm.StdExceptions[ExcRuntimeError]
	}
	inst := NewInstance(class)
	inst.SetField("msg", StringVal(NewString(vm, msg)))
	return inst
}

// InstanceIsA reports whether inst's class derives from (or is) target,
// the primitive `is`-style ancestry test catch-clause type tests lower to
// (spec.md §4.D's try/catch lowering: "__caught.super is Ti").
func InstanceIsA(inst *Instance, target *Class) bool {
	for c := inst.Class; c != nil; c = c.Parent {
		if c == target {
			return true
		}
	}
	return false
}
