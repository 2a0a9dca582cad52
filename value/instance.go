package value

// Instance is a fixed-size block of field slots (sized at the owning
// class's freeze time) plus an optional block of hidden-field slots.
// Parent (class) pointer is immutable for the instance's lifetime.
type Instance struct {
	Class  *Class
	Fields []Value
	Hidden []Value
}

// NewInstance allocates an instance of a frozen class, initializing every
// field slot from its class's declared initializer (walking the parent
// chain so inherited fields get their own class's initializer).
func NewInstance(class *Class) *Instance {
	inst := &Instance{
		Class:  class,
		Fields: make([]Value, class.InstanceSize),
		Hidden: make([]Value, class.HiddenSize),
	}
	for i := range inst.Fields {
		inst.Fields[i] = Null()
	}
	for i := range inst.Hidden {
		inst.Hidden[i] = Null()
	}

	var chain []*Class
	for cls := class; cls != nil; cls = cls.Parent {
		chain = append(chain, cls)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		cls := chain[i]
		for name, init := range cls.Fields {
			if slot, ok := class.FieldSlot(name); ok {
				inst.Fields[slot] = init
			}
		}
		for name, init := range cls.Hidden {
			if slot, ok := class.HiddenSlot(name); ok {
				inst.Hidden[slot] = init
			}
		}
	}
	return inst
}

// GetField reads a declared field by name, walking the parent chain via
// the class's flattened slot map. The second return is false if no
// ancestor class declares the field (method lookup should be tried next).
func (o *Instance) GetField(name string) (Value, bool) {
	if slot, ok := o.Class.FieldSlot(name); ok {
		return o.Fields[slot], true
	}
	return Null(), false
}

// SetField writes to the slot declared by some ancestor, in place.
func (o *Instance) SetField(name string, v Value) bool {
	if slot, ok := o.Class.FieldSlot(name); ok {
		o.Fields[slot] = v
		return true
	}
	return false
}

func (o *Instance) GetHidden(name string) (Value, bool) {
	if slot, ok := o.Class.HiddenSlot(name); ok {
		return o.Hidden[slot], true
	}
	return Null(), false
}

func (o *Instance) SetHidden(name string, v Value) bool {
	if slot, ok := o.Class.HiddenSlot(name); ok {
		o.Hidden[slot] = v
		return true
	}
	return false
}

// LookupMethod resolves a method by walking the instance's class chain;
// field access is tried first by the caller (vm.Interpreter), per the
// field-then-method order spec.md §4.H specifies.
func (o *Instance) LookupMethod(name string) (Value, bool) {
	return o.Class.LookupMember(name)
}
