package value

// Class holds a name, a frozen flag, a parent (derivation) pointer, three
// separately-keyed member collections (methods/fields/hidden fields), an
// optional finalizer and an instance size fixed at freeze time, per
// spec.md §3.
type Class struct {
	Name     *String
	Frozen   bool
	Parent   *Class
	Methods  map[string]Value
	Fields   map[string]Value
	Hidden   map[string]Value
	Finalizer *Function

	// InstanceSize is the number of field slots an Instance of this class
	// allocates, computed at freeze time by summing this class's own
	// field count and its parent's InstanceSize.
	InstanceSize int
	HiddenSize   int

	fieldSlots  map[string]int
	hiddenSlots map[string]int
}

// FieldSlot returns the frozen instance-field slot index for name, walking
// the parent chain implicitly (Freeze already flattened the chain into a
// single slot map).
func (c *Class) FieldSlot(name string) (int, bool) {
	idx, ok := c.fieldSlots[name]
	return idx, ok
}

func (c *Class) HiddenSlot(name string) (int, bool) {
	idx, ok := c.hiddenSlots[name]
	return idx, ok
}

func NewClass(name *String, parent *Class) *Class {
	return &Class{
		Name:    name,
		Parent:  parent,
		Methods: make(map[string]Value),
		Fields:  make(map[string]Value),
		Hidden:  make(map[string]Value),
	}
}

// AddMethod installs or overrides a method. override=false fails if name
// already names a method or field anywhere in the parent chain;
// override=true fails if it is currently absent, per spec.md §4.A.
func (c *Class) AddMethod(name string, fn Value, override bool) error {
	if c.Frozen && !override {
		return &Exception{Kind: ExcStateError, Msg: "cannot add members to a frozen class"}
	}
	_, hasMethod := c.lookupMethod(name)
	_, hasField := c.lookupField(name)
	exists := hasMethod || hasField
	if override && !exists {
		return &Exception{Kind: ExcFieldError, Msg: "no such method to override: " + name}
	}
	if !override && exists {
		return &Exception{Kind: ExcFieldError, Msg: "member already exists: " + name}
	}
	c.Methods[name] = fn
	return nil
}

// AddField installs a field declaration. Subject to the same
// override-conflict rule as AddMethod.
func (c *Class) AddField(name string, initial Value, override bool) error {
	if c.Frozen {
		return &Exception{Kind: ExcStateError, Msg: "cannot add fields to a frozen class"}
	}
	_, hasMethod := c.lookupMethod(name)
	_, hasField := c.lookupField(name)
	exists := hasMethod || hasField
	if override && !exists {
		return &Exception{Kind: ExcFieldError, Msg: "no such field to override: " + name}
	}
	if !override && exists {
		return &Exception{Kind: ExcFieldError, Msg: "member already exists: " + name}
	}
	c.Fields[name] = initial
	return nil
}

// AddHiddenField installs a hidden field. Hidden fields live in their own
// namespace and never conflict with normal fields or methods.
func (c *Class) AddHiddenField(name string, initial Value) error {
	if c.Frozen {
		return &Exception{Kind: ExcStateError, Msg: "cannot add hidden fields to a frozen class"}
	}
	if _, ok := c.Hidden[name]; ok {
		return &Exception{Kind: ExcFieldError, Msg: "hidden field already exists: " + name}
	}
	c.Hidden[name] = initial
	return nil
}

func (c *Class) RemoveMember(name string) {
	delete(c.Methods, name)
	delete(c.Fields, name)
	delete(c.Hidden, name)
}

func (c *Class) lookupMethod(name string) (Value, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if v, ok := cls.Methods[name]; ok {
			return v, true
		}
	}
	return Null(), false
}

func (c *Class) lookupField(name string) (Value, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if v, ok := cls.Fields[name]; ok {
			return v, true
		}
	}
	return Null(), false
}

// LookupMember resolves a name as a field first, then a method, walking
// the parent chain, matching the resolution order spec.md §4.H specifies
// for `Field`/`FieldAssign`.
func (c *Class) LookupMember(name string) (Value, bool) {
	if v, ok := c.lookupField(name); ok {
		return v, true
	}
	return c.lookupMethod(name)
}

// Freeze fixes the class's instance layout. Field slot indices are
// assigned root-to-leaf (parent fields occupy the lowest indices) so that
// a subclass instance's inherited fields land at the same offsets a
// parent-typed Instance would use.
func (c *Class) Freeze() map[string]int {
	slots := make(map[string]int)
	hiddenSlots := make(map[string]int)

	var chain []*Class
	for cls := c; cls != nil; cls = cls.Parent {
		chain = append(chain, cls)
	}
	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	next := 0
	for _, cls := range chain {
		for name := range cls.Fields {
			if _, ok := slots[name]; !ok {
				slots[name] = next
				next++
			}
		}
	}
	c.InstanceSize = next

	nextHidden := 0
	for _, cls := range chain {
		for name := range cls.Hidden {
			if _, ok := hiddenSlots[name]; !ok {
				hiddenSlots[name] = nextHidden
				nextHidden++
			}
		}
	}
	c.HiddenSize = nextHidden

	c.Frozen = true
	c.fieldSlots = slots
	c.hiddenSlots = hiddenSlots
	return slots
}
