// Package value implements Croc's managed object model: the tagged Value
// union and every heap-allocated object kind it can reference (strings,
// tables, arrays, memblocks, functions, funcdefs, classes, instances,
// namespaces, threads, upvalues and weakrefs), plus the per-VM state that
// owns them (the string intern table, the weakref table and the registry
// of standard exception classes).
package value

import "fmt"

// Kind identifies which arm of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindNativeObj

	// Reference kinds. Values of these kinds carry a pointer into a
	// VM-owned heap object in the ref field; equality for these kinds is
	// identity (strings are the exception in appearance only: interning
	// makes pointer-identity and content-identity coincide).
	KindString
	KindWeakref
	KindTable
	KindNamespace
	KindArray
	KindMemblock
	KindFunction
	KindFuncdef
	KindClass
	KindInstance
	KindThread
	KindUpval
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindNativeObj:
		return "nativeobj"
	case KindString:
		return "string"
	case KindWeakref:
		return "weakref"
	case KindTable:
		return "table"
	case KindNamespace:
		return "namespace"
	case KindArray:
		return "array"
	case KindMemblock:
		return "memblock"
	case KindFunction:
		return "function"
	case KindFuncdef:
		return "funcdef"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindThread:
		return "thread"
	case KindUpval:
		return "upval"
	default:
		return "unknown"
	}
}

// Value is Croc's tagged union. Value kinds (null/bool/int/float/nativeobj)
// are stored inline in i/f/ref; reference kinds point at a VM-owned heap
// object via ref. Value is comparable so it can be used directly as a Table
// key (every ref field held is itself a pointer, hence comparable).
type Value struct {
	kind Kind
	i    int64
	f    float64
	ref  interface{}
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool, i: 0}
}

func Int(n int64) Value { return Value{kind: KindInt, i: n} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func NativeObj(p interface{}) Value  { return Value{kind: KindNativeObj, ref: p} }
func StringVal(s *String) Value      { return Value{kind: KindString, ref: s} }
func WeakrefVal(w *Weakref) Value    { return Value{kind: KindWeakref, ref: w} }
func TableVal(t *Table) Value        { return Value{kind: KindTable, ref: t} }
func NamespaceVal(n *Namespace) Value { return Value{kind: KindNamespace, ref: n} }
func ArrayVal(a *Array) Value        { return Value{kind: KindArray, ref: a} }
func MemblockVal(m *Memblock) Value  { return Value{kind: KindMemblock, ref: m} }
func FunctionVal(fn *Function) Value { return Value{kind: KindFunction, ref: fn} }
func FuncdefVal(fd *Funcdef) Value   { return Value{kind: KindFuncdef, ref: fd} }
func ClassVal(c *Class) Value        { return Value{kind: KindClass, ref: c} }
func InstanceVal(o *Instance) Value  { return Value{kind: KindInstance, ref: o} }
func ThreadVal(t *Thread) Value      { return Value{kind: KindThread, ref: t} }
func UpvalVal(u *Upval) Value        { return Value{kind: KindUpval, ref: u} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsFalsy() bool {
	return v.kind == KindNull || (v.kind == KindBool && v.i == 0)
}
func (v Value) Truthy() bool { return !v.IsFalsy() }

func (v Value) AsBool() bool       { return v.i != 0 }
func (v Value) AsInt() int64       { return v.i }
func (v Value) AsFloat() float64   { return v.f }
func (v Value) AsNativeObj() interface{} { return v.ref }
func (v Value) AsString() *String   { return v.ref.(*String) }
func (v Value) AsWeakref() *Weakref { return v.ref.(*Weakref) }
func (v Value) AsTable() *Table     { return v.ref.(*Table) }
func (v Value) AsNamespace() *Namespace { return v.ref.(*Namespace) }
func (v Value) AsArray() *Array     { return v.ref.(*Array) }
func (v Value) AsMemblock() *Memblock { return v.ref.(*Memblock) }
func (v Value) AsFunction() *Function { return v.ref.(*Function) }
func (v Value) AsFuncdef() *Funcdef { return v.ref.(*Funcdef) }
func (v Value) AsClass() *Class     { return v.ref.(*Class) }
func (v Value) AsInstance() *Instance { return v.ref.(*Instance) }
func (v Value) AsThread() *Thread   { return v.ref.(*Thread) }
func (v Value) AsUpval() *Upval     { return v.ref.(*Upval) }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// NumericFloat returns v's numeric value promoted to float64, for mixed
// arithmetic. Panics if v is not numeric.
func (v Value) NumericFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// RawEquals implements structural equality for value kinds and numeric
// cross-type comparison, identity for reference kinds. This is the
// "==" used outside of any opEquals metamethod dispatch (see vm package
// for the full comparison protocol including metamethods).
func RawEquals(a, b Value) bool {
	if a.kind == KindInt && b.kind == KindFloat {
		return float64(a.i) == b.f
	}
	if a.kind == KindFloat && b.kind == KindInt {
		return a.f == float64(b.i)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.i == b.i
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		// Interning makes pointer identity sufficient.
		return a.ref.(*String) == b.ref.(*String)
	default:
		return a.ref == b.ref
	}
}

// TypeName returns the language-level type name for v, used in TypeError
// messages and by the "typeof"-style reflective primitives.
func (v Value) TypeName() string { return v.kind.String() }

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.AsString().Bytes
	default:
		return fmt.Sprintf("%s: 0x%x", v.kind, v.ref)
	}
}
