package vm

import (
	"strings"

	"github.com/jarrettbillingsley/croc/value"
)

// index implements `obj[idx]` over Array/Table/String/Namespace, with an
// opIndex metamethod fallback for Instances, per spec.md §4.H "Indexing."
func (ip *Interpreter) index(t *value.Thread, obj, idx value.Value, act *value.ActRecord) (value.Value, *value.Exception) {
	switch obj.Kind() {
	case value.KindArray:
		if idx.Kind() != value.KindInt {
			return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "array index must be an int"}
		}
		arr := obj.AsArray()
		i := int(idx.AsInt())
		n := arr.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return value.Null(), &value.Exception{Kind: value.ExcBoundsError, Msg: "array index out of bounds"}
		}
		return arr.Get(i), nil
	case value.KindTable:
		if idx.IsNull() {
			return value.Null(), &value.Exception{Kind: value.ExcValueError, Msg: "table key cannot be null"}
		}
		return obj.AsTable().Get(idx), nil
	case value.KindString:
		if idx.Kind() != value.KindInt {
			return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "string index must be an int"}
		}
		s := obj.AsString()
		i := int(idx.AsInt())
		if i < 0 {
			i += s.Length
		}
		if i < 0 || i >= s.Length {
			return value.Null(), &value.Exception{Kind: value.ExcBoundsError, Msg: "string index out of bounds"}
		}
		return value.Int(int64(s.CharAt(i))), nil
	case value.KindNamespace:
		if idx.Kind() != value.KindString {
			return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "namespace index must be a string"}
		}
		v, ok := obj.AsNamespace().Get(idx.AsString().Bytes)
		if !ok {
			return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "no such member: " + idx.AsString().Bytes}
		}
		return v, nil
	case value.KindInstance:
		if m, ok := obj.AsInstance().LookupMethod("opIndex"); ok {
			results, err := ip.Call(t, m, []value.Value{obj, idx}, 1)
			v, exc, _ := callResult(results, err)
			return v, exc
		}
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot index a " + obj.TypeName()}
}

func (ip *Interpreter) indexAssign(t *value.Thread, obj, idx, v value.Value, act *value.ActRecord) *value.Exception {
	switch obj.Kind() {
	case value.KindArray:
		if idx.Kind() != value.KindInt {
			return &value.Exception{Kind: value.ExcTypeError, Msg: "array index must be an int"}
		}
		arr := obj.AsArray()
		i := int(idx.AsInt())
		n := arr.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return &value.Exception{Kind: value.ExcBoundsError, Msg: "array index out of bounds"}
		}
		arr.Set(i, v)
		return nil
	case value.KindTable:
		if idx.IsNull() {
			return &value.Exception{Kind: value.ExcValueError, Msg: "table key cannot be null"}
		}
		obj.AsTable().Set(idx, v)
		return nil
	case value.KindNamespace:
		if idx.Kind() != value.KindString {
			return &value.Exception{Kind: value.ExcTypeError, Msg: "namespace index must be a string"}
		}
		obj.AsNamespace().Set(idx.AsString().Bytes, v)
		return nil
	case value.KindInstance:
		if m, ok := obj.AsInstance().LookupMethod("opIndexAssign"); ok {
			_, err := ip.Call(t, m, []value.Value{obj, idx, v}, 0)
			if err != nil {
				_, exc, _ := callResult(nil, err)
				return exc
			}
			return nil
		}
	}
	return &value.Exception{Kind: value.ExcTypeError, Msg: "cannot index-assign a " + obj.TypeName()}
}

// field implements `obj.name` over Instance (field-then-method order) and
// Namespace/Class, per spec.md §4.H "Field access."
func (ip *Interpreter) field(t *value.Thread, obj value.Value, name string, act *value.ActRecord) (value.Value, *value.Exception) {
	switch obj.Kind() {
	case value.KindInstance:
		inst := obj.AsInstance()
		if v, ok := inst.GetField(name); ok {
			return v, nil
		}
		if v, ok := inst.LookupMethod(name); ok {
			return v, nil
		}
		return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "no such field or method: " + name}
	case value.KindClass:
		if v, ok := obj.AsClass().LookupMember(name); ok {
			return v, nil
		}
		return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "no such member: " + name}
	case value.KindNamespace:
		if v, ok := obj.AsNamespace().Get(name); ok {
			return v, nil
		}
		return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "no such member: " + name}
	case value.KindThread:
		return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "threads have no fields"}
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot access a field of a " + obj.TypeName()}
}

func (ip *Interpreter) fieldAssign(t *value.Thread, obj value.Value, name string, v value.Value, act *value.ActRecord) *value.Exception {
	switch obj.Kind() {
	case value.KindInstance:
		if obj.AsInstance().SetField(name, v) {
			return nil
		}
		return &value.Exception{Kind: value.ExcFieldError, Msg: "no such field: " + name}
	case value.KindNamespace:
		obj.AsNamespace().Set(name, v)
		return nil
	}
	return &value.Exception{Kind: value.ExcTypeError, Msg: "cannot assign a field of a " + obj.TypeName()}
}

// slice implements `obj[lo .. hi]` over Array/String, nil bounds meaning
// "start"/"end" respectively, per spec.md §4.H "Slicing."
func (ip *Interpreter) slice(t *value.Thread, obj value.Value, lo, hi *int64, act *value.ActRecord) (value.Value, *value.Exception) {
	switch obj.Kind() {
	case value.KindArray:
		arr := obj.AsArray()
		l, h := normalizeSlice(lo, hi, arr.Len())
		return value.ArrayVal(arr.Slice(l, h)), nil
	case value.KindString:
		s := obj.AsString()
		l, h := normalizeSlice(lo, hi, s.Length)
		return value.StringVal(value.NewString(t.VM, s.Slice(l, h))), nil
	case value.KindInstance:
		if m, ok := obj.AsInstance().LookupMethod("opSlice"); ok {
			loV, hiV := value.Null(), value.Null()
			if lo != nil {
				loV = value.Int(*lo)
			}
			if hi != nil {
				hiV = value.Int(*hi)
			}
			results, err := ip.Call(t, m, []value.Value{obj, loV, hiV}, 1)
			v, exc, _ := callResult(results, err)
			return v, exc
		}
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot slice a " + obj.TypeName()}
}

func (ip *Interpreter) sliceAssign(t *value.Thread, obj value.Value, lo, hi *int64, v value.Value, act *value.ActRecord) *value.Exception {
	if obj.Kind() != value.KindArray {
		return &value.Exception{Kind: value.ExcTypeError, Msg: "cannot slice-assign a " + obj.TypeName()}
	}
	if v.Kind() != value.KindArray {
		return &value.Exception{Kind: value.ExcTypeError, Msg: "can only slice-assign an array"}
	}
	arr := obj.AsArray()
	l, h := normalizeSlice(lo, hi, arr.Len())
	src := v.AsArray()
	if h-l != src.Len() {
		return &value.Exception{Kind: value.ExcValueError, Msg: "slice assignment length mismatch"}
	}
	for i := 0; i < src.Len(); i++ {
		arr.Set(l+i, src.Get(i))
	}
	return nil
}

// length implements the unary `#` operator, with opLength metamethod
// fallback for Instances, per spec.md §4.H.
func (ip *Interpreter) length(t *value.Thread, v value.Value, act *value.ActRecord) (value.Value, *value.Exception) {
	switch v.Kind() {
	case value.KindArray:
		return value.Int(int64(v.AsArray().Len())), nil
	case value.KindString:
		return value.Int(int64(v.AsString().Length)), nil
	case value.KindTable:
		return value.Int(int64(v.AsTable().Len())), nil
	case value.KindMemblock:
		return value.Int(int64(v.AsMemblock().Len())), nil
	case value.KindInstance:
		if m, ok := v.AsInstance().LookupMethod("opLength"); ok {
			results, err := ip.Call(t, m, []value.Value{v}, 1)
			r, exc, _ := callResult(results, err)
			return r, exc
		}
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot take the length of a " + v.TypeName()}
}

// concat implements string/array concatenation: if every operand is a
// String the result is a String; if every operand is an Array the result
// is an Array. Otherwise, if the first operand is an Instance with an
// opCat method, that method is called with the remaining operands; a mix
// of Arrays and other values is not concatenated, later operands'
// metamethods (opCat or opCat_r) are not consulted, and every other case
// raises a TypeError.
func (ip *Interpreter) concat(t *value.Thread, operands []value.Value) (value.Value, *value.Exception) {
	if len(operands) == 0 {
		return value.StringVal(value.NewString(t.VM, "")), nil
	}

	allStrings := true
	allArrayish := true
	for _, v := range operands {
		if v.Kind() != value.KindString {
			allStrings = false
		}
		if v.Kind() != value.KindArray {
			allArrayish = false
		}
	}

	if allStrings {
		var b strings.Builder
		for _, v := range operands {
			b.WriteString(v.AsString().Bytes)
		}
		return value.StringVal(value.NewString(t.VM, b.String())), nil
	}

	if allArrayish {
		var out []value.Value
		for _, v := range operands {
			out = append(out, v.AsArray().Items...)
		}
		return value.ArrayVal(value.NewArrayFrom(out)), nil
	}

	if operands[0].Kind() == value.KindInstance {
		if m, ok := operands[0].AsInstance().LookupMethod("opCat"); ok {
			args := append([]value.Value{operands[0]}, operands[1:]...)
			results, err := ip.Call(t, m, args, 1)
			v, exc, _ := callResult(results, err)
			return v, exc
		}
	}

	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot concatenate these values"}
}
