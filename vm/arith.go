package vm

import "github.com/jarrettbillingsley/croc/value"

// binaryMetamethods maps an arithmetic/bitwise Opcode to the instance
// method name an Instance operand is dispatched to when neither operand is
// numeric, mirroring sema.MetamethodNames but keyed by Opcode since that is
// what the interpreter actually sees at this point, per spec.md §3
// "Metamethod dispatch".
var binaryMetamethods = map[Opcode]string{
	OpAdd:  "opAdd",
	OpSub:  "opSub",
	OpMul:  "opMul",
	OpDiv:  "opDiv",
	OpMod:  "opMod",
	OpAnd:  "opAnd",
	OpOr:   "opOr",
	OpXor:  "opXor",
	OpShl:  "opShl",
	OpShr:  "opShr",
	OpUShr: "opUShr",
}

var unaryMetamethods = map[Opcode]string{
	OpNeg: "opNeg",
	OpCom: "opCom",
}

// binaryArith implements the arithmetic/bitwise opcode group: numeric
// operands compute directly (int op int stays int except where a float
// operand promotes the result), Instance operands fall back to the
// matching opXxx metamethod, and anything else raises a TypeError, per
// spec.md §4.H "Arithmetic."
func (ip *Interpreter) binaryArith(t *value.Thread, op Opcode, l, r value.Value) (value.Value, *value.Exception) {
	if isBitwise(op) {
		if l.Kind() == value.KindInt && r.Kind() == value.KindInt {
			return bitwiseOp(op, l.AsInt(), r.AsInt()), nil
		}
	} else if l.IsNumeric() && r.IsNumeric() {
		return numericOp(op, l, r)
	}

	if v, e, ok := ip.tryBinaryMetamethod(t, op, l, r); ok {
		return v, e
	}

	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot perform arithmetic on a " + l.TypeName() + " and a " + r.TypeName()}
}

func isBitwise(op Opcode) bool {
	switch op {
	case OpAnd, OpOr, OpXor, OpShl, OpShr, OpUShr:
		return true
	default:
		return false
	}
}

func bitwiseOp(op Opcode, a, b int64) value.Value {
	switch op {
	case OpAnd:
		return value.Int(a & b)
	case OpOr:
		return value.Int(a | b)
	case OpXor:
		return value.Int(a ^ b)
	case OpShl:
		return value.Int(a << uint(b))
	case OpShr:
		return value.Int(a >> uint(b))
	case OpUShr:
		return value.Int(int64(uint64(a) >> uint(b)))
	default:
		return value.Null()
	}
}

func numericOp(op Opcode, l, r value.Value) (value.Value, *value.Exception) {
	bothInt := l.Kind() == value.KindInt && r.Kind() == value.KindInt
	if bothInt {
		a, b := l.AsInt(), r.AsInt()
		switch op {
		case OpAdd:
			return value.Int(a + b), nil
		case OpSub:
			return value.Int(a - b), nil
		case OpMul:
			return value.Int(a * b), nil
		case OpDiv:
			if b == 0 {
				return value.Null(), &value.Exception{Kind: value.ExcValueError, Msg: "integer division by zero"}
			}
			return value.Int(a / b), nil
		case OpMod:
			if b == 0 {
				return value.Null(), &value.Exception{Kind: value.ExcValueError, Msg: "integer modulo by zero"}
			}
			return value.Int(a % b), nil
		}
	}

	a, b := l.NumericFloat(), r.NumericFloat()
	switch op {
	case OpAdd:
		return value.Float(a + b), nil
	case OpSub:
		return value.Float(a - b), nil
	case OpMul:
		return value.Float(a * b), nil
	case OpDiv:
		return value.Float(a / b), nil
	case OpMod:
		return value.Float(floatMod(a, b)), nil
	}
	return value.Null(), nil
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

// tryBinaryMetamethod dispatches to an Instance operand's opXxx method if
// one is declared, returning ok=false if neither operand is an Instance
// with a matching method (letting the caller raise its own TypeError).
func (ip *Interpreter) tryBinaryMetamethod(t *value.Thread, op Opcode, l, r value.Value) (value.Value, *value.Exception, bool) {
	name, known := binaryMetamethods[op]
	if !known {
		return value.Null(), nil, false
	}
	if l.Kind() == value.KindInstance {
		if m, ok := l.AsInstance().LookupMethod(name); ok {
			results, err := ip.Call(t, m, []value.Value{l, r}, 1)
			return callResult(results, err)
		}
	}
	if r.Kind() == value.KindInstance {
		if m, ok := r.AsInstance().LookupMethod(name); ok {
			results, err := ip.Call(t, m, []value.Value{r, l}, 1)
			return callResult(results, err)
		}
	}
	return value.Null(), nil, false
}

func callResult(results []value.Value, err error) (value.Value, *value.Exception, bool) {
	if err != nil {
		if exc, ok := err.(*value.Exception); ok {
			return value.Null(), exc, true
		}
		return value.Null(), &value.Exception{Kind: value.ExcRuntimeError, Msg: err.Error()}, true
	}
	if len(results) == 0 {
		return value.Null(), nil, true
	}
	return results[0], nil, true
}

// unaryArith implements Neg/Com, again falling back to an Instance's
// opNeg/opCom metamethod.
func (ip *Interpreter) unaryArith(t *value.Thread, op Opcode, v value.Value) (value.Value, *value.Exception) {
	switch op {
	case OpNeg:
		if v.Kind() == value.KindInt {
			return value.Int(-v.AsInt()), nil
		}
		if v.Kind() == value.KindFloat {
			return value.Float(-v.AsFloat()), nil
		}
	case OpCom:
		if v.Kind() == value.KindInt {
			return value.Int(^v.AsInt()), nil
		}
	}

	if v.Kind() == value.KindInstance {
		if name, known := unaryMetamethods[op]; known {
			if m, ok := v.AsInstance().LookupMethod(name); ok {
				results, err := ip.Call(t, m, []value.Value{v}, 1)
				val, exc, _ := callResult(results, err)
				return val, exc
			}
		}
	}

	verb := "negate"
	if op == OpCom {
		verb = "complement"
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot " + verb + " a " + v.TypeName()}
}

// compare implements the relational (<, <=, >, >=) comparison protocol:
// numeric operands compare directly, strings compare lexicographically by
// codepoint, Instance operands fall back to opCmp (three-way) and the
// result is compared against zero, per spec.md §4.H "Comparisons."
func (ip *Interpreter) compare(t *value.Thread, code CmpCode, l, r value.Value) (bool, *value.Exception) {
	if l.IsNumeric() && r.IsNumeric() {
		a, b := l.NumericFloat(), r.NumericFloat()
		return evalCmp(code, cmpFloat(a, b)), nil
	}
	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		return evalCmp(code, cmpString(l.AsString().Bytes, r.AsString().Bytes)), nil
	}
	n, exc := ip.cmp3(t, l, r)
	if exc != nil {
		return false, exc
	}
	return evalCmp(code, n), nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func evalCmp(code CmpCode, n int) bool {
	switch code {
	case CmpLT:
		return n < 0
	case CmpLE:
		return n <= 0
	case CmpGT:
		return n > 0
	case CmpGE:
		return n >= 0
	default:
		return false
	}
}

// cmp3 implements the three-way comparison primitive backing both opCmp3
// (the `<=>` operator, spec.md's supplemented "three-way comparison"
// feature) and the relational operators' Instance fallback.
func (ip *Interpreter) cmp3(t *value.Thread, l, r value.Value) (int, *value.Exception) {
	if l.IsNumeric() && r.IsNumeric() {
		return cmpFloat(l.NumericFloat(), r.NumericFloat()), nil
	}
	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		return cmpString(l.AsString().Bytes, r.AsString().Bytes), nil
	}
	if l.Kind() == value.KindInstance {
		if m, ok := l.AsInstance().LookupMethod("opCmp"); ok {
			results, err := ip.Call(t, m, []value.Value{l, r}, 1)
			v, exc, _ := callResult(results, err)
			if exc != nil {
				return 0, exc
			}
			return int(v.AsInt()), nil
		}
	}
	return 0, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot compare a " + l.TypeName() + " and a " + r.TypeName()}
}

// equals implements the full "==" protocol: RawEquals for value kinds and
// identity-comparable reference kinds, opEquals metamethod fallback for
// Instances, per spec.md §4.H.
func (ip *Interpreter) equals(t *value.Thread, l, r value.Value) (bool, *value.Exception) {
	if l.Kind() == value.KindInstance && r.Kind() == value.KindInstance {
		if m, ok := l.AsInstance().LookupMethod("opEquals"); ok {
			results, err := ip.Call(t, m, []value.Value{l, r}, 1)
			v, exc, _ := callResult(results, err)
			if exc != nil {
				return false, exc
			}
			return v.Truthy(), nil
		}
	}
	return value.RawEquals(l, r), nil
}

// identical implements the `is` operator: reference kinds compare by
// pointer identity, value kinds fall back to RawEquals (ints/bools/floats
// have no separate identity from their value), per spec.md §4.H.
func identical(l, r value.Value) bool {
	return value.RawEquals(l, r)
}

// contains implements the `in` operator over Array/Table/String/Namespace
// containers, with an opIn metamethod fallback for Instances.
func (ip *Interpreter) contains(t *value.Thread, needle, haystack value.Value) (bool, *value.Exception) {
	switch haystack.Kind() {
	case value.KindArray:
		arr := haystack.AsArray()
		for i := 0; i < arr.Len(); i++ {
			if eq, exc := ip.equals(t, needle, arr.Get(i)); exc != nil {
				return false, exc
			} else if eq {
				return true, nil
			}
		}
		return false, nil
	case value.KindTable:
		return haystack.AsTable().Has(needle), nil
	case value.KindString:
		if needle.Kind() != value.KindString {
			return false, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot search a string for a " + needle.TypeName()}
		}
		return stringContains(haystack.AsString().Bytes, needle.AsString().Bytes), nil
	case value.KindNamespace:
		if needle.Kind() != value.KindString {
			return false, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot search a namespace for a " + needle.TypeName()}
		}
		_, ok := haystack.AsNamespace().Get(needle.AsString().Bytes)
		return ok, nil
	case value.KindInstance:
		if m, ok := haystack.AsInstance().LookupMethod("opIn"); ok {
			results, err := ip.Call(t, m, []value.Value{haystack, needle}, 1)
			v, exc, _ := callResult(results, err)
			if exc != nil {
				return false, exc
			}
			return v.Truthy(), nil
		}
	}
	return false, &value.Exception{Kind: value.ExcTypeError, Msg: "cannot use 'in' on a " + haystack.TypeName()}
}

func stringContains(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
