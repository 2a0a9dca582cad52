package vm

import "github.com/jarrettbillingsley/croc/value"

// execClosure implements Closure/ClosureWithEnv: instantiate a Function
// over one of the current Funcdef's Inner prototypes, resolving each of
// its declared upvalues against either an open slot on the current frame
// (IsParentLocal) or one of the current function's own already-captured
// upvalues, per spec.md §4.E "Upvalues." ClosureWithEnv additionally takes
// an explicit Namespace operand instead of inheriting the enclosing
// function's environment, used for namespace-member function literals.
func (ip *Interpreter) execClosure(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int, withEnv bool) *value.Exception {
	idx := int(ip.nextWord(act, fd))
	inner := fd.Inner[idx]

	env := act.Func.Env
	if withEnv {
		envW := ip.nextWord(act, fd)
		envVal := ip.rk(t, act, fd, envW)
		if envVal.Kind() != value.KindNamespace {
			return &value.Exception{Kind: value.ExcTypeError, Msg: "closure environment must be a namespace", Location: posOf(fd, act)}
		}
		env = envVal.AsNamespace()
	}

	upvals := make([]*value.Upval, len(inner.Upvals))
	for i, ud := range inner.Upvals {
		if ud.IsParentLocal {
			upvals[i] = t.OpenUpvalFor(act.Base + ud.Index)
		} else {
			upvals[i] = act.Func.ScriptUpvals[ud.Index]
		}
	}

	if inner.Cached != nil && len(upvals) == 0 {
		ip.setReg(t, act, rd, value.FunctionVal(inner.Cached))
		return nil
	}

	fn := value.NewScriptFunction(env, inner, upvals)
	if len(upvals) == 0 {
		inner.Cached = fn
	}
	ip.setReg(t, act, rd, value.FunctionVal(fn))
	return nil
}

// execClass implements the Class instruction: allocate an empty, unfrozen
// Class with the given name and optional parent (resolved from a
// register-or-constant operand, with NoneReg meaning "no parent"). The
// class's methods and fields are installed afterwards by a run of
// AddMember instructions, and it is sealed by a trailing FreezeClass, per
// spec.md §4.A/§4.E.
func (ip *Interpreter) execClass(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	nameIdx := int(ip.nextWord(act, fd))
	parentW := ip.nextWord(act, fd)

	name := fd.Constants[nameIdx].AsString()

	var parent *value.Class
	pidx, isConst := DecodeRK(parentW)
	if isConst || pidx != NoneReg {
		var pv value.Value
		if isConst {
			pv = fd.Constants[pidx]
		} else {
			pv = ip.getReg(t, act, pidx)
		}
		if pv.Kind() != value.KindClass {
			return &value.Exception{Kind: value.ExcTypeError, Msg: "base class expression did not evaluate to a class", Location: posOf(fd, act)}
		}
		parent = pv.AsClass()
	}

	cls := value.NewClass(name, parent)
	ip.setReg(t, act, rd, value.ClassVal(cls))
	return nil
}

// execNamespace implements Namespace/NamespaceNP: allocate a namespace
// with the given name, optionally nested under a parent namespace operand
// (NamespaceNP omits the parent, for the top-level `namespace` declaration
// form), per spec.md §3/§4.A.
func (ip *Interpreter) execNamespace(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int, noParent bool) *value.Exception {
	nameIdx := int(ip.nextWord(act, fd))
	name := fd.Constants[nameIdx].AsString()

	var parent *value.Namespace
	if !noParent {
		parentW := ip.nextWord(act, fd)
		pv := ip.rk(t, act, fd, parentW)
		if pv.Kind() != value.KindNamespace {
			return &value.Exception{Kind: value.ExcTypeError, Msg: "enclosing namespace expression did not evaluate to a namespace", Location: posOf(fd, act)}
		}
		parent = pv.AsNamespace()
	}

	ns := value.NewNamespace(name, parent)
	ip.setReg(t, act, rd, value.NamespaceVal(ns))
	return nil
}

// execAddMember implements AddMember: install a method, field or hidden
// field onto the Class value in register rd, per the override-conflict
// rules spec.md §4.A lays out for class-body declarations.
func (ip *Interpreter) execAddMember(t *value.Thread, act *value.ActRecord, fd *value.Funcdef, rd int) *value.Exception {
	kind := MemberKind(ip.nextWord(act, fd))
	nameIdx := int(ip.nextWord(act, fd))
	valW := ip.nextWord(act, fd)
	overrideW := ip.nextWord(act, fd)

	name := fd.Constants[nameIdx].AsString().Bytes
	val := ip.rk(t, act, fd, valW)
	override := overrideW != 0

	cls := ip.getReg(t, act, rd).AsClass()

	var err error
	switch kind {
	case MemberField:
		err = cls.AddField(name, val, override)
	case MemberMethod:
		err = cls.AddMethod(name, val, override)
	case MemberHidden:
		err = cls.AddHiddenField(name, val)
	}
	if err != nil {
		if exc, ok := err.(*value.Exception); ok {
			exc.Location = posOf(fd, act)
			return exc
		}
		return &value.Exception{Kind: value.ExcRuntimeError, Msg: err.Error(), Location: posOf(fd, act)}
	}
	return nil
}

// superOf implements the `super` prefix: it resolves to the Class one
// level up an Instance's or Class's ancestry chain, against which a Field
// lookup finds the overridden member directly rather than through virtual
// dispatch, per spec.md §4.A's single-inheritance model.
func (ip *Interpreter) superOf(v value.Value, fd *value.Funcdef, act *value.ActRecord) (value.Value, *value.Exception) {
	switch v.Kind() {
	case value.KindInstance:
		parent := v.AsInstance().Class.Parent
		if parent == nil {
			return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "class has no superclass", Location: posOf(fd, act)}
		}
		return value.ClassVal(parent), nil
	case value.KindClass:
		parent := v.AsClass().Parent
		if parent == nil {
			return value.Null(), &value.Exception{Kind: value.ExcFieldError, Msg: "class has no superclass", Location: posOf(fd, act)}
		}
		return value.ClassVal(parent), nil
	}
	return value.Null(), &value.Exception{Kind: value.ExcTypeError, Msg: "cannot take the superclass of a " + v.TypeName(), Location: posOf(fd, act)}
}
