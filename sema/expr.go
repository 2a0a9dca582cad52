package sema

import "github.com/jarrettbillingsley/croc/ast"

// walkExpr resolves identifiers, recurses into every subexpression, and
// applies constant folding to binary/unary expressions over literal
// operands, returning the (possibly folded/rewritten) replacement node.
func (p *pass) walkExpr(s *scope, expr ast.Expr) (ast.Expr, error) {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		kind, idx := s.resolve(e.Name)
		e.Ref, e.Index = kind, idx
		return e, nil

	case *ast.ThisExpr, *ast.SuperExpr, *ast.VarargExpr,
		*ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral,
		*ast.BoolLiteral, *ast.NullLiteral:
		return e, nil

	case *ast.BinaryExpr:
		left, err := p.walkExpr(s, e.Left)
		if err != nil {
			return nil, err
		}
		e.Left = left
		right, err := p.walkExpr(s, e.Right)
		if err != nil {
			return nil, err
		}
		e.Right = right
		folded, ferr := foldBinary(e)
		if ferr != nil {
			return nil, p.errorf(spanOf(e), "%s", ferr.Msg)
		}
		if folded != nil {
			return folded, nil
		}
		return e, nil

	case *ast.RangeExpr:
		lo, err := p.walkExpr(s, e.Lo)
		if err != nil {
			return nil, err
		}
		e.Lo = lo
		hi, err := p.walkExpr(s, e.Hi)
		if err != nil {
			return nil, err
		}
		e.Hi = hi
		return e, nil

	case *ast.UnaryExpr:
		operand, err := p.walkExpr(s, e.Operand)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		if folded := foldUnary(e); folded != nil {
			return folded, nil
		}
		return e, nil

	case *ast.TernaryExpr:
		cond, err := p.walkExpr(s, e.Cond)
		if err != nil {
			return nil, err
		}
		e.Cond = cond
		then, err := p.walkExpr(s, e.Then)
		if err != nil {
			return nil, err
		}
		e.Then = then
		els, err := p.walkExpr(s, e.Else)
		if err != nil {
			return nil, err
		}
		e.Else = els
		if lit, ok := e.Cond.(*ast.BoolLiteral); ok {
			if lit.Value {
				return e.Then, nil
			}
			return e.Else, nil
		}
		return e, nil

	case *ast.IncDecExpr:
		target, err := p.walkExpr(s, e.Target)
		if err != nil {
			return nil, err
		}
		e.Target = target
		return e, nil

	case *ast.AssignExpr:
		for i, t := range e.Targets {
			w, err := p.walkExpr(s, t)
			if err != nil {
				return nil, err
			}
			e.Targets[i] = w
		}
		for i, v := range e.Values {
			w, err := p.walkExpr(s, v)
			if err != nil {
				return nil, err
			}
			e.Values[i] = w
		}
		return e, nil

	case *ast.ArrayLiteral:
		for i, it := range e.Items {
			w, err := p.walkExpr(s, it)
			if err != nil {
				return nil, err
			}
			e.Items[i] = w
		}
		return e, nil

	case *ast.TableLiteral:
		for i, ent := range e.Entries {
			if ent.Key != nil {
				k, err := p.walkExpr(s, ent.Key)
				if err != nil {
					return nil, err
				}
				e.Entries[i].Key = k
			}
			v, err := p.walkExpr(s, ent.Value)
			if err != nil {
				return nil, err
			}
			e.Entries[i].Value = v
		}
		return e, nil

	case *ast.Comprehension:
		return p.walkComprehension(s, e)

	case *ast.FuncLiteral:
		if err := p.walkFuncLiteral(s, e); err != nil {
			return nil, err
		}
		return e, nil

	case *ast.IndexExpr:
		obj, err := p.walkExpr(s, e.Object)
		if err != nil {
			return nil, err
		}
		e.Object = obj
		idx, err := p.walkExpr(s, e.Index)
		if err != nil {
			return nil, err
		}
		e.Index = idx
		return e, nil

	case *ast.FieldExpr:
		obj, err := p.walkExpr(s, e.Object)
		if err != nil {
			return nil, err
		}
		e.Object = obj
		return e, nil

	case *ast.SliceExpr:
		obj, err := p.walkExpr(s, e.Object)
		if err != nil {
			return nil, err
		}
		e.Object = obj
		if e.Lo != nil {
			lo, err := p.walkExpr(s, e.Lo)
			if err != nil {
				return nil, err
			}
			e.Lo = lo
		}
		if e.Hi != nil {
			hi, err := p.walkExpr(s, e.Hi)
			if err != nil {
				return nil, err
			}
			e.Hi = hi
		}
		return e, nil

	case *ast.CallExpr:
		callee, err := p.walkExpr(s, e.Callee)
		if err != nil {
			return nil, err
		}
		e.Callee = callee
		for i, a := range e.Args {
			w, err := p.walkExpr(s, a)
			if err != nil {
				return nil, err
			}
			e.Args[i] = w
		}
		return e, nil

	case *ast.YieldExpr:
		for i, v := range e.Values {
			w, err := p.walkExpr(s, v)
			if err != nil {
				return nil, err
			}
			e.Values[i] = w
		}
		return e, nil

	case *ast.ClassLiteral:
		for i, base := range e.Bases {
			w, err := p.walkExpr(s, base)
			if err != nil {
				return nil, err
			}
			e.Bases[i] = w
		}
		if err := p.walkClassBody(s, e.Fields, e.Methods); err != nil {
			return nil, err
		}
		return e, nil

	case *ast.NamespaceLiteral:
		if e.Parent != nil {
			par, err := p.walkExpr(s, e.Parent)
			if err != nil {
				return nil, err
			}
			e.Parent = par
		}
		for _, f := range e.Fields {
			if f.Value != nil {
				v, err := p.walkExpr(s, f.Value)
				if err != nil {
					return nil, err
				}
				f.Value = v
			}
		}
		return e, nil

	default:
		return e, nil
	}
}

// walkComprehension resolves a comprehension's sources/body in a fresh
// block scope that declares its iteration names as locals, matching the
// implicit foreach loop spec.md §4.C describes it compiling to.
func (p *pass) walkComprehension(s *scope, e *ast.Comprehension) (ast.Expr, error) {
	for i, src := range e.Sources {
		w, err := p.walkExpr(s, src)
		if err != nil {
			return nil, err
		}
		e.Sources[i] = w
	}
	inner := s.subBlock()
	for _, name := range e.Names {
		inner.declareLocal(name, false)
	}
	if e.KeyExpr != nil {
		k, err := p.walkExpr(inner, e.KeyExpr)
		if err != nil {
			return nil, err
		}
		e.KeyExpr = k
	}
	v, err := p.walkExpr(inner, e.ValueExpr)
	if err != nil {
		return nil, err
	}
	e.ValueExpr = v
	if e.Cond != nil {
		c, err := p.walkExpr(inner, e.Cond)
		if err != nil {
			return nil, err
		}
		e.Cond = c
	}
	if e.Nested != nil {
		nestedExpr, err := p.walkComprehension(inner, e.Nested)
		if err != nil {
			return nil, err
		}
		e.Nested = nestedExpr.(*ast.Comprehension)
	}
	return e, nil
}
