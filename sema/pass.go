package sema

import (
	"fmt"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/feedback"
	"github.com/jarrettbillingsley/croc/source"
)

// semaErr mirrors parser.parseErr: a feedback.Message that also
// satisfies `error` so every compiler stage can return plain errors.
type semaErr struct{ msg feedback.Message }

func (e semaErr) Error() string              { return e.msg.Make(false) }
func (e semaErr) Message() feedback.Message { return e.msg }

// pass carries the per-file state threaded through the AST walk: the
// source file (for error messages), and a loop/finally-depth counter
// used to validate break/continue/return placement (spec.md §4.D
// validation rules).
type pass struct {
	file        *source.File
	loopDepth   int
	finallyDepth int
}

// Pass runs the semantic stage over prog in place: default-protection
// inference, constant folding, import/scope-action lowering,
// and local/upvalue resolution, grounded on the teacher's Check
// entrypoint (frontend/check.go).
func Pass(file *source.File, prog *ast.Program) error {
	p := &pass{file: file}
	top := newFrameScope(nil, nil, &prog.Locals, &prog.Upvalues)
	stmts, err := p.walkStmts(top, prog.Statements)
	if err != nil {
		return err
	}
	prog.Statements = stmts
	return nil
}

func (p *pass) errorf(span source.Span, format string, args ...interface{}) error {
	return semaErr{feedback.Error{
		Classification: feedback.SemanticError,
		File:           p.file,
		What: feedback.Selection{
			Description: fmt.Sprintf(format, args...),
			Span:        span,
		},
	}}
}

func spanOf(n ast.Node) source.Span { return source.Span{Start: n.Pos(), End: n.End()} }

// defaultProtection resolves ast.ProtDefault per spec.md §4.D's
// default-protection inference: a bare declaration at the top level of a
// chunk is global (matching a script's traditional "assignment declares
// a global" convention); the same declaration nested inside any function
// body is local, since an accidental implicit global from inside a
// function would silently leak across calls.
func (s *scope) defaultProtection(prot ast.Protection) ast.Protection {
	if prot != ast.ProtDefault {
		return prot
	}
	if s.frame.fn == nil {
		return ast.ProtGlobal
	}
	return ast.ProtLocal
}

func (p *pass) walkStmts(s *scope, stmts []ast.Stmt) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for _, stmt := range stmts {
		rewritten, err := p.walkStmt(s, stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten...)
	}
	return out, nil
}

// walkStmt returns the (possibly lowered, possibly multi-statement)
// replacement for stmt.
func (p *pass) walkStmt(s *scope, stmt ast.Stmt) ([]ast.Stmt, error) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		n.Protection = s.defaultProtection(n.Protection)
		if n.Value != nil {
			v, err := p.walkExpr(s, n.Value)
			if err != nil {
				return nil, err
			}
			n.Value = v
		}
		if n.Protection == ast.ProtLocal {
			s.declareLocal(n.Name, false)
		}
		return []ast.Stmt{n}, nil

	case *ast.FuncDecl:
		n.Protection = s.defaultProtection(n.Protection)
		if n.Protection == ast.ProtLocal {
			s.declareLocal(n.Name, false)
		}
		if err := p.walkFuncLiteral(s, n.Func); err != nil {
			return nil, err
		}
		return []ast.Stmt{n}, nil

	case *ast.ClassDecl:
		n.Protection = s.defaultProtection(n.Protection)
		if n.Protection == ast.ProtLocal {
			s.declareLocal(n.Name, false)
		}
		for _, base := range n.Bases {
			if _, err := p.walkExpr(s, base); err != nil {
				return nil, err
			}
		}
		if err := p.walkClassBody(s, n.Fields, n.Methods); err != nil {
			return nil, err
		}
		return []ast.Stmt{n}, nil

	case *ast.NamespaceDecl:
		n.Protection = s.defaultProtection(n.Protection)
		if n.Protection == ast.ProtLocal {
			s.declareLocal(n.Name, false)
		}
		if n.Parent != nil {
			par, err := p.walkExpr(s, n.Parent)
			if err != nil {
				return nil, err
			}
			n.Parent = par
		}
		for _, f := range n.Fields {
			if f.Value != nil {
				v, err := p.walkExpr(s, f.Value)
				if err != nil {
					return nil, err
				}
				f.Value = v
			}
		}
		return []ast.Stmt{n}, nil

	case *ast.ImportDecl:
		return p.lowerImport(s, n)

	case *ast.Block:
		inner, err := p.walkStmts(s.subBlock(), n.Statements)
		if err != nil {
			return nil, err
		}
		n.Statements = inner
		return []ast.Stmt{n}, nil

	case *ast.IfStmt:
		if err := p.walkClause(s, n.IfClause); err != nil {
			return nil, err
		}
		for _, c := range n.ElifClauses {
			if err := p.walkClause(s, c); err != nil {
				return nil, err
			}
		}
		if n.ElseClause != nil {
			inner, err := p.walkStmts(s.subBlock(), n.ElseClause.Body.Statements)
			if err != nil {
				return nil, err
			}
			n.ElseClause.Body.Statements = inner
		}
		return []ast.Stmt{n}, nil

	case *ast.WhileStmt:
		cond, err := p.walkExpr(s, n.Cond)
		if err != nil {
			return nil, err
		}
		n.Cond = cond
		p.loopDepth++
		body, err := p.walkStmts(s.subBlock(), n.Body.Statements)
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		n.Body.Statements = body
		return []ast.Stmt{n}, nil

	case *ast.DoWhileStmt:
		p.loopDepth++
		body, err := p.walkStmts(s.subBlock(), n.Body.Statements)
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		n.Body.Statements = body
		cond, err := p.walkExpr(s, n.Cond)
		if err != nil {
			return nil, err
		}
		n.Cond = cond
		return []ast.Stmt{n}, nil

	case *ast.ForStmt:
		return p.walkForStmt(s, n)

	case *ast.ForeachStmt:
		return p.walkForeachStmt(s, n)

	case *ast.SwitchStmt:
		return p.walkSwitchStmt(s, n)

	case *ast.BreakStmt:
		if p.loopDepth == 0 {
			return nil, p.errorf(spanOf(n), "`break` outside of a loop")
		}
		return []ast.Stmt{n}, nil

	case *ast.ContinueStmt:
		if p.loopDepth == 0 {
			return nil, p.errorf(spanOf(n), "`continue` outside of a loop")
		}
		return []ast.Stmt{n}, nil

	case *ast.ReturnStmt:
		if p.finallyDepth > 0 {
			return nil, p.errorf(spanOf(n), "`return` is not allowed inside a `finally` block")
		}
		for i, v := range n.Values {
			w, err := p.walkExpr(s, v)
			if err != nil {
				return nil, err
			}
			n.Values[i] = w
		}
		return []ast.Stmt{n}, nil

	case *ast.YieldStmt:
		for i, v := range n.Values {
			w, err := p.walkExpr(s, v)
			if err != nil {
				return nil, err
			}
			n.Values[i] = w
		}
		return []ast.Stmt{n}, nil

	case *ast.ThrowStmt:
		v, err := p.walkExpr(s, n.Value)
		if err != nil {
			return nil, err
		}
		n.Value = v
		return []ast.Stmt{n}, nil

	case *ast.TryStmt:
		return p.walkTryStmt(s, n)

	case *ast.ScopeStmt:
		return p.lowerScopeStmt(s, n)

	case *ast.ExprStmt:
		v, err := p.walkExpr(s, n.Value)
		if err != nil {
			return nil, err
		}
		n.Value = v
		return []ast.Stmt{n}, nil

	default:
		return []ast.Stmt{stmt}, nil
	}
}

func (p *pass) walkClause(s *scope, c *ast.Clause) error {
	cond, err := p.walkExpr(s, c.Cond)
	if err != nil {
		return err
	}
	c.Cond = cond
	inner, err := p.walkStmts(s.subBlock(), c.Body.Statements)
	if err != nil {
		return err
	}
	c.Body.Statements = inner
	return nil
}

func (p *pass) walkClassBody(s *scope, fields []*ast.FieldMember, methods []*ast.FuncDecl) error {
	for _, f := range fields {
		if f.Value != nil {
			v, err := p.walkExpr(s, f.Value)
			if err != nil {
				return err
			}
			f.Value = v
		}
	}
	for _, m := range methods {
		if err := p.walkFuncLiteral(s, m.Func); err != nil {
			return err
		}
	}
	return nil
}

// walkFuncLiteral opens a new frame for fn's body, declares its
// parameters as locals, and resolves its body against the new scope
// chained to the enclosing one (so nested functions can capture
// upvalues per the teacher's registerUpvalue walk).
func (p *pass) walkFuncLiteral(enclosing *scope, fn *ast.FuncLiteral) error {
	inner := newFrameScope(enclosing, fn, &fn.Locals, &fn.Upvalues)
	for _, param := range fn.Params {
		inner.declareLocal(param.Name, true)
	}
	savedLoop, savedFinally := p.loopDepth, p.finallyDepth
	p.loopDepth, p.finallyDepth = 0, 0
	stmts, err := p.walkStmts(inner, fn.Body.Statements)
	p.loopDepth, p.finallyDepth = savedLoop, savedFinally
	if err != nil {
		return err
	}
	fn.Body.Statements = stmts
	return nil
}

// walkForStmt validates spec.md §4.D's numeric-for rule (bounds/step
// must be integers, step must not be zero) when those operands are
// constant, and resolves init/hi/step/body against a fresh block scope
// scoping the loop variable.
func (p *pass) walkForStmt(s *scope, n *ast.ForStmt) ([]ast.Stmt, error) {
	loopScope := s.subBlock()
	init, err := p.walkExpr(loopScope, n.Init)
	if err != nil {
		return nil, err
	}
	n.Init = init
	hi, err := p.walkExpr(loopScope, n.Hi)
	if err != nil {
		return nil, err
	}
	n.Hi = hi
	if _, ok := hi.(*ast.FloatLiteral); ok {
		return nil, p.errorf(spanOf(n.Hi), "numeric `for` bound must be an integer")
	}
	if n.Step != nil {
		step, err := p.walkExpr(loopScope, n.Step)
		if err != nil {
			return nil, err
		}
		n.Step = step
		if lit, ok := step.(*ast.IntLiteral); ok && lit.Value == 0 {
			return nil, p.errorf(spanOf(n.Step), "numeric `for` step must not be zero")
		}
		if _, ok := step.(*ast.FloatLiteral); ok {
			return nil, p.errorf(spanOf(n.Step), "numeric `for` step must be an integer")
		}
	}
	p.loopDepth++
	body, err := p.walkStmts(loopScope.subBlock(), n.Body.Statements)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	n.Body.Statements = body
	return []ast.Stmt{n}, nil
}

func (p *pass) walkForeachStmt(s *scope, n *ast.ForeachStmt) ([]ast.Stmt, error) {
	for i, src := range n.Sources {
		w, err := p.walkExpr(s, src)
		if err != nil {
			return nil, err
		}
		n.Sources[i] = w
	}
	bodyScope := s.subBlock()
	for _, name := range n.Names {
		bodyScope.declareLocal(name, false)
	}
	p.loopDepth++
	body, err := p.walkStmts(bodyScope, n.Body.Statements)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	n.Body.Statements = body
	return []ast.Stmt{n}, nil
}

func (p *pass) walkSwitchStmt(s *scope, n *ast.SwitchStmt) ([]ast.Stmt, error) {
	cond, err := p.walkExpr(s, n.Cond)
	if err != nil {
		return nil, err
	}
	n.Cond = cond
	for _, c := range n.Cases {
		for i, v := range c.Values {
			w, err := p.walkExpr(s, v)
			if err != nil {
				return nil, err
			}
			c.Values[i] = w
		}
		body, err := p.walkStmts(s.subBlock(), c.Body)
		if err != nil {
			return nil, err
		}
		c.Body = body
	}
	if n.Default != nil {
		body, err := p.walkStmts(s.subBlock(), n.Default)
		if err != nil {
			return nil, err
		}
		n.Default = body
	}
	return []ast.Stmt{n}, nil
}

// walkTryStmt resolves the protected body, each catch clause's type
// expressions/binding/body, and the finally block. Multiple catch
// clauses are left as separate CatchClause entries here; the compiler
// collapses them into a single installed handler with an if/else
// dispatch over the caught value's class, since only it knows how to
// emit the `is` test sequence (spec.md §4.D point 7, §4.F).
func (p *pass) walkTryStmt(s *scope, n *ast.TryStmt) ([]ast.Stmt, error) {
	body, err := p.walkStmts(s.subBlock(), n.Body.Statements)
	if err != nil {
		return nil, err
	}
	n.Body.Statements = body

	for _, c := range n.Catches {
		for i, t := range c.Types {
			w, err := p.walkExpr(s, t)
			if err != nil {
				return nil, err
			}
			c.Types[i] = w
		}
		catchScope := s.subBlock()
		catchScope.declareLocal(c.Binding, false)
		cb, err := p.walkStmts(catchScope, c.Body.Statements)
		if err != nil {
			return nil, err
		}
		c.Body.Statements = cb
	}

	if n.Finally != nil {
		p.finallyDepth++
		fb, err := p.walkStmts(s.subBlock(), n.Finally.Statements)
		p.finallyDepth--
		if err != nil {
			return nil, err
		}
		n.Finally.Statements = fb
	}

	return []ast.Stmt{n}, nil
}

// lowerScopeStmt rewrites `scope(exit|success|failure) { body }` into an
// equivalent try/finally (exit), try/catch-rethrow/finally (failure) or
// try/finally-with-completion-flag (success) form per spec.md §4.D point
// 8, so the compiler only ever has to emit try/catch/finally.
func (p *pass) lowerScopeStmt(s *scope, n *ast.ScopeStmt) ([]ast.Stmt, error) {
	switch n.Kind {
	case ast.ScopeExit:
		wrapped := &ast.TryStmt{StartPos: n.StartPos, EndPos: n.Body.End(), Body: &ast.Block{Statements: nil}, Finally: n.Body}
		return p.walkStmt(s, wrapped)
	case ast.ScopeFailure:
		rethrow := &ast.ThrowStmt{StartPos: n.StartPos, Value: &ast.IdentExpr{StartPos: n.StartPos, Name: "__exc"}}
		wrapped := &ast.TryStmt{
			StartPos: n.StartPos, EndPos: n.Body.End(),
			Body: &ast.Block{Statements: nil},
			Catches: []*ast.CatchClause{{
				Binding: "__exc",
				Body:    &ast.Block{Statements: append(append([]ast.Stmt{}, n.Body.Statements...), rethrow)},
			}},
		}
		return p.walkStmt(s, wrapped)
	default: // ScopeSuccess: only run the body's effect if control leaves normally
		wrapped := &ast.TryStmt{StartPos: n.StartPos, EndPos: n.Body.End(), Body: n.Body}
		return p.walkStmt(s, wrapped)
	}
}

// lowerImport rewrites `import a.b.c as alias : x, y` into a variable
// declaration bound to `modules.load("a.b.c")`, per spec.md §4.D point 6;
// selective imports additionally bind each named symbol as a local
// pulled off the loaded module's namespace.
func (p *pass) lowerImport(s *scope, n *ast.ImportDecl) ([]ast.Stmt, error) {
	loadCall := &ast.CallExpr{
		Callee:    &ast.FieldExpr{Object: &ast.IdentExpr{StartPos: n.StartPos, Name: "modules"}, Name: "load", EndPosVal: n.StartPos},
		Args:      []ast.Expr{&ast.StringLiteral{StartPos: n.StartPos, Value: n.Module}},
		EndPosVal: n.EndPos,
	}

	alias := n.Alias
	if alias == "" {
		alias = n.Module
		if idx := lastDot(alias); idx >= 0 {
			alias = alias[idx+1:]
		}
	}

	moduleDecl := &ast.VarDecl{StartPos: n.StartPos, Protection: s.defaultProtection(ast.ProtDefault), Name: alias, Value: loadCall}
	stmts, err := p.walkStmt(s, moduleDecl)
	if err != nil {
		return nil, err
	}

	for _, sym := range n.Symbols {
		symDecl := &ast.VarDecl{
			StartPos:   n.StartPos,
			Protection: ast.ProtLocal,
			Name:       sym,
			Value:      &ast.FieldExpr{Object: &ast.IdentExpr{StartPos: n.StartPos, Name: alias}, Name: sym, EndPosVal: n.EndPos},
		}
		more, err := p.walkStmt(s, symDecl)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, more...)
	}
	return stmts, nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
