package parser

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/lexer"
	"github.com/jarrettbillingsley/croc/source"
)

func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Symbol {
	case lexer.AtSymbol:
		return p.parseDecoratedDecl()
	case lexer.LBraceSymbol:
		return p.parseBlock()
	case lexer.KwLocal, lexer.KwGlobal:
		return p.parseVarOrDeclStmt(tok.Symbol)
	case lexer.KwFunction:
		return p.parseFuncDecl(ast.ProtDefault, tok.PreComment)
	case lexer.KwClass:
		return p.parseClassDecl(ast.ProtDefault, tok.PreComment)
	case lexer.KwNamespace:
		return p.parseNamespaceDecl(ast.ProtDefault, tok.PreComment)
	case lexer.KwImport:
		return p.parseImportDecl()
	case lexer.KwIf:
		return p.parseIfStmt()
	case lexer.KwWhile:
		return p.parseWhileStmt()
	case lexer.KwDo:
		return p.parseDoWhileStmt()
	case lexer.KwFor:
		return p.parseForStmt()
	case lexer.KwForeach:
		return p.parseForeachStmt()
	case lexer.KwSwitch:
		return p.parseSwitchStmt()
	case lexer.KwBreak:
		p.next()
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{StartPos: tok.Span.Start}, nil
	case lexer.KwContinue:
		p.next()
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{StartPos: tok.Span.Start}, nil
	case lexer.KwReturn:
		return p.parseReturnStmt()
	case lexer.KwYield:
		return p.parseYieldStmt()
	case lexer.KwThrow:
		return p.parseThrowStmt()
	case lexer.KwTry:
		return p.parseTryStmt()
	case lexer.KwScope:
		return p.parseScopeStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseDecoratedDecl parses one or more leading `@expr` decorators
// followed by a function/class/namespace/variable declaration and
// attaches them to it (spec.md §4.C decorators); the compiler's
// applyDecorators rewrites `@dec decl` into `dec(decl)` reassigned back to
// decl's name.
func (p *Parser) parseDecoratedDecl() (ast.Stmt, error) {
	var decorators []*ast.Decorator
	var leadDoc string
	first := true
	for p.at(lexer.AtSymbol) {
		atTok, _ := p.next()
		if first {
			leadDoc = atTok.PreComment
			first = false
		}
		target, err := p.parseExpression(precCall)
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, &ast.Decorator{StartPos: atTok.Span.Start, Target: target})
	}
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *ast.FuncDecl:
		s.Decorators = decorators
		if s.Doc == "" {
			s.Doc = leadDoc
		}
	case *ast.ClassDecl:
		s.Decorators = decorators
		if s.Doc == "" {
			s.Doc = leadDoc
		}
	case *ast.NamespaceDecl:
		s.Decorators = decorators
		if s.Doc == "" {
			s.Doc = leadDoc
		}
	case *ast.VarDecl:
		s.Decorators = decorators
		if s.Doc == "" {
			s.Doc = leadDoc
		}
	default:
		return nil, p.errorf(source.Span{Start: stmt.Pos(), End: stmt.End()},
			"decorators can only be applied to a function, class, namespace or variable declaration")
	}
	return stmt, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expect(lexer.LBraceSymbol)
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lexer.RBraceSymbol) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	end, err := p.expect(lexer.RBraceSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.Block{StartPos: start.Span.Start, EndPos: end.Span.End, Statements: stmts}, nil
}

func (p *Parser) parseProtection() (ast.Protection, source.Pos, error) {
	tok, err := p.peek()
	if err != nil {
		return ast.ProtDefault, source.Pos{}, err
	}
	switch tok.Symbol {
	case lexer.KwLocal:
		p.next()
		return ast.ProtLocal, tok.Span.Start, nil
	case lexer.KwGlobal:
		p.next()
		return ast.ProtGlobal, tok.Span.Start, nil
	default:
		return ast.ProtDefault, tok.Span.Start, nil
	}
}

// parseVarOrDeclStmt dispatches a `local`/`global` prefix to a variable,
// function, class or namespace declaration. The leading token's
// PreComment is captured here, before parseProtection consumes it, since
// `local`/`global` (not `function`/`class`/`namespace`) is the true start
// of the declaration a doc comment attaches to.
func (p *Parser) parseVarOrDeclStmt(lead lexer.Symbol) (ast.Stmt, error) {
	leadTok, err := p.peek()
	if err != nil {
		return nil, err
	}
	doc := leadTok.PreComment

	prot, _, err := p.parseProtection()
	if err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tok.Symbol {
	case lexer.KwFunction:
		return p.parseFuncDecl(prot, doc)
	case lexer.KwClass:
		return p.parseClassDecl(prot, doc)
	case lexer.KwNamespace:
		return p.parseNamespaceDecl(prot, doc)
	default:
		return p.parseVarDecl(prot, doc)
	}
}

func (p *Parser) parseVarDecl(prot ast.Protection, doc string) (*ast.VarDecl, error) {
	nameTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	if doc == "" {
		doc = nameTok.PreComment
	}
	decl := &ast.VarDecl{StartPos: nameTok.Span.Start, Protection: prot, Name: nameTok.Lexeme, Doc: doc}
	if p.at(lexer.AssignSymbol) {
		p.next()
		val, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		decl.Value = val
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseParams() ([]ast.Parameter, bool, error) {
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, false, err
	}
	var params []ast.Parameter
	vararg := false
	for !p.at(lexer.RParenSymbol) {
		if p.at(lexer.KwVararg) {
			p.next()
			vararg = true
			break
		}
		tok, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, false, err
		}
		params = append(params, ast.Parameter{Name: tok.Lexeme})
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, false, err
	}
	return params, vararg, nil
}

func (p *Parser) parseFuncLiteral(name string) (*ast.FuncLiteral, error) {
	start, err := p.expect(lexer.KwFunction)
	if err != nil {
		return nil, err
	}
	if name == "" && p.at(lexer.IdentSymbol) {
		tok, _ := p.next()
		name = tok.Lexeme
	}
	params, vararg, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncLiteral{
		StartPos: start.Span.Start, EndPos: body.End(),
		Name: name, Params: params, IsVararg: vararg, Body: body,
	}, nil
}

func (p *Parser) parseFuncDecl(prot ast.Protection, doc string) (*ast.FuncDecl, error) {
	start, _ := p.peek()
	if doc == "" {
		doc = start.PreComment
	}
	fn, err := p.parseFuncLiteral("")
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{StartPos: start.Span.Start, Protection: prot, Name: fn.Name, Func: fn, Doc: doc}, nil
}

func (p *Parser) parseFieldMembers() ([]*ast.FieldMember, []*ast.FuncDecl, error) {
	var fields []*ast.FieldMember
	var methods []*ast.FuncDecl
	for !p.at(lexer.RBraceSymbol) {
		leadTok, err := p.peek()
		if err != nil {
			return nil, nil, err
		}
		doc := leadTok.PreComment

		hidden := false
		if p.at(lexer.HashSymbol) {
			p.next()
			hidden = true
		}
		if p.at(lexer.KwFunction) {
			m, err := p.parseFuncDecl(ast.ProtDefault, doc)
			if err != nil {
				return nil, nil, err
			}
			methods = append(methods, m)
			continue
		}
		nameTok, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, nil, err
		}
		fm := &ast.FieldMember{Name: nameTok.Lexeme, Hidden: hidden, Doc: doc}
		if p.at(lexer.AssignSymbol) {
			p.next()
			v, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, nil, err
			}
			fm.Value = v
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, nil, err
		}
		fields = append(fields, fm)
	}
	return fields, methods, nil
}

func (p *Parser) parseClassBases() ([]ast.Expr, error) {
	var bases []ast.Expr
	if p.at(lexer.ColonSymbol) {
		p.next()
		for {
			e, err := p.parseExpression(precTernary)
			if err != nil {
				return nil, err
			}
			bases = append(bases, e)
			if p.at(lexer.CommaSymbol) {
				p.next()
				continue
			}
			break
		}
	}
	return bases, nil
}

func (p *Parser) parseClassDecl(prot ast.Protection, doc string) (*ast.ClassDecl, error) {
	start, err := p.expect(lexer.KwClass)
	if err != nil {
		return nil, err
	}
	if doc == "" {
		doc = start.PreComment
	}
	nameTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	bases, err := p.parseClassBases()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBraceSymbol); err != nil {
		return nil, err
	}
	fields, methods, err := p.parseFieldMembers()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lexer.RBraceSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.ClassDecl{
		StartPos: start.Span.Start, Protection: prot, Name: nameTok.Lexeme,
		Bases: bases, Fields: fields, Methods: methods, EndPos: end.Span.End, Doc: doc,
	}, nil
}

func (p *Parser) parseNamespaceDecl(prot ast.Protection, doc string) (*ast.NamespaceDecl, error) {
	start, err := p.expect(lexer.KwNamespace)
	if err != nil {
		return nil, err
	}
	if doc == "" {
		doc = start.PreComment
	}
	nameTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	var parent ast.Expr
	if p.at(lexer.ColonSymbol) {
		p.next()
		parent, err = p.parseExpression(precTernary)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.LBraceSymbol); err != nil {
		return nil, err
	}
	fields, _, err := p.parseFieldMembers()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lexer.RBraceSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.NamespaceDecl{
		StartPos: start.Span.Start, Protection: prot, Name: nameTok.Lexeme,
		Parent: parent, Fields: fields, EndPos: end.Span.End, Doc: doc,
	}, nil
}

// parseImportDecl parses `import foo.bar.baz as alias : x, y, z ;`. The
// semantic pass later lowers this into a `modules.load(...)` call per
// spec.md §4.D point 6.
func (p *Parser) parseImportDecl() (*ast.ImportDecl, error) {
	start, err := p.expect(lexer.KwImport)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	module := nameTok.Lexeme
	for p.at(lexer.DotSymbol) {
		p.next()
		seg, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, err
		}
		module += "." + seg.Lexeme
	}
	alias := ""
	if p.at(lexer.KwAs) {
		p.next()
		a, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, err
		}
		alias = a.Lexeme
	}
	var symbols []string
	if p.at(lexer.ColonSymbol) {
		p.next()
		for {
			s, err := p.expect(lexer.IdentSymbol)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, s.Lexeme)
			if p.at(lexer.CommaSymbol) {
				p.next()
				continue
			}
			break
		}
	}
	endTok, _ := p.peek()
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &ast.ImportDecl{StartPos: start.Span.Start, EndPos: endTok.Span.End, Module: module, Alias: alias, Symbols: symbols}, nil
}

func (p *Parser) parseClause() (*ast.Clause, error) {
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Clause{Cond: cond, Body: body}, nil
}

func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	start, err := p.expect(lexer.KwIf)
	if err != nil {
		return nil, err
	}
	ifClause, err := p.parseClause()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{StartPos: start.Span.Start, IfClause: ifClause, EndPos: ifClause.Body.End()}
	for p.at(lexer.KwElse) {
		p.next()
		if p.at(lexer.KwIf) {
			p.next()
			clause, err := p.parseClause()
			if err != nil {
				return nil, err
			}
			stmt.ElifClauses = append(stmt.ElifClauses, clause)
			stmt.EndPos = clause.Body.End()
			continue
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.ElseClause = &ast.Clause{Body: body}
		stmt.EndPos = body.End()
		break
	}
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (*ast.WhileStmt, error) {
	start, err := p.expect(lexer.KwWhile)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{StartPos: start.Span.Start, EndPos: body.End(), Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhileStmt() (*ast.DoWhileStmt, error) {
	start, err := p.expect(lexer.KwDo)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwWhile); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	endTok, err := p.expect(lexer.RParenSymbol)
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{StartPos: start.Span.Start, EndPos: endTok.Span.End, Body: body, Cond: cond}, nil
}

func (p *Parser) parseForStmt() (*ast.ForStmt, error) {
	start, err := p.expect(lexer.KwFor)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	init, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SemiSymbol); err != nil {
		return nil, err
	}
	hi, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	var step ast.Expr
	if p.at(lexer.SemiSymbol) {
		p.next()
		step, err = p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{StartPos: start.Span.Start, EndPos: body.End(), Init: init, Hi: hi, Step: step, Body: body}, nil
}

func (p *Parser) parseForeachStmt() (*ast.ForeachStmt, error) {
	start, err := p.expect(lexer.KwForeach)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	var names []string
	for {
		tok, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Lexeme)
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.SemiSymbol); err != nil {
		return nil, err
	}
	var sources []ast.Expr
	for {
		e, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		sources = append(sources, e)
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForeachStmt{StartPos: start.Span.Start, EndPos: body.End(), Names: names, Sources: sources, Body: body}, nil
}

func (p *Parser) parseSwitchStmt() (*ast.SwitchStmt, error) {
	start, err := p.expect(lexer.KwSwitch)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBraceSymbol); err != nil {
		return nil, err
	}
	stmt := &ast.SwitchStmt{StartPos: start.Span.Start, Cond: cond}
	for p.at(lexer.KwCase) {
		p.next()
		var values []ast.Expr
		for {
			v, err := p.parseExpression(precTernary)
			if err != nil {
				return nil, err
			}
			if p.at(lexer.DotDotSymbol) {
				p.next()
				hi, err := p.parseExpression(precTernary)
				if err != nil {
					return nil, err
				}
				v = &ast.RangeExpr{Lo: v, Hi: hi}
			}
			values = append(values, v)
			if p.at(lexer.CommaSymbol) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.ColonSymbol); err != nil {
			return nil, err
		}
		var body []ast.Stmt
		for !p.at(lexer.KwCase) && !p.at(lexer.KwDefault) && !p.at(lexer.RBraceSymbol) {
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		stmt.Cases = append(stmt.Cases, &ast.SwitchCase{Values: values, Body: body})
	}
	if p.at(lexer.KwDefault) {
		p.next()
		if _, err := p.expect(lexer.ColonSymbol); err != nil {
			return nil, err
		}
		var body []ast.Stmt
		for !p.at(lexer.RBraceSymbol) {
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		stmt.Default = body
	}
	end, err := p.expect(lexer.RBraceSymbol)
	if err != nil {
		return nil, err
	}
	stmt.EndPos = end.Span.End
	return stmt, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	e, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	exprs = append(exprs, e)
	for p.at(lexer.CommaSymbol) {
		p.next()
		e, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	start, err := p.expect(lexer.KwReturn)
	if err != nil {
		return nil, err
	}
	stmt := &ast.ReturnStmt{StartPos: start.Span.Start, EndPos: start.Span.End}
	if !p.at(lexer.SemiSymbol) && !p.at(lexer.RBraceSymbol) && !p.lex.CanInsertSemicolon() {
		vals, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.Values = vals
		stmt.EndPos = vals[len(vals)-1].End()
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseYieldStmt() (*ast.YieldStmt, error) {
	start, err := p.expect(lexer.KwYield)
	if err != nil {
		return nil, err
	}
	stmt := &ast.YieldStmt{StartPos: start.Span.Start, EndPos: start.Span.End}
	if !p.at(lexer.SemiSymbol) && !p.lex.CanInsertSemicolon() {
		vals, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.Values = vals
		stmt.EndPos = vals[len(vals)-1].End()
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseThrowStmt() (*ast.ThrowStmt, error) {
	start, err := p.expect(lexer.KwThrow)
	if err != nil {
		return nil, err
	}
	val, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &ast.ThrowStmt{StartPos: start.Span.Start, Value: val}, nil
}

// parseTryStmt parses one or more catch clauses, each with an optional
// `|`-separated list of caught type expressions; the clauses stay separate
// through the semantic pass, and the compiler dispatches among them by
// testing the caught value against each clause's types (compiler/try.go).
func (p *Parser) parseTryStmt() (*ast.TryStmt, error) {
	start, err := p.expect(lexer.KwTry)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.TryStmt{StartPos: start.Span.Start, EndPos: body.End(), Body: body}
	for p.at(lexer.KwCatch) {
		p.next()
		if _, err := p.expect(lexer.LParenSymbol); err != nil {
			return nil, err
		}
		bindTok, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, err
		}
		cc := &ast.CatchClause{Binding: bindTok.Lexeme}
		if p.at(lexer.ColonSymbol) {
			p.next()
			for {
				t, err := p.parseExpression(precOrOr)
				if err != nil {
					return nil, err
				}
				cc.Types = append(cc.Types, t)
				if p.at(lexer.PipeSymbol) {
					p.next()
					continue
				}
				break
			}
		}
		if _, err := p.expect(lexer.RParenSymbol); err != nil {
			return nil, err
		}
		cc.Body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Catches = append(stmt.Catches, cc)
		stmt.EndPos = cc.Body.End()
	}
	if p.at(lexer.KwFinally) {
		p.next()
		fb, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Finally = fb
		stmt.EndPos = fb.End()
	}
	return stmt, nil
}

// parseScopeStmt parses `scope(exit|success|failure) { ... }`; lowered by
// the semantic pass into try/catch/finally per spec.md §4.D point 8.
func (p *Parser) parseScopeStmt() (*ast.ScopeStmt, error) {
	start, err := p.expect(lexer.KwScope)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParenSymbol); err != nil {
		return nil, err
	}
	kindTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	var kind ast.ScopeActionKind
	switch kindTok.Lexeme {
	case "exit":
		kind = ast.ScopeExit
	case "success":
		kind = ast.ScopeSuccess
	case "failure":
		kind = ast.ScopeFailure
	default:
		return nil, p.errorf(kindTok.Span, "expected `exit`, `success` or `failure`, found `%s`", kindTok.Lexeme)
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ScopeStmt{StartPos: start.Span.Start, Kind: kind, Body: body}, nil
}

// parseExprStmt parses an expression used as a statement; only
// call/method-call/assignment/inc-dec/yield forms are legal here (spec.md
// §4.C "lone statement expression" rejection), checked here rather than
// deferred to the semantic pass since it is purely syntactic.
func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	e, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	switch e.(type) {
	case *ast.CallExpr, *ast.AssignExpr, *ast.IncDecExpr, *ast.YieldExpr:
		// has a side effect; permitted as a statement
	default:
		return nil, p.errorf(source.Span{Start: e.Pos(), End: e.End()},
			"expression has no effect and cannot be used as a statement")
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Value: e}, nil
}
