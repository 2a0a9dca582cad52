package parser

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/lexer"
)

// parseExpression is the Pratt-parser core, grounded on the teacher's
// Parser.parseExpression: a prefix parselet produces the initial node,
// then infix parselets fold in left-associated operators so long as
// their precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	prefix, ok := p.prefix[tok.Symbol]
	if !ok {
		return nil, p.errorf(tok.Span, "unexpected `%s`", tok.Symbol)
	}
	left, err := prefix(p, tok)
	if err != nil {
		return nil, err
	}

	for {
		nextTok, err := p.peek()
		if err != nil {
			return nil, err
		}
		nextPrec, ok := p.infixPrec[nextTok.Symbol]
		if !ok || precedence >= nextPrec {
			break
		}
		opTok, err := p.next()
		if err != nil {
			return nil, err
		}
		infix := p.infix[opTok.Symbol]
		left, err = infix(p, opTok, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) registerParselets() {
	p.prefix = map[lexer.Symbol]prefixParselet{
		lexer.IntSymbol:      parseIntLit,
		lexer.FloatSymbol:    parseFloatLit,
		lexer.StringSymbol:   parseStringLit,
		lexer.KwTrue:         parseBoolLit,
		lexer.KwFalse:        parseBoolLit,
		lexer.KwNull:         parseNullLit,
		lexer.KwThis:         parseThisLit,
		lexer.KwSuper:        parseSuperLit,
		lexer.KwVararg:       parseVarargLit,
		lexer.IdentSymbol:    parseIdent,
		lexer.LParenSymbol:   parseGroup,
		lexer.LBracketSymbol: parseArrayLit,
		lexer.LBraceSymbol:   parseTableLit,
		lexer.KwFunction:     parseFuncLit,
		lexer.KwClass:        parseClassLit,
		lexer.KwNamespace:    parseNamespaceLit,
		lexer.KwYield:        parseYieldExpr,
		lexer.AtSymbol:       parseDecoratedExpr,

		lexer.MinusSymbol: parseUnary(ast.UnaryNeg),
		lexer.BangSymbol:  parseUnary(ast.UnaryNot),
		lexer.TildeSymbol: parseUnary(ast.UnaryCom),
		lexer.HashSymbol:  parseUnary(ast.UnaryLen),
	}

	p.infix = map[lexer.Symbol]infixParselet{}
	p.infixPrec = map[lexer.Symbol]int{}

	binOp := func(sym lexer.Symbol, prec int, op ast.BinaryOp, rightAssoc bool) {
		p.infixPrec[sym] = prec
		p.infix[sym] = func(pp *Parser, _ lexer.Token, left ast.Expr) (ast.Expr, error) {
			nextPrec := prec
			if rightAssoc {
				nextPrec--
			}
			right, err := pp.parseExpression(nextPrec)
			if err != nil {
				return nil, err
			}
			return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
		}
	}

	binOp(lexer.OrOrSymbol, precOrOr, ast.OpOrOr, false)
	binOp(lexer.AndAndSymbol, precAndAnd, ast.OpAndAnd, false)
	binOp(lexer.QQSymbol, precDefault, ast.OpDefault, true)

	binOp(lexer.PipeSymbol, precBitOr, ast.OpOr, false)
	binOp(lexer.CaretSymbol, precBitXor, ast.OpXor, false)
	binOp(lexer.AmpSymbol, precBitAnd, ast.OpAnd, false)

	binOp(lexer.EqSymbol, precEquality, ast.OpEq, false)
	binOp(lexer.NeSymbol, precEquality, ast.OpNe, false)
	binOp(lexer.KwIs, precEquality, ast.OpIs, false)
	binOp(lexer.KwIn, precEquality, ast.OpIn, false)

	binOp(lexer.LtSymbol, precRelational, ast.OpLt, false)
	binOp(lexer.LeSymbol, precRelational, ast.OpLe, false)
	binOp(lexer.GtSymbol, precRelational, ast.OpGt, false)
	binOp(lexer.GeSymbol, precRelational, ast.OpGe, false)

	binOp(lexer.Cmp3Symbol, precCompare3, ast.OpCmp3, false)

	binOp(lexer.ShlSymbol, precShift, ast.OpShl, false)
	binOp(lexer.ShrSymbol, precShift, ast.OpShr, false)
	binOp(lexer.UShrSymbol, precShift, ast.OpUShr, false)

	binOp(lexer.TildeSymbol, precConcat, ast.OpCat, true)

	binOp(lexer.PlusSymbol, precAdditive, ast.OpAdd, false)
	binOp(lexer.MinusSymbol, precAdditive, ast.OpSub, false)

	binOp(lexer.StarSymbol, precMultiplicative, ast.OpMul, false)
	binOp(lexer.SlashSymbol, precMultiplicative, ast.OpDiv, false)
	binOp(lexer.PercentSymbol, precMultiplicative, ast.OpMod, false)

	p.infixPrec[lexer.QuestionSymbol] = precTernary
	p.infix[lexer.QuestionSymbol] = parseTernary

	p.infixPrec[lexer.AssignSymbol] = precAssign
	p.infix[lexer.AssignSymbol] = parseAssign(nil)
	reflexive := map[lexer.Symbol]ast.BinaryOp{
		lexer.PlusEqSymbol: ast.OpAdd, lexer.MinusEqSymbol: ast.OpSub,
		lexer.StarEqSymbol: ast.OpMul, lexer.SlashEqSymbol: ast.OpDiv,
		lexer.PercentEqSymbol: ast.OpMod, lexer.CatEqSymbol: ast.OpCat,
		lexer.AmpEqSymbol: ast.OpAnd, lexer.PipeEqSymbol: ast.OpOr,
		lexer.CaretEqSymbol: ast.OpXor, lexer.ShlEqSymbol: ast.OpShl,
		lexer.ShrEqSymbol: ast.OpShr, lexer.UShrEqSymbol: ast.OpUShr,
	}
	for sym, op := range reflexive {
		op := op
		p.infixPrec[sym] = precAssign
		p.infix[sym] = parseAssign(&op)
	}

	p.infixPrec[lexer.IncSymbol] = precPostfix
	p.infix[lexer.IncSymbol] = parseIncDec(ast.OpInc)
	p.infixPrec[lexer.DecSymbol] = precPostfix
	p.infix[lexer.DecSymbol] = parseIncDec(ast.OpDec)

	p.infixPrec[lexer.LParenSymbol] = precCall
	p.infix[lexer.LParenSymbol] = parseCall
	p.infixPrec[lexer.DotSymbol] = precPostfix
	p.infix[lexer.DotSymbol] = parseFieldOrMethodCall
	p.infixPrec[lexer.LBracketSymbol] = precPostfix
	p.infix[lexer.LBracketSymbol] = parseIndexOrSlice
}

func parseIntLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	n, err := parseIntLexeme(tok)
	if err != nil {
		return nil, err
	}
	return &ast.IntLiteral{StartPos: tok.Span.Start, Value: n}, nil
}

func parseFloatLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	f, err := parseFloatLexeme(tok)
	if err != nil {
		return nil, err
	}
	return &ast.FloatLiteral{StartPos: tok.Span.Start, Value: f}, nil
}

func parseStringLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.StringLiteral{StartPos: tok.Span.Start, Value: tok.Lexeme}, nil
}

func parseBoolLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.BoolLiteral{StartPos: tok.Span.Start, Value: tok.Symbol == lexer.KwTrue}, nil
}

func parseNullLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.NullLiteral{StartPos: tok.Span.Start}, nil
}

func parseThisLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.ThisExpr{StartPos: tok.Span.Start}, nil
}

func parseSuperLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.SuperExpr{StartPos: tok.Span.Start}, nil
}

func parseVarargLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.VarargExpr{StartPos: tok.Span.Start}, nil
}

func parseIdent(p *Parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.IdentExpr{StartPos: tok.Span.Start, Name: tok.Lexeme}, nil
}

func parseGroup(p *Parser, tok lexer.Token) (ast.Expr, error) {
	e, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParenSymbol); err != nil {
		return nil, err
	}
	return e, nil
}

func parseUnary(op ast.UnaryOp) prefixParselet {
	return func(p *Parser, tok lexer.Token) (ast.Expr, error) {
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{StartPos: tok.Span.Start, Op: op, Operand: operand}, nil
	}
}

func parseTernary(p *Parser, _ lexer.Token, cond ast.Expr) (ast.Expr, error) {
	then, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ColonSymbol); err != nil {
		return nil, err
	}
	els, err := p.parseExpression(precTernary - 1)
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{Cond: cond, Then: then, Else: els}, nil
}

// parseAssign handles both `=` (op==nil) and reflexive `+=`-style
// assignment to a single target. Comma-separated targets (`a, b = x, y`)
// are not parsed: neither this parselet nor the statement grammar builds
// an AssignExpr with more than one target.
func parseAssign(op *ast.BinaryOp) infixParselet {
	return func(p *Parser, _ lexer.Token, left ast.Expr) (ast.Expr, error) {
		right, err := p.parseExpression(precAssign - 1)
		if err != nil {
			return nil, err
		}
		e := &ast.AssignExpr{Targets: []ast.Expr{left}, Values: []ast.Expr{right}}
		if op != nil {
			e.Op = *op
		}
		return e, nil
	}
}

func parseIncDec(op ast.IncDecOp) infixParselet {
	return func(p *Parser, tok lexer.Token, left ast.Expr) (ast.Expr, error) {
		return &ast.IncDecExpr{EndPosVal: tok.Span.End, Op: op, Target: left}, nil
	}
}

func parseCall(p *Parser, _ lexer.Token, callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	for !p.at(lexer.RParenSymbol) {
		a, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	end, err := p.expect(lexer.RParenSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Callee: callee, Args: args, EndPosVal: end.Span.End}, nil
}

// parseFieldOrMethodCall handles `.name` field access, folding a trailing
// `(args)` directly into a single method-call dispatch node (spec.md
// §4.E "Method" call form) rather than producing a FieldExpr wrapped by
// a CallExpr, matching the VM's single-opcode method dispatch.
func parseFieldOrMethodCall(p *Parser, _ lexer.Token, obj ast.Expr) (ast.Expr, error) {
	nameTok, err := p.expect(lexer.IdentSymbol)
	if err != nil {
		return nil, err
	}
	if p.at(lexer.LParenSymbol) {
		p.next()
		var args []ast.Expr
		for !p.at(lexer.RParenSymbol) {
			a, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.at(lexer.CommaSymbol) {
				p.next()
				continue
			}
			break
		}
		end, err := p.expect(lexer.RParenSymbol)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Callee: obj, Method: nameTok.Lexeme, Args: args, EndPosVal: end.Span.End}, nil
	}
	return &ast.FieldExpr{Object: obj, Name: nameTok.Lexeme, EndPosVal: nameTok.Span.End}, nil
}

func parseIndexOrSlice(p *Parser, _ lexer.Token, obj ast.Expr) (ast.Expr, error) {
	var lo ast.Expr
	var err error
	if !p.at(lexer.DotDotSymbol) {
		lo, err = p.parseExpression(precNone)
		if err != nil {
			return nil, err
		}
	}
	if p.at(lexer.DotDotSymbol) {
		p.next()
		var hi ast.Expr
		if !p.at(lexer.RBracketSymbol) {
			hi, err = p.parseExpression(precNone)
			if err != nil {
				return nil, err
			}
		}
		end, err := p.expect(lexer.RBracketSymbol)
		if err != nil {
			return nil, err
		}
		return &ast.SliceExpr{Object: obj, Lo: lo, Hi: hi, EndPosVal: end.Span.End}, nil
	}
	end, err := p.expect(lexer.RBracketSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Object: obj, Index: lo, EndPosVal: end.Span.End}, nil
}

// parseArrayLit parses both plain array literals `[1, 2, 3]` and array
// comprehensions `[expr foreach name in src]` (spec.md §4.C).
func parseArrayLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	if p.at(lexer.RBracketSymbol) {
		end, _ := p.next()
		return &ast.ArrayLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End}, nil
	}
	first, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if p.at(lexer.KwForeach) {
		compr, err := p.parseComprehensionTail(false, nil, first)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(lexer.RBracketSymbol)
		if err != nil {
			return nil, err
		}
		compr.StartPos, compr.EndPos = tok.Span.Start, end.Span.End
		return compr, nil
	}
	items := []ast.Expr{first}
	for p.at(lexer.CommaSymbol) {
		p.next()
		e, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	end, err := p.expect(lexer.RBracketSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End, Items: items}, nil
}

// parseComprehensionTail parses the shared `foreach name[, name] in src[, src] [if cond]`
// suffix used by both array- and table-comprehensions.
func (p *Parser) parseComprehensionTail(isTable bool, key ast.Expr, value ast.Expr) (*ast.Comprehension, error) {
	if _, err := p.expect(lexer.KwForeach); err != nil {
		return nil, err
	}
	var names []string
	for {
		n, err := p.expect(lexer.IdentSymbol)
		if err != nil {
			return nil, err
		}
		names = append(names, n.Lexeme)
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.KwIn); err != nil {
		return nil, err
	}
	var sources []ast.Expr
	for {
		s, err := p.parseExpression(precOrOr)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
		if p.at(lexer.CommaSymbol) {
			p.next()
			continue
		}
		break
	}
	var cond ast.Expr
	if p.at(lexer.KwIf) {
		p.next()
		c, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		cond = c
	}
	return &ast.Comprehension{IsTable: isTable, KeyExpr: key, ValueExpr: value, Names: names, Sources: sources, Cond: cond}, nil
}

// parseTableLit parses `{ [k]=v, name=v, ... }` table literals and
// `{ [k]=v foreach ... }` table comprehensions.
func parseTableLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	if p.at(lexer.RBraceSymbol) {
		end, _ := p.next()
		return &ast.TableLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End}, nil
	}

	firstKey, firstVal, err := p.parseTableEntry()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.KwForeach) {
		compr, err := p.parseComprehensionTail(true, firstKey, firstVal)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(lexer.RBraceSymbol)
		if err != nil {
			return nil, err
		}
		compr.StartPos, compr.EndPos = tok.Span.Start, end.Span.End
		return compr, nil
	}
	entries := []ast.TableEntry{{Key: firstKey, Value: firstVal}}
	for p.at(lexer.CommaSymbol) {
		p.next()
		if p.at(lexer.RBraceSymbol) {
			break
		}
		k, v, err := p.parseTableEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.TableEntry{Key: k, Value: v})
	}
	end, err := p.expect(lexer.RBraceSymbol)
	if err != nil {
		return nil, err
	}
	return &ast.TableLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End, Entries: entries}, nil
}

func (p *Parser) parseTableEntry() (ast.Expr, ast.Expr, error) {
	if p.at(lexer.LBracketSymbol) {
		p.next()
		key, err := p.parseExpression(precNone)
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(lexer.RBracketSymbol); err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(lexer.AssignSymbol); err != nil {
			return nil, nil, err
		}
		val, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, nil, err
		}
		return key, val, nil
	}
	if p.at(lexer.IdentSymbol) {
		nextTok, err := p.peekN(1)
		if err == nil && nextTok.Symbol == lexer.AssignSymbol {
			nameTok, _ := p.next()
			p.next() // consume '='
			val, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, nil, err
			}
			return &ast.StringLiteral{StartPos: nameTok.Span.Start, Value: nameTok.Lexeme}, val, nil
		}
	}
	val, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, nil, err
	}
	return nil, val, nil
}

func parseFuncLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	name := ""
	if nextTok, err := p.peek(); err == nil && nextTok.Symbol == lexer.IdentSymbol {
		t, _ := p.next()
		name = t.Lexeme
	}
	params, vararg, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncLiteral{StartPos: tok.Span.Start, EndPos: body.End(), Name: name, Params: params, IsVararg: vararg, Body: body}, nil
}

func parseClassLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
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
	return &ast.ClassLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End, Bases: bases, Fields: fields, Methods: methods}, nil
}

func parseNamespaceLit(p *Parser, tok lexer.Token) (ast.Expr, error) {
	var parent ast.Expr
	var err error
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
	return &ast.NamespaceLiteral{StartPos: tok.Span.Start, EndPos: end.Span.End, Parent: parent, Fields: fields}, nil
}

func parseYieldExpr(p *Parser, tok lexer.Token) (ast.Expr, error) {
	e := &ast.YieldExpr{StartPos: tok.Span.Start, EndPosVal: tok.Span.End}
	if p.at(lexer.LParenSymbol) {
		p.next()
		for !p.at(lexer.RParenSymbol) {
			v, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, err
			}
			e.Values = append(e.Values, v)
			if p.at(lexer.CommaSymbol) {
				p.next()
				continue
			}
			break
		}
		end, err := p.expect(lexer.RParenSymbol)
		if err != nil {
			return nil, err
		}
		e.EndPosVal = end.Span.End
	}
	return e, nil
}

// parseDecoratedExpr parses `@decorator expr` and builds the call
// `decorator(expr)` itself (spec.md §4.C). Since
// Decorator only makes sense attached to a following declaration, a
// decorator appearing directly as an expression simply evaluates its
// target applied to the following primary expression.
func parseDecoratedExpr(p *Parser, tok lexer.Token) (ast.Expr, error) {
	target, err := p.parseExpression(precCall)
	if err != nil {
		return nil, err
	}
	inner, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Callee: target, Args: []ast.Expr{inner}, EndPosVal: inner.End()}, nil
}
