// Package parser turns a token stream from package lexer into an
// *ast.Program, grounded on the teacher's frontend/parser.go Pratt-parser
// (precedence maps + unary/binary parselet tables keyed by token symbol)
// and frontend/parselets.go, generalized to Croc's full grammar: classes,
// namespaces, decorators, comprehensions, switch, try/catch/finally,
// scope actions and import declarations (spec.md §4.C).
package parser

import (
	"fmt"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/feedback"
	"github.com/jarrettbillingsley/croc/lexer"
	"github.com/jarrettbillingsley/croc/source"
)

type prefixParselet func(*Parser, lexer.Token) (ast.Expr, error)
type infixParselet func(*Parser, lexer.Token, ast.Expr) (ast.Expr, error)

// Precedence levels, low to high, matching spec.md §4.C's operator table.
const (
	precNone = iota
	precAssign
	precTernary
	precDefault // ??
	precOrOr
	precAndAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality  // == != is !is in !in
	precRelational // < <= > >=
	precCompare3   // <=>
	precShift      // << >> >>>
	precConcat     // ~ (right-associative)
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
)

// Parser holds the parselet tables and lexer for one parse, mirroring the
// teacher's Parser struct shape.
type Parser struct {
	lex *lexer.Lexer

	prefix   map[lexer.Symbol]prefixParselet
	infix    map[lexer.Symbol]infixParselet
	infixPrec map[lexer.Symbol]int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		lex:       l,
		prefix:    make(map[lexer.Symbol]prefixParselet),
		infix:     make(map[lexer.Symbol]infixParselet),
		infixPrec: make(map[lexer.Symbol]int),
	}
	p.registerParselets()
	return p
}

// Parse produces a *ast.Program from file's entire token stream.
func Parse(file *source.File) (*ast.Program, error) {
	l, err := lexer.NewLexer(file)
	if err != nil {
		return nil, err
	}
	p := New(l)
	return p.ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	var stmts []ast.Stmt
	for {
		tok, err := p.lex.Peek(0)
		if err != nil {
			return nil, err
		}
		if tok.Symbol == lexer.EOFSymbol {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &ast.Program{Statements: stmts}, nil
}

func (p *Parser) errorf(span source.Span, format string, args ...interface{}) error {
	return parseErr{feedback.Error{
		Classification: feedback.SyntaxError,
		File:           p.lex.Scanner.File,
		What: feedback.Selection{
			Description: fmt.Sprintf(format, args...),
			Span:        span,
		},
	}}
}

// parseErr wraps a feedback.Message so it also satisfies the `error`
// interface, letting parser/sema/compiler propagate diagnostics through
// ordinary Go error returns while CLI callers still extract the rich
// feedback.Message for pretty-printing.
type parseErr struct{ msg feedback.Message }

func (e parseErr) Error() string { return e.msg.Make(false) }
func (e parseErr) Message() feedback.Message { return e.msg }

func (p *Parser) peek() (lexer.Token, error)     { return p.lex.Peek(0) }
func (p *Parser) peekN(n int) (lexer.Token, error) { return p.lex.Peek(n) }
func (p *Parser) next() (lexer.Token, error)     { return p.lex.Next() }

func (p *Parser) expect(sym lexer.Symbol) (lexer.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Symbol != sym {
		return tok, p.errorf(tok.Span, "expected `%s`, found `%s`", sym, tok.Symbol)
	}
	return tok, nil
}

func (p *Parser) at(sym lexer.Symbol) bool {
	tok, err := p.peek()
	return err == nil && tok.Symbol == sym
}

// expectStmtEnd consumes a terminating `;`, relying on the lexer's
// automatic-semicolon-insertion when a newline permits it (spec.md §4.B).
func (p *Parser) expectStmtEnd() error {
	if p.at(lexer.SemiSymbol) {
		_, err := p.next()
		return err
	}
	if p.lex.CanInsertSemicolon() {
		return nil
	}
	tok, _ := p.peek()
	return p.errorf(tok.Span, "expected statement terminator, found `%s`", tok.Symbol)
}
