// Package lexer tokenizes Croc source text, grounded on the teacher's
// Scanner/Lexer split (frontend/scanner.go, frontend/lexer.go) and
// generalized to the full lexical surface spec.md §4.B/§6 describes: doc
// comments, #line pragmas, verbatim and escape-rich strings, and the
// larger numeric-literal grammar.
package lexer

import "github.com/jarrettbillingsley/croc/source"

// Symbol is the classification system for tokens. Identifier and literal
// tokens are represented by general symbols (like "Ident") while operator
// and punctuation tokens are represented by their literal values.
type Symbol string

// Token is a lexical atom tagged with a symbol classification, the exact
// source text it was read from and its source span. PreComment carries the
// text of a doc comment directly preceding the token (spec.md §4.B).
// PostComment carries no comment text: on Int/Float tokens it holds the
// literal's value in normalized decimal form.
type Token struct {
	Symbol      Symbol
	Lexeme      string
	Span        source.Span
	PreComment  string
	PostComment string
}

const (
	EOFSymbol     Symbol = "EOF"
	UnknownSymbol Symbol = "Unknown"

	IdentSymbol   Symbol = "Ident"
	IntSymbol     Symbol = "Int"
	FloatSymbol   Symbol = "Float"
	StringSymbol  Symbol = "String"
	CharSymbol    Symbol = "Char"

	// Punctuators
	LParenSymbol   Symbol = "("
	RParenSymbol   Symbol = ")"
	LBraceSymbol   Symbol = "{"
	RBraceSymbol   Symbol = "}"
	LBracketSymbol Symbol = "["
	RBracketSymbol Symbol = "]"
	CommaSymbol    Symbol = ","
	SemiSymbol     Symbol = ";"
	ColonSymbol    Symbol = ":"
	DotSymbol      Symbol = "."
	DotDotSymbol   Symbol = ".."
	AtSymbol       Symbol = "@"
	HashSymbol     Symbol = "#"

	// Operators
	AssignSymbol    Symbol = "="
	PlusSymbol      Symbol = "+"
	MinusSymbol     Symbol = "-"
	StarSymbol      Symbol = "*"
	SlashSymbol     Symbol = "/"
	PercentSymbol   Symbol = "%"
	TildeSymbol     Symbol = "~"
	CatEqSymbol     Symbol = "~="
	BangSymbol      Symbol = "!"
	LtSymbol        Symbol = "<"
	GtSymbol        Symbol = ">"
	LeSymbol        Symbol = "<="
	GeSymbol        Symbol = ">="
	EqSymbol        Symbol = "=="
	NeSymbol        Symbol = "!="
	Cmp3Symbol      Symbol = "<=>"
	AndAndSymbol    Symbol = "&&"
	OrOrSymbol      Symbol = "||"
	AmpSymbol       Symbol = "&"
	PipeSymbol      Symbol = "|"
	CaretSymbol     Symbol = "^"
	ShlSymbol       Symbol = "<<"
	ShrSymbol       Symbol = ">>"
	UShrSymbol      Symbol = ">>>"
	QuestionSymbol  Symbol = "?"
	QQSymbol        Symbol = "??"
	IncSymbol       Symbol = "++"
	DecSymbol       Symbol = "--"

	PlusEqSymbol    Symbol = "+="
	MinusEqSymbol   Symbol = "-="
	StarEqSymbol    Symbol = "*="
	SlashEqSymbol   Symbol = "/="
	PercentEqSymbol Symbol = "%="
	AmpEqSymbol     Symbol = "&="
	PipeEqSymbol    Symbol = "|="
	CaretEqSymbol   Symbol = "^="
	ShlEqSymbol     Symbol = "<<="
	ShrEqSymbol     Symbol = ">>="
	UShrEqSymbol    Symbol = ">>>="

	LInterpSymbol Symbol = "${"
	RInterpSymbol Symbol = "}$"
)

// Keyword symbols double as their own lexeme, matching the teacher's
// convention of representing keywords by literal TokenSymbol value.
const (
	KwClass     Symbol = "class"
	KwNamespace Symbol = "namespace"
	KwFunction  Symbol = "function"
	KwLocal     Symbol = "local"
	KwGlobal    Symbol = "global"
	KwIf        Symbol = "if"
	KwElse      Symbol = "else"
	KwWhile     Symbol = "while"
	KwDo        Symbol = "do"
	KwFor       Symbol = "for"
	KwForeach   Symbol = "foreach"
	KwSwitch    Symbol = "switch"
	KwCase      Symbol = "case"
	KwDefault   Symbol = "default"
	KwBreak     Symbol = "break"
	KwContinue  Symbol = "continue"
	KwReturn    Symbol = "return"
	KwYield     Symbol = "yield"
	KwThrow     Symbol = "throw"
	KwTry       Symbol = "try"
	KwCatch     Symbol = "catch"
	KwFinally   Symbol = "finally"
	KwImport    Symbol = "import"
	KwIs        Symbol = "is"
	KwAnd       Symbol = "and"
	KwOr        Symbol = "or"
	KwNot       Symbol = "not"
	KwIn        Symbol = "in"
	KwTrue      Symbol = "true"
	KwFalse     Symbol = "false"
	KwNull      Symbol = "null"
	KwThis      Symbol = "this"
	KwVararg    Symbol = "vararg"
	KwAs        Symbol = "as"
	KwScope     Symbol = "scope"
	KwSuper     Symbol = "super"
)

// CanInsertSemicolonAfter reports whether tok can be the terminal token in
// a statement or expression, used by the parser/lexer's semicolon-
// insertion rule (spec.md §4.B "Statement termination"), grounded on the
// teacher's Grammar.canInsertSemicolonAfter.
func CanInsertSemicolonAfter(tok Token) bool {
	switch tok.Symbol {
	case IdentSymbol, IntSymbol, FloatSymbol, StringSymbol, CharSymbol,
		KwReturn, KwBreak, KwContinue, KwThis, KwVararg, KwTrue, KwFalse, KwNull,
		RBraceSymbol, RParenSymbol, RBracketSymbol, IncSymbol, DecSymbol:
		return true
	}
	return false
}

var keywords = map[string]Symbol{
	"class": KwClass, "namespace": KwNamespace, "function": KwFunction,
	"local": KwLocal, "global": KwGlobal, "if": KwIf, "else": KwElse,
	"while": KwWhile, "do": KwDo, "for": KwFor, "foreach": KwForeach,
	"switch": KwSwitch, "case": KwCase, "default": KwDefault,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"yield": KwYield, "throw": KwThrow, "try": KwTry, "catch": KwCatch,
	"finally": KwFinally, "import": KwImport, "is": KwIs, "and": KwAnd,
	"or": KwOr, "not": KwNot, "in": KwIn, "true": KwTrue, "false": KwFalse,
	"null": KwNull, "this": KwThis, "vararg": KwVararg, "as": KwAs,
	"scope": KwScope, "super": KwSuper,
}

// LookupKeyword returns the keyword Symbol for word, or (IdentSymbol,
// false) if word is not reserved.
func LookupKeyword(word string) (Symbol, bool) {
	sym, ok := keywords[word]
	if !ok {
		return IdentSymbol, false
	}
	return sym, true
}
