package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jarrettbillingsley/croc/source"
)

// LexError is raised for malformed input (spec.md §4.B "Fails with
// LexicalException on malformed input"). EOF reports an unexpected EOF
// inside a string or block comment.
type LexError struct {
	Pos source.Pos
	Msg string
	EOF bool
}

func (e *LexError) Error() string { return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg) }

// Lexer turns a source.File into a stream of Tokens. It implements
// automatic-semicolon-insertion by tracking whether a newline was crossed
// since the last emitted token (spec.md §4.B "Statement termination"),
// grounded on the teacher's frontend/lexer.go Lexer struct and its
// peek/history buffering.
type Lexer struct {
	Scanner *Scanner

	peekBuf []Token
	sawNewlineSinceLast bool
	lastToken           Token
	haveLast            bool

	pendingDoc string
}

func NewLexer(file *source.File) (*Lexer, error) {
	l := &Lexer{Scanner: NewScanner(file)}
	return l, nil
}

// Peek returns the n-th (0-based) upcoming token without consuming it.
func (l *Lexer) Peek(n int) (Token, error) {
	for len(l.peekBuf) <= n {
		tok, err := l.readNextToken()
		if err != nil {
			return Token{}, err
		}
		l.peekBuf = append(l.peekBuf, tok)
	}
	return l.peekBuf[n], nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if len(l.peekBuf) > 0 {
		tok := l.peekBuf[0]
		l.peekBuf = l.peekBuf[1:]
		l.lastToken, l.haveLast = tok, true
		return tok, nil
	}
	tok, err := l.readNextToken()
	if err != nil {
		return Token{}, err
	}
	l.lastToken, l.haveLast = tok, true
	return tok, nil
}

// CanInsertSemicolon reports whether, at the current lexer position, an
// automatic semicolon could be inserted after the last-returned token: a
// newline (or EOF, or a closing bracket already lexed) was crossed and the
// last token is a valid statement terminal.
func (l *Lexer) CanInsertSemicolon() bool {
	if !l.haveLast || !CanInsertSemicolonAfter(l.lastToken) {
		return false
	}
	// Lex the following token so the newline flag describes the gap right
	// after lastToken.
	next, err := l.Peek(0)
	if err != nil {
		return false
	}
	switch next.Symbol {
	case EOFSymbol, RBraceSymbol, RParenSymbol, RBracketSymbol:
		return true
	}
	return l.sawNewlineSinceLast
}

func (l *Lexer) readNextToken() (Token, error) {
	l.sawNewlineSinceLast = false
	var doc string

	for {
		r, pos, _, eof := l.Scanner.Peek()
		if eof {
			return Token{Symbol: EOFSymbol, Span: source.Span{Start: pos, End: pos}, PreComment: doc}, nil
		}

		if r == '\n' {
			l.Scanner.Next()
			l.sawNewlineSinceLast = true
			continue
		}

		if r <= ' ' {
			l.Scanner.Next()
			continue
		}

		if r == '#' {
			handled, _, err := l.lexHashLine()
			if err != nil {
				return Token{}, err
			}
			if handled {
				continue
			}
			break // lone '#': fall through to the punctuator switch below
		}

		if r == '/' {
			next2, _, _, _ := l.peekAhead(1)
			if next2 == '/' || next2 == '*' {
				d, err := l.lexComment()
				if err != nil {
					return Token{}, err
				}
				if d != "" {
					doc = d
				}
				continue
			}
		}

		break
	}

	r, pos, _, _ := l.Scanner.Peek()

	var tok Token
	var err error
	switch {
	case isAlpha(r) || r == '_':
		tok, err = l.lexWord(pos)
	case isDigit(r):
		tok, err = l.lexNumber(pos)
	case r == '"' || r == '\'':
		tok, err = l.lexString(pos)
	case r == '@':
		next2, _, _, _ := l.peekAhead(1)
		if next2 == '"' || next2 == '\'' {
			tok, err = l.lexRawString(pos)
		} else {
			l.Scanner.Next()
			tok = Token{Symbol: AtSymbol, Lexeme: "@", Span: source.Span{Start: pos, End: pos}}
		}
	case r == '[':
		if handled, t, e := l.tryLexVerbatimString(pos); handled {
			tok, err = t, e
		} else {
			tok, err = l.lexPunctuatorOrOperator(pos)
		}
	default:
		tok, err = l.lexPunctuatorOrOperator(pos)
	}
	if err != nil {
		return Token{}, err
	}
	tok.PreComment = doc
	return tok, nil
}

func (l *Lexer) peekAhead(n int) (rune, source.Pos, bool, bool) {
	// Small lookahead without a full Scanner checkpoint: snapshot/restore
	// the underlying byte offset directly since Scanner has no public
	// seek; a second Scanner over the same File would diverge on
	// #line state, so we save/restore manually.
	save := *l.Scanner
	for i := 0; i < n; i++ {
		_, _, _, eof := l.Scanner.Peek()
		if eof {
			*l.Scanner = save
			return 0, source.Pos{}, false, true
		}
		l.Scanner.Next()
	}
	r, pos, eol, eof := l.Scanner.Peek()
	*l.Scanner = save
	return r, pos, eol, eof
}

func (l *Lexer) lexHashLine() (bool, string, error) {
	save := *l.Scanner
	l.Scanner.Next() // consume '#'
	if r, _, _, eof := l.Scanner.Peek(); eof || r == '!' {
		// shebang-like; only meaningful on line 1, already stripped by
		// source.NewFile. `#!` (or a '#' right before EOF) is skipped as a
		// comment to end of line; any other '#' not followed by "line" is
		// left for the punctuator switch.
		for {
			r, _, eol, eof := l.Scanner.Peek()
			if eof || eol {
				break
			}
			_ = r
			l.Scanner.Next()
		}
		return true, "", nil
	}

	rest := l.restOfLine()
	if strings.HasPrefix(rest, "line ") {
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				name := ""
				if len(fields) >= 3 {
					name = strings.Trim(fields[2], `"`)
				}
				l.Scanner.RetargetLine(n, name)
				return true, "", nil
			}
		}
	}

	*l.Scanner = save
	return false, "", nil
}

// restOfLine consumes and returns the remaining bytes on the current line
// without interpreting them, used by #line pragma parsing.
func (l *Lexer) restOfLine() string {
	var b strings.Builder
	for {
		r, _, eol, eof := l.Scanner.Peek()
		if eof || eol {
			break
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	return b.String()
}

func (l *Lexer) lexComment() (doc string, err error) {
	_, startPos, _, _ := l.Scanner.Peek()
	l.Scanner.Next() // consume first '/'
	r, _, _, _ := l.Scanner.Peek()

	if r == '/' {
		l.Scanner.Next()
		isDoc := false
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '/' {
			isDoc = true
			l.Scanner.Next()
		}
		text := l.restOfLine()
		if isDoc {
			return strings.TrimSpace(text), nil
		}
		return "", nil
	}

	// Block comment, possibly nestable, possibly doc (/** ... */).
	l.Scanner.Next() // consume '*'
	isDoc := false
	if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '*' {
		if r3, _, _, eof3 := l.peekAhead(1); !eof3 && r3 != '/' {
			isDoc = true
			l.Scanner.Next() // consume the second '*' of `/**`
		}
	}

	depth := 1
	var b strings.Builder
	for depth > 0 {
		r, _, _, eof := l.Scanner.Peek()
		if eof {
			return "", &LexError{Pos: startPos, Msg: "unterminated block comment", EOF: true}
		}
		if r == '/' {
			if r2, _, _, _ := l.peekAhead(1); r2 == '*' {
				l.Scanner.Next()
				l.Scanner.Next()
				depth++
				continue
			}
		}
		if r == '*' {
			if r2, _, _, _ := l.peekAhead(1); r2 == '/' {
				l.Scanner.Next()
				l.Scanner.Next()
				depth--
				continue
			}
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	if isDoc {
		return strings.TrimSpace(b.String()), nil
	}
	return "", nil
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlphaNum(r rune) bool { return isAlpha(r) || isDigit(r) || r == '_' }
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) lexWord(pos source.Pos) (Token, error) {
	var b strings.Builder
	for {
		r, _, _, eof := l.Scanner.Peek()
		if eof || !isAlphaNum(r) {
			break
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	word := b.String()
	_, endPos, _, _ := l.Scanner.Peek()
	span := source.Span{Start: pos, End: prevCol(endPos)}
	if sym, ok := LookupKeyword(word); ok {
		return Token{Symbol: sym, Lexeme: word, Span: span}, nil
	}
	return Token{Symbol: IdentSymbol, Lexeme: word, Span: span}, nil
}

func prevCol(p source.Pos) source.Pos {
	if p.Col > 1 {
		return source.Pos{Line: p.Line, Col: p.Col - 1}
	}
	return p
}

func (l *Lexer) lexNumber(pos source.Pos) (Token, error) {
	var b strings.Builder
	isFloat := false

	r, _, _, _ := l.Scanner.Peek()
	if r == '0' {
		r2, _, _, _ := l.peekAhead(1)
		if r2 == 'x' || r2 == 'X' {
			l.Scanner.Next()
			l.Scanner.Next()
			var hb strings.Builder
			for {
				r, _, _, eof := l.Scanner.Peek()
				if eof || !(isHexDigit(r) || r == '_') {
					break
				}
				if r != '_' {
					hb.WriteRune(r)
				}
				l.Scanner.Next()
			}
			n, err := strconv.ParseInt(hb.String(), 16, 64)
			if err != nil {
				return Token{}, &LexError{Pos: pos, Msg: "malformed hex integer literal"}
			}
			return Token{Symbol: IntSymbol, Lexeme: "0x" + hb.String(), Span: source.Span{Start: pos, End: pos}, PostComment: strconv.FormatInt(n, 10)}, nil
		}
		if r2 == 'b' || r2 == 'B' {
			l.Scanner.Next()
			l.Scanner.Next()
			var hb strings.Builder
			for {
				r, _, _, eof := l.Scanner.Peek()
				if eof || !(r == '0' || r == '1' || r == '_') {
					break
				}
				if r != '_' {
					hb.WriteRune(r)
				}
				l.Scanner.Next()
			}
			n, err := strconv.ParseInt(hb.String(), 2, 64)
			if err != nil {
				return Token{}, &LexError{Pos: pos, Msg: "malformed binary integer literal"}
			}
			return Token{Symbol: IntSymbol, Lexeme: "0b" + hb.String(), Span: source.Span{Start: pos, End: pos}, PostComment: strconv.FormatInt(n, 10)}, nil
		}
	}

	for {
		r, _, _, eof := l.Scanner.Peek()
		if eof || !(isDigit(r) || r == '_') {
			break
		}
		if r != '_' {
			b.WriteRune(r)
		}
		l.Scanner.Next()
	}

	if r, _, _, eof := l.Scanner.Peek(); !eof && r == '.' {
		if r2, _, _, _ := l.peekAhead(1); isDigit(r2) {
			isFloat = true
			b.WriteRune('.')
			l.Scanner.Next()
			for {
				r, _, _, eof := l.Scanner.Peek()
				if eof || !(isDigit(r) || r == '_') {
					break
				}
				if r != '_' {
					b.WriteRune(r)
				}
				l.Scanner.Next()
			}
		}
	}

	if r, _, _, eof := l.Scanner.Peek(); !eof && (r == 'e' || r == 'E') {
		isFloat = true
		b.WriteRune('e')
		l.Scanner.Next()
		if r, _, _, eof := l.Scanner.Peek(); !eof && (r == '+' || r == '-') {
			b.WriteRune(r)
			l.Scanner.Next()
		}
		for {
			r, _, _, eof := l.Scanner.Peek()
			if eof || !(isDigit(r) || r == '_') {
				break
			}
			if r != '_' {
				b.WriteRune(r)
			}
			l.Scanner.Next()
		}
	}

	text := b.String()
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, &LexError{Pos: pos, Msg: "malformed float literal"}
		}
		return Token{Symbol: FloatSymbol, Lexeme: text, Span: source.Span{Start: pos, End: pos}, PostComment: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, &LexError{Pos: pos, Msg: "integer literal overflow"}
	}
	return Token{Symbol: IntSymbol, Lexeme: text, Span: source.Span{Start: pos, End: pos}, PostComment: strconv.FormatInt(n, 10)}, nil
}

func (l *Lexer) lexString(pos source.Pos) (Token, error) {
	quote, _, _, _ := l.Scanner.Next()
	var b strings.Builder
	for {
		r, p, _, eof := l.Scanner.Peek()
		if eof {
			return Token{}, &LexError{Pos: pos, Msg: "unterminated string literal", EOF: true}
		}
		if r == quote {
			l.Scanner.Next()
			break
		}
		if r == '\n' {
			return Token{}, &LexError{Pos: p, Msg: "newline in string literal"}
		}
		if r == '\\' {
			l.Scanner.Next()
			esc, err := l.lexEscape(p)
			if err != nil {
				return Token{}, err
			}
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	return Token{Symbol: StringSymbol, Lexeme: b.String(), Span: source.Span{Start: pos, End: pos}}, nil
}

func (l *Lexer) lexEscape(pos source.Pos) (string, error) {
	r, _, _, eof := l.Scanner.Peek()
	if eof {
		return "", &LexError{Pos: pos, Msg: "unterminated escape sequence", EOF: true}
	}
	l.Scanner.Next()
	switch r {
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case '0':
		return "\x00", nil
	case '\\', '"', '\'':
		return string(r), nil
	case 'x':
		return l.lexHexEscape(pos, 2)
	case 'u':
		return l.lexHexEscape(pos, 4)
	case 'U':
		return l.lexHexEscape(pos, 8)
	default:
		if isDigit(r) {
			val := int(r - '0')
			for i := 0; i < 2; i++ {
				if r2, _, _, eof := l.Scanner.Peek(); !eof && isDigit(r2) {
					val = val*10 + int(r2-'0')
					l.Scanner.Next()
				} else {
					break
				}
			}
			if val > utf8.MaxRune {
				return "", &LexError{Pos: pos, Msg: "invalid decimal escape: code point out of range"}
			}
			return string(rune(val)), nil
		}
		return "", &LexError{Pos: pos, Msg: "unrecognized escape sequence"}
	}
}

func (l *Lexer) lexHexEscape(pos source.Pos, digits int) (string, error) {
	val := 0
	for i := 0; i < digits; i++ {
		r, _, _, eof := l.Scanner.Peek()
		if eof || !isHexDigit(r) {
			return "", &LexError{Pos: pos, Msg: "malformed hex escape sequence"}
		}
		val = val*16 + hexVal(r)
		l.Scanner.Next()
	}
	if !utf8.ValidRune(rune(val)) {
		return "", &LexError{Pos: pos, Msg: "escape sequence produces invalid code point"}
	}
	return string(rune(val)), nil
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

func (l *Lexer) lexRawString(pos source.Pos) (Token, error) {
	l.Scanner.Next() // consume '@'
	quote, _, _, _ := l.Scanner.Next()
	var b strings.Builder
	for {
		r, _, _, eof := l.Scanner.Peek()
		if eof {
			return Token{}, &LexError{Pos: pos, Msg: "unterminated raw string literal", EOF: true}
		}
		if r == quote {
			l.Scanner.Next()
			break
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	return Token{Symbol: StringSymbol, Lexeme: b.String(), Span: source.Span{Start: pos, End: pos}}, nil
}

// tryLexVerbatimString attempts `[[...]]` or `[=[...]=]` verbatim string
// syntax; if the `[` isn't followed by a matching verbatim opener, it
// returns handled=false so the caller falls back to lexing `[` as the
// LBracketSymbol punctuator.
func (l *Lexer) tryLexVerbatimString(pos source.Pos) (bool, Token, error) {
	save := *l.Scanner
	l.Scanner.Next() // consume first '['

	eqCount := 0
	for {
		r, _, _, eof := l.Scanner.Peek()
		if !eof && r == '=' {
			eqCount++
			l.Scanner.Next()
			continue
		}
		break
	}

	r, _, _, eof := l.Scanner.Peek()
	if eof || r != '[' {
		*l.Scanner = save
		return false, Token{}, nil
	}
	l.Scanner.Next()

	closer := "]" + strings.Repeat("=", eqCount) + "]"
	var b strings.Builder
	for {
		if strings.HasPrefix(l.Scanner.File.Contents[l.Scanner.byteOffset():], closer) {
			for range closer {
				l.Scanner.Next()
			}
			break
		}
		r, _, _, eof := l.Scanner.Peek()
		if eof {
			return false, Token{}, &LexError{Pos: pos, Msg: "unterminated verbatim string literal", EOF: true}
		}
		b.WriteRune(r)
		l.Scanner.Next()
	}
	return true, Token{Symbol: StringSymbol, Lexeme: b.String(), Span: source.Span{Start: pos, End: pos}}, nil
}

// byteOffset exposes the scanner's internal cursor to the verbatim-string
// closer search, which needs to test a multi-byte literal prefix directly
// against the source buffer.
func (s *Scanner) byteOffset() int { return s.nextByte }

func (l *Lexer) lexPunctuatorOrOperator(pos source.Pos) (Token, error) {
	r, _, _, _ := l.Scanner.Next()

	two := func(want rune, sym2 Symbol, sym1 Symbol) Token {
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == want {
			l.Scanner.Next()
			return Token{Symbol: sym2, Span: source.Span{Start: pos, End: pos}}
		}
		return Token{Symbol: sym1, Span: source.Span{Start: pos, End: pos}}
	}

	switch r {
	case '(':
		return Token{Symbol: LParenSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case ')':
		return Token{Symbol: RParenSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '{':
		return Token{Symbol: LBraceSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '}':
		return Token{Symbol: RBraceSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '[':
		return Token{Symbol: LBracketSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case ']':
		return Token{Symbol: RBracketSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case ',':
		return Token{Symbol: CommaSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case ';':
		return Token{Symbol: SemiSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case ':':
		return two(':', ColonSymbol, ColonSymbol), nil
	case '.':
		return two('.', DotDotSymbol, DotSymbol), nil
	case '@':
		return Token{Symbol: AtSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '#':
		return Token{Symbol: HashSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '+':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '+' {
			l.Scanner.Next()
			return Token{Symbol: IncSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		return two('=', PlusEqSymbol, PlusSymbol), nil
	case '-':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '-' {
			l.Scanner.Next()
			return Token{Symbol: DecSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		return two('=', MinusEqSymbol, MinusSymbol), nil
	case '*':
		return two('=', StarEqSymbol, StarSymbol), nil
	case '/':
		return two('=', SlashEqSymbol, SlashSymbol), nil
	case '%':
		return two('=', PercentEqSymbol, PercentSymbol), nil
	case '~':
		return two('=', CatEqSymbol, TildeSymbol), nil
	case '!':
		return two('=', NeSymbol, BangSymbol), nil
	case '=':
		return two('=', EqSymbol, AssignSymbol), nil
	case '&':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '&' {
			l.Scanner.Next()
			return Token{Symbol: AndAndSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		return two('=', AmpEqSymbol, AmpSymbol), nil
	case '|':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '|' {
			l.Scanner.Next()
			return Token{Symbol: OrOrSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		return two('=', PipeEqSymbol, PipeSymbol), nil
	case '^':
		return two('=', CaretEqSymbol, CaretSymbol), nil
	case '?':
		return two('?', QQSymbol, QuestionSymbol), nil
	case '<':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '=' {
			l.Scanner.Next()
			if r3, _, _, eof3 := l.Scanner.Peek(); !eof3 && r3 == '>' {
				l.Scanner.Next()
				return Token{Symbol: Cmp3Symbol, Span: source.Span{Start: pos, End: pos}}, nil
			}
			return Token{Symbol: LeSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '<' {
			l.Scanner.Next()
			return two('=', ShlEqSymbol, ShlSymbol), nil
		}
		return Token{Symbol: LtSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	case '>':
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '=' {
			l.Scanner.Next()
			return Token{Symbol: GeSymbol, Span: source.Span{Start: pos, End: pos}}, nil
		}
		if r2, _, _, eof := l.Scanner.Peek(); !eof && r2 == '>' {
			l.Scanner.Next()
			if r3, _, _, eof3 := l.Scanner.Peek(); !eof3 && r3 == '>' {
				l.Scanner.Next()
				return two('=', UShrEqSymbol, UShrSymbol), nil
			}
			return two('=', ShrEqSymbol, ShrSymbol), nil
		}
		return Token{Symbol: GtSymbol, Span: source.Span{Start: pos, End: pos}}, nil
	default:
		return Token{}, &LexError{Pos: pos, Msg: fmt.Sprintf("unrecognized character %q", r)}
	}
}
