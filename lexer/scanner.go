package lexer

import (
	"unicode/utf8"

	"github.com/jarrettbillingsley/croc/source"
)

// Scanner walks a source.File rune-by-rune, tracking the current
// byte/line/column position, grounded on the teacher's frontend/scanner.go.
type Scanner struct {
	File     *source.File
	nextByte int
	nextLine int
	nextCol  int
}

func NewScanner(file *source.File) *Scanner {
	return &Scanner{File: file, nextByte: 0, nextLine: 1, nextCol: 1}
}

// Peek returns the next rune without consuming it.
func (s *Scanner) Peek() (r rune, pos source.Pos, eol bool, eof bool) {
	if s.nextByte >= len(s.File.Contents) {
		return 0, source.Pos{Line: s.nextLine, Col: s.nextCol}, false, true
	}
	r, _ = utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])
	pos = source.Pos{Line: s.nextLine, Col: s.nextCol}
	eol = r == '\n'
	return r, pos, eol, false
}

// Next consumes and returns the next rune, advancing line/column tracking.
// Panics if called past EOF, matching the teacher's contract that callers
// must check Peek's eof flag first.
func (s *Scanner) Next() (r rune, pos source.Pos, eol bool, eof bool) {
	r, pos, eol, eof = s.Peek()
	if eof {
		panic("lexer: Scanner.Next called past EOF")
	}
	_, width := utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])
	s.nextByte += width
	if r == '\n' {
		s.nextLine++
		s.nextCol = 1
	} else {
		s.nextCol++
	}
	return r, pos, eol, false
}

// RetargetLine implements `#line N "name"` pragmas: subsequent positions
// report line N (with the same column tracking) and, if name != "", the
// overridden display filename.
func (s *Scanner) RetargetLine(line int, name string) {
	s.nextLine = line
	if name != "" {
		s.File.NameOverride = name
	}
}
