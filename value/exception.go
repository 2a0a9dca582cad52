package value

import (
	"fmt"

	"github.com/jarrettbillingsley/croc/source"
)

// ExcKind enumerates the standard exception taxonomy from spec.md §6/§7.
type ExcKind uint8

const (
	ExcApiError ExcKind = iota
	ExcTypeError
	ExcValueError
	ExcRangeError
	ExcBoundsError
	ExcNameError
	ExcFieldError
	ExcStateError
	ExcRuntimeError
	ExcAssertError
	ExcHaltException
	ExcUnicodeError
	ExcSwitchError
	ExcImportException
	ExcLexicalException
	ExcSyntaxException
	ExcSemanticException
)

func (k ExcKind) String() string {
	names := [...]string{
		"ApiError", "TypeError", "ValueError", "RangeError", "BoundsError",
		"NameError", "FieldError", "StateError", "RuntimeError", "AssertError",
		"HaltException", "UnicodeError", "SwitchError", "ImportException",
		"LexicalException", "SyntaxException", "SemanticException",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Exception"
}

// Exception is both the Go error type used internally by the compiler and
// interpreter and the payload thrown/caught as a script-level value.
// Instance, when non-nil, is the user-constructed Instance of the
// registered standard-exception class (or a user-derived class);
// Exception itself always satisfies Go's error interface so it can
// propagate through ordinary Go call chains up to the call-prologue
// boundary where it is converted into a thrown value (spec.md §10 ambient
// stack note).
type Exception struct {
	Kind      ExcKind
	Msg       string
	Instance  *Instance
	Location  source.Pos
	Traceback []source.Pos
	Cause     *Exception
}

func (e *Exception) Error() string {
	if e.Location.Line != 0 {
		return fmt.Sprintf("%s: %s (%d:%d)", e.Kind, e.Msg, e.Location.Line, e.Location.Col)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// AppendTraceback records one more unwound frame's location, used by the
// interpreter's unwind loop. First throw captures the starting location
// via NewException; subsequent appends happen as each activation record is
// popped, matching spec.md §9's "build the traceback lazily."
func (e *Exception) AppendTraceback(pos source.Pos) {
	e.Traceback = append(e.Traceback, pos)
}

func NewException(kind ExcKind, loc source.Pos, format string, args ...interface{}) *Exception {
	return &Exception{Kind: kind, Msg: fmt.Sprintf(format, args...), Location: loc}
}
