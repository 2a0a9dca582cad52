package source

import "strings"

// File represents a chunk of source code to be processed by the front-end. The
// "Contents" field is a raw string representation of the file's contents. The
// "Lines" field is a cached slice of the file's contents split by '\n' so that
// error messages aren't required to repeatedly split the contents.
type File struct {
	Filename string
	Contents string
	Lines    []string

	// NameOverride holds the file name given by a `#line N "name"` pragma
	// (set by the lexer's Scanner.RetargetLine, reported by DisplayName);
	// the line number itself is retargeted in the Scanner's own counter.
	// LineOffset is not set or read anywhere.
	LineOffset  int
	NameOverride string
}

// NewFile builds a File from raw contents, splitting it into lines and
// skipping a leading shebang line (`#!...`) the way a Croc source file is
// permitted to carry one.
func NewFile(filename, contents string) *File {
	if strings.HasPrefix(contents, "#!") {
		if idx := strings.IndexByte(contents, '\n'); idx >= 0 {
			contents = contents[idx+1:]
		} else {
			contents = ""
		}
	}

	return &File{
		Filename: filename,
		Contents: contents,
		Lines:    strings.SplitAfter(contents, "\n"),
	}
}

// DisplayName returns the filename a diagnostic should show, honoring any
// `#line` pragma override.
func (f *File) DisplayName() string {
	if f.NameOverride != "" {
		return f.NameOverride
	}
	return f.Filename
}
