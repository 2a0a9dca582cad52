// Package doc implements the optional compile-time doc-extraction pass
// spec.md §4.I describes: an outline-only visitor over an already-parsed
// ast.Program that records each top-level function/class/namespace/
// variable declaration's name, kind and parsed `///`/`/** */` doc-comment
// text. It has no teacher precedent (Plaid carries no doc-extraction
// pass) and shares only the ast package, so it is built directly from the
// spec paragraph rather than adapted from existing code.
package doc

import "github.com/jarrettbillingsley/croc/ast"

// Kind identifies what declaration an Entry describes.
type Kind uint8

const (
	KindFunction Kind = iota
	KindClass
	KindNamespace
	KindVariable
	KindField
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindNamespace:
		return "namespace"
	case KindVariable:
		return "variable"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Entry is one documented declaration: its name, kind, attached comment
// text (empty if undocumented) and, for classes/namespaces, the nested
// members declared inside it.
type Entry struct {
	Name    string
	Kind    Kind
	Comment string
	Members []*Entry
}

// Table is the table-of-tables spec.md §4.I describes: one Entry per
// top-level declaration in a module, in source order. The module's
// top-level function installs it at runtime as a decorator argument
// (spec.md §4.I); this package only builds the table, it does not wire
// the installation call.
type Table struct {
	Entries []*Entry
}

// Extract walks prog's top-level statements (and, for classes/namespaces,
// their direct members) and returns the documentation table. Declarations
// without an attached doc comment still get an Entry with an empty
// Comment, so the table's shape mirrors the module's declaration outline
// regardless of how much of it is actually documented.
func Extract(prog *ast.Program) *Table {
	t := &Table{}
	for _, s := range prog.Statements {
		if e := extractStmt(s); e != nil {
			t.Entries = append(t.Entries, e)
		}
	}
	return t
}

func extractStmt(s ast.Stmt) *Entry {
	switch n := s.(type) {
	case *ast.VarDecl:
		return &Entry{Name: n.Name, Kind: KindVariable, Comment: n.Doc}
	case *ast.FuncDecl:
		return &Entry{Name: n.Name, Kind: KindFunction, Comment: n.Doc}
	case *ast.ClassDecl:
		e := &Entry{Name: n.Name, Kind: KindClass, Comment: n.Doc}
		for _, f := range n.Fields {
			e.Members = append(e.Members, &Entry{Name: f.Name, Kind: KindField, Comment: f.Doc})
		}
		for _, m := range n.Methods {
			e.Members = append(e.Members, &Entry{Name: m.Name, Kind: KindMethod, Comment: m.Doc})
		}
		return e
	case *ast.NamespaceDecl:
		e := &Entry{Name: n.Name, Kind: KindNamespace, Comment: n.Doc}
		for _, f := range n.Fields {
			kind := KindField
			if _, ok := f.Value.(*ast.FuncLiteral); ok {
				kind = KindMethod
			}
			e.Members = append(e.Members, &Entry{Name: f.Name, Kind: kind, Comment: f.Doc})
		}
		return e
	default:
		return nil
	}
}
