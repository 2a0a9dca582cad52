package doc_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/doc"
	"github.com/jarrettbillingsley/croc/parser"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *source.File {
	t.Helper()
	return source.NewFile("doc_test.croc", src)
}

func TestExtractFunctionDoc(t *testing.T) {
	file := parse(t, "/// adds two numbers\nfunction add(a, b) { return a + b; }\n")
	prog, err := parser.Parse(file)
	require.NoError(t, err)

	tbl := doc.Extract(prog)
	require.Len(t, tbl.Entries, 1)
	assert.Equal(t, "add", tbl.Entries[0].Name)
	assert.Equal(t, doc.KindFunction, tbl.Entries[0].Kind)
	assert.Equal(t, "adds two numbers", tbl.Entries[0].Comment)
}

func TestExtractClassFieldsAndMethods(t *testing.T) {
	src := `
/** A point in 2D space. */
class Point {
	/// the x coordinate
	x = 0
	y = 0
	/// returns the distance from the origin
	function mag() { return this.x; }
}
`
	file := parse(t, src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)

	tbl := doc.Extract(prog)
	require.Len(t, tbl.Entries, 1)
	cls := tbl.Entries[0]
	assert.Equal(t, "Point", cls.Name)
	assert.Equal(t, doc.KindClass, cls.Kind)
	assert.Equal(t, "A point in 2D space.", cls.Comment)

	require.Len(t, cls.Members, 3)
	assert.Equal(t, "x", cls.Members[0].Name)
	assert.Equal(t, "the x coordinate", cls.Members[0].Comment)
	assert.Equal(t, "y", cls.Members[1].Name)
	assert.Empty(t, cls.Members[1].Comment)
	assert.Equal(t, "mag", cls.Members[2].Name)
	assert.Equal(t, doc.KindMethod, cls.Members[2].Kind)
}

func TestExtractUndocumentedDeclarationsStillListed(t *testing.T) {
	file := parse(t, "local x = 1\n")
	prog, err := parser.Parse(file)
	require.NoError(t, err)

	tbl := doc.Extract(prog)
	require.Len(t, tbl.Entries, 1)
	assert.Equal(t, "x", tbl.Entries[0].Name)
	assert.Empty(t, tbl.Entries[0].Comment)
}

func TestExtractDocSurvivesLocalPrefixAndDecorator(t *testing.T) {
	src := "/// memoized fib\n@memo\nlocal function fib(n) { return n; }\n"
	file := parse(t, src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)

	tbl := doc.Extract(prog)
	require.Len(t, tbl.Entries, 1)
	assert.Equal(t, "fib", tbl.Entries[0].Name)
	assert.Equal(t, "memoized fib", tbl.Entries[0].Comment)
}
