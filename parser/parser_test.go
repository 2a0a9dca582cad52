package parser_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/parser"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	file := source.NewFile("parser_test.croc", src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)
	return prog
}

func TestParseVarDeclWithProtection(t *testing.T) {
	prog := parse(t, "local x = 1\nglobal y = 2\n")
	require.Len(t, prog.Statements, 2)

	vd1, ok := prog.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", vd1.Name)
	assert.Equal(t, ast.ProtLocal, vd1.Protection)

	vd2, ok := prog.Statements[1].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "y", vd2.Name)
	assert.Equal(t, ast.ProtGlobal, vd2.Protection)
}

func TestParseFuncDeclWithParams(t *testing.T) {
	prog := parse(t, "function add(a, b) { return a + b }\n")
	require.Len(t, prog.Statements, 1)

	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fd.Name)
	require.Len(t, fd.Func.Params, 2)
	assert.Equal(t, "a", fd.Func.Params[0].Name)
	assert.Equal(t, "b", fd.Func.Params[1].Name)
	assert.Equal(t, "add", fd.Name)
}

func TestParseClassWithFieldsAndMethods(t *testing.T) {
	src := `
class Point {
	x = 0
	y = 0
	function mag() { return this.x }
}
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 1)

	cd, ok := prog.Statements[0].(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", cd.Name)
	require.Len(t, cd.Fields, 2)
	assert.Equal(t, "x", cd.Fields[0].Name)
	assert.Equal(t, "y", cd.Fields[1].Name)
	require.Len(t, cd.Methods, 1)
	assert.Equal(t, "mag", cd.Methods[0].Name)
}

func TestParseBinaryExprPrecedence(t *testing.T) {
	prog := parse(t, "return 1 + 2 * 3\n")
	require.Len(t, prog.Statements, 1)

	ret, ok := prog.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.Len(t, ret.Values, 1)

	top, ok := ret.Values[0].(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, top.Op)

	_, ok = top.Left.(*ast.IntLiteral)
	require.True(t, ok)

	right, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, right.Op)
}

func TestParseIfElseChain(t *testing.T) {
	src := `
if (x < 0) {
	return "neg"
} else if (x == 0) {
	return "zero"
} else {
	return "pos"
}
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 1)

	ifs, ok := prog.Statements[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.ElifClauses, 1)
	require.NotNil(t, ifs.ElseClause)
	assert.Nil(t, ifs.ElseClause.Cond)
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `
try {
	throw x
} catch (e) {
	local y = e
} finally {
	local z = 1
}
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 1)

	tr, ok := prog.Statements[0].(*ast.TryStmt)
	require.True(t, ok)
	require.Len(t, tr.Catches, 1)
	assert.Equal(t, "e", tr.Catches[0].Binding)
	assert.NotNil(t, tr.Catches[0].Body)
	assert.NotNil(t, tr.Finally)
}

func TestParseForeachOverArrayLiteral(t *testing.T) {
	prog := parse(t, "foreach (x; [1, 2, 3]) { local y = x }\n")
	require.Len(t, prog.Statements, 1)

	fe, ok := prog.Statements[0].(*ast.ForeachStmt)
	require.True(t, ok)
	require.Len(t, fe.Names, 1)
	assert.Equal(t, "x", fe.Names[0])
}

func TestParseUnexpectedTokenReturnsError(t *testing.T) {
	file := source.NewFile("parser_test.croc", "local = 1\n")
	_, err := parser.Parse(file)
	require.Error(t, err)
}

func TestParseDecoratorAppliesToFuncDecl(t *testing.T) {
	prog := parse(t, "@memo\nfunction fib(n) { return n }\n")
	require.Len(t, prog.Statements, 1)

	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Len(t, fd.Decorators, 1)
}
