package sema_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/parser"
	"github.com/jarrettbillingsley/croc/sema"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passed(t *testing.T, src string) *ast.Program {
	t.Helper()
	file := source.NewFile("sema_test.croc", src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)
	require.NoError(t, sema.Pass(file, prog))
	return prog
}

func TestDefaultProtectionIsGlobalAtTopLevel(t *testing.T) {
	prog := passed(t, "function f() {}\n")
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, ast.ProtGlobal, fd.Protection)
}

func TestLocalDeclarationResolvesAsLocal(t *testing.T) {
	prog := passed(t, "function f() { local x = 1; return x }\n")
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)

	ret, ok := fd.Func.Body.Statements[len(fd.Func.Body.Statements)-1].(*ast.ReturnStmt)
	require.True(t, ok)
	require.Len(t, ret.Values, 1)

	ident, ok := ret.Values[0].(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, ast.RefLocal, ident.Ref)
}

func TestLocalParameterResolvesAsLocal(t *testing.T) {
	prog := passed(t, "function f(a) { return a }\n")
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)

	ret, ok := fd.Func.Body.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	ident, ok := ret.Values[0].(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, ast.RefLocal, ident.Ref)
}

func TestGlobalReferenceWhenUndeclaredLocally(t *testing.T) {
	prog := passed(t, "function f() { return g }\n")
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)

	ret, ok := fd.Func.Body.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	ident, ok := ret.Values[0].(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, ast.RefGlobal, ident.Ref)
}

func TestConstantFoldingCollapsesIntArithmetic(t *testing.T) {
	prog := passed(t, "return 1 + 2 * 3\n")
	ret, ok := prog.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.Len(t, ret.Values, 1)

	lit, ok := ret.Values[0].(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(7), lit.Value)
}

func TestUpvalueResolvesInNestedFunction(t *testing.T) {
	prog := passed(t, `
function outer() {
	local x = 1
	function inner() {
		return x
	}
	return inner
}
`)
	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)

	var innerDecl *ast.FuncDecl
	for _, s := range fd.Func.Body.Statements {
		if d, ok := s.(*ast.FuncDecl); ok {
			innerDecl = d
		}
	}
	require.NotNil(t, innerDecl)

	ret, ok := innerDecl.Func.Body.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	ident, ok := ret.Values[0].(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, ast.RefUpvalue, ident.Ref)
}

func TestPassRejectsUndeclaredBreak(t *testing.T) {
	file := source.NewFile("sema_test.croc", "break\n")
	prog, err := parser.Parse(file)
	require.NoError(t, err)
	assert.Error(t, sema.Pass(file, prog))
}
