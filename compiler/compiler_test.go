package compiler_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/compiler"
	"github.com/jarrettbillingsley/croc/parser"
	"github.com/jarrettbillingsley/croc/sema"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *value.Funcdef {
	t.Helper()
	file := source.NewFile("compiler_test.croc", src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)
	require.NoError(t, sema.Pass(file, prog))

	v := value.NewVM()
	fd, err := compiler.Compile(file, prog, v)
	require.NoError(t, err)
	return fd
}

func TestCompileTopLevelIsVarargWithNoFixedParams(t *testing.T) {
	fd := compile(t, "return 1\n")
	assert.Equal(t, 0, fd.NumParams)
	assert.True(t, fd.IsVararg)
	assert.NotEmpty(t, fd.Code)
}

func TestCompileEmitsInnerFuncdefForNestedFunction(t *testing.T) {
	fd := compile(t, "function f() { return 1 }\n")
	require.Len(t, fd.Inner, 1)
	assert.Equal(t, 0, fd.Inner[0].NumParams)
}

func TestCompileFunctionParamsSetNumParams(t *testing.T) {
	fd := compile(t, "function f(a, b, c) { return a }\n")
	require.Len(t, fd.Inner, 1)
	assert.Equal(t, 3, fd.Inner[0].NumParams)
}

func TestCompileVarargFunctionIsMarked(t *testing.T) {
	fd := compile(t, "function f(a, vararg) { return a }\n")
	require.Len(t, fd.Inner, 1)
	assert.True(t, fd.Inner[0].IsVararg)
}

func TestCompileStringLiteralBecomesConstant(t *testing.T) {
	fd := compile(t, `return "hello"`)
	found := false
	for _, c := range fd.Constants {
		if c.Kind() == value.KindString && c.AsString().Bytes == "hello" {
			found = true
		}
	}
	assert.True(t, found, "expected \"hello\" to appear in the constant pool")
}

func TestDisassembleProducesNonEmptyListing(t *testing.T) {
	fd := compile(t, "global x = 1 + 2\nreturn x\n")
	out := vm.Disassemble(fd)
	assert.NotEmpty(t, out)
}
