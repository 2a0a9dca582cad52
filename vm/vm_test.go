package vm_test

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

// run parses, resolves, compiles and executes src as a fresh module,
// returning the results of its implicit top-level call and any uncaught
// exception. This is the same pipeline cmd/croc's `run` command drives.
func run(t *testing.T, src string) ([]value.Value, *value.Exception) {
	t.Helper()
	file := source.NewFile("vm_test.croc", src)
	prog, err := parser.Parse(file)
	require.NoError(t, err)
	require.NoError(t, sema.Pass(file, prog))

	v := value.NewVM()
	fd, err := compiler.Compile(file, prog, v)
	require.NoError(t, err)

	fn := value.NewScriptFunction(v.Globals, fd, nil)
	thread := value.NewThread(v, fn)
	return vm.New(v).Resume(thread, nil)
}

func TestArithmeticAndGlobalReturn(t *testing.T) {
	res, exc := run(t, "global x = 1 + 2 * 3\nreturn x\n")
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.Equal(t, int64(7), res[0].AsInt())
}

func TestIfElseBranches(t *testing.T) {
	res, exc := run(t, `
global function classify(n) {
	if (n < 0) {
		return "neg"
	} else if (n == 0) {
		return "zero"
	} else {
		return "pos"
	}
}
return classify(-5), classify(0), classify(5)
`)
	require.Nil(t, exc)
	require.Len(t, res, 3)
	assert.Equal(t, "neg", res[0].AsString().Bytes)
	assert.Equal(t, "zero", res[1].AsString().Bytes)
	assert.Equal(t, "pos", res[2].AsString().Bytes)
}

func TestWhileLoopAccumulates(t *testing.T) {
	res, exc := run(t, `
local i = 0
local sum = 0
while (i < 5) {
	sum = sum + i
	i = i + 1
}
return sum
`)
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.Equal(t, int64(10), res[0].AsInt())
}

func TestForeachOverArray(t *testing.T) {
	res, exc := run(t, `
local total = 0
foreach (x; [1, 2, 3, 4]) {
	total = total + x
}
return total
`)
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.Equal(t, int64(10), res[0].AsInt())
}

func TestTryCatchBindsValueAndContinues(t *testing.T) {
	res, exc := run(t, `
class Boom {
	msg = ""
}
local caught = null
try {
	local b = Boom()
	b.msg = "boom"
	throw b
} catch (e) {
	caught = e.msg
}
return caught
`)
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.Equal(t, "boom", res[0].AsString().Bytes)
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	res, exc := run(t, `
local ran = false
try {
	local x = 1
} finally {
	ran = true
}
return ran
`)
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.True(t, res[0].AsBool())
}

func TestClassFieldsAndMethods(t *testing.T) {
	res, exc := run(t, `
class Counter {
	n = 0
	function bump() {
		this.n = this.n + 1
		return this.n
	}
}
local c = Counter()
c.bump()
c.bump()
return c.bump()
`)
	require.Nil(t, exc)
	require.Len(t, res, 1)
	assert.Equal(t, int64(3), res[0].AsInt())
}

func TestUncaughtThrowReturnsException(t *testing.T) {
	_, exc := run(t, `
class Boom {
	msg = ""
}
local b = Boom()
b.msg = "kaboom"
throw b
`)
	require.NotNil(t, exc)
	assert.Equal(t, "kaboom", exc.Msg)
}

func TestThrowingNonInstanceIsATypeError(t *testing.T) {
	_, exc := run(t, `throw "kaboom"`)
	require.NotNil(t, exc)
	assert.Equal(t, value.ExcTypeError, exc.Kind)
}
