package compiler

import (
	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
)

// driver holds the state shared by every builder compiling one source
// file: the VM (for string interning and building the shared instanceof
// helper), the file (for error spans) and the first codegen error
// encountered, the same "first error wins, keep walking" shape the
// teacher's Compiler.err field uses.
type driver struct {
	vm   *value.VM
	file *source.File
	err  error

	// isInstanceOf is a native Function shared by every try/catch's
	// multi-clause dispatch in this file; lazily built the first time a
	// typed catch clause needs it (see try.go's compileTry).
	isInstanceOf *value.Function
}

func (d *driver) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// getIsInstanceOf lazily builds the native Function every typed catch
// clause's dispatch in this file calls to test caught-value ancestry,
// wrapping value.InstanceIsA (value/vm.go) the same way a host library
// function would be exposed to script code, so catch-clause type tests
// reuse the ordinary Call/IsTrue opcodes instead of needing a dedicated
// instruction.
func (d *driver) getIsInstanceOf() *value.Function {
	if d.isInstanceOf != nil {
		return d.isInstanceOf
	}
	fn := value.NewNativeFunction(nil, nil, func(t *value.Thread, args []value.Value) ([]value.Value, error) {
		if len(args) != 2 || args[0].Kind() != value.KindInstance || args[1].Kind() != value.KindClass {
			return []value.Value{value.Bool(false)}, nil
		}
		return []value.Value{value.Bool(value.InstanceIsA(args[0].AsInstance(), args[1].AsClass()))}, nil
	}, nil)
	d.isInstanceOf = fn
	return fn
}

// Compile translates a semantically-resolved program into its top-level
// Funcdef, recursively compiling every nested function literal into
// fd.Inner, grounded on the teacher's Compiler.CompileModule
// (backend/compiler.go) generalized from Plaid's single-function-per-file
// shape to Croc's arbitrarily-nested closures, classes and namespaces.
func Compile(file *source.File, prog *ast.Program, vm *value.VM) (*value.Funcdef, error) {
	d := &driver{vm: vm, file: file}
	b := newBuilder(d, nil, nil, prog.Locals)
	b.fd.File = file.Filename
	b.fd.IsVararg = true
	b.fd.NumParams = 0

	b.compileBlockStmts(prog.Statements)
	b.finalizeReturn()

	if d.err != nil {
		return nil, d.err
	}

	b.finalize(prog.Locals, prog.Upvalues)
	return b.fd, nil
}
