// Command croc is the reference CLI for the language: run, check and
// disassemble source files, grounded on the teacher's plaid.go (same
// readSourceFiles/digestFile shape, generalized from a single "run vs.
// check" split into three subcommands and extended with the gas/hook
// flags SPEC_FULL.md §10's debug-affordances section adds).
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/compiler"
	"github.com/jarrettbillingsley/croc/feedback"
	"github.com/jarrettbillingsley/croc/parser"
	"github.com/jarrettbillingsley/croc/sema"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/jarrettbillingsley/croc/value"
	"github.com/jarrettbillingsley/croc/vm"
	"github.com/urfave/cli"
)

var (
	noColor       bool
	debugAST      bool
	debugBytecode bool
	debugHooks    bool
	gas           int64
	maxInstr      int64
)

// withMessage is implemented by every pipeline stage's error type
// (parser.parseErr, sema.semaErr, compiler.codegenErr), letting the CLI
// render them all through feedback.Message.Make the way the teacher's
// digestFile does for its own []feedback.Message.
type withMessage interface {
	Message() feedback.Message
}

func readSourceFile(arg string) (*source.File, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("could not find %q", arg)
	}
	buf, err := ioutil.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return source.NewFile(abs, string(buf)), nil
}

func reportErr(file *source.File, err error) {
	fmt.Printf("# %s\n", file.DisplayName())
	if wm, ok := err.(withMessage); ok {
		fmt.Println(wm.Message().Make(!noColor))
		return
	}
	fmt.Println(err.Error())
}

// frontend runs lexing, parsing and semantic resolution, the shared
// prefix every subcommand needs before it diverges (run compiles and
// executes, check stops here, disasm compiles but doesn't execute).
func frontend(file *source.File) (*ast.Program, error) {
	prog, err := parser.Parse(file)
	if err != nil {
		return nil, err
	}
	if err := sema.Pass(file, prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func runCheck(files []string) error {
	for _, arg := range files {
		file, err := readSourceFile(arg)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		prog, err := frontend(file)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if debugAST {
			fmt.Println(ast.Stringify(prog))
		}
	}
	return nil
}

func runDisasm(files []string) error {
	for _, arg := range files {
		file, err := readSourceFile(arg)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		prog, err := frontend(file)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if debugAST {
			fmt.Println(ast.Stringify(prog))
		}

		v := value.NewVM()
		fd, err := compiler.Compile(file, prog, v)
		if err != nil {
			reportErr(file, err)
			continue
		}
		fmt.Print(vm.Disassemble(fd))
	}
	return nil
}

// installDebugHook wires a native function as thread's line hook, printing
// every source line the interpreter crosses - the only hook event
// interpreter.go's dispatch loop currently fires (vm/interpreter.go's
// fireLineHook), so --debug-hooks only ever reports line crossings.
func installDebugHook(t *value.Thread) {
	hook := value.NewNativeFunction(nil, nil, func(th *value.Thread, args []value.Value) ([]value.Value, error) {
		if len(args) == 1 {
			fmt.Printf("  [hook] line %d\n", args[0].AsInt())
		}
		return nil, nil
	}, nil)
	t.HookFn = hook
	t.HookMask = value.HookLine
}

func runRun(files []string) error {
	for _, arg := range files {
		file, err := readSourceFile(arg)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		prog, err := frontend(file)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if debugAST {
			fmt.Println(ast.Stringify(prog))
		}

		v := value.NewVM()
		if gas > 0 {
			v.MaxInstructions = gas
		} else if maxInstr > 0 {
			v.MaxInstructions = maxInstr
		}

		fd, err := compiler.Compile(file, prog, v)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if debugBytecode {
			fmt.Print(vm.Disassemble(fd))
		}

		fn := value.NewScriptFunction(v.Globals, fd, nil)
		thread := value.NewThread(v, fn)
		if debugHooks {
			installDebugHook(thread)
		}

		ip := vm.New(v)
		if _, exc := ip.Resume(thread, nil); exc != nil {
			fmt.Printf("# %s\n", file.DisplayName())
			fmt.Println(exc.Error())
		}
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "croc"
	app.Usage = "a dynamically-typed scripting language"

	noColorFlag := cli.BoolFlag{Name: "no-color", Usage: "hide colors in error messages", Destination: &noColor}
	debugASTFlag := cli.BoolFlag{Name: "debug-ast", Usage: "print the parsed abstract syntax tree", Destination: &debugAST}
	debugBytecodeFlag := cli.BoolFlag{Name: "debug-bytecode", Usage: "print disassembled bytecode before running", Destination: &debugBytecode}
	debugHooksFlag := cli.BoolFlag{Name: "debug-hooks", Usage: "install a line debug hook and print every crossed line", Destination: &debugHooks}
	gasFlag := cli.Int64Flag{Name: "gas", Usage: "abort with a HaltException after this many instructions (0 = unlimited)", Destination: &gas}
	maxInstrFlag := cli.Int64Flag{Name: "max-instr", Usage: "alias for --gas", Destination: &maxInstr}

	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "parse, compile and execute file(s)",
			Flags: []cli.Flag{noColorFlag, debugASTFlag, debugBytecodeFlag, debugHooksFlag, gasFlag, maxInstrFlag},
			Action: func(c *cli.Context) error {
				return runRun(c.Args())
			},
		},
		{
			Name:  "check",
			Usage: "parse and semantically resolve file(s) without executing",
			Flags: []cli.Flag{noColorFlag, debugASTFlag},
			Action: func(c *cli.Context) error {
				return runCheck(c.Args())
			},
		},
		{
			Name:  "disasm",
			Usage: "compile file(s) and print disassembled bytecode",
			Flags: []cli.Flag{noColorFlag, debugASTFlag},
			Action: func(c *cli.Context) error {
				return runDisasm(c.Args())
			},
		},
	}

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	app.Run(os.Args)
}
