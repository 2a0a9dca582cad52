package ast_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/ast"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/stretchr/testify/assert"
)

func TestStringifyVarDecl(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Stmt{
			&ast.VarDecl{
				Protection: ast.ProtGlobal,
				Name:       "x",
				Value:      &ast.IntLiteral{Value: 7},
			},
		},
	}
	out := ast.Stringify(prog)
	assert.Contains(t, out, `(vardecl global "x" [int 7])`)
}

func TestStringifyBinaryExpr(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Stmt{
			&ast.ReturnStmt{
				Values: []ast.Expr{
					&ast.BinaryExpr{
						Op:    ast.OpAdd,
						Left:  &ast.IntLiteral{Value: 1},
						Right: &ast.IntLiteral{Value: 2},
					},
				},
			},
		},
	}
	out := ast.Stringify(prog)
	assert.Contains(t, out, "(+ [int 1] [int 2])")
}

func TestProgramPosFallsBackWhenEmpty(t *testing.T) {
	prog := &ast.Program{}
	pos := prog.Pos()
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 1, pos.Col)
}

func TestProgramPosUsesFirstStatement(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Stmt{
			&ast.VarDecl{StartPos: source.Pos{Line: 5, Col: 3}, Name: "x"},
		},
	}
	assert.Equal(t, 5, prog.Pos().Line)
}

func TestIdentExprEndReflectsNameLength(t *testing.T) {
	id := &ast.IdentExpr{StartPos: source.Pos{Line: 1, Col: 1}, Name: "foobar"}
	assert.Equal(t, 7, id.End().Col)
}
