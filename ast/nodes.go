// Package ast defines the node set produced by package parser, grounded
// on the teacher's frontend/nodes.go Node/Stmt/Expr/Literal interface
// shape and generalized to Croc's full grammar: classes, namespaces,
// decorators, comprehensions, try/catch/finally, scope actions, switch,
// coroutines and import declarations (spec.md §4.C).
package ast

import "github.com/jarrettbillingsley/croc/source"

// Node is a generic AST node.
type Node interface {
	Pos() source.Pos
	End() source.Pos
}

// Stmt is a Node that produces no value when executed.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a Node that produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Literal is an Expr that is syntactically atomic.
type Literal interface {
	Expr
	literalNode()
}

// Program is the root of a parsed module, compiled as an implicit vararg
// top-level function; Locals/Upvalues mirror FuncLiteral's annotation
// fields, populated by sema.Pass.
type Program struct {
	Statements []Stmt
	Locals     []*LocalRecord
	Upvalues   []*UpvalueRecord
}

func (p *Program) Pos() source.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return source.Pos{Line: 1, Col: 1}
}
func (p *Program) End() source.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[len(p.Statements)-1].End()
	}
	return source.Pos{Line: 1, Col: 1}
}

// ---- declarations ----

// Protection is whether a declaration is explicitly `local`/`global` or
// left to semantic's default-protection inference (spec.md §4.C/§4.D).
type Protection uint8

const (
	ProtDefault Protection = iota
	ProtLocal
	ProtGlobal
)

type VarDecl struct {
	StartPos   source.Pos
	Protection Protection
	Name       string
	Value      Expr // may be nil
	Decorators []*Decorator
	Doc        string // text of a `///`/`/** */` comment immediately above, if any
}

func (d *VarDecl) Pos() source.Pos { return d.StartPos }
func (d *VarDecl) End() source.Pos {
	if d.Value != nil {
		return d.Value.End()
	}
	return d.StartPos
}
func (*VarDecl) stmtNode() {}

type FuncDecl struct {
	StartPos   source.Pos
	Protection Protection
	Name       string
	Func       *FuncLiteral
	Decorators []*Decorator
	Doc        string
}

func (d *FuncDecl) Pos() source.Pos { return d.StartPos }
func (d *FuncDecl) End() source.Pos { return d.Func.End() }
func (*FuncDecl) stmtNode()         {}

type ClassDecl struct {
	StartPos   source.Pos
	Protection Protection
	Name       string
	Bases      []Expr
	Fields     []*FieldMember
	Methods    []*FuncDecl
	EndPos     source.Pos
	Decorators []*Decorator
	Doc        string
}

func (d *ClassDecl) Pos() source.Pos { return d.StartPos }
func (d *ClassDecl) End() source.Pos { return d.EndPos }
func (*ClassDecl) stmtNode()         {}

type FieldMember struct {
	Name   string
	Value  Expr // may be nil
	Hidden bool
	Doc    string
}

type NamespaceDecl struct {
	StartPos   source.Pos
	Protection Protection
	Name       string
	Parent     Expr // may be nil
	Fields     []*FieldMember
	EndPos     source.Pos
	Decorators []*Decorator
	Doc        string
}

func (d *NamespaceDecl) Pos() source.Pos { return d.StartPos }
func (d *NamespaceDecl) End() source.Pos { return d.EndPos }
func (*NamespaceDecl) stmtNode()         {}

// ImportDecl is lowered by the semantic pass into a `modules.load` call
// per spec.md §4.D point 6.
type ImportDecl struct {
	StartPos source.Pos
	EndPos   source.Pos
	Module   string
	Alias    string   // "" if none
	Symbols  []string // selective import list; empty if whole-module
}

func (d *ImportDecl) Pos() source.Pos { return d.StartPos }
func (d *ImportDecl) End() source.Pos { return d.EndPos }
func (*ImportDecl) stmtNode()         {}

type Decorator struct {
	StartPos source.Pos
	Target   Expr // the decorator function/expression, e.g. `@memoize`
}

func (d *Decorator) Pos() source.Pos { return d.StartPos }
func (d *Decorator) End() source.Pos { return d.Target.End() }

// ---- statements ----

type Block struct {
	StartPos   source.Pos
	EndPos     source.Pos
	Statements []Stmt
}

func (b *Block) Pos() source.Pos { return b.StartPos }
func (b *Block) End() source.Pos { return b.EndPos }
func (*Block) stmtNode()         {}

type Clause struct {
	Cond Expr // nil for an unconditional else clause
	Body *Block
}

type IfStmt struct {
	StartPos    source.Pos
	EndPos      source.Pos
	IfClause    *Clause
	ElifClauses []*Clause
	ElseClause  *Clause
}

func (s *IfStmt) Pos() source.Pos { return s.StartPos }
func (s *IfStmt) End() source.Pos { return s.EndPos }
func (*IfStmt) stmtNode()         {}

type WhileStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Cond     Expr
	Body     *Block
}

func (s *WhileStmt) Pos() source.Pos { return s.StartPos }
func (s *WhileStmt) End() source.Pos { return s.EndPos }
func (*WhileStmt) stmtNode()         {}

type DoWhileStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Body     *Block
	Cond     Expr
}

func (s *DoWhileStmt) Pos() source.Pos { return s.StartPos }
func (s *DoWhileStmt) End() source.Pos { return s.EndPos }
func (*DoWhileStmt) stmtNode()         {}

// ForStmt is the numeric for: `for(init; hi; step) body`.
type ForStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Init     Expr
	Hi       Expr
	Step     Expr // may be nil (defaults to 1)
	Body     *Block
}

func (s *ForStmt) Pos() source.Pos { return s.StartPos }
func (s *ForStmt) End() source.Pos { return s.EndPos }
func (*ForStmt) stmtNode()         {}

// ForeachStmt: `foreach(names; exprs) body`. The compiler evaluates only
// Sources[0] and iterates it directly as an Array or String container
// (vm/control.go's execForeach); a function/state/control iterator triple
// is not supported, and any further source expressions are not compiled.
type ForeachStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Names    []string
	Sources  []Expr
	Body     *Block
}

func (s *ForeachStmt) Pos() source.Pos { return s.StartPos }
func (s *ForeachStmt) End() source.Pos { return s.EndPos }
func (*ForeachStmt) stmtNode()         {}

type SwitchCase struct {
	Values []Expr // literal case values; ranges are RangeExpr
	Body   []Stmt
}

type SwitchStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Cond     Expr
	Cases    []*SwitchCase
	Default  []Stmt // nil if absent
}

func (s *SwitchStmt) Pos() source.Pos { return s.StartPos }
func (s *SwitchStmt) End() source.Pos { return s.EndPos }
func (*SwitchStmt) stmtNode()         {}

type BreakStmt struct{ StartPos source.Pos }

func (s *BreakStmt) Pos() source.Pos { return s.StartPos }
func (s *BreakStmt) End() source.Pos { return s.StartPos }
func (*BreakStmt) stmtNode()         {}

type ContinueStmt struct{ StartPos source.Pos }

func (s *ContinueStmt) Pos() source.Pos { return s.StartPos }
func (s *ContinueStmt) End() source.Pos { return s.StartPos }
func (*ContinueStmt) stmtNode()         {}

type ReturnStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Values   []Expr
}

func (s *ReturnStmt) Pos() source.Pos { return s.StartPos }
func (s *ReturnStmt) End() source.Pos { return s.EndPos }
func (*ReturnStmt) stmtNode()         {}

type YieldStmt struct {
	StartPos source.Pos
	EndPos   source.Pos
	Values   []Expr
}

func (s *YieldStmt) Pos() source.Pos { return s.StartPos }
func (s *YieldStmt) End() source.Pos { return s.EndPos }
func (*YieldStmt) stmtNode()         {}

type ThrowStmt struct {
	StartPos source.Pos
	Value    Expr
}

func (s *ThrowStmt) Pos() source.Pos { return s.StartPos }
func (s *ThrowStmt) End() source.Pos { return s.Value.End() }
func (*ThrowStmt) stmtNode()         {}

// CatchClause; Types holds the (possibly multiple, `|`-separated) type
// expressions. Multiple clauses stay separate through the semantic pass;
// the compiler collapses them into one handler with an if/else chain over
// the caught value's class.
type CatchClause struct {
	Binding string
	Types   []Expr // empty means catch-all
	Body    *Block
}

type TryStmt struct {
	StartPos   source.Pos
	EndPos     source.Pos
	Body       *Block
	Catches    []*CatchClause
	Finally    *Block // may be nil
}

func (s *TryStmt) Pos() source.Pos { return s.StartPos }
func (s *TryStmt) End() source.Pos { return s.EndPos }
func (*TryStmt) stmtNode()         {}

// ScopeActionKind distinguishes scope(exit|success|failure).
type ScopeActionKind uint8

const (
	ScopeExit ScopeActionKind = iota
	ScopeSuccess
	ScopeFailure
)

// ScopeStmt is lowered by the semantic pass into try/catch/finally with
// hidden completion-tracking booleans per spec.md §4.D point 8.
type ScopeStmt struct {
	StartPos source.Pos
	Kind     ScopeActionKind
	Body     *Block
}

func (s *ScopeStmt) Pos() source.Pos { return s.StartPos }
func (s *ScopeStmt) End() source.Pos { return s.Body.End() }
func (*ScopeStmt) stmtNode()         {}

// ExprStmt wraps an expression used as a statement. The parser rejects
// "lone statement" expressions without side effects (spec.md §4.C) --
// only call/method-call/assignment/inc/dec/yield expressions are permitted here.
type ExprStmt struct {
	Value Expr
}

func (s *ExprStmt) Pos() source.Pos { return s.Value.Pos() }
func (s *ExprStmt) End() source.Pos { return s.Value.End() }
func (*ExprStmt) stmtNode()         {}

// ---- expressions ----

type BinaryOp string

const (
	OpAdd, OpSub, OpMul, OpDiv, OpMod BinaryOp = "+", "-", "*", "/", "%"
	OpAnd, OpOr, OpXor                BinaryOp = "&", "|", "^"
	OpShl, OpShr, OpUShr               BinaryOp = "<<", ">>", ">>>"
	OpEq, OpNe                          BinaryOp = "==", "!="
	OpLt, OpLe, OpGt, OpGe              BinaryOp = "<", "<=", ">", ">="
	OpCmp3                              BinaryOp = "<=>"
	OpIs, OpNotIs                       BinaryOp = "is", "!is"
	OpIn, OpNotIn                       BinaryOp = "in", "!in"
	OpAndAnd, OpOrOr                    BinaryOp = "&&", "||"
	OpCat                               BinaryOp = "~"
	OpDefault                           BinaryOp = "??"
)

type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) Pos() source.Pos { return e.Left.Pos() }
func (e *BinaryExpr) End() source.Pos { return e.Right.End() }
func (*BinaryExpr) exprNode()         {}

// RangeExpr represents `lo..hi` as used in switch-case ranges.
type RangeExpr struct {
	Lo, Hi Expr
}

func (e *RangeExpr) Pos() source.Pos { return e.Lo.Pos() }
func (e *RangeExpr) End() source.Pos { return e.Hi.End() }
func (*RangeExpr) exprNode()         {}

type UnaryOp string

const (
	UnaryNeg  UnaryOp = "-"
	UnaryNot  UnaryOp = "!"
	UnaryCom  UnaryOp = "~"
	UnaryLen  UnaryOp = "#"
)

type UnaryExpr struct {
	StartPos source.Pos
	Op       UnaryOp
	Operand  Expr
}

func (e *UnaryExpr) Pos() source.Pos { return e.StartPos }
func (e *UnaryExpr) End() source.Pos { return e.Operand.End() }
func (*UnaryExpr) exprNode()         {}

type TernaryExpr struct {
	Cond, Then, Else Expr
}

func (e *TernaryExpr) Pos() source.Pos { return e.Cond.Pos() }
func (e *TernaryExpr) End() source.Pos { return e.Else.End() }
func (*TernaryExpr) exprNode()         {}

type IncDecOp string

const (
	OpInc IncDecOp = "++"
	OpDec IncDecOp = "--"
)

type IncDecExpr struct {
	EndPosVal source.Pos
	Op        IncDecOp
	Target    Expr
}

func (e *IncDecExpr) Pos() source.Pos { return e.Target.Pos() }
func (e *IncDecExpr) End() source.Pos { return e.EndPosVal }
func (*IncDecExpr) exprNode()         {}

// AssignExpr: Op is "" for plain `=`, else one of the reflexive operators
// (`+=`, `-=`, ... per spec.md §6's opcode inventory "reflexive" group).
type AssignExpr struct {
	Op      BinaryOp // "" means plain assignment
	Targets []Expr
	Values  []Expr
}

func (e *AssignExpr) Pos() source.Pos { return e.Targets[0].Pos() }
func (e *AssignExpr) End() source.Pos { return e.Values[len(e.Values)-1].End() }
func (*AssignExpr) exprNode()         {}

// RefKind classifies how sema.Pass resolved an IdentExpr.
type RefKind uint8

const (
	RefGlobal RefKind = iota
	RefLocal
	RefUpvalue
)

type IdentExpr struct {
	StartPos source.Pos
	Name     string

	// Populated by sema.Pass.
	Ref   RefKind
	Index int
}

func (e *IdentExpr) Pos() source.Pos { return e.StartPos }
func (e *IdentExpr) End() source.Pos { return source.Pos{Line: e.StartPos.Line, Col: e.StartPos.Col + len(e.Name)} }
func (*IdentExpr) exprNode()         {}
func (*IdentExpr) literalNode()      {}

type ThisExpr struct{ StartPos source.Pos }

func (e *ThisExpr) Pos() source.Pos { return e.StartPos }
func (e *ThisExpr) End() source.Pos { return e.StartPos }
func (*ThisExpr) exprNode()         {}
func (*ThisExpr) literalNode()      {}

type SuperExpr struct{ StartPos source.Pos }

func (e *SuperExpr) Pos() source.Pos { return e.StartPos }
func (e *SuperExpr) End() source.Pos { return e.StartPos }
func (*SuperExpr) exprNode()         {}
func (*SuperExpr) literalNode()      {}

type VarargExpr struct{ StartPos source.Pos }

func (e *VarargExpr) Pos() source.Pos { return e.StartPos }
func (e *VarargExpr) End() source.Pos { return e.StartPos }
func (*VarargExpr) exprNode()         {}
func (*VarargExpr) literalNode()      {}

type IntLiteral struct {
	StartPos source.Pos
	Value    int64
}

func (e *IntLiteral) Pos() source.Pos { return e.StartPos }
func (e *IntLiteral) End() source.Pos { return e.StartPos }
func (*IntLiteral) exprNode()         {}
func (*IntLiteral) literalNode()      {}

type FloatLiteral struct {
	StartPos source.Pos
	Value    float64
}

func (e *FloatLiteral) Pos() source.Pos { return e.StartPos }
func (e *FloatLiteral) End() source.Pos { return e.StartPos }
func (*FloatLiteral) exprNode()         {}
func (*FloatLiteral) literalNode()      {}

type StringLiteral struct {
	StartPos source.Pos
	Value    string
}

func (e *StringLiteral) Pos() source.Pos { return e.StartPos }
func (e *StringLiteral) End() source.Pos { return e.StartPos }
func (*StringLiteral) exprNode()         {}
func (*StringLiteral) literalNode()      {}

type BoolLiteral struct {
	StartPos source.Pos
	Value    bool
}

func (e *BoolLiteral) Pos() source.Pos { return e.StartPos }
func (e *BoolLiteral) End() source.Pos { return e.StartPos }
func (*BoolLiteral) exprNode()         {}
func (*BoolLiteral) literalNode()      {}

type NullLiteral struct{ StartPos source.Pos }

func (e *NullLiteral) Pos() source.Pos { return e.StartPos }
func (e *NullLiteral) End() source.Pos { return e.StartPos }
func (*NullLiteral) exprNode()         {}
func (*NullLiteral) literalNode()      {}

type ArrayLiteral struct {
	StartPos, EndPos source.Pos
	Items            []Expr
}

func (e *ArrayLiteral) Pos() source.Pos { return e.StartPos }
func (e *ArrayLiteral) End() source.Pos { return e.EndPos }
func (*ArrayLiteral) exprNode()         {}
func (*ArrayLiteral) literalNode()      {}

type TableEntry struct {
	Key, Value Expr
}

type TableLiteral struct {
	StartPos, EndPos source.Pos
	Entries          []TableEntry
}

func (e *TableLiteral) Pos() source.Pos { return e.StartPos }
func (e *TableLiteral) End() source.Pos { return e.EndPos }
func (*TableLiteral) exprNode()         {}
func (*TableLiteral) literalNode()      {}

// Comprehension compiles, per spec.md §4.C, to an implicit foreach/for
// loop building an Array or Table (IsTable selects which).
type Comprehension struct {
	StartPos, EndPos source.Pos
	IsTable          bool
	KeyExpr          Expr // nil unless IsTable
	ValueExpr        Expr
	Names            []string
	Sources          []Expr
	Cond             Expr // may be nil
	Nested           *Comprehension // chained `foreach ... foreach ...`
}

func (e *Comprehension) Pos() source.Pos { return e.StartPos }
func (e *Comprehension) End() source.Pos { return e.EndPos }
func (*Comprehension) exprNode()         {}

type Parameter struct {
	Name string
}

// FuncLiteral is also embedded by FuncDecl's .Func field, the teacher's
// own convention (frontend/nodes.go FuncLiteral carries Locals/Upvalues
// annotations populated by the semantic pass).
type FuncLiteral struct {
	StartPos, EndPos source.Pos
	Name             string // "" for anonymous
	Params           []Parameter
	IsVararg         bool
	Body             *Block

	// Populated by sema.Pass, mirroring the teacher's annotation fields.
	Locals   []*LocalRecord
	Upvalues []*UpvalueRecord
}

func (e *FuncLiteral) Pos() source.Pos { return e.StartPos }
func (e *FuncLiteral) End() source.Pos { return e.EndPos }
func (*FuncLiteral) exprNode()         {}
func (*FuncLiteral) literalNode()      {}

// LocalRecord/UpvalueRecord mirror the teacher's frontend/scope.go
// annotation records, now attached to sema's scope resolution instead of
// a static type checker's scope.
type LocalRecord struct {
	Name        string
	IsParameter bool
	Register    int
}

type UpvalueRecord struct {
	Name          string
	IsParentLocal bool
	Index         int
}

type IndexExpr struct {
	Object Expr
	Index  Expr
	EndPosVal source.Pos
}

func (e *IndexExpr) Pos() source.Pos { return e.Object.Pos() }
func (e *IndexExpr) End() source.Pos { return e.EndPosVal }
func (*IndexExpr) exprNode()         {}

type FieldExpr struct {
	Object Expr
	Name   string
	EndPosVal source.Pos
}

func (e *FieldExpr) Pos() source.Pos { return e.Object.Pos() }
func (e *FieldExpr) End() source.Pos { return e.EndPosVal }
func (*FieldExpr) exprNode()         {}

type SliceExpr struct {
	Object   Expr
	Lo, Hi   Expr // either may be nil, meaning "endpoint"
	EndPosVal source.Pos
}

func (e *SliceExpr) Pos() source.Pos { return e.Object.Pos() }
func (e *SliceExpr) End() source.Pos { return e.EndPosVal }
func (*SliceExpr) exprNode()         {}

// CallExpr: Method != "" for `obj.method(args)` method-call dispatch form
// (spec.md §4.E "Method" call form, emitted as a single opcode).
type CallExpr struct {
	Callee    Expr
	Method    string
	Args      []Expr
	EndPosVal source.Pos
}

func (e *CallExpr) Pos() source.Pos { return e.Callee.Pos() }
func (e *CallExpr) End() source.Pos { return e.EndPosVal }
func (*CallExpr) exprNode()         {}

type YieldExpr struct {
	StartPos  source.Pos
	EndPosVal source.Pos
	Values    []Expr
}

func (e *YieldExpr) Pos() source.Pos { return e.StartPos }
func (e *YieldExpr) End() source.Pos { return e.EndPosVal }
func (*YieldExpr) exprNode()         {}

type ClassLiteral struct {
	StartPos, EndPos source.Pos
	Bases            []Expr
	Fields           []*FieldMember
	Methods          []*FuncDecl
}

func (e *ClassLiteral) Pos() source.Pos { return e.StartPos }
func (e *ClassLiteral) End() source.Pos { return e.EndPos }
func (*ClassLiteral) exprNode()         {}

type NamespaceLiteral struct {
	StartPos, EndPos source.Pos
	Parent           Expr
	Fields           []*FieldMember
}

func (e *NamespaceLiteral) Pos() source.Pos { return e.StartPos }
func (e *NamespaceLiteral) End() source.Pos { return e.EndPos }
func (*NamespaceLiteral) exprNode()         {}
