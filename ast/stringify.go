package ast

import (
	"fmt"
	"strings"
)

// Stringify renders prog as a parenthesized tree, adapted from the
// teacher's frontend/stringify.go and generalized to the full node set;
// used by the `--debug-ast` CLI flag.
func Stringify(prog *Program) string {
	var b strings.Builder
	for i, s := range prog.Statements {
		b.WriteString(stringifyStmt(s))
		if i+1 < len(prog.Statements) {
			b.WriteString("\n")
		}
	}
	return fmt.Sprintf("(program (\n%s\n))", indent(b.String()))
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func stringifyBlock(b *Block) string {
	var sb strings.Builder
	for i, s := range b.Statements {
		sb.WriteString(stringifyStmt(s))
		if i+1 < len(b.Statements) {
			sb.WriteString("\n")
		}
	}
	return fmt.Sprintf("(\n%s\n)", indent(sb.String()))
}

func stringifyStmts(ss []Stmt) string {
	var sb strings.Builder
	for i, s := range ss {
		sb.WriteString(stringifyStmt(s))
		if i+1 < len(ss) {
			sb.WriteString("\n")
		}
	}
	return fmt.Sprintf("(\n%s\n)", indent(sb.String()))
}

func stringifyExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = stringifyExpr(e)
	}
	return strings.Join(parts, " ")
}

func protStr(p Protection) string {
	switch p {
	case ProtLocal:
		return "local"
	case ProtGlobal:
		return "global"
	default:
		return "default"
	}
}

func stringifyStmt(generic Stmt) string {
	switch node := generic.(type) {
	case *VarDecl:
		if node.Value == nil {
			return fmt.Sprintf("(vardecl %s \"%s\")", protStr(node.Protection), node.Name)
		}
		return fmt.Sprintf("(vardecl %s \"%s\" %s)", protStr(node.Protection), node.Name, stringifyExpr(node.Value))
	case *FuncDecl:
		return fmt.Sprintf("(funcdecl %s \"%s\" %s)", protStr(node.Protection), node.Name, stringifyExpr(node.Func))
	case *ClassDecl:
		return fmt.Sprintf("(classdecl \"%s\" bases=%d methods=%d)", node.Name, len(node.Bases), len(node.Methods))
	case *NamespaceDecl:
		return fmt.Sprintf("(namespacedecl \"%s\" fields=%d)", node.Name, len(node.Fields))
	case *ImportDecl:
		return fmt.Sprintf("(import \"%s\" as \"%s\")", node.Module, node.Alias)
	case *Block:
		return stringifyBlock(node)
	case *IfStmt:
		s := fmt.Sprintf("(if %s %s)", stringifyExpr(node.IfClause.Cond), stringifyBlock(node.IfClause.Body))
		for _, c := range node.ElifClauses {
			s += fmt.Sprintf("\n(elif %s %s)", stringifyExpr(c.Cond), stringifyBlock(c.Body))
		}
		if node.ElseClause != nil {
			s += fmt.Sprintf("\n(else %s)", stringifyBlock(node.ElseClause.Body))
		}
		return s
	case *WhileStmt:
		return fmt.Sprintf("(while %s %s)", stringifyExpr(node.Cond), stringifyBlock(node.Body))
	case *DoWhileStmt:
		return fmt.Sprintf("(do-while %s %s)", stringifyBlock(node.Body), stringifyExpr(node.Cond))
	case *ForStmt:
		step := "1"
		if node.Step != nil {
			step = stringifyExpr(node.Step)
		}
		return fmt.Sprintf("(for %s %s %s %s)", stringifyExpr(node.Init), stringifyExpr(node.Hi), step, stringifyBlock(node.Body))
	case *ForeachStmt:
		return fmt.Sprintf("(foreach (%s) (%s) %s)", strings.Join(node.Names, " "), stringifyExprs(node.Sources), stringifyBlock(node.Body))
	case *SwitchStmt:
		return fmt.Sprintf("(switch %s cases=%d)", stringifyExpr(node.Cond), len(node.Cases))
	case *BreakStmt:
		return "(break)"
	case *ContinueStmt:
		return "(continue)"
	case *ReturnStmt:
		if len(node.Values) == 0 {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", stringifyExprs(node.Values))
	case *YieldStmt:
		return fmt.Sprintf("(yield %s)", stringifyExprs(node.Values))
	case *ThrowStmt:
		return fmt.Sprintf("(throw %s)", stringifyExpr(node.Value))
	case *TryStmt:
		s := fmt.Sprintf("(try %s catches=%d)", stringifyBlock(node.Body), len(node.Catches))
		if node.Finally != nil {
			s += fmt.Sprintf(" (finally %s)", stringifyBlock(node.Finally))
		}
		return s
	case *ScopeStmt:
		kind := [...]string{"exit", "success", "failure"}[node.Kind]
		return fmt.Sprintf("(scope(%s) %s)", kind, stringifyBlock(node.Body))
	case *ExprStmt:
		return stringifyExpr(node.Value)
	default:
		return fmt.Sprintf("<Unknown %T>", node)
	}
}

func stringifyExpr(generic Expr) string {
	switch node := generic.(type) {
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", node.Op, stringifyExpr(node.Left), stringifyExpr(node.Right))
	case *RangeExpr:
		return fmt.Sprintf("(range %s %s)", stringifyExpr(node.Lo), stringifyExpr(node.Hi))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", node.Op, stringifyExpr(node.Operand))
	case *TernaryExpr:
		return fmt.Sprintf("(?: %s %s %s)", stringifyExpr(node.Cond), stringifyExpr(node.Then), stringifyExpr(node.Else))
	case *IncDecExpr:
		return fmt.Sprintf("(%s %s)", node.Op, stringifyExpr(node.Target))
	case *AssignExpr:
		op := "="
		if node.Op != "" {
			op = string(node.Op) + "="
		}
		return fmt.Sprintf("(%s %s %s)", op, stringifyExprs(node.Targets), stringifyExprs(node.Values))
	case *IdentExpr:
		return fmt.Sprintf("[id %s]", node.Name)
	case *ThisExpr:
		return "[this]"
	case *SuperExpr:
		return "[super]"
	case *VarargExpr:
		return "[vararg]"
	case *IntLiteral:
		return fmt.Sprintf("[int %d]", node.Value)
	case *FloatLiteral:
		return fmt.Sprintf("[float %.4f]", node.Value)
	case *StringLiteral:
		return fmt.Sprintf("[str `%s`]", node.Value)
	case *BoolLiteral:
		return fmt.Sprintf("[bool %v]", node.Value)
	case *NullLiteral:
		return "[null]"
	case *ArrayLiteral:
		return fmt.Sprintf("(array %s)", stringifyExprs(node.Items))
	case *TableLiteral:
		return fmt.Sprintf("(table entries=%d)", len(node.Entries))
	case *Comprehension:
		kind := "array"
		if node.IsTable {
			kind = "table"
		}
		return fmt.Sprintf("(%s-comprehension %s)", kind, stringifyExpr(node.ValueExpr))
	case *FuncLiteral:
		name := node.Name
		if name == "" {
			name = "<anon>"
		}
		return fmt.Sprintf("(func \"%s\" (locals=%d upvalues=%d) %s)",
			name, len(node.Locals), len(node.Upvalues), stringifyBlock(node.Body))
	case *IndexExpr:
		return fmt.Sprintf("(index %s %s)", stringifyExpr(node.Object), stringifyExpr(node.Index))
	case *FieldExpr:
		return fmt.Sprintf("(field %s \"%s\")", stringifyExpr(node.Object), node.Name)
	case *SliceExpr:
		lo, hi := "nil", "nil"
		if node.Lo != nil {
			lo = stringifyExpr(node.Lo)
		}
		if node.Hi != nil {
			hi = stringifyExpr(node.Hi)
		}
		return fmt.Sprintf("(slice %s %s %s)", stringifyExpr(node.Object), lo, hi)
	case *CallExpr:
		if node.Method != "" {
			return fmt.Sprintf("(methodcall %s \"%s\" %s)", stringifyExpr(node.Callee), node.Method, stringifyExprs(node.Args))
		}
		return fmt.Sprintf("(call %s %s)", stringifyExpr(node.Callee), stringifyExprs(node.Args))
	case *YieldExpr:
		return fmt.Sprintf("(yieldexpr %s)", stringifyExprs(node.Values))
	case *ClassLiteral:
		return fmt.Sprintf("(classlit bases=%d methods=%d)", len(node.Bases), len(node.Methods))
	case *NamespaceLiteral:
		return fmt.Sprintf("(namespacelit fields=%d)", len(node.Fields))
	default:
		return fmt.Sprintf("<Unknown %T>", node)
	}
}
