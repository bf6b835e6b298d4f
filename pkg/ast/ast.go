// Package ast defines the typed AST produced by pkg/parser and walked
// by pkg/codegen. Every node is a tagged sum-type variant; children are
// owned by their parent and never shared across branches.
package ast

import (
	"fmt"
	"strings"
)

// Qualifier is one of the storage-class keywords that may prefix a
// top-level declaration.
type Qualifier string

const (
	QualConst     Qualifier = "const"
	QualUniform   Qualifier = "uniform"
	QualVarying   Qualifier = "varying"
	QualAttribute Qualifier = "attribute"
	QualIn        Qualifier = "in"
	QualOut       Qualifier = "out"
	QualInout     Qualifier = "inout"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a numeric (integer or float) constant.
type Literal struct {
	Lexeme string
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return l.Lexeme }

// Identifier is a read of a named variable, parameter or struct/function name.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode()        {}
func (i *Identifier) String() string { return i.Name }

// BinaryExpr represents Left Op Right, where Op is any lexeme from the
// comparison, logical, additive or multiplicative precedence levels.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryExpr represents a prefix operator applied to Operand: + - ! ++ --.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (*UnaryExpr) exprNode() {}
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", u.Op, u.Operand)
}

// CallExpr represents Callee(Args...).
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("Call(%s, %s)", c.Callee, strings.Join(parts, ", "))
}

// MemberExpr represents Object.Property (field access or swizzle).
type MemberExpr struct {
	Object   Expr
	Property string
}

func (*MemberExpr) exprNode() {}
func (m *MemberExpr) String() string {
	return fmt.Sprintf("(%s.%s)", m.Object, m.Property)
}

// IndexExpr represents Container[Index].
type IndexExpr struct {
	Container Expr
	Index     Expr
}

func (*IndexExpr) exprNode() {}
func (e *IndexExpr) String() string {
	return fmt.Sprintf("(%s[%s])", e.Container, e.Index)
}

// Assignment represents Left Op Right where Op is one of = += -= *= /=.
// It is an expression (assignments may be used as initialisers and in
// for-loop updates), matching spec's precedence level 1.
type Assignment struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*Assignment) exprNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}

// ConstructorExpr represents TypeName(Args...), e.g. vec3(1.0, 2.0, 3.0).
type ConstructorExpr struct {
	TypeName string
	Args     []Expr
}

func (*ConstructorExpr) exprNode() {}
func (c *ConstructorExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.TypeName, strings.Join(parts, ", "))
}

//  Statement / declaration nodes

// Stmt is implemented by every node that does not itself produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Param is a single function parameter: a type name plus a bound name.
type Param struct {
	TypeName string
	Name     string
}

// StructField is a named field of a struct declaration. Offset is
// filled in by the code generator from the layout the type registry
// computes when the struct's TypeInfo is built, not by the parser.
type StructField struct {
	TypeName string
	Name     string
	Offset   int
}

// VariableDecl represents a global or local variable declaration:
//
//	uniform vec3 color = vec3(1.0, 1.0, 1.0);
//	int counter[4];
type VariableDecl struct {
	Qualifiers  []Qualifier
	TypeName    string
	Name        string
	Init        Expr // nil if no initialiser
	ArrayLength Expr // nil if not an array
}

func (*VariableDecl) stmtNode() {}
func (d *VariableDecl) String() string {
	s := fmt.Sprintf("VarDecl(%s %s %s", qualString(d.Qualifiers), d.TypeName, d.Name)
	if d.ArrayLength != nil {
		s += fmt.Sprintf("[%s]", d.ArrayLength)
	}
	if d.Init != nil {
		s += fmt.Sprintf(" = %s", d.Init)
	}
	return s + ")"
}

func qualString(qs []Qualifier) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = string(q)
	}
	return strings.Join(parts, " ")
}

// StructDecl represents struct Name { Fields... };
type StructDecl struct {
	Name   string
	Fields []StructField
}

func (*StructDecl) stmtNode() {}
func (s *StructDecl) String() string {
	return fmt.Sprintf("StructDecl(%s, fields=%d)", s.Name, len(s.Fields))
}

// FunctionDecl represents a function declaration with its body.
type FunctionDecl struct {
	Qualifiers []Qualifier
	ReturnType string
	Name       string
	Params     []Param
	Body       *BlockStmt
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FuncDecl(%s %s, params=%d)", f.ReturnType, f.Name, len(f.Params))
}

// BlockStmt represents { Stmts... }.
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()        {}
func (b *BlockStmt) String() string { return fmt.Sprintf("Block(len=%d)", len(b.Stmts)) }

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }

// IfStmt represents if (Condition) Consequent [else Alternate].
type IfStmt struct {
	Condition  Expr
	Consequent Stmt
	Alternate  Stmt // nil if no else
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.Alternate != nil {
		return fmt.Sprintf("If(%s, then=%s, else=%s)", i.Condition, i.Consequent, i.Alternate)
	}
	return fmt.Sprintf("If(%s, then=%s)", i.Condition, i.Consequent)
}

// ForStmt represents for (Init; Test; Update) Body.
type ForStmt struct {
	Init   Stmt // VariableDecl or ExprStmt, may be nil
	Test   Expr // may be nil
	Update Stmt // ExprStmt, may be nil
	Body   Stmt
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	return fmt.Sprintf("For(init=%s, test=%s, update=%s, body=%s)", f.Init, f.Test, f.Update, f.Body)
}

// WhileStmt represents while (Test) Body.
type WhileStmt struct {
	Test Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("While(%s, body=%s)", w.Test, w.Body)
}

// ReturnStmt represents return [Argument];.
type ReturnStmt struct {
	Argument Expr // nil for bare "return;"
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Argument == nil {
		return "Return()"
	}
	return fmt.Sprintf("Return(%s)", r.Argument)
}

// Program is the root node: an ordered list of top-level declarations.
type Program struct {
	Decls []Stmt
}

func (*Program) stmtNode() {}
func (p *Program) String() string {
	parts := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		parts[i] = d.String()
	}
	return "Program(\n  " + strings.Join(parts, "\n  ") + "\n)"
}
