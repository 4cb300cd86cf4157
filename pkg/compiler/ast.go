package compiler

import (
	"fmt"
	"strings"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

//  Expression nodes

// Expr is implemented by every node that produces a value. Each expression
// carries its source line and, once the checker has run, its resolved type.
type Expr interface {
	exprNode()
	Pos() int
	Type() vm.ValueType
	setType(vm.ValueType)
	String() string
}

// exprBase carries the span and resolved-type slot shared by all
// expression nodes.
type exprBase struct {
	Line int
	T    vm.ValueType // filled by the type checker
}

func (*exprBase) exprNode()               {}
func (b *exprBase) Pos() int              { return b.Line }
func (b *exprBase) Type() vm.ValueType    { return b.T }
func (b *exprBase) setType(t vm.ValueType) { b.T = t }

// LitKind distinguishes the three literal forms.
type LitKind int

const (
	LitFixed LitKind = iota
	LitInt
	LitBool
)

// Literal is a compile-time constant.
//
//	float x = 1.5;
//	          ^^^  Literal{Kind: LitFixed, Val: 1.5}
type Literal struct {
	exprBase
	Kind LitKind
	Val  vm.Value
}

func (l *Literal) String() string { return l.Val.String() }

// VarRef is a read of a named variable. The checker fills Slot for locals,
// or Input for the built-in read-only inputs (uv, coord, time).
type VarRef struct {
	exprBase
	Name  string
	Slot  int // local slot index, -1 until resolved
	Input int // vm.InputUV etc, -1 for ordinary variables
}

func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents a binary operation: Left Op Right.
type BinaryExpr struct {
	exprBase
	Op    TokenType
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// LogicalExpr represents Left && Right or Left || Right. It is separate
// from BinaryExpr because its operands are type-checked independently.
type LogicalExpr struct {
	exprBase
	Op    TokenType
	Left  Expr
	Right Expr
}

func (l *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right)
}

// UnaryExpr represents Op Right (e.g., -x, !b, ~i).
type UnaryExpr struct {
	exprBase
	Op    TokenType
	Right Expr
}

func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Right) }

// PostfixExpr represents Left++ or Left--. The operand must be a declared
// int or float variable.
type PostfixExpr struct {
	exprBase
	Op   TokenType
	Left *VarRef
}

func (p *PostfixExpr) String() string { return fmt.Sprintf("(%s %s)", p.Left, p.Op) }

// TernaryExpr represents Cond ? Then : Else.
type TernaryExpr struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.Then, t.Else)
}

// AssignExpr represents Target = Value. Compound assignment is desugared by
// the parser, so only plain assignment reaches later stages.
type AssignExpr struct {
	exprBase
	Target *VarRef
	Value  Expr
}

func (a *AssignExpr) String() string {
	return fmt.Sprintf("(%s = %s)", a.Target, a.Value)
}

// ConvExpr is an implicit int→float widening inserted by the checker.
type ConvExpr struct {
	exprBase
	X Expr
}

func (c *ConvExpr) String() string { return fmt.Sprintf("float(%s)", c.X) }

// CallExpr represents name(args): a builtin call, a user-function call, or
// a vector/matrix constructor. The checker resolves which.
type CallExpr struct {
	exprBase
	Name string
	Args []Expr

	Builtin   vm.Builtin // -1 unless a builtin
	FuncIndex int        // compiled function index, -1 unless a user call
	Ctor      int        // constructor component count (2/3/4/9), 0 otherwise
}

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

// SwizzleExpr represents Base.xyzw component selection.
type SwizzleExpr struct {
	exprBase
	Base    Expr
	Letters string
	Indices []int // filled by the checker
}

func (s *SwizzleExpr) String() string { return fmt.Sprintf("%s.%s", s.Base, s.Letters) }

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// VarDeclStmt represents  float name = expr;
type VarDeclStmt struct {
	Line     int
	DeclType vm.ValueType
	Name     string
	Init     Expr // may be nil; zero value is used
	Slot     int  // filled by the type checker
}

func (*VarDeclStmt) stmtNode() {}
func (d *VarDeclStmt) String() string {
	if d.Init != nil {
		return fmt.Sprintf("VarDecl(%s %s = %s)", d.DeclType, d.Name, d.Init)
	}
	return fmt.Sprintf("VarDecl(%s %s)", d.DeclType, d.Name)
}

// ExprStmt represents an expression evaluated for its side effects
// (an assignment, increment, or call).
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }

// ReturnStmt represents  return expr;  (Expr is nil for bare return)
type ReturnStmt struct {
	Line int
	Expr Expr
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Expr == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", r.Expr)
}

// BlockStmt represents { statement; ... }
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()        {}
func (b *BlockStmt) String() string { return fmt.Sprintf("BlockStmt(len=%d)", len(b.Stmts)) }

// IfStmt represents if (cond) body [else elseBody]
type IfStmt struct {
	Line      int
	Condition Expr
	Body      Stmt
	ElseBody  Stmt // may be nil
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.ElseBody != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Condition, i.Body, i.ElseBody)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", i.Condition, i.Body)
}

// WhileStmt represents while (cond) body
type WhileStmt struct {
	Line      int
	Condition Expr
	Body      Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Condition, w.Body)
}

// ForStmt represents for (init; cond; post) body
type ForStmt struct {
	Line int
	Init Stmt // may be nil
	Cond Expr // may be nil (loops forever, bounded by the VM step limit)
	Post Stmt // may be nil
	Body Stmt
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%s, cond=%s, post=%s, body=%s)", f.Init, f.Cond, f.Post, f.Body)
}

// Param is one function parameter.
type Param struct {
	Name string
	Type vm.ValueType
	Line int
}

// FunctionDecl represents  float name(params) { body }
type FunctionDecl struct {
	Line   int
	Name   string
	Params []Param
	Return vm.ValueType
	Body   *BlockStmt

	// Filled by the type checker: every declared local in first-declaration
	// order, parameters first. The code generator consumes this as-is so
	// both passes agree on slot numbering.
	Locals []vm.Local

	// Index is the function's position in the compiled program.
	Index int
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s %s, params=%d, body=%s)", f.Return, f.Name, len(f.Params), f.Body)
}

// Script is the parsed form of one source file: function definitions plus
// the top-level statements that become the implicit entry function.
type Script struct {
	Funcs []*FunctionDecl
	Top   []Stmt

	// Main is the implicit entry function wrapping Top; built by the parser
	// and filled in by the checker (inferred return type, locals).
	Main *FunctionDecl
}
