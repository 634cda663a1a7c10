// Package ast defines the abstract syntax tree produced by the parser.
//
// Node, Expr and Stmt are closed sum types: only the types in this package implement them,
// and consumers dispatch with a type switch.
package ast

import (
	"script-lang/internal/span"
	"script-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// File is the root of a parsed program.
type File struct {
	NodeBase
	Name string
	Body []Stmt
}

// Access is a class member's visibility.
type Access int

const (
	Public Access = iota // the default when no modifier is written
	Private
)

func (a Access) String() string {
	if a == Private {
		return "private"
	}
	return "public"
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents an identifier reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NullLiteral represents null.
type NullLiteral struct {
	ExprBase
}

// UnaryExpr represents !x or -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr covers arithmetic, comparison and the short-circuit operators && and ||.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr is f(a, b) or obj.m(a, b).
type CallExpr struct {
	ExprBase
	Callee Expr // *IdentExpr or *MemberExpr
	Args   []Expr
}

// MemberExpr is obj.field.
type MemberExpr struct {
	ExprBase
	Object   Expr
	Property string
}

// NewExpr is new ClassName(args) used as a value.
type NewExpr struct {
	ExprBase
	ClassName string
	Args      []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// AssignStmt is target = value.
type AssignStmt struct {
	StmtBase
	Target Expr // *IdentExpr or *MemberExpr
	Value  Expr
}

// IncDecStmt is target++ or target--. The target is evaluated once.
type IncDecStmt struct {
	StmtBase
	Target Expr       // *IdentExpr or *MemberExpr
	Op     token.Kind // token.INC or token.DEC
}

// VarDeclStmt is [final] type name [= init].
type VarDeclStmt struct {
	StmtBase
	Type  string
	Name  string
	Final bool
	Init  Expr // may be nil
}

// ConstructStmt is Type name = new Class(args); it registers a named object.
type ConstructStmt struct {
	StmtBase
	Type      string
	Name      string
	ClassName string
	Args      []Expr
}

// DeleteStmt is delete name.
type DeleteStmt struct {
	StmtBase
	Name string
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	StmtBase
}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	StmtBase
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt is if (cond) then [else ...]. Else is a *BlockStmt, an *IfStmt for
// "else if", or nil.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      *BlockStmt
	Else      Stmt
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
}

// DoWhileStmt is do { body } while (cond);
type DoWhileStmt struct {
	StmtBase
	Body      *BlockStmt
	Condition Expr
}

// ForStmt is for (init; condition; update) { body }. Every header part may be nil.
type ForStmt struct {
	StmtBase
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      *BlockStmt
}

// ============================================================
// Declarations
// ============================================================

// Param is one declared parameter. Type is empty when the parameter is untyped.
type Param struct {
	Span span.Span
	Type string
	Name string
}

// FuncDecl declares a free function or, inside a class body, a method.
type FuncDecl struct {
	StmtBase
	Access     Access
	ReturnType string // empty when omitted
	Name       string
	Params     []Param
	Body       *BlockStmt
}

// FieldDecl declares a class field template.
type FieldDecl struct {
	Span   span.Span
	Access Access
	Final  bool
	Type   string
	Name   string
	Init   Expr // may be nil
}

// ConstructorDecl is constructor(params) { ... } inside a class.
type ConstructorDecl struct {
	Span   span.Span
	Params []Param
	Body   *BlockStmt
}

// DestructorDecl is destructor() { ... } inside a class.
type DestructorDecl struct {
	Span span.Span
	Body *BlockStmt
}

// ClassDecl represents a class declaration.
type ClassDecl struct {
	StmtBase
	Name        string
	Fields      []*FieldDecl
	Methods     []*FuncDecl
	Constructor *ConstructorDecl // may be nil
	Destructor  *DestructorDecl  // may be nil
}
