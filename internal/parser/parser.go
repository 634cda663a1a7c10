// Package parser builds an AST from a token slice.
// Expressions use Pratt parsing; statements and declarations use recursive descent.
package parser

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"

	"script-lang/internal/ast"
	"script-lang/internal/diag"
	"script-lang/internal/span"
	"script-lang/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // ||
	bpAnd        = 20 // &&
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.LPAREN, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
	synced int // len(diags) at the last synchronize
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseFile parses the whole token stream. Statements that fail to parse are dropped and
// reported; parsing resumes at the next statement boundary.
func (p *Parser) ParseFile(name string) (*ast.File, []diag.Diagnostic) {
	file := &ast.File{Name: name}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		if stmt := p.parseStmtRecover(); stmt != nil {
			file.Body = append(file.Body, stmt)
		}
	}

	file.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	if glog.V(7) {
		glog.Infof("parser: %s: %d statements, %d diagnostics", name, len(file.Body), len(p.diags))
	}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return token.Token{Kind: token.EOF, Span: span.Span{Start: last.Span.End, End: last.Span.End}}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, describe(tok)))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(diag.SyntaxError, code, s, "%s", msg))
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of input"
	}
	if tok.Kind.IsLiteral() {
		return fmt.Sprintf("%s %s", tok.Kind, tok.Lexeme)
	}
	return tok.Kind.String()
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.check(token.RBRACE) {
			return
		}
		if p.match(token.KW_IF, token.KW_DO, token.KW_WHILE, token.KW_FOR, token.KW_FUNCTION,
			token.KW_CLASS, token.KW_RETURN, token.KW_BREAK, token.KW_CONTINUE, token.KW_DELETE,
			token.KW_FINAL, token.KW_PUBLIC, token.KW_PRIVATE, token.KW_VOID,
			token.KW_INT, token.KW_FLOAT, token.KW_BOOLEAN, token.KW_STRING) {
			return
		}
		p.advance()
	}
}

// parseStmtRecover parses one statement. On error the partial statement is discarded and
// the parser is moved past the broken construct; it always makes progress.
func (p *Parser) parseStmtRecover() ast.Stmt {
	startPos := p.pos
	before := len(p.diags)
	stmt := p.parseStmt()
	if p.recoverFrom(startPos, before) {
		return nil
	}
	return stmt
}

// recoverFrom reports whether diagnostics were added since before. Errors already handled by a
// nested statement do not trigger a second synchronize.
func (p *Parser) recoverFrom(startPos, before int) bool {
	if len(p.diags) == before {
		return false
	}
	if p.synced != len(p.diags) {
		p.synchronize()
		p.synced = len(p.diags)
	}
	if p.pos == startPos {
		p.advance()
	}
	return true
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_DO:
		return p.parseDoWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_BREAK:
		start := p.advance()
		p.expect(token.SEMICOLON)
		return &ast.BreakStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd())}
	case token.KW_CONTINUE:
		start := p.advance()
		p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd())}
	case token.KW_DELETE:
		return p.parseDeleteStmt()
	case token.KW_CLASS:
		return p.parseClassDecl()
	case token.KW_FUNCTION, token.KW_PUBLIC, token.KW_PRIVATE, token.KW_VOID:
		return p.parseFuncDecl()
	case token.KW_FINAL:
		start := p.advance()
		return p.parseVarDecl(start.Span.Start, true)
	case token.LBRACE:
		return p.parseBlock()
	}

	if p.startsDecl() {
		if p.peekAt(2).Kind == token.LPAREN {
			return p.parseFuncDecl()
		}
		return p.parseVarDecl(p.peek().Span.Start, false)
	}

	stmt := p.parseSimpleStmt()
	p.expect(token.SEMICOLON)
	if stmt != nil {
		setEnd(stmt, p.prevEnd())
	}
	return stmt
}

// startsDecl reports whether the upcoming tokens are "type name".
func (p *Parser) startsDecl() bool {
	kind := p.peekKind()
	if !kind.IsBuiltinType() && kind != token.IDENT {
		return false
	}
	return p.peekAt(1).Kind == token.IDENT
}

// parseIfStmt parses: if (expr) block [ else (if ... | block) ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	if stmt.Condition = p.parseCondition(); stmt.Condition == nil {
		return stmt
	}
	stmt.Then = p.parseBlock()

	if p.check(token.KW_ELSE) {
		p.advance() // consume 'else'
		if p.check(token.KW_IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseCondition parses: ( expr )
func (p *Parser) parseCondition() ast.Expr {
	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpr(bpNone)
	p.expect(token.RPAREN)
	return cond
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}
	if stmt.Condition = p.parseCondition(); stmt.Condition == nil {
		return stmt
	}
	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseDoWhileStmt parses: do block while (expr);
func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	start := p.advance() // consume 'do'
	stmt := &ast.DoWhileStmt{}
	stmt.Body = p.parseBlock()
	p.expect(token.KW_WHILE)
	stmt.Condition = p.parseCondition()
	p.expect(token.SEMICOLON)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseForStmt parses: for ( [init]; [cond]; [update] ) block
func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.advance() // consume 'for'
	stmt := &ast.ForStmt{}

	if _, ok := p.expect(token.LPAREN); !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}

	if p.check(token.SEMICOLON) {
		p.advance()
	} else if p.startsDecl() {
		stmt.Init = p.parseVarDecl(p.peek().Span.Start, false) // consumes ';'
	} else {
		stmt.Init = p.parseSimpleStmt()
		p.expect(token.SEMICOLON)
	}

	if !p.check(token.SEMICOLON) {
		stmt.Condition = p.parseExpr(bpNone)
	}
	p.expect(token.SEMICOLON)

	if !p.check(token.RPAREN) {
		stmt.Update = p.parseSimpleStmt()
	}
	p.expect(token.RPAREN)

	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseReturnStmt parses: return [expr];
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}
	if !p.check(token.SEMICOLON) {
		if stmt.Value = p.parseExpr(bpNone); stmt.Value == nil {
			return stmt
		}
	}
	p.expect(token.SEMICOLON)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseDeleteStmt parses: delete name;
func (p *Parser) parseDeleteStmt() *ast.DeleteStmt {
	start := p.advance() // consume 'delete'
	stmt := &ast.DeleteStmt{}
	nameTok, _ := p.expect(token.IDENT)
	stmt.Name = nameTok.Lexeme
	p.expect(token.SEMICOLON)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseVarDecl parses: type name [= expr];  ("final" already consumed when final is set).
// A class-typed declaration initialized directly by "new" becomes a ConstructStmt.
func (p *Parser) parseVarDecl(start span.Position, final bool) ast.Stmt {
	typeTok, ok := p.expectType(false)
	if !ok {
		return nil
	}
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.check(token.ASSIGN) {
		p.advance()
		if init = p.parseExpr(bpNone); init == nil {
			return nil
		}
	}
	p.expect(token.SEMICOLON)

	if ne, isNew := init.(*ast.NewExpr); isNew && !final && typeTok.Kind == token.IDENT {
		return &ast.ConstructStmt{
			StmtBase:  makeStmtBase(start, p.prevEnd()),
			Type:      typeTok.Lexeme,
			Name:      nameTok.Lexeme,
			ClassName: ne.ClassName,
			Args:      ne.Args,
		}
	}
	return &ast.VarDeclStmt{
		StmtBase: makeStmtBase(start, p.prevEnd()),
		Type:     typeTok.Lexeme,
		Name:     nameTok.Lexeme,
		Final:    final,
		Init:     init,
	}
}

// expectType consumes a type name: a primitive type keyword or a class name, and void
// when allowVoid is set.
func (p *Parser) expectType(allowVoid bool) (token.Token, bool) {
	kind := p.peekKind()
	if kind.IsBuiltinType() || kind == token.IDENT || (allowVoid && kind == token.KW_VOID) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected type name, got '%s'", describe(tok)))
	return tok, false
}

// parseSimpleStmt parses an expression statement, an assignment, or name++ / name--.
// The trailing ';' is left to the caller.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		return nil
	}

	switch p.peekKind() {
	case token.ASSIGN:
		p.advance()
		if !p.checkTarget(expr) {
			return nil
		}
		value := p.parseExpr(bpNone)
		if value == nil {
			return nil
		}
		return &ast.AssignStmt{
			StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
			Target:   expr,
			Value:    value,
		}

	case token.INC, token.DEC:
		opTok := p.advance()
		if !p.checkTarget(expr) {
			return nil
		}
		return &ast.IncDecStmt{
			StmtBase: makeStmtBase(expr.GetSpan().Start, opTok.Span.End),
			Target:   expr,
			Op:       opTok.Kind,
		}
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, expr.GetSpan().End),
		Expr:     expr,
	}
}

func (p *Parser) checkTarget(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IdentExpr, *ast.MemberExpr:
		return true
	}
	p.error("E2004", expr.GetSpan(), "invalid assignment target")
	return false
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		block.Span = p.makeSpan(start.Span.Start)
		return block
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.parseStmtRecover(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	p.expect(token.RBRACE)
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// ============================================================
// Declaration parsing
// ============================================================

// parseFuncDecl parses
//
//	[public|private] function [type] name ( params ) block
//	[public|private] (type|void) name ( params ) block
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.peek()
	decl := &ast.FuncDecl{Access: p.parseAccess()}

	if p.check(token.KW_FUNCTION) {
		p.advance()
		if p.peekAt(1).Kind == token.IDENT {
			typeTok, _ := p.expectType(true)
			decl.ReturnType = typeTok.Lexeme
		}
	} else {
		typeTok, ok := p.expectType(true)
		if !ok {
			return decl
		}
		decl.ReturnType = typeTok.Lexeme
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return decl
	}
	decl.Name = nameTok.Lexeme
	decl.Params = p.parseParamList()
	decl.Body = p.parseBlock()
	decl.Span = p.makeSpan(start.Span.Start)
	return decl
}

func (p *Parser) parseAccess() ast.Access {
	switch p.peekKind() {
	case token.KW_PUBLIC:
		p.advance()
		return ast.Public
	case token.KW_PRIVATE:
		p.advance()
		return ast.Private
	}
	return ast.Public
}

// parseClassDecl parses: class Name { fields / methods / constructor / destructor }
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	start := p.advance() // consume 'class'
	decl := &ast.ClassDecl{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return decl
	}
	decl.Name = nameTok.Lexeme

	if _, ok := p.expect(token.LBRACE); !ok {
		return decl
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		startPos := p.pos
		before := len(p.diags)
		p.parseClassMember(decl)
		p.recoverFrom(startPos, before)
	}

	p.expect(token.RBRACE)
	decl.Span = p.makeSpan(start.Span.Start)
	return decl
}

func (p *Parser) parseClassMember(decl *ast.ClassDecl) {
	tok := p.peek()
	switch tok.Kind {
	case token.KW_CONSTRUCTOR:
		if decl.Constructor != nil {
			p.error("E2003", tok.Span, fmt.Sprintf("class %s already has a constructor", decl.Name))
			return
		}
		p.advance()
		ctor := &ast.ConstructorDecl{Params: p.parseParamList()}
		ctor.Body = p.parseBlock()
		ctor.Span = p.makeSpan(tok.Span.Start)
		decl.Constructor = ctor
		return

	case token.KW_DESTRUCTOR:
		if decl.Destructor != nil {
			p.error("E2003", tok.Span, fmt.Sprintf("class %s already has a destructor", decl.Name))
			return
		}
		p.advance()
		if params := p.parseParamList(); len(params) > 0 {
			p.error("E2003", tok.Span, "destructor takes no parameters")
			return
		}
		dtor := &ast.DestructorDecl{Body: p.parseBlock()}
		dtor.Span = p.makeSpan(tok.Span.Start)
		decl.Destructor = dtor
		return
	}

	// Methods and fields may both start with an access modifier; look past it.
	ahead := 0
	if p.peekAt(0).Kind == token.KW_PUBLIC || p.peekAt(0).Kind == token.KW_PRIVATE {
		ahead = 1
	}
	next := p.peekAt(ahead).Kind
	if next == token.KW_FUNCTION || next == token.KW_VOID || p.peekAt(ahead+2).Kind == token.LPAREN {
		decl.Methods = append(decl.Methods, p.parseFuncDecl())
		return
	}

	field := &ast.FieldDecl{Access: p.parseAccess()}
	if p.check(token.KW_FINAL) {
		p.advance()
		field.Final = true
	}
	typeTok, ok := p.expectType(false)
	if !ok {
		return
	}
	field.Type = typeTok.Lexeme
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return
	}
	field.Name = nameTok.Lexeme
	if p.check(token.ASSIGN) {
		p.advance()
		if field.Init = p.parseExpr(bpNone); field.Init == nil {
			return
		}
	}
	p.expect(token.SEMICOLON)
	field.Span = p.makeSpan(tok.Span.Start)
	decl.Fields = append(decl.Fields, field)
}

// parseParamList parses: ( [type] name, ... )
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param

	if _, ok := p.expect(token.LPAREN); !ok {
		return params
	}
	if p.check(token.RPAREN) {
		p.advance()
		return params
	}

	for {
		start := p.peek()
		param := ast.Param{}
		if p.startsDecl() {
			param.Type = p.advance().Lexeme
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return params
		}
		param.Name = nameTok.Lexeme
		param.Span = p.makeSpan(start.Span.Start)
		params = append(params, param)

		if !p.check(token.COMMA) {
			break
		}
		p.advance() // consume ','
	}

	p.expect(token.RPAREN)
	return params
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpr parses an expression with the given minimum binding power. It returns nil
// after reporting a diagnostic when no expression starts at the current token.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		bp := infixBP(p.peekKind())
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()
	base := makeExprBase(tok.Span.Start, tok.Span.End)

	switch tok.Kind {
	case token.INT:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.error("E2002", tok.Span, fmt.Sprintf("invalid integer literal %s", tok.Lexeme))
			return nil
		}
		return &ast.IntLiteral{ExprBase: base, Value: val}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{ExprBase: base, Value: tok.Lexeme}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{ExprBase: base, Value: tok.Kind == token.KW_TRUE}

	case token.KW_NULL:
		p.advance()
		return &ast.NullLiteral{ExprBase: base}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{ExprBase: base, Name: tok.Lexeme}

	case token.LPAREN:
		p.advance() // consume '('
		expr := p.parseExpr(bpNone)
		if expr == nil {
			return nil
		}
		p.expect(token.RPAREN)
		return expr

	case token.BANG, token.MINUS:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok.Kind,
			Operand:  operand,
		}

	case token.KW_NEW:
		return p.parseNewExpr()
	}

	p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got '%s'", describe(tok)))
	return nil
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.LPAREN:
		args, ok := p.parseArgs()
		if !ok {
			return nil
		}
		return &ast.CallExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, p.prevEnd()),
			Callee:   left,
			Args:     args,
		}

	case token.DOT:
		p.advance() // consume '.'
		propTok, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		return &ast.MemberExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, propTok.Span.End),
			Object:   left,
			Property: propTok.Lexeme,
		}
	}

	// Binary infix operator (left-associative)
	bp := infixBP(tok.Kind)
	p.advance()
	right := p.parseExpr(bp)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{
		ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
		Op:       tok.Kind,
		Left:     left,
		Right:    right,
	}
}

// parseArgs parses: ( expr, expr, ... )
func (p *Parser) parseArgs() ([]ast.Expr, bool) {
	var args []ast.Expr
	if _, ok := p.expect(token.LPAREN); !ok {
		return nil, false
	}
	if p.check(token.RPAREN) {
		p.advance()
		return args, true
	}
	for {
		arg := p.parseExpr(bpNone)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.check(token.COMMA) {
			break
		}
		p.advance() // consume ','
	}
	_, ok := p.expect(token.RPAREN)
	return args, ok
}

// parseNewExpr parses: new ClassName(args)
func (p *Parser) parseNewExpr() ast.Expr {
	start := p.advance() // consume 'new'
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	args, ok := p.parseArgs()
	if !ok {
		return nil
	}
	return &ast.NewExpr{
		ExprBase:  makeExprBase(start.Span.Start, p.prevEnd()),
		ClassName: nameTok.Lexeme,
		Args:      args,
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

// setEnd widens a simple statement's span to cover its terminating ';'.
func setEnd(stmt ast.Stmt, end span.Position) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		s.Span.End = end
	case *ast.AssignStmt:
		s.Span.End = end
	}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
