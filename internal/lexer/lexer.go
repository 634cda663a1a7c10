// Package lexer turns source text into tokens, one token per call to Next.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"

	"script-lang/internal/diag"
	"script-lang/internal/span"
	"script-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
	open  []token.Token // unmatched ( and { seen so far
	done  bool
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	l := &Lexer{source: source, filename: filename}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the start of its buffer and drops collected diagnostics.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.col = 1
	l.diags = nil
	l.open = nil
	l.done = false
}

// Diagnostics returns the diagnostics collected so far.
func (l *Lexer) Diagnostics() []diag.Diagnostic {
	return l.diags
}

// Next returns the next token. Once the end of input is reached it keeps returning EOF.
func (l *Lexer) Next() token.Token {
	tok := l.nextToken()
	if tok.Kind == token.EOF && !l.done {
		l.done = true
		for _, opener := range l.open {
			l.addError("E1005", opener.Span, fmt.Sprintf("unclosed '%s'", opener.Lexeme))
		}
		l.open = nil
	}
	return tok
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if glog.V(7) {
		glog.Infof("lexer: %s: %d tokens, %d diagnostics", l.filename, len(tokens), len(l.diags))
	}
	return tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(diag.LexicalError, code, s, "%s", msg))
}

// skipTrivia skips whitespace and both comment forms.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.source) {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for l.pos < len(l.source) && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekNext() == '*':
			start := l.curPos()
			l.advance()
			l.advance()
			closed := false
			for l.pos < len(l.source) {
				if l.peek() == '*' && l.peekNext() == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.addError("E1004", l.makeSpan(start), "unterminated block comment")
			}
		default:
			return
		}
	}
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipTrivia()

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}
	}

	start := l.curPos()
	ch := l.peek()

	switch {
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start)
	case isIdentStart(ch):
		return l.readIdentifier(start)
	}
	return l.readOperator(start)
}

// readString reads a double-quoted literal. There are no escape sequences.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	valueStart := l.pos
	for l.pos < len(l.source) {
		if l.peek() == '"' {
			value := l.source[valueStart:l.pos]
			l.advance() // closing "
			return token.Token{Kind: token.STRING, Lexeme: value, Span: l.makeSpan(start)}
		}
		l.advance()
	}
	l.addError("E1001", l.makeSpan(start), "unterminated string literal")
	return token.Token{Kind: token.ILLEGAL, Lexeme: l.source[valueStart:l.pos], Span: l.makeSpan(start)}
}

func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}
	lexeme := l.source[numStart:l.pos]
	if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
		l.addError("E1006", l.makeSpan(start), fmt.Sprintf("integer literal out of range: %s", lexeme))
		return token.Token{Kind: token.ILLEGAL, Lexeme: lexeme, Span: l.makeSpan(start)}
	}
	return token.Token{Kind: token.INT, Lexeme: lexeme, Span: l.makeSpan(start)}
}

func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[identStart:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

// two-character operators are matched before their one-character prefixes.
var twoChar = map[string]token.Kind{
	"==": token.EQ,
	"!=": token.NEQ,
	"<=": token.LTE,
	">=": token.GTE,
	"&&": token.AND,
	"||": token.OR,
	"++": token.INC,
	"--": token.DEC,
}

var oneChar = map[byte]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'%': token.PERCENT,
	'=': token.ASSIGN,
	'<': token.LT,
	'>': token.GT,
	'!': token.BANG,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	'.': token.DOT,
	';': token.SEMICOLON,
}

func (l *Lexer) readOperator(start span.Position) token.Token {
	if l.pos+1 < len(l.source) {
		if kind, ok := twoChar[l.source[l.pos:l.pos+2]]; ok {
			lexeme := l.source[l.pos : l.pos+2]
			l.advance()
			l.advance()
			return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
		}
	}

	ch := l.advance()
	kind, ok := oneChar[ch]
	if !ok {
		l.addError("E1003", l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", ch))
		if ch == '&' || ch == '|' {
			l.diags[len(l.diags)-1].Hint = fmt.Sprintf("did you mean '%c%c'?", ch, ch)
		}
		return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: l.makeSpan(start)}
	}
	tok := token.Token{Kind: kind, Lexeme: string(ch), Span: l.makeSpan(start)}
	l.trackDelimiter(tok)
	return tok
}

// trackDelimiter keeps the ( { stack balanced and reports stray or mismatched closers.
func (l *Lexer) trackDelimiter(tok token.Token) {
	switch tok.Kind {
	case token.LPAREN, token.LBRACE:
		l.open = append(l.open, tok)
	case token.RPAREN, token.RBRACE:
		want := token.LPAREN
		if tok.Kind == token.RBRACE {
			want = token.LBRACE
		}
		if len(l.open) == 0 {
			l.addError("E1005", tok.Span, fmt.Sprintf("unmatched '%s'", tok.Lexeme))
			return
		}
		top := l.open[len(l.open)-1]
		l.open = l.open[:len(l.open)-1]
		if top.Kind != want {
			l.addError("E1005", tok.Span,
				fmt.Sprintf("mismatched '%s', expected closer for '%s' at line %d", tok.Lexeme, top.Lexeme, top.Span.Line()))
		}
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
