// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"

	"script-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, speed, Point
	INT    // integer literals: 123
	STRING // string literals: "red"

	// Operators
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	BANG    // !

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	AND // &&
	OR  // ||

	INC // ++
	DEC // --

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;

	// Keywords
	KW_IF
	KW_DO
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_FUNCTION
	KW_CLASS
	KW_CONSTRUCTOR
	KW_DESTRUCTOR
	KW_PUBLIC
	KW_PRIVATE
	KW_FINAL
	KW_NEW
	KW_DELETE
	KW_INT
	KW_FLOAT
	KW_BOOLEAN
	KW_STRING
	KW_VOID
	KW_TRUE
	KW_FALSE
	KW_NULL
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	ASSIGN:  "=",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	BANG:    "!",
	EQ:      "==",
	NEQ:     "!=",
	LT:      "<",
	LTE:     "<=",
	GT:      ">",
	GTE:     ">=",
	AND:     "&&",
	OR:      "||",
	INC:     "++",
	DEC:     "--",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",

	KW_IF:          "if",
	KW_DO:          "do",
	KW_ELSE:        "else",
	KW_WHILE:       "while",
	KW_FOR:         "for",
	KW_RETURN:      "return",
	KW_BREAK:       "break",
	KW_CONTINUE:    "continue",
	KW_FUNCTION:    "function",
	KW_CLASS:       "class",
	KW_CONSTRUCTOR: "constructor",
	KW_DESTRUCTOR:  "destructor",
	KW_PUBLIC:      "public",
	KW_PRIVATE:     "private",
	KW_FINAL:       "final",
	KW_NEW:         "new",
	KW_DELETE:      "delete",
	KW_INT:         "int",
	KW_FLOAT:       "float",
	KW_BOOLEAN:     "boolean",
	KW_STRING:      "string",
	KW_VOID:        "void",
	KW_TRUE:        "true",
	KW_FALSE:       "false",
	KW_NULL:        "null",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_IF && k <= KW_NULL
}

// IsLiteral returns true if the kind is an identifier or a literal.
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

// IsBuiltinType reports whether k names one of the primitive type keywords.
func (k Kind) IsBuiltinType() bool {
	switch k {
	case KW_INT, KW_FLOAT, KW_BOOLEAN, KW_STRING:
		return true
	}
	return false
}

var keywords = map[string]Kind{}

func init() {
	for k := KW_IF; k <= KW_NULL; k++ {
		keywords[kindNames[k]] = k
	}
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
// Only whole identifiers match, so "integer" stays an IDENT.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind" yaml:"kind"`
	Lexeme string    `json:"lexeme" yaml:"lexeme"`
	Span   span.Span `json:"span" yaml:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
