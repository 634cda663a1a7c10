// Package diag provides the structured error values produced by the lexer, the parser and
// the evaluator.
package diag

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"script-lang/internal/span"
)

// Kind classifies a failure.
type Kind int

const (
	LexicalError Kind = iota
	SyntaxError
	NameError
	ImmutabilityError
	TypeMismatchError
	ArithmeticError
	ScopeChainError
	RecursionError
	NativeError
)

var kindNames = map[Kind]string{
	LexicalError:      "LexicalError",
	SyntaxError:       "SyntaxError",
	NameError:         "NameError",
	ImmutabilityError: "ImmutabilityError",
	TypeMismatchError: "TypeMismatchError",
	ArithmeticError:   "ArithmeticError",
	ScopeChainError:   "ScopeChainError",
	RecursionError:    "RecursionError",
	NativeError:       "NativeError",
}

// runtime kinds share one code per kind; lexer and parser pick their own codes.
var kindCodes = map[Kind]string{
	NameError:         "E3001",
	ImmutabilityError: "E3002",
	TypeMismatchError: "E3003",
	ArithmeticError:   "E3004",
	ScopeChainError:   "E3005",
	RecursionError:    "E3006",
	NativeError:       "E3007",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the default diagnostic code for k.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "E0000"
}

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a located, classified message. *Diagnostic implements error.
type Diagnostic struct {
	Code     string    `json:"code" yaml:"code"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Message  string    `json:"message" yaml:"message"`
	Span     span.Span `json:"span" yaml:"span"`
	Hint     string    `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Line is the 1-based source line the diagnostic points at.
func (d *Diagnostic) Line() int {
	return d.Span.Start.Line
}

// String renders the long form used by the CLI token and parse dumps.
func (d *Diagnostic) String() string {
	msg := fmt.Sprintf("[%s] %s %s at %s: %s", d.Code, d.Severity, d.Kind, d.Span.Start, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at line %d: %s", d.Kind, d.Line(), d.Message)
}

// Errorf creates an error diagnostic with an explicit code.
func Errorf(kind Kind, code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Kind:     kind,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// New creates an error diagnostic using the kind's default code.
func New(kind Kind, s span.Span, format string, args ...interface{}) *Diagnostic {
	d := Errorf(kind, kind.Code(), s, format, args...)
	return &d
}

// Combine folds a diagnostic list into a single error. It returns nil for an empty list
// and the diagnostic itself when there is exactly one.
func Combine(diags []Diagnostic) error {
	switch len(diags) {
	case 0:
		return nil
	case 1:
		d := diags[0]
		return &d
	}
	var result *multierror.Error
	for i := range diags {
		d := diags[i]
		result = multierror.Append(result, &d)
	}
	result.ErrorFormat = formatList
	return result
}

func formatList(errs []error) string {
	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, err.Error())
	}
	return fmt.Sprintf("%d errors:\n  %s", len(errs), strings.Join(lines, "\n  "))
}

// As extracts the first diagnostic wrapped in err.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// All flattens err into the diagnostics it carries. Errors that are not diagnostics are
// skipped.
func All(err error) []*Diagnostic {
	if err == nil {
		return nil
	}
	var out []*Diagnostic
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			out = append(out, All(e)...)
		}
		return out
	}
	if d, ok := As(err); ok {
		out = append(out, d)
	}
	return out
}
