package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"script-lang/internal/cmdutil"
	"script-lang/internal/diag"
	"script-lang/internal/token"
)

// printer writes command output. Colors follow color.NoColor, which is set once the
// configuration is known.
type printer struct {
	out    io.Writer
	errOut io.Writer

	errColor  *color.Color
	kindColor *color.Color
	litColor  *color.Color
	kwColor   *color.Color
	dimColor  *color.Color
	okColor   *color.Color
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{
		out:       out,
		errOut:    errOut,
		errColor:  color.New(color.FgRed),
		kindColor: color.New(color.FgCyan),
		litColor:  color.New(color.FgGreen),
		kwColor:   color.New(color.FgMagenta),
		dimColor:  color.New(color.FgHiBlack),
		okColor:   color.New(color.FgGreen, color.Bold),
	}
}

// failure reports a failed command on the error stream, one line per diagnostic.
func (p *printer) failure(err error) {
	for _, msg := range cmdutil.ErrorMessages(err) {
		p.errColor.Fprintln(p.errOut, msg)
	}
}

// ---- tokens ----

func (p *printer) tokensText(tokens []token.Token) {
	for _, tok := range tokens {
		lexeme := p.dimColor
		switch {
		case tok.Kind.IsKeyword():
			lexeme = p.kwColor
		case tok.Kind.IsLiteral():
			lexeme = p.litColor
		}
		fmt.Fprintf(p.out, "%s %s %d:%d\n",
			p.kindColor.Sprintf("%-12s", tok.Kind),
			lexeme.Sprintf("%-20s", tok.Lexeme),
			tok.Span.Start.Line, tok.Span.Start.Column)
	}
}

type tokenJSON struct {
	Kind   string `json:"kind" yaml:"kind"`
	Lexeme string `json:"lexeme" yaml:"lexeme"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Offset int    `json:"offset" yaml:"offset"`
}

func tokensToSlice(tokens []token.Token) []tokenJSON {
	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Span.Start.Line,
			Column: tok.Span.Start.Column,
			Offset: tok.Span.Start.Offset,
		})
	}
	return toks
}

func diagsToSlice(err error) []map[string]interface{} {
	diags := diag.All(err)
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"kind":     d.Kind.String(),
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Span.Start.Line,
			"column":   d.Span.Start.Column,
			"offset":   d.Span.Start.Offset,
		}
		if d.Hint != "" {
			result[i]["hint"] = d.Hint
		}
	}
	return result
}

// ---- structured output ----

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func (p *printer) structured(format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding JSON")
	case formatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	}
	return errors.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatYAML)
}
