// Package engine wires the lexer, parser and interpreter into one pipeline.
package engine

import (
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"script-lang/internal/ast"
	"script-lang/internal/config"
	"script-lang/internal/diag"
	"script-lang/internal/lexer"
	"script-lang/internal/parser"
	"script-lang/internal/runtime"
	"script-lang/internal/token"
)

// Tokenize scans source. The tokens are returned even when there are lexical errors.
func Tokenize(source, filename string) ([]token.Token, error) {
	tokens, diags := lexer.New(source, filename).Tokenize()
	return tokens, diag.Combine(diags)
}

// Parse scans and parses source. Lexical errors stop the pipeline before parsing; syntax
// errors are all reported together, alongside the statements that did parse.
func Parse(source, filename string) (*ast.File, error) {
	tokens, err := Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	file, diags := parser.New(tokens).ParseFile(filename)
	return file, diag.Combine(diags)
}

// Engine runs programs against one long-lived interpreter, so definitions carry over
// between runs.
type Engine struct {
	interp *runtime.Interpreter
}

// New creates an engine. With nil natives the standard builtins are installed, printing
// to out.
func New(cfg config.Config, out io.Writer, natives *runtime.Natives) *Engine {
	return &Engine{
		interp: runtime.NewInterpreter(out, runtime.Config{
			MaxDepth: cfg.MaxDepth,
			Natives:  natives,
		}),
	}
}

// Run parses and executes source. Nothing executes if it does not parse cleanly.
func (e *Engine) Run(source, filename string) error {
	file, err := Parse(source, filename)
	if err != nil {
		return err
	}
	if glog.V(5) {
		glog.Infof("engine: running %s (%d statements)", filename, len(file.Body))
	}
	return e.interp.Run(file)
}

// RunFile reads and runs a script from disk.
func (e *Engine) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return e.Run(string(data), path)
}

// Interpreter exposes the underlying interpreter.
func (e *Engine) Interpreter() *runtime.Interpreter {
	return e.interp
}

// Close tears down the global scope, running destructors of objects still alive.
func (e *Engine) Close() error {
	return errors.Wrap(e.interp.Close(), "closing interpreter")
}
