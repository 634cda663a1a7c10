package runtime

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"script-lang/internal/ast"
	"script-lang/internal/diag"
	"script-lang/internal/lexer"
	"script-lang/internal/parser"
)

// compile lexes and parses source, folding every diagnostic into the error.
func compile(source string) (*ast.File, error) {
	tokens, lexDiags := lexer.New(source, "test.scr").Tokenize()
	if err := diag.Combine(lexDiags); err != nil {
		return nil, err
	}
	file, diags := parser.New(tokens).ParseFile("test.scr")
	return file, diag.Combine(diags)
}

// execute compiles and runs source in a fresh interpreter, returning it with the output.
func execute(source string, cfg Config) (*Interpreter, string, error) {
	file, err := compile(source)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf, cfg)
	err = interp.Run(file)
	return interp, buf.String(), err
}

func parse(t *testing.T, source string) *ast.File {
	t.Helper()
	file, err := compile(source)
	require.NoError(t, err)
	return file
}

func runSource(t *testing.T, source string, cfg Config) (*Interpreter, string, error) {
	t.Helper()
	parse(t, source)
	return execute(source, cfg)
}

func expectOutput(t *testing.T, source, expected string) *Interpreter {
	t.Helper()
	interp, out, err := runSource(t, source, Config{})
	require.NoError(t, err)
	require.Equal(t, expected, out)
	return interp
}

// expectError runs source and requires a diagnostic of kind on line.
func expectError(t *testing.T, source string, kind diag.Kind, line int) *Interpreter {
	t.Helper()
	interp, _, err := runSource(t, source, Config{})
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok, "expected a diagnostic, got %v", err)
	require.Equal(t, kind, d.Kind, "error: %v", err)
	require.Equal(t, line, d.Line(), "error: %v", err)
	return interp
}

func lookup(t *testing.T, interp *Interpreter, name string) Value {
	t.Helper()
	v, err := interp.Lookup(name)
	require.NoError(t, err)
	return v
}
