package runtime

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"script-lang/internal/diag"
)

// ---- Scenarios ----

func TestScenarioIf(t *testing.T) {
	interp := expectOutput(t, `int x = 10; if (x > 5) { x = x + 1; }`, "")
	assert.Equal(t, IntVal(11), lookup(t, interp, "x"))
}

func TestScenarioDoWhile(t *testing.T) {
	interp := expectOutput(t, `int count = 0; do { count = count + 2; } while (count < 10);`, "")
	assert.Equal(t, IntVal(10), lookup(t, interp, "count"))
}

func TestScenarioFor(t *testing.T) {
	src := `int sum = 0; for (int j = 0; j < 5; j++) { if (j % 2 == 0) { sum = sum + j; } }`
	interp := expectOutput(t, src, "")
	assert.Equal(t, IntVal(6), lookup(t, interp, "sum"))

	_, err := interp.Lookup("j")
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.NameError, d.Kind)
}

func TestScenarioClass(t *testing.T) {
	src := `
class Point {
  int x;
  int y;
  function set_values(int a, int b) { x = a; y = b; }
  function sum() { return x + y; }
}
Point p = new Point();
p.set_values(3, 4);
int result = p.sum();
delete p;
`
	interp := expectOutput(t, src, "")
	assert.Equal(t, IntVal(7), lookup(t, interp, "result"))

	_, err := interp.Lookup("p")
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.NameError, d.Kind)
}

// ---- Expressions ----

func TestArithmetic(t *testing.T) {
	expectOutput(t, `print(1 + 2 * 3);`, "7\n")
	expectOutput(t, `print((1 + 2) * 3);`, "9\n")
	expectOutput(t, `print(10 / 3);`, "3\n")
	expectOutput(t, `print(10 % 3);`, "1\n")
	expectOutput(t, `print(-7 / 2);`, "-3\n")
	expectOutput(t, `print(2 - 3 - 4);`, "-5\n")
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, "int a = 1;\nint b = a / 0;", diag.ArithmeticError, 2)
	expectError(t, "print(5 % 0);", diag.ArithmeticError, 1)
}

func TestComparisonAndLogic(t *testing.T) {
	expectOutput(t, `print(1 < 2, 2 <= 2, 3 > 4, 4 >= 5);`, "true true false false\n")
	expectOutput(t, `print(1 == 1, 1 != 1, "a" == "a", true != false);`, "true false true true\n")
	expectOutput(t, `print(!true, !0, 1 < 2 && 2 < 3, 1 > 2 || 0);`, "false true true false\n")
	expectOutput(t, `boolean b = !(1 == 2); print(b);`, "true\n")
}

func TestShortCircuit(t *testing.T) {
	var out bytes.Buffer
	natives := NewNatives()
	require.NoError(t, RegisterBuiltins(natives, &out))
	calls := 0
	require.NoError(t, natives.Register("tick", func(args []Value) (Value, error) {
		calls++
		return BoolVal(true), nil
	}))

	interp := NewInterpreter(&out, Config{Natives: natives})
	src := `boolean a = false && tick();
boolean b = true || tick();
boolean c = true && tick();
print(a, b, c);`
	require.NoError(t, interp.Run(parse(t, src)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "false true true\n", out.String())
}

func TestTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"string into int", "int x = 1;\nx = \"a\";", 2},
		{"declare with wrong type", `int x = "a";`, 1},
		{"string arithmetic", `print("a" + 1);`, 1},
		{"compare int with boolean", `boolean b = 1 == true;`, 1},
		{"string condition", "if (\"s\") {\n}", 1},
		{"negate boolean", `int n = -true;`, 1},
		{"wrong arity", "function f(int a) { }\nf();", 2},
		{"wrong return type", "function int g() { return \"s\"; }\nint r = g();", 2},
		{"object into int", "class A { }\nA a = new A();\nint n = a;", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.src, diag.TypeMismatchError, tt.line)
		})
	}
}

// ---- Variables and scopes ----

func TestShadowing(t *testing.T) {
	expectOutput(t, `int x = 1; { int x = 2; print(x); } print(x);`, "2\n1\n")
}

func TestAssignmentReachesEnclosingScope(t *testing.T) {
	interp := expectOutput(t, `int x = 1; { { x = 5; } }`, "")
	assert.Equal(t, IntVal(5), lookup(t, interp, "x"))
}

func TestAssignmentNeverCreatesBinding(t *testing.T) {
	expectError(t, "int a = 1;\ny = 3;", diag.NameError, 2)
	expectError(t, "print(missing);", diag.NameError, 1)
}

func TestRedeclarationInSameScope(t *testing.T) {
	expectError(t, "int a = 1;\nint a = 2;", diag.NameError, 2)
	expectOutput(t, "int a = 1; { int a = 2; }", "")
}

func TestFinal(t *testing.T) {
	interp := expectError(t, "final int k = 3;\nk = 4;", diag.ImmutabilityError, 2)
	assert.Equal(t, IntVal(3), lookup(t, interp, "k"))

	interp = expectError(t, "final int k;\nk = 2;\nprint(k);\nk = 3;", diag.ImmutabilityError, 4)
	assert.Equal(t, IntVal(2), lookup(t, interp, "k"))
}

func TestDefaultValues(t *testing.T) {
	expectOutput(t, `int i; boolean b; string s; float f; print(i, b, f); print(s == "");`, "0 false 0\ntrue\n")
}

func TestFloatStoresIntegers(t *testing.T) {
	expectOutput(t, `float f = 3; f = f * 2; print(f);`, "6\n")
}

// ---- Control flow ----

func TestWhileBreakContinue(t *testing.T) {
	src := `
int i = 0;
int s = 0;
while (true) {
  i++;
  if (i > 10) { break; }
  if (i % 2 == 0) { continue; }
  s = s + i;
}
print(s, i);
`
	expectOutput(t, src, "25 11\n")
}

func TestIncrementDecrement(t *testing.T) {
	expectOutput(t, `int x = 5; x++; x++; x--; print(x);`, "6\n")
	expectError(t, "boolean b = true;\nb++;", diag.TypeMismatchError, 2)
	expectError(t, "final int f = 1;\nf--;", diag.ImmutabilityError, 2)
}

func TestIncrementEvaluatesTargetOnce(t *testing.T) {
	src := `
class Cell { int v = 0; }
Cell c = new Cell();
int calls = 0;
function Cell get() {
  calls = calls + 1;
  return c;
}
get().v++;
get().v++;
get().v--;
print(calls, c.v);
`
	expectOutput(t, src, "3 1\n")
}

func TestIntegerOverflow(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"add", "int m = 9223372036854775807;\nint r = m + 1;"},
		{"subtract", "int m = -9223372036854775807;\nint r = m - 2;"},
		{"multiply", "int m = 9223372036854775807;\nint r = m * 2;"},
		{"negate", "int m = -9223372036854775807 - 1;\nint r = -m;"},
		{"divide", "int m = -9223372036854775807 - 1;\nint r = m / -1;"},
		{"increment", "int m = 9223372036854775807;\nm++;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.src, diag.ArithmeticError, 2)
		})
	}
	expectOutput(t, "int m = -9223372036854775807 - 1; print(m % -1, m + 1 - 1 == m);", "0 true\n")
}

func TestElseIfChain(t *testing.T) {
	src := `
function string grade(int n) {
  if (n >= 90) { return "A"; } else if (n >= 80) { return "B"; } else { return "C"; }
}
print(grade(95), grade(85), grade(10));
`
	expectOutput(t, src, "A B C\n")
}

func TestForWithoutClauses(t *testing.T) {
	expectOutput(t, `int n = 0; for (;;) { n++; if (n == 3) { break; } } print(n);`, "3\n")
}

func TestTopLevelReturn(t *testing.T) {
	interp, out, err := runSource(t, "int x = 1;\nreturn x + 1;\nprint(\"unreachable\");", Config{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, StateReturned, interp.State())
	assert.Equal(t, IntVal(2), interp.Result())
}

func TestTopLevelBreak(t *testing.T) {
	interp := expectError(t, "int x = 1;\nbreak;", diag.SyntaxError, 2)
	assert.Equal(t, StateRaised, interp.State())
}

func TestState(t *testing.T) {
	interp := NewInterpreter(&bytes.Buffer{}, Config{})
	assert.Equal(t, StateReady, interp.State())
	require.NoError(t, interp.Run(parse(t, "int a = 1;")))
	assert.Equal(t, StateReturned, interp.State())
	assert.Equal(t, NullVal{}, interp.Result())
	assert.Equal(t, "returned", interp.State().String())
}

// ---- Functions ----

func TestRecursion(t *testing.T) {
	src := `
function int fact(int n) {
  if (n <= 1) { return 1; }
  return n * fact(n - 1);
}
print(fact(10));
`
	expectOutput(t, src, "3628800\n")
}

func TestRecursionLimit(t *testing.T) {
	src := "function int down(int n) {\n  if (n == 0) { return 0; }\n  return down(n - 1);\n}\n"

	_, out, err := runSource(t, src+"print(down(49));", Config{MaxDepth: 50})
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	interp, _, err := runSource(t, src+"print(down(50));", Config{MaxDepth: 50})
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.RecursionError, d.Kind)
	assert.Equal(t, StateRaised, interp.State())
}

func TestUndefinedFunction(t *testing.T) {
	expectError(t, "int a = 1;\nnope(a);", diag.NameError, 2)
}

func TestFunctionSeesDefiningScope(t *testing.T) {
	src := `
int base = 10;
function int add(int n) { return base + n; }
{
  int base = 99;
  print(add(1));
}
`
	expectOutput(t, src, "11\n")
}

func TestVoidFunction(t *testing.T) {
	expectOutput(t, `void hello() { print("hi"); return; } hello();`, "hi\n")
	expectError(t, "void bad() { return 1; }\nbad();", diag.TypeMismatchError, 2)
}

// ---- Natives ----

func TestBuiltins(t *testing.T) {
	src := `class Car { } Car c = new Car(); print(typeof(1), typeof("s"), typeof(true), typeof(c));`
	expectOutput(t, src, "int string boolean Car\n")
	expectOutput(t, `println("a", 1); assert(1 < 2);`, "a 1\n")
}

func TestAssertFailure(t *testing.T) {
	_, _, err := runSource(t, "int x = 1;\nassert(x == 2, \"x is two\");", Config{})
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.NativeError, d.Kind)
	assert.Equal(t, 2, d.Line())
	assert.Equal(t, "assert: assertion failed: x is two", d.Message)
}

func TestNativeArgumentError(t *testing.T) {
	expectError(t, "print(typeof(1, 2));", diag.TypeMismatchError, 1)
}

func TestNativesFrozenAfterRun(t *testing.T) {
	interp := expectOutput(t, `print("go");`, "go\n")
	assert.True(t, interp.Natives().Frozen())
	err := interp.Natives().Register("late", func(args []Value) (Value, error) { return nil, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")
}

func TestNativesShadowUserFunctions(t *testing.T) {
	expectOutput(t, `function print(int n) { } print(7);`, "7\n")
}
