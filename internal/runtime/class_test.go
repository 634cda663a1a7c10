package runtime

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"script-lang/internal/diag"
)

const resourceClass = `
class Res {
  string name;
  constructor(string n) { name = n; print("open", name); }
  destructor() { print("close", name); }
}
`

func TestFieldsAndMethods(t *testing.T) {
	src := `
class Counter {
  int n = 10;
  function inc() { n = n + 1; }
  function twice() { inc(); inc(); }
  function int get() { return n; }
}
Counter c = new Counter();
c.twice();
c.n = c.n * 2;
print(c.get());
`
	expectOutput(t, src, "24\n")
}

func TestFieldInitializersRunPerInstance(t *testing.T) {
	src := `
int seed = 1;
class Box { int v = seed; }
Box a = new Box();
seed = 2;
Box b = new Box();
print(a.v, b.v);
`
	expectOutput(t, src, "1 2\n")
}

func TestReceiverFieldPrecedence(t *testing.T) {
	src := `
int v = 1;
class C {
  int v = 2;
  function show() { print(v); int v = 3; print(v); }
}
C c = new C();
c.show();
print(v);
`
	expectOutput(t, src, "2\n3\n1\n")
}

func TestObjectsAsFields(t *testing.T) {
	src := `
class Engine { int hp; }
class Car { int speed; Engine engine; }
Car car = new Car();
car.speed = 100;
car.engine = new Engine();
car.engine.hp = 250;
print(car.speed, car.engine.hp);
`
	expectOutput(t, src, "100 250\n")
}

func TestConstructorArguments(t *testing.T) {
	src := `
class Pair {
  int a;
  int b;
  constructor(int x, int y) { a = x; b = y; }
  function int sum() { return a + b; }
}
Pair p = new Pair(2, 5);
print(p.sum());
`
	expectOutput(t, src, "7\n")
	expectError(t, "class E { }\nE e = new E(1);", diag.TypeMismatchError, 2)
}

func TestPrivateMembers(t *testing.T) {
	src := `
class Acct {
  private int balance = 5;
  private function int secret() { return balance * 2; }
  public function int get() { return secret(); }
}
Acct a = new Acct();
print(a.get());
`
	expectOutput(t, src, "10\n")
	expectError(t, src+"print(a.balance);", diag.NameError, 9)
	expectError(t, src+"a.balance = 1;", diag.NameError, 9)
	expectError(t, src+"print(a.secret());", diag.NameError, 9)
}

func TestPrivateAccessAcrossInstances(t *testing.T) {
	src := `
class V {
  private int n;
  constructor(int x) { n = x; }
  function boolean same(V other) { return n == other.n; }
}
V a = new V(1);
V b = new V(1);
print(a.same(b));
`
	expectOutput(t, src, "true\n")
}

func TestFinalField(t *testing.T) {
	src := `
class K { final int id = 7; }
K k = new K();
k.id = 8;
`
	expectError(t, src, diag.ImmutabilityError, 4)
}

func TestUnknownMembers(t *testing.T) {
	expectError(t, "class P { int x; }\nP p = new P();\nprint(p.y);", diag.NameError, 3)
	expectError(t, "class P { int x; }\nP p = new P();\np.go();", diag.NameError, 3)
	expectError(t, "Q q = new Q();", diag.NameError, 1)
	expectError(t, "int n = 3;\nprint(n.x);", diag.TypeMismatchError, 2)
}

func TestNullObject(t *testing.T) {
	expectOutput(t, "class P { int x; }\nP p;\nprint(p == null);", "true\n")
	expectError(t, "class P { int x; }\nP p;\nprint(p.x);", diag.NameError, 3)
}

func TestDeleteRunsDestructor(t *testing.T) {
	src := resourceClass + `
Res d = new Res("d");
delete d;
print("after");
`
	expectOutput(t, src, "open d\nclose d\nafter\n")
	expectError(t, src+"print(d.name);", diag.NameError, 11)
}

func TestDeleteInvalidatesAliases(t *testing.T) {
	src := resourceClass + `
Res d = new Res("d");
Res alias = d;
delete d;
print(alias.name);
`
	expectError(t, src, diag.NameError, 11)
}

func TestDeleteUnknown(t *testing.T) {
	expectError(t, "int x = 1;\ndelete x;", diag.NameError, 2)
	expectError(t, "delete ghost;", diag.NameError, 1)
}

func TestBlockDestroysOwnedObjects(t *testing.T) {
	src := resourceClass + `
{
  Res a = new Res("a");
  Res b = new Res("b");
  print("body");
}
print("after");
`
	expectOutput(t, src, "open a\nopen b\nbody\nclose b\nclose a\nafter\n")
}

func TestReturnedObjectSurvivesScope(t *testing.T) {
	src := resourceClass + `
function Res make(string n) {
  Res scratch = new Res("scratch");
  Res r = new Res(n);
  return r;
}
Res kept = make("r");
print(kept.name);
`
	file := parse(t, src)
	var out bytes.Buffer
	interp := NewInterpreter(&out, Config{})
	require.NoError(t, interp.Run(file))
	assert.Equal(t, "open scratch\nopen r\nclose scratch\nr\n", out.String())

	// the declaration took ownership, so teardown reaches it
	require.NoError(t, interp.Close())
	assert.Equal(t, "open scratch\nopen r\nclose scratch\nr\nclose r\n", out.String())
	_, err := interp.Lookup("kept")
	requireKind(t, err, diag.NameError)
}

func TestReturnedObjectOwnedByReceivingScope(t *testing.T) {
	src := resourceClass + `
function Res make(string n) {
  Res r = new Res(n);
  return r;
}
{
  Res inner = make("inner");
  Res alias = inner;
  print("body");
}
Res slot = null;
slot = make("assigned");
make("discarded");
print("end");
`
	expectOutput(t, src,
		"open inner\nbody\nclose inner\nopen assigned\nopen discarded\nclose discarded\nend\n")
}

func TestReturnedObjectStoredInFieldIsBorrowed(t *testing.T) {
	src := resourceClass + `
function Res make(string n) {
  Res r = new Res(n);
  return r;
}
class Holder { Res held; }
Holder h = new Holder();
h.held = make("held");
{
  Res view = h.held;
}
print(h.held.name);
`
	expectOutput(t, src, "open held\nheld\n")
}

func TestLoopIterationDestroysObjects(t *testing.T) {
	src := resourceClass + `
for (int i = 0; i < 2; i++) {
  Res r = new Res("loop");
}
`
	expectOutput(t, src, "open loop\nclose loop\nopen loop\nclose loop\n")
}

func TestCloseDestroysGlobals(t *testing.T) {
	interp := expectOutput(t, resourceClass+`Res g = new Res("g");`, "open g\n")
	require.NoError(t, interp.Close())
	_, err := interp.Lookup("g")
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.NameError, d.Kind)
}

func TestDestructorsSkippedOnError(t *testing.T) {
	src := resourceClass + `
{
  Res a = new Res("a");
  int z = 1 / 0;
}
`
	interp, out, err := runSource(t, src, Config{})
	require.Error(t, err)
	assert.Equal(t, "open a\n", out)
	assert.Equal(t, StateRaised, interp.State())
}

func TestFieldInitializerRecursionLimit(t *testing.T) {
	interp, _, err := runSource(t, "class Node { Node next = new Node(); }\nNode n = new Node();",
		Config{MaxDepth: 50})
	d, ok := diag.As(err)
	require.True(t, ok, "expected a diagnostic, got %v", err)
	assert.Equal(t, diag.RecursionError, d.Kind)
	assert.Contains(t, d.Message, "constructing Node")
	assert.Equal(t, StateRaised, interp.State())
}

func TestFieldsOfDeletedReceiver(t *testing.T) {
	src := `
int x = 100;
class K {
  int x = 5;
  function int kill() {
    delete k;
    x = 7;
    return x;
  }
}
K k = new K();
int r = k.kill();
`
	interp := expectError(t, src, diag.NameError, 7)
	x, err := interp.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, IntVal(100), x)

	// names that are not fields still resolve outward
	src = `
int x = 100;
class K {
  int y = 5;
  function int kill() {
    delete k;
    return x;
  }
}
K k = new K();
print(k.kill());
`
	expectOutput(t, src, "100\n")
}

func TestClassRedefinition(t *testing.T) {
	expectError(t, "class A { }\nclass A { }", diag.NameError, 2)
	expectError(t, "class A { int x; int x; }", diag.NameError, 1)
}
