package runtime

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"script-lang/internal/diag"
)

func requireKind(t *testing.T, err error, kind diag.Kind) {
	t.Helper()
	d, ok := diag.As(err)
	require.True(t, ok, "expected a diagnostic, got %v", err)
	assert.Equal(t, kind, d.Kind)
}

func TestEnvironmentDefineGet(t *testing.T) {
	env := NewEnvironment(nil)
	require.NoError(t, env.Define("x", "int", IntVal(1), false))

	v, err := env.Get("x")
	require.NoError(t, err)
	assert.Equal(t, IntVal(1), v)

	_, err = env.Get("y")
	requireKind(t, err, diag.NameError)

	requireKind(t, env.Define("x", "int", IntVal(2), false), diag.NameError)
	requireKind(t, env.Define("s", "int", StringVal("no"), false), diag.TypeMismatchError)
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment(nil)
	require.NoError(t, outer.Define("x", "int", IntVal(1), false))
	inner := NewEnvironment(outer)
	require.NoError(t, inner.Define("x", "int", IntVal(2), false))

	v, _ := inner.Get("x")
	assert.Equal(t, IntVal(2), v)
	v, _ = outer.Get("x")
	assert.Equal(t, IntVal(1), v)
}

func TestEnvironmentAssignWalksOutward(t *testing.T) {
	outer := NewEnvironment(nil)
	require.NoError(t, outer.Define("x", "int", IntVal(1), false))
	inner := NewEnvironment(NewEnvironment(outer))

	require.NoError(t, inner.Assign("x", IntVal(9)))
	v, _ := outer.Get("x")
	assert.Equal(t, IntVal(9), v)
	assert.Empty(t, inner.Names(), "assignment must not create a binding")

	requireKind(t, inner.Assign("nope", IntVal(1)), diag.NameError)
	requireKind(t, inner.Assign("x", BoolVal(true)), diag.TypeMismatchError)
}

func TestEnvironmentFinal(t *testing.T) {
	env := NewEnvironment(nil)
	require.NoError(t, env.Define("k", "int", IntVal(3), true))
	requireKind(t, env.Assign("k", IntVal(4)), diag.ImmutabilityError)
	v, _ := env.Get("k")
	assert.Equal(t, IntVal(3), v)

	require.NoError(t, env.DefineUnassigned("late", "int"))
	require.NoError(t, env.Assign("late", IntVal(5)))
	requireKind(t, env.Assign("late", IntVal(6)), diag.ImmutabilityError)
	v, _ = env.Get("late")
	assert.Equal(t, IntVal(5), v)
}

func TestEnvironmentAncestor(t *testing.T) {
	root := NewEnvironment(nil)
	require.NoError(t, root.Define("r", "int", IntVal(1), false))
	mid := NewEnvironment(root)
	require.NoError(t, mid.Define("m", "int", IntVal(2), false))
	leaf := NewEnvironment(mid)

	self, err := leaf.Ancestor(0)
	require.NoError(t, err)
	assert.Same(t, leaf, self)

	up, err := leaf.Ancestor(2)
	require.NoError(t, err)
	assert.Same(t, root, up)
	assert.Same(t, mid, leaf.Parent())
	assert.Nil(t, root.Parent())

	_, err = leaf.Ancestor(3)
	requireKind(t, err, diag.ScopeChainError)

	v, err := leaf.GetAt(2, "r")
	require.NoError(t, err)
	assert.Equal(t, IntVal(1), v)

	// GetAt looks in exactly one scope
	_, err = leaf.GetAt(1, "r")
	requireKind(t, err, diag.NameError)
	_, err = leaf.GetAt(5, "r")
	requireKind(t, err, diag.ScopeChainError)
}

func TestEnvironmentRegistries(t *testing.T) {
	root := NewGlobalEnvironment(NewNatives())
	child := NewEnvironment(root)

	class := NewClassDef("Point", root)
	require.NoError(t, root.DefineClass(class))
	requireKind(t, root.DefineClass(NewClassDef("Point", root)), diag.NameError)

	got, err := child.LookupClass("Point")
	require.NoError(t, err)
	assert.Same(t, class, got)
	_, err = child.LookupClass("Missing")
	requireKind(t, err, diag.NameError)

	fn := &Function{Name: "f", Env: root}
	require.NoError(t, child.DefineFunction(fn))
	requireKind(t, child.DefineFunction(&Function{Name: "f"}), diag.NameError)
	found, ok := child.LookupFunction("f")
	require.True(t, ok)
	assert.Same(t, fn, found)
	_, ok = root.LookupFunction("f")
	assert.False(t, ok, "functions are scoped to where they are defined")
}

func TestEnvironmentObjects(t *testing.T) {
	env := NewEnvironment(nil)
	class := NewClassDef("Box", env)
	obj := newObject(class, 1)

	require.NoError(t, env.DefineObject("b", "Box", obj, false, true))
	requireKind(t, env.DefineObject("n", "Box", IntVal(1), false, false), diag.TypeMismatchError)
	require.NoError(t, env.DefineObject("empty", "Box", NullVal{}, false, false))

	v, err := env.LookupObject("b")
	require.NoError(t, err)
	assert.Same(t, obj, v)
	assert.Equal(t, []*Object{obj}, env.ownedObjects())

	obj.destroy()
	_, err = env.LookupObject("b")
	requireKind(t, err, diag.NameError)
	_, err = env.Get("b")
	requireKind(t, err, diag.NameError)
	_, err = env.GetAt(0, "b")
	requireKind(t, err, diag.NameError)
	assert.Empty(t, env.ownedObjects())

	assert.Equal(t, []string{"b", "empty"}, env.Names())
}

func TestEnvironmentReceiverFields(t *testing.T) {
	global := NewEnvironment(nil)
	require.NoError(t, global.Define("v", "int", IntVal(1), false))
	require.NoError(t, global.Define("g", "int", IntVal(5), false))

	class := NewClassDef("C", global)
	require.True(t, class.AddField(&Field{Type: "int", Name: "v"}))
	require.False(t, class.AddField(&Field{Type: "int", Name: "v"}))
	obj := newObject(class, 1)

	method := newMethodEnvironment(global, obj)
	block := NewEnvironment(method)
	assert.Same(t, obj, block.Receiver())
	assert.Nil(t, global.Receiver())

	v, _ := block.Get("v")
	assert.Equal(t, IntVal(0), v, "field shadows the outer variable")
	v, _ = block.Get("g")
	assert.Equal(t, IntVal(5), v)

	require.NoError(t, block.Assign("v", IntVal(7)))
	f, ok := obj.Field("v")
	require.True(t, ok)
	assert.Equal(t, IntVal(7), f.Value)
	outer, _ := global.Get("v")
	assert.Equal(t, IntVal(1), outer)

	require.NoError(t, method.Define("v", "int", IntVal(3), false))
	v, _ = block.Get("v")
	assert.Equal(t, IntVal(3), v, "local shadows the field")
}

func TestNatives(t *testing.T) {
	n := NewNatives()
	require.NoError(t, RegisterBuiltins(n, io.Discard))
	assert.Equal(t, []string{"print", "println", "typeof", "assert"}, n.Names())

	err := n.Register("print", func(args []Value) (Value, error) { return nil, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	root := NewGlobalEnvironment(n)
	_, ok := NewEnvironment(root).LookupNative("typeof")
	assert.True(t, ok)
	_, ok = NewEnvironment(nil).LookupNative("typeof")
	assert.False(t, ok)

	n.Freeze()
	assert.True(t, n.Frozen())
	require.Error(t, n.Register("x", func(args []Value) (Value, error) { return nil, nil }))
}
