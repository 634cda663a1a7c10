package runtime

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"script-lang/internal/diag"
	"script-lang/internal/span"
)

// Variable is a primitive-typed binding.
type Variable struct {
	Name  string
	Type  string
	Value Value
	Final bool

	assigned bool // a final declared without initializer may be assigned once
}

// objectEntry registers a class-typed name. Owned entries were constructed in this scope
// and are destroyed when the scope ends; borrowed ones (aliases, parameters) are not.
type objectEntry struct {
	typ   string
	value Value // *Object or NullVal
	final bool
	owned bool
}

// Environment is one lexical scope. Each registry keeps insertion order.
type Environment struct {
	vars    *linkedhashmap.Map // name -> *Variable
	objects *linkedhashmap.Map // name -> *objectEntry
	funcs   *linkedhashmap.Map // name -> *Function
	classes *linkedhashmap.Map // name -> *ClassDef
	natives *Natives           // set on the root only

	parent   *Environment
	receiver *Object // set on method call scopes
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		vars:    linkedhashmap.New(),
		objects: linkedhashmap.New(),
		funcs:   linkedhashmap.New(),
		classes: linkedhashmap.New(),
		parent:  parent,
	}
}

// NewGlobalEnvironment creates a root scope that resolves native functions through n.
func NewGlobalEnvironment(n *Natives) *Environment {
	env := NewEnvironment(nil)
	env.natives = n
	return env
}

func newMethodEnvironment(parent *Environment, receiver *Object) *Environment {
	env := NewEnvironment(parent)
	env.receiver = receiver
	return env
}

// Parent returns the enclosing scope, nil at the root.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Ancestor returns the scope n levels up; Ancestor(0) is e itself.
func (e *Environment) Ancestor(n int) (*Environment, error) {
	env := e
	for i := 0; i < n; i++ {
		if env.parent == nil {
			return nil, diag.New(diag.ScopeChainError, span.Span{},
				"scope chain has %d enclosing scopes, cannot reach ancestor %d", i, n)
		}
		env = env.parent
	}
	return env, nil
}

// GetAt reads name from the scope exactly n levels up without walking further.
func (e *Environment) GetAt(n int, name string) (Value, error) {
	env, err := e.Ancestor(n)
	if err != nil {
		return nil, err
	}
	if v, ok := env.vars.Get(name); ok {
		return v.(*Variable).Value, nil
	}
	if o, ok := env.objects.Get(name); ok {
		entry := o.(*objectEntry)
		if obj, isObj := entry.value.(*Object); isObj && !obj.Alive() {
			return nil, diag.New(diag.NameError, span.Span{}, "object '%s' has been destroyed", name)
		}
		return entry.value, nil
	}
	return nil, diag.New(diag.NameError, span.Span{}, "'%s' is not defined %d scopes up", name, n)
}

// Receiver returns the object whose method is executing, if any.
func (e *Environment) Receiver() *Object {
	for env := e; env != nil; env = env.parent {
		if env.receiver != nil {
			return env.receiver
		}
	}
	return nil
}

func (e *Environment) declaredHere(name string) bool {
	if _, ok := e.vars.Get(name); ok {
		return true
	}
	_, ok := e.objects.Get(name)
	return ok
}

// Define declares a primitive-typed variable in this scope.
func (e *Environment) Define(name, typ string, value Value, final bool) error {
	if e.declaredHere(name) {
		return diag.New(diag.NameError, span.Span{}, "'%s' is already declared in this scope", name)
	}
	if !conforms(typ, value) {
		return typeMismatch(name, typ, value)
	}
	e.vars.Put(name, &Variable{Name: name, Type: typ, Value: value, Final: final, assigned: true})
	return nil
}

// DefineUnassigned declares a final variable that has not received its value yet.
func (e *Environment) DefineUnassigned(name, typ string) error {
	if e.declaredHere(name) {
		return diag.New(diag.NameError, span.Span{}, "'%s' is already declared in this scope", name)
	}
	e.vars.Put(name, &Variable{Name: name, Type: typ, Value: defaultValue(typ), Final: true})
	return nil
}

// DefineObject registers a class-typed name in this scope.
func (e *Environment) DefineObject(name, typ string, value Value, final, owned bool) error {
	if e.declaredHere(name) {
		return diag.New(diag.NameError, span.Span{}, "'%s' is already declared in this scope", name)
	}
	if !conforms(typ, value) {
		return typeMismatch(name, typ, value)
	}
	e.objects.Put(name, &objectEntry{typ: typ, value: value, final: final, owned: owned})
	return nil
}

// Get resolves name: this scope's variables and objects, then the receiver's fields when
// this is a method scope, then the enclosing scopes.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars.Get(name); ok {
			return v.(*Variable).Value, nil
		}
		if o, ok := env.objects.Get(name); ok {
			entry := o.(*objectEntry)
			if obj, isObj := entry.value.(*Object); isObj && !obj.Alive() {
				return nil, diag.New(diag.NameError, span.Span{}, "object '%s' has been destroyed", name)
			}
			return entry.value, nil
		}
		if env.receiver != nil {
			if f, ok := env.receiver.Field(name); ok {
				return f.Value, nil
			}
			if err := destroyedReceiver(env.receiver, name); err != nil {
				return nil, err
			}
		}
	}
	return nil, diag.New(diag.NameError, span.Span{}, "undefined name '%s'", name)
}

// Assign writes to an existing binding found with the same precedence as Get. It never
// creates a binding.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars.Get(name); ok {
			return assignVariable(v.(*Variable), value)
		}
		if o, ok := env.objects.Get(name); ok {
			entry := o.(*objectEntry)
			if entry.final {
				return diag.New(diag.ImmutabilityError, span.Span{}, "cannot reassign final '%s'", name)
			}
			if !conforms(entry.typ, value) {
				return typeMismatch(name, entry.typ, value)
			}
			entry.value = value
			entry.owned = claim(value) != nil
			return nil
		}
		if env.receiver != nil {
			if f, ok := env.receiver.Field(name); ok {
				return assignField(f, value)
			}
			if err := destroyedReceiver(env.receiver, name); err != nil {
				return err
			}
		}
	}
	return diag.New(diag.NameError, span.Span{}, "cannot assign to undefined name '%s'", name)
}

// destroyedReceiver stops field names of a receiver deleted during its own method from
// resolving to an outer scope.
func destroyedReceiver(r *Object, name string) error {
	if r.Alive() || !r.Class.hasField(name) {
		return nil
	}
	return diag.New(diag.NameError, span.Span{},
		"field '%s' of destroyed %s object", name, r.Class.Name)
}

func assignVariable(v *Variable, value Value) error {
	if v.Final && v.assigned {
		return diag.New(diag.ImmutabilityError, span.Span{}, "cannot reassign final '%s'", v.Name)
	}
	if !conforms(v.Type, value) {
		return typeMismatch(v.Name, v.Type, value)
	}
	v.Value = value
	v.assigned = true
	return nil
}

func assignField(f *Field, value Value) error {
	if f.Final && f.assigned {
		return diag.New(diag.ImmutabilityError, span.Span{}, "cannot reassign final field '%s'", f.Name)
	}
	if !conforms(f.Type, value) {
		return typeMismatch(f.Name, f.Type, value)
	}
	f.Value = value
	f.assigned = true
	claim(value) // fields hold objects without owning them
	return nil
}

func typeMismatch(name, typ string, value Value) error {
	return diag.New(diag.TypeMismatchError, span.Span{},
		"cannot store %s in '%s' declared %s", value.TypeName(), name, typ)
}

// LookupObject finds a registered object by name, walking outward.
func (e *Environment) LookupObject(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if o, ok := env.objects.Get(name); ok {
			entry := o.(*objectEntry)
			if obj, isObj := entry.value.(*Object); isObj && !obj.Alive() {
				return nil, diag.New(diag.NameError, span.Span{}, "object '%s' has been destroyed", name)
			}
			return entry.value, nil
		}
	}
	return nil, diag.New(diag.NameError, span.Span{}, "undefined object '%s'", name)
}

// unregisterObject removes the nearest registration of name and returns its value.
func (e *Environment) unregisterObject(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if o, ok := env.objects.Get(name); ok {
			env.objects.Remove(name)
			return o.(*objectEntry).value, nil
		}
	}
	return nil, diag.New(diag.NameError, span.Span{}, "undefined object '%s'", name)
}

// ownedObjects lists the live objects this scope owns, most recent first.
func (e *Environment) ownedObjects() []*Object {
	var out []*Object
	values := e.objects.Values()
	for i := len(values) - 1; i >= 0; i-- {
		entry := values[i].(*objectEntry)
		if obj, ok := entry.value.(*Object); ok && entry.owned && obj.Alive() {
			out = append(out, obj)
		}
	}
	return out
}

// DefineFunction registers a free function in this scope.
func (e *Environment) DefineFunction(fn *Function) error {
	if _, ok := e.funcs.Get(fn.Name); ok {
		return diag.New(diag.NameError, span.Span{}, "function '%s' is already defined in this scope", fn.Name)
	}
	e.funcs.Put(fn.Name, fn)
	return nil
}

// LookupFunction finds a free function by name, walking outward.
func (e *Environment) LookupFunction(name string) (*Function, bool) {
	for env := e; env != nil; env = env.parent {
		if fn, ok := env.funcs.Get(name); ok {
			return fn.(*Function), true
		}
	}
	return nil, false
}

// DefineClass registers a class in this scope.
func (e *Environment) DefineClass(c *ClassDef) error {
	if _, ok := e.classes.Get(c.Name); ok {
		return diag.New(diag.NameError, span.Span{}, "class '%s' is already defined in this scope", c.Name)
	}
	e.classes.Put(c.Name, c)
	return nil
}

// LookupClass finds a class by name, walking outward.
func (e *Environment) LookupClass(name string) (*ClassDef, error) {
	for env := e; env != nil; env = env.parent {
		if c, ok := env.classes.Get(name); ok {
			return c.(*ClassDef), nil
		}
	}
	return nil, diag.New(diag.NameError, span.Span{}, "undefined class '%s'", name)
}

// LookupNative resolves a native function through the root scope.
func (e *Environment) LookupNative(name string) (NativeFunc, bool) {
	for env := e; env != nil; env = env.parent {
		if env.natives != nil {
			return env.natives.Lookup(name)
		}
	}
	return nil, false
}

// Names lists the variables and objects declared in this scope, in declaration order.
func (e *Environment) Names() []string {
	var out []string
	for _, k := range e.vars.Keys() {
		out = append(out, k.(string))
	}
	for _, k := range e.objects.Keys() {
		out = append(out, k.(string))
	}
	return out
}
