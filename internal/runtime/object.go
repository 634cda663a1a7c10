package runtime

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"script-lang/internal/ast"
)

// Function is a user-defined free function, method, constructor or destructor.
type Function struct {
	Name       string
	ReturnType string
	Params     []ast.Param
	Body       *ast.BlockStmt
	Access     ast.Access
	Env        *Environment // defining scope
	Class      *ClassDef    // owning class for methods, nil for free functions
}

func newFunction(decl *ast.FuncDecl, env *Environment, class *ClassDef) *Function {
	return &Function{
		Name:       decl.Name,
		ReturnType: decl.ReturnType,
		Params:     decl.Params,
		Body:       decl.Body,
		Access:     decl.Access,
		Env:        env,
		Class:      class,
	}
}

// Field is a named slot. On a ClassDef it is a template whose Init is evaluated for every
// new instance; on an Object it holds live storage.
type Field struct {
	Type   string
	Name   string
	Access ast.Access
	Final  bool
	Init   ast.Expr
	Value  Value

	assigned bool
}

// ClassDef is a declared class: ordered field templates, ordered methods and the optional
// constructor and destructor.
type ClassDef struct {
	Name        string
	Methods     []*Function
	Constructor *Function
	Destructor  *Function
	Env         *Environment

	fields *linkedhashmap.Map // name -> *Field
}

// NewClassDef creates an empty class bound to its defining environment.
func NewClassDef(name string, env *Environment) *ClassDef {
	return &ClassDef{Name: name, Env: env, fields: linkedhashmap.New()}
}

// AddField appends a field template. Field names are unique within a class.
func (c *ClassDef) AddField(f *Field) bool {
	if _, exists := c.fields.Get(f.Name); exists {
		return false
	}
	c.fields.Put(f.Name, f)
	return true
}

// Fields returns the field templates in declaration order.
func (c *ClassDef) Fields() []*Field {
	out := make([]*Field, 0, c.fields.Size())
	it := c.fields.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Field))
	}
	return out
}

func (c *ClassDef) hasField(name string) bool {
	_, ok := c.fields.Get(name)
	return ok
}

// Method returns the first method named name.
func (c *ClassDef) Method(name string) (*Function, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassDef) String() string {
	return fmt.Sprintf("<class %s>", c.Name)
}

// Object is a live class instance. Once destroyed its storage is released and every
// access through any name fails.
type Object struct {
	Class *ClassDef
	ID    int

	fields *linkedhashmap.Map // name -> *Field
	alive  bool

	// released is set while an owned object travels out of its scope as a return value.
	// The first declaration or assignment that stores it becomes the new owner.
	released bool
}

// newObject copies the class's field templates. Values are filled in by the caller, which
// evaluates initializers in the object's own method scope.
func newObject(class *ClassDef, id int) *Object {
	obj := &Object{Class: class, ID: id, fields: linkedhashmap.New(), alive: true}
	for _, tmpl := range class.Fields() {
		f := *tmpl
		f.Init = nil
		f.Value = defaultValue(tmpl.Type)
		obj.fields.Put(f.Name, &f)
	}
	return obj
}

func (o *Object) TypeName() string { return o.Class.Name }
func (o *Object) String() string   { return fmt.Sprintf("<%s object>", o.Class.Name) }

// Alive reports whether the object has not been destroyed.
func (o *Object) Alive() bool {
	return o.alive
}

// Field returns the live field named name.
func (o *Object) Field(name string) (*Field, bool) {
	if !o.alive {
		return nil, false
	}
	v, ok := o.fields.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Field), true
}

// claim takes ownership of v when it is a released object.
func claim(v Value) *Object {
	obj, ok := v.(*Object)
	if !ok || !obj.released || !obj.alive {
		return nil
	}
	obj.released = false
	return obj
}

// FieldNames lists the object's fields in declaration order.
func (o *Object) FieldNames() []string {
	keys := o.fields.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// destroy releases the field storage.
func (o *Object) destroy() {
	o.alive = false
	o.fields.Clear()
}
