// Package runtime is the tree-walking evaluator with its environment and object model.
package runtime

import (
	"fmt"
	"strings"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return typeInt }
func (v IntVal) String() string   { return fmt.Sprintf("%d", int64(v)) }

// StringVal represents a string value. Strings support storage and equality only.
type StringVal string

func (v StringVal) TypeName() string { return typeString }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return typeBoolean }
func (v BoolVal) String() string   { return fmt.Sprintf("%t", bool(v)) }

// NullVal is the absence of a value: a call without a return value, or an object-typed
// name with nothing assigned.
type NullVal struct{}

func (v NullVal) TypeName() string { return "null" }
func (v NullVal) String() string   { return "null" }

// ---- Declared types ----

const (
	typeInt     = "int"
	typeFloat   = "float"
	typeBoolean = "boolean"
	typeString  = "string"
	typeVoid    = "void"
)

func isPrimitiveType(name string) bool {
	switch name {
	case typeInt, typeFloat, typeBoolean, typeString:
		return true
	}
	return false
}

// isClassType reports whether a declared type names a class.
func isClassType(name string) bool {
	return name != "" && name != typeVoid && !isPrimitiveType(name)
}

// defaultValue is what a declaration without an initializer holds.
func defaultValue(typ string) Value {
	switch typ {
	case typeInt, typeFloat:
		return IntVal(0)
	case typeBoolean:
		return BoolVal(false)
	case typeString:
		return StringVal("")
	}
	return NullVal{}
}

// conforms reports whether v may be stored under the declared type typ. Floats have no
// arithmetic of their own and store integers.
func conforms(typ string, v Value) bool {
	switch typ {
	case "":
		return true
	case typeInt, typeFloat:
		_, ok := v.(IntVal)
		return ok
	case typeBoolean:
		_, ok := v.(BoolVal)
		return ok
	case typeString:
		_, ok := v.(StringVal)
		return ok
	case typeVoid:
		_, ok := v.(NullVal)
		return ok
	}
	switch val := v.(type) {
	case NullVal:
		return true
	case *Object:
		return val.Class.Name == typ
	}
	return false
}

// ---- Helpers ----

// truth interprets a condition operand. Only booleans and integers qualify.
func truth(v Value) (bool, bool) {
	switch val := v.(type) {
	case BoolVal:
		return bool(val), true
	case IntVal:
		return val != 0, true
	}
	return false, false
}

// ValuesString formats a slice of values with a separator.
func ValuesString(vals []Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}
