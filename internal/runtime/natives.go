package runtime

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"

	"script-lang/internal/diag"
	"script-lang/internal/span"
)

// NativeFunc is a host function callable from scripts. The argument count is len(args).
// A nil result is treated as null.
type NativeFunc func(args []Value) (Value, error)

// Natives is the registry of host functions. It is frozen when execution begins and
// cannot change afterwards.
type Natives struct {
	fns    *linkedhashmap.Map // name -> NativeFunc
	frozen bool
}

// NewNatives creates an empty registry.
func NewNatives() *Natives {
	return &Natives{fns: linkedhashmap.New()}
}

// Register adds a native function.
func (n *Natives) Register(name string, fn NativeFunc) error {
	if n.frozen {
		return errors.Errorf("cannot register native '%s': registry is frozen", name)
	}
	if _, exists := n.fns.Get(name); exists {
		return errors.Errorf("native '%s' is already registered", name)
	}
	n.fns.Put(name, fn)
	return nil
}

// Lookup returns the native function registered under name.
func (n *Natives) Lookup(name string) (NativeFunc, bool) {
	fn, ok := n.fns.Get(name)
	if !ok {
		return nil, false
	}
	return fn.(NativeFunc), true
}

// Freeze rejects any further registration.
func (n *Natives) Freeze() {
	n.frozen = true
}

// Frozen reports whether Freeze has been called.
func (n *Natives) Frozen() bool {
	return n.frozen
}

// Names lists the registered natives in registration order.
func (n *Natives) Names() []string {
	keys := n.fns.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// ArgError reports a native called with unusable arguments.
func ArgError(format string, args ...interface{}) error {
	return diag.New(diag.TypeMismatchError, span.Span{}, format, args...)
}

// RegisterBuiltins adds the standard natives: print, println, typeof and assert.
func RegisterBuiltins(n *Natives, w io.Writer) error {
	printFn := func(args []Value) (Value, error) {
		fmt.Fprintln(w, ValuesString(args, " "))
		return NullVal{}, nil
	}
	builtins := []struct {
		name string
		fn   NativeFunc
	}{
		{"print", printFn},
		{"println", printFn},
		{"typeof", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, ArgError("typeof() expects 1 argument, got %d", len(args))
			}
			return StringVal(args[0].TypeName()), nil
		}},
		{"assert", func(args []Value) (Value, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, ArgError("assert() expects 1 or 2 arguments, got %d", len(args))
			}
			ok, valid := truth(args[0])
			if !valid {
				return nil, ArgError("assert() condition must be boolean or int, got %s", args[0].TypeName())
			}
			if !ok {
				msg := "assertion failed"
				if len(args) == 2 {
					msg += ": " + args[1].String()
				}
				return nil, errors.New(msg)
			}
			return NullVal{}, nil
		}},
	}
	for _, b := range builtins {
		if err := n.Register(b.name, b.fn); err != nil {
			return err
		}
	}
	return nil
}
