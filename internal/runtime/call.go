package runtime

import (
	"github.com/golang/glog"

	"script-lang/internal/ast"
	"script-lang/internal/diag"
	"script-lang/internal/span"
)

// evalCall resolves the callee in this order: native functions, methods of the current
// receiver, free functions in scope. obj.m(...) always dispatches on obj's class.
func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	switch callee := e.Callee.(type) {
	case *ast.IdentExpr:
		if native, ok := i.env.LookupNative(callee.Name); ok {
			args, err := i.evalArgs(e.Args)
			if err != nil {
				return nil, err
			}
			return i.callNative(callee.Name, native, args, e.GetSpan())
		}
		if r := i.env.Receiver(); r != nil {
			if m, ok := r.Class.Method(callee.Name); ok {
				args, err := i.evalArgs(e.Args)
				if err != nil {
					return nil, err
				}
				return i.callMethod(r, m, args, e.GetSpan())
			}
		}
		fn, ok := i.env.LookupFunction(callee.Name)
		if !ok {
			return nil, runtimeErr(diag.NameError, callee.GetSpan(), "undefined function '%s'", callee.Name)
		}
		args, err := i.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		return i.invoke(fn, nil, args, e.GetSpan())

	case *ast.MemberExpr:
		obj, err := i.evalObject(callee.Object)
		if err != nil {
			return nil, err
		}
		m, ok := obj.Class.Method(callee.Property)
		if !ok {
			return nil, runtimeErr(diag.NameError, callee.GetSpan(),
				"class %s has no method '%s'", obj.Class.Name, callee.Property)
		}
		if m.Access == ast.Private && !i.insideClass(obj.Class) {
			return nil, runtimeErr(diag.NameError, callee.GetSpan(),
				"method '%s' of class %s is private", callee.Property, obj.Class.Name)
		}
		args, err := i.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		return i.callMethod(obj, m, args, e.GetSpan())
	}
	return nil, runtimeErr(diag.TypeMismatchError, e.Callee.GetSpan(), "expression is not callable")
}

// evalArgs evaluates arguments left to right in the caller's scope.
func (i *Interpreter) evalArgs(exprs []ast.Expr) ([]Value, error) {
	args := make([]Value, len(exprs))
	for idx, expr := range exprs {
		val, err := i.evalExpr(expr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}
	return args, nil
}

func (i *Interpreter) callNative(name string, fn NativeFunc, args []Value, s span.Span) (Value, error) {
	if glog.V(7) {
		glog.Infof("runtime: call native %s/%d", name, len(args))
	}
	val, err := fn(args)
	if err != nil {
		if _, ok := diag.As(err); ok {
			return nil, at(err, s)
		}
		return nil, runtimeErr(diag.NativeError, s, "%s: %v", name, err)
	}
	if val == nil {
		return NullVal{}, nil
	}
	return val, nil
}

func (i *Interpreter) callMethod(obj *Object, m *Function, args []Value, s span.Span) (Value, error) {
	if !obj.Alive() {
		return nil, runtimeErr(diag.NameError, s, "%s object has been destroyed", obj.Class.Name)
	}
	return i.invoke(m, obj, args, s)
}

// invoke binds args to fn's parameters in a fresh scope and runs the body. With a receiver
// the scope resolves the receiver's fields before the defining scope, and field writes go
// straight to the object.
func (i *Interpreter) invoke(fn *Function, receiver *Object, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(diag.TypeMismatchError, s,
			"%s expects %d arguments, got %d", fn.displayName(), len(fn.Params), len(args))
	}
	if i.depth >= i.maxDepth {
		return nil, runtimeErr(diag.RecursionError, s,
			"maximum recursion depth %d exceeded calling %s", i.maxDepth, fn.displayName())
	}
	i.depth++
	defer func() { i.depth-- }()

	var callEnv *Environment
	if receiver != nil {
		callEnv = newMethodEnvironment(fn.Env, receiver)
	} else {
		callEnv = NewEnvironment(fn.Env)
	}
	for idx, param := range fn.Params {
		var err error
		if isClassType(param.Type) {
			claim(args[idx]) // parameters borrow
			err = callEnv.DefineObject(param.Name, param.Type, args[idx], false, false)
		} else {
			err = callEnv.Define(param.Name, param.Type, args[idx], false)
		}
		if err != nil {
			return nil, at(err, s)
		}
	}

	if glog.V(7) {
		glog.Infof("runtime: call %s/%d depth %d", fn.displayName(), len(args), i.depth)
	}
	result, err := i.execBlock(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}

	switch result.Signal {
	case SigBreak:
		return nil, runtimeErr(diag.SyntaxError, s, "break outside of loop in %s", fn.displayName())
	case SigContinue:
		return nil, runtimeErr(diag.SyntaxError, s, "continue outside of loop in %s", fn.displayName())
	case SigReturn:
		if fn.ReturnType != "" && !conforms(fn.ReturnType, result.Value) {
			return nil, runtimeErr(diag.TypeMismatchError, s,
				"%s returns %s, got %s", fn.displayName(), fn.ReturnType, result.Value.TypeName())
		}
		return result.Value, nil
	}
	return NullVal{}, nil
}

func (f *Function) displayName() string {
	if f.Class != nil {
		return f.Class.Name + "." + f.Name
	}
	return f.Name
}

// construct creates an instance of className: field initializers run in declaration order
// with the new object as receiver, then the constructor.
func (i *Interpreter) construct(className string, argExprs []ast.Expr, s span.Span) (Value, error) {
	class, err := i.env.LookupClass(className)
	if err != nil {
		return nil, at(err, s)
	}
	args, err := i.evalArgs(argExprs)
	if err != nil {
		return nil, err
	}

	i.nextID++
	obj := newObject(class, i.nextID)
	if err := i.initFields(obj, s); err != nil {
		return nil, err
	}

	switch {
	case class.Constructor != nil:
		if _, err := i.callMethod(obj, class.Constructor, args, s); err != nil {
			return nil, err
		}
	case len(args) > 0:
		return nil, runtimeErr(diag.TypeMismatchError, s,
			"%s has no constructor but was given %d arguments", className, len(args))
	}

	if glog.V(5) {
		glog.Infof("runtime: construct %s#%d", className, obj.ID)
	}
	return obj, nil
}

// initFields evaluates the field initializers. They nest like calls and count toward the
// recursion depth.
func (i *Interpreter) initFields(obj *Object, s span.Span) error {
	var inits []*Field
	for _, tmpl := range obj.Class.Fields() {
		if tmpl.Init != nil {
			inits = append(inits, tmpl)
		}
	}
	if len(inits) == 0 {
		return nil
	}
	if i.depth >= i.maxDepth {
		return runtimeErr(diag.RecursionError, s,
			"maximum recursion depth %d exceeded constructing %s", i.maxDepth, obj.Class.Name)
	}
	i.depth++
	defer func() { i.depth-- }()

	prevEnv := i.env
	i.env = newMethodEnvironment(obj.Class.Env, obj)
	defer func() { i.env = prevEnv }()

	for _, tmpl := range inits {
		val, err := i.evalExpr(tmpl.Init)
		if err != nil {
			return err
		}
		f, _ := obj.Field(tmpl.Name)
		if err := assignField(f, val); err != nil {
			return at(err, tmpl.Init.GetSpan())
		}
	}
	return nil
}

// destroy runs the destructor (when asked to) and releases the object's storage.
func (i *Interpreter) destroy(obj *Object, runDestructor bool, s span.Span) error {
	if !obj.Alive() {
		return nil
	}
	var err error
	if runDestructor && obj.Class.Destructor != nil {
		_, err = i.callMethod(obj, obj.Class.Destructor, nil, s)
	}
	obj.destroy()
	if glog.V(5) {
		glog.Infof("runtime: destroy %s#%d", obj.Class.Name, obj.ID)
	}
	return err
}
