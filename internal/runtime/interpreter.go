package runtime

import (
	"io"

	"github.com/golang/glog"

	"script-lang/internal/ast"
	"script-lang/internal/diag"
	"script-lang/internal/span"
	"script-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone     ExecSignal = iota
	SigReturn              // return from function
	SigBreak               // break from loop
	SigContinue            // continue in loop
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// State is where a run stands.
type State int

const (
	StateReady State = iota
	StateEvaluating
	StateReturned
	StateRaised
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEvaluating:
		return "evaluating"
	case StateReturned:
		return "returned"
	case StateRaised:
		return "raised"
	}
	return "unknown"
}

// DefaultMaxDepth bounds nested calls when Config.MaxDepth is not set.
const DefaultMaxDepth = 1000

// Config tunes an Interpreter.
type Config struct {
	MaxDepth int      // maximum nesting of calls; DefaultMaxDepth when zero
	Natives  *Natives // host functions; the standard builtins when nil
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it.
type Interpreter struct {
	global  *Environment
	env     *Environment
	output  io.Writer
	natives *Natives

	maxDepth int
	depth    int
	state    State
	result   Value
	nextID   int
}

// NewInterpreter creates an interpreter whose print output goes to output.
func NewInterpreter(output io.Writer, cfg Config) *Interpreter {
	natives := cfg.Natives
	if natives == nil {
		natives = NewNatives()
		// a fresh registry is empty, so registration cannot collide
		_ = RegisterBuiltins(natives, output)
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	global := NewGlobalEnvironment(natives)
	return &Interpreter{
		global:   global,
		env:      global,
		output:   output,
		natives:  natives,
		maxDepth: maxDepth,
		result:   NullVal{},
	}
}

// Run executes a parsed file in the global scope. Later runs see the definitions of earlier
// ones, which is what the REPL relies on.
func (i *Interpreter) Run(file *ast.File) error {
	i.natives.Freeze()
	i.state = StateEvaluating
	i.result = NullVal{}
	i.env = i.global
	i.depth = 0

	for _, stmt := range file.Body {
		result, err := i.execStmt(stmt)
		if err != nil {
			i.state = StateRaised
			return err
		}
		switch result.Signal {
		case SigReturn:
			i.result = result.Value
			i.state = StateReturned
			return nil
		case SigBreak:
			i.state = StateRaised
			return runtimeErr(diag.SyntaxError, stmt.GetSpan(), "break outside of loop")
		case SigContinue:
			i.state = StateRaised
			return runtimeErr(diag.SyntaxError, stmt.GetSpan(), "continue outside of loop")
		}
	}
	i.state = StateReturned
	return nil
}

// Close destroys the objects owned by the global scope, running their destructors.
func (i *Interpreter) Close() error {
	return i.release(i.global, nil, true)
}

// Global returns the global scope.
func (i *Interpreter) Global() *Environment {
	return i.global
}

// Natives returns the native function registry.
func (i *Interpreter) Natives() *Natives {
	return i.natives
}

// State reports the state of the most recent run.
func (i *Interpreter) State() State {
	return i.state
}

// Result is the value of a top-level return, or null.
func (i *Interpreter) Result() Value {
	return i.result
}

// Lookup resolves a name in the global scope.
func (i *Interpreter) Lookup(name string) (Value, error) {
	return i.global.Get(name)
}

// ============================================================
// Errors
// ============================================================

func runtimeErr(kind diag.Kind, s span.Span, format string, args ...interface{}) *diag.Diagnostic {
	return diag.New(kind, s, format, args...)
}

// at attaches a location to diagnostics raised without one.
func at(err error, s span.Span) error {
	if d, ok := err.(*diag.Diagnostic); ok && d.Span == (span.Span{}) {
		d.Span = s
	}
	return err
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		// A returned object nobody stores is destroyed right away.
		if obj := claim(val); obj != nil {
			return resultNone, i.destroy(obj, true, s.GetSpan())
		}
		return resultNone, nil

	case *ast.VarDeclStmt:
		return resultNone, i.execVarDecl(s)

	case *ast.ConstructStmt:
		return resultNone, i.execConstruct(s)

	case *ast.AssignStmt:
		return resultNone, i.execAssign(s)

	case *ast.IncDecStmt:
		return resultNone, i.execIncDec(s)

	case *ast.DeleteStmt:
		return resultNone, i.execDelete(s)

	case *ast.ReturnStmt:
		var val Value = NullVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.BreakStmt:
		return ExecResult{Signal: SigBreak}, nil

	case *ast.ContinueStmt:
		return ExecResult{Signal: SigContinue}, nil

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.DoWhileStmt:
		return i.execDoWhile(s)

	case *ast.ForStmt:
		return i.execFor(s)

	case *ast.BlockStmt:
		return i.execBlock(s, NewEnvironment(i.env))

	case *ast.FuncDecl:
		return resultNone, i.execFuncDecl(s)

	case *ast.ClassDecl:
		return resultNone, i.execClassDecl(s)

	default:
		return resultNone, runtimeErr(diag.SyntaxError, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt) error {
	if isClassType(s.Type) {
		if _, err := i.env.LookupClass(s.Type); err != nil {
			return at(err, s.GetSpan())
		}
	}

	var val Value
	if s.Init != nil {
		v, err := i.evalExpr(s.Init)
		if err != nil {
			return err
		}
		val = v
	}

	var err error
	switch {
	case isClassType(s.Type):
		if val == nil {
			val = NullVal{}
		}
		obj, isObj := val.(*Object)
		owned := isObj && obj.released
		err = i.env.DefineObject(s.Name, s.Type, val, s.Final, owned)
		if err == nil && owned {
			claim(val)
		}
	case val == nil && s.Final:
		err = i.env.DefineUnassigned(s.Name, s.Type)
	default:
		if val == nil {
			val = defaultValue(s.Type)
		}
		err = i.env.Define(s.Name, s.Type, val, s.Final)
	}
	if err != nil {
		return at(err, s.GetSpan())
	}
	return nil
}

func (i *Interpreter) execConstruct(s *ast.ConstructStmt) error {
	if s.Type != s.ClassName {
		return runtimeErr(diag.TypeMismatchError, s.GetSpan(),
			"cannot store a new %s in '%s' declared %s", s.ClassName, s.Name, s.Type)
	}
	obj, err := i.construct(s.ClassName, s.Args, s.GetSpan())
	if err != nil {
		return err
	}
	if err := i.env.DefineObject(s.Name, s.Type, obj, false, true); err != nil {
		return at(err, s.GetSpan())
	}
	return nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) error {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		if err := i.env.Assign(target.Name, val); err != nil {
			return at(err, s.GetSpan())
		}
		return nil
	case *ast.MemberExpr:
		obj, err := i.evalObject(target.Object)
		if err != nil {
			return err
		}
		f, err := i.fieldOf(obj, target.Property, target.GetSpan())
		if err != nil {
			return err
		}
		if err := assignField(f, val); err != nil {
			return at(err, s.GetSpan())
		}
		return nil
	}
	return runtimeErr(diag.SyntaxError, s.GetSpan(), "invalid assignment target")
}

// execIncDec adds or subtracts one. A member target's object is evaluated once.
func (i *Interpreter) execIncDec(s *ast.IncDecStmt) error {
	op := token.PLUS
	if s.Op == token.DEC {
		op = token.MINUS
	}
	step := func(cur Value) (Value, error) {
		n, ok := cur.(IntVal)
		if !ok {
			return nil, runtimeErr(diag.TypeMismatchError, s.GetSpan(),
				"cannot apply '%s' to %s", s.Op, cur.TypeName())
		}
		return arith(op, n, 1, s.GetSpan())
	}

	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		cur, err := i.env.Get(target.Name)
		if err != nil {
			return at(err, target.GetSpan())
		}
		next, err := step(cur)
		if err != nil {
			return err
		}
		return at(i.env.Assign(target.Name, next), s.GetSpan())
	case *ast.MemberExpr:
		obj, err := i.evalObject(target.Object)
		if err != nil {
			return err
		}
		f, err := i.fieldOf(obj, target.Property, target.GetSpan())
		if err != nil {
			return err
		}
		next, err := step(f.Value)
		if err != nil {
			return err
		}
		return at(assignField(f, next), s.GetSpan())
	}
	return runtimeErr(diag.SyntaxError, s.GetSpan(), "invalid increment target")
}

func (i *Interpreter) execDelete(s *ast.DeleteStmt) error {
	val, err := i.env.unregisterObject(s.Name)
	if err != nil {
		return at(err, s.GetSpan())
	}
	obj, ok := val.(*Object)
	if !ok {
		return runtimeErr(diag.NameError, s.GetSpan(), "'%s' does not hold an object", s.Name)
	}
	if !obj.Alive() {
		return runtimeErr(diag.NameError, s.GetSpan(), "object '%s' has already been destroyed", s.Name)
	}
	return i.destroy(obj, true, s.GetSpan())
}

// condition evaluates a branch or loop condition.
func (i *Interpreter) condition(expr ast.Expr) (bool, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return false, err
	}
	ok, valid := truth(val)
	if !valid {
		return false, runtimeErr(diag.TypeMismatchError, expr.GetSpan(),
			"condition must be boolean or int, got %s", val.TypeName())
	}
	return ok, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	ok, err := i.condition(s.Condition)
	if err != nil {
		return resultNone, err
	}
	if ok {
		return i.execBlock(s.Then, NewEnvironment(i.env))
	}
	switch els := s.Else.(type) {
	case *ast.IfStmt:
		return i.execIf(els)
	case *ast.BlockStmt:
		return i.execBlock(els, NewEnvironment(i.env))
	}
	return resultNone, nil
}

// loopBody runs one iteration. It reports whether the loop should stop, and the result to
// propagate when it stops because of a return.
func (i *Interpreter) loopBody(body *ast.BlockStmt) (bool, ExecResult, error) {
	result, err := i.execBlock(body, NewEnvironment(i.env))
	if err != nil {
		return true, resultNone, err
	}
	switch result.Signal {
	case SigBreak:
		return true, resultNone, nil
	case SigReturn:
		return true, result, nil
	}
	return false, resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		ok, err := i.condition(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !ok {
			return resultNone, nil
		}
		if stop, result, err := i.loopBody(s.Body); stop {
			return result, err
		}
	}
}

func (i *Interpreter) execDoWhile(s *ast.DoWhileStmt) (ExecResult, error) {
	for {
		if stop, result, err := i.loopBody(s.Body); stop {
			return result, err
		}
		ok, err := i.condition(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !ok {
			return resultNone, nil
		}
	}
}

// execFor gives init, condition and update one shared scope; each iteration of the body
// gets its own scope inside it.
func (i *Interpreter) execFor(s *ast.ForStmt) (result ExecResult, err error) {
	forEnv := NewEnvironment(i.env)
	prevEnv := i.env
	i.env = forEnv
	defer func() {
		if rerr := i.release(forEnv, result.Value, err == nil); err == nil {
			err = rerr
		}
		i.env = prevEnv
	}()

	if s.Init != nil {
		if _, err := i.execStmt(s.Init); err != nil {
			return resultNone, err
		}
	}
	for {
		if s.Condition != nil {
			ok, err := i.condition(s.Condition)
			if err != nil {
				return resultNone, err
			}
			if !ok {
				return resultNone, nil
			}
		}
		if stop, result, err := i.loopBody(s.Body); stop {
			return result, err
		}
		if s.Update != nil {
			if _, err := i.execStmt(s.Update); err != nil {
				return resultNone, err
			}
		}
	}
}

// execBlock runs block in blockEnv and tears the scope down afterwards: objects it owns are
// destroyed, except a returned value.
func (i *Interpreter) execBlock(block *ast.BlockStmt, blockEnv *Environment) (result ExecResult, err error) {
	prevEnv := i.env
	i.env = blockEnv
	if glog.V(9) {
		glog.Infof("runtime: enter scope at %s", block.GetSpan().Start)
	}
	defer func() {
		if rerr := i.release(blockEnv, result.Value, err == nil); err == nil {
			err = rerr
		}
		i.env = prevEnv
		if glog.V(9) {
			glog.Infof("runtime: leave scope at %s", block.GetSpan().End)
		}
	}()

	for _, stmt := range block.Stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

// release destroys the objects env owns. keep survives because it is being returned and is
// marked released so the caller's binding can take it over.
// Destructors only run on normal completion.
func (i *Interpreter) release(env *Environment, keep Value, runDestructors bool) error {
	var firstErr error
	for _, obj := range env.ownedObjects() {
		if k, ok := keep.(*Object); ok && k == obj {
			k.released = true
			continue
		}
		if err := i.destroy(obj, runDestructors, span.Span{}); err != nil && firstErr == nil {
			firstErr = err
			runDestructors = false
		}
	}
	return firstErr
}

func (i *Interpreter) execFuncDecl(s *ast.FuncDecl) error {
	fn := newFunction(s, i.env, nil)
	if err := i.env.DefineFunction(fn); err != nil {
		return at(err, s.GetSpan())
	}
	if glog.V(5) {
		glog.Infof("runtime: define function %s(%d params)", s.Name, len(s.Params))
	}
	return nil
}

func (i *Interpreter) execClassDecl(s *ast.ClassDecl) error {
	class := NewClassDef(s.Name, i.env)
	for _, fd := range s.Fields {
		if fd.Type == typeVoid {
			return runtimeErr(diag.TypeMismatchError, fd.Span, "field '%s' cannot be void", fd.Name)
		}
		ok := class.AddField(&Field{
			Type:   fd.Type,
			Name:   fd.Name,
			Access: fd.Access,
			Final:  fd.Final,
			Init:   fd.Init,
		})
		if !ok {
			return runtimeErr(diag.NameError, fd.Span, "class %s declares field '%s' twice", s.Name, fd.Name)
		}
	}
	for _, md := range s.Methods {
		class.Methods = append(class.Methods, newFunction(md, i.env, class))
	}
	if s.Constructor != nil {
		class.Constructor = &Function{
			Name:   "constructor",
			Params: s.Constructor.Params,
			Body:   s.Constructor.Body,
			Env:    i.env,
			Class:  class,
		}
	}
	if s.Destructor != nil {
		class.Destructor = &Function{
			Name:  "destructor",
			Body:  s.Destructor.Body,
			Env:   i.env,
			Class: class,
		}
	}
	if err := i.env.DefineClass(class); err != nil {
		return at(err, s.GetSpan())
	}
	if glog.V(5) {
		glog.Infof("runtime: define class %s (%d fields, %d methods)", s.Name, len(s.Fields), len(s.Methods))
	}
	return nil
}
