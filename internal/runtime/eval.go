package runtime

import (
	"math"

	"script-lang/internal/ast"
	"script-lang/internal/diag"
	"script-lang/internal/span"
	"script-lang/internal/token"
)

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NullLiteral:
		return NullVal{}, nil
	case *ast.IdentExpr:
		val, err := i.env.Get(e.Name)
		if err != nil {
			return nil, at(err, e.GetSpan())
		}
		return val, nil
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.MemberExpr:
		return i.evalMember(e)
	case *ast.NewExpr:
		return i.construct(e.ClassName, e.Args, e.GetSpan())
	default:
		return nil, runtimeErr(diag.SyntaxError, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		ok, valid := truth(operand)
		if !valid {
			return nil, runtimeErr(diag.TypeMismatchError, e.GetSpan(),
				"cannot apply '!' to %s", operand.TypeName())
		}
		return BoolVal(!ok), nil
	case token.MINUS:
		v, ok := operand.(IntVal)
		if !ok {
			return nil, runtimeErr(diag.TypeMismatchError, e.GetSpan(),
				"cannot negate value of type %s", operand.TypeName())
		}
		if v == math.MinInt64 {
			return nil, runtimeErr(diag.ArithmeticError, e.GetSpan(), "integer overflow in -%d", v)
		}
		return -v, nil
	}
	return nil, runtimeErr(diag.SyntaxError, e.GetSpan(), "unknown unary operator: %s", e.Op)
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	if e.Op == token.AND || e.Op == token.OR {
		return i.evalLogical(e)
	}

	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	if e.Op == token.EQ || e.Op == token.NEQ {
		eq, ok := valuesEqual(left, right)
		if !ok {
			return nil, runtimeErr(diag.TypeMismatchError, e.GetSpan(),
				"cannot compare %s with %s", left.TypeName(), right.TypeName())
		}
		if e.Op == token.NEQ {
			eq = !eq
		}
		return BoolVal(eq), nil
	}

	l, lok := left.(IntVal)
	r, rok := right.(IntVal)
	if !lok || !rok {
		return nil, runtimeErr(diag.TypeMismatchError, e.GetSpan(),
			"cannot apply '%s' to %s and %s", e.Op, left.TypeName(), right.TypeName())
	}

	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR:
		return arith(e.Op, l, r, e.GetSpan())
	case token.SLASH:
		if r == 0 {
			return nil, runtimeErr(diag.ArithmeticError, e.GetSpan(), "division by zero")
		}
		if l == math.MinInt64 && r == -1 {
			return nil, runtimeErr(diag.ArithmeticError, e.GetSpan(), "integer overflow in %d / %d", l, r)
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return nil, runtimeErr(diag.ArithmeticError, e.GetSpan(), "modulo by zero")
		}
		return l % r, nil
	case token.LT:
		return BoolVal(l < r), nil
	case token.LTE:
		return BoolVal(l <= r), nil
	case token.GT:
		return BoolVal(l > r), nil
	case token.GTE:
		return BoolVal(l >= r), nil
	}
	return nil, runtimeErr(diag.SyntaxError, e.GetSpan(), "unknown binary operator: %s", e.Op)
}

// arith applies + - or * and raises ArithmeticError when the result does not fit in 64 bits.
func arith(op token.Kind, l, r IntVal, s span.Span) (Value, error) {
	var res IntVal
	overflow := false
	switch op {
	case token.PLUS:
		res = l + r
		overflow = (r > 0 && res < l) || (r < 0 && res > l)
	case token.MINUS:
		res = l - r
		overflow = (r < 0 && res < l) || (r > 0 && res > l)
	case token.STAR:
		res = l * r
		overflow = l != 0 && (res/l != r || (l == -1 && r == math.MinInt64))
	}
	if overflow {
		return nil, runtimeErr(diag.ArithmeticError, s, "integer overflow in %d %s %d", l, op, r)
	}
	return res, nil
}

// evalLogical short-circuits: the right operand is not evaluated when the left one decides.
func (i *Interpreter) evalLogical(e *ast.BinaryExpr) (Value, error) {
	left, err := i.operandTruth(e.Left, e.Op)
	if err != nil {
		return nil, err
	}
	if e.Op == token.OR && left {
		return BoolVal(true), nil
	}
	if e.Op == token.AND && !left {
		return BoolVal(false), nil
	}
	right, err := i.operandTruth(e.Right, e.Op)
	if err != nil {
		return nil, err
	}
	return BoolVal(right), nil
}

func (i *Interpreter) operandTruth(expr ast.Expr, op token.Kind) (bool, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return false, err
	}
	ok, valid := truth(val)
	if !valid {
		return false, runtimeErr(diag.TypeMismatchError, expr.GetSpan(),
			"cannot apply '%s' to %s", op, val.TypeName())
	}
	return ok, nil
}

// valuesEqual compares two values. The second result is false when the kinds cannot be
// compared.
func valuesEqual(a, b Value) (bool, bool) {
	switch av := a.(type) {
	case IntVal:
		bv, ok := b.(IntVal)
		return ok && av == bv, ok
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv, ok
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv, ok
	case NullVal:
		switch b.(type) {
		case NullVal:
			return true, true
		case *Object:
			return false, true
		}
	case *Object:
		switch bv := b.(type) {
		case *Object:
			return av == bv, true
		case NullVal:
			return false, true
		}
	}
	return false, false
}

// evalObject evaluates expr and requires a live object.
func (i *Interpreter) evalObject(expr ast.Expr) (*Object, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case *Object:
		if !v.Alive() {
			return nil, runtimeErr(diag.NameError, expr.GetSpan(), "%s object has been destroyed", v.Class.Name)
		}
		return v, nil
	case NullVal:
		return nil, runtimeErr(diag.NameError, expr.GetSpan(), "member access on null")
	}
	return nil, runtimeErr(diag.TypeMismatchError, expr.GetSpan(), "%s has no members", val.TypeName())
}

func (i *Interpreter) evalMember(e *ast.MemberExpr) (Value, error) {
	obj, err := i.evalObject(e.Object)
	if err != nil {
		return nil, err
	}
	f, err := i.fieldOf(obj, e.Property, e.GetSpan())
	if err != nil {
		return nil, err
	}
	return f.Value, nil
}

// fieldOf returns a field of obj, enforcing private access from outside the class.
func (i *Interpreter) fieldOf(obj *Object, name string, s span.Span) (*Field, error) {
	f, ok := obj.Field(name)
	if !ok {
		return nil, runtimeErr(diag.NameError, s, "class %s has no field '%s'", obj.Class.Name, name)
	}
	if f.Access == ast.Private && !i.insideClass(obj.Class) {
		return nil, runtimeErr(diag.NameError, s, "field '%s' of class %s is private", name, obj.Class.Name)
	}
	return f, nil
}

// insideClass reports whether the executing code is a method of class.
func (i *Interpreter) insideClass(class *ClassDef) bool {
	r := i.env.Receiver()
	return r != nil && r.Class == class
}
