package ast

// NodeToMap converts a node into a tagged tree of maps and slices. Every node map carries a
// "kind" and a "span"; the result marshals cleanly with encoding/json and yaml.v3.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		return m("File", n, "name", n.Name, "body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *IdentExpr:
		return m("IdentExpr", n, "name", n.Name)
	case *IntLiteral:
		return m("IntLiteral", n, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n, "value", n.Value)
	case *NullLiteral:
		return m("NullLiteral", n)
	case *UnaryExpr:
		return m("UnaryExpr", n, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return m("CallExpr", n, "callee", NodeToMap(n.Callee), "args", exprSlice(n.Args))
	case *MemberExpr:
		return m("MemberExpr", n, "object", NodeToMap(n.Object), "property", n.Property)
	case *NewExpr:
		return m("NewExpr", n, "className", n.ClassName, "args", exprSlice(n.Args))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n, "expr", NodeToMap(n.Expr))
	case *AssignStmt:
		return m("AssignStmt", n, "target", NodeToMap(n.Target), "value", NodeToMap(n.Value))
	case *IncDecStmt:
		return m("IncDecStmt", n, "target", NodeToMap(n.Target), "op", n.Op.String())
	case *VarDeclStmt:
		return m("VarDeclStmt", n,
			"type", n.Type, "name", n.Name, "final", n.Final, "init", optional(n.Init))
	case *ConstructStmt:
		return m("ConstructStmt", n,
			"type", n.Type, "name", n.Name, "className", n.ClassName, "args", exprSlice(n.Args))
	case *DeleteStmt:
		return m("DeleteStmt", n, "name", n.Name)
	case *ReturnStmt:
		return m("ReturnStmt", n, "value", optional(n.Value))
	case *BreakStmt:
		return m("BreakStmt", n)
	case *ContinueStmt:
		return m("ContinueStmt", n)
	case *BlockStmt:
		return m("BlockStmt", n, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		return m("IfStmt", n,
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then),
			"else", optional(n.Else))
	case *WhileStmt:
		return m("WhileStmt", n, "condition", NodeToMap(n.Condition), "body", NodeToMap(n.Body))
	case *DoWhileStmt:
		return m("DoWhileStmt", n, "body", NodeToMap(n.Body), "condition", NodeToMap(n.Condition))
	case *ForStmt:
		return m("ForStmt", n,
			"init", optional(n.Init),
			"condition", optional(n.Condition),
			"update", optional(n.Update),
			"body", NodeToMap(n.Body))

	// ---- Declarations ----
	case *FuncDecl:
		return funcMap(n)
	case *ClassDecl:
		result := m("ClassDecl", n, "name", n.Name)
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{
				"kind":   "FieldDecl",
				"span":   f.Span.String(),
				"access": f.Access.String(),
				"final":  f.Final,
				"type":   f.Type,
				"name":   f.Name,
				"init":   optional(f.Init),
			}
		}
		result["fields"] = fields
		methods := make([]interface{}, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = funcMap(md)
		}
		result["methods"] = methods
		if n.Constructor != nil {
			result["constructor"] = map[string]interface{}{
				"kind":   "ConstructorDecl",
				"span":   n.Constructor.Span.String(),
				"params": paramSlice(n.Constructor.Params),
				"body":   NodeToMap(n.Constructor.Body),
			}
		}
		if n.Destructor != nil {
			result["destructor"] = map[string]interface{}{
				"kind": "DestructorDecl",
				"span": n.Destructor.Span.String(),
				"body": NodeToMap(n.Destructor.Body),
			}
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, n Node, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": n.GetSpan().String(),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func funcMap(n *FuncDecl) map[string]interface{} {
	return m("FuncDecl", n,
		"access", n.Access.String(),
		"returnType", n.ReturnType,
		"name", n.Name,
		"params", paramSlice(n.Params),
		"body", NodeToMap(n.Body))
}

// optional maps a possibly-nil child. A typed nil inside the interface also maps to nil.
func optional(n Node) interface{} {
	switch v := n.(type) {
	case nil:
		return nil
	case *BlockStmt:
		if v == nil {
			return nil
		}
	}
	return NodeToMap(n)
}

func paramSlice(params []Param) []interface{} {
	result := make([]interface{}, len(params))
	for i, p := range params {
		result[i] = map[string]interface{}{"type": p.Type, "name": p.Name}
	}
	return result
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
