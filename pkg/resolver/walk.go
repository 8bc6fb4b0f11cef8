package resolver

import "klox/interpreter-go/pkg/ast"

func (r *Resolver) statement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		s.Expression = r.expression(s.Expression)
	case *ast.Block:
		r.beginScope(false)
		for i, inner := range s.Statements {
			s.Statements[i] = r.statement(inner)
		}
		r.endScope()
	case *ast.If:
		s.Condition = r.expression(s.Condition)
		s.Then = r.statement(s.Then)
		if s.Else != nil {
			s.Else = r.statement(s.Else)
		}
	case *ast.While:
		s.Condition = r.expression(s.Condition)
		s.Body = r.statement(s.Body)
		if s.Increment != nil {
			s.Increment = r.expression(s.Increment)
		}
	case *ast.Var:
		sym := r.declare(s.Name, SymbolVar, r.current().pure, s.Line())
		s.Slot = sym.slot
		if s.Initializer != nil {
			s.Initializer = r.expression(s.Initializer)
			sym.initialized = true
		}
		r.define(sym)
	case *ast.Const:
		sym := r.declare(s.Name, SymbolConst, true, s.Line())
		s.Slot = sym.slot
		impure := r.impureReads
		s.Initializer = r.expression(s.Initializer)
		// A constant is only as pure as the values it was built from.
		sym.pure = r.impureReads == impure
		sym.initialized = true
		r.define(sym)
	case *ast.Function:
		r.function(s)
	case *ast.Return:
		s.Value = r.expression(s.Value)
	case *ast.Break, *ast.Continue, *ast.Debug, *ast.EmptyStatement:
	}
	return stmt
}

// function binds the name before the body so the body may recurse. The
// parameters and the body share one scope, matching the call environment.
func (r *Resolver) function(fn *ast.Function) {
	sym := r.declare(fn.Name, SymbolFunction, fn.Pure || r.current().pure, fn.Line())
	sym.initialized = true
	fn.Slot = sym.slot
	r.define(sym)

	r.beginScope(fn.Pure)
	for _, param := range fn.Params {
		p := r.declare(param.Name, SymbolParameter, true, param.Line)
		p.initialized = true
		param.Slot = p.slot
		r.define(p)
	}
	for i, stmt := range fn.Body {
		fn.Body[i] = r.statement(stmt)
	}
	r.endScope()
}

func (r *Resolver) expression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Variable:
		return r.variable(e)
	case *ast.Assign:
		return r.assign(e)
	case *ast.Unary:
		e.Operand = r.expression(e.Operand)
	case *ast.Binary:
		e.Left = r.expression(e.Left)
		e.Right = r.expression(e.Right)
	case *ast.Logical:
		e.Left = r.expression(e.Left)
		e.Right = r.expression(e.Right)
	case *ast.Ternary:
		e.Left = r.expression(e.Left)
		e.Middle = r.expression(e.Middle)
		e.Right = r.expression(e.Right)
	case *ast.Grouping:
		e.Inner = r.expression(e.Inner)
	case *ast.Call:
		e.Callee = r.expression(e.Callee)
		for i, arg := range e.Arguments {
			e.Arguments[i] = r.expression(arg)
		}
	case *ast.Literal, *ast.EmptyExpression:
	}
	return expr
}

func (r *Resolver) variable(v *ast.Variable) ast.Expression {
	sym, distance, ok := r.lookup(v.Name)
	if !ok {
		r.error(v.Line(), "undefined variable '%s'", v.Name)
		return ast.NewEmptyExpression(v.Line())
	}
	if distance == 0 && !sym.defined {
		r.error(v.Line(), "cannot read local variable '%s' in its own initializer", v.Name)
	}
	if r.current().pure && !sym.pure {
		if sym.kind.callable() {
			r.error(v.Line(), "pure function cannot call impure function '%s'", v.Name)
		} else {
			r.error(v.Line(), "pure function cannot read impure variable '%s'", v.Name)
		}
	}
	if !sym.pure {
		r.impureReads++
	}
	sym.accessed++
	v.Address = &ast.Address{Distance: distance, Slot: sym.slot}
	return v
}

func (r *Resolver) assign(a *ast.Assign) ast.Expression {
	a.Value = r.expression(a.Value)
	sym, distance, ok := r.lookup(a.Name)
	if !ok {
		r.error(a.Line(), "cannot assign to undeclared variable '%s'", a.Name)
		return ast.NewEmptyExpression(a.Line())
	}
	switch sym.kind {
	case SymbolConst:
		r.error(a.Line(), "cannot reassign to const '%s'", a.Name)
	case SymbolNative:
		r.error(a.Line(), "cannot reassign to native function '%s'", a.Name)
	}
	if r.current().pure && !sym.pure {
		r.error(a.Line(), "pure function cannot assign to impure %s '%s'", sym.kind, a.Name)
	}
	sym.assigned++
	a.Address = &ast.Address{Distance: distance, Slot: sym.slot}
	return a
}
