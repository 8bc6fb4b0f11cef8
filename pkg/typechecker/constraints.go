package typechecker

import (
	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/types"
)

func (c *Checker) constrainStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		c.constrainStatement(s)
	}
}

func (c *Checker) constrainStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.constrainExpression(s.Expression)
	case *ast.Block:
		c.constrainStatements(s.Statements)
	case *ast.If:
		c.constrainExpression(s.Condition)
		c.constrain(s.Condition.Type(), types.Bool, s.Condition.Line())
		c.constrainStatement(s.Then)
		if s.Else != nil {
			c.constrainStatement(s.Else)
		}
	case *ast.While:
		c.constrainExpression(s.Condition)
		c.constrain(s.Condition.Type(), types.Bool, s.Condition.Line())
		c.constrainStatement(s.Body)
		if s.Increment != nil {
			c.constrainExpression(s.Increment)
		}
	case *ast.Var:
		if s.Initializer != nil {
			c.constrainExpression(s.Initializer)
			c.constrain(s.Inferred, s.Initializer.Type(), s.Line())
		}
		if s.Annotation != nil {
			c.constrain(s.Inferred, s.Annotation, s.Line())
		}
	case *ast.Const:
		c.constrainExpression(s.Initializer)
		c.constrain(s.Inferred, s.Initializer.Type(), s.Line())
		if s.Annotation != nil {
			c.constrain(s.Inferred, s.Annotation, s.Line())
		}
	case *ast.Function:
		c.constrainFunction(s)
	case *ast.Return:
		c.constrainExpression(s.Value)
		if frame, ok := c.currentFunction(); ok {
			frame.returns++
			c.constrain(s.Value.Type(), frame.returnType, s.Line())
		}
	case *ast.Break, *ast.Continue, *ast.Debug, *ast.EmptyStatement:
	}
}

// constrainFunction processes the body before tying the function's own type
// to its signature. The name is already in the symbol table, so recursive
// calls inside the body constrain the same variable.
func (c *Checker) constrainFunction(fn *ast.Function) {
	for i, p := range fn.Params {
		if p.Annotation != nil {
			c.constrain(fn.ParamTypes[i], p.Annotation, p.Line)
		}
	}
	if fn.ReturnAnnotation != nil {
		c.constrain(fn.ReturnType, fn.ReturnAnnotation, fn.Line())
	}
	c.pushFunction(fn.ReturnType)
	c.constrainStatements(fn.Body)
	if !c.popFunction() {
		c.constrain(fn.ReturnType, types.Nil, fn.Line())
	}
	c.constrain(fn.Inferred, types.Func(fn.ReturnType, fn.ParamTypes...), fn.Line())
}

func (c *Checker) constrainExpression(expr ast.Expression) {
	line := expr.Line()
	switch e := expr.(type) {
	case *ast.Literal, *ast.EmptyExpression:
	case *ast.Variable:
		if declared, ok := c.declaredType(e.Name, e.Address); ok {
			c.constrain(e.Type(), declared, line)
		}
	case *ast.Assign:
		c.constrainExpression(e.Value)
		c.constrain(e.Type(), e.Value.Type(), line)
		if declared, ok := c.declaredType(e.Name, e.Address); ok {
			c.constrain(e.Type(), declared, line)
		}
	case *ast.Unary:
		c.constrainExpression(e.Operand)
		switch e.Operator {
		case "-":
			c.constrain(e.Operand.Type(), types.Number, line)
			c.constrain(e.Type(), types.Number, line)
		case "!":
			c.constrain(e.Type(), types.Bool, line)
		}
	case *ast.Binary:
		c.constrainExpression(e.Left)
		c.constrainExpression(e.Right)
		c.constrainBinary(e)
	case *ast.Logical:
		c.constrainExpression(e.Left)
		c.constrainExpression(e.Right)
		if e.Operator == "??" {
			c.constrain(e.Type(), e.Right.Type(), line)
			return
		}
		c.constrain(e.Left.Type(), types.Bool, line)
		c.constrain(e.Right.Type(), types.Bool, line)
		c.constrain(e.Type(), types.Bool, line)
	case *ast.Ternary:
		c.constrainExpression(e.Left)
		c.constrainExpression(e.Middle)
		c.constrainExpression(e.Right)
		if e.IsBetween() {
			c.constrain(e.Left.Type(), types.Number, line)
			c.constrain(e.Middle.Type(), types.Number, line)
			c.constrain(e.Right.Type(), types.Number, line)
			c.constrain(e.Type(), types.Bool, line)
			return
		}
		c.constrain(e.Left.Type(), types.Bool, line)
		c.constrain(e.Middle.Type(), e.Type(), line)
		c.constrain(e.Right.Type(), e.Type(), line)
	case *ast.Grouping:
		c.constrainExpression(e.Inner)
		c.constrain(e.Type(), e.Inner.Type(), line)
	case *ast.Call:
		c.constrainExpression(e.Callee)
		args := make([]types.Type, len(e.Arguments))
		for i, arg := range e.Arguments {
			c.constrainExpression(arg)
			args[i] = arg.Type()
		}
		c.constrain(e.Callee.Type(), types.Func(e.Type(), args...), line)
	}
}

func (c *Checker) constrainBinary(e *ast.Binary) {
	line := e.Line()
	switch e.Operator {
	case "+":
		// + also concatenates strings; mismatched operands are a runtime error.
		c.constrain(e.Type(), e.Left.Type(), line)
	case "-", "*", "/", "%":
		c.constrain(e.Left.Type(), types.Number, line)
		c.constrain(e.Right.Type(), types.Number, line)
		c.constrain(e.Type(), types.Number, line)
	case "<", "<=", ">", ">=":
		c.constrain(e.Left.Type(), types.Number, line)
		c.constrain(e.Right.Type(), types.Number, line)
		c.constrain(e.Type(), types.Bool, line)
	case "==", "!=":
		c.constrain(e.Type(), types.Bool, line)
	}
}

// declaredType looks up the type of the declaration an address points at.
// Natives are instantiated afresh at every reference.
func (c *Checker) declaredType(name string, addr *ast.Address) (types.Type, bool) {
	if addr == nil {
		return nil, false
	}
	if t, ok := c.symbols[SymbolKey(name, addr.Slot)]; ok {
		return t, true
	}
	if b, ok := c.natives[addr.Slot]; ok && b.Name == name {
		return c.instantiate(b), true
	}
	return nil, false
}
