package ast

// Helpers for building trees in tests. Every node is placed on line 1.

func Num(v float64) *Literal   { return NewLiteral(v, 1) }
func Str(v string) *Literal    { return NewLiteral(v, 1) }
func Bool(v bool) *Literal     { return NewLiteral(v, 1) }
func Nil() *Literal            { return NewLiteral(nil, 1) }
func ID(name string) *Variable { return NewVariable(name, 1) }

func Bin(op string, left, right Expression) *Binary { return NewBinary(op, left, right, 1) }
func Log(op string, left, right Expression) *Logical {
	return NewLogical(op, left, right, 1)
}
func Un(op string, operand Expression) *Unary { return NewUnary(op, operand, 1) }
func Group(inner Expression) *Grouping        { return NewGrouping(inner, 1) }
func Set(name string, value Expression) *Assign {
	return NewAssign(name, value, 1)
}
func Cond(cond, then, otherwise Expression) *Ternary {
	return NewConditional(cond, then, otherwise, 1)
}
func Range(value, lower, upper Expression) *Ternary {
	return NewBetween(value, lower, upper, 1)
}
func CallExpr(callee Expression, args ...Expression) *Call {
	return NewCall(callee, args, 1)
}

func Expr(e Expression) *ExpressionStatement { return NewExpressionStatement(e, 1) }
func Blk(stmts ...Statement) *Block          { return NewBlock(stmts, 1) }
func VarDecl(name string, init Expression) *Var {
	return NewVar(name, init, nil, 1)
}
func ConstDecl(name string, init Expression) *Const {
	return NewConst(name, init, nil, 1)
}
func Ret(value Expression) *Return { return NewReturn(value, 1) }
func Loop(cond Expression, body Statement) *While {
	return NewWhile(cond, body, nil, 1)
}
func IfStmt(cond Expression, then, otherwise Statement) *If {
	return NewIf(cond, then, otherwise, 1)
}

// Fn builds a function declaration with unannotated parameters.
func Fn(name string, params []string, body ...Statement) *Function {
	ps := make([]*Parameter, len(params))
	for i, p := range params {
		ps[i] = NewParameter(p, nil, 1)
	}
	return NewFunction(name, ps, body, false, 1)
}

// PureFn is Fn with the pure marker set.
func PureFn(name string, params []string, body ...Statement) *Function {
	fn := Fn(name, params, body...)
	fn.Pure = true
	return fn
}
