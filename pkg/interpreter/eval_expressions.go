package interpreter

import (
	"errors"
	"fmt"
	"math"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluate(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil
	case *ast.Grouping:
		return i.evaluate(e.Inner, env)
	case *ast.Variable:
		if e.Address == nil {
			return nil, runtimeErrorf(e, "unresolved variable '%s'", e.Name)
		}
		v, err := env.Get(e.Address.Distance, e.Address.Slot)
		if err != nil {
			return nil, runtimeErrorf(e, "%s", err.Error())
		}
		return v, nil
	case *ast.Assign:
		value, err := i.evaluate(e.Value, env)
		if err != nil {
			return nil, err
		}
		if e.Address == nil {
			return nil, runtimeErrorf(e, "unresolved variable '%s'", e.Name)
		}
		if err := env.Assign(e.Address.Distance, e.Address.Slot, value); err != nil {
			return nil, runtimeErrorf(e, "%s", err.Error())
		}
		return value, nil
	case *ast.Unary:
		return i.evaluateUnary(e, env)
	case *ast.Binary:
		return i.evaluateBinary(e, env)
	case *ast.Logical:
		return i.evaluateLogical(e, env)
	case *ast.Ternary:
		if e.IsBetween() {
			return i.evaluateBetween(e, env)
		}
		return i.evaluateConditional(e, env)
	case *ast.Call:
		return i.evaluateCall(e, env)
	case *ast.EmptyExpression:
		return runtime.NilValue{}, nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", expr.NodeType())
	}
}

func literalValue(v any) runtime.Value {
	switch val := v.(type) {
	case float64:
		return runtime.NumberValue{Val: val}
	case string:
		return runtime.StringValue{Val: val}
	case bool:
		return runtime.BoolValue{Val: val}
	default:
		return runtime.NilValue{}
	}
}

func (i *Interpreter) evaluateUnary(e *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluate(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "-":
		n, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, runtimeErrorf(e, "operand must be a number")
		}
		return runtime.NumberValue{Val: -n.Val}, nil
	case "!":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	default:
		return nil, runtimeErrorf(e, "unsupported unary operator %s", e.Operator)
	}
}

func (i *Interpreter) evaluateBinary(e *ast.Binary, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluate(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "+":
		return add(e, left, right)
	case "==":
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	}

	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, runtimeErrorf(e, "both operands must be numbers")
	}
	switch e.Operator {
	case "-":
		return runtime.NumberValue{Val: l.Val - r.Val}, nil
	case "*":
		return runtime.NumberValue{Val: l.Val * r.Val}, nil
	case "/":
		return runtime.NumberValue{Val: l.Val / r.Val}, nil
	case "%":
		return runtime.NumberValue{Val: math.Mod(l.Val, r.Val)}, nil
	case "<":
		return runtime.BoolValue{Val: l.Val < r.Val}, nil
	case "<=":
		return runtime.BoolValue{Val: l.Val <= r.Val}, nil
	case ">":
		return runtime.BoolValue{Val: l.Val > r.Val}, nil
	case ">=":
		return runtime.BoolValue{Val: l.Val >= r.Val}, nil
	default:
		return nil, runtimeErrorf(e, "unsupported binary operator %s", e.Operator)
	}
}

func add(e *ast.Binary, left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.NumberValue:
		if r, ok := right.(runtime.NumberValue); ok {
			return runtime.NumberValue{Val: l.Val + r.Val}, nil
		}
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok {
			return runtime.StringValue{Val: l.Val + r.Val}, nil
		}
	}
	if left.Kind() != right.Kind() {
		return nil, runtimeErrorf(e, "cannot add values of different types")
	}
	return nil, runtimeErrorf(e, "cannot perform addition on values of this type")
}

// evaluateLogical returns the operand that decided the result.
func (i *Interpreter) evaluateLogical(e *ast.Logical, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluate(e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "||":
		if runtime.Truthy(left) {
			return left, nil
		}
	case "&&":
		if !runtime.Truthy(left) {
			return left, nil
		}
	case "??":
		if left.Kind() != runtime.KindNil {
			return left, nil
		}
	default:
		return nil, runtimeErrorf(e, "unsupported logical operator %s", e.Operator)
	}
	return i.evaluate(e.Right, env)
}

func (i *Interpreter) evaluateConditional(e *ast.Ternary, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evaluate(e.Left, env)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.evaluate(e.Middle, env)
	}
	return i.evaluate(e.Right, env)
}

// evaluateBetween is inclusive and accepts the bounds in either order.
func (i *Interpreter) evaluateBetween(e *ast.Ternary, env *runtime.Environment) (runtime.Value, error) {
	var nums [3]float64
	for idx, operand := range []ast.Expression{e.Left, e.Middle, e.Right} {
		v, err := i.evaluate(operand, env)
		if err != nil {
			return nil, err
		}
		n, ok := v.(runtime.NumberValue)
		if !ok {
			return nil, runtimeErrorf(e, "operands of between must be numbers")
		}
		nums[idx] = n.Val
	}
	lo, hi := math.Min(nums[1], nums[2]), math.Max(nums[1], nums[2])
	return runtime.BoolValue{Val: nums[0] >= lo && nums[0] <= hi}, nil
}

func (i *Interpreter) evaluateCall(e *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluate(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, len(e.Arguments))
	for idx, arg := range e.Arguments {
		v, err := i.evaluate(arg, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, runtimeErrorf(e, "can only call functions")
	}
	if fn.Arity() != len(args) {
		return nil, runtimeErrorf(e, "expected %d arguments but got %d", fn.Arity(), len(args))
	}
	switch f := fn.(type) {
	case *runtime.NativeFunctionValue:
		result, err := f.Impl(i.native, args)
		if err != nil {
			var rt *RuntimeError
			if errors.As(err, &rt) {
				return nil, rt
			}
			return nil, runtimeErrorf(e, "%s", err.Error())
		}
		return result, nil
	case *runtime.FunctionValue:
		if i.depth >= maxCallDepth {
			return nil, runtimeErrorf(e, "stack overflow")
		}
		i.depth++
		defer func() { i.depth-- }()
		return i.callFunction(f, args)
	default:
		return nil, runtimeErrorf(e, "can only call functions")
	}
}

// callFunction binds arguments into a fresh environment under the closure
// and runs the body there. A return flow becomes the call's value.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	callEnv := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		callEnv.Define(param.Slot, param.Name, args[idx])
	}
	result, err := i.executeBlock(fn.Declaration.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if result.kind == flowReturn {
		return result.value, nil
	}
	return runtime.NilValue{}, nil
}
