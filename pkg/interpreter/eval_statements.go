package interpreter

import (
	"fmt"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/runtime"
)

// flowKind reports how a statement finished.
type flowKind int

const (
	flowNormal flowKind = iota
	flowBreak
	flowContinue
	flowReturn
)

// flow is returned by every statement executor. value is set for flowReturn.
type flow struct {
	kind  flowKind
	value runtime.Value
}

var normal = flow{kind: flowNormal}

func (i *Interpreter) execute(stmt ast.Statement, env *runtime.Environment) (flow, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluate(s.Expression, env)
		return normal, err
	case *ast.Block:
		return i.executeBlock(s.Statements, runtime.NewEnvironment(env))
	case *ast.If:
		return i.executeIf(s, env)
	case *ast.While:
		return i.executeWhile(s, env)
	case *ast.Break:
		return flow{kind: flowBreak}, nil
	case *ast.Continue:
		return flow{kind: flowContinue}, nil
	case *ast.Var:
		var value runtime.Value = runtime.NilValue{}
		if s.Initializer != nil {
			v, err := i.evaluate(s.Initializer, env)
			if err != nil {
				return normal, err
			}
			value = v
		}
		env.Define(s.Slot, s.Name, value)
		return normal, nil
	case *ast.Const:
		value, err := i.evaluate(s.Initializer, env)
		if err != nil {
			return normal, err
		}
		env.Define(s.Slot, s.Name, value)
		return normal, nil
	case *ast.Function:
		env.Define(s.Slot, s.Name, &runtime.FunctionValue{Declaration: s, Closure: env})
		return normal, nil
	case *ast.Return:
		value, err := i.evaluate(s.Value, env)
		if err != nil {
			return normal, err
		}
		return flow{kind: flowReturn, value: value}, nil
	case *ast.Debug:
		env.Dump(i.debug)
		return normal, nil
	case *ast.EmptyStatement:
		return normal, nil
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", stmt.NodeType())
	}
}

// executeBlock runs stmts in env and propagates any non-normal flow.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *runtime.Environment) (flow, error) {
	for _, stmt := range stmts {
		result, err := i.execute(stmt, env)
		if err != nil || result.kind != flowNormal {
			return result, err
		}
	}
	return normal, nil
}

func (i *Interpreter) executeIf(s *ast.If, env *runtime.Environment) (flow, error) {
	cond, err := i.evaluate(s.Condition, env)
	if err != nil {
		return normal, err
	}
	if runtime.Truthy(cond) {
		return i.execute(s.Then, env)
	}
	if s.Else != nil {
		return i.execute(s.Else, env)
	}
	return normal, nil
}

func (i *Interpreter) executeWhile(s *ast.While, env *runtime.Environment) (flow, error) {
	for {
		cond, err := i.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if !runtime.Truthy(cond) {
			return normal, nil
		}
		result, err := i.execute(s.Body, env)
		if err != nil {
			return normal, err
		}
		switch result.kind {
		case flowBreak:
			return normal, nil
		case flowReturn:
			return result, nil
		}
		if s.Increment != nil {
			if _, err := i.evaluate(s.Increment, env); err != nil {
				return normal, err
			}
		}
	}
}
