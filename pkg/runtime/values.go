package runtime

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"klox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNil
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// Callable is implemented by every value that can appear in call position.
type Callable interface {
	Value
	Arity() int
}

// FunctionValue is a user function paired with the environment it was
// declared in.
type FunctionValue struct {
	Declaration *ast.Function
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }
func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

// NativeCallContext carries the host facilities natives may touch.
type NativeCallContext struct {
	Stdout io.Writer
	Stdin  *bufio.Reader
	Now    func() time.Time
	Sleep  func(time.Duration)
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name     string
	ArgCount int
	Impl     NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }
func (v *NativeFunctionValue) Arity() int { return v.ArgCount }
