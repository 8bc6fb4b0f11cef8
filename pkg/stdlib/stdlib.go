// Package stdlib defines the native functions every klox program starts
// with. Each builtin occupies a fixed slot shared by the resolver, the type
// checker and the interpreter's global environment.
package stdlib

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"klox/interpreter-go/pkg/runtime"
	"klox/interpreter-go/pkg/types"
)

// Builtin describes one native function. Generic lists the type variables in
// Type that are instantiated afresh at every reference.
type Builtin struct {
	Slot    int
	Name    string
	Pure    bool
	Type    types.FunctionType
	Generic []types.TypeVar
	Value   *runtime.NativeFunctionValue
}

var printArg = types.TypeVar{Label: "a"}

// Builtins is ordered by slot.
var Builtins = []Builtin{
	{
		Slot:  0,
		Name:  "clock",
		Type:  types.Func(types.Number),
		Value: &runtime.NativeFunctionValue{Name: "clock", ArgCount: 0, Impl: clock},
	},
	{
		Slot:    1,
		Name:    "print",
		Type:    types.Func(types.Nil, printArg),
		Generic: []types.TypeVar{printArg},
		Value:   &runtime.NativeFunctionValue{Name: "print", ArgCount: 1, Impl: printValue},
	},
	{
		Slot:  2,
		Name:  "input",
		Type:  types.Func(types.String),
		Value: &runtime.NativeFunctionValue{Name: "input", ArgCount: 0, Impl: input},
	},
	{
		Slot:  3,
		Name:  "sleep",
		Type:  types.Func(types.Nil, types.Number),
		Value: &runtime.NativeFunctionValue{Name: "sleep", ArgCount: 1, Impl: sleep},
	},
	{
		Slot:  4,
		Name:  "substr",
		Pure:  true,
		Type:  types.Func(types.String, types.String, types.Number, types.Number),
		Value: &runtime.NativeFunctionValue{Name: "substr", ArgCount: 3, Impl: substr},
	},
}

// FirstUserSlot is the first slot available to program declarations.
var FirstUserSlot = len(Builtins)

// Install defines every builtin in env.
func Install(env *runtime.Environment) {
	for _, b := range Builtins {
		env.Define(b.Slot, b.Name, b.Value)
	}
}

func clock(ctx *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	now := time.Now
	if ctx != nil && ctx.Now != nil {
		now = ctx.Now
	}
	return runtime.NumberValue{Val: float64(now().UnixMilli())}, nil
}

func printValue(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if _, err := fmt.Fprintln(ctx.Stdout, runtime.Format(args[0])); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return runtime.NilValue{}, nil
}

// input reads one line from stdin without its line terminator. At end of
// input it returns nil.
func input(ctx *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	if ctx.Stdin == nil {
		return runtime.NilValue{}, nil
	}
	line, err := ctx.Stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("input: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return runtime.NilValue{}, nil
	}
	return runtime.StringValue{Val: strings.TrimRight(line, "\r\n")}, nil
}

func sleep(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	ms, ok := args[0].(runtime.NumberValue)
	if !ok {
		return nil, fmt.Errorf("sleep expects a number of milliseconds")
	}
	pause := time.Sleep
	if ctx.Sleep != nil {
		pause = ctx.Sleep
	}
	if ms.Val > 0 {
		pause(time.Duration(ms.Val * float64(time.Millisecond)))
	}
	return runtime.NilValue{}, nil
}

func substr(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	s, okS := args[0].(runtime.StringValue)
	start, okStart := args[1].(runtime.NumberValue)
	end, okEnd := args[2].(runtime.NumberValue)
	if !okS || !okStart || !okEnd {
		return nil, fmt.Errorf("invalid types passed to substr(string, number, number)")
	}
	runes := []rune(s.Val)
	from, to := int(math.Trunc(start.Val)), int(math.Trunc(end.Val))
	if from < 0 || to >= len(runes) || from > to {
		return nil, fmt.Errorf("string indexes are out of bounds (start %d, end %d, length %d)", from, to, len(runes))
	}
	return runtime.StringValue{Val: string(runes[from:to])}, nil
}
