package runtime

import (
	"math"
	"strconv"
)

// Format renders a value the way print shows it.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, NilValue:
		return "nil"
	case NumberValue:
		return FormatNumber(val.Val)
	case StringValue:
		return val.Val
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case *FunctionValue:
		return "<fn " + val.Declaration.Name + ">"
	case *NativeFunctionValue:
		return "<native fn>"
	default:
		return "<" + v.Kind().String() + ">"
	}
}

// FormatNumber drops the fractional part of integral values.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Truthy: nil and false are falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// Equal is value equality. Functions compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, NilValue:
		switch b.(type) {
		case nil, NilValue:
			return true
		}
		return false
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av == bv
	case *NativeFunctionValue:
		bv, ok := b.(*NativeFunctionValue)
		return ok && av == bv
	default:
		return false
	}
}
