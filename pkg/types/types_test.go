package types

import "testing"

func TestFunctionTypeNames(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{Number, "Number"},
		{Func(Number, Number), "(Number -> Number)"},
		{Func(String, String, Number, Number), "((String, Number, Number) -> String)"},
		{Func(Number), "(() -> Number)"},
		{Func(Nil, TypeVar{Label: "t3"}), "(t3 -> Nil)"},
		{Func(Func(Bool, Number), Number), "(Number -> (Number -> Bool))"},
	}
	for _, tc := range cases {
		if got := tc.typ.Name(); got != tc.want {
			t.Fatalf("Name() = %q, want %q", got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Func(Number, String), Func(Number, String)) {
		t.Fatalf("expected identical function types to be equal")
	}
	if Equal(Func(Number, String), Func(Number, String, String)) {
		t.Fatalf("arity mismatch must not be equal")
	}
	if Equal(Number, TypeVar{Label: "t0"}) {
		t.Fatalf("primitive and variable must not be equal")
	}
}

func TestContains(t *testing.T) {
	v := TypeVar{Label: "t1"}
	if !Contains(Func(Number, v), v) {
		t.Fatalf("expected t1 to occur in parameter position")
	}
	if Contains(Func(Number, Number), v) {
		t.Fatalf("t1 does not occur in (Number -> Number)")
	}
}

func TestFromAnnotation(t *testing.T) {
	if got, ok := FromAnnotation("String"); !ok || !Equal(got, String) {
		t.Fatalf("FromAnnotation(String) = %v, %v", got, ok)
	}
	if _, ok := FromAnnotation("Float"); ok {
		t.Fatalf("Float is not a klox type")
	}
}
