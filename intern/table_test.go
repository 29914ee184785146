package intern

import (
	"testing"

	"github.com/go-pyvm/pyasm/code"
)

func TestTableTypeStrictInterning(t *testing.T) {
	tab := &Table{}
	i1 := tab.IndexOf(code.Int(2))
	i2 := tab.IndexOf(code.Long(2))
	i3 := tab.IndexOf(code.Int(2))

	if i1 == i2 {
		t.Fatalf("Int(2) and Long(2) interned to the same index %d", i1)
	}
	if i1 != i3 {
		t.Fatalf("two Int(2) insertions got different indices %d, %d", i1, i3)
	}
	if tab.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tab.Len())
	}
}

func TestTablePreservesInsertionOrder(t *testing.T) {
	tab := &Table{}
	tab.IndexOf(code.Str("b"))
	tab.IndexOf(code.Str("a"))
	tab.IndexOf(code.Str("b"))

	values := tab.Values()
	want := []code.Value{code.Str("b"), code.Str("a")}
	if len(values) != len(want) {
		t.Fatalf("Values() = %#v, want %#v", values, want)
	}
	for i := range want {
		if !code.Equal(values[i], want[i]) {
			t.Fatalf("Values() = %#v, want %#v", values, want)
		}
	}
}

func TestStringTable(t *testing.T) {
	st := &StringTable{}
	i1 := st.IndexOf("x")
	i2 := st.IndexOf("y")
	i3 := st.IndexOf("x")

	if i1 != i3 {
		t.Fatalf("repeated IndexOf(x) = %d, want %d", i3, i1)
	}
	if i1 == i2 {
		t.Fatalf("IndexOf(x) and IndexOf(y) collided at %d", i1)
	}
	if !st.Contains("x") || st.Contains("z") {
		t.Fatalf("Contains is wrong: x=%v z=%v", st.Contains("x"), st.Contains("z"))
	}
	if got := st.Values(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("Values() = %v, want [x y]", got)
	}
}
