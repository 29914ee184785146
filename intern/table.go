// Package intern provides the append-only, order-preserving intern tables
// the Operand Encoder uses for a code object's consts/names/varnames/
// closure (spec.md §3's index_of semantics), grounded on wasm.Module's
// index-space pattern (FunctionIndexSpace/GlobalIndexSpace): entities are
// addressed by position, appended once, and never removed.
package intern

import "github.com/go-pyvm/pyasm/code"

// Table is an append-only, type-strict intern table for code.Value
// constants. A linear scan under code.Equal is sufficient to satisfy the
// type-strict-interning property test (spec.md §8): a hash map keyed by
// (type, value) would also pass it, but consts tables are small enough in
// practice that the scan's simplicity wins (DESIGN NOTES, spec.md §9).
type Table struct {
	values []code.Value
}

// IndexOf returns v's position, appending it if no interning-equal
// (type-strict, spec.md §3) value has been seen yet.
func (t *Table) IndexOf(v code.Value) int {
	for i, existing := range t.values {
		if code.Equal(existing, v) {
			return i
		}
	}
	t.values = append(t.values, v)
	return len(t.values) - 1
}

// Values returns a copy of the table's contents in insertion order.
func (t *Table) Values() []code.Value {
	out := make([]code.Value, len(t.values))
	copy(out, t.values)
	return out
}

// Len returns the number of distinct values interned so far.
func (t *Table) Len() int { return len(t.values) }

// StringTable is an append-only, order-preserving intern table for plain
// strings: the shape backing names/varnames/closure.
type StringTable struct {
	values []string
	index  map[string]int
}

// IndexOf returns s's position, appending it if this is the first time it
// has been interned.
func (t *StringTable) IndexOf(s string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.values)
	t.values = append(t.values, s)
	t.index[s] = i
	return i
}

// Contains reports whether s has already been interned, without adding it.
func (t *StringTable) Contains(s string) bool {
	_, ok := t.index[s]
	return ok
}

// Values returns a copy of the table's contents in insertion order.
func (t *StringTable) Values() []string {
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

// Len returns the number of distinct strings interned so far.
func (t *StringTable) Len() int { return len(t.values) }
