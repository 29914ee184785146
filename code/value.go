// Package code defines the Code-Object Record (spec.md §3) and the
// CPython constant value types it carries, grounded on wasm.Module's
// plain-struct, exported-field shape.
package code

import "reflect"

// Value is anything storable in a Code-Object's Consts table: one of the
// concrete types below, a Tuple of Values, or a *Object (a nested code
// object used as a constant, e.g. for a nested function/class body).
type Value interface{}

// None is CPython's singleton None constant.
type None struct{}

// Int is CPython 2.7's native "int" constant type.
type Int int32

// Long is CPython 2.7's arbitrary-precision "long" constant type. This
// assembler represents it as a fixed-width int64, which is sufficient for
// the reproducibility properties spec.md §8 tests (distinctness from Int,
// not arbitrary magnitude).
type Long int64

// Float is CPython's "float" (double precision) constant type.
type Float float64

// Bool is CPython's "bool" constant type: distinct from Int even though
// Python's bool is a subclass of int, per spec.md §3's type-strict
// interning rule ("True and 1 are distinct").
type Bool bool

// Str is CPython's "str"/"unicode" constant type.
type Str string

// Tuple is an ordered, immutable sequence of Values, itself storable as a
// constant (e.g. the argument tuple for a default-value expression).
type Tuple []Value

// Representable reports whether v is one of the concrete types a
// Code-Object's Consts table may hold. LOAD_CONST given anything else is
// the fatal "invalid operand" error spec.md §7 describes.
func Representable(v Value) bool {
	switch vv := v.(type) {
	case None, Int, Long, Float, Bool, Str:
		return true
	case Tuple:
		for _, elem := range vv {
			if !Representable(elem) {
				return false
			}
		}
		return true
	case *Object:
		return vv != nil
	default:
		return false
	}
}

// Equal reports whether a and b are interning-equal under spec.md §3's
// type-strict rule: equal only when both the dynamic type and the value
// match. This is the equality function behind intern.Table's IndexOf.
func Equal(a, b Value) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if at, ok := a.(Tuple); ok {
		bt := b.(Tuple)
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	}
	if ac, ok := a.(*Object); ok {
		// Nested code objects are interned by identity: two distinct
		// compilations are never the same constant even if coincidentally
		// identical, matching CPython's own per-object identity semantics
		// for code constants.
		return ac == b.(*Object)
	}
	return a == b
}
