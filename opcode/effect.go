package opcode

import "strings"

// fixedEffect is the static opcode -> stack-delta table from spec.md §4.E.
// It mirrors the shape of disasm.Disassemble's per-opcode switch
// (go-interpreter/wagon), but table-driven instead of inline.
var fixedEffect = map[byte]int{
	StopCode.Code:      0,
	PopTop.Code:        -1,
	RotTwo.Code:        0,
	RotThree.Code:      0,
	DupTop.Code:        1,
	RotFour.Code:       0,
	Nop.Code:           0,
	UnaryPositive.Code: 0,
	UnaryNegative.Code: 0,
	UnaryNot.Code:      0,
	UnaryConvert.Code:  0,
	UnaryInvert.Code:   0,

	SliceNN.Code: 0,
	SliceLN.Code: -1,
	SliceNU.Code: -1,
	SliceLU.Code: -2,

	StoreSliceNN.Code: -2,
	StoreSliceLN.Code: -3,
	StoreSliceNU.Code: -3,
	StoreSliceLU.Code: -4,

	DeleteSliceNN.Code: -1,
	DeleteSliceLN.Code: -2,
	DeleteSliceNU.Code: -2,
	DeleteSliceLU.Code: -3,

	StoreMap.Code:        -2,
	StoreSubscr.Code:     -3,
	DeleteSubscr.Code:    -2,
	GetIter.Code:         0,
	StoreLocals.Code:     -1,
	PrintExpr.Code:       -1,
	PrintItem.Code:       -1,
	PrintNewline.Code:    0,
	PrintItemTo.Code:     -2,
	PrintNewlineTo.Code:  -1,
	BreakLoop.Code:       0,
	WithCleanup.Code:     -1,
	LoadLocals.Code:      1,
	ReturnValue.Code:     -1,
	ImportStar.Code:      -1,
	ExecStmt.Code:        -3,
	YieldValue.Code:      0,
	PopBlock.Code:        0,
	EndFinally.Code:      -1,
	BuildClass.Code:      -2,

	StoreName.Code:    -1,
	DeleteName.Code:   0,
	ForIter.Code:      1,
	ListAppend.Code:   -1,
	StoreAttr.Code:    -2,
	DeleteAttr.Code:   -1,
	StoreGlobal.Code:  -1,
	DeleteGlobal.Code: 0,
	LoadConst.Code:    1,
	LoadName.Code:     1,
	LoadAttr.Code:     0,
	CompareOp.Code:    -1,
	ImportName.Code:   -1,
	ImportFrom.Code:   1,

	JumpForward.Code:      0,
	JumpIfFalseOrPop.Code: 0,
	JumpIfTrueOrPop.Code:  0,
	JumpAbsolute.Code:     0,
	PopJumpIfFalse.Code:   -1,
	PopJumpIfTrue.Code:    -1,
	LoadGlobal.Code:       1,
	ContinueLoop.Code:     0,
	SetupLoop.Code:        0,
	SetupExcept.Code:      3,
	SetupFinally.Code:     3,
	LoadFast.Code:         1,
	StoreFast.Code:        -1,
	DeleteFast.Code:       0,
	RaiseVarargs.Code:     0,
	LoadClosure.Code:      1,
	LoadDeref.Code:        1,
	StoreDeref.Code:       -1,
	SetupWith.Code:        0,
	ExtendedArg.Code:      0,
	SetAdd.Code:           -1,
	MapAdd.Code:           -2,
}

// prefixEffect applies when fixedEffect has no entry: any BINARY_* pops
// two and pushes one (delta -1); any LOAD_* pushes one (delta +1). This is
// the fallback rule from spec.md §4.E.
func prefixEffect(name string) (int, bool) {
	switch {
	case strings.HasPrefix(name, "BINARY_"):
		return -1, true
	case strings.HasPrefix(name, "LOAD_"):
		return 1, true
	}
	return 0, false
}

func divmod(n, d int) (q, r int) {
	q = n / d
	r = n % d
	return
}

// ArgEffect computes the stack-depth delta for opcodes whose effect
// depends on their (already-integer) oparg, per spec.md §4.E. ok is false
// for opcodes not in this set, in which case the caller should consult
// Effect instead.
func ArgEffect(op Op, arg int) (delta int, ok bool) {
	switch op.Code {
	case UnpackSequence.Code:
		return arg - 1, true
	case BuildTuple.Code, BuildList.Code, BuildSet.Code:
		return -arg + 1, true
	case BuildMap.Code:
		return 1, true
	case CallFunction.Code:
		hi, lo := divmod(arg, 256)
		return -(lo + 2*hi), true
	case CallFunctionVar.Code, CallFunctionKw.Code:
		hi, lo := divmod(arg, 256)
		return -(lo+2*hi) - 1, true
	case CallFunctionVarKw.Code:
		hi, lo := divmod(arg, 256)
		return -(lo+2*hi) - 2, true
	case MakeFunction.Code:
		return -arg, true
	case MakeClosure.Code:
		// spec.md §9 / the source's own XXX: free variables pulled in by
		// MAKE_CLOSURE are not accounted for here. Preserved intentionally.
		return -arg, true
	case BuildSlice.Code:
		if arg == 3 {
			return -2, true
		}
		return -1, true
	case DupTopx.Code:
		return arg, true
	}
	return 0, false
}

// Effect returns the fixed (argument-independent) stack-depth delta for
// op, consulting the prefix-pattern fallback when there is no exact entry.
// ok is false only when op is neither in the fixed table nor matches a
// BINARY_*/LOAD_* prefix and isn't argument-dependent (Effect should not
// be called for those; use ArgEffect first).
func Effect(op Op) (delta int, ok bool) {
	if d, found := fixedEffect[op.Code]; found {
		return d, true
	}
	return prefixEffect(op.Name)
}
