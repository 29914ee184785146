// Package opcode provides the CPython 2.7 opcode table: the mnemonic to
// numeric mapping, the relative/absolute jump predicates, the
// compare-operator table, and the stack-effect tables used by the
// stack-depth tracker.
package opcode

import "fmt"

// Op describes a single CPython 2.7 opcode.
type Op struct {
	Code byte
	Name string

	// HasArg is false for the small set of opcodes below HaveArgument
	// that carry no operand at all (a 1-field instruction).
	HasArg bool
}

func newOp(code byte, name string, hasArg bool) Op {
	return Op{Code: code, Name: name, HasArg: hasArg}
}

// HaveArgument is the boundary: opcodes numbered below this carry no
// argument, opcodes at or above it always do.
const HaveArgument = 90

// The full CPython 2.7 opcode table (Lib/opcode.py).
var (
	StopCode      = newOp(0, "STOP_CODE", false)
	PopTop        = newOp(1, "POP_TOP", false)
	RotTwo        = newOp(2, "ROT_TWO", false)
	RotThree      = newOp(3, "ROT_THREE", false)
	DupTop        = newOp(4, "DUP_TOP", false)
	RotFour       = newOp(5, "ROT_FOUR", false)
	Nop           = newOp(9, "NOP", false)
	UnaryPositive = newOp(10, "UNARY_POSITIVE", false)
	UnaryNegative = newOp(11, "UNARY_NEGATIVE", false)
	UnaryNot      = newOp(12, "UNARY_NOT", false)
	UnaryConvert  = newOp(13, "UNARY_CONVERT", false)
	UnaryInvert   = newOp(15, "UNARY_INVERT", false)

	BinaryPower        = newOp(19, "BINARY_POWER", false)
	BinaryMultiply     = newOp(20, "BINARY_MULTIPLY", false)
	BinaryDivide       = newOp(21, "BINARY_DIVIDE", false)
	BinaryModulo       = newOp(22, "BINARY_MODULO", false)
	BinaryAdd          = newOp(23, "BINARY_ADD", false)
	BinarySubtract     = newOp(24, "BINARY_SUBTRACT", false)
	BinarySubscr       = newOp(25, "BINARY_SUBSCR", false)
	BinaryFloorDivide  = newOp(26, "BINARY_FLOOR_DIVIDE", false)
	BinaryTrueDivide   = newOp(27, "BINARY_TRUE_DIVIDE", false)
	InplaceFloorDivide = newOp(28, "INPLACE_FLOOR_DIVIDE", false)
	InplaceTrueDivide  = newOp(29, "INPLACE_TRUE_DIVIDE", false)

	SliceNN = newOp(30, "SLICE+0", false)
	SliceLN = newOp(31, "SLICE+1", false)
	SliceNU = newOp(32, "SLICE+2", false)
	SliceLU = newOp(33, "SLICE+3", false)

	StoreSliceNN = newOp(40, "STORE_SLICE+0", false)
	StoreSliceLN = newOp(41, "STORE_SLICE+1", false)
	StoreSliceNU = newOp(42, "STORE_SLICE+2", false)
	StoreSliceLU = newOp(43, "STORE_SLICE+3", false)

	DeleteSliceNN = newOp(50, "DELETE_SLICE+0", false)
	DeleteSliceLN = newOp(51, "DELETE_SLICE+1", false)
	DeleteSliceNU = newOp(52, "DELETE_SLICE+2", false)
	DeleteSliceLU = newOp(53, "DELETE_SLICE+3", false)

	StoreMap            = newOp(54, "STORE_MAP", false)
	InplaceAdd          = newOp(55, "INPLACE_ADD", false)
	InplaceSubtract     = newOp(56, "INPLACE_SUBTRACT", false)
	InplaceMultiply     = newOp(57, "INPLACE_MULTIPLY", false)
	InplaceDivide       = newOp(58, "INPLACE_DIVIDE", false)
	InplaceModulo       = newOp(59, "INPLACE_MODULO", false)
	StoreSubscr         = newOp(60, "STORE_SUBSCR", false)
	DeleteSubscr        = newOp(61, "DELETE_SUBSCR", false)
	BinaryLshift        = newOp(62, "BINARY_LSHIFT", false)
	BinaryRshift        = newOp(63, "BINARY_RSHIFT", false)
	BinaryAnd           = newOp(64, "BINARY_AND", false)
	BinaryXor           = newOp(65, "BINARY_XOR", false)
	BinaryOr            = newOp(66, "BINARY_OR", false)
	InplacePower        = newOp(67, "INPLACE_POWER", false)
	GetIter             = newOp(68, "GET_ITER", false)
	StoreLocals         = newOp(69, "STORE_LOCALS", false)
	PrintExpr           = newOp(70, "PRINT_EXPR", false)
	PrintItem           = newOp(71, "PRINT_ITEM", false)
	PrintNewline        = newOp(72, "PRINT_NEWLINE", false)
	PrintItemTo         = newOp(73, "PRINT_ITEM_TO", false)
	PrintNewlineTo      = newOp(74, "PRINT_NEWLINE_TO", false)
	InplaceLshift       = newOp(75, "INPLACE_LSHIFT", false)
	InplaceRshift       = newOp(76, "INPLACE_RSHIFT", false)
	InplaceAnd          = newOp(77, "INPLACE_AND", false)
	InplaceXor          = newOp(78, "INPLACE_XOR", false)
	InplaceOr           = newOp(79, "INPLACE_OR", false)
	BreakLoop           = newOp(80, "BREAK_LOOP", false)
	WithCleanup         = newOp(81, "WITH_CLEANUP", false)
	LoadLocals          = newOp(82, "LOAD_LOCALS", false)
	ReturnValue         = newOp(83, "RETURN_VALUE", false)
	ImportStar          = newOp(84, "IMPORT_STAR", false)
	ExecStmt            = newOp(85, "EXEC_STMT", false)
	YieldValue          = newOp(86, "YIELD_VALUE", false)
	PopBlock            = newOp(87, "POP_BLOCK", false)
	EndFinally          = newOp(88, "END_FINALLY", false)
	BuildClass          = newOp(89, "BUILD_CLASS", false)

	StoreName         = newOp(90, "STORE_NAME", true)
	DeleteName        = newOp(91, "DELETE_NAME", true)
	UnpackSequence    = newOp(92, "UNPACK_SEQUENCE", true)
	ForIter           = newOp(93, "FOR_ITER", true)
	ListAppend        = newOp(94, "LIST_APPEND", true)
	StoreAttr         = newOp(95, "STORE_ATTR", true)
	DeleteAttr        = newOp(96, "DELETE_ATTR", true)
	StoreGlobal       = newOp(97, "STORE_GLOBAL", true)
	DeleteGlobal      = newOp(98, "DELETE_GLOBAL", true)
	DupTopx           = newOp(99, "DUP_TOPX", true)
	LoadConst         = newOp(100, "LOAD_CONST", true)
	LoadName          = newOp(101, "LOAD_NAME", true)
	BuildTuple        = newOp(102, "BUILD_TUPLE", true)
	BuildList         = newOp(103, "BUILD_LIST", true)
	BuildSet          = newOp(104, "BUILD_SET", true)
	BuildMap          = newOp(105, "BUILD_MAP", true)
	LoadAttr          = newOp(106, "LOAD_ATTR", true)
	CompareOp         = newOp(107, "COMPARE_OP", true)
	ImportName        = newOp(108, "IMPORT_NAME", true)
	ImportFrom        = newOp(109, "IMPORT_FROM", true)
	JumpForward       = newOp(110, "JUMP_FORWARD", true)
	JumpIfFalseOrPop  = newOp(111, "JUMP_IF_FALSE_OR_POP", true)
	JumpIfTrueOrPop   = newOp(112, "JUMP_IF_TRUE_OR_POP", true)
	JumpAbsolute      = newOp(113, "JUMP_ABSOLUTE", true)
	PopJumpIfFalse    = newOp(114, "POP_JUMP_IF_FALSE", true)
	PopJumpIfTrue     = newOp(115, "POP_JUMP_IF_TRUE", true)
	LoadGlobal        = newOp(116, "LOAD_GLOBAL", true)
	ContinueLoop      = newOp(119, "CONTINUE_LOOP", true)
	SetupLoop         = newOp(120, "SETUP_LOOP", true)
	SetupExcept       = newOp(121, "SETUP_EXCEPT", true)
	SetupFinally      = newOp(122, "SETUP_FINALLY", true)
	LoadFast          = newOp(124, "LOAD_FAST", true)
	StoreFast         = newOp(125, "STORE_FAST", true)
	DeleteFast        = newOp(126, "DELETE_FAST", true)
	RaiseVarargs      = newOp(130, "RAISE_VARARGS", true)
	CallFunction      = newOp(131, "CALL_FUNCTION", true)
	MakeFunction      = newOp(132, "MAKE_FUNCTION", true)
	BuildSlice        = newOp(133, "BUILD_SLICE", true)
	MakeClosure       = newOp(134, "MAKE_CLOSURE", true)
	LoadClosure       = newOp(135, "LOAD_CLOSURE", true)
	LoadDeref         = newOp(136, "LOAD_DEREF", true)
	StoreDeref        = newOp(137, "STORE_DEREF", true)
	CallFunctionVar   = newOp(140, "CALL_FUNCTION_VAR", true)
	CallFunctionKw    = newOp(141, "CALL_FUNCTION_KW", true)
	CallFunctionVarKw = newOp(142, "CALL_FUNCTION_VAR_KW", true)
	SetupWith         = newOp(143, "SETUP_WITH", true)
	ExtendedArg       = newOp(145, "EXTENDED_ARG", true)
	SetAdd            = newOp(146, "SET_ADD", true)
	MapAdd            = newOp(147, "MAP_ADD", true)

	// SetLineno is not a real CPython opcode: it is the assembler's own
	// sentinel instruction (spec.md §3) that carries a source line number
	// and drives the lnotab encoder instead of occupying bytecode bytes.
	// It is numbered 255, a byte value no CPython 2.7 opcode uses, so it
	// never collides with a genuine opcode.
	SetLineno = newOp(255, "SET_LINENO", true)
)

var byCode = func() map[byte]Op {
	m := make(map[byte]Op, 96)
	for _, op := range allOps {
		m[op.Code] = op
	}
	return m
}()

var byName = func() map[string]Op {
	m := make(map[string]Op, 96)
	for _, op := range allOps {
		m[op.Name] = op
	}
	return m
}()

var allOps = []Op{
	StopCode, PopTop, RotTwo, RotThree, DupTop, RotFour, Nop,
	UnaryPositive, UnaryNegative, UnaryNot, UnaryConvert, UnaryInvert,
	BinaryPower, BinaryMultiply, BinaryDivide, BinaryModulo, BinaryAdd,
	BinarySubtract, BinarySubscr, BinaryFloorDivide, BinaryTrueDivide,
	InplaceFloorDivide, InplaceTrueDivide,
	SliceNN, SliceLN, SliceNU, SliceLU,
	StoreSliceNN, StoreSliceLN, StoreSliceNU, StoreSliceLU,
	DeleteSliceNN, DeleteSliceLN, DeleteSliceNU, DeleteSliceLU,
	StoreMap, InplaceAdd, InplaceSubtract, InplaceMultiply, InplaceDivide,
	InplaceModulo, StoreSubscr, DeleteSubscr, BinaryLshift, BinaryRshift,
	BinaryAnd, BinaryXor, BinaryOr, InplacePower, GetIter, StoreLocals,
	PrintExpr, PrintItem, PrintNewline, PrintItemTo, PrintNewlineTo,
	InplaceLshift, InplaceRshift, InplaceAnd, InplaceXor, InplaceOr,
	BreakLoop, WithCleanup, LoadLocals, ReturnValue, ImportStar, ExecStmt,
	YieldValue, PopBlock, EndFinally, BuildClass,
	StoreName, DeleteName, UnpackSequence, ForIter, ListAppend, StoreAttr,
	DeleteAttr, StoreGlobal, DeleteGlobal, DupTopx, LoadConst, LoadName,
	BuildTuple, BuildList, BuildSet, BuildMap, LoadAttr, CompareOp,
	ImportName, ImportFrom, JumpForward, JumpIfFalseOrPop, JumpIfTrueOrPop,
	JumpAbsolute, PopJumpIfFalse, PopJumpIfTrue, LoadGlobal, ContinueLoop,
	SetupLoop, SetupExcept, SetupFinally, LoadFast, StoreFast, DeleteFast,
	RaiseVarargs, CallFunction, MakeFunction, BuildSlice, MakeClosure,
	LoadClosure, LoadDeref, StoreDeref, CallFunctionVar, CallFunctionKw,
	CallFunctionVarKw, SetupWith, ExtendedArg, SetAdd, MapAdd, SetLineno,
}

// UnknownOpcodeError is returned by Lookup/ByName for an unrecognized
// opcode number or mnemonic.
type UnknownOpcodeError struct {
	Code byte
	Name string
}

func (e UnknownOpcodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("opcode: unknown mnemonic %q", e.Name)
	}
	return fmt.Sprintf("opcode: unknown opcode 0x%02x", e.Code)
}

// Lookup returns the Op for a numeric opcode.
func Lookup(code byte) (Op, error) {
	op, ok := byCode[code]
	if !ok {
		return Op{}, UnknownOpcodeError{Code: code}
	}
	return op, nil
}

// ByName returns the Op for a mnemonic.
func ByName(name string) (Op, error) {
	op, ok := byName[name]
	if !ok {
		return Op{}, UnknownOpcodeError{Name: name}
	}
	return op, nil
}

// hasJrel is the set of opcodes whose argument is a relative jump target:
// a byte delta from the instruction immediately following it.
var hasJrel = map[byte]bool{
	ForIter.Code:      true,
	JumpForward.Code:  true,
	SetupLoop.Code:    true,
	SetupExcept.Code:  true,
	SetupFinally.Code: true,
	SetupWith.Code:    true,
}

// hasJabs is the set of opcodes whose argument is an absolute byte offset
// from the start of the code.
var hasJabs = map[byte]bool{
	JumpIfFalseOrPop.Code: true,
	JumpIfTrueOrPop.Code:  true,
	JumpAbsolute.Code:     true,
	PopJumpIfFalse.Code:   true,
	PopJumpIfTrue.Code:    true,
	ContinueLoop.Code:     true,
}

// HasJrel reports whether op's oparg is a relative jump target.
func HasJrel(op Op) bool { return hasJrel[op.Code] }

// HasJabs reports whether op's oparg is an absolute jump target.
func HasJabs(op Op) bool { return hasJabs[op.Code] }

// HasJump reports whether op's oparg names a Block (relative or absolute).
func HasJump(op Op) bool { return HasJrel(op) || HasJabs(op) }

// CompareOps is the fixed CPython 2.7 comparison-operator table; an
// instruction's COMPARE_OP oparg is an index into it.
var CompareOps = []string{
	"<", "<=", "==", "!=", ">", ">=",
	"in", "not in", "is", "is not",
	"exception match", "BAD",
}

// CompareOpIndex returns the index of mnemonic in CompareOps.
func CompareOpIndex(mnemonic string) (int, error) {
	for i, m := range CompareOps {
		if m == mnemonic {
			return i, nil
		}
	}
	return -1, fmt.Errorf("opcode: unknown compare operator %q", mnemonic)
}

// Terminal is the set of opcodes that unconditionally transfer control,
// i.e. a block ending in one of these has no fall-through (spec.md §4.B).
var Terminal = map[byte]bool{
	ReturnValue.Code:   true,
	RaiseVarargs.Code:  true,
	JumpAbsolute.Code:  true,
	JumpForward.Code:   true,
	ContinueLoop.Code:  true,
}
