package assemble

import (
	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/intern"
	"github.com/go-pyvm/pyasm/opcode"
)

// action tags the kind of symbolic-operand encoding an opcode needs
// (spec.md §4.G), replacing per-mnemonic dispatch with data, per the
// DESIGN NOTES: a static opcode -> tagged-variant map instead of a
// `_convert_*` method table.
type action int

const (
	actionPassthrough action = iota
	actionInternConst
	actionInternVarname        // LOAD_FAST/STORE_FAST/DELETE_FAST
	actionInternNameAndVarname // LOAD_NAME and the rest of its family
	actionInternDeref          // LOAD_DEREF/STORE_DEREF
	actionInternClosure        // LOAD_CLOSURE
	actionCompareOp
)

var actionFor = map[byte]action{
	opcode.LoadConst.Code:    actionInternConst,
	opcode.LoadFast.Code:     actionInternVarname,
	opcode.StoreFast.Code:    actionInternVarname,
	opcode.DeleteFast.Code:   actionInternVarname,
	opcode.LoadName.Code:     actionInternNameAndVarname,
	opcode.StoreName.Code:    actionInternNameAndVarname,
	opcode.DeleteName.Code:   actionInternNameAndVarname,
	opcode.ImportName.Code:   actionInternNameAndVarname,
	opcode.ImportFrom.Code:   actionInternNameAndVarname,
	opcode.LoadAttr.Code:     actionInternNameAndVarname,
	opcode.StoreAttr.Code:    actionInternNameAndVarname,
	opcode.DeleteAttr.Code:   actionInternNameAndVarname,
	opcode.LoadGlobal.Code:   actionInternNameAndVarname,
	opcode.StoreGlobal.Code:  actionInternNameAndVarname,
	opcode.DeleteGlobal.Code: actionInternNameAndVarname,
	opcode.LoadDeref.Code:    actionInternDeref,
	opcode.StoreDeref.Code:   actionInternDeref,
	opcode.LoadClosure.Code:  actionInternClosure,
	opcode.CompareOp.Code:    actionCompareOp,
}

// Encoder rewrites a 2-field instruction's symbolic oparg into the
// integer index the packer needs, against a compilation unit's mutable
// intern tables (spec.md §4.G).
type Encoder struct {
	Consts   *intern.Table
	Names    *intern.StringTable
	Varnames *intern.StringTable
	Closure  *intern.StringTable
	Klass    bool
}

// Encode resolves f's oparg in place. Jump targets have already been
// resolved to byte offsets by Flatten and pass through unchanged;
// SET_LINENO and bare opcodes have no oparg to resolve.
func (e *Encoder) Encode(f Flat) (Flat, error) {
	if !f.Op.HasArg || f.Op.Code == opcode.SetLineno.Code || opcode.HasJump(f.Op) {
		return f, nil
	}

	act, ok := actionFor[f.Op.Code]
	if !ok {
		// "All other 2-field opcodes are already numeric and pass through
		// unchanged" (spec.md §4.G).
		n, ok := f.Arg.(int)
		if !ok {
			return f, UnencodableOperandError{Opcode: f.Op.Name, Arg: f.Arg}
		}
		f.Arg = n
		return f, nil
	}

	switch act {
	case actionInternConst:
		v, err := e.constValue(f.Arg)
		if err != nil {
			return f, err
		}
		f.Arg = e.Consts.IndexOf(v)

	case actionInternVarname:
		name := f.Arg.(string)
		e.Names.IndexOf(name) // side effect, spec.md §4.G
		f.Arg = e.Varnames.IndexOf(name)

	case actionInternNameAndVarname:
		name := f.Arg.(string)
		if !e.Klass {
			e.Varnames.IndexOf(name)
		}
		f.Arg = e.Names.IndexOf(name)

	case actionInternDeref:
		name := f.Arg.(string)
		e.Names.IndexOf(name)    // side effect
		e.Varnames.IndexOf(name) // side effect
		f.Arg = e.Closure.IndexOf(name)

	case actionInternClosure:
		name := f.Arg.(string)
		e.Varnames.IndexOf(name)
		f.Arg = e.Closure.IndexOf(name)

	case actionCompareOp:
		idx, err := opcode.CompareOpIndex(f.Arg.(string))
		if err != nil {
			return f, err
		}
		f.Arg = idx
	}
	return f, nil
}

// constValue resolves a LOAD_CONST oparg: a nested code-producing
// *cfg.FlowGraph is assembled first (recursively, depth-first, into its
// own disjoint intern tables -- spec.md §5), anything else must already
// be a representable code.Value.
func (e *Encoder) constValue(arg interface{}) (code.Value, error) {
	if child, ok := arg.(*cfg.FlowGraph); ok {
		obj, err := Assemble(child)
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	v, _ := arg.(code.Value)
	if !code.Representable(v) {
		return nil, UnrepresentableConstError{Value: arg}
	}
	return v, nil
}
