package assemble

import (
	"bytes"
	"testing"

	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/opcode"
)

// TestAssembleEmptyFunction covers S1: one block emitting
// LOAD_CONST None; RETURN_VALUE.
func TestAssembleEmptyFunction(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.Emit(opcode.LoadConst, code.None{})
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{opcode.LoadConst.Code, 0, 0, opcode.ReturnValue.Code}
	if !bytes.Equal(obj.Bytecode, want) {
		t.Fatalf("co_code = %x, want %x", obj.Bytecode, want)
	}
	if len(obj.Consts) != 1 || !code.Equal(obj.Consts[0], code.None{}) {
		t.Fatalf("co_consts = %#v, want (None,)", obj.Consts)
	}
	if obj.Stacksize != 1 {
		t.Fatalf("stacksize = %d, want 1", obj.Stacksize)
	}
	if len(obj.Lnotab) != 0 {
		t.Fatalf("co_lnotab = %x, want empty", obj.Lnotab)
	}
}

// TestAssembleJumpForward covers S2: a JUMP_FORWARD whose oparg is the
// byte distance to B2's start block, with B1 ordered before B2.
func TestAssembleJumpForward(t *testing.T) {
	g := cfg.NewFlowGraph()
	b2 := g.NewBlock()

	g.Emit(opcode.JumpForward, b2)
	g.NextBlock() // b1: the block lexically following entry, still fall-through-linked
	g.Emit(opcode.LoadConst, code.Int(1))
	g.Emit(opcode.ReturnValue, nil)
	g.NextBlock(b2)
	g.Emit(opcode.LoadConst, code.Int(2))
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}

	// entry(JUMP_FORWARD)=3 bytes, b1=4 bytes(LOAD_CONST+RETURN_VALUE), b2=4 bytes.
	// JUMP_FORWARD oparg = begin[b2] - (0+3) = (3+4) - 3 = 4.
	if obj.Bytecode[0] != opcode.JumpForward.Code {
		t.Fatalf("first opcode = %d, want JUMP_FORWARD", obj.Bytecode[0])
	}
	oparg := int(obj.Bytecode[1]) | int(obj.Bytecode[2])<<8
	if oparg != 4 {
		t.Fatalf("JUMP_FORWARD oparg = %d, want 4", oparg)
	}
}

// TestAssembleDuplicateConst covers S3: LOAD_CONST 7 emitted twice both
// reference the same interned index.
func TestAssembleDuplicateConst(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.Emit(opcode.LoadConst, code.Int(7))
	g.Emit(opcode.LoadConst, code.Int(7))
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(obj.Consts) != 2 {
		t.Fatalf("co_consts = %#v, want 2 entries (docstring, 7)", obj.Consts)
	}
	idx1 := int(obj.Bytecode[1]) | int(obj.Bytecode[2])<<8
	idx2 := int(obj.Bytecode[4]) | int(obj.Bytecode[5])<<8
	if idx1 != 1 || idx2 != 1 {
		t.Fatalf("both LOAD_CONST indices = (%d, %d), want (1, 1)", idx1, idx2)
	}
}

// TestAssembleClassBody covers S4: LOAD_NAME under klass=true adds to
// names only, under klass=false adds to both names and varnames.
func TestAssembleClassBody(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.Klass = true
	g.Emit(opcode.LoadName, "x")
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(obj.Names) != 1 || obj.Names[0] != "x" {
		t.Fatalf("co_names = %v, want [x]", obj.Names)
	}
	for _, v := range obj.Varnames {
		if v == "x" {
			t.Fatalf("co_varnames = %v, must not contain x under klass=true", obj.Varnames)
		}
	}

	g2 := cfg.NewFlowGraph()
	g2.Emit(opcode.LoadName, "x")
	g2.Emit(opcode.ReturnValue, nil)
	obj2, err := Assemble(g2)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, v := range obj2.Varnames {
		if v == "x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("co_varnames = %v, want to contain x under klass=false", obj2.Varnames)
	}
}

// TestAssembleLnotabOverflow covers S5: a 300-byte gap between two
// SET_LINENOs splits into a (255, 0) overflow pair and a (45, 1) remainder.
func TestAssembleLnotabOverflow(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.FirstLineno = 1
	g.Emit(opcode.SetLineno, 1)
	for i := 0; i < 100; i++ {
		g.Emit(opcode.LoadConst, code.Int(int32(i)))
	}
	g.Emit(opcode.SetLineno, 2)
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{255, 0, 45, 1}
	if !bytes.Equal(obj.Lnotab, want) {
		t.Fatalf("co_lnotab = %v, want %v", obj.Lnotab, want)
	}
}

// TestAssembleCellvarReordering covers S6: cellvars that also appear in
// varnames move to the front, in varnames order, ahead of the rest.
func TestAssembleCellvarReordering(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.SetArgs([]string{"a", "b", "c"})
	g.SetCellVars([]string{"c", "a", "x"})
	g.SetFreeVars([]string{"y"})
	g.Emit(opcode.LoadConst, code.None{})
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	wantCellvars := []string{"a", "c", "x"}
	if len(obj.Cellvars) != len(wantCellvars) {
		t.Fatalf("cellvars = %v, want %v", obj.Cellvars, wantCellvars)
	}
	for i, v := range wantCellvars {
		if obj.Cellvars[i] != v {
			t.Fatalf("cellvars = %v, want %v", obj.Cellvars, wantCellvars)
		}
	}
	wantClosure := []string{"a", "c", "x", "y"}
	closure := obj.Closure()
	for i, v := range wantClosure {
		if closure[i] != v {
			t.Fatalf("closure = %v, want %v", closure, wantClosure)
		}
	}
}

// TestAssembleArgcountVarargsAndVarkeywords covers spec.md §4.I step 10:
// VARARGS's decrement happens as soon as the flag is set (cfg.SetFlag),
// VARKEYWORDS's decrement happens here in the assembler. A function
// declared "def f(a, b, *args, **kwargs)" has Varnames = [a, b, args,
// kwargs] but co_argcount must come out to 2.
func TestAssembleArgcountVarargsAndVarkeywords(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.SetArgs([]string{"a", "b", "args", "kwargs"})
	g.SetFlag(code.Varargs)
	g.SetFlag(code.Varkeywords)
	g.Emit(opcode.LoadConst, code.None{})
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	if obj.Argcount != 2 {
		t.Fatalf("Argcount = %d, want 2", obj.Argcount)
	}
}

// TestAssembleCellvarReorderingIgnoresDerefSideEffect covers S6's
// "rearrange cellvars before running the operand encoder" ordering
// (spec.md §4.I step 5 precedes step 7): LOAD_DEREF/STORE_DEREF interns
// their operand into varnames too (spec.md §4.G). Neither "z" nor "x" is
// an argument, so the reorder must place them in their original cellvars
// order regardless of which of them a LOAD_DEREF happens to have touched.
func TestAssembleCellvarReorderingIgnoresDerefSideEffect(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.SetArgs([]string{"a"})
	g.SetCellVars([]string{"z", "x"})
	g.Emit(opcode.LoadDeref, "x")
	g.Emit(opcode.ReturnValue, nil)

	obj, err := Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	wantCellvars := []string{"z", "x"}
	if len(obj.Cellvars) != len(wantCellvars) {
		t.Fatalf("cellvars = %v, want %v", obj.Cellvars, wantCellvars)
	}
	for i, v := range wantCellvars {
		if obj.Cellvars[i] != v {
			t.Fatalf("cellvars = %v, want %v (LOAD_DEREF on %q must not reorder it ahead of %q)", obj.Cellvars, wantCellvars, "x", "z")
		}
	}
}
