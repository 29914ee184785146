package asmtext

import (
	"testing"

	"github.com/go-pyvm/pyasm/assemble"
	"github.com/go-pyvm/pyasm/code"
)

func TestParseEmptyFunction(t *testing.T) {
	src := []byte(`.name f
.filename t.py

    LOAD_CONST none
    RETURN_VALUE
`)
	g, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "f" || g.Filename != "t.py" {
		t.Fatalf("header = %q/%q, want f/t.py", g.Name, g.Filename)
	}

	obj, err := assemble.Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(obj.Consts) != 1 || !code.Equal(obj.Consts[0], code.None{}) {
		t.Fatalf("consts = %#v, want (None,)", obj.Consts)
	}
}

func TestParseJumpForward(t *testing.T) {
	src := []byte(`.name f
    JUMP_FORWARD @b2
b1:
    LOAD_CONST int:1
    RETURN_VALUE
b2:
    LOAD_CONST int:2
    RETURN_VALUE
`)
	g, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := assemble.Assemble(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(obj.Bytecode) == 0 {
		t.Fatal("expected non-empty bytecode")
	}
}

func TestParseDirectivesAndFlags(t *testing.T) {
	src := []byte(`.name g
.args a b
.flags OPTIMIZED NEWLOCALS
    LOAD_FAST a
    RETURN_VALUE
`)
	g, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if g.Argcount != 2 {
		t.Fatalf("argcount = %d, want 2", g.Argcount)
	}
	if !g.Flags.Has(code.Optimized) || !g.Flags.Has(code.NewLocals) {
		t.Fatalf("flags = %v, want OPTIMIZED|NEWLOCALS set", g.Flags)
	}
}

func TestParseUnknownMnemonicErrors(t *testing.T) {
	_, err := Parse([]byte("NOT_A_REAL_OPCODE\n"))
	if err == nil {
		t.Fatal("expected an error for an unrecognized mnemonic")
	}
}
