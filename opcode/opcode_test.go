package opcode

import "testing"

func TestLookupAndByNameRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		op   Op
	}{
		{"LOAD_CONST", LoadConst},
		{"RETURN_VALUE", ReturnValue},
		{"JUMP_FORWARD", JumpForward},
		{"SET_LINENO", SetLineno},
	}
	for _, c := range cases {
		byName, err := ByName(c.name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", c.name, err)
		}
		if byName != c.op {
			t.Fatalf("ByName(%q) = %+v, want %+v", c.name, byName, c.op)
		}
		byCode, err := Lookup(c.op.Code)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", c.op.Code, err)
		}
		if byCode != c.op {
			t.Fatalf("Lookup(%d) = %+v, want %+v", c.op.Code, byCode, c.op)
		}
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	if _, err := Lookup(200); err == nil {
		t.Fatalf("Lookup(200) succeeded, want UnknownOpcodeError")
	}
	if _, err := ByName("NOT_A_REAL_OP"); err == nil {
		t.Fatalf("ByName succeeded, want UnknownOpcodeError")
	}
}

func TestJumpPredicates(t *testing.T) {
	if !HasJrel(JumpForward) {
		t.Fatalf("JUMP_FORWARD should be a relative jump")
	}
	if HasJabs(JumpForward) {
		t.Fatalf("JUMP_FORWARD should not be an absolute jump")
	}
	if !HasJabs(JumpAbsolute) {
		t.Fatalf("JUMP_ABSOLUTE should be an absolute jump")
	}
	if !HasJump(PopJumpIfFalse) {
		t.Fatalf("POP_JUMP_IF_FALSE should be a jump")
	}
	if HasJump(LoadConst) {
		t.Fatalf("LOAD_CONST should not be a jump")
	}
}

func TestCompareOpIndex(t *testing.T) {
	idx, err := CompareOpIndex("==")
	if err != nil || idx != 2 {
		t.Fatalf("CompareOpIndex(==) = %d, %v, want 2, nil", idx, err)
	}
	if _, err := CompareOpIndex("<=>"); err == nil {
		t.Fatalf("CompareOpIndex(<=>) succeeded, want error")
	}
}

func TestTerminalOpcodes(t *testing.T) {
	if !Terminal[ReturnValue.Code] {
		t.Fatalf("RETURN_VALUE should be terminal")
	}
	if Terminal[LoadConst.Code] {
		t.Fatalf("LOAD_CONST should not be terminal")
	}
}
