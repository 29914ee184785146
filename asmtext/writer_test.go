package asmtext

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-pyvm/pyasm/assemble"
	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/opcode"
)

func TestWriteDisassemblesBasicFunction(t *testing.T) {
	g := cfg.NewFlowGraph()
	g.Name = "f"
	g.Emit(opcode.LoadConst, code.Int(7))
	g.Emit(opcode.ReturnValue, nil)

	obj, err := assemble.Assemble(g)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, obj); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "LOAD_CONST int:7") {
		t.Fatalf("output missing decoded LOAD_CONST operand:\n%s", out)
	}
	if !strings.Contains(out, "RETURN_VALUE") {
		t.Fatalf("output missing RETURN_VALUE:\n%s", out)
	}
}
