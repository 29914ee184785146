package cfg

import (
	"testing"

	"github.com/go-pyvm/pyasm/opcode"
)

func TestMaxStackDepthLinear(t *testing.T) {
	g := NewFlowGraph()
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.BinaryAdd, nil)
	g.Emit(opcode.ReturnValue, nil)

	if got := g.MaxStackDepth(); got != 2 {
		t.Fatalf("MaxStackDepth = %d, want 2", got)
	}
}

func TestMaxStackDepthBranch(t *testing.T) {
	g := NewFlowGraph()
	b2 := g.NewBlock()
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.PopJumpIfFalse, b2)
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.ReturnValue, nil)
	g.StartBlock(b2)
	g.Emit(opcode.ReturnValue, nil)

	// entry alone reaches depth 3 (three LOAD_CONSTs before the
	// PopJumpIfFalse pops one back to 2); the shared global-visited
	// traversal still discovers this since entry is always visited first.
	if got := g.MaxStackDepth(); got != 3 {
		t.Fatalf("MaxStackDepth = %d, want 3", got)
	}
}

func TestMaxStackDepthIgnoresSetLineno(t *testing.T) {
	g := NewFlowGraph()
	g.Emit(opcode.SetLineno, 1)
	g.Emit(opcode.LoadConst, 0)
	g.Emit(opcode.ReturnValue, nil)

	if got := g.MaxStackDepth(); got != 1 {
		t.Fatalf("MaxStackDepth = %d, want 1", got)
	}
}
