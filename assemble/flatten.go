// Package assemble implements the back half of the assembler pipeline:
// the Graph Flattener (F), Operand Encoder (G), Byte Packer and Line Table
// (H), and the top-level Code-Object Assembler (I) that orchestrates them
// (spec.md §4.F-I).
package assemble

import (
	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/opcode"
)

// Flat is one instruction after linearization: still carrying a symbolic
// oparg for everything except a jump target, which Flatten has already
// rewritten to a concrete byte offset.
type Flat struct {
	Op     opcode.Op
	Arg    interface{}
	Offset int
}

// size is the number of bytes inst occupies in the packed bytecode
// (spec.md §4.F pass 1): 0 for the zero-width SET_LINENO sentinel, 1 for a
// bare opcode, 3 for a 2-field instruction.
func size(op opcode.Op) int {
	switch {
	case op.Code == opcode.SetLineno.Code:
		return 0
	case op.HasArg:
		return 3
	default:
		return 1
	}
}

// Flatten linearizes g's blocks in the given emission order (spec.md
// §4.F). Pass 1 assigns a byte offset to every instruction, recording
// where each block begins. Pass 2 rescans, rewriting HAS_JREL opargs to
// the relative distance from the instruction following the jump and
// HAS_JABS opargs to the absolute offset of their target block.
func Flatten(g *cfg.FlowGraph, order []cfg.BlockID) []Flat {
	begin := make(map[cfg.BlockID]int, len(order))
	pc := 0
	for _, id := range order {
		begin[id] = pc
		for _, inst := range g.Block(id).Instrs {
			pc += size(inst.Op)
		}
	}

	flat := make([]Flat, 0, pc)
	pc = 0
	for _, id := range order {
		for _, inst := range g.Block(id).Instrs {
			n := size(inst.Op)
			f := Flat{Op: inst.Op, Arg: inst.Arg, Offset: pc}
			switch {
			case opcode.HasJrel(inst.Op):
				target := inst.Arg.(cfg.BlockID)
				f.Arg = begin[target] - (pc + n)
			case opcode.HasJabs(inst.Op):
				target := inst.Arg.(cfg.BlockID)
				f.Arg = begin[target]
			}
			flat = append(flat, f)
			pc += n
		}
	}
	return flat
}
