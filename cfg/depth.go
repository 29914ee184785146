package cfg

import (
	"github.com/go-pyvm/pyasm/internal/stack"
	"github.com/go-pyvm/pyasm/opcode"
)

// MaxStackDepth computes the maximum operand-stack depth reachable from
// entry over any path through the graph (spec.md §4.E). It is an
// iterative depth-first walk using internal/stack as the worklist, in the
// same parallel-stacks shape disasm.Disassemble drives its own
// stackDepths/blockIndices pair, so very deep graphs never recurse.
//
// This is an approximation, preserved from the source by design (spec.md
// §9): a block visited once is never re-walked at a different incoming
// depth, so depth is not propagated precisely across jump edges, and
// MAKE_CLOSURE's free-variable push is not accounted for at all. The VM
// only needs an upper bound, so over-estimating (never under-estimating
// along any one discovered path) is safe.
func (g *FlowGraph) MaxStackDepth() int {
	visited := make(map[BlockID]bool, len(g.order))
	maxDepth := 0

	ids := &stack.Stack{}
	depths := &stack.Stack{}
	ids.Push(uint64(g.entry))
	depths.Push(encodeDepth(0))

	for ids.Len() > 0 {
		id := BlockID(ids.Pop())
		depth := decodeDepth(depths.Pop())

		if visited[id] {
			continue
		}
		visited[id] = true
		logger.Printf("depth: visiting block %d at incoming depth %d", id, depth)

		b := g.Block(id)
		for _, inst := range b.Instrs {
			depth += instructionEffect(inst)
			if depth > maxDepth {
				maxDepth = depth
			}
		}

		children := b.Children()
		if len(children) == 0 && b.Label != "exit" {
			children = []BlockID{g.exit}
		}
		for _, c := range children {
			if !visited[c] {
				ids.Push(uint64(c))
				depths.Push(encodeDepth(depth))
			}
		}
	}
	return maxDepth
}

// encodeDepth/decodeDepth round-trip a possibly-negative depth through the
// stack's uint64 slots via a straight two's-complement reinterpretation.
func encodeDepth(d int) uint64 { return uint64(int64(d)) }
func decodeDepth(v uint64) int { return int(int64(v)) }

// instructionEffect returns a single instruction's stack-depth delta,
// consulting ArgEffect first for opcodes whose effect depends on an
// already-integer oparg, then falling back to the fixed/prefix table.
// SET_LINENO is zero-width and has no stack effect.
func instructionEffect(inst Instruction) int {
	if inst.Op.Code == opcode.SetLineno.Code {
		return 0
	}
	if inst.Op.HasArg {
		if arg, ok := inst.Arg.(int); ok {
			if d, ok := opcode.ArgEffect(inst.Op, arg); ok {
				return d
			}
		}
	}
	d, _ := opcode.Effect(inst.Op)
	return d
}
