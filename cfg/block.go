// Package cfg implements the control-flow-graph half of the assembler
// pipeline: Block and FlowGraph (spec.md §4.B/§4.C), the block orderer
// (§4.D), and the stack-depth tracker (§4.E).
//
// Blocks are addressed by a stable id rather than by pointer, so that
// next/prev/out-edge links never form owning reference cycles and so that
// iteration over an unordered set of ids is deterministic across runs —
// the reproducibility invariant of spec.md §5. This mirrors wasm.Module's
// index-space pattern (FunctionIndexSpace, GlobalIndexSpace): entities are
// addressed by position/id, not by pointer graph.
package cfg

import "github.com/go-pyvm/pyasm/opcode"

// BlockID is the stable identity of a Block within one FlowGraph (and any
// graphs nested under it, when they share a counter — spec.md §5).
type BlockID uint32

// Instruction is a single symbolic instruction (spec.md §3). A 1-field
// instruction has Op.HasArg == false and Arg == nil. A 2-field instruction
// carries a symbolic or already-numeric Arg, whose concrete Go type is
// determined entirely by Op (never by introspecting Arg):
//
//   - jump opcodes (opcode.HasJump)        -> BlockID
//   - LOAD_CONST                           -> code.Value or *cfg.FlowGraph
//   - name-bearing opcodes (LOAD_NAME, ...)-> string
//   - LOAD_FAST/STORE_FAST/DELETE_FAST     -> string
//   - LOAD_DEREF/STORE_DEREF/LOAD_CLOSURE  -> string
//   - COMPARE_OP                           -> string (mnemonic)
//   - SET_LINENO                           -> int (source line number)
//   - everything else                      -> int (already a numeric oparg)
type Instruction struct {
	Op  opcode.Op
	Arg interface{}
}

// Block is a maximal straight-line sequence of instructions with at most
// one fall-through successor (spec.md Glossary).
type Block struct {
	id     BlockID
	Label  string
	Instrs []Instruction

	outOrder []BlockID       // out-edges in order of first insertion
	outSet   map[BlockID]bool

	hasNext bool
	next    BlockID
	hasPrev bool
	prev    BlockID
}

// ID returns b's stable identity.
func (b *Block) ID() BlockID { return b.id }

// Emit appends inst to the block.
func (b *Block) Emit(inst Instruction) {
	b.Instrs = append(b.Instrs, inst)
}

// AddOutEdge records a jump target. Out-edges are a set: repeating the
// same target is a no-op.
func (b *Block) AddOutEdge(target BlockID) {
	if b.outSet == nil {
		b.outSet = make(map[BlockID]bool)
	}
	if b.outSet[target] {
		return
	}
	b.outSet[target] = true
	b.outOrder = append(b.outOrder, target)
}

// OutEdges returns b's out-edges in order of first insertion.
func (b *Block) OutEdges() []BlockID {
	out := make([]BlockID, len(b.outOrder))
	copy(out, b.outOrder)
	return out
}

// Next returns b's fall-through successor, if any.
func (b *Block) Next() (BlockID, bool) { return b.next, b.hasNext }

// Prev returns b's fall-through predecessor, if any.
func (b *Block) Prev() (BlockID, bool) { return b.prev, b.hasPrev }

// setNext links b -> c as a fall-through edge, mirroring it as c.prev = b.
// It panics if either side already has a next/prev link: spec.md §4.B
// documents this as an assertion failure in the source, i.e. a bug, not a
// recoverable error.
func setNext(b, c *Block) {
	if b.hasNext {
		panic("cfg: block already has a next link")
	}
	if c.hasPrev {
		panic("cfg: block already has a prev link")
	}
	b.hasNext = true
	b.next = c.id
	c.hasPrev = true
	c.prev = b.id
}

// Children returns out-edges union next, used during reachability
// traversal (spec.md §4.B).
func (b *Block) Children() []BlockID {
	seen := make(map[BlockID]bool, len(b.outOrder)+1)
	var out []BlockID
	for _, id := range b.outOrder {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if b.hasNext && !seen[b.next] {
		out = append(out, b.next)
	}
	return out
}

// Followers returns next union the targets of any relative-jump
// instruction in b. Absolute jumps are not followers: they can be placed
// anywhere in the emission order (spec.md §4.B).
func (b *Block) Followers() []BlockID {
	seen := make(map[BlockID]bool)
	var out []BlockID
	add := func(id BlockID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if b.hasNext {
		add(b.next)
	}
	for _, inst := range b.Instrs {
		if opcode.HasJrel(inst.Op) {
			if target, ok := inst.Arg.(BlockID); ok {
				add(target)
			}
		}
	}
	return out
}

// HasUnconditionalTransfer reports whether b's last instruction
// unconditionally transfers control (spec.md §4.B), i.e. b has no implicit
// fall-through to whatever would otherwise follow it.
func (b *Block) HasUnconditionalTransfer() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	last := b.Instrs[len(b.Instrs)-1]
	return opcode.Terminal[last.Op.Code]
}
