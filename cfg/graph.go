package cfg

import (
	"fmt"

	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/opcode"
)

// counter is the per-compilation-unit block-id source (spec.md §5's
// global_block_counter, scoped to one compilation rather than a process
// global, per the DESIGN NOTES). It is shared between a FlowGraph and any
// nested FlowGraph produced for a LOAD_CONST child code object, so ids
// stay unique across the whole compilation unit and set iteration over
// mixed blocks remains deterministic.
type counter struct{ next uint32 }

func (c *counter) alloc() BlockID {
	id := BlockID(c.next)
	c.next++
	return id
}

// FlowGraph owns a set of blocks with a distinguished entry and exit, and
// the compilation-unit metadata needed to assemble them into a
// code.Object (spec.md §4.C, §6). It accepts emit and maintains the
// current insertion block; emission is strictly append-only and
// single-pass, the graph is never re-entered after assembly begins.
type FlowGraph struct {
	ctr *counter

	arena   map[BlockID]*Block
	order   []BlockID // order blocks were created in, for deterministic iteration
	entry   BlockID
	exit    BlockID
	current BlockID

	Name      string
	Filename  string
	Flags     code.Flags
	Docstring code.Value
	Argcount  int
	Varnames  []string // set by SetArgs; locals first referenced by the body are added to the assembled object's varnames, not here
	Freevars  []string
	Cellvars  []string
	Klass     bool // true when compiling a class body (spec.md §4.G)

	FirstLineno int
}

// NewFlowGraph creates a fresh compilation unit: a new entry block, a new
// exit block (labeled "exit" per spec.md §3), and a fresh block counter.
func NewFlowGraph() *FlowGraph {
	return newFlowGraph(&counter{})
}

// NewChildFlowGraph creates a compilation unit for a nested code object
// (e.g. a function or class body referenced by a LOAD_CONST), sharing
// parent's block counter so ids remain unique across the whole
// compilation (spec.md §5).
func NewChildFlowGraph(parent *FlowGraph) *FlowGraph {
	return newFlowGraph(parent.ctr)
}

func newFlowGraph(ctr *counter) *FlowGraph {
	g := &FlowGraph{ctr: ctr, arena: make(map[BlockID]*Block)}
	entry := g.newBlockLocked()
	g.entry = entry.id
	g.current = entry.id
	exit := g.newBlockLocked()
	exit.Label = "exit"
	g.exit = exit.id
	return g
}

func (g *FlowGraph) newBlockLocked() *Block {
	id := g.ctr.alloc()
	b := &Block{id: id}
	g.arena[id] = b
	g.order = append(g.order, id)
	return b
}

// NewBlock allocates a new, unlinked block.
func (g *FlowGraph) NewBlock() BlockID {
	return g.newBlockLocked().id
}

// Block resolves id to its Block. It panics if id is not in this graph:
// the only caller of this ever happens internally on ids this graph
// itself allocated.
func (g *FlowGraph) Block(id BlockID) *Block {
	b, ok := g.arena[id]
	if !ok {
		panic(fmt.Sprintf("cfg: block id %d not found in this graph", id))
	}
	return b
}

// Blocks returns every block id ever allocated in this graph, in
// allocation order.
func (g *FlowGraph) Blocks() []BlockID {
	out := make([]BlockID, len(g.order))
	copy(out, g.order)
	return out
}

// Entry returns the graph's distinguished entry block.
func (g *FlowGraph) Entry() BlockID { return g.entry }

// Exit returns the graph's distinguished exit block.
func (g *FlowGraph) Exit() BlockID { return g.exit }

// Current returns the block new instructions are emitted into.
func (g *FlowGraph) Current() BlockID { return g.current }

// StartBlock sets the insertion cursor to b.
func (g *FlowGraph) StartBlock(b BlockID) {
	g.current = b
}

// StartExitBlock sets the insertion cursor to the graph's exit block.
func (g *FlowGraph) StartExitBlock() {
	g.current = g.exit
}

// NextBlock links current -> b via a fall-through edge, then starts b. If
// b is not given, a fresh block is allocated.
func (g *FlowGraph) NextBlock(b ...BlockID) BlockID {
	var target BlockID
	if len(b) > 0 {
		target = b[0]
	} else {
		target = g.NewBlock()
	}
	setNext(g.Block(g.current), g.Block(target))
	g.StartBlock(target)
	return target
}

// Emit appends an instruction to the current block. When arg is a BlockID
// (a jump target), the graph also records an out-edge from current to
// that target (spec.md §4.C).
func (g *FlowGraph) Emit(op opcode.Op, arg interface{}) {
	g.Block(g.current).Emit(Instruction{Op: op, Arg: arg})
	if target, ok := arg.(BlockID); ok {
		g.Block(g.current).AddOutEdge(target)
	}
}

// SetFlag ORs f into the graph's code-object flags. Setting Varargs also
// decrements Argcount by one, since the trailing *args slot is carried in
// Varnames but must not count as a positional argument (spec.md §4.I step
// 10 assumes this already happened by the time the assembler runs).
func (g *FlowGraph) SetFlag(f code.Flags) {
	g.Flags |= f
	if f == code.Varargs {
		g.Argcount--
	}
}

// SetArgs records the function's positional argument names as the leading
// entries of Varnames (spec.md §6).
func (g *FlowGraph) SetArgs(names []string) {
	g.Argcount = len(names)
	g.Varnames = append(append([]string(nil), names...), g.Varnames...)
}

// SetFreeVars records the free-variable list supplied by the (out of
// scope) symbol-table analyzer.
func (g *FlowGraph) SetFreeVars(names []string) { g.Freevars = names }

// SetCellVars records the cell-variable list supplied by the symbol-table
// analyzer.
func (g *FlowGraph) SetCellVars(names []string) { g.Cellvars = names }

// SetDocstring records the function/class/module docstring, or nil if it
// has none.
func (g *FlowGraph) SetDocstring(doc code.Value) { g.Docstring = doc }
