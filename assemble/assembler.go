package assemble

import (
	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/intern"
)

// Assemble runs the Code-Object Assembler (spec.md §4.I): it orchestrates
// the stack-depth tracker, block orderer, flattener, operand encoder, and
// byte packer over g and produces the finished code.Object. Nested
// FlowGraphs referenced as LOAD_CONST operands are assembled recursively,
// depth-first, each into its own disjoint intern tables (spec.md §5); a
// failure in a child assembly aborts the whole compilation.
func Assemble(g *cfg.FlowGraph) (*code.Object, error) {
	stacksize := g.MaxStackDepth()

	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	flat := Flatten(g, order)

	consts := &intern.Table{}
	names := &intern.StringTable{}
	varnames := &intern.StringTable{}
	closure := &intern.StringTable{}

	// Seed varnames with the client-supplied argument/local names in
	// their existing order, so encoding's IndexOf calls append new locals
	// after them rather than reassigning their indices (spec.md §4.G/§6).
	for _, v := range g.Varnames {
		varnames.IndexOf(v)
	}

	// Rearrange cellvars against varnames as it stands right here -- argument
	// names only, before the Operand Encoder's LOAD_FAST/STORE_FAST and
	// LOAD_DEREF/STORE_DEREF side effects add anything else to varnames
	// (spec.md §4.I step 5 runs before step 7, the encoder).
	cellvars := reorderCellvars(varnames.Values(), g.Cellvars)

	// consts[0] is always the docstring, possibly None (spec.md §4.I step 4).
	doc := g.Docstring
	if doc == nil {
		doc = code.None{}
	}
	consts.IndexOf(doc)

	enc := &Encoder{Consts: consts, Names: names, Varnames: varnames, Closure: closure, Klass: g.Klass}

	encoded := make([]Flat, len(flat))
	for i, f := range flat {
		ef, err := enc.Encode(f)
		if err != nil {
			return nil, err
		}
		encoded[i] = ef
	}

	bytecode, lnotab, err := Pack(encoded, g.FirstLineno)
	if err != nil {
		return nil, err
	}

	// VARARGS already decremented argcount when the flag was set (spec.md
	// §4.I step 10); only VARKEYWORDS's **kwargs slot is removed here.
	argcount := g.Argcount
	if g.Flags.Has(code.Varkeywords) {
		argcount--
	}

	nlocals := 0
	if g.Flags.Has(code.NewLocals) {
		nlocals = varnames.Len()
	}

	obj := &code.Object{
		Name:        g.Name,
		Filename:    g.Filename,
		Flags:       g.Flags,
		Docstring:   doc,
		Argcount:    argcount,
		Nlocals:     nlocals,
		Stacksize:   stacksize,
		Bytecode:    bytecode,
		Consts:      consts.Values(),
		Names:       names.Values(),
		Varnames:    varnames.Values(),
		Freevars:    g.Freevars,
		Cellvars:    cellvars,
		FirstLineno: g.FirstLineno,
		Lnotab:      lnotab,
	}
	return obj, nil
}

// reorderCellvars rearranges cellvars so that entries also present in
// varnames come first (preserving varnames order), followed by the rest
// in their original cellvars order (spec.md §4.I step 5).
func reorderCellvars(varnames, cellvars []string) []string {
	inCellvars := make(map[string]bool, len(cellvars))
	for _, c := range cellvars {
		inCellvars[c] = true
	}

	out := make([]string, 0, len(cellvars))
	placed := make(map[string]bool, len(cellvars))
	for _, v := range varnames {
		if inCellvars[v] && !placed[v] {
			out = append(out, v)
			placed[v] = true
		}
	}
	for _, c := range cellvars {
		if !placed[c] {
			out = append(out, c)
			placed[c] = true
		}
	}
	return out
}
