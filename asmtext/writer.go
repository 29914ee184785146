package asmtext

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/opcode"
)

// Write renders obj's header and bytecode back into asmtext notation,
// grounded on wast/write.go's bufio-backed writer shape. Unlike Parse,
// this does not reconstruct a block graph: it walks the packed bytecode
// linearly, decoding each instruction's already-resolved index oparg back
// into a human-readable operand, the way a disassembler does.
func Write(w io.Writer, obj *code.Object) error {
	wr := &writer{bw: bufio.NewWriter(w), obj: obj}
	wr.writeHeader()
	wr.writeInstructions()
	return wr.bw.Flush()
}

type writer struct {
	bw  *bufio.Writer
	obj *code.Object
}

func (w *writer) writeHeader() {
	fmt.Fprintf(w.bw, ".name %s\n", w.obj.Name)
	fmt.Fprintf(w.bw, ".filename %s\n", w.obj.Filename)
	fmt.Fprintf(w.bw, ".firstlineno %d\n", w.obj.FirstLineno)
	if len(w.obj.Varnames) > 0 {
		fmt.Fprintf(w.bw, ".args")
		for i := 0; i < w.obj.Argcount && i < len(w.obj.Varnames); i++ {
			fmt.Fprintf(w.bw, " %s", w.obj.Varnames[i])
		}
		fmt.Fprintln(w.bw)
	}
	if len(w.obj.Freevars) > 0 {
		fmt.Fprintf(w.bw, ".freevars")
		for _, f := range w.obj.Freevars {
			fmt.Fprintf(w.bw, " %s", f)
		}
		fmt.Fprintln(w.bw)
	}
	if len(w.obj.Cellvars) > 0 {
		fmt.Fprintf(w.bw, ".cellvars")
		for _, c := range w.obj.Cellvars {
			fmt.Fprintf(w.bw, " %s", c)
		}
		fmt.Fprintln(w.bw)
	}
	fmt.Fprintln(w.bw)
}

func (w *writer) writeInstructions() {
	lines := decodeLnotab(w.obj.FirstLineno, w.obj.Lnotab)

	code := w.obj.Bytecode
	pc := 0
	for pc < len(code) {
		if line, ok := lines[pc]; ok {
			fmt.Fprintf(w.bw, "    ; line %d\n", line)
		}
		op, err := opcode.Lookup(code[pc])
		if err != nil {
			fmt.Fprintf(w.bw, "    ; %v\n", err)
			pc++
			continue
		}
		if !op.HasArg {
			fmt.Fprintf(w.bw, "    %s\n", op.Name)
			pc++
			continue
		}
		arg := int(code[pc+1]) | int(code[pc+2])<<8
		fmt.Fprintf(w.bw, "    %s %s\n", op.Name, w.formatOperand(op, arg))
		pc += 3
	}
}

// formatOperand renders an already-encoded index oparg back to a readable
// symbol by looking it up in the object's own tables, when the opcode
// names one.
func (w *writer) formatOperand(op opcode.Op, arg int) string {
	switch {
	case opcode.HasJrel(op), opcode.HasJabs(op):
		return fmt.Sprintf("@off%d", arg)
	case op.Code == opcode.LoadConst.Code:
		if arg >= 0 && arg < len(w.obj.Consts) {
			return formatConst(w.obj.Consts[arg])
		}
	case op.Code == opcode.LoadFast.Code, op.Code == opcode.StoreFast.Code, op.Code == opcode.DeleteFast.Code:
		if arg >= 0 && arg < len(w.obj.Varnames) {
			return w.obj.Varnames[arg]
		}
	case op.Code == opcode.LoadName.Code, op.Code == opcode.StoreName.Code, op.Code == opcode.DeleteName.Code,
		op.Code == opcode.LoadAttr.Code, op.Code == opcode.StoreAttr.Code, op.Code == opcode.DeleteAttr.Code,
		op.Code == opcode.LoadGlobal.Code, op.Code == opcode.StoreGlobal.Code, op.Code == opcode.DeleteGlobal.Code,
		op.Code == opcode.ImportName.Code, op.Code == opcode.ImportFrom.Code:
		if arg >= 0 && arg < len(w.obj.Names) {
			return w.obj.Names[arg]
		}
	case op.Code == opcode.LoadDeref.Code, op.Code == opcode.StoreDeref.Code, op.Code == opcode.LoadClosure.Code:
		closure := w.obj.Closure()
		if arg >= 0 && arg < len(closure) {
			return closure[arg]
		}
	case op.Code == opcode.CompareOp.Code:
		if arg >= 0 && arg < len(opcode.CompareOps) {
			return opcode.CompareOps[arg]
		}
	}
	return fmt.Sprintf("%d", arg)
}

func formatConst(v code.Value) string {
	switch vv := v.(type) {
	case code.None:
		return "none"
	case code.Bool:
		if vv {
			return "true"
		}
		return "false"
	case code.Int:
		return fmt.Sprintf("int:%d", int32(vv))
	case code.Long:
		return fmt.Sprintf("long:%d", int64(vv))
	case code.Float:
		return fmt.Sprintf("float:%g", float64(vv))
	case code.Str:
		return fmt.Sprintf("%q", string(vv))
	case *code.Object:
		return fmt.Sprintf("<code %s>", vv.Name)
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// decodeLnotab replays lnotab into a map from byte offset to source line,
// the inverse of assemble's lineTable encoder (spec.md §8 property 7).
func decodeLnotab(firstLineno int, lnotab []byte) map[int]int {
	out := map[int]int{0: firstLineno}
	addr, line := 0, firstLineno
	for i := 0; i+1 < len(lnotab); i += 2 {
		addr += int(lnotab[i])
		line += int(lnotab[i+1])
		out[addr] = line
	}
	return out
}
