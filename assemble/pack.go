package assemble

import (
	"bytes"

	"github.com/go-pyvm/pyasm/opcode"
)

// Pack emits the final bytecode byte string and the packed lnotab
// line-number table from a fully flattened, operand-encoded instruction
// stream (spec.md §4.H).
func Pack(flat []Flat, firstLineno int) ([]byte, []byte, error) {
	buf := new(bytes.Buffer)
	lt := newLineTable()

	for _, f := range flat {
		if f.Op.Code == opcode.SetLineno.Code {
			lt.advance(buf.Len(), f.Arg.(int))
			continue
		}
		buf.WriteByte(f.Op.Code)
		if f.Op.HasArg {
			n, ok := f.Arg.(int)
			if !ok {
				return nil, nil, UnencodableOperandError{Opcode: f.Op.Name, Arg: f.Arg}
			}
			if n < 0 || n > 0xFFFF {
				return nil, nil, OperandRangeError{Opcode: f.Op.Name, Oparg: n}
			}
			buf.WriteByte(byte(n & 0xFF))
			buf.WriteByte(byte((n >> 8) & 0xFF))
		}
	}
	return buf.Bytes(), lt.bytes(), nil
}

// lineTable accumulates the (addr_delta, line_delta) byte pairs of
// spec.md §4.H's lnotab encoding.
type lineTable struct {
	buf     bytes.Buffer
	started bool
	lastLine int
	lastOff  int
}

func newLineTable() *lineTable {
	return &lineTable{}
}

// advance records a SET_LINENO at curOffset. The first call only seeds the
// (last_line, last_off) state -- spec.md §4.H's "first_line (set on first
// SET_LINENO)" -- and emits nothing. Every later call computes the two
// deltas and, unless the line delta is negative (silently dropped, never
// reported -- spec.md §7), appends the run of (255,0)/(addr,255) overflow
// pairs followed by the final (addr,line) remainder pair.
func (lt *lineTable) advance(curOffset, lineno int) {
	if !lt.started {
		lt.started = true
		lt.lastLine = lineno
		lt.lastOff = curOffset
		return
	}

	addr := curOffset - lt.lastOff
	line := lineno - lt.lastLine
	if line < 0 {
		return
	}

	for addr > 255 {
		lt.buf.WriteByte(255)
		lt.buf.WriteByte(0)
		addr -= 255
	}
	for line > 255 {
		lt.buf.WriteByte(byte(addr))
		lt.buf.WriteByte(255)
		addr = 0
		line -= 255
	}
	if addr != 0 || line != 0 {
		lt.buf.WriteByte(byte(addr))
		lt.buf.WriteByte(byte(line))
	}

	lt.lastLine = lineno
	lt.lastOff = curOffset
}

func (lt *lineTable) bytes() []byte {
	return append([]byte(nil), lt.buf.Bytes()...)
}
