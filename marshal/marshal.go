// Package marshal encodes a code.Object into the CPython 2.7 `marshal`
// byte format (spec.md §6's output contract), grounded on
// wasm/section.go's tag-prefixed binary encoding (a one-byte SectionID
// followed by a type-specific payload) and wasm/leb128's little-endian
// integer writers, here adapted to marshal's own fixed-width fields rather
// than LEB128 (CPython's format is not self-terminating var-length; every
// scalar is a fixed 4 or 8 bytes).
package marshal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-pyvm/pyasm/code"
)

// Tag is the one-byte type code marshal prefixes every value with, the
// same tag-dispatch shape as wasm.SectionID.
type Tag byte

const (
	TagNone   Tag = 'N'
	TagFalse  Tag = 'F'
	TagTrue   Tag = 'T'
	TagInt    Tag = 'i'
	TagLong   Tag = 'l'
	TagFloat  Tag = 'g'
	TagString Tag = 's'
	TagTuple  Tag = '('
	TagCode   Tag = 'c'
)

// UnsupportedValueError is returned when Dump is asked to marshal a
// code.Value of a type this encoder does not recognize.
type UnsupportedValueError struct {
	Value interface{}
}

func (e UnsupportedValueError) Error() string {
	return fmt.Sprintf("marshal: unsupported value %#v", e.Value)
}

// Dump writes v's marshal encoding to buf.
func Dump(buf *bytes.Buffer, v code.Value) error {
	switch vv := v.(type) {
	case code.None:
		buf.WriteByte(byte(TagNone))
	case code.Bool:
		if vv {
			buf.WriteByte(byte(TagTrue))
		} else {
			buf.WriteByte(byte(TagFalse))
		}
	case code.Int:
		buf.WriteByte(byte(TagInt))
		writeInt32(buf, int32(vv))
	case code.Long:
		buf.WriteByte(byte(TagLong))
		writeLong(buf, int64(vv))
	case code.Float:
		buf.WriteByte(byte(TagFloat))
		writeFloat(buf, float64(vv))
	case code.Str:
		buf.WriteByte(byte(TagString))
		writeBytes(buf, []byte(vv))
	case code.Tuple:
		buf.WriteByte(byte(TagTuple))
		writeInt32(buf, int32(len(vv)))
		for _, elem := range vv {
			if err := Dump(buf, elem); err != nil {
				return err
			}
		}
	case *code.Object:
		return dumpCode(buf, vv)
	default:
		return UnsupportedValueError{Value: v}
	}
	return nil
}

func dumpCode(buf *bytes.Buffer, obj *code.Object) error {
	buf.WriteByte(byte(TagCode))
	writeInt32(buf, int32(obj.Argcount))
	writeInt32(buf, int32(obj.Nlocals))
	writeInt32(buf, int32(obj.Stacksize))
	writeInt32(buf, int32(obj.Flags))

	buf.WriteByte(byte(TagString))
	writeBytes(buf, obj.Bytecode)

	buf.WriteByte(byte(TagTuple))
	writeInt32(buf, int32(len(obj.Consts)))
	for _, c := range obj.Consts {
		if err := Dump(buf, c); err != nil {
			return err
		}
	}

	writeStringTuple(buf, obj.Names)
	writeStringTuple(buf, obj.Varnames)
	writeStringTuple(buf, obj.Freevars)
	writeStringTuple(buf, obj.Cellvars)

	buf.WriteByte(byte(TagString))
	writeBytes(buf, []byte(obj.Filename))
	buf.WriteByte(byte(TagString))
	writeBytes(buf, []byte(obj.Name))

	writeInt32(buf, int32(obj.FirstLineno))

	buf.WriteByte(byte(TagString))
	writeBytes(buf, obj.Lnotab)
	return nil
}

func writeStringTuple(buf *bytes.Buffer, ss []string) {
	buf.WriteByte(byte(TagTuple))
	writeInt32(buf, int32(len(ss)))
	for _, s := range ss {
		buf.WriteByte(byte(TagString))
		writeBytes(buf, []byte(s))
	}
}

func writeInt32(buf *bytes.Buffer, n int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	buf.Write(tmp[:])
}

func writeFloat(buf *bytes.Buffer, f float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
	buf.Write(tmp[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeInt32(buf, int32(len(b)))
	buf.Write(b)
}

// writeLong encodes n in CPython's TYPE_LONG digit format: a signed digit
// count (negative for negative values, 0 for zero) followed by that many
// 15-bit digits, each stored as a little-endian uint16.
func writeLong(buf *bytes.Buffer, n int64) {
	neg := n < 0
	mag := uint64(n)
	if neg {
		mag = uint64(-n)
	}

	var digits []uint16
	if mag == 0 {
		digits = nil
	}
	for mag != 0 {
		digits = append(digits, uint16(mag&0x7FFF))
		mag >>= 15
	}

	count := int32(len(digits))
	if neg {
		count = -count
	}
	writeInt32(buf, count)
	for _, d := range digits {
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], d)
		buf.Write(tmp[:])
	}
}
