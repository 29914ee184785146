package marshal

import (
	"bytes"
	"testing"

	"github.com/go-pyvm/pyasm/code"
)

func TestDumpScalars(t *testing.T) {
	cases := []struct {
		name string
		v    code.Value
		want []byte
	}{
		{"none", code.None{}, []byte{'N'}},
		{"true", code.Bool(true), []byte{'T'}},
		{"false", code.Bool(false), []byte{'F'}},
		{"int", code.Int(2), []byte{'i', 2, 0, 0, 0}},
		{"negative int", code.Int(-1), []byte{'i', 0xff, 0xff, 0xff, 0xff}},
		{"long zero", code.Long(0), []byte{'l', 0, 0, 0, 0}},
		{"string", code.Str("ab"), []byte{'s', 2, 0, 0, 0, 'a', 'b'}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := Dump(buf, c.v); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(buf.Bytes(), c.want) {
				t.Fatalf("got %x, want %x", buf.Bytes(), c.want)
			}
		})
	}
}

func TestDumpLongDigits(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Dump(buf, code.Long(32768)); err != nil {
		t.Fatal(err)
	}
	// 32768 = 1<<15, needs two 15-bit digits: 0 and 1.
	want := []byte{'l', 2, 0, 0, 0, 0, 0, 1, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestDumpTuple(t *testing.T) {
	buf := new(bytes.Buffer)
	v := code.Tuple{code.Int(1), code.Str("x")}
	if err := Dump(buf, v); err != nil {
		t.Fatal(err)
	}
	want := append([]byte{'(', 2, 0, 0, 0}, []byte{'i', 1, 0, 0, 0, 's', 1, 0, 0, 0, 'x'}...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestDumpUnsupported(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Dump(buf, 3.14); err == nil {
		t.Fatal("expected an error for a non-code.Value concrete type")
	}
}
