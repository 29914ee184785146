// Command pyasm-dump assembles an asmtext source file and prints its
// code-object header, disassembly, and/or marshal hex dump, grounded on
// cmd/wasm-dump/main.go's flag-driven, per-file process() shape.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/go-pyvm/pyasm/asmtext"
	"github.com/go-pyvm/pyasm/assemble"
	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/marshal"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyasm-dump [options] file1.pyasm [file2.pyasm [...]]

ex:
 $> pyasm-dump -d ./file1.pyasm

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagHeader  = flag.Bool("h", false, "print the code-object header")
	flagDis     = flag.Bool("d", false, "disassemble the assembled bytecode")
	flagHex     = flag.Bool("x", false, "hex-dump the marshaled code object")
)

func main() {
	log.SetPrefix("pyasm-dump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
	}
	if !*flagHeader && !*flagDis && !*flagHex {
		flag.Usage()
		log.Printf("at least one of -d, -h or -x must be given")
		os.Exit(1)
	}

	cfg.SetDebugMode(*flagVerbose)

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Println()
		}
		process(fname)
	}
}

func process(fname string) {
	src, err := ioutil.ReadFile(fname)
	if err != nil {
		log.Fatalf("could not read %q: %v", fname, err)
	}

	g, err := asmtext.Parse(src)
	if err != nil {
		log.Fatalf("could not parse %q: %v", fname, err)
	}

	obj, err := assemble.Assemble(g)
	if err != nil {
		log.Fatalf("could not assemble %q: %v", fname, err)
	}

	if *flagHeader {
		printHeader(fname, obj)
	}
	if *flagDis {
		printDis(fname, obj)
	}
	if *flagHex {
		printHex(fname, obj)
	}
}

func printHeader(fname string, obj *code.Object) {
	fmt.Printf("%s: code object %q\n\n", fname, obj.Name)
	fmt.Printf("  filename:    %s\n", obj.Filename)
	fmt.Printf("  argcount:    %d\n", obj.Argcount)
	fmt.Printf("  nlocals:     %d\n", obj.Nlocals)
	fmt.Printf("  stacksize:   %d\n", obj.Stacksize)
	fmt.Printf("  flags:       %#x\n", uint32(obj.Flags))
	fmt.Printf("  firstlineno: %d\n", obj.FirstLineno)
	fmt.Printf("  names:       %v\n", obj.Names)
	fmt.Printf("  varnames:    %v\n", obj.Varnames)
	fmt.Printf("  freevars:    %v\n", obj.Freevars)
	fmt.Printf("  cellvars:    %v\n", obj.Cellvars)
}

func printDis(fname string, obj *code.Object) {
	fmt.Printf("%s: disassembly of %q\n\n", fname, obj.Name)
	if err := asmtext.Write(os.Stdout, obj); err != nil {
		log.Fatalf("could not disassemble %q: %v", fname, err)
	}
}

func printHex(fname string, obj *code.Object) {
	buf := new(bytes.Buffer)
	if err := marshal.Dump(buf, obj); err != nil {
		log.Fatalf("could not marshal %q: %v", fname, err)
	}
	fmt.Printf("%s: marshaled code object (%d bytes)\n\n", fname, buf.Len())
	fmt.Print(hexDump(buf.Bytes()))
}

func hexDump(b []byte) string {
	var out bytes.Buffer
	for i := 0; i < len(b); i += 16 {
		end := i + 16
		if end > len(b) {
			end = len(b)
		}
		fmt.Fprintf(&out, "%08x  ", i)
		for j := i; j < end; j++ {
			fmt.Fprintf(&out, "%02x ", b[j])
		}
		out.WriteByte('\n')
	}
	return out.String()
}
