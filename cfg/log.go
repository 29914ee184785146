package cfg

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo mirrors wasm/log.go's toggle and records the mode last
// set by SetDebugMode. Only SetDebugMode redirects the trace output of the
// orderer and depth tracker; assigning PrintDebugInfo directly does not.
var PrintDebugInfo = false

var logger = log.New(ioutil.Discard, "cfg: ", log.Lshortfile)

// SetDebugMode flips PrintDebugInfo and repoints the package logger at
// os.Stderr (or back to io.Discard), so it can be toggled at any point
// in a program's life, not just before init.
func SetDebugMode(v bool) {
	PrintDebugInfo = v
	var w io.Writer = ioutil.Discard
	if v {
		w = os.Stderr
	}
	logger.SetOutput(w)
}
