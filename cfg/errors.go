package cfg

import "errors"

// ErrCircularEmissionDependency is returned by FlowGraph.Order when the
// must-precede-in-emission relation among the remaining blocks has no
// satisfiable next block. spec.md §4.D calls this "a bug": a cycle in the
// fall-through/relative-jump precedence relation, not a recoverable input
// condition.
var ErrCircularEmissionDependency = errors.New("cfg: circular emission dependency among remaining blocks")
