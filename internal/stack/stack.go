// Package stack provides a minimal uint64 stack, used by the stack-depth
// tracker both as its block worklist and as the parallel stack of incoming
// depths.
//
// go-interpreter/wagon calls this exact shape "internal/stack" and drives
// it from disasm.Disassemble via Push/Pop/Top/SetTop/Get/Set/Len, but the
// package itself wasn't present in the retrieved copy of that repo; it is
// rebuilt here from those call sites.
package stack

// Stack is a LIFO of uint64 values.
type Stack struct {
	values []uint64
}

// Push appends v to the top of the stack.
func (s *Stack) Push(v uint64) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value. It panics if the stack is empty;
// misusing the stack is treated as an internal bug, not a recoverable error.
func (s *Stack) Pop() uint64 {
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v
}

// Top returns the top value without removing it.
func (s *Stack) Top() uint64 {
	return s.values[len(s.values)-1]
}

// SetTop overwrites the top value.
func (s *Stack) SetTop(v uint64) {
	s.values[len(s.values)-1] = v
}

// Get returns the value at index i (0-based from the bottom).
func (s *Stack) Get(i int) uint64 {
	return s.values[i]
}

// Set overwrites the value at index i (0-based from the bottom).
func (s *Stack) Set(i int, v uint64) {
	s.values[i] = v
}

// Len returns the number of values currently on the stack.
func (s *Stack) Len() int {
	return len(s.values)
}
