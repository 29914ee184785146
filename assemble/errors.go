package assemble

import "fmt"

// OperandRangeError is a fatal error: a packed instruction's oparg does
// not fit the 16-bit operand field (spec.md §4.H/§7).
type OperandRangeError struct {
	Opcode string
	Oparg  int
}

func (e OperandRangeError) Error() string {
	return fmt.Sprintf("assemble: operand %d for %s out of range [0, 65535]", e.Oparg, e.Opcode)
}

// UnrepresentableConstError is a fatal error: a LOAD_CONST operand is of a
// type consts cannot hold (spec.md §7).
type UnrepresentableConstError struct {
	Value interface{}
}

func (e UnrepresentableConstError) Error() string {
	return fmt.Sprintf("assemble: LOAD_CONST operand %#v is not representable in consts", e.Value)
}

// UnencodableOperandError is a fatal error: a 2-field instruction's oparg
// is neither a recognized symbolic operand for its opcode nor already an
// integer (spec.md §4.G).
type UnencodableOperandError struct {
	Opcode string
	Arg    interface{}
}

func (e UnencodableOperandError) Error() string {
	return fmt.Sprintf("assemble: opcode %s has unencodable operand %#v", e.Opcode, e.Arg)
}
