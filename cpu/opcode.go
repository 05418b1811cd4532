package cpu

import (
	"fmt"
)

// CodeOp is the operation in the high nibble of an instruction.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_NOP = CodeOp(0)  // nop
	OP_LDA = CodeOp(1)  // lda
	OP_ADD = CodeOp(2)  // add
	OP_SUB = CodeOp(3)  // sub
	OP_STA = CodeOp(4)  // sta
	OP_LDI = CodeOp(5)  // ldi
	OP_JMP = CodeOp(6)  // jmp
	OP_JC  = CodeOp(7)  // jc
	OP_JZ  = CodeOp(8)  // jz
	OP_OUT = CodeOp(14) // out
	OP_HLT = CodeOp(15) // hlt
)

// CodeArg is the meaning of the operand nibble for an operation.
type CodeArg int

const (
	ARG_NONE      = CodeArg(0) // Operand ignored.
	ARG_ADDRESS   = CodeArg(1) // Operand is a memory address.
	ARG_IMMEDIATE = CodeArg(2) // Operand is a literal value.
)

// opArg maps the defined operations to their operand meaning.
var opArg = map[CodeOp]CodeArg{
	OP_NOP: ARG_NONE,
	OP_LDA: ARG_ADDRESS,
	OP_ADD: ARG_ADDRESS,
	OP_SUB: ARG_ADDRESS,
	OP_STA: ARG_ADDRESS,
	OP_LDI: ARG_IMMEDIATE,
	OP_JMP: ARG_ADDRESS,
	OP_JC:  ARG_ADDRESS,
	OP_JZ:  ARG_ADDRESS,
	OP_OUT: ARG_NONE,
	OP_HLT: ARG_NONE,
}

// Defined returns true if the operation has a mnemonic.
// Undefined operations execute as no-ops.
func (op CodeOp) Defined() bool {
	_, ok := opArg[op]
	return ok
}

// Arg returns the meaning of the operand for the operation.
func (op CodeOp) Arg() CodeArg {
	return opArg[op]
}

// Code is a single SAP-1 instruction byte.
type Code uint8

// MakeCode creates an instruction from an operation and a 4-bit operand.
func MakeCode(op CodeOp, operand uint8) Code {
	return Code((uint8(op)&0xf)<<4 | (operand & OPERAND_MASK))
}

// Op returns the operation from the high nibble.
func (code Code) Op() CodeOp {
	return CodeOp(code >> 4)
}

// Operand returns the address or literal from the low nibble.
func (code Code) Operand() uint8 {
	return uint8(code) & OPERAND_MASK
}

// String returns the assembly language representation of this instruction.
// Bytes that no mnemonic can reproduce are shown as .byte data.
func (code Code) String() (out string) {
	op := code.Op()

	switch {
	case !op.Defined():
		out = fmt.Sprintf(".byte 0x%02x", uint8(code))
	case op.Arg() == ARG_NONE && code.Operand() != 0:
		out = fmt.Sprintf(".byte 0x%02x", uint8(code))
	case op.Arg() == ARG_NONE:
		out = op.String()
	default:
		out = fmt.Sprintf("%v %d", op.String(), code.Operand())
	}

	return
}
