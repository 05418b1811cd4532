// Package cpu implements the processor and assembler for the SAP-1
// (Simple-As-Possible) computer.
//
// The CPU has 16 bytes of memory, a 4-bit program counter, an instruction
// register, the A and B registers, an ALU latch, an output register, and
// sticky carry and zero flags. Each instruction is one byte: the operation
// in the high nibble, and a memory address or literal in the low nibble.
//
// The assembler provides a mnemonic assembly language for the SAP-1,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
