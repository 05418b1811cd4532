package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Code
	LinkLabel string
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the listing line that assembled the byte at ip.
func (prog *Program) Debug(ip uint8) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program. Unassembled addresses
// are zero.
func (prog *Program) Binary() (bins []uint8) {
	var image [MEMORY_SIZE]uint8
	for ip, code := range prog.Codes() {
		image[ip&ADDRESS_MAX] = uint8(code)
	}

	bins = image[:]
	return
}

// Codes yields each assembled byte with its address.
func (prog *Program) Codes() iter.Seq2[uint8, Code] {
	return func(yield func(ip uint8, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(uint8(op.Ip+n), code) {
					return
				}
			}
		}
	}
}

// String returns the listing, one line per byte.
func (prog *Program) String() (text string) {
	var lines []string
	for _, op := range prog.Opcodes {
		for n, code := range op.Codes {
			line := fmt.Sprintf("%X: %02X  %v", op.Ip+n, uint8(code), code)
			if n == 0 && len(op.Words) > 0 {
				line = fmt.Sprintf("%-20s ; %d: %v", line, op.LineNo, strings.Join(op.Words, " "))
			}
			lines = append(lines, line)
		}
	}

	text = strings.Join(lines, "\n")
	return
}

// Disassemble creates a listing from a memory image, one line per byte.
// Line numbers count from 1 at address 0.
func Disassemble(image []uint8) (prog *Program) {
	prog = &Program{}
	for ip, data := range image {
		code := Code(data)
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: ip + 1,
			Ip:     ip,
			Words:  strings.Fields(code.String()),
			Codes:  []Code{code},
		})
	}

	return
}

// DefaultProgram is a counter: it adds the 1 at address 15 to A and shows
// it, forever.
func DefaultProgram() (prog *Program) {
	image := make([]uint8, MEMORY_SIZE)
	copy(image, []uint8{
		uint8(MakeCode(OP_LDI, 0)),
		uint8(MakeCode(OP_ADD, 15)),
		uint8(MakeCode(OP_OUT, 0)),
		uint8(MakeCode(OP_JMP, 1)),
	})
	image[15] = 1

	return Disassemble(image)
}
