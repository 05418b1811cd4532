// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/sap1/internal"
	"github.com/ezrec/sap1/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

const (
	MEMORY_SIZE  = 16   // Bytes of memory.
	ADDRESS_MAX  = 15   // Highest memory address.
	OPERAND_MASK = 0x0f // Mask of the operand nibble.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"ADDRESS_MAX": fmt.Sprintf("%d", ADDRESS_MAX),
}

// SubtractMode selects the behaviour of the SUB instruction.
type SubtractMode int

//go:generate go tool stringer -linecomment -type=SubtractMode
const (
	// SUB adds B to A without reloading B, as the reference machine does.
	SUB_MODE_ADD = SubtractMode(0) // add
	// SUB loads B from memory and subtracts it from A.
	SUB_MODE_BORROW = SubtractMode(1) // borrow
)

// ParseSubtractMode returns the SubtractMode for a name.
func ParseSubtractMode(name string) (mode SubtractMode, err error) {
	for _, mode = range []SubtractMode{SUB_MODE_ADD, SUB_MODE_BORROW} {
		if mode.String() == name {
			return
		}
	}

	mode = SUB_MODE_ADD
	err = ErrSubtractMode(name)
	return
}

// Cpu is the simulation context for the SAP-1.
type Cpu struct {
	Verbose  bool         // Set to enable verbose logging.
	Subtract SubtractMode // Behaviour of the SUB instruction.

	InstructionReg uint8              // Last fetched instruction.
	ProgCount      uint8              // Address of the next fetch.
	Memory         [MEMORY_SIZE]uint8 // Program and data.
	A              uint8              // Accumulator.
	B              uint8              // Operand register.
	Alu            uint8              // Last ALU result.
	Out            uint8              // Output register.
	Carry          bool               // Sticky carry flag.
	Zero           bool               // Sticky zero flag.
	Halted         bool               // Set once HLT executes.

	Ticks int // Completed cycles since reset.

	output Channel
}

// NewCpu creates a new CPU with the given memory image.
func NewCpu(image [MEMORY_SIZE]uint8) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: image,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.Seq2Concat(maps.All(_cpu_defines), opDefines)
}

// opDefines yields OP_<MNEMONIC> for each defined operation, as its
// instruction byte with a zero operand.
func opDefines(yield func(name, value string) bool) {
	for op := range maps.Keys(opArg) {
		name := "OP_" + strings.ToUpper(op.String())
		if !yield(name, fmt.Sprintf("0x%02x", uint8(MakeCode(op, 0)))) {
			return
		}
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	flag := func(set bool) string {
		if set {
			return "1"
		}
		return "0"
	}

	text += fmt.Sprintf("% 5s: %X\n", "pc", cpu.ProgCount)
	text += fmt.Sprintf("% 5s: %02X %v\n", "ir", cpu.InstructionReg, Code(cpu.InstructionReg))
	text += fmt.Sprintf("% 5s: %02X\n", "a", cpu.A)
	text += fmt.Sprintf("% 5s: %02X\n", "b", cpu.B)
	text += fmt.Sprintf("% 5s: %02X\n", "alu", cpu.Alu)
	text += fmt.Sprintf("% 5s: %02X\n", "out", cpu.Out)
	text += fmt.Sprintf("% 5s: c=%v z=%v h=%v\n", "flags", flag(cpu.Carry), flag(cpu.Zero), flag(cpu.Halted))

	var mem []string
	for _, data := range cpu.Memory {
		mem = append(mem, fmt.Sprintf("%02X", data))
	}
	text += fmt.Sprintf("% 5s: %v\n", "mem", strings.Join(mem, " "))

	return
}

// SetOutput attaches the channel that receives the output register
// after every cycle. A nil channel detaches it.
func (cpu *Cpu) SetOutput(output Channel) {
	cpu.output = output
}

// Output returns the attached output channel.
func (cpu *Cpu) Output() Channel {
	return cpu.output
}

// Reset the CPU state.
// - Clears the registers, flags and halt state.
// - Zeros the cycle counter.
// - Rewinds the output channel.
// - Loads memory from the boot channel, zero filling any remainder.
func (cpu *Cpu) Reset(boot Channel) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.InstructionReg = 0
	cpu.ProgCount = 0
	cpu.A = 0
	cpu.B = 0
	cpu.Alu = 0
	cpu.Out = 0
	cpu.Carry = false
	cpu.Zero = false
	cpu.Halted = false
	cpu.Ticks = 0
	clear(cpu.Memory[:])

	if cpu.output != nil {
		cpu.output.Rewind()
	}

	if boot == nil {
		return
	}

	boot.Rewind()
	image, err := io.ReceiveAll(boot, MEMORY_SIZE)
	if errors.Is(err, io.ErrChannelOverrun) {
		err = ErrImageSize
	}
	if err != nil {
		return
	}

	copy(cpu.Memory[:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// FetchCode fetches the instruction at the program counter into the
// instruction register, and advances the program counter.
func (cpu *Cpu) FetchCode() (code Code) {
	code = Code(cpu.Memory[cpu.ProgCount&ADDRESS_MAX])
	cpu.InstructionReg = uint8(code)

	cpu.ProgCount++
	if cpu.ProgCount > ADDRESS_MAX {
		cpu.ProgCount = 0
	}

	return
}

// Tick executes a single fetch, decode and execute cycle, then shows the
// output register on the output channel.
//
// Once halted, Tick returns ErrHalted and changes nothing. The cycle that
// executes HLT shows nothing.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	ip := cpu.ProgCount & ADDRESS_MAX
	code := cpu.FetchCode()

	if cpu.Verbose {
		log.Printf("%x: %v", ip, code)
	}

	cpu.Execute(code)

	if cpu.Halted {
		if cpu.Verbose {
			log.Printf("cpu: halted after %d ticks", cpu.Ticks)
		}
		return
	}

	cpu.Ticks++

	if cpu.output != nil {
		err = cpu.output.Send(cpu.Out)
		if err != nil {
			err = errors.Join(ErrOutput, err)
			return
		}
	}

	return
}

// Execute executes a single decoded instruction.
// Undefined operations are no-ops.
func (cpu *Cpu) Execute(code Code) {
	n := code.Operand()

	switch code.Op() {
	case OP_NOP:
		// pass
	case OP_LDA:
		cpu.A = cpu.Memory[n]
	case OP_ADD:
		cpu.B = cpu.Memory[n]
		cpu.doAdd()
	case OP_SUB:
		switch cpu.Subtract {
		case SUB_MODE_BORROW:
			cpu.B = cpu.Memory[n]
			cpu.doSub()
		default:
			// B is not reloaded, and the carry is untouched.
			carry := cpu.Carry
			cpu.doAdd()
			cpu.Carry = carry
		}
	case OP_STA:
		cpu.Memory[n] = cpu.A
	case OP_LDI:
		cpu.A = n
	case OP_JMP:
		cpu.ProgCount = n
	case OP_JC:
		if cpu.Carry {
			cpu.ProgCount = n
		}
	case OP_JZ:
		if cpu.Zero {
			cpu.ProgCount = n
		}
	case OP_OUT:
		cpu.Out = cpu.A
	case OP_HLT:
		cpu.Halted = true
	default:
		// Undefined operations are no-ops.
	}
}

// doAdd adds B to A through the ALU, setting (never clearing) the flags.
func (cpu *Cpu) doAdd() {
	sum := uint16(cpu.A) + uint16(cpu.B)
	cpu.Alu = uint8(sum)
	if sum > 0xff {
		cpu.Carry = true
	}
	if cpu.Alu == 0 {
		cpu.Zero = true
	}
	cpu.A = cpu.Alu
}

// doSub subtracts B from A through the ALU, setting (never clearing) the
// flags. Carry is set when there is no borrow.
func (cpu *Cpu) doSub() {
	cpu.Alu = cpu.A - cpu.B
	if cpu.A >= cpu.B {
		cpu.Carry = true
	}
	if cpu.Alu == 0 {
		cpu.Zero = true
	}
	cpu.A = cpu.Alu
}
