// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a SAP-1 CPU: it boots a program into memory,
// clocks the CPU, and shows the output register on a display.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/sap1/cpu"
	"github.com/ezrec/sap1/internal"
	"github.com/ezrec/sap1/io"
)

// Emulator state. CPU + boot ROM + display.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Rom     io.Rom     // Boot ROM, loaded from Program on Reset.
	Display io.Display // Output register display.
}

// NewEmulator creates a new emulator, running the default program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu([cpu.MEMORY_SIZE]uint8{}),
		Program: cpu.DefaultProgram(),
	}

	emu.Cpu.SetOutput(&emu.Display)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	emulator_defines := map[string]string{
		"SUB_MODE": fmt.Sprintf("%d", emu.Cpu.Subtract),
	}

	return internal.Seq2Concat(maps.All(emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the emulator, and boot the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Rom.Data = emu.Program.Binary()

	err = emu.Cpu.Reset(&emu.Rom)
	if err != nil {
		return
	}

	return
}

// Ticks returns the total completed cycles since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns the address of the next instruction.
func (emu *Emulator) Ip() int {
	return int(emu.Cpu.ProgCount)
}

// Code returns the next instruction.
func (emu *Emulator) Code() cpu.Code {
	return cpu.Code(emu.Cpu.Memory[emu.Cpu.ProgCount&cpu.ADDRESS_MAX])
}

// LineNo returns the program line number for the next instruction,
// or 0 if the program did not assemble that address.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.ProgCount)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single cycle of the emulator.
// done is set once the CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Ip()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks the emulator until it halts, limit ticks have run, or the
// context is done. A limit of zero or less runs without a limit.
func (emu *Emulator) Run(ctx context.Context, limit int) (ticks int, err error) {
	for limit <= 0 || ticks < limit {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		ticks++

		if done {
			return
		}
	}

	return
}
