// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/ezrec/sap1/cpu"
	"github.com/ezrec/sap1/emulator"
	"github.com/ezrec/sap1/io"
	"github.com/ezrec/sap1/translate"
)

func main() {
	var compile string
	var image string
	var hex bool
	var save bool
	var output string
	var limit int
	var timeout time.Duration
	var subtract string
	var listing bool
	var defines bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".sap file to compile")
	flag.StringVar(&image, "m", "", "memory image file to load")
	flag.BoolVar(&hex, "x", false, "Memory image files are hex text")
	flag.BoolVar(&save, "s", false, "Save memory image to output, do not execute")
	flag.StringVar(&output, "o", "-", "Output")
	flag.IntVar(&limit, "n", 0, "Cycle limit (0 runs until halted)")
	flag.DurationVar(&timeout, "t", 0, "Run timeout (0 for none)")
	flag.StringVar(&subtract, "sub", cpu.SUB_MODE_ADD.String(), "SUB behaviour: add or borrow")
	flag.BoolVar(&listing, "l", false, "Print the program listing")
	flag.BoolVar(&defines, "D", false, "Print the assembler predefines")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(image) != 0 {
		log.Fatalf("%v: -c and -m are exclusive", os.Args[0])
	}

	mode, err := cpu.ParseSubtractMode(subtract)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Cpu.Subtract = mode

	if defines {
		all := maps.Collect(emu.Defines())
		for _, name := range slices.Sorted(maps.Keys(all)) {
			fmt.Printf("%v %v\n", name, all[name])
		}
		return
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a memory image.
	if len(image) != 0 {
		inf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		defer inf.Close()

		var ch io.Channel = &io.Tape{Input: inf}
		if hex {
			ch = &io.Hex{Input: inf}
		}
		data, err := io.ReceiveAll(ch, cpu.MEMORY_SIZE)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		emu.Program = cpu.Disassemble(data)
	}

	if listing {
		fmt.Fprintln(os.Stderr, emu.Program.String())
	}

	ouf := os.Stdout
	if output != "-" {
		ouf, err = os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
	}

	if save {
		var ch io.Channel = &io.Tape{Output: ouf}
		if hex {
			ch = &io.Hex{Output: ouf}
		}
		err = io.SendAll(ch, emu.Program.Binary())
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	emu.Display.Output = ouf

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err = emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	ticks, err := emu.Run(ctx, limit)
	if err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}

	if verbose {
		switch {
		case emu.Cpu.Halted:
			translate.Fprintf(os.Stderr, "halted after %d cycles\n", ticks)
		case err != nil:
			translate.Fprintf(os.Stderr, "stopped after %d cycles: %v\n", ticks, err)
		default:
			translate.Fprintf(os.Stderr, "stopped after %d cycles\n", ticks)
		}
		fmt.Fprint(os.Stderr, emu.Cpu.String())
	}
}
