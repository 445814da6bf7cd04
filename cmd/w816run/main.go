// Command w816run loads a ROM image onto a flat-RAM 65816 system, runs it
// for a fixed cycle budget or until the core reaches Stopped, and can
// save/restore a JSON snapshot across runs.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lunarlabs/EightSixteenEmu/bus"
	"github.com/lunarlabs/EightSixteenEmu/cpu"
	"github.com/lunarlabs/EightSixteenEmu/device"
	"github.com/lunarlabs/EightSixteenEmu/host"
	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Name:    "w816run",
		Usage:   "run a 65816 ROM image against a flat-RAM system",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rom",
				Aliases:  []string{"r"},
				Usage:    "ROM image loaded at the top of the address space",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "ram",
				Usage: "RAM size in bytes, mapped starting at address 0",
				Value: 0x10000,
			},
			&cli.Uint64Flag{
				Name:  "cycles",
				Usage: "stop after this many bus cycles even if the core hasn't reached Stopped",
				Value: 1_000_000,
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print each disassembled instruction as it executes",
			},
			&cli.StringFlag{
				Name:  "load-state",
				Usage: "directory holding a save-state to restore before running",
			},
			&cli.StringFlag{
				Name:  "save-state",
				Usage: "directory to write a save-state to after running",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	rom, err := device.NewROMFromFile(romPath)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	ramSize := uint32(c.Uint64("ram"))
	ram := device.NewRAM(ramSize)

	m := &bus.Mapper{}
	if err := m.Add(ram, 0, 0, ramSize); err != nil {
		return fmt.Errorf("mapping ram: %w", err)
	}
	romStart := uint32(0x1000000) - rom.Size()
	if err := m.Add(rom, romStart, 0, rom.Size()); err != nil {
		return fmt.Errorf("mapping rom: %w", err)
	}

	p, err := host.New(&host.ProcessorDef{Mapper: m, TraceSize: 64})
	if err != nil {
		return fmt.Errorf("constructing processor: %w", err)
	}

	if c.Bool("trace") {
		p.OnNewInstruction(func(_ uint8, text string) {
			fmt.Println(text)
		})
	}

	if dir := c.String("load-state"); dir != "" {
		if err := p.LoadState(dir); err != nil {
			return fmt.Errorf("loading save state: %w", err)
		}
	} else {
		if err := p.PowerOn(); err != nil {
			return fmt.Errorf("powering on: %w", err)
		}
	}

	maxCycles := c.Uint64("cycles")
	for i := uint64(0); i < maxCycles; i++ {
		if p.State() == cpu.StateStopped {
			break
		}
		if err := p.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
	}

	r := p.Snapshot()
	fmt.Printf("stopped after %d cycles: PC=%02X:%04X A=%04X X=%04X Y=%04X P=%02X E=%v\n",
		r.Cycles, r.PB, r.PC, r.A, r.X, r.Y, r.P, r.E)

	if dir := c.String("save-state"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating save-state dir: %w", err)
		}
		path, err := p.SaveState(dir)
		if err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		fmt.Printf("wrote save state to %s\n", path)
	}

	return nil
}
