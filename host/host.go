// Package host implements the Host Tick Facade of spec §4.6: it owns a
// cpu.Core and a bus.Mapper, exposes the mutex-guarded operations a driving
// loop or CLI needs (tick, reset, interrupt injection, bus arbitration,
// snapshotting), and wires an instruction-trace sink for diagnostics. It is
// the generalization of the teacher's atari2600.VCS console wiring to a
// bus-agnostic 65816 system.
package host

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lunarlabs/EightSixteenEmu/bus"
	"github.com/lunarlabs/EightSixteenEmu/cpu"
	"github.com/lunarlabs/EightSixteenEmu/disassemble"
)

// hostIRQLine is a synthetic bus.Device with no data storage: it exists only
// to give the host's IssueIRQ a seat in the mapper's interrupt-line OR,
// exactly the way a real external interrupt controller would assert one of
// the aggregated lines spec §4.2 describes. It is mapped at one reserved
// byte rather than left outside the bus, since cpu.Core only ever samples
// the aggregate through bus.Mapper.InterruptLine.
type hostIRQLine struct {
	level bool
}

func (h *hostIRQLine) Read(uint32) uint8   { return 0 }
func (h *hostIRQLine) Write(uint32, uint8) {}
func (h *hostIRQLine) PowerOn()            { h.level = false }
func (h *hostIRQLine) Raised() bool        { return h.level }
func (h *hostIRQLine) Size() uint32        { return 1 }

// hostIRQAddr is the reserved bus address the synthetic IRQ line occupies.
// Bank 0xFF is never used by the vector table or by any device this package
// constructs, so it cannot collide with a caller's own memory map as long as
// the caller also avoids it.
const hostIRQAddr = 0x00FF0000

// CycleObserver is called once per Tick with the cycle just produced and the
// processor state immediately after it, per §4.6's onNewCycle sink.
type CycleObserver func(cpu.Cycle, cpu.State)

// InstructionObserver is called once per instruction boundary (the tick that
// performs a FetchDecode) with the opcode byte and its disassembled operand
// text, per §4.6's onNewInstruction sink.
type InstructionObserver func(opcode uint8, text string)

// Processor is the Host Tick Facade: cpu.Core plus its bus, guarded by a
// single mutex per §5's concurrency model so event callbacks can safely
// inspect a Snapshot and external agents can post interrupts between ticks.
type Processor struct {
	mu sync.Mutex

	core   *cpu.Core
	mapper *bus.Mapper
	irqIn  *hostIRQLine

	onCycle   CycleObserver
	onInstr   InstructionObserver
	traceSize int
	trace     []TraceEntry

	guids map[bus.Device]uuid.UUID
}

// TraceEntry is one entry in the bounded instruction-trace ring buffer,
// grounded on the teacher's cpu_test.go instructionBuffer idea (see
// DESIGN.md) but kept here as genuine host-facade behavior rather than a
// test-only fixture.
type TraceEntry struct {
	PC     uint16
	Bank   uint8
	Opcode uint8
	Text   string
}

// ProcessorDef carries a Processor's fixed dependencies, following the
// literal-struct dependency-injection convention used throughout this
// module (cpu.ChipDef, device constructors).
type ProcessorDef struct {
	// Mapper is the bus the core and every mapped device live on. Required.
	Mapper *bus.Mapper
	// TraceSize bounds the instruction-trace ring buffer. Zero disables
	// tracing (OnNewInstruction is still called if set, just not recorded).
	TraceSize int
}

// New constructs a Processor wired to def.Mapper and registers the
// synthetic host-IRQ line device on it. The underlying core starts
// Disabled, mirroring cpu.Init.
func New(def *ProcessorDef) (*Processor, error) {
	if def == nil || def.Mapper == nil {
		return nil, fmt.Errorf("host: ProcessorDef.Mapper is required")
	}
	irqIn := &hostIRQLine{}
	if err := def.Mapper.Add(irqIn, hostIRQAddr, 0, 1); err != nil {
		return nil, fmt.Errorf("host: registering IRQ line device: %w", err)
	}
	core, err := cpu.Init(&cpu.ChipDef{Mapper: def.Mapper})
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	return &Processor{
		core:      core,
		mapper:    def.Mapper,
		irqIn:     irqIn,
		traceSize: def.TraceSize,
	}, nil
}

// OnNewCycle installs the per-cycle observer. Pass nil to remove it.
func (p *Processor) OnNewCycle(f CycleObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCycle = f
}

// OnNewInstruction installs the per-instruction-boundary observer. Pass nil
// to remove it.
func (p *Processor) OnNewInstruction(f InstructionObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onInstr = f
}

// Tick advances the core by exactly one bus cycle, the facade's sole entry
// point for driving emulation (§5: "one tick produces exactly one bus cycle
// and returns").
func (p *Processor) Tick() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	atBoundary := p.core.State() == cpu.StateRunning && p.core.InstructionBoundary()
	var pc uint16
	var bank uint8
	var longA, longX bool
	if atBoundary {
		r := p.core.Snapshot()
		pc, bank = r.PC, r.PB
		longA = r.P&cpu.PMemory == 0 && !r.E
		longX = r.P&cpu.PIndex == 0 && !r.E
	}

	if err := p.core.Tick(); err != nil {
		return err
	}

	cyc := p.core.LastCycle()
	if p.onCycle != nil {
		p.onCycle(cyc, p.core.State())
	}
	if atBoundary && cyc.Kind == cpu.CycleRead {
		text, _ := disassemble.Step(pc, bank, p.mapper, longA, longX)
		p.recordTrace(TraceEntry{PC: pc, Bank: bank, Opcode: cyc.Data, Text: text})
		if p.onInstr != nil {
			p.onInstr(cyc.Data, text)
		}
	}
	return nil
}

func (p *Processor) recordTrace(e TraceEntry) {
	if p.traceSize <= 0 {
		return
	}
	p.trace = append(p.trace, e)
	if len(p.trace) > p.traceSize {
		p.trace = p.trace[len(p.trace)-p.traceSize:]
	}
}

// Trace returns a copy of the current instruction-trace ring buffer, oldest
// first.
func (p *Processor) Trace() []TraceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TraceEntry, len(p.trace))
	copy(out, p.trace)
	return out
}

// Reset asserts the Reset line. The core deasserts it and runs the vector
// load on the next tick, per §4.1.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.core.AssertReset()
}

// PowerOn brings the core up from Disabled and begins the reset sequence,
// powering every mapped device first so RAM/ROM/UART reach their own
// power-on states before the vector load reads them.
func (p *Processor) PowerOn() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mapper.PowerOn()
	return p.core.Enable()
}

// IssueNMI edge-latches a pending NMI (§4.6).
func (p *Processor) IssueNMI() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.core.IssueNMI()
}

// IssueIRQ sets or clears the host-driven IRQ line, which is OR-aggregated
// with every other device's Raised() by bus.Mapper (§4.6: "passes through
// to the mapper's aggregation").
func (p *Processor) IssueIRQ(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.irqIn.level = level
}

// BusRequest transitions the core to BusAcquired, per §4.1.
func (p *Processor) BusRequest() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core.BusRequest()
}

// BusRelease transitions the core back to Running from BusAcquired.
func (p *Processor) BusRelease() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core.BusRelease()
}

// Snapshot returns an immutable copy of the register file.
func (p *Processor) Snapshot() cpu.Registers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core.Snapshot()
}

// State returns the processor's current coarse state.
func (p *Processor) State() cpu.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core.State()
}

// SetProcessorState restores a register snapshot. Only allowed while
// Disabled, per §4.6.
func (p *Processor) SetProcessorState(r cpu.Registers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.core.SetState(r)
}

// Mapper exposes the underlying bus, e.g. for a CLI to add devices before
// PowerOn.
func (p *Processor) Mapper() *bus.Mapper {
	return p.mapper
}
