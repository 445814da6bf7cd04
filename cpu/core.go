package cpu

import (
	"fmt"

	"github.com/lunarlabs/EightSixteenEmu/bus"
)

// Core is one W65C816S processor: its register file, coarse-grained state
// machine and the micro-operation queue that drives Tick-by-Tick execution.
// It never runs ahead of the host: every externally observable bus cycle is
// the direct result of exactly one Tick call.
type Core struct {
	// Register file (spec.md §3).
	A, X, Y, DP, SP uint16
	DB, PB, P       uint8
	PC              uint16
	E               bool
	MD, IR          uint8

	state State
	queue []microOp

	cycles    uint64
	lastCycle Cycle

	mapper *bus.Mapper

	// Working state shared by the addressing-mode builders and ALU/stack
	// helpers while a single instruction's queue is being built and run.
	opAddr uint32
	opVal1 uint8
	opVal2 uint8
	opBank uint8
	opPtr  uint32

	resetPending    bool
	resetSeqStarted bool

	waitingForInterrupt bool
	nmiPending          bool
}

// ChipDef carries a Core's fixed dependencies, in the teacher's
// literal-struct dependency-injection style: everything the chip needs from
// the outside world is passed in once at construction instead of threaded
// through every call.
type ChipDef struct {
	// Mapper is the bus the core fetches instructions from and reads/writes
	// operands through. Required.
	Mapper *bus.Mapper
}

// Init constructs a Core wired to def.Mapper. The core starts Disabled;
// the host must call Enable to bring it up, mirroring spec.md §4.1's rule
// that power-on does not imply the reset sequence has run yet.
func Init(def *ChipDef) (*Core, error) {
	if def == nil || def.Mapper == nil {
		return nil, fmt.Errorf("cpu: ChipDef.Mapper is required")
	}
	return &Core{
		mapper: def.Mapper,
		state:  StateDisabled,
	}, nil
}

// PowerOn brings the core up from Disabled and runs the reset sequence,
// the combination the host's power-on path always wants (spec.md §4.1
// notes enable(withReset=true) is the only variant ever driven).
func (c *Core) PowerOn() error {
	if err := c.Enable(); err != nil {
		return err
	}
	return nil
}

// Tick advances the core by exactly one bus cycle and returns any error
// from an illegal state. This is the single entry point driving every
// externally observable read, write or internal cycle (spec.md §4.1's
// state-transition table).
func (c *Core) Tick() error {
	switch c.state {
	case StateDisabled:
		return InvalidStateTransition{Reason: "tick while Disabled"}

	case StateStopped:
		// Idempotent no-op: only a reset can bring a Stopped core back.
		c.lastCycle = Cycle{Kind: CycleInternal}
		return nil

	case StateBusAcquired:
		c.lastCycle = Cycle{Kind: CycleInternal}
		return nil

	case StateResetting:
		return c.tickResetting()

	case StateWaiting:
		return c.tickWaiting()

	case StateRunning:
		return c.tickRunning()
	}
	return InvalidStateTransition{Reason: "unknown state"}
}

// TickDone is a no-op hook kept for symmetry with the teacher's two-phase
// device clocking (Tick/TickDone); the core has no shadow registers to
// commit since every mutation inside a micro-op closure is already final.
func (c *Core) TickDone() {}

func (c *Core) tickResetting() error {
	if !c.resetSeqStarted {
		c.runResetSequence()
		c.resetSeqStarted = true
		c.pushReadAt(func(cc *Core) uint32 { return uint32(vecResetEmul) }, &c.opVal1)
		c.pushReadAt(func(cc *Core) uint32 { return uint32(vecResetEmul + 1) }, &c.opVal2)
		c.enqueue(opInternal, func(cc *Core) Cycle {
			cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
			cc.resetPending = false
			cc.state = StateRunning
			return Cycle{Kind: CycleInternal}
		})
	}
	return c.dequeueOne()
}

func (c *Core) tickWaiting() error {
	rawIRQ := c.mapper.InterruptLine()
	if !c.nmiPending && !rawIRQ {
		c.lastCycle = Cycle{Kind: CycleInternal}
		return nil
	}
	c.waitingForInterrupt = false
	c.state = StateRunning
	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.buildInterruptSequence(intNMI)
	case c.P&PIRQDis == 0:
		c.buildInterruptSequence(intIRQ)
	default:
		// Scenario S6: IRQ woke the core but I=1 suppresses dispatch, so
		// execution simply resumes at the instruction after WAI.
		c.enqueueFetchDecode()
	}
	return c.dequeueOne()
}

func (c *Core) tickRunning() error {
	if len(c.queue) == 0 {
		c.serviceInterruptsOrFetch()
	}
	return c.dequeueOne()
}

// serviceInterruptsOrFetch is called only at an instruction boundary: NMI
// (edge-latched) always wins over a fresh fetch, then a level-sensitive,
// I-flag-gated IRQ, and only then does the core fetch the next opcode.
func (c *Core) serviceInterruptsOrFetch() {
	if c.nmiPending {
		c.nmiPending = false
		c.buildInterruptSequence(intNMI)
		return
	}
	if c.irqLineAsserted() {
		c.buildInterruptSequence(intIRQ)
		return
	}
	c.enqueueFetchDecode()
}

// enqueueFetchDecode is the FetchDecode micro-op: it reads the opcode byte,
// advances PC, latches IR, and immediately builds the rest of the
// instruction's queue behind it. Nothing else can touch the bus between
// this tick and the ticks that drain the queue it just built, which is what
// makes deciding the queue's shape here (rather than lazily, tick by tick)
// behaviorally safe.
func (c *Core) enqueueFetchDecode() {
	c.enqueue(opFetchDecode, func(cc *Core) Cycle {
		addr := cc.pcAddr()
		val := cc.busRead(addr)
		cc.PC++
		cc.IR = val
		cc.buildOpcode(val)
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

// dequeueOne runs exactly the head micro-op, recording its Cycle and
// advancing the bus-cycle counter. A handled micro-op may itself add more
// micro-ops (branch and indexed-mode page-crossing cycles); that is fine,
// they simply run on later Ticks. Block moves instead rewind PC so the
// instruction is fetched again.
func (c *Core) dequeueOne() error {
	if len(c.queue) == 0 {
		// Can only happen if serviceInterruptsOrFetch somehow enqueued
		// nothing, which never happens; guard defensively rather than
		// panic on an index that can't occur in the well-formed state
		// machine.
		c.lastCycle = Cycle{Kind: CycleInternal}
		return nil
	}
	op := c.queue[0]
	c.queue = c.queue[1:]
	c.lastCycle = op.fn(c)
	c.cycles++
	return nil
}
