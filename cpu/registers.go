// Package cpu implements the W65C816S processor core: its register file,
// six-state state machine, micro-operation queue engine, the twenty-five
// addressing modes and the opcode set built on top of them.
package cpu

import "fmt"

// Status flag bits. Bit 5 is M in native mode and is forced set in
// emulation mode; bit 4 is X in native mode and is the B (break) flag in
// emulation mode.
const (
	PNegative = uint8(0x80)
	POverflow = uint8(0x40)
	PMemory   = uint8(0x20) // native: accumulator/memory width (1 = 8-bit)
	PIndex    = uint8(0x10) // native: index width (1 = 8-bit); emulation: B
	PBreak    = uint8(0x10) // alias of PIndex's bit, named for emulation mode reads
	PDecimal  = uint8(0x08)
	PIRQDis   = uint8(0x04)
	PZero     = uint8(0x02)
	PCarry    = uint8(0x01)
)

// Interrupt vectors, bank 0, low byte first.
const (
	vecCOPNative  = uint16(0xFFE4)
	vecBRKNative  = uint16(0xFFE6)
	vecAbortNat   = uint16(0xFFE8)
	vecNMINative  = uint16(0xFFEA)
	vecIRQNative  = uint16(0xFFEE)
	vecCOPEmul    = uint16(0xFFF4)
	vecAbortEmul  = uint16(0xFFF8)
	vecNMIEmul    = uint16(0xFFFA)
	vecResetEmul  = uint16(0xFFFC)
	vecBRKEmul    = uint16(0xFFFE) // shared with IRQ
	vecIRQEmul    = uint16(0xFFFE)
)

// InvalidStateTransition is raised when the host or the core itself drives
// an event that the state machine does not permit from the current state.
type InvalidStateTransition struct {
	Reason string
}

// Error implements the error interface.
func (e InvalidStateTransition) Error() string {
	return fmt.Sprintf("cpu: invalid state transition: %s", e.Reason)
}

// Registers is the immutable snapshot returned by Core.Snapshot and
// consumed by Core.SetState; it carries the register-file fields named in
// the external save-state format plus MD and IR, which that format omits.
type Registers struct {
	A, X, Y, DP, SP uint16
	DB, PB, P       uint8
	PC              uint16
	E               bool
	MD              uint8
	IR              uint8
	Cycles          uint64
}

// flagM reports the effective accumulator/memory width flag: forced 1
// (8-bit) in emulation mode regardless of the P register's bit.
func (c *Core) flagM() bool {
	return c.E || c.P&PMemory != 0
}

// flagX reports the effective index-register width flag: forced 1 (8-bit)
// in emulation mode regardless of the P register's bit.
func (c *Core) flagX() bool {
	return c.E || c.P&PIndex != 0
}

func (c *Core) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *Core) setNZ8(v uint8) {
	c.setFlag(PZero, v == 0)
	c.setFlag(PNegative, v&0x80 != 0)
}

func (c *Core) setNZ16(v uint16) {
	c.setFlag(PZero, v == 0)
	c.setFlag(PNegative, v&0x8000 != 0)
}

func (c *Core) setNZWidth(v uint16, eightBit bool) {
	if eightBit {
		c.setNZ8(uint8(v))
	} else {
		c.setNZ16(v)
	}
}

// getA returns the accumulator masked to its effective width.
func (c *Core) getA() uint16 {
	if c.flagM() {
		return c.A & 0x00FF
	}
	return c.A
}

// setA stores val into the accumulator, preserving the hidden high byte
// when M=1 (the datasheet-documented behavior the spec calls out at §3).
func (c *Core) setA(val uint16) {
	if c.flagM() {
		c.A = (c.A & 0xFF00) | (val & 0x00FF)
		return
	}
	c.A = val
}

func (c *Core) getX() uint16 {
	if c.flagX() {
		return c.X & 0x00FF
	}
	return c.X
}

func (c *Core) setX(val uint16) {
	if c.flagX() {
		c.X = val & 0x00FF
		return
	}
	c.X = val
}

func (c *Core) getY() uint16 {
	if c.flagX() {
		return c.Y & 0x00FF
	}
	return c.Y
}

func (c *Core) setY(val uint16) {
	if c.flagX() {
		c.Y = val & 0x00FF
		return
	}
	c.Y = val
}

// enforceEmulationInvariants applies §3's invariant when XCE enters
// emulation mode and after REP/SEP while E=1: M=1 and X=1 always, XH=YH=0,
// SH=0x01. The reset sequence does not call it; it sets M, X and SH itself
// and leaves the X/Y high bytes as they were.
func (c *Core) enforceEmulationInvariants() {
	c.P |= PMemory | PIndex
	c.X &= 0x00FF
	c.Y &= 0x00FF
	c.SP = 0x0100 | (c.SP & 0x00FF)
}

// clampStackHigh re-forces SH=0x01 after a stack push/pull while in
// emulation mode, per invariant 6.
func (c *Core) clampStackHigh() {
	if c.E {
		c.SP = 0x0100 | (c.SP & 0x00FF)
	}
}

// Snapshot returns an immutable copy of the register file and cycle count.
func (c *Core) Snapshot() Registers {
	return Registers{
		A: c.A, X: c.X, Y: c.Y, DP: c.DP, SP: c.SP,
		DB: c.DB, PB: c.PB, P: c.P, PC: c.PC,
		E: c.E, MD: c.MD, IR: c.IR, Cycles: c.cycles,
	}
}

// SetState restores a register snapshot. Only permitted while the core is
// in the Disabled state, per §4.6.
func (c *Core) SetState(r Registers) error {
	if c.state != StateDisabled {
		return InvalidStateTransition{Reason: "setProcessorState only allowed while Disabled"}
	}
	c.A, c.X, c.Y, c.DP, c.SP = r.A, r.X, r.Y, r.DP, r.SP
	c.DB, c.PB, c.P, c.PC = r.DB, r.PB, r.P, r.PC
	c.E, c.MD, c.IR, c.cycles = r.E, r.MD, r.IR, r.Cycles
	return nil
}
